// Package diff parses unified-diff text for a single file into annotations
// anchored to new-file line numbers, and weaves those annotations into a
// numbered source listing for display.
package diff

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrMalformedDiff marks diff text with content lines appearing before any
// hunk header, or an unparseable hunk header.
var ErrMalformedDiff = errors.New("malformed diff")

// Annotation is one hunk of a unified diff: the 1-based line number in the
// new file where the hunk's content begins, and the raw added/removed lines.
type Annotation struct {
	Start   int
	Message []string
}

// Length is the number of new-file lines the hunk occupies, i.e. the count
// of "+" lines.
func (a Annotation) Length() int {
	n := 0
	for _, line := range a.Message {
		if strings.HasPrefix(line, "+") {
			n++
		}
	}
	return n
}

// headerLines is the size of the file-identity header at the top of a
// single-file unified diff, discarded by contract.
const headerLines = 4

// Parse converts unified-diff text for one file into annotations sorted by
// ascending Start. Hunk headers are expected monotonic but the result is
// sorted defensively.
func Parse(text string) ([]Annotation, error) {
	var annotations []Annotation
	var active *Annotation

	lines := strings.Split(text, "\n")
	if len(lines) <= headerLines {
		return nil, nil
	}
	for _, line := range lines[headerLines:] {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, `\`):
			// File markers and "\ No newline at end of file".
			continue
		case strings.HasPrefix(line, "@@"):
			if active != nil {
				annotations = append(annotations, *active)
			}
			start, err := parseHunkStart(line)
			if err != nil {
				return nil, err
			}
			active = &Annotation{Start: start}
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, "-"):
			if active == nil {
				return nil, fmt.Errorf("%w: content before hunk header", ErrMalformedDiff)
			}
			active.Message = append(active.Message, line)
		}
	}
	if active != nil {
		annotations = append(annotations, *active)
	}

	slices.SortStableFunc(annotations, func(a, b Annotation) int {
		return a.Start - b.Start
	})
	return annotations, nil
}

// parseHunkStart extracts the new-file starting line from a hunk header's
// second range token, format "+start[,count]".
func parseHunkStart(header string) (int, error) {
	fields := strings.Fields(header)
	if len(fields) < 3 || !strings.HasPrefix(fields[2], "+") {
		return 0, fmt.Errorf("%w: bad hunk header %q", ErrMalformedDiff, header)
	}
	token := strings.TrimPrefix(fields[2], "+")
	if comma := strings.IndexByte(token, ','); comma >= 0 {
		token = token[:comma]
	}
	start, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("%w: bad hunk header %q", ErrMalformedDiff, header)
	}
	return start, nil
}

// Weave merges annotations into a numbered file listing. fileMessage element
// 0 is the path header and elements 1..N are "N:content" lines, so the index
// of a numbered line equals its line number. Added lines are emitted with
// their true new-file line number; removed lines are emitted inline at the
// point of deletion, sharing the number of the following retained or added
// line, and do not advance the numbering.
func Weave(fileMessage []string, annotations []Annotation) []string {
	activeIndex := 0
	woven := make([]string, 0, len(fileMessage))
	for _, annotation := range annotations {
		if activeIndex < annotation.Start {
			// Both bounds clamp to the listing: a hunk can anchor past its
			// end when the diff was taken against a longer file.
			lo := min(activeIndex, len(fileMessage))
			hi := min(annotation.Start, len(fileMessage))
			woven = append(woven, fileMessage[lo:hi]...)
		}
		activeIndex = annotation.Start
		if annotation.Start == 0 && len(fileMessage) > 0 {
			// Keep the path header on line 1 even when a hunk touches the
			// very top of the file.
			woven = append(woven, fileMessage[0])
			activeIndex++
		}
		iMinus := -1
		for _, line := range annotation.Message {
			if line == "" {
				continue
			}
			switch line[0] {
			case '+':
				woven = append(woven, fmt.Sprintf("%d:%s", activeIndex, line))
				activeIndex++
				iMinus = -1
			case '-':
				if iMinus < 0 {
					iMinus = 0
				}
				woven = append(woven, fmt.Sprintf("%d:%s", annotation.Start+iMinus, line))
				iMinus++
			}
		}
	}
	if activeIndex < len(fileMessage) {
		woven = append(woven, fileMessage[activeIndex:]...)
	}
	return woven
}
