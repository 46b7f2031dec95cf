// Package patch applies an ordered, conflict-free set of edit directives to
// a file's in-memory line buffer, cross-checking the session snapshot against
// the live file first.
package patch

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/mendtool/mend/internal/change"
	"github.com/mendtool/mend/internal/console"
)

// ErrOverlap means two directives for the same file still overlap after
// conflict resolution. That is a resolver bug, not user input, and is fatal
// for the batch.
var ErrOverlap = errors.New("change line number overlap")

// ErrStaleDeclined means the live file diverged from the session snapshot and
// the user declined to overwrite it. No changes were applied.
var ErrStaleDeclined = errors.New("stale file, changes declined")

// Applicator applies directives to line buffers. ReadLive re-reads a file's
// current lines from disk; Asker confirms overwriting a file that changed
// since the snapshot the directives were computed against.
type Applicator struct {
	ReadLive func(path string) ([]string, error)
	Asker    console.Asker
}

// Apply applies directives to the snapshot of path and returns the new line
// buffer. Directives must all target path, be free of resolved conflicts and
// be sorted in descending position order; applying high-to-low means no
// application ever shifts the line numbers a pending directive refers to.
//
// If the file on disk no longer matches snapshot, the user is asked (default
// no) whether to discard the live edits; declining returns ErrStaleDeclined
// with nothing applied.
func (ap Applicator) Apply(path string, snapshot []string, directives []change.Directive) ([]string, error) {
	if len(directives) == 0 {
		return nil, nil
	}

	live, err := ap.ReadLive(path)
	if err != nil {
		return nil, fmt.Errorf("re-reading %s: %w", path, err)
	}
	if !slices.Equal(snapshot, live) {
		ok, err := ap.Asker.AskYesNo(
			fmt.Sprintf("File '%s' changed while changes were generated; the live edits will be erased. Continue?", path),
			false,
		)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrStaleDeclined
		}
	}

	lines := slices.Clone(snapshot)

	// Pad with empty lines in case a directive inserts past the end of file.
	lastLine := len(lines) + 1
	largestChangedLine := int(math.Ceil(directives[0].LastChangedLine))
	if largestChangedLine > lastLine {
		lines = append(lines, make([]string, largestChangedLine-lastLine)...)
	}

	minChangedLine := float64(largestChangedLine + 1)
	for _, d := range directives {
		if d.LastChangedLine >= minChangedLine {
			return nil, fmt.Errorf("%w in file %s", ErrOverlap, d.File)
		}
		minChangedLine = d.FirstChangedLine
		lines = d.Apply(lines)
	}
	return lines, nil
}
