package change

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/stoewer/go-strcase"
)

// ErrMalformedDirective marks a directive block the model produced that is
// missing required fields or is otherwise unusable. Processing of the block's
// target file stops; other blocks are unaffected.
var ErrMalformedDirective = errors.New("malformed edit directive")

// Block markers of the directive wire format. A block holds a JSON object,
// optionally followed by literal code lines after a lone code separator.
const (
	blockStart    = "@@start"
	blockEnd      = "@@end"
	codeSeparator = "@@code"
)

// WireDirective is the JSON object inside a directive block. Line fields use
// pointers where zero is meaningful (insert-after-line 0 inserts at the very
// top of the file).
type WireDirective struct {
	File             string `json:"file" validate:"required"`
	Action           string `json:"action" validate:"required"`
	InsertAfterLine  *int   `json:"insert-after-line,omitempty" validate:"omitempty,min=0"`
	InsertBeforeLine *int   `json:"insert-before-line,omitempty" validate:"omitempty,min=1"`
	StartLine        int    `json:"start-line,omitempty" validate:"omitempty,min=1"`
	EndLine          int    `json:"end-line,omitempty" validate:"omitempty,min=1"`
	Name             string `json:"name,omitempty"`
}

var validate = validator.New()

// ParseAction maps a wire action token to its Action. Tokens are normalized
// to kebab-case first so "CreateFile" and "create_file" are accepted.
func ParseAction(token string) (Action, error) {
	normalized := strcase.KebabCase(strings.TrimSpace(token))
	for action, name := range actionNames {
		if name == normalized {
			return action, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrMalformedDirective, token)
}

// ParseResponse extracts all edit directives from a model response. Text
// outside @@start/@@end blocks is the model's prose and is ignored. Inside a
// block the JSON section runs until @@code or @@end; code lines after @@code
// are taken verbatim, with no escaping.
func ParseResponse(text string) ([]Directive, error) {
	var directives []Directive

	lines := strings.Split(text, "\n")
	inBlock := false
	inCode := false
	var jsonLines, codeLines []string

	for _, line := range lines {
		switch strings.TrimSpace(line) {
		case blockStart:
			if inBlock {
				return nil, fmt.Errorf("%w: nested %s marker", ErrMalformedDirective, blockStart)
			}
			inBlock = true
			inCode = false
			jsonLines = nil
			codeLines = nil
			continue
		case codeSeparator:
			if inBlock && !inCode {
				inCode = true
				// Presence of the separator means a code section exists,
				// even an empty one.
				codeLines = []string{}
				continue
			}
		case blockEnd:
			if !inBlock {
				return nil, fmt.Errorf("%w: %s without matching %s", ErrMalformedDirective, blockEnd, blockStart)
			}
			directive, err := buildDirective(strings.Join(jsonLines, "\n"), codeLines)
			if err != nil {
				return nil, err
			}
			directives = append(directives, directive)
			inBlock = false
			inCode = false
			continue
		}

		if !inBlock {
			continue
		}
		if inCode {
			codeLines = append(codeLines, line)
		} else {
			jsonLines = append(jsonLines, line)
		}
	}
	if inBlock {
		return nil, fmt.Errorf("%w: unterminated directive block", ErrMalformedDirective)
	}

	return directives, nil
}

func buildDirective(jsonText string, codeLines []string) (Directive, error) {
	var wire WireDirective
	if err := json.Unmarshal([]byte(jsonText), &wire); err != nil {
		return Directive{}, fmt.Errorf("%w: %v", ErrMalformedDirective, err)
	}
	if err := validate.Struct(wire); err != nil {
		return Directive{}, fmt.Errorf("%w: %v", ErrMalformedDirective, err)
	}

	action, err := ParseAction(wire.Action)
	if err != nil {
		return Directive{}, err
	}

	directive := Directive{
		Action: action,
		File:   wire.File,
	}

	hasCode := codeLines != nil
	if action.HasAdditions() && !hasCode {
		return Directive{}, fmt.Errorf("%w: %s block for %s has no code section", ErrMalformedDirective, action, wire.File)
	}
	if hasCode {
		directive.CodeLines = codeLines
	}

	switch action {
	case Insert:
		switch {
		case wire.InsertAfterLine != nil:
			directive.FirstChangedLine = float64(*wire.InsertAfterLine) + 0.5
		case wire.InsertBeforeLine != nil:
			directive.FirstChangedLine = float64(*wire.InsertBeforeLine) - 0.5
		default:
			return Directive{}, fmt.Errorf("%w: insert block for %s has neither insert-after-line nor insert-before-line", ErrMalformedDirective, wire.File)
		}
		directive.LastChangedLine = directive.FirstChangedLine
	case Replace, Delete:
		if wire.StartLine == 0 || wire.EndLine == 0 {
			return Directive{}, fmt.Errorf("%w: %s block for %s requires start-line and end-line", ErrMalformedDirective, action, wire.File)
		}
		if wire.EndLine < wire.StartLine {
			return Directive{}, fmt.Errorf("%w: %s block for %s has end-line before start-line", ErrMalformedDirective, action, wire.File)
		}
		directive.FirstChangedLine = float64(wire.StartLine)
		directive.LastChangedLine = float64(wire.EndLine)
	case RenameFile:
		if wire.Name == "" {
			return Directive{}, fmt.Errorf("%w: rename-file block for %s requires name", ErrMalformedDirective, wire.File)
		}
		directive.NewName = wire.Name
	}

	return directive, nil
}
