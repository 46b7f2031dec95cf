// Package change defines the edit directive data model: one requested
// line-addressed modification to one file, as produced by the model and
// consumed by the patch applicator.
package change

import (
	"cmp"
	"slices"
)

// Action is the kind of edit a directive requests.
type Action int

const (
	Insert Action = iota
	Replace
	Delete
	CreateFile
	DeleteFile
	RenameFile
)

var actionNames = map[Action]string{
	Insert:     "insert",
	Replace:    "replace",
	Delete:     "delete",
	CreateFile: "create-file",
	DeleteFile: "delete-file",
	RenameFile: "rename-file",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// HasAdditions reports whether the action contributes lines to the new file.
func (a Action) HasAdditions() bool {
	return a == Insert || a == Replace || a == CreateFile
}

// HasRemovals reports whether the action removes lines from the old file.
func (a Action) HasRemovals() bool {
	return a == Delete || a == Replace || a == DeleteFile
}

// Directive describes one requested change to one file. Line numbers are
// 1-based positions in the numbered listing the model saw. Insert boundaries
// are half-line adjusted so an insertion between two lines never collides
// with a replace or delete touching either line: inserting after line N gives
// FirstChangedLine == LastChangedLine == N + 0.5, inserting before line N
// gives N - 0.5.
type Directive struct {
	Action           Action
	File             string
	FirstChangedLine float64
	LastChangedLine  float64
	// NewName is the destination path for RenameFile.
	NewName string
	// CodeLines carries replacement text for Insert, Replace and CreateFile.
	CodeLines []string
}

// applyRank breaks position ties: at an identical boundary, insertions apply
// before replacements, replacements before deletions.
func applyRank(a Action) int {
	switch a {
	case Insert:
		return 2
	case Replace:
		return 1
	default:
		return 0
	}
}

// Compare orders directives by position: LastChangedLine first, then apply
// rank, then FirstChangedLine. It is the single ordering used everywhere so
// sorting stays a pure, testable function.
func Compare(a, b Directive) int {
	if c := cmp.Compare(a.LastChangedLine, b.LastChangedLine); c != 0 {
		return c
	}
	if c := cmp.Compare(applyRank(a.Action), applyRank(b.Action)); c != 0 {
		return c
	}
	return cmp.Compare(a.FirstChangedLine, b.FirstChangedLine)
}

// SortDescending sorts directives from highest position to lowest, the order
// in which applying one never shifts the line numbers of those still pending.
// The sort is stable so same-boundary directives keep reply order.
func SortDescending(changes []Directive) {
	slices.SortStableFunc(changes, func(a, b Directive) int {
		return Compare(b, a)
	})
}

// Apply splices the directive into lines and returns the resulting buffer.
// An Insert targets the zero-width boundary at FirstChangedLine; Replace and
// Delete target the inclusive 1-based span [FirstChangedLine,
// LastChangedLine]. Indices are clamped to the buffer so a directive never
// panics on a short buffer; the applicator's padding and overlap guard keep
// clamping from mattering in practice.
func (d Directive) Apply(lines []string) []string {
	start, end := d.spliceBounds(len(lines))
	out := make([]string, 0, len(lines)-(end-start)+len(d.CodeLines))
	out = append(out, lines[:start]...)
	out = append(out, d.CodeLines...)
	out = append(out, lines[end:]...)
	return out
}

func (d Directive) spliceBounds(n int) (int, int) {
	if d.Action == Insert {
		// A boundary of N+0.5 floors to the 0-based index after line N.
		i := clamp(int(d.FirstChangedLine), 0, n)
		return i, i
	}
	start := clamp(int(d.FirstChangedLine)-1, 0, n)
	end := clamp(int(d.LastChangedLine), start, n)
	return start, end
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
