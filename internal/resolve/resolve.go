// Package resolve turns a candidate set of edit directives for one file into
// a reduced, non-conflicting, applicable subset. The resolution policy is a
// pluggable capability: the applicator only requires that whatever policy ran
// leaves no overlaps for its guard to trip on.
package resolve

import (
	"fmt"
	"math"

	"github.com/mendtool/mend/internal/change"
	"github.com/mendtool/mend/internal/console"
)

// Resolver is the conflict-resolution capability. Both methods receive
// directives for a single file sorted in descending position order and must
// return them the same way. Alternative policies can be substituted without
// touching the patch applicator.
type Resolver interface {
	ResolveInsertionConflicts(directives []change.Directive) ([]change.Directive, error)
	ResolveNonInsertionConflicts(directives []change.Directive) ([]change.Directive, error)
}

// Run executes the full resolution sequence: insertion conflicts,
// non-insertion conflicts, then insertion conflicts again. The second
// insertion pass is required because resolving a non-insertion conflict can
// move an insertion point outside what was previously a replaced or deleted
// span, re-introducing an insertion conflict.
func Run(r Resolver, directives []change.Directive) ([]change.Directive, error) {
	out, err := r.ResolveInsertionConflicts(directives)
	if err != nil {
		return nil, err
	}
	out, err = r.ResolveNonInsertionConflicts(out)
	if err != nil {
		return nil, err
	}
	return r.ResolveInsertionConflicts(out)
}

// Passthrough returns its input unchanged, for callers whose directives are
// already known to be conflict-free.
type Passthrough struct{}

func (Passthrough) ResolveInsertionConflicts(directives []change.Directive) ([]change.Directive, error) {
	return directives, nil
}

func (Passthrough) ResolveNonInsertionConflicts(directives []change.Directive) ([]change.Directive, error) {
	return directives, nil
}

// Interactive is the default policy. It is deliberately conservative: every
// resolution that discards or moves a requested edit goes through the Asker,
// and declining always keeps the earliest-seen edit.
type Interactive struct {
	Asker console.Asker
}

// ResolveInsertionConflicts merges insertions that target the same boundary
// (in reply order, after confirmation; declining keeps only the first) and
// relocates an insertion landing inside a replaced or deleted span to just
// before that span (declining drops the insertion).
func (r Interactive) ResolveInsertionConflicts(directives []change.Directive) ([]change.Directive, error) {
	var out []change.Directive

	for i := 0; i < len(directives); {
		d := directives[i]
		if d.Action != change.Insert {
			out = append(out, d)
			i++
			continue
		}
		j := i + 1
		for j < len(directives) && directives[j].Action == change.Insert &&
			directives[j].LastChangedLine == d.LastChangedLine {
			j++
		}
		if j-i > 1 {
			ok, err := r.Asker.AskYesNo(fmt.Sprintf(
				"%d insertions target the same boundary near line %d in %s. Apply them all in reply order?",
				j-i, boundaryLine(d), d.File), true)
			if err != nil {
				return nil, err
			}
			if ok {
				merged := d
				merged.CodeLines = nil
				for _, ins := range directives[i:j] {
					merged.CodeLines = append(merged.CodeLines, ins.CodeLines...)
				}
				d = merged
			}
			// Declining keeps only the first insertion seen.
		}
		out = append(out, d)
		i = j
	}

	resolved, err := r.relocateInsertions(out)
	if err != nil {
		return nil, err
	}
	change.SortDescending(resolved)
	return resolved, nil
}

func (r Interactive) relocateInsertions(directives []change.Directive) ([]change.Directive, error) {
	var out []change.Directive
	for _, d := range directives {
		if d.Action != change.Insert {
			out = append(out, d)
			continue
		}
		span, found := enclosingSpan(d, directives)
		if !found {
			out = append(out, d)
			continue
		}
		ok, err := r.Asker.AskYesNo(fmt.Sprintf(
			"An insertion targets line %d of %s inside a span being %sd (lines %d-%d). Move the insertion before that span?",
			boundaryLine(d), d.File, span.Action,
			int(span.FirstChangedLine), int(span.LastChangedLine)), true)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		d.FirstChangedLine = span.FirstChangedLine - 0.5
		d.LastChangedLine = d.FirstChangedLine
		out = append(out, d)
	}
	return out, nil
}

// ResolveNonInsertionConflicts walks the replace/delete spans from highest to
// lowest; when a span runs into the one kept above it, the lower span is
// trimmed to end just before it (after confirmation; declining drops the
// lower span instead). Insertions pass through untouched.
func (r Interactive) ResolveNonInsertionConflicts(directives []change.Directive) ([]change.Directive, error) {
	var out []change.Directive
	minChangedLine := math.Inf(1)

	for _, d := range directives {
		if !isSpan(d) {
			out = append(out, d)
			continue
		}
		if d.LastChangedLine >= minChangedLine {
			trimmedLast := minChangedLine - 1
			ok, err := r.Asker.AskYesNo(fmt.Sprintf(
				"Edits to %s overlap around lines %d-%d. Trim the lower edit to end at line %d?",
				d.File, int(d.FirstChangedLine), int(d.LastChangedLine), int(trimmedLast)), true)
			if err != nil {
				return nil, err
			}
			if !ok || trimmedLast < d.FirstChangedLine {
				continue
			}
			d.LastChangedLine = trimmedLast
		}
		minChangedLine = d.FirstChangedLine
		out = append(out, d)
	}

	change.SortDescending(out)
	return out, nil
}

func isSpan(d change.Directive) bool {
	return d.Action == change.Replace || d.Action == change.Delete
}

func enclosingSpan(ins change.Directive, directives []change.Directive) (change.Directive, bool) {
	for _, d := range directives {
		if !isSpan(d) {
			continue
		}
		if d.FirstChangedLine <= ins.LastChangedLine && ins.LastChangedLine <= d.LastChangedLine {
			return d, true
		}
	}
	return change.Directive{}, false
}

// boundaryLine is the whole line number an insertion boundary sits after,
// for display purposes.
func boundaryLine(d change.Directive) int {
	return int(math.Floor(d.LastChangedLine))
}
