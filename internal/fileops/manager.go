// Package fileops drives a change-application session: it owns the
// tracked-file registry and the session's line buffers, groups directives by
// file, runs conflict resolution and the patch applicator, and performs the
// filesystem side effects with confirmation on destructive actions.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mendtool/mend/internal/change"
	"github.com/mendtool/mend/internal/console"
	"github.com/mendtool/mend/internal/diff"
	"github.com/mendtool/mend/internal/patch"
	"github.com/mendtool/mend/internal/resolve"
)

// ErrUntracked means a directive referenced a file never presented as
// editable context. Writing to it would indicate an upstream tracking bug,
// so the batch is aborted.
var ErrUntracked = errors.New("file not tracked in session context")

// Manager is a single change-application session. It is not safe for
// concurrent use: the line buffers and tracked registry are exclusively
// owned by the session for its duration, and only the Manager mutates them.
type Manager struct {
	root     string
	asker    console.Asker
	resolver resolve.Resolver
	printer  console.Printer

	tracked map[string]struct{}
	lines   map[string][]string
}

func NewManager(root string, asker console.Asker, resolver resolve.Resolver, out io.Writer) *Manager {
	return &Manager{
		root:     root,
		asker:    asker,
		resolver: resolver,
		printer:  console.NewPrinter(out),
		tracked:  make(map[string]struct{}),
		lines:    make(map[string][]string),
	}
}

func (m *Manager) absPath(rel string) string {
	return filepath.Join(m.root, rel)
}

// Tracked reports whether rel is part of the session's editable context.
func (m *Manager) Tracked(rel string) bool {
	_, ok := m.tracked[rel]
	return ok
}

// Track registers rel as editable context and loads its lines. Binary
// content is refused; this engine only patches text.
func (m *Manager) Track(rel string) error {
	lines, err := m.readFile(rel)
	if err != nil {
		return err
	}
	m.tracked[rel] = struct{}{}
	m.lines[rel] = lines
	return nil
}

// readFile reads the whole file and splits on newlines, so the buffer
// round-trips byte-identically through strings.Join on write.
func (m *Manager) readFile(rel string) ([]string, error) {
	content, err := os.ReadFile(m.absPath(rel))
	if err != nil {
		return nil, err
	}
	if len(content) > 0 {
		if mime := mimetype.Detect(content); !strings.HasPrefix(mime.String(), "text/") {
			return nil, fmt.Errorf("file %s appears to be binary (MIME type: %s)", rel, mime.String())
		}
	}
	return strings.Split(string(content), "\n"), nil
}

func (m *Manager) writeFile(rel string, lines []string) error {
	return os.WriteFile(m.absPath(rel), []byte(strings.Join(lines, "\n")), 0o644)
}

// FileMessage builds the numbered listing for a tracked file: the posix path
// on line 1, then "N:content" for each 1-based line.
func (m *Manager) FileMessage(rel string) ([]string, error) {
	lines, ok := m.lines[rel]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUntracked, rel)
	}
	message := make([]string, 0, len(lines)+1)
	message = append(message, filepath.ToSlash(rel))
	for i, line := range lines {
		message = append(message, fmt.Sprintf("%d:%s", i+1, line))
	}
	return message, nil
}

// AnnotatedFileMessage builds the numbered listing for a tracked file with
// the given unified-diff text woven in.
func (m *Manager) AnnotatedFileMessage(rel, diffText string) ([]string, error) {
	message, err := m.FileMessage(rel)
	if err != nil {
		return nil, err
	}
	annotations, err := diff.Parse(diffText)
	if err != nil {
		return nil, err
	}
	return diff.Weave(message, annotations), nil
}

// addFile registers a new path as tracked and creates any missing parent
// directories.
func (m *Manager) addFile(rel string) error {
	if dir := filepath.Dir(m.absPath(rel)); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directories for %s: %w", rel, err)
		}
	}
	m.tracked[rel] = struct{}{}
	return nil
}

// deleteFile untracks rel and removes it from disk.
func (m *Manager) deleteFile(rel string) error {
	delete(m.tracked, rel)
	delete(m.lines, rel)
	return os.Remove(m.absPath(rel))
}

// handleDelete reports whether the file was actually removed; a declined
// confirmation or a missing path is not an error, just not a deletion.
func (m *Manager) handleDelete(d change.Directive) (bool, error) {
	if _, err := os.Stat(m.absPath(d.File)); err != nil {
		m.printer.Warnf("Path %s non-existent on delete", d.File)
		return false, nil
	}
	ok, err := m.asker.AskYesNo(fmt.Sprintf("Are you sure you want to delete %s?", d.File), false)
	if err != nil {
		return false, err
	}
	if !ok {
		m.printer.Infof("Not deleting %s", d.File)
		return false, nil
	}
	m.printer.Infof("Deleting %s...", d.File)
	if err := m.deleteFile(d.File); err != nil {
		return false, err
	}
	return true, nil
}

// handleRename copies the session's lines for the old path to the new path,
// deletes the old path without re-confirming, and re-homes any queued
// directives so a rename plus further edits in one batch apply correctly.
func (m *Manager) handleRename(d change.Directive, groups *directiveGroups) error {
	if !m.Tracked(d.File) {
		return fmt.Errorf("%w: %s", ErrUntracked, d.File)
	}
	if err := m.addFile(d.NewName); err != nil {
		return err
	}
	if err := m.writeFile(d.NewName, m.lines[d.File]); err != nil {
		return fmt.Errorf("writing %s: %w", d.NewName, err)
	}
	if err := m.deleteFile(d.File); err != nil {
		return fmt.Errorf("removing %s: %w", d.File, err)
	}
	groups.rehome(d.File, d.NewName)
	lines, err := m.readFile(d.NewName)
	if err != nil {
		return err
	}
	m.lines[d.NewName] = lines
	return nil
}

// directiveGroups is a per-file grouping that preserves first-seen file
// order, since apply order across files should follow the reply.
type directiveGroups struct {
	order  []string
	byFile map[string][]change.Directive
}

func newDirectiveGroups() *directiveGroups {
	return &directiveGroups{byFile: make(map[string][]change.Directive)}
}

func (g *directiveGroups) add(rel string, d change.Directive) {
	if _, ok := g.byFile[rel]; !ok {
		g.order = append(g.order, rel)
	}
	g.byFile[rel] = append(g.byFile[rel], d)
}

func (g *directiveGroups) rehome(from, to string) {
	queued := g.byFile[from]
	if len(queued) == 0 {
		return
	}
	for _, d := range queued {
		d.File = to
		g.add(to, d)
	}
	g.byFile[from] = nil
}

// ApplyChanges performs a whole batch of directives. File-level actions
// (create, delete, rename) take effect immediately in reply order; the
// remaining line edits are grouped per file, conflict-resolved, applied and
// written back whole-file. Filesystem failures and declined staleness
// confirmations skip that file and continue; overlap and tracking violations
// abort the batch.
//
// The returned slice holds the directives that actually took effect, after
// conflict resolution: declined deletions, declined staleness overwrites and
// skipped files are absent from it.
func (m *Manager) ApplyChanges(directives []change.Directive) ([]change.Directive, error) {
	groups := newDirectiveGroups()
	var applied []change.Directive

	for _, d := range directives {
		switch d.Action {
		case change.CreateFile:
			m.printer.Successf("Creating new file %s", d.File)
			if err := m.addFile(d.File); err != nil {
				m.printer.Warnf("Skipping %s: %v", d.File, err)
				continue
			}
			if err := m.writeFile(d.File, d.CodeLines); err != nil {
				m.printer.Warnf("Skipping %s: %v", d.File, err)
				continue
			}
			m.lines[d.File] = append([]string(nil), d.CodeLines...)
			applied = append(applied, d)
		case change.DeleteFile:
			deleted, err := m.handleDelete(d)
			if err != nil {
				m.printer.Warnf("Skipping delete of %s: %v", d.File, err)
				continue
			}
			if deleted {
				applied = append(applied, d)
			}
		case change.RenameFile:
			if err := m.handleRename(d, groups); err != nil {
				if errors.Is(err, ErrUntracked) {
					return nil, err
				}
				m.printer.Warnf("Skipping rename of %s: %v", d.File, err)
				continue
			}
			applied = append(applied, d)
		default:
			groups.add(d.File, d)
		}
	}

	applicator := patch.Applicator{ReadLive: m.readFile, Asker: m.asker}
	for _, rel := range groups.order {
		queued := groups.byFile[rel]
		if len(queued) == 0 {
			continue
		}
		change.SortDescending(queued)
		resolved, err := resolve.Run(m.resolver, queued)
		if err != nil {
			return nil, err
		}
		if len(resolved) == 0 {
			continue
		}
		if !m.Tracked(rel) {
			return nil, fmt.Errorf("%w: attempted to edit %s", ErrUntracked, rel)
		}

		newLines, err := applicator.Apply(rel, m.lines[rel], resolved)
		switch {
		case errors.Is(err, patch.ErrStaleDeclined):
			m.printer.Warnf("Not applying changes to file %s.", rel)
			continue
		case errors.Is(err, patch.ErrOverlap):
			return nil, err
		case err != nil:
			m.printer.Warnf("Skipping %s: %v", rel, err)
			continue
		}
		if len(newLines) == 0 {
			continue
		}
		if err := m.writeFile(rel, newLines); err != nil {
			m.printer.Warnf("Skipping %s: %v", rel, err)
			continue
		}
		m.lines[rel] = newLines
		applied = append(applied, resolved...)
	}
	return applied, nil
}
