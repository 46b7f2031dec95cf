// Package console owns the interactive surface of the engine: styled
// terminal reporting and the blocking yes/no confirmation capability that
// destructive operations require.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Adaptive styles for operation reporting.
var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2980b9", Dark: "#3498db"})
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#16a085", Dark: "#2ecc71"})
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#d35400", Dark: "#f1c40f"})
	dangerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#c0392b", Dark: "#e74c3c"})
	promptStyle  = lipgloss.NewStyle().Bold(true)
)

// ConfigureColor applies the configured color mode: "never" strips styling,
// "always" keeps whatever the terminal supports, and anything else ("auto")
// strips styling when stdout is not a terminal.
func ConfigureColor(mode string) {
	switch mode {
	case "always":
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	}
}

// Printer writes styled status lines. The zero value is unusable; construct
// with NewPrinter.
type Printer struct {
	Out io.Writer
}

func NewPrinter(out io.Writer) Printer {
	if out == nil {
		out = os.Stdout
	}
	return Printer{Out: out}
}

func (p Printer) Infof(format string, args ...any) {
	fmt.Fprintln(p.Out, infoStyle.Render(fmt.Sprintf(format, args...)))
}

func (p Printer) Successf(format string, args ...any) {
	fmt.Fprintln(p.Out, successStyle.Render(fmt.Sprintf(format, args...)))
}

func (p Printer) Warnf(format string, args ...any) {
	fmt.Fprintln(p.Out, warnStyle.Render(fmt.Sprintf(format, args...)))
}

func (p Printer) Dangerf(format string, args ...any) {
	fmt.Fprintln(p.Out, dangerStyle.Render(fmt.Sprintf(format, args...)))
}

// Asker is the injected confirmation capability. Implementations block until
// a decision is available; "no answer" must come back as the safe choice.
type Asker interface {
	AskYesNo(prompt string, defaultYes bool) (bool, error)
}

// Terminal asks on the controlling terminal with a blocking line read. When
// stdin is not a terminal the stated default is returned without prompting,
// so non-interactive runs never hang and never take a destructive action the
// default would not.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

func (t *Terminal) AskYesNo(prompt string, defaultYes bool) (bool, error) {
	if f, ok := t.In.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return defaultYes, nil
	}
	hint := "(y/N)"
	if defaultYes {
		hint = "(Y/n)"
	}
	if t.reader == nil {
		t.reader = bufio.NewReader(t.In)
	}
	for {
		fmt.Fprintf(t.Out, "%s %s ", promptStyle.Render(prompt), hint)
		line, err := t.reader.ReadString('\n')
		if err != nil {
			// Interrupted or closed input counts as "no".
			return false, nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// Scripted replays canned answers and then falls back to "no". It backs
// tests and non-interactive callers that pre-decide confirmations.
type Scripted struct {
	Answers []bool
	next    int
	// Prompts records every question asked, in order.
	Prompts []string
}

func (s *Scripted) AskYesNo(prompt string, defaultYes bool) (bool, error) {
	s.Prompts = append(s.Prompts, prompt)
	if s.next >= len(s.Answers) {
		return false, nil
	}
	answer := s.Answers[s.next]
	s.next++
	return answer, nil
}
