package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedReplaysAnswers(t *testing.T) {
	s := &Scripted{Answers: []bool{true, false}}

	ok, err := s.AskYesNo("first?", false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AskYesNo("second?", true)
	require.NoError(t, err)
	assert.False(t, ok)

	// Exhausted answers fall back to "no" regardless of the default.
	ok, err = s.AskYesNo("third?", true)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{"first?", "second?", "third?"}, s.Prompts)
}

func askWith(t *testing.T, input string, defaultYes bool) bool {
	t.Helper()
	term := &Terminal{In: strings.NewReader(input), Out: &bytes.Buffer{}}
	ok, err := term.AskYesNo("continue?", defaultYes)
	require.NoError(t, err)
	return ok
}

func TestTerminalAnswers(t *testing.T) {
	assert.True(t, askWith(t, "y\n", false))
	assert.True(t, askWith(t, "YES\n", false))
	assert.False(t, askWith(t, "n\n", true))
	assert.False(t, askWith(t, "No\n", true))
}

func TestTerminalEmptyLineTakesDefault(t *testing.T) {
	assert.True(t, askWith(t, "\n", true))
	assert.False(t, askWith(t, "\n", false))
}

func TestTerminalReasksOnNoise(t *testing.T) {
	assert.True(t, askWith(t, "what\ny\n", false))
}

func TestTerminalClosedInputIsNo(t *testing.T) {
	assert.False(t, askWith(t, "", true))
}

func TestTerminalConsecutiveAsks(t *testing.T) {
	term := &Terminal{In: strings.NewReader("y\nn\n"), Out: &bytes.Buffer{}}

	ok, err := term.AskYesNo("first?", false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = term.AskYesNo("second?", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTerminalWritesPromptWithHint(t *testing.T) {
	out := &bytes.Buffer{}
	term := &Terminal{In: strings.NewReader("\n"), Out: out}

	_, err := term.AskYesNo("delete it?", false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "delete it?")
	assert.Contains(t, out.String(), "(y/N)")
}

func TestPrinterWritesStyledLines(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewPrinter(out)

	p.Infof("status %d", 1)
	p.Warnf("careful")

	assert.Contains(t, out.String(), "status 1")
	assert.Contains(t, out.String(), "careful")
}
