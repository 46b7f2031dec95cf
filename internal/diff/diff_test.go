package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleHunk(t *testing.T) {
	text := strings.Join([]string{
		"diff --git a/f.py b/f.py",
		"index 0000000..1111111 100644",
		"--- a/f.py",
		"+++ b/f.py",
		"@@ -2,2 +2,2 @@",
		" context",
		"-old line",
		"+new line",
	}, "\n")

	annotations, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, annotations, 1)
	assert.Equal(t, 2, annotations[0].Start)
	assert.Equal(t, []string{"-old line", "+new line"}, annotations[0].Message)
}

func TestParseMultipleHunksSorted(t *testing.T) {
	text := strings.Join([]string{
		"diff --git a/f.py b/f.py",
		"index 0000000..1111111 100644",
		"--- a/f.py",
		"+++ b/f.py",
		"@@ -10,1 +12,1 @@",
		"+later",
		"@@ -1,1 +1,1 @@",
		"-first",
		"+first!",
	}, "\n")

	annotations, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, annotations, 2)
	assert.Equal(t, 1, annotations[0].Start)
	assert.Equal(t, 12, annotations[1].Start)
}

func TestParseHeaderVariants(t *testing.T) {
	// Single-number ranges and "\ No newline at end of file" markers.
	text := strings.Join([]string{
		"diff --git a/f b/f",
		"index 0000000..1111111 100644",
		"--- a/f",
		"+++ b/f",
		"@@ -3 +4 @@",
		"+added",
		`\ No newline at end of file`,
	}, "\n")

	annotations, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, annotations, 1)
	assert.Equal(t, 4, annotations[0].Start)
	assert.Equal(t, []string{"+added"}, annotations[0].Message)
}

func TestParseTooShortIsEmpty(t *testing.T) {
	annotations, err := Parse("--- a/f\n+++ b/f\n")
	require.NoError(t, err)
	assert.Nil(t, annotations)
}

func TestParseContentBeforeHeader(t *testing.T) {
	text := strings.Join([]string{
		"diff --git a/f b/f",
		"index 0000000..1111111 100644",
		"--- a/f",
		"+++ b/f",
		"+orphan line",
	}, "\n")

	_, err := Parse(text)
	assert.ErrorIs(t, err, ErrMalformedDiff)
}

func TestParseBadHunkHeader(t *testing.T) {
	text := strings.Join([]string{
		"diff --git a/f b/f",
		"index 0000000..1111111 100644",
		"--- a/f",
		"+++ b/f",
		"@@ mangled header @@",
		"+x",
	}, "\n")

	_, err := Parse(text)
	assert.ErrorIs(t, err, ErrMalformedDiff)
}

func TestAnnotationLength(t *testing.T) {
	a := Annotation{Message: []string{"-gone", "+one", "+two"}}
	assert.Equal(t, 2, a.Length())
	assert.Equal(t, 0, Annotation{}.Length())
}

func TestWeaveReplacement(t *testing.T) {
	fileMessage := []string{"src/f.py", "1:a", "2:b", "3:c"}
	annotations := []Annotation{{Start: 2, Message: []string{"-old", "+b"}}}

	woven := Weave(fileMessage, annotations)
	assert.Equal(t, []string{"src/f.py", "1:a", "2:-old", "2:+b", "3:c"}, woven)
}

func TestWeaveInsertionShiftsTail(t *testing.T) {
	// Two lines added at line 2; retained lines after the hunk keep their
	// own (already renumbered) listing entries.
	fileMessage := []string{"src/f.py", "1:a", "2:new1", "3:new2", "4:b"}
	annotations := []Annotation{{Start: 2, Message: []string{"+new1", "+new2"}}}

	woven := Weave(fileMessage, annotations)
	assert.Equal(t, []string{"src/f.py", "1:a", "2:+new1", "3:+new2", "4:b"}, woven)
}

func TestWeaveRemovedLinesShareFollowingNumber(t *testing.T) {
	fileMessage := []string{"src/f.py", "1:a", "2:b", "3:z", "4:c"}
	annotations := []Annotation{{Start: 3, Message: []string{"-x", "-y", "+z"}}}

	woven := Weave(fileMessage, annotations)
	assert.Equal(t, []string{"src/f.py", "1:a", "2:b", "3:-x", "4:-y", "3:+z", "4:c"}, woven)
}

func TestWeaveStartZeroKeepsHeaderFirst(t *testing.T) {
	// A hunk that anchors to line 0 (pure deletion at the top) must not push
	// the path header off line one.
	fileMessage := []string{"src/f.py", "1:rest"}
	annotations := []Annotation{{Start: 0, Message: []string{"-gone"}}}

	woven := Weave(fileMessage, annotations)
	assert.Equal(t, "src/f.py", woven[0])
	assert.Contains(t, woven, "0:-gone")
	assert.Equal(t, "1:rest", woven[len(woven)-1])
}

func TestWeaveMultipleHunks(t *testing.T) {
	fileMessage := []string{"f", "1:a", "2:B", "3:c", "4:d", "5:E"}
	annotations := []Annotation{
		{Start: 2, Message: []string{"-b", "+B"}},
		{Start: 5, Message: []string{"-e", "+E"}},
	}

	woven := Weave(fileMessage, annotations)
	assert.Equal(t, []string{"f", "1:a", "2:-b", "2:+B", "3:c", "4:d", "5:-e", "5:+E"}, woven)
}

func TestWeaveHunksPastListingEnd(t *testing.T) {
	// A diff taken against a longer file can anchor hunks past the end of
	// the listing; consecutive such hunks must not fault on the copy-through.
	fileMessage := []string{"f.py", "1:a"}
	annotations := []Annotation{
		{Start: 5, Message: []string{"+x"}},
		{Start: 8, Message: []string{"+y"}},
	}

	woven := Weave(fileMessage, annotations)
	assert.Equal(t, []string{"f.py", "1:a", "5:+x", "8:+y"}, woven)
}

func TestWeaveNoAnnotationsIsIdentity(t *testing.T) {
	fileMessage := []string{"f", "1:a", "2:b"}
	woven := Weave(fileMessage, nil)
	assert.Equal(t, fileMessage, woven)
}
