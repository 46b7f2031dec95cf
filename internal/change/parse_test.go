package change

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionNormalizesCase(t *testing.T) {
	tests := []struct {
		token string
		want  Action
	}{
		{"insert", Insert},
		{"Insert", Insert},
		{"replace", Replace},
		{"delete", Delete},
		{"create-file", CreateFile},
		{"CreateFile", CreateFile},
		{"create_file", CreateFile},
		{"delete-file", DeleteFile},
		{"rename-file", RenameFile},
		{"RenameFile", RenameFile},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.token)
		require.NoError(t, err, tt.token)
		assert.Equal(t, tt.want, got, tt.token)
	}
}

func TestParseActionUnknown(t *testing.T) {
	_, err := ParseAction("explode")
	assert.ErrorIs(t, err, ErrMalformedDirective)
}

func TestParseResponseInsertAfter(t *testing.T) {
	response := `Adding a greeting to the script.

@@start
{
    "file": "hello.py",
    "action": "insert",
    "insert-after-line": 2
}
@@code
print("Hello")
@@end
`
	directives, err := ParseResponse(response)
	require.NoError(t, err)
	require.Len(t, directives, 1)

	d := directives[0]
	assert.Equal(t, Insert, d.Action)
	assert.Equal(t, "hello.py", d.File)
	assert.Equal(t, 2.5, d.FirstChangedLine)
	assert.Equal(t, 2.5, d.LastChangedLine)
	assert.Equal(t, []string{`print("Hello")`}, d.CodeLines)
}

func TestParseResponseInsertBefore(t *testing.T) {
	response := `@@start
{"file": "a.go", "action": "insert", "insert-before-line": 1}
@@code
package a
@@end`
	directives, err := ParseResponse(response)
	require.NoError(t, err)
	require.Len(t, directives, 1)
	assert.Equal(t, 0.5, directives[0].FirstChangedLine)
}

func TestParseResponseInsertAfterZero(t *testing.T) {
	// insert-after-line 0 is the top of the file.
	response := `@@start
{"file": "a.go", "action": "insert", "insert-after-line": 0}
@@code
package a
@@end`
	directives, err := ParseResponse(response)
	require.NoError(t, err)
	require.Len(t, directives, 1)
	assert.Equal(t, 0.5, directives[0].FirstChangedLine)
}

func TestParseResponseReplaceAndDelete(t *testing.T) {
	response := `First the replacement:

@@start
{"file": "x.go", "action": "replace", "start-line": 3, "end-line": 5}
@@code
replaced
@@end

then the deletion:

@@start
{"file": "x.go", "action": "delete", "start-line": 9, "end-line": 9}
@@end
`
	directives, err := ParseResponse(response)
	require.NoError(t, err)
	require.Len(t, directives, 2)

	assert.Equal(t, Replace, directives[0].Action)
	assert.Equal(t, 3.0, directives[0].FirstChangedLine)
	assert.Equal(t, 5.0, directives[0].LastChangedLine)
	assert.Equal(t, []string{"replaced"}, directives[0].CodeLines)

	assert.Equal(t, Delete, directives[1].Action)
	assert.Equal(t, 9.0, directives[1].FirstChangedLine)
	assert.Nil(t, directives[1].CodeLines)
}

func TestParseResponseFileLifecycle(t *testing.T) {
	response := `@@start
{"file": "new.go", "action": "create-file"}
@@code
package new
@@end
@@start
{"file": "old.go", "action": "delete-file"}
@@end
@@start
{"file": "before.go", "action": "rename-file", "name": "after.go"}
@@end`
	directives, err := ParseResponse(response)
	require.NoError(t, err)
	require.Len(t, directives, 3)

	assert.Equal(t, CreateFile, directives[0].Action)
	assert.Equal(t, []string{"package new"}, directives[0].CodeLines)
	assert.Equal(t, DeleteFile, directives[1].Action)
	assert.Equal(t, RenameFile, directives[2].Action)
	assert.Equal(t, "before.go", directives[2].File)
	assert.Equal(t, "after.go", directives[2].NewName)
}

func TestParseResponseEmptyCodeSection(t *testing.T) {
	// A create-file with an empty code section makes an empty file. The
	// separator alone is enough to count as "has code".
	response := `@@start
{"file": "empty.go", "action": "create-file"}
@@code
@@end`
	directives, err := ParseResponse(response)
	require.NoError(t, err)
	require.Len(t, directives, 1)
	assert.NotNil(t, directives[0].CodeLines)
	assert.Empty(t, directives[0].CodeLines)
}

func TestParseResponseCodeLinesAreVerbatim(t *testing.T) {
	response := "@@start\n" +
		`{"file": "w.py", "action": "insert", "insert-after-line": 1}` + "\n" +
		"@@code\n" +
		"    indented\n" +
		"\n" +
		"\ttabbed\n" +
		"@@end"
	directives, err := ParseResponse(response)
	require.NoError(t, err)
	require.Len(t, directives, 1)
	assert.Equal(t, []string{"    indented", "", "\ttabbed"}, directives[0].CodeLines)
}

func TestParseResponseIgnoresProse(t *testing.T) {
	directives, err := ParseResponse("Just chatting, no edits here.")
	require.NoError(t, err)
	assert.Empty(t, directives)
}

func TestParseResponseMalformed(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{
			"unterminated block",
			"@@start\n{\"file\": \"a\", \"action\": \"delete\", \"start-line\": 1, \"end-line\": 1}\n",
		},
		{
			"end without start",
			"@@end\n",
		},
		{
			"nested start",
			"@@start\n@@start\n@@end\n",
		},
		{
			"invalid json",
			"@@start\nnot json\n@@end\n",
		},
		{
			"missing file",
			"@@start\n{\"action\": \"delete\", \"start-line\": 1, \"end-line\": 1}\n@@end\n",
		},
		{
			"missing action",
			"@@start\n{\"file\": \"a.go\"}\n@@end\n",
		},
		{
			"unknown action",
			"@@start\n{\"file\": \"a.go\", \"action\": \"truncate\"}\n@@end\n",
		},
		{
			"insert without position",
			"@@start\n{\"file\": \"a.go\", \"action\": \"insert\"}\n@@code\nx\n@@end\n",
		},
		{
			"insert without code",
			"@@start\n{\"file\": \"a.go\", \"action\": \"insert\", \"insert-after-line\": 1}\n@@end\n",
		},
		{
			"replace without code",
			"@@start\n{\"file\": \"a.go\", \"action\": \"replace\", \"start-line\": 1, \"end-line\": 1}\n@@end\n",
		},
		{
			"replace without range",
			"@@start\n{\"file\": \"a.go\", \"action\": \"replace\"}\n@@code\nx\n@@end\n",
		},
		{
			"inverted range",
			"@@start\n{\"file\": \"a.go\", \"action\": \"delete\", \"start-line\": 5, \"end-line\": 2}\n@@end\n",
		},
		{
			"rename without name",
			"@@start\n{\"file\": \"a.go\", \"action\": \"rename-file\"}\n@@end\n",
		},
		{
			"negative insert-after-line",
			"@@start\n{\"file\": \"a.go\", \"action\": \"insert\", \"insert-after-line\": -1}\n@@code\nx\n@@end\n",
		},
		{
			"insert-before-line zero",
			"@@start\n{\"file\": \"a.go\", \"action\": \"insert\", \"insert-before-line\": 0}\n@@code\nx\n@@end\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.response)
			assert.ErrorIs(t, err, ErrMalformedDirective)
		})
	}
}
