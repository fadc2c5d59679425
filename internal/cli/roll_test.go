package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/raffleverify/internal/testutil"
)

func executeRoll(t *testing.T, rootOpts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRollCommand(rootOpts)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRollArgs(t *testing.T) {
	out, _, err := executeRoll(t, &RootOptions{Format: "text"}, "abcdef123456", "pool", "pplns", "solo")
	require.NoError(t, err)
	assert.Equal(t, "solo\n", out)
}

func TestRollToken(t *testing.T) {
	out, _, err := executeRoll(t, &RootOptions{Format: "text"},
		"d4f1c7ea9b02", "--token", "12", "a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
	require.NoError(t, err)
	assert.Equal(t, "a\n", out)
}

func TestRollVerbose(t *testing.T) {
	out, errOut, err := executeRoll(t, &RootOptions{Format: "text", Verbose: true},
		"0", "a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
	require.NoError(t, err)
	assert.Equal(t, "f\n", out)
	assert.Contains(t, errOut, "Seed string: 01")
	assert.Contains(t, errOut, "Seed: 1")
	assert.Contains(t, errOut, "Raw output: 1791095845")
	assert.Contains(t, errOut, "Index: 5 of 10")
}

func TestRollJSON(t *testing.T) {
	out, _, err := executeRoll(t, &RootOptions{Format: "json"}, "157", "a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   RollOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "157", resp.Data.Hash)
	assert.Equal(t, "1", resp.Data.Token)
	assert.Equal(t, 10, resp.Data.Candidates)
	assert.Equal(t, uint32(5489), resp.Data.Result.Seed)
	assert.Equal(t, uint32(3499211612), resp.Data.Result.Raw)
	assert.Equal(t, 2, resp.Data.Result.Index)
	assert.Equal(t, "c", resp.Data.Result.Element)
}

func TestRollFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\r\nb\r\nc\r\nd\r\ne\r\nf\r\ng\r\nh\r\ni\r\nj\r\n"), 0o644))

	out, _, err := executeRoll(t, &RootOptions{Format: "text"}, "abcdef123456", "--token", "3", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "j\n", out)
}

func TestRollURL(t *testing.T) {
	srv := testutil.NewServer(t, map[string]string{"/types.txt": "pool\npplns\nsolo\n"})

	out, _, err := executeRoll(t, &RootOptions{Format: "text"}, "0", "--url", srv.URL+"/types.txt")
	require.NoError(t, err)
	assert.Equal(t, "pplns\n", out)
	assert.Equal(t, 1, srv.Hits("/types.txt"))
}

func TestRollURLNotFound(t *testing.T) {
	srv := testutil.NewServer(t, nil)

	out, _, err := executeRoll(t, &RootOptions{Format: "text"}, "0", "--url", srv.URL+"/types.txt")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")
}

func TestRollErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"no candidates", []string{"abc"}, ErrCodeConfig},
		{"two sources", []string{"abc", "x", "--file", "list.txt"}, ErrCodeConfig},
		{"missing file", []string{"abc", "--file", "/nonexistent/list.txt"}, ErrCodeNotFound},
		{"invalid hash", []string{"xyz", "a", "b"}, ErrCodeRoll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := executeRoll(t, &RootOptions{Format: "json"}, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestRollEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	out, _, err := executeRoll(t, &RootOptions{Format: "text"}, "abc", "--file", path)
	require.Error(t, err)
	assert.Contains(t, out, "Error [E006]")
	assert.Contains(t, out, "empty")
}

func TestRollMissingHash(t *testing.T) {
	_, _, err := executeRoll(t, &RootOptions{Format: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
