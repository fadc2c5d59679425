package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/raffleverify/internal/store"
	"github.com/roach88/raffleverify/internal/verify"
)

func seedHistory(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []store.Verification{
		{ID: "run-a", Digest: "aaaaaaaaaaaaaaaa", Height: 100, Passed: true, Report: `{"height":100,"checks":[]}`, CreatedAt: base},
		{ID: "run-b", Digest: "bbbbbbbbbbbbbbbb", Height: 200, Passed: false,
			Report: `{"height":200,"checks":[{"name":"height","passed":true},{"name":"timestamp","passed":false}]}`, CreatedAt: base.Add(time.Hour)},
		{ID: "run-c", Digest: "cccccccccccccccc", Height: 100, Passed: true, Report: `{"height":100,"checks":[]}`, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, v := range rows {
		require.NoError(t, st.WriteVerification(context.Background(), v))
	}
	return dbPath
}

func executeHistory(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistoryText(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeHistory(t, "text", "--cache-db", dbPath)
	require.NoError(t, err)

	assert.Equal(t, ""+
		"✓ 100  2024-03-01T02:00:00Z  run-c  cccccccccccc\n"+
		"✗ 200  2024-03-01T01:00:00Z  run-b  bbbbbbbbbbbb failed timestamp\n"+
		"✓ 100  2024-03-01T00:00:00Z  run-a  aaaaaaaaaaaa\n", out)
}

func TestHistoryLimitAndHeight(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeHistory(t, "json", "--cache-db", dbPath, "--height", "100", "--limit", "1")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   []HistoryEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "run-c", resp.Data[0].RunID)
	assert.Equal(t, int64(100), resp.Data[0].Height)
}

func TestHistoryEmpty(t *testing.T) {
	out, err := executeHistory(t, "text", "--cache-db", filepath.Join(t.TempDir(), "new.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "No verifications recorded.")
}

func TestHistoryBadDatabase(t *testing.T) {
	out, err := executeHistory(t, "text", "--cache-db", filepath.Join(t.TempDir(), "missing", "dir", "cache.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E007]")
}

func TestHistoryHeightUsesFilteredQuery(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeHistory(t, "text", "--cache-db", dbPath, "--height", "100")
	require.NoError(t, err)
	assert.Equal(t, ""+
		"✓ 100  2024-03-01T02:00:00Z  run-c  cccccccccccc\n"+
		"✓ 100  2024-03-01T00:00:00Z  run-a  aaaaaaaaaaaa\n", out)

	out, err = executeHistory(t, "text", "--cache-db", dbPath, "--height", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "No verifications recorded.")
}

func TestHistoryShowMatchesVerifyOutput(t *testing.T) {
	srv := newRaffleServer(t, "40000005ZZZZZZZZ", "solo")
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	live, err := executeVerify(t, "text", verifyArgs(srv, dbPath))
	require.NoError(t, err)

	shown, err := executeHistory(t, "text", "--cache-db", dbPath, "--show", "run-1", "--no-color")
	require.NoError(t, err)
	assert.Equal(t, live, shown)
}

func TestHistoryShowJSON(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeHistory(t, "json", "--cache-db", dbPath, "--show", "run-b")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   verify.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(200), resp.Data.Height)
	require.Len(t, resp.Data.Checks, 2)
	assert.Equal(t, "timestamp", resp.Data.Checks[1].Name)
}

func TestHistoryShowUnknownRun(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := executeHistory(t, "text", "--cache-db", dbPath, "--show", "run-z")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
	assert.Contains(t, out, "run-z")
}
