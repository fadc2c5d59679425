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
)

func executeCache(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewCacheCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCacheClear(t *testing.T) {
	dbPath := seedHistory(t)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	for _, url := range []string{"https://example.test/winners.txt", "https://example.test/round-type-list.txt"} {
		require.NoError(t, st.PutResponse(ctx, store.Response{URL: url, Body: []byte("x"), FetchedAt: time.Unix(1, 0)}))
	}
	require.NoError(t, st.Close())

	out, err := executeCache(t, "json", "clear", "--cache-db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   CacheClearResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(2), resp.Data.Removed)
	assert.Equal(t, dbPath, resp.Data.Path)

	st, err = store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.GetResponse(ctx, "https://example.test/winners.txt")
	assert.ErrorIs(t, err, store.ErrNotFound)

	history, err := st.ListVerifications(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 3, "history survives a cache clear")
}

func TestCacheClearText(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	out, err := executeCache(t, "text", "clear", "--cache-db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "Removed 0 cached responses from "+dbPath+"\n", out)
}

func TestCacheClearBadDatabase(t *testing.T) {
	out, err := executeCache(t, "text", "clear", "--cache-db", filepath.Join(t.TempDir(), "missing", "dir", "cache.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E007]")
}
