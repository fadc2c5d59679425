package store

import (
	"path/filepath"
	"testing"
	"time"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestVerification creates a verification with minimal required fields.
func createTestVerification(id string, height int64, passed bool, createdAt time.Time) Verification {
	return Verification{
		ID:        id,
		Digest:    "digest-" + id,
		Height:    height,
		Passed:    passed,
		Report:    `{"height":0}`,
		CreatedAt: createdAt,
	}
}
