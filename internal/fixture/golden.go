package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden runs a fixture and compares its snapshot against
// testdata/golden/{fixture.Name}.golden.
//
// Regenerate golden files with:
//
//	go test ./internal/fixture -update
func RunWithGolden(t *testing.T, f *Fixture) (*Result, error) {
	t.Helper()

	result, err := Run(f)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, f.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the golden file for name.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := result.Snapshot()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}

// GoldenPath returns the golden file for a fixture name inside dir.
func GoldenPath(dir, name string) string {
	return filepath.Join(dir, name+".golden")
}

// CompareGolden reports whether the golden file for r in dir matches its
// snapshot. A missing golden file is reported through os.ErrNotExist.
func CompareGolden(dir string, r *Result) (bool, error) {
	want, err := os.ReadFile(GoldenPath(dir, r.Name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, err
		}
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}

	got, err := r.Snapshot()
	if err != nil {
		return false, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return bytes.Equal(want, got), nil
}

// WriteGolden writes the snapshot of r as its golden file in dir.
func WriteGolden(dir string, r *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}

	data, err := r.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(GoldenPath(dir, r.Name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}
