package fixture

import (
	"errors"
	"fmt"

	"github.com/roach88/raffleverify/internal/canon"
	"github.com/roach88/raffleverify/internal/roller"
)

// Result is the outcome of running one fixture.
type Result struct {
	Name string

	// Roll is the selection, zero when the roll failed.
	Roll roller.Result

	// Err is the roll error, if any.
	Err error

	// Pass reports whether every expectation held.
	Pass bool

	// Failures lists each expectation that did not hold.
	Failures []string
}

// Run executes a fixture and compares the outcome with its expectations.
// A fixture without expectations passes whenever the roll succeeds.
//
// The returned error is reserved for problems preparing the fixture, such
// as an unreadable candidates file.
func Run(f *Fixture) (*Result, error) {
	candidates, err := f.CandidateList()
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", f.Name, err)
	}

	r := &Result{Name: f.Name}
	r.Roll, r.Err = roller.Roll(f.Hash, f.Roll, candidates)
	r.Failures = compare(f.Expect, r)
	r.Pass = len(r.Failures) == 0
	return r, nil
}

func compare(exp *Expect, r *Result) []string {
	var failures []string

	wantErr := ""
	if exp != nil {
		wantErr = exp.Error
	}
	gotErr := errorKind(r.Err)

	switch {
	case wantErr != "" && gotErr == "":
		return append(failures, fmt.Sprintf("expected error %s, roll selected index %d", wantErr, r.Roll.Index))
	case wantErr != "" && gotErr != wantErr:
		return append(failures, fmt.Sprintf("expected error %s, got %v", wantErr, r.Err))
	case wantErr != "":
		return nil
	case r.Err != nil:
		return append(failures, fmt.Sprintf("unexpected error: %v", r.Err))
	}

	if exp == nil {
		return nil
	}
	if exp.Index != nil && *exp.Index != r.Roll.Index {
		failures = append(failures, fmt.Sprintf("index: expected %d, got %d", *exp.Index, r.Roll.Index))
	}
	if exp.Element != nil && *exp.Element != r.Roll.Element {
		failures = append(failures, fmt.Sprintf("element: expected %q, got %q", *exp.Element, r.Roll.Element))
	}
	return failures
}

// errorKind maps a roll error onto the expect.error vocabulary.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, roller.ErrInvalidSeed):
		return ErrorInvalidSeed
	case errors.Is(err, roller.ErrEmptyCandidateList):
		return ErrorEmptyCandidates
	default:
		return "unknown"
	}
}

// Snapshot returns the canonical JSON form of a result. Snapshots are the
// content of golden files; they hold only values derived from the fixture,
// so they are byte-stable across runs.
func (r *Result) Snapshot() ([]byte, error) {
	return canon.Marshal(r.snapshotMap())
}

// Digest returns the domain-separated hash of the snapshot. It equals
// canon.HashBytes(canon.DomainFixture, golden) for a matching golden file.
func (r *Result) Digest() (string, error) {
	return canon.Digest(canon.DomainFixture, r.snapshotMap())
}

func (r *Result) snapshotMap() map[string]any {
	m := map[string]any{
		"name": r.Name,
		"pass": r.Pass,
	}
	if r.Err != nil {
		m["error"] = errorKind(r.Err)
	} else {
		m["seed_string"] = r.Roll.SeedString
		m["seed"] = r.Roll.Seed
		m["raw"] = r.Roll.Raw
		m["index"] = r.Roll.Index
		m["element"] = r.Roll.Element
	}
	if len(r.Failures) > 0 {
		m["failures"] = r.Failures
	}
	return m
}
