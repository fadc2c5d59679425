package verify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/raffleverify/internal/canon"
)

// Check names, in execution order.
const (
	CheckHeight    = "height"
	CheckTimestamp = "timestamp"
	CheckBlockHash = "block_hash"
	CheckRoundType = "round_type"
	CheckWinner    = "winner"
)

var checkOrder = []string{CheckHeight, CheckTimestamp, CheckBlockHash, CheckRoundType, CheckWinner}

var checkTitles = map[string]string{
	CheckHeight:    "Validating XMR height exists",
	CheckTimestamp: "Validating height matches timestamp",
	CheckBlockHash: "Validating height matches block hash",
	CheckRoundType: "Validating round_type",
	CheckWinner:    "Validating winner",
}

// Title returns the human-readable label for a check name.
func Title(name string) string {
	if t, ok := checkTitles[name]; ok {
		return t
	}
	return name
}

// Check is the outcome of one verification step.
type Check struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected,omitempty"`
	Reported string `json:"reported,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Report is the full result of a verification run.
type Report struct {
	RunID     string    `json:"run_id"`
	Height    int64     `json:"height"`
	Hash      string    `json:"hash,omitempty"`
	Checks    []Check   `json:"checks"`
	Passed    bool      `json:"passed"`
	Digest    string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
}

// Failed returns the first failed check, if any.
func (r *Report) Failed() (Check, bool) {
	for _, c := range r.Checks {
		if !c.Passed {
			return c, true
		}
	}
	return Check{}, false
}

// canonicalMap is the content the digest covers. Run ID and creation time
// are excluded so that two runs over the same data share a digest.
func (r *Report) canonicalMap() map[string]any {
	checks := make([]any, len(r.Checks))
	for i, c := range r.Checks {
		m := map[string]any{
			"name":   c.Name,
			"passed": c.Passed,
		}
		if c.Expected != "" {
			m["expected"] = c.Expected
		}
		if c.Reported != "" {
			m["reported"] = c.Reported
		}
		if c.Message != "" {
			m["message"] = c.Message
		}
		checks[i] = m
	}
	return map[string]any{
		"height": r.Height,
		"hash":   r.Hash,
		"checks": checks,
		"passed": r.Passed,
	}
}

// ComputeDigest returns the canonical digest of the report content.
func (r *Report) ComputeDigest() (string, error) {
	return canon.Digest(canon.DomainReport, r.canonicalMap())
}

// CanonicalJSON returns the canonical encoding of the whole report, including
// run ID and digest, for storage.
func (r *Report) CanonicalJSON() ([]byte, error) {
	m := r.canonicalMap()
	m["run_id"] = r.RunID
	m["digest"] = r.Digest
	m["created_at"] = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	data, err := canon.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}

// DecodeReport parses a stored report.
func DecodeReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
