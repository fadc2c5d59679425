package verify

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func goldenReport(passed bool) *Report {
	r := &Report{
		RunID:  "test-run-default",
		Height: 3100000,
		Hash:   "abcdef123456",
		Digest: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		Checks: []Check{
			{Name: CheckHeight, Passed: true},
			{Name: CheckTimestamp, Passed: true},
		},
	}
	if passed {
		r.Checks = append(r.Checks,
			Check{Name: CheckBlockHash, Passed: true},
			Check{Name: CheckRoundType, Passed: true},
			Check{Name: CheckWinner, Passed: true},
		)
		r.Passed = true
		return r
	}
	r.Checks = append(r.Checks, Check{
		Name:    CheckBlockHash,
		Message: "Reported XMR blockhash (ffffff123456) is different from actual blockhash at height 3100000 (abcdef123456).",
	})
	return r
}

func TestWriteText_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	var passed bytes.Buffer
	WriteText(&passed, goldenReport(true), false)
	g.Assert(t, "report_passed", passed.Bytes())

	var failed bytes.Buffer
	WriteText(&failed, goldenReport(false), false)
	g.Assert(t, "report_failed", failed.Bytes())
}

func TestMark(t *testing.T) {
	assert.Equal(t, "✓", Mark(true, false))
	assert.Equal(t, "✗", Mark(false, false))
	assert.Equal(t, "\x1b[32m✓\x1b[0m", Mark(true, true))
	assert.Equal(t, "\x1b[31m✗\x1b[0m", Mark(false, true))
}

func TestWriteCheck_OmitsMessageOnPass(t *testing.T) {
	var buf bytes.Buffer
	WriteCheck(&buf, Check{Name: CheckWinner, Passed: true, Message: "ignored"}, false)
	assert.Equal(t, "Validating winner... ✓\n", buf.String())
}

func TestTitle_Unknown(t *testing.T) {
	assert.Equal(t, "custom", Title("custom"))
}
