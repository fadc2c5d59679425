package verify

import (
	"fmt"
	"io"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Mark returns the pass/fail glyph, coloured when color is set.
func Mark(passed, color bool) string {
	switch {
	case passed && color:
		return ansiGreen + "✓" + ansiReset
	case passed:
		return "✓"
	case color:
		return ansiRed + "✗" + ansiReset
	default:
		return "✗"
	}
}

// WriteCheck writes one "<title>... <mark>" line, followed by the failure
// message when the check failed.
func WriteCheck(w io.Writer, c Check, color bool) {
	fmt.Fprintf(w, "%s... %s\n", Title(c.Name), Mark(c.Passed, color))
	if !c.Passed && c.Message != "" {
		fmt.Fprintln(w, c.Message)
	}
}

// WriteText renders a full report: each executed check, any checks that
// were skipped after a failure, and a summary line.
func WriteText(w io.Writer, r *Report, color bool) {
	for _, c := range r.Checks {
		WriteCheck(w, c, color)
	}
	WriteSkipped(w, r)
	WriteSummary(w, r)
}

// WriteSkipped lists the checks that never ran because an earlier one
// failed.
func WriteSkipped(w io.Writer, r *Report) {
	if len(r.Checks) >= len(checkOrder) {
		return
	}
	for _, name := range checkOrder[len(r.Checks):] {
		fmt.Fprintf(w, "%s... skipped\n", Title(name))
	}
}

// WriteSummary writes the closing line of a report.
func WriteSummary(w io.Writer, r *Report) {
	status := "FAILED"
	if r.Passed {
		status = "PASSED"
	}
	fmt.Fprintf(w, "\nheight %d: %s (run %s, digest %.12s)\n", r.Height, status, r.RunID, r.Digest)
}
