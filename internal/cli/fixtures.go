package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/raffleverify/internal/fixture"
)

// FixturesOptions holds flags for the fixtures command.
type FixturesOptions struct {
	*RootOptions
	Filter string // fixture name glob
	Golden string // golden snapshot directory
	Update bool   // regenerate golden files
}

// FixtureOutcome is the result of a single fixture.
type FixtureOutcome struct {
	Name    string   `json:"name"`
	Pass    bool     `json:"pass"`
	Element string   `json:"element,omitempty"`
	Index   *int     `json:"index,omitempty"`
	Digest  string   `json:"digest,omitempty"` // hash of the result snapshot
	Errors  []string `json:"errors,omitempty"`
}

// FixturesResult holds the overall fixtures result.
type FixturesResult struct {
	Fixtures []FixtureOutcome `json:"fixtures"`
	Passed   int              `json:"passed"`
	Failed   int              `json:"failed"`
	Total    int              `json:"total"`
}

// NewFixturesCommand creates the fixtures command.
func NewFixturesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FixturesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fixtures <dir>",
		Short: "Run offline roll fixtures",
		Long: `Run every YAML roll fixture in a directory.

Each fixture pins a block hash, roll token, and candidate list together with
the expected selection. With --golden, each result is also compared against
<golden>/<name>.golden; --update rewrites those files instead.

Exit codes:
  0 - All fixtures passed
  1 - One or more fixtures failed
  2 - Command error (invalid directory, malformed fixture)

Examples:
  raffleverify fixtures ./fixtures
  raffleverify fixtures ./fixtures --filter "round_*"
  raffleverify fixtures ./fixtures --golden ./fixtures/golden --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixtures(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter fixtures by name glob")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "compare results with golden files in this directory")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files (requires --golden)")

	return cmd
}

func runFixtures(opts *FixturesOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Update && opts.Golden == "" {
		return commandError(formatter, ErrCodeConfig, "--update requires --golden", nil)
	}
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return commandError(formatter, ErrCodeConfig, "invalid filter pattern", err)
		}
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("fixtures directory not found: %s", dir), nil)
	}

	fixtures, err := fixture.LoadDir(dir)
	if err != nil {
		return commandError(formatter, ErrCodeParse, "failed to load fixtures", err)
	}

	result := FixturesResult{Fixtures: []FixtureOutcome{}}
	for _, f := range fixtures {
		if opts.Filter != "" {
			if matched, _ := filepath.Match(opts.Filter, f.Name); !matched {
				continue
			}
		}

		outcome := runFixture(opts, f)
		if opts.Format != "json" {
			writeFixtureOutcome(formatter, outcome)
		}

		result.Fixtures = append(result.Fixtures, outcome)
		result.Total++
		if outcome.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputFixturesJSON(formatter, result)
	}
	return outputFixturesText(formatter, result)
}

// runFixture runs one fixture and applies the golden comparison.
func runFixture(opts *FixturesOptions, f *fixture.Fixture) FixtureOutcome {
	outcome := FixtureOutcome{Name: f.Name}

	r, err := fixture.Run(f)
	if err != nil {
		outcome.Errors = []string{err.Error()}
		return outcome
	}
	if r.Err == nil {
		index := r.Roll.Index
		outcome.Element = r.Roll.Element
		outcome.Index = &index
	}
	outcome.Errors = r.Failures

	digest, err := r.Digest()
	if err != nil {
		outcome.Errors = append(outcome.Errors, err.Error())
	}
	outcome.Digest = digest

	switch {
	case opts.Golden == "":
	case opts.Update:
		if err := fixture.WriteGolden(opts.Golden, r); err != nil {
			outcome.Errors = append(outcome.Errors, err.Error())
		}
	default:
		match, err := fixture.CompareGolden(opts.Golden, r)
		switch {
		case errors.Is(err, os.ErrNotExist):
			outcome.Errors = append(outcome.Errors, "golden file missing (run with --update to create)")
		case err != nil:
			outcome.Errors = append(outcome.Errors, err.Error())
		case !match:
			outcome.Errors = append(outcome.Errors, "golden file mismatch (run with --update to regenerate)")
		}
	}

	outcome.Pass = len(outcome.Errors) == 0
	return outcome
}

func writeFixtureOutcome(formatter *OutputFormatter, o FixtureOutcome) {
	w := formatter.Writer
	if o.Pass {
		fmt.Fprintf(w, "✓ %s\n", o.Name)
	} else {
		fmt.Fprintf(w, "✗ %s\n", o.Name)
	}
	for _, e := range o.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	if o.Index != nil {
		formatter.VerboseLog("%s: index %d, element %q", o.Name, *o.Index, o.Element)
	}
	if o.Digest != "" {
		formatter.VerboseLog("%s: digest %s", o.Name, o.Digest)
	}
}

func outputFixturesJSON(formatter *OutputFormatter, result FixturesResult) error {
	var cliErr *CLIError
	if result.Failed > 0 {
		cliErr = &CLIError{
			Code:    "E_FIXTURE_FAILED",
			Message: fmt.Sprintf("%d fixture(s) failed", result.Failed),
		}
	}
	if err := formatter.Result(result, cliErr); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d fixture(s) failed", result.Failed))
	}
	return nil
}

func outputFixturesText(formatter *OutputFormatter, result FixturesResult) error {
	w := formatter.Writer
	if result.Total == 0 {
		fmt.Fprintln(w, "No fixtures found.")
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Fixture Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d fixture(s) failed", result.Failed))
	}
	fmt.Fprintln(w, "✓ All fixtures passed")
	return nil
}
