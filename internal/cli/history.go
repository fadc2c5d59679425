package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/raffleverify/internal/store"
	"github.com/roach88/raffleverify/internal/verify"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	CacheDB string
	Limit   int
	Height  int64
	Show    string
	NoColor bool
}

// HistoryEntry is one stored verification.
type HistoryEntry struct {
	RunID     string    `json:"run_id"`
	Height    int64     `json:"height"`
	Passed    bool      `json:"passed"`
	Digest    string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
	Failed    string    `json:"failed_check,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded verifications",
		Long: `List verification reports recorded in the cache database, newest first.

With --show, print one recorded report in full.

Examples:
  raffleverify history
  raffleverify history --limit 5 --format json
  raffleverify history --height 3100000
  raffleverify history --show 0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.CacheDB, "cache-db", "", "path to SQLite cache (env RAFFLE_CACHE_DB)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of reports (0 for all)")
	cmd.Flags().Int64Var(&opts.Height, "height", 0, "only show reports for this height")
	cmd.Flags().StringVar(&opts.Show, "show", "", "print the full report for this run ID")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "disable coloured pass/fail marks")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	st, _, err := openCache(formatter, opts.CacheDB)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.Show != "" {
		return showVerification(opts, formatter, st, cmd)
	}

	var rows []store.Verification
	if opts.Height != 0 {
		rows, err = st.ListVerificationsAtHeight(ctx, opts.Height, opts.Limit)
	} else {
		rows, err = st.ListVerifications(ctx, opts.Limit)
	}
	if err != nil {
		return commandError(formatter, ErrCodeCache, "failed to list verifications", err)
	}

	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry := HistoryEntry{
			RunID:     row.ID,
			Height:    row.Height,
			Passed:    row.Passed,
			Digest:    row.Digest,
			CreatedAt: row.CreatedAt,
		}
		report, err := verify.DecodeReport([]byte(row.Report))
		if err != nil {
			formatter.VerboseLog("Cannot decode report %s: %v", row.ID, err)
		} else if failed, ok := report.Failed(); ok {
			entry.Failed = failed.Name
		}
		entries = append(entries, entry)
	}

	if opts.Format == "json" {
		return formatter.Success(entries)
	}

	w := formatter.Writer
	if len(entries) == 0 {
		fmt.Fprintln(w, "No verifications recorded.")
		return nil
	}
	for _, e := range entries {
		mark := "✓"
		detail := ""
		if !e.Passed {
			mark = "✗"
			if e.Failed != "" {
				detail = " failed " + e.Failed
			}
		}
		fmt.Fprintf(w, "%s %d  %s  %s  %.12s%s\n",
			mark, e.Height, e.CreatedAt.UTC().Format(time.RFC3339), e.RunID, e.Digest, detail)
	}
	return nil
}

// showVerification prints one stored report the way verify prints a fresh
// one.
func showVerification(opts *HistoryOptions, formatter *OutputFormatter, st *store.Store, cmd *cobra.Command) error {
	row, err := st.ReadVerification(commandContext(cmd), opts.Show)
	if errors.Is(err, store.ErrNotFound) {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("no verification with run ID %s", opts.Show), nil)
	}
	if err != nil {
		return commandError(formatter, ErrCodeCache, "failed to read verification", err)
	}

	report, err := verify.DecodeReport([]byte(row.Report))
	if err != nil {
		return commandError(formatter, ErrCodeCache, "failed to decode stored report", err)
	}

	if opts.Format == "json" {
		return formatter.Success(report)
	}
	verify.WriteText(formatter.Writer, report, !opts.NoColor)
	return nil
}
