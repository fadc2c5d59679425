package cli

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/raffleverify/internal/config"
	"github.com/roach88/raffleverify/internal/explorer"
	"github.com/roach88/raffleverify/internal/fetch"
	"github.com/roach88/raffleverify/internal/store"
	"github.com/roach88/raffleverify/internal/verify"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Height         int64
	Explorer       string
	WinnersURL     string
	RoundTypesURL  string
	PlayerListsURL string
	CacheDB        string
	NoCache        bool
	NoColor        bool

	// IDs overrides the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs verify.IDGenerator

	// Clock overrides the wall clock (for testing).
	Clock fetch.Clock
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return newVerifyCommand(&VerifyOptions{RootOptions: rootOpts})
}

func newVerifyCommand(opts *VerifyOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a published raffle result",
		Long: `Verify one row of the recent winners list against the blockchain.

Checks run in order and stop at the first failure:
  1. the height exists in the winners list
  2. the reported timestamp is close to the block timestamp
  3. the reported block hash matches the explorer
  4. the round type matches the roll against the round type list
  5. the winner matches the roll against the player list

Settings are read from RAFFLE_* environment variables; flags override them.
Downloads and finished reports are kept in a SQLite cache unless --no-cache
is given.

Exit codes:
  0 - All checks passed
  1 - A check failed
  2 - Command error (configuration, network, cache)

Examples:
  raffleverify verify --explorer https://p2pool.observer
  raffleverify verify --height 3100000 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Height, "height", 0, "block height to verify (default: latest winner)")
	cmd.Flags().StringVar(&opts.Explorer, "explorer", "", "block explorer base URL (env RAFFLE_EXPLORER)")
	cmd.Flags().StringVar(&opts.WinnersURL, "winners-url", "", "winners list URL (env RAFFLE_WINNERS_URL)")
	cmd.Flags().StringVar(&opts.RoundTypesURL, "round-types-url", "", "round type list URL (env RAFFLE_ROUND_TYPES_URL)")
	cmd.Flags().StringVar(&opts.PlayerListsURL, "player-lists-url", "", "player list directory URL (env RAFFLE_PLAYER_LISTS_URL)")
	cmd.Flags().StringVar(&opts.CacheDB, "cache-db", "", "path to SQLite cache (env RAFFLE_CACHE_DB)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "skip the cache and do not record the report")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "disable coloured pass/fail marks")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := formatter.Logger()

	cfg, err := config.Load()
	if err != nil {
		return commandError(formatter, ErrCodeConfig, "failed to load configuration", err)
	}
	applyVerifyFlags(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		return commandError(formatter, ErrCodeConfig, "invalid configuration", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &fetch.Client{
		HTTP:   &http.Client{Timeout: cfg.HTTPTimeout},
		Clock:  opts.Clock,
		Logger: logger,
	}

	var recorder verify.Recorder
	if !opts.NoCache {
		path, err := cfg.CachePath()
		if err != nil {
			return commandError(formatter, ErrCodeCache, "failed to locate cache database", err)
		}
		st, err := store.Open(path)
		if err != nil {
			return commandError(formatter, ErrCodeCache, "failed to open cache database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing cache database", "error", closeErr)
			}
		}()
		client.Cache = st
		recorder = st
		formatter.VerboseLog("Using cache database %s", path)
	}

	v := &verify.Verifier{
		Getter: client,
		Blocks: &explorer.Client{BaseURL: cfg.Explorer, Getter: client},
		Sources: verify.Sources{
			WinnersURL:     cfg.WinnersURL,
			RoundTypesURL:  cfg.RoundTypesURL,
			PlayerListsURL: cfg.PlayerListsURL,
		},
		Tolerance:  cfg.TimestampTolerance,
		ListMaxAge: cfg.ListMaxAge,
		IDs:        opts.IDs,
		Clock:      opts.Clock,
		Recorder:   recorder,
		Logger:     logger,
	}

	color := !opts.NoColor
	if opts.Format == "text" {
		w := formatter.Writer
		v.OnCheck = func(c verify.Check) {
			verify.WriteCheck(w, c, color)
		}
	}

	report, err := v.Verify(ctx, verify.Options{Height: opts.Height})
	if err != nil {
		return commandError(formatter, errorCode(err), "verification could not complete", err)
	}

	if opts.Format == "json" {
		return outputVerifyJSON(formatter, report)
	}
	return outputVerifyText(formatter, report)
}

// applyVerifyFlags overrides environment settings with explicit flags.
func applyVerifyFlags(cfg *config.Config, opts *VerifyOptions) {
	if opts.Explorer != "" {
		cfg.Explorer = opts.Explorer
	}
	if opts.WinnersURL != "" {
		cfg.WinnersURL = opts.WinnersURL
	}
	if opts.RoundTypesURL != "" {
		cfg.RoundTypesURL = opts.RoundTypesURL
	}
	if opts.PlayerListsURL != "" {
		cfg.PlayerListsURL = opts.PlayerListsURL
	}
	if opts.CacheDB != "" {
		cfg.CacheDB = opts.CacheDB
	}
}

func outputVerifyJSON(formatter *OutputFormatter, report *verify.Report) error {
	var cliErr *CLIError
	if failed, ok := report.Failed(); ok {
		cliErr = &CLIError{
			Code:    "E_CHECK_FAILED",
			Message: failed.Message,
			Details: map[string]string{"check": failed.Name},
		}
	}
	if err := formatter.Result(report, cliErr); err != nil {
		return err
	}
	if !report.Passed {
		return NewExitError(ExitFailure, fmt.Sprintf("verification of height %d failed", report.Height))
	}
	return nil
}

// outputVerifyText finishes the live check lines written during the run.
func outputVerifyText(formatter *OutputFormatter, report *verify.Report) error {
	verify.WriteSkipped(formatter.Writer, report)
	verify.WriteSummary(formatter.Writer, report)
	if !report.Passed {
		return NewExitError(ExitFailure, fmt.Sprintf("verification of height %d failed", report.Height))
	}
	return nil
}
