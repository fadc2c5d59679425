package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/raffleverify/internal/config"
	"github.com/roach88/raffleverify/internal/store"
)

// CacheOptions holds flags for the cache commands.
type CacheOptions struct {
	*RootOptions
	CacheDB string
}

// CacheClearResult reports what cache clear removed.
type CacheClearResult struct {
	Path    string `json:"path"`
	Removed int64  `json:"removed"`
}

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
		Long: `Manage the SQLite cache that stores fetched lists and explorer responses.

Verification history lives in the same database and is never removed by
these commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.CacheDB, "cache-db", "", "path to SQLite cache (env RAFFLE_CACHE_DB)")

	cmd.AddCommand(newCacheClearCommand(opts))

	return cmd
}

func newCacheClearCommand(opts *CacheOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached response",
		Long: `Drop every cached HTTP response so the next verify fetches fresh data.

Examples:
  raffleverify cache clear
  raffleverify cache clear --cache-db ./cache.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(opts, cmd)
		},
	}
}

func runCacheClear(opts *CacheOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, path, err := openCache(formatter, opts.CacheDB)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.DeleteResponses(commandContext(cmd))
	if err != nil {
		return commandError(formatter, ErrCodeCache, "failed to clear cache", err)
	}
	formatter.VerboseLog("Cleared %d responses from %s", n, path)

	if opts.Format == "json" {
		return formatter.Success(CacheClearResult{Path: path, Removed: n})
	}
	fmt.Fprintf(formatter.Writer, "Removed %d cached responses from %s\n", n, path)
	return nil
}

// openCache resolves the cache database path, with flag taking precedence
// over the environment, and opens it. Failures are already reported through
// formatter.
func openCache(formatter *OutputFormatter, flagPath string) (*store.Store, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", commandError(formatter, ErrCodeConfig, "failed to load configuration", err)
	}
	if flagPath != "" {
		cfg.CacheDB = flagPath
	}
	path, err := cfg.CachePath()
	if err != nil {
		return nil, "", commandError(formatter, ErrCodeCache, "failed to locate cache database", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, "", commandError(formatter, ErrCodeCache, "failed to open cache database", err)
	}
	return st, path, nil
}
