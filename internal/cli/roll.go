package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/raffleverify/internal/config"
	"github.com/roach88/raffleverify/internal/fetch"
	"github.com/roach88/raffleverify/internal/roller"
)

// RollOptions holds flags for the roll command.
type RollOptions struct {
	*RootOptions
	Token string
	File  string
	URL   string
}

// RollOutput is the JSON payload of the roll command.
type RollOutput struct {
	Hash       string        `json:"hash"`
	Token      string        `json:"token"`
	Candidates int           `json:"candidates"`
	Result     roller.Result `json:"result"`
}

// NewRollCommand creates the roll command.
func NewRollCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RollOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "roll <hash> [candidate...]",
		Short: "Select a candidate from a block hash",
		Long: `Run one raffle selection and print the chosen candidate.

Candidates come from exactly one source: the remaining arguments, a text
file with one candidate per line (--file), or a URL serving such a file
(--url). The roll token defaults to 1.

Examples:
  raffleverify roll abcdef123456 pool pplns solo
  raffleverify roll abcdef123456 --token 2 --file players.txt
  raffleverify roll abcdef123456 --url https://example.com/players.txt -v`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoll(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Token, "token", "t", roller.DefaultToken, "roll token appended to the hash")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read candidates from a file")
	cmd.Flags().StringVar(&opts.URL, "url", "", "fetch candidates from a URL")

	return cmd
}

func runRoll(opts *RollOptions, hash string, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	candidates, err := loadCandidates(opts, formatter, args, cmd)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		return commandError(formatter, errorCode(err), "failed to load candidates", err)
	}
	formatter.VerboseLog("Loaded %d candidate(s)", len(candidates))

	result, err := roller.Roll(hash, opts.Token, candidates)
	if err != nil {
		return commandError(formatter, ErrCodeRoll, "roll failed", err)
	}

	token := opts.Token
	if token == "" {
		token = roller.DefaultToken
	}

	if opts.Format == "json" {
		return formatter.Success(RollOutput{
			Hash:       hash,
			Token:      token,
			Candidates: len(candidates),
			Result:     result,
		})
	}

	formatter.VerboseLog("Seed string: %s", result.SeedString)
	formatter.VerboseLog("Seed: %d", result.Seed)
	formatter.VerboseLog("Raw output: %d", result.Raw)
	formatter.VerboseLog("Index: %d of %d", result.Index, len(candidates))
	fmt.Fprintln(formatter.Writer, result.Element)
	return nil
}

// loadCandidates reads the candidate list from the single configured source.
func loadCandidates(opts *RollOptions, formatter *OutputFormatter, args []string, cmd *cobra.Command) ([]string, error) {
	sources := 0
	for _, set := range []bool{len(args) > 0, opts.File != "", opts.URL != ""} {
		if set {
			sources++
		}
	}
	switch {
	case sources == 0:
		return nil, commandError(formatter, ErrCodeConfig, "no candidates: pass them as arguments, --file, or --url", nil)
	case sources > 1:
		return nil, commandError(formatter, ErrCodeConfig, "candidates must come from exactly one of arguments, --file, --url", nil)
	}

	switch {
	case opts.File != "":
		data, err := os.ReadFile(opts.File)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, commandError(formatter, ErrCodeNotFound, "candidates file not found", err)
			}
			return nil, err
		}
		return fetch.Lines(data), nil
	case opts.URL != "":
		cfg, err := config.Load()
		if err != nil {
			return nil, commandError(formatter, ErrCodeConfig, "failed to load configuration", err)
		}
		client := &fetch.Client{
			HTTP:   &http.Client{Timeout: cfg.HTTPTimeout},
			Logger: formatter.Logger(),
		}
		body, err := client.Get(commandContext(cmd), opts.URL, 0)
		if err != nil {
			return nil, err
		}
		return fetch.Lines(body), nil
	default:
		return args, nil
	}
}
