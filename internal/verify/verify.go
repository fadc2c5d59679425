package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/raffleverify/internal/explorer"
	"github.com/roach88/raffleverify/internal/fetch"
	"github.com/roach88/raffleverify/internal/roller"
	"github.com/roach88/raffleverify/internal/store"
	"github.com/roach88/raffleverify/internal/winners"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Getter fetches a URL body. *fetch.Client implements it.
type Getter interface {
	Get(ctx context.Context, url string, maxAge time.Duration) ([]byte, error)
}

// BlockSource looks up a block by height. *explorer.Client implements it.
type BlockSource interface {
	Block(ctx context.Context, height int64) (explorer.Block, error)
}

// Recorder persists finished reports. *store.Store implements it.
type Recorder interface {
	WriteVerification(ctx context.Context, v store.Verification) error
}

// Sources names where the raffle's published data lives.
type Sources struct {
	WinnersURL     string
	RoundTypesURL  string
	PlayerListsURL string // directory; the list is <dir>/<short hash>-players.txt
}

// PlayersURL returns the player list URL for a short block hash.
func (s Sources) PlayersURL(shortHash string) string {
	return fmt.Sprintf("%s/%s-players.txt", strings.TrimRight(s.PlayerListsURL, "/"), shortHash)
}

// Verifier runs verifications. Getter, Blocks, and Sources are required;
// the rest default sensibly when nil.
//
// A run checks one published raffle against public data:
//   - the winners list has a row at the requested height
//   - the reported timestamp is within Tolerance of the block timestamp
//   - the reported short hash matches the explorer's block hash
//   - re-rolling the round type list reproduces the reported round type
//   - re-rolling the player list reproduces the reported winner
//
// Checks run in that order and the run stops at the first failure.
// Failed checks are part of the report. Errors are reserved for data that
// could not be fetched or read.
type Verifier struct {
	Getter  Getter
	Blocks  BlockSource
	Sources Sources

	// Tolerance is the largest accepted gap between the reported and block
	// timestamps.
	Tolerance time.Duration

	// ListMaxAge bounds how stale a cached winners or round-type list may
	// be. Player lists are keyed by block hash and cached forever.
	ListMaxAge time.Duration

	IDs      IDGenerator
	Clock    fetch.Clock
	Recorder Recorder

	// OnCheck, when set, is called as each check completes.
	OnCheck func(Check)

	// Logger receives run progress. Nil discards it.
	Logger *slog.Logger
}

// Options selects what to verify.
type Options struct {
	// Height is the block height of the raffle. Zero means the newest
	// published raffle.
	Height int64
}

// Verify runs every check in order and returns the report. The report is
// recorded when a Recorder is configured.
func (v *Verifier) Verify(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{
		RunID:     v.ids().Generate(),
		Height:    opts.Height,
		CreatedAt: v.now().UTC(),
	}

	if err := v.run(ctx, opts, report); err != nil {
		return nil, err
	}

	report.Passed = len(report.Checks) == len(checkOrder)
	if _, failed := report.Failed(); failed {
		report.Passed = false
	}

	digest, err := report.ComputeDigest()
	if err != nil {
		return nil, err
	}
	report.Digest = digest

	v.logger().Info("verification finished",
		"run_id", report.RunID,
		"height", report.Height,
		"passed", report.Passed,
		"digest", report.Digest,
	)

	if v.Recorder != nil {
		if err := v.record(ctx, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// run appends checks to report until one fails.
func (v *Verifier) run(ctx context.Context, opts Options, report *Report) error {
	list, err := v.Getter.Get(ctx, v.Sources.WinnersURL, v.ListMaxAge)
	if err != nil {
		return fmt.Errorf("fetch winners list: %w", err)
	}
	records, err := winners.Parse(bytes.NewReader(list))
	if err != nil {
		return err
	}

	var winner winners.Record
	if opts.Height == 0 {
		winner, err = winners.Latest(records)
	} else {
		winner, err = winners.FindByHeight(records, opts.Height)
	}
	if err != nil {
		msg := fmt.Sprintf("No winner found matching height %d. Please check that you entered it correctly.", opts.Height)
		if errors.Is(err, winners.ErrNoRecords) {
			msg = "The winners list is empty. No raffle has been published yet."
		}
		v.add(report, Check{Name: CheckHeight, Message: msg})
		return nil
	}
	report.Height = winner.Height
	if !v.add(report, Check{Name: CheckHeight, Passed: true, Reported: fmt.Sprint(winner.Height)}) {
		return nil
	}

	v.logger().Debug("winner record located", "height", winner.Height, "line", winner.Line, "rolls", winner.Rolls)

	block, err := v.Blocks.Block(ctx, winner.Height)
	if err != nil {
		return err
	}
	report.Hash = block.ShortHash()

	if !v.add(report, v.checkTimestamp(winner, block)) {
		return nil
	}

	hashCheck := Check{
		Name:     CheckBlockHash,
		Expected: block.ShortHash(),
		Reported: winner.Hash,
		Passed:   winner.Hash == block.ShortHash(),
	}
	if !hashCheck.Passed {
		hashCheck.Message = fmt.Sprintf("Reported XMR blockhash (%s) is different from actual blockhash at height %d (%s).",
			winner.Hash, winner.Height, block.ShortHash())
	}
	if !v.add(report, hashCheck) {
		return nil
	}

	roundBody, err := v.Getter.Get(ctx, v.Sources.RoundTypesURL, v.ListMaxAge)
	if err != nil {
		return fmt.Errorf("fetch round types: %w", err)
	}
	expectedRound, err := roller.Select(block.ShortHash(), winner.RoundRoll(), fetch.Lines(roundBody))
	if err != nil {
		return fmt.Errorf("roll round type: %w", err)
	}
	roundCheck := Check{
		Name:     CheckRoundType,
		Expected: expectedRound,
		Reported: winner.RoundType,
		Passed:   expectedRound == winner.RoundType,
	}
	if !roundCheck.Passed {
		roundCheck.Message = fmt.Sprintf("Reported round_type (%s) is different from expected round (%s).",
			winner.RoundType, expectedRound)
	}
	if !v.add(report, roundCheck) {
		return nil
	}

	playersBody, err := v.Getter.Get(ctx, v.Sources.PlayersURL(block.ShortHash()), fetch.Forever)
	if err != nil {
		return fmt.Errorf("fetch player list: %w", err)
	}
	expectedWinner, err := roller.Select(block.ShortHash(), winner.WinnerRoll(), fetch.Lines(playersBody))
	if err != nil {
		return fmt.Errorf("roll winner: %w", err)
	}
	winnerCheck := Check{
		Name:     CheckWinner,
		Expected: winners.ShortID(expectedWinner),
		Reported: winner.ShortWinner(),
	}
	winnerCheck.Passed = winnerCheck.Expected == winnerCheck.Reported
	if !winnerCheck.Passed {
		winnerCheck.Message = fmt.Sprintf("Reported winner (%s) is different from expected winner (%s).",
			winnerCheck.Reported, winnerCheck.Expected)
	}
	v.add(report, winnerCheck)
	return nil
}

func (v *Verifier) checkTimestamp(winner winners.Record, block explorer.Block) Check {
	c := Check{
		Name:     CheckTimestamp,
		Expected: block.TimestampUTC.Format(time.RFC3339),
		Reported: winner.Timestamp,
	}

	reported, err := winner.Time()
	if err != nil {
		c.Message = fmt.Sprintf("Reported timestamp is unreadable: %v.", err)
		return c
	}

	diff := block.TimestampUTC.Sub(reported)
	if diff < 0 {
		diff = -diff
	}
	diff = diff.Truncate(time.Second)
	if diff <= v.Tolerance {
		c.Passed = true
		return c
	}

	c.Message = fmt.Sprintf("Reported timestamp is %d seconds away from XMR height, larger than the maximum of %d.",
		int64(diff/time.Second), int64(v.Tolerance/time.Second))
	return c
}

// add appends c and reports whether the run should continue.
func (v *Verifier) add(report *Report, c Check) bool {
	report.Checks = append(report.Checks, c)
	v.logger().Debug("check completed", "check", c.Name, "passed", c.Passed)
	if v.OnCheck != nil {
		v.OnCheck(c)
	}
	return c.Passed
}

func (v *Verifier) record(ctx context.Context, report *Report) error {
	data, err := report.CanonicalJSON()
	if err != nil {
		return err
	}
	err = v.Recorder.WriteVerification(ctx, store.Verification{
		ID:        report.RunID,
		Digest:    report.Digest,
		Height:    report.Height,
		Passed:    report.Passed,
		Report:    string(data),
		CreatedAt: report.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("record verification: %w", err)
	}
	return nil
}

func (v *Verifier) logger() *slog.Logger {
	if v.Logger == nil {
		return discard
	}
	return v.Logger
}

func (v *Verifier) ids() IDGenerator {
	if v.IDs == nil {
		return UUIDv7Generator{}
	}
	return v.IDs
}

func (v *Verifier) now() time.Time {
	if v.Clock == nil {
		return time.Now()
	}
	return v.Clock.Now()
}

