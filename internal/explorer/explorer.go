// Package explorer reads block data from a Monero block explorer's JSON API.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/raffleverify/internal/fetch"
	"github.com/roach88/raffleverify/internal/winners"
)

// ShortHashLength is how many leading hex characters of a block hash the
// raffle publishes and seeds from.
const ShortHashLength = 12

// ErrMalformed wraps errors for explorer responses that arrived but cannot
// be used.
var ErrMalformed = errors.New("malformed block response")

// Getter fetches a URL body. *fetch.Client implements it.
type Getter interface {
	Get(ctx context.Context, url string, maxAge time.Duration) ([]byte, error)
}

// Block is the subset of explorer block data the raffle depends on.
type Block struct {
	Height       int64
	Hash         string
	TimestampUTC time.Time
}

// ShortHash returns the published prefix of the block hash.
func (b Block) ShortHash() string {
	if len(b.Hash) > ShortHashLength {
		return b.Hash[:ShortHashLength]
	}
	return b.Hash
}

// Client queries one explorer.
type Client struct {
	BaseURL string
	Getter  Getter
}

type blockResponse struct {
	Status string `json:"status"`
	Data   struct {
		Hash         string `json:"hash"`
		TimestampUTC string `json:"timestamp_utc"`
		BlockHeight  *int64 `json:"block_height"`
	} `json:"data"`
}

// Block fetches the block at height. Blocks are immutable once buried, so
// responses are cached forever.
func (c *Client) Block(ctx context.Context, height int64) (Block, error) {
	url := fmt.Sprintf("%s/api/block/%d", strings.TrimRight(c.BaseURL, "/"), height)

	body, err := c.Getter.Get(ctx, url, fetch.Forever)
	if err != nil {
		return Block{}, fmt.Errorf("explorer block %d: %w", height, err)
	}

	var resp blockResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Block{}, fmt.Errorf("explorer block %d: %w: decode: %w", height, ErrMalformed, err)
	}
	if resp.Status != "" && resp.Status != "success" {
		return Block{}, fmt.Errorf("explorer block %d: %w: status %q", height, ErrMalformed, resp.Status)
	}
	if resp.Data.Hash == "" {
		return Block{}, fmt.Errorf("explorer block %d: %w: response has no hash", height, ErrMalformed)
	}
	if resp.Data.BlockHeight != nil && *resp.Data.BlockHeight != height {
		return Block{}, fmt.Errorf("explorer block %d: %w: response is for height %d", height, ErrMalformed, *resp.Data.BlockHeight)
	}

	ts, err := winners.ParseTime(resp.Data.TimestampUTC)
	if err != nil {
		return Block{}, fmt.Errorf("explorer block %d: %w: %w", height, ErrMalformed, err)
	}

	return Block{
		Height:       height,
		Hash:         resp.Data.Hash,
		TimestampUTC: ts,
	}, nil
}
