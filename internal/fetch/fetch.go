// Package fetch retrieves raffle data over HTTP with an optional persistent
// cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/roach88/raffleverify/internal/store"
)

// Forever, passed as maxAge, serves any cached body regardless of age.
// Use it for immutable resources such as a block at a fixed height.
const Forever time.Duration = -1

// maxBodySize bounds a single response. Player lists are the largest
// resource and stay far below this.
const maxBodySize = 32 << 20

// Cache is the persistence the client needs. *store.Store implements it.
type Cache interface {
	GetResponse(ctx context.Context, url string) (store.Response, error)
	PutResponse(ctx context.Context, resp store.Response) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// Client performs GET requests, consulting Cache first when one is set.
// The zero value uses http.DefaultClient, no cache, and the system clock.
type Client struct {
	HTTP  *http.Client
	Cache Cache
	Clock Clock

	// Logger receives cache activity at debug level. Nil discards it.
	Logger *slog.Logger
}

// Get returns the body at url.
//
// A cached body is served when it is younger than maxAge, or at any age when
// maxAge is Forever. maxAge == 0 always goes to the network. Successful
// network responses are written back to the cache; a cache write failure is
// logged, not returned, since the body itself is good.
func (c *Client) Get(ctx context.Context, url string, maxAge time.Duration) ([]byte, error) {
	if body, ok := c.lookup(ctx, url, maxAge); ok {
		return body, nil
	}

	body, err := c.download(ctx, url)
	if err != nil {
		return nil, err
	}

	if c.Cache != nil {
		err := c.Cache.PutResponse(ctx, store.Response{
			URL:       url,
			Body:      body,
			FetchedAt: c.now(),
		})
		if err != nil {
			c.logger().Warn("cache store failed", "url", url, "error", err)
		} else {
			c.logger().Debug("cached response", "url", url, "bytes", len(body))
		}
	}
	return body, nil
}

func (c *Client) lookup(ctx context.Context, url string, maxAge time.Duration) ([]byte, bool) {
	if c.Cache == nil || maxAge == 0 {
		return nil, false
	}

	resp, err := c.Cache.GetResponse(ctx, url)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger().Warn("cache read failed", "url", url, "error", err)
		}
		return nil, false
	}

	age := c.now().Sub(resp.FetchedAt)
	if maxAge != Forever && age >= maxAge {
		c.logger().Debug("cache stale", "url", url, "age", age.Round(time.Second))
		return nil, false
	}

	c.logger().Debug("cache hit", "url", url)
	return resp.Body, true
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", url, err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", url, maxBodySize)
	}
	return body, nil
}

func (c *Client) now() time.Time {
	if c.Clock == nil {
		return systemClock{}.Now()
	}
	return c.Clock.Now()
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return discard
	}
	return c.Logger
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Lines splits a text resource into candidate entries.
//
// One trailing newline is removed and carriage returns before newlines are
// stripped. Interior blank lines are kept: dropping them would shift the
// position of every later entry. An empty body yields no lines.
func Lines(body []byte) []string {
	s := strings.ReplaceAll(string(body), "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
