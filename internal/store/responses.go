package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/raffleverify/internal/canon"
)

// ErrCorrupt is returned when a cached body no longer matches its digest.
var ErrCorrupt = errors.New("cached body digest mismatch")

// Response is a cached HTTP body.
type Response struct {
	URL       string
	Body      []byte
	SHA256    string
	FetchedAt time.Time
}

// GetResponse returns the cached response for url.
// Returns ErrNotFound when nothing is cached and ErrCorrupt when the stored
// digest does not match the stored body.
func (s *Store) GetResponse(ctx context.Context, url string) (Response, error) {
	var (
		resp      Response
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT url, body, sha256, fetched_at
		FROM responses
		WHERE url = ?
	`, url).Scan(&resp.URL, &resp.Body, &resp.SHA256, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Response{}, fmt.Errorf("get response %s: %w", url, ErrNotFound)
	}
	if err != nil {
		return Response{}, fmt.Errorf("get response %s: %w", url, err)
	}

	if got := canon.HashBytes(canon.DomainBody, resp.Body); got != resp.SHA256 {
		return Response{}, fmt.Errorf("get response %s: %w", url, ErrCorrupt)
	}

	resp.FetchedAt = time.UnixMilli(fetchedAt).UTC()
	return resp, nil
}

// PutResponse stores body for url, replacing any previous entry.
// The digest is computed here; resp.SHA256 is ignored.
func (s *Store) PutResponse(ctx context.Context, resp Response) error {
	digest := canon.HashBytes(canon.DomainBody, resp.Body)
	body := resp.Body
	if body == nil {
		body = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO responses (url, body, sha256, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			body = excluded.body,
			sha256 = excluded.sha256,
			fetched_at = excluded.fetched_at
	`,
		resp.URL,
		body,
		digest,
		resp.FetchedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put response %s: %w", resp.URL, err)
	}
	return nil
}

// DeleteResponses removes every cached response and reports how many rows
// were dropped.
func (s *Store) DeleteResponses(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses`)
	if err != nil {
		return 0, fmt.Errorf("delete responses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete responses: %w", err)
	}
	return n, nil
}
