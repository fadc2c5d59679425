package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Verification is one stored verification run.
type Verification struct {
	ID        string
	Digest    string
	Height    int64
	Passed    bool
	Report    string // canonical JSON
	CreatedAt time.Time
}

// WriteVerification inserts a verification record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - rewriting the same run
// is silently ignored.
func (s *Store) WriteVerification(ctx context.Context, v Verification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verifications (id, digest, height, passed, report, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		v.ID,
		v.Digest,
		v.Height,
		boolToInt(v.Passed),
		v.Report,
		v.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write verification: %w", err)
	}
	return nil
}

// ReadVerification returns the verification with the given ID.
func (s *Store) ReadVerification(ctx context.Context, id string) (Verification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, digest, height, passed, report, created_at
		FROM verifications
		WHERE id = ?
	`, id)
	v, err := scanVerification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Verification{}, fmt.Errorf("read verification %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Verification{}, fmt.Errorf("read verification %s: %w", id, err)
	}
	return v, nil
}

// ListVerifications returns the most recent verifications, newest first.
// A limit <= 0 returns all rows. Returns an empty slice (not nil) when the
// table is empty.
func (s *Store) ListVerifications(ctx context.Context, limit int) ([]Verification, error) {
	return s.listVerifications(ctx, "", nil, limit)
}

// ListVerificationsAtHeight is ListVerifications restricted to one block
// height. Served by idx_verifications_height.
func (s *Store) ListVerificationsAtHeight(ctx context.Context, height int64, limit int) ([]Verification, error) {
	return s.listVerifications(ctx, "WHERE height = ?", []any{height}, limit)
}

func (s *Store) listVerifications(ctx context.Context, where string, args []any, limit int) ([]Verification, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	query := `
		SELECT id, digest, height, passed, report, created_at
		FROM verifications
		` + where + `
		ORDER BY created_at DESC, id COLLATE BINARY ASC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	list := []Verification{}
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("list verifications: %w", err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verifications: %w", err)
	}
	return list, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVerification(row scanner) (Verification, error) {
	var (
		v         Verification
		passed    int
		createdAt int64
	)
	if err := row.Scan(&v.ID, &v.Digest, &v.Height, &passed, &v.Report, &createdAt); err != nil {
		return Verification{}, err
	}
	v.Passed = passed == 1
	v.CreatedAt = time.UnixMilli(createdAt).UTC()
	return v, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
