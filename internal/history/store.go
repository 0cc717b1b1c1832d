// Package history keeps an optional Postgres record of every upload attempt.
// The pipeline runs fine without it; when a database is configured each
// account's outcome lands in one row.
package history

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"quotereel/manager-go/internal/utils"
)

type Store struct {
	pool *pgxpool.Pool
}

type Upload struct {
	ID        int64
	Account   string
	VideoID   *string
	Quote     string
	Author    string
	Outcome   string
	CreatedAt time.Time
}

func NewStore(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the uploads table if it is missing. Idempotent;
// called once at startup when history is enabled.
func (s *Store) EnsureSchema(ctx context.Context) error {
	utils.Debug("db ensure schema")
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS uploads (
			id BIGSERIAL PRIMARY KEY,
			account TEXT NOT NULL,
			video_id TEXT,
			quote TEXT NOT NULL,
			author TEXT NOT NULL,
			outcome TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (s *Store) RecordUpload(ctx context.Context, upload Upload) (int64, error) {
	utils.Debug("db record upload", "account", upload.Account, "outcome", upload.Outcome)
	row := s.pool.QueryRow(ctx, `
		INSERT INTO uploads (account, video_id, quote, author, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id
	`, upload.Account, upload.VideoID, upload.Quote, upload.Author, upload.Outcome)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]Upload, error) {
	if limit <= 0 {
		limit = 20
	}
	utils.Debug("db list recent uploads", "limit", limit)
	rows, err := s.pool.Query(ctx, `
		SELECT id, account, video_id, quote, author, outcome, created_at
		FROM uploads
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(
			&u.ID,
			&u.Account,
			&u.VideoID,
			&u.Quote,
			&u.Author,
			&u.Outcome,
			&u.CreatedAt,
		); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}
