// Package postgres stores profile and metadata documents as JSONB rows.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/argo-profile-etl/internal/domain"
)

// uniqueViolation is the SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS argo_metadata (
	id              TEXT PRIMARY KEY,
	platform_number TEXT NOT NULL,
	doc             JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS argo_profiles (
	id           TEXT PRIMARY KEY,
	metadata_id  TEXT NOT NULL REFERENCES argo_metadata (id),
	cycle_number INTEGER NOT NULL,
	data_mode    TEXT NOT NULL,
	juld         DOUBLE PRECISION NOT NULL,
	longitude    DOUBLE PRECISION NOT NULL,
	latitude     DOUBLE PRECISION NOT NULL,
	doc          JSONB NOT NULL
);
`

const (
	insertMeta = `INSERT INTO argo_metadata (id, platform_number, doc) VALUES ($1, $2, $3)`

	insertProfile = `INSERT INTO argo_profiles (id, metadata_id, cycle_number, data_mode, juld, longitude, latitude, doc)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

// Store is an insert-only document store. It implements pipeline.Sink.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Connect opens a pool and pings the server, retrying with exponential backoff
// up to attempts times. It then ensures the schema exists.
func Connect(ctx context.Context, url string, attempts int, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second
	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if attempt >= attempts {
			pool.Close()
			return nil, fmt.Errorf("connect postgres after %d attempts: %w", attempts, err)
		}
		logger.Warn("postgres not reachable, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			pool.Close()
			return nil, fmt.Errorf("connect postgres: %w", ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	logger.Info("postgres store ready")
	return &Store{pool: pool, logger: logger}, nil
}

// InsertMeta stores a metadata record. An existing id fails with
// domain.ErrDuplicateRecord.
func (s *Store) InsertMeta(ctx context.Context, rec domain.MetaRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serialize metadata %s: %w", rec.ID, err)
	}
	if _, err := s.pool.Exec(ctx, insertMeta, rec.ID, rec.PlatformNumber, doc); err != nil {
		return insertError("metadata", rec.ID, err)
	}
	return nil
}

// InsertProfile stores a profile record with its query columns. An existing id
// fails with domain.ErrDuplicateRecord.
func (s *Store) InsertProfile(ctx context.Context, rec domain.ProfileRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serialize profile %s: %w", rec.ID, err)
	}
	_, err = s.pool.Exec(ctx, insertProfile,
		rec.ID, rec.MetadataID(), rec.CycleNumber, rec.DataMode, rec.Juld,
		rec.Geolocation.Coordinates[0], rec.Geolocation.Coordinates[1], doc)
	if err != nil {
		return insertError("profile", rec.ID, err)
	}
	return nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func insertError(kind, id string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("insert %s %s: %w", kind, id, domain.ErrDuplicateRecord)
	}
	return fmt.Errorf("insert %s %s: %w", kind, id, err)
}
