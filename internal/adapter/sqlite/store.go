// Package sqlite stores profile and metadata documents in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/couchcryptid/argo-profile-etl/internal/domain"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS metadata (
	id              TEXT PRIMARY KEY,
	platform_number TEXT NOT NULL,
	doc             TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS profiles (
	id           TEXT PRIMARY KEY,
	metadata_id  TEXT NOT NULL,
	cycle_number INTEGER NOT NULL,
	data_mode    TEXT NOT NULL,
	juld         REAL NOT NULL,
	longitude    REAL NOT NULL,
	latitude     REAL NOT NULL,
	doc          TEXT NOT NULL
);
`

// Store is an insert-only document store. It implements pipeline.Sink.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and ensures its schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	logger.Info("sqlite store ready", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// InsertMeta stores a metadata record. An existing id fails with
// domain.ErrDuplicateRecord.
func (s *Store) InsertMeta(ctx context.Context, rec domain.MetaRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serialize metadata %s: %w", rec.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO metadata (id, platform_number, doc) VALUES (?, ?, ?)`,
		rec.ID, rec.PlatformNumber, string(doc))
	if err != nil {
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
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, metadata_id, cycle_number, data_mode, juld, longitude, latitude, doc)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.MetadataID(), rec.CycleNumber, rec.DataMode, rec.Juld,
		rec.Geolocation.Coordinates[0], rec.Geolocation.Coordinates[1], string(doc))
	if err != nil {
		return insertError("profile", rec.ID, err)
	}
	return nil
}

// Meta loads a stored metadata record.
func (s *Store) Meta(ctx context.Context, id string) (domain.MetaRecord, error) {
	var rec domain.MetaRecord
	err := s.loadDoc(ctx, `SELECT doc FROM metadata WHERE id = ?`, id, &rec)
	return rec, err
}

// Profile loads a stored profile record.
func (s *Store) Profile(ctx context.Context, id string) (domain.ProfileRecord, error) {
	var rec domain.ProfileRecord
	err := s.loadDoc(ctx, `SELECT doc FROM profiles WHERE id = ?`, id, &rec)
	return rec, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) loadDoc(ctx context.Context, query, id string, dst any) error {
	var doc string
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&doc); err != nil {
		return fmt.Errorf("load %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(doc), dst); err != nil {
		return fmt.Errorf("decode %s: %w", id, err)
	}
	return nil
}

func insertError(kind, id string, err error) error {
	var se *sqlitedriver.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("insert %s %s: %w", kind, id, domain.ErrDuplicateRecord)
		}
	}
	return fmt.Errorf("insert %s %s: %w", kind, id, err)
}
