package transcache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"anchor/internal/align"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes; a mismatched cache must be
// deleted and rebuilt.
const schemaVersion = 1

// ErrSchemaMismatch indicates the cache database was written by a different
// version of this package.
var ErrSchemaMismatch = errors.New("transcript cache schema mismatch")

// Store is a transcript cache backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Entry is one cached transcript.
type Entry struct {
	Fingerprint string
	Model       string
	Language    string
	Words       []align.Word
	CreatedAt   time.Time
}

// Open initializes or connects to the cache database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, "transcripts.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:   db,
		path: dbPath,
		lock: flock.New(filepath.Join(dir, "transcripts.lock")),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection and releases the job lock
// if held.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return s.db.Close()
}

// AcquireJobLock blocks until this process holds the cross-process
// transcription lock, so two anchor invocations never transcribe the same
// media concurrently.
func (s *Store) AcquireJobLock(ctx context.Context) error {
	ok, err := s.lock.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire transcription lock: %w", err)
	}
	if !ok {
		return errors.New("acquire transcription lock: not granted")
	}
	return nil
}

// ReleaseJobLock releases the cross-process transcription lock.
func (s *Store) ReleaseJobLock() error {
	return s.lock.Unlock()
}

// Get returns the cached transcript for (fingerprint, model), or false when
// no entry exists.
func (s *Store) Get(ctx context.Context, fingerprint, model string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT language, words_json, created_at FROM transcripts WHERE fingerprint = ? AND model = ?`,
		fingerprint, model)

	var entry Entry
	var wordsJSON, createdAt string
	if err := row.Scan(&entry.Language, &wordsJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("query transcript: %w", err)
	}
	if err := json.Unmarshal([]byte(wordsJSON), &entry.Words); err != nil {
		return Entry{}, false, fmt.Errorf("decode cached transcript: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		entry.CreatedAt = ts
	}
	entry.Fingerprint = fingerprint
	entry.Model = model
	return entry, true, nil
}

// Put stores or replaces the transcript for (fingerprint, model).
func (s *Store) Put(ctx context.Context, fingerprint, model, language string, words []align.Word) error {
	wordsJSON, err := json.Marshal(words)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transcripts (fingerprint, model, language, words_json, created_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (fingerprint, model) DO UPDATE SET
             language = excluded.language,
             words_json = excluded.words_json,
             created_at = excluded.created_at`,
		fingerprint, model, language, string(wordsJSON), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}
	return nil
}

// Delete removes every cached transcript for the fingerprint.
func (s *Store) Delete(ctx context.Context, fingerprint string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE fingerprint = ?`, fingerprint); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}
