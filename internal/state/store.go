// Package state is the lint cache. It stores the violations of every linted
// file in SQLite, keyed by path, content hash and configuration fingerprint,
// so unchanged files are not linted again.
package state

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

// payloadSchema is bumped whenever the encoded payload changes shape.
const payloadSchema uint16 = 1

// Key identifies one cached lint result.
type Key struct {
	Path        string
	ContentHash string
	ConfigHash  string
}

// KeyFor hashes content and pairs it with path and a config fingerprint.
func KeyFor(path string, content []byte, configHash string) Key {
	sum := sha256.Sum256(content)
	return Key{Path: path, ContentHash: hex.EncodeToString(sum[:]), ConfigHash: configHash}
}

// Fingerprint hashes the msgpack encoding of v with sorted map keys.
func Fingerprint(v any) (string, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

type payload struct {
	Schema     uint16            `msgpack:"schema"`
	Violations []*lint.Violation `msgpack:"violations"`
}

// RunStats are the totals recorded for a run.
type RunStats struct {
	Files      int
	Violations int
	CacheHits  int
}

// Run is one recorded lint run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	RunStats
}

// Store is the SQLite backed cache.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New wraps an open database. Migrations are not run.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens (creating if needed) the cache at path and migrates it.
func Open(path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// One writer at a time; the lint workers share this handle.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	s := New(db, opts...)
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Lookup returns the cached violations for key.
func (s *Store) Lookup(ctx context.Context, key Key) ([]*lint.Violation, bool, error) {
	if s.db == nil {
		return nil, false, ErrNotOpen
	}
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM lint_cache WHERE path = ? AND config_hash = ? AND content_hash = ?`,
		key.Path, key.ConfigHash, key.ContentHash,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("cache miss", "file", key.Path)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup %s: %w", key.Path, err)
	}

	var p payload
	if err := msgpack.Unmarshal(blob, &p); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key.Path, err)
	}
	if p.Schema != payloadSchema {
		s.logger.Debug("cache entry has old schema", "file", key.Path, "schema", p.Schema)
		return nil, false, nil
	}
	s.logger.Debug("cache hit", "file", key.Path, "violations", len(p.Violations))
	return p.Violations, true, nil
}

// Save stores violations for key, replacing any entry for the same path
// and configuration.
func (s *Store) Save(ctx context.Context, key Key, violations []*lint.Violation) error {
	if s.db == nil {
		return ErrNotOpen
	}
	blob, err := msgpack.Marshal(&payload{Schema: payloadSchema, Violations: violations})
	if err != nil {
		return fmt.Errorf("encode %s: %w", key.Path, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lint_cache (path, config_hash, content_hash, payload, linted_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (path, config_hash) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   payload = excluded.payload,
		   linted_at = excluded.linted_at`,
		key.Path, key.ConfigHash, key.ContentHash, blob, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", key.Path, err)
	}
	return nil
}

// BeginRun records the start of a run and returns its id.
func (s *Store) BeginRun(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", ErrNotOpen
	}
	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO lint_runs (id, started_at) VALUES (?, ?)`,
		id, s.now().Unix(),
	); err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// FinishRun records the totals of a run.
func (s *Store) FinishRun(ctx context.Context, id string, stats RunStats) error {
	if s.db == nil {
		return ErrNotOpen
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE lint_runs SET finished_at = ?, files = ?, violations = ?, cache_hits = ? WHERE id = ?`,
		s.now().Unix(), stats.Files, stats.Violations, stats.CacheHits, id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun retrieves a run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	var (
		started  int64
		finished sql.NullInt64
		run      = &Run{ID: id}
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT started_at, finished_at, files, violations, cache_hits FROM lint_runs WHERE id = ?`, id,
	).Scan(&started, &finished, &run.Files, &run.Violations, &run.CacheHits)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.StartedAt = time.Unix(started, 0).UTC()
	if finished.Valid {
		t := time.Unix(finished.Int64, 0).UTC()
		run.FinishedAt = &t
	}
	return run, nil
}

// Prune deletes entries linted before now-olderThan and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if s.db == nil {
		return 0, ErrNotOpen
	}
	cutoff := s.now().Add(-olderThan).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM lint_cache WHERE linted_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	return n, nil
}
