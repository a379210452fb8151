package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgrain/internal/testutil"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
	_ "github.com/leapstack-labs/sqlgrain/pkg/dialects"
	_ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules"
)

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(testutil.NewTestLogger(t))}, opts...)
	s, err := Open(filepath.Join(t.TempDir(), "cache", "cache.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenMigrates(t *testing.T) {
	s := openStore(t)
	v, err := s.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestLookupSave(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	key := KeyFor("a.sql", []byte("select 1\n"), "cfg")

	_, ok, err := s.Lookup(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	vs := []*lint.Violation{{Code: "LT01", Name: "layout.spacing", Description: "x", Line: 1, Pos: 9, Fixable: true}}
	require.NoError(t, s.Save(ctx, key, vs))

	got, ok, err := s.Lookup(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "LT01", got[0].Code)
	assert.Equal(t, 9, got[0].Pos)
	assert.True(t, got[0].Fixable)

	t.Run("changed content misses", func(t *testing.T) {
		_, ok, err := s.Lookup(ctx, KeyFor("a.sql", []byte("select 2\n"), "cfg"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("changed config misses", func(t *testing.T) {
		_, ok, err := s.Lookup(ctx, KeyFor("a.sql", []byte("select 1\n"), "other"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("save replaces the entry for a path", func(t *testing.T) {
		newKey := KeyFor("a.sql", []byte("select 2\n"), "cfg")
		require.NoError(t, s.Save(ctx, newKey, nil))
		_, ok, err := s.Lookup(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
		got, ok, err := s.Lookup(ctx, newKey)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, got)
	})
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	id, err := s.BeginRun(ctx)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	require.NoError(t, s.FinishRun(ctx, id, RunStats{Files: 3, Violations: 2, CacheHits: 1}))
	run, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, run.Files)
	assert.Equal(t, 1, run.CacheHits)
	require.NotNil(t, run.FinishedAt)

	err = s.FinishRun(ctx, "missing", RunStats{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	clock := now.Add(-48 * time.Hour)
	s := openStore(t, WithClock(func() time.Time { return clock }))

	require.NoError(t, s.Save(ctx, KeyFor("old.sql", []byte("a"), "c"), nil))
	clock = now
	require.NoError(t, s.Save(ctx, KeyFor("new.sql", []byte("b"), "c"), nil))

	n, err := s.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err := s.Lookup(ctx, KeyFor("new.sql", []byte("b"), "c"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFingerprintIsStable(t *testing.T) {
	a := lint.NewConfig()
	a.SetRuleOptions("CP01", map[string]any{"capitalisation_policy": "upper", "ignore_words": []string{"x"}})
	b := lint.NewConfig()
	b.SetRuleOptions("CP01", map[string]any{"ignore_words": []string{"x"}, "capitalisation_policy": "upper"})

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	b.Dialect = "trino"
	fc, err := Fingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fc)
}

func TestLintCacheWithLinter(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "q.sql")
	require.NoError(t, os.WriteFile(path, []byte("select a  from t\n"), 0o600))

	cfg := lint.NewConfig()
	cfg.Rules = []string{"LT01"}
	cache, err := NewLintCache(s, cfg)
	require.NoError(t, err)
	l, err := lint.NewLinter(cfg, lint.WithCache(cache), lint.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)

	first, err := l.LintPaths(ctx, []string{dir}, false)
	require.NoError(t, err)
	require.Len(t, first.Files, 1)
	assert.False(t, first.Files[0].Cached)
	assert.Equal(t, 0, cache.Hits())

	second, err := l.LintPaths(ctx, []string{dir}, false)
	require.NoError(t, err)
	assert.True(t, second.Files[0].Cached)
	assert.Equal(t, 1, cache.Hits())
	assert.Equal(t, codesOf(first.Files[0].Violations), codesOf(second.Files[0].Violations))
	assert.Equal(t, 1, second.Stats().Cached)
}

func codesOf(vs []*lint.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Code
	}
	return out
}

func TestErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	s := New(db)
	boom := errors.New("disk I/O error")

	tests := []struct {
		name    string
		expect  func()
		call    func() error
		errText string
	}{
		{
			name:    "lookup",
			expect:  func() { mock.ExpectQuery("SELECT payload FROM lint_cache").WillReturnError(boom) },
			call:    func() error { _, _, err := s.Lookup(ctx, Key{Path: "a.sql"}); return err },
			errText: "lookup a.sql",
		},
		{
			name:    "save",
			expect:  func() { mock.ExpectExec("INSERT INTO lint_cache").WillReturnError(boom) },
			call:    func() error { return s.Save(ctx, Key{Path: "b.sql"}, nil) },
			errText: "save b.sql",
		},
		{
			name:    "begin run",
			expect:  func() { mock.ExpectExec("INSERT INTO lint_runs").WillReturnError(boom) },
			call:    func() error { _, err := s.BeginRun(ctx); return err },
			errText: "failed to create run",
		},
		{
			name:    "prune",
			expect:  func() { mock.ExpectExec("DELETE FROM lint_cache").WillReturnError(boom) },
			call:    func() error { _, err := s.Prune(ctx, time.Hour); return err },
			errText: "prune",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.expect()
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
	mock.ExpectClose()
	require.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosedStore(t *testing.T) {
	s := New(nil)
	_, _, err := s.Lookup(context.Background(), Key{})
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NoError(t, s.Close())
}

func TestLintCacheMacroFingerprint(t *testing.T) {
	s := openStore(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.star"), []byte("x = 1\n"), 0o600))

	cfg := lint.NewConfig()
	cfg.Templater = "jinja"
	cfg.MacroPaths = []string{dir}

	first, err := NewLintCache(s, cfg)
	require.NoError(t, err)
	same, err := NewLintCache(s, cfg)
	require.NoError(t, err)
	assert.Equal(t, first.configHash, same.configHash)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.star"), []byte("y = 2\n"), 0o600))
	changed, err := NewLintCache(s, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, first.configHash, changed.configHash)

	cfg.MacroPaths = []string{filepath.Join(dir, "a.star")}
	_, err = NewLintCache(s, cfg)
	assert.ErrorContains(t, err, "not a directory")
}
