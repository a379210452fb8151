package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgrain/internal/logging"
	"github.com/leapstack-labs/sqlgrain/internal/state"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	Watch    bool
	ShowPass bool
	Prune    time.Duration
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint SQL files",
		Long: `Lint SQL files and report rule violations.

Directories are searched recursively for .sql files. The command exits
with status 1 when a violation that is not a warning is found.`,
		Example: `  # Lint the working directory
  sqlgrain lint

  # Lint one file with the trino dialect
  sqlgrain lint --dialect trino models/orders.sql

  # Only run layout rules, emitting JSON
  sqlgrain lint --rules layout -o json

  # Reuse results for unchanged files
  sqlgrain lint --cache

  # Re-lint files as they change
  sqlgrain lint --watch models/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, pathsOrCwd(args), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-lint files when they change")
	cmd.Flags().BoolVar(&opts.ShowPass, "show-pass", false, "List files without violations")
	cmd.Flags().Bool("cache", false, "Cache results of unchanged files")
	cmd.Flags().DurationVar(&opts.Prune, "prune", 0, "Drop cache entries older than this before linting")
	cmd.Flags().IntP("processes", "p", 0, "Number of files linted in parallel (0 = one per CPU)")

	return cmd
}

// linter bundles a linter with its optional cache.
type linter struct {
	*lint.Linter
	store *state.Store
	cache *state.LintCache
}

func (l *linter) Close() {
	if l.store != nil {
		_ = l.store.Close()
	}
}

func newCachedLinter(ctx context.Context, cc *CommandContext, prune time.Duration) (*linter, error) {
	if !cc.Cfg.Cache {
		l, _, err := cc.NewLinter()
		if err != nil {
			return nil, err
		}
		return &linter{Linter: l}, nil
	}

	lcfg, err := cc.Cfg.LintConfig()
	if err != nil {
		return nil, err
	}
	store, err := state.Open(cc.Cfg.CachePath, state.WithLogger(cc.Logger))
	if err != nil {
		return nil, err
	}
	if prune > 0 {
		n, err := store.Prune(ctx, prune)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		cc.Logger.Info("pruned cache", "entries", n)
	}
	cache, err := state.NewLintCache(store, lcfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	l, _, err := cc.NewLinter(lint.WithCache(cache))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &linter{Linter: l, store: store, cache: cache}, nil
}

func runLint(cmd *cobra.Command, paths []string, opts *LintOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ctx := logging.WithLogger(cmd.Context(), cc.Logger)

	l, err := newCachedLinter(ctx, cc, opts.Prune)
	if err != nil {
		return err
	}
	defer l.Close()

	if !opts.Watch {
		return lintOnce(ctx, cc, l, paths, opts)
	}

	if err := lintOnce(ctx, cc, l, paths, opts); err != nil && !errors.Is(err, ErrLintFailed) {
		return err
	}
	cc.Renderer.Warn("watching for changes, press Ctrl+C to stop")
	err = watchPaths(ctx, cc.Logger, paths, func(ctx context.Context, changed []string) {
		if err := lintOnce(ctx, cc, l, changed, opts); err != nil && !errors.Is(err, ErrLintFailed) {
			cc.Renderer.Error(err.Error())
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func lintOnce(ctx context.Context, cc *CommandContext, l *linter, paths []string, opts *LintOptions) error {
	start := time.Now()
	var runID string
	hitsBefore := 0
	if l.store != nil {
		id, err := l.store.BeginRun(ctx)
		if err != nil {
			return err
		}
		runID = id
		hitsBefore = l.cache.Hits()
	}

	res, err := l.LintPaths(ctx, paths, false)
	if err != nil {
		return err
	}
	stats := res.Stats()

	if l.store != nil {
		if err := l.store.FinishRun(ctx, runID, state.RunStats{
			Files:      stats.Files,
			Violations: stats.Violations,
			CacheHits:  l.cache.Hits() - hitsBefore,
		}); err != nil {
			cc.Logger.Warn("failed to record run", "run_id", runID, "error", err)
		}
	}
	cc.Logger.Info("lint finished",
		logging.FieldFiles, stats.Files,
		logging.FieldViolations, stats.Violations,
		logging.FieldElapsed, time.Since(start).Round(time.Millisecond),
		logging.FieldRunID, runID)

	if err := cc.Renderer.LintResult(res, opts.ShowPass); err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}
	if res.HasErrors() {
		return ErrLintFailed
	}
	return nil
}
