package lint

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlgrain/pkg/fix"
	"github.com/leapstack-labs/sqlgrain/pkg/segment"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

// LintedFile is the outcome of linting one file.
type LintedFile struct {
	Path          string
	Source        string
	Tree          *segment.Segment
	TemplatedFile *templater.TemplatedFile
	Violations    []*Violation
	Elapsed       time.Duration
	// Cached is set when Violations came from the cache; Tree is nil then.
	Cached bool
}

// FixString renders the (possibly fixed) tree back onto the source and
// reports whether anything changed.
func (f *LintedFile) FixString() (string, bool) {
	if f.Tree == nil || f.TemplatedFile == nil {
		return f.Source, false
	}
	fixed := fix.FixString(f.Tree, f.TemplatedFile)
	return fixed, fixed != f.Source
}

// Diff returns a unified diff between the source and the fixed text.
func (f *LintedFile) Diff() (string, error) {
	fixed, changed := f.FixString()
	if !changed {
		return "", nil
	}
	return fix.UnifiedDiff(f.Path, f.Source, fixed)
}

// Persist writes the fixed text back to Path. It reports whether the file
// was rewritten.
func (f *LintedFile) Persist() (bool, error) {
	fixed, changed := f.FixString()
	if !changed {
		return false, nil
	}
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(f.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(f.Path, []byte(fixed), mode); err != nil {
		return false, fmt.Errorf("write %s: %w", f.Path, err)
	}
	return true, nil
}

// Errors returns the violations that fail the run.
func (f *LintedFile) Errors() []*Violation {
	var out []*Violation
	for _, v := range f.Violations {
		if !v.Warning {
			out = append(out, v)
		}
	}
	return out
}

// IsClean reports whether the file has no failing violations.
func (f *LintedFile) IsClean() bool {
	return len(f.Errors()) == 0
}

// Cache stores violations of files linted without fixing. Implementations
// log their own failures; a failed Get is a miss.
type Cache interface {
	Get(ctx context.Context, path string, content []byte) ([]*Violation, bool)
	Put(ctx context.Context, path string, content []byte, violations []*Violation)
}

// LintingResult collects the files of one run.
type LintingResult struct {
	Files []*LintedFile
}

// Stats summarises a run.
type Stats struct {
	Files      int            `json:"files" yaml:"files"`
	CleanFiles int            `json:"clean_files" yaml:"clean_files"`
	Violations int            `json:"violations" yaml:"violations"`
	Fixable    int            `json:"fixable" yaml:"fixable"`
	Cached     int            `json:"cached" yaml:"cached"`
	ByCode     map[string]int `json:"by_code" yaml:"by_code"`
}

// Stats summarises the run.
func (r *LintingResult) Stats() Stats {
	s := Stats{Files: len(r.Files), ByCode: make(map[string]int)}
	for _, f := range r.Files {
		if f.IsClean() {
			s.CleanFiles++
		}
		if f.Cached {
			s.Cached++
		}
		for _, v := range f.Violations {
			s.Violations++
			s.ByCode[v.Code]++
			if v.Fixable {
				s.Fixable++
			}
		}
	}
	return s
}

// HasErrors reports whether any file failed.
func (r *LintingResult) HasErrors() bool {
	return slices.ContainsFunc(r.Files, func(f *LintedFile) bool { return !f.IsClean() })
}

// LintPaths lints every SQL file under paths in parallel, bounded by
// Config.Processes. Results keep the order of the expanded paths.
func (l *Linter) LintPaths(ctx context.Context, paths []string, fixing bool) (*LintingResult, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, err
	}

	limit := l.cfg.Processes
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	linted := make([]*LintedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range files {
		g.Go(func() error {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			if !fixing && l.cache != nil {
				if vs, ok := l.cache.Get(gctx, path, content); ok {
					linted[i] = &LintedFile{Path: path, Source: string(content), Violations: vs, Cached: true}
					return nil
				}
			}
			lf, err := l.LintString(gctx, string(content), path, fixing)
			if err != nil {
				return err
			}
			if !fixing && l.cache != nil {
				l.cache.Put(gctx, path, content, lf.Violations)
			}
			linted[i] = lf
			l.logger.Debug("linted file", "file", path, "violations", len(lf.Violations), "elapsed", lf.Elapsed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &LintingResult{Files: linted}, nil
}

// ExpandPaths resolves files and directories to a sorted list of .sql files.
// Hidden directories are skipped.
func ExpandPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".sql") {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	slices.Sort(out)
	return out, nil
}
