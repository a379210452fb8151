package state

import (
	"context"
	"sync/atomic"

	"github.com/leapstack-labs/sqlgrain/internal/macro"
	"github.com/leapstack-labs/sqlgrain/pkg/lint"
)

// LintCache adapts a Store to lint.Cache for one linter configuration.
type LintCache struct {
	store      *Store
	configHash string
	hits       atomic.Int64
}

var _ lint.Cache = (*LintCache)(nil)

// NewLintCache fingerprints cfg and binds it to store. Macro files take
// part in the fingerprint, so editing one invalidates every entry.
func NewLintCache(store *Store, cfg *lint.Config) (*LintCache, error) {
	var macros string
	if len(cfg.MacroPaths) > 0 {
		stamp, err := macro.Stamp(cfg.MacroPaths)
		if err != nil {
			return nil, err
		}
		macros = stamp
	}
	hash, err := Fingerprint(struct {
		Config *lint.Config
		Macros string
	}{cfg, macros})
	if err != nil {
		return nil, err
	}
	return &LintCache{store: store, configHash: hash}, nil
}

// Get implements lint.Cache.
func (c *LintCache) Get(ctx context.Context, path string, content []byte) ([]*lint.Violation, bool) {
	vs, ok, err := c.store.Lookup(ctx, KeyFor(path, content, c.configHash))
	if err != nil {
		c.store.logger.Warn("cache lookup failed", "file", path, "error", err)
		return nil, false
	}
	if ok {
		c.hits.Add(1)
	}
	return vs, ok
}

// Put implements lint.Cache.
func (c *LintCache) Put(ctx context.Context, path string, content []byte, violations []*lint.Violation) {
	if err := c.store.Save(ctx, KeyFor(path, content, c.configHash), violations); err != nil {
		c.store.logger.Warn("cache save failed", "file", path, "error", err)
	}
}

// Hits returns the number of cache hits so far.
func (c *LintCache) Hits() int {
	return int(c.hits.Load())
}
