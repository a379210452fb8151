package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownDialect is returned when a dialect name is not registered.
var ErrUnknownDialect = errors.New("unknown dialect")

type entry struct {
	once  sync.Once
	build func() *Dialect
	d     *Dialect
}

// Dialect registry
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]*entry)
)

// Register registers a dialect constructor. The dialect is built on first
// use. Called by dialect implementations in their init() functions.
func Register(name string, build func() *Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[strings.ToLower(name)] = &entry{build: build}
}

// Get returns a dialect by name, building it if needed.
func Get(name string) (*Dialect, error) {
	dialectsMu.RLock()
	e, ok := dialects[strings.ToLower(name)]
	dialectsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownDialect, name, strings.Join(List(), ", "))
	}
	e.once.Do(func() {
		e.d = e.build()
		if !e.d.Expanded() {
			e.d.Expand()
		}
	})
	return e.d, nil
}

// MustGet is Get for names known at compile time.
func MustGet(name string) *Dialect {
	d, err := Get(name)
	if err != nil {
		panic(err)
	}
	return d
}

// List returns all registered dialect names (sorted).
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
