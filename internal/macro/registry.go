package macro

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"go.starlark.net/starlark"

	starctx "github.com/leapstack-labs/sqlgrain/internal/starlark"
)

// ReservedNamespaces are the template globals a macro file cannot replace.
var ReservedNamespaces = func() []string {
	names := make([]string, 0, 8)
	for name := range starctx.Predeclared(nil) {
		if !strings.HasPrefix(name, "__") {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}()

// RegistryError reports a namespace that cannot be registered.
type RegistryError struct {
	Namespace string
	Path      string
	Message   string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("macro namespace %q (%s): %s", e.Namespace, e.Path, e.Message)
}

// Registry holds loaded modules by namespace.
type Registry struct {
	modules map[string]*LoadedModule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*LoadedModule)}
}

// Register adds m, rejecting reserved and duplicate namespaces.
func (r *Registry) Register(m *LoadedModule) error {
	if slices.Contains(ReservedNamespaces, m.Namespace) {
		return &RegistryError{Namespace: m.Namespace, Path: m.Path, Message: "reserved name"}
	}
	if prev, ok := r.modules[m.Namespace]; ok {
		return &RegistryError{Namespace: m.Namespace, Path: m.Path, Message: "already defined in " + prev.Path}
	}
	r.modules[m.Namespace] = m
	return nil
}

// RegisterAll registers modules in order, stopping at the first error.
func (r *Registry) RegisterAll(modules []*LoadedModule) error {
	for _, m := range modules {
		if err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Has reports whether namespace is registered.
func (r *Registry) Has(namespace string) bool {
	_, ok := r.modules[namespace]
	return ok
}

// Get returns a module or nil.
func (r *Registry) Get(namespace string) *LoadedModule {
	return r.modules[namespace]
}

// Len returns the number of modules.
func (r *Registry) Len() int { return len(r.modules) }

// Namespaces returns the registered namespaces, sorted.
func (r *Registry) Namespaces() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ToStarlarkDict exposes every module as a global of its namespace.
func (r *Registry) ToStarlarkDict() starlark.StringDict {
	dict := make(starlark.StringDict, len(r.modules))
	for name, m := range r.modules {
		dict[name] = &starlarkModule{name: name, exports: m.Exports}
	}
	return dict
}

// LoadAndRegister loads every macro directory into a new registry.
func LoadAndRegister(dirs ...string) (*Registry, error) {
	modules, err := NewLoader(dirs...).Load()
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	if err := r.RegisterAll(modules); err != nil {
		return nil, err
	}
	return r, nil
}

// starlarkModule is a namespace value: utils.cents resolves to an export.
type starlarkModule struct {
	name    string
	exports starlark.StringDict
}

var _ starlark.HasAttrs = (*starlarkModule)(nil)

func (m *starlarkModule) String() string        { return "<module " + m.name + ">" }
func (m *starlarkModule) Type() string          { return "module" }
func (m *starlarkModule) Freeze()               { m.exports.Freeze() }
func (m *starlarkModule) Truth() starlark.Bool  { return starlark.True }
func (m *starlarkModule) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: module") }

func (m *starlarkModule) Attr(name string) (starlark.Value, error) {
	if v, ok := m.exports[name]; ok {
		return v, nil
	}
	return nil, starlark.NoSuchAttrError(fmt.Sprintf("module %s has no %s", m.name, name))
}

func (m *starlarkModule) AttrNames() []string {
	return m.exports.Keys()
}

// Cache keeps loaded registries until a macro file changes.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	stamp    string
	registry *Registry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Load returns the registry for dirs, reloading when a file was added,
// removed or modified since the last call.
func (c *Cache) Load(dirs []string) (*Registry, error) {
	stamp, err := Stamp(dirs)
	if err != nil {
		return nil, err
	}
	key := strings.Join(dirs, string(os.PathListSeparator))

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.stamp == stamp {
		return e.registry, nil
	}
	r, err := LoadAndRegister(dirs...)
	if err != nil {
		return nil, err
	}
	c.entries[key] = cacheEntry{stamp: stamp, registry: r}
	return r, nil
}

// Stamp fingerprints the .star files of dirs by name, size and mtime.
func Stamp(dirs []string) (string, error) {
	var b strings.Builder
	for _, dir := range dirs {
		files, err := starFiles(dir)
		if err != nil {
			return "", err
		}
		for _, f := range files {
			info, err := os.Stat(f)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%s:%d:%d;", f, info.Size(), info.ModTime().UnixNano())
		}
	}
	return b.String(), nil
}
