package macro

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func module(ns string, exports starlark.StringDict) *LoadedModule {
	if exports == nil {
		exports = starlark.StringDict{}
	}
	return &LoadedModule{Namespace: ns, Path: "/macros/" + ns + ".star", Exports: exports}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(module("datetime", nil)))
	assert.True(t, r.Has("datetime"))
	assert.Equal(t, 1, r.Len())
	assert.NotNil(t, r.Get("datetime"))
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistryReservedNamespace(t *testing.T) {
	require.NotEmpty(t, ReservedNamespaces)
	assert.NotContains(t, ReservedNamespaces, "__filters__")

	for _, reserved := range ReservedNamespaces {
		t.Run(reserved, func(t *testing.T) {
			err := NewRegistry().Register(module(reserved, nil))
			var regErr *RegistryError
			require.ErrorAs(t, err, &regErr)
			assert.Equal(t, reserved, regErr.Namespace)
		})
	}
}

func TestRegistryDuplicateNamespace(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(module("utils", nil)))

	other := module("utils", nil)
	other.Path = "/other/utils.star"
	err := r.Register(other)
	var regErr *RegistryError
	require.ErrorAs(t, err, &regErr)
	assert.Contains(t, err.Error(), "/macros/utils.star")
}

func TestRegistryRegisterAllStopsOnError(t *testing.T) {
	r := NewRegistry()
	err := r.RegisterAll([]*LoadedModule{module("datetime", nil), module("config", nil), module("utils", nil)})
	require.Error(t, err)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryNamespaces(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterAll([]*LoadedModule{module("zeta", nil), module("alpha", nil), module("beta", nil)}))
	assert.Equal(t, []string{"alpha", "beta", "zeta"}, r.Namespaces())
}

func TestRegistryToStarlarkDict(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(module("utils", starlark.StringDict{
		"greet": starlark.String("hello"),
		"add":   starlark.String("add"),
	})))

	dict := r.ToStarlarkDict()
	require.Len(t, dict, 1)
	mod, ok := dict["utils"].(starlark.HasAttrs)
	require.True(t, ok)

	v, err := mod.Attr("greet")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("hello"), v)
	assert.Equal(t, []string{"add", "greet"}, mod.AttrNames())

	_, err = mod.Attr("missing")
	assert.Error(t, err)
}

func TestStarlarkModuleValue(t *testing.T) {
	m := &starlarkModule{name: "test", exports: starlark.StringDict{}}
	assert.Equal(t, "<module test>", m.String())
	assert.Equal(t, "module", m.Type())
	assert.Equal(t, starlark.True, m.Truth())
	_, err := m.Hash()
	assert.Error(t, err)
}

func TestLoadAndRegisterMissing(t *testing.T) {
	r, err := LoadAndRegister(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Zero(t, r.Len())
}

func TestCacheReloadsOnChange(t *testing.T) {
	dir := writeMacros(t, map[string]string{"utils.star": "x = 1\n"})
	c := NewCache()

	first, err := c.Load([]string{dir})
	require.NoError(t, err)
	again, err := c.Load([]string{dir})
	require.NoError(t, err)
	assert.Same(t, first, again)

	path := filepath.Join(dir, "extra.star")
	require.NoError(t, os.WriteFile(path, []byte("y = 2\n"), 0o600))
	later := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	reloaded, err := c.Load([]string{dir})
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)
	assert.True(t, reloaded.Has("extra"))
}
