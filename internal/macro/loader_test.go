package macro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func writeMacros(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "macros")
	require.NoError(t, os.Mkdir(dir, 0o750))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestLoaderLoad(t *testing.T) {
	tests := []struct {
		name           string
		files          map[string]string
		wantNamespaces []string
		wantExports    map[string][]string
		wantErr        string
	}{
		{
			name:  "empty directory",
			files: map[string]string{},
		},
		{
			name: "private names are not exported",
			files: map[string]string{"utils.star": `
def greet(name):
    return "Hello, " + name + "!"

def add(a, b):
    return a + b

_private = "hidden"
`},
			wantNamespaces: []string{"utils"},
			wantExports:    map[string][]string{"utils": {"add", "greet"}},
		},
		{
			name: "multiple files",
			files: map[string]string{
				"datetime.star": "def today():\n    return \"2024-01-01\"\n",
				"math.star":     "def square(x):\n    return x * x\n",
				"notes.txt":     "ignored",
			},
			wantNamespaces: []string{"datetime", "math"},
		},
		{
			name:    "syntax error",
			files:   map[string]string{"broken.star": "def broken(:\n    return 1\n"},
			wantErr: "broken.star",
		},
		{
			name:    "invalid namespace",
			files:   map[string]string{"123invalid.star": "x = 1"},
			wantErr: "must start with letter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeMacros(t, tt.files)
			modules, err := NewLoader(dir).Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				var le *LoadError
				require.ErrorAs(t, err, &le)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			var namespaces []string
			for _, m := range modules {
				namespaces = append(namespaces, m.Namespace)
			}
			assert.Equal(t, tt.wantNamespaces, namespaces)

			for _, m := range modules {
				if want, ok := tt.wantExports[m.Namespace]; ok {
					assert.ElementsMatch(t, want, m.Exports.Keys())
				}
			}
		})
	}
}

func TestLoaderMissingDirectory(t *testing.T) {
	modules, err := NewLoader(filepath.Join(t.TempDir(), "nope")).Load()
	require.NoError(t, err)
	assert.Nil(t, modules)
}

func TestLoaderNotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macros")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	_, err := NewLoader(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestLoaderSeveralDirectories(t *testing.T) {
	a := writeMacros(t, map[string]string{"a.star": "x = 1\n"})
	b := writeMacros(t, map[string]string{"b.star": "y = 2\n"})
	modules, err := NewLoader(a, b).Load()
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Equal(t, "a", modules[0].Namespace)
	assert.Equal(t, "b", modules[1].Namespace)
}

func TestLoaderExportsAreFrozen(t *testing.T) {
	dir := writeMacros(t, map[string]string{"state.star": "items = [1, 2]\n"})
	modules, err := NewLoader(dir).Load()
	require.NoError(t, err)
	require.Len(t, modules, 1)

	list, ok := modules[0].Exports["items"].(*starlark.List)
	require.True(t, ok)
	assert.Error(t, list.Append(starlark.MakeInt(3)))
}

func TestLoaderExecuteFunction(t *testing.T) {
	dir := writeMacros(t, map[string]string{"utils.star": `
def cents(col, scale=2):
    return "round(%s / 100, %d)" % (col, scale)
`})
	modules, err := NewLoader(dir).Load()
	require.NoError(t, err)
	require.Len(t, modules, 1)

	fn, ok := modules[0].Exports["cents"].(starlark.Callable)
	require.True(t, ok)
	got, err := starlark.Call(&starlark.Thread{}, fn, starlark.Tuple{starlark.String("amount")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "round(amount / 100, 2)", string(got.(starlark.String)))
}

func TestValidateNamespace(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "utils"},
		{name: "_private"},
		{name: "utils2"},
		{name: "", wantErr: true},
		{name: "2utils", wantErr: true},
		{name: "my-utils", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateNamespace(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
