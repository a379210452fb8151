// Package macro loads Starlark macro libraries for the jinja templater.
// Every .star file in a macro directory becomes a namespace named after the
// file, so utils.star defining cents(col) is called as {{ utils.cents("x") }}.
package macro

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Loader scans directories for .star files and executes them.
type Loader struct {
	dirs []string
}

// NewLoader creates a loader for dirs, scanned in order.
func NewLoader(dirs ...string) *Loader {
	return &Loader{dirs: dirs}
}

// LoadedModule is one executed macro file.
type LoadedModule struct {
	// Namespace is the file name without .star.
	Namespace string
	Path      string
	// Exports holds the frozen globals not starting with _.
	Exports starlark.StringDict
}

// Load executes every .star file of the loader's directories. Missing
// directories are skipped; the result is nil when nothing was found.
func (l *Loader) Load() ([]*LoadedModule, error) {
	var modules []*LoadedModule
	for _, dir := range l.dirs {
		files, err := starFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			module, err := loadFile(file)
			if err != nil {
				return nil, err
			}
			modules = append(modules, module)
		}
	}
	return modules, nil
}

// starFiles lists the .star files of dir, sorted.
func starFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access macro directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("macro path is not a directory: %s", dir)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan macro directory: %w", err)
	}
	return files, nil
}

func loadFile(path string) (*LoadedModule, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a configured macro directory
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	namespace := strings.TrimSuffix(filepath.Base(path), ".star")
	if err := validateNamespace(namespace); err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	thread := &starlark.Thread{
		Name:  "load:" + namespace,
		Print: func(_ *starlark.Thread, _ string) {},
	}
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, path, content, nil)
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}

	exports := make(starlark.StringDict)
	for name, value := range globals {
		if !strings.HasPrefix(name, "_") {
			exports[name] = value
		}
	}
	// Templates render in parallel.
	exports.Freeze()

	return &LoadedModule{Namespace: namespace, Path: path, Exports: exports}, nil
}

// validateNamespace checks that name is a Starlark identifier.
func validateNamespace(name string) error {
	if name == "" {
		return fmt.Errorf("namespace cannot be empty")
	}
	for i, r := range name {
		switch {
		case isLetter(r) || r == '_':
		case i > 0 && isDigit(r):
		case i == 0:
			return fmt.Errorf("namespace must start with letter or underscore: %s", name)
		default:
			return fmt.Errorf("namespace contains invalid character: %s", name)
		}
	}
	return nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// LoadError reports a macro file that could not be loaded.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("macro %s: %s", e.File, e.Message)
}
