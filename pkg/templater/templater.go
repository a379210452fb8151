// Package templater turns source files into templated files: the SQL that gets
// lexed, plus a mapping from every templated byte back to the source byte it
// came from. Concrete templaters register themselves from init().
package templater

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownTemplater is returned when a templater name is not registered.
var ErrUnknownTemplater = errors.New("unknown templater")

// Config is the slice of the configuration that templaters read.
type Config struct {
	// Context holds the variables made available to the template.
	Context map[string]any
	// ParamStyle selects the placeholder syntax ("colon", "dollar", "question_mark", ...).
	ParamStyle string
	// MacroPaths are directories of Starlark macro libraries.
	MacroPaths []string
}

// Templater renders a source file into a TemplatedFile.
type Templater interface {
	Name() string
	Description() string
	Process(ctx context.Context, in, fname string, cfg Config) (*TemplatedFile, error)
}

// TemplateError is raised when a template cannot be rendered.
type TemplateError struct {
	Line    int
	Column  int
	Message string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Templater)
)

// Register adds a templater to the global registry.
func Register(t Templater) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(t.Name())] = t
}

// Get returns a registered templater by name.
func Get(name string) (Templater, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownTemplater, name, strings.Join(listLocked(), ", "))
	}
	return t, nil
}

// List returns all registered templater names, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return listLocked()
}

func listLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
