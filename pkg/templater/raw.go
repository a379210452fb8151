package templater

import "context"

// Raw is the identity templater: the source is the templated output.
type Raw struct{}

func init() {
	Register(Raw{})
}

// Name implements Templater.
func (Raw) Name() string { return "raw" }

// Description implements Templater.
func (Raw) Description() string { return "No templating; the file is linted as written." }

// Process implements Templater.
func (Raw) Process(_ context.Context, in, fname string, _ Config) (*TemplatedFile, error) {
	return New(in, fname, nil, nil, nil)
}
