package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlgrain/pkg/dialect"
	"github.com/leapstack-labs/sqlgrain/pkg/templater"
)

// OutputModes lists the accepted values of the output key.
var OutputModes = []string{"auto", "text", "json", "yaml", "github"}

// Validate checks the values that can be checked without building a linter.
// Rule references are validated when the rule pack is built.
func (c *Config) Validate() error {
	if _, err := dialect.Get(c.Dialect); err != nil {
		return fmt.Errorf("invalid dialect: %w", err)
	}
	if _, err := templater.Get(c.Templater); err != nil {
		return fmt.Errorf("invalid templater: %w", err)
	}
	if !slices.Contains(OutputModes, c.Output) {
		return fmt.Errorf("invalid output %q (valid: %s)", c.Output, strings.Join(OutputModes, ", "))
	}
	switch c.Indentation.IndentUnit {
	case "space", "tab":
	default:
		return fmt.Errorf("invalid indentation.indent_unit %q (valid: space, tab)", c.Indentation.IndentUnit)
	}
	if c.RunawayLimit < 1 {
		return fmt.Errorf("runaway_limit must be at least 1, got %d", c.RunawayLimit)
	}
	return nil
}
