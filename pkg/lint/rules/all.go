package rules

// Import all rule subpackages to register them with the global registry.
import (
	_ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules/aliasing"
	_ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules/capitalisation"
	_ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules/convention"
	_ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules/layout"
	_ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules/structure"
)
