// Package dialects registers every built-in dialect with pkg/dialect.
//
//	import _ "github.com/leapstack-labs/sqlgrain/pkg/dialects"
package dialects

import (
	_ "github.com/leapstack-labs/sqlgrain/pkg/dialects/ansi"       // ansi
	_ "github.com/leapstack-labs/sqlgrain/pkg/dialects/databricks" // databricks
	_ "github.com/leapstack-labs/sqlgrain/pkg/dialects/trino"      // trino
)
