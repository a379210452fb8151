// Package rules bundles the lint rules shipped with sqlgrain.
//
// Rules are organized by category following SQLFluff's naming conventions:
//   - aliasing: table and column aliases (AL01, AL02, AL05, AL06)
//   - capitalisation: keyword and identifier case (CP01, CP02)
//   - convention: operator and function conventions (CV01, CV04)
//   - layout: whitespace and indentation (LT01, LT02, LT11, LT12, LT13)
//   - structure: query structure (ST01, ST04)
//
// To register all rules with the global lint registry, import this package
// with a blank identifier:
//
//	import _ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules"
package rules
