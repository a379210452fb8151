// Package aliasing provides lint rules for SQL aliasing conventions.
// These rules follow SQLFluff's AL (Aliasing) rule category.
//
// Rules in this package:
//   - AL01: Implicit or explicit aliasing of tables
//   - AL02: Implicit or explicit aliasing of columns
//   - AL05: Unused table alias
//   - AL06: Alias length constraints
package aliasing
