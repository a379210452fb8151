// Package convention provides lint rules for SQL conventions: the not-equal
// operator (CV01) and row counting (CV04).
package convention
