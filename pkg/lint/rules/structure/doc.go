// Package structure provides lint rules for the structure of CASE
// expressions (ST01, ST04).
package structure
