// Package capitalisation provides lint rules for the casing of keywords and
// identifiers (CP01, CP02).
package capitalisation
