// Package layout provides lint rules for whitespace and line structure:
// spacing (LT01), indentation (LT02), set operators (LT11) and the start and
// end of the file (LT12, LT13).
//
// Layout rules work on the raw leaves of the tree. Metas carry the indent
// structure; whitespace and newline tokens carry the layout being checked.
package layout
