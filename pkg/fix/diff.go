package fix

import (
	"github.com/pmezard/go-difflib/difflib"
)

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

// UnifiedDiff returns a unified diff between the original and fixed source,
// or "" when they are equal.
func UnifiedDiff(path, original, fixed string) (string, error) {
	if original == fixed {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(fixed),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  contextLines,
	})
}
