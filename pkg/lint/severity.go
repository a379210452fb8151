package lint

import "strings"

// Severity ranks a violation. Only SeverityError fails a run.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

var severityNames = [...]string{"error", "warning", "info", "hint"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// ParseSeverity accepts the names above plus "warn". Unknown names give
// SeverityWarning and false.
func ParseSeverity(s string) (Severity, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warn" {
		return SeverityWarning, true
	}
	for i, name := range severityNames {
		if s == name {
			return Severity(i), true
		}
	}
	return SeverityWarning, false
}

// IsWarning reports whether a violation of this severity leaves the run passing.
func (s Severity) IsWarning() bool {
	return s != SeverityError
}
