package doctor

import (
	"encoding/json"
	"time"
)

// Severity orders check outcomes from harmless to blocking.
type Severity int

const (
	SeverityPass Severity = iota
	SeverityInfo
	// SeverityWarning means nsm works but something deserves attention,
	// such as a leftover restore snapshot.
	SeverityWarning
	// SeverityError means backups or restores will fail until it is fixed.
	SeverityError
)

var severityNames = [...]string{"pass", "info", "warning", "error"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalJSON renders the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Status   Severity `json:"status"`
	Message  string   `json:"message"`

	// Details carries values worth showing in JSON output, such as paths
	// and counts. Path values are rewritten by Redact.
	Details map[string]any `json:"details,omitempty"`

	// Fixable indicates whether nsm doctor --fix can repair this.
	Fixable bool   `json:"fixable,omitempty"`
	FixHint string `json:"fix_hint,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// Problem reports whether the result is a warning or an error.
func (r *CheckResult) Problem() bool {
	return r.Status >= SeverityWarning
}

// Summary counts results by severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}
