package ruleset

import (
	"fmt"

	"github.com/javajack/xlrule"
)

// Severity indicates how a failed check is reported.
type Severity int

const (
	SeverityError   Severity = iota // cell value is unusable
	SeverityWarning                 // cell value is suspicious but accepted
)

// String returns "error" or "warning".
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text means error.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "error":
		*s = SeverityError
	case "warning", "warn":
		*s = SeverityWarning
	default:
		return fmt.Errorf("unknown severity %q: must be error or warning", text)
	}
	return nil
}

// Issue is a single failed check.
type Issue struct {
	Severity Severity    `json:"severity" yaml:"severity"`
	Cell     xlrule.Cell `json:"cell" yaml:"cell"`
	Message  string      `json:"message" yaml:"message"`
}

// String formats the issue as "[ERROR] Sheet1!A2: message" or "[WARN] ...".
func (i Issue) String() string {
	sev := "ERROR"
	if i.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, i.Cell, i.Message)
}

// Report summarizes a rule set run over one workbook.
type Report struct {
	Checked  int     `json:"checked" yaml:"checked"`
	Errors   int     `json:"errors" yaml:"errors"`
	Warnings int     `json:"warnings" yaml:"warnings"`
	Issues   []Issue `json:"issues" yaml:"issues"`
}

func (r *Report) add(issue Issue) {
	r.Issues = append(r.Issues, issue)
	if issue.Severity == SeverityWarning {
		r.Warnings++
	} else {
		r.Errors++
	}
}

// HasErrors reports whether any issue has error severity.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}
