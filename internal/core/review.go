// Package core defines the essential interfaces and data structures that form
// the backbone of the application. These components are designed to be
// abstract, allowing for flexible and decoupled implementations of the
// application's logic.
package core

// Issue severities the review prompt is restricted to. Anything below P1 is
// intentionally filtered out on the model side.
const (
	SeverityBlocker  = "P0"
	SeverityCritical = "P1"
)

// Issue represents a single finding for a specific line of the new revision.
type Issue struct {
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// ReviewOutcome is the result of interpreting the model's reply. Exactly one
// form is populated per run: a structured issue list, or the raw reply text
// destined for fallback posting when structured parsing failed.
type ReviewOutcome struct {
	Issues   []Issue
	Fallback string
}

// Structured reports whether the outcome carries parsed issues rather than
// raw fallback text.
func (o ReviewOutcome) Structured() bool {
	return o.Fallback == ""
}
