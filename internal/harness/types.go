package harness

import "github.com/jgrey4296/instal-stable-sub001/internal/store"

// ReportEvent is one diagnostic as read back from the history store.
type ReportEvent struct {
	Checker  string         `json:"checker"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Position string         `json:"position,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates every assertion held.
	Pass bool `json:"pass"`

	// RunID is the ID the run was recorded under.
	RunID string `json:"run_id"`

	// Outcome is how the check run ended.
	Outcome store.Outcome `json:"outcome"`

	// Error is the run error for fatal and error outcomes.
	Error string `json:"error,omitempty"`

	// Reports holds every stored diagnostic, most severe first.
	Reports []ReportEvent `json:"reports"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Reports: []ReportEvent{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
