package store

import (
	"errors"
	"time"

	"github.com/jgrey4296/instal-stable-sub001/internal/check"
)

// Outcome summarises how a run ended.
type Outcome string

const (
	// OutcomeOK means no error-level reports.
	OutcomeOK Outcome = "ok"
	// OutcomeFailed means at least one error or hard failure.
	OutcomeFailed Outcome = "failed"
	// OutcomeFatal means a checker aborted the run.
	OutcomeFatal Outcome = "fatal"
	// OutcomeError means the run could not complete, e.g. the input failed
	// to compile.
	OutcomeError Outcome = "error"
)

// OutcomeOf classifies the error returned by Runner.Check.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	if _, ok := check.AsFailed(err); ok {
		return OutcomeFailed
	}
	var fatal *check.FatalError
	if errors.As(err, &fatal) {
		return OutcomeFatal
	}
	return OutcomeError
}

// Run is one recorded check run.
type Run struct {
	ID        string         `json:"id"`
	Seq       int64          `json:"seq"`
	StartedAt time.Time      `json:"started_at"`
	Paths     []string       `json:"paths"`
	Checks    []string       `json:"checks"`
	Outcome   Outcome        `json:"outcome"`
	Error     string         `json:"error,omitempty"`
	Counts    map[string]int `json:"counts"`
}

// Report is a stored diagnostic.
type Report struct {
	RunID    string         `json:"run_id"`
	Index    int            `json:"index"`
	Checker  string         `json:"checker"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	File     string         `json:"file,omitempty"`
	Line     int            `json:"line,omitempty"`
	Column   int            `json:"column,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Input is what a caller knows about a finished run.
type Input struct {
	Paths   []string
	Checks  []string
	Results check.Results
	// Err is the error returned by Runner.Check, or a load error.
	Err error
}
