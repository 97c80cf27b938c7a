// Package harness provides a conformance testing framework for the checks.
//
// A scenario names one or more CUE specification files, optionally narrows the
// set of checks, and asserts on the diagnostics the run produces:
//
//	name: library_unused_event
//	description: an exogenous event that triggers nothing is reported
//	specs: [library.cue]
//	checks:
//	  enable: [events]
//	assertions:
//	  - type: report_contains
//	    severity: warning
//	    message: Unused External Event
//	  - type: outcome
//	    outcome: ok
//
// Each scenario runs against a fresh in-memory history store with sequential
// run IDs and a fixed clock, so the recorded run and its golden snapshot are
// byte-identical across executions.
package harness
