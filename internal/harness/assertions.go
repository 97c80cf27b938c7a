package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Reports  []ReportEvent // All reports for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Reports) > 0 {
		fmt.Fprintf(&buf, "\nReports:\n")
		for i, r := range e.Reports {
			fmt.Fprintf(&buf, "  [%d] %s %s [%s] %s\n", i+1, r.Position, r.Severity, r.Checker, r.Message)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertReportContains:
		if countMatches(result.Reports, a) == 0 {
			return &AssertionError{
				Type:     a.Type,
				Expected: describe(a),
				Actual:   "no matching report",
				Reports:  result.Reports,
			}
		}
	case AssertReportAbsent:
		if n := countMatches(result.Reports, a); n > 0 {
			return &AssertionError{
				Type:     a.Type,
				Expected: "no report matching " + describe(a),
				Actual:   fmt.Sprintf("%d matching report(s)", n),
				Reports:  result.Reports,
			}
		}
	case AssertReportCount:
		if n := countMatches(result.Reports, a); n != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d report(s) matching %s", a.Count, describe(a)),
				Actual:   fmt.Sprintf("%d", n),
				Reports:  result.Reports,
			}
		}
	case AssertOutcome:
		if string(result.Outcome) != a.Outcome {
			actual := string(result.Outcome)
			if result.Error != "" {
				actual += ": " + result.Error
			}
			return &AssertionError{
				Type:     a.Type,
				Expected: a.Outcome,
				Actual:   actual,
				Reports:  result.Reports,
			}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func matches(r ReportEvent, a Assertion) bool {
	if a.Checker != "" && r.Checker != a.Checker {
		return false
	}
	if a.Severity != "" && !strings.EqualFold(r.Severity, a.Severity) {
		return false
	}
	if a.Message != "" && r.Message != a.Message {
		return false
	}
	return true
}

func countMatches(reports []ReportEvent, a Assertion) int {
	n := 0
	for _, r := range reports {
		if matches(r, a) {
			n++
		}
	}
	return n
}

func describe(a Assertion) string {
	var parts []string
	if a.Checker != "" {
		parts = append(parts, "checker="+a.Checker)
	}
	if a.Severity != "" {
		parts = append(parts, "severity="+a.Severity)
	}
	if a.Message != "" {
		parts = append(parts, fmt.Sprintf("message=%q", a.Message))
	}
	if len(parts) == 0 {
		return "any report"
	}
	return strings.Join(parts, " ")
}
