package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/store"
)

// summaryOrder lists severities most severe first for the summary line.
var summaryOrder = []check.Severity{
	check.SeverityHardFailure,
	check.SeverityError,
	check.SeverityWarning,
	check.SeverityInfo,
	check.SeverityDebug,
}

// RenderText prints one line per report followed by a summary, in the
// familiar file:line:col layout.
func RenderText(w io.Writer, out *CheckOutput) {
	for _, r := range out.Reports {
		if r.Position != "" {
			fmt.Fprintf(w, "%s: ", r.Position)
		}
		fmt.Fprintf(w, "%s [%s] %s\n", r.Severity, r.Checker, r.Message)
	}
	if out.Outcome == store.OutcomeFatal || out.Outcome == store.OutcomeError {
		fmt.Fprintf(w, "%s: %s\n", out.Outcome, out.Error)
	}
	fmt.Fprintln(w, summarize(out))
	if out.RunID != "" {
		fmt.Fprintf(w, "recorded as run %s\n", out.RunID)
	}
}

func summarize(out *CheckOutput) string {
	var parts []string
	for _, sev := range summaryOrder {
		if n := out.Counts[sev.String()]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s(s)", n, sev))
		}
	}
	files := fmt.Sprintf("%d file(s)", len(out.Files))
	if len(parts) == 0 {
		if out.Outcome == store.OutcomeOK {
			return "✓ no problems in " + files
		}
		return "checked " + files
	}
	return strings.Join(parts, ", ") + " in " + files
}
