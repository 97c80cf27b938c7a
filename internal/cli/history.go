package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgrey4296/instal-stable-sub001/internal/config"
	"github.com/jgrey4296/instal-stable-sub001/internal/store"
)

// HistoryOptions holds flags for the history commands.
type HistoryOptions struct {
	*RootOptions
	DB    string
	Limit int
}

// NewHistoryCommand creates the history command and its show subcommand.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded check runs",
		Long: `List the check runs recorded with "instal check --db", newest first.

The database defaults to store.path from instal.yaml.

Examples:
  instal history --db .instal/history.db
  instal history --limit 5 --format json
  instal history show <run-id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "history database path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 = all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the reports of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(opts, args[0], cmd)
		},
	})

	return cmd
}

// openHistory opens an existing history database named by --db or the
// project config.
func openHistory(opts *HistoryOptions, cmd *cobra.Command) (*store.Store, error) {
	path := opts.DB
	if path == "" {
		cfg, err := config.NewLoader(newLogger(cmd.ErrOrStderr(), slog.LevelWarn, opts.Verbose)).Load(".")
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
		}
		path = cfg.Store.Path
	}
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no history database: pass --db or set store.path in instal.yaml")
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open history store", err)
	}
	return st, nil
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openHistory(opts, cmd)
	if err != nil {
		return reportError(formatter, GetExitCode(err), ErrCodeStore, "history", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return reportError(formatter, ExitCommandError, ErrCodeStore, "list runs", err)
	}

	if formatter.JSON() {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tSTARTED\tOUTCOME\tREPORTS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			r.Seq, r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.Outcome, formatCounts(r.Counts))
	}
	return tw.Flush()
}

func runHistoryShow(opts *HistoryOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openHistory(opts, cmd)
	if err != nil {
		return reportError(formatter, GetExitCode(err), ErrCodeStore, "history", err)
	}
	defer st.Close()

	run, err := st.ReadRun(cmd.Context(), id)
	if errors.Is(err, store.ErrRunNotFound) {
		return reportError(formatter, ExitCommandError, ErrCodeNotFound, "show run", err)
	}
	if err != nil {
		return reportError(formatter, ExitCommandError, ErrCodeStore, "show run", err)
	}
	reports, err := st.ReadReports(cmd.Context(), id)
	if err != nil {
		return reportError(formatter, ExitCommandError, ErrCodeStore, "show run", err)
	}

	out := storedOutput(run, reports)
	if formatter.JSON() {
		return formatter.Success(out)
	}
	fmt.Fprintf(formatter.Writer, "run %s (#%d) at %s: %s\n",
		run.ID, run.Seq, run.StartedAt.UTC().Format(time.RFC3339), run.Outcome)
	RenderText(formatter.Writer, out)
	return nil
}

// storedOutput rebuilds the printed form of a run from the history store.
func storedOutput(run *store.Run, reports []store.Report) *CheckOutput {
	out := &CheckOutput{
		RunID:   run.ID,
		Files:   run.Paths,
		Checks:  run.Checks,
		Outcome: run.Outcome,
		Error:   run.Error,
		Counts:  run.Counts,
		Reports: make([]ReportView, 0, len(reports)),
	}
	for _, r := range reports {
		view := ReportView{
			Checker:  r.Checker,
			Severity: r.Severity,
			Message:  r.Message,
			Data:     r.Data,
		}
		if r.File != "" {
			view.Position = fmt.Sprintf("%s:%d:%d", r.File, r.Line, r.Column)
		}
		out.Reports = append(out.Reports, view)
	}
	return out
}

// formatCounts renders severity counts as "error=1 warning=2", sorted by name.
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "-"
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, counts[name])
	}
	return strings.Join(parts, " ")
}
