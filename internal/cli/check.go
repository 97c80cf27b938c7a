package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jgrey4296/instal-stable-sub001/internal/check"
	"github.com/jgrey4296/instal-stable-sub001/internal/checks"
	"github.com/jgrey4296/instal-stable-sub001/internal/config"
	"github.com/jgrey4296/instal-stable-sub001/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	DB         string   // history database (overrides store.path)
	MetricsOut string   // prometheus textfile written after each run
	Watch      bool     // re-run when inputs change
	Enable     []string // overrides checks.enable
	Disable    []string // overrides checks.disable
}

// ReportView is one diagnostic as printed by the CLI.
type ReportView struct {
	Checker  string         `json:"checker"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Position string         `json:"position,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// CheckOutput is the result of one check run.
type CheckOutput struct {
	RunID   string         `json:"run_id,omitempty"`
	Files   []string       `json:"files"`
	Checks  []string       `json:"checks"`
	Outcome store.Outcome  `json:"outcome"`
	Error   string         `json:"error,omitempty"`
	Counts  map[string]int `json:"counts"`
	Reports []ReportView   `json:"reports"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Run semantic checks over CUE specs",
		Long: `Load the CUE files named by paths (directories are searched with the
include globs from instal.yaml, default "**/*.cue"), compile them into one
forest and run the enabled checks.

Exit codes:
  0 - Only warnings or nothing to report
  1 - Error reports, crashed checks or a fatal structural error
  2 - Command error (bad paths, invalid config, specs that do not compile)

Examples:
  instal check
  instal check ./specs --disable institution-structure
  instal check ./specs --db .instal/history.db --metrics-out instal.prom
  instal check ./specs --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "record the run in this SQLite history database")
	cmd.Flags().StringVar(&opts.MetricsOut, "metrics-out", "", "write prometheus metrics to this textfile")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "re-run checks when CUE files change")
	cmd.Flags().StringSliceVar(&opts.Enable, "enable", nil, "run only these checks")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "skip these checks")

	return cmd
}

func runCheck(ctx context.Context, opts *CheckOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadCheckConfig(opts, paths[0], newLogger(cmd.ErrOrStderr(), slog.LevelWarn, opts.Verbose))
	if err != nil {
		return reportError(formatter, ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Level(), opts.Verbose)

	session, err := newCheckSession(cfg, opts.MetricsOut, logger)
	if err != nil {
		return reportError(formatter, ExitCommandError, ErrCodeStore, "open history store", err)
	}
	defer session.Close()

	out, err := session.run(ctx, paths)
	if !opts.Watch {
		return renderCheck(formatter, out, err)
	}

	_ = renderCheck(formatter, out, err)
	watcher, err := newSpecWatcher(paths, logger)
	if err != nil {
		return reportError(formatter, ExitCommandError, ErrCodeGeneric, "start watcher", err)
	}
	defer watcher.Close()

	formatter.VerboseLog("Watching %v for changes", paths)
	return watcher.Run(ctx, func() {
		fmt.Fprintln(formatter.GetErrWriter(), "--- change detected, re-running checks")
		out, err := session.run(ctx, paths)
		_ = renderCheck(formatter, out, err)
	})
}

// loadCheckConfig layers the config files found from dir, then the flags.
func loadCheckConfig(opts *CheckOptions, dir string, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.NewLoader(logger).Load(dir)
	if err != nil {
		return nil, err
	}
	cfg.Merge(&config.Config{
		Checks: config.ChecksConfig{Enable: opts.Enable, Disable: opts.Disable},
		Store:  config.StoreConfig{Path: opts.DB},
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkSession holds what survives between runs in watch mode.
type checkSession struct {
	cfg        *config.Config
	names      []string
	store      *store.Store
	registry   *prometheus.Registry
	metrics    *check.Metrics
	metricsOut string
	logger     *slog.Logger
}

func newCheckSession(cfg *config.Config, metricsOut string, logger *slog.Logger) (*checkSession, error) {
	checkers, err := checks.Select(cfg.Checks.Enable, cfg.Checks.Disable)
	if err != nil {
		return nil, err
	}
	s := &checkSession{cfg: cfg, metricsOut: metricsOut, logger: logger}
	for _, c := range checkers {
		s.names = append(s.names, c.Name())
	}
	if metricsOut != "" {
		s.registry = prometheus.NewRegistry()
		s.metrics = check.NewMetrics(s.registry)
	}
	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		s.store = st
	}
	return s, nil
}

func (s *checkSession) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// run loads, checks and records one pass over paths. A returned error means
// the run could not produce a result; check failures are part of the output.
func (s *checkSession) run(ctx context.Context, paths []string) (*CheckOutput, error) {
	loaded, loadErr := LoadSpecs(paths, s.cfg.Include)
	if loadErr != nil {
		s.logger.Debug("load failed", slog.String("error", loadErr.Error()))
		if s.store != nil {
			if _, err := s.store.RecordRun(ctx, store.Input{Paths: paths, Checks: s.names, Err: loadErr}); err != nil {
				s.logger.Warn("failed to record run", slog.String("error", err.Error()))
			}
		}
		return nil, loadErr
	}

	// Fresh checkers per run keep watch mode independent of earlier passes.
	checkers, err := checks.Select(s.cfg.Checks.Enable, s.cfg.Checks.Disable)
	if err != nil {
		return nil, err
	}
	runner := check.NewRunner(checkers, check.WithLogger(s.logger), check.WithMetrics(s.metrics))
	results, checkErr := runner.Check(loaded.Forest...)

	out := newCheckOutput(loaded.Files, s.names, results, checkErr)
	s.logger.Debug("check run finished",
		slog.Int("files", len(loaded.Files)),
		slog.String("outcome", string(out.Outcome)),
		slog.Int("reports", len(out.Reports)))

	if s.store != nil {
		run, err := s.store.RecordRun(ctx, store.Input{
			Paths:   loaded.Files,
			Checks:  s.names,
			Results: results,
			Err:     checkErr,
		})
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "record run", err)
		}
		out.RunID = run.ID
	}

	if s.metricsOut != "" {
		if err := prometheus.WriteToTextfile(s.metricsOut, s.registry); err != nil {
			return nil, WrapExitError(ExitCommandError, "write metrics", err)
		}
	}
	return out, nil
}

// newCheckOutput flattens a runner result into the printed form.
func newCheckOutput(files, names []string, results check.Results, err error) *CheckOutput {
	out := &CheckOutput{
		Files:   files,
		Checks:  names,
		Outcome: store.OutcomeOf(err),
		Counts:  map[string]int{},
		Reports: []ReportView{},
	}
	if failed, ok := check.AsFailed(err); ok {
		results = failed.Results
	}
	if err != nil && out.Outcome != store.OutcomeFailed {
		out.Error = err.Error()
	}
	for sev, reps := range results {
		if len(reps) > 0 {
			out.Counts[sev.String()] = len(reps)
		}
	}
	for _, r := range results.Sorted() {
		view := ReportView{
			Checker:  r.Checker,
			Severity: r.Severity.String(),
			Message:  r.Message,
			Data:     r.Data,
		}
		if view.Message == "" && r.Err != nil {
			view.Message = r.Err.Error()
		}
		if pos := r.Pos(); pos.IsValid() {
			view.Position = pos.String()
		}
		out.Reports = append(out.Reports, view)
	}
	return out
}

// renderCheck prints a run and maps its outcome to an exit error.
func renderCheck(f *OutputFormatter, out *CheckOutput, err error) error {
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return reportError(f, ExitCommandError, loadErr.Code, "load specs", err)
		}
		return reportError(f, GetExitCode(err), ErrCodeGeneric, "check", err)
	}

	var exitErr error
	switch out.Outcome {
	case store.OutcomeFailed:
		exitErr = NewExitError(ExitFailure, fmt.Sprintf("check failed: %d error(s), %d hard failure(s)",
			out.Counts[check.SeverityError.String()], out.Counts[check.SeverityHardFailure.String()]))
	case store.OutcomeFatal:
		exitErr = NewExitError(ExitFailure, out.Error)
	}

	if !f.JSON() {
		RenderText(f.Writer, out)
		return exitErr
	}
	if exitErr != nil {
		if err := f.Failure("E_CHECK_FAILED", exitErr.Error(), out); err != nil {
			return err
		}
		return exitErr
	}
	return f.Success(out)
}

// reportError emits err as a JSON error response when JSON output is on and
// wraps it with an exit code. Text mode leaves printing to the caller of
// Execute.
func reportError(f *OutputFormatter, code int, errCode, message string, err error) error {
	if f.JSON() {
		_ = f.Error(errCode, fmt.Sprintf("%s: %v", message, err), nil)
	}
	return WrapExitError(code, message, err)
}
