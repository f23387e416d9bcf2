package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hugo-vanthournhout/hv-cli/internal/exporter"
	"github.com/hugo-vanthournhout/hv-cli/internal/history"
	"github.com/hugo-vanthournhout/hv-cli/internal/render"
	"github.com/hugo-vanthournhout/hv-cli/internal/styles"
	"github.com/hugo-vanthournhout/hv-cli/internal/watch"
	"go.uber.org/zap"
)

// ErrCancelled is returned when the user declines to export a protected path.
var ErrCancelled = errors.New("export cancelled")

type exportOptions struct {
	command string
	root    string
	output  string
	ignores []string
	stdout  bool
	yes     bool
	watch   bool
	verbose bool
	// rules replaces the configured rules, as the dbt preset does.
	rules *exporter.Rules
}

func (a *App) newExporter(rules *exporter.Rules) (*exporter.Exporter, error) {
	cfg := a.Config.AI
	if rules == nil {
		var err error
		rules, err = exporter.NewRules(cfg.TextExtensions, cfg.IgnorePatterns, nil)
		if err != nil {
			return nil, fmt.Errorf("invalid ai.ignore_patterns: %w", err)
		}
	}

	return exporter.New(exporter.Options{
		Rules:         rules,
		Guard:         exporter.NewGuard(cfg.WarningPaths, a.HomeDir),
		PriorityFiles: cfg.PriorityFiles,
		MaxFileSize:   cfg.MaxFileSizeBytes(),
		Fs:            a.Fs,
		Logger:        a.Logger,
	}), nil
}

// runExport exports (or prints) the project described by opts, asking for
// confirmation when the root is protected. It returns nil result in stdout
// mode.
func (a *App) runExport(ctx context.Context, opts exportOptions) (*exporter.Result, error) {
	exp, err := a.newExporter(opts.rules)
	if err != nil {
		return nil, err
	}

	output := opts.output
	if output == "" {
		output = a.Config.AI.OutputFile
	}
	req := exporter.Request{
		Root:         opts.root,
		ExtraIgnores: opts.ignores,
		OutputPath:   output,
		Confirmed:    opts.yes,
	}

	r := render.New(a.Stdout, a.TermWidth)

	if opts.stdout {
		artifact, err := withConfirmation(a, req, exp.Build)
		if err != nil {
			return nil, err
		}
		return nil, r.RenderArtifact(artifact)
	}

	result, err := withConfirmation(a, req, func(req exporter.Request) (*exporter.Result, error) {
		stop := a.startSpinner(ctx, "Exporting "+opts.root)
		defer stop()
		return exp.Export(req)
	})
	if err != nil {
		return nil, err
	}

	r.RenderExportSummary(result, opts.verbose)
	a.recordRun(opts.command, result)
	return result, nil
}

// withConfirmation runs fn and, when it fails on a protected root the user
// agrees to export, runs it again with the request confirmed.
func withConfirmation[T any](a *App, req exporter.Request, fn func(exporter.Request) (T, error)) (T, error) {
	v, err := fn(req)
	if err == nil {
		return v, nil
	}
	if cerr := a.confirmDangerous(err); cerr != nil {
		var zero T
		return zero, cerr
	}
	req.Confirmed = true
	return fn(req)
}

// confirmDangerous returns nil when err is a DangerousPathError the user
// agreed to override. Any other error is returned unchanged.
func (a *App) confirmDangerous(err error) error {
	var dangerous *exporter.DangerousPathError
	if !errors.As(err, &dangerous) {
		return err
	}
	if !a.Interactive() {
		return fmt.Errorf("%w (use --yes to export it anyway)", err)
	}

	fmt.Fprintln(a.Stderr, styles.WARNING(fmt.Sprintf("%s is, or contains, the protected path %s.", dangerous.Root, dangerous.WarningPath)))
	ok, cerr := a.Confirmer.Confirm(fmt.Sprintf("Export %s anyway?", dangerous.Root))
	if cerr != nil {
		return fmt.Errorf("confirmation failed: %w", cerr)
	}
	if !ok {
		return ErrCancelled
	}
	a.Logger.Warn("exporting protected path after confirmation", zap.String("root", dangerous.Root))
	return nil
}

func (a *App) startSpinner(ctx context.Context, message string) func() {
	if !a.Interactive() {
		return func() {}
	}
	spinner := render.NewSpinner(a.Stderr)
	spinner.SetMessage(message)
	return spinner.Start(ctx)
}

func (a *App) recordRun(command string, result *exporter.Result) {
	if a.History == nil {
		return
	}
	run, err := a.History.RecordRun(history.ExportRun{
		Command: command,
		Root:    result.Root,
		Output:  result.Output,
		Files:   result.Files,
		Bytes:   result.Bytes,
		Skipped: len(result.Skipped),
	})
	if err != nil {
		a.Logger.Warn("failed to record export run", zap.Error(err))
		return
	}
	a.Logger.Debug("recorded export run", zap.String("run_id", run.RunID))
}

// watchAndExport re-runs the export after every change below the root until
// the process is interrupted.
func (a *App) watchAndExport(ctx context.Context, opts exportOptions, first *exporter.Result) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	exp, err := a.newExporter(opts.rules)
	if err != nil {
		return err
	}
	rules, err := a.watchRules(opts)
	if err != nil {
		return err
	}

	w, err := watch.New(watch.Options{
		Root:   first.Root,
		Rules:  rules,
		Ignore: []string{first.Output},
		Logger: a.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", first.Root, err)
	}
	defer w.Close()

	r := render.New(a.Stdout, a.TermWidth)
	r.RenderInfo("watching " + first.Root + " (Ctrl+C to stop)")

	// The first run already passed the guard, so later runs are confirmed.
	req := exporter.Request{
		Root:         first.Root,
		ExtraIgnores: opts.ignores,
		OutputPath:   first.Output,
		Confirmed:    true,
	}
	return w.Run(ctx, func(ctx context.Context) error {
		result, err := exp.Export(req)
		if err != nil {
			r.RenderError(err.Error())
			return err
		}
		r.RenderExportSummary(result, opts.verbose)
		a.recordRun(opts.command, result)
		return nil
	})
}

func (a *App) watchRules(opts exportOptions) (*exporter.Rules, error) {
	rules := opts.rules
	if rules == nil {
		var err error
		rules, err = exporter.NewRules(a.Config.AI.TextExtensions, a.Config.AI.IgnorePatterns, nil)
		if err != nil {
			return nil, err
		}
	}
	return rules.WithIgnores(opts.ignores)
}
