// Package runner drives headless-browser invocations over a list of suite
// targets, decodes each invocation's result payload and aggregates the
// outcome of a run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum-optimism/infra/op-specrunner/reporting"
	"github.com/ethereum-optimism/infra/op-specrunner/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Options holds the per-run settings shared by the executor and parser.
// Immutable for the duration of a run.
type Options struct {
	HarnessURL     string // base URL of the harness page
	Bin            string // headless-browser binary
	RunnerScript   string // browser-side script driving the harness
	SpecDir        string // spec directory, doubles as the run-everything sentinel
	Notify         bool
	HideSuccess    bool
	MaxErrorNotify int // cap on per-spec failure notifications
}

// RunsAll reports whether targets is exactly the run-everything sentinel.
func RunsAll(targets []string, specDir string) bool {
	return len(targets) == 1 && targets[0] == specDir
}

// SuiteRunner drives the executor and parser over an ordered list of suite
// targets and aggregates the outcome into a run report.
type SuiteRunner interface {
	Run(ctx context.Context, targets []string) (*types.RunReport, error)
}

// Config holds configuration for creating a new suite runner
type Config struct {
	Options  Options
	Reporter reporting.Reporter
	Notifier reporting.Notifier
	Store    PayloadStore // may be nil
	Log      log.Logger
}

// suiteRunner implements SuiteRunner
type suiteRunner struct {
	opts     Options
	executor SuiteExecutor
	parser   *Parser
	reporter reporting.Reporter
	store    PayloadStore
	log      log.Logger
	tracer   trace.Tracer
}

var _ SuiteRunner = (*suiteRunner)(nil)

// NewSuiteRunner creates a new suite runner instance
func NewSuiteRunner(cfg Config) (SuiteRunner, error) {
	if cfg.Reporter == nil {
		return nil, fmt.Errorf("reporter is required")
	}
	if cfg.Notifier == nil {
		cfg.Notifier = reporting.NoopNotifier{}
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
	}

	executor, err := NewSuiteExecutor(cfg.Options, cfg.Reporter, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating executor: %w", err)
	}
	parser, err := NewParser(cfg.Options, cfg.Reporter, cfg.Notifier, cfg.Store, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating parser: %w", err)
	}

	return &suiteRunner{
		opts:     cfg.Options,
		executor: executor,
		parser:   parser,
		reporter: cfg.Reporter,
		store:    cfg.Store,
		log:      cfg.Log,
		tracer:   otel.Tracer("suite runner"),
	}, nil
}

// Run implements the SuiteRunner interface. Targets run strictly
// sequentially in input order; each browser invocation's output is
// attributed to its originating target. An empty target list yields a
// failed report without any work or reporting: nothing to do is not
// success.
func (r *suiteRunner) Run(ctx context.Context, targets []string) (*types.RunReport, error) {
	report := &types.RunReport{FailedFiles: []string{}}
	if len(targets) == 0 {
		return report, nil
	}

	// Use the payload store's runID if available, otherwise generate new
	if r.store != nil {
		report.RunID = r.store.GetRunID()
	}
	if report.RunID == "" {
		report.RunID = uuid.New().String()
	}
	ctx, span := r.tracer.Start(ctx, "suite run")
	defer span.End()

	start := time.Now()
	r.log.Debug("Starting suite run", "run_id", report.RunID, "targets", len(targets))
	r.reportStart(targets)

	for _, target := range targets {
		result, err := r.runTarget(ctx, target)
		if err != nil {
			var malformed *MalformedPayloadError
			if errors.As(err, &malformed) {
				// Already reported by the parser; the target contributes
				// neither pass nor fail.
				r.log.Warn("Dropping target with undecodable payload", "run_id", report.RunID, "target", target)
				continue
			}
			return nil, err
		}
		report.Results = append(report.Results, result)
		report.Stats.Specs += result.Stats.Specs
		report.Stats.Failures += result.Stats.Failures
		report.Stats.Time += result.Stats.Time
	}

	report.Passed = true
	for _, result := range report.Results {
		if result.HasError() || !result.Passed {
			report.Passed = false
		}
		if !result.Passed && result.File != "" {
			report.FailedFiles = append(report.FailedFiles, result.File)
		}
	}

	report.Duration = time.Since(start)
	r.log.Info("Suite run complete", "run_id", report.RunID, "passed", report.Passed,
		"targets", len(targets), "specs", report.Stats.Specs, "failures", report.Stats.Failures,
		"duration", report.Duration)
	return report, nil
}

func (r *suiteRunner) runTarget(ctx context.Context, target string) (*types.SuiteResult, error) {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("suite %s", target))
	defer span.End()

	raw, err := r.executor.Run(ctx, target)
	if err != nil {
		return nil, err
	}
	return r.parser.Evaluate(raw, target)
}

func (r *suiteRunner) reportStart(targets []string) {
	if RunsAll(targets, r.opts.SpecDir) {
		r.reporter.Info("Running all suites")
		return
	}
	suffix := ""
	if len(targets) != 1 {
		suffix = "s"
	}
	r.reporter.Info("Running suite%s %s", suffix, strings.Join(targets, " "))
}
