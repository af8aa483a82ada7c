// Package specrunner orchestrates headless browser suite runs: it exposes
// the harness over HTTP, executes each suite in a browser subprocess and
// turns the parsed payloads into console output, notifications, metrics and
// an exit status.
package specrunner

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-specrunner/exitcodes"
	"github.com/ethereum-optimism/infra/op-specrunner/logging"
	"github.com/ethereum-optimism/infra/op-specrunner/reporting"
	"github.com/ethereum-optimism/infra/op-specrunner/runner"
	"github.com/ethereum-optimism/infra/op-specrunner/server"
	"github.com/ethereum-optimism/infra/op-specrunner/types"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
)

// Service implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &Service{}

// Service drives complete suite runs: it brings up the harness server, hands
// each suite target to the browser runner and reports the aggregate outcome.
type Service struct {
	ctx       context.Context
	config    *Config
	version   string
	selector  server.Selector
	launcher  *server.Launcher
	reporter  reporting.Reporter
	notifier  reporting.Notifier
	scheduler RunScheduler
	formatter ResultFormatter
	metrics   MetricsReporter
	result    *types.RunReport

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*Service, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating specrunner with config",
		"harnessURL", config.HarnessURL,
		"bin", config.Bin,
		"specDir", config.SpecDir,
		"strategy", config.Strategy,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	var notifier reporting.Notifier = reporting.NoopNotifier{}
	if config.Notify {
		notifier = reporting.NewCommandNotifier("")
	}

	s := &Service{
		ctx:      ctx,
		config:   config,
		version:  version,
		selector: server.Selector{WorkDir: config.WorkDir, SpecDir: config.SpecDir},
		launcher: server.NewLauncher(server.Config{
			WorkDir: config.WorkDir,
			Log:     config.Log,
		}),
		reporter:         reporting.NewConsole(),
		notifier:         notifier,
		scheduler:        NewDefaultRunScheduler(config.RunInterval, config.RunOnce, config.Log),
		formatter:        NewConsoleResultFormatter(config.Log),
		metrics:          NewDefaultMetricsReporter(),
		shutdownCallback: shutdownCallback,
	}
	s.scheduler.RegisterCallback(s.runSuites)
	return s, nil
}

// Start brings up the harness server and runs the suites, periodically when
// an interval is configured.
// Start implements the cliapp.Lifecycle interface.
func (s *Service) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			s.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	s.ctx = ctx

	if s.config.RunOnce {
		s.config.Log.Info("Starting op-specrunner in run-once mode")
	} else {
		s.config.Log.Info("Starting op-specrunner in continuous mode", "interval", s.config.RunInterval)
	}

	if err := s.startServer(ctx); err != nil {
		s.config.Log.Error("Runtime error starting harness server", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	if err := s.verifyBrowser(ctx); err != nil {
		s.stopServer()
		s.config.Log.Error("Runtime error verifying browser binary", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	// The first run happens synchronously inside the scheduler; an error here
	// is a runtime error, not a failing suite.
	if err := s.scheduler.Start(ctx); err != nil {
		s.stopServer()
		s.config.Log.Error("Runtime error running suites", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	// If in run-once mode, trigger shutdown and return
	if s.config.RunOnce {
		s.config.Log.Info("Suites completed, exiting (run-once mode)")
		s.stopServer()

		// Check if any suites failed and return appropriate exit code
		if s.result != nil && s.result.Status() != types.SuiteStatusPass {
			s.config.Log.Warn("Run-once suite run completed with failures, returning exit code 1")
			return NewSuiteFailureError(s.result.String())
		}

		// Only need to call this when we're in run-once mode and all suites passed
		go func() {
			s.shutdownCallback(nil)
		}()
		return nil // Success (exit code 0)
	}

	s.config.Log.Debug("op-specrunner started successfully")
	return nil
}

// startServer decides the server strategy and brings the harness server up.
// With the none strategy, or nothing to detect, this is a no-op.
func (s *Service) startServer(ctx context.Context) error {
	action := s.selector.Decide(s.config.Strategy, s.config.Port, s.config.ServerEnv)
	if action.Kind == server.NoAction {
		s.config.Log.Info("No harness server to start", "strategy", s.config.Strategy)
		return nil
	}

	s.config.Log.Info("Starting harness server",
		"strategy", s.config.Strategy,
		"port", action.Port)
	if err := s.launcher.Launch(action); err != nil {
		return fmt.Errorf("failed to start harness server: %w", err)
	}

	if err := server.WaitForServer(ctx, nil, action.Port, s.config.ServerTimeout, 0); err != nil {
		s.launcher.Stop()
		return err
	}
	s.config.Log.Info("Harness server is up", "port", action.Port)
	return nil
}

// verifyBrowser rejects browser binaries that are missing or too old before
// any suite runs.
func (s *Service) verifyBrowser(ctx context.Context) error {
	executor, err := runner.NewSuiteExecutor(s.runnerOptions(), s.reporter, s.config.Log)
	if err != nil {
		return err
	}
	return executor.VerifyBinary(ctx)
}

// runSuites runs all configured suites once and processes the results
func (s *Service) runSuites() error {
	s.config.Log.Info("Running suites...")

	store, err := logging.NewPayloadStore(s.config.LogDir, uuid.New().String())
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to create payload store: %w", err))
	}

	suiteRunner, err := runner.NewSuiteRunner(runner.Config{
		Options:  s.runnerOptions(),
		Reporter: s.reporter,
		Notifier: s.notifier,
		Store:    store,
		Log:      s.config.Log,
	})
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to create suite runner: %w", err))
	}

	result, err := suiteRunner.Run(s.ctx, s.config.Targets)
	if err != nil {
		// This is a runtime error (not a failing suite)
		s.config.Log.Error("Runtime error running suites", "error", err)
		return NewRuntimeError(err)
	}
	s.result = result

	if err := s.formatter.FormatResults(result); err != nil {
		s.config.Log.Error("Error formatting results", "error", err)
	}
	if err := store.WriteSummary(result); err != nil {
		s.config.Log.Warn("Failed to write run summary", "error", err)
	}
	s.metrics.ReportResults(result)

	s.config.Log.Info("Suite run completed", "run_id", result.RunID, "status", result.Status())
	return nil
}

func (s *Service) runnerOptions() runner.Options {
	return runner.Options{
		HarnessURL:     s.config.HarnessURL,
		Bin:            s.config.Bin,
		RunnerScript:   s.config.RunnerScript,
		SpecDir:        s.config.SpecDir,
		Notify:         s.config.Notify,
		HideSuccess:    s.config.HideSuccess,
		MaxErrorNotify: s.config.MaxErrorNotify,
	}
}

// Stop stops the op-specrunner service.
// Stop implements the cliapp.Lifecycle interface.
func (s *Service) Stop(ctx context.Context) error {
	s.config.Log.Info("Stopping op-specrunner")

	// The harness server is released on every exit path, even when the
	// scheduler already wound down on its own.
	s.stopServer()

	// Check if we're already stopped
	if s.scheduler.Stopped() {
		s.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	if err := s.scheduler.Stop(); err != nil {
		return err
	}

	s.config.Log.Info("op-specrunner stopped successfully")
	return nil
}

// stopServer releases the harness server process if one was started.
func (s *Service) stopServer() {
	if s.launcher.Running() {
		s.config.Log.Info("Stopping harness server")
	}
	s.launcher.Stop()
}

// Stopped returns true if the op-specrunner service is stopped.
// Stopped implements the cliapp.Lifecycle interface.
func (s *Service) Stopped() bool {
	return s.scheduler.Stopped()
}

// WaitForShutdown blocks until all goroutines have terminated.
// This is useful in tests to ensure complete cleanup before moving to the next test.
func (s *Service) WaitForShutdown(ctx context.Context) error {
	return s.scheduler.WaitForShutdown(ctx)
}
