package runner

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"sync"

	"github.com/ethereum-optimism/infra/op-specrunner/reporting"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/mod/semver"
)

// MinBrowserVersion is the oldest headless-browser release the runner
// script is known to work against.
const MinBrowserVersion = "1.3.0"

var browserVersionPattern = regexp.MustCompile(`\d+(\.\d+){1,2}`)

var _ SuiteExecutor = (*suiteExecutor)(nil)

// SuiteExecutor spawns one headless-browser invocation per suite target
// and yields its raw output stream.
type SuiteExecutor interface {
	// Run builds the harness address for the target, spawns the browser
	// against it and returns the open stdout stream without waiting for
	// the process to exit. The concrete stream is a *RawOutput whose Close
	// reaps the child.
	Run(ctx context.Context, target string) (io.ReadCloser, error)

	// VerifyBinary checks that the configured browser binary exists and is
	// recent enough to drive the runner script.
	VerifyBinary(ctx context.Context) error
}

// LaunchError indicates the browser binary could not be spawned. It is
// fatal to the whole run.
type LaunchError struct {
	Bin string
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching browser %q: %v", e.Bin, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// RawOutput is the open stdout stream of one browser invocation. It is
// owned by exactly one consumer, which reads it to EOF and closes it;
// Close reaps the child process.
type RawOutput struct {
	pipe io.ReadCloser
	cmd  *exec.Cmd

	closeOnce sync.Once
	closeErr  error
}

// Read implements the io.Reader interface
func (o *RawOutput) Read(p []byte) (int, error) {
	return o.pipe.Read(p)
}

// Close closes the stream and reaps the browser process. The process's
// exit status carries no information beyond the payload and is only
// logged.
func (o *RawOutput) Close() error {
	o.closeOnce.Do(func() {
		o.closeErr = o.pipe.Close()
		if o.cmd != nil {
			if err := o.cmd.Wait(); err != nil {
				log.Debug("Browser process exited with error", "err", err)
			}
		}
	})
	return o.closeErr
}

// suiteExecutor implements SuiteExecutor
type suiteExecutor struct {
	opts       Options
	reporter   reporting.Reporter
	log        log.Logger
	cmdBuilder func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// NewSuiteExecutor creates a new suite executor
func NewSuiteExecutor(opts Options, reporter reporting.Reporter, logger log.Logger) (SuiteExecutor, error) {
	if opts.HarnessURL == "" {
		return nil, fmt.Errorf("harness URL cannot be empty")
	}
	if opts.Bin == "" {
		return nil, fmt.Errorf("browser binary cannot be empty")
	}
	if reporter == nil {
		return nil, fmt.Errorf("reporter cannot be nil")
	}
	if logger == nil {
		logger = log.New()
	}
	return &suiteExecutor{
		opts:       opts,
		reporter:   reporter,
		log:        logger,
		cmdBuilder: exec.CommandContext,
	}, nil
}

// Run implements the SuiteExecutor interface
func (e *suiteExecutor) Run(ctx context.Context, target string) (io.ReadCloser, error) {
	address := e.opts.HarnessURL + BuildQuery(target, e.opts.SpecDir)
	e.reporter.Info("Running suite at %s", address)

	cmd := e.cmdBuilder(ctx, e.opts.Bin, e.opts.RunnerScript, address)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Bin: e.opts.Bin, Err: err}
	}
	e.log.Debug("Browser started", "bin", e.opts.Bin, "target", target, "address", address)

	return &RawOutput{pipe: stdout, cmd: cmd}, nil
}

// VerifyBinary implements the SuiteExecutor interface. An output that
// carries no recognizable version is logged and tolerated; only a missing
// binary or a version below MinBrowserVersion fails.
func (e *suiteExecutor) VerifyBinary(ctx context.Context) error {
	out, err := e.cmdBuilder(ctx, e.opts.Bin, "--version").CombinedOutput()
	if err != nil {
		return &LaunchError{Bin: e.opts.Bin, Err: err}
	}

	version := browserVersionPattern.FindString(string(out))
	if version == "" {
		e.log.Debug("Could not parse browser version", "bin", e.opts.Bin, "output", string(out))
		return nil
	}
	if semver.Compare("v"+version, "v"+MinBrowserVersion) < 0 {
		return fmt.Errorf("browser binary %q version %s is below the minimum supported %s", e.opts.Bin, version, MinBrowserVersion)
	}
	e.log.Debug("Browser binary verified", "bin", e.opts.Bin, "version", version)
	return nil
}
