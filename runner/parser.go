package runner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/acarl005/stripansi"
	"github.com/ethereum-optimism/infra/op-specrunner/reporting"
	"github.com/ethereum-optimism/infra/op-specrunner/types"
	"github.com/ethereum/go-ethereum/log"
)

const issueTracker = "https://github.com/ethereum-optimism/infra/issues"

// PayloadStore persists raw result payloads for post-run diagnosis.
// Implementations must never fail a run; errors are logged and swallowed
// by the parser.
type PayloadStore interface {
	// Store persists one target's raw payload
	Store(target string, payload []byte) error
	// GetRunID returns the run ID the store was created for, or empty
	GetRunID() string
}

// MalformedPayloadError indicates a target's output could not be decoded.
// The target is dropped from aggregation and the run continues with the
// next one.
type MalformedPayloadError struct {
	Target string
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed result payload for %s: %v", e.Target, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}

// Parser decodes the raw output of one browser invocation into a suite
// result and reports the outcome on the console and notification sinks.
type Parser struct {
	opts     Options
	reporter reporting.Reporter
	notifier reporting.Notifier
	store    PayloadStore
	log      log.Logger
}

// NewParser creates a new result parser. The store may be nil to disable
// payload persistence.
func NewParser(opts Options, reporter reporting.Reporter, notifier reporting.Notifier, store PayloadStore, logger log.Logger) (*Parser, error) {
	if reporter == nil {
		return nil, fmt.Errorf("reporter cannot be nil")
	}
	if notifier == nil {
		notifier = reporting.NoopNotifier{}
	}
	if logger == nil {
		logger = log.New()
	}
	return &Parser{
		opts:     opts,
		reporter: reporter,
		notifier: notifier,
		store:    store,
		log:      logger,
	}, nil
}

// Evaluate consumes and closes the raw output of one browser invocation,
// decodes the payload and reports the outcome. Both the stream and the
// child process are released on every path. A MalformedPayloadError means
// the target contributes neither pass nor fail; every other return carries
// the decoded result, with the originating file attached unless the
// payload was a system-level error.
func (p *Parser) Evaluate(raw io.ReadCloser, target string) (*types.SuiteResult, error) {
	payload, readErr := io.ReadAll(raw)
	if err := raw.Close(); err != nil {
		p.log.Debug("Closing browser output", "target", target, "err", err)
	}
	if readErr != nil {
		p.reporter.Error("Cannot read browser runner output: %v", readErr)
		return nil, &MalformedPayloadError{Target: target, Err: readErr}
	}

	p.persist(target, payload)

	payload = bytes.TrimSpace(payload)
	var result types.SuiteResult
	if err := json.Unmarshal(payload, &result); err != nil {
		p.reporter.Error("Cannot decode JSON from browser runner: %v", err)
		p.reporter.Error("Please report an issue at: %s", issueTracker)
		p.reporter.Error("JSON response: %s", stripansi.Strip(string(payload)))
		return nil, &MalformedPayloadError{Target: target, Err: err}
	}

	if result.HasError() {
		p.reportSystemError(&result)
		return &result, nil
	}

	result.File = target
	p.reportSuite(&result)
	return &result, nil
}

// reportSystemError surfaces a payload that carried an error key: the
// harness or browser failed before any spec could run.
func (p *Parser) reportSystemError(result *types.SuiteResult) {
	message := fmt.Sprintf("An error occurred: %s", result.Error)
	p.reporter.Error("%s", message)
	if p.opts.Notify {
		p.notifier.Notify(reporting.Notification{
			Message:  message,
			Title:    "Suite runner error",
			Severity: reporting.SeverityFailed,
			Priority: 2,
		})
	}
}

// reportSuite renders the summary for a decoded suite run, walking the
// spec results first when anything failed.
func (p *Parser) reportSuite(result *types.SuiteResult) {
	summary := result.Summary()

	if result.Stats.Failures != 0 {
		p.reportSpecdoc(result)
		p.reporter.Error("%s", summary)
		if p.opts.Notify {
			p.notifier.Notify(reporting.Notification{
				Message:  summary,
				Title:    "Suite failed",
				Severity: reporting.SeverityFailed,
				Priority: 2,
			})
		}
		return
	}

	p.reporter.Success("%s", summary)
	if p.opts.Notify && !p.opts.HideSuccess {
		p.notifier.Notify(reporting.Notification{
			Message:  summary,
			Title:    "Suite passed",
			Severity: reporting.SeveritySuccess,
		})
	}
}

// reportSpecdoc prints one line per spec grouped under its suite
// description, with a cleaned failure detail per failing spec. Failing
// specs raise a desktop notification each, capped by MaxErrorNotify so a
// broken suite cannot storm the desktop.
func (p *Parser) reportSpecdoc(result *types.SuiteResult) {
	notified := 0
	for _, suite := range result.Suites {
		p.reporter.Info("%s", suite.Description)
		for _, spec := range suite.Specs {
			if spec.Passed {
				if !p.opts.HideSuccess {
					p.reporter.Success("  ✔ %s", spec.Description)
				}
				continue
			}

			p.reporter.Error("  ✘ %s", spec.Description)
			if spec.ErrorMessage != "" {
				p.reporter.Error("    ➤ %s", CleanErrorMessage(spec.ErrorMessage, false))
			}

			if p.opts.Notify && notified < p.opts.MaxErrorNotify {
				p.notifier.Notify(reporting.Notification{
					Message:  fmt.Sprintf("%s: %s", spec.Description, CleanErrorMessage(spec.ErrorMessage, true)),
					Title:    "Spec failed",
					Severity: reporting.SeverityFailed,
					Priority: 2,
				})
				notified++
			}
		}
	}
}

func (p *Parser) persist(target string, payload []byte) {
	if p.store == nil {
		return
	}
	if err := p.store.Store(target, payload); err != nil {
		p.log.Debug("Persisting result payload failed", "target", target, "err", err)
	}
}
