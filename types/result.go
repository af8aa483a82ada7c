package types

import (
	"fmt"
	"time"
)

// SuiteStatus represents the possible outcomes of a single suite run
type SuiteStatus string

const (
	SuiteStatusPass  SuiteStatus = "pass"
	SuiteStatusFail  SuiteStatus = "fail"
	SuiteStatusError SuiteStatus = "error"
)

// Stats carries the aggregate counters the harness reports for one suite run
type Stats struct {
	Specs    int     `json:"specs"`
	Failures int     `json:"failures"`
	Time     float64 `json:"time"`
}

// SpecResult captures the outcome of a single spec within a suite
type SpecResult struct {
	Description  string `json:"description"`
	Passed       bool   `json:"passed"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// SuiteBlock groups the spec outcomes declared under one suite description
type SuiteBlock struct {
	Description string       `json:"description"`
	Specs       []SpecResult `json:"specs"`
}

// SuiteResult is the decoded result payload of one browser invocation.
// The wire contract has two shapes: a bare {"error": ...} object for
// system-level failures (harness not loadable, browser crash), or the full
// passed/stats/suites structure. File is attached after a successful decode
// and stays empty on the error shape.
type SuiteResult struct {
	File   string       `json:"file,omitempty"`
	Error  string       `json:"error,omitempty"`
	Passed bool         `json:"passed"`
	Stats  Stats        `json:"stats"`
	Suites []SuiteBlock `json:"suites,omitempty"`
}

// HasError returns true when the payload carried a system-level error
func (r *SuiteResult) HasError() bool {
	return r.Error != ""
}

// Status classifies the result for reporting and metrics
func (r *SuiteResult) Status() SuiteStatus {
	switch {
	case r.HasError():
		return SuiteStatusError
	case r.Passed:
		return SuiteStatusPass
	default:
		return SuiteStatusFail
	}
}

// Summary renders the two-line run summary shown on the console, e.g.
// "2 specs, 1 failure\nin 0.200 seconds"
func (r *SuiteResult) Summary() string {
	return fmt.Sprintf("%d %s, %d %s\nin %.3f seconds",
		r.Stats.Specs, pluralize("spec", r.Stats.Specs),
		r.Stats.Failures, pluralize("failure", r.Stats.Failures),
		r.Stats.Time)
}

func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// RunReport aggregates the suite results of one run over a list of targets
type RunReport struct {
	RunID       string
	Passed      bool
	FailedFiles []string // failing targets in input order
	Results     []*SuiteResult
	Duration    time.Duration
	Stats       Stats // summed over all collected results
}

// Status classifies the whole run
func (r *RunReport) Status() SuiteStatus {
	for _, res := range r.Results {
		if res.HasError() {
			return SuiteStatusError
		}
	}
	if r.Passed {
		return SuiteStatusPass
	}
	return SuiteStatusFail
}

// String returns a formatted string representation of the run report
func (r *RunReport) String() string {
	return fmt.Sprintf("RunID: %s\nStatus: %s\nDuration: %s\nStats: %d specs, %d failures (%d suite targets, %d failed)",
		r.RunID, r.Status(), r.Duration,
		r.Stats.Specs, r.Stats.Failures, len(r.Results), len(r.FailedFiles))
}
