package specrunner

import (
	"github.com/ethereum-optimism/infra/op-specrunner/metrics"
	"github.com/ethereum-optimism/infra/op-specrunner/types"
)

// MetricsReporter is responsible for reporting metrics from run results.
type MetricsReporter interface {
	ReportResults(report *types.RunReport)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the run results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(report *types.RunReport) {
	for _, result := range report.Results {
		target := result.File
		if target == "" {
			target = "system"
		}
		metrics.RecordSuite(report.RunID, target, result.Status())
	}
	metrics.RecordRun(
		report.RunID,
		string(report.Status()),
		report.Stats.Specs,
		report.Stats.Failures,
		report.Duration,
	)
}
