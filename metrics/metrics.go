package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ethereum-optimism/infra/op-specrunner/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "specrunner"
)

var (
	Debug                bool = true
	validResults              = []types.SuiteStatus{types.SuiteStatusPass, types.SuiteStatusFail, types.SuiteStatusError}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	suiteRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_runs_total",
		Help:      "Count of suite target runs",
	}, []string{
		"run_id",
		"target",
		"result",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of whole suite runs",
	}, []string{
		"run_id",
		"result",
	})

	runSpecsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_specs_total",
		Help:      "Total number of specs executed",
	}, []string{
		"run_id",
	})

	runFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_failures_total",
		Help:      "Number of failed specs",
	}, []string{
		"run_id",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration",
		Help:      "Duration of suite runs",
	}, []string{
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordSuite counts one suite target's outcome within a run
func RecordSuite(runID string, target string, result types.SuiteStatus) {
	if !isValidResult(result) {
		log.Error("RecordSuite - invalid result", "result", result)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "suite_runs_total",
			"run_id", runID,
			"target", target,
			"result", result)
	}
	suiteRunsTotal.WithLabelValues(runID, target, string(result)).Inc()
}

// RecordRun records the aggregate outcome of one whole run
func RecordRun(
	runID string,
	result string,
	specs int,
	failures int,
	duration time.Duration,
) {
	runResults.WithLabelValues(runID, result).Set(1)
	runSpecsTotal.WithLabelValues(runID).Add(float64(specs))
	runFailuresTotal.WithLabelValues(runID).Add(float64(failures))
	runDuration.WithLabelValues(runID).Set(duration.Seconds())
}

func isValidResult(result types.SuiteStatus) bool {
	return slices.Contains(validResults, result)
}
