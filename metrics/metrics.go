// Package metrics exposes prometheus metrics for bridge sessions.
package metrics

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/billrob/xunit/types"
)

const (
	MetricsNamespace = "xunit"
)

var (
	Debug                bool = true
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	discoveredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "discovered_total",
		Help:      "Count of discovered test cases",
	}, []string{
		"session_id",
	})

	testsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "tests_total",
		Help:      "Count of executed test cases by outcome",
	}, []string{
		"session_id",
		"run_id",
		"outcome",
	})

	runStates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_states_total",
		Help:      "Aggregate run states returned to the host",
	}, []string{
		"session_id",
		"state",
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
		slog.Debug("metric inc",
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

func RecordDiscovery(sessionID string, count int) {
	if Debug {
		slog.Debug("metric add",
			"m", "discovered_total",
			"session_id", sessionID,
			"count", count)
	}
	discoveredTotal.WithLabelValues(sessionID).Add(float64(count))
}

func RecordTestFinished(sessionID string, runID string, outcome types.Outcome) {
	testsTotal.WithLabelValues(sessionID, runID, outcome.String()).Inc()
}

func RecordRunState(sessionID string, state types.RunState) {
	if Debug {
		slog.Debug("metric inc",
			"m", "run_states_total",
			"session_id", sessionID,
			"state", state)
	}
	runStates.WithLabelValues(sessionID, state.String()).Inc()
}
