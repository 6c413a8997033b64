// Package metrics defines and registers the Prometheus metrics of the Vice
// Bank client. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry on package load and
// exposed by the local mirror at /metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

const namespace = "vicebank"

// ── API client metrics ────────────────────────────────────────────────────────

// APICallsTotal counts calls to the Vice Bank server.
// Labels:
//   - op: the client operation (e.g. "list actions", "add purchase")
//   - outcome: "ok", "transport", "validation" or "error"
var APICallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_calls_total",
		Help:      "Total number of Vice Bank API calls, by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

// APICallDuration measures the round trip of a single API call.
var APICallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_call_duration_seconds",
		Help:      "Duration of Vice Bank API calls, from request to response body read.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)

// ── Store metrics ─────────────────────────────────────────────────────────────

// StoreRefreshesTotal counts cache re-fetches after a write.
// Labels:
//   - resource: e.g. "actions", "users", "balance"
//   - result: "ok" or "failed"
var StoreRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_refreshes_total",
		Help:      "Total number of store cache refreshes, by resource and result.",
	},
	[]string{"resource", "result"},
)

// ── Event log metrics ─────────────────────────────────────────────────────────

// LogAppendsTotal counts local log appends.
// Labels:
//   - level: info, warning or error
//   - result: "ok" or "failed"
var LogAppendsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "log_appends_total",
		Help:      "Total number of local log events appended, by level and result.",
	},
	[]string{"level", "result"},
)

// LogEventsPrunedTotal counts events removed by retention pruning.
var LogEventsPrunedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "log_events_pruned_total",
		Help:      "Total number of local log events removed by retention pruning.",
	},
)

// ObserveAPICall records one API call.
func ObserveAPICall(op string, d time.Duration, err error) {
	APICallsTotal.WithLabelValues(op, outcome(err)).Inc()
	APICallDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveRefresh records one store refresh.
func ObserveRefresh(resource string, err error) {
	StoreRefreshesTotal.WithLabelValues(resource, result(err)).Inc()
}

// ObserveAppend records one log append.
func ObserveAppend(level domain.LogLevel, err error) {
	LogAppendsTotal.WithLabelValues(string(level), result(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTransport):
		return "transport"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	default:
		return "error"
	}
}

func result(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
