// Package metrics exposes Prometheus counters for the agent core.
// Counters are registered on the default registry; the serve command
// mounts Handler() on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CompletionCalls counts completion-service calls by outcome
	// ("ok", "error").
	CompletionCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsecoach",
		Name:      "completion_calls_total",
		Help:      "Completion service calls by outcome.",
	}, []string{"outcome"})

	// ToolExecutions counts dispatched tool executions by tool name and
	// outcome ("ok", "error").
	ToolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsecoach",
		Name:      "tool_executions_total",
		Help:      "Tool executions by tool and outcome.",
	}, []string{"tool", "outcome"})

	// QuotaDecisions counts quota checks by decision ("allowed", "denied").
	QuotaDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsecoach",
		Name:      "quota_decisions_total",
		Help:      "Quota guard decisions.",
	}, []string{"decision"})

	// SessionsAborted counts aborted agent sessions by reason
	// ("quota_exceeded", "transport_failure", "turn_budget").
	SessionsAborted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsecoach",
		Name:      "sessions_aborted_total",
		Help:      "Agent sessions that ended in the aborted state, by reason.",
	}, []string{"reason"})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
