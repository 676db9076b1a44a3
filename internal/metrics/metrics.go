// Package metrics holds the Prometheus collectors for walletbot. Collectors
// live on Registry rather than the global default registerer so tests and
// tools can build their own servers without duplicate registration panics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		ModelRoundTotal, ModelRoundDuration,
		ToolTotal, ToolDuration,
		HTTPRequestTotal, HTTPRequestDuration,
	)
}

// ModelRoundTotal model calls by round ("first" | "second") and status.
var ModelRoundTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "walletbot_model_round_total",
		Help: "Chat completion calls by round and status",
	},
	[]string{"round", "status"},
)

var ModelRoundDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "walletbot_model_round_duration_seconds",
		Help:    "Chat completion latency in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"round"},
)

// ToolTotal tool executions by tool name and status.
var ToolTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "walletbot_tool_total",
		Help: "Tool executions by tool and status",
	},
	[]string{"tool", "status"},
)

var ToolDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "walletbot_tool_duration_seconds",
		Help:    "Tool execution latency in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"tool"},
)

var HTTPRequestTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "walletbot_http_requests_total",
		Help: "HTTP requests by route and status code",
	},
	[]string{"route", "code"},
)

var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "walletbot_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"route"},
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func ObserveModelRound(round string, d time.Duration, err error) {
	ModelRoundTotal.WithLabelValues(round, status(err)).Inc()
	ModelRoundDuration.WithLabelValues(round).Observe(d.Seconds())
}

func ObserveTool(tool string, d time.Duration, err error) {
	ToolTotal.WithLabelValues(tool, status(err)).Inc()
	ToolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// Handler serves Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
