package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "explorer"

// Registry holds every collector of the process. A dedicated registry keeps
// tests free of the global default one.
var Registry = prometheus.NewRegistry()

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests",
	}, []string{"method", "path", "status"})

	LLMPings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "pings_total",
		Help:      "LLM Ping calls",
	}, []string{"provider", "outcome"}) // outcome=ok|error

	LLMChats = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "chats_total",
		Help:      "LLM Chat calls",
	}, []string{"provider", "outcome"})

	LLMChatDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "chat_seconds",
		Help:      "LLM Chat duration seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider", "outcome"})

	GraphQLRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "graphql",
		Name:      "requests_total",
		Help:      "GraphQL requests by operation and outcome",
	}, []string{"operation", "outcome"}) // operation=introspect|execute

	Discoveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "discoveries_total",
		Help:      "Schema discoveries by outcome",
	}, []string{"outcome"}) // outcome=ok|discovery_failed|summarization_failed

	RegisteredAPIs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "apis",
		Help:      "Number of APIs currently registered",
	})

	Turns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orchestrator",
		Name:      "turns_total",
		Help:      "Handled turns by outcome",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		HTTPRequests,
		LLMPings,
		LLMChats,
		LLMChatDur,
		GraphQLRequests,
		Discoveries,
		RegisteredAPIs,
		Turns,
	)
}

// Handler exposes all metrics in Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
