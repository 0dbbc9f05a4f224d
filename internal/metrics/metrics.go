package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PrintAttempts The total number of print transmissions by outcome (counter)
	PrintAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "printer",
			Name:      "print_attempts_total",
			Help:      "The total number of print transmissions by outcome",
		},
		[]string{"type", "outcome"},
	)

	// PrintDuration Time spent waiting for the printer to answer (histogram)
	PrintDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "printer",
			Name:      "print_duration_seconds",
			Help:      "Time spent waiting for the printer to answer",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"type"},
	)

	// AgentConnections Upstream websocket sessions opened by the agent (counter)
	AgentConnections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agent",
			Name:      "connections_total",
			Help:      "Upstream websocket sessions opened by the agent",
		},
		[]string{"result"},
	)
)
