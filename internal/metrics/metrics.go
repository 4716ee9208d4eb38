// Package metrics exposes the engine's Prometheus collectors. Everything
// is registered once at import time; /metrics is served by promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "spectrum",
		Name:      "active_rooms",
		Help:      "Rooms currently held in memory.",
	})

	ConnectedSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "spectrum",
		Name:      "connected_sessions",
		Help:      "Open websocket sessions.",
	})

	InboundEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spectrum",
		Name:      "inbound_events_total",
		Help:      "Client events received, by event type.",
	}, []string{"type"})

	RejectedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spectrum",
		Name:      "rejected_events_total",
		Help:      "Client events rejected, by error code.",
	}, []string{"code"})

	GamesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "spectrum",
		Name:      "games_completed_total",
		Help:      "Games that reached the finished phase.",
	})

	RoomsSwept = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "spectrum",
		Name:      "rooms_swept_total",
		Help:      "Idle rooms destroyed by the periodic sweep.",
	})
)

func init() {
	prometheus.MustRegister(
		ActiveRooms,
		ConnectedSessions,
		InboundEvents,
		RejectedEvents,
		GamesCompleted,
		RoomsSwept,
	)
}
