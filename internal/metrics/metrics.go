// Package metrics exposes prometheus collectors for the signaling service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Set struct {
	ConnectedClients prometheus.Gauge
	ActiveSessions   prometheus.Gauge
	SignalsRelayed   *prometheus.CounterVec
	SignalsDropped   prometheus.Counter
	EventsBroadcast  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Set {
	factory := promauto.With(reg)
	return &Set{
		ConnectedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "signaling",
			Name:      "connected_clients",
			Help:      "Currently registered transport connections.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "signaling",
			Name:      "active_sessions",
			Help:      "Share sessions currently in the active state.",
		}),
		SignalsRelayed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signaling",
			Name:      "signals_relayed_total",
			Help:      "Handshake messages delivered to target connections.",
		}, []string{"type"}),
		SignalsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "signaling",
			Name:      "signals_dropped_total",
			Help:      "Handshake messages dropped because the target had no live connection.",
		}),
		EventsBroadcast: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signaling",
			Name:      "events_broadcast_total",
			Help:      "Lifecycle events pushed to session rooms.",
		}, []string{"event"}),
	}
}

// NewDefault registers on the default prometheus registry.
func NewDefault() *Set {
	return New(prometheus.DefaultRegisterer)
}
