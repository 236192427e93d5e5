// Package metrics declares the Prometheus collectors for the lobby.
//
// Naming follows namespace_subsystem_name: the namespace is phira_mp,
// subsystems group by feature (lobby, room, identity). Gauges carry
// current state, counters cumulative events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks currently open TCP client connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "phira_mp",
		Subsystem: "lobby",
		Name:      "connections_active",
		Help:      "Current number of open client connections",
	})

	// ActiveRooms tracks rooms currently alive in the registry.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "phira_mp",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of rooms",
	})

	// PacketsReceived counts decoded client packets by packet name.
	PacketsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phira_mp",
		Subsystem: "lobby",
		Name:      "packets_received_total",
		Help:      "Total client packets decoded",
	}, []string{"packet"})

	// PacketsSent counts frames handed to connection write queues.
	PacketsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "phira_mp",
		Subsystem: "lobby",
		Name:      "packets_sent_total",
		Help:      "Total frames queued for sending",
	})

	// DroppedSends counts frames dropped because a client write queue
	// was full.
	DroppedSends = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "phira_mp",
		Subsystem: "lobby",
		Name:      "sends_dropped_total",
		Help:      "Total frames dropped due to a full send queue",
	})

	// IdentityCacheHits counts token lookups served from the TTL cache.
	IdentityCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "phira_mp",
		Subsystem: "identity",
		Name:      "cache_hits_total",
		Help:      "Total token lookups answered from cache",
	})

	// IdentityCacheMisses counts token lookups that went to the API.
	IdentityCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "phira_mp",
		Subsystem: "identity",
		Name:      "cache_misses_total",
		Help:      "Total token lookups that required an API call",
	})

	// IdentityRequests counts upstream identity-service calls by
	// endpoint and outcome.
	IdentityRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phira_mp",
		Subsystem: "identity",
		Name:      "requests_total",
		Help:      "Total identity service requests",
	}, []string{"endpoint", "status"})
)
