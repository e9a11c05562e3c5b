// Package metrics registers the process-wide Prometheus collectors. All
// collectors use promauto against the default registry and are exposed via
// the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesPersisted counts committed messages by scope ("direct" or
	// "group").
	MessagesPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relaychat",
		Name:      "messages_persisted_total",
		Help:      "Messages written to the database, by scope.",
	}, []string{"scope"})

	// WSConnections tracks currently open websocket connections.
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "relaychat",
		Name:      "ws_connections",
		Help:      "Open websocket connections.",
	})

	// WSEvents counts inbound websocket events by type, including ones that
	// failed dispatch ("unknown").
	WSEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relaychat",
		Name:      "ws_events_total",
		Help:      "Inbound websocket events, by event type.",
	}, []string{"event"})

	// AttachmentsStored counts attachment uploads by category and whether
	// the content-addressed store already held the bytes.
	AttachmentsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relaychat",
		Name:      "attachments_stored_total",
		Help:      "Attachment uploads, by category and dedup outcome.",
	}, []string{"category", "outcome"})

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relaychat",
		Name:      "logins_total",
		Help:      "Login attempts, by outcome.",
	}, []string{"outcome"})
)
