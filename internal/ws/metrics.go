package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectedMembers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dm_ws_connected_members",
		Help: "Members with at least one open realtime connection",
	})

	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dm_ws_events_dropped_total",
		Help: "Realtime events dropped before reaching a client",
	}, []string{"reason"})
)
