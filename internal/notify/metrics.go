package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	enqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_notifications_enqueued_total",
		Help: "Notifications accepted by the dispatcher",
	})

	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_notifications_dropped_total",
		Help: "Notifications dropped because the queue was full or closed",
	})

	skippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dm_notifications_skipped_total",
			Help: "Notifications not delivered after recipient resolution, by reason",
		},
		[]string{"reason"},
	)

	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dm_notification_deliveries_total",
			Help: "Notification deliveries by sink and result",
		},
		[]string{"sink", "result"},
	)
)
