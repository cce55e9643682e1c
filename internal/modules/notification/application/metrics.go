package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fms_notifications_created_total",
			Help: "Notifications written to the store",
		},
		[]string{"type"},
	)

	notificationsDeduplicated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fms_notifications_deduplicated_total",
			Help: "Emits skipped because the same notification already exists for the day",
		},
		[]string{"type"},
	)
)
