package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Geofencing metrics
var (
	// GeofenceEventsTotal counts events delivered by the location capability by type (enter/exit/error)
	GeofenceEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geofence_events_total",
			Help: "Geofence events delivered by type",
		},
		[]string{"type"},
	)

	// GeofenceEventsDropped counts events dropped because the event queue was full
	GeofenceEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geofence_events_dropped_total",
			Help: "Geofence events dropped because the event queue was full",
		},
	)

	PositionFixesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "position_fixes_total",
			Help: "Device position fixes received by outcome",
		},
		[]string{"status"},
	)
)

// Session metrics
var (
	SessionStartsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitoring_session_starts_total",
			Help: "Monitoring session start attempts by outcome",
		},
		[]string{"status"},
	)

	// SessionRegions tracks the number of regions in the active session (0 when idle)
	SessionRegions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monitoring_session_regions",
			Help: "Number of regions watched by the active monitoring session",
		},
	)

	StaleTasksRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stale_tasks_removed_total",
			Help: "Orphaned geofencing task registrations removed at session start",
		},
	)
)

// Notification metrics
var (
	NotificationsScheduledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_scheduled_total",
			Help: "Notification scheduling calls by outcome",
		},
		[]string{"status"},
	)

	NotificationsDeliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_delivered_total",
			Help: "Notifications handed to delivery services by outcome",
		},
		[]string{"status"},
	)
)
