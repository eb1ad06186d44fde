package controller

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// promauto registers on the default registry, so the collectors are
// process-wide singletons.
var getMetrics = sync.OnceValue(newMetrics)

type metrics struct {
	commentsAdmitted   prometheus.Counter
	commentsRejected   *prometheus.CounterVec
	broadcastsTotal    prometheus.Counter
	droppedSubscribers prometheus.Counter
	connectionsOpen    prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		commentsAdmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "danmaku_comments_admitted_total",
			Help: "Comments that passed the admission pipeline.",
		}),
		commentsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "danmaku_comments_rejected_total",
			Help: "Rejected submissions by rejection kind.",
		}, []string{"kind"}),
		broadcastsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "danmaku_broadcasts_total",
			Help: "Events published to room subscribers.",
		}),
		droppedSubscribers: promauto.NewCounter(prometheus.CounterOpts{
			Name: "danmaku_dropped_subscribers_total",
			Help: "Subscribers dropped for being slow or dead.",
		}),
		connectionsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "danmaku_connections_open",
			Help: "Currently open subscriber connections.",
		}),
	}
}
