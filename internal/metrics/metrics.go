package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dispatched counts delivery attempts by channel and outcome
	// (sent, failed, deferred, suppressed, batched).
	Dispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notification_center",
		Name:      "dispatched_total",
		Help:      "Delivery decisions and outcomes by channel.",
	}, []string{"channel", "outcome"})

	// Ingested counts accepted send requests by source (http, kafka).
	Ingested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notification_center",
		Name:      "ingested_total",
		Help:      "Send requests accepted by ingestion source.",
	}, []string{"source"})

	// QueueDepth tracks the dispatch queue backlog.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "notification_center",
		Name:      "queue_depth",
		Help:      "Tasks waiting in the dispatch queue.",
	})
)
