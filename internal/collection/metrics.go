package collection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_collection_mutations_total",
			Help: "Total number of collection mutations that changed the item list",
		},
		[]string{"collection", "op"},
	)

	persistFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_collection_persist_failures_total",
			Help: "Total number of failed collection reads, decodes and writes",
		},
		[]string{"collection", "stage"},
	)

	persistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_collection_persist_duration_seconds",
			Help:    "Duration of collection snapshot writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection"},
	)
)
