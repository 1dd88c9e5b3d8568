package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tivisync_store_fetches_total",
		Help: "Remote fetch-and-persist cycles started, per store.",
	}, []string{"store"})

	fetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tivisync_store_fetch_errors_total",
		Help: "Remote fetches that failed, per store.",
	}, []string{"store"})

	localHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tivisync_store_local_hits_total",
		Help: "Get calls served from a fresh local value, per store.",
	}, []string{"store"})

	staleReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tivisync_store_stale_reads_total",
		Help: "Get calls that found a stale local value, per store.",
	}, []string{"store"})
)
