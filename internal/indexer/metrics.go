package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	logsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pairpulse_logs_fetched_total",
		Help: "Adapter logs fetched from the chain.",
	})

	eventsAggregated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairpulse_events_aggregated_total",
		Help: "Decoded adapter events applied to pair statistics.",
	}, []string{"event"})

	decodeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairpulse_event_decode_failures_total",
		Help: "Adapter logs skipped because they failed to decode.",
	}, []string{"event"})
)
