package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	batchesInferred = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labd",
			Subsystem: "pipeline",
			Name:      "batches_inferred_total",
			Help:      "Total batches run through a model runtime",
		},
		[]string{"task"},
	)

	samplesInferred = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labd",
			Subsystem: "pipeline",
			Name:      "samples_inferred_total",
			Help:      "Total samples run through a model runtime",
		},
		[]string{"task"},
	)
)

func init() {
	prometheus.MustRegister(batchesInferred, samplesInferred)
}
