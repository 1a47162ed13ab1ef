package dataset

import "github.com/prometheus/client_golang/prometheus"

var rowsImported = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "labd",
		Subsystem: "dataset",
		Name:      "rows_imported_total",
		Help:      "Total dataset rows downloaded by the importer",
	},
)

func init() {
	prometheus.MustRegister(rowsImported)
}
