package sft

import "github.com/prometheus/client_golang/prometheus"

var trainingSteps = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "labd",
		Subsystem: "sft",
		Name:      "training_steps_total",
		Help:      "Total fine-tuning steps executed",
	},
)

func init() {
	prometheus.MustRegister(trainingSteps)
}
