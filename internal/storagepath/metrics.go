package storagepath

import "github.com/prometheus/client_golang/prometheus"

var (
	pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelwatch",
			Subsystem: "source",
			Name:      "polls_total",
			Help:      "Storage polls by result",
		},
		[]string{"result"},
	)

	callbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelwatch",
			Subsystem: "source",
			Name:      "callbacks_total",
			Help:      "Aspired-versions callbacks delivered per servable",
		},
		[]string{"servable"},
	)

	skippedEmptyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelwatch",
			Subsystem: "source",
			Name:      "skipped_empty_total",
			Help:      "Callbacks withheld because a servable resolved to zero versions",
		},
		[]string{"servable"},
	)

	aspiredVersions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "modelwatch",
			Subsystem: "source",
			Name:      "aspired_versions",
			Help:      "Number of versions in the last emitted set per servable",
		},
		[]string{"servable"},
	)
)

func init() {
	prometheus.MustRegister(pollsTotal, callbacksTotal, skippedEmptyTotal, aspiredVersions)
}

func recordPoll(err error) {
	if err != nil {
		pollsTotal.WithLabelValues("error").Inc()
		return
	}
	pollsTotal.WithLabelValues("ok").Inc()
}

func recordCallback(servable string, n int) {
	callbacksTotal.WithLabelValues(servable).Inc()
	aspiredVersions.WithLabelValues(servable).Set(float64(n))
}
