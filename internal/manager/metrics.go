package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelwatch",
			Subsystem: "manager",
			Name:      "loads_total",
			Help:      "Version loads by result",
		},
		[]string{"result"},
	)

	unloadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelwatch",
			Subsystem: "manager",
			Name:      "unloads_total",
			Help:      "Version unloads",
		},
	)

	loadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "modelwatch",
			Subsystem: "manager",
			Name:      "load_duration_seconds",
			Help:      "Loader.Load latency",
			Buckets:   prometheus.DefBuckets,
		},
	)

	loadsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelwatch",
			Subsystem: "manager",
			Name:      "loads_in_flight",
			Help:      "Loads currently running",
		},
	)

	loadConcurrency = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelwatch",
			Subsystem: "manager",
			Name:      "load_concurrency",
			Help:      "Configured limit on concurrent loads",
		},
	)

	versionsByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "modelwatch",
			Subsystem: "manager",
			Name:      "versions",
			Help:      "Managed versions by lifecycle state",
		},
		[]string{"state"},
	)
)

func init() {
	prometheus.MustRegister(loadsTotal, unloadsTotal, loadDuration, loadsInFlight, loadConcurrency, versionsByState)
}
