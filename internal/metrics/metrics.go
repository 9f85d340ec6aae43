package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesFragmented = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drawprep",
			Name:      "pages_fragmented_total",
			Help:      "Total pages run through the fragmenter by result (success, empty, error)",
		},
		[]string{"result"},
	)

	fragmentsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drawprep",
			Name:      "fragments_created_total",
			Help:      "Total fragments emitted by tiling mode",
		},
		[]string{"mode"},
	)

	fragmentDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "drawprep",
			Name:      "page_fragment_duration_seconds",
			Help:      "Duration of one page fragmentation call",
			Buckets:   prometheus.DefBuckets,
		},
	)

	volumeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drawprep",
			Name:      "volume_operations_total",
			Help:      "Volume store operations by op and result",
		},
		[]string{"op", "result"},
	)

	providerReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drawprep",
			Name:      "provider_requests_total",
			Help:      "Total vision provider requests by provider, model and result",
		},
		[]string{"provider", "model", "result"},
	)

	providerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drawprep",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of vision provider requests by provider and model",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "model"},
	)

	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drawprep",
			Name:      "jobs_total",
			Help:      "Processing jobs by result (success, failed)",
		},
		[]string{"result"},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(pagesFragmented, fragmentsCreated, fragmentDuration, volumeOps, providerReqs, providerLatency, jobsTotal)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObservePageFragmented(result string, fragments int, mode string, dur time.Duration) {
	pagesFragmented.WithLabelValues(result).Inc()
	fragmentsCreated.WithLabelValues(mode).Add(float64(fragments))
	fragmentDuration.Observe(dur.Seconds())
}

func IncVolumeOp(op, result string) { volumeOps.WithLabelValues(op, result).Inc() }

func ObserveProvider(provider, model, result string, dur time.Duration) {
	providerReqs.WithLabelValues(provider, model, result).Inc()
	providerLatency.WithLabelValues(provider, model).Observe(dur.Seconds())
}

func IncJob(result string) { jobsTotal.WithLabelValues(result).Inc() }
