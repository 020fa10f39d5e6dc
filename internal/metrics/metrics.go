// Package metrics provides Prometheus instrumentation for the pool daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Histogram bucket definitions.
var (
	// Fast operations (dispatch, validation)
	fastBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0}

	// Waiting and creation latencies - dominated by the backend
	waitBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
)

// Collector holds all Prometheus metrics for the pool daemon.
type Collector struct {
	// Gauges - Current pool state
	PoolTotal     prometheus.Gauge
	PoolAvailable prometheus.Gauge
	PoolPending   prometheus.Gauge
	PoolCapacity  prometheus.Gauge
	PoolDraining  prometheus.Gauge

	// Counters - Cumulative events
	AcquisitionsTotal *prometheus.CounterVec
	CreationsTotal    *prometheus.CounterVec
	DestroysTotal     *prometheus.CounterVec
	ReleasesTotal     prometheus.Counter
	SweepsTotal       prometheus.Counter

	// Histograms - Latency distributions
	AcquireWaitDuration prometheus.Histogram
	CreateDuration      prometheus.Histogram
	DispatchDuration    prometheus.Histogram

	registry *prometheus.Registry
}

// NewCollector creates a new metrics collector with all metrics registered.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		// Gauges
		PoolTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pool",
			Name:      "resources_total",
			Help:      "Resources created and not yet destroyed, including checked out and mid-creation",
		}),
		PoolAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pool",
			Name:      "resources_available",
			Help:      "Idle resources eligible for dispatch",
		}),
		PoolPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pool",
			Name:      "requests_pending",
			Help:      "Acquisition requests waiting for a resource",
		}),
		PoolCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pool",
			Name:      "capacity",
			Help:      "Maximum pool capacity",
		}),
		PoolDraining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pool",
			Name:      "draining",
			Help:      "Whether the pool is draining (1=yes, 0=no)",
		}),

		// Counters
		AcquisitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pool",
			Name:      "acquisitions_total",
			Help:      "Total acquisition requests",
		}, []string{"result"}),
		CreationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pool",
			Name:      "creations_total",
			Help:      "Total factory create attempts",
		}, []string{"result"}),
		DestroysTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pool",
			Name:      "destroys_total",
			Help:      "Total resource destructions",
		}, []string{"reason"}),
		ReleasesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pool",
			Name:      "releases_total",
			Help:      "Total resource releases back into the pool",
		}),
		SweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pool",
			Name:      "reaper_sweeps_total",
			Help:      "Total idle-reaper sweeps",
		}),

		// Histograms
		AcquireWaitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pool",
			Name:      "acquire_wait_duration_seconds",
			Help:      "Time from enqueue to resource delivery in seconds",
			Buckets:   waitBuckets,
		}),
		CreateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pool",
			Name:      "create_duration_seconds",
			Help:      "Factory create latency in seconds",
			Buckets:   waitBuckets,
		}),
		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pool",
			Name:      "dispatch_duration_seconds",
			Help:      "Single dispatch pass latency in seconds",
			Buckets:   fastBuckets,
		}),

		registry: reg,
	}

	reg.MustRegister(
		// Gauges
		c.PoolTotal,
		c.PoolAvailable,
		c.PoolPending,
		c.PoolCapacity,
		c.PoolDraining,
		// Counters
		c.AcquisitionsTotal,
		c.CreationsTotal,
		c.DestroysTotal,
		c.ReleasesTotal,
		c.SweepsTotal,
		// Histograms
		c.AcquireWaitDuration,
		c.CreateDuration,
		c.DispatchDuration,
	)

	return c
}

// Handler returns an HTTP handler for the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
