// Package metrics provides Prometheus metrics for the dockwatch
// crossing-counter service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingest
	batchesReceived  prometheus.Counter
	batchesDropped   prometheus.Counter
	batchesDuplicate prometheus.Counter
	decodeErrors     prometheus.Counter
	emptyBatches     prometheus.Counter

	// Pipeline
	crossings      *prometheus.CounterVec
	publishErrors  prometheus.Counter
	persistErrors  prometheus.Counter
	eventsAppended prometheus.Counter
	batchLatency   prometheus.Histogram
	trackExpiries  prometheus.Counter
	activeTracks   prometheus.Gauge

	// Queue
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge

	// Ops HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry sets the Prometheus registerer collectors attach to.
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// Global manager and its dedicated registry, kept custom so default Go
// runtime collectors do not pollute the scrape.
var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton metrics registry
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton metrics manager
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dockwatch",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.batchesReceived = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "batches_received_total",
		Help: "Detection batches accepted from the inbound channel.",
	})
	m.batchesDropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "batches_dropped_total",
		Help: "Detection batches dropped by queue backpressure.",
	})
	m.batchesDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "batches_duplicate_total",
		Help: "Detection batches skipped as redelivered duplicates.",
	})
	m.decodeErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "decode_errors_total",
		Help: "Inbound payloads that could not be decoded.",
	})
	m.emptyBatches = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "empty_batches_total",
		Help: "Batches carrying no usable track identities.",
	})

	m.crossings = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "crossings_total",
		Help: "Zone crossings detected, by platform, zone and direction.",
	}, []string{"platform", "zone", "direction"})
	m.publishErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "publish_errors_total",
		Help: "Realtime publishes that failed and were swallowed.",
	})
	m.persistErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "persist_errors_total",
		Help: "Event log appends that failed and were swallowed.",
	})
	m.eventsAppended = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_appended_total",
		Help: "Crossing events durably appended to the log.",
	})
	m.batchLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "batch_processing_seconds",
		Help:    "Wall time spent processing one detection batch.",
		Buckets: m.histogramBuckets,
	})
	m.trackExpiries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "track_expiries_total",
		Help: "Full per-platform track map resets after idle timeout.",
	})
	m.activeTracks = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "active_tracks",
		Help: "Live tracks across all platforms.",
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "queue",
		Name: "size",
		Help: "Batches waiting in the sharded queue.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "queue",
		Name: "capacity",
		Help: "Total queue capacity across shards.",
	})
	m.queueUtilization = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "queue",
		Name: "utilization",
		Help: "Queue fill ratio, 0 to 1.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name: "requests_total",
		Help: "Ops HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name:    "request_duration_seconds",
		Help:    "Ops HTTP request latency.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	return m
}

// GetRegistry returns the registry the global manager registers into,
// for serving scrapes.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

func RecordBatchReceived()  { globalManager.batchesReceived.Inc() }
func RecordBatchDropped()   { globalManager.batchesDropped.Inc() }
func RecordBatchDuplicate() { globalManager.batchesDuplicate.Inc() }
func RecordDecodeError()    { globalManager.decodeErrors.Inc() }
func RecordEmptyBatch()     { globalManager.emptyBatches.Inc() }

func RecordCrossing(platform, zone, direction string) {
	globalManager.crossings.WithLabelValues(platform, zone, direction).Inc()
}

func RecordPublishError()  { globalManager.publishErrors.Inc() }
func RecordPersistError()  { globalManager.persistErrors.Inc() }
func RecordEventAppended() { globalManager.eventsAppended.Inc() }
func RecordTrackExpiry()   { globalManager.trackExpiries.Inc() }

func RecordBatchLatency(seconds float64) { globalManager.batchLatency.Observe(seconds) }

func UpdateActiveTracks(n int) { globalManager.activeTracks.Set(float64(n)) }

func UpdateQueueSize(n int)            { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int)        { globalManager.queueCapacity.Set(float64(n)) }
func UpdateQueueUtilization(r float64) { globalManager.queueUtilization.Set(r) }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(seconds)
}
