// Package metrics provides Prometheus metrics for the scorebook service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Command labels used by RecordCommand.
const (
	CommandAppend    = "append"
	CommandEdit      = "edit"
	CommandDelete    = "delete"
	CommandReset     = "reset"
	CommandIntroduce = "introduce"
)

// Result labels used by RecordCommand.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Ledger metrics
	commands         *prometheus.CounterVec
	rejections       *prometheus.CounterVec
	replayDuration   prometheus.Histogram
	replayedEvents   prometheus.Histogram
	duplicateAppends prometheus.Counter
	activeMatches    prometheus.Gauge
	recordedEvents   prometheus.Gauge
	exports          *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scorebook",
		subsystem:        "ledger",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.commands = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "commands_total",
		Help:        "Ledger commands by kind and result",
		ConstLabels: constLabels,
	}, []string{"command", "result"})

	m.rejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rejections_total",
		Help:        "Rejected ledger commands by error kind",
		ConstLabels: constLabels,
	}, []string{"command", "reason"})

	m.replayDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "replay_duration_milliseconds",
		Help:        "Duration of a full mutation including replay, in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		ConstLabels: constLabels,
	})

	m.replayedEvents = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "replayed_events",
		Help:        "Number of events in the history after a mutation",
		Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		ConstLabels: constLabels,
	})

	m.duplicateAppends = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duplicate_appends_total",
		Help:        "Appends skipped because their request id was already seen",
		ConstLabels: constLabels,
	})

	m.activeMatches = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "active_matches",
		Help:        "Number of match sessions held in memory",
		ConstLabels: constLabels,
	})

	m.recordedEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "recorded_events",
		Help:        "Events currently recorded across all matches",
		ConstLabels: constLabels,
	})

	m.exports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "exports_total",
		Help:        "Exports rendered by kind",
		ConstLabels: constLabels,
	}, []string{"kind"})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_type_total",
			Help:        "Total number of errors by type",
			ConstLabels: constLabels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "Total number of errors by endpoint",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: constLabels,
	})
}

// Enabled reports whether recording is active for this manager.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is the period of background gauge refreshes.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// RecordCommand counts a ledger command and its result.
func (m *Manager) RecordCommand(command, result string) {
	if m.enabled {
		m.commands.WithLabelValues(command, result).Inc()
	}
}

// RecordRejection counts a rejected command by reason.
func (m *Manager) RecordRejection(command, reason string) {
	if m.enabled {
		m.rejections.WithLabelValues(command, reason).Inc()
	}
}

// RecordReplay observes one mutation's duration and resulting history size.
func (m *Manager) RecordReplay(latencyMs float64, events int) {
	if m.enabled {
		m.replayDuration.Observe(latencyMs)
		m.replayedEvents.Observe(float64(events))
	}
}

// RefreshInterval is the period of background gauge refreshes for the
// global manager.
func RefreshInterval() time.Duration { return globalManager.RefreshInterval() }

// RecordCommand counts a ledger command and its result.
func RecordCommand(command, result string) { globalManager.RecordCommand(command, result) }

// RecordRejection counts a rejected command by reason.
func RecordRejection(command, reason string) { globalManager.RecordRejection(command, reason) }

// RecordReplay observes one mutation's duration and resulting history size.
func RecordReplay(latencyMs float64, events int) { globalManager.RecordReplay(latencyMs, events) }

// RecordDuplicateAppend increments the duplicate append counter.
func RecordDuplicateAppend() {
	globalManager.duplicateAppends.Inc()
}

// UpdateActiveMatches sets the number of matches held in memory.
func UpdateActiveMatches(count int) {
	globalManager.activeMatches.Set(float64(count))
}

// UpdateRecordedEvents sets the number of events recorded across matches.
func UpdateRecordedEvents(count int) {
	globalManager.recordedEvents.Set(float64(count))
}

// RecordExport counts a rendered export.
func RecordExport(kind string) {
	globalManager.exports.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
