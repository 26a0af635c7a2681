// Package metrics provides Prometheus metrics for the mealmax battle service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Battle metrics
	battlesResolved  prometheus.Counter
	battleUpsets     prometheus.Counter
	battleDelta      prometheus.Histogram
	battleLatency    prometheus.Histogram
	battleFailures   *prometheus.CounterVec
	statUpdates      *prometheus.CounterVec
	statUpdateErrors prometheus.Counter
	statUpdateSkips  prometheus.Counter
	activeSessions   prometheus.Gauge

	// Catalog metrics
	mealsTotal        prometheus.Gauge
	catalogOperations *prometheus.CounterVec
	catalogLatency    *prometheus.HistogramVec

	// History queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// History worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	historyRecorded         prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

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

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mealmax",
		subsystem:        "battle",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.battlesResolved = m.counter("battles_resolved_total", "Total number of battles resolved")
	m.battleUpsets = m.counter("battle_upsets_total", "Battles won by the lower-scoring combatant")
	m.battleDelta = m.histogram("delta", "Normalised score gap between combatants",
		[]float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1})
	m.battleLatency = m.histogram("resolve_latency_milliseconds", "Time spent resolving a battle, stat updates included", m.histogramBuckets)
	m.battleFailures = m.counterVec("battle_failures_total", "Battles that failed to resolve by reason", "reason")
	m.statUpdates = m.counterVec("stat_updates_total", "Meal stat updates applied by result", "result")
	m.statUpdateErrors = m.counter("stat_update_errors_total", "Meal stat updates that failed")
	m.statUpdateSkips = m.counter("stat_update_skips_total", "Meal stat updates skipped because they were already applied")
	m.activeSessions = m.gauge("active_sessions", "Open battle sessions")

	m.mealsTotal = m.gauge("meals_total", "Non-deleted meals in the catalog")
	m.catalogOperations = m.counterVec("catalog_operations_total", "Catalog operations by name and outcome", "operation", "outcome")
	m.catalogLatency = m.histogramVec("catalog_latency_milliseconds", "Catalog operation latency", "operation")

	m.queueSize = m.gauge("history_queue_size", "Battle records waiting to be persisted")
	m.queueCapacity = m.gauge("history_queue_capacity", "Capacity of the history queue")
	m.queueEnqueued = m.counter("history_queue_enqueue_total", "Battle records enqueued")
	m.queueDequeued = m.counter("history_queue_dequeue_total", "Battle records dequeued")
	m.queueEnqueueErrors = m.counter("history_queue_enqueue_errors_total", "Battle records dropped at enqueue")

	m.workerCount = m.gauge("history_worker_count", "History workers running")
	m.workerProcessingLatency = m.histogram("history_worker_latency_milliseconds", "Time spent persisting one battle record", m.histogramBuckets)
	m.workerErrors = m.counter("history_worker_errors_total", "Battle records that failed to persist")
	m.historyRecorded = m.counter("history_recorded_total", "Battle records persisted")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Battle Metrics Functions.

// RecordBattleResolved records one resolved battle with its delta and latency.
func RecordBattleResolved(delta float64, upset bool, latencyMs float64) {
	globalManager.battlesResolved.Inc()
	globalManager.battleDelta.Observe(delta)
	globalManager.battleLatency.Observe(latencyMs)
	if upset {
		globalManager.battleUpsets.Inc()
	}
}

// RecordBattleFailure increments the failed battle counter for reason.
func RecordBattleFailure(reason string) {
	globalManager.battleFailures.WithLabelValues(reason).Inc()
}

// RecordStatUpdate increments the applied stat update counter.
func RecordStatUpdate(result string) {
	globalManager.statUpdates.WithLabelValues(result).Inc()
}

// RecordStatUpdateError increments the stat update error counter.
func RecordStatUpdateError() {
	globalManager.statUpdateErrors.Inc()
}

// RecordStatUpdateSkipped increments the skipped (already applied) stat update counter.
func RecordStatUpdateSkipped() {
	globalManager.statUpdateSkips.Inc()
}

// UpdateActiveSessions sets the open session gauge.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// Catalog Metrics Functions.

// UpdateMealsTotal sets the catalog size gauge.
func UpdateMealsTotal(count int) {
	globalManager.mealsTotal.Set(float64(count))
}

// RecordCatalogOperation records a catalog operation outcome and its latency.
func RecordCatalogOperation(operation, outcome string, latencyMs float64) {
	globalManager.catalogOperations.WithLabelValues(operation, outcome).Inc()
	globalManager.catalogLatency.WithLabelValues(operation).Observe(latencyMs)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current history queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum history queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the history worker gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHistoryRecorded increments the persisted battle record counter.
func RecordHistoryRecorded() {
	globalManager.historyRecorded.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

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

// Configure replaces the global manager with one built from opts on a fresh
// registry and returns that registry. It must run before anything records.
func Configure(opts ...Option) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	all := make([]Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, WithPrometheusRegistry(registry))

	globalManager = NewManager(all...)
	customRegistry = registry
	return registry
}
