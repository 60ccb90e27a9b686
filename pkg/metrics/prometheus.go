// Package metrics provides Prometheus metrics for the match statistics service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

var latencyBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Match metrics
	statUpdates      *prometheus.CounterVec
	rosterMutations  *prometheus.CounterVec
	rosterPlayers    prometheus.Gauge
	snapshotVersion  prometheus.Gauge
	imports          *prometheus.CounterVec
	templateFetches  *prometheus.CounterVec
	matchesClosed    prometheus.Counter
	duplicateRequest prometheus.Counter

	// Persistence
	snapshotSaves       *prometheus.CounterVec
	snapshotSaveLatency prometheus.Histogram
	snapshotStale       prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Change feed queue
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge
	queueEnqueued  prometheus.Counter
	queueDropped   prometheus.Counter
	queueDequeued  prometheus.Counter
	queueUtilRatio prometheus.Gauge

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Live feed
	liveSubscribers prometheus.Gauge
	liveMessages    prometheus.Counter
	liveDropped     prometheus.Counter

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtside",
		subsystem:        "match",
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

func (m *Manager) name(n string) string {
	if m.metricPrefix != "" {
		return m.metricPrefix + "_" + n
	}
	return n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.statUpdates = auto.NewCounterVec(m.counterOpts("stat_updates_total", "Stat counter changes by field and direction"), []string{"field", "direction"})
	m.rosterMutations = auto.NewCounterVec(m.counterOpts("roster_mutations_total", "Roster mutations by operation"), []string{"operation"})
	m.rosterPlayers = auto.NewGauge(m.gaugeOpts("roster_players", "Players currently on the roster"))
	m.snapshotVersion = auto.NewGauge(m.gaugeOpts("snapshot_version", "Version of the latest roster change"))
	m.imports = auto.NewCounterVec(m.counterOpts("imports_total", "Snapshot imports by result"), []string{"result"})
	m.templateFetches = auto.NewCounterVec(m.counterOpts("template_fetches_total", "New-match template fetches by result"), []string{"result"})
	m.matchesClosed = auto.NewCounter(m.counterOpts("matches_closed_total", "Matches closed with a recap"))
	m.duplicateRequest = auto.NewCounter(m.counterOpts("duplicate_requests_total", "Stat taps dropped as retries of an earlier request"))

	m.snapshotSaves = auto.NewCounterVec(m.counterOpts("snapshot_saves_total", "Snapshot writes by result"), []string{"result"})
	m.snapshotSaveLatency = auto.NewHistogram(m.histogramOpts("snapshot_save_latency_milliseconds", "Snapshot write latency in milliseconds", latencyBuckets))
	m.snapshotStale = auto.NewCounter(m.counterOpts("snapshot_stale_total", "Snapshot writes skipped because a newer version was already saved"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Pending change events"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Change queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Change events enqueued"))
	m.queueDropped = auto.NewCounter(m.counterOpts("queue_dropped_total", "Change events dropped because the queue was full or closed"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Change events handed to workers"))
	m.queueUtilRatio = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Pending events over capacity"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Running change workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Time spent handling one change event", latencyBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Change handler failures"))

	m.liveSubscribers = auto.NewGauge(m.gaugeOpts("live_subscribers", "Connected live feed clients"))
	m.liveMessages = auto.NewCounter(m.counterOpts("live_messages_total", "Change events pushed to live clients"))
	m.liveDropped = auto.NewCounter(m.counterOpts("live_dropped_total", "Live messages dropped for slow clients"))

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component and type"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Allocated heap bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Running goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause in milliseconds", latencyBuckets))
}

// RecordStatUpdate counts one counter change.
func RecordStatUpdate(field, direction string) {
	globalManager.statUpdates.WithLabelValues(field, direction).Inc()
}

// RecordRosterMutation counts one roster operation.
func RecordRosterMutation(operation string) {
	globalManager.rosterMutations.WithLabelValues(operation).Inc()
}

// UpdateRosterPlayers sets the roster size.
func UpdateRosterPlayers(count int) {
	globalManager.rosterPlayers.Set(float64(count))
}

// UpdateSnapshotVersion sets the latest change version.
func UpdateSnapshotVersion(version uint64) {
	globalManager.snapshotVersion.Set(float64(version))
}

// RecordImport counts an import by result ("ok", "malformed", "error").
func RecordImport(result string) {
	globalManager.imports.WithLabelValues(result).Inc()
}

// RecordTemplateFetch counts a template fetch by result.
func RecordTemplateFetch(result string) {
	globalManager.templateFetches.WithLabelValues(result).Inc()
}

// RecordMatchClosed counts a closed match.
func RecordMatchClosed() {
	globalManager.matchesClosed.Inc()
}

// RecordDuplicateRequest counts a dropped retry.
func RecordDuplicateRequest() {
	globalManager.duplicateRequest.Inc()
}

// RecordSnapshotSave counts a snapshot write and its latency.
func RecordSnapshotSave(result string, latencyMs float64) {
	globalManager.snapshotSaves.WithLabelValues(result).Inc()
	globalManager.snapshotSaveLatency.Observe(latencyMs)
}

// RecordSnapshotStale counts a skipped out-of-order write.
func RecordSnapshotStale() {
	globalManager.snapshotStale.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilRatio.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDrop increments the dropped counter.
func RecordQueueDrop() {
	globalManager.queueDropped.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// UpdateWorkerCount sets the current worker count.
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

// UpdateLiveSubscribers sets the connected live client count.
func UpdateLiveSubscribers(count int) {
	globalManager.liveSubscribers.Set(float64(count))
}

// RecordLiveMessage counts a pushed live message.
func RecordLiveMessage() {
	globalManager.liveMessages.Inc()
}

// RecordLiveDrop counts a live message dropped for a slow client.
func RecordLiveDrop() {
	globalManager.liveDropped.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
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

// StartSystemCollector refreshes the runtime gauges every refresh interval
// until ctx is done. It is a no-op when metrics are disabled.
func StartSystemCollector(ctx context.Context) {
	globalManager.collectSystem(ctx)
}

func (m *Manager) collectSystem(ctx context.Context) {
	if !m.enabled {
		return
	}
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()
	var lastNumGC uint32
	var lastPauseTotal uint64
	for {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		m.systemMemoryUsage.Set(float64(ms.Alloc))
		m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
		if ms.NumGC > lastNumGC {
			avg := float64(ms.PauseTotalNs-lastPauseTotal) / float64(ms.NumGC-lastNumGC)
			m.systemGCPauseTime.Observe(avg / float64(time.Millisecond))
			lastNumGC, lastPauseTotal = ms.NumGC, ms.PauseTotalNs
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
