package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Engine metrics
	EngineLoads        prometheus.Counter
	EngineLoadFailures prometheus.Counter
	EngineLoadDuration prometheus.Histogram

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON health surface
type Snapshot struct {
	TotalRequests int64
	TotalErrors   int64
	TotalRuns     int64
	FailedRuns    int64
	Connections   int64
	RunDuration   float64 // sum of run durations in seconds
	RunCount      int64   // count for averaging
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runpad_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runpad_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runpad_runs_total",
				Help: "Total number of code runs",
			},
			[]string{"status"},
		),
		RunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "runpad_run_duration_seconds",
				Help:    "Code run duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),

		EngineLoads: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "runpad_engine_loads_total",
				Help: "Total number of execution module loads",
			},
		),
		EngineLoadFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "runpad_engine_load_failures_total",
				Help: "Total number of failed execution module loads",
			},
		),
		EngineLoadDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "runpad_engine_load_duration_seconds",
				Help:    "Execution module load duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "runpad_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runpad_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"type"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "runpad_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordRun records a code run outcome
func (m *Metrics) RecordRun(status string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRuns++
	if status != "ok" {
		m.snapshot.FailedRuns++
	}
	m.snapshot.RunDuration += duration.Seconds()
	m.snapshot.RunCount++
	m.mu.Unlock()
}

// RecordEngineLoad records an execution module load attempt
func (m *Metrics) RecordEngineLoad(duration time.Duration, err error) {
	m.EngineLoads.Inc()
	m.EngineLoadDuration.Observe(duration.Seconds())
	if err != nil {
		m.EngineLoadFailures.Inc()
	}
}

// ConnectionOpened tracks a new WebSocket connection
func (m *Metrics) ConnectionOpened() {
	m.WSConnections.Inc()

	m.mu.Lock()
	m.snapshot.Connections++
	m.mu.Unlock()
}

// ConnectionClosed tracks a closed WebSocket connection
func (m *Metrics) ConnectionClosed() {
	m.WSConnections.Dec()

	m.mu.Lock()
	m.snapshot.Connections--
	m.mu.Unlock()
}

// RecordWSMessage records a WebSocket message by type
func (m *Metrics) RecordWSMessage(msgType string) {
	m.WSMessages.WithLabelValues(msgType).Inc()
}

// GetSnapshot returns current metric values for the JSON API
func (m *Metrics) GetSnapshot() map[string]interface{} {
	m.Uptime.Set(time.Since(m.startTime).Seconds())

	m.mu.RLock()
	defer m.mu.RUnlock()

	avgRun := 0.0
	if m.snapshot.RunCount > 0 {
		avgRun = m.snapshot.RunDuration / float64(m.snapshot.RunCount)
	}

	return map[string]interface{}{
		"total_requests":       m.snapshot.TotalRequests,
		"total_errors":         m.snapshot.TotalErrors,
		"total_runs":           m.snapshot.TotalRuns,
		"failed_runs":          m.snapshot.FailedRuns,
		"active_connections":   m.snapshot.Connections,
		"avg_run_duration_sec": avgRun,
		"uptime_seconds":       time.Since(m.startTime).Seconds(),
	}
}
