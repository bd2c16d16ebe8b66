package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/youth-camp-api/internal/models"
)

// Reconciliation row outcomes as exported in metrics.
const (
	OutcomeVerified  = "verified"
	OutcomeDuplicate = "duplicate"
	OutcomeNoMatch   = "no_match"
	OutcomeFailed    = "failed"
)

// MetricsService owns the Prometheus registry for the API and its workers.
// A nil *MetricsService is valid and records nothing.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	statusChanges   *prometheus.CounterVec
	idFailures      prometheus.Counter
	reconcileRows   *prometheus.CounterVec
	printBatches    *prometheus.CounterVec
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registration_status_changes_total",
		Help: "Registration status updates by target status",
	}, []string{"status"})

	idFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "participant_id_failures_total",
		Help: "Approvals whose participant id could not be issued",
	})

	reconcileRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tshirt_reconciliation_orders_total",
		Help: "Orders touched by payment reconciliation by outcome",
	}, []string{"outcome"})

	printBatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "print_batches_total",
		Help: "ID card print batches by final status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses, statusChanges, idFailures, reconcileRows, printBatches, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		statusChanges:   statusChanges,
		idFailures:      idFailures,
		reconcileRows:   reconcileRows,
		printBatches:    printBatches,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordStatusChange counts a successful registration status update.
func (m *MetricsService) RecordStatusChange(status models.RegistrationStatus) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(string(status)).Inc()
}

// RecordParticipantIDFailure counts approvals left without a participant id.
func (m *MetricsService) RecordParticipantIDFailure() {
	if m == nil {
		return
	}
	m.idFailures.Inc()
}

// RecordReconciliation adds one reconciliation outcome.
func (m *MetricsService) RecordReconciliation(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.reconcileRows.WithLabelValues(outcome).Add(float64(n))
}

// RecordPrintBatch counts a finished print batch.
func (m *MetricsService) RecordPrintBatch(status models.PrintBatchStatus) {
	if m == nil {
		return
	}
	m.printBatches.WithLabelValues(string(status)).Inc()
}
