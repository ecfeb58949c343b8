package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_fetches_total",
			Help: "Total number of outbound page fetches executed",
		},
		[]string{"domain", "status", "challenged"},
	)

	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_searches_total",
			Help: "Total number of search queries handled",
		},
		[]string{"status", "cached"},
	)

	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_provider_requests_total",
			Help: "Total number of provider backend requests",
		},
		[]string{"provider", "status"},
	)

	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_extractions_total",
			Help: "Total number of page content extractions attempted",
		},
		[]string{"status"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scout_fetch_duration_seconds",
			Help:    "Duration of outbound page fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"domain"},
	)

	FetchBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_fetch_bytes_total",
			Help: "Total bytes downloaded across all page fetches",
		},
		[]string{"domain"},
	)

	CacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_cache_events_total",
			Help: "Result cache events (hit, miss, expire, evict)",
		},
		[]string{"event"},
	)
)

// RecordFetch updates the fetch metrics for one outbound page request.
func RecordFetch(domain string, statusCode int, bodyLen int, duration time.Duration, fetchErr string, challenged bool) {
	statusStr := strconv.Itoa(statusCode)
	if fetchErr != "" {
		statusStr = "error"
	}

	FetchesTotal.WithLabelValues(domain, statusStr, strconv.FormatBool(challenged)).Inc()
	FetchDuration.WithLabelValues(domain).Observe(duration.Seconds())
	FetchBytesTotal.WithLabelValues(domain).Add(float64(bodyLen))
}

// RecordSearch records the outcome of one query.
func RecordSearch(success, cached bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	SearchesTotal.WithLabelValues(status, strconv.FormatBool(cached)).Inc()
}

// RecordProvider records the outcome of one provider request.
func RecordProvider(provider string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ProviderRequestsTotal.WithLabelValues(provider, status).Inc()
}

// RecordExtraction records the outcome of one content extraction.
func RecordExtraction(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ExtractionsTotal.WithLabelValues(status).Inc()
}

// RecordCacheEvent records a cache hit, miss, expiry or eviction.
func RecordCacheEvent(event string) {
	CacheEventsTotal.WithLabelValues(event).Inc()
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
