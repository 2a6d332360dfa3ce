package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bankreviews", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bankreviews", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ReviewsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "bankreviews", Name: "reviews_processed_total", Help: "Reviews run through the classification pipeline."},
	)
	ReviewsInserted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "bankreviews", Name: "reviews_inserted_total", Help: "Review rows written to the store."},
	)
	DuplicatesRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "bankreviews", Name: "duplicates_removed_total", Help: "Exact duplicate input rows dropped before classification."},
	)
	SentimentFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "bankreviews", Name: "sentiment_fallbacks_total", Help: "Reviews reported NEUTRAL because the scorer failed."},
	)
	BanksResolved = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "bankreviews", Name: "banks_resolved_total", Help: "Distinct bank names resolved to ids."},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bankreviews", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	// expose the same registry the handlers use; the default promhttp
	// handler would miss every pipeline counter
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(InitRegistry()))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency,
		ReviewsProcessed, ReviewsInserted, DuplicatesRemoved,
		SentimentFallbacks, BanksResolved, CacheEvents,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveSentimentFallback() { SentimentFallbacks.Inc() }

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
