package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reviews", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	BrowserActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "browser_actions_total", Help: "Browser actions by outcome."},
		[]string{"action", "status"}, // status: ok|timeout|error
	)
	BrowserLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reviews", Name: "browser_action_duration_seconds",
			Help:    "Browser action duration seconds.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"action"},
	)
	ProductsVisited = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "reviews", Name: "products_visited_total", Help: "Product detail pages processed."},
	)
	ReviewsExtracted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "reviews", Name: "reviews_extracted_total", Help: "Review records built."},
	)
	FieldMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "field_misses_total", Help: "Review fields absent or unreadable."},
		[]string{"field"},
	)
	LoadMoreClicks = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "reviews", Name: "load_more_clicks_total", Help: "Load-more activations."},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency,
		BrowserActions, BrowserLatency,
		ProductsVisited, ReviewsExtracted, FieldMisses, LoadMoreClicks,
		CacheEvents,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics and /healthz on addr until ctx is done.
// An empty addr disables it.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry, log zerolog.Logger) error {
	if addr == "" {
		return nil
	}
	r := chi.NewRouter()
	r.Handle("/metrics", MetricsHandler(reg))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveBrowser(action string, err error, dur time.Duration) {
	BrowserActions.WithLabelValues(action, LabelErr(err)).Inc()
	BrowserLatency.WithLabelValues(action).Observe(dur.Seconds())
}

func ObserveProduct() { ProductsVisited.Inc() }

func ObserveReview(missing []string) {
	ReviewsExtracted.Inc()
	for _, f := range missing {
		FieldMisses.WithLabelValues(f).Inc()
	}
}

func ObserveLoadMore() { LoadMoreClicks.Inc() }

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func LabelErr(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	return "error"
}
