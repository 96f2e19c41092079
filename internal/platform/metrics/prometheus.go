package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry            *prometheus.Registry
	ListingsCreated     *prometheus.CounterVec
	ListingsUpdated     *prometheus.CounterVec
	ListingsDeleted     *prometheus.CounterVec
	ListingViews        *prometheus.CounterVec
	ImageDeleteFailures prometheus.Counter
	APIErrorsTotal      *prometheus.CounterVec
	APILatency          *prometheus.HistogramVec
}

func NewMetricsManager(serviceName string) *MetricsManager {
	namespace := strings.ReplaceAll(serviceName, "-", "_")
	registry := prometheus.NewRegistry()

	byKind := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"kind"})
	}

	m := &MetricsManager{
		Registry:        registry,
		ListingsCreated: byKind("listings_created_total", "Total number of listings created."),
		ListingsUpdated: byKind("listings_updated_total", "Total number of listings updated."),
		ListingsDeleted: byKind("listings_deleted_total", "Total number of listings deleted."),
		ListingViews:    byKind("listing_views_total", "Total number of counted detail page views."),
		ImageDeleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_delete_failures_total",
			Help:      "Image store deletions that failed and were skipped.",
		}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors by route and status.",
		}, []string{"route", "status"}),
		APILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_latency_seconds",
			Help:      "Latency of API requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	registry.MustRegister(
		m.ListingsCreated,
		m.ListingsUpdated,
		m.ListingsDeleted,
		m.ListingViews,
		m.ImageDeleteFailures,
		m.APIErrorsTotal,
		m.APILatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// StartMetricsServer serves /metrics for registry on port. It is a no-op when
// port is empty.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics port not configured, metrics server disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
