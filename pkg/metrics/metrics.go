package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SettingsSaves counts settings form submissions by result (clean|with_errors|failed).
	SettingsSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siteutil_settings_saves_total",
			Help: "Total number of settings form submissions",
		},
		[]string{"result"},
	)

	// ValidationErrors counts advisory validation errors raised per field.
	ValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siteutil_settings_validation_errors_total",
			Help: "Total number of settings validation errors",
		},
		[]string{"field"},
	)

	// MailDeliveries records outbound deliveries by transport mode and result (success|failure).
	MailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siteutil_mail_deliveries_total",
			Help: "Total number of outbound mail deliveries",
		},
		[]string{"mode", "result"},
	)

	// SitemapWrites records sitemap generation attempts by result.
	SitemapWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siteutil_sitemap_writes_total",
			Help: "Total number of sitemap writes",
		},
		[]string{"result"},
	)

	// SitemapEntries tracks the number of URLs in the last written sitemap.
	SitemapEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "siteutil_sitemap_entries",
			Help: "Number of URLs in the last written sitemap",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "siteutil_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPInFlight tracks requests currently being served.
	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "siteutil_http_in_flight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)
)
