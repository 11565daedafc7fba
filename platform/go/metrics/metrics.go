// Package metrics owns the prometheus registry and the collectors shared across domains.
// All methods are safe on a nil *Metrics so collaborators can treat metrics as optional.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "concoro"

// Metrics groups the collectors registered on a dedicated registry.
type Metrics struct {
	Registry *prometheus.Registry

	slugFallbacks  *prometheus.CounterVec
	lookups        *prometheus.CounterVec
	sitemapURLs    prometheus.Gauge
	sitemapBuilds  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New builds a registry with process/go collectors and the application collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: reg,
		slugFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slug_fallbacks_total",
			Help:      "Slug segments replaced by a placeholder, by segment.",
		}, []string{"segment"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bandi_lookups_total",
			Help:      "Bando lookups by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		sitemapURLs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sitemap_urls",
			Help:      "URLs in the most recently built sitemap.",
		}),
		sitemapBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sitemap_builds_total",
			Help:      "Sitemap builds by outcome.",
		}, []string{"outcome"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(m.slugFallbacks, m.lookups, m.sitemapURLs, m.sitemapBuilds, m.requestLatency)
	return m
}

// SlugFallback counts one placeholder substitution for segment.
func (m *Metrics) SlugFallback(segment string) {
	if m == nil {
		return
	}
	m.slugFallbacks.WithLabelValues(segment).Inc()
}

// Lookup records the outcome ("hit", "miss", "error") of a lookup strategy.
func (m *Metrics) Lookup(strategy, outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(strategy, outcome).Inc()
}

// SitemapBuilt records a sitemap build.
func (m *Metrics) SitemapBuilt(urls int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.sitemapBuilds.WithLabelValues("error").Inc()
		return
	}
	m.sitemapBuilds.WithLabelValues("ok").Inc()
	m.sitemapURLs.Set(float64(urls))
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware observes request latency labelled with the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestLatency.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
