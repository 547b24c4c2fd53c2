package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the console's Prometheus registry and metric vectors.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	APIRequestsTotal    *prometheus.CounterVec
	APIRequestDuration  *prometheus.HistogramVec
	UnauthorizedTotal   prometheus.Counter
	ChatFallbacksTotal  *prometheus.CounterVec
}

func New(namespace string) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Console HTTP requests by route and status",
		}, []string{"method", "route", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Console HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		APIRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Requests sent to the RAG backend by operation and outcome",
		}, []string{"operation", "status_code"}),
		APIRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "RAG backend request latency",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		UnauthorizedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_unauthorized_total",
			Help:      "Backend 401 responses that invalidated a session",
		}),
		ChatFallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_fallbacks_total",
			Help:      "Chat calls answered with the fallback message",
		}, []string{"mode"}),
	}

	reg.MustRegister(
		c.HTTPRequestsTotal,
		c.HTTPRequestDuration,
		c.APIRequestsTotal,
		c.APIRequestDuration,
		c.UnauthorizedTotal,
		c.ChatFallbacksTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveAPI records one backend call. status 0 means the request never got a response.
func (c *Collector) ObserveAPI(operation string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}

	code := "transport_error"
	if status > 0 {
		code = strconv.Itoa(status)
	}

	c.APIRequestsTotal.WithLabelValues(operation, code).Inc()
	c.APIRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if status == http.StatusUnauthorized {
		c.UnauthorizedTotal.Inc()
	}
}

func (c *Collector) ObserveHTTP(method string, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}

	c.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) ChatFallback(mode string) {
	if c == nil {
		return
	}

	c.ChatFallbacksTotal.WithLabelValues(mode).Inc()
}
