// Package metrics expone contadores Prometheus de la API y del worker de notificaciones.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/storefront-api/internal/application/notification"
)

const namespace = "storefront"

// Registry registro propio (no el global) con las métricas de la aplicación.
// Seguro para uso concurrente.
type Registry struct {
	registry *prometheus.Registry

	notificationsTotal *prometheus.CounterVec
	retriesTotal       *prometheus.CounterVec
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// NewRegistry crea el registro con las métricas del proceso y de Go incluidas.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notificaciones procesadas por la pasarela, por desenlace.",
		}, []string{"result"}),
		retriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_retries_total",
			Help:      "Reintentos del worker sobre la cola durable.",
		}, []string{"result"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.notificationsTotal,
		r.retriesTotal,
		r.requestsTotal,
		r.requestDuration,
	)
	return r
}

// ObserveSend implementa notification.Metrics.
func (r *Registry) ObserveSend(result notification.Result) {
	r.notificationsTotal.WithLabelValues(result.String()).Inc()
}

// ObserveRetry implementa notification.Metrics.
func (r *Registry) ObserveRetry(delivered bool) {
	label := "failed"
	if delivered {
		label = "delivered"
	}
	r.retriesTotal.WithLabelValues(label).Inc()
}

// Handler endpoint de scraping.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// FiberMiddleware cuenta peticiones por ruta registrada (no por URL, para acotar la cardinalidad).
func (r *Registry) FiberMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unmatched"
		if rt := c.Route(); rt != nil && rt.Path != "" {
			route = rt.Path
		}
		r.requestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		r.requestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

var _ notification.Metrics = (*Registry)(nil)
