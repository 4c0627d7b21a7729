// Package metrics provides Prometheus metrics for the resource economy.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/simaogato/resourceflow-backend/internal/domain"
	"github.com/simaogato/resourceflow-backend/internal/usecase/order"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	// Order metrics
	OrdersCreated  prometheus.Counter
	OrdersResolved *prometheus.CounterVec
	OrdersPending  prometheus.Gauge

	// Tick metrics
	TicksTotal   prometheus.Counter
	TickDuration prometheus.Histogram
	TickOrders   prometheus.Histogram

	// gRPC metrics
	GRPCRequestsTotal   *prometheus.CounterVec
	GRPCRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance registered on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Total number of transfer orders created",
		}),
		OrdersResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_resolved_total",
			Help:      "Total number of transfer orders resolved by outcome and reject reason",
		}, []string{"outcome", "reason"}),
		OrdersPending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orders_pending",
			Help:      "Orders waiting for the next tick",
		}),

		TicksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total number of processed ticks",
		}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent processing and sweeping orders per tick",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		TickOrders: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_orders",
			Help:      "Number of orders resolved per tick",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		}),

		GRPCRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "Total gRPC requests by method and status",
		}, []string{"method", "status"}),
		GRPCRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request duration by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// RecordOrderCreated counts a newly created order.
func (m *Metrics) RecordOrderCreated() {
	m.OrdersCreated.Inc()
	m.OrdersPending.Inc()
}

// RecordTick records the outcome of one tick.
func (m *Metrics) RecordTick(report order.TickReport, pending int, duration time.Duration) {
	m.TicksTotal.Inc()
	m.TickDuration.Observe(duration.Seconds())
	m.TickOrders.Observe(float64(len(report.Resolved)))

	for _, o := range report.Resolved {
		if o.Outcome == domain.OutcomeAccepted {
			m.OrdersResolved.WithLabelValues("accepted", "").Inc()
			continue
		}
		m.OrdersResolved.WithLabelValues("rejected", o.Reason.String()).Inc()
	}

	m.OrdersPending.Set(float64(pending))
}

// RecordGRPCRequest records a gRPC request.
func (m *Metrics) RecordGRPCRequest(method, status string, duration time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(method, status).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
