package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// 在庫引当の結果と所要時間
type Metrics struct {
	Registry     *prometheus.Registry
	reservations *prometheus.CounterVec
	duration     prometheus.Histogram
	orders       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: reg,
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "inventory",
			Name:      "reservations_total",
			Help:      "Inventory reservations by outcome (ok, sold_out, error).",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "inventory",
			Name:      "reservation_duration_seconds",
			Help:      "Time spent in a reservation including lock wait.",
			Buckets:   prometheus.DefBuckets,
		}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders placed by payment method.",
		}, []string{"payment_method"}),
	}
	reg.MustRegister(m.reservations, m.duration, m.orders)
	return m
}

func (m *Metrics) ObserveReservation(outcome string, d time.Duration) {
	m.reservations.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) OrderPlaced(paymentMethod string) {
	m.orders.WithLabelValues(paymentMethod).Inc()
}
