// Package metrics exposes Prometheus instrumentation for order handling.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "outcry"

type Metrics struct {
	OrdersSubmitted   *prometheus.CounterVec
	Trades            prometheus.Counter
	TradedQuantity    prometheus.Counter
	DiscardedQuantity prometheus.Counter
	Cancels           *prometheus.CounterVec
	Modifies          *prometheus.CounterVec
	Rejections        *prometheus.CounterVec
	Snapshots         prometheus.Counter
	RestingOrders     prometheus.Gauge
}

// New registers every collector with reg. Passing prometheus.NewRegistry()
// keeps tests isolated from the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OrdersSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_submitted_total",
				Help:      "Orders accepted for matching, including modify resubmissions",
			},
			[]string{"side", "tif"},
		),
		Trades: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trades_total",
				Help:      "Trades executed",
			},
		),
		TradedQuantity: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "traded_quantity_total",
				Help:      "Quantity filled across all trades",
			},
		),
		DiscardedQuantity: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ioc_discarded_quantity_total",
				Help:      "Unfilled IOC quantity dropped after matching",
			},
		),
		Cancels: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cancels_total",
				Help:      "Cancel requests by outcome",
			},
			[]string{"result"},
		),
		Modifies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "modifies_total",
				Help:      "Modify requests by outcome",
			},
			[]string{"result"},
		),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejections_total",
				Help:      "Orders refused by the engine",
			},
			[]string{"reason"},
		),
		Snapshots: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_total",
				Help:      "Book snapshots produced",
			},
		),
		RestingOrders: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "resting_orders",
				Help:      "Orders currently resting on either side",
			},
		),
	}
}
