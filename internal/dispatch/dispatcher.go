// Package dispatch routes parsed intents to the matching engine and forwards
// the results to a reporter.
package dispatch

import (
	"errors"
	"fmt"

	"outcry/internal/command"
	"outcry/internal/common"
	"outcry/internal/engine"
	"outcry/internal/metrics"

	"github.com/rs/zerolog/log"
)

var ErrUnknownIntent = errors.New("unknown intent")

// Reporter consumes everything the engine produces for a caller.
type Reporter interface {
	ReportTrade(trade common.Trade) error
	ReportSnapshot(snap common.Snapshot) error
}

type Dispatcher struct {
	engine  *engine.Engine
	metrics *metrics.Metrics
}

func New(eng *engine.Engine, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		engine:  eng,
		metrics: m,
	}
}

// Dispatch applies one intent and reports its output in execution order.
// Orders the engine refuses are logged and counted, not returned: only a
// failing reporter produces an error.
func (d *Dispatcher) Dispatch(intent command.Intent, reporter Reporter) error {
	switch in := intent.(type) {
	case command.NewOrder:
		return d.newOrder(in, reporter)
	case command.Cancel:
		d.cancel(in)
		return nil
	case command.Modify:
		return d.modify(in, reporter)
	case command.Print:
		return d.print(reporter)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownIntent, intent)
	}
}

func (d *Dispatcher) newOrder(in command.NewOrder, reporter Reporter) error {
	exec, err := d.engine.Submit(in.Order())
	if err != nil {
		d.reject(in.ID, err)
		return nil
	}

	d.metrics.OrdersSubmitted.WithLabelValues(in.Side.String(), in.TimeInForce.String()).Inc()
	return d.report(exec, reporter)
}

func (d *Dispatcher) cancel(in command.Cancel) {
	_, ok := d.engine.Cancel(in.ID)
	if !ok {
		d.metrics.Cancels.WithLabelValues("unknown").Inc()
		return
	}
	d.metrics.Cancels.WithLabelValues("cancelled").Inc()
	d.metrics.RestingOrders.Set(float64(d.engine.RestingOrders()))
}

func (d *Dispatcher) modify(in command.Modify, reporter Reporter) error {
	exec, found, err := d.engine.Modify(in.ID, in.Side, in.Price, in.Quantity)
	if err != nil {
		d.metrics.Modifies.WithLabelValues("rejected").Inc()
		d.reject(in.ID, err)
		return nil
	}
	if !found {
		d.metrics.Modifies.WithLabelValues("unknown").Inc()
		return nil
	}

	d.metrics.Modifies.WithLabelValues("replaced").Inc()
	d.metrics.OrdersSubmitted.WithLabelValues(in.Side.String(), common.GFD.String()).Inc()
	return d.report(exec, reporter)
}

func (d *Dispatcher) print(reporter Reporter) error {
	d.metrics.Snapshots.Inc()
	if err := reporter.ReportSnapshot(d.engine.Snapshot()); err != nil {
		return fmt.Errorf("reporting snapshot: %w", err)
	}
	return nil
}

// report forwards the trades of one execution and records its metrics.
func (d *Dispatcher) report(exec engine.Execution, reporter Reporter) error {
	d.metrics.Trades.Add(float64(len(exec.Trades)))
	d.metrics.TradedQuantity.Add(exec.Traded().InexactFloat64())
	d.metrics.DiscardedQuantity.Add(exec.Discarded.InexactFloat64())
	d.metrics.RestingOrders.Set(float64(d.engine.RestingOrders()))

	for _, trade := range exec.Trades {
		if err := reporter.ReportTrade(trade); err != nil {
			return fmt.Errorf("reporting trade %d: %w", trade.Sequence, err)
		}
	}
	return nil
}

func (d *Dispatcher) reject(id string, err error) {
	reason := "other"
	switch {
	case errors.Is(err, engine.ErrInvalidQuantity):
		reason = "invalid_quantity"
	case errors.Is(err, engine.ErrDuplicateOrder):
		reason = "duplicate_order"
	case errors.Is(err, engine.ErrInvalidSide):
		reason = "invalid_side"
	case errors.Is(err, engine.ErrInvalidTimeInForce):
		reason = "invalid_tif"
	}
	d.metrics.Rejections.WithLabelValues(reason).Inc()

	log.Warn().
		Err(err).
		Str("id", id).
		Str("reason", reason).
		Msg("order rejected")
}
