package engine

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"outcry/internal/common"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidSide        = errors.New("invalid side")
	ErrInvalidTimeInForce = errors.New("invalid time in force")
	ErrDuplicateOrder     = errors.New("order id is already resting")
)

// Execution is the outcome of submitting one order.
type Execution struct {
	// Trades in the order they happened.
	Trades []common.Trade
	// Rested is set when a GFD remainder was placed on the book.
	Rested bool
	// Discarded is the IOC remainder that was dropped.
	Discarded decimal.Decimal
}

// Traded is the total quantity filled across all trades.
func (e Execution) Traded() decimal.Decimal {
	total := decimal.Zero
	for _, trade := range e.Trades {
		total = total.Add(trade.Quantity)
	}
	return total
}

// Engine is the matching engine for a single instrument. It owns both sides of
// the book and the registry of resting orders; nothing else mutates them.
//
// Orders, cancels and modifies hold the write lock across both sides, since a
// buy and a sell can cross each other. Read-only queries share a read lock and
// see a consistent point-in-time view.
type Engine struct {
	mu sync.RWMutex

	bids     *BookSide
	asks     *BookSide
	registry *Registry

	sequence      uint64 // Last order arrival sequence handed out.
	tradeSequence uint64 // Last trade sequence handed out.
	now           func() time.Time
}

func New() *Engine {
	return &Engine{
		bids:     NewBookSide(common.Buy),
		asks:     NewBookSide(common.Sell),
		registry: NewRegistry(),
		now:      time.Now,
	}
}

func (engine *Engine) book(side common.Side) *BookSide {
	if side == common.Buy {
		return engine.bids
	}
	return engine.asks
}

// Submit runs a new order through matching. Any quantity left once the order
// no longer crosses is discarded for IOC orders and rests for GFD orders.
//
// The engine stamps the order's Sequence, TotalQuantity and Timestamp; values
// set by the caller are ignored.
func (engine *Engine) Submit(order common.Order) (Execution, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if err := validate(order.Side, order.Quantity); err != nil {
		return Execution{}, err
	}
	return engine.submit(order)
}

// Cancel removes a resting order. Unknown ids, including orders that already
// filled or were cancelled, are not an error: ok is false and nothing changes.
func (engine *Engine) Cancel(id string) (common.Order, bool) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	return engine.cancel(id)
}

// Modify replaces a resting order with a fresh GFD order under the same id.
// The replacement gets a new arrival sequence, so it always loses its place in
// the queue, and it is matched before it rests. If id is not resting, nothing
// happens and found is false.
func (engine *Engine) Modify(id string, side common.Side, price uint64, quantity decimal.Decimal) (exec Execution, found bool, err error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	// Validate first so a bad modify never takes the original off the book.
	if err := validate(side, quantity); err != nil {
		return Execution{}, false, err
	}
	if _, ok := engine.cancel(id); !ok {
		return Execution{}, false, nil
	}

	exec, err = engine.submit(common.Order{
		ID:          id,
		Side:        side,
		Price:       price,
		Quantity:    quantity,
		TimeInForce: common.GFD,
	})
	return exec, true, err
}

// Snapshot aggregates resting quantity per price. Both sides are reported
// price descending.
func (engine *Engine) Snapshot() common.Snapshot {
	engine.mu.RLock()
	defer engine.mu.RUnlock()

	// Asks come best (lowest) first.
	sells := engine.asks.Levels()
	slices.Reverse(sells)

	return common.Snapshot{
		Sell: sells,
		Buy:  engine.bids.Levels(),
	}
}

// Lookup returns a copy of a resting order.
func (engine *Engine) Lookup(id string) (common.Order, bool) {
	engine.mu.RLock()
	defer engine.mu.RUnlock()

	loc, ok := engine.registry.lookup(id)
	if !ok {
		return common.Order{}, false
	}
	return *loc.element.Value.(*common.Order), true
}

func (engine *Engine) BestBid() (uint64, bool) {
	engine.mu.RLock()
	defer engine.mu.RUnlock()
	return engine.bids.BestPrice()
}

func (engine *Engine) BestAsk() (uint64, bool) {
	engine.mu.RLock()
	defer engine.mu.RUnlock()
	return engine.asks.BestPrice()
}

// Depth copies every price level on one side, best price first.
func (engine *Engine) Depth(side common.Side) []FlatPriceLevel {
	engine.mu.RLock()
	defer engine.mu.RUnlock()
	return engine.book(side).Flatten()
}

// RestingOrders is the number of orders currently on either side.
func (engine *Engine) RestingOrders() int {
	engine.mu.RLock()
	defer engine.mu.RUnlock()
	return engine.registry.Len()
}

func validate(side common.Side, quantity decimal.Decimal) error {
	if side != common.Buy && side != common.Sell {
		return fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidQuantity, quantity)
	}
	return nil
}

func (engine *Engine) submit(order common.Order) (Execution, error) {
	if order.TimeInForce != common.GFD && order.TimeInForce != common.IOC {
		return Execution{}, fmt.Errorf("%w: %d", ErrInvalidTimeInForce, order.TimeInForce)
	}
	if engine.registry.Contains(order.ID) {
		return Execution{}, fmt.Errorf("%w: %s", ErrDuplicateOrder, order.ID)
	}

	engine.sequence++
	order.Sequence = engine.sequence
	order.TotalQuantity = order.Quantity
	order.Timestamp = engine.now()

	exec := Execution{
		Trades:    engine.match(&order),
		Discarded: decimal.Zero,
	}
	if !order.Quantity.IsPositive() {
		return exec, nil
	}

	switch order.TimeInForce {
	case common.IOC:
		exec.Discarded = order.Quantity
		log.Debug().
			Str("id", order.ID).
			Str("discarded", order.Quantity.String()).
			Msg("ioc remainder discarded")
	case common.GFD:
		engine.rest(&order)
		exec.Rested = true
	}
	return exec, nil
}

// match consumes the opposite side while it crosses the incoming order. This
// is the incoming order sweeping across price levels as far as its quantity and
// limit price allow, best price first and oldest order first within a price.
func (engine *Engine) match(order *common.Order) []common.Trade {
	opposite := engine.book(order.Side.Opposite())

	var trades []common.Trade
	for order.Quantity.IsPositive() {
		level, ok := opposite.best()
		if !ok || !crosses(order, level.Price()) {
			break
		}

		resting, ok := level.front()
		if !ok {
			panic(fmt.Sprintf("engine: empty %v price level %d left in book", opposite.side, level.priceLevel))
		}

		matchQty := decimal.Min(order.Quantity, resting.Quantity)
		order.Quantity = order.Quantity.Sub(matchQty)
		level.fill(resting, matchQty)
		trades = append(trades, engine.trade(resting, order, matchQty))

		if !resting.Quantity.IsPositive() {
			opposite.RemoveHead(level.Price())
			engine.registry.remove(resting.ID)
		}
	}
	return trades
}

// crosses reports whether an incoming order may trade at the given opposite
// price. An order priced exactly at the opposite best crosses.
func crosses(order *common.Order, opposite uint64) bool {
	if order.Side == common.Buy {
		return opposite <= order.Price
	}
	return opposite >= order.Price
}

// trade books a fill. The execution price is the resting order's price.
func (engine *Engine) trade(resting, incoming *common.Order, quantity decimal.Decimal) common.Trade {
	engine.tradeSequence++
	return common.Trade{
		RestingID:     resting.ID,
		RestingPrice:  resting.Price,
		IncomingID:    incoming.ID,
		IncomingPrice: incoming.Price,
		IncomingSide:  incoming.Side,
		Quantity:      quantity,
		Sequence:      engine.tradeSequence,
		Timestamp:     engine.now(),
	}
}

func (engine *Engine) rest(order *common.Order) {
	elem := engine.book(order.Side).Insert(order)
	engine.registry.add(order.ID, location{
		side:    order.Side,
		price:   order.Price,
		element: elem,
	})

	log.Debug().
		Str("id", order.ID).
		Str("side", order.Side.String()).
		Uint64("price", order.Price).
		Str("quantity", order.Quantity.String()).
		Msg("order resting")
}

func (engine *Engine) cancel(id string) (common.Order, bool) {
	loc, ok := engine.registry.lookup(id)
	if !ok {
		return common.Order{}, false
	}

	order := engine.book(loc.side).Remove(loc.price, loc.element)
	engine.registry.remove(id)

	log.Debug().Str("id", id).Msg("order cancelled")
	return *order, true
}
