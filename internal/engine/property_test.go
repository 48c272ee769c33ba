package engine

import (
	"testing"

	"outcry/internal/common"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

var propertyIDs = []string{"o1", "o2", "o3", "o4", "o5", "o6", "o7", "o8"}

// ledger tracks where every submitted unit of quantity went.
type ledger struct {
	submitted decimal.Decimal
	traded    decimal.Decimal
	discarded decimal.Decimal
	cancelled decimal.Decimal
}

func (l *ledger) record(order common.Order, exec Execution) {
	l.submitted = l.submitted.Add(order.Quantity)
	l.traded = l.traded.Add(exec.Traded())
	l.discarded = l.discarded.Add(exec.Discarded)
}

func resting(snap common.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, level := range append(snap.Sell, snap.Buy...) {
		total = total.Add(level.Quantity)
	}
	return total
}

func drawOrder(t *rapid.T) common.Order {
	return common.Order{
		ID:          rapid.SampledFrom(propertyIDs).Draw(t, "id"),
		Side:        rapid.SampledFrom([]common.Side{common.Buy, common.Sell}).Draw(t, "side"),
		TimeInForce: rapid.SampledFrom([]common.TimeInForce{common.GFD, common.IOC}).Draw(t, "tif"),
		Price:       rapid.Uint64Range(95, 105).Draw(t, "price"),
		Quantity:    decimal.NewFromInt(rapid.Int64Range(1, 50).Draw(t, "qty")),
	}
}

func checkTrades(t *rapid.T, incoming common.Order, exec Execution) {
	for _, trade := range exec.Trades {
		if trade.Price() != trade.RestingPrice {
			t.Fatalf("trade %v not priced at the resting order", trade)
		}
		if incoming.Side == common.Buy && trade.RestingPrice > incoming.Price {
			t.Fatalf("buy at %d filled above its limit: %v", incoming.Price, trade)
		}
		if incoming.Side == common.Sell && trade.RestingPrice < incoming.Price {
			t.Fatalf("sell at %d filled below its limit: %v", incoming.Price, trade)
		}
	}
}

func checkBook(t *rapid.T, eng *Engine, l *ledger) {
	snap := eng.Snapshot()

	// Each trade removes its quantity from both the incoming and the resting order.
	accounted := resting(snap).
		Add(l.traded.Mul(decimal.NewFromInt(2))).
		Add(l.discarded).
		Add(l.cancelled)
	if !accounted.Equal(l.submitted) {
		t.Fatalf("quantity not conserved: submitted %s, accounted %s", l.submitted, accounted)
	}

	bid, hasBid := eng.BestBid()
	ask, hasAsk := eng.BestAsk()
	if hasBid && hasAsk && bid >= ask {
		t.Fatalf("book is crossed: best bid %d >= best ask %d", bid, ask)
	}

	orders := 0
	seen := make(map[string]bool)
	for _, side := range []common.Side{common.Buy, common.Sell} {
		for _, level := range eng.Depth(side) {
			for _, order := range level.Orders {
				if !order.Quantity.IsPositive() {
					t.Fatalf("order %s rests with quantity %s", order.ID, order.Quantity)
				}
				if order.TimeInForce == common.IOC {
					t.Fatalf("IOC order %s is resting", order.ID)
				}
				if seen[order.ID] {
					t.Fatalf("order %s rests in more than one place", order.ID)
				}
				seen[order.ID] = true
				orders++
			}
		}
	}
	if orders != eng.RestingOrders() {
		t.Fatalf("registry holds %d orders, book holds %d", eng.RestingOrders(), orders)
	}
}

func TestProperty_BookInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		eng := New()
		l := &ledger{
			submitted: decimal.Zero,
			traded:    decimal.Zero,
			discarded: decimal.Zero,
			cancelled: decimal.Zero,
		}

		steps := rapid.IntRange(1, 80).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 5).Draw(t, "op") {
			case 0:
				id := rapid.SampledFrom(propertyIDs).Draw(t, "cancel")
				if order, ok := eng.Cancel(id); ok {
					l.cancelled = l.cancelled.Add(order.Quantity)
				}
			case 1:
				order := drawOrder(t)
				before, live := eng.Lookup(order.ID)
				exec, found, err := eng.Modify(order.ID, order.Side, order.Price, order.Quantity)
				if err != nil {
					t.Fatalf("modify %s: %v", order.ID, err)
				}
				if found != live {
					t.Fatalf("modify found=%v for an order that live=%v", found, live)
				}
				if found {
					l.cancelled = l.cancelled.Add(before.Quantity)
					order.TimeInForce = common.GFD
					l.record(order, exec)
					checkTrades(t, order, exec)
				}
			default:
				order := drawOrder(t)
				exec, err := eng.Submit(order)
				if err != nil {
					// Only a live id may be refused.
					if _, live := eng.Lookup(order.ID); !live {
						t.Fatalf("submit %s refused: %v", order.ID, err)
					}
					continue
				}
				l.record(order, exec)
				checkTrades(t, order, exec)
			}
			checkBook(t, eng, l)
		}
	})
}

func TestProperty_TimePriority(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		eng := New()
		n := rapid.IntRange(1, len(propertyIDs)).Draw(t, "resting")
		total := int64(0)
		for i := 0; i < n; i++ {
			qty := rapid.Int64Range(1, 10).Draw(t, "qty")
			total += qty
			if _, err := eng.Submit(common.Order{
				ID:       propertyIDs[i],
				Side:     common.Sell,
				Price:    100,
				Quantity: decimal.NewFromInt(qty),
			}); err != nil {
				t.Fatalf("submit: %v", err)
			}
		}

		exec, err := eng.Submit(common.Order{
			ID:          "taker",
			Side:        common.Buy,
			Price:       rapid.Uint64Range(100, 110).Draw(t, "price"),
			Quantity:    decimal.NewFromInt(rapid.Int64Range(1, total).Draw(t, "take")),
			TimeInForce: common.IOC,
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		for i, trade := range exec.Trades {
			if trade.RestingID != propertyIDs[i] {
				t.Fatalf("fill %d went to %s, want %s", i, trade.RestingID, propertyIDs[i])
			}
		}
	})
}
