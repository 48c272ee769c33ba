package engine

import (
	"container/list"

	"outcry/internal/common"

	"github.com/shopspring/decimal"
)

// PriceLevel holds every order resting at one price, oldest first.
type PriceLevel struct {
	priceLevel uint64
	orders     *list.List // *common.Order, sorted by arrival
	volume     decimal.Decimal
}

func newPriceLevel(price uint64) *PriceLevel {
	return &PriceLevel{
		priceLevel: price,
		orders:     list.New(),
		volume:     decimal.Zero,
	}
}

func (level *PriceLevel) Price() uint64 { return level.priceLevel }

// Volume is the sum of the remaining quantity of every order at the level.
func (level *PriceLevel) Volume() decimal.Decimal { return level.volume }

func (level *PriceLevel) Len() int { return level.orders.Len() }

// push appends an order at the back of the queue, behind every order that
// arrived before it.
func (level *PriceLevel) push(order *common.Order) *list.Element {
	level.volume = level.volume.Add(order.Quantity)
	return level.orders.PushBack(order)
}

// front returns the order with the highest time priority.
func (level *PriceLevel) front() (*common.Order, bool) {
	elem := level.orders.Front()
	if elem == nil {
		return nil, false
	}
	return elem.Value.(*common.Order), true
}

func (level *PriceLevel) remove(elem *list.Element) *common.Order {
	order, ok := level.orders.Remove(elem).(*common.Order)
	if !ok || order.Price != level.priceLevel {
		panic("engine: queue element does not belong to price level")
	}
	level.volume = level.volume.Sub(order.Quantity)
	return order
}

// fill takes quantity off a resting order and keeps the level volume in step.
func (level *PriceLevel) fill(order *common.Order, quantity decimal.Decimal) {
	order.Quantity = order.Quantity.Sub(quantity)
	level.volume = level.volume.Sub(quantity)
}

// FlatPriceLevel is a copy of a price level, used for inspecting book depth.
type FlatPriceLevel struct {
	PriceLevel uint64
	Orders     []common.Order
}

func (level *PriceLevel) flatten() FlatPriceLevel {
	orders := make([]common.Order, 0, level.orders.Len())
	for elem := level.orders.Front(); elem != nil; elem = elem.Next() {
		orders = append(orders, *elem.Value.(*common.Order))
	}
	return FlatPriceLevel{
		PriceLevel: level.priceLevel,
		Orders:     orders,
	}
}
