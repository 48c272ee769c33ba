package engine

import (
	"container/list"
	"fmt"

	"outcry/internal/common"

	"github.com/tidwall/btree"
)

type PriceLevels = btree.BTreeG[*PriceLevel]

// BookSide is one side of the order book. Price levels are kept in a btree
// ordered so that the best price is always the minimum item: bids sort
// greatest first, asks sort least first.
type BookSide struct {
	side   common.Side
	levels *PriceLevels
}

func NewBookSide(side common.Side) *BookSide {
	// Asks: sorted least first.
	less := func(a, b *PriceLevel) bool {
		return a.priceLevel < b.priceLevel
	}
	if side == common.Buy {
		// Bids: sorted greatest first.
		less = func(a, b *PriceLevel) bool {
			return a.priceLevel > b.priceLevel
		}
	}
	return &BookSide{
		side:   side,
		levels: btree.NewBTreeG(less),
	}
}

func (book *BookSide) Side() common.Side { return book.side }

// Depth returns the number of price levels.
func (book *BookSide) Depth() int { return book.levels.Len() }

// BestPrice returns the highest bid or lowest ask.
func (book *BookSide) BestPrice() (uint64, bool) {
	level, ok := book.levels.Min()
	if !ok {
		return 0, false
	}
	return level.priceLevel, true
}

func (book *BookSide) best() (*PriceLevel, bool) {
	return book.levels.Min()
}

// Levels comparator only accounts for prices, so a dummy price level is
// enough for the search.
func (book *BookSide) level(price uint64) (*PriceLevel, bool) {
	return book.levels.Get(&PriceLevel{priceLevel: price})
}

// Insert appends the order to the tail of its price level, creating the level
// if it does not exist yet. The returned element locates the order for a later
// Remove.
func (book *BookSide) Insert(order *common.Order) *list.Element {
	level, ok := book.level(order.Price)
	if !ok {
		level = newPriceLevel(order.Price)
		book.levels.Set(level)
	}
	return level.push(order)
}

// RemoveHead pops the oldest order at price. The level is dropped once empty.
func (book *BookSide) RemoveHead(price uint64) (*common.Order, bool) {
	level, ok := book.level(price)
	if !ok {
		return nil, false
	}
	elem := level.orders.Front()
	if elem == nil {
		panic(fmt.Sprintf("engine: empty %v price level %d left in book", book.side, price))
	}
	order := level.remove(elem)
	book.dropIfEmpty(level)
	return order, true
}

// Remove takes a specific order out of the interior of its level. The rest of
// the queue keeps its order. A location that no longer resolves to a level is
// a broken invariant and panics.
func (book *BookSide) Remove(price uint64, elem *list.Element) *common.Order {
	level, ok := book.level(price)
	if !ok {
		panic(fmt.Sprintf("engine: no %v price level at %d", book.side, price))
	}
	order := level.remove(elem)
	book.dropIfEmpty(level)
	return order
}

func (book *BookSide) dropIfEmpty(level *PriceLevel) {
	if level.Len() == 0 {
		book.levels.Delete(level)
	}
}

// Levels returns the aggregate quantity per price, best price first. Levels
// with no quantity are skipped.
func (book *BookSide) Levels() []common.Level {
	levels := make([]common.Level, 0, book.levels.Len())
	book.levels.Scan(func(level *PriceLevel) bool {
		if level.Volume().IsPositive() {
			levels = append(levels, common.Level{
				Price:    level.Price(),
				Quantity: level.Volume(),
			})
		}
		return true
	})
	return levels
}

// Flatten copies every level and its orders, best price first.
func (book *BookSide) Flatten() []FlatPriceLevel {
	flat := make([]FlatPriceLevel, 0, book.levels.Len())
	book.levels.Scan(func(level *PriceLevel) bool {
		flat = append(flat, level.flatten())
		return true
	})
	return flat
}
