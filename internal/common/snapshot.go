package common

import "github.com/shopspring/decimal"

// Level is the aggregate resting quantity at one price.
type Level struct {
	Price    uint64
	Quantity decimal.Decimal
}

// Snapshot is a point-in-time view of both sides of the book. Both sides are
// ordered by price descending.
type Snapshot struct {
	Sell []Level
	Buy  []Level
}
