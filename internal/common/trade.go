package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade accounts for a single fill between a resting order and the incoming
// order that crossed it.
type Trade struct {
	RestingID     string
	RestingPrice  uint64
	IncomingID    string
	IncomingPrice uint64
	IncomingSide  Side
	Quantity      decimal.Decimal
	Sequence      uint64
	Timestamp     time.Time
}

// Price is the execution price. Fills always happen at the resting order's
// price.
func (t Trade) Price() uint64 {
	return t.RestingPrice
}

// String renders the trade in the wire format:
// TRADE <restingId> <restingPrice> <qty> <incomingId> <incomingPrice> <qty>
func (t Trade) String() string {
	return fmt.Sprintf(
		"TRADE %s %d %s %s %d %s",
		t.RestingID,
		t.RestingPrice,
		t.Quantity,
		t.IncomingID,
		t.IncomingPrice,
		t.Quantity,
	)
}
