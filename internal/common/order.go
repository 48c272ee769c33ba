package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string          // Externally assigned, unique among live orders
	Side          Side            // Order side
	Price         uint64          // Limit price in the smallest currency unit
	Quantity      decimal.Decimal // Remaining quantity
	TotalQuantity decimal.Decimal // Total volume requested
	TimeInForce   TimeInForce     // IOC or GFD
	Sequence      uint64          // Arrival sequence, FIFO tie-break within a price
	Timestamp     time.Time       // Time of arrival of order into the engine
}

func (order Order) String() string {
	return fmt.Sprintf(
		`ID:            %s
Side:          %v
Price:         %d
Quantity:      %s (Total: %s)
TimeInForce:   %v
Sequence:      %d
Timestamp:     %v`,
		order.ID,
		order.Side,
		order.Price,
		order.Quantity,
		order.TotalQuantity,
		order.TimeInForce,
		order.Sequence,
		order.Timestamp.Format(time.RFC3339), // Formatted for readability
	)
}
