// Package command turns lines of the text order protocol into typed intents.
package command

import (
	"outcry/internal/common"

	"github.com/shopspring/decimal"
)

type Kind int

const (
	KindNewOrder Kind = iota
	KindCancel
	KindModify
	KindPrint
)

func (k Kind) String() string {
	switch k {
	case KindNewOrder:
		return "new"
	case KindCancel:
		return "cancel"
	case KindModify:
		return "modify"
	case KindPrint:
		return "print"
	}
	return "unknown"
}

// Intent is one validated operation. The set of implementations is closed:
// NewOrder, Cancel, Modify and Print.
type Intent interface {
	Kind() Kind
}

// NewOrder is a BUY or SELL line.
type NewOrder struct {
	Side        common.Side
	TimeInForce common.TimeInForce
	Price       uint64
	Quantity    decimal.Decimal
	ID          string
}

func (NewOrder) Kind() Kind { return KindNewOrder }

// Order converts the intent into an order for the engine.
func (o NewOrder) Order() common.Order {
	return common.Order{
		ID:          o.ID,
		Side:        o.Side,
		Price:       o.Price,
		Quantity:    o.Quantity,
		TimeInForce: o.TimeInForce,
	}
}

type Cancel struct {
	ID string
}

func (Cancel) Kind() Kind { return KindCancel }

// Modify replaces a resting order with a new GFD order under the same id.
type Modify struct {
	ID       string
	Side     common.Side
	Price    uint64
	Quantity decimal.Decimal
}

func (Modify) Kind() Kind { return KindModify }

type Print struct{}

func (Print) Kind() Kind { return KindPrint }
