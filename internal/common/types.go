package common

import (
	"fmt"
	"strings"
)

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// Opposite returns the side an order on s matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// ParseSide accepts "BUY" or "SELL" in any case.
func ParseSide(token string) (Side, bool) {
	switch strings.ToUpper(token) {
	case "BUY":
		return Buy, true
	case "SELL":
		return Sell, true
	}
	return 0, false
}

type TimeInForce int

const (
	// Good-for-day orders rest on the book if they are not fully matched
	// on arrival.
	GFD TimeInForce = iota
	// Immediate-or-cancel orders match what they can on arrival. Any
	// remainder is discarded and never rests.
	IOC
)

func (tif TimeInForce) String() string {
	switch tif {
	case GFD:
		return "GFD"
	case IOC:
		return "IOC"
	}
	return fmt.Sprintf("TimeInForce(%d)", int(tif))
}

// ParseTimeInForce accepts "GFD" or "IOC" in any case.
func ParseTimeInForce(token string) (TimeInForce, bool) {
	switch strings.ToUpper(token) {
	case "GFD":
		return GFD, true
	case "IOC":
		return IOC, true
	}
	return 0, false
}
