package matcher

import (
	"fmt"
	"strings"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

// ErrInvalidArgument is returned when a required value is absent or malformed.
var ErrInvalidArgument = errors.New("invalid argument", j.C("ERR_8c1f2a6d93b04e57"))

// Symbol identifies an instrument, eg. a ticker.
type Symbol string

// User identifies the owner of an order.
type User string

// Direction is the side of an order.
type Direction int

const (
	DirectionUnknown Direction = 0
	DirectionBuy     Direction = 1
	DirectionSell    Direction = 2
)

// Valid returns true for DirectionBuy and DirectionSell.
func (d Direction) Valid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// Opposite returns the direction an order in d trades against.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionBuy:
		return DirectionSell
	case DirectionSell:
		return DirectionBuy
	default:
		return DirectionUnknown
	}
}

func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "Buy"
	case DirectionSell:
		return "Sell"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses "buy" or "sell", ignoring case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return DirectionBuy, nil
	case "sell":
		return DirectionSell, nil
	default:
		return DirectionUnknown, errors.Wrap(ErrInvalidArgument, "unknown direction",
			j.KV("direction", s))
	}
}

// Order is a request to buy or sell Quantity of Symbol at Price.
type Order struct {
	Direction Direction
	Symbol    Symbol
	Quantity  int64
	Price     Price
	User      User

	// Sequence is assigned when the order is submitted and is the
	// only FIFO tie-break key.
	Sequence int64
}

// Validate returns ErrInvalidArgument if a required field is missing.
func (o Order) Validate() error {
	if !o.Direction.Valid() {
		return errors.Wrap(ErrInvalidArgument, "missing direction")
	} else if o.Symbol == "" {
		return errors.Wrap(ErrInvalidArgument, "missing symbol")
	} else if o.User == "" {
		return errors.Wrap(ErrInvalidArgument, "missing user")
	} else if o.Quantity <= 0 {
		return errors.Wrap(ErrInvalidArgument, "non-positive quantity",
			j.KV("quantity", o.Quantity))
	}
	return nil
}

func (o Order) String() string {
	return fmt.Sprintf("%s %d@%s (%s)", o.Direction, o.Quantity, o.Price, o.User)
}

// Trade is an executed match between a resting and an incoming order.
type Trade struct {
	Resting  Order
	Incoming Order

	// Price is always the incoming order's price.
	Price Price
}

// Quantity returns the executed quantity; both legs are equal.
func (t Trade) Quantity() int64 {
	return t.Resting.Quantity
}

func (t Trade) Symbol() Symbol {
	return t.Resting.Symbol
}

// Legs returns the resting and incoming orders.
func (t Trade) Legs() [2]Order {
	return [2]Order{t.Resting, t.Incoming}
}
