// Package reporting provides read-only aggregations over snapshots of
// resting orders and executed trades.
package reporting

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/corverroos/ordermatch/matcher"
)

var (
	maxQuantity = decimal.NewFromInt(math.MaxInt64)
	minQuantity = decimal.NewFromInt(math.MinInt64)
)

// OpenInterest returns the total resting quantity per price of the
// orders for the symbol and direction. The map is empty, not nil, if
// none match. Totals saturate at math.MaxInt64.
func OpenInterest(orders []matcher.Order, sym matcher.Symbol,
	dir matcher.Direction) map[matcher.Price]int64 {

	res := make(map[matcher.Price]int64)
	for _, o := range orders {
		if o.Symbol != sym || o.Direction != dir {
			continue
		}
		res[o.Price] = addQuantity(res[o.Price], o.Quantity)
	}
	return res
}

// AveragePrice returns the quantity weighted average execution price
// of the symbol's trades rounded half-down to four fractional digits.
// It returns zero if there are no trades.
func AveragePrice(trades []matcher.Trade, sym matcher.Symbol) matcher.Price {
	var total, amount decimal.Decimal
	for _, t := range trades {
		if t.Symbol() != sym {
			continue
		}
		qty := decimal.NewFromInt(t.Quantity())
		total = total.Add(qty)
		amount = amount.Add(t.Price.Decimal().Mul(qty))
	}

	if total.IsZero() {
		return 0
	}

	// The average lies between the smallest and largest traded price so
	// it always fits a Price.
	return matcher.Price(divHalfDown(amount.Shift(matcher.PriceScale), total))
}

// divHalfDown returns n/d rounded to an integer with ties toward zero.
func divHalfDown(n, d decimal.Decimal) int64 {
	q, r := n.QuoRem(d, 0)

	// Exact remainder avoids the precision limit of decimal division.
	if r.Abs().Mul(decimal.NewFromInt(2)).GreaterThan(d.Abs()) {
		if r.Sign()*d.Sign() < 0 {
			return q.IntPart() - 1
		}
		return q.IntPart() + 1
	}
	return q.IntPart()
}

// NetExecuted returns the user's signed executed quantity for the symbol.
// Every leg of every trade counts on its own; buys add and sells subtract.
// The result saturates at the int64 bounds.
func NetExecuted(trades []matcher.Trade, sym matcher.Symbol, user matcher.User) int64 {
	var net decimal.Decimal
	for _, t := range trades {
		if t.Symbol() != sym {
			continue
		}

		for _, leg := range t.Legs() {
			if leg.User != user {
				continue
			}
			switch leg.Direction {
			case matcher.DirectionBuy:
				net = net.Add(decimal.NewFromInt(leg.Quantity))
			case matcher.DirectionSell:
				net = net.Sub(decimal.NewFromInt(leg.Quantity))
			}
		}
	}
	return clamp(net)
}

func addQuantity(a, b int64) int64 {
	return clamp(decimal.NewFromInt(a).Add(decimal.NewFromInt(b)))
}

// clamp returns d as an int64, saturating at the bounds.
func clamp(d decimal.Decimal) int64 {
	if d.GreaterThan(maxQuantity) {
		return math.MaxInt64
	} else if d.LessThan(minQuantity) {
		return math.MinInt64
	}
	return d.IntPart()
}
