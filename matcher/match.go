package matcher

import (
	"fmt"
)

// match applies the incoming order to the market and returns
// the trade and true if it executed against a resting order.
func match(m *Market, o Order) (Trade, bool) {
	cl := candidates(&m.Book, o)
	if len(cl) == 0 {
		m.Book.Insert(o)
		return Trade{}, false
	}

	resting := pick(o.Direction, cl)

	t := Trade{
		Resting:  resting,
		Incoming: o,
		Price:    o.Price,
	}

	m.Ledger.Append(t)

	if !m.Book.Remove(resting) {
		panic(fmt.Sprintf("matched order not in book: %d", resting.Sequence))
	}

	return t, true
}

// candidates returns the resting orders that o can execute against
// in insertion order.
func candidates(book *OrderBook, o Order) []Order {
	// Buy orders match asks, sell orders match bids.
	side := book.side(o.Direction.Opposite())

	var res []Order
	for i := 0; i < side.Len(); i++ {
		r := side.At(i)
		if isMatch(r, o) {
			res = append(res, r)
		}
	}
	return res
}

// isMatch returns true if the resting and incoming orders are for the
// same symbol and quantity on opposite sides and their prices cross.
func isMatch(resting, incoming Order) bool {
	if resting.Symbol != incoming.Symbol {
		return false
	} else if resting.Direction == incoming.Direction {
		return false
	} else if resting.Quantity != incoming.Quantity {
		return false
	}

	// Either leg may be the sell.
	if resting.Direction == DirectionSell && resting.Price <= incoming.Price {
		return true
	}
	if incoming.Direction == DirectionSell && incoming.Price <= resting.Price {
		return true
	}
	return false
}

// pick returns the best priced candidate for an incoming order in
// direction d. Sells get the highest bid, buys get the lowest ask.
// Equal prices are won by the earliest candidate, so a set at a single
// price resolves to the first inserted order.
func pick(d Direction, cl []Order) Order {
	best := cl[0]
	for _, c := range cl[1:] {
		if isBetter(d, c.Price, best.Price) {
			best = c
		}
	}
	return best
}

// isBetter returns true if price is strictly better than current for
// an incoming order in direction d.
func isBetter(d Direction, price, current Price) bool {
	switch d {
	case DirectionSell:
		return price > current
	case DirectionBuy:
		return price < current
	default:
		panic(fmt.Sprintf("unknown direction: %d", d))
	}
}
