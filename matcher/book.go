package matcher

import (
	"sort"

	"github.com/gammazero/deque"
)

// OrderBook holds the resting orders of a market. Each side is kept in
// insertion order.
type OrderBook struct {
	bids deque.Deque[Order]
	asks deque.Deque[Order]
}

func (b *OrderBook) side(d Direction) *deque.Deque[Order] {
	if d == DirectionBuy {
		return &b.bids
	}
	return &b.asks
}

// Insert appends the order to the back of its side.
func (b *OrderBook) Insert(o Order) {
	b.side(o.Direction).PushBack(o)
}

// Remove removes the resting order with the same sequence as o and
// returns false if it was not found.
func (b *OrderBook) Remove(o Order) bool {
	side := b.side(o.Direction)
	idx := side.Index(func(x Order) bool {
		return x.Sequence == o.Sequence
	})
	if idx < 0 {
		return false
	}

	side.Remove(idx)
	return true
}

// Side returns a copy of the resting orders in direction d in
// insertion order.
func (b *OrderBook) Side(d Direction) []Order {
	if !d.Valid() {
		return nil
	}

	side := b.side(d)
	res := make([]Order, 0, side.Len())
	for i := 0; i < side.Len(); i++ {
		res = append(res, side.At(i))
	}
	return res
}

// Snapshot returns a copy of all resting orders in insertion order.
func (b *OrderBook) Snapshot() []Order {
	res := append(b.Side(DirectionBuy), b.Side(DirectionSell)...)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Sequence < res[j].Sequence
	})
	return res
}

func (b *OrderBook) Len() int {
	return b.bids.Len() + b.asks.Len()
}

// TradeLedger is the append-only list of executed trades of a market.
type TradeLedger struct {
	trades []Trade
}

func (l *TradeLedger) Append(t Trade) {
	l.trades = append(l.trades, t)
}

// Snapshot returns a copy of the trades in execution order.
func (l *TradeLedger) Snapshot() []Trade {
	return append([]Trade(nil), l.trades...)
}

func (l *TradeLedger) Len() int {
	return len(l.trades)
}
