package matcher

import (
	"fmt"
	"strings"
	"testing"

	"github.com/luno/jettison/jtest"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestBasic(t *testing.T) {
	orders := []Order{
		// Rests Ask:1000@100.2
		sell(1000, "100.2", "u1"),
		// Takes Ask:1000@100.2
		buy(1000, "100.2", "u2"),
		// Rests Bid:1000@99
		buy(1000, "99", "u1"),
		// Rests Bid:1000@101
		buy(1000, "101", "u1"),
		// Rests Ask:500@102, quantity differs from bids
		sell(500, "102", "u2"),
		// Takes Ask:500@102 at own price 103
		buy(500, "103", "u1"),
		// Takes highest Bid:1000@101 at own price 98
		sell(1000, "98", "u2"),
	}
	testMatch(t, orders)
}

func TestPick(t *testing.T) {
	tests := []struct {
		Name    string
		Resting []Order
		Order   Order
		Expect  int64 // Sequence of expected resting leg, 0 if none.
	}{
		{
			Name:   "empty book",
			Order:  buy(10, "10", "u1"),
			Expect: 0,
		},
		{
			Name:    "single candidate",
			Resting: []Order{sell(10, "10", "u1")},
			Order:   buy(10, "10", "u2"),
			Expect:  1,
		},
		{
			Name:    "same price earliest wins",
			Resting: []Order{sell(10, "10", "u1"), sell(10, "10", "u2"), sell(10, "10", "u3")},
			Order:   buy(10, "10", "u4"),
			Expect:  1,
		},
		{
			Name:    "same price below incoming earliest wins",
			Resting: []Order{sell(10, "9", "u1"), sell(10, "9", "u2")},
			Order:   buy(10, "10", "u4"),
			Expect:  1,
		},
		{
			Name:    "incoming sell takes highest bid",
			Resting: []Order{buy(10, "10", "u1"), buy(10, "12", "u2"), buy(10, "11", "u3")},
			Order:   sell(10, "9", "u4"),
			Expect:  2,
		},
		{
			Name:    "incoming buy takes lowest ask",
			Resting: []Order{sell(10, "10", "u1"), sell(10, "8", "u2"), sell(10, "9", "u3")},
			Order:   buy(10, "12", "u4"),
			Expect:  2,
		},
		{
			Name:    "best price tie earliest wins",
			Resting: []Order{buy(10, "10", "u1"), buy(10, "12", "u2"), buy(10, "12", "u3")},
			Order:   sell(10, "9", "u4"),
			Expect:  2,
		},
		{
			Name:    "non crossing candidates ignored",
			Resting: []Order{sell(10, "13", "u1"), sell(10, "11", "u2")},
			Order:   buy(10, "12", "u4"),
			Expect:  2,
		},
		{
			Name:    "quantity mismatch rests",
			Resting: []Order{sell(5, "10", "u1"), sell(20, "10", "u2")},
			Order:   buy(10, "12", "u4"),
			Expect:  0,
		},
		{
			Name:    "no cross rests",
			Resting: []Order{buy(10, "10", "u1")},
			Order:   sell(10, "10.0001", "u2"),
			Expect:  0,
		},
		{
			Name:    "same direction never matches",
			Resting: []Order{buy(10, "10", "u1")},
			Order:   buy(10, "10", "u2"),
			Expect:  0,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			m := NewMarket("VOD.L")
			var seq int64
			for _, o := range test.Resting {
				seq++
				o.Sequence = seq
				_, ok, err := m.Match(o)
				jtest.Require(t, nil, err)
				require.False(t, ok)
			}

			seq++
			in := test.Order
			in.Sequence = seq
			before := m.Book.Len()

			tr, ok, err := m.Match(in)
			jtest.Require(t, nil, err)
			if test.Expect == 0 {
				require.False(t, ok)
				require.Equal(t, before+1, m.Book.Len())
				require.Equal(t, 0, m.Ledger.Len())
				return
			}

			require.True(t, ok)
			require.Equal(t, test.Expect, tr.Resting.Sequence)
			require.Equal(t, in, tr.Incoming)
			require.Equal(t, in.Price, tr.Price)
			require.Equal(t, before-1, m.Book.Len())
			require.Equal(t, []Trade{tr}, m.Ledger.Snapshot())

			for _, o := range m.Book.Snapshot() {
				require.NotEqual(t, test.Expect, o.Sequence)
				require.NotEqual(t, in.Sequence, o.Sequence)
			}
		})
	}
}

func TestIsMatch(t *testing.T) {
	tests := []struct {
		Name     string
		Resting  Order
		Incoming Order
		Expect   bool
	}{
		{
			Name:     "resting sell below buy",
			Resting:  sell(1, "9", "u1"),
			Incoming: buy(1, "10", "u2"),
			Expect:   true,
		},
		{
			Name:     "incoming sell below bid",
			Resting:  buy(1, "10", "u1"),
			Incoming: sell(1, "9", "u2"),
			Expect:   true,
		},
		{
			Name:     "equal prices cross",
			Resting:  buy(1, "10", "u1"),
			Incoming: sell(1, "10", "u2"),
			Expect:   true,
		},
		{
			Name:     "resting sell above buy",
			Resting:  sell(1, "10.0001", "u1"),
			Incoming: buy(1, "10", "u2"),
			Expect:   false,
		},
		{
			Name:     "different symbol",
			Resting:  sell(1, "9", "u1"),
			Incoming: withSymbol(buy(1, "10", "u2"), "BT.L"),
			Expect:   false,
		},
		{
			Name:     "different quantity",
			Resting:  sell(2, "9", "u1"),
			Incoming: buy(1, "10", "u2"),
			Expect:   false,
		},
		{
			Name:     "self match allowed",
			Resting:  sell(1, "9", "u1"),
			Incoming: buy(1, "10", "u1"),
			Expect:   true,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			require.Equal(t, test.Expect, isMatch(test.Resting, test.Incoming))
		})
	}
}

func TestMatchInvalid(t *testing.T) {
	tests := []struct {
		Name  string
		Order Order
	}{
		{
			Name:  "unknown direction",
			Order: order(DirectionUnknown, 10, "10", "u3"),
		},
		{
			Name:  "out of range direction",
			Order: order(Direction(7), 10, "10", "u3"),
		},
		{
			Name:  "other symbol",
			Order: withSymbol(sell(10, "10", "u3"), "BT.L"),
		},
		{
			Name:  "missing user",
			Order: sell(10, "10", ""),
		},
		{
			Name:  "zero quantity",
			Order: sell(0, "10", "u3"),
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			m := NewMarket("VOD.L")
			// Several crossing candidates on both sides.
			for i, o := range []Order{
				buy(10, "11", "u1"), buy(10, "12", "u2"),
				sell(10, "9", "u1"), sell(10, "8", "u2"),
			} {
				o.Sequence = int64(i + 1)
				m.Book.Insert(o)
			}
			before := m.Book.Snapshot()

			in := test.Order
			in.Sequence = 5
			_, ok, err := m.Match(in)
			jtest.Require(t, ErrInvalidArgument, err)
			require.False(t, ok)
			require.Equal(t, before, m.Book.Snapshot())
			require.Equal(t, 0, m.Ledger.Len())
		})
	}
}

func TestBookRemove(t *testing.T) {
	var b OrderBook
	for i, o := range []Order{buy(1, "1", "u1"), sell(1, "2", "u1"), buy(1, "3", "u1")} {
		o.Sequence = int64(i + 1)
		b.Insert(o)
	}

	require.Equal(t, 3, b.Len())
	require.Equal(t, []int64{1, 2, 3}, seqs(b.Snapshot()))
	require.Equal(t, []int64{1, 3}, seqs(b.Side(DirectionBuy)))
	require.Empty(t, b.Side(DirectionUnknown))

	require.True(t, b.Remove(Order{Direction: DirectionBuy, Sequence: 1}))
	require.False(t, b.Remove(Order{Direction: DirectionBuy, Sequence: 1}))
	require.False(t, b.Remove(Order{Direction: DirectionSell, Sequence: 3}))
	require.Equal(t, []int64{2, 3}, seqs(b.Snapshot()))
}

func testMatch(t *testing.T, orders []Order) {
	m := NewMarket("VOD.L")

	var steps []string
	for i, o := range orders {
		o.Sequence = int64(i + 1)

		result := "rested"
		tr, ok, err := m.Match(o)
		jtest.Require(t, nil, err)
		if ok {
			result = fmt.Sprintf("executed against %d at %s", tr.Resting.Sequence, tr.Price)
		}

		steps = append(steps, fmt.Sprintf("%d %s: %s\n%s", o.Sequence, o, result, printBook(&m.Book)))
	}

	goldie.New(t).Assert(t, t.Name(), []byte(strings.Join(steps, "\n")))
}

func printBook(book *OrderBook) string {
	var sb strings.Builder
	sb.WriteString("asks: " + printSide(book.Side(DirectionSell)) + "\n")
	sb.WriteString("bids: " + printSide(book.Side(DirectionBuy)) + "\n")
	return sb.String()
}

func printSide(side []Order) string {
	if len(side) == 0 {
		return "empty"
	}

	var res []string
	for _, o := range side {
		res = append(res, fmt.Sprintf("%d:%d@%s", o.Sequence, o.Quantity, o.Price))
	}
	return strings.Join(res, ", ")
}

func seqs(ol []Order) []int64 {
	var res []int64
	for _, o := range ol {
		res = append(res, o.Sequence)
	}
	return res
}

func buy(qty int64, price string, user User) Order {
	return order(DirectionBuy, qty, price, user)
}

func sell(qty int64, price string, user User) Order {
	return order(DirectionSell, qty, price, user)
}

func withSymbol(o Order, sym Symbol) Order {
	o.Symbol = sym
	return o
}

func order(d Direction, qty int64, price string, user User) Order {
	p, err := PriceFromString(price)
	if err != nil {
		panic(err)
	}

	return Order{
		Direction: d,
		Symbol:    "VOD.L",
		Quantity:  qty,
		Price:     p,
		User:      user,
	}
}
