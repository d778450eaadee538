package matcher

import (
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

// Market is the order book and trade ledger of a single symbol.
// It is not safe for concurrent use.
type Market struct {
	Symbol Symbol
	Book   OrderBook
	Ledger TradeLedger
}

func NewMarket(sym Symbol) *Market {
	return &Market{Symbol: sym}
}

// Match executes the incoming order against the best resting candidate
// or rests it in the book. It returns the trade and true on execution.
// Invalid orders and orders for another symbol return ErrInvalidArgument
// and leave the market unchanged. The order must carry a sequence higher
// than any order already in the book.
func (m *Market) Match(o Order) (Trade, bool, error) {
	if err := o.Validate(); err != nil {
		return Trade{}, false, err
	} else if o.Symbol != m.Symbol {
		return Trade{}, false, errors.Wrap(ErrInvalidArgument, "symbol mismatch",
			j.MKV{"market": m.Symbol, "order": o.Symbol})
	}

	t, ok := match(m, o)
	return t, ok, nil
}
