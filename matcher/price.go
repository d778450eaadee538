package matcher

import (
	"math"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/shopspring/decimal"
)

// PriceScale is the number of fractional digits of a Price.
const PriceScale = 4

// Price is a fixed point price in units of 0.0001. It is comparable
// by value so it can be used as a map key.
type Price int64

const (
	MaxPrice Price = math.MaxInt64
	MinPrice Price = math.MinInt64
)

var (
	maxPriceDecimal = MaxPrice.Decimal()
	minPriceDecimal = MinPrice.Decimal()
)

// NewPrice returns d rounded half-down to four fractional digits.
// Values outside [MinPrice, MaxPrice] are clamped to the bound.
func NewPrice(d decimal.Decimal) Price {
	r := RoundHalfDown(d, PriceScale)
	if r.GreaterThan(maxPriceDecimal) {
		return MaxPrice
	} else if r.LessThan(minPriceDecimal) {
		return MinPrice
	}
	return Price(r.Shift(PriceScale).IntPart())
}

// PriceFromString parses a decimal string, eg. "100.2". Prices that do
// not fit after rounding are invalid.
func PriceFromString(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidArgument, "invalid price", j.KV("price", s))
	}

	r := RoundHalfDown(d, PriceScale)
	if r.GreaterThan(maxPriceDecimal) || r.LessThan(minPriceDecimal) {
		return 0, errors.Wrap(ErrInvalidArgument, "price out of range", j.KV("price", s))
	}
	return NewPrice(d), nil
}

func PriceFromFloat(f float64) Price {
	return NewPrice(decimal.NewFromFloat(f))
}

func (p Price) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -PriceScale)
}

// String returns the price with exactly four fractional digits.
func (p Price) String() string {
	return p.Decimal().StringFixed(PriceScale)
}

// RoundHalfDown rounds d to places fractional digits. Ties round
// toward zero.
func RoundHalfDown(d decimal.Decimal, places int32) decimal.Decimal {
	t := d.Truncate(places)
	rem := d.Sub(t).Abs()
	if rem.LessThanOrEqual(decimal.New(5, -(places + 1))) {
		return t
	}

	step := decimal.New(1, -places)
	if d.Sign() < 0 {
		return t.Sub(step)
	}
	return t.Add(step)
}
