// Package ordermatch is an in-memory order matching engine. Orders for
// a symbol execute against a single resting order of equal quantity
// and crossing price, otherwise they rest in the symbol's book.
package ordermatch

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"go.uber.org/zap"

	"github.com/corverroos/ordermatch/matcher"
	"github.com/corverroos/ordermatch/reporting"
)

// ErrInvalidArgument is returned when a required argument is absent.
var ErrInvalidArgument = matcher.ErrInvalidArgument

// Engine matches orders and reports on books and trades. It is safe
// for concurrent use.
type Engine struct {
	log     *zap.Logger
	metrics *Metrics

	seq int64 // Used with atomic

	mu      sync.Mutex
	markets map[matcher.Symbol]*market
}

// market serialises access to a symbol's book and ledger. Submit holds
// the write lock for the whole match so a trade and the removal of its
// resting leg are observed together.
type market struct {
	mu sync.RWMutex
	m  *matcher.Market
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		log:     zap.NewNop(),
		metrics: NewMetrics(nil),
		markets: make(map[matcher.Symbol]*market),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit matches the order against the resting orders of its symbol.
// It returns the trade if the order executed or nil if it rested.
func (e *Engine) Submit(o *matcher.Order) (*matcher.Trade, error) {
	if o == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil order")
	}
	if err := o.Validate(); err != nil {
		e.metrics.reject(o.Symbol)
		return nil, err
	}

	mk := e.getOrCreate(o.Symbol)

	mk.mu.Lock()
	in := *o
	// Assigned under the market lock so sequences increase in book order.
	in.Sequence = atomic.AddInt64(&e.seq, 1)
	t, ok, err := mk.m.Match(in)
	resting := mk.m.Book.Len()
	mk.mu.Unlock()
	if err != nil {
		e.metrics.reject(in.Symbol)
		return nil, err
	}

	e.metrics.observe(in.Symbol, ok, resting)

	if !ok {
		e.log.Debug("order rested",
			zap.String("symbol", string(in.Symbol)),
			zap.Int64("seq", in.Sequence),
			zap.Stringer("order", in))
		return nil, nil
	}

	e.log.Debug("order executed",
		zap.String("symbol", string(in.Symbol)),
		zap.Int64("seq", in.Sequence),
		zap.Int64("resting_seq", t.Resting.Sequence),
		zap.Int64("quantity", t.Quantity()),
		zap.Stringer("price", t.Price))

	return &t, nil
}

// OpenInterest returns the resting quantity per price for the symbol
// and direction.
func (e *Engine) OpenInterest(sym matcher.Symbol,
	dir matcher.Direction) (map[matcher.Price]int64, error) {

	if sym == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "missing symbol")
	} else if !dir.Valid() {
		return nil, errors.Wrap(ErrInvalidArgument, "missing direction",
			j.KV("direction", int(dir)))
	}

	return reporting.OpenInterest(e.Book(sym), sym, dir), nil
}

// AverageExecutionPrice returns the quantity weighted average price of
// the symbol's trades or zero if there are none.
func (e *Engine) AverageExecutionPrice(sym matcher.Symbol) (matcher.Price, error) {
	if sym == "" {
		return 0, errors.Wrap(ErrInvalidArgument, "missing symbol")
	}

	return reporting.AveragePrice(e.Trades(sym), sym), nil
}

// NetExecutedQuantity returns the user's bought minus sold quantity
// over the symbol's trades.
func (e *Engine) NetExecutedQuantity(sym matcher.Symbol, user matcher.User) (int64, error) {
	if sym == "" {
		return 0, errors.Wrap(ErrInvalidArgument, "missing symbol")
	} else if user == "" {
		return 0, errors.Wrap(ErrInvalidArgument, "missing user")
	}

	return reporting.NetExecuted(e.Trades(sym), sym, user), nil
}

// Book returns a snapshot of the symbol's resting orders in sequence order.
func (e *Engine) Book(sym matcher.Symbol) []matcher.Order {
	mk, ok := e.lookup(sym)
	if !ok {
		return nil
	}

	mk.mu.RLock()
	defer mk.mu.RUnlock()
	return mk.m.Book.Snapshot()
}

// Trades returns a snapshot of the symbol's trades in execution order.
func (e *Engine) Trades(sym matcher.Symbol) []matcher.Trade {
	mk, ok := e.lookup(sym)
	if !ok {
		return nil
	}

	mk.mu.RLock()
	defer mk.mu.RUnlock()
	return mk.m.Ledger.Snapshot()
}

// Symbols returns the sorted symbols that have received orders.
func (e *Engine) Symbols() []matcher.Symbol {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := make([]matcher.Symbol, 0, len(e.markets))
	for sym := range e.markets {
		res = append(res, sym)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i] < res[j]
	})
	return res
}

func (e *Engine) lookup(sym matcher.Symbol) (*market, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mk, ok := e.markets[sym]
	return mk, ok
}

func (e *Engine) getOrCreate(sym matcher.Symbol) *market {
	e.mu.Lock()
	defer e.mu.Unlock()

	mk, ok := e.markets[sym]
	if !ok {
		mk = &market{m: matcher.NewMarket(sym)}
		e.markets[sym] = mk
	}
	return mk
}
