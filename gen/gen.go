// Package gen provides functionality for generating orders easily.
package gen

import (
	"math"
	"math/rand"

	"github.com/corverroos/ordermatch/matcher"
)

// Request defines an order generation request.
type Request struct {
	Rand      *rand.Rand        // Rand for deterministic behaviour
	Count     int               // Number of orders to create
	Symbol    matcher.Symbol    // Symbol of all orders
	Users     []matcher.User    // Users to pick from
	Direction matcher.Direction // Buys or sells, unknown for both

	// Quantities to pick from. Few distinct values make exact
	// quantity matches likely.
	Quantities []int64

	Price       float64 // Price to aim at
	PriceStdDev float64 // Standard deviation price fuzz (1% of price is good start)
}

// GenOrders returns req.Count deterministic orders.
func GenOrders(req Request) []matcher.Order {
	ch := make(chan matcher.Order, 1000)
	go genOrders(req, ch)

	var res []matcher.Order
	for o := range ch {
		res = append(res, o)
	}
	return res
}

func genOrders(req Request, ch chan<- matcher.Order) {
	defer close(ch)

	for i := 0; i < req.Count; i++ {
		dir := req.Direction
		if !dir.Valid() {
			dir = matcher.DirectionBuy
			if req.Rand.Float64() < 0.5 {
				dir = matcher.DirectionSell
			}
		}

		ch <- matcher.Order{
			Direction: dir,
			Symbol:    req.Symbol,
			Quantity:  req.Quantities[req.Rand.Intn(len(req.Quantities))],
			Price:     fuzz(req.Rand, req.Price, req.PriceStdDev),
			User:      req.Users[req.Rand.Intn(len(req.Users))],
		}
	}
}

// fuzz returns a normally distributed positive price.
func fuzz(r *rand.Rand, mean, stdDev float64) matcher.Price {
	res := r.NormFloat64()*stdDev + mean
	p := matcher.PriceFromFloat(math.Abs(res))
	if p <= 0 {
		return 1
	}
	return p
}
