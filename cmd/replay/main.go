// Command replay feeds a yaml scenario of orders through the matching
// engine and prints the resulting open interest, average execution
// price and net executed quantities per symbol.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/corverroos/ordermatch"
	"github.com/corverroos/ordermatch/config"
	"github.com/corverroos/ordermatch/matcher"
)

var (
	configPath = flag.String("config", "", "scenario yaml, defaults to $CONFIG_FILE")
	logLevel   = flag.String("log_level", "", "log level, overrides log_level in the config")
)

func main() {
	flag.Parse()

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Log at info until the config sets the level.
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if *logLevel != "" {
		if err := lvl.UnmarshalText([]byte(*logLevel)); err != nil {
			return err
		}
	}

	logger, err := newLogger(lvl)
	if err != nil {
		return err
	}
	defer logger.Sync()

	c, err := config.Load(logger, *configPath)
	if err != nil {
		return err
	}

	if *logLevel == "" {
		if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	if c.MetricsAddr != "" {
		go serveMetrics(logger, reg, c.MetricsAddr)
	}

	orders, err := c.ScenarioOrders()
	if err != nil {
		return err
	}

	e := ordermatch.New(
		ordermatch.WithLogger(logger),
		ordermatch.WithMetrics(ordermatch.NewMetrics(reg)),
	)

	rl, err := ordermatch.RunOrders(ctx, e, orders)
	if err != nil {
		return err
	}

	for _, r := range rl {
		fields := []zap.Field{
			zap.Int64("seq", r.Command.Sequence),
			zap.Stringer("type", r.Type),
			zap.Stringer("order", r.Command.Order),
		}
		if r.Trade != nil {
			fields = append(fields,
				zap.Stringer("resting", r.Trade.Resting),
				zap.Stringer("price", r.Trade.Price))
		}
		logger.Info("result", fields...)
	}

	return report(e, orders)
}

func newLogger(lvl zap.AtomicLevel) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func serveMetrics(logger *zap.Logger, reg *prometheus.Registry, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	logger.Info("serving metrics", zap.String("addr", addr))
	err := http.ListenAndServe(addr, mux)
	logger.Error("metrics server stopped", zap.Error(err))
}

func report(e *ordermatch.Engine, orders []matcher.Order) error {
	users := make(map[matcher.Symbol]map[matcher.User]bool)
	for _, o := range orders {
		if o.Symbol == "" || o.User == "" {
			continue
		}
		if users[o.Symbol] == nil {
			users[o.Symbol] = make(map[matcher.User]bool)
		}
		users[o.Symbol][o.User] = true
	}

	for _, sym := range e.Symbols() {
		fmt.Printf("%s\n", sym)

		for _, dir := range []matcher.Direction{matcher.DirectionBuy, matcher.DirectionSell} {
			oi, err := e.OpenInterest(sym, dir)
			if err != nil {
				return err
			}
			fmt.Printf("  open %s: %s\n", strings.ToLower(dir.String()), printInterest(oi))
		}

		avg, err := e.AverageExecutionPrice(sym)
		if err != nil {
			return err
		}
		fmt.Printf("  average price: %s\n", avg)

		var ul []matcher.User
		for u := range users[sym] {
			ul = append(ul, u)
		}
		sort.Slice(ul, func(i, j int) bool { return ul[i] < ul[j] })

		for _, u := range ul {
			net, err := e.NetExecutedQuantity(sym, u)
			if err != nil {
				return err
			}
			fmt.Printf("  net %s: %d\n", u, net)
		}
	}

	return nil
}

func printInterest(oi map[matcher.Price]int64) string {
	if len(oi) == 0 {
		return "none"
	}

	var pl []matcher.Price
	for p := range oi {
		pl = append(pl, p)
	}
	sort.Slice(pl, func(i, j int) bool { return pl[i] < pl[j] })

	var res []string
	for _, p := range pl {
		res = append(res, fmt.Sprintf("%s=%d", p, oi[p]))
	}
	return strings.Join(res, ", ")
}
