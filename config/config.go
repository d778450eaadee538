// Package config loads replay scenarios from yaml.
package config

import (
	"math/rand"
	"os"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/corverroos/ordermatch/gen"
	"github.com/corverroos/ordermatch/matcher"
)

type Config struct {
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`

	Orders   []Order   `yaml:"orders"`
	Generate *Generate `yaml:"generate"`
}

// Order is an order in a scenario. Price is a decimal string.
type Order struct {
	Direction string `yaml:"direction"`
	Symbol    string `yaml:"symbol"`
	Quantity  int64  `yaml:"quantity"`
	Price     string `yaml:"price"`
	User      string `yaml:"user"`
}

// Generate appends random orders to a scenario.
type Generate struct {
	Seed        int64    `yaml:"seed"`
	Count       int      `yaml:"count"`
	Symbol      string   `yaml:"symbol"`
	Users       []string `yaml:"users"`
	Quantities  []int64  `yaml:"quantities"`
	Price       float64  `yaml:"price"`
	PriceStdDev float64  `yaml:"price_std_dev"`
}

// Load reads the config from path or the CONFIG_FILE environment
// variable if path is empty.
func Load(logger *zap.Logger, path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}

	logger.Debug("load config", zap.String("path", path))

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config", j.KV("path", path))
	}

	return Parse(b)
}

// Parse expands environment variables in b and unmarshals it.
func Parse(b []byte) (*Config, error) {
	var c Config
	err := yaml.UnmarshalStrict([]byte(os.ExpandEnv(string(b))), &c)
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if _, err := c.ScenarioOrders(); err != nil {
		return nil, err
	}

	return &c, nil
}

// ScenarioOrders returns the listed orders followed by the generated ones.
func (c *Config) ScenarioOrders() ([]matcher.Order, error) {
	var res []matcher.Order
	for i, o := range c.Orders {
		mo, err := o.toOrder()
		if err != nil {
			return nil, errors.Wrap(err, "scenario order", j.KV("index", i))
		}
		res = append(res, mo)
	}

	if c.Generate == nil {
		return res, nil
	}

	req, err := c.Generate.toRequest()
	if err != nil {
		return nil, err
	}

	return append(res, gen.GenOrders(req)...), nil
}

func (o Order) toOrder() (matcher.Order, error) {
	dir, err := matcher.ParseDirection(o.Direction)
	if err != nil {
		return matcher.Order{}, err
	}

	p, err := matcher.PriceFromString(o.Price)
	if err != nil {
		return matcher.Order{}, err
	}

	return matcher.Order{
		Direction: dir,
		Symbol:    matcher.Symbol(o.Symbol),
		Quantity:  o.Quantity,
		Price:     p,
		User:      matcher.User(o.User),
	}, nil
}

func (g Generate) toRequest() (gen.Request, error) {
	if g.Count <= 0 || g.Symbol == "" || len(g.Users) == 0 || len(g.Quantities) == 0 {
		return gen.Request{}, errors.Wrap(matcher.ErrInvalidArgument,
			"generate needs count, symbol, users and quantities")
	}

	var users []matcher.User
	for _, u := range g.Users {
		users = append(users, matcher.User(u))
	}

	return gen.Request{
		Rand:        rand.New(rand.NewSource(g.Seed)),
		Count:       g.Count,
		Symbol:      matcher.Symbol(g.Symbol),
		Users:       users,
		Quantities:  g.Quantities,
		Price:       g.Price,
		PriceStdDev: g.PriceStdDev,
	}, nil
}
