package ordermatch

import (
	"context"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"go.uber.org/zap"

	"github.com/corverroos/ordermatch/matcher"
)

// ErrInputClosed is returned by Run when the input channel is closed.
var ErrInputClosed = errors.New("input channel closed", j.C("ERR_3f9e07b1d4a2c865"))

// Command is a sequenced order submission. Sequences start at 1.
type Command struct {
	Sequence int64
	Order    matcher.Order
}

type Type int

const (
	TypeUnknown    Type = 0
	TypeCommandOld Type = 1
	TypeRested     Type = 2
	TypeExecuted   Type = 3
	TypeRejected   Type = 4
)

func (t Type) String() string {
	switch t {
	case TypeCommandOld:
		return "CommandOld"
	case TypeRested:
		return "Rested"
	case TypeExecuted:
		return "Executed"
	case TypeRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

type Result struct {
	Type    Type
	Command Command
	Trade   *matcher.Trade
	Err     error
}

// Run submits commands from input in sequence and outputs a result
// per command. Commands already applied are acknowledged with
// TypeCommandOld. Invalid orders are rejected without stopping the
// loop, but a gap in sequences is an error.
func (e *Engine) Run(ctx context.Context, input <-chan Command,
	output chan<- Result) error {

	var last int64
	for {
		var (
			cmd Command
			ok  bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok = <-input:
			if !ok {
				return ErrInputClosed
			}
		}

		var r Result
		if cmd.Sequence <= last {
			// Ignore old commands
			r = Result{Type: TypeCommandOld, Command: cmd}
		} else if cmd.Sequence > last+1 {
			return errors.New("out of order command",
				j.MKV{"expect": last + 1, "got": cmd.Sequence})
		} else {
			last = cmd.Sequence
			r = e.apply(cmd)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case output <- r:
		}
	}
}

func (e *Engine) apply(cmd Command) Result {
	o := cmd.Order
	t, err := e.Submit(&o)
	if err != nil {
		e.log.Error("order rejected",
			zap.Int64("command", cmd.Sequence),
			zap.Error(err))
		return Result{Type: TypeRejected, Command: cmd, Err: err}
	} else if t == nil {
		return Result{Type: TypeRested, Command: cmd}
	}

	return Result{Type: TypeExecuted, Command: cmd, Trade: t}
}

// RunOrders submits the orders as sequential commands and returns their
// results. It stops at the first error other than a closed input.
func RunOrders(ctx context.Context, e *Engine, orders []matcher.Order) ([]Result, error) {
	input := make(chan Command, len(orders))
	output := make(chan Result, len(orders))

	for i, o := range orders {
		input <- Command{Sequence: int64(i + 1), Order: o}
	}
	close(input)

	err := e.Run(ctx, input, output)
	if !errors.Is(err, ErrInputClosed) {
		return nil, err
	}
	close(output)

	var rl []Result
	for r := range output {
		rl = append(rl, r)
	}
	return rl, nil
}
