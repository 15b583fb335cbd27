package backtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/quantado/backplot/pkg/core"
	"github.com/quantado/backplot/pkg/plot"
)

var (
	// ErrInsufficientFunds is returned when an order costs more than the available cash.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPositionOpen is returned when an entry order arrives while a position is open.
	ErrPositionOpen = errors.New("position already open")
	// ErrNoPosition is returned when closing without an open position.
	ErrNoPosition = errors.New("no open position")
	// ErrInvalidSize is returned for zero or negative order sizes.
	ErrInvalidSize = errors.New("order size must be positive")
)

// Strategy is the trading logic run by the engine. Init runs once
// before the first candle and fills the plot configuration; OnCandle
// runs once per closed candle after the warmup period.
type Strategy interface {
	// WarmupPeriod is the number of candles skipped before the first
	// OnCandle call, so indicators have data to work with.
	WarmupPeriod() int
	Init(cfg *plot.Config)
	OnCandle(ctx *Context)
}

// Context is the strategy's view of a single candle: the dataframe
// sampled up to the current position, plus the order surface.
type Context struct {
	Dataframe *core.Dataframe
	broker    *broker
}

// Close returns the current candle close price.
func (c *Context) Close() float64 {
	return c.Dataframe.Close.Last(0)
}

// Time returns the current candle timestamp.
func (c *Context) Time() time.Time {
	return c.Dataframe.Time[c.Dataframe.Len()-1]
}

// Position returns the open position size, negative for shorts and
// zero when flat.
func (c *Context) Position() float64 {
	return c.broker.position
}

// Buy opens a long position at the current close.
func (c *Context) Buy(size float64) error {
	return c.broker.open(core.DirectionLong, c.Time(), c.Close(), size)
}

// Sell opens a short position at the current close.
func (c *Context) Sell(size float64) error {
	return c.broker.open(core.DirectionShort, c.Time(), c.Close(), size)
}

// ClosePosition exits the open position at the current close.
func (c *Context) ClosePosition() error {
	return c.broker.close(c.Time(), c.Close())
}

// broker tracks cash, a single open position and the round-trip trades
// of a run. One position at a time keeps the fill pairing unambiguous.
type broker struct {
	symbol     string
	cash       float64
	commission float64

	position   float64
	direction  core.Direction
	entryTime  time.Time
	entryPrice float64

	nextID int64
	trades []core.Trade
	equity []core.EquityPoint
}

func newBroker(symbol string, cash, commission float64) *broker {
	return &broker{
		symbol:     symbol,
		cash:       cash,
		commission: commission,
		nextID:     1,
	}
}

func (b *broker) open(direction core.Direction, at time.Time, price, size float64) error {
	if size <= 0 {
		return fmt.Errorf("%v: %w", size, ErrInvalidSize)
	}
	if b.position != 0 {
		return ErrPositionOpen
	}

	if direction == core.DirectionLong {
		cost := price * size * (1 + b.commission)
		if cost > b.cash {
			return fmt.Errorf("need %.2f, have %.2f: %w", cost, b.cash, ErrInsufficientFunds)
		}
		b.cash -= cost
		b.position = size
	} else {
		b.cash += price * size * (1 - b.commission)
		b.position = -size
	}

	b.direction = direction
	b.entryTime = at
	b.entryPrice = price
	return nil
}

func (b *broker) close(at time.Time, price float64) error {
	if b.position == 0 {
		return ErrNoPosition
	}

	size := b.position
	if size < 0 {
		size = -size
	}

	var profit float64
	if b.direction == core.DirectionLong {
		proceeds := price * size * (1 - b.commission)
		b.cash += proceeds
		profit = proceeds - b.entryPrice*size*(1+b.commission)
	} else {
		cost := price * size * (1 + b.commission)
		b.cash -= cost
		profit = b.entryPrice*size*(1-b.commission) - cost
	}

	b.trades = append(b.trades, core.Trade{
		ID:         b.nextID,
		Symbol:     b.symbol,
		Direction:  b.direction,
		EntryTime:  b.entryTime,
		ExitTime:   at,
		EntryPrice: b.entryPrice,
		ExitPrice:  price,
		Size:       size,
		Profit:     profit,
	})
	b.nextID++
	b.position = 0
	return nil
}

// markToMarket records one equity sample at the candle close.
func (b *broker) markToMarket(at time.Time, price float64) {
	b.equity = append(b.equity, core.EquityPoint{
		Time:  at,
		Value: b.cash + b.position*price,
	})
}
