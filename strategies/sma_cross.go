// Package strategies holds ready-to-run example strategies.
package strategies

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"github.com/quantado/backplot/pkg/backtest"
	"github.com/quantado/backplot/pkg/core"
	"github.com/quantado/backplot/pkg/plot"
)

// SMACross is a long-only moving average crossover: buy when the fast
// SMA crosses over the slow one, close when it crosses back under.
type SMACross struct {
	fastPeriod int
	slowPeriod int
	size       float64
}

// NewSMACross creates the strategy. Non-positive arguments fall back
// to 10/30 with a position size of 1.
func NewSMACross(fastPeriod, slowPeriod int, size float64) *SMACross {
	s := &SMACross{fastPeriod: 10, slowPeriod: 30, size: 1}
	if fastPeriod > 0 {
		s.fastPeriod = fastPeriod
	}
	if slowPeriod > 0 {
		s.slowPeriod = slowPeriod
	}
	if size > 0 {
		s.size = size
	}
	return s
}

// WarmupPeriod returns the candles needed before the slow SMA is defined.
func (s *SMACross) WarmupPeriod() int {
	return s.slowPeriod + 1
}

// Init declares the chart surface: both SMAs on the price pane, RSI
// below, all on the dark theme.
func (s *SMACross) Init(cfg *plot.Config) {
	_ = cfg.ConfigureThemeName("dark")
	cfg.AddIndicator(fmt.Sprintf("MA%d", s.fastPeriod), true, nil)
	cfg.AddIndicator(fmt.Sprintf("MA%d", s.slowPeriod), true, nil)
	cfg.AddIndicator("RSI", true, nil)
}

// OnCandle trades the crossover of the two SMAs.
func (s *SMACross) OnCandle(ctx *backtest.Context) {
	fast := core.Series[float64](talib.Sma(ctx.Dataframe.Close, s.fastPeriod))
	slow := core.Series[float64](talib.Sma(ctx.Dataframe.Close, s.slowPeriod))

	if ctx.Position() == 0 && fast.Crossover(slow) {
		_ = ctx.Buy(s.size)
		return
	}
	if ctx.Position() > 0 && fast.Crossunder(slow) {
		_ = ctx.ClosePosition()
	}
}
