package backtest

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/quantado/backplot/pkg/core"
)

// Summary collects the performance statistics of a finished run.
type Summary struct {
	Symbol      string
	InitialCash float64
	FinalEquity float64

	Wins   []core.Trade
	Losses []core.Trade

	ReturnPercent []float64
	MaxDrawdown   float64
}

// NewSummary computes the statistics of a backtest result.
func NewSummary(result *Result) Summary {
	wins, losses := lo.FilterReject(result.Trades, func(t core.Trade, _ int) bool {
		return t.Profit >= 0
	})

	returns := lo.Map(result.Trades, func(t core.Trade, _ int) float64 {
		return t.ReturnPercent()
	})

	return Summary{
		Symbol:        result.Dataframe.Symbol,
		InitialCash:   result.InitialCash,
		FinalEquity:   result.FinalEquity,
		Wins:          wins,
		Losses:        losses,
		ReturnPercent: returns,
		MaxDrawdown:   maxDrawdown(result.Equity),
	}
}

// Trades returns the total number of round trips.
func (s Summary) Trades() int {
	return len(s.Wins) + len(s.Losses)
}

// WinRate returns the percentage of winning trades.
func (s Summary) WinRate() float64 {
	if s.Trades() == 0 {
		return 0
	}
	return float64(len(s.Wins)) / float64(s.Trades()) * 100
}

// Profit returns the total profit over the run.
func (s Summary) Profit() float64 {
	return s.FinalEquity - s.InitialCash
}

// ProfitPercent returns the total return relative to the starting cash.
func (s Summary) ProfitPercent() float64 {
	if s.InitialCash == 0 {
		return 0
	}
	return s.Profit() / s.InitialCash * 100
}

// ProfitFactor returns gross profit over gross loss.
func (s Summary) ProfitFactor() float64 {
	grossProfit := lo.SumBy(s.Wins, func(t core.Trade) float64 { return t.Profit })
	grossLoss := lo.SumBy(s.Losses, func(t core.Trade) float64 { return t.Profit })
	if grossLoss == 0 {
		return 0
	}
	return grossProfit / math.Abs(grossLoss)
}

// SQN is the system quality number: sqrt(n) * mean(R) / stddev(R).
func (s Summary) SQN() float64 {
	if len(s.ReturnPercent) == 0 {
		return 0
	}
	mean, stdDev := stat.MeanStdDev(s.ReturnPercent, nil)
	if stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}
	return math.Sqrt(float64(len(s.ReturnPercent))) * mean / stdDev
}

// Sharpe returns the per-trade sharpe ratio over the return series,
// with a zero risk-free rate.
func (s Summary) Sharpe() float64 {
	if len(s.ReturnPercent) == 0 {
		return 0
	}
	mean, stdDev := stat.MeanStdDev(s.ReturnPercent, nil)
	if stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}
	return mean / stdDev
}

// String formats the summary as a text table.
func (s Summary) String() string {
	builder := &strings.Builder{}
	table := tablewriter.NewWriter(builder)

	mean := 0.0
	if len(s.ReturnPercent) > 0 {
		mean = stat.Mean(s.ReturnPercent, nil)
	}

	data := [][]string{
		{"Symbol", s.Symbol},
		{"Trades", strconv.Itoa(s.Trades())},
		{"Win", strconv.Itoa(len(s.Wins))},
		{"Loss", strconv.Itoa(len(s.Losses))},
		{"% Win", fmt.Sprintf("%.1f", s.WinRate())},
		{"Pr.Fact", fmt.Sprintf("%.2f", s.ProfitFactor())},
		{"SQN", fmt.Sprintf("%.2f", s.SQN())},
		{"Sharpe", fmt.Sprintf("%.2f", s.Sharpe())},
		{"Avg Return", fmt.Sprintf("%.2f %%", mean)},
		{"Max Drawdown", fmt.Sprintf("%.2f %%", s.MaxDrawdown*100)},
		{"Profit", fmt.Sprintf("%.4f (%.2f %%)", s.Profit(), s.ProfitPercent())},
		{"Final Equity", fmt.Sprintf("%.4f", s.FinalEquity)},
	}

	table.AppendBulk(data)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Render()

	return builder.String()
}

// WriteReturnsHistogram prints an ASCII histogram of the per-trade returns.
func (s Summary) WriteReturnsHistogram(w io.Writer) error {
	if len(s.ReturnPercent) == 0 {
		return nil
	}
	hist := histogram.Hist(15, s.ReturnPercent)
	return histogram.Fprint(w, hist, histogram.Linear(10))
}

func maxDrawdown(points []core.EquityPoint) float64 {
	peak, worst := 0.0, 0.0
	for i, point := range points {
		if i == 0 || point.Value > peak {
			peak = point.Value
		}
		if peak > 0 {
			drawdown := (peak - point.Value) / peak
			if drawdown > worst {
				worst = drawdown
			}
		}
	}
	return worst
}
