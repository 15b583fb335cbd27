// Package backplot is the facade over the backtesting and chart
// rendering pipeline: it runs strategies over OHLCV dataframes,
// renders the charts they declare and prints run statistics.
package backplot

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"

	"github.com/quantado/backplot/pkg/backtest"
	"github.com/quantado/backplot/pkg/core"
	"github.com/quantado/backplot/pkg/logger"
	"github.com/quantado/backplot/pkg/metric"
	"github.com/quantado/backplot/pkg/plot"
)

// DefaultLog is the library-wide logger, configured from environment
// variables at startup.
var DefaultLog logger.Logger

// Backplot runs backtests and keeps their results for summary printing.
type Backplot struct {
	log          logger.Logger
	registry     *plot.Registry
	storage      core.TradeStorage
	notifier     core.Notifier
	cash         float64
	commission   float64
	showProgress bool

	engine  *backtest.Engine
	results []*backtest.Result
}

// New creates a Backplot facade.
func New(options ...Option) *Backplot {
	b := &Backplot{
		log:          DefaultLog,
		registry:     plot.NewRegistry(),
		cash:         10000,
		commission:   0.001,
		showProgress: true,
	}
	for _, option := range options {
		option(b)
	}

	b.engine = backtest.NewEngine(b.log,
		backtest.WithCash(b.cash),
		backtest.WithCommission(b.commission),
		backtest.WithStorage(b.storage),
		backtest.WithNotifier(b.notifier),
		backtest.WithRegistry(b.registry),
		backtest.WithProgressBar(b.showProgress),
	)

	return b
}

// Run executes a strategy over a dataframe and records the result.
func (b *Backplot) Run(ctx context.Context, df *core.Dataframe, strategy backtest.Strategy) (*backtest.Result, error) {
	result, err := b.engine.Run(ctx, df, strategy)
	if err != nil {
		return nil, err
	}

	b.results = append(b.results, result)
	return result, nil
}

// Plot renders the chart of a result: the indicator-driven composer
// path by default, the fixed legacy layout when legacy is true.
func (b *Backplot) Plot(result *backtest.Result, legacy bool, opts ...plot.RenderOption) error {
	return b.engine.Plot(result, legacy, opts...)
}

// Summary prints the statistics of every recorded run: a table per
// symbol, a histogram of trade returns and bootstrap confidence
// intervals of the per-trade return measures.
func (b *Backplot) Summary() {
	if len(b.results) == 0 {
		fmt.Println("no results to summarize")
		return
	}

	buffer := &strings.Builder{}
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Symbol", "Trades", "Win", "Loss", "% Win", "Pr.Fact", "SQN", "Profit", "Profit %"})

	returns := make([]float64, 0)
	for _, result := range b.results {
		summary := backtest.NewSummary(result)
		table.Append([]string{
			summary.Symbol,
			strconv.Itoa(summary.Trades()),
			strconv.Itoa(len(summary.Wins)),
			strconv.Itoa(len(summary.Losses)),
			fmt.Sprintf("%.1f %%", summary.WinRate()),
			fmt.Sprintf("%.2f", summary.ProfitFactor()),
			fmt.Sprintf("%.2f", summary.SQN()),
			fmt.Sprintf("%.2f", summary.Profit()),
			fmt.Sprintf("%.2f %%", summary.ProfitPercent()),
		})
		returns = append(returns, summary.ReturnPercent...)
	}

	table.Render()
	fmt.Println(buffer.String())

	if len(returns) == 0 {
		return
	}

	fmt.Println("------ RETURN -------")
	hist := histogram.Hist(15, returns)
	if err := histogram.Fprint(os.Stdout, hist, histogram.Linear(10)); err != nil {
		b.log.Warnf("print histogram fail: %v", err)
	}
	fmt.Println()

	fmt.Println("------ CONFIDENCE INTERVAL (95%) -------")
	returnsInterval := metric.Bootstrap(returns, metric.Mean, 10000, 0.95)
	payoffInterval := metric.Bootstrap(returns, metric.Payoff, 10000, 0.95)
	profitFactorInterval := metric.Bootstrap(returns, metric.ProfitFactor, 10000, 0.95)

	fmt.Printf("RETURN:      %.2f%% (%.2f%% ~ %.2f%%)\n",
		returnsInterval.Mean, returnsInterval.Lower, returnsInterval.Upper)
	fmt.Printf("PAYOFF:      %.2f (%.2f ~ %.2f)\n",
		payoffInterval.Mean, payoffInterval.Lower, payoffInterval.Upper)
	fmt.Printf("PROF.FACTOR: %.2f (%.2f ~ %.2f)\n",
		profitFactorInterval.Mean, profitFactorInterval.Lower, profitFactorInterval.Upper)
	fmt.Println()
}
