package backtest

import (
	"context"

	"github.com/schollz/progressbar/v3"

	"github.com/quantado/backplot/pkg/core"
	"github.com/quantado/backplot/pkg/logger"
	"github.com/quantado/backplot/pkg/plot"
)

const (
	defaultCash       = 10000.0
	defaultCommission = 0.001
)

// Option customizes the engine.
type Option func(*Engine)

// WithCash sets the starting cash balance.
func WithCash(cash float64) Option {
	return func(e *Engine) {
		e.cash = cash
	}
}

// WithCommission sets the per-fill commission rate, e.g. 0.001 for 0.1%.
func WithCommission(rate float64) Option {
	return func(e *Engine) {
		e.commission = rate
	}
}

// WithStorage persists the finished trades of every run.
func WithStorage(storage core.TradeStorage) Option {
	return func(e *Engine) {
		e.storage = storage
	}
}

// WithNotifier sends the run summary when a backtest finishes.
func WithNotifier(notifier core.Notifier) Option {
	return func(e *Engine) {
		e.notifier = notifier
	}
}

// WithRegistry replaces the indicator registry used for plotting.
func WithRegistry(registry *plot.Registry) Option {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithProgressBar toggles the candle progress bar.
func WithProgressBar(show bool) Option {
	return func(e *Engine) {
		e.showProgress = show
	}
}

// Engine replays a dataframe through a strategy candle by candle and
// collects the trades and the equity curve.
type Engine struct {
	log          logger.Logger
	registry     *plot.Registry
	storage      core.TradeStorage
	notifier     core.Notifier
	cash         float64
	commission   float64
	showProgress bool
}

// Result is the outcome of one backtest run, the input of both the
// summary and the chart.
type Result struct {
	Dataframe   *core.Dataframe
	Config      *plot.Config
	Trades      []core.Trade
	Equity      []core.EquityPoint
	InitialCash float64
	FinalEquity float64
}

// NewEngine creates a backtest engine.
func NewEngine(log logger.Logger, opts ...Option) *Engine {
	engine := &Engine{
		log:          log,
		registry:     plot.NewRegistry(),
		cash:         defaultCash,
		commission:   defaultCommission,
		showProgress: true,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Run replays the dataframe through the strategy. The strategy's plot
// configuration is captured in the result so rendering can happen
// later, or never. A position still open after the last candle is
// closed at the final close price.
func (e *Engine) Run(ctx context.Context, df *core.Dataframe, strategy Strategy) (*Result, error) {
	if err := df.Validate(); err != nil {
		return nil, err
	}

	cfg := plot.NewConfig()
	strategy.Init(cfg)

	e.log.WithFields(map[string]any{
		"symbol":  df.Symbol,
		"candles": df.Len(),
		"cash":    e.cash,
	}).Info("starting backtest")

	b := newBroker(df.Symbol, e.cash, e.commission)

	var bar *progressbar.ProgressBar
	if e.showProgress {
		bar = progressbar.Default(int64(df.Len()))
	}

	warmup := strategy.WarmupPeriod()
	for i := 0; i < df.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if i >= warmup {
			strategy.OnCandle(&Context{
				Dataframe: sampleTo(df, i),
				broker:    b,
			})
		}
		b.markToMarket(df.Time[i], df.Close[i])

		if bar != nil {
			if err := bar.Add(1); err != nil {
				e.log.Warnf("update progressbar fail: %v", err)
			}
		}
	}

	if b.position != 0 {
		last := df.Len() - 1
		if err := b.close(df.Time[last], df.Close[last]); err != nil {
			return nil, err
		}
		// closing shifts the final equity sample
		b.equity[len(b.equity)-1] = core.EquityPoint{
			Time:  df.Time[last],
			Value: b.cash,
		}
	}

	result := &Result{
		Dataframe:   df,
		Config:      cfg,
		Trades:      b.trades,
		Equity:      b.equity,
		InitialCash: e.cash,
		FinalEquity: b.equity[len(b.equity)-1].Value,
	}

	if err := e.persist(result); err != nil {
		return nil, err
	}
	e.notify(result)

	e.log.WithFields(map[string]any{
		"trades": len(result.Trades),
		"equity": result.FinalEquity,
	}).Info("backtest finished")

	return result, nil
}

// Plot renders the result chart: the composer path by default, the
// fixed legacy layout when requested.
func (e *Engine) Plot(result *Result, legacy bool, opts ...plot.RenderOption) error {
	var renderer plot.ChartRenderer
	if legacy {
		renderer = plot.NewLegacyRenderer(e.log)
	} else {
		renderer = plot.NewAutoPlotter(e.registry, e.log)
	}

	opts = append(opts,
		plot.WithTrades(result.Trades),
		plot.WithEquity(result.Equity),
	)
	return renderer.Render(result.Dataframe, result.Config, opts...)
}

func (e *Engine) persist(result *Result) error {
	if e.storage == nil {
		return nil
	}
	for i := range result.Trades {
		if err := e.storage.CreateTrade(&result.Trades[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) notify(result *Result) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(NewSummary(result).String()); err != nil {
		e.log.WithError(err).Warn("could not send run summary")
	}
}

// sampleTo returns the frame truncated after position i, so strategies
// never peek at future candles.
func sampleTo(df *core.Dataframe, i int) *core.Dataframe {
	truncated := core.Dataframe{
		Symbol:     df.Symbol,
		Open:       df.Open[:i+1],
		High:       df.High[:i+1],
		Low:        df.Low[:i+1],
		Close:      df.Close[:i+1],
		Volume:     df.Volume[:i+1],
		Time:       df.Time[:i+1],
		LastUpdate: df.Time[i],
	}
	if len(df.Metadata) > 0 {
		truncated.Metadata = make(map[string]core.Series[float64], len(df.Metadata))
		for key, series := range df.Metadata {
			truncated.Metadata[key] = series[:i+1]
		}
	}
	return &truncated
}
