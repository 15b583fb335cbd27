package backplot

import (
	"github.com/quantado/backplot/pkg/core"
	"github.com/quantado/backplot/pkg/logger"
	"github.com/quantado/backplot/pkg/plot"
)

// Option is a functional option for configuring a Backplot instance.
type Option func(*Backplot)

// WithLogger replaces the default logger.
func WithLogger(log logger.Logger) Option {
	return func(b *Backplot) {
		b.log = log
	}
}

// WithCash sets the starting cash of every run.
func WithCash(cash float64) Option {
	return func(b *Backplot) {
		b.cash = cash
	}
}

// WithCommission sets the per-fill commission rate.
func WithCommission(rate float64) Option {
	return func(b *Backplot) {
		b.commission = rate
	}
}

// WithStorage persists the trades of every run.
func WithStorage(storage core.TradeStorage) Option {
	return func(b *Backplot) {
		b.storage = storage
	}
}

// WithNotifier sends run summaries, currently mail and telegram are
// provided.
func WithNotifier(notifier core.Notifier) Option {
	return func(b *Backplot) {
		b.notifier = notifier
	}
}

// WithRegistry replaces the indicator registry, used to add custom
// indicator definitions.
func WithRegistry(registry *plot.Registry) Option {
	return func(b *Backplot) {
		b.registry = registry
	}
}

// WithProgressBar toggles the candle progress bar.
func WithProgressBar(show bool) Option {
	return func(b *Backplot) {
		b.showProgress = show
	}
}
