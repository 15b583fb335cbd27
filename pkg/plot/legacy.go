package plot

import (
	"github.com/quantado/backplot/pkg/core"
	"github.com/quantado/backplot/pkg/logger"
)

// ChartRenderer is the rendering entry point shared by the composer
// path and the legacy path, so callers can switch with a flag.
type ChartRenderer interface {
	Render(df *core.Dataframe, cfg *Config, opts ...RenderOption) error
}

// LegacyRenderer reproduces the original fixed chart layout: candles
// with trade markers, a volume pane and an equity pane. It ignores the
// indicator requests and the theme of the plot configuration entirely;
// only render options apply.
type LegacyRenderer struct {
	log logger.Logger
}

// NewLegacyRenderer creates the fixed-layout renderer.
func NewLegacyRenderer(log logger.Logger) *LegacyRenderer {
	return &LegacyRenderer{log: log}
}

// Render writes the fixed-layout chart. The configuration argument is
// accepted only to satisfy ChartRenderer.
func (r *LegacyRenderer) Render(df *core.Dataframe, _ *Config, opts ...RenderOption) error {
	settings := applyOptions(NewConfig(), opts)

	if err := df.Validate(); err != nil {
		return err
	}

	theme := settings.theme.Resolve()

	doc := &Document{
		Title:   settings.title,
		Theme:   theme,
		Time:    df.Time,
		Candles: buildCandles(df),
		Volume:  append([]float64{}, df.Volume...),
		Markers: tradeMarkers(theme, settings.trades),
	}
	if doc.Title == "" {
		doc.Title = df.Symbol
	}

	if len(settings.equity) > 0 {
		doc.Equity = &EquityPane{
			Points:      settings.equity,
			Annotations: equityAnnotations(theme, settings.equity),
		}
	}

	if err := settings.writer.Write(doc, settings.output); err != nil {
		return err
	}
	r.log.Info("chart saved to ", settings.output)

	if settings.openBrowser {
		if err := OpenInViewer(settings.output); err != nil {
			r.log.Warn("could not open chart in browser: ", err)
		}
	}
	return nil
}

var _ ChartRenderer = (*AutoPlotter)(nil)
var _ ChartRenderer = (*LegacyRenderer)(nil)
