package plot

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/quantado/backplot/pkg/core"
	"github.com/quantado/backplot/pkg/logger"
)

// RenderOption customizes a single Render call.
type RenderOption func(*renderSettings)

type renderSettings struct {
	theme       *Theme
	title       string
	output      string
	openBrowser bool
	extra       []*Computed
	trades      []core.Trade
	equity      []core.EquityPoint
	writer      ChartWriter
}

// WithTheme overrides the configured theme for this render only.
func WithTheme(theme Theme) RenderOption {
	return func(s *renderSettings) {
		s.theme = &theme
	}
}

// WithTitle sets the chart title. Defaults to the dataframe symbol.
func WithTitle(title string) RenderOption {
	return func(s *renderSettings) {
		s.title = title
	}
}

// WithOutput sets the destination file of the rendered chart.
func WithOutput(path string) RenderOption {
	return func(s *renderSettings) {
		s.output = path
	}
}

// WithOpenBrowser opens the rendered chart in the system viewer.
func WithOpenBrowser() RenderOption {
	return func(s *renderSettings) {
		s.openBrowser = true
	}
}

// WithComputed attaches externally precomputed indicators to the chart,
// bypassing the registry.
func WithComputed(computed ...*Computed) RenderOption {
	return func(s *renderSettings) {
		s.extra = append(s.extra, computed...)
	}
}

// WithTrades draws entry and exit markers on the price pane.
func WithTrades(trades []core.Trade) RenderOption {
	return func(s *renderSettings) {
		s.trades = trades
	}
}

// WithEquity appends an account value pane below the indicators.
func WithEquity(points []core.EquityPoint) RenderOption {
	return func(s *renderSettings) {
		s.equity = points
	}
}

// WithWriter replaces the HTML rendering backend.
func WithWriter(writer ChartWriter) RenderOption {
	return func(s *renderSettings) {
		s.writer = writer
	}
}

// AutoPlotter composes chart documents from a dataframe and a plot
// configuration: it evaluates the enabled indicator requests, lays
// overlays onto the price pane, stacks one sub-pane per subplot
// indicator and appends volume and equity panes.
type AutoPlotter struct {
	registry *Registry
	log      logger.Logger
}

// NewAutoPlotter creates a composer backed by the given registry.
func NewAutoPlotter(registry *Registry, log logger.Logger) *AutoPlotter {
	return &AutoPlotter{registry: registry, log: log}
}

// Compose builds the chart document without writing it anywhere. Any
// indicator request that fails to compute fails the whole call, naming
// the offending request.
func (p *AutoPlotter) Compose(df *core.Dataframe, cfg *Config, opts ...RenderOption) (*Document, error) {
	settings := applyOptions(cfg, opts)

	if err := df.Validate(); err != nil {
		return nil, err
	}

	computed := make([]*Computed, 0, cfg.Len()+len(settings.extra))
	for _, request := range cfg.Enabled() {
		result, err := Compute(p.registry, df, request.Name, request.Params)
		if err != nil {
			return nil, fmt.Errorf("indicator %q: %w", request.Name, err)
		}
		computed = append(computed, result)
	}
	computed = append(computed, settings.extra...)

	theme := settings.theme.Resolve()
	overlays, subplots := lo.FilterReject(computed, func(c *Computed, _ int) bool {
		return c.Definition.Pane == PaneOverlay
	})

	doc := &Document{
		Title:   settings.title,
		Theme:   theme,
		Time:    df.Time,
		Candles: buildCandles(df),
		Volume:  append([]float64{}, df.Volume...),
	}
	if doc.Title == "" {
		doc.Title = df.Symbol
	}

	for _, c := range overlays {
		doc.Overlays = append(doc.Overlays, themedSeries(theme, c.Series)...)
	}
	for _, c := range subplots {
		doc.SubPanes = append(doc.SubPanes, Pane{
			Title:  c.Request,
			Series: themedSeries(theme, c.Series),
		})
	}

	doc.Markers = tradeMarkers(theme, settings.trades)

	if len(settings.equity) > 0 {
		doc.Equity = &EquityPane{
			Points:      settings.equity,
			Annotations: equityAnnotations(theme, settings.equity),
		}
	}

	return doc, nil
}

// Render composes the document and writes it with the configured
// backend, opening the result in a browser when requested.
func (p *AutoPlotter) Render(df *core.Dataframe, cfg *Config, opts ...RenderOption) error {
	settings := applyOptions(cfg, opts)

	doc, err := p.Compose(df, cfg, opts...)
	if err != nil {
		return err
	}

	if err := settings.writer.Write(doc, settings.output); err != nil {
		return err
	}
	p.log.Info("chart saved to ", settings.output)

	if settings.openBrowser {
		if err := OpenInViewer(settings.output); err != nil {
			p.log.Warn("could not open chart in browser: ", err)
		}
	}
	return nil
}

// applyOptions resolves the render settings, including the theme
// precedence: explicit render option, then strategy configuration,
// then the light default.
func applyOptions(cfg *Config, opts []RenderOption) *renderSettings {
	settings := &renderSettings{output: "chart.html"}
	for _, opt := range opts {
		opt(settings)
	}

	if settings.theme == nil {
		if configured := cfg.Theme(); configured != nil {
			settings.theme = configured
		} else {
			light := Light()
			settings.theme = &light
		}
	}

	if settings.writer == nil {
		settings.writer = NewHTMLWriter()
	}

	return settings
}

func buildCandles(df *core.Dataframe) []Candle {
	candles := make([]Candle, df.Len())
	for i := range candles {
		candles[i] = Candle{
			Time:   df.Time[i],
			Open:   df.Open[i],
			High:   df.High[i],
			Low:    df.Low[i],
			Close:  df.Close[i],
			Volume: df.Volume[i],
		}
	}
	return candles
}

func themedSeries(theme Theme, series []Series) []SeriesData {
	return lo.Map(series, func(s Series, _ int) SeriesData {
		return SeriesData{
			Name:   s.Name,
			Style:  s.Style,
			Color:  theme.SeriesColor(s.Name),
			Values: Floats(s.Values),
		}
	})
}

func tradeMarkers(theme Theme, trades []core.Trade) []Marker {
	markers := make([]Marker, 0, 2*len(trades))
	for _, trade := range trades {
		entrySide, exitSide := core.SideBuy, core.SideSell
		if trade.Direction == core.DirectionShort {
			entrySide, exitSide = core.SideSell, core.SideBuy
		}

		markers = append(markers, sideMarker(theme, entrySide, core.Fill{
			Time:  trade.EntryTime,
			Price: trade.EntryPrice,
		}))
		if trade.Closed() {
			markers = append(markers, sideMarker(theme, exitSide, core.Fill{
				Time:  trade.ExitTime,
				Price: trade.ExitPrice,
			}))
		}
	}
	return markers
}

func sideMarker(theme Theme, side core.Side, fill core.Fill) Marker {
	marker := Marker{
		Time:   fill.Time,
		Value:  fill.Price,
		Label:  string(side),
		Color:  theme.BuyColor,
		Symbol: theme.BuySymbol,
	}
	if side == core.SideSell {
		marker.Color = theme.SellColor
		marker.Symbol = theme.SellSymbol
	}
	return marker
}

// equityAnnotations tags the equity curve with its peak, its deepest
// drawdown and the final value.
func equityAnnotations(theme Theme, points []core.EquityPoint) []Marker {
	if len(points) == 0 {
		return nil
	}

	peakIdx, troughIdx := 0, 0
	runningPeak := points[0].Value
	maxDrawdown := 0.0

	for i, point := range points {
		if point.Value > points[peakIdx].Value {
			peakIdx = i
		}
		if point.Value > runningPeak {
			runningPeak = point.Value
		}
		if runningPeak > 0 {
			drawdown := (runningPeak - point.Value) / runningPeak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
				troughIdx = i
			}
		}
	}

	final := points[len(points)-1]
	annotations := []Marker{
		{
			Time:   points[peakIdx].Time,
			Value:  points[peakIdx].Value,
			Label:  fmt.Sprintf("peak %.2f", points[peakIdx].Value),
			Color:  theme.UpColor,
			Symbol: "pin",
		},
		{
			Time:   final.Time,
			Value:  final.Value,
			Label:  fmt.Sprintf("final %.2f", final.Value),
			Color:  theme.TextColor,
			Symbol: "pin",
		},
	}

	if maxDrawdown > 0 {
		annotations = append(annotations, Marker{
			Time:   points[troughIdx].Time,
			Value:  points[troughIdx].Value,
			Label:  fmt.Sprintf("max drawdown %.1f%%", maxDrawdown*100),
			Color:  theme.DownColor,
			Symbol: "pin",
		})
	}

	return annotations
}
