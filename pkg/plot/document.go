package plot

import (
	"bytes"
	"math"
	"strconv"
	"time"

	"github.com/quantado/backplot/pkg/core"
)

// Floats is a float slice that marshals NaN and Inf as null, so the
// undefined warmup region of an indicator survives JSON encoding.
type Floats []float64

// MarshalJSON implements json.Marshaler.
func (f Floats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf.WriteString("null")
			continue
		}
		buf.Write(strconv.AppendFloat(nil, v, 'g', -1, 64))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Candle is the JSON-serializable OHLCV row of a chart document.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// SeriesData is a drawable series with its resolved style.
type SeriesData struct {
	Name   string    `json:"name"`
	Style  PlotStyle `json:"style"`
	Color  string    `json:"color"`
	Values Floats    `json:"values"`
}

// Pane is one stacked sub-chart holding the series of a single
// subplot indicator.
type Pane struct {
	Title  string       `json:"title"`
	Series []SeriesData `json:"series"`
}

// Marker is a point annotation: trade entries/exits on the main pane,
// drawdown/peak/final tags on the equity pane.
type Marker struct {
	Time   time.Time `json:"time"`
	Value  float64   `json:"value"`
	Label  string    `json:"label"`
	Color  string    `json:"color"`
	Symbol string    `json:"symbol"`
}

// EquityPane carries the account value curve plus its annotations.
type EquityPane struct {
	Points      []core.EquityPoint `json:"points"`
	Annotations []Marker           `json:"annotations"`
}

// Document is a fully composed chart, ready for a rendering backend:
// the main price pane with overlays and markers, the ordered sub-panes,
// an optional volume pane and an optional equity pane. It is built
// fresh on every render call and is not persisted.
type Document struct {
	Title    string       `json:"title"`
	Theme    Theme        `json:"theme"`
	Time     []time.Time  `json:"time"`
	Candles  []Candle     `json:"candles"`
	Overlays []SeriesData `json:"overlays"`
	Markers  []Marker     `json:"markers"`
	SubPanes []Pane       `json:"sub_panes"`
	Volume   Floats       `json:"volume,omitempty"`
	Equity   *EquityPane  `json:"equity,omitempty"`
}
