// Package indicator holds extra indicators that are not part of the
// built-in registry set. They register themselves as custom
// definitions.
package indicator

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/quantado/backplot/pkg/core"
	"github.com/quantado/backplot/pkg/plot"
)

// SuperTrend computes the SuperTrend line: an ATR band that flips
// between acting as support and resistance with the trend direction.
// The first atrPeriod values are undefined.
func SuperTrend(df *core.Dataframe, atrPeriod int, factor float64) core.Series[float64] {
	length := df.Len()
	if length <= atrPeriod {
		values := make(core.Series[float64], length)
		for i := range values {
			values[i] = math.NaN()
		}
		return values
	}

	atr := talib.Atr(df.High, df.Low, df.Close, atrPeriod)

	finalUpper := make([]float64, length)
	finalLower := make([]float64, length)
	trend := make(core.Series[float64], length)
	trend[0] = math.NaN()

	for i := 1; i < length; i++ {
		median := (df.High[i] + df.Low[i]) / 2.0
		basicUpper := median + atr[i]*factor
		basicLower := median - atr[i]*factor

		if basicUpper < finalUpper[i-1] || df.Close[i-1] > finalUpper[i-1] {
			finalUpper[i] = basicUpper
		} else {
			finalUpper[i] = finalUpper[i-1]
		}

		if basicLower > finalLower[i-1] || df.Close[i-1] < finalLower[i-1] {
			finalLower[i] = basicLower
		} else {
			finalLower[i] = finalLower[i-1]
		}

		if finalUpper[i-1] == trend[i-1] {
			if df.Close[i] > finalUpper[i] {
				trend[i] = finalLower[i]
			} else {
				trend[i] = finalUpper[i]
			}
		} else {
			if df.Close[i] < finalLower[i] {
				trend[i] = finalUpper[i]
			} else {
				trend[i] = finalLower[i]
			}
		}

		// the ATR lookback region is undefined
		if i <= atrPeriod {
			trend[i] = math.NaN()
		}
	}

	return trend
}

// SuperTrendDefinition returns a registry definition so strategies can
// request "SUPERTREND" like any built-in indicator.
func SuperTrendDefinition() plot.Definition {
	return plot.Definition{
		Name:     "SUPERTREND",
		Pane:     plot.PaneOverlay,
		Style:    plot.StyleLine,
		Defaults: plot.Params{"period": 10, "factor": 3.0},
		Inputs:   []plot.Column{plot.ColumnHigh, plot.ColumnLow, plot.ColumnClose},
		Compute: func(df *core.Dataframe, p plot.Params) ([]plot.Series, error) {
			period, ok := p.Int("period")
			if !ok || period < 1 {
				period = 10
			}
			factor, ok := p.Float("factor")
			if !ok || factor <= 0 {
				factor = 3.0
			}
			return []plot.Series{{
				Name:   "SUPERTREND",
				Values: SuperTrend(df, period, factor),
			}}, nil
		},
	}
}
