// Package metric provides statistical helpers for evaluating backtest
// returns.
package metric

import (
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// BootstrapInterval is a bootstrap confidence interval of a measure.
type BootstrapInterval struct {
	Lower  float64
	Upper  float64
	StdDev float64
	Mean   float64
}

// Bootstrap estimates the confidence interval of a measure by
// resampling the values with replacement sampleSize times.
func Bootstrap(values []float64, measure func([]float64) float64, sampleSize int,
	confidence float64) BootstrapInterval {

	if len(values) == 0 {
		return BootstrapInterval{}
	}

	data := generateBootstrapSamples(values, measure, sampleSize)

	tail := 1 - confidence
	sort.Float64s(data)

	mean, stdDev := stat.MeanStdDev(data, nil)
	upper := stat.Quantile(1-tail/2, stat.LinInterp, data, nil)
	lower := stat.Quantile(tail/2, stat.LinInterp, data, nil)

	return BootstrapInterval{
		Lower:  lower,
		Upper:  upper,
		StdDev: stdDev,
		Mean:   mean,
	}
}

func generateBootstrapSamples(values []float64, measure func([]float64) float64, sampleSize int) []float64 {
	data := make([]float64, 0, sampleSize)

	for i := 0; i < sampleSize; i++ {
		samples := make([]float64, len(values))
		for j := range samples {
			samples[j] = lo.Sample(values)
		}
		data = append(data, measure(samples))
	}

	return data
}

// Mean is the average return, usable as a Bootstrap measure.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Payoff is the average win divided by the average loss magnitude.
func Payoff(values []float64) float64 {
	wins, losses := splitReturns(values)
	if len(wins) == 0 || len(losses) == 0 {
		return 0
	}

	avgLoss := stat.Mean(losses, nil)
	if avgLoss == 0 {
		return 0
	}
	return stat.Mean(wins, nil) / -avgLoss
}

// ProfitFactor is the gross profit divided by the gross loss magnitude.
func ProfitFactor(values []float64) float64 {
	wins, losses := splitReturns(values)
	grossLoss := lo.Sum(losses)
	if grossLoss == 0 {
		return 0
	}
	return lo.Sum(wins) / -grossLoss
}

func splitReturns(values []float64) (wins, losses []float64) {
	return lo.FilterReject(values, func(v float64, _ int) bool {
		return v >= 0
	})
}
