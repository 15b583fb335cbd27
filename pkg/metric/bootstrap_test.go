package metric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	interval := Bootstrap(values, Mean, 1000, 0.95)
	require.Less(t, interval.Lower, interval.Upper)
	require.InDelta(t, 5.5, interval.Mean, 1.5)
	require.Positive(t, interval.StdDev)

	empty := Bootstrap(nil, Mean, 1000, 0.95)
	require.Zero(t, empty.Mean)
}

func TestMeasures(t *testing.T) {
	returns := []float64{2, 4, -1, -2}

	require.InDelta(t, 0.75, Mean(returns), 1e-9)
	require.InDelta(t, 2.0, Payoff(returns), 1e-9)
	require.InDelta(t, 2.0, ProfitFactor(returns), 1e-9)

	require.Zero(t, Payoff([]float64{1, 2}))
	require.Zero(t, ProfitFactor([]float64{1, 2}))
	require.Zero(t, Mean(nil))
}
