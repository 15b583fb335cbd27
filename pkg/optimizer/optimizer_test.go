package optimizer

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/quantado/backplot/pkg/backtest"
	"github.com/quantado/backplot/pkg/core"
	logrusadapter "github.com/quantado/backplot/pkg/logger/logrus"
	"github.com/quantado/backplot/pkg/plot"
)

func testLog() *logrusadapter.Adapter {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrusadapter.NewAdapter(log)
}

func risingDataframe(size int) *core.Dataframe {
	df := &core.Dataframe{Symbol: "BTCUSDT"}
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < size; i++ {
		price := 100 + float64(i)
		df.Time = append(df.Time, start.Add(time.Duration(i)*time.Hour))
		df.Open = append(df.Open, price)
		df.High = append(df.High, price+0.5)
		df.Low = append(df.Low, price-0.5)
		df.Close = append(df.Close, price)
		df.Volume = append(df.Volume, 1000)
	}
	return df
}

// entryStrategy buys at a parameterized candle and closes at a fixed
// one. On a rising series an earlier entry earns a larger profit.
type entryStrategy struct {
	buyAt int
}

func (s *entryStrategy) WarmupPeriod() int { return 1 }

func (s *entryStrategy) Init(_ *plot.Config) {}

func (s *entryStrategy) OnCandle(ctx *backtest.Context) {
	switch ctx.Dataframe.Len() - 1 {
	case s.buyAt:
		_ = ctx.Buy(1)
	case 50:
		_ = ctx.ClosePosition()
	}
}

func TestGridSearch_RanksByProfit(t *testing.T) {
	search, err := NewGridSearch(testLog(), 2, []Parameter{
		{Name: "buy", Min: 20, Max: 40, Step: 10},
	})
	require.NoError(t, err)

	factory := func(params ParameterSet) backtest.Strategy {
		return &entryStrategy{buyAt: params["buy"]}
	}

	ranked, err := search.Optimize(context.Background(), risingDataframe(60), factory, Profit)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	require.Equal(t, 20, ranked[0].Parameters["buy"])
	require.Equal(t, 30, ranked[1].Parameters["buy"])
	require.Equal(t, 40, ranked[2].Parameters["buy"])

	require.Greater(t, ranked[0].Score, ranked[1].Score)
	require.Greater(t, ranked[1].Score, ranked[2].Score)
	require.Equal(t, 1, ranked[0].Summary.Trades())
}

func TestGridSearch_ExpandsCartesianProduct(t *testing.T) {
	search, err := NewGridSearch(testLog(), 1, []Parameter{
		{Name: "fast", Min: 2, Max: 4, Step: 1},
		{Name: "slow", Min: 10, Max: 20, Step: 10},
	})
	require.NoError(t, err)

	grid := search.expandGrid()
	require.Len(t, grid, 6)

	seen := map[[2]int]bool{}
	for _, point := range grid {
		seen[[2]int{point["fast"], point["slow"]}] = true
	}
	require.Len(t, seen, 6)
}

func TestGridSearch_Cancelled(t *testing.T) {
	search, err := NewGridSearch(testLog(), 1, []Parameter{
		{Name: "buy", Min: 10, Max: 40, Step: 1},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	factory := func(params ParameterSet) backtest.Strategy {
		return &entryStrategy{buyAt: params["buy"]}
	}

	_, err = search.Optimize(ctx, risingDataframe(60), factory, Profit)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewGridSearch_NoParameters(t *testing.T) {
	_, err := NewGridSearch(testLog(), 1, nil)
	require.ErrorIs(t, err, ErrNoParameters)
}
