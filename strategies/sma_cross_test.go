package strategies

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

func trendDataframe() *core.Dataframe {
	df := &core.Dataframe{Symbol: "BTCUSDT"}
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	price := 100.0
	for i := 0; i < 150; i++ {
		if i < 50 {
			price -= 1
		} else {
			price += 1
		}
		df.Time = append(df.Time, start.Add(time.Duration(i)*time.Hour))
		df.Open = append(df.Open, price)
		df.High = append(df.High, price+0.5)
		df.Low = append(df.Low, price-0.5)
		df.Close = append(df.Close, price)
		df.Volume = append(df.Volume, 1000)
	}
	return df
}

func TestSMACross(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	engine := backtest.NewEngine(logrusadapter.NewAdapter(log), backtest.WithProgressBar(false))

	strategy := NewSMACross(10, 30, 1)
	result, err := engine.Run(context.Background(), trendDataframe(), strategy)
	require.NoError(t, err)

	// the reversal produces a fast-over-slow cross and one long trade
	require.NotEmpty(t, result.Trades)
	require.Equal(t, core.DirectionLong, result.Trades[0].Direction)
	require.Positive(t, result.Trades[0].Profit)

	// the declared chart surface is captured in the run config
	require.Equal(t, 3, result.Config.Len())
	require.Equal(t, "dark", result.Config.Theme().Name)
	require.Equal(t, "MA10", result.Config.Requests()[0].Name)
}

func TestSMACross_Defaults(t *testing.T) {
	strategy := NewSMACross(0, 0, 0)
	require.Equal(t, 31, strategy.WarmupPeriod())

	cfg := plot.NewConfig()
	strategy.Init(cfg)
	require.Equal(t, "MA30", cfg.Requests()[1].Name)
}
