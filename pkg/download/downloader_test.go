package download

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/quantado/backplot/pkg/exchange"
	logrusadapter "github.com/quantado/backplot/pkg/logger/logrus"
)

type fakeFeeder struct {
	calls int
}

func (f *fakeFeeder) KlinesByPeriod(_ context.Context, _, _ string, start, end time.Time) ([]Kline, error) {
	f.calls++

	klines := make([]Kline, 0)
	for t := start; !t.After(end); t = t.Add(time.Hour) {
		klines = append(klines, Kline{
			Time:   t,
			Open:   100,
			High:   110,
			Low:    95,
			Close:  105,
			Volume: 1000,
		})
	}
	return klines, nil
}

func testLog() *logrusadapter.Adapter {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrusadapter.NewAdapter(log)
}

func TestDownloader_DownloadWritesLoadableCSV(t *testing.T) {
	feeder := &fakeFeeder{}
	downloader := NewDownloader(feeder, testLog())

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)

	output := filepath.Join(t.TempDir(), "btc.csv")
	err := downloader.Download(context.Background(), "BTCUSDT", "1h", output,
		WithInterval(start, end))
	require.NoError(t, err)
	require.Equal(t, 1, feeder.calls)

	// the output must round-trip through the CSV feed
	feed, err := exchange.NewCSVFeed(exchange.PairFile{Symbol: "BTCUSDT", File: output})
	require.NoError(t, err)

	df, err := feed.Dataframe("BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, 49, df.Len())
	require.Equal(t, start, df.Time[0])
	require.InDelta(t, 105.0, df.Close[0], 1e-9)
	require.InDelta(t, 110.0, df.High[0], 1e-9)
}

func TestDownloader_InvalidTimeframe(t *testing.T) {
	downloader := NewDownloader(&fakeFeeder{}, testLog())

	output := filepath.Join(t.TempDir(), "btc.csv")
	err := downloader.Download(context.Background(), "BTCUSDT", "bogus", output)
	require.Error(t, err)
}
