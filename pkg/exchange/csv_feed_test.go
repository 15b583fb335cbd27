package exchange

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantado/backplot/pkg/core"
)

func writeCSV(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestCSVFeed_HeaderlessFile(t *testing.T) {
	path := writeCSV(t, "btc.csv",
		"1672531200,100,105,95,110,1000",
		"1672534800,105,102,100,108,900",
	)

	feed, err := NewCSVFeed(PairFile{Symbol: "BTCUSDT", File: path})
	require.NoError(t, err)

	df, err := feed.Dataframe("BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, 2, df.Len())
	require.Equal(t, "BTCUSDT", df.Symbol)

	// headerless column order is time,open,close,low,high,volume
	require.InDelta(t, 100.0, df.Open[0], 1e-9)
	require.InDelta(t, 105.0, df.Close[0], 1e-9)
	require.InDelta(t, 95.0, df.Low[0], 1e-9)
	require.InDelta(t, 110.0, df.High[0], 1e-9)
	require.InDelta(t, 1000.0, df.Volume[0], 1e-9)
	require.Equal(t, time.Unix(1672531200, 0).UTC(), df.Time[0])
	require.Equal(t, df.Time[1], df.LastUpdate)
}

func TestCSVFeed_HeadersWithExtraColumns(t *testing.T) {
	path := writeCSV(t, "btc.csv",
		"time,open,high,low,close,volume,funding",
		"1672531200,100,110,95,105,1000,0.01",
		"1672534800,105,108,100,102,900,0.02",
	)

	feed, err := NewCSVFeed(PairFile{Symbol: "BTCUSDT", File: path})
	require.NoError(t, err)

	df, err := feed.Dataframe("BTCUSDT")
	require.NoError(t, err)
	require.InDelta(t, 110.0, df.High[0], 1e-9)

	funding, ok := df.Metadata["funding"]
	require.True(t, ok)
	require.InDelta(t, 0.02, funding[1], 1e-9)
}

func TestCSVFeed_RejectsUnorderedTimestamps(t *testing.T) {
	path := writeCSV(t, "btc.csv",
		"1672534800,100,105,95,110,1000",
		"1672531200,105,102,100,108,900",
	)

	_, err := NewCSVFeed(PairFile{Symbol: "BTCUSDT", File: path})
	require.ErrorIs(t, err, core.ErrUnorderedTimestamps)
}

func TestCSVFeed_UnknownSymbol(t *testing.T) {
	feed, err := NewCSVFeed()
	require.NoError(t, err)

	_, err = feed.Dataframe("ETHUSDT")
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestCSVFeed_Limit(t *testing.T) {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	lines := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		ts := base.Add(time.Duration(i) * time.Hour).Unix()
		lines = append(lines, fmt.Sprintf("%d,%d,%d,%d,%d,100", ts, i+1, i+1, i+1, i+1))
	}
	path := writeCSV(t, "btc.csv", lines...)

	feed, err := NewCSVFeed(PairFile{Symbol: "BTCUSDT", File: path})
	require.NoError(t, err)

	df, err := feed.Limit(3 * time.Hour).Dataframe("BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, 3, df.Len())
	require.InDelta(t, 10.0, df.Close[2], 1e-9)
}
