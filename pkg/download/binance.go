package download

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/jpillora/backoff"
)

const maxFetchRetries = 5

// BinanceSource fetches klines from the Binance spot API. Credentials
// are optional, historical klines are public data.
type BinanceSource struct {
	client *binance.Client
}

// NewBinanceSource creates a Binance-backed kline source.
func NewBinanceSource(key, secret string) *BinanceSource {
	return &BinanceSource{client: binance.NewClient(key, secret)}
}

// KlinesByPeriod implements Feeder. Transient API failures are retried
// with exponential backoff.
func (s *BinanceSource) KlinesByPeriod(ctx context.Context, symbol, timeframe string,
	start, end time.Time) ([]Kline, error) {

	retry := &backoff.Backoff{
		Min: 100 * time.Millisecond,
		Max: 1 * time.Second,
	}

	var data []*binance.Kline
	var err error
	for attempt := 0; attempt < maxFetchRetries; attempt++ {
		data, err = s.client.NewKlinesService().
			Symbol(symbol).
			Interval(timeframe).
			StartTime(start.UnixMilli()).
			EndTime(end.UnixMilli()).
			Do(ctx)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		time.Sleep(retry.Duration())
	}
	if err != nil {
		return nil, err
	}

	klines := make([]Kline, 0, len(data))
	for _, d := range data {
		kline, err := convertKline(d)
		if err != nil {
			return nil, err
		}
		klines = append(klines, kline)
	}

	return klines, nil
}

func convertKline(d *binance.Kline) (Kline, error) {
	var (
		kline Kline
		err   error
	)

	kline.Time = time.UnixMilli(d.OpenTime).UTC()

	if kline.Open, err = strconv.ParseFloat(d.Open, 64); err != nil {
		return Kline{}, err
	}
	if kline.High, err = strconv.ParseFloat(d.High, 64); err != nil {
		return Kline{}, err
	}
	if kline.Low, err = strconv.ParseFloat(d.Low, 64); err != nil {
		return Kline{}, err
	}
	if kline.Close, err = strconv.ParseFloat(d.Close, 64); err != nil {
		return Kline{}, err
	}
	if kline.Volume, err = strconv.ParseFloat(d.Volume, 64); err != nil {
		return Kline{}, err
	}

	return kline, nil
}
