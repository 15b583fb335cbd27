package download

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/xhit/go-str2duration/v2"

	"github.com/quantado/backplot/pkg/logger"
)

const batchSize = 500

var csvHeaders = []string{"time", "open", "close", "low", "high", "volume"}

// Kline is one downloaded candle row.
type Kline struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Feeder fetches historical candles from a market data source.
type Feeder interface {
	KlinesByPeriod(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]Kline, error)
}

// Downloader fetches historical candles in batches and writes them to
// a CSV file the feed loader understands.
type Downloader struct {
	source Feeder
	log    logger.Logger
}

// NewDownloader creates a downloader over the given source.
func NewDownloader(source Feeder, log logger.Logger) Downloader {
	return Downloader{source: source, log: log}
}

// Parameters defines the time range for a download.
type Parameters struct {
	Start time.Time
	End   time.Time
}

// Option configures the download parameters.
type Option func(*Parameters)

// WithInterval sets explicit start and end times.
func WithInterval(start, end time.Time) Option {
	return func(parameters *Parameters) {
		parameters.Start = start
		parameters.End = end
	}
}

// WithDays downloads the trailing number of days.
func WithDays(days int) Option {
	return func(parameters *Parameters) {
		parameters.Start = time.Now().AddDate(0, 0, -days)
		parameters.End = time.Now()
	}
}

// Download fetches the candles of a symbol and writes them to outputPath.
// The default range is the trailing month.
func (d Downloader) Download(ctx context.Context, symbol, timeframe, outputPath string, options ...Option) error {
	now := time.Now()
	parameters := &Parameters{Start: now.AddDate(0, -1, 0), End: now}
	for _, option := range options {
		option(parameters)
	}
	normalizeTimeParameters(parameters)

	interval, err := str2duration.ParseDuration(timeframe)
	if err != nil {
		return err
	}
	candleCount := int(parameters.End.Sub(parameters.Start)/interval) + 1

	d.log.Infof("downloading %d candles of %s for %s", candleCount, timeframe, symbol)

	recordFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer recordFile.Close()

	writer := csv.NewWriter(recordFile)
	if err := writer.Write(csvHeaders); err != nil {
		return err
	}

	progressBar := progressbar.Default(int64(candleCount))
	missing, err := d.downloadBatches(ctx, symbol, timeframe, parameters, interval, writer, progressBar)
	if err != nil {
		return err
	}

	if err := progressBar.Close(); err != nil {
		d.log.Warnf("close progress bar fail: %v", err)
	}
	if missing > 0 {
		d.log.Warnf("%d missing candles", missing)
	}

	writer.Flush()
	return writer.Error()
}

func (d Downloader) downloadBatches(
	ctx context.Context,
	symbol, timeframe string,
	parameters *Parameters,
	interval time.Duration,
	writer *csv.Writer,
	progressBar *progressbar.ProgressBar,
) (int, error) {
	missing := 0

	for batchStart := parameters.Start; batchStart.Before(parameters.End); batchStart = batchStart.Add(interval * batchSize) {
		batchEnd := batchStart.Add(interval*batchSize - time.Second)
		lastBatch := false
		if !batchEnd.Before(parameters.End) {
			batchEnd = parameters.End
			lastBatch = true
		}

		klines, err := d.source.KlinesByPeriod(ctx, symbol, timeframe, batchStart, batchEnd)
		if err != nil {
			return missing, err
		}

		for _, kline := range klines {
			if err := writer.Write(klineRow(kline)); err != nil {
				return missing, err
			}
		}

		if !lastBatch && len(klines) < batchSize {
			missing += batchSize - len(klines)
		}

		if err := progressBar.Add(len(klines)); err != nil {
			d.log.Warnf("update progress bar fail: %v", err)
		}
	}

	return missing, nil
}

// normalizeTimeParameters snaps the range to day boundaries and keeps
// the end out of the future.
func normalizeTimeParameters(parameters *Parameters) {
	parameters.Start = truncateToDay(parameters.Start)

	now := time.Now()
	if parameters.End.Before(now) {
		parameters.End = truncateToDay(parameters.End)
	} else {
		parameters.End = now
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func klineRow(kline Kline) []string {
	return []string{
		strconv.FormatInt(kline.Time.Unix(), 10),
		strconv.FormatFloat(kline.Open, 'f', -1, 64),
		strconv.FormatFloat(kline.Close, 'f', -1, 64),
		strconv.FormatFloat(kline.Low, 'f', -1, 64),
		strconv.FormatFloat(kline.High, 'f', -1, 64),
		strconv.FormatFloat(kline.Volume, 'f', -1, 64),
	}
}
