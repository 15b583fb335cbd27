package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/quantado/backplot/pkg/core"
)

var (
	// ErrInsufficientData is returned when a feed holds fewer rows than requested.
	ErrInsufficientData = errors.New("insufficient data")

	// column layout assumed for headerless files
	defaultHeaderMap = map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}
)

// CSVFeed loads OHLCV dataframes from CSV files. Files may start with
// a header row naming the columns; extra columns become dataframe
// metadata. Headerless files use the default column order.
type CSVFeed struct {
	frames map[string]*core.Dataframe
}

// PairFile binds a symbol to its CSV file.
type PairFile struct {
	Symbol string
	File   string
}

// NewCSVFeed loads every file up front and validates the frames.
func NewCSVFeed(files ...PairFile) (*CSVFeed, error) {
	feed := &CSVFeed{frames: make(map[string]*core.Dataframe)}

	for _, pair := range files {
		df, err := readDataframe(pair)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", pair.File, err)
		}
		if err := df.Validate(); err != nil {
			return nil, fmt.Errorf("load %s: %w", pair.File, err)
		}
		feed.frames[pair.Symbol] = df
	}

	return feed, nil
}

// Dataframe returns the loaded frame of a symbol.
func (c *CSVFeed) Dataframe(symbol string) (*core.Dataframe, error) {
	df, ok := c.frames[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientData, symbol)
	}
	return df, nil
}

// Limit trims every frame to the trailing duration, measured from its
// last candle.
func (c *CSVFeed) Limit(duration time.Duration) *CSVFeed {
	for symbol, df := range c.frames {
		if df.Len() == 0 {
			continue
		}

		start := df.Time[df.Len()-1].Add(-duration)
		kept := lo.CountBy(df.Time, func(t time.Time) bool {
			return t.After(start)
		})
		sample := df.Sample(kept)
		c.frames[symbol] = &sample
	}
	return c
}

func readDataframe(pair PairFile) (*core.Dataframe, error) {
	file, err := os.Open(pair.File)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lines, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, core.ErrEmptyDataframe
	}

	headerMap, additional, hasHeaders := parseHeaders(lines[0])
	if hasHeaders {
		lines = lines[1:]
	}

	df := &core.Dataframe{Symbol: pair.Symbol}
	if len(additional) > 0 {
		df.Metadata = make(map[string]core.Series[float64], len(additional))
	}

	for _, line := range lines {
		if err := appendRow(df, line, headerMap, additional); err != nil {
			return nil, err
		}
	}

	if df.Len() > 0 {
		df.LastUpdate = df.Time[df.Len()-1]
	}
	return df, nil
}

// parseHeaders decides whether the first row is a header. A numeric
// first cell means the file is headerless.
func parseHeaders(first []string) (headerMap map[string]int, additional []string, hasHeaders bool) {
	if len(first) == 0 {
		return defaultHeaderMap, nil, false
	}
	if _, err := strconv.Atoi(first[0]); err == nil {
		return defaultHeaderMap, nil, false
	}

	headerMap = make(map[string]int)
	for index, header := range first {
		headerMap[header] = index
		if _, known := defaultHeaderMap[header]; !known {
			additional = append(additional, header)
		}
	}

	return headerMap, additional, true
}

func appendRow(df *core.Dataframe, line []string, headerMap map[string]int, additional []string) error {
	timestamp, err := strconv.ParseInt(line[headerMap["time"]], 10, 64)
	if err != nil {
		return err
	}
	df.Time = append(df.Time, time.Unix(timestamp, 0).UTC())

	columns := []struct {
		name   string
		target *core.Series[float64]
	}{
		{"open", &df.Open},
		{"high", &df.High},
		{"low", &df.Low},
		{"close", &df.Close},
		{"volume", &df.Volume},
	}

	for _, column := range columns {
		value, err := strconv.ParseFloat(line[headerMap[column.name]], 64)
		if err != nil {
			return fmt.Errorf("column %q: %w", column.name, err)
		}
		*column.target = append(*column.target, value)
	}

	for _, header := range additional {
		value, err := strconv.ParseFloat(line[headerMap[header]], 64)
		if err != nil {
			return fmt.Errorf("column %q: %w", header, err)
		}
		df.Metadata[header] = append(df.Metadata[header], value)
	}

	return nil
}
