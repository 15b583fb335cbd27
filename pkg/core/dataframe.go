package core

import (
	"time"
)

// Dataframe is a time series container for OHLCV data. It is the
// immutable input of the plotting pipeline: loaders fill it once and
// the indicator calculator only ever reads from it.
type Dataframe struct {
	Symbol string

	Open   Series[float64]
	High   Series[float64]
	Low    Series[float64]
	Close  Series[float64]
	Volume Series[float64]

	Time       []time.Time
	LastUpdate time.Time

	// Custom user metadata, e.g. externally precomputed columns
	Metadata map[string]Series[float64]
}

// Len returns the number of rows in the dataframe.
func (df Dataframe) Len() int {
	return len(df.Time)
}

// Validate checks the dataframe invariants: a non-empty frame with
// strictly increasing timestamps and equally sized OHLC columns.
func (df Dataframe) Validate() error {
	if len(df.Time) == 0 {
		return ErrEmptyDataframe
	}

	if len(df.Open) != len(df.Time) || len(df.High) != len(df.Time) ||
		len(df.Low) != len(df.Time) || len(df.Close) != len(df.Time) {
		return ErrColumnSizeMismatch
	}

	for i := 1; i < len(df.Time); i++ {
		if !df.Time[i].After(df.Time[i-1]) {
			return ErrUnorderedTimestamps
		}
	}

	return nil
}

// Sample returns a subset of the dataframe with the last 'positions' rows
func (df Dataframe) Sample(positions int) Dataframe {
	size := len(df.Time)
	start := size - positions
	if start <= 0 {
		return df
	}

	sample := Dataframe{
		Symbol:     df.Symbol,
		Open:       df.Open.LastValues(positions),
		High:       df.High.LastValues(positions),
		Low:        df.Low.LastValues(positions),
		Close:      df.Close.LastValues(positions),
		Volume:     df.Volume.LastValues(positions),
		Time:       df.Time[start:],
		LastUpdate: df.LastUpdate,
		Metadata:   make(map[string]Series[float64]),
	}

	for key := range df.Metadata {
		sample.Metadata[key] = df.Metadata[key].LastValues(positions)
	}

	return sample
}
