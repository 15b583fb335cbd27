package core

import "time"

// Side identifies the direction of a single fill.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Direction identifies the direction of a round-trip trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Fill is a single executed order, the unit the broker records.
type Fill struct {
	Time  time.Time `json:"time"`
	Side  Side      `json:"side"`
	Price float64   `json:"price"`
	Size  float64   `json:"size"`
}

// Trade is a round-trip position: an entry paired with its exit.
// The exit fields are zero while the position is still open.
type Trade struct {
	ID         int64     `json:"id"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Size       float64   `json:"size"`
	Profit     float64   `json:"profit"`
}

// Closed reports whether the trade has an exit.
func (t Trade) Closed() bool {
	return !t.ExitTime.IsZero()
}

// ReturnPercent is the trade return relative to the entry notional.
func (t Trade) ReturnPercent() float64 {
	if t.EntryPrice == 0 || t.Size == 0 {
		return 0
	}
	return t.Profit / (t.EntryPrice * t.Size) * 100
}

// EquityPoint is one sample of the account value over time.
type EquityPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}
