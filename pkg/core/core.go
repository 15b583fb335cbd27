package core

// TradeStorage persists the round-trip trades produced by a backtest run.
type TradeStorage interface {
	CreateTrade(trade *Trade) error
	Trades(symbol string) ([]*Trade, error)
}

// Notifier receives human-readable messages about finished runs.
type Notifier interface {
	Notify(message string) error
}
