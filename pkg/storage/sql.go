package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/quantado/backplot/pkg/core"
)

// SQLStorage implements core.TradeStorage on a SQL database via GORM.
// The dialector decides the backend, sqlite for local runs, postgres
// or mysql for shared result stores.
type SQLStorage struct {
	db *gorm.DB
}

// FromSQL opens a SQL trade storage and runs the trade migration.
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (*SQLStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&core.Trade{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{db: db}, nil
}

// CreateTrade inserts a trade.
func (s *SQLStorage) CreateTrade(trade *core.Trade) error {
	if result := s.db.Create(trade); result.Error != nil {
		return fmt.Errorf("failed to create trade: %w", result.Error)
	}
	return nil
}

// Trades returns the trades of a symbol ordered by entry time. An
// empty symbol returns everything.
func (s *SQLStorage) Trades(symbol string) ([]*core.Trade, error) {
	var trades []*core.Trade

	result := s.db.Order("entry_time").Find(&trades)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch trades: %w", result.Error)
	}

	if symbol == "" {
		return trades, nil
	}
	return lo.Filter(trades, func(trade *core.Trade, _ int) bool {
		return trade.Symbol == symbol
	}), nil
}

// WithTransaction runs fn inside a database transaction.
func (s *SQLStorage) WithTransaction(fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(fn)
}

// Close closes the database connection.
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
