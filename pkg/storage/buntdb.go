package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/tidwall/buntdb"

	"github.com/quantado/backplot/pkg/core"
)

// BuntStorage implements core.TradeStorage on BuntDB, a single-file
// key/value store. Trades are stored as JSON keyed by their ID.
type BuntStorage struct {
	lastID int64
	db     *buntdb.DB
}

// FromMemory creates an in-memory trade storage.
func FromMemory() (*BuntStorage, error) {
	return NewBuntStorage(":memory:")
}

// FromFile creates a file-backed trade storage.
func FromFile(file string) (*BuntStorage, error) {
	return NewBuntStorage(file)
}

// NewBuntStorage opens a BuntDB trade storage.
func NewBuntStorage(sourceFile string) (*BuntStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex("entry_index", "*", buntdb.IndexJSON("entry_time"))
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &BuntStorage{db: db}, nil
}

func (b *BuntStorage) getID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

// CreateTrade stores a trade, assigning it a fresh ID.
func (b *BuntStorage) CreateTrade(trade *core.Trade) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		trade.ID = b.getID()
		content, err := json.Marshal(trade)
		if err != nil {
			return fmt.Errorf("failed to marshal trade: %w", err)
		}

		_, _, err = tx.Set(strconv.FormatInt(trade.ID, 10), string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store trade: %w", err)
		}

		return nil
	})
}

// Trades returns the trades of a symbol ordered by entry time. An
// empty symbol returns everything.
func (b *BuntStorage) Trades(symbol string) ([]*core.Trade, error) {
	trades := make([]*core.Trade, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("entry_index", func(_, value string) bool {
			var trade core.Trade
			if err := json.Unmarshal([]byte(value), &trade); err != nil {
				return true
			}
			if symbol != "" && trade.Symbol != symbol {
				return true
			}
			trades = append(trades, &trade)
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over trades: %w", err)
	}

	return trades, nil
}

// Close closes the database.
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
