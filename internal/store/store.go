// Package store owns the coin ledger: one account per Telegram user
// with a balance, the last UID acted on and a bounded action history.
// All mutation goes through SpendAndRecord so the balance check and the
// debit are one atomic step; nothing in the service reads a balance,
// decides, and writes it back separately.
package store

import (
	"context"
	"errors"
	"time"
)

type HistoryEntry struct {
	Action    string    `json:"action"`
	TargetUID string    `json:"targetUid"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Account mirrors the document the webapp renders. History is ordered
// newest-first and capped at the configured limit.
type Account struct {
	TgID      string         `json:"tgId"`
	Username  string         `json:"username"`
	Coins     int64          `json:"coins"`
	Region    string         `json:"region"`
	SavedUID  string         `json:"savedUid"`
	CreatedAt time.Time      `json:"createdAt"`
	History   []HistoryEntry `json:"history"`
}

var (
	ErrInsufficientCoins = errors.New("insufficient coins")
	ErrNotFound          = errors.New("account not found")
)

type Store interface {
	// GetOrCreate returns the account for tgID, creating it with default
	// coins and region on first reference. Concurrent first references to
	// the same tgID yield exactly one stored account.
	GetOrCreate(ctx context.Context, tgID, username string) (Account, error)

	// SpendAndRecord atomically verifies coins >= cost, debits, updates
	// the saved UID and region, and prepends a history entry, evicting
	// the oldest entry past the history limit. On ErrInsufficientCoins
	// nothing is mutated.
	SpendAndRecord(ctx context.Context, tgID string, cost int64, targetUID, region, action, status string) (Account, error)

	Ping(ctx context.Context) error
	Close()
}

// Options carry the ledger defaults shared by every backend.
type Options struct {
	StartingCoins int64
	DefaultRegion string
	HistoryLimit  int
}

func (o Options) withDefaults() Options {
	if o.StartingCoins <= 0 {
		o.StartingCoins = 50
	}
	if o.DefaultRegion == "" {
		o.DefaultRegion = "ETHIOPIA"
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = 50
	}
	return o
}
