package store

import (
	"context"
	"sync"
	"time"
)

// Memory keeps the ledger in a mutex-guarded map. It is the dev-mode
// backend when DATABASE_URL is unset; the lock gives it the same
// atomicity the Postgres backend gets from conditional updates.
type Memory struct {
	opts Options

	mu       sync.Mutex
	accounts map[string]*Account
}

func NewMemory(opts Options) *Memory {
	return &Memory{
		opts:     opts.withDefaults(),
		accounts: make(map[string]*Account),
	}
}

func (m *Memory) GetOrCreate(ctx context.Context, tgID, username string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshot(m.locked(tgID, username)), nil
}

func (m *Memory) SpendAndRecord(ctx context.Context, tgID string, cost int64, targetUID, region, action, status string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[tgID]
	if !ok {
		return Account{}, ErrNotFound
	}
	if acct.Coins < cost {
		return Account{}, ErrInsufficientCoins
	}

	acct.Coins -= cost
	acct.SavedUID = targetUID
	if region != "" {
		acct.Region = region
	}
	acct.History = append([]HistoryEntry{{
		Action:    action,
		TargetUID: targetUID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}}, acct.History...)
	if len(acct.History) > m.opts.HistoryLimit {
		acct.History = acct.History[:m.opts.HistoryLimit]
	}
	return snapshot(acct), nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() {}

// locked assumes m.mu is held.
func (m *Memory) locked(tgID, username string) *Account {
	if acct, ok := m.accounts[tgID]; ok {
		return acct
	}
	acct := &Account{
		TgID:      tgID,
		Username:  username,
		Coins:     m.opts.StartingCoins,
		Region:    m.opts.DefaultRegion,
		CreatedAt: time.Now().UTC(),
		History:   []HistoryEntry{},
	}
	m.accounts[tgID] = acct
	return acct
}

func snapshot(acct *Account) Account {
	out := *acct
	out.History = make([]HistoryEntry, len(acct.History))
	copy(out.History, acct.History)
	return out
}
