package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func newTestMemory() *Memory {
	return NewMemory(Options{})
}

func TestGetOrCreateDefaults(t *testing.T) {
	m := newTestMemory()
	acct, err := m.GetOrCreate(context.Background(), "999", "Player")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if acct.Coins != 50 {
		t.Fatalf("coins = %d, want 50", acct.Coins)
	}
	if acct.Region != "ETHIOPIA" {
		t.Fatalf("region = %q, want ETHIOPIA", acct.Region)
	}
	if len(acct.History) != 0 {
		t.Fatalf("new account has history: %d entries", len(acct.History))
	}
	if acct.CreatedAt.IsZero() {
		t.Fatalf("created_at not set")
	}
}

func TestGetOrCreateConcurrentSingleAccount(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	accounts := make([]Account, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acct, err := m.GetOrCreate(ctx, "race", "Player")
			if err != nil {
				t.Errorf("get or create: %v", err)
				return
			}
			accounts[i] = acct
		}(i)
	}
	wg.Wait()

	first := accounts[0]
	for _, acct := range accounts[1:] {
		if acct.Coins != first.Coins || !acct.CreatedAt.Equal(first.CreatedAt) {
			t.Fatalf("concurrent creates produced distinct accounts: %+v vs %+v", first, acct)
		}
	}
	if first.Coins != 50 {
		t.Fatalf("coins = %d, want 50", first.Coins)
	}
}

func TestSpendAndRecordDebitsAndRecords(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	if _, err := m.GetOrCreate(ctx, "1", "Player"); err != nil {
		t.Fatalf("get or create: %v", err)
	}

	acct, err := m.SpendAndRecord(ctx, "1", 5, "12345678", "IND", "LIKE", "Sent to Server")
	if err != nil {
		t.Fatalf("spend: %v", err)
	}
	if acct.Coins != 45 {
		t.Fatalf("coins = %d, want 45", acct.Coins)
	}
	if acct.SavedUID != "12345678" || acct.Region != "IND" {
		t.Fatalf("saved uid/region not updated: %+v", acct)
	}
	if len(acct.History) != 1 || acct.History[0].TargetUID != "12345678" || acct.History[0].Status != "Sent to Server" {
		t.Fatalf("history entry wrong: %+v", acct.History)
	}
}

func TestSpendAndRecordInsufficientLeavesStateUntouched(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	if _, err := m.GetOrCreate(ctx, "1", "Player"); err != nil {
		t.Fatalf("get or create: %v", err)
	}

	if _, err := m.SpendAndRecord(ctx, "1", 60, "12345678", "IND", "LIKE", "ok"); !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("err = %v, want ErrInsufficientCoins", err)
	}

	acct, _ := m.GetOrCreate(ctx, "1", "Player")
	if acct.Coins != 50 || acct.SavedUID != "" || len(acct.History) != 0 {
		t.Fatalf("failed spend mutated account: %+v", acct)
	}
}

func TestSpendAndRecordUnknownAccount(t *testing.T) {
	m := newTestMemory()
	if _, err := m.SpendAndRecord(context.Background(), "ghost", 5, "12345678", "", "LIKE", "ok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSpendAndRecordConcurrentExactBalance(t *testing.T) {
	// Balance covers exactly one action; N racers, exactly one may win.
	m := newTestMemory()
	ctx := context.Background()
	if _, err := m.GetOrCreate(ctx, "1", "Player"); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	cost := int64(50)

	const n = 16
	var wg sync.WaitGroup
	var wins int32
	var winsMu sync.Mutex
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.SpendAndRecord(ctx, "1", cost, "12345678", "", "LIKE", "ok"); err == nil {
				winsMu.Lock()
				wins++
				winsMu.Unlock()
			} else if !errors.Is(err, ErrInsufficientCoins) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	acct, _ := m.GetOrCreate(ctx, "1", "Player")
	if acct.Coins != 0 {
		t.Fatalf("coins = %d, want 0", acct.Coins)
	}
	if acct.Coins < 0 {
		t.Fatalf("balance went negative")
	}
}

func TestHistoryBoundNewestFirst(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	if _, err := m.GetOrCreate(ctx, "1", "Player"); err != nil {
		t.Fatalf("get or create: %v", err)
	}

	var acct Account
	var err error
	for i := 0; i < 51; i++ {
		acct, err = m.SpendAndRecord(ctx, "1", 0, fmt.Sprintf("%08d", i), "", "LIKE", "ok")
		if err != nil {
			t.Fatalf("spend %d: %v", i, err)
		}
	}

	if len(acct.History) != 50 {
		t.Fatalf("history length = %d, want 50", len(acct.History))
	}
	if acct.History[0].TargetUID != "00000050" {
		t.Fatalf("newest entry = %q, want 00000050", acct.History[0].TargetUID)
	}
	if acct.History[49].TargetUID != "00000001" {
		t.Fatalf("oldest kept entry = %q, want 00000001", acct.History[49].TargetUID)
	}
	for _, e := range acct.History {
		if e.TargetUID == "00000000" {
			t.Fatalf("oldest original entry was not evicted")
		}
	}
}
