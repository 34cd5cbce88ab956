package app

import (
	"context"
	"errors"
	"testing"

	"github.com/Yichu-bro/Myfaff/internal/profile"
	"github.com/Yichu-bro/Myfaff/internal/simulate"
	"github.com/Yichu-bro/Myfaff/internal/store"
)

func newTestApp(failurePct int64) (*App, *store.Memory) {
	mem := store.NewMemory(store.Options{})
	mock := profile.NewMock()
	mock.MinDelay = 0
	mock.MaxDelay = 0
	sim := simulate.New(failurePct)
	sim.MinDelay = 0
	sim.MaxDelay = 0
	return &App{Store: mem, Profiles: mock, Sim: sim, Cost: 5}, mem
}

func TestExecuteDebitsOnceOnSuccess(t *testing.T) {
	a, _ := newTestApp(0)
	out, err := a.Execute(context.Background(), "1", "tester", "12345678", "IND", "visit")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.Account.Coins != 45 {
		t.Fatalf("coins = %d, want 45", out.Account.Coins)
	}
	if out.Message != "VISIT Request Sent!" {
		t.Fatalf("message = %q", out.Message)
	}
	if len(out.Account.History) != 1 || out.Account.History[0].Action != "VISIT" {
		t.Fatalf("history: %+v", out.Account.History)
	}
}

func TestExecuteSimulatorFailureDoesNotDebit(t *testing.T) {
	a, mem := newTestApp(100)
	_, err := a.Execute(context.Background(), "1", "tester", "12345678", "IND", "LIKE")
	if !errors.Is(err, simulate.ErrTargetBusy) {
		t.Fatalf("err = %v, want ErrTargetBusy", err)
	}
	acct, _ := mem.GetOrCreate(context.Background(), "1", "tester")
	if acct.Coins != 50 || len(acct.History) != 0 {
		t.Fatalf("failed simulation mutated the ledger: %+v", acct)
	}
}

func TestExecuteInvalidUIDSkipsEverything(t *testing.T) {
	a, mem := newTestApp(0)
	_, err := a.Execute(context.Background(), "1", "tester", "123", "IND", "LIKE")
	if !errors.Is(err, ErrInvalidUID) {
		t.Fatalf("err = %v, want ErrInvalidUID", err)
	}
	// Invalid UID fails before the account is even touched.
	acct, _ := mem.GetOrCreate(context.Background(), "1", "tester")
	if len(acct.History) != 0 || acct.Coins != 50 {
		t.Fatalf("account touched: %+v", acct)
	}
}

func TestExecuteExactBalanceSucceedsThenRefuses(t *testing.T) {
	a, mem := newTestApp(0)
	if _, err := mem.GetOrCreate(context.Background(), "1", "tester"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := a.Execute(context.Background(), "1", "tester", "12345678", "IND", "LIKE"); err != nil {
			t.Fatalf("execute %d: %v", i, err)
		}
	}
	if _, err := a.Execute(context.Background(), "1", "tester", "12345678", "IND", "LIKE"); !errors.Is(err, store.ErrInsufficientCoins) {
		t.Fatalf("err = %v, want ErrInsufficientCoins", err)
	}
	acct, _ := mem.GetOrCreate(context.Background(), "1", "tester")
	if acct.Coins != 0 {
		t.Fatalf("coins = %d, want 0", acct.Coins)
	}
}

func TestCheckProfileValidatesFirst(t *testing.T) {
	a, _ := newTestApp(0)
	if _, err := a.CheckProfile(context.Background(), "12ab", "IND"); !errors.Is(err, ErrInvalidUID) {
		t.Fatalf("err = %v, want ErrInvalidUID", err)
	}
	prof, err := a.CheckProfile(context.Background(), "12345678", "IND")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if prof.UID != "12345678" {
		t.Fatalf("profile uid = %q", prof.UID)
	}
}
