// Package app composes the ledger, the profile lookup and the action
// simulator into the flows the HTTP API and the Telegram bot both
// expose. Handlers stay thin; the spend-before-act sequencing lives
// here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yichu-bro/Myfaff/internal/profile"
	"github.com/Yichu-bro/Myfaff/internal/simulate"
	"github.com/Yichu-bro/Myfaff/internal/store"
	"github.com/Yichu-bro/Myfaff/internal/uid"
)

// HistoryStatus is recorded for every successfully delivered action.
const HistoryStatus = "Sent to Server"

var ErrInvalidUID = errors.New("invalid uid format")

type App struct {
	Store    store.Store
	Profiles profile.Lookup
	Sim      *simulate.Simulator
	Cost     int64
}

type ExecuteOutcome struct {
	Account store.Account
	Message string
	Profile profile.Profile
}

// Account loads (or lazily creates) the ledger entry for a caller.
func (a *App) Account(ctx context.Context, tgID, username string) (store.Account, error) {
	if username == "" {
		username = "Player"
	}
	return a.Store.GetOrCreate(ctx, tgID, username)
}

// CheckProfile validates the UID and fetches the profile. Free: no
// ledger interaction.
func (a *App) CheckProfile(ctx context.Context, targetUID, region string) (profile.Profile, error) {
	if !uid.Valid(targetUID) {
		return profile.Profile{}, ErrInvalidUID
	}
	return a.Profiles.Fetch(ctx, targetUID, region)
}

// Execute runs the paid pipeline: validate, ensure the account exists,
// pre-check funds, confirm the target via the lookup, simulate the
// action, then debit and record in one atomic step. A failure anywhere
// before the final step leaves the ledger untouched; the pre-check is
// only a fast-fail courtesy, the debit itself re-verifies funds.
func (a *App) Execute(ctx context.Context, tgID, username, targetUID, region, action string) (ExecuteOutcome, error) {
	if !uid.Valid(targetUID) {
		return ExecuteOutcome{}, ErrInvalidUID
	}

	acct, err := a.Account(ctx, tgID, username)
	if err != nil {
		return ExecuteOutcome{}, fmt.Errorf("account: %w", err)
	}
	if acct.Coins < a.Cost {
		return ExecuteOutcome{}, store.ErrInsufficientCoins
	}

	prof, err := a.Profiles.Fetch(ctx, targetUID, region)
	if err != nil {
		return ExecuteOutcome{}, err
	}

	res, err := a.Sim.Execute(ctx, targetUID, action)
	if err != nil {
		return ExecuteOutcome{}, err
	}

	acct, err = a.Store.SpendAndRecord(ctx, tgID, a.Cost, targetUID, region, res.Action, HistoryStatus)
	if err != nil {
		return ExecuteOutcome{}, err
	}
	return ExecuteOutcome{Account: acct, Message: res.Message, Profile: prof}, nil
}
