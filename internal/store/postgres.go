package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the production ledger backend. The no-negative-balance
// invariant is enforced in SQL: the debit is a conditional UPDATE
// guarded by coins >= cost, and account creation is an
// insert-if-absent on the primary key, so two racing requests can
// never both win.
type Postgres struct {
	Pool *pgxpool.Pool
	opts Options
}

func OpenPostgres(ctx context.Context, databaseURL string, opts Options) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgx pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgx ping: %w", err)
	}
	return &Postgres{Pool: pool, opts: opts.withDefaults()}, nil
}

func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS accounts (
	tg_id      TEXT PRIMARY KEY,
	username   TEXT NOT NULL DEFAULT '',
	coins      BIGINT NOT NULL,
	region     TEXT NOT NULL,
	saved_uid  TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT coins_non_negative CHECK (coins >= 0)
);
CREATE TABLE IF NOT EXISTS account_history (
	id         BIGSERIAL PRIMARY KEY,
	tg_id      TEXT NOT NULL REFERENCES accounts(tg_id),
	action     TEXT NOT NULL,
	target_uid TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS account_history_tg_id_id ON account_history (tg_id, id DESC);
`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (p *Postgres) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Postgres) GetOrCreate(ctx context.Context, tgID, username string) (Account, error) {
	_, err := p.Pool.Exec(ctx, `
INSERT INTO accounts (tg_id, username, coins, region)
VALUES ($1, $2, $3, $4)
ON CONFLICT (tg_id) DO NOTHING
`, tgID, username, p.opts.StartingCoins, p.opts.DefaultRegion)
	if err != nil {
		return Account{}, fmt.Errorf("ensure account: %w", err)
	}
	return p.load(ctx, tgID)
}

func (p *Postgres) SpendAndRecord(ctx context.Context, tgID string, cost int64, targetUID, region, action, status string) (Account, error) {
	err := p.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE accounts
SET coins = coins - $2,
    saved_uid = $3,
    region = CASE WHEN $4 = '' THEN region ELSE $4 END
WHERE tg_id = $1 AND coins >= $2
`, tgID, cost, targetUID, region)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE tg_id=$1)`, tgID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrInsufficientCoins
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO account_history (tg_id, action, target_uid, status)
VALUES ($1, $2, $3, $4)
`, tgID, action, targetUID, status); err != nil {
			return err
		}

		// Keep only the newest entries.
		_, err = tx.Exec(ctx, `
DELETE FROM account_history
WHERE tg_id = $1 AND id NOT IN (
	SELECT id FROM account_history WHERE tg_id = $1 ORDER BY id DESC LIMIT $2
)
`, tgID, p.opts.HistoryLimit)
		return err
	})
	if err != nil {
		return Account{}, err
	}
	return p.load(ctx, tgID)
}

func (p *Postgres) load(ctx context.Context, tgID string) (Account, error) {
	var acct Account
	err := p.Pool.QueryRow(ctx, `
SELECT tg_id, username, coins, region, saved_uid, created_at
FROM accounts WHERE tg_id = $1
`, tgID).Scan(&acct.TgID, &acct.Username, &acct.Coins, &acct.Region, &acct.SavedUID, &acct.CreatedAt)
	if err == pgx.ErrNoRows {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("load account: %w", err)
	}

	rows, err := p.Pool.Query(ctx, `
SELECT action, target_uid, status, created_at
FROM account_history
WHERE tg_id = $1
ORDER BY id DESC
LIMIT $2
`, tgID, p.opts.HistoryLimit)
	if err != nil {
		return Account{}, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	acct.History = []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Action, &e.TargetUID, &e.Status, &e.Timestamp); err != nil {
			return Account{}, fmt.Errorf("scan history: %w", err)
		}
		acct.History = append(acct.History, e)
	}
	if err := rows.Err(); err != nil {
		return Account{}, fmt.Errorf("load history: %w", err)
	}
	return acct, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	var one int
	if err := p.Pool.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return err
	}
	return nil
}

func (p *Postgres) Close() {
	p.Pool.Close()
}
