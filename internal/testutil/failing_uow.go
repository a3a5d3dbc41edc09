package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/akarolczak/critpath/internal/db"
)

// FaultyUoW runs real transactions against DB but poisons the TripOn-th
// write: that ExecContext call returns Err instead of reaching SQLite.
// Reads pass through untouched, and writes are counted 1-based across
// all transactions the instance runs. Rollback tests use it to abort
// recompute or import persistence partway through and then check that
// nothing of the transaction survived.
type FaultyUoW struct {
	DB     *sql.DB
	TripOn int32
	Err    error

	writes atomic.Int32
}

// Tripped reports whether the poisoned write was actually reached. Tests
// assert it so a pass can't be vacuous: if the operation errors out before
// write TripOn for some unrelated reason, Tripped stays false.
func (u *FaultyUoW) Tripped() bool {
	return u.writes.Load() >= u.TripOn
}

func (u *FaultyUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if fnErr := fn(ctx, &trippingTx{DBTX: tx, uow: u}); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type trippingTx struct {
	db.DBTX
	uow *FaultyUoW
}

func (t *trippingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if t.uow.writes.Add(1) == t.uow.TripOn {
		return nil, t.uow.Err
	}
	return t.DBTX.ExecContext(ctx, query, args...)
}
