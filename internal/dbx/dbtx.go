// Package dbx holds the small database plumbing the repositories share: the
// DBTX interface, which lets a repository run equally against the pooled
// *sql.DB or a *sql.Tx, and WithTx, which scopes a function to one
// transaction. Registration and password reset use WithTx so their multi-row
// writes commit or roll back as a unit.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the execution surface repositories depend on, satisfied by both
// *sql.DB and *sql.Tx. Services choose which handle to pass, so the same
// repository code serves plain calls and transactional ones.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx opens a transaction, hands its handle to fn, and commits when fn
// returns nil. A non-nil error or a panic rolls the transaction back; the
// panic is re-raised after the rollback.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
