package db

import (
	"context"
	"database/sql"
	"errors"
)

// MakeTx opens a transaction and returns queries prepared on it. discard
// rolls back (a no-op after commit) and releases the statements.
type MakeTx = func(ctx context.Context) (tx *Queries, discard, commit func() error, err error)

func NewMakeTx(dbtx *sql.DB) MakeTx {
	return func(ctx context.Context) (tx *Queries, discard, commit func() error, err error) {
		sqltx, err := dbtx.BeginTx(ctx, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		txqry, err := Prepare(ctx, sqltx)
		if err != nil {
			return nil, nil, nil, errors.Join(err, sqltx.Rollback())
		}
		return txqry,
			func() error {
				err := txqry.Close()
				rollbackErr := sqltx.Rollback()
				if errors.Is(rollbackErr, sql.ErrTxDone) {
					rollbackErr = nil
				}
				return errors.Join(err, rollbackErr)
			},
			func() error {
				return sqltx.Commit()
			},
			nil
	}
}
