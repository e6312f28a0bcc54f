package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var Schema string

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Prepare returns queries whose upserts run through statements prepared once
// on `db`. Close releases them.
func Prepare(ctx context.Context, db DBTX) (*Queries, error) {
	q := Queries{db: db}
	var err error
	if q.upsertArtistStmt, err = db.PrepareContext(ctx, upsertArtist); err != nil {
		return nil, errors.Join(fmt.Errorf("error preparing query UpsertArtist: %w", err), q.Close())
	}
	if q.upsertEventStmt, err = db.PrepareContext(ctx, upsertEvent); err != nil {
		return nil, errors.Join(fmt.Errorf("error preparing query UpsertEvent: %w", err), q.Close())
	}
	if q.upsertPriceSnapshotStmt, err = db.PrepareContext(ctx, upsertPriceSnapshot); err != nil {
		return nil, errors.Join(fmt.Errorf("error preparing query UpsertPriceSnapshot: %w", err), q.Close())
	}
	if q.upsertVenueStmt, err = db.PrepareContext(ctx, upsertVenue); err != nil {
		return nil, errors.Join(fmt.Errorf("error preparing query UpsertVenue: %w", err), q.Close())
	}
	return &q, nil
}

func (q *Queries) Close() error {
	var errlist []error
	for name, stmt := range map[string]*sql.Stmt{
		"UpsertArtist":        q.upsertArtistStmt,
		"UpsertEvent":         q.upsertEventStmt,
		"UpsertPriceSnapshot": q.upsertPriceSnapshotStmt,
		"UpsertVenue":         q.upsertVenueStmt,
	} {
		if stmt == nil {
			continue
		}
		if err := stmt.Close(); err != nil {
			errlist = append(errlist, fmt.Errorf("error closing %s: %w", name, err))
		}
	}
	return errors.Join(errlist...)
}

func (q *Queries) exec(ctx context.Context, stmt *sql.Stmt, query string, args ...interface{}) (sql.Result, error) {
	switch {
	case stmt != nil && q.tx != nil:
		return q.tx.StmtContext(ctx, stmt).ExecContext(ctx, args...)
	case stmt != nil:
		return stmt.ExecContext(ctx, args...)
	default:
		return q.db.ExecContext(ctx, query, args...)
	}
}

type Queries struct {
	db                      DBTX
	tx                      *sql.Tx
	upsertArtistStmt        *sql.Stmt
	upsertEventStmt         *sql.Stmt
	upsertPriceSnapshotStmt *sql.Stmt
	upsertVenueStmt         *sql.Stmt
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db:                      tx,
		tx:                      tx,
		upsertArtistStmt:        q.upsertArtistStmt,
		upsertEventStmt:         q.upsertEventStmt,
		upsertPriceSnapshotStmt: q.upsertPriceSnapshotStmt,
		upsertVenueStmt:         q.upsertVenueStmt,
	}
}
