package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/franz/rstream/internal/record"
	"github.com/franz/rstream/internal/util"
)

// Tx is a write transaction. It holds the store's write lock from Begin
// until Commit or Rollback, so only one writer is ever active.
type Tx struct {
	tx    *sqlx.Tx
	store *Store
	done  bool
}

// Begin starts a write transaction, waiting for any other writer to finish
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	s.writeMu.Lock()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.writeMu.Unlock()
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", util.ErrConnection, err)
	}
	return &Tx{tx: tx, store: s}, nil
}

// Commit makes every write of the transaction durable
func (t *Tx) Commit() error {
	if t.done {
		return nil
	}
	defer t.release()
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %w", util.ErrQuery, err)
	}
	return nil
}

// Rollback discards the transaction. Calling it after Commit is a no-op.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	defer t.release()
	return t.tx.Rollback()
}

func (t *Tx) release() {
	t.done = true
	t.store.writeMu.Unlock()
}

// Query steps through the rows of a query run inside the transaction
func (t *Tx) Query(ctx context.Context, query string, args ...any) (*Cursor, error) {
	return openCursor(ctx, t.tx, query, args...)
}

// Execute runs a query inside the transaction and returns every row
func (t *Tx) Execute(ctx context.Context, query string, args ...any) ([]record.RawRow, error) {
	return execute(ctx, t.tx, query, args...)
}

// CreateTable creates the table inside the transaction if it is absent
func (t *Tx) CreateTable(ctx context.Context, table string, d *record.Descriptor) error {
	return createTable(ctx, t.tx, table, d)
}

// Upsert inserts or updates rec inside the transaction
func (t *Tx) Upsert(ctx context.Context, table string, rec *record.Record) (Outcome, error) {
	return upsert(ctx, t.tx, table, rec)
}

// Transaction executes a function within a transaction
func (s *Store) Transaction(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
