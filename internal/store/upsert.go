package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/franz/rstream/internal/record"
	"github.com/franz/rstream/internal/util"
)

// Outcome tells which statement an upsert issued
type Outcome int

const (
	Inserted Outcome = iota + 1
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// CreateTable creates the table for d unless one of that name exists.
// An existing table is left untouched even if its columns differ.
func (s *Store) CreateTable(ctx context.Context, table string, d *record.Descriptor) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return createTable(ctx, s.db, table, d)
}

// Upsert stores rec in table, inserting it when no row carries its id and
// updating every other column otherwise. The existence check and the write
// are separate statements; callers must not run two writers on one table.
func (s *Store) Upsert(ctx context.Context, table string, rec *record.Record) (Outcome, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return upsert(ctx, s.db, table, rec)
}

func createTable(ctx context.Context, h handle, table string, d *record.Descriptor) error {
	stmt, err := record.CreateTableSQL(table, d)
	if err != nil {
		return err
	}
	if _, err := h.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%w: create table %s: %w", util.ErrQuery, table, err)
	}
	return nil
}

func upsert(ctx context.Context, h handle, table string, rec *record.Record) (Outcome, error) {
	if !record.ValidIdentifier(table) {
		return 0, fmt.Errorf("%w: invalid table name %q", util.ErrSchema, table)
	}

	idLit, err := record.Encode(rec, record.IDField)
	if err != nil {
		return 0, err
	}
	byID := squirrel.Expr(record.IDField + " = " + idLit)

	exists, err := rowExists(ctx, h, table, byID)
	if err != nil {
		return 0, err
	}

	if exists {
		update := squirrel.Update(table).Where(byID)
		set := 0
		for _, f := range rec.Descriptor().Fields() {
			if f.Name == record.IDField {
				continue
			}
			lit, err := record.Encode(rec, f.Name)
			if err != nil {
				return 0, err
			}
			update = update.Set(f.Name, squirrel.Expr(lit))
			set++
		}
		if set == 0 {
			// only an id column, nothing to rewrite
			return Updated, nil
		}
		if err := run(ctx, h, update); err != nil {
			return 0, err
		}
		return Updated, nil
	}

	names := rec.Descriptor().Names()
	values := make([]any, 0, len(names))
	for _, name := range names {
		lit, err := record.Encode(rec, name)
		if err != nil {
			return 0, err
		}
		values = append(values, squirrel.Expr(lit))
	}
	insert := squirrel.Insert(table).Columns(names...).Values(values...)
	if err := run(ctx, h, insert); err != nil {
		return 0, err
	}
	return Inserted, nil
}

func rowExists(ctx context.Context, h handle, table string, where squirrel.Sqlizer) (bool, error) {
	query, args, err := squirrel.Select(record.IDField).From(table).Where(where).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: %w", util.ErrQuery, err)
	}

	cur, err := openCursor(ctx, h, query, args...)
	if err != nil {
		return false, err
	}
	defer cur.Close()

	found := cur.Next()
	if err := cur.Err(); err != nil {
		return false, err
	}
	return found, nil
}

func run(ctx context.Context, h handle, b squirrel.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", util.ErrQuery, err)
	}
	if _, err := h.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %q: %w", util.ErrQuery, query, err)
	}
	return nil
}
