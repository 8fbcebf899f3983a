package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/franz/rstream/internal/record"
	"github.com/franz/rstream/internal/util"
)

// Get loads the record with the given id. A missing row is reported as
// found == false, not as an error; a row that fails to decode is an error.
func Get(ctx context.Context, q Querier, table string, d *record.Descriptor, id string) (*record.Record, bool, error) {
	if !record.ValidIdentifier(table) {
		return nil, false, fmt.Errorf("%w: invalid table name %q", util.ErrSchema, table)
	}

	query, args, err := squirrel.Select("*").From(table).
		Where(squirrel.Expr(record.IDField + " = " + record.QuoteText(id))).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", util.ErrQuery, err)
	}

	rows, err := q.Execute(ctx, query, args...)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	rec, err := record.Decode(rows[0], d)
	if err != nil {
		return nil, false, fmt.Errorf("%s %s: %w", table, id, err)
	}
	return rec, true, nil
}

// GetAllWithPagination returns the records of table in the engine's native
// order, restricted to the window of page and perPage. Rows that fail to
// decode are logged and skipped.
func GetAllWithPagination(ctx context.Context, q Querier, table string, d *record.Descriptor, page, perPage *uint32) ([]*record.Record, error) {
	if !record.ValidIdentifier(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", util.ErrSchema, table)
	}

	w := NewWindow(page, perPage)
	if w.OutOfRange() {
		return []*record.Record{}, nil
	}

	sel := squirrel.Select("*").From(table)
	if w.Bounded() {
		sel = sel.Limit(w.Limit).Offset(w.Offset)
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrQuery, err)
	}

	rows, err := q.Execute(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return DecodeAll(rows, d), nil
}

// GetAll returns every record of table
func GetAll(ctx context.Context, q Querier, table string, d *record.Descriptor) ([]*record.Record, error) {
	return GetAllWithPagination(ctx, q, table, d, nil, nil)
}

// DecodeAll decodes rows, dropping the ones that do not fit d
func DecodeAll(rows []record.RawRow, d *record.Descriptor) []*record.Record {
	out := make([]*record.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := record.Decode(row, d)
		if err != nil {
			util.WarnLog("Skipping undecodable row %q: %v", row[record.IDField], err)
			continue
		}
		out = append(out, rec)
	}
	return out
}
