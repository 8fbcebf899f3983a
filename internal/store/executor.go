package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/franz/rstream/internal/record"
	"github.com/franz/rstream/internal/util"
)

// Querier runs ad hoc SQL and returns the rows as raw rows. Both *Store and
// *Tx implement it, so typed accessors work inside and outside a scan.
type Querier interface {
	Execute(ctx context.Context, query string, args ...any) ([]record.RawRow, error)
}

// handle is what *sqlx.DB and *sqlx.Tx have in common
type handle interface {
	PreparexContext(ctx context.Context, query string) (*sqlx.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Cursor steps through the result of one query. It cannot be rewound:
// reading the rows again requires issuing the query again.
type Cursor struct {
	stmt *sqlx.Stmt
	rows *sqlx.Rows
	row  record.RawRow
	err  error
}

// Query prepares the statement and starts stepping through its rows.
// The caller must Close the cursor.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*Cursor, error) {
	return openCursor(ctx, s.db, query, args...)
}

// Execute runs the query to completion and returns every row
func (s *Store) Execute(ctx context.Context, query string, args ...any) ([]record.RawRow, error) {
	return execute(ctx, s.db, query, args...)
}

func openCursor(ctx context.Context, h handle, query string, args ...any) (*Cursor, error) {
	stmt, err := h.PreparexContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: prepare %q: %w", util.ErrQuery, query, err)
	}

	rows, err := stmt.QueryxContext(ctx, args...)
	if err != nil {
		stmt.Close()
		return nil, fmt.Errorf("%w: query %q: %w", util.ErrQuery, query, err)
	}

	return &Cursor{stmt: stmt, rows: rows}, nil
}

func execute(ctx context.Context, h handle, query string, args ...any) ([]record.RawRow, error) {
	cur, err := openCursor(ctx, h, query, args...)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	var out []record.RawRow
	for cur.Next() {
		out = append(out, cur.Row())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Next advances to the next row. It returns false when the rows are
// exhausted or a read failed; check Err afterwards.
func (c *Cursor) Next() bool {
	if c.err != nil || c.rows == nil {
		return false
	}
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			c.err = fmt.Errorf("%w: %w", util.ErrQuery, err)
		}
		return false
	}

	values := make(map[string]any)
	if err := c.rows.MapScan(values); err != nil {
		c.err = fmt.Errorf("%w: scan row: %w", util.ErrQuery, err)
		return false
	}

	c.row = make(record.RawRow, len(values))
	for col, v := range values {
		if text, ok := columnText(v); ok {
			c.row[col] = text
		}
	}
	return true
}

// Row returns the current row
func (c *Cursor) Row() record.RawRow {
	return c.row
}

// Err returns the first error met while stepping
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the rows and the prepared statement
func (c *Cursor) Close() error {
	var err error
	if c.rows != nil {
		err = c.rows.Close()
		c.rows = nil
	}
	if c.stmt != nil {
		if cerr := c.stmt.Close(); err == nil {
			err = cerr
		}
		c.stmt = nil
	}
	return err
}

// columnText renders a driver value as text. NULLs and blobs have no text
// form and are left out of the row.
func columnText(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case []byte:
		return "", false
	case string:
		return val, true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), true
	case bool:
		if val {
			return "1", true
		}
		return "0", true
	case time.Time:
		return val.Format(time.RFC3339), true
	default:
		return fmt.Sprint(val), true
	}
}
