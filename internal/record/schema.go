package record

import (
	"fmt"
	"strings"
)

// Column is one compiled column definition.
type Column struct {
	Name       string
	SQLType    string
	PrimaryKey bool
}

// Definition renders the column as it appears inside CREATE TABLE.
func (c Column) Definition() string {
	if c.PrimaryKey {
		return c.Name + " " + c.SQLType + " PRIMARY KEY"
	}
	return c.Name + " " + c.SQLType
}

// SQLType maps a semantic type to its column type. Optionals are nullable,
// everything else is NOT NULL.
func SQLType(t Type) string {
	base := "TEXT"
	if t.IsInteger() {
		base = "INTEGER"
	}
	if t.IsOptional() {
		return base
	}
	return base + " NOT NULL"
}

// ColumnDefinitions compiles d into columns in declaration order. The id
// column is always the primary key.
func ColumnDefinitions(d *Descriptor) []Column {
	cols := make([]Column, len(d.fields))
	for i, f := range d.fields {
		cols[i] = Column{
			Name:       f.Name,
			SQLType:    SQLType(f.Type),
			PrimaryKey: f.Name == IDField,
		}
	}
	return cols
}

// CreateTableSQL returns the idempotent CREATE TABLE statement for d.
func CreateTableSQL(table string, d *Descriptor) (string, error) {
	if !ValidIdentifier(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	cols := ColumnDefinitions(d)
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = c.Definition()
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s);", table, strings.Join(defs, ", ")), nil
}
