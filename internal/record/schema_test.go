package record

import (
	"testing"

	"github.com/franz/rstream/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnDefinitions(t *testing.T) {
	d := MustDescriptor(
		F("id", Text()),
		F("title", Text()),
		F("size", Int(64)),
		F("year", Optional(Uint(16))),
		F("genre", Optional(Text())),
	)

	cols := ColumnDefinitions(d)
	require.Len(t, cols, 5)

	assert.Equal(t, Column{Name: "id", SQLType: "TEXT NOT NULL", PrimaryKey: true}, cols[0])
	assert.Equal(t, Column{Name: "title", SQLType: "TEXT NOT NULL"}, cols[1])
	assert.Equal(t, Column{Name: "size", SQLType: "INTEGER NOT NULL"}, cols[2])
	assert.Equal(t, Column{Name: "year", SQLType: "INTEGER"}, cols[3])
	assert.Equal(t, Column{Name: "genre", SQLType: "TEXT"}, cols[4])
}

func TestCreateTableSQL(t *testing.T) {
	d := MustDescriptor(F("title", Text()), F("id", Text()), F("track", Optional(Uint(8))))

	got, err := CreateTableSQL("songs", d)
	require.NoError(t, err)
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS songs (title TEXT NOT NULL, id TEXT NOT NULL PRIMARY KEY, track INTEGER);",
		got)

	_, err = CreateTableSQL("songs; DROP TABLE x", d)
	assert.Error(t, err)
}

func TestNewDescriptorRejectsUnsupportedTypes(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
	}{
		{"no fields", nil},
		{"missing id", []Field{F("title", Text())}},
		{"id not text", []Field{F("id", Int(64))}},
		{"optional id", []Field{F("id", Optional(Text()))}},
		{"128-bit integer", []Field{F("id", Text()), F("n", Int(128))}},
		{"zero width", []Field{F("id", Text()), F("n", Uint(0))}},
		{"unsigned 64-bit integer", []Field{F("id", Text()), F("n", Uint(64))}},
		{"optional unsigned 64-bit integer", []Field{F("id", Text()), F("n", Optional(Uint(64)))}},
		{"nested optional", []Field{F("id", Text()), F("n", Optional(Optional(Int(8))))}},
		{"zero type", []Field{F("id", Text()), F("blob", Type{})}},
		{"bad name", []Field{F("id", Text()), F("bad name", Text())}},
		{"duplicate", []Field{F("id", Text()), F("a", Text()), F("a", Int(8))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDescriptor(tt.fields...)
			assert.ErrorIs(t, err, util.ErrSchema)
		})
	}
}

func TestMustDescriptorPanicsAtDefinition(t *testing.T) {
	assert.Panics(t, func() {
		MustDescriptor(F("id", Text()), F("cover", Type{}))
	})
}

func TestDescriptorPreservesOrder(t *testing.T) {
	d := MustDescriptor(F("id", Text()), F("b", Text()), F("a", Int(8)))
	assert.Equal(t, []string{"id", "b", "a"}, d.Names())
	assert.Equal(t, 3, d.Len())

	f, ok := d.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "i8", f.Type.String())

	_, ok = d.Lookup("missing")
	assert.False(t, ok)
}

func TestRecordSetChecksTypes(t *testing.T) {
	d := MustDescriptor(F("id", Text()), F("year", Optional(Uint(16))), F("size", Int(64)))
	r := New(d)

	assert.Equal(t, "", r.ID())
	year, _ := r.Get("year")
	assert.True(t, year.IsNull())
	size, _ := r.Get("size")
	n, ok := size.Int()
	assert.True(t, ok)
	assert.Zero(t, n)

	require.NoError(t, r.Set("year", UintValue(1999)))
	require.NoError(t, r.Set("year", Null()))
	assert.Error(t, r.Set("size", Null()))
	assert.Error(t, r.Set("size", UintValue(1)))
	assert.Error(t, r.Set("nope", IntValue(1)))
}
