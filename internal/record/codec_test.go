package record

import (
	"errors"
	"strings"
	"testing"

	"github.com/franz/rstream/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stored mimics what the database hands back for a literal: bare NULL is a
// SQL NULL (the executor drops the column), quoted text loses its quoting.
func stored(lit string) (string, bool) {
	if lit == NullLiteral {
		return "", false
	}
	if strings.HasPrefix(lit, "'") && strings.HasSuffix(lit, "'") {
		return strings.ReplaceAll(lit[1:len(lit)-1], "''", "'"), true
	}
	return lit, true
}

func roundTrip(t *testing.T, typ Type, v Value) Value {
	t.Helper()
	d := MustDescriptor(F("id", Text()), F("v", typ))
	r := New(d)
	require.NoError(t, r.Set("id", TextValue("x")))
	require.NoError(t, r.Set("v", v))

	lit, err := Encode(r, "v")
	require.NoError(t, err)

	row := RawRow{"id": "x"}
	if text, ok := stored(lit); ok {
		row["v"] = text
	}
	out, err := Decode(row, d)
	require.NoError(t, err)
	got, _ := out.Get("v")
	return got
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		v    Value
	}{
		{"i8 min", Int(8), IntValue(-128)},
		{"i16", Int(16), IntValue(-1234)},
		{"i32", Int(32), IntValue(2147483647)},
		{"i64", Int(64), IntValue(-9223372036854775808)},
		{"u8 max", Uint(8), UintValue(255)},
		{"u16", Uint(16), UintValue(1999)},
		{"u32", Uint(32), UintValue(4294967295)},
		{"text", Text(), TextValue("Song A")},
		{"text with quotes", Text(), TextValue(`it's "live"`)},
		{"empty text", Text(), TextValue("")},
		{"unicode text", Text(), TextValue("Sigur Rós – Hoppípolla")},
		{"optional int present", Optional(Int(32)), IntValue(7)},
		{"optional int absent", Optional(Int(32)), Null()},
		{"optional uint present", Optional(Uint(16)), UintValue(2004)},
		{"optional text present", Optional(Text()), TextValue("Ambient")},
		{"optional text absent", Optional(Text()), Null()},
		{"optional text lowercase null", Optional(Text()), TextValue("null")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.v, roundTrip(t, tt.typ, tt.v))
		})
	}
}

func TestOptionalTextNULLDecodesAsAbsent(t *testing.T) {
	// The literal string "NULL" cannot be told apart from an absent value.
	got := roundTrip(t, Optional(Text()), TextValue("NULL"))
	assert.True(t, got.IsNull())
}

func TestNonOptionalTextKeepsNULLString(t *testing.T) {
	got := roundTrip(t, Text(), TextValue("NULL"))
	s, ok := got.Text()
	require.True(t, ok)
	assert.Equal(t, "NULL", s)
}

func TestEncodeValueLiterals(t *testing.T) {
	tests := []struct {
		typ  Type
		v    Value
		want string
	}{
		{Int(32), IntValue(-5), "-5"},
		{Uint(32), UintValue(4294967295), "4294967295"},
		{Text(), TextValue("plain"), "'plain'"},
		{Text(), TextValue("O'Brien"), "'O''Brien'"},
		{Text(), TextValue(`say "hi"`), `'say "hi"'`},
		{Text(), TextValue("a\x00b\nc\td"), "'abcd'"},
		{Optional(Int(16)), Null(), "NULL"},
		{Optional(Int(16)), IntValue(3), "3"},
		{Optional(Text()), Null(), "NULL"},
		{Optional(Text()), TextValue("x"), "'x'"},
	}

	for _, tt := range tests {
		got, err := EncodeValue(tt.typ, tt.v)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "EncodeValue(%s, %s)", tt.typ, tt.v)
	}
}

func TestEncodeValueRejectsNonConformingValues(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		v    Value
	}{
		{"null for required", Text(), Null()},
		{"text for int", Int(32), TextValue("1")},
		{"int for uint", Uint(32), IntValue(1)},
		{"i8 overflow", Int(8), IntValue(128)},
		{"i8 underflow", Int(8), IntValue(-129)},
		{"u8 overflow", Uint(8), UintValue(256)},
		{"u16 overflow", Optional(Uint(16)), UintValue(70000)},
		{"u64 field", Uint(64), UintValue(42)},
		{"u64 field above int64", Uint(64), UintValue(18446744073709551615)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeValue(tt.typ, tt.v)
			assert.ErrorIs(t, err, util.ErrSchema)
		})
	}
}

func TestDecodeMissingColumn(t *testing.T) {
	d := MustDescriptor(F("id", Text()), F("title", Text()), F("year", Optional(Uint(16))))

	_, err := Decode(RawRow{"id": "abc"}, d)
	require.Error(t, err)

	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "title", missing.Column)
	assert.ErrorIs(t, err, util.ErrDecode)
}

func TestDecodeOptionalMissingColumnIsAbsent(t *testing.T) {
	d := MustDescriptor(F("id", Text()), F("year", Optional(Uint(16))))

	r, err := Decode(RawRow{"id": "abc"}, d)
	require.NoError(t, err)

	year, ok := r.Get("year")
	require.True(t, ok)
	assert.True(t, year.IsNull())
}

func TestDecodeParseError(t *testing.T) {
	d := MustDescriptor(F("id", Text()), F("track", Uint(8)))

	tests := []string{"abc", "-1", "256", "1.5", ""}
	for _, text := range tests {
		_, err := Decode(RawRow{"id": "x", "track": text}, d)
		var perr *ParseError
		require.True(t, errors.As(err, &perr), "text %q", text)
		assert.Equal(t, "track", perr.Column)
		assert.ErrorIs(t, err, util.ErrDecode)
	}
}

func TestDecodeRequiredIntegerRejectsNULLLiteral(t *testing.T) {
	d := MustDescriptor(F("id", Text()), F("size", Int(64)))

	_, err := Decode(RawRow{"id": "x", "size": "NULL"}, d)
	assert.ErrorIs(t, err, util.ErrDecode)
}

func TestStripControl(t *testing.T) {
	assert.Equal(t, "Title", StripControl("Ti\x00tle\x1f"))
	assert.Equal(t, "unchanged ✓", StripControl("unchanged ✓"))
	assert.Equal(t, "keeps\x7f", StripControl("keeps\x7f"))
}
