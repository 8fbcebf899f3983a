package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/franz/rstream/internal/util"
)

// NullLiteral is the SQL literal written for absent optionals. On the way back
// an optional column holding exactly this text decodes as absent, so an
// optional text whose real value is "NULL" does not survive a round trip.
const NullLiteral = "NULL"

// MissingColumnError reports a non-optional field whose column is not in the row.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}

func (e *MissingColumnError) Unwrap() error { return util.ErrDecode }

// ParseError reports column text that does not parse as the declared type.
type ParseError struct {
	Column string
	Type   Type
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("column %q: cannot parse %q as %s: %v", e.Column, e.Text, e.Type, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{util.ErrDecode, e.Err} }

// Encode renders the named field of r as an SQL literal.
func Encode(r *Record, field string) (string, error) {
	f, ok := r.desc.Lookup(field)
	if !ok {
		return "", fmt.Errorf("unknown field %q", field)
	}
	v, _ := r.Get(field)
	lit, err := EncodeValue(f.Type, v)
	if err != nil {
		return "", fmt.Errorf("field %q: %w", field, err)
	}
	return lit, nil
}

// EncodeValue renders v as an SQL literal for a field of type t: integers as
// bare decimals, text quoted and escaped, absent optionals as NULL.
func EncodeValue(t Type, v Value) (string, error) {
	if err := conforms(t, v); err != nil {
		return "", err
	}
	if v.IsNull() {
		return NullLiteral, nil
	}

	switch t.Elem().Kind() {
	case KindSignedInt:
		return strconv.FormatInt(v.i, 10), nil
	case KindUnsignedInt:
		return strconv.FormatUint(v.u, 10), nil
	case KindText:
		return QuoteText(v.s), nil
	}
	return "", fmt.Errorf("%w: cannot encode %s", util.ErrSchema, t)
}

// QuoteText strips control characters from s and returns it as a SQL string
// literal: single-quoted, with embedded single quotes doubled. SQLite reads a
// double-quoted token as an identifier first, so `"title"` would name the
// title column rather than spell a string. Double quotes inside s are kept
// verbatim.
func QuoteText(s string) string {
	s = StripControl(s)
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// StripControl removes every code point below 0x20.
func StripControl(s string) string {
	if strings.IndexFunc(s, isControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isControl(r) {
			return -1
		}
		return r
	}, s)
}

func isControl(r rune) bool { return r < 0x20 }

// Decode builds a typed record from a raw row. Non-optional fields must be
// present and parse as their declared type. Optional fields decode as absent
// when the column is missing or holds the NULL literal.
func Decode(row RawRow, d *Descriptor) (*Record, error) {
	r := &Record{desc: d, values: make([]Value, len(d.fields))}
	for i, f := range d.fields {
		text, present := row[f.Name]

		if f.Type.IsOptional() && (!present || text == NullLiteral) {
			r.values[i] = Null()
			continue
		}
		if !present {
			return nil, &MissingColumnError{Column: f.Name}
		}

		v, err := parseValue(f.Type.Elem(), text)
		if err != nil {
			return nil, &ParseError{Column: f.Name, Type: f.Type, Text: text, Err: err}
		}
		r.values[i] = v
	}
	return r, nil
}

func parseValue(t Type, text string) (Value, error) {
	switch t.Kind() {
	case KindSignedInt:
		n, err := strconv.ParseInt(text, 10, t.Width())
		if err != nil {
			return Value{}, err
		}
		return IntValue(n), nil
	case KindUnsignedInt:
		n, err := strconv.ParseUint(text, 10, t.Width())
		if err != nil {
			return Value{}, err
		}
		return UintValue(n), nil
	case KindText:
		return TextValue(text), nil
	}
	return Value{}, fmt.Errorf("unsupported type %s", t)
}
