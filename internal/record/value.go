package record

import (
	"fmt"
	"math"
	"strconv"

	"github.com/franz/rstream/internal/util"
)

// Value is one typed field value. The zero Value is absent.
type Value struct {
	kind Kind
	i    int64
	u    uint64
	s    string
}

// Null returns the absent value, valid only for optional fields.
func Null() Value { return Value{} }

// IntValue wraps a signed integer.
func IntValue(v int64) Value { return Value{kind: KindSignedInt, i: v} }

// UintValue wraps an unsigned integer.
func UintValue(v uint64) Value { return Value{kind: KindUnsignedInt, u: v} }

// TextValue wraps a string.
func TextValue(v string) Value { return Value{kind: KindText, s: v} }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.kind == KindInvalid }

// Int returns the signed integer held by v.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindSignedInt }

// Uint returns the unsigned integer held by v.
func (v Value) Uint() (uint64, bool) { return v.u, v.kind == KindUnsignedInt }

// Text returns the string held by v.
func (v Value) Text() (string, bool) { return v.s, v.kind == KindText }

func (v Value) String() string {
	switch v.kind {
	case KindSignedInt:
		return strconv.FormatInt(v.i, 10)
	case KindUnsignedInt:
		return strconv.FormatUint(v.u, 10)
	case KindText:
		return strconv.Quote(v.s)
	default:
		return "<absent>"
	}
}

// zeroValue is what a freshly built record holds for a field of type t.
func zeroValue(t Type) Value {
	switch t.Kind() {
	case KindSignedInt:
		return IntValue(0)
	case KindUnsignedInt:
		return UintValue(0)
	case KindText:
		return TextValue("")
	default:
		return Null()
	}
}

// conforms checks that v can be stored in a field of type t.
func conforms(t Type, v Value) error {
	if err := t.validate(); err != nil {
		return err
	}
	if v.IsNull() {
		if t.IsOptional() {
			return nil
		}
		return fmt.Errorf("%w: absent value for non-optional %s", util.ErrSchema, t)
	}

	inner := t.Elem()
	if v.kind != inner.Kind() {
		return fmt.Errorf("%w: %s value for %s field", util.ErrSchema, v.kind, t)
	}

	switch inner.Kind() {
	case KindSignedInt:
		if inner.Width() < 64 {
			limit := int64(1) << (inner.Width() - 1)
			if v.i < -limit || v.i >= limit {
				return fmt.Errorf("%w: %d overflows %s", util.ErrSchema, v.i, inner)
			}
		}
	case KindUnsignedInt:
		if v.u > uint64(math.MaxUint64)>>(64-inner.Width()) {
			return fmt.Errorf("%w: %d overflows %s", util.ErrSchema, v.u, inner)
		}
	}
	return nil
}
