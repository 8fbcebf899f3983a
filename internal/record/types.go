package record

import (
	"fmt"

	"github.com/franz/rstream/internal/util"
)

// Kind is the closed set of semantic field types a record may declare.
type Kind int

const (
	KindInvalid Kind = iota
	KindSignedInt
	KindUnsignedInt
	KindText
	KindOptional
)

func (k Kind) String() string {
	switch k {
	case KindSignedInt:
		return "int"
	case KindUnsignedInt:
		return "uint"
	case KindText:
		return "text"
	case KindOptional:
		return "optional"
	default:
		return "invalid"
	}
}

// Type is a semantic field type. Integers carry a bit width, Optional wraps
// exactly one non-optional inner type.
type Type struct {
	kind  Kind
	width int
	elem  *Type
}

// Int returns a signed integer type of the given bit width (8, 16, 32 or 64).
func Int(width int) Type { return Type{kind: KindSignedInt, width: width} }

// Uint returns an unsigned integer type of the given bit width (8, 16 or 32).
// SQLite integers are signed 64-bit, so Uint(64) is rejected as a field type.
func Uint(width int) Type { return Type{kind: KindUnsignedInt, width: width} }

// Text returns the text type.
func Text() Type { return Type{kind: KindText} }

// Optional wraps inner so that a value may be absent.
func Optional(inner Type) Type {
	elem := inner
	return Type{kind: KindOptional, elem: &elem}
}

// Kind reports the outer kind of t.
func (t Type) Kind() Kind { return t.kind }

// Width reports the bit width of an integer type, or 0.
func (t Type) Width() int { return t.width }

// Elem returns the wrapped type of an Optional, or t itself otherwise.
func (t Type) Elem() Type {
	if t.kind == KindOptional && t.elem != nil {
		return *t.elem
	}
	return t
}

// IsOptional reports whether values of t may be absent.
func (t Type) IsOptional() bool { return t.kind == KindOptional }

// IsInteger reports whether t (or the type it wraps) is an integer.
func (t Type) IsInteger() bool {
	k := t.Elem().kind
	return k == KindSignedInt || k == KindUnsignedInt
}

func (t Type) String() string {
	switch t.kind {
	case KindSignedInt:
		return fmt.Sprintf("i%d", t.width)
	case KindUnsignedInt:
		return fmt.Sprintf("u%d", t.width)
	case KindText:
		return "text"
	case KindOptional:
		if t.elem == nil {
			return "optional<?>"
		}
		return fmt.Sprintf("optional<%s>", t.elem.String())
	default:
		return "invalid"
	}
}

// validate rejects anything outside the closed set: unknown kinds, odd
// integer widths, and optionals that wrap nothing or another optional.
func (t Type) validate() error {
	switch t.kind {
	case KindSignedInt:
		switch t.width {
		case 8, 16, 32, 64:
			return nil
		}
		return fmt.Errorf("%w: unsupported integer width %d", util.ErrSchema, t.width)
	case KindUnsignedInt:
		switch t.width {
		case 8, 16, 32:
			return nil
		case 64:
			return fmt.Errorf("%w: u64 does not fit a signed 64-bit SQLite integer", util.ErrSchema)
		}
		return fmt.Errorf("%w: unsupported integer width %d", util.ErrSchema, t.width)
	case KindText:
		return nil
	case KindOptional:
		if t.elem == nil {
			return fmt.Errorf("%w: optional without inner type", util.ErrSchema)
		}
		if t.elem.kind == KindOptional {
			return fmt.Errorf("%w: nested optional %s", util.ErrSchema, t)
		}
		return t.elem.validate()
	default:
		return fmt.Errorf("%w: unknown field type", util.ErrSchema)
	}
}
