package record

import (
	"fmt"
	"regexp"

	"github.com/franz/rstream/internal/util"
)

// IDField is the name of the identity column every descriptor must declare.
const IDField = "id"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Field is one (name, semantic type) pair of a descriptor.
type Field struct {
	Name string
	Type Type
}

// F is shorthand for building a Field.
func F(name string, t Type) Field { return Field{Name: name, Type: t} }

// Descriptor is the ordered, immutable field list of a record type.
// Build one with NewDescriptor or MustDescriptor; the zero value is unusable.
type Descriptor struct {
	fields []Field
	index  map[string]int
}

// NewDescriptor validates fields and returns a descriptor preserving their
// order. Field names must be SQL identifiers, unique, and exactly one must be
// "id" of text type.
func NewDescriptor(fields ...Field) (*Descriptor, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: descriptor has no fields", util.ErrSchema)
	}

	d := &Descriptor{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	copy(d.fields, fields)

	for i, f := range d.fields {
		if !identPattern.MatchString(f.Name) {
			return nil, fmt.Errorf("%w: invalid field name %q", util.ErrSchema, f.Name)
		}
		if _, dup := d.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", util.ErrSchema, f.Name)
		}
		if err := f.Type.validate(); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		d.index[f.Name] = i
	}

	i, ok := d.index[IDField]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q field", util.ErrSchema, IDField)
	}
	if d.fields[i].Type.Kind() != KindText {
		return nil, fmt.Errorf("%w: %q must be text, got %s", util.ErrSchema, IDField, d.fields[i].Type)
	}

	return d, nil
}

// MustDescriptor is NewDescriptor for package-level record types. An invalid
// descriptor panics during package initialisation, before anything is ingested.
func MustDescriptor(fields ...Field) *Descriptor {
	d, err := NewDescriptor(fields...)
	if err != nil {
		panic(err)
	}
	return d
}

// Fields returns a copy of the fields in declaration order.
func (d *Descriptor) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Len returns the number of fields.
func (d *Descriptor) Len() int { return len(d.fields) }

// Lookup returns the field with the given name.
func (d *Descriptor) Lookup(name string) (Field, bool) {
	i, ok := d.index[name]
	if !ok {
		return Field{}, false
	}
	return d.fields[i], true
}

// Names returns the field names in declaration order.
func (d *Descriptor) Names() []string {
	names := make([]string, len(d.fields))
	for i, f := range d.fields {
		names[i] = f.Name
	}
	return names
}

// ValidIdentifier reports whether s can be interpolated as a table or column name.
func ValidIdentifier(s string) bool {
	return identPattern.MatchString(s)
}
