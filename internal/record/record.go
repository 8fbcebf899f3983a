package record

import "fmt"

// RawRow maps column names to their textual values. It is the interchange
// format between the query executor and Decode.
type RawRow map[string]string

// Record holds one value per descriptor field.
type Record struct {
	desc   *Descriptor
	values []Value
}

// New returns a record with every field at its zero value: 0 for integers,
// "" for text, absent for optionals.
func New(d *Descriptor) *Record {
	r := &Record{desc: d, values: make([]Value, len(d.fields))}
	for i, f := range d.fields {
		r.values[i] = zeroValue(f.Type)
	}
	return r
}

// Descriptor returns the record's type descriptor.
func (r *Record) Descriptor() *Descriptor { return r.desc }

// Set stores v in the named field after checking it against the field type.
func (r *Record) Set(name string, v Value) error {
	i, ok := r.desc.index[name]
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	if err := conforms(r.desc.fields[i].Type, v); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	r.values[i] = v
	return nil
}

// Get returns the value of the named field.
func (r *Record) Get(name string) (Value, bool) {
	i, ok := r.desc.index[name]
	if !ok {
		return Value{}, false
	}
	return r.values[i], true
}

// Text returns a text field, or "" when it is absent or not text.
func (r *Record) Text(name string) string {
	v, _ := r.Get(name)
	s, _ := v.Text()
	return s
}

// ID returns the record identity.
func (r *Record) ID() string {
	return r.Text(IDField)
}

// Values returns the values in descriptor order.
func (r *Record) Values() []Value {
	out := make([]Value, len(r.values))
	copy(out, r.values)
	return out
}
