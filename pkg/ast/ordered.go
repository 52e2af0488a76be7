package ast

import "fmt"

// Field is one entry of an OrderedFields: a name, its type, and (for
// locals/params) nothing else — offsets are computed by the translator
// from position in the Order slice, never stored here.
type Field struct {
	Name string
	Type Type
}

// OrderedFields is an insertion-ordered, duplicate-free list of fields,
// used for class field lists, method parameter lists, and method local
// lists alike (design notes §9: "Ordered-map for symbol scopes"). Offset
// computation needs insertion order (parameter and field layout is
// positional); name resolution needs O(1) lookup. A plain slice would make
// lookup O(n); a plain map would lose order — hence the pair.
type OrderedFields struct {
	order []Field
	index map[string]int
}

// NewOrderedFields returns an empty OrderedFields ready for Add.
func NewOrderedFields() *OrderedFields {
	return &OrderedFields{index: make(map[string]int)}
}

// Add appends a field, rejecting a duplicate name. Returns the field's
// 0-based position, which the translator uses directly as the
// parameter/local/field index.
func (f *OrderedFields) Add(name string, typ Type) (int, error) {
	if _, exists := f.index[name]; exists {
		return 0, fmt.Errorf("duplicate field %q", name)
	}
	pos := len(f.order)
	f.order = append(f.order, Field{Name: name, Type: typ})
	f.index[name] = pos
	return pos, nil
}

// Lookup returns the field and its position, or ok=false if absent.
func (f *OrderedFields) Lookup(name string) (field Field, pos int, ok bool) {
	pos, ok = f.index[name]
	if !ok {
		return Field{}, 0, false
	}
	return f.order[pos], pos, true
}

// Len returns the number of fields.
func (f *OrderedFields) Len() int { return len(f.order) }

// At returns the field at a 0-based position.
func (f *OrderedFields) At(i int) Field { return f.order[i] }

// All returns the fields in insertion order. Callers must not mutate the
// returned slice.
func (f *OrderedFields) All() []Field { return f.order }
