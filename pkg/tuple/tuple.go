package tuple

import (
	"strings"

	"storecore/pkg/dberror"
	"storecore/pkg/types"
)

// Tuple represents a row of data in the database
type Tuple struct {
	TupleDesc *TupleDescription // Schema of this tuple
	fields    []types.Field     // The actual field values
	RecordID  *RecordID         // Where this tuple is stored (nil if not stored)
}

// NewTuple creates a new tuple with the given schema
func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{
		TupleDesc: td,
		fields:    make([]types.Field, td.NumFields()),
	}
}

// FromFields builds a tuple and sets every field in one call.
func FromFields(td *TupleDescription, fields ...types.Field) (*Tuple, error) {
	if len(fields) != td.NumFields() {
		return nil, dberror.Configuration("FIELD_COUNT_MISMATCH",
			"schema has %d fields, got %d values", td.NumFields(), len(fields))
	}

	t := NewTuple(td)
	for i, f := range fields {
		if err := t.SetField(i, f); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// SetField stores field at position i. The field's type must match the
// schema.
func (t *Tuple) SetField(i int, field types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return dberror.Usage("FIELD_OUT_OF_RANGE", "field index %d out of bounds [0, %d)", i, len(t.fields))
	}

	expectedType := t.TupleDesc.Types[i]
	if field == nil || field.Type() != expectedType {
		return dberror.Configuration("FIELD_TYPE_MISMATCH",
			"field %d expects %v", i, expectedType)
	}

	t.fields[i] = field
	return nil
}

// GetField returns the value of the ith field
func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, dberror.Usage("FIELD_OUT_OF_RANGE", "field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	return t.fields[i], nil
}

// Equals compares field values. Schemas must match by type; record ids are
// ignored.
func (t *Tuple) Equals(other *Tuple) bool {
	if other == nil || !t.TupleDesc.Equals(other.TupleDesc) {
		return false
	}
	for i, f := range t.fields {
		o := other.fields[i]
		if f == nil || o == nil {
			if f != o {
				return false
			}
			continue
		}
		if !f.Equals(o) {
			return false
		}
	}
	return true
}

// String returns the fields separated by tabs, terminated by a newline.
func (t *Tuple) String() string {
	parts := make([]string, 0, len(t.fields))
	for _, field := range t.fields {
		if field != nil {
			parts = append(parts, field.String())
		} else {
			parts = append(parts, "null")
		}
	}
	return strings.Join(parts, "\t") + "\n"
}

// Clone copies the field slice. Fields themselves are immutable and shared.
// The clone has no RecordID.
func (t *Tuple) Clone() *Tuple {
	fields := make([]types.Field, len(t.fields))
	copy(fields, t.fields)
	return &Tuple{TupleDesc: t.TupleDesc, fields: fields}
}

// WithDesc returns a copy of t that reports td as its schema. td must have
// the same types as t's schema.
func (t *Tuple) WithDesc(td *TupleDescription) *Tuple {
	c := t.Clone()
	c.TupleDesc = td
	c.RecordID = t.RecordID
	return c
}
