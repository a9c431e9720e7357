package tuple

import (
	"fmt"
	"strings"

	"storecore/pkg/dberror"
	"storecore/pkg/types"
)

// TupleDescription describes the schema of a tuple: the type of every field
// and, optionally, its name.
type TupleDescription struct {
	Types      []types.Type
	FieldNames []string // optional, may be nil
}

// NewTupleDesc creates a new TupleDescription. At least one type is
// required, and fieldNames, when given, must have one entry per type.
func NewTupleDesc(fieldTypes []types.Type, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) < 1 {
		return nil, dberror.Configuration("EMPTY_SCHEMA", "must provide at least one field type")
	}

	typesCopy := make([]types.Type, len(fieldTypes))
	copy(typesCopy, fieldTypes)

	var namesCopy []string
	if fieldNames != nil {
		if len(fieldNames) != len(fieldTypes) {
			return nil, dberror.Configuration("SCHEMA_NAME_MISMATCH",
				"field names length (%d) must match field types length (%d)",
				len(fieldNames), len(fieldTypes))
		}
		namesCopy = make([]string, len(fieldNames))
		copy(namesCopy, fieldNames)
	}

	return &TupleDescription{
		Types:      typesCopy,
		FieldNames: namesCopy,
	}, nil
}

// MustTupleDesc is NewTupleDesc for schemas known to be valid.
func MustTupleDesc(fieldTypes []types.Type, fieldNames []string) *TupleDescription {
	td, err := NewTupleDesc(fieldTypes, fieldNames)
	if err != nil {
		panic(err)
	}
	return td
}

func (td *TupleDescription) NumFields() int {
	return len(td.Types)
}

// GetFieldName returns the name of the ith field, or "" for unnamed schemas.
func (td *TupleDescription) GetFieldName(i int) (string, error) {
	if i < 0 || i >= len(td.Types) {
		return "", dberror.Usage("FIELD_OUT_OF_RANGE", "field index %d out of bounds [0, %d)", i, len(td.Types))
	}

	if td.FieldNames == nil {
		return "", nil
	}
	return td.FieldNames[i], nil
}

func (td *TupleDescription) TypeAtIndex(i int) (types.Type, error) {
	if i < 0 || i >= len(td.Types) {
		return 0, dberror.Usage("FIELD_OUT_OF_RANGE", "field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	return td.Types[i], nil
}

// GetSize returns the on-disk width of a tuple with this schema.
func (td *TupleDescription) GetSize() uint32 {
	var size uint32
	for _, fieldType := range td.Types {
		size += fieldType.Size()
	}
	return size
}

// Equals compares the type sequence only. Field names are ignored.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if other == nil || len(td.Types) != len(other.Types) {
		return false
	}

	for i, fieldType := range td.Types {
		if fieldType != other.Types[i] {
			return false
		}
	}
	return true
}

// String formats the schema as "Type1(name1),Type2(name2),...". Unnamed
// fields print as "null".
func (td *TupleDescription) String() string {
	parts := make([]string, 0, len(td.Types))

	for i, fieldType := range td.Types {
		fieldName := "null"
		if td.FieldNames != nil && td.FieldNames[i] != "" {
			fieldName = td.FieldNames[i]
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", fieldType.String(), fieldName))
	}

	return strings.Join(parts, ",")
}

// FindFieldIndex locates a field by name (case-sensitive).
func (td *TupleDescription) FindFieldIndex(fieldName string) (int, error) {
	for i, name := range td.FieldNames {
		if name == fieldName {
			return i, nil
		}
	}
	return -1, dberror.NotFound("COLUMN_NOT_FOUND", "column %s not found", fieldName)
}

// Combine concatenates two schemas. A nil argument yields the other.
func Combine(td1, td2 *TupleDescription) *TupleDescription {
	if td1 == nil {
		return td2
	}
	if td2 == nil {
		return td1
	}

	newTypes := make([]types.Type, 0, len(td1.Types)+len(td2.Types))
	newTypes = append(newTypes, td1.Types...)
	newTypes = append(newTypes, td2.Types...)

	var newFieldNames []string
	if td1.FieldNames != nil || td2.FieldNames != nil {
		newFieldNames = make([]string, 0, len(newTypes))
		newFieldNames = appendNames(newFieldNames, td1)
		newFieldNames = appendNames(newFieldNames, td2)
	}

	return &TupleDescription{Types: newTypes, FieldNames: newFieldNames}
}

func appendNames(dst []string, td *TupleDescription) []string {
	if td.FieldNames != nil {
		return append(dst, td.FieldNames...)
	}
	for range td.Types {
		dst = append(dst, "")
	}
	return dst
}

// WithPrefix returns a copy whose names read "prefix.name".
func (td *TupleDescription) WithPrefix(prefix string) *TupleDescription {
	names := make([]string, len(td.Types))
	for i := range td.Types {
		name := "null"
		if td.FieldNames != nil && td.FieldNames[i] != "" {
			name = td.FieldNames[i]
		}
		names[i] = prefix + "." + name
	}
	return &TupleDescription{Types: append([]types.Type(nil), td.Types...), FieldNames: names}
}
