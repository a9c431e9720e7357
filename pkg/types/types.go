package types

import "storecore/pkg/dberror"

type Type int

const (
	IntType Type = iota
	StringType
)

// StringMaxSize is the number of payload bytes reserved for every string
// field, independent of its actual length.
const StringMaxSize = 128

// String returns a string representation of the type
func (t Type) String() string {
	switch t {
	case IntType:
		return "INT_TYPE"
	case StringType:
		return "STRING_TYPE"
	default:
		return "UNKNOWN_TYPE"
	}
}

// Size returns the fixed on-disk width of a field of this type. Strings carry
// a 4-byte length prefix ahead of StringMaxSize payload bytes.
func (t Type) Size() uint32 {
	switch t {
	case IntType:
		return 4
	case StringType:
		return 4 + StringMaxSize
	default:
		return 0
	}
}

// ParseType maps a schema keyword ("int", "string") onto a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "int", "INT", "INT_TYPE":
		return IntType, nil
	case "string", "STRING", "STRING_TYPE":
		return StringType, nil
	default:
		return 0, dberror.Configuration("UNKNOWN_TYPE", "unknown type %q", s)
	}
}
