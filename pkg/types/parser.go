package types

import (
	"encoding/binary"
	"io"
	"strconv"

	"storecore/pkg/dberror"
)

// ParseField reads one field of fieldType from r. It is the inverse of
// Field.Serialize and always consumes exactly fieldType.Size() bytes.
func ParseField(r io.Reader, fieldType Type) (Field, error) {
	switch fieldType {
	case IntType:
		return parseIntField(r)

	case StringType:
		return parseStringField(r)

	default:
		return nil, dberror.Configuration("UNKNOWN_TYPE", "unsupported field type: %v", fieldType)
	}
}

func parseIntField(r io.Reader) (*IntField, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, dberror.StorageIO(err, "SHORT_READ", "reading int field")
	}
	return NewIntField(int32(binary.LittleEndian.Uint32(b[:]))), nil // #nosec G115
}

func parseStringField(r io.Reader) (*StringField, error) {
	buf := make([]byte, StringType.Size())
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, dberror.StorageIO(err, "SHORT_READ", "reading string field")
	}

	length := binary.LittleEndian.Uint32(buf[:4])
	if length > StringMaxSize {
		return nil, dberror.StorageIO(nil, "CORRUPT_STRING", "string length %d exceeds maximum %d", length, StringMaxSize)
	}
	return NewStringField(string(buf[4 : 4+length])), nil
}

// FieldFromConstant builds a field of type t from its textual form.
func FieldFromConstant(t Type, constant string) (Field, error) {
	switch t {
	case IntType:
		v, err := strconv.ParseInt(constant, 10, 32)
		if err != nil {
			return nil, dberror.Configuration("INVALID_CONSTANT", "invalid int constant %q: %v", constant, err)
		}
		return NewIntField(int32(v)), nil

	case StringType:
		return NewStringField(constant), nil

	default:
		return nil, dberror.Configuration("UNKNOWN_TYPE", "unsupported field type: %v", t)
	}
}
