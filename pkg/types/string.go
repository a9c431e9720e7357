package types

import (
	"encoding/binary"
	"io"
	"strings"

	"storecore/pkg/primitives"
)

// StringField represents a fixed-width string field. Values longer than
// StringMaxSize bytes are truncated at construction.
type StringField struct {
	Value string
}

// NewStringField creates a StringField, truncating value to StringMaxSize
// bytes.
func NewStringField(value string) *StringField {
	if len(value) > StringMaxSize {
		value = value[:StringMaxSize]
	}
	return &StringField{Value: value}
}

// Compare performs a lexicographic comparison. Like is a substring match.
func (s *StringField) Compare(op Predicate, other Field) (bool, error) {
	o, ok := other.(*StringField)
	if !ok {
		return false, mismatch(s, other)
	}

	cmp := strings.Compare(s.Value, o.Value)

	switch op {
	case Equals:
		return cmp == 0, nil
	case LessThan:
		return cmp < 0, nil
	case GreaterThan:
		return cmp > 0, nil
	case LessThanOrEqual:
		return cmp <= 0, nil
	case GreaterThanOrEqual:
		return cmp >= 0, nil
	case NotEqual:
		return cmp != 0, nil
	case Like:
		return strings.Contains(s.Value, o.Value), nil
	default:
		return false, unknownPredicate(op)
	}
}

// Serialize writes the string field in its on-disk format:
//  1. 4 bytes for the actual string length (little-endian uint32)
//  2. the string bytes
//  3. zero padding up to StringMaxSize
func (s *StringField) Serialize(w io.Writer) error {
	length := min(len(s.Value), StringMaxSize)

	buf := make([]byte, StringType.Size())
	binary.LittleEndian.PutUint32(buf[:4], uint32(length)) // #nosec G115
	copy(buf[4:], s.Value[:length])

	_, err := w.Write(buf)
	return err
}

func (s *StringField) Type() Type {
	return StringType
}

func (s *StringField) String() string {
	return s.Value
}

func (s *StringField) Equals(other Field) bool {
	o, ok := other.(*StringField)
	return ok && s.Value == o.Value
}

func (s *StringField) Hash() (primitives.HashCode, error) {
	return hashBytes([]byte(s.Value)), nil
}
