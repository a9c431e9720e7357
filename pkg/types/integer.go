package types

import (
	"encoding/binary"
	"io"
	"strconv"

	"storecore/pkg/primitives"
)

// IntField is a 32-bit signed integer, stored little-endian.
type IntField struct {
	Value int32
}

func NewIntField(value int32) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(f.Value)) // #nosec G115
	_, err := w.Write(b[:])
	return err
}

func (f *IntField) Compare(op Predicate, other Field) (bool, error) {
	o, ok := other.(*IntField)
	if !ok {
		return false, mismatch(f, other)
	}

	switch op {
	case Equals:
		return f.Value == o.Value, nil
	case LessThan:
		return f.Value < o.Value, nil
	case GreaterThan:
		return f.Value > o.Value, nil
	case LessThanOrEqual:
		return f.Value <= o.Value, nil
	case GreaterThanOrEqual:
		return f.Value >= o.Value, nil
	case NotEqual:
		return f.Value != o.Value, nil
	case Like:
		// LIKE on integers degenerates to equality.
		return f.Value == o.Value, nil
	default:
		return false, unknownPredicate(op)
	}
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(int64(f.Value), 10)
}

func (f *IntField) Equals(other Field) bool {
	o, ok := other.(*IntField)
	return ok && f.Value == o.Value
}

func (f *IntField) Hash() (primitives.HashCode, error) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(f.Value)) // #nosec G115
	return hashBytes(b[:]), nil
}
