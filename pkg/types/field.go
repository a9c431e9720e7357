package types

import (
	"io"

	"github.com/cespare/xxhash/v2"

	"storecore/pkg/dberror"
	"storecore/pkg/primitives"
)

// Field is a single typed value inside a tuple.
type Field interface {
	Serialize(w io.Writer) error

	// Compare evaluates "f op other". Comparing fields of different types is
	// a configuration error.
	Compare(op Predicate, other Field) (bool, error)

	Type() Type

	String() string

	Equals(other Field) bool

	Hash() (primitives.HashCode, error)
}

func mismatch(f, other Field) error {
	otherType := "<nil>"
	if other != nil {
		otherType = other.Type().String()
	}
	return dberror.Configuration("FIELD_TYPE_MISMATCH",
		"cannot compare %s with %s", f.Type(), otherType)
}

func hashBytes(b []byte) primitives.HashCode {
	return primitives.HashCode(xxhash.Sum64(b))
}
