package types

import (
	"strings"

	"storecore/pkg/dberror"
)

type Predicate int

const (
	Equals Predicate = iota
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	NotEqual
	Like
)

func (p Predicate) String() string {
	switch p {
	case Equals:
		return "="

	case LessThan:
		return "<"

	case GreaterThan:
		return ">"

	case LessThanOrEqual:
		return "<="

	case GreaterThanOrEqual:
		return ">="

	case NotEqual:
		return "!="

	case Like:
		return "LIKE"

	default:
		return "UNKNOWN"
	}
}

// ParsePredicate accepts the symbols produced by String, plus "<>".
func ParsePredicate(s string) (Predicate, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "=", "==":
		return Equals, nil
	case "<":
		return LessThan, nil
	case ">":
		return GreaterThan, nil
	case "<=":
		return LessThanOrEqual, nil
	case ">=":
		return GreaterThanOrEqual, nil
	case "!=", "<>":
		return NotEqual, nil
	case "LIKE":
		return Like, nil
	default:
		return 0, dberror.Configuration("UNKNOWN_PREDICATE", "unknown predicate %q", s)
	}
}

func unknownPredicate(op Predicate) error {
	return dberror.Configuration("UNKNOWN_PREDICATE", "unknown predicate %d", int(op))
}
