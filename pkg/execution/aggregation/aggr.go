package aggregation

import (
	"strings"

	"storecore/pkg/dberror"
)

const (
	// NoGrouping indicates that no grouping field is used in aggregation
	NoGrouping = -1
)

// Op represents the type of aggregation operation to perform
type Op int

const (
	Min Op = iota
	Max
	Sum
	Avg
	Count
)

// String returns a string representation of the aggregation operation
func (op Op) String() string {
	switch op {
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	case Count:
		return "COUNT"
	default:
		return "UNKNOWN"
	}
}

// ParseOp converts an aggregate name such as "sum" or "COUNT" to an Op.
func ParseOp(s string) (Op, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MIN":
		return Min, nil
	case "MAX":
		return Max, nil
	case "SUM":
		return Sum, nil
	case "AVG":
		return Avg, nil
	case "COUNT":
		return Count, nil
	default:
		return 0, dberror.Configuration("UNKNOWN_AGGREGATE", "unknown aggregate operation %q", s)
	}
}
