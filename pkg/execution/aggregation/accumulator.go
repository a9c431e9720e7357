package aggregation

import (
	"storecore/pkg/types"
)

// Accumulator is the running state of one group. Value holds the min, max,
// sum or count; Count is only advanced by AVG.
type Accumulator struct {
	Value int64
	Count int64
}

// mergeFunc folds one value into a group's accumulator. prev is nil for the
// first value of a group. v has already been checked against the aggregate
// field type.
type mergeFunc func(prev *Accumulator, v types.Field) Accumulator

// result turns a finished accumulator into the emitted integer.
type resultFunc func(acc Accumulator) int32

var mergeFuncs = map[Op]mergeFunc{
	Min: func(prev *Accumulator, v types.Field) Accumulator {
		x := intValue(v)
		if prev == nil || x < prev.Value {
			return Accumulator{Value: x}
		}
		return *prev
	},
	Max: func(prev *Accumulator, v types.Field) Accumulator {
		x := intValue(v)
		if prev == nil || x > prev.Value {
			return Accumulator{Value: x}
		}
		return *prev
	},
	Sum: func(prev *Accumulator, v types.Field) Accumulator {
		if prev == nil {
			return Accumulator{Value: intValue(v)}
		}
		return Accumulator{Value: prev.Value + intValue(v)}
	},
	Avg: func(prev *Accumulator, v types.Field) Accumulator {
		if prev == nil {
			return Accumulator{Value: intValue(v), Count: 1}
		}
		return Accumulator{Value: prev.Value + intValue(v), Count: prev.Count + 1}
	},
	Count: func(prev *Accumulator, _ types.Field) Accumulator {
		if prev == nil {
			return Accumulator{Value: 1}
		}
		return Accumulator{Value: prev.Value + 1}
	},
}

func resultOf(op Op) resultFunc {
	if op == Avg {
		return func(acc Accumulator) int32 {
			return int32(acc.Value / acc.Count)
		}
	}
	return func(acc Accumulator) int32 {
		return int32(acc.Value)
	}
}

func intValue(f types.Field) int64 {
	return int64(f.(*types.IntField).Value)
}
