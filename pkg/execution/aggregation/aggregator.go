package aggregation

import (
	"fmt"
	"sync"

	"storecore/pkg/dberror"
	"storecore/pkg/iterator"
	"storecore/pkg/tuple"
	"storecore/pkg/types"
)

// groupKey is the map key of a group. Only the member matching the grouping
// type is set; ungrouped aggregates use the zero key.
type groupKey struct {
	i int32
	s string
}

type group struct {
	field types.Field // nil when ungrouped
	acc   Accumulator
}

// Aggregator computes one aggregate over a stream of tuples, optionally
// grouped by a field. Tuples are folded in with Merge; Finish freezes the
// group set, after which the result can be iterated any number of times.
type Aggregator struct {
	gbField     int
	gbFieldType types.Type
	aField      int
	aFieldType  types.Type
	op          Op
	tupleDesc   *tuple.TupleDescription

	merge  mergeFunc
	result resultFunc

	mutex   sync.RWMutex
	groups  map[groupKey]*group
	results []*tuple.Tuple // set by Finish
}

// NewAggregator validates the combination of field types and operation.
// Result columns are named "group" and after the operation; see
// NewAggregatorFor to derive names from an input schema.
func NewAggregator(gbField int, gbFieldType types.Type, aField int, aFieldType types.Type, op Op) (*Aggregator, error) {
	merge, ok := mergeFuncs[op]
	if !ok {
		return nil, dberror.Configuration("UNKNOWN_AGGREGATE", "unknown aggregate operation %d", int(op))
	}

	switch aFieldType {
	case types.IntType:
	case types.StringType:
		if op != Count {
			return nil, dberror.Configuration("UNSUPPORTED_AGGREGATE",
				"%s is not supported over string fields, only COUNT", op)
		}
	default:
		return nil, dberror.Configuration("UNSUPPORTED_FIELD_TYPE", "cannot aggregate field of type %s", aFieldType)
	}

	if gbField != NoGrouping {
		if gbFieldType != types.IntType && gbFieldType != types.StringType {
			return nil, dberror.Configuration("UNSUPPORTED_FIELD_TYPE", "cannot group by field of type %s", gbFieldType)
		}
		if gbField < 0 {
			return nil, dberror.Configuration("INVALID_GROUP_FIELD", "invalid group field index %d", gbField)
		}
	}
	if aField < 0 {
		return nil, dberror.Configuration("INVALID_AGGREGATE_FIELD", "invalid aggregate field index %d", aField)
	}

	agg := &Aggregator{
		gbField:     gbField,
		gbFieldType: gbFieldType,
		aField:      aField,
		aFieldType:  aFieldType,
		op:          op,
		merge:       merge,
		result:      resultOf(op),
		groups:      make(map[groupKey]*group),
	}

	td, err := agg.createTupleDesc("group", op.String())
	if err != nil {
		return nil, err
	}
	agg.tupleDesc = td
	return agg, nil
}

// NewAggregatorFor builds an aggregator over tuples of schema td. The group
// column keeps its source name and the aggregate column is named OP(field).
func NewAggregatorFor(td *tuple.TupleDescription, aField, gbField int, op Op) (*Aggregator, error) {
	if td == nil {
		return nil, dberror.Configuration("NIL_SCHEMA", "aggregate input has no schema")
	}

	aType, err := td.TypeAtIndex(aField)
	if err != nil {
		return nil, dberror.Configuration("INVALID_AGGREGATE_FIELD",
			"aggregate field %d out of range for %d fields", aField, td.NumFields())
	}
	aName, _ := td.GetFieldName(aField)

	var (
		gbType types.Type
		gbName string
	)
	if gbField != NoGrouping {
		gbType, err = td.TypeAtIndex(gbField)
		if err != nil {
			return nil, dberror.Configuration("INVALID_GROUP_FIELD",
				"group field %d out of range for %d fields", gbField, td.NumFields())
		}
		gbName, _ = td.GetFieldName(gbField)
	}

	agg, err := NewAggregator(gbField, gbType, aField, aType, op)
	if err != nil {
		return nil, err
	}

	resultDesc, err := agg.createTupleDesc(gbName, fmt.Sprintf("%s(%s)", op, aName))
	if err != nil {
		return nil, err
	}
	agg.tupleDesc = resultDesc
	return agg, nil
}

func (a *Aggregator) createTupleDesc(groupName, aggName string) (*tuple.TupleDescription, error) {
	if a.gbField == NoGrouping {
		return tuple.NewTupleDesc([]types.Type{types.IntType}, []string{aggName})
	}
	return tuple.NewTupleDesc(
		[]types.Type{a.gbFieldType, types.IntType},
		[]string{groupName, aggName},
	)
}

// GetTupleDesc returns the schema of result tuples: (INT) when ungrouped,
// (group type, INT) otherwise.
func (a *Aggregator) GetTupleDesc() *tuple.TupleDescription {
	return a.tupleDesc
}

func (a *Aggregator) GetGroupingField() int {
	return a.gbField
}

func (a *Aggregator) Op() Op {
	return a.op
}

// Merge folds t into its group, creating the group on first sight. Groups
// are never removed. Merging after Finish is a usage error.
func (a *Aggregator) Merge(t *tuple.Tuple) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.results != nil {
		return dberror.Usage("AGGREGATE_FROZEN", "cannot merge into a finished aggregate").In("Merge", "Aggregator")
	}

	key, gbValue, err := a.extractGroup(t)
	if err != nil {
		return err
	}

	aggValue, err := t.GetField(a.aField)
	if err != nil {
		return err
	}
	if aggValue == nil || aggValue.Type() != a.aFieldType {
		return dberror.Configuration("FIELD_TYPE_MISMATCH",
			"aggregate field %d is not of type %s", a.aField, a.aFieldType).In("Merge", "Aggregator")
	}

	g, exists := a.groups[key]
	if !exists {
		g = &group{field: gbValue, acc: a.merge(nil, aggValue)}
		a.groups[key] = g
		return nil
	}

	g.acc = a.merge(&g.acc, aggValue)
	return nil
}

func (a *Aggregator) extractGroup(t *tuple.Tuple) (groupKey, types.Field, error) {
	if a.gbField == NoGrouping {
		return groupKey{}, nil, nil
	}

	f, err := t.GetField(a.gbField)
	if err != nil {
		return groupKey{}, nil, err
	}

	switch v := f.(type) {
	case *types.IntField:
		if a.gbFieldType == types.IntType {
			return groupKey{i: v.Value}, v, nil
		}
	case *types.StringField:
		if a.gbFieldType == types.StringType {
			return groupKey{s: v.Value}, v, nil
		}
	}
	return groupKey{}, nil, dberror.Configuration("FIELD_TYPE_MISMATCH",
		"group field %d is not of type %s", a.gbField, a.gbFieldType).In("Merge", "Aggregator")
}

// Finish freezes the group set and materialises one result tuple per group.
// Group order follows map iteration and is unspecified. Calling Finish
// again is a no-op.
func (a *Aggregator) Finish() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.results != nil {
		return nil
	}

	results := make([]*tuple.Tuple, 0, len(a.groups))
	for _, g := range a.groups {
		value := types.NewIntField(a.result(g.acc))

		var (
			t   *tuple.Tuple
			err error
		)
		if a.gbField == NoGrouping {
			t, err = tuple.FromFields(a.tupleDesc, value)
		} else {
			t, err = tuple.FromFields(a.tupleDesc, g.field, value)
		}
		if err != nil {
			return err
		}
		results = append(results, t)
	}

	a.results = results
	return nil
}

// Reset drops every group and unfreezes the aggregator.
func (a *Aggregator) Reset() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.groups = make(map[groupKey]*group)
	a.results = nil
}

// NumGroups returns the number of groups seen so far.
func (a *Aggregator) NumGroups() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return len(a.groups)
}

// Iterator finishes the aggregate if needed and returns a read-only iterator
// over the frozen results. Rewinding it replays the same groups.
func (a *Aggregator) Iterator() (iterator.DbIterator, error) {
	if err := a.Finish(); err != nil {
		return nil, err
	}

	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return iterator.NewTupleIterator(a.tupleDesc, a.results), nil
}
