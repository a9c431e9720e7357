package execution

import (
	"storecore/pkg/dberror"
	"storecore/pkg/iterator"
	"storecore/pkg/tuple"
)

type filterState struct {
	predicate *Predicate
	child     iterator.DbIterator
}

// NewFilter passes through the child tuples accepted by predicate. The
// schema is the child's.
func NewFilter(predicate *Predicate, child iterator.DbIterator) (*Operator, error) {
	if predicate == nil {
		return nil, dberror.Configuration("NIL_PREDICATE", "predicate cannot be nil")
	}
	if child == nil {
		return nil, dberror.Configuration("NIL_CHILD", "child operator cannot be nil")
	}

	td := child.GetTupleDesc()
	if predicate.fieldIndex >= td.NumFields() {
		return nil, dberror.Configuration("INVALID_FIELD_INDEX",
			"predicate field %d out of range for %d fields", predicate.fieldIndex, td.NumFields())
	}

	op := newOperator(KindFilter, td)
	op.filter = &filterState{predicate: predicate, child: child}
	return op, nil
}

func (op *Operator) readFilter() (*tuple.Tuple, error) {
	f := op.filter
	for {
		hasNext, err := f.child.HasNext()
		if err != nil || !hasNext {
			return nil, err
		}

		t, err := f.child.Next()
		if err != nil {
			return nil, err
		}

		passes, err := f.predicate.Filter(t)
		if err != nil {
			return nil, err
		}
		if passes {
			return t, nil
		}
	}
}
