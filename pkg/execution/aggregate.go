package execution

import (
	"storecore/pkg/dberror"
	"storecore/pkg/execution/aggregation"
	"storecore/pkg/iterator"
	"storecore/pkg/tuple"
)

type aggregateState struct {
	child iterator.DbIterator

	phase   phase
	agg     *aggregation.Aggregator
	results iterator.DbIterator
}

// NewAggregate computes op over field aField of the child, grouped by
// gField or ungrouped when gField is aggregation.NoGrouping. Invalid field
// indexes and non-COUNT aggregates over strings are rejected here.
func NewAggregate(child iterator.DbIterator, aField, gField int, op aggregation.Op) (*Operator, error) {
	if child == nil {
		return nil, dberror.Configuration("NIL_CHILD", "child operator cannot be nil")
	}

	agg, err := aggregation.NewAggregatorFor(child.GetTupleDesc(), aField, gField, op)
	if err != nil {
		return nil, err
	}

	o := newOperator(KindAggregate, agg.GetTupleDesc())
	o.aggregate = &aggregateState{child: child, agg: agg}
	return o, nil
}

func (op *Operator) openAggregate() error {
	a := op.aggregate
	if a.phase == phasePending {
		if err := op.drainAggregate(); err != nil {
			// drop partial groups so a retry starts clean
			a.agg.Reset()
			return err
		}

		results, err := a.agg.Iterator()
		if err != nil {
			return err
		}
		a.results = results
		a.phase = phaseReady
	}

	return a.results.Open()
}

func (op *Operator) drainAggregate() error {
	a := op.aggregate
	if err := a.child.Open(); err != nil {
		return err
	}

	err := iterator.ForEach(a.child, a.agg.Merge)
	closeErr := a.child.Close()
	if err != nil {
		return err
	}
	return closeErr
}

func (op *Operator) readAggregate() (*tuple.Tuple, error) {
	results := op.aggregate.results

	hasNext, err := results.HasNext()
	if err != nil || !hasNext {
		return nil, err
	}
	return results.Next()
}
