package execution

import (
	"storecore/pkg/dberror"
	"storecore/pkg/iterator"
	"storecore/pkg/logging"
	"storecore/pkg/primitives"
	"storecore/pkg/tuple"
	"storecore/pkg/types"
)

var countDesc = tuple.MustTupleDesc([]types.Type{types.IntType}, []string{"count"})

type mutationState struct {
	tid     *primitives.TransactionID
	tableID primitives.TableID // Insert only
	store   TupleStore
	child   iterator.DbIterator

	phase   phase
	err     error
	count   int32
	emitted bool
}

// NewInsert inserts every child tuple into table tableID and then yields a
// single (count) tuple. The child schema must match the table schema.
func NewInsert(tid *primitives.TransactionID, child iterator.DbIterator, tableID primitives.TableID, store TupleStore) (*Operator, error) {
	if child == nil {
		return nil, dberror.Configuration("NIL_CHILD", "child operator cannot be nil")
	}

	tableDesc, err := store.GetTupleDesc(tableID)
	if err != nil {
		return nil, err
	}
	if !child.GetTupleDesc().Equals(tableDesc) {
		return nil, dberror.Configuration("SCHEMA_MISMATCH",
			"child schema %s does not match table schema %s", child.GetTupleDesc(), tableDesc).In("NewInsert", "Operator")
	}

	op := newOperator(KindInsert, countDesc)
	op.mutation = &mutationState{tid: tid, tableID: tableID, store: store, child: child}
	return op, nil
}

// NewDelete deletes every child tuple, located by its RecordID, and then
// yields a single (count) tuple.
func NewDelete(tid *primitives.TransactionID, child iterator.DbIterator, store TupleStore) (*Operator, error) {
	if child == nil {
		return nil, dberror.Configuration("NIL_CHILD", "child operator cannot be nil")
	}

	op := newOperator(KindDelete, countDesc)
	op.mutation = &mutationState{tid: tid, store: store, child: child}
	return op, nil
}

// openMutation runs the child to completion the first time through. A failed
// drain keeps the mutations already applied and every later Open returns the
// same error.
func (op *Operator) openMutation() error {
	m := op.mutation
	switch m.phase {
	case phaseFailed:
		return m.err
	case phasePending:
		count, err := op.drainMutation()
		if err != nil {
			m.phase, m.err = phaseFailed, err
			logging.WithComponent(op.kind.String()).
				WithField("tx_id", m.tid.ID()).
				WithError(err).
				Warn("mutation drain failed")
			return err
		}
		m.count = count
		m.phase = phaseReady

		logging.WithComponent(op.kind.String()).
			WithField("tx_id", m.tid.ID()).
			WithField("count", count).
			Debug("mutation applied")
	}

	m.emitted = false
	return nil
}

func (op *Operator) drainMutation() (int32, error) {
	m := op.mutation
	if err := m.child.Open(); err != nil {
		return 0, err
	}

	var count int32
	err := iterator.ForEach(m.child, func(t *tuple.Tuple) error {
		if err := op.apply(t); err != nil {
			return err
		}
		count++
		return nil
	})

	closeErr := m.child.Close()
	if err != nil {
		return 0, err
	}
	return count, closeErr
}

func (op *Operator) apply(t *tuple.Tuple) error {
	m := op.mutation
	if op.kind == KindInsert {
		return m.store.InsertTuple(m.tid, m.tableID, t)
	}
	return m.store.DeleteTuple(m.tid, t)
}

func (op *Operator) readMutation() (*tuple.Tuple, error) {
	m := op.mutation
	if m.emitted {
		return nil, nil
	}
	m.emitted = true
	return tuple.FromFields(countDesc, types.NewIntField(m.count))
}
