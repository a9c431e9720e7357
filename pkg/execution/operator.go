package execution

import (
	"storecore/pkg/dberror"
	"storecore/pkg/iterator"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/page"
	"storecore/pkg/tuple"
)

// Kind tags the variant of an Operator.
type Kind int

const (
	KindScan Kind = iota
	KindFilter
	KindInsert
	KindDelete
	KindAggregate
)

func (k Kind) String() string {
	switch k {
	case KindScan:
		return "Scan"
	case KindFilter:
		return "Filter"
	case KindInsert:
		return "Insert"
	case KindDelete:
		return "Delete"
	case KindAggregate:
		return "Aggregate"
	default:
		return "Unknown"
	}
}

// TableResolver resolves a table id to its file, schema and primary key.
// catalog.Catalog implements it.
type TableResolver interface {
	ResolveTable(tableID primitives.TableID) (page.DbFile, *tuple.TupleDescription, string, error)
}

// TupleStore is the part of the page store used by Insert and Delete.
// memory.PageStore implements it.
type TupleStore interface {
	InsertTuple(tid *primitives.TransactionID, tableID primitives.TableID, t *tuple.Tuple) error
	DeleteTuple(tid *primitives.TransactionID, t *tuple.Tuple) error
	GetTupleDesc(tableID primitives.TableID) (*tuple.TupleDescription, error)
}

// phase of an operator that consumes its whole child before producing output.
type phase int

const (
	phasePending phase = iota
	phaseReady
	phaseFailed // drain error is kept; the child is never drained again
)

// Operator is a node of a query tree. Every kind shares the same pull
// protocol (see iterator.DbIterator); the kind-specific state lives in
// exactly one of the state fields and the protocol methods dispatch on kind.
type Operator struct {
	kind Kind
	base *iterator.BaseIterator
	td   *tuple.TupleDescription

	scan      *scanState
	filter    *filterState
	mutation  *mutationState
	aggregate *aggregateState
}

func newOperator(kind Kind, td *tuple.TupleDescription) *Operator {
	op := &Operator{kind: kind, td: td}
	op.base = iterator.NewBaseIterator(op.readNext)
	return op
}

func (op *Operator) Kind() Kind {
	return op.kind
}

// GetTupleDesc returns the output schema. It is valid in any state.
func (op *Operator) GetTupleDesc() *tuple.TupleDescription {
	return op.td
}

// Open prepares the operator. Insert, Delete and Aggregate consume their
// child on the first successful Open only; later opens replay the result.
// Opening an open operator restarts it.
func (op *Operator) Open() error {
	var err error
	switch op.kind {
	case KindScan:
		err = op.scan.it.Open()
	case KindFilter:
		err = op.filter.child.Open()
	case KindInsert, KindDelete:
		err = op.openMutation()
	case KindAggregate:
		err = op.openAggregate()
	default:
		err = unknownKind(op.kind)
	}
	if err != nil {
		return err
	}

	op.base.MarkOpened()
	return nil
}

func (op *Operator) HasNext() (bool, error) {
	return op.base.HasNext()
}

func (op *Operator) Next() (*tuple.Tuple, error) {
	return op.base.Next()
}

// Rewind restarts the output. It never re-runs a mutation or an aggregate.
func (op *Operator) Rewind() error {
	if err := op.base.Rewind(); err != nil {
		return err
	}

	switch op.kind {
	case KindScan:
		return op.scan.it.Rewind()
	case KindFilter:
		return op.filter.child.Rewind()
	case KindInsert, KindDelete:
		op.mutation.emitted = false
		return nil
	case KindAggregate:
		return op.aggregate.results.Rewind()
	default:
		return unknownKind(op.kind)
	}
}

// Close releases the operator and its children. Closing twice is safe.
func (op *Operator) Close() error {
	var err error
	switch op.kind {
	case KindScan:
		err = op.scan.it.Close()
	case KindFilter:
		err = op.filter.child.Close()
	case KindAggregate:
		if op.aggregate.results != nil {
			err = op.aggregate.results.Close()
		}
	}

	if closeErr := op.base.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (op *Operator) readNext() (*tuple.Tuple, error) {
	switch op.kind {
	case KindScan:
		return op.readScan()
	case KindFilter:
		return op.readFilter()
	case KindInsert, KindDelete:
		return op.readMutation()
	case KindAggregate:
		return op.readAggregate()
	default:
		return nil, unknownKind(op.kind)
	}
}

func (op *Operator) String() string {
	switch op.kind {
	case KindScan:
		return "Scan(" + op.scan.alias + ")"
	case KindFilter:
		return "Filter(" + op.filter.predicate.String() + ")"
	case KindAggregate:
		return "Aggregate(" + op.aggregate.agg.Op().String() + ")"
	default:
		return op.kind.String()
	}
}

func unknownKind(k Kind) error {
	return dberror.Usage("UNKNOWN_OPERATOR", "unknown operator kind %d", int(k))
}
