package execution

import (
	"fmt"

	"storecore/pkg/dberror"
	"storecore/pkg/tuple"
	"storecore/pkg/types"
)

// Predicate compares a tuple field to a constant value using a specified operation.
// It encapsulates the field index, comparison operation, and the constant operand
// to create a reusable filter condition for tuple evaluation.
type Predicate struct {
	fieldIndex int             // Which field in the tuple to compare (0-based index)
	op         types.Predicate // The comparison operation to perform
	operand    types.Field     // The constant value to compare against
}

// NewPredicate creates a new predicate with the specified field index, operation, and operand.
func NewPredicate(fieldIndex int, op types.Predicate, operand types.Field) (*Predicate, error) {
	if fieldIndex < 0 {
		return nil, dberror.Configuration("INVALID_FIELD_INDEX", "predicate field index %d is negative", fieldIndex)
	}
	if operand == nil {
		return nil, dberror.Configuration("NIL_OPERAND", "predicate operand cannot be nil")
	}

	return &Predicate{
		fieldIndex: fieldIndex,
		op:         op,
		operand:    operand,
	}, nil
}

// Filter evaluates this predicate against a tuple. Comparing fields of
// different types is a configuration error.
func (p *Predicate) Filter(t *tuple.Tuple) (bool, error) {
	field, err := t.GetField(p.fieldIndex)
	if err != nil {
		return false, err
	}

	if field == nil {
		return false, nil
	}

	return field.Compare(p.op, p.operand)
}

func (p *Predicate) FieldIndex() int {
	return p.fieldIndex
}

func (p *Predicate) Op() types.Predicate {
	return p.op
}

func (p *Predicate) Operand() types.Field {
	return p.operand
}

// String returns e.g. "field[2] > 100".
func (p *Predicate) String() string {
	return fmt.Sprintf("field[%d] %s %s", p.fieldIndex, p.op.String(), p.operand.String())
}
