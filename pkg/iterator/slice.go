package iterator

import (
	"storecore/pkg/dberror"
	"storecore/pkg/tuple"
)

// SliceIterator walks a slice of any element type. It has no lifecycle of its
// own; materializing operators wrap it.
type SliceIterator[T any] struct {
	data         []T
	currentIndex int
}

func NewSliceIterator[T any](data []T) *SliceIterator[T] {
	return &SliceIterator[T]{data: data}
}

func (it *SliceIterator[T]) HasNext() bool {
	return it.currentIndex < len(it.data)
}

// Next returns the next element. Reading past the end is a usage error.
func (it *SliceIterator[T]) Next() (T, error) {
	var zero T

	if it.currentIndex >= len(it.data) {
		return zero, dberror.Usage("NO_MORE_ELEMENTS", "no more elements in slice iterator")
	}

	element := it.data[it.currentIndex]
	it.currentIndex++
	return element, nil
}

func (it *SliceIterator[T]) Rewind() {
	it.currentIndex = 0
}

func (it *SliceIterator[T]) Len() int {
	return len(it.data)
}

// NewTupleIterator returns a DbIterator over an in-memory list of tuples. The
// slice is shared, not copied.
func NewTupleIterator(td *tuple.TupleDescription, tuples []*tuple.Tuple) *TupleSliceIterator {
	ti := &TupleSliceIterator{
		td:    td,
		items: NewSliceIterator(tuples),
	}
	ti.base = NewBaseIterator(ti.readNext)
	return ti
}

// TupleSliceIterator is a DbIterator backed by a tuple slice.
type TupleSliceIterator struct {
	base  *BaseIterator
	td    *tuple.TupleDescription
	items *SliceIterator[*tuple.Tuple]
}

func (ti *TupleSliceIterator) readNext() (*tuple.Tuple, error) {
	if !ti.items.HasNext() {
		return nil, nil
	}
	return ti.items.Next()
}

func (ti *TupleSliceIterator) Open() error {
	ti.items.Rewind()
	ti.base.MarkOpened()
	return nil
}

func (ti *TupleSliceIterator) HasNext() (bool, error) { return ti.base.HasNext() }

func (ti *TupleSliceIterator) Next() (*tuple.Tuple, error) { return ti.base.Next() }

func (ti *TupleSliceIterator) Rewind() error {
	if err := ti.base.Rewind(); err != nil {
		return err
	}
	ti.items.Rewind()
	return nil
}

func (ti *TupleSliceIterator) Close() error { return ti.base.Close() }

func (ti *TupleSliceIterator) GetTupleDesc() *tuple.TupleDescription { return ti.td }
