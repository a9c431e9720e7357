package iterator

import (
	"storecore/pkg/dberror"
	"storecore/pkg/tuple"
)

// ReadNextFunc reads the next tuple from an underlying source. It returns
// (nil, nil) at end of data.
type ReadNextFunc func() (*tuple.Tuple, error)

// BaseIterator implements the one-tuple lookahead and the open/closed state
// checks on top of a ReadNextFunc. Concrete iterators embed or hold one and
// reset their own source on Rewind.
type BaseIterator struct {
	nextTuple    *tuple.Tuple
	opened       bool
	readNextFunc ReadNextFunc
}

// NewBaseIterator creates a closed iterator reading from readNextFunc.
func NewBaseIterator(readNextFunc ReadNextFunc) *BaseIterator {
	return &BaseIterator{
		readNextFunc: readNextFunc,
	}
}

// HasNext fills the lookahead if it is empty and reports whether a tuple is
// waiting.
func (it *BaseIterator) HasNext() (bool, error) {
	if !it.opened {
		return false, notOpened("HasNext")
	}

	if it.nextTuple == nil {
		var err error
		it.nextTuple, err = it.readNextFunc()
		if err != nil {
			return false, err
		}
	}
	return it.nextTuple != nil, nil
}

// Next returns the lookahead tuple, reading one first if needed.
func (it *BaseIterator) Next() (*tuple.Tuple, error) {
	if !it.opened {
		return nil, notOpened("Next")
	}

	if it.nextTuple == nil {
		var err error
		it.nextTuple, err = it.readNextFunc()
		if err != nil {
			return nil, err
		}
		if it.nextTuple == nil {
			return nil, dberror.Usage("NO_MORE_TUPLES", "no more tuples").In("Next", "Iterator")
		}
	}

	result := it.nextTuple
	it.nextTuple = nil
	return result, nil
}

// Rewind drops the lookahead. The owner resets its source.
func (it *BaseIterator) Rewind() error {
	if !it.opened {
		return notOpened("Rewind")
	}
	it.nextTuple = nil
	return nil
}

// Close clears the lookahead and marks the iterator closed.
func (it *BaseIterator) Close() error {
	it.nextTuple = nil
	it.opened = false
	return nil
}

// MarkOpened marks the iterator as opened and ready for use.
func (it *BaseIterator) MarkOpened() {
	it.opened = true
	it.nextTuple = nil
}

// IsOpen reports whether MarkOpened was called since the last Close.
func (it *BaseIterator) IsOpen() bool {
	return it.opened
}

func notOpened(op string) error {
	return dberror.Usage("ITERATOR_NOT_OPEN", "iterator not opened").In(op, "Iterator")
}
