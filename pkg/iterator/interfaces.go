package iterator

import "storecore/pkg/tuple"

// DbIterator is the pull protocol shared by every operator and table scan.
//
// Lifecycle: Open, then any number of HasNext/Next pairs, optionally Rewind,
// and finally Close. HasNext returning (false, nil) is end-of-stream. Calling
// HasNext, Next or Rewind on an iterator that is not open is a usage error,
// as is calling Next past the end.
type DbIterator interface {
	TupleIterator

	// Open prepares the iterator. Opening an already open iterator restarts
	// it from the beginning.
	Open() error

	// Rewind restarts the sequence without closing the iterator.
	Rewind() error

	// Close releases resources. Closing twice is safe.
	Close() error

	// GetTupleDesc returns the schema of produced tuples. Valid in any state.
	GetTupleDesc() *tuple.TupleDescription
}

// DbFileIterator is the storage-level scan. It has the same lifecycle as
// DbIterator but leaves the schema to the owning file.
type DbFileIterator interface {
	TupleIterator

	Open() error
	Rewind() error
	Close() error
}

// TupleIterator captures the iteration methods common to DbIterator and
// DbFileIterator so helpers can accept either.
type TupleIterator interface {
	// HasNext reports whether Next will return a tuple. Repeated calls
	// without Next do not advance.
	HasNext() (bool, error)

	// Next returns the next tuple and advances.
	Next() (*tuple.Tuple, error)
}
