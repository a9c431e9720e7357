package iterator

import (
	"errors"

	"storecore/pkg/tuple"
)

// Iterate drives the HasNext/Next loop. processFunc returns false to stop
// early; any error stops iteration and is returned.
func Iterate(iter TupleIterator, processFunc func(*tuple.Tuple) (continueLooping bool, err error)) error {
	for {
		hasNext, err := iter.HasNext()
		if err != nil {
			return err
		}
		if !hasNext {
			return nil
		}

		tup, err := iter.Next()
		if err != nil {
			return err
		}

		shouldContinue, err := processFunc(tup)
		if err != nil {
			return err
		}
		if !shouldContinue {
			return nil
		}
	}
}

// ForEach applies processFunc to each remaining tuple.
func ForEach(iter TupleIterator, processFunc func(*tuple.Tuple) error) error {
	return Iterate(iter, func(tup *tuple.Tuple) (bool, error) {
		return true, processFunc(tup)
	})
}

// Reduce folds accumulator over the remaining tuples.
func Reduce[T any](iter TupleIterator, initial T, accumulator func(T, *tuple.Tuple) (T, error)) (T, error) {
	result := initial

	err := Iterate(iter, func(tup *tuple.Tuple) (bool, error) {
		var err error
		result, err = accumulator(result, tup)
		return true, err
	})

	return result, err
}

// Count consumes the iterator and returns the number of tuples it produced.
func Count(iter TupleIterator) (int, error) {
	return Reduce(iter, 0, func(count int, _ *tuple.Tuple) (int, error) {
		return count + 1, nil
	})
}

// Collect consumes the iterator into a slice.
func Collect(iter TupleIterator) ([]*tuple.Tuple, error) {
	var results []*tuple.Tuple

	err := Iterate(iter, func(tup *tuple.Tuple) (bool, error) {
		results = append(results, tup)
		return true, nil
	})

	return results, err
}

// Drain opens iter, collects every tuple and closes it again. A close error
// is reported alongside any iteration error.
func Drain(iter DbIterator) ([]*tuple.Tuple, error) {
	if err := iter.Open(); err != nil {
		return nil, err
	}

	tuples, err := Collect(iter)
	return tuples, errors.Join(err, iter.Close())
}
