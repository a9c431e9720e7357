// Package execution holds the operators of the storage core's query trees.
//
// Operators use the iterator (volcano) model: each one implements
// iterator.DbIterator and pulls tuples from its children one at a time.
// There is a single Operator type whose Kind selects the behaviour:
//
//   - Scan reads a heap file through the page store.
//   - Filter passes tuples accepted by a Predicate.
//   - Insert and Delete apply one mutation per child tuple and produce a
//     single count tuple.
//   - Aggregate folds its child through an [storecore/pkg/execution/aggregation]
//     Aggregator and iterates the frozen groups.
//
// Insert, Delete and Aggregate are two-phase: the first Open drains the
// child and computes the result; Rewind and later opens replay it without
// touching the child again.
//
// Trees are assembled by the caller; there is no planner.
package execution
