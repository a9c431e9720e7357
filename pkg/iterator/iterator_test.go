package iterator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storecore/pkg/dberror"
	"storecore/pkg/tuple"
	"storecore/pkg/types"
)

var testDesc = tuple.MustTupleDesc([]types.Type{types.IntType}, []string{"v"})

func intTuples(t *testing.T, values ...int32) []*tuple.Tuple {
	t.Helper()
	out := make([]*tuple.Tuple, 0, len(values))
	for _, v := range values {
		tup, err := tuple.FromFields(testDesc, types.NewIntField(v))
		require.NoError(t, err)
		out = append(out, tup)
	}
	return out
}

func values(t *testing.T, tuples []*tuple.Tuple) []string {
	t.Helper()
	out := make([]string, 0, len(tuples))
	for _, tup := range tuples {
		f, err := tup.GetField(0)
		require.NoError(t, err)
		out = append(out, f.String())
	}
	return out
}

func TestTupleIterator_Lifecycle(t *testing.T) {
	it := NewTupleIterator(testDesc, intTuples(t, 1, 2, 3))
	assert.Same(t, testDesc, it.GetTupleDesc())

	_, err := it.Next()
	assert.True(t, dberror.IsUsage(err), "Next before Open")
	_, err = it.HasNext()
	assert.True(t, dberror.IsUsage(err), "HasNext before Open")
	assert.True(t, dberror.IsUsage(it.Rewind()), "Rewind before Open")

	require.NoError(t, it.Open())

	for rep := 0; rep < 3; rep++ {
		ok, err := it.HasNext()
		require.NoError(t, err)
		assert.True(t, ok)
	}

	got, err := Collect(it)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, values(t, got))

	ok, err := it.HasNext()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = it.Next()
	assert.True(t, dberror.IsUsage(err), "Next past end")

	require.NoError(t, it.Rewind())
	got, err = Collect(it)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, values(t, got), "rewind replays from the start")

	require.NoError(t, it.Close())
	require.NoError(t, it.Close())
	_, err = it.Next()
	assert.True(t, dberror.IsUsage(err), "Next after Close")
}

func TestDrainAndCount(t *testing.T) {
	it := NewTupleIterator(testDesc, intTuples(t, 4, 5))

	got, err := Drain(it)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, it.Open())
	n, err := Count(it)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReduce_StopsOnError(t *testing.T) {
	it := NewTupleIterator(testDesc, intTuples(t, 1, 2, 3))
	require.NoError(t, it.Open())

	boom := errors.New("boom")
	seen := 0
	_, err := Reduce(it, 0, func(acc int, _ *tuple.Tuple) (int, error) {
		seen++
		if seen == 2 {
			return acc, boom
		}
		return acc + 1, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, seen)
}

func TestSliceIterator(t *testing.T) {
	s := NewSliceIterator([]string{"a", "b"})
	assert.Equal(t, 2, s.Len())

	v, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	_, _ = s.Next()

	assert.False(t, s.HasNext())
	_, err = s.Next()
	assert.True(t, dberror.IsUsage(err))

	s.Rewind()
	assert.True(t, s.HasNext())
}
