package memory

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storecore/pkg/dberror"
	"storecore/pkg/iterator"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/heap"
	"storecore/pkg/storage/page"
	"storecore/pkg/tuple"
	"storecore/pkg/types"
)

const testPageSize = 64

var pairDesc = tuple.MustTupleDesc([]types.Type{types.IntType, types.IntType}, []string{"a", "b"})

type fileMap map[primitives.TableID]page.DbFile

func (m fileMap) GetDbFile(id primitives.TableID) (page.DbFile, error) {
	f, ok := m[id]
	if !ok {
		return nil, dberror.NotFound("TABLE_NOT_FOUND", "no table %d", id)
	}
	return f, nil
}

type storeFixture struct {
	file  *heap.HeapFile
	store *PageStore
	tid   *primitives.TransactionID
}

func newFixture(t *testing.T, capacity, emptyPages int) *storeFixture {
	t.Helper()

	hf, err := heap.NewHeapFile(primitives.Filepath(filepath.Join(t.TempDir(), "t.dat")), pairDesc, testPageSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hf.Close() })

	for rep := 0; rep < emptyPages; rep++ {
		_, err := hf.AppendEmptyPage()
		require.NoError(t, err)
	}

	return &storeFixture{
		file:  hf,
		store: NewPageStore(fileMap{hf.GetID(): hf}, capacity),
		tid:   primitives.NewTransactionID(),
	}
}

func (f *storeFixture) pid(n int) page.PageDescriptor {
	return page.NewPageDescriptor(f.file.GetID(), primitives.PageNumber(n))
}

func (f *storeFixture) get(t *testing.T, n int) page.Page {
	t.Helper()
	p, err := f.store.GetPage(f.tid, f.pid(n), primitives.ReadOnly)
	require.NoError(t, err)
	return p
}

func pair(t *testing.T, a, b int32) *tuple.Tuple {
	t.Helper()
	tup, err := tuple.FromFields(pairDesc, types.NewIntField(a), types.NewIntField(b))
	require.NoError(t, err)
	return tup
}

func TestPageStore_DefaultCapacity(t *testing.T) {
	assert.Equal(t, MaxPageCount, NewPageStore(fileMap{}, 0).Capacity())
}

func TestPageStore_CacheBound(t *testing.T) {
	f := newFixture(t, 3, 6)

	for i := 0; i < 6; i++ {
		f.get(t, i)
		assert.LessOrEqual(t, f.store.Size(), 3)
	}
	assert.Equal(t, 3, f.store.Size())
}

func TestPageStore_HitReturnsSamePage(t *testing.T) {
	f := newFixture(t, 3, 1)

	first := f.get(t, 0)
	assert.Same(t, first, f.get(t, 0))
}

func TestPageStore_FIFOEviction(t *testing.T) {
	f := newFixture(t, 3, 5)

	f.get(t, 0)
	f.get(t, 1)
	f.get(t, 2)
	f.get(t, 0) // hit, no reorder

	f.get(t, 3)
	assert.False(t, f.store.Contains(f.pid(0)), "oldest page is evicted even if recently read")
	assert.True(t, f.store.Contains(f.pid(1)))
	assert.Equal(t, []page.PageDescriptor{f.pid(1), f.pid(2), f.pid(3)}, f.store.CachedPages())
}

func TestPageStore_MarkAndCacheRetouches(t *testing.T) {
	f := newFixture(t, 3, 5)

	f.get(t, 0)
	f.get(t, 1)
	f.get(t, 2)

	require.NoError(t, f.store.InsertTuple(f.tid, f.file.GetID(), pair(t, 1, 2)))
	assert.Equal(t, []page.PageDescriptor{f.pid(1), f.pid(2), f.pid(0)}, f.store.CachedPages())

	f.get(t, 3)
	assert.False(t, f.store.Contains(f.pid(1)))
	assert.True(t, f.store.Contains(f.pid(0)))

	f.get(t, 4)
	f.get(t, 1)
	assert.False(t, f.store.Contains(f.pid(0)), "dirty page evicted after two younger loads")

	onDisk, err := f.file.ReadPage(f.pid(0))
	require.NoError(t, err)
	assert.Equal(t, 6, onDisk.(*heap.HeapPage).GetNumEmptySlots(), "dirty page was written on eviction")
}

func TestPageStore_RoundTripThroughEviction(t *testing.T) {
	f := newFixture(t, 2, 0)

	const n = 40 // 7 tuples per page, so 6 pages through a 2-page cache
	for i := 0; i < n; i++ {
		require.NoError(t, f.store.InsertTuple(f.tid, f.file.GetID(), pair(t, int32(i), int32(-i))))
		require.LessOrEqual(t, f.store.Size(), 2)
	}

	numPages, err := f.file.NumPages()
	require.NoError(t, err)
	assert.Equal(t, primitives.PageNumber(6), numPages)

	it := f.file.Iterator(f.tid, f.store)
	got, err := drainFile(it)
	require.NoError(t, err)
	require.Len(t, got, n)
	for i, tup := range got {
		assert.True(t, tup.Equals(pair(t, int32(i), int32(-i))), "tuple %d", i)
	}
}

func TestPageStore_DeleteAndStaleRecordID(t *testing.T) {
	f := newFixture(t, 4, 0)

	victim := pair(t, 5, 5)
	require.NoError(t, f.store.InsertTuple(f.tid, f.file.GetID(), victim))
	rid := *victim.RecordID

	require.NoError(t, f.store.DeleteTuple(f.tid, victim))

	stale := pair(t, 5, 5)
	stale.RecordID = tuple.NewRecordID(rid.PageID, rid.TupleNum)
	err := f.store.DeleteTuple(f.tid, stale)
	assert.True(t, dberror.IsNotFound(err))

	p, err := f.store.GetPage(f.tid, rid.PageID, primitives.ReadOnly)
	require.NoError(t, err)
	assert.Equal(t, 7, p.(*heap.HeapPage).GetNumEmptySlots())

	assert.True(t, dberror.IsNotFound(f.store.DeleteTuple(f.tid, pair(t, 1, 1))))
}

func TestPageStore_FlushAllPages(t *testing.T) {
	f := newFixture(t, 10, 0)

	for i := 0; i < 10; i++ {
		require.NoError(t, f.store.InsertTuple(f.tid, f.file.GetID(), pair(t, int32(i), 0)))
	}
	require.NoError(t, f.store.FlushAllPages())

	for _, pid := range f.store.CachedPages() {
		p, err := f.store.GetPage(f.tid, pid, primitives.ReadOnly)
		require.NoError(t, err)
		assert.Nil(t, p.IsDirty())
	}

	fresh := NewPageStore(fileMap{f.file.GetID(): f.file}, 10)
	got, err := drainFile(f.file.Iterator(f.tid, fresh))
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestPageStore_FlushAndDiscardPage(t *testing.T) {
	f := newFixture(t, 4, 0)

	require.NoError(t, f.store.InsertTuple(f.tid, f.file.GetID(), pair(t, 1, 1)))
	require.NoError(t, f.store.FlushPage(f.pid(0)))
	require.NoError(t, f.store.FlushPage(f.pid(3)), "uncached page is a no-op")

	require.NoError(t, f.store.InsertTuple(f.tid, f.file.GetID(), pair(t, 2, 2)))
	f.store.DiscardPage(f.pid(0))
	assert.False(t, f.store.Contains(f.pid(0)))

	got, err := drainFile(f.file.Iterator(f.tid, f.store))
	require.NoError(t, err)
	assert.Len(t, got, 1, "discarded change never reached disk")
}

func TestPageStore_Errors(t *testing.T) {
	f := newFixture(t, 2, 0)

	assert.True(t, dberror.IsResourceExhausted(f.store.EvictPage()))

	_, err := f.store.GetPage(f.tid, page.NewPageDescriptor(f.file.GetID()+1, 0), primitives.ReadOnly)
	assert.True(t, dberror.IsNotFound(err))

	_, err = f.store.GetPage(f.tid, f.pid(0), primitives.ReadOnly)
	assert.True(t, dberror.IsStorageIO(err), "page past end of file")

	assert.True(t, dberror.IsNotFound(f.store.InsertTuple(f.tid, f.file.GetID()+1, pair(t, 1, 1))))
	assert.True(t, dberror.IsUsage(f.store.InsertTuple(f.tid, f.file.GetID(), nil)))

	_, err = f.store.GetTupleDesc(f.file.GetID() + 1)
	assert.True(t, dberror.IsNotFound(err))

	td, err := f.store.GetTupleDesc(f.file.GetID())
	require.NoError(t, err)
	assert.Same(t, pairDesc, td)
}

func TestPageStore_PermissionTracking(t *testing.T) {
	f := newFixture(t, 2, 2)
	other := primitives.NewTransactionID()

	f.get(t, 0)
	assert.True(t, f.store.HoldsLock(f.tid, f.pid(0)))
	assert.False(t, f.store.HoldsLock(other, f.pid(0)))
	assert.False(t, f.store.HoldsLock(nil, f.pid(0)))

	f.store.ReleasePage(f.tid, f.pid(0))
	assert.False(t, f.store.HoldsLock(f.tid, f.pid(0)))

	f.get(t, 1)
	f.store.TransactionComplete(f.tid)
	assert.False(t, f.store.HoldsLock(f.tid, f.pid(1)))
	assert.True(t, f.store.Contains(f.pid(1)), "completion does not drop cached pages")
}

// drainFile mirrors iterator.Drain for storage-level file iterators, which
// do not carry a schema and so do not satisfy iterator.DbIterator.
func drainFile(iter iterator.DbFileIterator) ([]*tuple.Tuple, error) {
	if err := iter.Open(); err != nil {
		return nil, err
	}

	tuples, err := iterator.Collect(iter)
	return tuples, errors.Join(err, iter.Close())
}
