package heap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storecore/pkg/dberror"
	"storecore/pkg/iterator"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/page"
	"storecore/pkg/tuple"
	"storecore/pkg/types"
)

var intPair = tuple.MustTupleDesc([]types.Type{types.IntType, types.IntType}, []string{"a", "b"})

// mapSource is an unbounded page cache for exercising HeapFile on its own.
type mapSource struct {
	file  *HeapFile
	pages map[page.PageDescriptor]page.Page
	gets  int
}

func newMapSource(f *HeapFile) *mapSource {
	return &mapSource{file: f, pages: map[page.PageDescriptor]page.Page{}}
}

func (s *mapSource) GetPage(_ *primitives.TransactionID, pid page.PageDescriptor, _ primitives.Permissions) (page.Page, error) {
	s.gets++
	if p, ok := s.pages[pid]; ok {
		return p, nil
	}
	p, err := s.file.ReadPage(pid)
	if err != nil {
		return nil, err
	}
	s.pages[pid] = p
	return p, nil
}

func (s *mapSource) flush(t *testing.T) {
	t.Helper()
	for _, p := range s.pages {
		require.NoError(t, s.file.WritePage(p))
	}
}

func newTestHeapFile(t *testing.T, td *tuple.TupleDescription, pageSize int) *HeapFile {
	t.Helper()
	path := primitives.Filepath(filepath.Join(t.TempDir(), "table.dat"))
	hf, err := NewHeapFile(path, td, pageSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hf.Close() })
	return hf
}

func pairTuple(t *testing.T, a, b int32) *tuple.Tuple {
	t.Helper()
	tup, err := tuple.FromFields(intPair, types.NewIntField(a), types.NewIntField(b))
	require.NoError(t, err)
	return tup
}

func TestNumSlots(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		td       *tuple.TupleDescription
		slots    int
		header   int
	}{
		{"two ints on 4096", 4096, intPair, 504, 63},
		{"one int on 4096", 4096, tuple.MustTupleDesc([]types.Type{types.IntType}, nil), 992, 124},
		{"int and string on 4096", 4096, tuple.MustTupleDesc([]types.Type{types.IntType, types.StringType}, nil), 30, 4},
		{"two ints on 64", 64, intPair, 7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NumSlots(tt.pageSize, tt.td)
			assert.Equal(t, tt.slots, n)
			assert.Equal(t, tt.header, HeaderSize(n))
			assert.LessOrEqual(t, HeaderSize(n)+n*int(tt.td.GetSize()), tt.pageSize)
		})
	}
}

func TestHeapPage_Layout(t *testing.T) {
	pid := page.NewPageDescriptor(1, 0)
	hp, err := NewEmptyHeapPage(pid, intPair, 64)
	require.NoError(t, err)
	assert.Equal(t, 7, hp.NumSlots())
	assert.Equal(t, 7, hp.GetNumEmptySlots())

	first, second := pairTuple(t, 1, 2), pairTuple(t, -1, 3)
	require.NoError(t, hp.AddTuple(first))
	require.NoError(t, hp.AddTuple(second))
	assert.Equal(t, primitives.SlotID(1), second.RecordID.TupleNum)

	require.NoError(t, hp.DeleteTuple(first))
	assert.Nil(t, first.RecordID)

	data := hp.GetPageData()
	require.Len(t, data, 64)
	assert.Equal(t, byte(0b10), data[0], "only slot 1 is live")
	assert.Equal(t, make([]byte, 8), data[1:9], "slot 0 is zeroed")
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 3, 0, 0, 0}, data[9:17])

	decoded, err := NewHeapPage(pid, data, intPair)
	require.NoError(t, err)
	assert.Equal(t, data, decoded.GetPageData())
	assert.False(t, decoded.IsSlotUsed(0))
	assert.True(t, decoded.IsSlotUsed(1))

	got, err := decoded.GetTupleAt(1)
	require.NoError(t, err)
	assert.True(t, got.Equals(second))
	assert.Equal(t, primitives.SlotID(1), got.RecordID.TupleNum)
}

func TestHeapPage_AddTupleStoresCopy(t *testing.T) {
	hp, err := NewEmptyHeapPage(page.NewPageDescriptor(1, 0), intPair, 64)
	require.NoError(t, err)

	tup := pairTuple(t, 1, 1)
	require.NoError(t, hp.AddTuple(tup))
	require.NotNil(t, tup.RecordID)

	require.NoError(t, tup.SetField(0, types.NewIntField(99)))

	stored, err := hp.GetTupleAt(0)
	require.NoError(t, err)
	assert.NotSame(t, tup, stored)
	assert.True(t, pairTuple(t, 1, 1).Equals(stored), "caller edits do not reach the page")
	assert.True(t, tup.RecordID.Equals(stored.RecordID))

	require.NoError(t, hp.DeleteTuple(tup))
	assert.Nil(t, tup.RecordID)
	assert.False(t, hp.IsSlotUsed(0))
}

func TestHeapPage_Errors(t *testing.T) {
	pid := page.NewPageDescriptor(1, 0)
	hp, err := NewEmptyHeapPage(pid, intPair, 64)
	require.NoError(t, err)

	other := tuple.MustTupleDesc([]types.Type{types.IntType}, nil)
	single, err := tuple.FromFields(other, types.NewIntField(1))
	require.NoError(t, err)
	assert.True(t, dberror.IsConfiguration(hp.AddTuple(single)))

	for i, n := 0, hp.NumSlots(); i < n; i++ {
		require.NoError(t, hp.AddTuple(pairTuple(t, int32(i), 0)))
	}
	assert.True(t, dberror.IsResourceExhausted(hp.AddTuple(pairTuple(t, 9, 9))))

	stale := pairTuple(t, 0, 0)
	assert.True(t, dberror.IsNotFound(hp.DeleteTuple(stale)), "no record id")

	stale.RecordID = tuple.NewRecordID(page.NewPageDescriptor(1, 5), 0)
	assert.True(t, dberror.IsNotFound(hp.DeleteTuple(stale)), "wrong page")

	_, err = NewHeapPage(pid, nil, intPair)
	assert.True(t, dberror.IsStorageIO(err))

	_, err = NewHeapPage(pid, make([]byte, 4), intPair)
	assert.True(t, dberror.IsConfiguration(err))
}

func TestHeapPage_BeforeImage(t *testing.T) {
	hp, err := NewEmptyHeapPage(page.NewPageDescriptor(1, 0), intPair, 64)
	require.NoError(t, err)

	require.NoError(t, hp.AddTuple(pairTuple(t, 1, 1)))
	assert.Equal(t, 7, hp.GetBeforeImage().(*HeapPage).GetNumEmptySlots())

	hp.SetBeforeImage()
	assert.Equal(t, 6, hp.GetBeforeImage().(*HeapPage).GetNumEmptySlots())
}

func TestHeapFile_InsertOverflowsToSecondPage(t *testing.T) {
	hf := newTestHeapFile(t, intPair, 64)
	src := newMapSource(hf)
	tid := primitives.NewTransactionID()

	for i := 0; i < 7; i++ {
		modified, err := hf.InsertTuple(tid, pairTuple(t, int32(i), 0), src)
		require.NoError(t, err)
		require.Len(t, modified, 1)
		assert.Equal(t, primitives.PageNumber(0), modified[0].GetID().PageNum)
	}

	n, err := hf.NumPages()
	require.NoError(t, err)
	assert.Equal(t, primitives.PageNumber(1), n)

	eighth := pairTuple(t, 7, 0)
	modified, err := hf.InsertTuple(tid, eighth, src)
	require.NoError(t, err)
	require.Len(t, modified, 1)
	assert.Equal(t, primitives.PageNumber(1), modified[0].GetID().PageNum)
	assert.Equal(t, primitives.SlotID(0), eighth.RecordID.TupleNum)

	n, err = hf.NumPages()
	require.NoError(t, err)
	assert.Equal(t, primitives.PageNumber(2), n)
}

func TestHeapFile_RoundTripThroughDisk(t *testing.T) {
	hf := newTestHeapFile(t, intPair, 64)
	src := newMapSource(hf)
	tid := primitives.NewTransactionID()

	for i := 0; i < 10; i++ {
		_, err := hf.InsertTuple(tid, pairTuple(t, int32(i), int32(i*i)), src)
		require.NoError(t, err)
	}
	src.flush(t)

	fresh := newMapSource(hf)
	it := hf.Iterator(tid, fresh)
	require.NoError(t, it.Open())
	got, err := iterator.Collect(it)
	require.NoError(t, err)
	require.NoError(t, it.Close())

	require.Len(t, got, 10)
	for i, tup := range got {
		assert.True(t, tup.Equals(pairTuple(t, int32(i), int32(i*i))), "tuple %d", i)
	}
}

func TestHeapFile_Delete(t *testing.T) {
	hf := newTestHeapFile(t, intPair, 64)
	src := newMapSource(hf)
	tid := primitives.NewTransactionID()

	victim := pairTuple(t, 1, 1)
	_, err := hf.InsertTuple(tid, victim, src)
	require.NoError(t, err)
	rid := *victim.RecordID

	p, err := hf.DeleteTuple(tid, victim, src)
	require.NoError(t, err)
	assert.Equal(t, rid.PageID, p.GetID())
	assert.Equal(t, 7, p.(*HeapPage).GetNumEmptySlots())

	stale := pairTuple(t, 1, 1)
	stale.RecordID = tuple.NewRecordID(rid.PageID, rid.TupleNum)
	_, err = hf.DeleteTuple(tid, stale, src)
	assert.True(t, dberror.IsNotFound(err))
	assert.Equal(t, byte(0), p.GetPageData()[0], "bitmap unchanged")

	stale.RecordID = tuple.NewRecordID(page.NewPageDescriptor(hf.GetID(), 9), 0)
	_, err = hf.DeleteTuple(tid, stale, src)
	assert.True(t, dberror.IsNotFound(err))

	stale.RecordID = tuple.NewRecordID(page.NewPageDescriptor(hf.GetID()+1, 0), 0)
	_, err = hf.DeleteTuple(tid, stale, src)
	assert.True(t, dberror.IsNotFound(err))
}

func TestHeapFile_ReadPageErrors(t *testing.T) {
	hf := newTestHeapFile(t, intPair, 64)

	_, err := hf.ReadPage(page.NewPageDescriptor(hf.GetID()+1, 0))
	assert.True(t, dberror.IsNotFound(err))

	_, err = hf.ReadPage(page.NewPageDescriptor(hf.GetID(), 0))
	assert.True(t, dberror.IsStorageIO(err), "page past end of empty file")

	_, err = hf.InsertTuple(primitives.NewTransactionID(),
		mustSingle(t), newMapSource(hf))
	assert.True(t, dberror.IsConfiguration(err))
}

func mustSingle(t *testing.T) *tuple.Tuple {
	t.Helper()
	tup, err := tuple.FromFields(tuple.MustTupleDesc([]types.Type{types.StringType}, nil), types.NewStringField("x"))
	require.NoError(t, err)
	return tup
}

func TestHeapFileIterator_Protocol(t *testing.T) {
	hf := newTestHeapFile(t, intPair, 64)
	src := newMapSource(hf)
	tid := primitives.NewTransactionID()

	it := hf.Iterator(tid, src)
	_, err := it.Next()
	assert.True(t, dberror.IsUsage(err))

	require.NoError(t, it.Open())
	ok, err := it.HasNext()
	require.NoError(t, err)
	assert.False(t, ok, "empty file")

	for i := 0; i < 9; i++ {
		_, err := hf.InsertTuple(tid, pairTuple(t, int32(i), 0), src)
		require.NoError(t, err)
	}

	require.NoError(t, it.Rewind())
	for rep := 0; rep < 3; rep++ {
		ok, err = it.HasNext()
		require.NoError(t, err)
		assert.True(t, ok)
	}

	first, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "0\t0\n", first.String())

	rest, err := iterator.Collect(it)
	require.NoError(t, err)
	assert.Len(t, rest, 8)

	_, err = it.Next()
	assert.True(t, dberror.IsUsage(err))

	require.NoError(t, it.Rewind())
	n, err := iterator.Count(it)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
}
