package heap

import (
	"storecore/pkg/dberror"
	"storecore/pkg/iterator"
	"storecore/pkg/logging"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/page"
	"storecore/pkg/tuple"
)

// HeapFile stores the tuples of one table, unordered, in a single OS file.
// It implements page.DbFile.
//
// Storage Layout:
//   - Each page is exactly PageSize() bytes
//   - Pages are numbered sequentially starting from 0
//   - Page offsets are calculated as: pageNo * PageSize()
type HeapFile struct {
	*page.BaseFile
	tupleDesc *tuple.TupleDescription
}

// NewHeapFile opens (creating if needed) the heap file at filename.
func NewHeapFile(filename primitives.Filepath, td *tuple.TupleDescription, pageSize int) (*HeapFile, error) {
	if td == nil {
		return nil, dberror.Configuration("NIL_SCHEMA", "heap file %s needs a schema", filename)
	}

	baseFile, err := page.NewBaseFile(filename, pageSize)
	if err != nil {
		return nil, err
	}

	if NumSlots(pageSize, td) == 0 {
		_ = baseFile.Close()
		return nil, dberror.Configuration("TUPLE_TOO_LARGE",
			"a %d-byte tuple does not fit on a %d-byte page", td.GetSize(), pageSize)
	}

	return &HeapFile{
		BaseFile:  baseFile,
		tupleDesc: td,
	}, nil
}

func (hf *HeapFile) GetTupleDesc() *tuple.TupleDescription {
	return hf.tupleDesc
}

// ReadPage reads and decodes one page from disk. It bypasses the page cache
// and is meant to be called by it.
func (hf *HeapFile) ReadPage(pid page.PageDescriptor) (page.Page, error) {
	if pid.TableID != hf.GetID() {
		return nil, dberror.NotFound("PAGE_TABLE_MISMATCH",
			"%s does not belong to table %d", pid, hf.GetID()).In("ReadPage", "HeapFile")
	}

	pageData, err := hf.ReadPageData(pid.PageNum)
	if err != nil {
		return nil, err
	}

	return NewHeapPage(pid, pageData, hf.tupleDesc)
}

// WritePage writes p at its page offset.
func (hf *HeapFile) WritePage(p page.Page) error {
	if p == nil {
		return dberror.Usage("NIL_PAGE", "page cannot be nil")
	}
	if p.GetID().TableID != hf.GetID() {
		return dberror.NotFound("PAGE_TABLE_MISMATCH",
			"%s does not belong to table %d", p.GetID(), hf.GetID()).In("WritePage", "HeapFile")
	}

	return hf.WritePageData(p.GetID().PageNum, p.GetPageData())
}

// InsertTuple walks the existing pages through the cache and stores t on the
// first one with a free slot. When every page is full a zeroed page is
// appended to the file and t goes into its slot 0.
func (hf *HeapFile) InsertTuple(tid *primitives.TransactionID, t *tuple.Tuple, pages page.PageSource) ([]page.Page, error) {
	if !t.TupleDesc.Equals(hf.tupleDesc) {
		return nil, dberror.Configuration("SCHEMA_MISMATCH",
			"tuple schema %s does not match table schema %s", t.TupleDesc, hf.tupleDesc).
			In("InsertTuple", "HeapFile")
	}

	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}

	for pageNo := primitives.PageNumber(0); pageNo < numPages; pageNo++ {
		hp, err := hf.fetch(tid, pageNo, pages)
		if err != nil {
			return nil, err
		}
		if hp.GetNumEmptySlots() == 0 {
			continue
		}
		if err := hp.AddTuple(t); err != nil {
			return nil, err
		}
		return []page.Page{hp}, nil
	}

	pageNo, err := hf.AppendEmptyPage()
	if err != nil {
		return nil, err
	}
	logging.WithComponent("HeapFile").
		WithField("table", hf.GetID()).
		WithField("page", pageNo).
		Debug("appended page")

	hp, err := hf.fetch(tid, pageNo, pages)
	if err != nil {
		return nil, err
	}
	if err := hp.AddTuple(t); err != nil {
		return nil, err
	}
	return []page.Page{hp}, nil
}

// DeleteTuple frees the slot named by t.RecordID.
func (hf *HeapFile) DeleteTuple(tid *primitives.TransactionID, t *tuple.Tuple, pages page.PageSource) (page.Page, error) {
	rid := t.RecordID
	if rid == nil {
		return nil, dberror.NotFound("NO_RECORD_ID", "tuple has no record id").In("DeleteTuple", "HeapFile")
	}
	if rid.PageID.TableID != hf.GetID() {
		return nil, dberror.NotFound("TUPLE_TABLE_MISMATCH",
			"tuple %s does not belong to table %d", rid, hf.GetID()).In("DeleteTuple", "HeapFile")
	}

	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}
	if rid.PageID.PageNum >= numPages {
		return nil, dberror.NotFound("PAGE_NOT_FOUND", "%s is past the end of the file", rid.PageID).
			In("DeleteTuple", "HeapFile")
	}

	hp, err := hf.fetch(tid, rid.PageID.PageNum, pages)
	if err != nil {
		return nil, err
	}
	if err := hp.DeleteTuple(t); err != nil {
		return nil, err
	}
	return hp, nil
}

// Iterator returns a scan over every tuple in the file. Pages are fetched
// through pages one at a time.
func (hf *HeapFile) Iterator(tid *primitives.TransactionID, pages page.PageSource) iterator.DbFileIterator {
	return NewHeapFileIterator(hf, tid, pages)
}

func (hf *HeapFile) fetch(tid *primitives.TransactionID, pageNo primitives.PageNumber, pages page.PageSource) (*HeapPage, error) {
	pid := page.NewPageDescriptor(hf.GetID(), pageNo)
	p, err := pages.GetPage(tid, pid, primitives.ReadWrite)
	if err != nil {
		return nil, err
	}

	hp, ok := p.(*HeapPage)
	if !ok {
		return nil, dberror.Configuration("NOT_HEAP_PAGE", "%s is not a heap page", pid)
	}
	return hp, nil
}
