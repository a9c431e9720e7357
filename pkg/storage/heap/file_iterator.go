package heap

import (
	"storecore/pkg/dberror"
	"storecore/pkg/iterator"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/page"
	"storecore/pkg/tuple"
)

// HeapFileIterator scans a heap file in page-then-slot order. It copies the
// tuples of one page at a time out of the cache and keeps no page reference
// between calls, so pages it visited may be evicted while it runs.
type HeapFileIterator struct {
	base  *iterator.BaseIterator
	file  *HeapFile
	tid   *primitives.TransactionID
	pages page.PageSource

	nextPage primitives.PageNumber
	current  []*tuple.Tuple
	pos      int
}

func NewHeapFileIterator(file *HeapFile, tid *primitives.TransactionID, pages page.PageSource) *HeapFileIterator {
	it := &HeapFileIterator{
		file:  file,
		tid:   tid,
		pages: pages,
	}
	it.base = iterator.NewBaseIterator(it.readNext)
	return it
}

func (it *HeapFileIterator) Open() error {
	it.reset()
	it.base.MarkOpened()
	return nil
}

func (it *HeapFileIterator) HasNext() (bool, error) {
	return it.base.HasNext()
}

func (it *HeapFileIterator) Next() (*tuple.Tuple, error) {
	return it.base.Next()
}

// Rewind restarts the scan at page 0, slot 0.
func (it *HeapFileIterator) Rewind() error {
	if err := it.base.Rewind(); err != nil {
		return err
	}
	it.reset()
	return nil
}

func (it *HeapFileIterator) Close() error {
	it.current = nil
	return it.base.Close()
}

func (it *HeapFileIterator) reset() {
	it.nextPage = 0
	it.current = nil
	it.pos = 0
}

func (it *HeapFileIterator) readNext() (*tuple.Tuple, error) {
	for it.pos >= len(it.current) {
		numPages, err := it.file.NumPages()
		if err != nil {
			return nil, err
		}
		if it.nextPage >= numPages {
			return nil, nil
		}

		pid := page.NewPageDescriptor(it.file.GetID(), it.nextPage)
		p, err := it.pages.GetPage(it.tid, pid, primitives.ReadOnly)
		if err != nil {
			return nil, err
		}
		hp, ok := p.(*HeapPage)
		if !ok {
			return nil, dberror.Configuration("NOT_HEAP_PAGE", "%s is not a heap page", pid)
		}

		it.current = hp.GetTuples()
		it.pos = 0
		it.nextPage++
	}

	t := it.current[it.pos]
	it.pos++
	return t, nil
}
