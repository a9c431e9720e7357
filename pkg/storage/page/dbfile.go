package page

import (
	"storecore/pkg/iterator"
	"storecore/pkg/primitives"
	"storecore/pkg/tuple"
)

// DbFile is a table's on-disk storage. Reads and writes are page granular;
// tuple mutations fetch the pages they touch through a PageSource and return
// the pages they modified so the caller can mark them dirty.
type DbFile interface {
	// ReadPage reads one page directly from disk, bypassing the cache.
	ReadPage(pid PageDescriptor) (Page, error)

	// WritePage persists p at its page offset.
	WritePage(p Page) error

	// InsertTuple adds t to the first page with a free slot, appending a page
	// when every page is full. It returns the modified pages.
	InsertTuple(tid *primitives.TransactionID, t *tuple.Tuple, pages PageSource) ([]Page, error)

	// DeleteTuple removes the tuple named by t.RecordID and returns the
	// modified page.
	DeleteTuple(tid *primitives.TransactionID, t *tuple.Tuple, pages PageSource) (Page, error)

	// Iterator scans every tuple in page-then-slot order.
	Iterator(tid *primitives.TransactionID, pages PageSource) iterator.DbFileIterator

	// NumPages returns the number of pages currently in the file.
	NumPages() (primitives.PageNumber, error)

	// GetID returns the table id derived from the file path.
	GetID() primitives.TableID

	// GetTupleDesc returns the schema of every tuple in the file.
	GetTupleDesc() *tuple.TupleDescription

	// Close releases the file handle.
	Close() error
}
