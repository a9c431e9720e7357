package execution

import (
	"storecore/pkg/iterator"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/page"
	"storecore/pkg/tuple"
)

type scanState struct {
	tableID primitives.TableID
	alias   string
	it      iterator.DbFileIterator
}

// NewSeqScan scans every tuple of a table in page-then-slot order, reading
// pages through store. Output field names are qualified as alias.name; an
// empty alias keeps the table's own names.
func NewSeqScan(tid *primitives.TransactionID, tableID primitives.TableID, alias string, catalog TableResolver, store page.PageSource) (*Operator, error) {
	file, td, _, err := catalog.ResolveTable(tableID)
	if err != nil {
		return nil, err
	}

	outDesc := td
	if alias != "" {
		outDesc = td.WithPrefix(alias)
	}

	op := newOperator(KindScan, outDesc)
	op.scan = &scanState{
		tableID: tableID,
		alias:   alias,
		it:      file.Iterator(tid, store),
	}
	return op, nil
}

func (op *Operator) readScan() (*tuple.Tuple, error) {
	it := op.scan.it

	hasNext, err := it.HasNext()
	if err != nil || !hasNext {
		return nil, err
	}

	t, err := it.Next()
	if err != nil {
		return nil, err
	}
	return t.WithDesc(op.td), nil
}
