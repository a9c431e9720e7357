package main

import (
	"fmt"
	"io"
	"strings"

	"storecore/pkg/database"
	"storecore/pkg/dberror"
	"storecore/pkg/execution"
	"storecore/pkg/execution/aggregation"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/heap"
	"storecore/pkg/storage/page"
)

// pageStats describes slot occupancy of one heap page.
type pageStats struct {
	PageNo primitives.PageNumber
	Used   int
	Total  int
	Bitmap string
}

// options selects what report prints for each table.
type options struct {
	Table       string
	ShowTuples  bool
	AggOp       string
	AggField    int
	GroupField  int
	ColorBitmap bool
}

// inspectTable reads every page of the named table through the page store.
func inspectTable(db *database.Database, tid *primitives.TransactionID, name string) ([]pageStats, error) {
	tableID, err := db.Catalog().GetTableID(name)
	if err != nil {
		return nil, err
	}
	file, err := db.Catalog().GetDbFile(tableID)
	if err != nil {
		return nil, err
	}
	hf, ok := file.(*heap.HeapFile)
	if !ok {
		return nil, dberror.Usage("NOT_A_HEAP_FILE", "table %s is not stored in a heap file", name)
	}

	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}

	stats := make([]pageStats, 0, int(numPages))
	for n := primitives.PageNumber(0); n < numPages; n++ {
		pg, err := db.PageStore().GetPage(tid, page.NewPageDescriptor(tableID, n), primitives.ReadOnly)
		if err != nil {
			return nil, err
		}
		hp, ok := pg.(*heap.HeapPage)
		if !ok {
			return nil, dberror.Usage("NOT_A_HEAP_PAGE", "page %d of %s is not a heap page", n, name)
		}
		total := hp.NumSlots()
		stats = append(stats, pageStats{
			PageNo: n,
			Used:   total - hp.GetNumEmptySlots(),
			Total:  total,
			Bitmap: slotBitmap(hp),
		})
	}
	return stats, nil
}

// slotBitmap renders used slots as '#' and free slots as '.'.
func slotBitmap(hp *heap.HeapPage) string {
	var b strings.Builder
	for i, n := 0, hp.NumSlots(); i < n; i++ {
		if hp.IsSlotUsed(i) {
			b.WriteByte('#')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func colorBitmap(bitmap string) string {
	var b strings.Builder
	for _, r := range bitmap {
		if r == '#' {
			b.WriteString(usedSlotStyle.Render("#"))
		} else {
			b.WriteString(freeSlotStyle.Render("."))
		}
	}
	return b.String()
}

func dumpTuples(db *database.Database, tid *primitives.TransactionID, name string) (database.QueryResult, error) {
	scan, err := db.Scan(tid, name, "")
	if err != nil {
		return database.QueryResult{}, err
	}
	return db.Execute(scan)
}

func aggregateTable(db *database.Database, tid *primitives.TransactionID, name string, opts options) (database.QueryResult, error) {
	op, err := aggregation.ParseOp(opts.AggOp)
	if err != nil {
		return database.QueryResult{}, err
	}
	scan, err := db.Scan(tid, name, "")
	if err != nil {
		return database.QueryResult{}, err
	}
	agg, err := execution.NewAggregate(scan, opts.AggField, opts.GroupField, op)
	if err != nil {
		return database.QueryResult{}, err
	}
	return db.Execute(agg)
}

// report writes the occupancy of every selected table, plus tuples and an
// aggregate when requested.
func report(w io.Writer, db *database.Database, opts options) error {
	tables := db.GetTables()
	if opts.Table != "" {
		if !db.Catalog().TableExists(opts.Table) {
			return dberror.NotFound("TABLE_NOT_FOUND", "table %s not found", opts.Table)
		}
		tables = []string{opts.Table}
	}

	tid := db.BeginTransaction()
	defer db.PageStore().TransactionComplete(tid)

	fmt.Fprintln(w, renderTitle("▤", "storecore heap inspector"))
	for _, name := range tables {
		stats, err := inspectTable(db, tid, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, renderHeaderWithCount(name, len(stats)))
		fmt.Fprint(w, renderTable([]string{"page", "used", "slots", "bitmap"}, occupancyRows(stats, opts.ColorBitmap)))

		if opts.ShowTuples {
			res, err := dumpTuples(db, tid, name)
			if err != nil {
				return err
			}
			writeResult(w, res)
		}

		if opts.AggOp != "" {
			res, err := aggregateTable(db, tid, name, opts)
			if err != nil {
				return err
			}
			writeResult(w, res)
		}
	}
	return nil
}

func occupancyRows(stats []pageStats, color bool) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		bitmap := truncateString(s.Bitmap, maxCellWidth)
		if color {
			bitmap = colorBitmap(bitmap)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.PageNo),
			fmt.Sprintf("%d", s.Used),
			fmt.Sprintf("%d", s.Total),
			bitmap,
		})
	}
	return rows
}

func writeResult(w io.Writer, res database.QueryResult) {
	if len(res.Columns) > 0 {
		fmt.Fprint(w, renderTable(res.Columns, res.Rows))
	}
	fmt.Fprintln(w, messageStyle.Render(res.Message))
}
