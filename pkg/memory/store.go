package memory

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"storecore/pkg/dberror"
	"storecore/pkg/logging"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/page"
	"storecore/pkg/tuple"
)

const (
	MaxPageCount = 50
)

// TableResolver finds the file backing a table. The catalog implements it.
type TableResolver interface {
	GetDbFile(tableID primitives.TableID) (page.DbFile, error)
}

// PageStore is the buffer pool. Every page read by a file scan or mutation
// goes through GetPage, which keeps at most Capacity pages in memory and
// evicts the oldest one (writing it back if dirty) to make room.
//
// Pages are not pinned. A page returned by GetPage may be evicted by any
// later call, so callers must fetch again instead of holding on to it.
type PageStore struct {
	tables       TableResolver
	mutex        sync.Mutex
	cache        PageCache
	transactions map[int64]*TransactionInfo
}

// TransactionInfo records the pages a transaction touched. Permissions are
// kept for a future lock manager and are not enforced.
type TransactionInfo struct {
	startTime   time.Time
	lockedPages map[page.PageDescriptor]primitives.Permissions
	dirtyPages  map[page.PageDescriptor]bool
}

// NewPageStore creates a page store over tables holding at most capacity
// pages. A non-positive capacity selects MaxPageCount.
func NewPageStore(tables TableResolver, capacity int) *PageStore {
	if capacity <= 0 {
		capacity = MaxPageCount
	}
	return &PageStore{
		tables:       tables,
		cache:        NewFIFOPageCache(capacity),
		transactions: make(map[int64]*TransactionInfo),
	}
}

// GetPage returns the cached page for pid, loading it from its table file on
// a miss. A hit does not change the page's eviction position.
func (p *PageStore) GetPage(tid *primitives.TransactionID, pid page.PageDescriptor, perm primitives.Permissions) (page.Page, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.trackPageAccess(tid, pid, perm)

	if pg, ok := p.cache.Get(pid); ok {
		return pg, nil
	}

	dbFile, err := p.tables.GetDbFile(pid.TableID)
	if err != nil {
		return nil, err
	}

	if p.cache.Size() >= p.cache.Capacity() {
		if err := p.evictPage(); err != nil {
			return nil, err
		}
	}

	pg, err := dbFile.ReadPage(pid)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Put(pid, pg); err != nil {
		return nil, err
	}

	logging.WithComponent("PageStore").WithField("page", pid).Debug("page loaded")
	return pg, nil
}

func (p *PageStore) trackPageAccess(tid *primitives.TransactionID, pid page.PageDescriptor, perm primitives.Permissions) {
	if tid == nil {
		return
	}
	info := p.getOrCreateTransaction(tid)
	if prev, ok := info.lockedPages[pid]; !ok || perm > prev {
		info.lockedPages[pid] = perm
	}
}

func (p *PageStore) getOrCreateTransaction(tid *primitives.TransactionID) *TransactionInfo {
	info, ok := p.transactions[tid.ID()]
	if !ok {
		info = &TransactionInfo{
			startTime:   time.Now(),
			lockedPages: make(map[page.PageDescriptor]primitives.Permissions),
			dirtyPages:  make(map[page.PageDescriptor]bool),
		}
		p.transactions[tid.ID()] = info
	}
	return info
}

// GetTupleDesc returns the schema of table tableID as stored on disk.
func (p *PageStore) GetTupleDesc(tableID primitives.TableID) (*tuple.TupleDescription, error) {
	dbFile, err := p.tables.GetDbFile(tableID)
	if err != nil {
		return nil, err
	}
	return dbFile.GetTupleDesc(), nil
}

// InsertTuple adds t to table tableID and caches the modified pages as dirty.
func (p *PageStore) InsertTuple(tid *primitives.TransactionID, tableID primitives.TableID, t *tuple.Tuple) error {
	if t == nil {
		return dberror.Usage("NIL_TUPLE", "tuple cannot be nil")
	}

	dbFile, err := p.tables.GetDbFile(tableID)
	if err != nil {
		return err
	}

	modified, err := dbFile.InsertTuple(tid, t, p)
	if err != nil {
		return err
	}
	return p.markAndCache(tid, modified)
}

// DeleteTuple removes t from the table named by its RecordID and caches the
// modified page as dirty.
func (p *PageStore) DeleteTuple(tid *primitives.TransactionID, t *tuple.Tuple) error {
	if t == nil {
		return dberror.Usage("NIL_TUPLE", "tuple cannot be nil")
	}
	if t.RecordID == nil {
		return dberror.NotFound("NO_RECORD_ID", "tuple has no record id").In("DeleteTuple", "PageStore")
	}

	dbFile, err := p.tables.GetDbFile(t.RecordID.PageID.TableID)
	if err != nil {
		return err
	}

	modified, err := dbFile.DeleteTuple(tid, t, p)
	if err != nil {
		return err
	}
	return p.markAndCache(tid, []page.Page{modified})
}

// markAndCache marks every page dirty for tid and puts it in the cache,
// replacing any cached copy and moving it to the young end of the FIFO.
func (p *PageStore) markAndCache(tid *primitives.TransactionID, pages []page.Page) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, pg := range pages {
		pid := pg.GetID()
		pg.MarkDirty(true, tid)

		if _, cached := p.cache.Get(pid); !cached && p.cache.Size() >= p.cache.Capacity() {
			if err := p.evictPage(); err != nil {
				return err
			}
		}
		if err := p.cache.Put(pid, pg); err != nil {
			return err
		}

		if tid != nil {
			p.getOrCreateTransaction(tid).dirtyPages[pid] = true
		}
	}
	return nil
}

// EvictPage flushes (if dirty) and drops the oldest cached page.
func (p *PageStore) EvictPage() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.evictPage()
}

func (p *PageStore) evictPage() error {
	pid, pg, ok := p.cache.Oldest()
	if !ok {
		return dberror.ResourceExhausted("NOTHING_TO_EVICT", "page cache is empty").In("EvictPage", "PageStore")
	}

	dirty := pg.IsDirty() != nil
	if dirty {
		if err := p.writePage(pg); err != nil {
			return err
		}
	}

	p.cache.Remove(pid)
	logging.WithComponent("PageStore").
		WithField("page", pid).
		WithField("dirty", dirty).
		Debug("page evicted")
	return nil
}

func (p *PageStore) writePage(pg page.Page) error {
	dbFile, err := p.tables.GetDbFile(pg.GetID().TableID)
	if err != nil {
		return err
	}
	if err := dbFile.WritePage(pg); err != nil {
		return err
	}
	pg.MarkDirty(false, nil)
	return nil
}

// FlushPage writes pid to disk if it is cached and dirty. The page stays
// cached.
func (p *PageStore) FlushPage(pid page.PageDescriptor) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	pg, ok := p.cache.Get(pid)
	if !ok || pg.IsDirty() == nil {
		return nil
	}
	return p.writePage(pg)
}

// FlushAllPages writes every dirty cached page. Pages are grouped by table
// and each table's file is written from its own goroutine.
func (p *PageStore) FlushAllPages() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	byTable := make(map[primitives.TableID][]page.Page)
	for _, pid := range p.cache.GetAll() {
		pg, _ := p.cache.Get(pid)
		if pg.IsDirty() != nil {
			byTable[pid.TableID] = append(byTable[pid.TableID], pg)
		}
	}

	var g errgroup.Group
	for tableID, pages := range byTable {
		pages := pages
		dbFile, err := p.tables.GetDbFile(tableID)
		if err != nil {
			return err
		}

		g.Go(func() error {
			for _, pg := range pages {
				if err := dbFile.WritePage(pg); err != nil {
					return err
				}
				pg.MarkDirty(false, nil)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logging.WithComponent("PageStore").WithField("tables", len(byTable)).Debug("flushed all pages")
	return nil
}

// DiscardPage drops pid from the cache without writing it.
func (p *PageStore) DiscardPage(pid page.PageDescriptor) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.cache.Remove(pid)
}

func (p *PageStore) Size() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.cache.Size()
}

func (p *PageStore) Capacity() int {
	return p.cache.Capacity()
}

// Contains reports whether pid is cached.
func (p *PageStore) Contains(pid page.PageDescriptor) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	_, ok := p.cache.Get(pid)
	return ok
}

// CachedPages returns the cached page ids, oldest first.
func (p *PageStore) CachedPages() []page.PageDescriptor {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.cache.GetAll()
}

// HoldsLock reports whether tid has requested pid.
func (p *PageStore) HoldsLock(tid *primitives.TransactionID, pid page.PageDescriptor) bool {
	if tid == nil {
		return false
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	info, ok := p.transactions[tid.ID()]
	if !ok {
		return false
	}
	_, held := info.lockedPages[pid]
	return held
}

// ReleasePage forgets tid's access to pid.
func (p *PageStore) ReleasePage(tid *primitives.TransactionID, pid page.PageDescriptor) {
	if tid == nil {
		return
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if info, ok := p.transactions[tid.ID()]; ok {
		delete(info.lockedPages, pid)
	}
}

// TransactionComplete forgets everything recorded for tid. Dirty pages stay
// cached and are written on eviction or flush.
func (p *PageStore) TransactionComplete(tid *primitives.TransactionID) {
	if tid == nil {
		return
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if info, ok := p.transactions[tid.ID()]; ok {
		logging.WithTx(tid.ID()).
			WithField("pages", len(info.lockedPages)).
			WithField("dirty", len(info.dirtyPages)).
			WithField("elapsed", time.Since(info.startTime)).
			Debug("transaction complete")
		delete(p.transactions, tid.ID())
	}
}

// Close flushes every dirty page.
func (p *PageStore) Close() error {
	return p.FlushAllPages()
}
