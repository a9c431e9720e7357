// Package memory holds the page cache: a bounded FIFO arena of pages and the
// PageStore that fills it from table files and flushes it back.
package memory

import (
	"storecore/pkg/dberror"
	"storecore/pkg/storage/page"
)

// PageCache stores pages in memory. It knows nothing about files or
// transactions; eviction decisions belong to PageStore.
type PageCache interface {
	// Get returns the cached page for pid without changing its position.
	Get(pid page.PageDescriptor) (page.Page, bool)

	// Put inserts p, or replaces the page already cached under pid. Either
	// way the entry moves to the young end of the eviction order. Putting a
	// new page into a full cache fails with ResourceExhausted.
	Put(pid page.PageDescriptor, p page.Page) error

	// Remove drops pid. Removing an absent page is a no-op.
	Remove(pid page.PageDescriptor)

	// Oldest returns the entry next in line for eviction.
	Oldest() (page.PageDescriptor, page.Page, bool)

	Size() int
	Capacity() int
	Clear()

	// GetAll returns the cached page ids, oldest first.
	GetAll() []page.PageDescriptor
}

type cacheEntry struct {
	pid  page.PageDescriptor
	page page.Page
	live bool
}

// FIFOPageCache is a fixed-capacity arena of pages evicted in insertion
// order. Entries live in a dense slice; a map from page id to arena index
// gives O(1) lookup and a queue of arena indices records FIFO order. Slots
// freed by Remove are recycled through a free list.
//
// A queue entry is stale when its arena slot was removed or re-queued; the
// seq numbers tell the two apart, and stale entries are skipped lazily.
//
// FIFOPageCache is not safe for concurrent use; PageStore serializes access.
type FIFOPageCache struct {
	capacity int
	entries  []cacheEntry
	index    map[page.PageDescriptor]int
	queue    []queued
	seq      []uint64
	free     []int
	next     uint64
}

type queued struct {
	slot int
	seq  uint64
}

// NewFIFOPageCache creates an empty cache holding at most capacity pages.
func NewFIFOPageCache(capacity int) *FIFOPageCache {
	return &FIFOPageCache{
		capacity: capacity,
		entries:  make([]cacheEntry, 0, capacity),
		index:    make(map[page.PageDescriptor]int, capacity),
		seq:      make([]uint64, 0, capacity),
	}
}

func (c *FIFOPageCache) Get(pid page.PageDescriptor) (page.Page, bool) {
	slot, ok := c.index[pid]
	if !ok {
		return nil, false
	}
	return c.entries[slot].page, true
}

func (c *FIFOPageCache) Put(pid page.PageDescriptor, p page.Page) error {
	if slot, ok := c.index[pid]; ok {
		c.entries[slot].page = p
		c.enqueue(slot)
		return nil
	}

	if len(c.index) >= c.capacity {
		return dberror.ResourceExhausted("CACHE_FULL", "page cache is full (%d pages)", c.capacity).
			In("Put", "FIFOPageCache")
	}

	var slot int
	if n := len(c.free); n > 0 {
		slot = c.free[n-1]
		c.free = c.free[:n-1]
		c.entries[slot] = cacheEntry{pid: pid, page: p, live: true}
	} else {
		slot = len(c.entries)
		c.entries = append(c.entries, cacheEntry{pid: pid, page: p, live: true})
		c.seq = append(c.seq, 0)
	}

	c.index[pid] = slot
	c.enqueue(slot)
	return nil
}

func (c *FIFOPageCache) enqueue(slot int) {
	c.next++
	c.seq[slot] = c.next
	c.queue = append(c.queue, queued{slot: slot, seq: c.next})
	c.compact()
}

func (c *FIFOPageCache) Remove(pid page.PageDescriptor) {
	slot, ok := c.index[pid]
	if !ok {
		return
	}

	delete(c.index, pid)
	c.entries[slot] = cacheEntry{}
	c.seq[slot] = 0
	c.free = append(c.free, slot)
}

// front drops stale entries from the head of the queue and returns the
// first live one.
func (c *FIFOPageCache) front() (int, bool) {
	for len(c.queue) > 0 {
		q := c.queue[0]
		if c.entries[q.slot].live && c.seq[q.slot] == q.seq {
			return q.slot, true
		}
		c.queue = c.queue[1:]
	}
	return 0, false
}

func (c *FIFOPageCache) Oldest() (page.PageDescriptor, page.Page, bool) {
	slot, ok := c.front()
	if !ok {
		return page.PageDescriptor{}, nil, false
	}
	e := c.entries[slot]
	return e.pid, e.page, true
}

// compact drops stale queue entries once the queue grows past twice the
// capacity.
func (c *FIFOPageCache) compact() {
	if len(c.queue) <= 2*c.capacity {
		return
	}
	live := make([]queued, 0, len(c.index))
	for _, q := range c.queue {
		if c.entries[q.slot].live && c.seq[q.slot] == q.seq {
			live = append(live, q)
		}
	}
	c.queue = live
}

func (c *FIFOPageCache) Size() int {
	return len(c.index)
}

func (c *FIFOPageCache) Capacity() int {
	return c.capacity
}

func (c *FIFOPageCache) Clear() {
	c.entries = c.entries[:0]
	c.seq = c.seq[:0]
	c.queue = nil
	c.free = nil
	c.index = make(map[page.PageDescriptor]int, c.capacity)
}

func (c *FIFOPageCache) GetAll() []page.PageDescriptor {
	pids := make([]page.PageDescriptor, 0, len(c.index))
	for _, q := range c.queue {
		if c.entries[q.slot].live && c.seq[q.slot] == q.seq {
			pids = append(pids, c.entries[q.slot].pid)
		}
	}
	return pids
}
