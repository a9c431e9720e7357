package heap

import (
	"bytes"
	"sync"

	"storecore/pkg/dberror"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/page"
	"storecore/pkg/tuple"
	"storecore/pkg/types"
)

// HeapPage is a single page of a heap file and implements page.Page.
//
// Page layout:
//
//	[header bitmap: ceil(n/8) bytes][slot 0][slot 1]...[slot n-1][zero padding]
//
// Bit i of the header (byte i/8, bit i%8, least significant first) is set
// when slot i holds a tuple. Every slot is exactly tupleDesc.GetSize() bytes
// wide, and n = floor(pageSize*8 / (tupleSize*8 + 1)).
type HeapPage struct {
	pageID    page.PageDescriptor
	tupleDesc *tuple.TupleDescription
	pageSize  int
	tuples    []*tuple.Tuple // indexed by slot; nil means the slot is free
	dirtier   *primitives.TransactionID
	oldData   []byte
	mutex     sync.RWMutex
}

// NumSlots returns how many tuples of td fit on a page of pageSize bytes.
func NumSlots(pageSize int, td *tuple.TupleDescription) int {
	return (pageSize * 8) / (int(td.GetSize())*8 + 1)
}

// HeaderSize returns the size in bytes of the bitmap for numSlots slots.
func HeaderSize(numSlots int) int {
	return (numSlots + 7) / 8
}

// CreateEmptyPageData returns a zeroed page, which decodes as a page with
// every slot free.
func CreateEmptyPageData(pageSize int) []byte {
	return make([]byte, pageSize)
}

// NewEmptyHeapPage creates a page with every slot free.
func NewEmptyHeapPage(pid page.PageDescriptor, td *tuple.TupleDescription, pageSize int) (*HeapPage, error) {
	return NewHeapPage(pid, CreateEmptyPageData(pageSize), td)
}

// NewHeapPage decodes a page from its on-disk bytes. The page size is
// len(data).
func NewHeapPage(pid page.PageDescriptor, data []byte, td *tuple.TupleDescription) (*HeapPage, error) {
	if len(data) == 0 {
		return nil, dberror.StorageIO(nil, "INVALID_PAGE_DATA", "empty page data for %s", pid).
			In("NewHeapPage", "HeapPage")
	}

	numSlots := NumSlots(len(data), td)
	if numSlots == 0 {
		return nil, dberror.Configuration("TUPLE_TOO_LARGE",
			"a %d-byte tuple does not fit on a %d-byte page", td.GetSize(), len(data))
	}

	hp := &HeapPage{
		pageID:    pid,
		tupleDesc: td,
		pageSize:  len(data),
		tuples:    make([]*tuple.Tuple, numSlots),
		oldData:   make([]byte, len(data)),
	}

	if err := hp.parsePageData(data); err != nil {
		return nil, err
	}

	copy(hp.oldData, data)
	return hp, nil
}

func (hp *HeapPage) parsePageData(data []byte) error {
	header := data[:HeaderSize(len(hp.tuples))]
	tupleSize := int(hp.tupleDesc.GetSize())
	base := len(header)

	for i := range hp.tuples {
		if header[i/8]&(1<<(uint(i)%8)) == 0 {
			continue
		}

		offset := base + i*tupleSize
		t, err := readTuple(bytes.NewReader(data[offset:offset+tupleSize]), hp.tupleDesc)
		if err != nil {
			return dberror.StorageIO(err, "CORRUPT_SLOT",
				"cannot decode slot %d of %s", i, hp.pageID).In("NewHeapPage", "HeapPage")
		}

		t.RecordID = tuple.NewRecordID(hp.pageID, primitives.SlotID(i)) // #nosec G115
		hp.tuples[i] = t
	}
	return nil
}

func readTuple(r *bytes.Reader, td *tuple.TupleDescription) (*tuple.Tuple, error) {
	t := tuple.NewTuple(td)
	for j, fieldType := range td.Types {
		field, err := types.ParseField(r, fieldType)
		if err != nil {
			return nil, err
		}
		if err := t.SetField(j, field); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (hp *HeapPage) GetID() page.PageDescriptor {
	return hp.pageID
}

func (hp *HeapPage) GetTupleDesc() *tuple.TupleDescription {
	return hp.tupleDesc
}

// NumSlots returns the slot capacity of this page.
func (hp *HeapPage) NumSlots() int {
	return len(hp.tuples)
}

func (hp *HeapPage) IsDirty() *primitives.TransactionID {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.dirtier
}

func (hp *HeapPage) MarkDirty(dirty bool, tid *primitives.TransactionID) {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	if dirty {
		hp.dirtier = tid
	} else {
		hp.dirtier = nil
	}
}

// GetPageData serializes the page. Decoding the result with NewHeapPage
// yields an identical page.
func (hp *HeapPage) GetPageData() []byte {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.serialize()
}

func (hp *HeapPage) serialize() []byte {
	data := make([]byte, hp.pageSize)
	headerSize := HeaderSize(len(hp.tuples))
	tupleSize := int(hp.tupleDesc.GetSize())

	for i, t := range hp.tuples {
		if t == nil {
			continue
		}
		data[i/8] |= 1 << (uint(i) % 8)

		offset := headerSize + i*tupleSize
		buf := bytes.NewBuffer(data[offset:offset])
		for j := range hp.tupleDesc.Types {
			f, _ := t.GetField(j)
			if f == nil {
				continue
			}
			_ = f.Serialize(buf)
		}
	}
	return data
}

func (hp *HeapPage) GetBeforeImage() page.Page {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	before, _ := NewHeapPage(hp.pageID, hp.oldData, hp.tupleDesc)
	return before
}

func (hp *HeapPage) SetBeforeImage() {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()
	hp.oldData = hp.serialize()
}

// AddTuple stores a copy of t in the lowest free slot and sets the RecordID
// on both the copy and t.
func (hp *HeapPage) AddTuple(t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	if !t.TupleDesc.Equals(hp.tupleDesc) {
		return dberror.Configuration("SCHEMA_MISMATCH",
			"tuple schema %s does not match page schema %s", t.TupleDesc, hp.tupleDesc)
	}

	for i, existing := range hp.tuples {
		if existing != nil {
			continue
		}
		stored := t.Clone()
		stored.RecordID = tuple.NewRecordID(hp.pageID, primitives.SlotID(i)) // #nosec G115
		hp.tuples[i] = stored
		t.RecordID = stored.RecordID
		return nil
	}

	return dberror.ResourceExhausted("PAGE_FULL", "no free slot on %s", hp.pageID).In("AddTuple", "HeapPage")
}

// DeleteTuple frees the slot named by t.RecordID and clears the RecordID.
func (hp *HeapPage) DeleteTuple(t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	rid := t.RecordID
	if rid == nil {
		return dberror.NotFound("NO_RECORD_ID", "tuple has no record id").In("DeleteTuple", "HeapPage")
	}
	if rid.PageID != hp.pageID {
		return dberror.NotFound("WRONG_PAGE", "tuple lives on %s, not %s", rid.PageID, hp.pageID).
			In("DeleteTuple", "HeapPage")
	}

	slot := int(rid.TupleNum)
	if slot >= len(hp.tuples) || hp.tuples[slot] == nil {
		return dberror.NotFound("SLOT_EMPTY", "slot %d of %s is empty", slot, hp.pageID).
			In("DeleteTuple", "HeapPage")
	}

	hp.tuples[slot].RecordID = nil
	hp.tuples[slot] = nil
	t.RecordID = nil
	return nil
}

func (hp *HeapPage) GetNumEmptySlots() int {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	empty := 0
	for _, t := range hp.tuples {
		if t == nil {
			empty++
		}
	}
	return empty
}

func (hp *HeapPage) IsSlotUsed(i int) bool {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return i >= 0 && i < len(hp.tuples) && hp.tuples[i] != nil
}

// GetTuples returns the live tuples in slot order. The returned slice is a
// copy; the tuples are shared with the page.
func (hp *HeapPage) GetTuples() []*tuple.Tuple {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	tuples := make([]*tuple.Tuple, 0, len(hp.tuples))
	for _, t := range hp.tuples {
		if t != nil {
			tuples = append(tuples, t)
		}
	}
	return tuples
}

// GetTupleAt returns the tuple in slot idx, or nil if the slot is free.
func (hp *HeapPage) GetTupleAt(idx int) (*tuple.Tuple, error) {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	if idx < 0 || idx >= len(hp.tuples) {
		return nil, dberror.Usage("SLOT_OUT_OF_RANGE", "slot index %d out of bounds [0, %d)", idx, len(hp.tuples))
	}
	return hp.tuples[idx], nil
}
