package tuple

import (
	"fmt"

	"storecore/pkg/primitives"
)

// RecordID locates a stored tuple: the page that holds it and its slot on
// that page. It does not own the tuple.
type RecordID struct {
	PageID   primitives.PageDescriptor
	TupleNum primitives.SlotID
}

// NewRecordID creates a new RecordID
func NewRecordID(pageID primitives.PageDescriptor, tupleNum primitives.SlotID) *RecordID {
	return &RecordID{
		PageID:   pageID,
		TupleNum: tupleNum,
	}
}

func (rid *RecordID) Equals(other *RecordID) bool {
	if rid == nil || other == nil {
		return rid == other
	}
	return rid.PageID == other.PageID && rid.TupleNum == other.TupleNum
}

func (rid *RecordID) String() string {
	return fmt.Sprintf("RecordID(page=%s, tuple=%d)", rid.PageID, rid.TupleNum)
}
