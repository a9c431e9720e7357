package primitives

import (
	"encoding/binary"
	"fmt"
)

// PageDescriptor identifies a page by its owning table and page number. It
// is a plain comparable value so it can key maps directly.
type PageDescriptor struct {
	TableID TableID
	PageNum PageNumber
}

// GetTableID returns the table ID
func (p PageDescriptor) GetTableID() TableID {
	return p.TableID
}

// PageNo returns the page number
func (p PageDescriptor) PageNo() PageNumber {
	return p.PageNum
}

// Serialize returns the descriptor as 16 little-endian bytes.
func (p PageDescriptor) Serialize() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(p.TableID))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(p.PageNum))
	return buf
}

func (p PageDescriptor) String() string {
	return fmt.Sprintf("PageDescriptor(table=%d, page=%d)", uint64(p.TableID), uint64(p.PageNum))
}
