package page

import "storecore/pkg/primitives"

// PageDescriptor identifies a page within a table.
type PageDescriptor = primitives.PageDescriptor

// NewPageDescriptor creates a new page descriptor
func NewPageDescriptor(tableID primitives.TableID, pageNum primitives.PageNumber) PageDescriptor {
	return PageDescriptor{TableID: tableID, PageNum: pageNum}
}
