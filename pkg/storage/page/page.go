package page

import (
	"storecore/pkg/primitives"
)

const (
	// PageSize is the default size of each page in bytes (4KB)
	PageSize = 4096
)

// Page is a page resident in the page cache. A page is dirty when it has
// been modified since it was last written to disk.
type Page interface {
	// GetID returns the ID of this page
	GetID() primitives.PageDescriptor

	// IsDirty returns the transaction that last dirtied this page, or nil if
	// the page is clean.
	IsDirty() *primitives.TransactionID

	// MarkDirty sets the dirty state of this page
	MarkDirty(dirty bool, tid *primitives.TransactionID)

	// GetPageData serializes the page to exactly one page worth of bytes.
	GetPageData() []byte

	// GetBeforeImage returns the page as it was at the last SetBeforeImage.
	GetBeforeImage() Page

	// SetBeforeImage snapshots the current contents as the before image.
	SetBeforeImage()
}

// PageSource hands out cached pages. The page cache implements it; files use
// it so that every page they touch goes through the cache.
type PageSource interface {
	GetPage(tid *primitives.TransactionID, pid primitives.PageDescriptor, perm primitives.Permissions) (Page, error)
}
