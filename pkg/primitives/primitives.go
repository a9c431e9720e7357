// Package primitives holds the small identifier types shared by every layer
// of the storage core: table ids, page numbers, slot numbers and the
// transaction handle that tags dirty pages.
package primitives

import "fmt"

// HashCode represents a hash value (e.g., for keys, page IDs, etc.)
type HashCode uint64

// TableID identifies a table. It is derived from the hash of the backing heap
// file's canonical path and stays constant for the life of that file.
type TableID uint64

// PageNumber represents a page number within a table. Page numbers are dense
// and start at 0.
type PageNumber uint64

// SlotID represents a slot number within a page (for tuple storage)
type SlotID uint16

// InvalidTableID represents an invalid or unset table ID
const InvalidTableID TableID = 0

// IsValid checks if the TableID is a valid non-zero identifier.
func (t TableID) IsValid() bool {
	return t != InvalidTableID
}

// String returns a string representation of the TableID.
func (t TableID) String() string {
	return fmt.Sprintf("TableID(%d)", uint64(t))
}
