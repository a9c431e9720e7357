// Package storage is the root of storecore's disk-based storage engine.
//
// Data is organised into fixed-size pages (4 KB by default) that are read
// and written as whole units.
//
// # Sub-packages
//
//   - [storecore/pkg/storage/page] – page and file contracts, the page
//     descriptor and raw page-granular file I/O.
//   - [storecore/pkg/storage/heap] – heap files: unordered tuple storage
//     in bitmap-slotted pages, with sequential scans that go through the
//     page cache.
//
// # Heap page layout
//
// A heap page holding tuples of width w bytes has n = floor(P*8 / (w*8+1))
// slots. The page starts with a ceil(n/8)-byte header bitmap (bit i is slot
// i, least significant bit first) followed by n fixed-width slots and zero
// padding up to the page size.
package storage
