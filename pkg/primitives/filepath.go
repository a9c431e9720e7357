package primitives

import (
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// Filepath is a type-safe wrapper around file paths used for heap files and
// catalog definitions.
//
// Example usage:
//
//	dataDir := primitives.Filepath("/data")
//	tablePath := dataDir.Join("users.dat")
//	tableID := tablePath.HashAsTableID()
type Filepath string

// Canonical returns the absolute, cleaned form of the path. If the absolute
// path cannot be determined the cleaned relative path is returned.
func (f Filepath) Canonical() Filepath {
	abs, err := filepath.Abs(string(f))
	if err != nil {
		return Filepath(filepath.Clean(string(f)))
	}
	return Filepath(abs)
}

// HashAsTableID generates a TableID by hashing the canonical path with
// xxhash64. The same file always yields the same id, whichever relative
// spelling was used to open it.
func (f Filepath) HashAsTableID() TableID {
	return TableID(xxhash.Sum64String(string(f.Canonical())))
}

// Dir returns the directory portion of the path.
func (f Filepath) Dir() string {
	return filepath.Dir(string(f))
}

// Join joins path elements to this path.
func (f Filepath) Join(elem ...string) Filepath {
	parts := append([]string{string(f)}, elem...)
	return Filepath(filepath.Join(parts...))
}

// Exists reports whether a file or directory exists at this path.
func (f Filepath) Exists() bool {
	_, err := os.Stat(string(f))
	return err == nil
}

// String returns the path as a plain string.
func (f Filepath) String() string {
	return string(f)
}
