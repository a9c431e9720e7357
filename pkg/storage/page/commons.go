package page

import (
	"io"
	"os"
	"sync"

	"storecore/pkg/dberror"
	"storecore/pkg/primitives"
)

// BaseFile provides page-granular I/O over one OS file. All methods are safe
// for concurrent use.
//
// The table id is the hash of the canonical file path and stays constant for
// the lifetime of the file.
type BaseFile struct {
	file     *os.File
	tableID  primitives.TableID
	pageSize int
	mutex    sync.RWMutex
	filePath primitives.Filepath
}

// NewBaseFile opens (creating if needed) the file at filePath.
func NewBaseFile(filePath primitives.Filepath, pageSize int) (*BaseFile, error) {
	if filePath == "" {
		return nil, dberror.Configuration("EMPTY_PATH", "file path cannot be empty")
	}
	if pageSize <= 0 {
		return nil, dberror.Configuration("INVALID_PAGE_SIZE", "page size must be positive, got %d", pageSize)
	}

	canonical := filePath.Canonical()
	file, err := openFile(canonical)
	if err != nil {
		return nil, err
	}

	return &BaseFile{
		file:     file,
		tableID:  canonical.HashAsTableID(),
		pageSize: pageSize,
		filePath: canonical,
	}, nil
}

func (bf *BaseFile) GetID() primitives.TableID {
	return bf.tableID
}

func (bf *BaseFile) PageSize() int {
	return bf.pageSize
}

// FilePath returns the canonical path of the file.
func (bf *BaseFile) FilePath() primitives.Filepath {
	return bf.filePath
}

// NumPages returns ceil(fileLength / pageSize).
func (bf *BaseFile) NumPages() (primitives.PageNumber, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()

	return bf.numPagesLocked()
}

func (bf *BaseFile) numPagesLocked() (primitives.PageNumber, error) {
	if bf.file == nil {
		return 0, fileClosed("NumPages")
	}

	fileInfo, err := bf.file.Stat()
	if err != nil {
		return 0, dberror.StorageIO(err, "STAT_FAILED", "failed to stat %s", bf.filePath).In("NumPages", "BaseFile")
	}

	size := fileInfo.Size()
	ps := int64(bf.pageSize)
	return primitives.PageNumber((size + ps - 1) / ps), nil // #nosec G115
}

// ReadPageData reads exactly one page at pageNo*pageSize. A short read is a
// storage error.
func (bf *BaseFile) ReadPageData(pageNo primitives.PageNumber) ([]byte, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()

	if bf.file == nil {
		return nil, fileClosed("ReadPageData")
	}

	offset := int64(pageNo) * int64(bf.pageSize) // #nosec G115
	pageData := make([]byte, bf.pageSize)

	n, err := bf.file.ReadAt(pageData, offset)
	if err != nil && !(err == io.EOF && n == bf.pageSize) {
		return nil, dberror.StorageIO(err, "SHORT_READ",
			"read %d of %d bytes for page %d of %s", n, bf.pageSize, pageNo, bf.filePath).
			In("ReadPageData", "BaseFile")
	}
	return pageData, nil
}

// WritePageData writes exactly one page at pageNo*pageSize.
func (bf *BaseFile) WritePageData(pageNo primitives.PageNumber, pageData []byte) error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return fileClosed("WritePageData")
	}

	if len(pageData) != bf.pageSize {
		return dberror.Usage("INVALID_PAGE_DATA",
			"invalid page data size: expected %d, got %d", bf.pageSize, len(pageData))
	}

	offset := int64(pageNo) * int64(bf.pageSize) // #nosec G115
	if _, err := bf.file.WriteAt(pageData, offset); err != nil {
		return dberror.StorageIO(err, "WRITE_FAILED",
			"failed to write page %d of %s", pageNo, bf.filePath).In("WritePageData", "BaseFile")
	}
	return nil
}

// AppendEmptyPage extends the file by one zeroed page and returns its page
// number. The check and the write happen under the write lock so concurrent
// callers get distinct pages.
func (bf *BaseFile) AppendEmptyPage() (primitives.PageNumber, error) {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	pageNo, err := bf.numPagesLocked()
	if err != nil {
		return 0, err
	}

	offset := int64(pageNo) * int64(bf.pageSize) // #nosec G115
	if _, err := bf.file.WriteAt(make([]byte, bf.pageSize), offset); err != nil {
		return 0, dberror.StorageIO(err, "APPEND_FAILED",
			"failed to append page %d to %s", pageNo, bf.filePath).In("AppendEmptyPage", "BaseFile")
	}
	return pageNo, nil
}

// Sync flushes the OS buffers for the file.
func (bf *BaseFile) Sync() error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return fileClosed("Sync")
	}
	if err := bf.file.Sync(); err != nil {
		return dberror.StorageIO(err, "SYNC_FAILED", "failed to sync %s", bf.filePath)
	}
	return nil
}

// Close closes the underlying file handle. Closing twice is a no-op.
func (bf *BaseFile) Close() error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return nil
	}

	err := bf.file.Close()
	bf.file = nil
	if err != nil {
		return dberror.StorageIO(err, "CLOSE_FAILED", "failed to close %s", bf.filePath)
	}
	return nil
}

func openFile(filename primitives.Filepath) (*os.File, error) {
	file, err := os.OpenFile(string(filename), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, dberror.StorageIO(err, "OPEN_FAILED", "failed to open file %s", filename)
	}
	return file, nil
}

func fileClosed(op string) error {
	return dberror.StorageIO(nil, "FILE_CLOSED", "file is closed").In(op, "BaseFile")
}
