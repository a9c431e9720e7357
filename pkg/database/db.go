package database

import (
	"fmt"
	"os"
	"sync"

	"storecore/pkg/catalog"
	"storecore/pkg/config"
	"storecore/pkg/dberror"
	"storecore/pkg/execution"
	"storecore/pkg/iterator"
	"storecore/pkg/logging"
	"storecore/pkg/memory"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/heap"
	"storecore/pkg/tuple"
)

// Database wires the catalog, the page store and the heap files of one data
// directory together.
type Database struct {
	cfg       config.Config
	catalog   *catalog.Catalog
	pageStore *memory.PageStore

	mutex sync.RWMutex
	stats *DatabaseStats
}

// DatabaseStats tracks performance metrics
type DatabaseStats struct {
	QueriesExecuted   int64
	TransactionsCount int64
	ErrorCount        int64
	mutex             sync.RWMutex
}

// DatabaseInfo contains database metadata
type DatabaseInfo struct {
	DataDir           string
	Tables            []string
	TableCount        int
	CachedPages       int
	QueriesExecuted   int64
	TransactionsCount int64
	ErrorCount        int64
}

// Open validates cfg, creates the data directory if needed and loads the
// catalog file when it exists.
func Open(cfg *config.Config) (*Database, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, dberror.StorageIO(err, "DATA_DIR_FAILED", "creating data directory %s", cfg.DataDir).In("Open", "Database")
	}

	cat := catalog.NewCatalog()
	catalogPath := primitives.Filepath(cfg.CatalogPath())
	if catalogPath.Exists() {
		if err := cat.LoadSchema(catalogPath, cfg.PageSize); err != nil {
			_ = cat.Close()
			return nil, err
		}
	}

	db := &Database{
		cfg:       *cfg,
		catalog:   cat,
		pageStore: memory.NewPageStore(cat, cfg.BufferPoolPages),
		stats:     &DatabaseStats{},
	}

	logging.WithComponent("Database").
		WithField("data_dir", cfg.DataDir).
		WithField("tables", len(cat.TableIDs())).
		Info("database opened")
	return db, nil
}

func (db *Database) Catalog() *catalog.Catalog {
	return db.catalog
}

func (db *Database) PageStore() *memory.PageStore {
	return db.pageStore
}

func (db *Database) Config() config.Config {
	return db.cfg
}

// CreateTable creates <name>.dat in the data directory, registers it and
// appends its definition to the catalog file.
func (db *Database) CreateTable(name string, td *tuple.TupleDescription, primaryKey string) (primitives.TableID, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if db.catalog.TableExists(name) {
		return primitives.InvalidTableID, dberror.Configuration("TABLE_EXISTS", "table %q already exists", name).
			In("CreateTable", "Database")
	}

	// validate the definition before anything touches the disk
	line := catalog.FormatTableLine(name, td, primaryKey)
	if _, err := catalog.ParseTableLine(line); err != nil {
		return primitives.InvalidTableID, err
	}

	path := primitives.Filepath(db.cfg.DataDir).Join(name + ".dat")
	hf, err := heap.NewHeapFile(path, td, db.cfg.PageSize)
	if err != nil {
		return primitives.InvalidTableID, err
	}
	if err := db.catalog.AddTable(hf, name, primaryKey); err != nil {
		_ = hf.Close()
		return primitives.InvalidTableID, err
	}
	if err := db.appendCatalogLine(line); err != nil {
		if rmErr := db.catalog.RemoveTable(name); rmErr != nil {
			logging.WithTable(name).WithError(rmErr).Warn("failed to unregister table")
		}
		return primitives.InvalidTableID, err
	}

	logging.WithTable(name).WithField("schema", td.String()).Info("created table")
	return hf.GetID(), nil
}

func (db *Database) appendCatalogLine(line string) error {
	path := db.cfg.CatalogPath()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return dberror.StorageIO(err, "CATALOG_WRITE_FAILED", "opening catalog %s", path).In("CreateTable", "Database")
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return dberror.StorageIO(err, "CATALOG_WRITE_FAILED", "writing catalog %s", path).In("CreateTable", "Database")
	}
	return nil
}

// BeginTransaction returns a fresh transaction id. Transactions only tag the
// pages they dirty; there is no isolation or rollback.
func (db *Database) BeginTransaction() *primitives.TransactionID {
	db.stats.mutex.Lock()
	db.stats.TransactionsCount++
	db.stats.mutex.Unlock()
	return primitives.NewTransactionID()
}

// CompleteTransaction flushes the pages tid dirtied and forgets it.
func (db *Database) CompleteTransaction(tid *primitives.TransactionID) error {
	if err := db.pageStore.FlushAllPages(); err != nil {
		return err
	}
	db.pageStore.TransactionComplete(tid)
	return nil
}

// Scan builds a sequential scan over the named table.
func (db *Database) Scan(tid *primitives.TransactionID, tableName, alias string) (*execution.Operator, error) {
	tableID, err := db.catalog.GetTableID(tableName)
	if err != nil {
		return nil, err
	}
	return execution.NewSeqScan(tid, tableID, alias, db.catalog, db.pageStore)
}

// Execute opens root, drains it and formats the result.
func (db *Database) Execute(root *execution.Operator) (QueryResult, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	tuples, err := iterator.Drain(root)
	if err != nil {
		db.recordError()
		return QueryResult{}, err
	}

	db.recordSuccess()
	return NewResultFormatter().Format(root, tuples), nil
}

// GetTables returns the table names sorted alphabetically.
func (db *Database) GetTables() []string {
	ids := db.catalog.TableIDs()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, err := db.catalog.GetTableName(id); err == nil {
			names = append(names, name)
		}
	}
	return names
}

// GetStatistics returns current database statistics
func (db *Database) GetStatistics() DatabaseInfo {
	tables := db.GetTables()

	db.stats.mutex.RLock()
	defer db.stats.mutex.RUnlock()

	return DatabaseInfo{
		DataDir:           db.cfg.DataDir,
		Tables:            tables,
		TableCount:        len(tables),
		CachedPages:       db.pageStore.Size(),
		QueriesExecuted:   db.stats.QueriesExecuted,
		TransactionsCount: db.stats.TransactionsCount,
		ErrorCount:        db.stats.ErrorCount,
	}
}

// recordError updates error statistics
func (db *Database) recordError() {
	db.stats.mutex.Lock()
	db.stats.ErrorCount++
	db.stats.mutex.Unlock()
}

// recordSuccess updates success statistics
func (db *Database) recordSuccess() {
	db.stats.mutex.Lock()
	db.stats.QueriesExecuted++
	db.stats.mutex.Unlock()
}

// Close flushes every dirty page and closes all table files.
func (db *Database) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if err := db.pageStore.Close(); err != nil {
		return err
	}
	return db.catalog.Close()
}
