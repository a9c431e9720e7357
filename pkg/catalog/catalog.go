package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"storecore/pkg/dberror"
	"storecore/pkg/logging"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/page"
	"storecore/pkg/tuple"
)

// TableInfo holds the catalog entry of one table.
type TableInfo struct {
	File       page.DbFile // The file storing the table data
	Name       string
	PrimaryKey string // Name of the primary key field, empty if none
}

func (ti *TableInfo) GetID() primitives.TableID {
	return ti.File.GetID()
}

func (ti *TableInfo) String() string {
	return fmt.Sprintf("%s(id=%d, pk=%q, schema=%s)", ti.Name, ti.GetID(), ti.PrimaryKey, ti.File.GetTupleDesc())
}

// Catalog is the registry of tables, keyed both by name and by the id of the
// backing file. All methods are safe for concurrent use.
//
// Catalog satisfies memory.TableResolver so the page store can locate the
// file owning a page.
type Catalog struct {
	nameToTable map[string]*TableInfo
	idToTable   map[primitives.TableID]*TableInfo
	mutex       sync.RWMutex
}

func NewCatalog() *Catalog {
	return &Catalog{
		nameToTable: make(map[string]*TableInfo),
		idToTable:   make(map[primitives.TableID]*TableInfo),
	}
}

// AddTable registers f under name. A table already registered under the same
// name or the same id is replaced; the replaced file is left open.
func (c *Catalog) AddTable(f page.DbFile, name, pKey string) error {
	if f == nil {
		return dberror.Configuration("NIL_FILE", "table %q has no file", name).In("AddTable", "Catalog")
	}
	if name == "" {
		return dberror.Configuration("EMPTY_TABLE_NAME", "table name cannot be empty").In("AddTable", "Catalog")
	}
	if pKey != "" {
		if _, err := f.GetTupleDesc().FindFieldIndex(pKey); err != nil {
			return dberror.Configuration("UNKNOWN_PRIMARY_KEY",
				"primary key %q is not a field of table %q", pKey, name).In("AddTable", "Catalog")
		}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	info := &TableInfo{File: f, Name: name, PrimaryKey: pKey}
	id := f.GetID()

	c.removeExistingTable(name, id)
	c.addTableToMaps(name, id, info)
	return nil
}

// GetTableID returns the id of the table registered under tableName.
func (c *Catalog) GetTableID(tableName string) (primitives.TableID, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	info, exists := c.nameToTable[tableName]
	if !exists {
		return primitives.InvalidTableID, dberror.NotFound("TABLE_NOT_FOUND", "table %q not found", tableName).
			In("GetTableID", "Catalog")
	}
	return info.GetID(), nil
}

func (c *Catalog) GetTableName(tableID primitives.TableID) (string, error) {
	info, err := c.getTableInfo(tableID)
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

func (c *Catalog) GetDbFile(tableID primitives.TableID) (page.DbFile, error) {
	info, err := c.getTableInfo(tableID)
	if err != nil {
		return nil, err
	}
	return info.File, nil
}

func (c *Catalog) GetTupleDesc(tableID primitives.TableID) (*tuple.TupleDescription, error) {
	info, err := c.getTableInfo(tableID)
	if err != nil {
		return nil, err
	}
	return info.File.GetTupleDesc(), nil
}

func (c *Catalog) GetPrimaryKey(tableID primitives.TableID) (string, error) {
	info, err := c.getTableInfo(tableID)
	if err != nil {
		return "", err
	}
	return info.PrimaryKey, nil
}

// ResolveTable returns everything a scan needs about a table in one lookup.
func (c *Catalog) ResolveTable(tableID primitives.TableID) (page.DbFile, *tuple.TupleDescription, string, error) {
	info, err := c.getTableInfo(tableID)
	if err != nil {
		return nil, nil, "", err
	}
	return info.File, info.File.GetTupleDesc(), info.PrimaryKey, nil
}

// TableIDs returns the ids of all registered tables, sorted by table name.
func (c *Catalog) TableIDs() []primitives.TableID {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	names := c.sortedNames()
	ids := make([]primitives.TableID, 0, len(names))
	for _, name := range names {
		ids = append(ids, c.nameToTable[name].GetID())
	}
	return ids
}

// TableExists checks whether a table with the given name exists.
func (c *Catalog) TableExists(name string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	_, exists := c.nameToTable[name]
	return exists
}

// RemoveTable unregisters a table and closes its file. A close failure is
// logged, not returned.
func (c *Catalog) RemoveTable(name string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	info, exists := c.nameToTable[name]
	if !exists {
		return dberror.NotFound("TABLE_NOT_FOUND", "table %q not found", name).In("RemoveTable", "Catalog")
	}

	if err := info.File.Close(); err != nil {
		logging.WithTable(name).WithError(err).Warn("failed to close table file")
	}

	delete(c.nameToTable, name)
	delete(c.idToTable, info.GetID())
	return nil
}

// Clear unregisters every table and closes the files one by one. Close
// failures are logged as warnings.
func (c *Catalog) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, info := range c.idToTable {
		info := info
		if err := info.File.Close(); err != nil {
			logging.WithTable(info.Name).WithError(err).Warn("failed to close table file")
		}
	}

	clear(c.nameToTable)
	clear(c.idToTable)
}

// Close closes every registered file concurrently and empties the catalog.
// The first close error is returned; every failure is logged.
func (c *Catalog) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var g errgroup.Group
	for _, info := range c.idToTable {
		info := info
		g.Go(func() error {
			if err := info.File.Close(); err != nil {
				logging.WithTable(info.Name).WithError(err).Warn("failed to close table file")
				return dberror.StorageIO(err, "CLOSE_FAILED", "closing table %q", info.Name).In("Close", "Catalog")
			}
			return nil
		})
	}
	err := g.Wait()

	clear(c.nameToTable)
	clear(c.idToTable)
	return err
}

// String lists the registered tables sorted by name.
func (c *Catalog) String() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Catalog(tables=%d):\n", len(c.nameToTable)))

	for _, name := range c.sortedNames() {
		builder.WriteString(fmt.Sprintf("  %s\n", c.nameToTable[name]))
	}
	return builder.String()
}

// Must be called with a lock held.
func (c *Catalog) sortedNames() []string {
	names := make([]string, 0, len(c.nameToTable))
	for name := range c.nameToTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// removeExistingTable drops any entry sharing the name or the id.
// Must be called with write lock held.
func (c *Catalog) removeExistingTable(name string, tableID primitives.TableID) {
	if existing, exists := c.nameToTable[name]; exists {
		delete(c.idToTable, existing.GetID())
	}
	if existing, exists := c.idToTable[tableID]; exists {
		delete(c.nameToTable, existing.Name)
	}
}

// Must be called with write lock held.
func (c *Catalog) addTableToMaps(name string, tableID primitives.TableID, info *TableInfo) {
	c.nameToTable[name] = info
	c.idToTable[tableID] = info
}

func (c *Catalog) getTableInfo(tableID primitives.TableID) (*TableInfo, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	info, exists := c.idToTable[tableID]
	if !exists {
		return nil, dberror.NotFound("TABLE_NOT_FOUND", "table with id %d not found", tableID)
	}
	return info, nil
}
