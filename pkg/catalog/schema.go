package catalog

import (
	"bufio"
	"os"
	"strings"

	"storecore/pkg/dberror"
	"storecore/pkg/logging"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/heap"
	"storecore/pkg/tuple"
	"storecore/pkg/types"
)

// TableSchema is one parsed line of a catalog file.
type TableSchema struct {
	Name       string
	Desc       *tuple.TupleDescription
	PrimaryKey string
}

// LoadSchema reads a catalog file and registers one heap file per table.
//
// Each non-empty line describes a table:
//
//	name (field type [pk], field type, ...)
//
// where type is int or string and the optional pk annotation marks the
// primary key. Table data lives next to the catalog in <name>.dat. Lines
// starting with # are ignored.
func (c *Catalog) LoadSchema(path primitives.Filepath, pageSize int) error {
	f, err := os.Open(path.String())
	if err != nil {
		return dberror.StorageIO(err, "CATALOG_OPEN_FAILED", "opening catalog %s", path).In("LoadSchema", "Catalog")
	}
	defer f.Close()

	baseDir := primitives.Filepath(path.Canonical().Dir())

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ts, err := ParseTableLine(line)
		if err != nil {
			return dberror.Wrap(err, "CATALOG_PARSE_FAILED", "LoadSchema", "Catalog").
				WithDetail("%s:%d", path, lineNo)
		}

		hf, err := heap.NewHeapFile(baseDir.Join(ts.Name+".dat"), ts.Desc, pageSize)
		if err != nil {
			return err
		}
		if err := c.AddTable(hf, ts.Name, ts.PrimaryKey); err != nil {
			_ = hf.Close()
			return err
		}

		logging.WithTable(ts.Name).WithField("schema", ts.Desc.String()).Info("added table")
	}

	if err := scanner.Err(); err != nil {
		return dberror.StorageIO(err, "CATALOG_READ_FAILED", "reading catalog %s", path).In("LoadSchema", "Catalog")
	}
	return nil
}

// ParseTableLine parses "name (field type [pk], ...)".
func ParseTableLine(line string) (*TableSchema, error) {
	open := strings.Index(line, "(")
	closing := strings.LastIndex(line, ")")
	if open <= 0 || closing < open {
		return nil, dberror.Configuration("INVALID_CATALOG_ENTRY", "invalid catalog entry: %s", line)
	}

	name := strings.TrimSpace(line[:open])
	if name == "" {
		return nil, dberror.Configuration("INVALID_CATALOG_ENTRY", "missing table name: %s", line)
	}

	var (
		names      []string
		fieldTypes []types.Type
		primaryKey string
	)
	for _, column := range strings.Split(line[open+1:closing], ",") {
		parts := strings.Fields(column)
		if len(parts) < 2 || len(parts) > 3 {
			return nil, dberror.Configuration("INVALID_CATALOG_ENTRY", "invalid column %q in table %s", strings.TrimSpace(column), name)
		}

		fieldType, err := types.ParseType(strings.ToLower(parts[1]))
		if err != nil {
			return nil, dberror.Configuration("UNKNOWN_TYPE", "unknown type %s", parts[1])
		}

		if len(parts) == 3 {
			if parts[2] != "pk" {
				return nil, dberror.Configuration("UNKNOWN_ANNOTATION", "unknown annotation %s", parts[2])
			}
			primaryKey = parts[0]
		}

		names = append(names, parts[0])
		fieldTypes = append(fieldTypes, fieldType)
	}

	td, err := tuple.NewTupleDesc(fieldTypes, names)
	if err != nil {
		return nil, err
	}

	return &TableSchema{Name: name, Desc: td, PrimaryKey: primaryKey}, nil
}

// FormatTableLine renders a table in the format read by LoadSchema.
func FormatTableLine(name string, td *tuple.TupleDescription, primaryKey string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(" (")
	for i, fieldType := range td.Types {
		if i > 0 {
			b.WriteString(", ")
		}
		fieldName, _ := td.GetFieldName(i)
		b.WriteString(fieldName)
		if fieldType == types.StringType {
			b.WriteString(" string")
		} else {
			b.WriteString(" int")
		}
		if primaryKey != "" && fieldName == primaryKey {
			b.WriteString(" pk")
		}
	}
	b.WriteString(")")
	return b.String()
}
