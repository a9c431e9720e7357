package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storecore/pkg/dberror"
	"storecore/pkg/primitives"
	"storecore/pkg/storage/heap"
	"storecore/pkg/tuple"
	"storecore/pkg/types"
)

const testPageSize = 4096

func newHeapFile(t *testing.T, dir, name string, fieldTypes []types.Type, fieldNames []string) *heap.HeapFile {
	t.Helper()
	td := tuple.MustTupleDesc(fieldTypes, fieldNames)
	hf, err := heap.NewHeapFile(primitives.Filepath(filepath.Join(dir, name+".dat")), td, testPageSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hf.Close() })
	return hf
}

func TestCatalog_AddTableAndLookups(t *testing.T) {
	dir := t.TempDir()
	users := newHeapFile(t, dir, "users", []types.Type{types.IntType, types.StringType}, []string{"id", "name"})

	c := NewCatalog()
	require.NoError(t, c.AddTable(users, "users", "id"))

	id, err := c.GetTableID("users")
	require.NoError(t, err)
	assert.Equal(t, users.GetID(), id)

	name, err := c.GetTableName(id)
	require.NoError(t, err)
	assert.Equal(t, "users", name)

	file, err := c.GetDbFile(id)
	require.NoError(t, err)
	assert.Same(t, users, file)

	td, err := c.GetTupleDesc(id)
	require.NoError(t, err)
	assert.True(t, td.Equals(users.GetTupleDesc()))

	pk, err := c.GetPrimaryKey(id)
	require.NoError(t, err)
	assert.Equal(t, "id", pk)

	f, rtd, rpk, err := c.ResolveTable(id)
	require.NoError(t, err)
	assert.Same(t, users, f)
	assert.Same(t, users.GetTupleDesc(), rtd)
	assert.Equal(t, "id", rpk)

	assert.True(t, c.TableExists("users"))
	assert.False(t, c.TableExists("orders"))
	assert.Contains(t, c.String(), "users(")
}

func TestCatalog_AddTable_Invalid(t *testing.T) {
	dir := t.TempDir()
	hf := newHeapFile(t, dir, "t", []types.Type{types.IntType}, []string{"a"})
	c := NewCatalog()

	tests := []struct {
		name  string
		table string
		pkey  string
	}{
		{"empty name", "", ""},
		{"unknown primary key", "t", "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.AddTable(hf, tt.table, tt.pkey)
			assert.True(t, dberror.IsConfiguration(err), "got %v", err)
		})
	}

	assert.True(t, dberror.IsConfiguration(c.AddTable(nil, "t", "")))
}

func TestCatalog_AddTable_ReplacesByNameAndID(t *testing.T) {
	dir := t.TempDir()
	first := newHeapFile(t, dir, "first", []types.Type{types.IntType}, []string{"a"})
	second := newHeapFile(t, dir, "second", []types.Type{types.IntType}, []string{"a"})

	c := NewCatalog()
	require.NoError(t, c.AddTable(first, "t", ""))

	t.Run("same name new file", func(t *testing.T) {
		require.NoError(t, c.AddTable(second, "t", ""))

		id, err := c.GetTableID("t")
		require.NoError(t, err)
		assert.Equal(t, second.GetID(), id)

		_, err = c.GetDbFile(first.GetID())
		assert.True(t, dberror.IsNotFound(err))
	})

	t.Run("same file new name", func(t *testing.T) {
		require.NoError(t, c.AddTable(second, "renamed", ""))

		assert.False(t, c.TableExists("t"))
		name, err := c.GetTableName(second.GetID())
		require.NoError(t, err)
		assert.Equal(t, "renamed", name)
		assert.Len(t, c.TableIDs(), 1)
	})
}

func TestCatalog_NotFound(t *testing.T) {
	c := NewCatalog()

	_, err := c.GetTableID("nope")
	assert.True(t, dberror.IsNotFound(err))

	_, err = c.GetDbFile(primitives.TableID(42))
	assert.True(t, dberror.IsNotFound(err))

	_, _, _, err = c.ResolveTable(primitives.TableID(42))
	assert.True(t, dberror.IsNotFound(err))

	assert.True(t, dberror.IsNotFound(c.RemoveTable("nope")))
}

func TestCatalog_TableIDsSortedByName(t *testing.T) {
	dir := t.TempDir()
	b := newHeapFile(t, dir, "b", []types.Type{types.IntType}, []string{"x"})
	a := newHeapFile(t, dir, "a", []types.Type{types.IntType}, []string{"x"})

	c := NewCatalog()
	require.NoError(t, c.AddTable(b, "beta", ""))
	require.NoError(t, c.AddTable(a, "alpha", ""))

	assert.Equal(t, []primitives.TableID{a.GetID(), b.GetID()}, c.TableIDs())
}

func TestCatalog_RemoveClearClose(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog()
	for _, name := range []string{"a", "b", "c"} {
		hf := newHeapFile(t, dir, name, []types.Type{types.IntType}, []string{"x"})
		require.NoError(t, c.AddTable(hf, name, ""))
	}

	require.NoError(t, c.RemoveTable("a"))
	assert.False(t, c.TableExists("a"))
	assert.Len(t, c.TableIDs(), 2)

	require.NoError(t, c.Close())
	assert.Empty(t, c.TableIDs())

	hf := newHeapFile(t, dir, "d", []types.Type{types.IntType}, []string{"x"})
	require.NoError(t, c.AddTable(hf, "d", ""))
	c.Clear()
	assert.False(t, c.TableExists("d"))
}

func TestParseTableLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantName  string
		wantTypes []types.Type
		wantPK    string
		wantErr   bool
	}{
		{
			name:      "two columns with pk",
			line:      "users (id int pk, name string)",
			wantName:  "users",
			wantTypes: []types.Type{types.IntType, types.StringType},
			wantPK:    "id",
		},
		{
			name:      "no pk and mixed case type",
			line:      "scores(value INT)",
			wantName:  "scores",
			wantTypes: []types.Type{types.IntType},
		},
		{name: "unknown type", line: "t (a float)", wantErr: true},
		{name: "unknown annotation", line: "t (a int unique)", wantErr: true},
		{name: "missing parens", line: "t a int", wantErr: true},
		{name: "missing name", line: "(a int)", wantErr: true},
		{name: "missing type", line: "t (a)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTableLine(tt.line)
			if tt.wantErr {
				assert.True(t, dberror.IsConfiguration(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, ts.Name)
			assert.Equal(t, tt.wantPK, ts.PrimaryKey)
			require.Equal(t, len(tt.wantTypes), ts.Desc.NumFields())
			for i, want := range tt.wantTypes {
				got, err := ts.Desc.TypeAtIndex(i)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestCatalog_LoadSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.txt")
	content := "# sample\nusers (id int pk, name string)\n\norders (id int, user_id int)\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c := NewCatalog()
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.LoadSchema(primitives.Filepath(path), testPageSize))

	assert.Len(t, c.TableIDs(), 2)

	id, err := c.GetTableID("users")
	require.NoError(t, err)
	assert.Equal(t, primitives.Filepath(filepath.Join(dir, "users.dat")).HashAsTableID(), id)

	pk, err := c.GetPrimaryKey(id)
	require.NoError(t, err)
	assert.Equal(t, "id", pk)

	_, err = os.Stat(filepath.Join(dir, "orders.dat"))
	assert.NoError(t, err)
}

func TestCatalog_LoadSchema_Errors(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog()

	err := c.LoadSchema(primitives.Filepath(filepath.Join(dir, "missing.txt")), testPageSize)
	assert.True(t, dberror.IsStorageIO(err))

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("t (a double)\n"), 0o644))
	err = c.LoadSchema(primitives.Filepath(bad), testPageSize)
	assert.True(t, dberror.IsConfiguration(err))
	assert.False(t, c.TableExists("t"))
}

func TestFormatTableLine_RoundTrip(t *testing.T) {
	td := tuple.MustTupleDesc([]types.Type{types.IntType, types.StringType}, []string{"id", "name"})

	line := FormatTableLine("users", td, "id")
	assert.Equal(t, "users (id int pk, name string)", line)

	ts, err := ParseTableLine(line)
	require.NoError(t, err)
	assert.Equal(t, "users", ts.Name)
	assert.Equal(t, "id", ts.PrimaryKey)
	assert.Equal(t, td.FieldNames, ts.Desc.FieldNames)
	assert.True(t, td.Equals(ts.Desc))
}
