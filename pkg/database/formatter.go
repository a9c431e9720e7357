package database

import (
	"fmt"

	"storecore/pkg/execution"
	"storecore/pkg/tuple"
	"storecore/pkg/types"
)

// QueryResult represents the result of a query execution
type QueryResult struct {
	Columns      []string
	Rows         [][]string
	RowsAffected int
	Message      string
}

// ResultFormatter handles formatting of query execution results
type ResultFormatter struct{}

// NewResultFormatter creates a new instance of ResultFormatter
func NewResultFormatter() *ResultFormatter {
	return &ResultFormatter{}
}

// Format renders the tuples produced by root. Insert and Delete report the
// affected row count; every other kind is rendered as a table.
func (f *ResultFormatter) Format(root *execution.Operator, tuples []*tuple.Tuple) QueryResult {
	switch root.Kind() {
	case execution.KindInsert:
		return f.FormatDML(tuples, "inserted")
	case execution.KindDelete:
		return f.FormatDML(tuples, "deleted")
	default:
		return f.FormatSelect(root.GetTupleDesc(), tuples)
	}
}

// FormatSelect converts result tuples to rows of strings.
func (f *ResultFormatter) FormatSelect(td *tuple.TupleDescription, tuples []*tuple.Tuple) QueryResult {
	numFields := td.NumFields()
	columns := make([]string, numFields)
	for i := 0; i < numFields; i++ {
		name, _ := td.GetFieldName(i)
		if name == "" {
			name = fmt.Sprintf("col_%d", i)
		}
		columns[i] = name
	}

	rows := make([][]string, 0, len(tuples))
	for _, t := range tuples {
		row := make([]string, numFields)
		for i := 0; i < numFields; i++ {
			field, err := t.GetField(i)
			if err != nil || field == nil {
				row[i] = "NULL"
			} else {
				row[i] = field.String()
			}
		}
		rows = append(rows, row)
	}

	return QueryResult{
		Columns: columns,
		Rows:    rows,
		Message: fmt.Sprintf("%d row(s) returned", len(rows)),
	}
}

// FormatDML reads the count tuple of an Insert or Delete.
func (f *ResultFormatter) FormatDML(tuples []*tuple.Tuple, action string) QueryResult {
	affected := 0
	if len(tuples) == 1 {
		if field, err := tuples[0].GetField(0); err == nil {
			if count, ok := field.(*types.IntField); ok {
				affected = int(count.Value)
			}
		}
	}

	return QueryResult{
		RowsAffected: affected,
		Message:      fmt.Sprintf("%d row(s) %s", affected, action),
	}
}
