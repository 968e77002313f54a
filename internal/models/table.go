// internal/models/table.go
package models

// ColumnKind is the semantic kind of a result column, tagged at the
// query-execution boundary so later stages never inspect value types.
type ColumnKind string

const (
	ColumnKindNumeric     ColumnKind = "numeric"
	ColumnKindCategorical ColumnKind = "categorical"
)

// Column is a named result column with its semantic kind.
type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// ResultTable is an ordered, immutable tabular query result. Row order
// is significant for display only.
type ResultTable struct {
	Columns []Column        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// RowCount returns the number of rows.
func (t *ResultTable) RowCount() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *ResultTable) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// FirstOfKind returns the first column of the given kind in column order.
func (t *ResultTable) FirstOfKind(kind ColumnKind) (Column, bool) {
	for _, col := range t.Columns {
		if col.Kind == kind {
			return col, true
		}
	}
	return Column{}, false
}

// ColumnValues returns the values of the named column in row order.
func (t *ResultTable) ColumnValues(name string) []interface{} {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]interface{}, 0, len(t.Rows))
	for _, row := range t.Rows {
		values = append(values, row[idx])
	}
	return values
}
