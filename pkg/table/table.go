package table

// Column describes a single column of a decoded table.
type Column struct {
	Name         string   `json:"name"`
	Dtype        string   `json:"dtype"` // "int64" | "float64" | "string"
	NullCount    int      `json:"null_count"`
	SampleValues []string `json:"sample_values"`
}

// Metadata summarizes a decoded table for presentation and prompting.
type Metadata struct {
	RowCount      int      `json:"row_count"`
	ColumnCount   int      `json:"column_count"`
	Columns       []Column `json:"columns"`
	FileSizeBytes int64    `json:"file_size_bytes"`
	SheetNames    []string `json:"sheet_names,omitempty"`
	ParseWarnings []string `json:"parse_warnings"`
}

// Table is a decoded in-memory dataset. It is read-only once built: the cache
// hands the same instance to every concurrent query, so nothing may mutate
// Rows or Columns after construction.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
