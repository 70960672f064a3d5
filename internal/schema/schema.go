package schema

// Column is a table column as seen by the comparison. Type holds the
// normalized type string (see NormalizeType), never the raw catalog type.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CatalogEntry is one physical table as read from a database catalog.
// Columns are in catalog ordinal order.
type CatalogEntry struct {
	Schema  string
	Table   string
	Columns []Column
}

// QualifiedName returns "schema.table".
func (e CatalogEntry) QualifiedName() string {
	return e.Schema + "." + e.Table
}

// Builder accumulates catalog rows into CatalogEntry values. Rows must arrive
// ordered by schema, table and ordinal position; consecutive rows for the same
// schema.table extend the current entry.
type Builder struct {
	entries []CatalogEntry
}

// Add appends a column to the entry for schemaName.table, starting a new entry
// when the pair differs from the previous row.
func (b *Builder) Add(schemaName, table string, col Column) {
	if n := len(b.entries); n > 0 {
		last := &b.entries[n-1]
		if last.Schema == schemaName && last.Table == table {
			last.Columns = append(last.Columns, col)
			return
		}
	}
	b.entries = append(b.entries, CatalogEntry{
		Schema:  schemaName,
		Table:   table,
		Columns: []Column{col},
	})
}

// Entries returns the accumulated entries. The result is never nil.
func (b *Builder) Entries() []CatalogEntry {
	if b.entries == nil {
		return []CatalogEntry{}
	}
	return b.entries
}
