// Package schema holds the static column tables of every persisted entity.
// Writes and filters are validated against these tables before any SQL is
// sent, so a field name or value type that cannot be stored is rejected
// locally.
package schema

// Kind is the storage type class of a column.
type Kind uint8

const (
	Int Kind = iota + 1
	String
	Enum
	Timestamp
	Date
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "integer"
	case String:
		return "string"
	case Enum:
		return "enum"
	case Timestamp:
		return "timestamp"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// Column describes one column of a table.
type Column struct {
	Name     string
	Kind     Kind
	Nullable bool
	// Enum lists the accepted values of an Enum column.
	Enum []string
}

// Table describes a table and its columns in select order.
type Table struct {
	Name    string
	Columns []Column

	index map[string]int
}

// NewTable builds a Table. Every table carries id, created_at and updated_at;
// they are prepended so that callers only list entity-specific columns.
func NewTable(name string, cols ...Column) *Table {
	all := make([]Column, 0, len(cols)+3)
	all = append(all, Column{Name: "id", Kind: Int})
	all = append(all, cols...)
	all = append(all,
		Column{Name: "created_at", Kind: Timestamp},
		Column{Name: "updated_at", Kind: Timestamp},
	)
	t := &Table{Name: name, Columns: all, index: make(map[string]int, len(all))}
	for i, c := range all {
		t.index[c.Name] = i
	}
	return t
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// ColumnNames returns the column names in select order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// AllowsEnum reports whether v is an accepted value of an Enum column.
func (c Column) AllowsEnum(v string) bool {
	for _, e := range c.Enum {
		if e == v {
			return true
		}
	}
	return false
}
