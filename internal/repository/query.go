package repository

// Op is a predicate operator.
type Op uint8

const (
	OpEq Op = iota + 1
	OpIn
	OpLt
	OpGt
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpIn:
		return "IN"
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	default:
		return "?"
	}
}

// Predicate is one typed condition on a column. Values have already been
// normalised against the column's kind. Value is used by OpEq, OpLt and OpGt;
// Values by OpIn.
type Predicate struct {
	Column string
	Op     Op
	Value  any
	Values []any
}

// Eq returns column = v.
func Eq(column string, v any) Predicate { return Predicate{Column: column, Op: OpEq, Value: v} }

// In returns column IN (vs...).
func In(column string, vs ...any) Predicate { return Predicate{Column: column, Op: OpIn, Values: vs} }

// OrderBy sorts by one column.
type OrderBy struct {
	Column string
	Desc   bool
}

// Asc and Desc build OrderBy terms.
func Asc(column string) OrderBy  { return OrderBy{Column: column} }
func Desc(column string) OrderBy { return OrderBy{Column: column, Desc: true} }

// Window bounds the child collection loaded with each parent row (stock
// rows of an aid kit). Offset is a keyset bound on the child id, like
// Query.Offset. A zero Limit asks for the repository's default window;
// Skip loads no children at all.
type Window struct {
	Limit   int
	Offset  int64
	OrderBy []OrderBy
	Skip    bool
}

// Query holds the read parameters of FetchMany.
//
// Offset is a keyset cursor: only rows with id > Offset are returned. It is
// not a row-skip count despite the name, which follows the public API.
type Query struct {
	Where   []Predicate
	OrderBy []OrderBy
	Limit   int
	Offset  int64
	Window  Window
}

// Fields maps column names to values for inserts and updates.
type Fields map[string]any
