package sqldb

import (
	"fmt"
	"strings"

	"aidkit/internal/repository"
	"aidkit/internal/repository/dialect"
	"aidkit/internal/repository/schema"
)

// builder accumulates SQL text and bind arguments. Arguments must be added
// in the order they appear in the text, which lets the same code serve
// numbered ($n) and positional (?) placeholders.
type builder struct {
	d    dialect.Dialect
	sb   strings.Builder
	args []any
}

func newBuilder(d dialect.Dialect) *builder { return &builder{d: d} }

func (b *builder) write(parts ...string) *builder {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
	return b
}

// arg binds v and writes its placeholder.
func (b *builder) arg(v any) *builder {
	b.args = append(b.args, v)
	b.sb.WriteString(b.d.Placeholder(len(b.args)))
	return b
}

func (b *builder) String() string { return b.sb.String() }

// columns writes a comma separated column list, each prefixed with qual.
func (b *builder) columns(qual string, names []string) *builder {
	for i, n := range names {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.sb.WriteString(qual)
		b.sb.WriteString(n)
	}
	return b
}

// where writes " WHERE ..." for preds plus an optional keyset bound on id.
// Predicate values are re-validated against the column so that hand-built
// predicates get the same checks as compiled filters.
func (b *builder) where(t *schema.Table, qual string, preds []repository.Predicate, keyset *int64) error {
	if len(preds) == 0 && keyset == nil {
		return nil
	}
	b.write(" WHERE ")
	for i, p := range preds {
		if i > 0 {
			b.write(" AND ")
		}
		if err := b.predicate(t, qual, p); err != nil {
			return err
		}
	}
	if keyset != nil {
		if len(preds) > 0 {
			b.write(" AND ")
		}
		b.write(qual, "id > ").arg(*keyset)
	}
	return nil
}

func (b *builder) predicate(t *schema.Table, qual string, p repository.Predicate) error {
	col, ok := t.Column(p.Column)
	if !ok {
		return &repository.FieldError{Kind: repository.ErrInvalidArgument, Table: t.Name, Field: p.Column, Err: repository.ErrUnknownField}
	}
	bind := func(v any) error {
		n, err := col.Coerce(v)
		if err != nil || n == nil {
			return &repository.FieldError{
				Kind: repository.ErrInvalidArgument, Table: t.Name, Field: col.Name,
				Value: v, Expected: col.Kind.String(), Err: err,
			}
		}
		b.arg(b.d.Arg(col.Kind, n))
		return nil
	}

	switch p.Op {
	case repository.OpEq, repository.OpLt, repository.OpGt:
		b.write(qual, col.Name, " ", p.Op.String(), " ")
		return bind(p.Value)
	case repository.OpIn:
		if len(p.Values) == 0 {
			b.write("1 = 0")
			return nil
		}
		b.write(qual, col.Name, " IN (")
		for i, v := range p.Values {
			if i > 0 {
				b.write(", ")
			}
			if err := bind(v); err != nil {
				return err
			}
		}
		b.write(")")
		return nil
	default:
		return fmt.Errorf("%w: unsupported operator %v", repository.ErrInvalidArgument, p.Op)
	}
}

// orderBy writes " ORDER BY ..." using order, or def when order is empty.
func (b *builder) orderBy(t *schema.Table, qual string, order []repository.OrderBy, def ...repository.OrderBy) error {
	if len(order) == 0 {
		order = def
	}
	if len(order) == 0 {
		return nil
	}
	b.write(" ORDER BY ")
	return b.orderTerms(t, qual, order)
}

func (b *builder) orderTerms(t *schema.Table, qual string, order []repository.OrderBy) error {
	for i, o := range order {
		if _, ok := t.Column(o.Column); !ok {
			return &repository.FieldError{Kind: repository.ErrInvalidArgument, Table: t.Name, Field: o.Column, Err: repository.ErrUnknownField}
		}
		if i > 0 {
			b.write(", ")
		}
		b.write(qual, o.Column)
		if o.Desc {
			b.write(" DESC")
		} else {
			b.write(" ASC")
		}
	}
	return nil
}

// withID appends an ascending id term unless order already sorts by id.
func withID(order []repository.OrderBy) []repository.OrderBy {
	for _, o := range order {
		if o.Column == "id" {
			return order
		}
	}
	out := make([]repository.OrderBy, 0, len(order)+1)
	out = append(out, order...)
	return append(out, repository.Asc("id"))
}
