// Package filter compiles optional, user-supplied filters into typed
// repository predicates validated against an entity's column table.
package filter

import (
	"reflect"
	"sort"
	"time"

	"aidkit/internal/repository"
	"aidkit/internal/repository/schema"
)

// Reserved range keys. Each one takes a time.Time scalar and produces a strict
// comparison against created_at or updated_at.
const (
	CreatedBefore = "created_before"
	CreatedAfter  = "created_after"
	UpdatedBefore = "updated_before"
	UpdatedAfter  = "updated_after"
)

var ranges = []struct {
	key    string
	column string
	op     repository.Op
}{
	{CreatedBefore, "created_at", repository.OpLt},
	{CreatedAfter, "created_at", repository.OpGt},
	{UpdatedBefore, "updated_at", repository.OpLt},
	{UpdatedAfter, "updated_at", repository.OpGt},
}

// Kind tags a filter Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindScalar
	KindSet
)

// Value is a tagged filter value: absent (null), a single scalar compared by
// equality, or a set compared by membership.
type Value struct {
	kind   Kind
	scalar any
	set    []any
}

// Null is an absent value; it is skipped by Compile.
func Null() Value { return Value{} }

// Scalar wraps a single value. A nil v, including a nil pointer of any
// type, is Null.
func Scalar(v any) Value {
	if v == nil {
		return Null()
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Null()
	}
	return Value{kind: KindScalar, scalar: v}
}

// Set wraps a collection. A nil slice is Null; an empty non-nil slice matches nothing.
func Set[T any](vs []T) Value {
	if vs == nil {
		return Null()
	}
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return Value{kind: KindSet, set: out}
}

// Time wraps an optional time bound for the reserved range keys.
func Time(t *time.Time) Value {
	if t == nil {
		return Null()
	}
	return Scalar(*t)
}

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// Map is the set of filters supplied for one listing, keyed by field name.
type Map map[string]Value

// Compile turns m into a conjunction of predicates on table t.
//
// Range keys are consumed first. Unknown field names and null values are
// skipped. A value whose type does not match its column fails with
// repository.ErrInvalidArgument before any query runs. Predicates on the
// same column are all kept, so contradictory filters match no rows.
func Compile(t *schema.Table, m Map) ([]repository.Predicate, error) {
	preds := make([]repository.Predicate, 0, len(m))

	for _, r := range ranges {
		v, ok := m[r.key]
		if !ok || v.kind == KindNull {
			continue
		}
		ts, ok := v.scalar.(time.Time)
		if v.kind != KindScalar || !ok {
			return nil, &repository.FieldError{
				Kind:     repository.ErrInvalidArgument,
				Table:    t.Name,
				Field:    r.key,
				Value:    describe(v),
				Expected: schema.Timestamp.String(),
			}
		}
		preds = append(preds, repository.Predicate{Column: r.column, Op: r.op, Value: ts})
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		if isRange(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := m[k]
		col, ok := t.Column(k)
		if !ok || v.kind == KindNull {
			continue
		}

		switch v.kind {
		case KindScalar:
			n, err := col.Coerce(v.scalar)
			if err != nil {
				return nil, invalid(t, col, v.scalar, err)
			}
			if n == nil {
				continue
			}
			preds = append(preds, repository.Eq(col.Name, n))
		case KindSet:
			vals := make([]any, 0, len(v.set))
			for _, e := range v.set {
				n, err := col.Coerce(e)
				if err != nil || n == nil {
					return nil, invalid(t, col, e, err)
				}
				vals = append(vals, n)
			}
			preds = append(preds, repository.In(col.Name, vals...))
		}
	}

	return preds, nil
}

func invalid(t *schema.Table, col schema.Column, v any, err error) error {
	return &repository.FieldError{
		Kind:     repository.ErrInvalidArgument,
		Table:    t.Name,
		Field:    col.Name,
		Value:    v,
		Expected: col.Kind.String(),
		Err:      err,
	}
}

func isRange(k string) bool {
	for _, r := range ranges {
		if r.key == k {
			return true
		}
	}
	return false
}

func describe(v Value) any {
	if v.kind == KindSet {
		return v.set
	}
	return v.scalar
}
