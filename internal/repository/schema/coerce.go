package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrKindMismatch is returned by Coerce when a value cannot be stored in a column.
var ErrKindMismatch = errors.New("value does not match column type")

// Coerce validates v against the column and returns its normalised form:
// int64 for Int, string for String and Enum, time.Time for Timestamp and
// Date (dates truncated to midnight UTC). A nil v, or a nil *int64,
// *string or *time.Time, is accepted only by nullable columns.
func (c Column) Coerce(v any) (any, error) {
	v = deref(v)
	if v == nil {
		if c.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: null into non-null %s column", ErrKindMismatch, c.Kind)
	}

	switch c.Kind {
	case Int:
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case Enum:
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case fmt.Stringer:
			s = x.String()
		default:
			return nil, mismatch(c, v)
		}
		if !c.AllowsEnum(s) {
			return nil, fmt.Errorf("%w: %q is not one of %v", ErrKindMismatch, s, c.Enum)
		}
		return s, nil
	case Timestamp:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	case Date:
		if t, ok := v.(time.Time); ok {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return nil, mismatch(c, v)
}

func deref(v any) any {
	switch p := v.(type) {
	case *int64:
		if p == nil {
			return nil
		}
		return *p
	case *string:
		if p == nil {
			return nil
		}
		return *p
	case *time.Time:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}

func mismatch(c Column, v any) error {
	return fmt.Errorf("%w: %T is not %s", ErrKindMismatch, v, c.Kind)
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		// JSON numbers decode to float64; accept integral values only.
		if x != math.Trunc(x) || x > math.MaxInt64 || x < math.MinInt64 {
			return 0, false
		}
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	}
	return 0, false
}
