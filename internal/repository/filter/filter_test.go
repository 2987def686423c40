package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidkit/internal/model"
	"aidkit/internal/repository"
	"aidkit/internal/repository/schema"
)

func TestCompile_Empty(t *testing.T) {
	preds, err := Compile(schema.Producers, nil)
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestCompile_UnknownAndNullFieldsAreSkipped(t *testing.T) {
	preds, err := Compile(schema.Producers, Map{
		"nickname": Scalar("x"),
		"name":     Null(),
		"location": Set([]string{"a"}),
		"id":       Set[int64](nil),
	})
	require.NoError(t, err)
	assert.Empty(t, preds)

	preds, err = Compile(schema.AidKits, Map{
		"location":   Scalar((*string)(nil)),
		"name":       Scalar((*string)(nil)),
		"id":         Scalar((*int64)(nil)),
		"created_at": Scalar((*time.Time)(nil)),
	})
	require.NoError(t, err)
	assert.Empty(t, preds)
	assert.Equal(t, KindNull, Scalar((*string)(nil)).Kind())
}

func TestCompile_Ranges(t *testing.T) {
	before := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	after := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	preds, err := Compile(schema.AidKits, Map{
		CreatedBefore: Time(&before),
		CreatedAfter:  Time(&after),
		UpdatedBefore: Time(&before),
		UpdatedAfter:  Time(nil),
	})
	require.NoError(t, err)
	assert.Equal(t, []repository.Predicate{
		{Column: "created_at", Op: repository.OpLt, Value: before},
		{Column: "created_at", Op: repository.OpGt, Value: after},
		{Column: "updated_at", Op: repository.OpLt, Value: before},
	}, preds)
}

func TestCompile_RangeWithWrongType(t *testing.T) {
	_, err := Compile(schema.AidKits, Map{CreatedBefore: Scalar("yesterday")})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "created_before")
}

func TestCompile_ScalarsAndSets(t *testing.T) {
	preds, err := Compile(schema.Medications, Map{
		"id":          Set([]int{1, 2, 3}),
		"dosage_form": Scalar(model.DosageTablet),
		"brand_name":  Set([]string{"A", "B"}),
	})
	require.NoError(t, err)
	// Sorted by field name.
	assert.Equal(t, []repository.Predicate{
		repository.In("brand_name", "A", "B"),
		repository.Eq("dosage_form", "tablet"),
		repository.In("id", int64(1), int64(2), int64(3)),
	}, preds)
}

func TestCompile_EmptySetIsKept(t *testing.T) {
	preds, err := Compile(schema.Producers, Map{"id": Set([]int64{})})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, repository.OpIn, preds[0].Op)
	assert.Empty(t, preds[0].Values)
}

func TestCompile_TypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		m     Map
		field string
	}{
		{name: "scalar", m: Map{"id": Scalar("a")}, field: "id"},
		{name: "set element", m: Map{"id": Set([]any{1, "b"})}, field: "id"},
		{name: "enum", m: Map{"dosage_form": Scalar("lozenge")}, field: "dosage_form"},
		{name: "null in set", m: Map{"producer_id": Set([]any{nil})}, field: "producer_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(schema.Medications, tt.m)
			require.Error(t, err)
			assert.ErrorIs(t, err, repository.ErrInvalidArgument)

			var fe *repository.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestCompile_ContradictoryFiltersAreAllKept(t *testing.T) {
	after := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	preds, err := Compile(schema.AidKits, Map{
		CreatedAfter:  Time(&after),
		CreatedBefore: Time(&before),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []repository.Predicate{
		{Column: "created_at", Op: repository.OpGt, Value: after},
		{Column: "created_at", Op: repository.OpLt, Value: before},
	}, preds)
}
