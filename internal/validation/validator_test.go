package validation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ginjaninja78/order-report-summary/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(id, name, price, qty types.Value) types.Row {
	return types.Row{
		{Column: FieldID, Value: id},
		{Column: FieldName, Value: name},
		{Column: FieldPrice, Value: price},
		{Column: FieldQuantity, Value: qty},
	}
}

func TestValidate_ValidRows(t *testing.T) {
	tests := []struct {
		name string
		row  types.Row
		want Record
	}{
		{
			name: "numbers",
			row:  row(types.Number(1), types.Text("Product1"), types.Number(100), types.Number(3)),
			want: Record{ID: 1, Name: "Product1", Price: 100, Quantity: 3},
		},
		{
			name: "whole floats are integers",
			row:  row(types.Number(2.0), types.Text("abc"), types.Number(0.01), types.Number(7.0)),
			want: Record{ID: 2, Name: "abc", Price: 0.01, Quantity: 7},
		},
		{
			name: "numeric strings are coerced",
			row:  row(types.Text(" 5 "), types.Text(strings.Repeat("x", NameMaxLength)), types.Text("9.99"), types.Text("2")),
			want: Record{ID: 5, Name: strings.Repeat("x", NameMaxLength), Price: 9.99, Quantity: 2},
		},
		{
			name: "column order does not matter",
			row: types.Row{
				{Column: FieldPrice, Value: types.Number(150)},
				{Column: FieldQuantity, Value: types.Number(1)},
				{Column: FieldName, Value: types.Text("Product2")},
				{Column: FieldID, Value: types.Number(2)},
				{Column: "extra", Value: types.Text("ignored")},
			},
			want: Record{ID: 2, Name: "Product2", Price: 150, Quantity: 1},
		},
		{
			name: "ids beyond 32 bits",
			row:  row(types.Number(3_000_000_000), types.Text("Product1"), types.Number(100), types.Text("4294967296")),
			want: Record{ID: 3_000_000_000, Name: "Product1", Price: 100, Quantity: 4_294_967_296},
		},
		{
			name: "largest int as a string",
			row:  row(types.Text("9223372036854775807"), types.Text("Product1"), types.Number(100), types.Number(1)),
			want: Record{ID: math.MaxInt64, Name: "Product1", Price: 100, Quantity: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Validate(0, tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec)
		})
	}
}

func TestValidate_InvalidRows(t *testing.T) {
	tests := []struct {
		name string
		row  types.Row
		want ValidationErrors
	}{
		{
			name: "fractional id",
			row:  row(types.Number(0.1), types.Text("Product1"), types.Number(100), types.Number(1)),
			want: ValidationErrors{{Index: 4, Field: FieldID, Message: MsgFractionalInt}},
		},
		{
			name: "fractional quantity",
			row:  row(types.Number(1), types.Text("Product1"), types.Number(100), types.Number(0.1)),
			want: ValidationErrors{{Index: 4, Field: FieldQuantity, Message: MsgFractionalInt}},
		},
		{
			name: "negative id",
			row:  row(types.Number(-1), types.Text("Product1"), types.Number(100), types.Number(1)),
			want: ValidationErrors{{Index: 4, Field: FieldID, Message: MsgGreaterThanZero}},
		},
		{
			name: "zero price",
			row:  row(types.Number(1), types.Text("Product1"), types.Number(0), types.Number(1)),
			want: ValidationErrors{{Index: 4, Field: FieldPrice, Message: MsgGreaterThanZero}},
		},
		{
			name: "missing data reports every field",
			row:  row(types.Number(2), types.Null(), types.Null(), types.Number(math.NaN())),
			want: ValidationErrors{
				{Index: 4, Field: FieldName, Message: MsgInvalidString},
				{Index: 4, Field: FieldPrice, Message: MsgNotFinite},
				{Index: 4, Field: FieldQuantity, Message: MsgNotFinite},
			},
		},
		{
			name: "short name",
			row:  row(types.Number(3), types.Text("P2"), types.Number(150), types.Number(2)),
			want: ValidationErrors{{Index: 4, Field: FieldName, Message: "String should have at least 3 characters"}},
		},
		{
			name: "empty name is too short",
			row:  row(types.Number(3), types.Text(""), types.Number(150), types.Number(2)),
			want: ValidationErrors{{Index: 4, Field: FieldName, Message: "String should have at least 3 characters"}},
		},
		{
			name: "long name",
			row:  row(types.Number(3), types.Text(strings.Repeat("y", NameMaxLength+1)), types.Number(150), types.Number(2)),
			want: ValidationErrors{{Index: 4, Field: FieldName, Message: "String should have at most 48 characters"}},
		},
		{
			name: "unparsable strings",
			row:  row(types.Text("abc"), types.Number(12), types.Text("cheap"), types.Bool(true)),
			want: ValidationErrors{
				{Index: 4, Field: FieldID, Message: MsgUnparsableInt},
				{Index: 4, Field: FieldName, Message: MsgInvalidString},
				{Index: 4, Field: FieldPrice, Message: MsgUnparsableFloat},
				{Index: 4, Field: FieldQuantity, Message: MsgInvalidInt},
			},
		},
		{
			name: "integers past the int range",
			row:  row(types.Number(1e19), types.Text("Product1"), types.Number(100), types.Text("99999999999999999999")),
			want: ValidationErrors{
				{Index: 4, Field: FieldID, Message: MsgIntTooLarge},
				{Index: 4, Field: FieldQuantity, Message: MsgIntTooLarge},
			},
		},
		{
			name: "infinite price",
			row:  row(types.Number(1), types.Text("Product1"), types.Number(math.Inf(1)), types.Number(1)),
			want: ValidationErrors{{Index: 4, Field: FieldPrice, Message: MsgNotFinite}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Validate(4, tt.row)
			require.Error(t, err)
			assert.Equal(t, Record{}, rec)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.want, verrs)
		})
	}
}

func TestValidate_MissingColumns(t *testing.T) {
	t.Run("missing price column", func(t *testing.T) {
		r := types.Row{
			{Column: FieldID, Value: types.Number(1)},
			{Column: FieldName, Value: types.Text("Product1")},
			{Column: FieldQuantity, Value: types.Number(1)},
		}

		_, err := Validate(1, r)

		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, ValidationErrors{{Index: 1, Field: FieldPrice, Message: MsgFieldRequired}}, verrs)
	})

	t.Run("misspelled column is a missing column", func(t *testing.T) {
		r := types.Row{
			{Column: FieldID, Value: types.Number(1)},
			{Column: "namee", Value: types.Text("Product1")},
			{Column: FieldPrice, Value: types.Number(100)},
			{Column: FieldQuantity, Value: types.Number(1)},
		}

		_, err := Validate(0, r)

		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, ValidationErrors{{Index: 0, Field: FieldName, Message: MsgFieldRequired}}, verrs)
	})

	t.Run("empty row", func(t *testing.T) {
		_, err := Validate(2, types.Row{})

		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		require.Len(t, verrs, len(Fields))
		for i, field := range Fields {
			assert.Equal(t, field, verrs[i].Field)
			assert.Equal(t, MsgFieldRequired, verrs[i].Message)
			assert.Equal(t, 2, verrs[i].Index)
		}
	})
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Index: 1, Field: FieldID, Message: MsgFieldRequired},
		{Index: 1, Field: FieldName, Message: MsgInvalidString},
	}

	assert.Equal(t,
		"row 1, field 'id': Field required; row 1, field 'name': Input should be a valid string",
		errs.Error(),
	)
}
