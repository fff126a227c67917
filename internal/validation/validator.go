// =============================================================================
// Order Report Summary - Order Record Validation
// =============================================================================
//
// This module validates a single raw spreadsheet row against the order record
// schema. Validation never stops at the first problem: every violated field is
// reported so the error side file tells the whole story for a row.
//
// SCHEMA (declaration order is the error order):
//   | Field    | Type    | Rule                      |
//   |----------|---------|---------------------------|
//   | id       | integer | > 0                       |
//   | name     | string  | 3..48 characters          |
//   | price    | number  | finite, > 0 (net of tax)  |
//   | quantity | integer | > 0                       |
//
// COERCION:
//   Cells arrive as variant values (null, number, string, bool). Numeric
//   strings are parsed explicitly; fractional numbers are rejected for integer
//   fields with a message distinct from "not a number"; null and NaN cells are
//   reported as non-finite rather than silently coerced.
//
// =============================================================================

package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/order-report-summary/internal/types"
)

// Column names of the order schema.
const (
	FieldID       = "id"
	FieldName     = "name"
	FieldPrice    = "price"
	FieldQuantity = "quantity"
)

// Name length limits (inclusive).
const (
	NameMinLength = 3
	NameMaxLength = 48
)

// Messages written to the error side file. They are part of the output
// contract and must stay stable.
const (
	MsgFieldRequired   = "Field required"
	MsgNotFinite       = "Input should be a finite number"
	MsgGreaterThanZero = "Input should be greater than 0"
	MsgFractionalInt   = "Input should be a valid integer, got a number with a fractional part"
	MsgUnparsableInt   = "Input should be a valid integer, unable to parse string as an integer"
	MsgInvalidInt      = "Input should be a valid integer"
	MsgIntTooLarge     = "Input should be a valid integer, number too large"
	MsgUnparsableFloat = "Input should be a valid number, unable to parse string as a number"
	MsgInvalidFloat    = "Input should be a valid number"
	MsgInvalidString   = "Input should be a valid string"
)

// Fields lists the schema columns in declaration order.
var Fields = []string{FieldID, FieldName, FieldPrice, FieldQuantity}

// =============================================================================
// RECORD
// =============================================================================

// Record is a validated order row.
type Record struct {
	ID       int
	Name     string
	Price    float64
	Quantity int
}

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError is a single field violation of one source row.
// The JSON shape matches the error side file: {"index", "col", "msg"}.
type ValidationError struct {
	// Index is the position of the row in the original raw batch.
	Index int `json:"index"`

	// Field is the schema column that failed.
	Field string `json:"col"`

	// Message is a human-readable description of the violation.
	Message string `json:"msg"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d, field '%s': %s", e.Index, e.Field, e.Message)
}

// ValidationErrors is the non-empty list of violations of one row.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks one raw row and returns the typed record.
//
// PARAMETERS:
//   - index: The row's position in the source batch, copied into every error.
//   - row: The raw row (column name -> cell value).
//
// RETURNS:
//   - The validated Record and nil, or
//   - A zero Record and a ValidationErrors value listing every violated field
//     in declaration order (id, name, price, quantity).
func Validate(index int, row types.Row) (Record, error) {
	var (
		rec  Record
		errs ValidationErrors
	)

	fail := func(field, msg string) {
		errs = append(errs, ValidationError{Index: index, Field: field, Message: msg})
	}

	if v, ok := row.Get(FieldID); !ok {
		fail(FieldID, MsgFieldRequired)
	} else if id, msg := positiveInt(v); msg != "" {
		fail(FieldID, msg)
	} else {
		rec.ID = id
	}

	if v, ok := row.Get(FieldName); !ok {
		fail(FieldName, MsgFieldRequired)
	} else if name, msg := boundedString(v); msg != "" {
		fail(FieldName, msg)
	} else {
		rec.Name = name
	}

	if v, ok := row.Get(FieldPrice); !ok {
		fail(FieldPrice, MsgFieldRequired)
	} else if price, msg := positiveFloat(v); msg != "" {
		fail(FieldPrice, msg)
	} else {
		rec.Price = price
	}

	if v, ok := row.Get(FieldQuantity); !ok {
		fail(FieldQuantity, MsgFieldRequired)
	} else if qty, msg := positiveInt(v); msg != "" {
		fail(FieldQuantity, msg)
	} else {
		rec.Quantity = qty
	}

	if len(errs) > 0 {
		return Record{}, errs
	}
	return rec, nil
}

// =============================================================================
// FIELD VALIDATORS
// =============================================================================
// Each validator returns the coerced value and an empty message, or a zero
// value and the violation message.

// positiveInt validates a whole number greater than zero.
func positiveInt(v types.Value) (int, string) {
	var f float64

	switch v.Kind() {
	case types.KindNull:
		return 0, MsgNotFinite
	case types.KindBool:
		return 0, MsgInvalidInt
	case types.KindString:
		s := strings.TrimSpace(v.Str())
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// "3.0" is still an integer; "3.5" is fractional.
			parsed, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
				return 0, MsgUnparsableInt
			}
			f = parsed
		} else {
			// Exact path: float64 cannot hold every int64.
			if n <= 0 {
				return 0, MsgGreaterThanZero
			}
			if int64(int(n)) != n {
				return 0, MsgIntTooLarge
			}
			return int(n), ""
		}
	case types.KindNumber:
		f = v.Float()
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, MsgNotFinite
	}
	if f != math.Trunc(f) {
		return 0, MsgFractionalInt
	}
	if f <= 0 {
		return 0, MsgGreaterThanZero
	}
	// -MinInt is the first whole number past the platform int range and,
	// unlike MaxInt, is exactly representable as a float64.
	if f >= -float64(math.MinInt) {
		return 0, MsgIntTooLarge
	}

	return int(f), ""
}

// positiveFloat validates a finite real number greater than zero.
func positiveFloat(v types.Value) (float64, string) {
	var f float64

	switch v.Kind() {
	case types.KindNull:
		return 0, MsgNotFinite
	case types.KindBool:
		return 0, MsgInvalidFloat
	case types.KindString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64)
		if err != nil {
			return 0, MsgUnparsableFloat
		}
		f = parsed
	case types.KindNumber:
		f = v.Float()
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, MsgNotFinite
	}
	if f <= 0 {
		return 0, MsgGreaterThanZero
	}

	return f, ""
}

// boundedString validates a string of NameMinLength..NameMaxLength characters.
func boundedString(v types.Value) (string, string) {
	if v.Kind() != types.KindString {
		return "", MsgInvalidString
	}

	s := v.Str()
	n := utf8.RuneCountInString(s)
	switch {
	case n < NameMinLength:
		return "", fmt.Sprintf("String should have at least %d characters", NameMinLength)
	case n > NameMaxLength:
		return "", fmt.Sprintf("String should have at most %d characters", NameMaxLength)
	}

	return s, ""
}
