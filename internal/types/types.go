// =============================================================================
// Order Report Summary - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - xlsxparser / csvparser (produce Rows)
//   - validation             (consumes Rows)
//   - report / summary       (produce Tables and Documents)
//   - xlsxwriter             (consumes Documents)
//   - chart                  (consumes DatePoints and CategoryAmounts)
//
// =============================================================================

package types

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// RAW ROW TYPES
// =============================================================================

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	// KindNull is an empty cell. Spreadsheet readers report blank cells as null.
	KindNull ValueKind = iota
	KindNumber
	KindString
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a single untyped cell read from a source file.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	b    bool
}

// Null returns an empty cell value.
func Null() Value { return Value{kind: KindNull} }

// Number returns a numeric cell value. NaN is stored as-is.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a string cell value.
func Text(s string) Value { return Value{kind: KindString, str: s} }

// Bool returns a boolean cell value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// Float returns the numeric payload. Only meaningful for KindNumber.
func (v Value) Float() float64 { return v.num }

// Str returns the string payload. Only meaningful for KindString.
func (v Value) Str() string { return v.str }

// Truth returns the boolean payload. Only meaningful for KindBool.
func (v Value) Truth() bool { return v.b }

// String renders the value for logs and error files.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// ParseCell classifies a raw textual cell the way a spreadsheet would:
// blank -> null, numeric text -> number, TRUE/FALSE -> bool, anything else -> string.
func ParseCell(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Null()
	}

	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) {
		return Number(f)
	}

	switch strings.ToUpper(trimmed) {
	case "TRUE":
		return Bool(true)
	case "FALSE":
		return Bool(false)
	}

	return Text(raw)
}

// Field is one column/value pair of a Row.
type Field struct {
	Column string
	Value  Value
}

// Row is an ordered mapping of column name to raw cell value.
// Column order follows the header of the source file.
type Row []Field

// Get returns the value stored under column and whether the column exists.
func (r Row) Get(column string) (Value, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Columns returns the column names of r in order.
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// =============================================================================
// SERIES TYPES
// =============================================================================

// DatePoint is one value on a date axis.
type DatePoint struct {
	Date   time.Time
	Amount float64
}

// CategoryAmount is one labelled share of a whole.
type CategoryAmount struct {
	Label  string
	Amount float64
}

// =============================================================================
// OUTPUT TYPES
// =============================================================================

// Table is a header plus rows of cells. A nil cell is written blank.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Placement locates a block inside a workbook. Row and Col are 0-based.
type Placement struct {
	Sheet string
	Row   int
	Col   int
}

// Block is either a line of text (titles, headings) or a table.
type Block struct {
	Placement

	// Text is written into a single cell when Table is nil.
	Text string

	// Style selects the text style: "title", "heading" or "" for plain text.
	Style string

	// Table is written with its header row at the placement.
	Table *Table
}

// Image is a rendered chart placed into a workbook.
type Image struct {
	Placement

	// Path is the PNG file produced by the chart renderer.
	Path string

	// Width and Height are the pixel dimensions reported by the renderer.
	Width  int
	Height int

	// Scale is applied to both dimensions when the image is displayed.
	Scale float64
}

// Document is everything a writer needs to persist one output file.
type Document struct {
	// Title is stored in the file properties.
	Title string

	// Subject is stored in the file properties (the run id, for example).
	Subject string

	Blocks []Block
	Images []Image
}
