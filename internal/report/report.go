// =============================================================================
// Order Report Summary - Report Module
// =============================================================================
//
// A Report owns one date-stamped batch of raw order rows. It runs the
// per-report pipeline:
//
//   1. ValidateRows        - partition rows into orders and quarantined errors
//   2. ComputePriceColumns - attach tax, gross and total per surviving row
//   3. WithTotalRow        - totaled table for output
//   4. Persist             - write <date>_report.xlsx
//
// LIFECYCLE:
//   Validation runs exactly once; quarantined rows are never restored. Price
//   columns are computed once after validation. After that the report is
//   read-only and every aggregate is computed on demand.
//
// =============================================================================

package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/ginjaninja78/order-report-summary/internal/order"
	"github.com/ginjaninja78/order-report-summary/internal/types"
	"github.com/ginjaninja78/order-report-summary/internal/validation"
	"github.com/rs/zerolog"
)

// KeyLayout formats a report date into its identifier, e.g. 2025_01_01.
const KeyLayout = "2006_01_02"

// Column names of the priced table.
const (
	ColumnID       = validation.FieldID
	ColumnName     = validation.FieldName
	ColumnPrice    = validation.FieldPrice
	ColumnQuantity = validation.FieldQuantity
	ColumnTax      = "TAX"
	ColumnGross    = "gross"
	ColumnTotal    = "total"
)

// TotalLabel is written in the name column of the synthetic total row.
const TotalLabel = "Total"

// SheetName is the sheet the report workbook is written to.
const SheetName = "Report"

// Columns lists the priced table columns in output order.
var Columns = []string{ColumnID, ColumnName, ColumnPrice, ColumnQuantity, ColumnTax, ColumnGross, ColumnTotal}

var (
	// ErrNotValidated is returned when price columns are requested before validation.
	ErrNotValidated = errors.New("report rows have not been validated")

	// ErrAlreadyValidated is returned when a report is validated a second time.
	ErrAlreadyValidated = errors.New("report rows are already validated")

	// ErrNotPriced is returned when output is requested before price columns exist.
	ErrNotPriced = errors.New("report price columns have not been computed")

	// ErrAlreadyPriced is returned when price columns are computed a second time.
	ErrAlreadyPriced = errors.New("report price columns are already computed")
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// ErrorSink persists the quarantined rows of a report.
// It is only called with a non-empty list.
type ErrorSink interface {
	WriteValidationErrors(ctx context.Context, key string, errs []validation.ValidationError) (string, error)
}

// DocumentWriter persists a document to path.
type DocumentWriter interface {
	Write(ctx context.Context, path string, doc types.Document) error
}

// SourceReader reads the raw rows of a tabular source file.
type SourceReader interface {
	Read(path string) ([]types.Row, error)
}

// Options configures a Report.
type Options struct {
	// TaxRate is applied to every order. Zero is a valid rate.
	TaxRate float64

	// OutputDir is where Persist writes the report workbook.
	OutputDir string

	// Errors receives quarantined rows. Nil discards them.
	Errors ErrorSink

	// Writer persists the report workbook. Nil makes Persist fail.
	Writer DocumentWriter
}

// =============================================================================
// REPORT STRUCTURE
// =============================================================================

// PricedRow is one surviving order with its derived price columns.
type PricedRow struct {
	ID       int
	Name     string
	Price    float64
	Quantity int
	Tax      float64
	Gross    float64
	Total    float64
}

// Totals are the summed price columns of a set of priced rows.
type Totals struct {
	Net   float64
	Gross float64
	Total float64
}

// GroupQuantity is the quantity summed for one distinct value of a column.
type GroupQuantity struct {
	Key      string
	Quantity int
}

// Report is one date's batch of order rows.
type Report struct {
	date   time.Time
	seq    int
	source string
	opts   Options

	rows   []types.Row
	orders []order.Order
	errs   []validation.ValidationError
	priced []PricedRow

	validated   bool
	priceLoaded bool
}

// New creates a Report for date from rows in input order.
func New(date time.Time, rows []types.Row, opts Options) *Report {
	return &Report{
		date: date,
		rows: rows,
		opts: opts,
	}
}

// FromFile reads path with reader and derives the report date from the file
// stem using dateLayout (e.g. "2006_01_02" for 2025_01_31.xlsx).
func FromFile(path, dateLayout string, reader SourceReader, opts Options) (*Report, error) {
	date, err := ParseDate(path, dateLayout)
	if err != nil {
		return nil, err
	}

	rows, err := reader.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	r := New(date, rows, opts)
	r.source = path
	return r, nil
}

// ParseDate parses the date token of a report file name.
func ParseDate(path, dateLayout string) (time.Time, error) {
	base := filepath.Base(path)
	stem := base[:len(base)-len(filepath.Ext(base))]

	date, err := time.Parse(dateLayout, stem)
	if err != nil {
		return time.Time{}, fmt.Errorf("file %s does not carry a %s date: %w", base, dateLayout, err)
	}
	return date, nil
}

// Date returns the report date.
func (r *Report) Date() time.Time { return r.date }

// Key returns the date-derived identifier used to name output files. A
// sequence above one is appended so reports sharing a date keep their own
// outputs, e.g. 2025_01_01_2.
func (r *Report) Key() string {
	key := r.date.Format(KeyLayout)
	if r.seq > 1 {
		key = fmt.Sprintf("%s_%d", key, r.seq)
	}
	return key
}

// SetSequence numbers a report among those sharing its date, starting at 1.
func (r *Report) SetSequence(n int) { r.seq = n }

// Source returns the file the report was read from, if any.
func (r *Report) Source() string { return r.source }

// RawRows returns the raw rows. After validation only surviving rows remain.
func (r *Report) RawRows() []types.Row { return r.rows }

// Orders returns the valid orders in input order.
func (r *Report) Orders() []order.Order { return r.orders }

// ValidationErrors returns the quarantined field errors in input order.
func (r *Report) ValidationErrors() []validation.ValidationError { return r.errs }

// =============================================================================
// PIPELINE
// =============================================================================

// ValidateRows validates every raw row in input order. Valid rows become
// orders; invalid rows are removed and their errors kept with the row's
// original index. When any error was collected the list is handed to the
// error sink.
func (r *Report) ValidateRows(ctx context.Context) error {
	if r.validated {
		return ErrAlreadyValidated
	}
	logger := zerolog.Ctx(ctx).With().Str("report", r.Key()).Logger()

	kept := make([]types.Row, 0, len(r.rows))
	for i, row := range r.rows {
		rec, err := validation.Validate(i, row)
		if err != nil {
			var verrs validation.ValidationErrors
			if !errors.As(err, &verrs) {
				return fmt.Errorf("row %d: %w", i, err)
			}
			r.errs = append(r.errs, verrs...)
			continue
		}

		kept = append(kept, row)
		r.orders = append(r.orders, order.New(rec, r.opts.TaxRate))
	}

	quarantined := len(r.rows) - len(kept)
	r.rows = kept
	r.validated = true

	logger.Debug().
		Int("valid", len(r.orders)).
		Int("quarantined", quarantined).
		Msg("rows validated")

	if len(r.errs) == 0 {
		return nil
	}

	logger.Warn().
		Int("rows", quarantined).
		Int("errors", len(r.errs)).
		Msg("invalid rows quarantined")

	if r.opts.Errors == nil {
		return nil
	}

	path, err := r.opts.Errors.WriteValidationErrors(ctx, r.Key(), r.errs)
	if err != nil {
		return &PersistenceError{Op: "write validation errors", Path: path, Err: err}
	}

	logger.Info().Str("path", path).Msg("validation errors written")
	return nil
}

// ComputePriceColumns attaches the tax rate, gross price and total price to
// every surviving row. ValidateRows must have run first.
func (r *Report) ComputePriceColumns() error {
	if !r.validated {
		return ErrNotValidated
	}
	if r.priceLoaded {
		return ErrAlreadyPriced
	}

	r.priced = make([]PricedRow, len(r.orders))
	for i, o := range r.orders {
		rec := o.Record()
		r.priced[i] = PricedRow{
			ID:       rec.ID,
			Name:     rec.Name,
			Price:    rec.Price,
			Quantity: rec.Quantity,
			Tax:      o.TaxRate(),
			Gross:    o.GrossPrice(),
			Total:    o.TotalPrice(),
		}
	}
	r.priceLoaded = true

	return nil
}

// Priced reports whether price columns have been computed.
func (r *Report) Priced() bool { return r.priceLoaded }

// =============================================================================
// AGGREGATES
// =============================================================================

// Data returns a copy of the priced rows in input order.
func (r *Report) Data() []PricedRow {
	out := make([]PricedRow, len(r.priced))
	copy(out, r.priced)
	return out
}

// Totals sums the net, gross and total price columns.
func (r *Report) Totals() Totals {
	return Sum(r.priced)
}

// Sum adds up the net, gross and total price columns of rows.
func Sum(rows []PricedRow) Totals {
	var t Totals
	for _, row := range rows {
		t.Net += row.Price
		t.Gross += row.Gross
		t.Total += row.Total
	}
	return t
}

// Table returns the priced rows as a table with Columns.
func (r *Report) Table() types.Table {
	return ToTable(r.priced)
}

// WithTotalRow returns the priced table plus a trailing total row. Price,
// gross and total are summed, the name reads "Total", and id, quantity and
// tax are left blank.
func (r *Report) WithTotalRow() types.Table {
	return WithTotalRow(r.priced)
}

// ToTable converts priced rows to a table with Columns.
func ToTable(rows []PricedRow) types.Table {
	t := types.Table{
		Columns: append([]string(nil), Columns...),
		Rows:    make([][]any, 0, len(rows)+1),
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, []any{row.ID, row.Name, row.Price, row.Quantity, row.Tax, row.Gross, row.Total})
	}
	return t
}

// WithTotalRow converts rows to a table and appends the total row.
func WithTotalRow(rows []PricedRow) types.Table {
	t := ToTable(rows)
	sum := Sum(rows)
	t.Rows = append(t.Rows, []any{nil, TotalLabel, sum.Net, nil, nil, sum.Gross, sum.Total})
	return t
}

// GroupSum sums quantity per distinct value of field, sorted descending by
// quantity. Groups with equal quantity keep their first-seen order.
// Supported fields: id, name, price.
func (r *Report) GroupSum(field string) ([]GroupQuantity, error) {
	return GroupSum(r.priced, field)
}

// GroupSum is the slice form of Report.GroupSum.
func GroupSum(rows []PricedRow, field string) ([]GroupQuantity, error) {
	var key func(PricedRow) string
	switch field {
	case ColumnID:
		key = func(p PricedRow) string { return strconv.Itoa(p.ID) }
	case ColumnName:
		key = func(p PricedRow) string { return p.Name }
	case ColumnPrice:
		key = func(p PricedRow) string { return strconv.FormatFloat(p.Price, 'f', -1, 64) }
	default:
		return nil, fmt.Errorf("cannot group by column %q", field)
	}

	index := make(map[string]int)
	groups := make([]GroupQuantity, 0)
	for _, row := range rows {
		k := key(row)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, GroupQuantity{Key: k})
		}
		groups[i].Quantity += row.Quantity
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Quantity > groups[j].Quantity
	})

	return groups, nil
}

// GroupTable renders groups as a two-column table: field, quantity.
func GroupTable(field string, groups []GroupQuantity) types.Table {
	t := types.Table{
		Columns: []string{field, ColumnQuantity},
		Rows:    make([][]any, len(groups)),
	}
	for i, g := range groups {
		t.Rows[i] = []any{g.Key, g.Quantity}
	}
	return t
}
