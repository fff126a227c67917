package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/order-report-summary/internal/types"
)

// FileSuffix is appended to the report key to name the report workbook.
const FileSuffix = "_report.xlsx"

// breakdownGap is the number of empty columns between the main table and the
// most-purchased breakdown.
const breakdownGap = 4

// PersistenceError wraps a failed write of a report, error or summary artifact.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// OutputPath returns where Persist writes the report workbook.
func (r *Report) OutputPath() string {
	return filepath.Join(r.opts.OutputDir, r.Key()+FileSuffix)
}

// Document lays out the report workbook: a title row, the totaled table
// starting below it, and the most-purchased-product breakdown to its right.
func (r *Report) Document() (types.Document, error) {
	if !r.priceLoaded {
		return types.Document{}, ErrNotPriced
	}

	groups, err := r.GroupSum(ColumnName)
	if err != nil {
		return types.Document{}, err
	}

	main := r.WithTotalRow()
	breakdown := GroupTable(ColumnName, groups)
	breakdownCol := len(main.Columns) + breakdownGap

	return types.Document{
		Title: "Report " + r.date.Format("2006-01-02"),
		Blocks: []types.Block{
			{
				Placement: types.Placement{Sheet: SheetName, Row: 0, Col: 0},
				Text:      "Report " + r.date.Format("2006-01-02"),
				Style:     "title",
			},
			{
				Placement: types.Placement{Sheet: SheetName, Row: 1, Col: 0},
				Table:     &main,
			},
			{
				Placement: types.Placement{Sheet: SheetName, Row: 0, Col: breakdownCol},
				Text:      "Most purchased products",
				Style:     "heading",
			},
			{
				Placement: types.Placement{Sheet: SheetName, Row: 1, Col: breakdownCol},
				Table:     &breakdown,
			},
		},
	}, nil
}

// Persist writes the report workbook through the configured writer.
// Failures are returned to the caller and never retried.
func (r *Report) Persist(ctx context.Context) error {
	if r.opts.Writer == nil {
		return &PersistenceError{Op: "write report", Err: errors.New("no document writer configured")}
	}

	doc, err := r.Document()
	if err != nil {
		return fmt.Errorf("failed to lay out report %s: %w", r.Key(), err)
	}

	path := r.OutputPath()
	if err := r.opts.Writer.Write(ctx, path, doc); err != nil {
		return &PersistenceError{Op: "write report", Path: path, Err: err}
	}

	zerolog.Ctx(ctx).Info().Str("report", r.Key()).Str("path", path).Msg("report written")
	return nil
}
