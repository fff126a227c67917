package summary

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ginjaninja78/order-report-summary/internal/order"
	"github.com/ginjaninja78/order-report-summary/internal/report"
	"github.com/ginjaninja78/order-report-summary/internal/types"
)

// SheetName is the sheet the summary workbook is written to.
const SheetName = "Summary"

// DefaultChartScale is the fraction of a chart's pixel size used for display.
const DefaultChartScale = 0.2

// Chart titles and the file names they are rendered to.
const (
	IncomeByDateTitle = "Total income by date"
	IncomeByNameTitle = "Total income by product"

	incomeByDateFile = "income_by_date.png"
	incomeByNameFile = "income_by_name.png"
)

// chartColumnGap separates the two charts when both are shown.
const chartColumnGap = 5

// ChartRenderer draws a chart to path and reports its pixel size.
type ChartRenderer interface {
	RenderTimeSeries(ctx context.Context, title string, points []types.DatePoint, path string) (width, height int, err error)
	RenderProportion(ctx context.Context, title string, shares []types.CategoryAmount, path string) (width, height int, err error)
}

// Deps are the collaborators and settings used to assemble and save the
// summary document.
type Deps struct {
	Writer report.DocumentWriter
	Charts ChartRenderer

	// OutputPath is where Save writes the summary workbook.
	OutputPath string

	// TempDir receives rendered chart images.
	TempDir string

	// ChartScale is applied to reported chart sizes. Zero means DefaultChartScale.
	ChartScale float64

	// RunID is stored as the document subject.
	RunID string
}

func (d Deps) chartScale() float64 {
	if d.ChartScale <= 0 {
		return DefaultChartScale
	}
	return d.ChartScale
}

func (d Deps) tempDir() string {
	if d.TempDir == "" {
		return filepath.Join(os.TempDir(), "order-report-summary")
	}
	return d.TempDir
}

// Document assembles the summary workbook content in order: title, combined
// table with a grand total row, the "Total" heading with net, gross and total
// sums, and the charts. The income-by-date chart is only drawn when there is
// more than one report. Values are rounded to two decimals here and nowhere
// else.
func (s *Summary) Document(ctx context.Context) (types.Document, error) {
	logger := zerolog.Ctx(ctx)

	title := "Summary " + s.TitleDateRange()
	main := presentTable(report.WithTotalRow(s.CombinedData()))
	totals := totalsTable(s.Totals())

	headingRow := 2 + len(main.Rows) + 2
	chartRow := headingRow + 4

	doc := types.Document{
		Title:   title,
		Subject: s.deps.RunID,
		Blocks: []types.Block{
			{Placement: types.Placement{Sheet: SheetName, Row: 0}, Text: title, Style: "title"},
			{Placement: types.Placement{Sheet: SheetName, Row: 2}, Table: &main},
			{Placement: types.Placement{Sheet: SheetName, Row: headingRow}, Text: "Total", Style: "heading"},
			{Placement: types.Placement{Sheet: SheetName, Row: headingRow + 1}, Table: &totals},
		},
	}

	if s.deps.Charts == nil {
		logger.Warn().Msg("no chart renderer configured, charts skipped")
		return doc, nil
	}

	col := 0
	if len(s.reports) > 1 {
		img, err := s.renderTimeSeries(ctx, types.Placement{Sheet: SheetName, Row: chartRow, Col: col})
		if err != nil {
			return types.Document{}, err
		}
		doc.Images = append(doc.Images, img)
		col += chartColumnGap
	}

	shares := s.TotalIncomeByName()
	if len(shares) == 0 {
		logger.Warn().Msg("no priced rows, income by product chart skipped")
		return doc, nil
	}

	img, err := s.renderProportion(ctx, shares, types.Placement{Sheet: SheetName, Row: chartRow, Col: col})
	if err != nil {
		return types.Document{}, err
	}
	doc.Images = append(doc.Images, img)

	return doc, nil
}

// Save renders the charts and writes the summary workbook to OutputPath.
func (s *Summary) Save(ctx context.Context) error {
	if s.deps.Writer == nil {
		return &report.PersistenceError{Op: "write summary", Err: errors.New("no document writer configured")}
	}

	doc, err := s.Document(ctx)
	if err != nil {
		return err
	}

	if err := s.deps.Writer.Write(ctx, s.deps.OutputPath, doc); err != nil {
		return &report.PersistenceError{Op: "write summary", Path: s.deps.OutputPath, Err: err}
	}

	zerolog.Ctx(ctx).Info().
		Str("path", s.deps.OutputPath).
		Str("range", s.TitleDateRange()).
		Int("reports", len(s.reports)).
		Msg("summary written")
	return nil
}

// =============================================================================
// CHARTS
// =============================================================================

func (s *Summary) renderTimeSeries(ctx context.Context, at types.Placement) (types.Image, error) {
	path := filepath.Join(s.deps.tempDir(), incomeByDateFile)
	w, h, err := s.deps.Charts.RenderTimeSeries(ctx, IncomeByDateTitle, s.TotalIncomeByDate(), path)
	if err != nil {
		return types.Image{}, &report.PersistenceError{Op: "render chart", Path: path, Err: err}
	}
	return types.Image{Placement: at, Path: path, Width: w, Height: h, Scale: s.deps.chartScale()}, nil
}

func (s *Summary) renderProportion(ctx context.Context, shares []CategoryAmount, at types.Placement) (types.Image, error) {
	path := filepath.Join(s.deps.tempDir(), incomeByNameFile)
	w, h, err := s.deps.Charts.RenderProportion(ctx, IncomeByNameTitle, shares, path)
	if err != nil {
		return types.Image{}, &report.PersistenceError{Op: "render chart", Path: path, Err: err}
	}
	return types.Image{Placement: at, Path: path, Width: w, Height: h, Scale: s.deps.chartScale()}, nil
}

// =============================================================================
// PRESENTATION
// =============================================================================

// presentTable title-cases the headers and rounds every float cell.
func presentTable(t types.Table) types.Table {
	caser := cases.Title(language.Und)

	out := types.Table{
		Columns: make([]string, len(t.Columns)),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, c := range t.Columns {
		out.Columns[i] = caser.String(c)
	}
	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			if f, ok := v.(float64); ok {
				v = order.Round(f, 2)
			}
			cells[j] = v
		}
		out.Rows[i] = cells
	}
	return out
}

func totalsTable(t report.Totals) types.Table {
	return types.Table{
		Columns: []string{"Net", "Gross", "Total"},
		Rows: [][]any{{
			order.Round(t.Net, 2),
			order.Round(t.Gross, 2),
			order.Round(t.Total, 2),
		}},
	}
}
