package summary

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/order-report-summary/internal/report"
	"github.com/ginjaninja78/order-report-summary/internal/types"
	"github.com/ginjaninja78/order-report-summary/internal/validation"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeWriter struct {
	paths  []string
	docs   []types.Document
	failOn string
}

func (w *fakeWriter) Write(_ context.Context, path string, doc types.Document) error {
	if path == w.failOn {
		return errors.New("disk full")
	}
	w.paths = append(w.paths, path)
	w.docs = append(w.docs, doc)
	return nil
}

type fakeSink struct {
	keys []string
}

func (s *fakeSink) WriteValidationErrors(_ context.Context, key string, _ []validation.ValidationError) (string, error) {
	s.keys = append(s.keys, key)
	return key + "_errors.json", nil
}

type fakeCharts struct {
	timeSeries []types.DatePoint
	shares     []types.CategoryAmount
	seriesRuns int
	pieRuns    int
	err        error
}

func (c *fakeCharts) RenderTimeSeries(_ context.Context, _ string, points []types.DatePoint, _ string) (int, int, error) {
	c.seriesRuns++
	c.timeSeries = points
	return 1000, 500, c.err
}

func (c *fakeCharts) RenderProportion(_ context.Context, _ string, shares []types.CategoryAmount, _ string) (int, int, error) {
	c.pieRuns++
	c.shares = shares
	return 800, 800, c.err
}

// =============================================================================
// FIXTURES
// =============================================================================

func orderRow(id int, name string, price float64, qty int) types.Row {
	return types.Row{
		{Column: "id", Value: types.Number(float64(id))},
		{Column: "name", Value: types.Text(name)},
		{Column: "price", Value: types.Number(price)},
		{Column: "quantity", Value: types.Number(float64(qty))},
	}
}

func date(day int) time.Time {
	return time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC)
}

// unsortedReports returns reports dated 2025-01-03, 01-02 and 01-01 in that order.
func unsortedReports(writer *fakeWriter, sink *fakeSink) []*report.Report {
	opts := report.Options{TaxRate: 0.23, OutputDir: "reports", Writer: writer, Errors: sink}
	return []*report.Report{
		report.New(date(3), []types.Row{
			orderRow(1, "Product1", 100, 10),
			orderRow(1, "Product2", 150, 20),
			orderRow(2, "Product1", 100, 30),
		}, opts),
		report.New(date(2), []types.Row{
			orderRow(3, "Product1", 100, 10),
			orderRow(3, "Product2", 150, 20),
			orderRow(3, "Product3", 100, 30),
		}, opts),
		report.New(date(1), []types.Row{
			orderRow(4, "Product1", 100, 1),
			orderRow(5, "Product3", 180, 30),
			orderRow(6, "Product5", 200, 60),
		}, opts),
	}
}

func newSummary(t *testing.T, deps Deps) (*Summary, *fakeWriter, *fakeSink) {
	t.Helper()
	writer := &fakeWriter{}
	sink := &fakeSink{}
	if deps.Writer == nil {
		deps.Writer = writer
	}
	s, err := New(context.Background(), unsortedReports(writer, sink), deps)
	require.NoError(t, err)
	return s, writer, sink
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNew_SortsAndProcessesReports(t *testing.T) {
	// Given / When
	s, writer, sink := newSummary(t, Deps{})

	// Then
	var dates []time.Time
	for _, r := range s.Reports() {
		dates = append(dates, r.Date())
		assert.True(t, r.Priced())
	}
	assert.Equal(t, []time.Time{date(1), date(2), date(3)}, dates)

	assert.Equal(t, []string{
		filepath.Join("reports", "2025_01_01_report.xlsx"),
		filepath.Join("reports", "2025_01_02_report.xlsx"),
		filepath.Join("reports", "2025_01_03_report.xlsx"),
	}, writer.paths, "each report is persisted once, in date order")
	assert.Empty(t, sink.keys, "no error side file for clean batches")
}

func TestNew_CombinedData(t *testing.T) {
	s, _, _ := newSummary(t, Deps{})

	rows := s.CombinedData()
	require.Len(t, rows, 9)

	var ids []int
	var names []string
	for _, row := range rows {
		ids = append(ids, row.ID)
		names = append(names, row.Name)
		assert.Equal(t, 0.23, row.Tax)
	}
	assert.Equal(t, []int{4, 5, 6, 3, 3, 3, 1, 1, 2}, ids)
	assert.Equal(t, []string{
		"Product1", "Product3", "Product5",
		"Product1", "Product2", "Product3",
		"Product1", "Product2", "Product1",
	}, names)

	wantGross := []float64{123, 221.4, 246, 123, 184.5, 123, 123, 184.5, 123}
	wantTotal := []float64{123, 6642, 14760, 1230, 3690, 3690, 1230, 3690, 3690}
	for i, row := range rows {
		assert.InDelta(t, wantGross[i], row.Gross, 1e-9, "gross of row %d", i)
		assert.InDelta(t, wantTotal[i], row.Total, 1e-9, "total of row %d", i)
	}
}

func TestNew_EqualDatesKeepInputOrder(t *testing.T) {
	writer := &fakeWriter{}
	opts := report.Options{TaxRate: 0.23, Writer: writer}
	first := report.New(date(1), []types.Row{orderRow(1, "First", 10, 1)}, opts)
	second := report.New(date(1), []types.Row{orderRow(2, "Second", 10, 1)}, opts)

	s, err := New(context.Background(), []*report.Report{first, second}, Deps{})

	require.NoError(t, err)
	rows := s.CombinedData()
	require.Len(t, rows, 2)
	assert.Equal(t, "First", rows[0].Name)
	assert.Equal(t, "Second", rows[1].Name)
}

func TestNew_SharedDatesWriteSeparateOutputs(t *testing.T) {
	// Given two reports of one date, each with a quarantined row
	writer := &fakeWriter{}
	sink := &fakeSink{}
	opts := report.Options{TaxRate: 0.23, OutputDir: "reports", Writer: writer, Errors: sink}
	xlsx := report.New(date(1), []types.Row{orderRow(1, "Product1", 100, 1), orderRow(2, "P", 10, 1)}, opts)
	csv := report.New(date(1), []types.Row{orderRow(3, "Product2", 150, 1), orderRow(4, "P", 10, 1)}, opts)
	later := report.New(date(2), []types.Row{orderRow(5, "Product3", 100, 1)}, opts)

	// When
	s, err := New(context.Background(), []*report.Report{later, xlsx, csv}, Deps{})

	// Then
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("reports", "2025_01_01_report.xlsx"),
		filepath.Join("reports", "2025_01_01_2_report.xlsx"),
		filepath.Join("reports", "2025_01_02_report.xlsx"),
	}, writer.paths)
	assert.Equal(t, []string{"2025_01_01", "2025_01_01_2"}, sink.keys)
	assert.Equal(t, "2025-01-01 - 2025-01-02", s.TitleDateRange())
}

func TestNew_QuarantinedRowsReachTheSink(t *testing.T) {
	writer := &fakeWriter{}
	sink := &fakeSink{}
	opts := report.Options{TaxRate: 0.23, Writer: writer, Errors: sink}
	r := report.New(date(1), []types.Row{
		orderRow(1, "Product1", 100, 1),
		orderRow(2, "P", -5, 1),
	}, opts)

	s, err := New(context.Background(), []*report.Report{r}, Deps{})

	require.NoError(t, err)
	assert.Equal(t, []string{"2025_01_01"}, sink.keys)
	assert.Len(t, s.CombinedData(), 1)
}

func TestNew_StopsAtFirstFailingReport(t *testing.T) {
	writer := &fakeWriter{failOn: filepath.Join("reports", "2025_01_02_report.xlsx")}
	sink := &fakeSink{}

	_, err := New(context.Background(), unsortedReports(writer, sink), Deps{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2025_01_02")
	var perr *report.PersistenceError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{filepath.Join("reports", "2025_01_01_report.xlsx")}, writer.paths,
		"earlier outputs stay, later reports are not processed")
}

func TestNew_NoReports(t *testing.T) {
	_, err := New(context.Background(), nil, Deps{})
	assert.ErrorIs(t, err, ErrNoReports)
}

// =============================================================================
// AGGREGATES
// =============================================================================

func TestSummary_TitleDateRange(t *testing.T) {
	s, _, _ := newSummary(t, Deps{})
	assert.Equal(t, "2025-01-01 - 2025-01-03", s.TitleDateRange())

	single, err := New(context.Background(), []*report.Report{
		report.New(date(7), []types.Row{orderRow(1, "Product1", 10, 1)}, report.Options{Writer: &fakeWriter{}}),
	}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-07", single.TitleDateRange())
}

func TestSummary_Totals(t *testing.T) {
	s, _, _ := newSummary(t, Deps{})

	totals := s.Totals()

	assert.InDelta(t, 1180, totals.Net, 1e-9)
	assert.InDelta(t, 38745, totals.Total, 1e-6)
}

func TestSummary_TotalIncomeByDate(t *testing.T) {
	s, _, _ := newSummary(t, Deps{})

	points := s.TotalIncomeByDate()

	require.Len(t, points, 3)
	for i, r := range s.Reports() {
		assert.Equal(t, r.Date(), points[i].Date)
		assert.Equal(t, r.Totals().Total, points[i].Amount, "matches the report's own total exactly")
	}
	assert.InDelta(t, 21525, points[0].Amount, 1e-6)
	assert.InDelta(t, 8610, points[1].Amount, 1e-6)
	assert.InDelta(t, 8610, points[2].Amount, 1e-6)
}

func TestSummary_TotalIncomeByName(t *testing.T) {
	s, _, _ := newSummary(t, Deps{})

	shares := s.TotalIncomeByName()

	require.Len(t, shares, 4)
	labels := []string{shares[0].Label, shares[1].Label, shares[2].Label, shares[3].Label}
	assert.Equal(t, []string{"Product1", "Product3", "Product5", "Product2"}, labels)
	assert.InDelta(t, 6273, shares[0].Amount, 1e-6)
	assert.InDelta(t, 10332, shares[1].Amount, 1e-6)
	assert.InDelta(t, 14760, shares[2].Amount, 1e-6)
	assert.InDelta(t, 7380, shares[3].Amount, 1e-6)

	var sum float64
	for _, share := range shares {
		sum += share.Amount
	}
	assert.InDelta(t, s.Totals().Total, sum, 1e-6)
}
