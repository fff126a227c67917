// =============================================================================
// Order Report Summary - Summary Module
// =============================================================================
//
// A Summary owns every Report of one run. Construction sorts the reports by
// date and drives each through its pipeline (validate, price, persist). The
// combined dataset and all cross-report aggregates are derived from the
// processed reports on demand.
//
// ORDERING:
//   Reports are sorted ascending by date before anything else happens. Equal
//   dates keep their input order and are numbered in that order, so the
//   second report of a date writes 2025_01_01_2_report.xlsx instead of
//   overwriting the first. Report order decides the combined row order, the
//   time-series order and the title date range.
//
// =============================================================================

package summary

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/order-report-summary/internal/report"
	"github.com/ginjaninja78/order-report-summary/internal/types"
)

// titleDateLayout formats dates in the summary title.
const titleDateLayout = "2006-01-02"

// ErrNoReports is returned when a summary is built from an empty collection.
var ErrNoReports = errors.New("summary needs at least one report")

// DatePoint is the income of one report date.
type DatePoint = types.DatePoint

// CategoryAmount is the income of one product name.
type CategoryAmount = types.CategoryAmount

// Summary is the ordered aggregation of all reports of a run.
type Summary struct {
	reports []*report.Report
	deps    Deps
}

// New sorts reports ascending by date and runs validate, price and persist on
// each of them in that order. The first failure stops construction; outputs
// of reports processed before it stay where they were written.
func New(ctx context.Context, reports []*report.Report, deps Deps) (*Summary, error) {
	if len(reports) == 0 {
		return nil, ErrNoReports
	}

	sorted := make([]*report.Report, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date().Before(sorted[j].Date())
	})
	numberSharedDates(sorted)

	logger := zerolog.Ctx(ctx)
	for _, r := range sorted {
		if err := process(ctx, r); err != nil {
			return nil, fmt.Errorf("report %s: %w", r.Key(), err)
		}
		logger.Info().
			Str("report", r.Key()).
			Int("orders", len(r.Orders())).
			Int("errors", len(r.ValidationErrors())).
			Msg("report processed")
	}

	return &Summary{reports: sorted, deps: deps}, nil
}

// numberSharedDates gives each report its position among the reports of the
// same date.
func numberSharedDates(reports []*report.Report) {
	seen := make(map[string]int, len(reports))
	for _, r := range reports {
		day := r.Date().Format(report.KeyLayout)
		seen[day]++
		r.SetSequence(seen[day])
	}
}

func process(ctx context.Context, r *report.Report) error {
	if err := r.ValidateRows(ctx); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := r.ComputePriceColumns(); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	return r.Persist(ctx)
}

// Reports returns the processed reports in date order.
func (s *Summary) Reports() []*report.Report {
	out := make([]*report.Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// CombinedData concatenates the priced rows of every report in report order.
func (s *Summary) CombinedData() []report.PricedRow {
	var rows []report.PricedRow
	for _, r := range s.reports {
		rows = append(rows, r.Data()...)
	}
	return rows
}

// TitleDateRange is the single report date, or "<first> - <last>" when the
// summary spans more than one report.
func (s *Summary) TitleDateRange() string {
	first := s.reports[0].Date().Format(titleDateLayout)
	if len(s.reports) == 1 {
		return first
	}
	return first + " - " + s.reports[len(s.reports)-1].Date().Format(titleDateLayout)
}

// Totals sums net, gross and total price over the combined data.
func (s *Summary) Totals() report.Totals {
	return report.Sum(s.CombinedData())
}

// TotalIncomeByDate returns one point per report holding that report's own
// total price.
func (s *Summary) TotalIncomeByDate() []DatePoint {
	points := make([]DatePoint, len(s.reports))
	for i, r := range s.reports {
		points[i] = DatePoint{Date: r.Date(), Amount: r.Totals().Total}
	}
	return points
}

// TotalIncomeByName sums total price per product name over the combined
// data. Names appear in the order they are first seen.
func (s *Summary) TotalIncomeByName() []CategoryAmount {
	index := make(map[string]int)
	var out []CategoryAmount
	for _, row := range s.CombinedData() {
		i, ok := index[row.Name]
		if !ok {
			i = len(out)
			index[row.Name] = i
			out = append(out, CategoryAmount{Label: row.Name})
		}
		out[i].Amount += row.Total
	}
	return out
}
