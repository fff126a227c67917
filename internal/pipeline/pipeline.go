// =============================================================================
// Order Report Summary - Pipeline Module
// =============================================================================
//
// This module runs one batch over the data directory, start to finish.
//
// PROCESSING PIPELINE:
//   1. Remove report workbooks and error files of a previous run
//   2. Discover report files in the data directory
//   3. Read each file into a Report (date taken from the file name)
//   4. Build the Summary: sort by date, then validate, price and persist
//      every report in that order
//   5. Render charts into the run's temp directory and write the summary
//   6. Remove the temp directory
//
// CONCURRENCY:
//   None. Reports are processed one after another; a failure stops the run
//   and leaves whatever was already written on disk.
//
// =============================================================================

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/order-report-summary/internal/chart"
	"github.com/ginjaninja78/order-report-summary/internal/config"
	"github.com/ginjaninja78/order-report-summary/internal/csvparser"
	"github.com/ginjaninja78/order-report-summary/internal/report"
	"github.com/ginjaninja78/order-report-summary/internal/summary"
	"github.com/ginjaninja78/order-report-summary/internal/xlsxparser"
	"github.com/ginjaninja78/order-report-summary/internal/xlsxwriter"
	"github.com/ginjaninja78/order-report-summary/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result describes a finished run.
type Result struct {
	// SummaryPath is the summary workbook written by the run.
	SummaryPath string

	// ReportPaths are the report workbooks, in date order.
	ReportPaths []string

	// DateRange is the summary title range, e.g. "2025-01-01 - 2025-01-03".
	DateRange string

	Stats Stats
}

// Stats counts what a run processed.
type Stats struct {
	// Reports is the number of input files processed.
	Reports int

	// Orders is the number of rows that passed validation.
	Orders int

	// ValidationErrors is the number of field errors across all reports.
	ValidationErrors int

	// CleanedFiles is the number of outputs of a previous run removed.
	CleanedFiles int

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// =============================================================================
// RUNNER STRUCTURE
// =============================================================================

// Runner executes the pipeline with one configuration.
type Runner struct {
	cfg    *config.Config
	runID  string
	files  *utils.FileManager
	writer report.DocumentWriter
	charts summary.ChartRenderer
}

// New creates a Runner from cfg. runID is recorded in the summary workbook.
func New(cfg *config.Config, runID string) (*Runner, error) {
	files, err := utils.NewFileManager(cfg.DataDir, cfg.ReportsDir, cfg.ErrorsDir, cfg.TempDir, cfg.FilePattern)
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:    cfg,
		runID:  runID,
		files:  files,
		writer: xlsxwriter.New(),
		charts: chart.NewRenderer(cfg.ChartWidth, cfg.ChartHeight),
	}, nil
}

// Run processes every report in the data directory and writes the summary.
//
// RETURNS:
//   - The run result.
//   - utils.ErrNoInputFiles when the data directory holds no report, or the
//     first read, validation or write failure.
func (r *Runner) Run(ctx context.Context) (result Result, err error) {
	startTime := time.Now()
	logger := zerolog.Ctx(ctx)

	// =========================================================================
	// STEP 1: CLEAN PREVIOUS OUTPUTS
	// =========================================================================

	if r.cfg.CleanOutputs {
		if result.Stats.CleanedFiles, err = r.files.CleanOutputs(ctx); err != nil {
			return result, err
		}
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	paths, err := r.files.DiscoverReports()
	if err != nil {
		return result, err
	}
	logger.Info().Int("files", len(paths)).Str("dir", r.cfg.DataDir).Msg("reports discovered")

	if err := r.files.EnsureDirectories(); err != nil {
		return result, err
	}

	// =========================================================================
	// STEP 3: READ REPORTS
	// =========================================================================

	reports := make([]*report.Report, 0, len(paths))
	for _, path := range paths {
		rep, err := r.readReport(path)
		if err != nil {
			return result, err
		}
		logger.Debug().Str("file", filepath.Base(path)).Int("rows", len(rep.RawRows())).Msg("report read")
		reports = append(reports, rep)
	}

	// =========================================================================
	// STEP 4: VALIDATE, PRICE AND PERSIST
	// =========================================================================

	tempDir, err := r.files.TempDir()
	if err != nil {
		return result, err
	}
	defer func() {
		if rmErr := r.files.RemoveTempDir(); rmErr != nil {
			logger.Warn().Err(rmErr).Msg("failed to remove temp directory")
		}
	}()

	sum, err := summary.New(ctx, reports, summary.Deps{
		Writer:     r.writer,
		Charts:     r.charts,
		OutputPath: r.cfg.SummaryPath,
		TempDir:    tempDir,
		ChartScale: r.cfg.ChartScale,
		RunID:      r.runID,
	})
	if err != nil {
		return result, err
	}

	// =========================================================================
	// STEP 5: WRITE SUMMARY
	// =========================================================================

	if err := sum.Save(ctx); err != nil {
		return result, err
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.SummaryPath = r.cfg.SummaryPath
	result.DateRange = sum.TitleDateRange()
	for _, rep := range sum.Reports() {
		result.ReportPaths = append(result.ReportPaths, rep.OutputPath())
		result.Stats.Orders += len(rep.Orders())
		result.Stats.ValidationErrors += len(rep.ValidationErrors())
	}
	result.Stats.Reports = len(reports)
	result.Stats.Elapsed = time.Since(startTime)

	return result, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ErrUnsupportedFormat is returned for input files neither XLSX nor CSV.
var ErrUnsupportedFormat = errors.New("unsupported report format")

func (r *Runner) readReport(path string) (*report.Report, error) {
	reader, err := readerFor(path)
	if err != nil {
		return nil, err
	}

	return report.FromFile(path, r.cfg.DateLayout, reader, report.Options{
		TaxRate:   r.cfg.TaxRate,
		OutputDir: r.cfg.ReportsDir,
		Errors:    r.files,
		Writer:    r.writer,
	})
}

// readerFor picks the source reader by file extension.
func readerFor(path string) (report.SourceReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsxparser.NewReader(), nil
	case ".csv":
		return csvparser.NewReader(), nil
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
}
