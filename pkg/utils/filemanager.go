// =============================================================================
// Order Report Summary - File Manager Utility
// =============================================================================
//
// This module provides the file system side of a run:
//   - Report discovery in the data directory
//   - Removal of outputs left by a previous run
//   - Validation error side files (<YYYY_MM_DD>_errors.json)
//   - The run-scoped temporary directory for chart images
//
// OUTPUT NAMING:
//   reports_dir/2025_01_31_report.xlsx       one workbook per input report
//   errors_dir/2025_01_31_errors.json        only when rows were quarantined
//   temp_dir/<run id>/                       removed at the end of a run
//
// =============================================================================

package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/order-report-summary/internal/validation"
)

// ErrNoInputFiles is returned when the data directory holds no report files.
// A run without input is a failure, not a no-op.
var ErrNoInputFiles = errors.New("no reports found")

// ErrorsFileSuffix is appended to the report key to name its error file.
const ErrorsFileSuffix = "_errors.json"

// Outputs of earlier runs that CleanOutputs removes. Reports sharing a date
// carry a sequence after the date.
var (
	reportOutputPattern = regexp.MustCompile(`^\d{4}_\d{2}_\d{2}(_\d+)?_report\.xlsx$`)
	errorOutputPattern  = regexp.MustCompile(`^\d{4}_\d{2}_\d{2}(_\d+)?_errors\.json$`)
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for a run.
type FileManager struct {
	// DataDir is scanned for input reports.
	DataDir string

	// ReportsDir receives report workbooks.
	ReportsDir string

	// ErrorsDir receives validation error files.
	ErrorsDir string

	// TempRoot is the parent of the run-scoped temporary directory.
	TempRoot string

	// Pattern selects input files by name.
	Pattern *regexp.Regexp

	tempDir string
}

// NewFileManager creates a FileManager. pattern is a regular expression
// matched against file names in dataDir.
func NewFileManager(dataDir, reportsDir, errorsDir, tempRoot, pattern string) (*FileManager, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}

	return &FileManager{
		DataDir:    dataDir,
		ReportsDir: reportsDir,
		ErrorsDir:  errorsDir,
		TempRoot:   tempRoot,
		Pattern:    re,
	}, nil
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directories if they don't exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.ReportsDir, fm.ErrorsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// TempDir creates the run-scoped temporary directory on first use and
// returns its path.
func (fm *FileManager) TempDir() (string, error) {
	if fm.tempDir != "" {
		return fm.tempDir, nil
	}

	dir := filepath.Join(fm.TempRoot, uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	fm.tempDir = dir
	return dir, nil
}

// RemoveTempDir deletes the run-scoped temporary directory and the temp root
// when nothing else is left in it.
func (fm *FileManager) RemoveTempDir() error {
	if fm.tempDir == "" {
		return nil
	}

	if err := os.RemoveAll(fm.tempDir); err != nil {
		return fmt.Errorf("failed to remove temp directory: %w", err)
	}
	fm.tempDir = ""

	// Fails harmlessly when another run still uses the root.
	_ = os.Remove(fm.TempRoot)
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverReports lists the files in DataDir whose names match Pattern,
// sorted by name.
//
// RETURNS:
//   - The matching file paths.
//   - ErrNoInputFiles when nothing matches or DataDir does not exist.
func (fm *FileManager) DiscoverReports() ([]string, error) {
	entries, err := os.ReadDir(fm.DataDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w in %s", ErrNoInputFiles, fm.DataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan data directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !fm.Pattern.MatchString(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(fm.DataDir, entry.Name()))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputFiles, fm.DataDir)
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// OUTPUT CLEANUP
// =============================================================================

// CleanOutputs removes report workbooks and error files written by a
// previous run.
//
// RETURNS:
//   - The number of files removed.
//   - An error if a directory cannot be read or a file cannot be removed.
func (fm *FileManager) CleanOutputs(ctx context.Context) (int, error) {
	removed := 0
	for _, target := range []struct {
		dir     string
		pattern *regexp.Regexp
	}{
		{fm.ReportsDir, reportOutputPattern},
		{fm.ErrorsDir, errorOutputPattern},
	} {
		n, err := removeMatching(target.dir, target.pattern)
		removed += n
		if err != nil {
			return removed, err
		}
	}

	zerolog.Ctx(ctx).Debug().Int("files", removed).Msg("previous outputs removed")
	return removed, nil
}

func removeMatching(dir string, pattern *regexp.Regexp) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !pattern.MatchString(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// =============================================================================
// VALIDATION ERROR FILES
// =============================================================================

// WriteValidationErrors writes errs to ErrorsDir/<key>_errors.json as an
// indented array of {index, col, msg} records. index is the 0-based position
// of the row among the data rows of its source, blank rows included, so for
// a workbook it is the sheet row minus two. Nothing is written for an empty
// list.
//
// RETURNS:
//   - The path of the error file.
//   - An error if the file cannot be written.
func (fm *FileManager) WriteValidationErrors(ctx context.Context, key string, errs []validation.ValidationError) (string, error) {
	path := filepath.Join(fm.ErrorsDir, key+ErrorsFileSuffix)
	if len(errs) == 0 {
		return path, nil
	}

	if err := os.MkdirAll(fm.ErrorsDir, 0755); err != nil {
		return path, fmt.Errorf("failed to create errors directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return path, fmt.Errorf("failed to create error file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(errs); err != nil {
		return path, fmt.Errorf("failed to encode validation errors: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("errors", len(errs)).Msg("error file written")
	return path, file.Close()
}
