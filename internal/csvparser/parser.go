// =============================================================================
// Order Report Summary - CSV Source Reader
// =============================================================================
//
// Daily reports exported as CSV (2025_01_31.csv) are read with the same
// contract as the XLSX reader: first row is the header, each following
// record becomes a types.Row keyed by header name. CSV has no cell types, so
// every cell is classified from its text (see types.ParseCell).
//
// Empty lines are not records and never reach the result. Records whose
// cells are all blank (",,,") are kept as all-null rows unless they trail the
// data, so validation error indexes count records after the header.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/order-report-summary/internal/types"
)

// Reader reads order rows from a CSV file.
type Reader struct {
	// Delimiter separates fields. Common values: "," "|" ";" "\t".
	Delimiter string
}

// NewReader returns a comma-separated Reader.
func NewReader() *Reader {
	return &Reader{Delimiter: ","}
}

// Read opens path and returns its data rows.
func (r *Reader) Read(path string) ([]types.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return r.Parse(file)
}

// Parse reads CSV content from src.
func (r *Reader) Parse(src io.Reader) ([]types.Row, error) {
	csvReader := csv.NewReader(bufio.NewReader(src))
	configureReader(csvReader, r.Delimiter)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers := cleanHeaders(allRows[0])
	allRows = trimTrailingEmpty(allRows)
	rows := make([]types.Row, 0, len(allRows)-1)

	for _, record := range allRows[1:] {
		row := make(types.Row, len(headers))
		for col, header := range headers {
			cell := ""
			if col < len(record) {
				cell = record[col]
			}
			row[col] = types.Field{Column: header, Value: types.ParseCell(cell)}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// configureReader applies the delimiter and relaxes quoting rules.
func configureReader(reader *csv.Reader, delimiter string) {
	switch delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(delimiter) > 0 {
			reader.Comma = rune(delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Rows may be ragged; missing trailing cells read as blank.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// cleanHeaders trims header names and names blank headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// trimTrailingEmpty drops blank records after the last data record. The
// header is never dropped.
func trimTrailingEmpty(records [][]string) [][]string {
	end := len(records)
	for end > 1 && isRowEmpty(records[end-1]) {
		end--
	}
	return records[:end]
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
