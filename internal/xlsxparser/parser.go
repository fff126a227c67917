// =============================================================================
// Order Report Summary - XLSX Source Reader
// =============================================================================
//
// This module reads daily order spreadsheets. The first row of the first sheet
// is the header; every following row becomes a types.Row keyed by header
// name, in header order. Blank rows between data rows are kept as all-null
// rows so row positions, and with them validation error indexes, match the
// sheet: data row i sits on sheet row i+2. Trailing blank rows are dropped.
//
// CELL CLASSIFICATION:
//   Cells keep the spreadsheet's own typing so the validator can tell a text
//   "12" from a numeric 12:
//   | Cell type            | Value           |
//   |----------------------|-----------------|
//   | shared/inline string | types.Text      |
//   | boolean              | types.Bool      |
//   | number / unset       | types.Number    |
//   | blank / error        | types.Null      |
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/order-report-summary/internal/types"
)

// Reader reads order rows from an XLSX workbook.
type Reader struct {
	// Sheet is the sheet to read. Empty means the first sheet.
	Sheet string
}

// NewReader returns a Reader for the first sheet of a workbook.
func NewReader() *Reader {
	return &Reader{}
}

// Read opens path and returns its data rows.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//
// RETURNS:
//   - The rows in sheet order. A header-only sheet yields no rows.
//   - An error if the file cannot be opened or has no header row.
func (r *Reader) Read(path string) ([]types.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := r.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	return readSheet(f, sheet)
}

// readSheet converts one sheet into rows keyed by its header.
func readSheet(f *excelize.File, sheet string) ([]types.Row, error) {
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %s: %w", sheet, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", sheet)
	}

	headers := cleanHeaders(raw[0])
	raw = trimTrailingEmpty(raw)
	rows := make([]types.Row, 0, len(raw)-1)

	for i := 1; i < len(raw); i++ {
		row := make(types.Row, len(headers))
		for col, header := range headers {
			cell := ""
			if col < len(raw[i]) {
				cell = raw[i][col]
			}

			value, err := cellValue(f, sheet, col, i, cell)
			if err != nil {
				return nil, err
			}
			row[col] = types.Field{Column: header, Value: value}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// cellValue classifies a raw cell using the type stored in the workbook.
// col and row are 0-based.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) (types.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return types.Null(), nil
	}

	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return types.Value{}, err
	}

	cellType, err := f.GetCellType(sheet, name)
	if err != nil {
		return types.Value{}, fmt.Errorf("failed to read type of cell %s: %w", name, err)
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return types.Text(raw), nil
	case excelize.CellTypeBool:
		return types.Bool(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeError:
		return types.Null(), nil
	default:
		return types.ParseCell(raw), nil
	}
}

// cleanHeaders trims header names and names blank headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// trimTrailingEmpty drops blank rows after the last data row. The header
// row is never dropped.
func trimTrailingEmpty(raw [][]string) [][]string {
	end := len(raw)
	for end > 1 && isRowEmpty(raw[end-1]) {
		end--
	}
	return raw[:end]
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
