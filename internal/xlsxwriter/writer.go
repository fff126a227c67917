// =============================================================================
// Order Report Summary - XLSX Document Writer
// =============================================================================
//
// This module persists a types.Document as an XLSX workbook. The caller decides
// what goes where (sheet, row, column); the writer only turns blocks into cells:
//
//   | Block            | Output                                          |
//   |------------------|-------------------------------------------------|
//   | Text, "title"    | one bold 16pt cell                              |
//   | Text, "heading"  | one bold 12pt cell                              |
//   | Text             | one plain cell                                  |
//   | Table            | header row (white on black) followed by rows;   |
//   |                  | nil cells stay blank, floats use #,##0.00       |
//   | Image            | PNG embedded at the cell, scaled by Image.Scale |
//
// Stored numbers keep full precision; the number format only changes how
// they are displayed.
//
// =============================================================================

package xlsxwriter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/order-report-summary/internal/types"
)

// defaultSheet is the sheet excelize creates for a new workbook.
const defaultSheet = "Sheet1"

// Writer writes documents as XLSX workbooks.
type Writer struct {
	// Creator is stored in the workbook properties.
	Creator string

	// ColumnWidth is applied to every column a table occupies. Zero keeps the
	// spreadsheet default.
	ColumnWidth float64
}

// New returns a Writer with default settings.
func New() *Writer {
	return &Writer{Creator: "order-report-summary", ColumnWidth: 14}
}

// styles holds the style ids registered in one workbook.
type styles struct {
	title   int
	heading int
	header  int
	number  int
}

// Write lays doc out in a new workbook and saves it to path, creating parent
// directories as needed. An existing file at path is overwritten.
func (w *Writer) Write(ctx context.Context, path string, doc types.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   doc.Title,
		Subject: doc.Subject,
		Creator: w.Creator,
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}

	st, err := registerStyles(f)
	if err != nil {
		return err
	}

	sheets := newSheetSet(f)

	for _, block := range doc.Blocks {
		if err := sheets.ensure(block.Sheet); err != nil {
			return err
		}

		if block.Table != nil {
			err = w.writeTable(f, st, block.Placement, block.Table)
		} else {
			err = writeText(f, st, block)
		}
		if err != nil {
			return err
		}
	}

	for _, img := range doc.Images {
		if err := sheets.ensure(img.Sheet); err != nil {
			return err
		}
		if err := writeImage(f, img); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Int("blocks", len(doc.Blocks)).
		Int("images", len(doc.Images)).
		Msg("workbook saved")

	return nil
}

// =============================================================================
// SHEETS AND STYLES
// =============================================================================

// sheetSet creates sheets on first use. The first sheet used replaces the
// default "Sheet1".
type sheetSet struct {
	f       *excelize.File
	created map[string]bool
}

func newSheetSet(f *excelize.File) *sheetSet {
	return &sheetSet{f: f, created: make(map[string]bool)}
}

func (s *sheetSet) ensure(name string) error {
	if name == "" {
		name = defaultSheet
	}
	if s.created[name] {
		return nil
	}

	if len(s.created) == 0 {
		if name != defaultSheet {
			if err := s.f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("failed to rename sheet to %s: %w", name, err)
			}
		}
	} else if _, err := s.f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	s.created[name] = true
	return nil
}

func registerStyles(f *excelize.File) (styles, error) {
	var (
		st  styles
		err error
	)

	if st.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	}); err != nil {
		return st, fmt.Errorf("failed to register title style: %w", err)
	}

	if st.heading, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
	}); err != nil {
		return st, fmt.Errorf("failed to register heading style: %w", err)
	}

	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "F5F5F5"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"000000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return st, fmt.Errorf("failed to register header style: %w", err)
	}

	// Built-in format 4 is "#,##0.00".
	if st.number, err = f.NewStyle(&excelize.Style{NumFmt: 4}); err != nil {
		return st, fmt.Errorf("failed to register number style: %w", err)
	}

	return st, nil
}

// =============================================================================
// BLOCK WRITERS
// =============================================================================

func sheetOf(p types.Placement) string {
	if p.Sheet == "" {
		return defaultSheet
	}
	return p.Sheet
}

func writeText(f *excelize.File, st styles, block types.Block) error {
	sheet := sheetOf(block.Placement)
	cell, err := excelize.CoordinatesToCellName(block.Col+1, block.Row+1)
	if err != nil {
		return err
	}

	if err := f.SetCellStr(sheet, cell, block.Text); err != nil {
		return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
	}

	switch block.Style {
	case "title":
		return f.SetCellStyle(sheet, cell, cell, st.title)
	case "heading":
		return f.SetCellStyle(sheet, cell, cell, st.heading)
	}
	return nil
}

func (w *Writer) writeTable(f *excelize.File, st styles, p types.Placement, table *types.Table) error {
	sheet := sheetOf(p)

	for i, name := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(p.Col+i+1, p.Row+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header %s!%s: %w", sheet, cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.header); err != nil {
			return err
		}
	}

	for r, row := range table.Rows {
		for c, value := range row {
			if value == nil {
				continue
			}

			cell, err := excelize.CoordinatesToCellName(p.Col+c+1, p.Row+r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			}
			if _, ok := value.(float64); ok {
				if err := f.SetCellStyle(sheet, cell, cell, st.number); err != nil {
					return err
				}
			}
		}
	}

	if w.ColumnWidth > 0 && len(table.Columns) > 0 {
		first, err := excelize.ColumnNumberToName(p.Col + 1)
		if err != nil {
			return err
		}
		last, err := excelize.ColumnNumberToName(p.Col + len(table.Columns))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, first, last, w.ColumnWidth); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	return nil
}

func writeImage(f *excelize.File, img types.Image) error {
	sheet := sheetOf(img.Placement)
	cell, err := excelize.CoordinatesToCellName(img.Col+1, img.Row+1)
	if err != nil {
		return err
	}

	scale := img.Scale
	if scale <= 0 {
		scale = 1
	}

	if err := f.AddPicture(sheet, cell, img.Path, &excelize.GraphicOptions{
		ScaleX:          scale,
		ScaleY:          scale,
		LockAspectRatio: true,
	}); err != nil {
		return fmt.Errorf("failed to embed %s at %s!%s: %w", filepath.Base(img.Path), sheet, cell, err)
	}
	return nil
}
