// =============================================================================
// Bid Sheet Importer - XLSX Sheet Parser
// =============================================================================
//
// This module reads vendor pricing workbooks. Vendor sheets follow one loose
// convention but carry no schema:
//
//   | Row  | Column A                      | Column B ...              |
//   |------|-------------------------------|---------------------------|
//   | 1    | Project title                 |                           |
//   | 3-10 | "Ship Date: 03/01" ...        | graphic notes             |
//   | 11   | ITEM DESCRIPTION              | SIZE | MATERIAL | ...     |
//   | 12+  | group headings and item rows, separated by blank rows     |
//
// The parser loads the first worksheet into an immutable Sheet grid that keeps
// enough of each cell's type (number, formula result, rich text, string) for
// the normalizer. Everything else in this package works on that grid:
//
//   sheet.go     : Value and Sheet
//   normalize.go : text / number extraction, merged-cell walk-up
//   header.go    : header label -> column map
//   classify.go  : group / item / ignorable rows
//   project.go   : fixed header block -> project record
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for a workbook without worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Open reads the first worksheet of the workbook at path.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//
// RETURNS:
//   - The sheet grid.
//   - An error if the file cannot be opened or read.
func Open(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readFirstSheet(f)
}

// Read reads the first worksheet of a workbook streamed from r.
func Read(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readFirstSheet(f)
}

// readFirstSheet loads every row of the first sheet.
//
// Rows are read twice: once formatted (what the vendor sees, used for text)
// and once raw (used for numbers, so "$12.50" formatted currency still yields
// 12.5 from the raw value).
func readFirstSheet(f *excelize.File) (*Sheet, error) {
	name := f.GetSheetName(0)
	if name == "" {
		return nil, ErrNoSheets
	}

	formatted, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read raw rows: %w", err)
	}

	rowCount := max(len(formatted), len(raw))
	rows := make([][]Value, rowCount)
	for r := 0; r < rowCount; r++ {
		fmtRow := rowAt(formatted, r)
		rawRow := rowAt(raw, r)
		width := max(len(fmtRow), len(rawRow))

		cells := make([]Value, width)
		for c := 0; c < width; c++ {
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", r+1, c+1, err)
			}
			cells[c] = loadCell(f, name, ref, cellAt(fmtRow, c), cellAt(rawRow, c))
		}
		rows[r] = cells
	}

	return New(name, rows), nil
}

// loadCell classifies a single cell.
//
// ORDER MATTERS:
//  1. Formula cells keep their cached result (computed when absent).
//  2. Rich text is detected before the emptiness check, since a rich text
//     cell counts as non-empty even with blank runs.
//  3. Shared/inline strings and booleans are text, everything else that
//     parses as a float is a number.
func loadCell(f *excelize.File, sheet, ref, display, raw string) Value {
	if formula, err := f.GetCellFormula(sheet, ref); err == nil && formula != "" {
		if raw == "" {
			if calc, err := f.CalcCellValue(sheet, ref, excelize.Options{RawCellValue: true}); err == nil {
				raw = calc
			}
			if display == "" {
				display = raw
			}
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return Value{Kind: KindFormula, Num: n, Numeric: true, Text: display}
		}
		return Value{Kind: KindFormula, Text: display}
	}

	if runs, err := f.GetCellRichText(sheet, ref); err == nil && isRichText(runs) {
		var b strings.Builder
		for _, run := range runs {
			b.WriteString(run.Text)
		}
		return Value{Kind: KindRichText, Text: b.String()}
	}

	if raw == "" && display == "" {
		return Value{}
	}

	cellType, err := f.GetCellType(sheet, ref)
	if err == nil {
		switch cellType {
		case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
			return Value{Kind: KindString, Text: display}
		}
	}

	if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return Value{Kind: KindNumber, Num: n, Numeric: true, Text: display}
	}
	return Value{Kind: KindString, Text: display}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRichText reports whether runs came from formatted rich text. A plain
// shared string comes back as a single run without font properties.
func isRichText(runs []excelize.RichTextRun) bool {
	if len(runs) > 1 {
		return true
	}
	return len(runs) == 1 && runs[0].Font != nil
}

func rowAt(rows [][]string, i int) []string {
	if i < len(rows) {
		return rows[i]
	}
	return nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
