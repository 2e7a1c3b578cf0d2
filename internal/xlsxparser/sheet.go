package xlsxparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// CELL VALUES
// =============================================================================

// Kind classifies a raw cell as read from the workbook.
type Kind int

const (
	// KindEmpty is a missing cell, or one under a merged range.
	KindEmpty Kind = iota
	// KindNumber is a plain numeric cell.
	KindNumber
	// KindFormula is a formula cell; its cached result is in Num or Text.
	KindFormula
	// KindRichText is a rich text cell. It is never considered empty.
	KindRichText
	// KindString is any other text cell (shared/inline strings, booleans).
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindFormula:
		return "formula"
	case KindRichText:
		return "rich_text"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a single raw cell.
type Value struct {
	Kind Kind

	// Text is the displayed (formatted) text of the cell.
	Text string

	// Num holds the number of a KindNumber cell, or the result of a
	// KindFormula cell when Numeric is set.
	Num     float64
	Numeric bool
}

// Str returns a plain text cell.
func Str(s string) Value { return Value{Kind: KindString, Text: s} }

// Num returns a numeric cell displayed with its shortest representation.
func Num(n float64) Value {
	return Value{Kind: KindNumber, Num: n, Numeric: true, Text: strconv.FormatFloat(n, 'f', -1, 64)}
}

// Rich returns a rich text cell.
func Rich(s string) Value { return Value{Kind: KindRichText, Text: s} }

// FormulaNum returns a formula cell whose cached result is numeric.
func FormulaNum(n float64) Value {
	return Value{Kind: KindFormula, Num: n, Numeric: true, Text: strconv.FormatFloat(n, 'f', -1, 64)}
}

// FormulaText returns a formula cell whose cached result is text.
func FormulaText(s string) Value { return Value{Kind: KindFormula, Text: s} }

// IsEmpty reports whether the cell is effectively empty: missing, or text that
// is blank after trimming. Rich text and numbers are never empty.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindEmpty:
		return true
	case KindNumber, KindRichText:
		return false
	case KindFormula:
		return !v.Numeric && strings.TrimSpace(v.Text) == ""
	default:
		return strings.TrimSpace(v.Text) == ""
	}
}

// =============================================================================
// SHEET GRID
// =============================================================================

// Sheet is an immutable grid of cells from the first worksheet of a workbook.
// Rows and columns are 0-based; cells outside the grid read as KindEmpty.
type Sheet struct {
	Name string
	rows [][]Value
}

// New builds a sheet from rows of cells. The rows are used as-is.
func New(name string, rows [][]Value) *Sheet {
	return &Sheet{Name: name, rows: rows}
}

// NumRows returns the number of rows in the grid.
func (s *Sheet) NumRows() int { return len(s.rows) }

// RowWidth returns the number of cells stored for row.
func (s *Sheet) RowWidth(row int) int {
	if row < 0 || row >= len(s.rows) {
		return 0
	}
	return len(s.rows[row])
}

// Cell returns the cell at (row, col).
func (s *Sheet) Cell(row, col int) Value {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.rows[row]) {
		return Value{}
	}
	return s.rows[row][col]
}

// CellByName returns the cell at an A1-style reference such as "B3".
func (s *Sheet) CellByName(ref string) (Value, error) {
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return Value{}, fmt.Errorf("invalid cell reference %q: %w", ref, err)
	}
	return s.Cell(row-1, col-1), nil
}

// RowHasContent reports whether any cell of row is non-empty.
func (s *Sheet) RowHasContent(row int) bool {
	for col := 0; col < s.RowWidth(row); col++ {
		if !s.Cell(row, col).IsEmpty() {
			return true
		}
	}
	return false
}
