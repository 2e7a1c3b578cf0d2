package xlsxparser

import (
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// CELL VALUE NORMALIZATION
// =============================================================================
//
// Vendor sheets mix native numbers, formula results, rich text and currency
// strings such as "$12.50" in the same column. Two extractors turn any raw cell
// into a typed scalar:
//
//   Text   : nil for empty cells, otherwise the trimmed display text (nil when
//            that is blank).
//   Number : the number itself, a formula's numeric result, or the text with
//            everything except digits, '.' and '-' stripped and the leading
//            decimal parsed. Anything unparseable is 0.
//
// Empty numeric cells are resolved by Sheet.Number, which walks upward through
// a vertically merged range before falling back to 0.
//
// =============================================================================

var (
	nonNumeric     = regexp.MustCompile(`[^0-9.\-]`)
	leadingDecimal = regexp.MustCompile(`^-?(?:[0-9]+\.?[0-9]*|\.[0-9]+)`)
)

// Text returns the trimmed text of v, or nil when the cell is empty.
func Text(v Value) *string {
	if v.Kind == KindEmpty {
		return nil
	}
	text := v.Text
	if text == "" && v.Numeric {
		text = strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &text
}

// Number converts a non-empty cell to a number. An empty cell yields 0; use
// Sheet.Number for merged-cell aware extraction.
func Number(v Value) float64 {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindFormula:
		if v.Numeric {
			return v.Num
		}
		return ParseLoose(v.Text)
	case KindRichText, KindString:
		return ParseLoose(v.Text)
	default:
		return 0
	}
}

// ParseLoose strips every character that is not a digit, '.' or '-' and parses
// the longest leading decimal of what remains. "$1,250.00" is 1250,
// "1.2.3" is 1.2 and "--" is 0.
func ParseLoose(s string) float64 {
	stripped := nonNumeric.ReplaceAllString(s, "")
	match := leadingDecimal.FindString(stripped)
	if match == "" || match == "-" {
		return 0
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return n
}

// Number extracts a numeric value at (row, col). When the cell is empty the
// column is scanned upward, row by row, for the nearest non-empty cell: the
// remainder of a vertically merged range reads as empty in raw data but shows
// the top cell's value. The scan stops at top, the first data row, and never
// reaches into the header block. Nothing found yields 0.
func (s *Sheet) Number(row, col, top int) float64 {
	v := s.Cell(row, col)
	if v.Kind != KindEmpty {
		return Number(v)
	}
	for r := row - 1; r >= top; r-- {
		above := s.Cell(r, col)
		if above.Kind != KindEmpty {
			return Number(above)
		}
	}
	return 0
}
