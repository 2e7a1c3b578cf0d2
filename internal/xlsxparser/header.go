package xlsxparser

import "strings"

// =============================================================================
// HEADER MAP
// =============================================================================

// HeaderMap maps normalized header labels to 0-based column indices.
// Vendor sheets reorder, rename and drop optional columns, so every lookup is
// tolerant: a missing label is reported with ok=false, never as an error.
type HeaderMap struct {
	columns map[string]int
}

// BuildHeaderMap reads every non-empty cell of headerRow (0-based). When the
// same normalized label appears twice the last occurrence wins.
func BuildHeaderMap(s *Sheet, headerRow int) *HeaderMap {
	h := &HeaderMap{columns: make(map[string]int)}
	for col := 0; col < s.RowWidth(headerRow); col++ {
		text := Text(s.Cell(headerRow, col))
		if text == nil {
			continue
		}
		label := NormalizeLabel(*text)
		if label == "" {
			continue
		}
		h.columns[label] = col
	}
	return h
}

// NormalizeLabel collapses runs of whitespace (newlines included) to a single
// space, trims, and uppercases. "Size\n(W x H)" becomes "SIZE (W X H)".
func NormalizeLabel(label string) string {
	return strings.ToUpper(strings.Join(strings.Fields(label), " "))
}

// Resolve returns the column of the first alias present in the header row.
// Aliases are normalized the same way as header labels.
func (h *HeaderMap) Resolve(aliases ...string) (int, bool) {
	for _, alias := range aliases {
		if col, ok := h.columns[NormalizeLabel(alias)]; ok {
			return col, true
		}
	}
	return -1, false
}

// Len returns the number of distinct labels.
func (h *HeaderMap) Len() int { return len(h.columns) }
