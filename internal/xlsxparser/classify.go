package xlsxparser

import "strings"

// =============================================================================
// ROW CLASSIFICATION
// =============================================================================
//
// The sheet format has no explicit row type marker. A heading row is one with
// text in column A and nothing else in the data range; whether it is a real
// group is decided by what follows it:
//
//   Row 12 | Outdoor            |        |      <- heading, next is a heading: dropped
//   Row 13 |                    |        |      <- blank, skipped by lookahead
//   Row 14 | Banners            |        |      <- heading, next is an item: GROUP
//   Row 15 | Vinyl Banner       | 3x6    | ...  <- item
//   Row 16 | Trailing note      |        |      <- heading, nothing follows: dropped
//
// =============================================================================

// RowKind labels a row below the header.
type RowKind int

const (
	// RowIgnorable is a blank separator or a dropped heading.
	RowIgnorable RowKind = iota
	// RowGroup is a confirmed group boundary.
	RowGroup
	// RowItem is a candidate item row.
	RowItem
)

// GroupBoundary is a confirmed group heading.
type GroupBoundary struct {
	Row  int // 0-based sheet row
	Name string
}

// Classification is the outcome of classifying every row below the header.
type Classification struct {
	FirstRow int
	Groups   []GroupBoundary
	kinds    map[int]RowKind
	names    map[int]string
}

// Kind returns the label of row. Rows above FirstRow are ignorable.
func (c *Classification) Kind(row int) RowKind {
	return c.kinds[row]
}

// Group returns the group name when row is a confirmed group boundary.
func (c *Classification) Group(row int) (string, bool) {
	name, ok := c.names[row]
	return name, ok
}

// Classify labels every row after headerRow (0-based). lastColumn is the
// 1-based last column of the data range: columns 2..lastColumn must be empty
// for a row to be a heading.
//
// Classification only reads the sheet, so classifying the same sheet twice
// yields identical results.
func Classify(s *Sheet, headerRow, lastColumn int) *Classification {
	first := headerRow + 1
	c := &Classification{
		FirstRow: first,
		kinds:    make(map[int]RowKind),
		names:    make(map[int]string),
	}

	n := s.NumRows()
	if first >= n {
		return c
	}

	// next[r] is the first row after r with any content, or -1.
	next := make([]int, n)
	following := -1
	for r := n - 1; r >= first; r-- {
		next[r] = following
		if s.RowHasContent(r) {
			following = r
		}
	}

	for r := first; r < n; r++ {
		if !s.RowHasContent(r) {
			c.kinds[r] = RowIgnorable
			continue
		}
		if !isGroupLike(s, r, lastColumn) {
			c.kinds[r] = RowItem
			continue
		}

		following := next[r]
		if following < 0 || isGroupLike(s, following, lastColumn) {
			c.kinds[r] = RowIgnorable
			continue
		}

		name := strings.TrimSpace(s.Cell(r, 0).Text)
		c.kinds[r] = RowGroup
		c.names[r] = name
		c.Groups = append(c.Groups, GroupBoundary{Row: r, Name: name})
	}

	return c
}

// isGroupLike reports whether row has text in its first column and nothing in
// columns 2..lastColumn.
func isGroupLike(s *Sheet, row, lastColumn int) bool {
	if s.Cell(row, 0).IsEmpty() {
		return false
	}
	for col := 1; col < lastColumn; col++ {
		if !s.Cell(row, col).IsEmpty() {
			return false
		}
	}
	return true
}
