package xlsxparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLastColumn = 22

// heading returns a row with only column A filled.
func heading(name string) []Value {
	return []Value{Str(name)}
}

// item returns a row with a description and a size.
func item(desc, size string) []Value {
	return []Value{Str(desc), Str(size), Str("Vinyl")}
}

func groupRows(c *Classification) []int {
	var rows []int
	for _, g := range c.Groups {
		rows = append(rows, g.Row)
	}
	return rows
}

func TestClassifyConfirmsHeadingAboveItems(t *testing.T) {
	s := New("Sheet1", [][]Value{
		{Str("ITEM DESCRIPTION"), Str("SIZE")}, // 0 header
		heading("Banners"),                     // 1
		item("Vinyl Banner", "3x6"),            // 2
		nil,                                    // 3 blank
		heading("  Posters  "),                 // 4
		nil,                                    // 5 blank
		nil,                                    // 6 blank
		item("Poster", "24x36"),                // 7
	})

	c := Classify(s, 0, testLastColumn)

	require.Len(t, c.Groups, 2)
	assert.Equal(t, GroupBoundary{Row: 1, Name: "Banners"}, c.Groups[0])
	assert.Equal(t, GroupBoundary{Row: 4, Name: "Posters"}, c.Groups[1])

	assert.Equal(t, RowGroup, c.Kind(1))
	assert.Equal(t, RowItem, c.Kind(2))
	assert.Equal(t, RowIgnorable, c.Kind(3))
	assert.Equal(t, RowItem, c.Kind(7))

	name, ok := c.Group(4)
	assert.True(t, ok)
	assert.Equal(t, "Posters", name)
	_, ok = c.Group(2)
	assert.False(t, ok)
}

func TestClassifyDropsSuperGroupChain(t *testing.T) {
	s := New("Sheet1", [][]Value{
		{Str("ITEM DESCRIPTION")},
		heading("Store Launch"), // 1 super-group
		nil,
		heading("Outdoor"), // 3 super-group
		heading("Banners"), // 4 innermost heading
		item("Vinyl Banner", "3x6"),
	})

	c := Classify(s, 0, testLastColumn)

	assert.Equal(t, []int{4}, groupRows(c))
	assert.Equal(t, RowIgnorable, c.Kind(1))
	assert.Equal(t, RowIgnorable, c.Kind(3))
}

func TestClassifyChainWithoutItemsProducesNoGroup(t *testing.T) {
	s := New("Sheet1", [][]Value{
		{Str("ITEM DESCRIPTION")},
		heading("A"),
		heading("B"),
		nil,
		heading("C"),
	})

	c := Classify(s, 0, testLastColumn)
	assert.Empty(t, c.Groups)
}

func TestClassifyDropsTrailingHeading(t *testing.T) {
	s := New("Sheet1", [][]Value{
		{Str("ITEM DESCRIPTION")},
		heading("Banners"),
		item("Vinyl Banner", "3x6"),
		heading("Notes"),
		nil,
		nil,
		nil,
	})

	c := Classify(s, 0, testLastColumn)
	assert.Equal(t, []int{1}, groupRows(c))
	assert.Equal(t, RowIgnorable, c.Kind(3))
}

func TestClassifyIgnoresColumnsBeyondDataRange(t *testing.T) {
	wide := make([]Value, 25)
	wide[0] = Str("Banners")
	wide[23] = Str("internal note") // column X, outside A..V

	s := New("Sheet1", [][]Value{
		{Str("ITEM DESCRIPTION")},
		wide,
		item("Vinyl Banner", "3x6"),
	})

	c := Classify(s, 0, testLastColumn)
	assert.Equal(t, []int{1}, groupRows(c))
}

func TestClassifyRichTextIsNeverEmpty(t *testing.T) {
	s := New("Sheet1", [][]Value{
		{Str("ITEM DESCRIPTION")},
		{Str("Banners"), Rich("")}, // not group-like
		item("Vinyl Banner", "3x6"),
	})

	c := Classify(s, 0, testLastColumn)
	assert.Empty(t, c.Groups)
	assert.Equal(t, RowItem, c.Kind(1))
}

func TestClassifyLookaheadSeesContentOutsideDataRange(t *testing.T) {
	beyond := make([]Value, 24)
	beyond[23] = Str("x")

	s := New("Sheet1", [][]Value{
		{Str("ITEM DESCRIPTION")},
		heading("Banners"),
		beyond, // any content counts as the next meaningful row
	})

	c := Classify(s, 0, testLastColumn)
	assert.Equal(t, []int{1}, groupRows(c))
}

func TestClassifyIsIdempotent(t *testing.T) {
	s := New("Sheet1", [][]Value{
		{Str("ITEM DESCRIPTION")},
		heading("Outdoor"),
		heading("Banners"),
		item("Vinyl Banner", "3x6"),
		nil,
		heading("Posters"),
		item("Poster", "24x36"),
		heading("Trailing"),
	})

	first := Classify(s, 0, testLastColumn)
	second := Classify(s, 0, testLastColumn)

	assert.Equal(t, groupRows(first), groupRows(second))
	assert.Equal(t, first.Groups, second.Groups)
	assert.Equal(t, []int{2, 5}, groupRows(first))
}

func TestClassifyHeaderOnly(t *testing.T) {
	s := New("Sheet1", [][]Value{{Str("ITEM DESCRIPTION")}})
	c := Classify(s, 0, testLastColumn)
	assert.Empty(t, c.Groups)
	assert.Equal(t, 1, c.FirstRow)
}
