package xlsxparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/bidsheet-importer/internal/types"
)

// headerBlock returns the first ten rows of a sheet in the default layout.
func headerBlock(title string) [][]Value {
	rows := make([][]Value, 10)
	for i := range rows {
		rows[i] = make([]Value, 2)
	}
	if title != "" {
		rows[0][0] = Str(title)
	}
	rows[3][0] = Str("Ship Date: 03/01/2024")
	rows[4][0] = Str("Arrival Date:03/05/2024")
	rows[5][0] = Str("Ship Method: Ground: 2 day")
	rows[6][0] = Str("Live Date 03/10/2024")
	rows[7][0] = Str("Down Date:")
	rows[9][0] = Str("Overage Ship Date: TBD")

	rows[2][1] = Str(" Use matte finish ")
	rows[4][1] = Str("Proofs due Friday")
	rows[5][1] = Str("   ")
	rows[9][1] = Rich("Call before shipping")
	return rows
}

func TestExtractProject(t *testing.T) {
	s := New("Sheet1", headerBlock("Acme Spring Promo"))

	p, err := ExtractProject(s, DefaultLayout())
	require.NoError(t, err)

	assert.Equal(t, "Acme Spring Promo", p.Name)
	assert.Equal(t, "03/01/2024", types.StringValue(p.ShipDate))
	assert.Equal(t, "03/05/2024", types.StringValue(p.ArrivalDate))
	// Everything after the first colon is kept.
	assert.Equal(t, "Ground: 2 day", types.StringValue(p.ShipMethod))
	// No colon: the whole trimmed text.
	assert.Equal(t, "Live Date 03/10/2024", types.StringValue(p.LiveDate))
	assert.Nil(t, p.DownDate)
	assert.Nil(t, p.DiscardDate)
	assert.Equal(t, "TBD", types.StringValue(p.OverageShipDate))

	require.NotNil(t, p.GraphicNotes)
	assert.Equal(t, "Use matte finish\nProofs due Friday\nCall before shipping", *p.GraphicNotes)
}

func TestExtractProjectMissingTitle(t *testing.T) {
	s := New("Sheet1", headerBlock(""))

	_, err := ExtractProject(s, DefaultLayout())
	assert.ErrorIs(t, err, ErrMissingTitle)
}

func TestExtractProjectNoNotes(t *testing.T) {
	s := New("Sheet1", [][]Value{{Str("Title")}})

	p, err := ExtractProject(s, DefaultLayout())
	require.NoError(t, err)
	assert.Nil(t, p.GraphicNotes)
	assert.Nil(t, p.ShipDate)
}

func TestExtractProjectBadLayout(t *testing.T) {
	layout := DefaultLayout()
	layout.TitleCell = "not-a-cell"

	_, err := ExtractProject(New("Sheet1", nil), layout)
	assert.Error(t, err)
}

func TestValueAfterColon(t *testing.T) {
	assert.Nil(t, ValueAfterColon(Value{}))
	assert.Equal(t, "a:b", types.StringValue(ValueAfterColon(Str("x: a:b "))))
	assert.Equal(t, "plain", types.StringValue(ValueAfterColon(Str(" plain "))))
	assert.Nil(t, ValueAfterColon(Str("Ship Date:")))
	assert.Nil(t, ValueAfterColon(Str("Ship Date:   ")))
}
