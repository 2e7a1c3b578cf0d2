package xlsxparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/bidsheet-importer/internal/types"
)

// =============================================================================
// SHEET LAYOUT
// =============================================================================

// Layout locates the fixed header block and the item table of a vendor sheet.
// Cell references are A1-style; rows and columns are 1-based as displayed in a
// spreadsheet application.
//
//	A1        : project title
//	A4..A10   : "Label: value" detail cells
//	B3..B10   : free-text graphic notes
//	row 11    : item table header
//	A..V      : item table data range
type Layout struct {
	TitleCell string

	ShipDateCell        string
	ArrivalDateCell     string
	ShipMethodCell      string
	LiveDateCell        string
	DownDateCell        string
	DiscardDateCell     string
	OverageShipDateCell string

	NoteCells []string

	// HeaderRow is the 1-based row holding the item table header.
	HeaderRow int

	// LastColumn is the 1-based last column of the item table.
	LastColumn int
}

// DefaultLayout returns the layout of the observed vendor sheet convention.
func DefaultLayout() Layout {
	return Layout{
		TitleCell:           "A1",
		ShipDateCell:        "A4",
		ArrivalDateCell:     "A5",
		ShipMethodCell:      "A6",
		LiveDateCell:        "A7",
		DownDateCell:        "A8",
		DiscardDateCell:     "A9",
		OverageShipDateCell: "A10",
		NoteCells:           []string{"B3", "B4", "B5", "B6", "B7", "B8", "B9", "B10"},
		HeaderRow:           11,
		LastColumn:          22,
	}
}

// HeaderIndex returns the 0-based index of the header row.
func (l Layout) HeaderIndex() int { return l.HeaderRow - 1 }

// FirstDataIndex returns the 0-based index of the first row below the header.
func (l Layout) FirstDataIndex() int { return l.HeaderRow }

// =============================================================================
// PROJECT EXTRACTION
// =============================================================================

// ErrMissingTitle is returned when the title cell is empty.
var ErrMissingTitle = errors.New("project title cell is empty")

// ExtractProject reads the fixed header block into a project record. Only the
// title is required; absent detail and note cells become nil.
func ExtractProject(s *Sheet, layout Layout) (*types.Project, error) {
	title, err := s.CellByName(layout.TitleCell)
	if err != nil {
		return nil, err
	}
	name := Text(title)
	if name == nil {
		return nil, fmt.Errorf("%w (%s)", ErrMissingTitle, layout.TitleCell)
	}

	project := &types.Project{Name: *name}

	details := []struct {
		ref  string
		dest **string
	}{
		{layout.ShipDateCell, &project.ShipDate},
		{layout.ArrivalDateCell, &project.ArrivalDate},
		{layout.ShipMethodCell, &project.ShipMethod},
		{layout.LiveDateCell, &project.LiveDate},
		{layout.DownDateCell, &project.DownDate},
		{layout.DiscardDateCell, &project.DiscardDate},
		{layout.OverageShipDateCell, &project.OverageShipDate},
	}
	for _, d := range details {
		if d.ref == "" {
			continue
		}
		v, err := s.CellByName(d.ref)
		if err != nil {
			return nil, err
		}
		*d.dest = ValueAfterColon(v)
	}

	var notes []string
	for _, ref := range layout.NoteCells {
		v, err := s.CellByName(ref)
		if err != nil {
			return nil, err
		}
		if text := Text(v); text != nil {
			notes = append(notes, *text)
		}
	}
	// No notes stays NULL rather than "", like every other absent header field.
	if len(notes) > 0 {
		joined := strings.Join(notes, "\n")
		project.GraphicNotes = &joined
	}

	return project, nil
}

// ValueAfterColon returns the text after the first colon of a "Label: value"
// cell. Later colons are kept, so "Ship: 10:30 AM" yields "10:30 AM". Without
// a colon the whole trimmed text is returned. Empty results are nil, so a
// bare "Ship Date:" is stored as NULL, not as an empty string; search and the
// XML export then treat it the same as a missing cell.
func ValueAfterColon(v Value) *string {
	text := Text(v)
	if text == nil {
		return nil
	}
	_, after, found := strings.Cut(*text, ":")
	if !found {
		return text
	}
	after = strings.TrimSpace(after)
	if after == "" {
		return nil
	}
	return &after
}
