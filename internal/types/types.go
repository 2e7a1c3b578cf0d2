// =============================================================================
// Bid Sheet Importer - Shared Types
// =============================================================================
//
// This package contains the relational records produced by an ingestion run.
// They are shared by several modules to avoid import cycles:
//   - ingest      (builds them from a sheet)
//   - store       (persists and queries them)
//   - xlsxparser  (extracts the project header block)
//
// OWNERSHIP:
//   Vendor 1──* Project 1──* ItemGroup 1──* Item
//   Items also carry their project and vendor ids for query convenience.
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VENDOR
// =============================================================================

// Vendor is a print vendor from the configured roster.
// Identity is the case-insensitive name; vendors are created on first sighting
// and never mutated by the ingestion path.
type Vendor struct {
	ID   int64  `db:"id"`
	Name string `db:"vendor_name"`
}

// =============================================================================
// PROJECT
// =============================================================================

// Project is the header block of one vendor pricing sheet.
// No two projects share (VendorID, Name).
type Project struct {
	ID       int64  `db:"id"`
	VendorID int64  `db:"vendor_id"`
	Name     string `db:"project_name"`

	// Detail cells. Each holds the text after the first colon of its cell.
	ShipDate        *string `db:"ship_date"`
	ArrivalDate     *string `db:"arrival_date"`
	ShipMethod      *string `db:"ship_method"`
	LiveDate        *string `db:"live_date"`
	DownDate        *string `db:"down_date"`
	DiscardDate     *string `db:"discard_date"`
	OverageShipDate *string `db:"overage_ship_date"`

	// GraphicNotes are the non-empty note cells joined with newlines.
	GraphicNotes *string `db:"graphic_notes"`

	CreatedAt time.Time `db:"created_at"`
}

// =============================================================================
// ITEM GROUP
// =============================================================================

// ItemGroup is a heading row that introduces a run of item rows.
type ItemGroup struct {
	ID        int64  `db:"id"`
	ProjectID int64  `db:"project_id"`
	Name      string `db:"group_name"`
}

// =============================================================================
// ITEM
// =============================================================================

// Item is one priced line of a vendor sheet.
type Item struct {
	ID        int64 `db:"id"`
	VendorID  int64 `db:"vendor_id"`
	ProjectID int64 `db:"project_id"`
	GroupID   int64 `db:"group_id"`

	Description *string `db:"item_description"`
	Size        *string `db:"size"`
	Material    *string `db:"material"`
	Language    *string `db:"language"`
	CodeNumber  *string `db:"code_number"`

	DistroQuantity     float64 `db:"distro_quantity"`
	OverageQuantity    float64 `db:"overage_quantity"`
	TotalPrintQuantity float64 `db:"total_print_quantity"`

	PricePoint decimal.Decimal `db:"price_point"`
	TotalPrice decimal.Decimal `db:"total_price"`

	Category         *string `db:"category"`
	MaxOrderQuantity float64 `db:"max_order_quantity"`
	ReorderTrigger   float64 `db:"reorder_trigger"`
	ReprintQuantity  float64 `db:"reprint_quantity"`

	Color           *string `db:"color"`
	Pantone         *string `db:"pantone"`
	Blockout        *string `db:"blockout"`
	DoubleSided     *string `db:"double_sided"`
	SameOrDifferent *string `db:"same_or_different"`
	Finishing       *string `db:"finishing"`
	PrintMethod     *string `db:"print_method"`
	Comments        *string `db:"comments"`
}

// =============================================================================
// QUERY VIEWS
// =============================================================================

// ProjectSummary is one row of the upload history.
type ProjectSummary struct {
	ID         int64     `db:"id"`
	Name       string    `db:"project_name"`
	VendorName string    `db:"vendor_name"`
	LiveDate   *string   `db:"live_date"`
	CreatedAt  time.Time `db:"created_at"`
	GroupCount int       `db:"group_count"`
	ItemCount  int       `db:"item_count"`
}

// ItemHit is one search result, joined with its vendor, project and group.
type ItemHit struct {
	Item
	VendorName  string  `db:"vendor_name"`
	ProjectName string  `db:"project_name"`
	GroupName   string  `db:"group_name"`
	ProjectDate *string `db:"project_date"`
}

// ProjectDetail is a project with all of its groups and items.
type ProjectDetail struct {
	Project    Project
	VendorName string
	Groups     []ItemGroup
	Items      []Item
}

// StringValue dereferences an optional text field, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
