package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/bidsheet-importer/internal/types"
	"github.com/ginjaninja78/bidsheet-importer/internal/xlsxparser"
)

// =============================================================================
// FIELD ALIAS TABLE
// =============================================================================
//
// Vendor sheets rename and reorder item columns. Each item field lists the
// header labels it may appear under, in order of preference: the first label
// found in the header row wins. Fields whose labels are all absent are left
// null (text) or zero (numbers).
//
// CUSTOMIZATION:
//   Aliases can be replaced per field from config.yaml (header_aliases).
//
// =============================================================================

// FieldKind selects how a cell is normalized.
type FieldKind int

const (
	// FieldText is trimmed text, null when empty.
	FieldText FieldKind = iota
	// FieldNumber is a quantity, with merged-cell walk-up.
	FieldNumber
	// FieldMoney is a price, with merged-cell walk-up, held as a decimal.
	FieldMoney
)

// FieldSpec maps one item column to its accepted header labels.
type FieldSpec struct {
	Name    string
	Kind    FieldKind
	Aliases []string
}

// Canonical field names referenced by the pipeline itself.
const (
	FieldDescription = "item_description"
	FieldSize        = "size"
	FieldDistro      = "distro_quantity"
	FieldPricePoint  = "price_point"
	FieldTotalPrice  = "total_price"
)

// DefaultFields returns the alias table in item column order.
func DefaultFields() []FieldSpec {
	return []FieldSpec{
		{FieldDescription, FieldText, []string{"ITEM DESCRIPTION", "DESCRIPTION", "ITEM"}},
		{FieldSize, FieldText, []string{"SIZE", "SIZE (W X H)", "SIZE(W X H)"}},
		{"material", FieldText, []string{"MATERIAL", "SUBSTRATE"}},
		{"language", FieldText, []string{"LANGUAGE", "LANG"}},
		{"code_number", FieldText, []string{"CODE NUMBER", "CODE #", "CODE", "ITEM CODE"}},
		{FieldDistro, FieldNumber, []string{"DISTRO QUANTITY", "DISTRO QTY", "DISTRO"}},
		{"overage_quantity", FieldNumber, []string{"OVERAGE QUANTITY", "OVERAGE QTY", "OVERAGE"}},
		{"total_print_quantity", FieldNumber, []string{"TOTAL PRINT QUANTITY", "TOTAL PRINT QTY", "PRINT QUANTITY"}},
		{FieldPricePoint, FieldMoney, []string{"PRICE POINT", "UNIT PRICE", "PRICE"}},
		{FieldTotalPrice, FieldMoney, []string{"TOTAL PRICE", "TOTAL"}},
		{"category", FieldText, []string{"CATEGORY"}},
		{"max_order_quantity", FieldNumber, []string{"MAX ORDER QUANTITY", "MAX ORDER QTY"}},
		{"reorder_trigger", FieldNumber, []string{"REORDER TRIGGER"}},
		{"reprint_quantity", FieldNumber, []string{"REPRINT QUANTITY", "REPRINT QTY"}},
		{"color", FieldText, []string{"COLOR", "COLOUR"}},
		{"pantone", FieldText, []string{"PANTONE"}},
		{"blockout", FieldText, []string{"BLOCKOUT"}},
		{"double_sided", FieldText, []string{"DOUBLE SIDED", "DOUBLE-SIDED"}},
		{"same_or_different", FieldText, []string{"SAME OR DIFFERENT", "SAME/DIFFERENT"}},
		{"finishing", FieldText, []string{"FINISHING"}},
		{"print_method", FieldText, []string{"PRINT METHOD"}},
		{"comments", FieldText, []string{"COMMENTS", "NOTES"}},
	}
}

// OverrideAliases returns a copy of fields with the aliases of the named fields
// replaced. Unknown field names and empty alias lists are errors.
func OverrideAliases(fields []FieldSpec, overrides map[string][]string) ([]FieldSpec, error) {
	out := make([]FieldSpec, len(fields))
	copy(out, fields)

	index := make(map[string]int, len(out))
	for i, f := range out {
		index[f.Name] = i
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("unknown item field %q in header aliases", name)
		}
		var aliases []string
		for _, a := range overrides[name] {
			if a = strings.TrimSpace(a); a != "" {
				aliases = append(aliases, a)
			}
		}
		if len(aliases) == 0 {
			return nil, fmt.Errorf("header aliases for %q are empty", name)
		}
		out[i].Aliases = aliases
	}
	return out, nil
}

// =============================================================================
// COLUMN RESOLUTION
// =============================================================================

// columns is the alias table resolved against one sheet's header row.
type columns struct {
	fields []FieldSpec
	index  map[string]int
}

func resolveColumns(h *xlsxparser.HeaderMap, fields []FieldSpec) *columns {
	c := &columns{fields: fields, index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if col, ok := h.Resolve(f.Aliases...); ok {
			c.index[f.Name] = col
		}
	}
	return c
}

func (c *columns) has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// buildItem normalizes one sheet row. The total price comes from the total
// column when the sheet has one, otherwise it is distro quantity times price
// point.
func (c *columns) buildItem(s *xlsxparser.Sheet, row, top int) types.Item {
	var item types.Item
	for _, f := range c.fields {
		col, ok := c.index[f.Name]
		if !ok {
			continue
		}
		target := fieldTarget(&item, f.Name)
		if target == nil {
			continue
		}

		switch f.Kind {
		case FieldText:
			if p, ok := target.(**string); ok {
				*p = xlsxparser.Text(s.Cell(row, col))
			}
		case FieldNumber:
			if p, ok := target.(*float64); ok {
				*p = s.Number(row, col, top)
			}
		case FieldMoney:
			if p, ok := target.(*decimal.Decimal); ok {
				*p = decimal.NewFromFloat(s.Number(row, col, top))
			}
		}
	}

	if !c.has(FieldTotalPrice) {
		item.TotalPrice = decimal.NewFromFloat(item.DistroQuantity).Mul(item.PricePoint)
	}
	return item
}

// fieldTarget returns a pointer to the item field backing name.
func fieldTarget(item *types.Item, name string) any {
	switch name {
	case FieldDescription:
		return &item.Description
	case FieldSize:
		return &item.Size
	case "material":
		return &item.Material
	case "language":
		return &item.Language
	case "code_number":
		return &item.CodeNumber
	case FieldDistro:
		return &item.DistroQuantity
	case "overage_quantity":
		return &item.OverageQuantity
	case "total_print_quantity":
		return &item.TotalPrintQuantity
	case FieldPricePoint:
		return &item.PricePoint
	case FieldTotalPrice:
		return &item.TotalPrice
	case "category":
		return &item.Category
	case "max_order_quantity":
		return &item.MaxOrderQuantity
	case "reorder_trigger":
		return &item.ReorderTrigger
	case "reprint_quantity":
		return &item.ReprintQuantity
	case "color":
		return &item.Color
	case "pantone":
		return &item.Pantone
	case "blockout":
		return &item.Blockout
	case "double_sided":
		return &item.DoubleSided
	case "same_or_different":
		return &item.SameOrDifferent
	case "finishing":
		return &item.Finishing
	case "print_method":
		return &item.PrintMethod
	case "comments":
		return &item.Comments
	default:
		return nil
	}
}
