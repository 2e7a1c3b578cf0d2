// =============================================================================
// Bid Sheet Importer - XML Export Module
// =============================================================================
//
// This module renders a stored project as an XML document, so an imported
// bid sheet can be handed to systems that do not read the database.
//
// XML STRUCTURE:
//
//   <bidsheet>                               <!-- Root element -->
//     <project id="7">                       <!-- Project with its database id -->
//       <vendor>Duggal</vendor>              <!-- Header block fields -->
//       <name>Acme Spring Promo</name>
//       <shipDate>03/01/2024</shipDate>
//       <group n="1" name="Banners">         <!-- Group element with index -->
//         <item n="1">                       <!-- Item element with global index -->
//           <description>Vinyl Banner</description>
//           <size>3x6</size>
//           <totalPrice>1875.00</totalPrice>
//         </item>
//       </group>
//       <group n="2" name="Posters">
//         <item n="2">                       <!-- Note: global numbering continues -->
//           ...
//         </item>
//       </group>
//     </project>
//   </bidsheet>
//
// Empty optional fields are omitted. Money is written with two decimals.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/bidsheet-importer/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// RootElement is the name of the document element.
	// Default: "bidsheet"
	RootElement string

	// ItemNumberingGlobal determines if item numbering is global.
	// If true: items are numbered 1, 2, 3, 4... across all groups.
	// If false: items restart at 1 in each group.
	// Default: true
	ItemNumberingGlobal bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		RootElement:           "bidsheet",
		ItemNumberingGlobal:   true,
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders detail with the default options.
//
// PARAMETERS:
//   - detail: A project with its groups and items, as read from the store.
//
// RETURNS:
//   - The XML document as a byte slice.
func Generate(detail *types.ProjectDetail) []byte {
	return GenerateWithOptions(detail, DefaultGenerateOptions())
}

// GenerateWithOptions renders detail with custom options.
func GenerateWithOptions(detail *types.ProjectDetail, options GenerateOptions) []byte {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	}

	root := XMLElement{
		XMLName:  xml.Name{Local: options.RootElement},
		Children: []XMLElement{buildProjectElement(detail, options)},
	}
	writeElement(&buffer, root, options.Indent, 0)
	return buffer.Bytes()
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// XMLElement represents a generic XML element.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []XMLElement
}

// buildProjectElement constructs the project subtree.
func buildProjectElement(detail *types.ProjectDetail, options GenerateOptions) XMLElement {
	p := detail.Project
	project := XMLElement{
		XMLName:    xml.Name{Local: "project"},
		Attributes: []xml.Attr{attr("id", strconv.FormatInt(p.ID, 10))},
	}

	project.Children = append(project.Children,
		createSimpleElement("vendor", detail.VendorName),
		createSimpleElement("name", p.Name),
	)
	project.Children = appendOptional(project.Children,
		"shipDate", p.ShipDate,
		"arrivalDate", p.ArrivalDate,
		"shipMethod", p.ShipMethod,
		"liveDate", p.LiveDate,
		"downDate", p.DownDate,
		"discardDate", p.DiscardDate,
		"overageShipDate", p.OverageShipDate,
		"graphicNotes", p.GraphicNotes,
	)
	if !p.CreatedAt.IsZero() {
		project.Children = append(project.Children, createSimpleElement("importedAt", p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")))
	}

	byGroup := make(map[int64][]types.Item, len(detail.Groups))
	for _, item := range detail.Items {
		byGroup[item.GroupID] = append(byGroup[item.GroupID], item)
	}

	itemIndex := 0
	for gi, g := range detail.Groups {
		group := XMLElement{
			XMLName:    xml.Name{Local: "group"},
			Attributes: []xml.Attr{attr("n", strconv.Itoa(gi+1)), attr("name", g.Name)},
		}
		if !options.ItemNumberingGlobal {
			itemIndex = 0
		}
		for _, item := range byGroup[g.ID] {
			itemIndex++
			group.Children = append(group.Children, buildItemElement(item, itemIndex))
		}
		project.Children = append(project.Children, group)
	}
	return project
}

// buildItemElement constructs one item element.
func buildItemElement(item types.Item, n int) XMLElement {
	el := XMLElement{
		XMLName:    xml.Name{Local: "item"},
		Attributes: []xml.Attr{attr("n", strconv.Itoa(n))},
	}
	el.Children = appendOptional(el.Children,
		"description", item.Description,
		"size", item.Size,
		"material", item.Material,
		"language", item.Language,
		"codeNumber", item.CodeNumber,
	)
	el.Children = append(el.Children,
		createSimpleElement("distroQuantity", formatQuantity(item.DistroQuantity)),
		createSimpleElement("overageQuantity", formatQuantity(item.OverageQuantity)),
		createSimpleElement("totalPrintQuantity", formatQuantity(item.TotalPrintQuantity)),
		createSimpleElement("pricePoint", formatMoney(item.PricePoint)),
		createSimpleElement("totalPrice", formatMoney(item.TotalPrice)),
	)
	el.Children = appendOptional(el.Children, "category", item.Category)
	el.Children = append(el.Children,
		createSimpleElement("maxOrderQuantity", formatQuantity(item.MaxOrderQuantity)),
		createSimpleElement("reorderTrigger", formatQuantity(item.ReorderTrigger)),
		createSimpleElement("reprintQuantity", formatQuantity(item.ReprintQuantity)),
	)
	el.Children = appendOptional(el.Children,
		"color", item.Color,
		"pantone", item.Pantone,
		"blockout", item.Blockout,
		"doubleSided", item.DoubleSided,
		"sameOrDifferent", item.SameOrDifferent,
		"finishing", item.Finishing,
		"printMethod", item.PrintMethod,
		"comments", item.Comments,
	)
	return el
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// createSimpleElement creates a simple XML element with a text value.
func createSimpleElement(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: name},
		Value:   value,
	}
}

// appendOptional appends an element for each non-nil value. pairs alternate
// tag name and *string value.
func appendOptional(children []XMLElement, pairs ...any) []XMLElement {
	for i := 0; i+1 < len(pairs); i += 2 {
		name, _ := pairs[i].(string)
		value, _ := pairs[i+1].(*string)
		if value != nil {
			children = append(children, createSimpleElement(name, *value))
		}
	}
	return children
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func formatQuantity(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)
	for _, a := range element.Attributes {
		fmt.Fprintf(buffer, ` %s="%s"`, a.Name.Local, escapeXML(a.Value))
	}

	if len(element.Children) == 0 && element.Value == "" {
		// Self-closing tag.
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")
	if element.Value != "" {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")
		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&buffer, []byte(s))
	return buffer.String()
}
