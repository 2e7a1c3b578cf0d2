package xmlwriter

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/bidsheet-importer/internal/types"
)

func strPtr(s string) *string { return &s }

func sampleDetail() *types.ProjectDetail {
	return &types.ProjectDetail{
		VendorName: "Duggal",
		Project: types.Project{
			ID:           7,
			Name:         "Acme <Spring> Promo",
			ShipDate:     strPtr("03/01/2024"),
			GraphicNotes: strPtr("Use matte finish"),
			CreatedAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Groups: []types.ItemGroup{
			{ID: 10, Name: "Banners"},
			{ID: 11, Name: "Posters & Prints"},
			{ID: 12, Name: "Empty"},
		},
		Items: []types.Item{
			{GroupID: 10, Description: strPtr("Vinyl Banner"), Size: strPtr("3x6"), DistroQuantity: 150,
				PricePoint: decimal.RequireFromString("12.5"), TotalPrice: decimal.RequireFromString("1875")},
			{GroupID: 10, Description: strPtr("Mesh Banner"), Size: strPtr("4x8"), DistroQuantity: 2,
				PricePoint: decimal.RequireFromString("40"), TotalPrice: decimal.RequireFromString("80")},
			{GroupID: 11, Description: strPtr("Poster"), Size: strPtr("24x36"), DistroQuantity: 10,
				PricePoint: decimal.RequireFromString("3.333"), TotalPrice: decimal.RequireFromString("33.33")},
		},
	}
}

type parsedDoc struct {
	XMLName xml.Name `xml:"bidsheet"`
	Project struct {
		ID       string  `xml:"id,attr"`
		Vendor   string  `xml:"vendor"`
		Name     string  `xml:"name"`
		ShipDate string  `xml:"shipDate"`
		LiveDate *string `xml:"liveDate"`
		Groups   []struct {
			N     string `xml:"n,attr"`
			Name  string `xml:"name,attr"`
			Items []struct {
				N           string `xml:"n,attr"`
				Description string `xml:"description"`
				PricePoint  string `xml:"pricePoint"`
				TotalPrice  string `xml:"totalPrice"`
			} `xml:"item"`
		} `xml:"group"`
	} `xml:"project"`
}

func TestGenerate(t *testing.T) {
	out := Generate(sampleDetail())
	require.True(t, strings.HasPrefix(string(out), `<?xml version="1.0" encoding="UTF-8"?>`))

	var doc parsedDoc
	require.NoError(t, xml.Unmarshal(out, &doc))

	p := doc.Project
	assert.Equal(t, "7", p.ID)
	assert.Equal(t, "Duggal", p.Vendor)
	assert.Equal(t, "Acme <Spring> Promo", p.Name)
	assert.Equal(t, "03/01/2024", p.ShipDate)
	assert.Nil(t, p.LiveDate, "empty optional fields are omitted")

	require.Len(t, p.Groups, 3)
	assert.Equal(t, "Posters & Prints", p.Groups[1].Name)
	require.Len(t, p.Groups[0].Items, 2)
	require.Len(t, p.Groups[1].Items, 1)
	assert.Empty(t, p.Groups[2].Items)

	// Global numbering continues across groups.
	assert.Equal(t, "3", p.Groups[1].Items[0].N)
	assert.Equal(t, "1875.00", p.Groups[0].Items[0].TotalPrice)
	assert.Equal(t, "3.33", p.Groups[1].Items[0].PricePoint)

	assert.Contains(t, string(out), `<group n="3" name="Empty"/>`)
}

func TestGenerateWithOptions(t *testing.T) {
	opts := DefaultGenerateOptions()
	opts.IncludeXMLDeclaration = false
	opts.ItemNumberingGlobal = false
	opts.RootElement = "export"
	opts.Indent = "\t"

	out := string(GenerateWithOptions(sampleDetail(), opts))
	assert.True(t, strings.HasPrefix(out, "<export>\n\t<project id=\"7\">"))
	assert.Contains(t, out, "\t\t<group n=\"2\" name=\"Posters &amp; Prints\">\n\t\t\t<item n=\"1\">")
}
