package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/bidsheet-importer/internal/ingest"
	"github.com/ginjaninja78/bidsheet-importer/internal/xlsxparser"
)

func row(cells ...string) []xlsxparser.Value {
	out := make([]xlsxparser.Value, len(cells))
	for i, c := range cells {
		if c != "" {
			out[i] = xlsxparser.Str(c)
		}
	}
	return out
}

func sheetWith(title string, header []string, body ...[]xlsxparser.Value) *xlsxparser.Sheet {
	rows := make([][]xlsxparser.Value, 11)
	rows[0] = row(title)
	rows[10] = row(header...)
	return xlsxparser.New("Sheet1", append(rows, body...))
}

var header = []string{"ITEM DESCRIPTION", "SIZE", "MATERIAL", "DISTRO QUANTITY", "PRICE POINT"}

func rules(res *ValidationResult) []string {
	var out []string
	for _, e := range res.Errors {
		out = append(out, e.Rule)
	}
	return out
}

func TestValidateReportsDroppedAndCoercedData(t *testing.T) {
	sheet := sheetWith("Acme Spring Promo", header,
		row("Stray", "1x1", "", "5", "$1"),
		row("Banners"),
		row("Vinyl Banner", "3x6", "Vinyl", "150", "$12.50"),
		row("", "3x6", "Vinyl", "10", "$2"),
		row("Poster", "", "Paper", "10", "$3"),
		row("Poster", "24x36", "Paper", "TBD", "$3"),
		row("Flyer", "8.5x11", "Paper", "100", "N/A"),
	)

	res := NewValidator(xlsxparser.DefaultLayout(), nil).Validate(sheet)

	assert.True(t, res.IsValid)
	assert.Equal(t, "Acme Spring Promo", res.ProjectName)
	assert.Equal(t, 1, res.Groups)
	assert.Equal(t, 3, res.Items)
	assert.Equal(t, 0, res.ErrorCount)
	assert.Equal(t, 6, res.WarningCount)
	assert.Equal(t, []string{RuleOrphan, RuleRequired, RuleRequired, RuleNumeric, RuleNumeric, RulePrice}, rules(res))

	orphan := res.Errors[0]
	assert.Equal(t, 12, orphan.RowNumber)
	assert.Equal(t, "Stray", orphan.Value)

	tbd := res.Errors[3]
	assert.Equal(t, ingest.FieldDistro, tbd.Field)
	assert.Equal(t, "TBD", tbd.Value)
	assert.Equal(t, "[WARNING] Row 17, Field 'distro_quantity': not a number, stored as 0 (value: 'TBD')", tbd.Error())
}

func TestValidateStrict(t *testing.T) {
	sheet := sheetWith("Acme", header,
		row("Banners"),
		row("Poster", "24x36", "Paper", "TBD", "$3"),
	)

	v := NewValidatorWithOptions(xlsxparser.DefaultLayout(), nil, ValidationOptions{TreatWarningsAsErrors: true})
	res := v.Validate(sheet)
	assert.False(t, res.IsValid)
	assert.Equal(t, 1, res.WarningCount)
}

func TestValidateDocumentErrors(t *testing.T) {
	layout := xlsxparser.DefaultLayout()

	res := NewValidator(layout, nil).Validate(sheetWith("Acme", []string{"ITEM DESCRIPTION", "MATERIAL"}))
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ingest.FieldSize, res.Errors[0].Field)
	assert.Equal(t, 11, res.Errors[0].RowNumber)

	res = NewValidator(layout, nil).Validate(sheetWith("", nil))
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{RuleTitle, RuleHeader}, rules(res))
}

func TestValidateNoGroups(t *testing.T) {
	res := NewValidator(xlsxparser.DefaultLayout(), nil).Validate(sheetWith("Acme", header))
	assert.True(t, res.IsValid)
	assert.Equal(t, []string{RuleGroups}, rules(res))
}

func TestValidateCustomAliases(t *testing.T) {
	fields, err := ingest.OverrideAliases(ingest.DefaultFields(), map[string][]string{"size": {"DIMENSIONS"}})
	require.NoError(t, err)

	sheet := sheetWith("Acme", []string{"ITEM DESCRIPTION", "DIMENSIONS"},
		row("Banners"),
		row("Vinyl Banner", "3x6"),
	)
	res := NewValidator(xlsxparser.DefaultLayout(), fields).Validate(sheet)
	assert.True(t, res.IsValid)
	assert.Equal(t, 1, res.Items)
	assert.Empty(t, res.Errors)
}

func TestFormatErrors(t *testing.T) {
	assert.Equal(t, "No validation errors.", FormatErrors(nil))

	out := FormatErrors([]*ValidationError{
		{Severity: SeverityError, Rule: RuleTitle, Message: "project title cell A1 is empty"},
	})
	assert.Contains(t, out, "1 finding(s)")
	assert.Contains(t, out, "1. [ERROR] project title cell A1 is empty")
}
