// =============================================================================
// Bid Sheet Importer - Workbook Validation
// =============================================================================
//
// This module checks a vendor workbook without touching the database. It
// reports everything an ingestion run would reject, and everything it would
// silently drop or coerce, with the sheet row the problem is on.
//
// VALIDATION LEVELS:
//   1. Document-level: project title, item header row, required columns
//   2. Row-level: item rows that would be skipped (no group above them,
//      missing description or size)
//   3. Field-level: numeric and money cells whose text holds no number and
//      would be stored as 0
//
// SEVERITY:
//   - "error"   : ingestion of this workbook fails
//   - "warning" : ingestion succeeds, but data is dropped or coerced
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/bidsheet-importer/internal/ingest"
	"github.com/ginjaninja78/bidsheet-importer/internal/xlsxparser"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Validation rule names.
const (
	RuleTitle    = "title"
	RuleHeader   = "header"
	RuleGroups   = "groups"
	RuleOrphan   = "orphan_row"
	RuleRequired = "required"
	RuleNumeric  = "numeric"
	RulePrice    = "price"
)

// ValidationError represents a single finding.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the canonical item field, if the finding concerns one.
	Field string

	// Value is the offending cell text.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string

	// RowNumber is the 1-based sheet row, or 0 for document-level findings.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", strings.ToUpper(e.Severity))
	if e.RowNumber > 0 {
		fmt.Fprintf(&b, " Row %d,", e.RowNumber)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " Field '%s':", e.Field)
	}
	fmt.Fprintf(&b, " %s", e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}
	return b.String()
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings, warnings included, in sheet order.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// ProjectName is the extracted title, when there is one.
	ProjectName string

	// Groups and Items are what an ingestion run would write.
	Groups int
	Items  int
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// TreatWarningsAsErrors makes any warning invalidate the workbook.
	// Default: false
	TreatWarningsAsErrors bool
}

// Validator checks sheets against one layout and alias table.
type Validator struct {
	layout  xlsxparser.Layout
	fields  []ingest.FieldSpec
	options ValidationOptions
}

// NewValidator creates a new Validator instance.
func NewValidator(layout xlsxparser.Layout, fields []ingest.FieldSpec) *Validator {
	return NewValidatorWithOptions(layout, fields, ValidationOptions{})
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(layout xlsxparser.Layout, fields []ingest.FieldSpec, options ValidationOptions) *Validator {
	if len(fields) == 0 {
		fields = ingest.DefaultFields()
	}
	return &Validator{layout: layout, fields: fields, options: options}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks sheet and returns every finding.
//
// PARAMETERS:
//   - sheet: The loaded first worksheet.
//
// RETURNS:
//   - The validation result. Document-level errors stop validation early,
//     since rows cannot be interpreted without a header.
func (v *Validator) Validate(sheet *xlsxparser.Sheet) *ValidationResult {
	res := &ValidationResult{}
	defer func() {
		res.IsValid = res.ErrorCount == 0 && (!v.options.TreatWarningsAsErrors || res.WarningCount == 0)
	}()

	// =========================================================================
	// DOCUMENT LEVEL
	// =========================================================================

	project, err := xlsxparser.ExtractProject(sheet, v.layout)
	if err != nil {
		res.add(&ValidationError{Severity: SeverityError, Rule: RuleTitle, Message: err.Error()})
	} else {
		res.ProjectName = project.Name
	}

	header := xlsxparser.BuildHeaderMap(sheet, v.layout.HeaderIndex())
	if header.Len() == 0 {
		res.add(&ValidationError{
			Severity:  SeverityError,
			Rule:      RuleHeader,
			RowNumber: v.layout.HeaderRow,
			Message:   "item header row is empty",
		})
		return res
	}

	index := make(map[string]int, len(v.fields))
	for _, f := range v.fields {
		if col, ok := header.Resolve(f.Aliases...); ok {
			index[f.Name] = col
		}
	}
	for _, required := range []string{ingest.FieldDescription, ingest.FieldSize} {
		if _, ok := index[required]; !ok {
			res.add(&ValidationError{
				Severity:  SeverityError,
				Field:     required,
				Rule:      RuleHeader,
				RowNumber: v.layout.HeaderRow,
				Message:   "required column is missing from the header",
			})
		}
	}
	if res.ErrorCount > 0 {
		return res
	}

	// =========================================================================
	// ROW AND FIELD LEVEL
	// =========================================================================

	classes := xlsxparser.Classify(sheet, v.layout.HeaderIndex(), v.layout.LastColumn)
	inGroup := false
	for row := classes.FirstRow; row < sheet.NumRows(); row++ {
		switch classes.Kind(row) {
		case xlsxparser.RowGroup:
			inGroup = true
			res.Groups++
		case xlsxparser.RowItem:
			if v.validateItemRow(sheet, row, index, inGroup, res) {
				res.Items++
			}
		}
	}

	if res.Groups == 0 {
		res.add(&ValidationError{Severity: SeverityWarning, Rule: RuleGroups, Message: "no item groups found; nothing would be imported"})
	}
	return res
}

// validateItemRow reports problems on one candidate item row and whether the
// row would be imported.
func (v *Validator) validateItemRow(sheet *xlsxparser.Sheet, row int, index map[string]int, inGroup bool, res *ValidationResult) bool {
	rowNumber := row + 1
	label := ""
	if t := xlsxparser.Text(sheet.Cell(row, 0)); t != nil {
		label = *t
	}

	if !inGroup {
		res.add(&ValidationError{
			Severity:  SeverityWarning,
			Rule:      RuleOrphan,
			RowNumber: rowNumber,
			Value:     label,
			Message:   "item row above the first group is skipped",
		})
		return false
	}

	imported := true
	for _, required := range []string{ingest.FieldDescription, ingest.FieldSize} {
		if xlsxparser.Text(sheet.Cell(row, index[required])) == nil {
			res.add(&ValidationError{
				Severity:  SeverityWarning,
				Field:     required,
				Rule:      RuleRequired,
				RowNumber: rowNumber,
				Value:     label,
				Message:   "row is skipped because the cell is empty",
			})
			imported = false
		}
	}
	if !imported {
		return false
	}

	top := v.layout.FirstDataIndex()
	for _, f := range v.fields {
		col, ok := index[f.Name]
		if !ok || f.Kind == ingest.FieldText {
			continue
		}
		cell := sheet.Cell(row, col)
		if text, bad := notANumber(cell); bad {
			res.add(&ValidationError{
				Severity:  SeverityWarning,
				Field:     f.Name,
				Rule:      RuleNumeric,
				RowNumber: rowNumber,
				Value:     text,
				Message:   "not a number, stored as 0",
			})
		}
	}

	if priceCol, ok := index[ingest.FieldPricePoint]; ok {
		distroCol, hasDistro := index[ingest.FieldDistro]
		if hasDistro && sheet.Number(row, distroCol, top) > 0 && sheet.Number(row, priceCol, top) == 0 {
			res.add(&ValidationError{
				Severity:  SeverityWarning,
				Field:     ingest.FieldPricePoint,
				Rule:      RulePrice,
				RowNumber: rowNumber,
				Value:     label,
				Message:   "item has a distro quantity but no price",
			})
		}
	}
	return true
}

// notANumber reports text cells that hold no digit at all.
func notANumber(v xlsxparser.Value) (string, bool) {
	switch v.Kind {
	case xlsxparser.KindString, xlsxparser.KindRichText:
	case xlsxparser.KindFormula:
		if v.Numeric {
			return "", false
		}
	default:
		return "", false
	}
	text := strings.TrimSpace(v.Text)
	if text == "" {
		return "", false
	}
	return text, !strings.ContainsAny(text, "0123456789")
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatErrors formats findings for display.
//
// PARAMETERS:
//   - errors: The findings to format.
//
// RETURNS:
//   - A formatted string containing all findings.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Validation completed with %d finding(s):\n\n", len(errors))
	for i, err := range errors {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, err.Error())
	}
	return builder.String()
}
