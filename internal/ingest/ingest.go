// =============================================================================
// Bid Sheet Importer - Ingestion Module
// =============================================================================
//
// This module contains the core ingestion logic. It orchestrates the entire
// pipeline for a single vendor workbook, from filename to committed rows.
//
// INGESTION PIPELINE:
//   1. Resolve the vendor from the filename
//   2. Extract the project header block
//   3. Resolve item columns from the header row
//   4. Classify rows and build groups with their items
//   5. Inside one transaction:
//        find or create the vendor, reject duplicates,
//        insert the project, its groups, then its items
//   6. Commit (or roll back on any failure, or for a dry run)
//
// CONCURRENCY:
//   A run is synchronous. Concurrent runs against the same database are
//   arbitrated by the UNIQUE (vendor, project name) constraint.
//
// =============================================================================

package ingest

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/bidsheet-importer/internal/store"
	"github.com/ginjaninja78/bidsheet-importer/internal/types"
	"github.com/ginjaninja78/bidsheet-importer/internal/vendor"
	"github.com/ginjaninja78/bidsheet-importer/internal/xlsxparser"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of ingesting a single workbook.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Filename is the original name of the workbook.
	Filename string

	VendorName  string
	VendorID    int64
	ProjectID   int64
	ProjectName string

	// Groups and Items are the number of rows written (or that would have
	// been written, for a dry run).
	Groups int
	Items  int

	// SkippedRows counts candidate item rows without a description or size,
	// or above the first group.
	SkippedRows int

	// DryRun is set when the transaction was rolled back on purpose.
	DryRun bool

	Duration time.Duration
}

// Observer receives one call per finished run. outcome is "success" or the
// failure Kind.
type Observer interface {
	ObserveRun(outcome string, d time.Duration, groups, items int)
}

// =============================================================================
// INGESTER
// =============================================================================

// Config holds the collaborators and options of an Ingester. Zero values fall
// back to the defaults of each component.
type Config struct {
	Resolver *vendor.Resolver
	Layout   xlsxparser.Layout
	Fields   []FieldSpec
	Logger   Logger
	Metrics  Observer

	// DryRun runs the whole pipeline and rolls the transaction back.
	DryRun bool
}

// Ingester turns vendor workbooks into project, group and item rows.
type Ingester struct {
	store store.Store
	cfg   Config
}

// New creates an Ingester writing to s.
func New(s store.Store, cfg Config) *Ingester {
	if cfg.Resolver == nil {
		cfg.Resolver = vendor.NewResolver(vendor.DefaultRoster)
	}
	if cfg.Layout.HeaderRow == 0 {
		cfg.Layout = xlsxparser.DefaultLayout()
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = DefaultFields()
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return &Ingester{store: s, cfg: cfg}
}

// groupDraft is a confirmed group and the items under it, before any write.
type groupDraft struct {
	group types.ItemGroup
	items []types.Item
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// IngestFile ingests the workbook at path. The vendor is resolved from the
// file's base name before the workbook is read.
func (g *Ingester) IngestFile(ctx context.Context, path string) (*Result, error) {
	filename := filepath.Base(path)
	return g.run(filename, func(res *Result) error {
		if _, err := g.resolveVendor(filename); err != nil {
			return err
		}
		sheet, err := xlsxparser.Open(path)
		if err != nil {
			return newError(KindMalformedSheet, err, "cannot read workbook %s", filename)
		}
		return g.ingest(ctx, filename, sheet, res)
	})
}

// IngestReader ingests a workbook streamed from r, named filename.
func (g *Ingester) IngestReader(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	return g.run(filename, func(res *Result) error {
		if _, err := g.resolveVendor(filename); err != nil {
			return err
		}
		sheet, err := xlsxparser.Read(r)
		if err != nil {
			return newError(KindMalformedSheet, err, "cannot read workbook %s", filename)
		}
		return g.ingest(ctx, filename, sheet, res)
	})
}

// Ingest ingests an already loaded sheet.
func (g *Ingester) Ingest(ctx context.Context, filename string, sheet *xlsxparser.Sheet) (*Result, error) {
	return g.run(filename, func(res *Result) error {
		return g.ingest(ctx, filename, sheet, res)
	})
}

// run wraps one ingestion with timing, logging and metrics.
func (g *Ingester) run(filename string, fn func(res *Result) error) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), Filename: filename, DryRun: g.cfg.DryRun}

	g.cfg.Logger.Info("Ingesting %s (run %s)", filename, res.RunID)

	err := fn(res)
	res.Duration = time.Since(start)

	outcome, groups, items := "success", res.Groups, res.Items
	if err != nil {
		// Nothing survives a failed run.
		outcome, groups, items = string(KindOf(err)), 0, 0
		var ie *Error
		if errors.As(err, &ie) && ie.RunID == "" {
			ie.RunID = res.RunID
		}
		if cause := errors.Unwrap(err); cause != nil && KindOf(err) == KindStorageFailure {
			g.cfg.Logger.Error("Run %s: %v: %v", res.RunID, err, cause)
		} else {
			g.cfg.Logger.Warn("Run %s: %v", res.RunID, err)
		}
	} else {
		g.cfg.Logger.Info("Run %s: project %q for %s, %d groups, %d items (%d rows skipped)",
			res.RunID, res.ProjectName, res.VendorName, res.Groups, res.Items, res.SkippedRows)
	}
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.ObserveRun(outcome, res.Duration, groups, items)
	}

	if err != nil {
		return nil, err
	}
	return res, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func (g *Ingester) ingest(ctx context.Context, filename string, sheet *xlsxparser.Sheet, res *Result) error {
	layout := g.cfg.Layout

	// =========================================================================
	// STEP 1: RESOLVE VENDOR
	// =========================================================================

	vendorName, err := g.resolveVendor(filename)
	if err != nil {
		return err
	}
	res.VendorName = vendorName

	// =========================================================================
	// STEP 2: EXTRACT PROJECT
	// =========================================================================

	project, err := xlsxparser.ExtractProject(sheet, layout)
	if err != nil {
		return newError(KindMalformedSheet, err, "%s has no usable project header", filename)
	}
	res.ProjectName = project.Name

	// =========================================================================
	// STEP 3: RESOLVE COLUMNS
	// =========================================================================

	header := xlsxparser.BuildHeaderMap(sheet, layout.HeaderIndex())
	if header.Len() == 0 {
		return newError(KindMalformedSheet, nil, "%s has no item header in row %d", filename, layout.HeaderRow)
	}
	cols := resolveColumns(header, g.cfg.Fields)
	for _, required := range []string{FieldDescription, FieldSize} {
		if !cols.has(required) {
			return newError(KindMalformedSheet, nil, "%s: header row %d has no %s column", filename, layout.HeaderRow, required)
		}
	}

	// =========================================================================
	// STEP 4: CLASSIFY ROWS AND BUILD DRAFTS
	// =========================================================================

	drafts, skipped := g.buildDrafts(sheet, cols)
	res.SkippedRows = skipped
	g.cfg.Logger.Debug("Run %s: %d groups confirmed, %d rows skipped", res.RunID, len(drafts), skipped)

	// =========================================================================
	// STEP 5: PERSIST
	// =========================================================================

	return g.persist(ctx, vendorName, project, drafts, res)
}

// buildDrafts walks the rows below the header. Item rows attach to the most
// recent confirmed group; rows before the first group are skipped.
func (g *Ingester) buildDrafts(sheet *xlsxparser.Sheet, cols *columns) ([]*groupDraft, int) {
	layout := g.cfg.Layout
	classes := xlsxparser.Classify(sheet, layout.HeaderIndex(), layout.LastColumn)
	top := layout.FirstDataIndex()

	var (
		drafts  []*groupDraft
		current *groupDraft
		skipped int
	)
	for row := classes.FirstRow; row < sheet.NumRows(); row++ {
		switch classes.Kind(row) {
		case xlsxparser.RowGroup:
			name, _ := classes.Group(row)
			current = &groupDraft{group: types.ItemGroup{Name: name}}
			drafts = append(drafts, current)

		case xlsxparser.RowItem:
			item := cols.buildItem(sheet, row, top)
			if current == nil || item.Description == nil || item.Size == nil {
				skipped++
				continue
			}
			current.items = append(current.items, item)
		}
	}
	return drafts, skipped
}

// persist writes the project, groups and items in one transaction.
func (g *Ingester) persist(ctx context.Context, vendorName string, project *types.Project, drafts []*groupDraft, res *Result) error {
	tx, err := g.store.Begin(ctx)
	if err != nil {
		return storageFailure(err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			g.cfg.Logger.Error("Run %s: rollback failed: %v", res.RunID, rbErr)
		}
	}()

	vendorID, err := findOrCreateVendor(ctx, tx, vendorName)
	if err != nil {
		return storageFailure(err)
	}
	res.VendorID = vendorID

	existing, err := tx.FindProjectByVendorAndName(ctx, vendorID, project.Name)
	switch {
	case err == nil:
		return newError(KindDuplicateProject, nil, "project %q from %s already imported (id %d)", project.Name, vendorName, existing.ID)
	case !errors.Is(err, store.ErrNotFound):
		return storageFailure(err)
	}

	project.VendorID = vendorID
	projectID, err := tx.InsertProject(ctx, project)
	if errors.Is(err, store.ErrUniqueViolation) {
		return newError(KindDuplicateProject, err, "project %q from %s already imported", project.Name, vendorName)
	}
	if err != nil {
		return storageFailure(err)
	}
	res.ProjectID = projectID

	for _, d := range drafts {
		d.group.ProjectID = projectID
		if _, err := tx.InsertItemGroup(ctx, &d.group); err != nil {
			return storageFailure(err)
		}
		res.Groups++
	}

	for _, d := range drafts {
		for i := range d.items {
			item := &d.items[i]
			item.VendorID = vendorID
			item.ProjectID = projectID
			item.GroupID = d.group.ID
			if _, err := tx.InsertItem(ctx, item); err != nil {
				return storageFailure(err)
			}
			res.Items++
		}
	}

	if g.cfg.DryRun {
		return nil
	}

	if err := tx.Commit(); err != nil {
		return storageFailure(err)
	}
	committed = true
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (g *Ingester) resolveVendor(filename string) (string, error) {
	name, err := g.cfg.Resolver.Resolve(filename)
	if err != nil {
		return "", newError(KindVendorNotFound, err, "cannot ingest %s", filename)
	}
	return name, nil
}

// findOrCreateVendor returns the id of vendorName, creating it on first
// sighting. A vendor created concurrently by another run is re-read.
func findOrCreateVendor(ctx context.Context, tx store.Tx, vendorName string) (int64, error) {
	v, err := tx.FindVendorByName(ctx, vendorName)
	if err == nil {
		return v.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	id, err := tx.InsertVendor(ctx, vendorName)
	if errors.Is(err, store.ErrUniqueViolation) {
		v, err := tx.FindVendorByName(ctx, vendorName)
		if err != nil {
			return 0, err
		}
		return v.ID, nil
	}
	return id, err
}
