package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ginjaninja78/bidsheet-importer/internal/types"
)

// =============================================================================
// INGESTION TRANSACTION
// =============================================================================

const itemColumns = `vendor_id, project_id, group_id,
	item_description, size, material, language, code_number,
	distro_quantity, overage_quantity, total_print_quantity,
	price_point, total_price,
	category, max_order_quantity, reorder_trigger, reprint_quantity,
	color, pantone, blockout, double_sided, same_or_different,
	finishing, print_method, comments`

const insertItemSQL = `INSERT INTO items (` + itemColumns + `) VALUES (
	:vendor_id, :project_id, :group_id,
	:item_description, :size, :material, :language, :code_number,
	:distro_quantity, :overage_quantity, :total_print_quantity,
	:price_point, :total_price,
	:category, :max_order_quantity, :reorder_trigger, :reprint_quantity,
	:color, :pantone, :blockout, :double_sided, :same_or_different,
	:finishing, :print_method, :comments
) RETURNING id`

const projectColumns = `vendor_id, project_name,
	ship_date, arrival_date, ship_method, live_date,
	down_date, discard_date, overage_ship_date,
	graphic_notes, created_at`

const insertProjectSQL = `INSERT INTO projects (` + projectColumns + `) VALUES (
	:vendor_id, :project_name,
	:ship_date, :arrival_date, :ship_method, :live_date,
	:down_date, :discard_date, :overage_ship_date,
	:graphic_notes, :created_at
) RETURNING id`

type sqlTx struct {
	tx  *sqlx.Tx
	now func() time.Time
}

// FindVendorByName looks a vendor up by its case-insensitive name.
func (t *sqlTx) FindVendorByName(ctx context.Context, name string) (*types.Vendor, error) {
	var v types.Vendor
	err := t.tx.GetContext(ctx, &v,
		t.tx.Rebind(`SELECT id, vendor_name FROM vendors WHERE vendor_key = ?`), VendorKey(name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vendor %q: %w", name, err)
	}
	return &v, nil
}

// InsertVendor creates a vendor. A vendor with the same key created by a
// concurrent run yields ErrUniqueViolation without aborting the transaction.
func (t *sqlTx) InsertVendor(ctx context.Context, name string) (int64, error) {
	var id int64
	err := t.tx.GetContext(ctx, &id, t.tx.Rebind(`
		INSERT INTO vendors (vendor_name, vendor_key, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (vendor_key) DO NOTHING
		RETURNING id
	`), name, VendorKey(name), t.now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: vendor %q", ErrUniqueViolation, name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert vendor %q: %w", name, mapError(err))
	}
	return id, nil
}

// FindProjectByVendorAndName returns the project a vendor already has under
// name, or ErrNotFound.
func (t *sqlTx) FindProjectByVendorAndName(ctx context.Context, vendorID int64, name string) (*types.Project, error) {
	var p types.Project
	err := t.tx.GetContext(ctx, &p, t.tx.Rebind(`
		SELECT id, `+projectColumns+`
		FROM projects
		WHERE vendor_id = ? AND project_name = ?
	`), vendorID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project %q: %w", name, err)
	}
	return &p, nil
}

// InsertProject creates p and sets its ID and CreatedAt.
func (t *sqlTx) InsertProject(ctx context.Context, p *types.Project) (int64, error) {
	p.CreatedAt = t.now().UTC()

	id, err := t.namedInsert(ctx, insertProjectSQL, p)
	if err != nil {
		return 0, fmt.Errorf("failed to insert project %q: %w", p.Name, err)
	}
	p.ID = id
	return id, nil
}

// InsertItemGroup creates g and sets its ID.
func (t *sqlTx) InsertItemGroup(ctx context.Context, g *types.ItemGroup) (int64, error) {
	var id int64
	err := t.tx.GetContext(ctx, &id, t.tx.Rebind(`
		INSERT INTO item_groups (project_id, group_name) VALUES (?, ?) RETURNING id
	`), g.ProjectID, g.Name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert group %q: %w", g.Name, mapError(err))
	}
	g.ID = id
	return id, nil
}

// InsertItem creates item and sets its ID.
func (t *sqlTx) InsertItem(ctx context.Context, item *types.Item) (int64, error) {
	id, err := t.namedInsert(ctx, insertItemSQL, item)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", err)
	}
	item.ID = id
	return id, nil
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (t *sqlTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back: %w", err)
	}
	return nil
}

// namedInsert binds a named INSERT ... RETURNING id statement against arg.
func (t *sqlTx) namedInsert(ctx context.Context, query string, arg any) (int64, error) {
	bound, args, err := sqlx.Named(query, arg)
	if err != nil {
		return 0, fmt.Errorf("failed to bind statement: %w", err)
	}

	var id int64
	if err := t.tx.GetContext(ctx, &id, t.tx.Rebind(bound), args...); err != nil {
		return 0, mapError(err)
	}
	return id, nil
}
