package store

import (
	"context"
	"fmt"
)

// =============================================================================
// SCHEMA BOOTSTRAP
// =============================================================================
//
// The schema is created with CREATE TABLE IF NOT EXISTS statements executed in
// order. There is no migration history: changing a table means recreating the
// database.
//
//   vendors      (vendor_key UNIQUE)
//   projects     (UNIQUE vendor_id, project_name)
//   item_groups  -> projects
//   items        -> item_groups, projects, vendors
//
// =============================================================================

// columnTypes are the driver-specific column types.
type columnTypes struct {
	id    string
	float string
	money string
	stamp string
}

var dialects = map[string]columnTypes{
	DriverSQLite: {
		id:    "INTEGER PRIMARY KEY AUTOINCREMENT",
		float: "REAL",
		money: "NUMERIC",
		stamp: "TIMESTAMP",
	},
	DriverPostgres: {
		id:    "BIGSERIAL PRIMARY KEY",
		float: "DOUBLE PRECISION",
		money: "NUMERIC(14,4)",
		stamp: "TIMESTAMPTZ",
	},
}

func schemaStatements(t columnTypes) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS vendors (
			id %s,
			vendor_name TEXT NOT NULL,
			vendor_key TEXT NOT NULL UNIQUE,
			created_at %s NOT NULL
		)`, t.id, t.stamp),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS projects (
			id %s,
			vendor_id BIGINT NOT NULL REFERENCES vendors(id),
			project_name TEXT NOT NULL,
			ship_date TEXT,
			arrival_date TEXT,
			ship_method TEXT,
			live_date TEXT,
			down_date TEXT,
			discard_date TEXT,
			overage_ship_date TEXT,
			graphic_notes TEXT,
			created_at %s NOT NULL,
			UNIQUE (vendor_id, project_name)
		)`, t.id, t.stamp),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS item_groups (
			id %s,
			project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			group_name TEXT NOT NULL
		)`, t.id),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS items (
			id %[1]s,
			vendor_id BIGINT NOT NULL REFERENCES vendors(id),
			project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			group_id BIGINT NOT NULL REFERENCES item_groups(id) ON DELETE CASCADE,
			item_description TEXT,
			size TEXT,
			material TEXT,
			language TEXT,
			code_number TEXT,
			distro_quantity %[2]s NOT NULL DEFAULT 0,
			overage_quantity %[2]s NOT NULL DEFAULT 0,
			total_print_quantity %[2]s NOT NULL DEFAULT 0,
			price_point %[3]s NOT NULL DEFAULT 0,
			total_price %[3]s NOT NULL DEFAULT 0,
			category TEXT,
			max_order_quantity %[2]s NOT NULL DEFAULT 0,
			reorder_trigger %[2]s NOT NULL DEFAULT 0,
			reprint_quantity %[2]s NOT NULL DEFAULT 0,
			color TEXT,
			pantone TEXT,
			blockout TEXT,
			double_sided TEXT,
			same_or_different TEXT,
			finishing TEXT,
			print_method TEXT,
			comments TEXT
		)`, t.id, t.float, t.money),

		`CREATE INDEX IF NOT EXISTS idx_item_groups_project ON item_groups(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_project ON items(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_group ON items(group_id)`,
	}
}

// EnsureSchema creates any missing tables and indexes.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	dialect, ok := dialects[s.driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", s.driver)
	}

	for i, stmt := range schemaStatements(dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i+1, err)
		}
	}
	return nil
}
