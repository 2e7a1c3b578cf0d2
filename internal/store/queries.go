package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/bidsheet-importer/internal/types"
)

// =============================================================================
// HISTORY, SEARCH AND PROJECT MANAGEMENT
// =============================================================================

// SearchPageSize is the number of items returned per search page.
const SearchPageSize = 20

// ErrEmptyQuery is returned by SearchItems when no description text is given.
var ErrEmptyQuery = errors.New("search text is required")

// ItemQuery filters the item search. Text is matched against the item
// description and is required. Material is a substring match; Size, Code,
// Vendor and Group must match exactly. Matching is case-insensitive.
type ItemQuery struct {
	Text     string
	Size     string
	Material string
	Code     string
	Vendor   string
	Group    string

	// Page is 1-based; values below 1 read as 1.
	Page int
}

// ItemPage is one page of search results, cheapest first.
type ItemPage struct {
	Page  int
	Items []types.ItemHit
}

// ListProjects returns the upload history, newest first. A limit of 0 or less
// returns every project.
func (s *SQLStore) ListProjects(ctx context.Context, limit int) ([]types.ProjectSummary, error) {
	query := `
		SELECT
			p.id, p.project_name, v.vendor_name, p.live_date, p.created_at,
			(SELECT COUNT(*) FROM item_groups g WHERE g.project_id = p.id) AS group_count,
			(SELECT COUNT(*) FROM items i WHERE i.project_id = p.id) AS item_count
		FROM projects p
		JOIN vendors v ON v.id = p.vendor_id
		ORDER BY p.created_at DESC, p.id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var projects []types.ProjectSummary
	if err := s.db.SelectContext(ctx, &projects, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// SearchItems returns one page of items matching q, ordered by total price.
func (s *SQLStore) SearchItems(ctx context.Context, q ItemQuery) (*ItemPage, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	where := []string{`LOWER(i.item_description) LIKE ?`}
	args := []any{likePattern(text)}

	if q.Size != "" {
		where = append(where, `LOWER(i.size) = ?`)
		args = append(args, strings.ToLower(q.Size))
	}
	if q.Material != "" {
		where = append(where, `LOWER(i.material) LIKE ?`)
		args = append(args, likePattern(q.Material))
	}
	if q.Code != "" {
		where = append(where, `LOWER(i.code_number) = ?`)
		args = append(args, strings.ToLower(q.Code))
	}
	if q.Vendor != "" {
		where = append(where, `v.vendor_key = ?`)
		args = append(args, VendorKey(q.Vendor))
	}
	if q.Group != "" {
		where = append(where, `LOWER(g.group_name) = ?`)
		args = append(args, strings.ToLower(q.Group))
	}

	page := max(q.Page, 1)
	args = append(args, SearchPageSize, (page-1)*SearchPageSize)

	query := `
		SELECT
			i.id, ` + prefixed("i", itemColumns) + `,
			v.vendor_name, p.project_name, g.group_name,
			p.live_date AS project_date
		FROM items i
		JOIN vendors v ON v.id = i.vendor_id
		JOIN projects p ON p.id = i.project_id
		JOIN item_groups g ON g.id = i.group_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY i.total_price ASC, i.id ASC
		LIMIT ? OFFSET ?`

	result := &ItemPage{Page: page}
	if err := s.db.SelectContext(ctx, &result.Items, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return result, nil
}

// GetProject returns a project with its groups and items in insertion order.
func (s *SQLStore) GetProject(ctx context.Context, id int64) (*types.ProjectDetail, error) {
	detail := &types.ProjectDetail{}

	var row struct {
		types.Project
		VendorName string `db:"vendor_name"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT p.id, `+prefixed("p", projectColumns)+`, v.vendor_name
		FROM projects p
		JOIN vendors v ON v.id = p.vendor_id
		WHERE p.id = ?
	`), id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	detail.Project = row.Project
	detail.VendorName = row.VendorName

	if err := s.db.SelectContext(ctx, &detail.Groups, s.db.Rebind(`
		SELECT id, project_id, group_name FROM item_groups WHERE project_id = ? ORDER BY id
	`), id); err != nil {
		return nil, fmt.Errorf("failed to get groups of project %d: %w", id, err)
	}

	if err := s.db.SelectContext(ctx, &detail.Items, s.db.Rebind(`
		SELECT id, `+itemColumns+` FROM items WHERE project_id = ? ORDER BY id
	`), id); err != nil {
		return nil, fmt.Errorf("failed to get items of project %d: %w", id, err)
	}

	return detail, nil
}

// DeleteProject removes a project with its groups and items. Vendors are kept.
func (s *SQLStore) DeleteProject(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM items WHERE project_id = ?`,
		`DELETE FROM item_groups WHERE project_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
			return fmt.Errorf("failed to delete project %d: %w", id, err)
		}
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM projects WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of project %d: %w", id, err)
	}
	return nil
}

// Counts returns the row count of every table.
func (s *SQLStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.GetContext(ctx, &c, `
		SELECT
			(SELECT COUNT(*) FROM vendors) AS vendors,
			(SELECT COUNT(*) FROM projects) AS projects,
			(SELECT COUNT(*) FROM item_groups) AS item_groups,
			(SELECT COUNT(*) FROM items) AS items
	`)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return c, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// likePattern wraps s for a case-insensitive substring match. LIKE wildcards
// typed by the user keep their meaning.
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// prefixed qualifies every column of a comma-separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, col := range parts {
		parts[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(parts, ", ")
}
