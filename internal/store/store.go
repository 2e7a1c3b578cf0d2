// =============================================================================
// Bid Sheet Importer - Storage Layer
// =============================================================================
//
// This package persists ingestion results in a SQL database through sqlx.
// Two drivers are supported:
//
//   sqlite   : modernc.org/sqlite, pure Go, the default for local use and tests
//   postgres : github.com/lib/pq
//
// All statements are written with '?' placeholders and passed through
// Rebind, so the same SQL serves both drivers.
//
// TRANSACTIONS:
//   An ingestion run acquires one Tx with Begin and performs every write
//   through it. The caller always ends the Tx with Commit or Rollback.
//
// =============================================================================

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ginjaninja78/bidsheet-importer/internal/types"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUniqueViolation is returned when an insert collides with a UNIQUE
	// constraint, whichever driver reported it.
	ErrUniqueViolation = errors.New("unique constraint violation")
)

func init() {
	// sqlx does not know modernc's driver name.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// =============================================================================
// INTERFACES
// =============================================================================

// Store is the storage surface used by the ingestion pipeline and the CLI.
type Store interface {
	// Begin starts the transaction of one ingestion run.
	Begin(ctx context.Context) (Tx, error)

	ListProjects(ctx context.Context, limit int) ([]types.ProjectSummary, error)
	SearchItems(ctx context.Context, q ItemQuery) (*ItemPage, error)
	GetProject(ctx context.Context, id int64) (*types.ProjectDetail, error)
	DeleteProject(ctx context.Context, id int64) error
	Counts(ctx context.Context) (Counts, error)
}

// Tx holds the writes of one ingestion run.
type Tx interface {
	FindVendorByName(ctx context.Context, name string) (*types.Vendor, error)
	InsertVendor(ctx context.Context, name string) (int64, error)
	FindProjectByVendorAndName(ctx context.Context, vendorID int64, name string) (*types.Project, error)
	InsertProject(ctx context.Context, p *types.Project) (int64, error)
	InsertItemGroup(ctx context.Context, g *types.ItemGroup) (int64, error)
	InsertItem(ctx context.Context, item *types.Item) (int64, error)

	Commit() error
	Rollback() error
}

// Counts is the number of rows in each table.
type Counts struct {
	Vendors  int `db:"vendors"`
	Projects int `db:"projects"`
	Groups   int `db:"item_groups"`
	Items    int `db:"items"`
}

// =============================================================================
// SQL STORE
// =============================================================================

// SQLStore implements Store over a sqlx database handle.
type SQLStore struct {
	db     *sqlx.DB
	driver string
	now    func() time.Time
}

// Open connects to the database and verifies the connection.
//
// PARAMETERS:
//   - driver: "sqlite" or "postgres".
//   - dsn: a file path (sqlite) or connection string (postgres).
//
// RETURNS:
//   - The store. The schema is not created; call EnsureSchema.
//   - An error if the driver is unknown or the database is unreachable.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("database dsn is required")
	}

	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q (expected %s or %s)", driver, DriverSQLite, DriverPostgres)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// A single connection keeps the pragmas below in effect and
		// serializes writers.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 10000"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	}

	return &SQLStore{db: db, driver: driver, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error { return s.db.Close() }

// Begin starts a transaction.
func (s *SQLStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &sqlTx{tx: tx, now: s.now}, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// VendorKey is the identity of a vendor name: trimmed and lowercased.
func VendorKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// mapError translates driver-specific unique violations into
// ErrUniqueViolation. Other errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrUniqueViolation, pqErr.Message)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", ErrUniqueViolation, liteErr.Error())
		}
	}

	return err
}
