// =============================================================================
// Bid Sheet Importer - Source File Archive
// =============================================================================
//
// Every workbook that imports successfully is kept in an archive so the
// original vendor file can be produced later. Three drivers exist:
//
//   fs   : a directory tree on the local disk (default)
//   s3   : an S3 bucket or an S3-compatible service such as MinIO
//   none : archiving disabled
//
// Objects are written once. Putting a key that already exists fails with
// ErrExists instead of overwriting.
//
// =============================================================================

package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Driver names an archive backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverNone       Driver = "none"
)

// ErrExists is returned by Put when the key is already taken.
var ErrExists = errors.New("archive object already exists")

// Store is a create-only object store for source workbooks.
type Store interface {
	Driver() Driver

	// Put stores r under key and returns a human readable location
	// (a file path or an s3:// URL).
	Put(ctx context.Context, key string, r io.Reader) (string, error)
}

// Config selects and configures a driver.
type Config struct {
	Driver Driver

	// FSRoot is the root directory of the fs driver.
	FSRoot string

	// S3 settings.
	S3 S3Config
}

// Open constructs the Store for cfg.Driver.
//
// PARAMETERS:
//   - ctx: Used while loading the AWS configuration.
//   - cfg: The archive configuration.
//
// RETURNS:
//   - The Store.
//   - An error for an unknown driver or when the backend cannot be set up.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		return NewFS(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverNone:
		return discard{}, nil
	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.Driver)
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Key builds the archive key for a workbook:
// <vendor-slug>/<yyyy>/<mm>/<uuid>-<filename>.
//
// Only the base name of filename is kept, so keys never carry directories
// of the machine that ran the import.
func Key(vendorName, filename string, now time.Time) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(vendorName), "-"), "-")
	if slug == "" {
		slug = "unknown"
	}
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	now = now.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s-%s", slug, now.Year(), int(now.Month()), uuid.NewString(), base)
}

// discard drops everything. Used by the "none" driver.
type discard struct{}

func (discard) Driver() Driver { return DriverNone }

func (discard) Put(_ context.Context, _ string, r io.Reader) (string, error) {
	_, err := io.Copy(io.Discard, r)
	return "", err
}
