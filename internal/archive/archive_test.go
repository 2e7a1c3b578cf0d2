package archive

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	now := time.Date(2024, time.March, 9, 23, 0, 0, 0, time.UTC)

	key := Key("Geoff Howell Inc", "/tmp/drop/Geoff Howell_Acme.xlsx", now)
	assert.Regexp(t, regexp.MustCompile(`^geoff-howell-inc/2024/03/[0-9a-f-]{36}-Geoff Howell_Acme\.xlsx$`), key)

	assert.True(t, strings.HasPrefix(Key("  ", `C:\bids\x.xlsx`, now), "unknown/2024/03/"))
	assert.True(t, strings.HasSuffix(Key("Quad", `C:\bids\x.xlsx`, now), "-x.xlsx"))
	assert.NotEqual(t, Key("Quad", "x.xlsx", now), Key("Quad", "x.xlsx", now))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: DriverFilesystem, FSRoot: filepath.Join(t.TempDir(), "arch")})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())

	s, err = Open(ctx, Config{Driver: DriverNone})
	require.NoError(t, err)
	loc, err := s.Put(ctx, "a/b.xlsx", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Empty(t, loc)

	_, err = Open(ctx, Config{Driver: "ftp"})
	assert.ErrorContains(t, err, "ftp")

	_, err = Open(ctx, Config{Driver: DriverS3})
	assert.ErrorContains(t, err, "bucket")
}

func TestFSPut(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFS(root)
	require.NoError(t, err)

	loc, err := s.Put(ctx, "duggal/2024/03/id-Acme.xlsx", strings.NewReader("workbook bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "duggal", "2024", "03", "id-Acme.xlsx"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "workbook bytes", string(data))

	_, err = s.Put(ctx, "duggal/2024/03/id-Acme.xlsx", strings.NewReader("other"))
	assert.ErrorIs(t, err, ErrExists)
	data, _ = os.ReadFile(loc)
	assert.Equal(t, "workbook bytes", string(data), "existing object must not be overwritten")
}

func TestFSPutRejectsEscapingKeys(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "  ", "/etc/passwd", "../outside.xlsx", "a/../../outside.xlsx"} {
		_, err := s.Put(context.Background(), key, strings.NewReader("x"))
		assert.Error(t, err, key)
	}
}

func TestFSPutCancelled(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Put(ctx, "a.xlsx", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
