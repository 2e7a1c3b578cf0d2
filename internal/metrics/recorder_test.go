package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRun(t *testing.T) {
	r := NewRecorder()

	r.ObserveRun("success", 120*time.Millisecond, 2, 9)
	r.ObserveRun("success", 80*time.Millisecond, 1, 3)
	r.ObserveRun("duplicate_project", 5*time.Millisecond, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("duplicate_project")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.groups))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.items))
	assert.Equal(t, 5, testutil.CollectAndCount(r.registry))
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.ObserveRun("success", time.Second, 1, 1)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.items))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun("malformed_sheet", time.Millisecond, 0, 0)

	path := filepath.Join(t.TempDir(), "bidsheet.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `bidsheet_ingest_runs_total{outcome="malformed_sheet"} 1`)
	assert.Contains(t, string(data), "bidsheet_ingest_duration_seconds_count 1")

	err = r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
