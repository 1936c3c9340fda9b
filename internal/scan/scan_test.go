package scan_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/mutker/diagctl/internal/collector"
	"codeberg.org/mutker/diagctl/internal/history"
	"codeberg.org/mutker/diagctl/internal/logger"
	"codeberg.org/mutker/diagctl/internal/report"
	"codeberg.org/mutker/diagctl/internal/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollector struct {
	key      string
	stage    string
	snapshot map[string]any
	onRun    func()
}

func (f *fakeCollector) Key() string      { return f.key }
func (f *fakeCollector) Describe() string { return f.stage }

func (f *fakeCollector) Collect(_ context.Context) map[string]any {
	if f.onRun != nil {
		f.onRun()
	}
	return f.snapshot
}

type fakeUploader struct {
	endpoint string
	sent     report.Report
	err      error
}

func (f *fakeUploader) Send(_ context.Context, endpoint string, r report.Report) error {
	f.endpoint = endpoint
	f.sent = r
	return f.err
}

func noopStore(t *testing.T) history.Store {
	t.Helper()
	logger.Init(false, false, true)

	store, err := history.NewService(history.Config{Enabled: false}, logger.Default())
	require.NoError(t, err)

	return store
}

func testCollectors() []collector.Collector {
	return []collector.Collector{
		&fakeCollector{key: "system", stage: "Collecting system information", snapshot: map[string]any{"RAM_GB": 4.0, "Cores": 2}},
		&fakeCollector{key: "storage", stage: "Checking disk health", snapshot: map[string]any{"usage": map[string]any{"used_percent": 50.0}}},
		&fakeCollector{key: "windows11", stage: "Checking Windows 11 compatibility", snapshot: map[string]any{"OS_Build": "Unknown"}},
		&fakeCollector{key: "temps", stage: "Retrieving temperature data", snapshot: map[string]any{"cpu_c": 45.0}},
	}
}

type progressEvent struct {
	fraction float64
	stage    string
}

func TestRunProducesInterpretedReport(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	scanner := scan.New(
		scan.Config{OutputDir: dir},
		testCollectors(),
		noopStore(t),
		nil,
		scan.WithClock(func() time.Time { return ts }),
	)

	var events []progressEvent
	r, path, err := scanner.Run(context.Background(), func(fraction float64, stage string) {
		events = append(events, progressEvent{fraction, stage})
	})
	require.NoError(t, err)

	assert.Equal(t, "Warning", r["status"])
	assert.Equal(t, 85, r["health_score"])
	assert.Equal(t, "disabled", r["upload_status"])
	assert.Contains(t, path, "diagnostic_20250314_092653.json")

	loaded, latestPath, err := report.Latest(dir)
	require.NoError(t, err)
	assert.Equal(t, path, latestPath)
	assert.Equal(t, "Warning", loaded["status"])

	// Stage order and fractions follow the collector order.
	require.Len(t, events, 6)
	assert.Equal(t, progressEvent{0.0, "Collecting system information"}, events[0])
	assert.Equal(t, progressEvent{0.25, "Checking disk health"}, events[1])
	assert.Equal(t, progressEvent{0.5, "Checking Windows 11 compatibility"}, events[2])
	assert.Equal(t, progressEvent{0.75, "Retrieving temperature data"}, events[3])
	assert.Equal(t, progressEvent{0.9, "Interpreting results"}, events[4])
	assert.InDelta(t, 1.0, events[5].fraction, 0.001)
	assert.Equal(t, "Report written to "+path, events[5].stage)
}

func TestRunUploadsWhenEndpointConfigured(t *testing.T) {
	uploader := &fakeUploader{}
	scanner := scan.New(
		scan.Config{OutputDir: t.TempDir(), ServerEndpoint: "https://reports.example.com/ingest"},
		testCollectors(),
		noopStore(t),
		uploader,
	)

	r, _, err := scanner.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "success", r["upload_status"])
	assert.Equal(t, "https://reports.example.com/ingest", uploader.endpoint)
	assert.NotNil(t, uploader.sent)
}

func TestRunRecordsFailedUpload(t *testing.T) {
	uploader := &fakeUploader{err: assert.AnError}
	scanner := scan.New(
		scan.Config{OutputDir: t.TempDir(), ServerEndpoint: "https://reports.example.com/ingest"},
		testCollectors(),
		noopStore(t),
		uploader,
	)

	r, path, err := scanner.Run(context.Background(), nil)
	require.NoError(t, err, "a failed upload must not fail the scan")

	assert.Equal(t, "failed", r["upload_status"])
	assert.NotEmpty(t, path)
}

func TestRunCancelledBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	collectors := testCollectors()
	// Cancel mid-scan; the next stage boundary must observe it.
	collectors[1].(*fakeCollector).onRun = cancel

	scanner := scan.New(scan.Config{OutputDir: t.TempDir()}, collectors, noopStore(t), nil)

	_, _, err := scanner.Run(ctx, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}

func TestRunRecordsHistory(t *testing.T) {
	logger.Init(false, false, true)

	store, err := history.NewService(history.Config{
		DBPath:  t.TempDir() + "/history.db",
		Enabled: true,
	}, logger.Default())
	require.NoError(t, err)
	defer store.Close()

	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	scanner := scan.New(
		scan.Config{OutputDir: t.TempDir()},
		testCollectors(),
		store,
		nil,
		scan.WithClock(func() time.Time { return ts }),
	)

	_, _, err = scanner.Run(context.Background(), nil)
	require.NoError(t, err)

	entries, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Warning", entries[0].Status)
	assert.Equal(t, 85, entries[0].HealthScore)
	assert.Equal(t, 2, entries[0].WarningCount)
	assert.InDelta(t, 45.0, entries[0].CPUTempC, 0.01)
	assert.InDelta(t, 50.0, entries[0].DiskUsedPercent, 0.01)
	assert.InDelta(t, 4.0, entries[0].RAMGB, 0.01)
}
