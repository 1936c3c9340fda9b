package render_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/diagctl/internal/interpret"
	"codeberg.org/mutker/diagctl/internal/render"
	"codeberg.org/mutker/diagctl/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() report.Report {
	r := report.New(time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC))
	r["system"] = map[string]any{"RAM_GB": 4.0, "Cores": 2, "OS": "ubuntu 24.04"}
	r["storage"] = map[string]any{"usage": map[string]any{"used_percent": 85.0, "free_gb": 12.5}}
	r["temps"] = map[string]any{"cpu_c": 91.0}
	r.Merge(interpret.Interpret(r))

	return r
}

func TestHTMLRendersVerdict(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.html")

	path, err := render.HTML(sampleReport(), out)
	require.NoError(t, err)
	assert.Equal(t, out, path)

	html, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(html)
	assert.Contains(t, content, "Critical")
	assert.Contains(t, content, "CPU temperature critical: 91°C")
	assert.Contains(t, content, "Disk space running low: 85% used")
	assert.Contains(t, content, "Consider upgrading RAM for better performance")
	assert.Contains(t, content, "ubuntu 24.04")
}

func TestHTMLRendersLoadedReport(t *testing.T) {
	dir := t.TempDir()
	ts := time.Now()

	r := sampleReport()
	_, err := r.Write(dir, ts)
	require.NoError(t, err)

	loaded, _, err := report.Latest(dir)
	require.NoError(t, err)

	out := filepath.Join(dir, "report.html")
	_, err = render.HTML(loaded, out)
	require.NoError(t, err)

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "CPU temperature critical: 91°C")
}

func TestExportLatestHTML(t *testing.T) {
	logDir := t.TempDir()
	outDir := t.TempDir()

	_, err := sampleReport().Write(logDir, time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC))
	require.NoError(t, err)

	path, err := render.ExportLatest(context.Background(), logDir, outDir, render.FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "diagnostic_20250314_092653.html"), path)
}

func TestExportLatestInvalidFormat(t *testing.T) {
	logDir := t.TempDir()
	_, err := sampleReport().Write(logDir, time.Now())
	require.NoError(t, err)

	_, err = render.ExportLatest(context.Background(), logDir, t.TempDir(), "docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docx")
}

func TestExportLatestNoReports(t *testing.T) {
	_, err := render.ExportLatest(context.Background(), t.TempDir(), t.TempDir(), render.FormatHTML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No diagnostic reports found")
}
