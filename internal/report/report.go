package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/mutker/diagctl/internal/errors"
)

const (
	// Component keys used in Summary.ComponentStatus.
	ComponentTemperatures = "temperatures"
	ComponentStorage      = "storage"
	ComponentSystem       = "system"

	// Unavailable is the sentinel collectors emit when a reading
	// cannot be obtained. The interpreter treats it as absent.
	Unavailable = "Unavailable"

	filePrefix     = "diagnostic_"
	fileTimeLayout = "20060102_150405"
	dirPerm        = 0o755
	filePerm       = 0o644
)

// Report is one scan's aggregated snapshot: string-keyed, with
// heterogeneous values the way JSON decoding produces them. It is
// built once per scan, enriched once with the interpreter summary and
// then frozen.
type Report map[string]any

// Summary is the interpreter verdict merged back into the report.
type Summary struct {
	Status          Severity            `json:"status"`
	Warnings        []string            `json:"warnings"`
	Recommendations []string            `json:"recommendations"`
	ComponentStatus map[string]Severity `json:"component_status"`
	HealthScore     int                 `json:"health_score"`
}

// New returns a report skeleton stamped with the current time.
func New(now time.Time) Report {
	return Report{
		"timestamp": now.Format(time.RFC3339),
	}
}

// Merge writes the summary into the report. Summary keys win on
// conflict.
func (r Report) Merge(s Summary) {
	r["status"] = s.Status.String()
	r["warnings"] = s.Warnings
	r["recommendations"] = s.Recommendations
	r["health_score"] = s.HealthScore

	componentStatus := make(map[string]string, len(s.ComponentStatus))
	for component, severity := range s.ComponentStatus {
		componentStatus[component] = severity.String()
	}
	r["component_status"] = componentStatus
}

// Write persists the report as indented JSON under dir, named
// diagnostic_<timestamp>.json, and returns the written path.
func (r Report) Write(dir string, now time.Time) (string, error) {
	errFactory := errors.New()

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", errFactory.Wrap(errors.ErrWriteReport, err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", errFactory.Wrap(errors.ErrWriteReport, err)
	}

	path := filepath.Join(dir, filePrefix+now.Format(fileTimeLayout)+".json")
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", errFactory.Wrap(errors.ErrWriteReport, err)
	}

	return path, nil
}

// Load reads a persisted report back from disk.
func Load(path string) (Report, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrResourceNotFound, err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errFactory.Wrap(errors.ErrInternal, err)
	}

	return r, nil
}

// Latest returns the newest persisted report in dir along with its
// path. Newest is decided by modification time, matching how reports
// are exported.
func Latest(dir string) (Report, string, error) {
	errFactory := errors.New()

	matches, err := filepath.Glob(filepath.Join(dir, filePrefix+"*.json"))
	if err != nil {
		return nil, "", errFactory.Wrap(errors.ErrNoReports, err)
	}
	if len(matches) == 0 {
		return nil, "", errFactory.WithData(errors.ErrNoReports, dir)
	}

	var (
		newest     string
		newestTime time.Time
	)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = path
			newestTime = info.ModTime()
		}
	}
	if newest == "" {
		return nil, "", errFactory.WithData(errors.ErrNoReports, dir)
	}

	r, err := Load(newest)
	if err != nil {
		return nil, "", err
	}

	return r, newest, nil
}
