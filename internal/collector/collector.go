// Package collector gathers the raw readings a diagnostic report is
// built from. Collectors are capability-checked: a reading that cannot
// be obtained on the running platform comes back as a benign
// placeholder ("Unavailable", nil or an empty mapping), never as an
// error that aborts the scan.
package collector

import (
	"context"
	"math"
)

// Collector produces one section of the diagnostic report.
type Collector interface {
	// Key is the report key the snapshot is stored under.
	Key() string

	// Describe returns the progress stage label shown while the
	// collector runs.
	Describe() string

	// Collect returns the snapshot. It never fails.
	Collect(ctx context.Context) map[string]any
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
