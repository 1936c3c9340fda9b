package history

import (
	"context"
	"time"
)

// Store records one summary row per diagnostic scan and serves recent
// rows back for the history command.
type Store interface {
	Record(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// Repository defines the interface for history data storage
type Repository interface {
	Record(entry *Entry) error
	Recent(limit int) ([]Entry, error)
	Close() error
}

// Entry is the per-scan summary row.
type Entry struct {
	Timestamp       time.Time
	Status          string
	HealthScore     int
	WarningCount    int
	CPUTempC        float64
	DiskUsedPercent float64
	RAMGB           float64
}
