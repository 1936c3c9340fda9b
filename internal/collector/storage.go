package collector

import (
	"context"
	"runtime"
	"strings"

	"codeberg.org/mutker/diagctl/internal/logger"
	"github.com/shirou/gopsutil/v4/disk"
)

// Storage collects root-filesystem usage, per-partition usage and
// SMART health for the system drives.
type Storage struct {
	smart *SMARTCache
}

func NewStorage(smart *SMARTCache) *Storage {
	return &Storage{smart: smart}
}

func (*Storage) Key() string {
	return "storage"
}

func (*Storage) Describe() string {
	return "Checking disk health"
}

func (s *Storage) Collect(ctx context.Context) map[string]any {
	return map[string]any{
		"usage":  rootUsage(ctx),
		"drives": partitionUsage(ctx),
		"smart":  s.smart.Get(ctx),
	}
}

func rootPath() string {
	if runtime.GOOS == "windows" {
		return `C:\`
	}

	return "/"
}

func rootUsage(ctx context.Context) map[string]any {
	usage, err := disk.UsageWithContext(ctx, rootPath())
	if err != nil {
		logger.Debug().Err(err).Msg("root filesystem usage unavailable")
		return map[string]any{
			"total_gb":     0,
			"used_gb":      0,
			"free_gb":      0,
			"used_percent": 0,
		}
	}

	return map[string]any{
		"total_gb":     round2(float64(usage.Total) / 1e9),
		"used_gb":      round2(float64(usage.Used) / 1e9),
		"free_gb":      round2(float64(usage.Free) / 1e9),
		"used_percent": round1(usage.UsedPercent),
	}
}

func partitionUsage(ctx context.Context) map[string]any {
	drives := map[string]any{}

	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		logger.Debug().Err(err).Msg("partition list unavailable")
		return drives
	}

	for _, partition := range partitions {
		if partition.Fstype == "" || isCDROM(partition.Opts) {
			continue
		}
		usage, err := disk.UsageWithContext(ctx, partition.Mountpoint)
		if err != nil {
			continue
		}
		drives[partition.Device] = map[string]any{
			"total_gb":     round2(float64(usage.Total) / 1e9),
			"free_gb":      round2(float64(usage.Free) / 1e9),
			"used_percent": round1(usage.UsedPercent),
			"filesystem":   partition.Fstype,
		}
	}

	return drives
}

func isCDROM(opts []string) bool {
	for _, opt := range opts {
		if strings.Contains(strings.ToLower(opt), "cdrom") {
			return true
		}
	}

	return false
}
