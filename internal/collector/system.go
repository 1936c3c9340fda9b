package collector

import (
	"context"

	"codeberg.org/mutker/diagctl/internal/logger"
	"codeberg.org/mutker/diagctl/internal/report"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

const secondsPerHour = 3600

// System collects static machine facts: OS, CPU model, core count,
// installed RAM and uptime.
type System struct{}

func NewSystem() *System {
	return &System{}
}

func (*System) Key() string {
	return "system"
}

func (*System) Describe() string {
	return "Collecting system information"
}

func (*System) Collect(ctx context.Context) map[string]any {
	snapshot := map[string]any{
		"OS":           report.Unavailable,
		"CPU":          report.Unavailable,
		"Cores":        report.Unavailable,
		"RAM_GB":       report.Unavailable,
		"Uptime_Hours": report.Unavailable,
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		snapshot["OS"] = info.Platform + " " + info.PlatformVersion
		snapshot["Uptime_Hours"] = round2(float64(info.Uptime) / secondsPerHour)
	} else {
		logger.Debug().Err(err).Msg("host info unavailable")
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		snapshot["CPU"] = cpus[0].ModelName
	} else if err != nil {
		logger.Debug().Err(err).Msg("cpu info unavailable")
	}

	if cores, err := cpu.CountsWithContext(ctx, true); err == nil {
		snapshot["Cores"] = cores
	} else {
		logger.Debug().Err(err).Msg("core count unavailable")
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snapshot["RAM_GB"] = round2(float64(vm.Total) / 1e9)
	} else {
		logger.Debug().Err(err).Msg("memory info unavailable")
	}

	return snapshot
}
