package collector

import (
	"context"
	"strings"

	"codeberg.org/mutker/diagctl/internal/logger"
	"codeberg.org/mutker/diagctl/internal/report"
	"github.com/shirou/gopsutil/v4/sensors"
)

// Temperatures collects CPU and GPU temperatures. Both readings are
// best-effort: platforms without exposed sensors (or without an NVIDIA
// GPU) report the "Unavailable" sentinel.
type Temperatures struct{}

func NewTemperatures() *Temperatures {
	return &Temperatures{}
}

func (*Temperatures) Key() string {
	return "temps"
}

func (*Temperatures) Describe() string {
	return "Retrieving temperature data"
}

func (*Temperatures) Collect(ctx context.Context) map[string]any {
	snapshot := map[string]any{
		"cpu_c": report.Unavailable,
		"gpu_c": report.Unavailable,
	}

	readings, err := sensors.TemperaturesWithContext(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("temperature sensors unavailable")
	} else if cpu, ok := cpuTemperature(readings); ok {
		snapshot["cpu_c"] = round1(cpu)
	}

	if gpu, ok := gpuTemperature(); ok {
		snapshot["gpu_c"] = round1(gpu)
	}

	return snapshot
}

// cpuTemperature picks the first package/core sensor reading.
func cpuTemperature(readings []sensors.TemperatureStat) (float64, bool) {
	for _, reading := range readings {
		key := strings.ToLower(reading.SensorKey)
		if reading.Temperature <= 0 {
			continue
		}
		if strings.Contains(key, "package") ||
			strings.Contains(key, "cpu") ||
			strings.Contains(key, "coretemp") ||
			strings.Contains(key, "k10temp") {
			return reading.Temperature, true
		}
	}

	return 0, false
}
