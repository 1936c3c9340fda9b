package collector

import (
	"context"
	"encoding/json"
	"os/exec"
	"sync"
	"time"

	"codeberg.org/mutker/diagctl/internal/logger"
)

// SMART readings change slowly and smartctl probes are expensive, so
// results are served through an explicit time-based cache owned by the
// storage collector. Invalidation is purely TTL-based.
const maxSMARTDevices = 3

// SMARTCache runs smartctl on demand and caches the parsed results.
type SMARTCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	fetched time.Time
	data    map[string]any
}

func NewSMARTCache(ttl time.Duration) *SMARTCache {
	return &SMARTCache{ttl: ttl}
}

// Get returns cached SMART data, refreshing when stale.
func (c *SMARTCache) Get(ctx context.Context) map[string]any {
	c.mu.RLock()
	if c.data != nil && time.Since(c.fetched) < c.ttl {
		data := c.data
		c.mu.RUnlock()
		return data
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring the write lock
	if c.data != nil && time.Since(c.fetched) < c.ttl {
		return c.data
	}

	c.data = collectSMART(ctx)
	c.fetched = time.Now()

	return c.data
}

// smartctlScan is the relevant subset of smartctl --scan --json output.
type smartctlScan struct {
	Devices []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"devices"`
}

// smartctlDevice is the relevant subset of smartctl -H -A --json output.
type smartctlDevice struct {
	ModelName   string `json:"model_name"`
	SmartStatus struct {
		Passed bool `json:"passed"`
	} `json:"smart_status"`
	Temperature struct {
		Current int `json:"current"`
	} `json:"temperature"`
	PowerOnTime struct {
		Hours int `json:"hours"`
	} `json:"power_on_time"`
}

func collectSMART(ctx context.Context) map[string]any {
	results := map[string]any{}

	path, err := exec.LookPath("smartctl")
	if err != nil {
		logger.Debug().Msg("smartctl not found, skipping SMART checks")
		return results
	}

	scanOut, err := exec.CommandContext(ctx, path, "--scan", "--json").Output()
	if err != nil {
		logger.Debug().Err(err).Msg("smartctl device scan failed")
		return results
	}

	devices, err := parseSMARTScan(scanOut)
	if err != nil {
		logger.Debug().Err(err).Msg("failed to parse smartctl scan output")
		return results
	}

	if len(devices) > maxSMARTDevices {
		devices = devices[:maxSMARTDevices]
	}

	for _, device := range devices {
		args := []string{"-H", "-A", "--json", device.name}
		if device.devType != "" {
			args = []string{"-H", "-A", "--json", "-d", device.devType, device.name}
		}

		// smartctl returns non-zero for many non-error reasons, so the
		// output is parsed whenever any was produced.
		out, err := exec.CommandContext(ctx, path, args...).Output()
		if err != nil && len(out) == 0 {
			logger.Debug().Err(err).Str("device", device.name).Msg("smartctl query failed")
			continue
		}

		entry, err := parseSMARTDevice(out)
		if err != nil {
			logger.Debug().Err(err).Str("device", device.name).Msg("failed to parse smartctl output")
			continue
		}
		results[device.name] = entry
	}

	return results
}

type scannedDevice struct {
	name    string
	devType string
}

func parseSMARTScan(out []byte) ([]scannedDevice, error) {
	var scan smartctlScan
	if err := json.Unmarshal(out, &scan); err != nil {
		return nil, err
	}

	devices := make([]scannedDevice, 0, len(scan.Devices))
	for _, dev := range scan.Devices {
		if dev.Name == "" {
			continue
		}
		devices = append(devices, scannedDevice{name: dev.Name, devType: dev.Type})
	}

	return devices, nil
}

func parseSMARTDevice(out []byte) (map[string]any, error) {
	var data smartctlDevice
	if err := json.Unmarshal(out, &data); err != nil {
		return nil, err
	}

	healthy := "FAILED"
	if data.SmartStatus.Passed {
		healthy = "PASSED"
	}

	details := map[string]any{}
	if data.ModelName != "" {
		details["model"] = data.ModelName
	}
	if data.Temperature.Current != 0 {
		details["temperature_c"] = data.Temperature.Current
	}
	if data.PowerOnTime.Hours != 0 {
		details["power_on_hours"] = data.PowerOnTime.Hours
	}

	return map[string]any{
		"available": true,
		"healthy":   healthy,
		"details":   details,
	}, nil
}
