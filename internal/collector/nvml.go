package collector

import (
	"codeberg.org/mutker/diagctl/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// gpuTemperature reads the first NVIDIA GPU's core temperature through
// NVML. Machines without the NVML library or an NVIDIA device simply
// report no reading.
func gpuTemperature() (float64, bool) {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		logger.Debug().Str("reason", nvml.ErrorString(ret)).Msg("NVML unavailable")
		return 0, false
	}
	defer func() {
		if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
			logger.Debug().Str("reason", nvml.ErrorString(ret)).Msg("NVML shutdown failed")
		}
	}()

	device, ret := nvml.DeviceGetHandleByIndex(0)
	if ret != nvml.SUCCESS {
		logger.Debug().Str("reason", nvml.ErrorString(ret)).Msg("no NVML device found")
		return 0, false
	}

	temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU)
	if ret != nvml.SUCCESS {
		logger.Debug().Str("reason", nvml.ErrorString(ret)).Msg("failed to read GPU temperature")
		return 0, false
	}

	return float64(temp), true
}
