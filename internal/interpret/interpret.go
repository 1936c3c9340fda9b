// Package interpret turns a raw diagnostic snapshot into a health
// verdict. It is the only decision logic in the repository: threshold
// rules per component, worst-case combination into an overall status,
// recommendation generation and a 0-100 health score.
//
// Interpret is pure and total: identical input yields identical
// output, and malformed or missing readings degrade to the most benign
// classification instead of failing. Absence is never penalized - only
// the presence of a bad reading triggers a warning.
package interpret

import (
	"fmt"
	"sort"
	"strings"

	"codeberg.org/mutker/diagctl/internal/report"
)

// Classification thresholds.
const (
	cpuTempCriticalC = 90.0
	cpuTempWarningC  = 80.0
	diskCriticalPct  = 90.0
	diskWarningPct   = 80.0
	minHealthyRAMGB  = 8.0
	minHealthyCores  = 4

	smartPassed = "PASSED"

	criticalPenalty = 30
	warningPenalty  = 15
)

// Interpret evaluates the snapshot and returns the summary verdict.
func Interpret(r report.Report) report.Summary {
	temps := asMap(r["temps"])
	storage := asMap(r["storage"])
	system := asMap(r["system"])

	temperature := evalTemperature(temps)
	disk := evalStorage(storage)
	host := evalSystem(system)

	// Warning order is fixed: temperature, then storage, then system.
	warnings := make([]string, 0, len(temperature.warnings)+len(disk.warnings)+len(host.warnings))
	warnings = append(warnings, temperature.warnings...)
	warnings = append(warnings, disk.warnings...)
	warnings = append(warnings, host.warnings...)

	componentStatus := map[string]report.Severity{
		report.ComponentTemperatures: temperature.status,
		report.ComponentStorage:      disk.status,
		report.ComponentSystem:       host.status,
	}

	overall := temperature.status.Worse(disk.status).Worse(host.status)

	return report.Summary{
		Status:          overall,
		Warnings:        warnings,
		Recommendations: recommend(temperature, disk, host),
		ComponentStatus: componentStatus,
		HealthScore:     healthScore(componentStatus),
	}
}

type tempVerdict struct {
	status   report.Severity
	warnings []string
}

type storageVerdict struct {
	status      report.Severity
	warnings    []string
	usedPercent float64
	usedKnown   bool
	smartFailed bool
}

type systemVerdict struct {
	status   report.Severity
	warnings []string
	lowRAM   bool
	lowCores bool
}

func evalTemperature(temps map[string]any) tempVerdict {
	v := tempVerdict{status: report.Good, warnings: []string{}}

	cpu, ok := toFloat(temps["cpu_c"])
	if !ok {
		return v
	}

	switch {
	case cpu >= cpuTempCriticalC:
		v.status = report.Critical
		v.warnings = append(v.warnings, fmt.Sprintf("CPU temperature critical: %s°C", formatNumber(cpu)))
	case cpu >= cpuTempWarningC:
		v.status = report.Warning
		v.warnings = append(v.warnings, fmt.Sprintf("CPU temperature high: %s°C", formatNumber(cpu)))
	}

	return v
}

func evalStorage(storage map[string]any) storageVerdict {
	v := storageVerdict{status: report.Good, warnings: []string{}}

	usage := asMap(storage["usage"])
	if p, ok := toFloat(usage["used_percent"]); ok {
		v.usedPercent = p
		v.usedKnown = true
		switch {
		case p >= diskCriticalPct:
			v.status = report.Critical
			v.warnings = append(v.warnings, fmt.Sprintf("Disk space critically low: %s%% used", formatNumber(p)))
		case p >= diskWarningPct:
			v.status = report.Warning
			v.warnings = append(v.warnings, fmt.Sprintf("Disk space running low: %s%% used", formatNumber(p)))
		}
	}

	// A SMART failure forces the component to Critical regardless of
	// how much space is left. The usage warning above still stands.
	if failed := failedDrives(asMap(storage["smart"])); len(failed) > 0 {
		v.smartFailed = true
		v.status = report.Critical
		v.warnings = append(v.warnings, "SMART health check failed for drives: "+strings.Join(failed, ", "))
	}

	return v
}

// failedDrives returns the sorted names of drives whose SMART health
// field is anything other than the literal "PASSED". Sorting keeps the
// warning deterministic across map iteration orders.
func failedDrives(smart map[string]any) []string {
	var failed []string
	for drive, entry := range smart {
		data, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if healthy, _ := data["healthy"].(string); healthy != smartPassed {
			failed = append(failed, drive)
		}
	}
	sort.Strings(failed)

	return failed
}

func evalSystem(system map[string]any) systemVerdict {
	v := systemVerdict{status: report.Good, warnings: []string{}}

	if ram, ok := toFloat(system["RAM_GB"]); ok && ram < minHealthyRAMGB {
		v.lowRAM = true
		v.status = v.status.Worse(report.Warning)
		v.warnings = append(v.warnings, fmt.Sprintf("Low RAM detected: %s GB", formatNumber(ram)))
	}

	if cores, ok := toInt(system["Cores"]); ok && cores < minHealthyCores {
		v.lowCores = true
		v.status = v.status.Worse(report.Warning)
		v.warnings = append(v.warnings, fmt.Sprintf("Low CPU core count: %d cores", cores))
	}

	return v
}

// recommend assembles the recommendation list in fixed block order:
// disk usage, SMART, temperature, system. Blocks are independent and
// items are not deduplicated.
func recommend(temperature tempVerdict, disk storageVerdict, host systemVerdict) []string {
	recommendations := []string{}

	switch {
	case disk.usedKnown && disk.usedPercent >= diskCriticalPct:
		recommendations = append(recommendations,
			"Urgent: Free up disk space immediately",
			"Run disk cleanup utility",
			"Consider upgrading to a larger drive",
		)
	case disk.usedKnown && disk.usedPercent >= diskWarningPct:
		recommendations = append(recommendations,
			"Run disk cleanup to free up space",
			"Move large files to external storage",
			"Uninstall unused programs",
		)
	}

	if disk.smartFailed {
		recommendations = append(recommendations,
			"Back up important data immediately",
			"Consider replacing the failing drive",
			"Run extended drive diagnostics",
		)
	}

	if len(temperature.warnings) > 0 {
		recommendations = append(recommendations,
			"Check system cooling and clean dust from fans",
			"Ensure proper ventilation around the computer",
			"Consider updating thermal paste on CPU",
		)
	}

	if host.lowRAM {
		recommendations = append(recommendations, "Consider upgrading RAM for better performance")
	}
	if host.lowCores {
		recommendations = append(recommendations, "Consider upgrading CPU for better performance")
	}

	return recommendations
}

// healthScore deducts a flat penalty per component severity, floored
// at zero. Components are penalized independently, never compounded.
func healthScore(componentStatus map[string]report.Severity) int {
	score := 100
	for _, status := range componentStatus {
		switch status {
		case report.Critical:
			score -= criticalPenalty
		case report.Warning:
			score -= warningPenalty
		}
	}
	if score < 0 {
		score = 0
	}

	return score
}
