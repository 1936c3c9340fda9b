package collector

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	"codeberg.org/mutker/diagctl/internal/logger"
)

// Windows11 collects Windows 11 readiness flags: TPM 2.0 presence,
// Secure Boot state and OS build number. On other platforms every flag
// is reported as unknown.
type Windows11 struct{}

func NewWindows11() *Windows11 {
	return &Windows11{}
}

func (*Windows11) Key() string {
	return "windows11"
}

func (*Windows11) Describe() string {
	return "Checking Windows 11 compatibility"
}

func (*Windows11) Collect(ctx context.Context) map[string]any {
	if runtime.GOOS != "windows" {
		return map[string]any{
			"TPM_2_0":    nil,
			"SecureBoot": nil,
			"OS_Build":   "Unknown",
		}
	}

	return map[string]any{
		"TPM_2_0":    checkTPM(ctx),
		"SecureBoot": checkSecureBoot(ctx),
		"OS_Build":   osBuild(ctx),
	}
}

func runPowerShell(ctx context.Context, command string) (string, error) {
	out, err := exec.CommandContext(ctx, "powershell", "-Command", command).Output()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(out)), nil
}

// checkTPM returns true when TPM 2.0 is present, false when not, nil
// when the state cannot be determined.
func checkTPM(ctx context.Context) any {
	out, err := runPowerShell(ctx, "(Get-Tpm).SpecVersion")
	if err != nil {
		logger.Debug().Err(err).Msg("TPM query failed")
		return nil
	}

	return strings.Contains(out, "2.0")
}

func checkSecureBoot(ctx context.Context) any {
	out, err := runPowerShell(ctx, "Confirm-SecureBootUEFI")
	if err != nil {
		logger.Debug().Err(err).Msg("Secure Boot query failed")
		return nil
	}

	return strings.Contains(out, "True")
}

func osBuild(ctx context.Context) string {
	out, err := runPowerShell(ctx, "(Get-CimInstance Win32_OperatingSystem).BuildNumber")
	if err != nil || out == "" {
		logger.Debug().Err(err).Msg("OS build query failed")
		return "Unknown"
	}

	return out
}
