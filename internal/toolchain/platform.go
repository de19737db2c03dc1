package toolchain

import (
	"log/slog"
	"runtime"

	"submux/internal/logging"
)

// PlatformLinuxX64 is the one platform identifier provisioning supports.
const PlatformLinuxX64 = "linux-x64"

// HostSupported reports whether the running host matches the provisioned
// platform.
func HostSupported() bool {
	return runtime.GOOS == "linux" && runtime.GOARCH == "amd64"
}

// RuntimeID returns the platform identifier used for provisioning. On an
// unsupported host it warns and still returns the identifier, so callers
// uniformly fall back to PATH resolution instead of hard-failing.
func RuntimeID(logger *slog.Logger) string {
	if !HostSupported() {
		logging.NewComponentLogger(logger, "toolchain").Warn(
			"host platform is not supported for tool provisioning; tools resolve from PATH only",
			logging.String("os", runtime.GOOS),
			logging.String("arch", runtime.GOARCH),
		)
	}
	return PlatformLinuxX64
}
