//go:build darwin

package display

import (
	"fmt"
	"os/exec"
)

// ScreenDimensions returns the main display size reported by system_profiler.
func ScreenDimensions() (int, int, error) {
	out, err := exec.Command("system_profiler", "SPDisplaysDataType", "-json").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to run system_profiler: %w", err)
	}
	return parseSystemProfiler(out)
}
