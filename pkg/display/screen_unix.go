//go:build !darwin && !windows

package display

import (
	"fmt"
	"os/exec"
)

// ScreenDimensions returns the desktop size reported by xdpyinfo.
func ScreenDimensions() (int, int, error) {
	out, err := exec.Command("xdpyinfo").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get screen resolution: %w", err)
	}
	return parseXdpyinfo(string(out))
}
