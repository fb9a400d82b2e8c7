//go:build darwin

package display

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/dixieflatline76/Paperize/pkg/wallpaper"
)

// macSetter uses AppleScript. The lock screen follows the desktop picture on
// macOS and cannot be set on its own.
type macSetter struct{}

// NewSetter returns the macOS setter.
func NewSetter() Setter {
	return macSetter{}
}

func (macSetter) Supports(surface wallpaper.Target) bool {
	return surface == wallpaper.TargetHome
}

func (macSetter) SetWallpaper(ctx context.Context, path string, surface wallpaper.Target) error {
	if surface != wallpaper.TargetHome {
		return fmt.Errorf("%w: %s on macOS", wallpaper.ErrSurfaceUnsupported, surface)
	}
	script := fmt.Sprintf(`tell application "System Events" to tell every desktop to set picture to POSIX file %q`, path)
	if out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, out)
	}
	return nil
}
