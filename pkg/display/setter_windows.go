//go:build windows

package display

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/dixieflatline76/Paperize/pkg/wallpaper"
	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	systemParametersInfo = user32.NewProc("SystemParametersInfoW")
	getSystemMetrics     = user32.NewProc("GetSystemMetrics")
)

// Windows API constants
const (
	spiSetDeskWallpaper = 0x0014
	spifUpdateIniFile   = 0x01
	spifSendChange      = 0x02
	smCXScreen          = 0
	smCYScreen          = 1
)

// windowsSetter sets the desktop through SystemParametersInfo. The lock
// screen image is owned by the system and not settable from a desktop app.
type windowsSetter struct{}

// NewSetter returns the Windows setter.
func NewSetter() Setter {
	return windowsSetter{}
}

func (windowsSetter) Supports(surface wallpaper.Target) bool {
	return surface == wallpaper.TargetHome
}

func (windowsSetter) SetWallpaper(ctx context.Context, path string, surface wallpaper.Target) error {
	if surface != wallpaper.TargetHome {
		return fmt.Errorf("%w: %s on Windows", wallpaper.ErrSurfaceUnsupported, surface)
	}
	if err := checkContext(ctx); err != nil {
		return err
	}
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	ret, _, err := systemParametersInfo.Call(
		uintptr(spiSetDeskWallpaper),
		0,
		uintptr(unsafe.Pointer(p)),
		uintptr(spifUpdateIniFile|spifSendChange),
	)
	if ret == 0 {
		return fmt.Errorf("SystemParametersInfoW: %w", err)
	}
	return nil
}

// ScreenDimensions returns the primary desktop size in pixels.
func ScreenDimensions() (int, int, error) {
	w, _, _ := getSystemMetrics.Call(uintptr(smCXScreen))
	h, _, _ := getSystemMetrics.Call(uintptr(smCYScreen))
	if w == 0 || h == 0 {
		return 0, 0, fmt.Errorf("GetSystemMetrics returned %dx%d", w, h)
	}
	return int(w), int(h), nil
}
