//go:build linux

package hotkey

import "golang.design/x/hotkey"

// Mod1 is Alt on X11.
const (
	modCtrl = hotkey.ModCtrl
	modAlt  = hotkey.Mod1

	keyRight = hotkey.KeyRight
	keyUp    = hotkey.KeyUp
)
