//go:build darwin

package hotkey

import "golang.design/x/hotkey"

const (
	modCtrl = hotkey.ModCmd
	modAlt  = hotkey.ModOption

	keyRight = hotkey.KeyRight
	keyUp    = hotkey.KeyUp
)
