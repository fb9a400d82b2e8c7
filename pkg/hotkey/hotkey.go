// Package hotkey binds the global keyboard shortcuts.
package hotkey

import (
	"context"
	"time"

	"github.com/dixieflatline76/Paperize/util/log"
	"golang.design/x/hotkey"
)

// debounce is the pause after handling a key press.
const debounce = 200 * time.Millisecond

// Actions are the callbacks bound to the shortcuts.
type Actions struct {
	// ChangeNow advances the wallpaper on every enabled surface.
	ChangeNow func()
	// TogglePause flips the changer between paused and running.
	TogglePause func()
}

type binding struct {
	name   string
	mods   []hotkey.Modifier
	key    hotkey.Key
	action func()
}

func bindings(a Actions) []binding {
	return []binding{
		// Ctrl + Alt + Right Arrow
		{name: "Change Wallpaper", mods: []hotkey.Modifier{modCtrl, modAlt}, key: keyRight, action: a.ChangeNow},
		// Ctrl + Alt + Up Arrow
		{name: "Pause/Resume Wallpaper", mods: []hotkey.Modifier{modCtrl, modAlt}, key: keyUp, action: a.TogglePause},
	}
}

// StartListeners registers the shortcuts and handles key presses until ctx
// is done. Shortcuts that cannot be registered are logged and skipped.
func StartListeners(ctx context.Context, a Actions) {
	for _, b := range bindings(a) {
		if b.action == nil {
			continue
		}
		hk := hotkey.New(b.mods, b.key)
		if err := hk.Register(); err != nil {
			log.Printf("Failed to register hotkey %s: %v", b.name, err)
			continue
		}
		log.Printf("Registered hotkey: %s", b.name)

		go func(hk *hotkey.Hotkey, b binding) {
			listen(ctx, hk.Keydown(), b.name, b.action, debounce)
			if err := hk.Unregister(); err != nil {
				log.Debugf("[Hotkey] unregister %s: %v", b.name, err)
			}
		}(hk, b)
	}
}

func listen(ctx context.Context, keydown <-chan hotkey.Event, name string, action func(), pause time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			log.Debugf("Hotkey pressed: %s", name)
			action()
			time.Sleep(pause)
		}
	}
}
