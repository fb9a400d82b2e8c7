// Package ui builds the system tray of the running scheduler.
package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/dixieflatline76/Paperize/config"
	"github.com/dixieflatline76/Paperize/pkg/wallpaper"
	"github.com/dixieflatline76/Paperize/util/log"
)

// Menu labels
const (
	ChangeNowLabel = "Change Now"
	PauseLabel     = "Pause"
	ResumeLabel    = "Resume"
	QuitLabel      = "Quit"
)

// TrayActions are the callbacks behind the tray menu. They run on the UI
// goroutine and must hand slow work to another goroutine.
type TrayActions struct {
	ChangeNow   func()
	TogglePause func()
	Quit        func()
}

// Tray owns the tray menu and sends the status notifications.
type Tray struct {
	app   fyne.App
	menu  *fyne.Menu
	pause *fyne.MenuItem
}

var _ wallpaper.Notifier = (*Tray)(nil)

// NewTray creates the tray menu. The menu is only installed when the app
// runs on a desktop driver; notifications work either way.
func NewTray(a fyne.App, paused bool, actions TrayActions) *Tray {
	change := fyne.NewMenuItem(ChangeNowLabel, actions.ChangeNow)
	change.Icon = theme.MediaSkipNextIcon()

	pause := fyne.NewMenuItem(pauseLabel(paused), actions.TogglePause)
	pause.Icon = pauseIcon(paused)

	quit := fyne.NewMenuItem(QuitLabel, actions.Quit)
	quit.Icon = theme.LogoutIcon()
	quit.IsQuit = true

	t := &Tray{
		app:   a,
		menu:  fyne.NewMenu(config.AppName, change, pause, fyne.NewMenuItemSeparator(), quit),
		pause: pause,
	}

	desk, ok := a.(desktop.App)
	if !ok {
		log.Println("Tray icon not supported on this platform")
		return t
	}
	desk.SetSystemTrayMenu(t.menu)
	desk.SetSystemTrayIcon(theme.MediaPhotoIcon())
	return t
}

func pauseLabel(paused bool) string {
	if paused {
		return ResumeLabel
	}
	return PauseLabel
}

func pauseIcon(paused bool) fyne.Resource {
	if paused {
		return theme.MediaPlayIcon()
	}
	return theme.MediaPauseIcon()
}

// SetPaused updates the pause item to match the changer state.
func (t *Tray) SetPaused(paused bool) {
	fyne.Do(func() {
		t.pause.Label = pauseLabel(paused)
		t.pause.Icon = pauseIcon(paused)
		t.menu.Refresh()
	})
}

// Notify shows a system notification.
func (t *Tray) Notify(title, body string) {
	t.app.SendNotification(fyne.NewNotification(title, body))
}

// Menu returns the tray menu.
func (t *Tray) Menu() *fyne.Menu {
	return t.menu
}
