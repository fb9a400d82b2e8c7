//go:build !darwin && !windows

package display

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dixieflatline76/Paperize/pkg/wallpaper"
)

// kdeScript sets the image on every Plasma desktop.
const kdeScript = `var allDesktops = desktops();
for (i = 0; i < allDesktops.length; i++) {
	d = allDesktops[i];
	d.wallpaperPlugin = "org.kde.image";
	d.currentConfigGroup = Array("Wallpaper", "org.kde.image", "General");
	d.writeConfig("Image", "file://%s");
}`

type desktopKind int

const (
	desktopUnknown desktopKind = iota
	desktopGNOME
	desktopKDE
	desktopXFCE
	desktopSway
)

// desktopEnv is the running desktop session as seen from its environment.
type desktopEnv struct {
	name    string
	kind    desktopKind
	wayland bool
}

func detectDesktop(getenv func(string) string) desktopEnv {
	name := getenv("XDG_CURRENT_DESKTOP")
	if name == "" {
		name = getenv("DESKTOP_SESSION")
	}
	env := desktopEnv{name: strings.ToLower(name), wayland: getenv("WAYLAND_DISPLAY") != ""}

	switch {
	case strings.Contains(env.name, "gnome"), strings.Contains(env.name, "unity"),
		strings.Contains(env.name, "cinnamon"), strings.Contains(env.name, "mutter"):
		env.kind = desktopGNOME
	case strings.Contains(env.name, "kde"):
		env.kind = desktopKDE
	case strings.Contains(env.name, "xfce") && !env.wayland:
		env.kind = desktopXFCE
	case strings.Contains(env.name, "sway"):
		env.kind = desktopSway
	}
	return env
}

func (d desktopEnv) supports(surface wallpaper.Target) bool {
	switch surface {
	case wallpaper.TargetHome:
		return d.kind != desktopUnknown
	case wallpaper.TargetLock:
		return d.kind == desktopGNOME || d.kind == desktopKDE
	default:
		return false
	}
}

// commands returns the command lines that put path on surface.
func (d desktopEnv) commands(path string, surface wallpaper.Target) ([][]string, error) {
	if !d.supports(surface) {
		return nil, fmt.Errorf("%w: %s on %q", wallpaper.ErrSurfaceUnsupported, surface, d.name)
	}
	uri := "file://" + path

	if surface == wallpaper.TargetLock {
		if d.kind == desktopKDE {
			return [][]string{{"kwriteconfig5", "--file", "kscreenlockerrc",
				"--group", "Greeter", "--group", "Wallpaper", "--group", "org.kde.image", "--group", "General",
				"--key", "Image", uri}}, nil
		}
		return [][]string{{"gsettings", "set", "org.gnome.desktop.screensaver", "picture-uri", uri}}, nil
	}

	switch d.kind {
	case desktopGNOME:
		return [][]string{
			{"gsettings", "set", "org.gnome.desktop.background", "picture-uri", uri},
			{"gsettings", "set", "org.gnome.desktop.background", "picture-uri-dark", uri},
		}, nil
	case desktopKDE:
		return [][]string{{"dbus-send", "--session", "--type=method_call",
			"--dest=org.kde.plasmashell", "/PlasmaShell", "org.kde.PlasmaShell.evaluateScript",
			"string:" + fmt.Sprintf(kdeScript, path)}}, nil
	case desktopXFCE:
		return [][]string{{"xfconf-query", "--channel", "xfce4-desktop",
			"--property", "/backdrop/screen0/monitor0/workspace0/last-image", "--set", path}}, nil
	default:
		return [][]string{{"swaymsg", "output", "*", "bg", path, "fill"}}, nil
	}
}

// desktopSetter drives the desktop's own configuration tools.
type desktopSetter struct {
	env desktopEnv
	run func(ctx context.Context, name string, args ...string) error
}

// NewSetter returns the setter for the current desktop session.
func NewSetter() Setter {
	return &desktopSetter{env: detectDesktop(os.Getenv), run: runCommand}
}

func (s *desktopSetter) Supports(surface wallpaper.Target) bool {
	return s.env.supports(surface)
}

func (s *desktopSetter) SetWallpaper(ctx context.Context, path string, surface wallpaper.Target) error {
	cmds, err := s.env.commands(path, surface)
	if err != nil {
		return err
	}
	for _, c := range cmds {
		if err := s.run(ctx, c[0], c[1:]...); err != nil {
			return err
		}
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
