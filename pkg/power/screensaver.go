package power

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dixieflatline76/Paperize/util"
	"github.com/dixieflatline76/Paperize/util/log"
	"github.com/godbus/dbus/v5"
)

// ErrSignalsClosed means the bus connection stopped delivering signals.
var ErrSignalsClosed = errors.New("dbus signal channel closed")

// ScreenSaver follows a freedesktop style screensaver service on the session
// bus. An active screensaver means the user is not interactive.
type ScreenSaver struct {
	conn    *dbus.Conn
	service string
	active  *util.SafeFlag
}

// NewScreenSaver connects to the session bus and reads the current state of
// service, for example org.freedesktop.ScreenSaver or org.gnome.ScreenSaver.
func NewScreenSaver(ctx context.Context, service string) (*ScreenSaver, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}

	s := &ScreenSaver{conn: conn, service: service, active: util.NewSafeBool()}
	var active bool
	obj := conn.Object(service, objectPath(service))
	if err := obj.CallWithContext(ctx, service+".GetActive", 0).Store(&active); err != nil {
		conn.Close()
		return nil, fmt.Errorf("querying %s: %w", service, err)
	}
	s.active.Set(active)
	log.Printf("[Power] following %s (active=%t)", service, active)
	return s, nil
}

// objectPath maps org.freedesktop.ScreenSaver to /org/freedesktop/ScreenSaver.
func objectPath(service string) dbus.ObjectPath {
	return dbus.ObjectPath("/" + strings.ReplaceAll(service, ".", "/"))
}

func (s *ScreenSaver) IsInteractive() bool {
	return !s.active.Value()
}

// Run subscribes to ActiveChanged and forwards transitions to h.
func (s *ScreenSaver) Run(ctx context.Context, h Handler) error {
	if err := s.conn.AddMatchSignalContext(ctx,
		dbus.WithMatchInterface(s.service),
		dbus.WithMatchMember("ActiveChanged"),
	); err != nil {
		return fmt.Errorf("subscribing to %s: %w", s.service, err)
	}

	signals := make(chan *dbus.Signal, 8)
	s.conn.Signal(signals)
	defer s.conn.RemoveSignal(signals)

	return s.watch(ctx, signals, h)
}

func (s *ScreenSaver) watch(ctx context.Context, signals <-chan *dbus.Signal, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				return ErrSignalsClosed
			}
			s.handle(ctx, sig, h)
		}
	}
}

func (s *ScreenSaver) handle(ctx context.Context, sig *dbus.Signal, h Handler) {
	if sig == nil || sig.Name != s.service+".ActiveChanged" || len(sig.Body) == 0 {
		return
	}
	active, ok := sig.Body[0].(bool)
	if !ok {
		log.Debugf("[Power] unexpected ActiveChanged body %v", sig.Body)
		return
	}
	if s.active.Value() == active {
		return
	}
	s.active.Set(active)

	if active {
		log.Debugf("[Power] screen off")
		h.OnScreenOff(ctx)
	} else {
		log.Debugf("[Power] screen on")
		h.OnScreenOn(ctx)
	}
}

func (s *ScreenSaver) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
