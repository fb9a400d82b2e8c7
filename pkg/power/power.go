// Package power reports whether the user is looking at the screen and
// announces screen off and on transitions.
package power

import (
	"context"
	"fmt"

	"github.com/dixieflatline76/Paperize/config"
	"github.com/dixieflatline76/Paperize/util/log"
)

// Handler receives screen transitions.
type Handler interface {
	OnScreenOff(ctx context.Context)
	OnScreenOn(ctx context.Context)
}

// Source is an interactivity source.
type Source interface {
	// IsInteractive reports whether the screen is on and unlocked.
	IsInteractive() bool
	// Run delivers transitions to h until ctx is done.
	Run(ctx context.Context, h Handler) error
	Close() error
}

// New picks the source named by cfg. The auto source falls back to a static
// one when no session bus screensaver is reachable.
func New(ctx context.Context, cfg config.PowerConfig) (Source, error) {
	switch cfg.Source {
	case config.PowerSourceStatic:
		return NewStatic(cfg.StaticInteractive), nil
	case config.PowerSourceDBus:
		return NewScreenSaver(ctx, cfg.ScreenSaverService)
	default:
		s, err := NewScreenSaver(ctx, cfg.ScreenSaverService)
		if err != nil {
			log.Printf("[Power] %v, assuming interactive=%t", err, cfg.StaticInteractive)
			return NewStatic(cfg.StaticInteractive), nil
		}
		return s, nil
	}
}

// Static is a source with a fixed answer and no transitions.
type Static struct {
	interactive bool
}

// NewStatic returns a Static source.
func NewStatic(interactive bool) *Static {
	return &Static{interactive: interactive}
}

func (s *Static) IsInteractive() bool { return s.interactive }

func (s *Static) Run(ctx context.Context, _ Handler) error {
	<-ctx.Done()
	return nil
}

func (s *Static) Close() error { return nil }

func (s *Static) String() string {
	return fmt.Sprintf("static(interactive=%t)", s.interactive)
}
