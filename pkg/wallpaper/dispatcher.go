package wallpaper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dixieflatline76/Paperize/util"
	"github.com/dixieflatline76/Paperize/util/log"
	"golang.org/x/time/rate"
)

// Interactivity reports whether the user is currently looking at the screen.
type Interactivity interface {
	IsInteractive() bool
}

// InteractivityFunc adapts a function to Interactivity.
type InteractivityFunc func() bool

// IsInteractive calls f.
func (f InteractivityFunc) IsInteractive() bool { return f() }

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherClock overrides the dispatcher clock.
func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// WithRefresher sets the catalog refresher run by the nightly alarm.
func WithRefresher(r Refresher) DispatcherOption {
	return func(d *Dispatcher) { d.refresher = r }
}

// WithChangeNowLimit bounds how often manual changes may run.
func WithChangeNowLimit(every time.Duration, burst int) DispatcherOption {
	return func(d *Dispatcher) { d.limiter = rate.NewLimiter(rate.Every(every), burst) }
}

// Dispatcher turns alarm and screen events into scheduler and changer calls.
// Executions touching the same surface never overlap.
type Dispatcher struct {
	cfg       *Config
	state     *StateStore
	scheduler *Scheduler
	changer   *Changer
	deferred  *DeferredStore
	power     Interactivity
	refresher Refresher
	limiter   *rate.Limiter
	session   *util.SafeFlag
	now       func() time.Time

	lockMu sync.Mutex
	homeMu sync.Mutex
}

// NewDispatcher wires a Dispatcher.
func NewDispatcher(cfg *Config, state *StateStore, scheduler *Scheduler, changer *Changer, deferred *DeferredStore, power Interactivity, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		cfg:       cfg,
		state:     state,
		scheduler: scheduler,
		changer:   changer,
		deferred:  deferred,
		power:     power,
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		session:   util.NewSafeBool(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) env() Env {
	return Env{
		Now:                d.now(),
		Enabled:            d.cfg.GetEnableChanger(),
		OnlyNonInteractive: d.cfg.GetOnlyNonInteractive(),
		SkipNonInteractive: d.cfg.GetSkipNonInteractive(),
		Interactive:        d.power.IsInteractive(),
		HasPending:         d.deferred.HasPending(),
		DeferredSession:    d.session.Value(),
	}
}

// lockSurfaces acquires the surface locks target touches, lock before home,
// and returns the matching unlock.
func (d *Dispatcher) lockSurfaces(target Target) func() {
	var mus []*sync.Mutex
	switch target {
	case TargetLock:
		mus = []*sync.Mutex{&d.lockMu}
	case TargetHome:
		mus = []*sync.Mutex{&d.homeMu}
	case TargetSingle, TargetNone:
		mus = []*sync.Mutex{&d.lockMu, &d.homeMu}
	case TargetRefresh:
	}
	for _, mu := range mus {
		mu.Lock()
	}
	return func() {
		for i := len(mus) - 1; i >= 0; i-- {
			mus[i].Unlock()
		}
	}
}

// OnAlarmFired handles a fired alarm.
func (d *Dispatcher) OnAlarmFired(ctx context.Context, a Alarm) {
	log.Debugf("[Dispatcher] alarm %s (%s) fired for %s", a.Code, a.Kind, a.Target)
	if a.Kind == AlarmChange || a.Kind == AlarmRetry {
		defer d.lockSurfaces(a.Target)()
	}
	if a.Kind == AlarmRetry && !d.scheduler.claimRetry(a) {
		log.Debugf("[Dispatcher] dropping cancelled retry %s", a.ID)
		return
	}
	d.execute(ctx, Decide(Event{Type: EventAlarmFired, Alarm: a}, d.env()))
}

// OnScreenOff handles the screen turning off.
func (d *Dispatcher) OnScreenOff(ctx context.Context) {
	log.Debugf("[Dispatcher] screen off")
	d.execute(ctx, Decide(Event{Type: EventScreenOff}, d.env()))
}

// OnScreenOn handles the screen turning on.
func (d *Dispatcher) OnScreenOn(ctx context.Context) {
	log.Debugf("[Dispatcher] screen on")
	d.execute(ctx, Decide(Event{Type: EventScreenOn}, d.env()))
}

// Boot arms the alarms for the current settings. Call once at startup.
func (d *Dispatcher) Boot(ctx context.Context, firstLaunch bool) error {
	if err := d.scheduler.ScheduleRefresh(ctx); err != nil {
		log.Printf("[Dispatcher] %v", err)
	}
	if !d.cfg.GetEnableChanger() {
		log.Print("[Dispatcher] wallpaper changer is paused")
		return nil
	}
	return d.scheduler.ScheduleWallpaperAlarm(ctx, d.cfg.Request(), ScheduleOptions{
		SetAlarm:    true,
		FirstLaunch: firstLaunch,
	})
}

// Reschedule re-arms every alarm after a settings change.
func (d *Dispatcher) Reschedule(ctx context.Context) error {
	defer d.lockSurfaces(TargetNone)()
	if !d.cfg.GetEnableChanger() {
		d.scheduler.CancelWallpaperAlarm(true, true)
		return nil
	}
	return d.scheduler.ScheduleWallpaperAlarm(ctx, d.cfg.Request(), ScheduleOptions{SetAlarm: true})
}

// ChangeNow changes every enabled surface immediately and restarts the
// schedule from now. It reports false when called again too quickly.
func (d *Dispatcher) ChangeNow(ctx context.Context) (bool, error) {
	if !d.limiter.Allow() {
		log.Debugf("[Dispatcher] change now ignored, too soon")
		return false, nil
	}
	defer d.lockSurfaces(TargetNone)()
	req := d.cfg.Request()
	if err := d.deferred.Clear(); err != nil {
		log.Printf("[Dispatcher] %v", err)
	}
	return true, d.scheduler.ScheduleWallpaperAlarm(ctx, req, ScheduleOptions{
		ChangeImmediate: true,
		SetAlarm:        d.cfg.GetEnableChanger(),
	})
}

// SetEnabled pauses or resumes the changer.
func (d *Dispatcher) SetEnabled(ctx context.Context, enabled bool) error {
	d.cfg.SetEnableChanger(enabled)
	if !enabled {
		defer d.lockSurfaces(TargetNone)()
		d.scheduler.CancelWallpaperAlarm(true, true)
		if err := d.deferred.Clear(); err != nil {
			log.Printf("[Dispatcher] %v", err)
		}
		d.session.Set(false)
		log.Print("[Dispatcher] wallpaper changer paused")
		return nil
	}
	log.Print("[Dispatcher] wallpaper changer resumed")
	if err := d.scheduler.ScheduleRefresh(ctx); err != nil {
		log.Printf("[Dispatcher] %v", err)
	}
	return d.Reschedule(ctx)
}

// TogglePaused flips the enable switch and returns the new enabled state.
func (d *Dispatcher) TogglePaused(ctx context.Context) (bool, error) {
	enabled := !d.cfg.GetEnableChanger()
	return enabled, d.SetEnabled(ctx, enabled)
}

// drain consumes and executes pending deferred changes until none are left
// or one had to be put back.
func (d *Dispatcher) drain(ctx context.Context) {
	for {
		c, ok, err := d.deferred.Consume()
		if err != nil {
			log.Printf("[Dispatcher] consume deferred change: %v", err)
			return
		}
		if !ok {
			return
		}
		log.Printf("[Dispatcher] replaying deferred %s change from %s", c.Target, c.CreatedAt.Format(time.RFC3339))
		unlock := d.lockSurfaces(c.Target)
		completed := d.execute(ctx, Decide(Event{Type: EventDeferredConsumed, Change: c}, d.env()))
		unlock()
		if !completed {
			return
		}
	}
}

// execute carries out effects in order. It returns false when it stopped
// early because a replayed change was put back.
func (d *Dispatcher) execute(ctx context.Context, effects []Effect) bool {
	for _, e := range effects {
		switch e.Type {
		case EffectMarkFired:
			d.state.MarkAlarmFired(e.At)
		case EffectChange:
			err := d.changer.Change(ctx, e.Target, e.Request)
			if err == nil {
				continue
			}
			log.Printf("[Dispatcher] %s change failed: %v", e.Target, err)
			if e.Change != nil && errors.Is(err, ErrApplyFailed) {
				if _, rerr := d.deferred.Restore(*e.Change); rerr != nil {
					log.Printf("[Dispatcher] could not keep deferred change: %v", rerr)
				}
				return false
			}
		case EffectReschedule:
			err := d.scheduler.ScheduleWallpaperAlarm(ctx, e.Request, ScheduleOptions{Origin: e.Origin, SetAlarm: true})
			if err != nil {
				log.Printf("[Dispatcher] re-arm %s failed: %v", e.Origin, err)
			}
		case EffectSaveDeferred:
			if err := d.deferred.Save(*e.Change); err != nil {
				log.Printf("[Dispatcher] defer %s change: %v", e.Change.Target, err)
			}
		case EffectDiscardDeferred:
			if err := d.deferred.Discard(e.Target); err != nil {
				log.Printf("[Dispatcher] %v", err)
			}
		case EffectDrainDeferred:
			d.drain(ctx)
		case EffectArmRetry:
			if err := d.scheduler.ArmRetry(ctx, e.Target, e.Request, e.At); err != nil {
				log.Printf("[Dispatcher] arm %s retry: %v", e.Target, err)
			}
		case EffectArmDeferredCheck:
			if err := d.scheduler.ArmDeferredCheck(ctx, e.At); err != nil {
				log.Printf("[Dispatcher] arm deferred check: %v", err)
			}
		case EffectCancelAlarm:
			if e.Code != CodeNone {
				d.scheduler.Cancel(e.Code)
			}
		case EffectSetSession:
			d.session.Set(true)
		case EffectResetSession:
			d.session.Set(false)
		case EffectRefreshCatalog:
			if d.refresher == nil {
				continue
			}
			if err := d.changer.Refresh(ctx, d.refresher); err != nil {
				log.Printf("[Dispatcher] catalog refresh: %v", err)
			}
		case EffectScheduleRefresh:
			if err := d.scheduler.ScheduleRefresh(ctx); err != nil {
				log.Printf("[Dispatcher] %v", err)
			}
		}
	}
	return true
}
