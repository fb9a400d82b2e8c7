package wallpaper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dixieflatline76/Paperize/config"
	"github.com/dixieflatline76/Paperize/util/log"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// ScheduleOptions selects what one ScheduleWallpaperAlarm call does.
type ScheduleOptions struct {
	// Origin is the target whose alarm just fired, or TargetNone.
	Origin          Target
	ChangeImmediate bool
	CancelImmediate bool
	SetAlarm        bool
	FirstLaunch     bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerClock overrides the scheduler clock.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// WithNotifier sets where the next change time is announced.
func WithNotifier(n Notifier, app *config.AppConfig) SchedulerOption {
	return func(s *Scheduler) {
		s.notifier = n
		s.app = app
	}
}

// Scheduler arms and cancels the wallpaper alarms.
type Scheduler struct {
	cfg      *Config
	state    *StateStore
	alarms   AlarmService
	changer  *Changer
	notifier Notifier
	app      *config.AppConfig
	refresh  cron.Schedule
	now      func() time.Time

	// mu keeps cancel-then-reschedule sequences from interleaving.
	mu sync.Mutex

	retryMu sync.Mutex
	retries map[RequestCode]string
}

// NewScheduler wires a Scheduler.
func NewScheduler(cfg *Config, state *StateStore, alarms AlarmService, changer *Changer, opts ...SchedulerOption) *Scheduler {
	sched, err := cron.ParseStandard(RefreshSchedule)
	if err != nil {
		log.Fatalf("invalid refresh schedule %q: %v", RefreshSchedule, err)
	}
	s := &Scheduler{
		cfg:     cfg,
		state:   state,
		alarms:  alarms,
		changer: changer,
		refresh: sched,
		now:     time.Now,
		retries: make(map[RequestCode]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleWallpaperAlarm cancels, changes and arms according to opts.
// Change failures are logged and do not stop the alarms from being armed.
func (s *Scheduler) ScheduleWallpaperAlarm(ctx context.Context, req ScheduleRequest, opts ScheduleOptions) error {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.CancelImmediate || opts.SetAlarm {
		s.cancelForOrigin(opts.Origin)
	}

	if opts.ChangeImmediate {
		for _, t := range req.ChangeTargets() {
			if err := s.changer.Change(ctx, t, req); err != nil {
				log.Printf("[Scheduler] immediate change for %s failed: %v", t, err)
			}
		}
	}

	if !opts.SetAlarm {
		return nil
	}

	now := s.now()
	hints := s.state.Hints()
	for _, t := range req.AlarmTargets(opts.Origin) {
		at := NextAlarmTime(req, t, opts.FirstLaunch, hints, now)
		alarm := Alarm{
			ID:        uuid.NewString(),
			Code:      t.AlarmCode(),
			Kind:      AlarmChange,
			Target:    t,
			Request:   req,
			TriggerAt: at,
		}
		if err := s.alarms.RegisterExact(ctx, alarm); err != nil {
			log.Printf("[Scheduler] could not arm %s alarm: %v", t, err)
			s.cancelForOrigin(TargetNone)
			return fmt.Errorf("arm %s alarm: %w", t, err)
		}
		s.state.SetNext(t, at)
		log.Printf("[Scheduler] %s alarm armed for %s", t, at.Format(time.RFC3339))
	}

	s.announceNext(now)
	return nil
}

// cancelForOrigin cancels the primary alarms an origin implies. No origin
// means every change alarm.
func (s *Scheduler) cancelForOrigin(origin Target) {
	switch origin {
	case TargetHome, TargetLock, TargetSingle:
		s.alarms.Cancel(origin.AlarmCode())
	case TargetNone:
		s.alarms.Cancel(CodeHome)
		s.alarms.Cancel(CodeLock)
		s.alarms.Cancel(CodeSingle)
	case TargetRefresh:
	}
}

// CancelWallpaperAlarm cancels the alarms of the chosen surfaces and their
// idle retries. Cancelling both also drops the shared alarm, the refresh
// alarm and the deferred check.
func (s *Scheduler) CancelWallpaperAlarm(cancelLock, cancelHome bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancelLock {
		s.alarms.Cancel(CodeLock)
		s.Cancel(CodeLockRetry)
	}
	if cancelHome {
		s.alarms.Cancel(CodeHome)
		s.Cancel(CodeHomeRetry)
	}
	if cancelLock && cancelHome {
		s.alarms.Cancel(CodeSingle)
		s.Cancel(CodeSingleRetry)
		s.alarms.Cancel(CodeRefresh)
		s.alarms.Cancel(CodeDeferredCheck)
	}
}

// ScheduleRefresh arms the nightly catalog refresh, or cancels it when the
// setting is off.
func (s *Scheduler) ScheduleRefresh(ctx context.Context) error {
	if !s.cfg.GetNightlyRefresh() {
		s.alarms.Cancel(CodeRefresh)
		return nil
	}
	at := s.refresh.Next(s.now())
	err := s.alarms.Register(ctx, Alarm{
		ID:        uuid.NewString(),
		Code:      CodeRefresh,
		Kind:      AlarmRefresh,
		Target:    TargetRefresh,
		TriggerAt: at,
	})
	if err != nil {
		return fmt.Errorf("arm refresh alarm: %w", err)
	}
	log.Debugf("[Scheduler] refresh armed for %s", at.Format(time.RFC3339))
	return nil
}

// ArmRetry arms the idle-friendly retry for target.
func (s *Scheduler) ArmRetry(ctx context.Context, target Target, req ScheduleRequest, at time.Time) error {
	code := target.RetryCode()
	if code == CodeNone {
		return fmt.Errorf("%w: no retry slot for %s", ErrInvalidTarget, target)
	}
	a := Alarm{
		ID:        uuid.NewString(),
		Code:      code,
		Kind:      AlarmRetry,
		Target:    target,
		Request:   req,
		TriggerAt: at,
	}
	s.retryMu.Lock()
	defer s.retryMu.Unlock()
	if err := s.alarms.Register(ctx, a); err != nil {
		return err
	}
	s.retries[code] = a.ID
	return nil
}

// claimRetry reports whether a is the retry still armed under its code and
// forgets it. A retry that fires after being cancelled or replaced is not
// claimed.
func (s *Scheduler) claimRetry(a Alarm) bool {
	s.retryMu.Lock()
	defer s.retryMu.Unlock()
	if id, ok := s.retries[a.Code]; !ok || id != a.ID {
		return false
	}
	delete(s.retries, a.Code)
	return true
}

// ArmDeferredCheck arms the periodic check for pending deferred changes.
func (s *Scheduler) ArmDeferredCheck(ctx context.Context, at time.Time) error {
	return s.alarms.Register(ctx, Alarm{
		ID:        uuid.NewString(),
		Code:      CodeDeferredCheck,
		Kind:      AlarmDeferredCheck,
		TriggerAt: at,
	})
}

// Cancel drops a single alarm slot.
func (s *Scheduler) Cancel(code RequestCode) {
	s.retryMu.Lock()
	defer s.retryMu.Unlock()
	s.alarms.Cancel(code)
	delete(s.retries, code)
}

// UpdateWallpaper re-applies the current wallpapers of the enabled surfaces
// without advancing the rotation.
func (s *Scheduler) UpdateWallpaper(ctx context.Context) error {
	req := s.cfg.Request()
	var surfaces []Target
	if req.SetLock {
		surfaces = append(surfaces, TargetLock)
	}
	if req.SetHome {
		surfaces = append(surfaces, TargetHome)
	}
	return s.changer.Reapply(ctx, surfaces...)
}

// announceNext publishes the soonest armed change that is still ahead.
func (s *Scheduler) announceNext(now time.Time) {
	st := s.state.Snapshot()
	var soonest time.Time
	for _, t := range []time.Time{st.HomeNextTime, st.LockNextTime} {
		if t.After(now) && (soonest.IsZero() || t.Before(soonest)) {
			soonest = t
		}
	}
	if soonest.IsZero() {
		return
	}

	text := soonest.Format(NotificationTimeLayout)
	s.state.SetNextChangeText(text)
	if s.notifier == nil || (s.app != nil && !s.app.GetAppNotificationsEnabled()) {
		return
	}
	s.notifier.Notify(config.AppName, "Next wallpaper change: "+text)
}
