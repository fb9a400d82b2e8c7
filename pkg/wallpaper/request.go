package wallpaper

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// StartTime is the wall clock phase reference for fixed start scheduling.
type StartTime struct {
	Hour   int `json:"start_hour" validate:"min=0,max=23"`
	Minute int `json:"start_minute" validate:"min=0,max=59"`
}

// ScheduleRequest describes what the user wants scheduled. It is a value and
// is never mutated once built.
type ScheduleRequest struct {
	HomeInterval       int       `json:"home_interval" validate:"min=1,max=10080"`
	LockInterval       int       `json:"lock_interval" validate:"min=1,max=10080"`
	ScheduleSeparately bool      `json:"schedule_separately"`
	SetHome            bool      `json:"set_home"`
	SetLock            bool      `json:"set_lock"`
	UseFixedStartTime  bool      `json:"use_fixed_start_time"`
	StartTime          StartTime `json:"start_time"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks intervals and the start time.
func (r ScheduleRequest) Validate() error {
	if err := requestValidator().Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// WithDefaults returns a copy with missing intervals set to the default.
func (r ScheduleRequest) WithDefaults() ScheduleRequest {
	if r.HomeInterval <= 0 {
		r.HomeInterval = DefaultIntervalMinutes
	}
	if r.LockInterval <= 0 {
		r.LockInterval = DefaultIntervalMinutes
	}
	return r
}

// IntervalMinutes returns the interval governing t. Lock uses its own
// interval only under separate scheduling.
func (r ScheduleRequest) IntervalMinutes(t Target) int {
	if t == TargetLock && r.ScheduleSeparately {
		return r.LockInterval
	}
	return r.HomeInterval
}

// Interval is IntervalMinutes as a duration, falling back to the default
// for non-positive values.
func (r ScheduleRequest) Interval(t Target) time.Duration {
	m := r.IntervalMinutes(t)
	if m <= 0 {
		m = DefaultIntervalMinutes
	}
	return time.Duration(m) * time.Minute
}

// AlarmTargets returns the targets that get their own alarm, narrowed by
// origin when a single surface's alarm just fired.
func (r ScheduleRequest) AlarmTargets(origin Target) []Target {
	if !r.ScheduleSeparately {
		if r.SetHome || r.SetLock {
			return []Target{TargetSingle}
		}
		return nil
	}

	scheduleLock := r.SetLock
	scheduleHome := r.SetHome
	switch origin {
	case TargetHome:
		scheduleLock, scheduleHome = false, true
	case TargetLock:
		scheduleLock, scheduleHome = true, false
	case TargetNone, TargetSingle, TargetRefresh:
	}

	var out []Target
	if scheduleLock {
		out = append(out, TargetLock)
	}
	if scheduleHome {
		out = append(out, TargetHome)
	}
	return out
}

// ChangeTargets returns the targets changed by an immediate change.
func (r ScheduleRequest) ChangeTargets() []Target {
	if r.ScheduleSeparately {
		var out []Target
		if r.SetLock {
			out = append(out, TargetLock)
		}
		if r.SetHome {
			out = append(out, TargetHome)
		}
		return out
	}
	if r.SetHome || r.SetLock {
		return []Target{TargetSingle}
	}
	return nil
}
