package wallpaper

import (
	"context"
	"time"
)

// AlarmKind tells the dispatcher why an alarm was armed.
type AlarmKind string

// Alarm kinds
const (
	AlarmChange        AlarmKind = "change"
	AlarmRetry         AlarmKind = "retry"
	AlarmRefresh       AlarmKind = "refresh"
	AlarmDeferredCheck AlarmKind = "deferred_check"
)

// Alarm is the payload handed to the timer service and returned when it fires.
type Alarm struct {
	ID        string
	Code      RequestCode
	Kind      AlarmKind
	Target    Target
	Request   ScheduleRequest
	TriggerAt time.Time
}

// AlarmService arms and cancels alarms. Registering under a code that is
// already armed replaces the earlier alarm; cancelling an unknown code is a
// no-op.
type AlarmService interface {
	// RegisterExact arms a wall clock exact alarm. It fails with an error
	// wrapping ErrExactAlarmDenied when exact alarms are not allowed.
	RegisterExact(ctx context.Context, a Alarm) error
	// Register arms an alarm that may fire late.
	Register(ctx context.Context, a Alarm) error
	Cancel(code RequestCode)
	CanScheduleExact() bool
}

// Notifier shows a single replacing status notification.
type Notifier interface {
	Notify(title, body string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, body string)

// Notify calls f.
func (f NotifierFunc) Notify(title, body string) { f(title, body) }
