package wallpaper

import "fmt"

// Target identifies what an alarm or a change applies to.
type Target string

// Targets. TargetNone is the zero value and means "no origin".
const (
	TargetNone    Target = ""
	TargetHome    Target = "home"
	TargetLock    Target = "lock"
	TargetSingle  Target = "single"
	TargetRefresh Target = "refresh"
)

// ParseTarget converts a persisted or user supplied string into a Target.
func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetNone, TargetHome, TargetLock, TargetSingle, TargetRefresh:
		return t, nil
	default:
		return TargetNone, fmt.Errorf("%w: unknown target %q", ErrInvalidTarget, s)
	}
}

func (t Target) String() string {
	if t == TargetNone {
		return "none"
	}
	return string(t)
}

// IsSurface reports whether t names a single display surface.
func (t Target) IsSurface() bool {
	switch t {
	case TargetHome, TargetLock:
		return true
	case TargetNone, TargetSingle, TargetRefresh:
		return false
	}
	return false
}

// Surfaces returns the display surfaces a change for t touches, given which
// surfaces the request enables. Lock comes first, matching the apply order.
func (t Target) Surfaces(req ScheduleRequest) []Target {
	switch t {
	case TargetHome:
		return []Target{TargetHome}
	case TargetLock:
		return []Target{TargetLock}
	case TargetSingle:
		var out []Target
		if req.SetLock {
			out = append(out, TargetLock)
		}
		if req.SetHome {
			out = append(out, TargetHome)
		}
		return out
	case TargetNone, TargetRefresh:
		return nil
	}
	return nil
}

// RequestCode identifies an armed alarm slot. Registering an alarm with a
// code replaces any alarm already armed under that code.
type RequestCode int

// Alarm slots. Idle retries use their own codes so that a retry is never
// silently overwritten by, or mistaken for, the primary alarm.
const (
	CodeNone RequestCode = iota
	CodeHome
	CodeLock
	CodeSingle
	CodeRefresh
	CodeHomeRetry
	CodeLockRetry
	CodeSingleRetry
	CodeDeferredCheck
)

var requestCodeNames = map[RequestCode]string{
	CodeNone:          "none",
	CodeHome:          "home",
	CodeLock:          "lock",
	CodeSingle:        "single",
	CodeRefresh:       "refresh",
	CodeHomeRetry:     "home-retry",
	CodeLockRetry:     "lock-retry",
	CodeSingleRetry:   "single-retry",
	CodeDeferredCheck: "deferred-check",
}

func (c RequestCode) String() string {
	if name, ok := requestCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// AlarmCode returns the primary alarm slot for t.
func (t Target) AlarmCode() RequestCode {
	switch t {
	case TargetHome:
		return CodeHome
	case TargetLock:
		return CodeLock
	case TargetSingle:
		return CodeSingle
	case TargetRefresh:
		return CodeRefresh
	case TargetNone:
		return CodeNone
	}
	return CodeNone
}

// RetryCode returns the idle-friendly retry slot for t.
func (t Target) RetryCode() RequestCode {
	switch t {
	case TargetHome:
		return CodeHomeRetry
	case TargetLock:
		return CodeLockRetry
	case TargetSingle:
		return CodeSingleRetry
	case TargetNone, TargetRefresh:
		return CodeNone
	}
	return CodeNone
}

// RetryCodes lists every idle retry slot.
func RetryCodes() []RequestCode {
	return []RequestCode{CodeHomeRetry, CodeLockRetry, CodeSingleRetry}
}
