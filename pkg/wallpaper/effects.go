package wallpaper

import "time"

// EventType is the kind of input the dispatcher reacts to.
type EventType string

// Events
const (
	EventAlarmFired       EventType = "AlarmFired"
	EventScreenOff        EventType = "ScreenOff"
	EventScreenOn         EventType = "ScreenOn"
	EventDeferredConsumed EventType = "DeferredConsumed"
)

// Event is one input to Decide. Alarm is set for EventAlarmFired and Change
// for EventDeferredConsumed.
type Event struct {
	Type   EventType
	Alarm  Alarm
	Change DeferredChange
}

// Env is the snapshot of settings and device state an event is decided in.
type Env struct {
	Now                time.Time
	Enabled            bool
	OnlyNonInteractive bool
	SkipNonInteractive bool
	Interactive        bool
	HasPending         bool
	// DeferredSession is set once a change was deferred during the current
	// screen session.
	DeferredSession bool
}

// EffectType is the kind of side effect the dispatcher performs.
type EffectType string

// Effects
const (
	EffectMarkFired        EffectType = "MarkFired"
	EffectChange           EffectType = "Change"
	EffectReschedule       EffectType = "Reschedule"
	EffectSaveDeferred     EffectType = "SaveDeferred"
	EffectDiscardDeferred  EffectType = "DiscardDeferred"
	EffectDrainDeferred    EffectType = "DrainDeferred"
	EffectArmRetry         EffectType = "ArmRetry"
	EffectArmDeferredCheck EffectType = "ArmDeferredCheck"
	EffectCancelAlarm      EffectType = "CancelAlarm"
	EffectSetSession       EffectType = "SetSession"
	EffectResetSession     EffectType = "ResetSession"
	EffectRefreshCatalog   EffectType = "RefreshCatalog"
	EffectScheduleRefresh  EffectType = "ScheduleRefresh"
)

// Effect is a side effect produced by Decide and carried out by the
// Dispatcher. Only the fields relevant to Type are set.
type Effect struct {
	Type    EffectType
	Target  Target
	Origin  Target
	Request ScheduleRequest
	Code    RequestCode
	At      time.Time
	// Change is the deferred change an EffectChange replays, or the one an
	// EffectSaveDeferred stores.
	Change *DeferredChange
}

// Decide maps an event to the effects that handle it. It performs no I/O.
func Decide(ev Event, env Env) []Effect {
	switch ev.Type {
	case EventAlarmFired:
		return decideAlarm(ev.Alarm, env)
	case EventScreenOff:
		effects := []Effect{{Type: EffectResetSession}}
		if env.Enabled && env.HasPending {
			effects = append(effects,
				Effect{Type: EffectCancelAlarm, Code: CodeDeferredCheck},
				Effect{Type: EffectDrainDeferred},
			)
		}
		return effects
	case EventScreenOn:
		effects := []Effect{{Type: EffectResetSession}}
		for _, code := range RetryCodes() {
			effects = append(effects, Effect{Type: EffectCancelAlarm, Code: code})
		}
		return append(effects, Effect{Type: EffectCancelAlarm, Code: CodeDeferredCheck})
	case EventDeferredConsumed:
		c := ev.Change
		return []Effect{
			{Type: EffectChange, Target: c.Target, Request: c.ScheduleRequest, Change: &c},
			{Type: EffectCancelAlarm, Code: c.Origin.RetryCode()},
			{Type: EffectCancelAlarm, Code: CodeDeferredCheck},
			{Type: EffectReschedule, Request: c.ScheduleRequest, Origin: c.Origin},
		}
	}
	return nil
}

func decideAlarm(a Alarm, env Env) []Effect {
	switch a.Kind {
	case AlarmRefresh:
		return []Effect{
			{Type: EffectRefreshCatalog},
			{Type: EffectScheduleRefresh},
		}
	case AlarmDeferredCheck:
		switch {
		case !env.Enabled || !env.HasPending:
			return nil
		case env.Interactive:
			return []Effect{{Type: EffectArmDeferredCheck, At: env.Now.Add(DeferredCheckDelay)}}
		default:
			return []Effect{{Type: EffectDrainDeferred}}
		}
	case AlarmChange, AlarmRetry:
		return decideChange(a, env)
	}
	return nil
}

func decideChange(a Alarm, env Env) []Effect {
	if !env.Enabled {
		return nil
	}
	target, req := a.Target, a.Request
	effects := []Effect{{Type: EffectMarkFired, At: env.Now}}

	switch {
	case env.OnlyNonInteractive && env.Interactive:
		effects = append(effects, Effect{
			Type: EffectSaveDeferred,
			Change: &DeferredChange{
				Target:          target,
				ScheduleRequest: req,
				Origin:          target,
				CreatedAt:       env.Now,
			},
		})
		wait := req.Interval(target)
		if wait < MinRetryInterval {
			wait = MinRetryInterval
		}
		effects = append(effects, Effect{Type: EffectArmRetry, Target: target, Request: req, At: env.Now.Add(wait)})
		if !env.DeferredSession {
			effects = append(effects,
				Effect{Type: EffectArmDeferredCheck, At: env.Now.Add(DeferredCheckDelay)},
				Effect{Type: EffectSetSession},
			)
		}
		return effects

	case !env.OnlyNonInteractive && env.SkipNonInteractive && !env.Interactive:
		return append(effects, Effect{Type: EffectReschedule, Request: req, Origin: target})
	}

	effects = append(effects,
		Effect{Type: EffectChange, Target: target, Request: req},
		Effect{Type: EffectCancelAlarm, Code: target.RetryCode()},
		Effect{Type: EffectDiscardDeferred, Target: target},
		Effect{Type: EffectReschedule, Request: req, Origin: target},
	)
	return effects
}
