package wallpaper

import "time"

// Hints carries the persisted timestamps that anchor steady-state scheduling.
// Zero values mean "unknown".
type Hints struct {
	HomeLastSet time.Time
	LockLastSet time.Time
	// HomeNext and LockNext are the previously armed times, used only when
	// no wallpaper has been applied yet.
	HomeNext time.Time
	LockNext time.Time
}

// HomeSeparateSecond is the second-of-minute home alarms use under separate
// scheduling, so that home and lock never fire in the same instant.
const HomeSeparateSecond = 10

// NextAlarmTime computes the next trigger instant for target. The result is
// always strictly after now and depends only on its arguments.
func NextAlarmTime(req ScheduleRequest, target Target, firstLaunch bool, hints Hints, now time.Time) time.Time {
	interval := req.Interval(target)

	var next time.Time
	switch {
	case req.UseFixedStartTime:
		anchor := time.Date(now.Year(), now.Month(), now.Day(), req.StartTime.Hour, req.StartTime.Minute, 0, 0, now.Location())
		next = advancePast(anchor, interval, now)
	case firstLaunch:
		next = now.Add(interval)
	default:
		base := baseTime(target, hints)
		if base.IsZero() {
			base = now
		}
		next = advancePast(base.Add(interval), interval, now)
	}

	second := 0
	if target == TargetHome && req.ScheduleSeparately {
		second = HomeSeparateSecond
	}
	normalized := time.Date(next.Year(), next.Month(), next.Day(), next.Hour(), next.Minute(), second, 0, next.Location())

	if !normalized.After(now) {
		normalized = normalized.Add(time.Minute)
	}
	return normalized
}

// advancePast moves t forward in whole intervals until it is after now. The
// jump is computed directly so a long sleep does not cost one loop per
// missed interval.
func advancePast(t time.Time, interval time.Duration, now time.Time) time.Time {
	if t.After(now) {
		return t
	}
	missed := now.Sub(t)/interval + 1
	t = t.Add(missed * interval)
	for !t.After(now) {
		t = t.Add(interval)
	}
	return t
}

func baseTime(target Target, hints Hints) time.Time {
	var last time.Time
	switch target {
	case TargetHome:
		last = hints.HomeLastSet
	case TargetLock:
		last = hints.LockLastSet
	case TargetSingle:
		last = hints.HomeLastSet
		if hints.LockLastSet.After(last) {
			last = hints.LockLastSet
		}
	case TargetNone, TargetRefresh:
	}
	if !last.IsZero() {
		return last
	}

	if target == TargetLock {
		return hints.LockNext
	}
	return hints.HomeNext
}
