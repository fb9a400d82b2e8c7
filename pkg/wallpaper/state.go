package wallpaper

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// ScheduleState is the persisted bookkeeping of the scheduler. Zero times
// mean "never".
type ScheduleState struct {
	HomeNextTime         time.Time
	LockNextTime         time.Time
	HomeLastSetTime      time.Time
	LockLastSetTime      time.Time
	CurrentHomeWallpaper string
	CurrentLockWallpaper string
}

// StateStore serializes every read and write of ScheduleState.
type StateStore struct {
	prefs fyne.Preferences
	mu    sync.Mutex
}

// NewStateStore returns a store persisting into p.
func NewStateStore(p fyne.Preferences) *StateStore {
	return &StateStore{prefs: p}
}

func (s *StateStore) getTime(key string) time.Time {
	raw := s.prefs.StringWithFallback(key, "")
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *StateStore) setTime(key string, t time.Time) {
	if t.IsZero() {
		s.prefs.RemoveValue(key)
		return
	}
	s.prefs.SetString(key, t.Format(time.RFC3339Nano))
}

// Snapshot returns a consistent copy of the state.
func (s *StateStore) Snapshot() ScheduleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ScheduleState{
		HomeNextTime:         s.getTime(HomeNextSetTimeKey),
		LockNextTime:         s.getTime(LockNextSetTimeKey),
		HomeLastSetTime:      s.getTime(HomeLastSetTimeKey),
		LockLastSetTime:      s.getTime(LockLastSetTimeKey),
		CurrentHomeWallpaper: s.prefs.StringWithFallback(CurrentHomeWallpaperKey, ""),
		CurrentLockWallpaper: s.prefs.StringWithFallback(CurrentLockWallpaperKey, ""),
	}
}

// Hints returns the timestamps NextAlarmTime anchors on.
func (s *StateStore) Hints() Hints {
	st := s.Snapshot()
	return Hints{
		HomeLastSet: st.HomeLastSetTime,
		LockLastSet: st.LockLastSetTime,
		HomeNext:    st.HomeNextTime,
		LockNext:    st.LockNextTime,
	}
}

// Blocked returns the currently applied wallpaper ids.
func (s *StateStore) Blocked() []string {
	st := s.Snapshot()
	return []string{st.CurrentHomeWallpaper, st.CurrentLockWallpaper}
}

// Current returns the id applied on surface.
func (s *StateStore) Current(surface Target) string {
	st := s.Snapshot()
	if surface == TargetLock {
		return st.CurrentLockWallpaper
	}
	return st.CurrentHomeWallpaper
}

// SetNext records the armed time for target. Single records both surfaces.
func (s *StateStore) SetNext(target Target, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch target {
	case TargetHome:
		s.setTime(HomeNextSetTimeKey, t)
	case TargetLock:
		s.setTime(LockNextSetTimeKey, t)
	case TargetSingle:
		s.setTime(HomeNextSetTimeKey, t)
		s.setTime(LockNextSetTimeKey, t)
	case TargetNone, TargetRefresh:
	}
}

// RecordApplied marks id as shown on surface at when.
func (s *StateStore) RecordApplied(surface Target, id string, when time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch surface {
	case TargetLock:
		s.prefs.SetString(CurrentLockWallpaperKey, id)
		s.setTime(LockLastSetTimeKey, when)
	case TargetHome:
		s.prefs.SetString(CurrentHomeWallpaperKey, id)
		s.setTime(HomeLastSetTimeKey, when)
	case TargetNone, TargetSingle, TargetRefresh:
	}
}

// SetNextChangeText stores the human readable next change time shown to the user.
func (s *StateStore) SetNextChangeText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.SetString(NextSetTimeKey, text)
}

// NextChangeText returns the last stored next change text.
func (s *StateStore) NextChangeText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.StringWithFallback(NextSetTimeKey, "")
}

// MarkAlarmFired records when a change alarm last fired.
func (s *StateStore) MarkAlarmFired(when time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.SetString(LastSetTimeKey, when.Format(NotificationTimeLayout))
}

// LastAlarmText returns the time a change alarm last fired, as stored.
func (s *StateStore) LastAlarmText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.StringWithFallback(LastSetTimeKey, "")
}
