package wallpaper

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateStore(t *testing.T) {
	prefs := NewMockPreferences()
	s := NewStateStore(prefs)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)

	assert.Equal(t, ScheduleState{}, s.Snapshot())

	s.SetNext(TargetSingle, now)
	st := s.Snapshot()
	assert.True(t, st.HomeNextTime.Equal(now))
	assert.True(t, st.LockNextTime.Equal(now))

	s.SetNext(TargetLock, now.Add(time.Hour))
	assert.True(t, s.Snapshot().LockNextTime.Equal(now.Add(time.Hour)))
	assert.True(t, s.Snapshot().HomeNextTime.Equal(now))

	s.RecordApplied(TargetHome, "h1", now)
	s.RecordApplied(TargetLock, "l1", now.Add(time.Minute))
	assert.Equal(t, []string{"h1", "l1"}, s.Blocked())
	assert.Equal(t, "l1", s.Current(TargetLock))

	hints := s.Hints()
	assert.True(t, hints.HomeLastSet.Equal(now))
	assert.True(t, hints.LockLastSet.Equal(now.Add(time.Minute)))

	// Persisted across instances over the same preferences
	again := NewStateStore(prefs)
	assert.Equal(t, "h1", again.Current(TargetHome))
}

func TestStateStore_CorruptTimeIsUnknown(t *testing.T) {
	prefs := NewMockPreferences()
	prefs.SetString(HomeNextSetTimeKey, "yesterday-ish")
	assert.True(t, NewStateStore(prefs).Snapshot().HomeNextTime.IsZero())
}

func TestStateStore_Text(t *testing.T) {
	s := NewStateStore(NewMockPreferences())
	s.SetNextChangeText("Fri 12:15")
	assert.Equal(t, "Fri 12:15", s.NextChangeText())

	s.MarkAlarmFired(time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC))
	assert.Equal(t, "Fri 09:05", s.LastAlarmText())
}

func TestStateStore_Concurrent(t *testing.T) {
	s := NewStateStore(NewMockPreferences())
	now := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.RecordApplied(TargetHome, "x", now)
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	assert.Equal(t, "x", s.Current(TargetHome))
}
