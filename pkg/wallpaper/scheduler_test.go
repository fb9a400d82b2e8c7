package wallpaper

import (
	"context"
	"testing"
	"time"

	"github.com/dixieflatline76/Paperize/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestScheduler_FirstLaunch(t *testing.T) {
	h := newHarness(t)
	now := h.clock.Now()

	err := h.scheduler.ScheduleWallpaperAlarm(context.Background(), homeOnly, ScheduleOptions{SetAlarm: true, FirstLaunch: true})
	require.NoError(t, err)

	a, ok := h.alarms.get(CodeSingle)
	require.True(t, ok)
	assert.Equal(t, now.Add(15*time.Minute), a.TriggerAt)
	assert.Equal(t, AlarmChange, a.Kind)
	assert.Equal(t, TargetSingle, a.Target)
	assert.Equal(t, homeOnly, a.Request)
	assert.True(t, h.state.Snapshot().HomeNextTime.Equal(now.Add(15*time.Minute)))
	h.notifier.AssertCalled(t, "Notify", config.AppName, "Next wallpaper change: Fri 12:15")
	assert.Equal(t, "Fri 12:15", h.state.NextChangeText())
}

func TestScheduler_SeparateArmsBothWithOffset(t *testing.T) {
	h := newHarness(t)
	now := h.clock.Now()
	req := ScheduleRequest{HomeInterval: 15, LockInterval: 30, ScheduleSeparately: true, SetHome: true, SetLock: true}

	require.NoError(t, h.scheduler.ScheduleWallpaperAlarm(context.Background(), req, ScheduleOptions{SetAlarm: true, FirstLaunch: true}))

	home, ok := h.alarms.get(CodeHome)
	require.True(t, ok)
	lock, ok := h.alarms.get(CodeLock)
	require.True(t, ok)
	assert.Equal(t, now.Add(15*time.Minute+10*time.Second), home.TriggerAt)
	assert.Equal(t, now.Add(30*time.Minute), lock.TriggerAt)
	_, single := h.alarms.get(CodeSingle)
	assert.False(t, single)

	h.notifier.AssertCalled(t, "Notify", config.AppName, "Next wallpaper change: Fri 12:15")
}

func TestScheduler_OriginNarrows(t *testing.T) {
	h := newHarness(t)
	req := ScheduleRequest{HomeInterval: 15, LockInterval: 30, ScheduleSeparately: true, SetHome: true, SetLock: true}
	ctx := context.Background()
	require.NoError(t, h.scheduler.ScheduleWallpaperAlarm(ctx, req, ScheduleOptions{SetAlarm: true, FirstLaunch: true}))
	lockBefore, _ := h.alarms.get(CodeLock)

	h.clock.Set(h.clock.Now().Add(16 * time.Minute))
	require.NoError(t, h.scheduler.ScheduleWallpaperAlarm(ctx, req, ScheduleOptions{Origin: TargetHome, SetAlarm: true}))

	lockAfter, ok := h.alarms.get(CodeLock)
	require.True(t, ok)
	assert.Equal(t, lockBefore.ID, lockAfter.ID, "home re-arm must leave the lock alarm alone")
	assert.Equal(t, CodeHome, h.alarms.cancelled[len(h.alarms.cancelled)-1])
}

func TestScheduler_ExactDenied(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.scheduler.ScheduleWallpaperAlarm(ctx, homeOnly, ScheduleOptions{SetAlarm: true}))
	h.notifier.Calls = nil
	h.alarms.denyExact = true

	err := h.scheduler.ScheduleWallpaperAlarm(ctx, homeOnly, ScheduleOptions{SetAlarm: true})
	assert.ErrorIs(t, err, ErrExactAlarmDenied)
	assert.Empty(t, h.alarms.codes())
	h.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestScheduler_ChangeImmediate(t *testing.T) {
	h := newHarness(t)
	h.catalog.add("trips", "A", "B")
	h.display.On("Apply", mock.Anything, mock.Anything).Return(nil)
	req := ScheduleRequest{HomeInterval: 15, LockInterval: 15, ScheduleSeparately: true, SetHome: true, SetLock: true}

	require.NoError(t, h.scheduler.ScheduleWallpaperAlarm(context.Background(), req, ScheduleOptions{ChangeImmediate: true}))
	assert.NotEmpty(t, h.state.Current(TargetLock))
	assert.NotEmpty(t, h.state.Current(TargetHome))
	assert.NotEqual(t, h.state.Current(TargetLock), h.state.Current(TargetHome))
	assert.Empty(t, h.alarms.codes(), "no alarm without SetAlarm")
}

func TestScheduler_ChangeFailureStillArms(t *testing.T) {
	h := newHarness(t)
	err := h.scheduler.ScheduleWallpaperAlarm(context.Background(), homeOnly, ScheduleOptions{ChangeImmediate: true, SetAlarm: true})
	require.NoError(t, err)
	_, ok := h.alarms.get(CodeSingle)
	assert.True(t, ok)
}

func TestScheduler_CancelImmediate(t *testing.T) {
	h := newHarness(t)
	req := ScheduleRequest{HomeInterval: 15, LockInterval: 30, ScheduleSeparately: true, SetHome: true, SetLock: true}
	ctx := context.Background()
	require.NoError(t, h.scheduler.ScheduleWallpaperAlarm(ctx, req, ScheduleOptions{SetAlarm: true}))

	require.NoError(t, h.scheduler.ScheduleWallpaperAlarm(ctx, req, ScheduleOptions{Origin: TargetLock, CancelImmediate: true}))
	assert.Equal(t, []RequestCode{CodeHome}, h.alarms.codes())

	require.NoError(t, h.scheduler.ScheduleWallpaperAlarm(ctx, req, ScheduleOptions{CancelImmediate: true}))
	assert.Empty(t, h.alarms.codes())

	// Idempotent
	require.NoError(t, h.scheduler.ScheduleWallpaperAlarm(ctx, req, ScheduleOptions{CancelImmediate: true}))
}

func TestScheduler_InvalidRequest(t *testing.T) {
	h := newHarness(t)
	bad := ScheduleRequest{HomeInterval: 20000, LockInterval: 15, SetHome: true}
	err := h.scheduler.ScheduleWallpaperAlarm(context.Background(), bad, ScheduleOptions{SetAlarm: true})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestScheduler_CancelWallpaperAlarm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, code := range []RequestCode{CodeHome, CodeLock, CodeSingle, CodeRefresh, CodeHomeRetry, CodeLockRetry, CodeSingleRetry, CodeDeferredCheck} {
		require.NoError(t, h.alarms.Register(ctx, Alarm{Code: code}))
	}

	h.scheduler.CancelWallpaperAlarm(true, false)
	assert.NotContains(t, h.alarms.codes(), CodeLock)
	assert.NotContains(t, h.alarms.codes(), CodeLockRetry)
	assert.Contains(t, h.alarms.codes(), CodeSingle)

	h.scheduler.CancelWallpaperAlarm(true, true)
	assert.Empty(t, h.alarms.codes())
}

func TestScheduler_Refresh(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.scheduler.ScheduleRefresh(context.Background()))

	a, ok := h.alarms.get(CodeRefresh)
	require.True(t, ok)
	assert.Equal(t, AlarmRefresh, a.Kind)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), a.TriggerAt.UTC())

	h.cfg.SetNightlyRefresh(false)
	require.NoError(t, h.scheduler.ScheduleRefresh(context.Background()))
	_, ok = h.alarms.get(CodeRefresh)
	assert.False(t, ok)
}

func TestScheduler_NotificationsDisabled(t *testing.T) {
	h := newHarness(t)
	config.NewAppConfig(h.prefs).SetAppNotificationsEnabled(false)

	require.NoError(t, h.scheduler.ScheduleWallpaperAlarm(context.Background(), homeOnly, ScheduleOptions{SetAlarm: true}))
	h.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	assert.NotEmpty(t, h.state.NextChangeText())
}

func TestScheduler_UpdateWallpaper(t *testing.T) {
	h := newHarness(t)
	h.catalog.add("trips", "A", "B")
	h.display.On("Apply", mock.Anything, TargetHome).Return(nil)
	ctx := context.Background()
	require.NoError(t, h.changer.Change(ctx, TargetHome, homeOnly))

	require.NoError(t, h.scheduler.UpdateWallpaper(ctx))
	h.display.AssertNumberOfCalls(t, "Apply", 2)
	assert.Equal(t, "A", h.state.Current(TargetHome))
}
