package wallpaper

import (
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeferredStore() (*DeferredStore, afero.Fs) {
	fs := afero.NewMemMapFs()
	return NewDeferredStore(fs, "/state/deferred.json"), fs
}

func change(target Target, origin Target, at time.Time, interval int) DeferredChange {
	return DeferredChange{
		Target:          target,
		ScheduleRequest: ScheduleRequest{HomeInterval: interval, LockInterval: interval, SetHome: true, SetLock: true},
		Origin:          origin,
		CreatedAt:       at,
	}
}

func TestDeferredStore_LastSaveWins(t *testing.T) {
	store, _ := newTestDeferredStore()
	require.NoError(t, store.Save(change(TargetHome, TargetHome, baseNow, 15)))
	require.NoError(t, store.Save(change(TargetHome, TargetHome, baseNow.Add(time.Minute), 30)))

	got, ok, err := store.Consume()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30, got.HomeInterval)
	assert.NotEmpty(t, got.ID)

	_, ok, err = store.Consume()
	require.NoError(t, err)
	assert.False(t, ok, "consume is destructive")
	assert.False(t, store.HasPending())
}

func TestDeferredStore_OneSlotAcrossTargets(t *testing.T) {
	store, _ := newTestDeferredStore()
	require.NoError(t, store.Save(change(TargetHome, TargetHome, baseNow, 15)))
	require.NoError(t, store.Save(change(TargetLock, TargetLock, baseNow.Add(time.Minute), 15)))
	assert.True(t, store.HasPending())

	first, ok, err := store.Consume()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, TargetLock, first.Target)

	_, ok, err = store.Consume()
	require.NoError(t, err)
	assert.False(t, ok, "the earlier home change was replaced")
}

func TestDeferredStore_KeepsSingleWhole(t *testing.T) {
	store, _ := newTestDeferredStore()
	require.NoError(t, store.Save(change(TargetSingle, TargetSingle, baseNow, 15)))

	got, ok, err := store.Consume()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, TargetSingle, got.Target)
	assert.Equal(t, TargetSingle, got.Origin)
}

func TestDeferredStore_SurvivesRestart(t *testing.T) {
	store, fs := newTestDeferredStore()
	require.NoError(t, store.Save(change(TargetLock, TargetLock, baseNow, 20)))

	reopened := NewDeferredStore(fs, "/state/deferred.json")
	got, ok, err := reopened.Consume()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, TargetLock, got.Target)
	assert.Equal(t, 20, got.LockInterval)
	assert.True(t, got.CreatedAt.Equal(baseNow))

	exists, err := afero.Exists(fs, "/state/deferred.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeferredStore_MissingIntervalsDefault(t *testing.T) {
	store, fs := newTestDeferredStore()
	raw := `{"id":"x","target":"home","type":"home","set_home":true,"created_at":"2024-03-01T12:00:00Z"}`
	require.NoError(t, afero.WriteFile(fs, "/state/deferred.json", []byte(raw), 0o600))

	got, ok, err := store.Consume()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, DefaultIntervalMinutes, got.HomeInterval)
	assert.Equal(t, DefaultIntervalMinutes, got.LockInterval)
	assert.True(t, got.SetHome)
}

func TestDeferredStore_CorruptFileIsEmpty(t *testing.T) {
	store, fs := newTestDeferredStore()
	require.NoError(t, afero.WriteFile(fs, "/state/deferred.json", []byte("{not json"), 0o600))
	assert.False(t, store.HasPending())
	require.NoError(t, store.Save(change(TargetHome, TargetHome, baseNow, 15)))
	assert.True(t, store.HasPending())
}

func TestDeferredStore_RestoreDoesNotClobber(t *testing.T) {
	store, _ := newTestDeferredStore()
	old := change(TargetHome, TargetHome, baseNow, 15)
	restored, err := store.Restore(old)
	require.NoError(t, err)
	assert.True(t, restored)

	newer := change(TargetHome, TargetHome, baseNow.Add(time.Hour), 45)
	require.NoError(t, store.Save(newer))
	restored, err = store.Restore(old)
	require.NoError(t, err)
	assert.False(t, restored)

	got, _, err := store.Consume()
	require.NoError(t, err)
	assert.Equal(t, 45, got.HomeInterval)
}

func TestDeferredStore_DiscardAndClear(t *testing.T) {
	store, _ := newTestDeferredStore()
	require.NoError(t, store.Save(change(TargetLock, TargetLock, baseNow, 15)))

	require.NoError(t, store.Discard(TargetHome))
	assert.True(t, store.HasPending(), "a home change leaves a lock change alone")
	require.NoError(t, store.Discard(TargetLock))
	assert.False(t, store.HasPending())

	require.NoError(t, store.Save(change(TargetSingle, TargetSingle, baseNow, 15)))
	require.NoError(t, store.Discard(TargetHome))
	assert.False(t, store.HasPending(), "a shared change touches home")

	require.NoError(t, store.Save(change(TargetHome, TargetHome, baseNow, 15)))
	require.NoError(t, store.Clear())
	assert.False(t, store.HasPending())
	require.NoError(t, store.Clear())
	require.NoError(t, store.Discard(TargetRefresh))
}

func TestDeferredStore_RejectsNonChangeTargets(t *testing.T) {
	store, _ := newTestDeferredStore()
	assert.ErrorIs(t, store.Save(change(TargetRefresh, TargetRefresh, baseNow, 15)), ErrInvalidTarget)
	assert.ErrorIs(t, store.Save(change(TargetNone, TargetNone, baseNow, 15)), ErrInvalidTarget)
}

func TestDeferredStore_ConsumeExactlyOnce(t *testing.T) {
	store, _ := newTestDeferredStore()
	require.NoError(t, store.Save(change(TargetHome, TargetHome, baseNow, 15)))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		hits int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, err := store.Consume(); err == nil && ok {
				mu.Lock()
				hits++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, hits)
}
