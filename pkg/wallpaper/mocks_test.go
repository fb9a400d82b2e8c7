package wallpaper

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/dixieflatline76/Paperize/config"
	"github.com/dixieflatline76/Paperize/util/backoff"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
)

// MockCommitter implements Committer for testing
type MockCommitter struct {
	mock.Mock
}

func (m *MockCommitter) Apply(ctx context.Context, img []byte, surface Target, hint CropHint) error {
	args := m.Called(string(img), surface)
	return args.Error(0)
}

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(title, body string) {
	m.Called(title, body)
}

// fakeAlarms is an in-memory AlarmService.
type fakeAlarms struct {
	mu         sync.Mutex
	armed      map[RequestCode]Alarm
	registered []RequestCode
	cancelled  []RequestCode
	denyExact  bool
}

func newFakeAlarms() *fakeAlarms {
	return &fakeAlarms{armed: make(map[RequestCode]Alarm)}
}

func (f *fakeAlarms) RegisterExact(ctx context.Context, a Alarm) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denyExact {
		return fmt.Errorf("%w: not permitted", ErrExactAlarmDenied)
	}
	f.armed[a.Code] = a
	f.registered = append(f.registered, a.Code)
	return nil
}

func (f *fakeAlarms) Register(ctx context.Context, a Alarm) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed[a.Code] = a
	f.registered = append(f.registered, a.Code)
	return nil
}

func (f *fakeAlarms) Cancel(code RequestCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.armed, code)
	f.cancelled = append(f.cancelled, code)
}

func (f *fakeAlarms) CanScheduleExact() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.denyExact
}

func (f *fakeAlarms) get(code RequestCode) (Alarm, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.armed[code]
	return a, ok
}

// registrations counts how often code was armed.
func (f *fakeAlarms) registrations(code RequestCode) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.registered {
		if c == code {
			n++
		}
	}
	return n
}

func (f *fakeAlarms) codes() []RequestCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RequestCode, 0, len(f.armed))
	for c := range f.armed {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// fakeCatalog keeps albums in memory in insertion order.
type fakeCatalog struct {
	mu       sync.Mutex
	albums   []AlbumWithWallpapers
	cascaded []string
	deleted  []string
}

func (f *fakeCatalog) add(name string, ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.albums = append(f.albums, AlbumWithWallpapers{
		Album:      Album{Name: name, Selected: true},
		Wallpapers: slices.Clone(ids),
	})
}

func (f *fakeCatalog) album(name string) (AlbumWithWallpapers, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.albums {
		if a.Album.Name == name {
			return a, true
		}
	}
	return AlbumWithWallpapers{}, false
}

func (f *fakeCatalog) SelectedAlbums(ctx context.Context) ([]AlbumWithWallpapers, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []AlbumWithWallpapers
	for _, a := range f.albums {
		if !a.Album.Selected {
			continue
		}
		a.Wallpapers = slices.Clone(a.Wallpapers)
		a.Album.HomeQueue = slices.Clone(a.Album.HomeQueue)
		a.Album.LockQueue = slices.Clone(a.Album.LockQueue)
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeCatalog) SaveQueues(ctx context.Context, album Album) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.albums {
		if f.albums[i].Album.Name == album.Name {
			f.albums[i].Album.HomeQueue = album.HomeQueue
			f.albums[i].Album.LockQueue = album.LockQueue
			return nil
		}
	}
	return nil
}

func (f *fakeCatalog) DeleteWallpaper(ctx context.Context, album, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	for i := range f.albums {
		if f.albums[i].Album.Name == album {
			f.albums[i].Wallpapers = slices.DeleteFunc(f.albums[i].Wallpapers, func(s string) bool { return s == id })
		}
	}
	return nil
}

func (f *fakeCatalog) CascadeDeleteAlbum(ctx context.Context, album string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cascaded = append(f.cascaded, album)
	f.albums = slices.DeleteFunc(f.albums, func(a AlbumWithWallpapers) bool { return a.Album.Name == album })
	return nil
}

// fakeSource serves the bytes "img:<id>" for every id not marked missing.
type fakeSource struct {
	mu      sync.Mutex
	missing map[string]bool
}

func (f *fakeSource) Read(ctx context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[id] {
		return nil, fmt.Errorf("%w: %s", ErrWallpaperUnavailable, id)
	}
	return []byte("img:" + id), nil
}

// fakeRefresher counts refreshes and runs hook, when set, on each one.
type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	hook  func()
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.calls++
	hook := f.hook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// harness wires the whole scheduling core against in-memory fakes.
type harness struct {
	prefs       *MockPreferences
	cfg         *Config
	state       *StateStore
	alarms      *fakeAlarms
	catalog     *fakeCatalog
	source      *fakeSource
	display     *MockCommitter
	notifier    *MockNotifier
	deferred    *DeferredStore
	refresher   *fakeRefresher
	clock       *testClock
	interactive bool
	changer     *Changer
	scheduler   *Scheduler
	dispatcher  *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		prefs:     NewMockPreferences(),
		alarms:    newFakeAlarms(),
		catalog:   &fakeCatalog{},
		source:    &fakeSource{missing: map[string]bool{}},
		display:   &MockCommitter{},
		notifier:  &MockNotifier{},
		deferred:  NewDeferredStore(afero.NewMemMapFs(), "/data/deferred.json"),
		refresher: &fakeRefresher{},
		clock:     &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	h.cfg = NewConfig(h.prefs)
	h.state = NewStateStore(h.prefs)
	h.notifier.On("Notify", mock.Anything, mock.Anything).Maybe()

	noWait := func() backoff.RetryPolicy { return backoff.NewLinearBackoffPolicy(0, ApplyAttempts) }
	h.changer = NewChanger(h.cfg, h.state, h.catalog, h.source, h.display,
		WithRetryPolicy(noWait), WithChangerClock(h.clock.Now))
	h.scheduler = NewScheduler(h.cfg, h.state, h.alarms, h.changer,
		WithSchedulerClock(h.clock.Now), WithNotifier(h.notifier, config.NewAppConfig(h.prefs)))
	h.dispatcher = NewDispatcher(h.cfg, h.state, h.scheduler, h.changer, h.deferred,
		InteractivityFunc(func() bool { return h.interactive }),
		WithDispatcherClock(h.clock.Now), WithRefresher(h.refresher), WithChangeNowLimit(time.Nanosecond, 100))
	return h
}
