package wallpaper

import (
	"sync"

	"fyne.io/fyne/v2"
)

// Config holds the user facing scheduler settings on top of the app
// preference store.
type Config struct {
	fyne.Preferences
	mu sync.RWMutex
}

// NewConfig wraps p. All accessors are safe for concurrent use.
func NewConfig(p fyne.Preferences) *Config {
	return &Config{Preferences: p}
}

// Request builds a ScheduleRequest from the current settings.
func (c *Config) Request() ScheduleRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ScheduleRequest{
		HomeInterval:       c.IntWithFallback(HomeIntervalPrefKey, DefaultIntervalMinutes),
		LockInterval:       c.IntWithFallback(LockIntervalPrefKey, DefaultIntervalMinutes),
		ScheduleSeparately: c.BoolWithFallback(ScheduleSeparatelyPrefKey, false),
		SetHome:            c.BoolWithFallback(SetHomePrefKey, true),
		SetLock:            c.BoolWithFallback(SetLockPrefKey, false),
		UseFixedStartTime:  c.BoolWithFallback(ChangeStartTimePrefKey, false),
		StartTime: StartTime{
			Hour:   c.IntWithFallback(StartHourPrefKey, 0),
			Minute: c.IntWithFallback(StartMinutePrefKey, 0),
		},
	}.WithDefaults()
}

// SetRequest stores every field of req.
func (c *Config) SetRequest(req ScheduleRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetInt(HomeIntervalPrefKey, req.HomeInterval)
	c.SetInt(LockIntervalPrefKey, req.LockInterval)
	c.SetBool(ScheduleSeparatelyPrefKey, req.ScheduleSeparately)
	c.SetBool(SetHomePrefKey, req.SetHome)
	c.SetBool(SetLockPrefKey, req.SetLock)
	c.SetBool(ChangeStartTimePrefKey, req.UseFixedStartTime)
	c.SetInt(StartHourPrefKey, req.StartTime.Hour)
	c.SetInt(StartMinutePrefKey, req.StartTime.Minute)
	return nil
}

// GetEnableChanger returns the master switch for scheduled changes.
func (c *Config) GetEnableChanger() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BoolWithFallback(EnableChangerPrefKey, true)
}

// SetEnableChanger sets the master switch for scheduled changes.
func (c *Config) SetEnableChanger(enable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetBool(EnableChangerPrefKey, enable)
}

// GetImgShuffle returns the image shuffle preference.
func (c *Config) GetImgShuffle() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BoolWithFallback(ImgShufflePrefKey, false)
}

// SetImgShuffle sets the image shuffle preference.
func (c *Config) SetImgShuffle(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetBool(ImgShufflePrefKey, enabled)
}

// GetOnlyNonInteractive reports whether changes wait for the screen to be off.
func (c *Config) GetOnlyNonInteractive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BoolWithFallback(OnlyNonInteractivePrefKey, false)
}

// SetOnlyNonInteractive sets the only-non-interactive preference.
func (c *Config) SetOnlyNonInteractive(enable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetBool(OnlyNonInteractivePrefKey, enable)
}

// GetSkipNonInteractive reports whether changes are skipped while the screen is off.
func (c *Config) GetSkipNonInteractive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BoolWithFallback(SkipNonInteractivePrefKey, false)
}

// SetSkipNonInteractive sets the skip-non-interactive preference.
func (c *Config) SetSkipNonInteractive(enable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetBool(SkipNonInteractivePrefKey, enable)
}

// GetAlbum returns the album name configured for surface. Empty means
// "first selected album".
func (c *Config) GetAlbum(surface Target) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if surface == TargetLock {
		return c.StringWithFallback(LockAlbumPrefKey, "")
	}
	return c.StringWithFallback(HomeAlbumPrefKey, "")
}

// SetAlbum sets the album name for surface.
func (c *Config) SetAlbum(surface Target, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if surface == TargetLock {
		c.SetString(LockAlbumPrefKey, name)
		return
	}
	c.SetString(HomeAlbumPrefKey, name)
}

// GetScaling returns how images are fitted to the screen.
func (c *Config) GetScaling() Scaling {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Scaling(c.IntWithFallback(ScalingPrefKey, int(ScalingFill)))
	if s < ScalingFill || s >= ScalingInvalid {
		return ScalingFill
	}
	return s
}

// SetScaling sets how images are fitted to the screen.
func (c *Config) SetScaling(s Scaling) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetInt(ScalingPrefKey, int(s))
}

// GetNightlyRefresh returns the nightly refresh preference.
func (c *Config) GetNightlyRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BoolWithFallback(NightlyRefreshPrefKey, true)
}

// SetNightlyRefresh sets the nightly refresh preference.
func (c *Config) SetNightlyRefresh(enable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetBool(NightlyRefreshPrefKey, enable)
}
