package wallpaper

import (
	"fmt"
	"time"
)

// pluginName is the preference namespace of the wallpaper scheduler
const pluginName = "wallpaper"

// Preference keys for user settings
const (
	pluginPrefix              = pluginName + "_"
	EnableChangerPrefKey      = pluginPrefix + "enable_changer_key"       // EnableChangerPrefKey is the master switch for scheduled changes
	SetHomePrefKey            = pluginPrefix + "set_home_key"             // SetHomePrefKey enables changing the home screen
	SetLockPrefKey            = pluginPrefix + "set_lock_key"             // SetLockPrefKey enables changing the lock screen
	ScheduleSeparatelyPrefKey = pluginPrefix + "schedule_separately_key"  // ScheduleSeparatelyPrefKey gives home and lock independent schedules
	HomeIntervalPrefKey       = pluginPrefix + "home_interval_key"        // HomeIntervalPrefKey is the home (or shared) interval in minutes
	LockIntervalPrefKey       = pluginPrefix + "lock_interval_key"        // LockIntervalPrefKey is the lock interval in minutes
	ChangeStartTimePrefKey    = pluginPrefix + "change_start_time_key"    // ChangeStartTimePrefKey anchors the schedule to a fixed start time
	StartHourPrefKey          = pluginPrefix + "start_hour_key"           // StartHourPrefKey is the fixed start hour
	StartMinutePrefKey        = pluginPrefix + "start_minute_key"         // StartMinutePrefKey is the fixed start minute
	ImgShufflePrefKey         = pluginPrefix + "img_shuffle_key"          // ImgShufflePrefKey shuffles the rotation queue on refill
	OnlyNonInteractivePrefKey = pluginPrefix + "only_non_interactive_key" // OnlyNonInteractivePrefKey defers changes while the screen is in use
	SkipNonInteractivePrefKey = pluginPrefix + "skip_non_interactive_key" // SkipNonInteractivePrefKey skips changes while the screen is off
	HomeAlbumPrefKey          = pluginPrefix + "home_album_key"           // HomeAlbumPrefKey names the album feeding the home screen
	LockAlbumPrefKey          = pluginPrefix + "lock_album_key"           // LockAlbumPrefKey names the album feeding the lock screen
	ScalingPrefKey            = pluginPrefix + "scaling_key"              // ScalingPrefKey is how images are fitted to the screen
	NightlyRefreshPrefKey     = pluginPrefix + "nightly_refresh_key"      // NightlyRefreshPrefKey enables the midnight catalog rescan
)

// Persisted schedule bookkeeping keys
const (
	HomeNextSetTimeKey      = "home_next_set_time"
	LockNextSetTimeKey      = "lock_next_set_time"
	HomeLastSetTimeKey      = "home_last_set_time_raw"
	LockLastSetTimeKey      = "lock_last_set_time_raw"
	CurrentHomeWallpaperKey = "current_home_wallpaper"
	CurrentLockWallpaperKey = "current_lock_wallpaper"
	NextSetTimeKey          = "next_set_time"
	LastSetTimeKey          = "last_set_time"
)

// Scheduling constants
const (
	DefaultIntervalMinutes = 15
	MinRetryInterval       = 15 * time.Minute
	DeferredCheckDelay     = 5 * time.Minute
	ApplyAttempts          = 3
	ApplyBackoffStep       = time.Second
	RefreshSchedule        = "0 0 * * *" // every midnight, local time
	NotificationTimeLayout = "Mon 15:04"
)

// Scaling is how an image is fitted to the screen.
type Scaling int

// Scaling constants
const (
	ScalingFill Scaling = iota
	ScalingFit
	ScalingStretch
	ScalingNone
	ScalingInvalid
)

// String returns the string representation of a Scaling
func (s Scaling) String() string {
	switch s {
	case ScalingFill:
		return "Fill"
	case ScalingFit:
		return "Fit"
	case ScalingStretch:
		return "Stretch"
	case ScalingNone:
		return "None"
	default:
		return "Unknown"
	}
}

// ParseScaling converts a name produced by String back into a Scaling.
func ParseScaling(s string) (Scaling, error) {
	for sc := ScalingFill; sc < ScalingInvalid; sc++ {
		if sc.String() == s {
			return sc, nil
		}
	}
	return ScalingInvalid, fmt.Errorf("unknown scaling %q", s)
}

// GetScalings returns every valid scaling as a fmt.Stringer
func GetScalings() []fmt.Stringer {
	out := make([]fmt.Stringer, 0, int(ScalingInvalid))
	for sc := ScalingFill; sc < ScalingInvalid; sc++ {
		out = append(out, sc)
	}
	return out
}
