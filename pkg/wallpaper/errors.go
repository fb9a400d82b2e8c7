package wallpaper

import "errors"

// Errors surfaced by the scheduling subsystem. They are matched with
// errors.Is and never escape the dispatcher as a crash.
var (
	// ErrExactAlarmDenied means the platform refused an exact alarm.
	ErrExactAlarmDenied = errors.New("exact alarm scheduling denied")
	// ErrWallpaperUnavailable means a wallpaper id no longer resolves to a readable image.
	ErrWallpaperUnavailable = errors.New("wallpaper unavailable")
	// ErrApplyFailed means the display commit rejected the image after all retries.
	ErrApplyFailed = errors.New("failed to apply wallpaper")
	// ErrSurfaceUnsupported means the desktop cannot set the requested surface.
	ErrSurfaceUnsupported = errors.New("surface not supported on this desktop")
	// ErrNoSelectedAlbum means no selected album matches the configured one.
	ErrNoSelectedAlbum = errors.New("no selected album")
	// ErrAlbumEmpty means the album had no accessible wallpapers and was removed.
	ErrAlbumEmpty = errors.New("album has no accessible wallpapers")
	// ErrInvalidRequest means a ScheduleRequest failed validation.
	ErrInvalidRequest = errors.New("invalid schedule request")
	// ErrInvalidTarget means a Target was used where it has no meaning.
	ErrInvalidTarget = errors.New("invalid target")
)
