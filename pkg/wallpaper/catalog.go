package wallpaper

import "context"

// Album is the scheduling view of a user album: its name and the per-surface
// rotation queues of wallpaper ids still to be shown this cycle.
type Album struct {
	Name      string
	Selected  bool
	HomeQueue []string
	LockQueue []string
}

// Queue returns the rotation queue backing surface.
func (a Album) Queue(surface Target) []string {
	if surface == TargetLock {
		return a.LockQueue
	}
	return a.HomeQueue
}

// WithQueue returns a copy of a with the queue for surface replaced.
func (a Album) WithQueue(surface Target, queue []string) Album {
	if surface == TargetLock {
		a.LockQueue = queue
	} else {
		a.HomeQueue = queue
	}
	return a
}

// AlbumWithWallpapers pairs an album with its full wallpaper set in catalog order.
type AlbumWithWallpapers struct {
	Album      Album
	Wallpapers []string
}

// Catalog is the album repository the scheduler reads and prunes.
type Catalog interface {
	SelectedAlbums(ctx context.Context) ([]AlbumWithWallpapers, error)
	// SaveQueues stores the rotation queues of an existing album. An album
	// that no longer exists is left deleted.
	SaveQueues(ctx context.Context, album Album) error
	DeleteWallpaper(ctx context.Context, album, id string) error
	CascadeDeleteAlbum(ctx context.Context, album string) error
}

// Source reads wallpaper bytes by id. A missing or unreadable wallpaper is
// reported with an error wrapping ErrWallpaperUnavailable.
type Source interface {
	Read(ctx context.Context, id string) ([]byte, error)
}

// Refresher rescans the catalog and prunes wallpapers that disappeared.
type Refresher interface {
	Refresh(ctx context.Context) error
}
