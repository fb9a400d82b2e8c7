package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/dixieflatline76/Paperize/util/backoff"
	"github.com/dixieflatline76/Paperize/util/log"
)

// CropHint tells the display commit which part of the image to keep.
// An empty Rect keeps the whole image.
type CropHint struct {
	Scaling Scaling
	Rect    image.Rectangle
}

// Committer puts prepared image bytes on a display surface.
type Committer interface {
	Apply(ctx context.Context, img []byte, surface Target, hint CropHint) error
}

// CropHinter computes a crop hint for img.
type CropHinter interface {
	CropHint(img []byte, scaling Scaling) (CropHint, error)
}

// ChangerOption configures a Changer.
type ChangerOption func(*Changer)

// WithRetryPolicy replaces the display commit retry policy factory.
func WithRetryPolicy(newPolicy func() backoff.RetryPolicy) ChangerOption {
	return func(c *Changer) { c.newPolicy = newPolicy }
}

// WithCropHinter sets the crop hint source.
func WithCropHinter(h CropHinter) ChangerOption {
	return func(c *Changer) { c.hinter = h }
}

// WithChangerClock overrides the clock used for last-set bookkeeping.
func WithChangerClock(now func() time.Time) ChangerOption {
	return func(c *Changer) { c.now = now }
}

// Changer runs the apply path: pick the next wallpaper of an album, commit
// it to the display and record it.
type Changer struct {
	cfg       *Config
	state     *StateStore
	catalog   Catalog
	source    Source
	display   Committer
	hinter    CropHinter
	newPolicy func() backoff.RetryPolicy
	now       func() time.Time

	queueMu sync.Mutex
}

// NewChanger wires a Changer.
func NewChanger(cfg *Config, state *StateStore, catalog Catalog, source Source, display Committer, opts ...ChangerOption) *Changer {
	c := &Changer{
		cfg:     cfg,
		state:   state,
		catalog: catalog,
		source:  source,
		display: display,
		newPolicy: func() backoff.RetryPolicy {
			return backoff.NewLinearBackoffPolicy(ApplyBackoffStep, ApplyAttempts)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Change shows the next wallpaper on target. Single puts the same image,
// taken from the home queue, on every surface req enables.
func (c *Changer) Change(ctx context.Context, target Target, req ScheduleRequest) error {
	var queueSurface Target
	switch target {
	case TargetHome, TargetLock:
		queueSurface = target
	case TargetSingle:
		queueSurface = TargetHome
	case TargetNone, TargetRefresh:
		return fmt.Errorf("%w: cannot change wallpaper for %s", ErrInvalidTarget, target)
	}

	surfaces := target.Surfaces(req)
	if len(surfaces) == 0 {
		return nil
	}

	id, data, err := c.next(ctx, queueSurface)
	if err != nil {
		return err
	}
	log.Printf("[Changer] %s: applying %s", target, id)
	return c.applyAll(ctx, id, data, surfaces, true)
}

// Reapply commits the current wallpaper of each surface again without
// advancing any queue, for example after the scaling setting changed.
func (c *Changer) Reapply(ctx context.Context, surfaces ...Target) error {
	var errs []error
	for _, s := range surfaces {
		id := c.state.Current(s)
		if id == "" {
			continue
		}
		data, err := c.source.Read(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("reapply %s: %w", s, err))
			continue
		}
		if err := c.applyAll(ctx, id, data, []Target{s}, false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Refresh runs r while no queue update is in flight, so a rescan that
// prunes wallpapers or albums never races a selection.
func (c *Changer) Refresh(ctx context.Context, r Refresher) error {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return r.Refresh(ctx)
}

// album returns the configured album for surface, or the first selected
// album when the configured one is unset or no longer selected.
func (c *Changer) album(surface Target, albums []AlbumWithWallpapers) (AlbumWithWallpapers, error) {
	if len(albums) == 0 {
		return AlbumWithWallpapers{}, ErrNoSelectedAlbum
	}
	name := c.cfg.GetAlbum(surface)
	for _, a := range albums {
		if a.Album.Name == name {
			return a, nil
		}
	}
	if name != "" {
		log.Printf("[Changer] album %q is not selected, using %q", name, albums[0].Album.Name)
	}
	return albums[0], nil
}

// next selects, reads and dequeues the next wallpaper for surface. The whole
// read-modify-write of the album queue runs under queueMu.
func (c *Changer) next(ctx context.Context, surface Target) (string, []byte, error) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()

	albums, err := c.catalog.SelectedAlbums(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("load albums: %w", err)
	}
	aw, err := c.album(surface, albums)
	if err != nil {
		return "", nil, err
	}
	blocked := c.state.Blocked()
	shuffle := c.cfg.GetImgShuffle()

	for {
		if len(aw.Wallpapers) == 0 {
			log.Printf("[Changer] album %q has no accessible wallpapers, removing it", aw.Album.Name)
			if err := c.catalog.CascadeDeleteAlbum(ctx, aw.Album.Name); err != nil {
				log.Printf("[Changer] failed to delete album %q: %v", aw.Album.Name, err)
			}
			return "", nil, fmt.Errorf("%w: %q", ErrAlbumEmpty, aw.Album.Name)
		}

		queue := aw.Album.Queue(surface)
		if len(queue) == 0 {
			queue = RefillQueue(aw.Wallpapers, shuffle)
		}
		id, rest := SelectNext(queue, blocked)

		data, err := c.source.Read(ctx, id)
		if errors.Is(err, ErrWallpaperUnavailable) {
			log.Printf("[Changer] evicting unavailable wallpaper %s from %q", id, aw.Album.Name)
			if delErr := c.catalog.DeleteWallpaper(ctx, aw.Album.Name, id); delErr != nil {
				log.Printf("[Changer] failed to delete wallpaper %s: %v", id, delErr)
			}
			aw.Album = aw.Album.WithQueue(surface, rest)
			aw = Evict(aw, id)
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("read wallpaper %s: %w", id, err)
		}

		aw.Album = aw.Album.WithQueue(surface, rest)
		if err := c.catalog.SaveQueues(ctx, aw.Album); err != nil {
			return "", nil, fmt.Errorf("save album %q: %w", aw.Album.Name, err)
		}
		return id, data, nil
	}
}

func (c *Changer) hint(data []byte) CropHint {
	scaling := c.cfg.GetScaling()
	if c.hinter == nil {
		return CropHint{Scaling: scaling}
	}
	h, err := c.hinter.CropHint(data, scaling)
	if err != nil {
		log.Debugf("[Changer] crop hint failed, using full image: %v", err)
		return CropHint{Scaling: scaling}
	}
	return h
}

// applyAll commits data to every surface in order. An unsupported surface is
// skipped as long as another surface took the image.
func (c *Changer) applyAll(ctx context.Context, id string, data []byte, surfaces []Target, record bool) error {
	hint := c.hint(data)
	var unsupported error
	applied := 0
	for _, s := range surfaces {
		err := c.commit(ctx, data, s, hint)
		if errors.Is(err, ErrSurfaceUnsupported) {
			log.Printf("[Changer] %s: %v", s, err)
			unsupported = err
			continue
		}
		if err != nil {
			return err
		}
		applied++
		if record {
			c.state.RecordApplied(s, id, c.now())
		}
	}
	if applied == 0 && unsupported != nil {
		return unsupported
	}
	return nil
}

func (c *Changer) commit(ctx context.Context, data []byte, surface Target, hint CropHint) error {
	op := func(ctx context.Context) error {
		return c.display.Apply(ctx, data, surface, hint)
	}
	retriable := func(err error) bool {
		return !errors.Is(err, ErrSurfaceUnsupported)
	}
	err := backoff.Retry(ctx, op, c.newPolicy(), retriable)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSurfaceUnsupported), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %s: %v", ErrApplyFailed, surface, err)
	}
}
