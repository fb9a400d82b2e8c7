// Package display prepares wallpaper images for the screen and hands them to
// the desktop environment.
package display

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dixieflatline76/Paperize/pkg/wallpaper"
	"github.com/dixieflatline76/Paperize/util/log"
	"github.com/spf13/afero"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// jpegQuality is the quality of the prepared file written to the cache dir.
const jpegQuality = 95

// Setter puts an image file on a desktop surface.
type Setter interface {
	Supports(surface wallpaper.Target) bool
	SetWallpaper(ctx context.Context, path string, surface wallpaper.Target) error
}

// ScreenFunc reports the primary screen size in pixels.
type ScreenFunc func() (int, int, error)

// Option configures a Committer.
type Option func(*Committer)

// WithFs replaces the filesystem the prepared files are written to.
func WithFs(fs afero.Fs) Option {
	return func(c *Committer) { c.fs = fs }
}

// WithSetter replaces the desktop setter.
func WithSetter(s Setter) Option {
	return func(c *Committer) { c.setter = s }
}

// WithScreen replaces the screen size source.
func WithScreen(screen ScreenFunc) Option {
	return func(c *Committer) { c.screen = screen }
}

// WithClock overrides the clock used to name prepared files.
func WithClock(now func() time.Time) Option {
	return func(c *Committer) { c.now = now }
}

// Committer implements wallpaper.Committer and wallpaper.CropHinter for a
// desktop session.
type Committer struct {
	fs        afero.Fs
	dir       string
	setter    Setter
	screen    ScreenFunc
	resampler imaging.ResampleFilter
	now       func() time.Time
}

var (
	_ wallpaper.Committer  = (*Committer)(nil)
	_ wallpaper.CropHinter = (*Committer)(nil)
)

// NewCommitter creates a Committer writing prepared images into cacheDir.
func NewCommitter(cacheDir string, opts ...Option) *Committer {
	c := &Committer{
		fs:        afero.NewOsFs(),
		dir:       cacheDir,
		setter:    NewSetter(),
		screen:    ScreenDimensions,
		resampler: imaging.Lanczos,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply decodes img, fits it to the screen following hint, writes the result
// into the cache dir and sets it on surface.
func (c *Committer) Apply(ctx context.Context, img []byte, surface wallpaper.Target, hint wallpaper.CropHint) error {
	if !surface.IsSurface() {
		return fmt.Errorf("%w: %s", wallpaper.ErrInvalidTarget, surface)
	}
	if !c.setter.Supports(surface) {
		return fmt.Errorf("%w: %s", wallpaper.ErrSurfaceUnsupported, surface)
	}

	decoded, err := decode(ctx, img)
	if err != nil {
		return err
	}
	w, h := c.screenSize(decoded)

	prepared, err := c.fit(ctx, decoded, w, h, hint)
	if err != nil {
		return err
	}

	path, err := c.write(prepared, surface)
	if err != nil {
		return err
	}
	if err := c.setter.SetWallpaper(ctx, path, surface); err != nil {
		if rmErr := c.fs.Remove(path); rmErr != nil {
			log.Debugf("[Display] could not remove %s: %v", path, rmErr)
		}
		return fmt.Errorf("setting %s wallpaper: %w", surface, err)
	}
	c.prune(surface, path)
	return nil
}

// CropHint picks the region of img to keep for scaling. Fill uses a smart
// crop at the screen's aspect ratio, None keeps a screen sized center
// region, and the other modes keep the whole image.
func (c *Committer) CropHint(img []byte, scaling wallpaper.Scaling) (wallpaper.CropHint, error) {
	hint := wallpaper.CropHint{Scaling: scaling}
	if scaling != wallpaper.ScalingFill && scaling != wallpaper.ScalingNone {
		return hint, nil
	}

	decoded, err := decode(context.Background(), img)
	if err != nil {
		return hint, err
	}
	w, h := c.screenSize(decoded)

	switch scaling {
	case wallpaper.ScalingFill:
		rect, err := smartCrop(decoded, w, h, c.resampler)
		if err != nil {
			return hint, err
		}
		hint.Rect = rect
	case wallpaper.ScalingNone:
		hint.Rect = centerRect(decoded.Bounds(), w, h)
	}
	return hint, nil
}

func decode(ctx context.Context, data []byte) (image.Image, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// screenSize falls back to the image's own size when the screen cannot be
// queried, so the image is committed unscaled.
func (c *Committer) screenSize(img image.Image) (int, int) {
	w, h, err := c.screen()
	if err != nil || w <= 0 || h <= 0 {
		log.Debugf("[Display] screen size unavailable (%v), using image size", err)
		b := img.Bounds()
		return b.Dx(), b.Dy()
	}
	return w, h
}

func (c *Committer) fit(ctx context.Context, img image.Image, w, h int, hint wallpaper.CropHint) (image.Image, error) {
	r := &resizer{resampler: c.resampler}

	if rect := hint.Rect.Intersect(img.Bounds()); !rect.Empty() {
		cropped := imaging.Crop(img, rect)
		if hint.Scaling == wallpaper.ScalingNone {
			return onCanvas(cropped, w, h), nil
		}
		return r.resizeWithContext(ctx, cropped, w, h)
	}

	switch hint.Scaling {
	case wallpaper.ScalingFit:
		return withContext(ctx, func() image.Image {
			return onCanvas(imaging.Fit(img, w, h, c.resampler), w, h)
		})
	case wallpaper.ScalingStretch:
		return r.resizeWithContext(ctx, img, w, h)
	case wallpaper.ScalingNone:
		return onCanvas(imaging.CropCenter(img, w, h), w, h), nil
	default:
		return withContext(ctx, func() image.Image {
			return imaging.Fill(img, w, h, imaging.Center, c.resampler)
		})
	}
}

// onCanvas centers img on a black w x h canvas.
func onCanvas(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	return imaging.PasteCenter(imaging.New(w, h, color.Black), img)
}

// centerRect returns the w x h rectangle centered in bounds, clipped to it.
func centerRect(bounds image.Rectangle, w, h int) image.Rectangle {
	w = min(w, bounds.Dx())
	h = min(h, bounds.Dy())
	x := bounds.Min.X + (bounds.Dx()-w)/2
	y := bounds.Min.Y + (bounds.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}

func (c *Committer) write(img image.Image, surface wallpaper.Target) (string, error) {
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}

	// Desktops cache by URI, so every commit gets a fresh name.
	path := filepath.Join(c.dir, fmt.Sprintf("%s_%d.jpg", surface, c.now().UnixNano()))
	f, err := c.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		f.Close()
		_ = c.fs.Remove(path)
		return "", fmt.Errorf("encoding image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

// prune removes files previously committed to surface, keeping current.
func (c *Committer) prune(surface wallpaper.Target, current string) {
	entries, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		log.Debugf("[Display] listing %s: %v", c.dir, err)
		return
	}
	prefix := string(surface) + "_"
	for _, e := range entries {
		path := filepath.Join(c.dir, e.Name())
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || path == current {
			continue
		}
		if err := c.fs.Remove(path); err != nil {
			log.Debugf("[Display] removing %s: %v", path, err)
		}
	}
}
