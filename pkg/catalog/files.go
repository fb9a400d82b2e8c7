package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dixieflatline76/Paperize/pkg/wallpaper"
	"github.com/dixieflatline76/Paperize/util/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".gif":  true,
}

// IsImageFile reports whether path has a supported image extension.
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// scanDir returns the image files under dir in lexical order.
func (s *Store) scanDir(dir string) ([]string, error) {
	var found []string
	err := afero.Walk(s.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsImageFile(path) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(found)
	return found, nil
}

// ImportDir adds every image under dir to album, creating and selecting
// the album if it does not exist yet. Already known files are skipped. It
// returns how many wallpapers were added.
func (s *Store) ImportDir(ctx context.Context, album, dir string) (int, error) {
	files, err := s.scanDir(dir)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO albums (name, selected, source_dir, created_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(name) DO UPDATE SET source_dir = excluded.source_dir`,
		album, dir, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("create album %q: %w", album, err)
	}

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM wallpapers WHERE album = ?`, album).Scan(&next); err != nil {
		return 0, fmt.Errorf("read positions of %q: %w", album, err)
	}

	added := 0
	for _, id := range files {
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO wallpapers (album, id, position) VALUES (?, ?, ?)`, album, id, next)
		if err != nil {
			return 0, fmt.Errorf("add %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
			next++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	log.Printf("[Catalog] %q: imported %d of %d files from %s", album, added, len(files), dir)
	return added, nil
}

// Read returns the bytes of wallpaper id. Any failure to read a non-empty
// file is reported as wallpaper.ErrWallpaperUnavailable.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", wallpaper.ErrWallpaperUnavailable, id, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", wallpaper.ErrWallpaperUnavailable, id)
	}
	return data, nil
}

type entry struct {
	album string
	id    string
}

// Refresh re-imports each album's source directory and then drops every
// wallpaper whose file is gone. Albums left empty are deleted.
func (s *Store) Refresh(ctx context.Context) error {
	albums, err := s.Albums(ctx)
	if err != nil {
		return err
	}
	for _, a := range albums {
		if a.SourceDir == "" {
			continue
		}
		if _, err := s.ImportDir(ctx, a.Name, a.SourceDir); err != nil {
			log.Printf("[Catalog] rescan of %q failed: %v", a.Name, err)
		}
	}

	entries, err := s.allEntries(ctx)
	if err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		missing []entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.scanWorkers)
	for _, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := s.fs.Stat(e.id); err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					log.Debugf("[Catalog] stat %s: %v", e.id, err)
				}
				mu.Lock()
				missing = append(missing, e)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("check wallpapers: %w", err)
	}

	for _, e := range missing {
		if err := s.DeleteWallpaper(ctx, e.album, e.id); err != nil {
			return err
		}
	}

	albums, err = s.Albums(ctx)
	if err != nil {
		return err
	}
	for _, a := range albums {
		if a.Count > 0 {
			continue
		}
		log.Printf("[Catalog] album %q has no wallpapers left, removing it", a.Name)
		if err := s.CascadeDeleteAlbum(ctx, a.Name); err != nil {
			return err
		}
	}
	log.Printf("[Catalog] refresh done: %d checked, %d removed", len(entries), len(missing))
	return nil
}

func (s *Store) allEntries(ctx context.Context) ([]entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT album, id FROM wallpapers ORDER BY album, position`)
	if err != nil {
		return nil, fmt.Errorf("query wallpapers: %w", err)
	}
	defer rows.Close()
	var out []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.album, &e.id); err != nil {
			return nil, fmt.Errorf("scan wallpaper row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
