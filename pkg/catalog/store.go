// Package catalog keeps the user's albums and their wallpapers in SQLite.
// Wallpaper ids are file paths; the image bytes stay where the user keeps
// them and are read through an afero filesystem.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/dixieflatline76/Paperize/pkg/wallpaper"
	"github.com/dixieflatline76/Paperize/util/log"
	"github.com/spf13/afero"
	_ "modernc.org/sqlite"
)

// ErrAlbumNotFound is returned when an album name is unknown.
var ErrAlbumNotFound = errors.New("album not found")

const schema = `
CREATE TABLE IF NOT EXISTS albums (
	name       TEXT PRIMARY KEY,
	selected   INTEGER NOT NULL DEFAULT 0,
	source_dir TEXT    NOT NULL DEFAULT '',
	home_queue TEXT    NOT NULL DEFAULT '[]',
	lock_queue TEXT    NOT NULL DEFAULT '[]',
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS wallpapers (
	album    TEXT    NOT NULL REFERENCES albums(name) ON DELETE CASCADE,
	id       TEXT    NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (album, id)
);
CREATE INDEX IF NOT EXISTS idx_wallpapers_album_position ON wallpapers(album, position);
`

// AlbumInfo summarizes an album for listings.
type AlbumInfo struct {
	Name      string
	Selected  bool
	SourceDir string
	Count     int
}

// Store is the SQLite backed catalog. It implements wallpaper.Catalog,
// wallpaper.Source and wallpaper.Refresher.
type Store struct {
	db          *sql.DB
	fs          afero.Fs
	scanWorkers int
	now         func() time.Time
}

var (
	_ wallpaper.Catalog   = (*Store)(nil)
	_ wallpaper.Source    = (*Store)(nil)
	_ wallpaper.Refresher = (*Store)(nil)
)

// Open opens (creating if needed) the catalog database at path. Wallpaper
// files are accessed through fsys.
func Open(ctx context.Context, path string, fsys afero.Fs) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	// One writer keeps SQLite from reporting busy under concurrent callers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return &Store{db: db, fs: fsys, scanWorkers: 8, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func decodeQueue(raw string) []string {
	var q []string
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil
	}
	return q
}

func encodeQueue(q []string) (string, error) {
	if q == nil {
		q = []string{}
	}
	b, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Store) wallpapers(ctx context.Context, album string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM wallpapers WHERE album = ? ORDER BY position, id`, album)
	if err != nil {
		return nil, fmt.Errorf("query wallpapers of %q: %w", album, err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan wallpaper row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SelectedAlbums returns the selected albums with their wallpapers, oldest album first.
func (s *Store) SelectedAlbums(ctx context.Context) ([]wallpaper.AlbumWithWallpapers, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, selected, home_queue, lock_queue
		FROM albums
		WHERE selected = 1
		ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}

	var albums []wallpaper.Album
	for rows.Next() {
		var (
			a          wallpaper.Album
			selected   int
			home, lock string
		)
		if err := rows.Scan(&a.Name, &selected, &home, &lock); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan album row: %w", err)
		}
		a.Selected = selected != 0
		a.HomeQueue = decodeQueue(home)
		a.LockQueue = decodeQueue(lock)
		albums = append(albums, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	rows.Close()

	out := make([]wallpaper.AlbumWithWallpapers, 0, len(albums))
	for _, a := range albums {
		ids, err := s.wallpapers(ctx, a.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, wallpaper.AlbumWithWallpapers{Album: a, Wallpapers: ids})
	}
	return out, nil
}

// Albums lists every album, selected or not.
func (s *Store) Albums(ctx context.Context) ([]AlbumInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.name, a.selected, a.source_dir, COUNT(w.id)
		FROM albums a LEFT JOIN wallpapers w ON w.album = a.name
		GROUP BY a.name
		ORDER BY a.created_at, a.name`)
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}
	defer rows.Close()

	var out []AlbumInfo
	for rows.Next() {
		var (
			info     AlbumInfo
			selected int
		)
		if err := rows.Scan(&info.Name, &selected, &info.SourceDir, &info.Count); err != nil {
			return nil, fmt.Errorf("scan album row: %w", err)
		}
		info.Selected = selected != 0
		out = append(out, info)
	}
	return out, rows.Err()
}

// SaveQueues stores the album's rotation queues. It never creates an album,
// so queues written after a concurrent delete are dropped.
func (s *Store) SaveQueues(ctx context.Context, album wallpaper.Album) error {
	home, err := encodeQueue(album.HomeQueue)
	if err != nil {
		return fmt.Errorf("encode home queue: %w", err)
	}
	lock, err := encodeQueue(album.LockQueue)
	if err != nil {
		return fmt.Errorf("encode lock queue: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE albums SET home_queue = ?, lock_queue = ? WHERE name = ?`, home, lock, album.Name)
	if err != nil {
		return fmt.Errorf("save queues of %q: %w", album.Name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Debugf("[Catalog] album %q is gone, queues not saved", album.Name)
	}
	return nil
}

// SetSelected marks an album as selected or not.
func (s *Store) SetSelected(ctx context.Context, name string, selected bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE albums SET selected = ? WHERE name = ?`, boolInt(selected), name)
	if err != nil {
		return fmt.Errorf("update album %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrAlbumNotFound, name)
	}
	return nil
}

// DeleteWallpaper removes id from the album's set and from both queues.
func (s *Store) DeleteWallpaper(ctx context.Context, album, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM wallpapers WHERE album = ? AND id = ?`, album, id); err != nil {
		return fmt.Errorf("delete wallpaper %s: %w", id, err)
	}

	var home, lock string
	err = tx.QueryRowContext(ctx, `SELECT home_queue, lock_queue FROM albums WHERE name = ?`, album).Scan(&home, &lock)
	if errors.Is(err, sql.ErrNoRows) {
		return tx.Commit()
	}
	if err != nil {
		return fmt.Errorf("load queues of %q: %w", album, err)
	}

	drop := func(raw string) (string, error) {
		q := slices.DeleteFunc(decodeQueue(raw), func(s string) bool { return s == id })
		return encodeQueue(q)
	}
	if home, err = drop(home); err != nil {
		return err
	}
	if lock, err = drop(lock); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE albums SET home_queue = ?, lock_queue = ? WHERE name = ?`, home, lock, album); err != nil {
		return fmt.Errorf("update queues of %q: %w", album, err)
	}
	return tx.Commit()
}

// CascadeDeleteAlbum removes the album and every wallpaper in it.
func (s *Store) CascadeDeleteAlbum(ctx context.Context, album string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM wallpapers WHERE album = ?`, album); err != nil {
		return fmt.Errorf("delete wallpapers of %q: %w", album, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM albums WHERE name = ?`, album); err != nil {
		return fmt.Errorf("delete album %q: %w", album, err)
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
