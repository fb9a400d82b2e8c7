package wallpaper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/dixieflatline76/Paperize/util/log"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// DeferredChange is a change that could not run while the device was in use.
// The request is kept whole so replay re-arms with the same surfaces enabled.
type DeferredChange struct {
	ID     string `json:"id"`
	Target Target `json:"target"`
	ScheduleRequest
	Origin    Target    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// DeferredStore persists at most one pending change for the whole process.
// Saving replaces whatever was pending, so of two deferrals before a consume
// only the later survives. Every operation reads and writes the backing file
// under one lock, so a change survives process death and is consumed
// exactly once.
type DeferredStore struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewDeferredStore returns a store backed by path on fsys.
func NewDeferredStore(fsys afero.Fs, path string) *DeferredStore {
	return &DeferredStore{fs: fsys, path: path}
}

func (d *DeferredStore) load() (*DeferredChange, error) {
	data, err := afero.ReadFile(d.fs, d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read deferred change: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var c DeferredChange
	if err := json.Unmarshal(data, &c); err != nil {
		// A corrupt slot file must not wedge the scheduler forever.
		log.Printf("[Deferred] discarding unreadable %s: %v", d.path, err)
		return nil, nil
	}
	if !deferrable(c.Target) {
		log.Printf("[Deferred] discarding change for %s in %s", c.Target, d.path)
		return nil, nil
	}
	c.ScheduleRequest = c.ScheduleRequest.WithDefaults()
	return &c, nil
}

func (d *DeferredStore) store(c DeferredChange) error {
	if err := d.fs.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("create deferred dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode deferred change: %w", err)
	}
	tmp := d.path + ".tmp"
	if err := afero.WriteFile(d.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("write deferred change: %w", err)
	}
	if err := d.fs.Rename(tmp, d.path); err != nil {
		return fmt.Errorf("replace deferred change: %w", err)
	}
	return nil
}

func (d *DeferredStore) remove() error {
	if err := d.fs.Remove(d.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear deferred change: %w", err)
	}
	return nil
}

func deferrable(t Target) bool {
	switch t {
	case TargetHome, TargetLock, TargetSingle:
		return true
	case TargetNone, TargetRefresh:
		return false
	}
	return false
}

// overlaps reports whether changes for a and b touch a common surface.
func overlaps(a, b Target) bool {
	return a == b || a == TargetSingle || b == TargetSingle
}

// Save stores c, replacing any pending change.
func (d *DeferredStore) Save(c DeferredChange) error {
	if !deferrable(c.Target) {
		return fmt.Errorf("%w: cannot defer a change for %s", ErrInvalidTarget, c.Target)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, err := d.load(); err == nil && prev != nil {
		log.Debugf("[Deferred] %s change from %s replaced by %s change", prev.Target, prev.CreatedAt.Format(time.RFC3339), c.Target)
	}
	return d.store(c)
}

// Restore puts c back only when nothing is pending, so a newer intent saved
// in the meantime wins.
func (d *DeferredStore) Restore(c DeferredChange) (bool, error) {
	if !deferrable(c.Target) {
		return false, fmt.Errorf("%w: cannot defer a change for %s", ErrInvalidTarget, c.Target)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, err := d.load()
	if err != nil {
		return false, err
	}
	if prev != nil {
		return false, nil
	}
	return true, d.store(c)
}

// Consume removes and returns the pending change.
func (d *DeferredStore) Consume() (DeferredChange, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, err := d.load()
	if err != nil {
		return DeferredChange{}, false, err
	}
	if c == nil {
		return DeferredChange{}, false, nil
	}
	if err := d.remove(); err != nil {
		return DeferredChange{}, false, err
	}
	return *c, true, nil
}

// HasPending reports whether a change is pending.
func (d *DeferredStore) HasPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, err := d.load()
	if err != nil {
		log.Printf("[Deferred] %v", err)
		return false
	}
	return c != nil
}

// Discard drops the pending change if it touches a surface that a change
// for target touches.
func (d *DeferredStore) Discard(target Target) error {
	if !deferrable(target) {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	c, err := d.load()
	if err != nil {
		return err
	}
	if c == nil || !overlaps(c.Target, target) {
		return nil
	}
	return d.remove()
}

// Clear drops the pending change, if any.
func (d *DeferredStore) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.remove()
}
