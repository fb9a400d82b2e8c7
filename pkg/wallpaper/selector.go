package wallpaper

import (
	"math/rand"
	"slices"
)

// SelectNext picks the first id in queue that is not blocked, falling back to
// the head when every id is blocked. The chosen position is removed from the
// returned queue; the order of the rest is kept. Blank blocked ids are ignored.
func SelectNext(queue []string, blocked []string) (string, []string) {
	if len(queue) == 0 {
		return "", nil
	}

	effective := make(map[string]struct{}, len(blocked))
	for _, id := range blocked {
		if id != "" {
			effective[id] = struct{}{}
		}
	}

	idx := 0
	for i, id := range queue {
		if _, isBlocked := effective[id]; !isBlocked {
			idx = i
			break
		}
	}

	remaining := make([]string, 0, len(queue)-1)
	remaining = append(remaining, queue[:idx]...)
	remaining = append(remaining, queue[idx+1:]...)
	return queue[idx], remaining
}

// RefillQueue builds a fresh rotation queue from the album's full set,
// shuffled when shuffle is on and in catalog order otherwise.
func RefillQueue(all []string, shuffle bool) []string {
	queue := slices.Clone(all)
	if shuffle {
		rand.Shuffle(len(queue), func(i, j int) {
			queue[i], queue[j] = queue[j], queue[i]
		})
	}
	return queue
}

// Evict removes every occurrence of id from the album's wallpaper set and
// from both of its rotation queues.
func Evict(a AlbumWithWallpapers, id string) AlbumWithWallpapers {
	drop := func(ids []string) []string {
		return slices.DeleteFunc(slices.Clone(ids), func(s string) bool { return s == id })
	}
	a.Wallpapers = drop(a.Wallpapers)
	a.Album.HomeQueue = drop(a.Album.HomeQueue)
	a.Album.LockQueue = drop(a.Album.LockQueue)
	return a
}
