package nearest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/sqlite-mosaic/index"
	"github.com/viant/sqlite-mosaic/index/factory"
	"github.com/viant/sqlite-mosaic/rgb"
)

// Snapshot is a built index together with the palette it was built from.
type Snapshot struct {
	Index  index.Index
	Labels map[rgb.Point]string
}

// Match is the answer to one nearest-colour query.
type Match struct {
	Query rgb.Point
	Color rgb.Point
	Label string
	Dist2 int
}

// Nearest resolves query against the snapshot.
func (s *Snapshot) Nearest(query rgb.Point) (Match, error) {
	p, err := s.Index.Nearest(query)
	if err != nil {
		return Match{}, err
	}
	label, ok := s.Labels[p]
	if !ok {
		return Match{}, fmt.Errorf("nearest: colour %s has no label", p)
	}
	return Match{Query: query, Color: p, Label: label, Dist2: rgb.Dist2(query, p)}, nil
}

// Shared cache of snapshots keyed by database handle, palette table and
// index options, reused across statements and virtual tables.
var sharedCache = struct {
	mu    sync.RWMutex
	byKey map[string]*cacheEntry
}{byKey: make(map[string]*cacheEntry)}

type cacheEntry struct {
	mu       sync.RWMutex
	snap     *Snapshot
	building bool
	gen      uint64
	cond     *sync.Cond
}

func newCacheEntry() *cacheEntry {
	e := &cacheEntry{}
	e.cond = sync.NewCond(&e.mu)
	return e
}

func (e *cacheEntry) get() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

func (e *cacheEntry) waitForBuild() *Snapshot {
	e.mu.Lock()
	for e.building {
		e.cond.Wait()
	}
	s := e.snap
	e.mu.Unlock()
	return s
}

// startBuild claims the entry for building and returns the generation the
// build starts from.
func (e *cacheEntry) startBuild() (uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snap != nil || e.building {
		return 0, false
	}
	e.building = true
	return e.gen, true
}

// finishBuild stores snap unless the entry was invalidated after the build
// started, and reports whether it was stored.
func (e *cacheEntry) finishBuild(snap *Snapshot, gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.building = false
	stored := snap != nil && e.gen == gen
	if stored {
		e.snap = snap
	}
	e.cond.Broadcast()
	return stored
}

// invalidate drops the snapshot and fences off any build in flight.
func (e *cacheEntry) invalidate() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	dropped := e.snap != nil || e.building
	e.snap = nil
	e.gen++
	return dropped
}

func cacheKey(db *sql.DB, palette string, opts factory.Options) string {
	return fmt.Sprintf("%p|%s|%s|%s", db, palette, opts.Kind, opts.Search)
}

func getCacheEntry(key string) *cacheEntry {
	sharedCache.mu.RLock()
	entry := sharedCache.byKey[key]
	sharedCache.mu.RUnlock()
	if entry != nil {
		return entry
	}
	sharedCache.mu.Lock()
	defer sharedCache.mu.Unlock()
	if entry = sharedCache.byKey[key]; entry == nil {
		entry = newCacheEntry()
		sharedCache.byKey[key] = entry
	}
	return entry
}

// cached returns the snapshot held for the key without building one.
func cached(db *sql.DB, palette string, opts factory.Options) *Snapshot {
	sharedCache.mu.RLock()
	entry := sharedCache.byKey[cacheKey(db, palette, opts)]
	sharedCache.mu.RUnlock()
	if entry == nil {
		return nil
	}
	return entry.get()
}

// Invalidate drops cached snapshots of the palette table across all
// databases and options, returning how many were dropped. A build running
// concurrently is discarded when it completes.
func Invalidate(palette string) int {
	sharedCache.mu.RLock()
	defer sharedCache.mu.RUnlock()
	pattern := "|" + palette + "|"
	count := 0
	for k, entry := range sharedCache.byKey {
		if strings.Contains(k, pattern) && entry.invalidate() {
			count++
		}
	}
	return count
}

// Load returns the cached snapshot for the palette, building it from the
// palette table on a miss. Concurrent callers wait for a single build.
func Load(ctx context.Context, db *sql.DB, palette string, opts factory.Options) (*Snapshot, error) {
	return load(ctx, db, db, palette, opts)
}

// load caches under keyDB and reads the palette through src.
func load(ctx context.Context, keyDB, src *sql.DB, palette string, opts factory.Options) (*Snapshot, error) {
	if keyDB == nil || src == nil {
		return nil, fmt.Errorf("nearest: db is nil")
	}
	if err := rgb.ValidateTable(palette); err != nil {
		return nil, err
	}
	entry := getCacheEntry(cacheKey(keyDB, palette, opts))
	for {
		if s := entry.get(); s != nil {
			return s, nil
		}
		gen, ok := entry.startBuild()
		if !ok {
			if s := entry.waitForBuild(); s != nil {
				return s, nil
			}
			continue
		}
		snap, err := buildSnapshotFn(ctx, src, palette, opts)
		if !entry.finishBuild(snap, gen) {
			if err != nil {
				return nil, err
			}
			// Invalidated while building: the rows read may predate the write.
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			continue
		}
		return snap, nil
	}
}

// Warm builds and caches the palette's snapshot, returning its size. Warming
// before querying through the virtual table keeps xFilter free of database
// access.
func Warm(ctx context.Context, db *sql.DB, palette string, opts factory.Options) (int, error) {
	snap, err := Load(ctx, db, palette, opts)
	if err != nil {
		return 0, err
	}
	return snap.Index.Len(), nil
}

// Rebuild drops any cached snapshot of the palette and builds a fresh one.
func Rebuild(ctx context.Context, db *sql.DB, palette string, opts factory.Options) (int, error) {
	Invalidate(palette)
	return Warm(ctx, db, palette, opts)
}

// Query answers one nearest-colour query through the cache.
func Query(ctx context.Context, db *sql.DB, palette string, query rgb.Point, opts factory.Options) (Match, error) {
	snap, err := Load(ctx, db, palette, opts)
	if err != nil {
		return Match{}, err
	}
	return snap.Nearest(query)
}

var buildSnapshotFn = buildSnapshot

func buildSnapshot(ctx context.Context, db *sql.DB, palette string, opts factory.Options) (*Snapshot, error) {
	store, err := rgb.NewSQLiteStoreTable(db, palette)
	if err != nil {
		return nil, err
	}
	labels, err := store.Palette(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := factory.FromPalette(labels, opts)
	if err != nil {
		return nil, fmt.Errorf("nearest: palette %s: %w", palette, err)
	}
	return &Snapshot{Index: idx, Labels: labels}, nil
}
