package rendertask

import (
	"fmt"

	"github.com/gogpu/rendertask/freelist"
)

// CacheEntryHandle refers to a Cache entry. It expires when the entry is
// dropped, after which Cache.Entry panics.
type CacheEntryHandle = freelist.WeakHandle

// CacheEntry is one cached render task.
type CacheEntry struct {
	// Handle is the entry's allocation in the texture store.
	Handle TextureCacheHandle

	pendingTask TaskID
	hasPending  bool
	userData    [3]float32
	hasUserData bool
	isOpaque    bool
}

// PendingTask returns the task rendering the entry this frame, if any.
func (e *CacheEntry) PendingTask() (TaskID, bool) {
	return e.pendingTask, e.hasPending
}

// UserData returns the payload passed through to the GPU, if any.
func (e *CacheEntry) UserData() ([3]float32, bool) {
	return e.userData, e.hasUserData
}

// IsOpaque reports whether the cached content is fully opaque.
func (e *CacheEntry) IsOpaque() bool {
	return e.isOpaque
}

func (e *CacheEntry) setUserData(userData *[3]float32) {
	if userData == nil {
		e.userData = [3]float32{}
		e.hasUserData = false
		return
	}
	e.userData = *userData
	e.hasUserData = true
}

// BuildFunc adds the task chain for a cache entry to g and returns the id of
// the task whose output is cached.
type BuildFunc func(g *Graph) (TaskID, error)

// Cache keeps render task outputs in a TextureStore across frames, keyed by
// content.
//
// The cache outlives frames; it is pruned by BeginFrame and promotes newly
// built tasks in Update. Cache is not safe for concurrent use.
type Cache struct {
	entries  map[CacheKey]freelist.Handle
	list     *freelist.List[CacheEntry]
	eviction Eviction
}

// NewCache creates an empty cache. A nil cfg uses the defaults of NewConfig.
func NewCache(cfg *Config) *Cache {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Cache{
		entries:  make(map[CacheKey]freelist.Handle),
		list:     freelist.New[CacheEntry](),
		eviction: cfg.CacheEviction,
	}
}

// Clear drops every entry. Outstanding entry handles expire.
func (c *Cache) Clear() {
	clear(c.entries)
	c.list.Clear()
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// BeginFrame drops entries whose storage the store has evicted since they
// were last used. The store decides what to evict; this only keeps the key
// map from growing without bound.
func (c *Cache) BeginFrame(store TextureStore) {
	for key, h := range c.entries {
		entry := c.list.Get(h)
		if store.IsAllocated(entry.Handle) {
			continue
		}
		Logger().Debug("rendertask: cache entry evicted", "key", key)
		c.list.Free(h)
		delete(c.entries, key)
	}
}

// Update allocates texture storage for every entry rendered this frame and
// moves its task from a dynamic target into the store. Call it once all
// task sizes are final.
func (c *Cache) Update(store TextureStore, g *Graph) {
	for _, entry := range c.list.All() {
		if !entry.hasPending {
			continue
		}
		task := g.Task(entry.pendingTask)
		entry.hasPending = false

		loc, ok := task.Location.(DynamicLocation)
		if !ok {
			bug("dynamic task was expected for cache promotion, got %T", task.Location)
		}

		desc := ImageDescriptor{
			Format:   task.TargetKind().Format(),
			Width:    loc.Size.Width,
			Height:   loc.Size.Height,
			IsOpaque: entry.isOpaque,
		}
		store.Update(&entry.Handle, desc, entry.userData, task.UVRectKind(), c.eviction)

		texture, layer, rect := store.Location(entry.Handle)
		task.Location = TextureCacheLocation{
			Texture: texture,
			Layer:   layer,
			Rect:    rect,
		}

		Logger().Debug("rendertask: cached task promoted",
			"task", entry.pendingTask,
			"texture", texture,
			"layer", layer,
			"rect", rect)
	}
}

// Request looks up the entry for key, creating it if needed. When the store
// reports that the entry must be rendered and it is not already being
// rendered this frame, build is called to add its task chain to g. The
// resulting task is rendered before the rest of the graph.
//
// A failing build is returned wrapped in ErrCacheBuild. An entry created by
// this call is then removed again, so the cache is left as it was.
func (c *Cache) Request(
	key CacheKey,
	store TextureStore,
	g *Graph,
	userData *[3]float32,
	isOpaque bool,
	build BuildFunc,
) (CacheEntryHandle, error) {
	h, ok := c.entries[key]
	created := !ok
	if created {
		entry := CacheEntry{isOpaque: isOpaque}
		entry.setUserData(userData)
		h = c.list.Insert(entry)
		c.entries[key] = h
	}

	entry := c.list.Get(h)
	if entry.hasPending || !store.Request(entry.Handle) {
		return h.Weak(), nil
	}

	id, err := build(g)
	if err != nil {
		if created {
			c.list.Free(h)
			delete(c.entries, key)
		}
		return CacheEntryHandle{}, fmt.Errorf("%w: %v: %w", ErrCacheBuild, key, err)
	}

	// build may have requested other entries and moved the slot storage.
	entry = c.list.Get(h)
	g.addCacheable(id)
	entry.pendingTask = id
	entry.hasPending = true
	entry.setUserData(userData)
	entry.isOpaque = isOpaque

	Logger().Debug("rendertask: cached task built", "key", key, "task", id)
	return h.Weak(), nil
}

// Entry returns the entry for h. Using an expired handle is a bug.
func (c *Cache) Entry(h CacheEntryHandle) *CacheEntry {
	entry, ok := c.list.GetOpt(h)
	if !ok {
		bug("invalid render task cache handle %v", h)
	}
	return entry
}

func (c *Cache) lookup(key CacheKey) *CacheEntry {
	h, ok := c.entries[key]
	if !ok {
		bug("render task cache key %v was never requested", key)
	}
	return c.list.Get(h)
}

// CacheItem returns the stored location of key. The key must have been
// requested and promoted.
func (c *Cache) CacheItem(store TextureStore, key CacheKey) CacheItem {
	entry := c.lookup(key)
	if entry.hasPending {
		bug("render task cache key %v is still pending", key)
	}
	return store.Get(entry.Handle)
}

// IsAllocated reports whether the storage for key is still live. The key
// must have been requested.
func (c *Cache) IsAllocated(store TextureStore, key CacheKey) bool {
	return store.IsAllocated(c.lookup(key).Handle)
}
