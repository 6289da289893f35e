package texstore

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/internal/atlas"
)

// Default store settings.
const (
	// DefaultLayerSize is the default width and height of a texture layer.
	DefaultLayerSize = 2048

	// DefaultBudgetMB is the default memory budget for Auto entries.
	DefaultBudgetMB = 64
)

// Config holds configuration for creating a Store.
type Config struct {
	// LayerSize is the size of every layer of the shared texture arrays.
	// Defaults to DefaultLayerSize in both dimensions.
	LayerSize rendertask.Size

	// Padding is kept free between regions in a layer.
	Padding int32

	// BudgetBytes bounds the memory of the stored regions. When an
	// allocation would exceed it, Auto entries are evicted least recently
	// used first. Defaults to DefaultBudgetMB.
	BudgetBytes uint64
}

// Stats contains texture store usage statistics.
type Stats struct {
	Entries       int
	Textures      int
	Layers        int
	UsedBytes     uint64
	BudgetBytes   uint64
	EvictionCount uint64
}

// String returns a human-readable string of store stats.
func (s Stats) String() string {
	return fmt.Sprintf("TextureStore[%d entries, %d textures, %d layers, %d/%d KB, %d evictions]",
		s.Entries,
		s.Textures,
		s.Layers,
		s.UsedBytes/1024,
		s.BudgetBytes/1024,
		s.EvictionCount)
}

// TextureDesc describes a texture array the renderer must create for the
// store.
type TextureDesc struct {
	ID     rendertask.TextureID
	Format gputypes.TextureFormat
	Size   gputypes.Extent3D
	Usage  gputypes.TextureUsage
}

// textureArray is one texture array. Shared arrays hold every format's
// regular sized regions; a dedicated array holds a single oversized region.
type textureArray struct {
	id        rendertask.TextureID
	format    gputypes.TextureFormat
	size      rendertask.Size
	dedicated bool
	layers    []*atlas.Allocator
}

type entry struct {
	array      *textureArray
	layer      int32
	region     atlas.Region
	userData   [3]float32
	uvRectKind rendertask.UVRectKind
	eviction   rendertask.Eviction
	lastUsed   uint64
	sizeBytes  uint64
	element    *list.Element // position in the LRU list, Auto entries only
}

// Store is a persistent texture store for cached render tasks. It
// implements rendertask.TextureStore.
//
// Store is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	cfg   Config
	frame uint64

	nextHandle  rendertask.TextureCacheHandle
	nextTexture rendertask.TextureID

	entries map[rendertask.TextureCacheHandle]*entry
	arrays  []*textureArray

	// LRU list of Auto entries (front = most recently used)
	lru *list.List

	usedBytes     uint64
	evictionCount uint64
}

var _ rendertask.TextureStore = (*Store)(nil)

// New creates an empty store.
func New(cfg Config) *Store {
	if cfg.LayerSize.Width <= 0 {
		cfg.LayerSize.Width = DefaultLayerSize
	}
	if cfg.LayerSize.Height <= 0 {
		cfg.LayerSize.Height = DefaultLayerSize
	}
	if cfg.Padding < 0 {
		cfg.Padding = 0
	}
	if cfg.BudgetBytes == 0 {
		cfg.BudgetBytes = DefaultBudgetMB * 1024 * 1024
	}

	return &Store{
		cfg:     cfg,
		entries: make(map[rendertask.TextureCacheHandle]*entry),
		lru:     list.New(),
	}
}

// BeginFrame starts a new frame.
func (s *Store) BeginFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame++
}

// EndFrame evicts Eager entries that were not used this frame, then Auto
// entries until the store is within budget.
func (s *Store) EndFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for h, e := range s.entries {
		if e.eviction == rendertask.EvictionEager && e.lastUsed < s.frame {
			s.freeLocked(h, e)
			s.evictionCount++
		}
	}
	s.evictLocked(0)
}

// Request marks h as used this frame. It reports true when h has no
// storage and must be allocated and rendered.
func (s *Store) Request(h rendertask.TextureCacheHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[h]
	if !ok {
		return true
	}
	s.touchLocked(e)
	return false
}

// Update allocates storage for desc and stores the handle in *h. Existing
// storage for *h is released first.
func (s *Store) Update(
	h *rendertask.TextureCacheHandle,
	desc rendertask.ImageDescriptor,
	userData [3]float32,
	uvRectKind rendertask.UVRectKind,
	eviction rendertask.Eviction,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[*h]; ok {
		s.freeLocked(*h, old)
	}

	size := uint64(desc.Width) * uint64(desc.Height) * bytesPerPixel(desc.Format)
	s.evictLocked(size)

	arr, layer, region := s.allocateLocked(desc)

	if *h == 0 {
		s.nextHandle++
		*h = s.nextHandle
	}

	e := &entry{
		array:      arr,
		layer:      layer,
		region:     region,
		userData:   userData,
		uvRectKind: uvRectKind,
		eviction:   eviction,
		lastUsed:   s.frame,
		sizeBytes:  size,
	}
	if eviction == rendertask.EvictionAuto {
		e.element = s.lru.PushFront(*h)
	}
	s.entries[*h] = e
	s.usedBytes += size

	rendertask.Logger().Debug("texstore: allocated",
		"handle", *h,
		"texture", arr.id,
		"layer", layer,
		"region", region,
		"eviction", eviction)
}

// Location returns where h is stored. h must be allocated.
func (s *Store) Location(h rendertask.TextureCacheHandle) (rendertask.TextureID, int32, rendertask.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.mustGetLocked(h)
	return e.array.id, e.layer, regionRect(e.region)
}

// IsAllocated reports whether h refers to live storage.
func (s *Store) IsAllocated(h rendertask.TextureCacheHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[h]
	return ok
}

// Get returns the cache item for h. h must be allocated.
func (s *Store) Get(h rendertask.TextureCacheHandle) rendertask.CacheItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.mustGetLocked(h)
	return rendertask.CacheItem{
		Texture:  e.array.id,
		Layer:    e.layer,
		UVRect:   regionRect(e.region),
		UserData: e.userData,
	}
}

// Evict releases the storage of h regardless of its eviction policy. It
// reports whether h was allocated.
func (s *Store) Evict(h rendertask.TextureCacheHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[h]
	if !ok {
		return false
	}
	s.freeLocked(h, e)
	s.evictionCount++
	return true
}

// Textures describes the texture arrays currently backing the store.
func (s *Store) Textures() []TextureDesc {
	s.mu.Lock()
	defer s.mu.Unlock()

	descs := make([]TextureDesc, 0, len(s.arrays))
	for _, arr := range s.arrays {
		descs = append(descs, TextureDesc{
			ID:     arr.id,
			Format: arr.format,
			Size: gputypes.Extent3D{
				Width:              uint32(arr.size.Width),
				Height:             uint32(arr.size.Height),
				DepthOrArrayLayers: uint32(len(arr.layers)),
			},
			Usage: gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
		})
	}
	return descs
}

// Stats returns current usage statistics.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	layers := 0
	for _, arr := range s.arrays {
		layers += len(arr.layers)
	}
	return Stats{
		Entries:       len(s.entries),
		Textures:      len(s.arrays),
		Layers:        layers,
		UsedBytes:     s.usedBytes,
		BudgetBytes:   s.cfg.BudgetBytes,
		EvictionCount: s.evictionCount,
	}
}

func (s *Store) mustGetLocked(h rendertask.TextureCacheHandle) *entry {
	e, ok := s.entries[h]
	if !ok {
		rendertask.Logger().Error("texstore: unknown handle", "handle", h)
		panic(fmt.Sprintf("texstore: handle %d is not allocated", h))
	}
	return e
}

func (s *Store) touchLocked(e *entry) {
	e.lastUsed = s.frame
	if e.element != nil {
		s.lru.MoveToFront(e.element)
	}
}

// evictLocked evicts Auto entries, least recently used first, until extra
// more bytes fit the budget. Entries used this frame are never evicted.
func (s *Store) evictLocked(extra uint64) {
	for s.usedBytes+extra > s.cfg.BudgetBytes {
		back := s.lru.Back()
		if back == nil {
			return
		}
		h := back.Value.(rendertask.TextureCacheHandle)
		e := s.entries[h]
		if e.lastUsed == s.frame {
			return
		}
		s.freeLocked(h, e)
		s.evictionCount++
	}
}

func (s *Store) freeLocked(h rendertask.TextureCacheHandle, e *entry) {
	if e.element != nil {
		s.lru.Remove(e.element)
	}
	delete(s.entries, h)
	s.usedBytes -= e.sizeBytes

	alloc := e.array.layers[e.layer]
	alloc.Release(e.region)
	if alloc.Live() == 0 {
		alloc.Reset()
	}
	if e.array.dedicated {
		s.removeArrayLocked(e.array)
	}

	rendertask.Logger().Debug("texstore: released", "handle", h, "texture", e.array.id, "layer", e.layer)
}

func (s *Store) removeArrayLocked(arr *textureArray) {
	for i, a := range s.arrays {
		if a == arr {
			s.arrays = append(s.arrays[:i], s.arrays[i+1:]...)
			return
		}
	}
}

// allocateLocked finds a region for desc. Regions larger than a layer get
// a dedicated single layer array.
func (s *Store) allocateLocked(desc rendertask.ImageDescriptor) (*textureArray, int32, atlas.Region) {
	layerSize := s.cfg.LayerSize
	if desc.Width+s.cfg.Padding > layerSize.Width || desc.Height+s.cfg.Padding > layerSize.Height {
		arr := s.newArrayLocked(desc.Format, rendertask.Size{
			Width:  desc.Width + s.cfg.Padding,
			Height: desc.Height + s.cfg.Padding,
		}, true)
		return arr, 0, s.allocateInLayer(arr, 0, desc)
	}

	var arr *textureArray
	for _, a := range s.arrays {
		if a.format == desc.Format && !a.dedicated {
			arr = a
			break
		}
	}
	if arr == nil {
		arr = s.newArrayLocked(desc.Format, layerSize, false)
	}

	for i, alloc := range arr.layers {
		if r, ok := alloc.Allocate(desc.Width, desc.Height); ok {
			return arr, int32(i), r
		}
	}

	arr.layers = append(arr.layers, atlas.New(arr.size.Width, arr.size.Height, s.cfg.Padding))
	layer := int32(len(arr.layers) - 1)
	return arr, layer, s.allocateInLayer(arr, layer, desc)
}

func (s *Store) allocateInLayer(arr *textureArray, layer int32, desc rendertask.ImageDescriptor) atlas.Region {
	r, ok := arr.layers[layer].Allocate(desc.Width, desc.Height)
	if !ok {
		panic(fmt.Sprintf("texstore: %dx%d region does not fit an empty layer", desc.Width, desc.Height))
	}
	return r
}

func (s *Store) newArrayLocked(format gputypes.TextureFormat, size rendertask.Size, dedicated bool) *textureArray {
	s.nextTexture++
	arr := &textureArray{
		id:        s.nextTexture,
		format:    format,
		size:      size,
		dedicated: dedicated,
	}
	if dedicated {
		arr.layers = []*atlas.Allocator{atlas.New(size.Width, size.Height, s.cfg.Padding)}
	}
	s.arrays = append(s.arrays, arr)
	return arr
}

func regionRect(r atlas.Region) rendertask.Rect {
	return rendertask.NewRect(r.X, r.Y, r.Width, r.Height)
}

func bytesPerPixel(format gputypes.TextureFormat) uint64 {
	if format == gputypes.TextureFormatR8Unorm {
		return 1
	}
	return 4
}
