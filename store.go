package rendertask

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// TextureCacheHandle refers to an allocation in a TextureStore. The zero
// value has never been allocated.
type TextureCacheHandle uint64

// Eviction selects when a TextureStore may drop an allocation.
type Eviction uint8

const (
	// EvictionAuto lets the store evict the entry when it needs memory.
	EvictionAuto Eviction = iota
	// EvictionManual keeps the entry until it is evicted explicitly.
	EvictionManual
	// EvictionEager drops the entry at the end of any frame that did not
	// request it.
	EvictionEager
)

// String returns the string representation of Eviction.
func (e Eviction) String() string {
	switch e {
	case EvictionAuto:
		return "Auto"
	case EvictionManual:
		return "Manual"
	case EvictionEager:
		return "Eager"
	default:
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// ImageDescriptor describes the storage needed for a cached task.
type ImageDescriptor struct {
	Format   gputypes.TextureFormat
	Width    int32
	Height   int32
	IsOpaque bool
}

// CacheItem is the resolved location of a cached allocation.
type CacheItem struct {
	Texture  TextureID
	Layer    int32
	UVRect   Rect
	UserData [3]float32
}

// TextureStore is the persistent, cross-frame texture storage.
type TextureStore interface {
	// Request marks h as used this frame and reports whether it must be
	// (re)allocated and rendered.
	Request(h TextureCacheHandle) bool

	// Update allocates or reallocates storage for *h. No pixel data is
	// uploaded; the GPU renders straight into the returned region.
	Update(h *TextureCacheHandle, desc ImageDescriptor, userData [3]float32, uvRectKind UVRectKind, eviction Eviction)

	// Location returns where *h is stored.
	Location(h TextureCacheHandle) (TextureID, int32, Rect)

	// IsAllocated reports whether h still refers to live storage.
	IsAllocated(h TextureCacheHandle) bool

	// Get returns the cache item for h.
	Get(h TextureCacheHandle) CacheItem
}
