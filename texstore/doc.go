// Package texstore is a reference persistent texture store for the
// rendertask cache.
//
// Cached render tasks are packed into layered texture arrays, one shared
// array per [gputypes.TextureFormat]. Each layer is filled with a shelf
// allocator and reset once its last region is released. Regions larger
// than a layer get a dedicated array of their own.
//
// # Eviction
//
// Every allocation carries a rendertask.Eviction policy:
//   - Eager: released at [Store.EndFrame] when not requested that frame
//   - Auto: released least recently used first when the byte budget is
//     exceeded
//   - Manual: released only through [Store.Evict]
//
// The renderer creates a texture for every [TextureDesc] returned by
// [Store.Textures] and draws cached tasks straight into their regions.
//
// # Thread Safety
//
// Store is safe for concurrent use.
package texstore
