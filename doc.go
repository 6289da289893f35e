// Package rendertask builds and schedules the offscreen GPU work of a frame.
//
// # Overview
//
// A frame's offscreen needs (clip masks, blurs, cached sub-pictures, blits,
// borders, line decorations, glyphs) are described as tasks in a [Graph].
// Each task reads the outputs of its children, so the graph is a DAG that
// [Graph.AssignToPasses] turns into a sequence of render passes. Expensive
// results such as blurred box shadows are kept across frames by the [Cache].
//
// # Quick Start
//
//	cfg := rendertask.NewConfig()
//	cache := rendertask.NewCache(cfg)
//
//	// Every frame:
//	cache.BeginFrame(store)
//	g := rendertask.NewGraph(frameID, counters)
//	mask := g.Add(rendertask.NewMask(g, res, cfg, req))
//	cache.Update(store, g)
//	passes, err := target.Schedule(g, mask, true, screenSize, targetCfg)
//	if err != nil {
//	    return err
//	}
//	g.WriteTaskData()
//	counters = g.Counters()
//
// # Architecture
//
// The package is organized into:
//   - Task model: Task, Kind, Location, the task constructors
//   - Builders: NewBlur (downscale and blur chain), NewMask (clip masks)
//   - Graph: arena, pass assignment, GPU data packing, debug printing
//   - Cache: content keyed render task cache on top of a TextureStore
//
// The target package is a reference pass and render target allocator, the
// texstore package a reference persistent texture store.
//
// # Task IDs
//
// A [TaskID] is only valid for the graph that created it. Outside builds
// tagged rendertask_release, every id remembers its frame and using it with
// another frame's graph panics.
//
// # Errors
//
// Violated invariants (oversized tasks, stale ids, cycles, unknown cache
// keys) are programming errors and panic. Only a failing cache builder is
// reported as an error, wrapped in [ErrCacheBuild].
//
// # Thread Safety
//
// Graph and Cache are not safe for concurrent use. They are built by the
// single goroutine producing a frame. [SetLogger] may be called at any time.
package rendertask
