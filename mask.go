package rendertask

import "fmt"

// Resources are the cross-frame collaborators the builders request cached
// content from.
type Resources struct {
	GPUCache GPUCache
	Store    TextureStore
	Cache    *Cache
}

// MaskRequest describes the clip mask of one primitive.
type MaskRequest struct {
	// OuterRect is the device space rect the mask covers.
	OuterRect Rect

	Range           ClipNodeRange
	RootSpatialNode SpatialNodeIndex
	Clips           ClipStore
	ClipData        ClipDataStore

	SnapOffsets      SnapOffsets
	DevicePixelScale DevicePixelScale
}

// NewMask builds the CacheMask task that composes the clips in req.Range.
//
// Box shadow clips are rendered once into the render task cache and reused
// across frames. The mask does not depend on them directly, since a cached
// shadow may already be available from an earlier frame.
func NewMask(g *Graph, res Resources, cfg *Config, req MaskRequest) Task {
	// Fast clears are cheaper than the shader work of skipping them.
	needsClear := cfg.GPUSupportsFastClears

	for i := range req.Range.Count {
		instance := req.Clips.InstanceFromRange(req.Range, i)
		node := req.ClipData.Node(instance.Handle)

		switch item := node.Item.(type) {
		case *ClipBoxShadow:
			requestBoxShadow(g, res, cfg, req.DevicePixelScale, item)
		case ClipRectangle:
			// A clip rect outside the mask's coordinate system only needs a
			// clear when the mask ends up tiled. That is rare, so clear
			// whenever one is present.
			if item.Mode == ClipModeClip && !instance.Flags.Contains(ClipSameCoordSystem) {
				needsClear = true
			}
		case ClipRoundedRectangle, ClipImage:
		default:
			panic(fmt.Sprintf("rendertask: unhandled clip item %T", node.Item))
		}
	}

	clear := ClearDontCare
	if needsClear {
		clear = ClearOne
	}

	return newDynamicTask(req.OuterRect.Size, nil, CacheMaskTask{
		ActualRect:       req.OuterRect,
		RootSpatialNode:  req.RootSpatialNode,
		ClipNodeRange:    req.Range,
		SnapOffsets:      req.SnapOffsets,
		DevicePixelScale: req.DevicePixelScale,
	}, clear)
}

// requestBoxShadow requests a blurred, minimal sized rounded rect for a box
// shadow clip and stores the cache handle on the clip.
func requestBoxShadow(
	g *Graph,
	res Resources,
	cfg *Config,
	devicePixelScale DevicePixelScale,
	shadow *ClipBoxShadow,
) {
	if shadow.CacheKey == nil {
		bug("box shadow clip has no cache key")
	}

	size := shadow.CacheSize
	key := *shadow.CacheKey
	blurRadius := float32(key.BlurRadiusDP)
	clipDataAddress := res.GPUCache.Address(shadow.ClipDataHandle)

	h, err := res.Cache.Request(
		CacheKey{Size: size, Kind: key},
		res.Store,
		g,
		nil,
		false,
		func(g *Graph) (TaskID, error) {
			mask := g.Add(NewRoundedRectMask(
				size,
				clipDataAddress,
				shadow.MinimalShadowRect.Origin,
				devicePixelScale,
				cfg,
			))

			blur := NewBlur(SizeF{Width: blurRadius, Height: blurRadius}, mask, g, TargetKindAlpha, ClearZero)
			return g.Add(blur), nil
		},
	)
	if err != nil {
		Logger().Warn("rendertask: box shadow skipped", "size", size, "err", err)
		shadow.CacheHandle = CacheEntryHandle{}
		return
	}

	shadow.CacheHandle = h
}
