package rendertask

import "fmt"

// ClipNodeRange is a contiguous run of clip instances in the clip store.
type ClipNodeRange struct {
	First uint32
	Count uint32
}

// ClipNodeFlags describe how a clip node relates to the spatial node of the
// mask that uses it.
type ClipNodeFlags uint8

const (
	// ClipSameSpatialNode is set when the clip shares the mask's spatial node.
	ClipSameSpatialNode ClipNodeFlags = 1 << iota
	// ClipSameCoordSystem is set when the clip is in the mask's coordinate
	// system, i.e. only translated or scaled relative to it.
	ClipSameCoordSystem
)

// Contains reports whether every flag in other is set.
func (f ClipNodeFlags) Contains(other ClipNodeFlags) bool {
	return f&other == other
}

// ClipMode selects whether a clip keeps its inside or its outside.
type ClipMode uint8

const (
	ClipModeClip ClipMode = iota
	ClipModeClipOut
)

// String returns the string representation of ClipMode.
func (m ClipMode) String() string {
	switch m {
	case ClipModeClip:
		return "Clip"
	case ClipModeClipOut:
		return "ClipOut"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ClipItem is the geometry of a clip node: ClipRectangle,
// ClipRoundedRectangle, ClipImage or *ClipBoxShadow.
type ClipItem interface {
	isClipItem()
}

// ClipRectangle clips to, or out of, an axis aligned rectangle.
type ClipRectangle struct {
	Rect RectF
	Mode ClipMode
}

// BorderRadius holds the corner radii of a rounded rectangle.
type BorderRadius struct {
	TopLeft     SizeF
	TopRight    SizeF
	BottomLeft  SizeF
	BottomRight SizeF
}

// ClipRoundedRectangle clips to, or out of, a rounded rectangle.
type ClipRoundedRectangle struct {
	Rect   RectF
	Radius BorderRadius
	Mode   ClipMode
}

// ClipImage clips with the alpha channel of an image.
type ClipImage struct {
	Key  ImageKey
	Rect RectF
}

// ClipBoxShadow clips with a blurred rounded rectangle. The blurred mask is
// rendered once at a minimal size and reused through the render task cache.
type ClipBoxShadow struct {
	BlurRadius        float32
	MinimalShadowRect RectF
	Mode              ClipMode

	// ClipDataHandle refers to the rounded rect parameters in the GPU cache.
	ClipDataHandle GPUCacheHandle

	// CacheSize and CacheKey are set once the shadow's device size is known.
	// A nil CacheKey when the mask is built is a bug.
	CacheSize Size
	CacheKey  *BoxShadowKey

	// CacheHandle is filled in by NewMask. It expires when the cache entry
	// is evicted.
	CacheHandle CacheEntryHandle
}

func (ClipRectangle) isClipItem()        {}
func (ClipRoundedRectangle) isClipItem() {}
func (ClipImage) isClipItem()            {}
func (*ClipBoxShadow) isClipItem()       {}

// ClipDataHandle refers to a clip node in a ClipDataStore.
type ClipDataHandle uint32

// ClipInstance is one use of a clip node by a clip chain.
type ClipInstance struct {
	Handle ClipDataHandle
	Flags  ClipNodeFlags
}

// ClipNode holds the interned clip geometry.
type ClipNode struct {
	Item ClipItem
}

// ClipStore resolves the instances of a clip node range.
type ClipStore interface {
	InstanceFromRange(r ClipNodeRange, i uint32) ClipInstance
}

// ClipDataStore resolves clip instance handles to their nodes.
type ClipDataStore interface {
	Node(h ClipDataHandle) *ClipNode
}

// ClipNodes is an in-memory ClipStore and ClipDataStore.
type ClipNodes struct {
	nodes     []ClipNode
	instances []ClipInstance
}

// AddNode interns a clip node and returns its handle.
func (c *ClipNodes) AddNode(item ClipItem) ClipDataHandle {
	c.nodes = append(c.nodes, ClipNode{Item: item})
	return ClipDataHandle(len(c.nodes) - 1)
}

// AddRange appends instances and returns the range covering them.
func (c *ClipNodes) AddRange(instances ...ClipInstance) ClipNodeRange {
	r := ClipNodeRange{First: uint32(len(c.instances)), Count: uint32(len(instances))}
	c.instances = append(c.instances, instances...)
	return r
}

// InstanceFromRange returns the i-th instance of r.
func (c *ClipNodes) InstanceFromRange(r ClipNodeRange, i uint32) ClipInstance {
	if i >= r.Count {
		bug("clip instance %d out of range %d+%d", i, r.First, r.Count)
	}
	return c.instances[r.First+i]
}

// Node returns the node for h.
func (c *ClipNodes) Node(h ClipDataHandle) *ClipNode {
	if int(h) >= len(c.nodes) {
		bug("clip data handle %d out of range (%d nodes)", h, len(c.nodes))
	}
	return &c.nodes[h]
}
