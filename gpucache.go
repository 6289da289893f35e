package rendertask

// GPUCacheHandle refers to a block range in the external GPU value cache.
// The zero value has never been requested.
type GPUCacheHandle struct {
	ID uint64
}

// GPUCacheAddress is the texel address of a block range in the GPU cache
// texture, as seen by shaders.
type GPUCacheAddress struct {
	U, V uint16
}

// GPUBlockWriter receives the blocks for a GPU cache request.
type GPUBlockWriter interface {
	Push(block [4]float32)
}

// GPUCache is the external per-primitive value cache. Request returns a
// writer when the handle's contents must be (re)written this frame.
type GPUCache interface {
	Request(h *GPUCacheHandle) (GPUBlockWriter, bool)
	Address(h GPUCacheHandle) GPUCacheAddress
}

// UVRectKind describes how a task's output maps onto UV space. Most tasks
// are axis aligned; pictures drawn under a perspective transform carry the
// four projected corners.
type UVRectKind struct {
	Quad        bool
	TopLeft     PointF
	TopRight    PointF
	BottomLeft  PointF
	BottomRight PointF
}

// UVRect is the axis aligned UV mapping.
var UVRect = UVRectKind{}

// imageSource is the GPU cache layout shared by every task that is sampled
// as a texture by later tasks.
type imageSource struct {
	p0, p1       PointF
	textureLayer float32
	userData     [3]float32
	uvRectKind   UVRectKind
}

func (s *imageSource) writeGPUBlocks(w GPUBlockWriter) {
	w.Push([4]float32{s.p0.X, s.p0.Y, s.p1.X, s.p1.Y})
	w.Push([4]float32{s.textureLayer, s.userData[0], s.userData[1], s.userData[2]})
	if s.uvRectKind.Quad {
		k := s.uvRectKind
		w.Push([4]float32{k.TopLeft.X, k.TopLeft.Y, k.TopRight.X, k.TopRight.Y})
		w.Push([4]float32{k.BottomLeft.X, k.BottomLeft.Y, k.BottomRight.X, k.BottomRight.Y})
	}
}
