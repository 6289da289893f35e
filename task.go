package rendertask

import (
	"fmt"
	"math"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/math/fixed"
)

// MaxTaskSize bounds both dimensions of a task's output. Anything larger is
// a bug in the caller's size computation.
const MaxTaskSize = 16000

// FloatsPerTaskData is the number of floats in a packed task record.
const FloatsPerTaskData = 8

// SavedTargetIndex identifies a render target whose contents are kept alive
// after its pass, so that later passes in the frame can read it.
type SavedTargetIndex int32

// SavedTargetPending marks a task whose target must be saved but has not
// been given an index yet. The target allocator replaces it.
const SavedTargetPending SavedTargetIndex = math.MaxInt32

// Task is one node of the render task graph.
type Task struct {
	Location  Location
	Children  []TaskID
	Kind      Kind
	ClearMode ClearMode

	// SavedIndex is non-nil when the task's target must outlive its pass.
	SavedIndex *SavedTargetIndex
}

func sanityCheckSize(size Size) {
	if size.Width > MaxTaskSize || size.Height > MaxTaskSize {
		bug("attempting to create a render task of size %dx%d", size.Width, size.Height)
	}
}

func newDynamicTask(size Size, children []TaskID, kind Kind, clear ClearMode) Task {
	sanityCheckSize(size)
	if size.Width <= 0 || size.Height <= 0 {
		bug("attempting to create an empty render task of size %dx%d", size.Width, size.Height)
	}

	return Task{
		Location:  DynamicLocation{Size: size},
		Children:  children,
		Kind:      kind,
		ClearMode: clear,
	}
}

// NewPicture creates a task that renders a picture. unclippedSize is the
// picture's full device size; when the location is at least that large the
// picture can be merged into its parent without a separate surface.
func NewPicture(
	location Location,
	unclippedSize SizeF,
	picIndex PictureIndex,
	contentOrigin Point,
	children []TaskID,
	uvRectKind UVRectKind,
	rootSpatialNode SpatialNodeIndex,
	devicePixelScale DevicePixelScale,
) Task {
	var size Size
	switch loc := location.(type) {
	case DynamicLocation:
		size = loc.Size
	case FixedLocation:
		size = loc.Rect.Size
	case TextureCacheLocation:
		size = loc.Rect.Size
	default:
		panic(fmt.Sprintf("rendertask: unhandled location %T", location))
	}

	sanityCheckSize(size)

	canMerge := float32(size.Width) >= unclippedSize.Width &&
		float32(size.Height) >= unclippedSize.Height

	return Task{
		Location: location,
		Children: children,
		Kind: PictureTask{
			PicIndex:         picIndex,
			CanMerge:         canMerge,
			ContentOrigin:    contentOrigin,
			RootSpatialNode:  rootSpatialNode,
			UVRectKind:       uvRectKind,
			DevicePixelScale: devicePixelScale,
		},
		ClearMode: ClearTransparent,
	}
}

// NewBlit creates a task that copies source into a new target of size.
func NewBlit(size Size, source BlitSource) Task {
	return NewBlitWithPadding(size, SideOffsets{}, source)
}

// NewBlitWithPadding creates a blit whose target is grown by padding.
// When the source is another task it becomes a dependency, so that it is
// allocated in an earlier pass and available as an input.
func NewBlitWithPadding(size Size, padding SideOffsets, source BlitSource) Task {
	var children []TaskID
	if src, ok := source.(BlitSourceTask); ok {
		children = append(children, src.ID)
	}

	size.Width += padding.Horizontal()
	size.Height += padding.Vertical()

	return newDynamicTask(size, children, BlitTask{
		Source:  source,
		Padding: padding,
	}, ClearTransparent)
}

// NewLineDecoration creates a task that renders one tile of a styled line.
func NewLineDecoration(
	size Size,
	style LineStyle,
	orientation LineOrientation,
	wavyLineThickness float32,
	localSize SizeF,
) Task {
	return newDynamicTask(size, nil, LineDecorationTask{
		WavyLineThickness: wavyLineThickness,
		Style:             style,
		Orientation:       orientation,
		LocalSize:         localSize,
	}, ClearTransparent)
}

// NewRoundedRectMask creates a task that rasterizes a single rounded rect
// clip into an alpha target.
func NewRoundedRectMask(
	size Size,
	clipDataAddress GPUCacheAddress,
	localPos PointF,
	devicePixelScale DevicePixelScale,
	cfg *Config,
) Task {
	clear := ClearDontCare
	if cfg.GPUSupportsFastClears {
		clear = ClearOne
	}

	return newDynamicTask(size, nil, ClipRegionTask{
		ClipDataAddress:  clipDataAddress,
		LocalPos:         localPos,
		DevicePixelScale: devicePixelScale,
	}, clear)
}

// NewBorderSegment creates a task that renders border segment instances.
func NewBorderSegment(size Size, instances []BorderInstance) Task {
	return newDynamicTask(size, nil, BorderTask{Instances: instances}, ClearTransparent)
}

// NewScaling creates a task that downscales src into a target of the given
// size. Every pixel is written, so the target is not cleared.
func NewScaling(src TaskID, g *Graph, targetKind TargetKind, size Size) Task {
	uvRectKind := g.Task(src).UVRectKind()

	return newDynamicTask(size, []TaskID{src}, ScalingTask{
		TargetKind: targetKind,
		UVRectKind: uvRectKind,
	}, ClearDontCare)
}

// NewGlyph creates a task that rasterizes a glyph at a fixed location.
func NewGlyph(
	location Location,
	glyph font.GID,
	origin Point,
	subpixelOffset fixed.Point26_6,
	renderMode FontRenderMode,
	emboldenAmount PointF,
) Task {
	return Task{
		Location: location,
		Kind: GlyphTask{
			Glyph:          glyph,
			Origin:         origin,
			SubpixelOffset: subpixelOffset,
			RenderMode:     renderMode,
			EmboldenAmount: emboldenAmount,
		},
		ClearMode: ClearTransparent,
	}
}

// UVRectKind returns how the task's output maps onto UV space. Cache masks
// are never sampled as textures, asking for one is a bug.
func (t *Task) UVRectKind() UVRectKind {
	switch k := t.Kind.(type) {
	case CacheMaskTask:
		bug("unexpected render task: cache masks have no uv rect")
		return UVRect
	case PictureTask:
		return k.UVRectKind
	case VerticalBlurTask:
		return k.UVRectKind
	case HorizontalBlurTask:
		return k.UVRectKind
	case ScalingTask:
		return k.UVRectKind
	case ClipRegionTask, GlyphTask, BorderTask, LineDecorationTask, BlitTask:
		return UVRect
	default:
		panic(fmt.Sprintf("rendertask: unhandled kind %T", t.Kind))
	}
}

// DynamicSize returns the size to allocate for the task. Fixed locations
// need no allocation and report zero.
func (t *Task) DynamicSize() Size {
	switch loc := t.Location.(type) {
	case FixedLocation:
		return Size{}
	case DynamicLocation:
		return loc.Size
	case TextureCacheLocation:
		return loc.Rect.Size
	default:
		panic(fmt.Sprintf("rendertask: unhandled location %T", t.Location))
	}
}

// TargetRect returns the resolved output rectangle and target index.
//
// Tasks are added before their picture is known to be visible, so a task
// may never be assigned to a pass. Such a task still owns a row of task
// data but reports an empty rect at target 0 and draws nothing.
func (t *Task) TargetRect() (Rect, TargetIndex) {
	switch loc := t.Location.(type) {
	case FixedLocation:
		return loc.Rect, 0
	case DynamicLocation:
		if !loc.Allocated {
			return Rect{}, 0
		}
		return Rect{Origin: loc.Origin, Size: loc.Size}, loc.Target
	case TextureCacheLocation:
		return loc.Rect, TargetIndex(loc.Layer)
	default:
		panic(fmt.Sprintf("rendertask: unhandled location %T", t.Location))
	}
}

// TargetKind returns the kind of target the task renders into.
func (t *Task) TargetKind() TargetKind {
	switch k := t.Kind.(type) {
	case LineDecorationTask, GlyphTask, BorderTask, PictureTask, BlitTask:
		return TargetKindColor
	case ClipRegionTask, CacheMaskTask:
		return TargetKindAlpha
	case VerticalBlurTask:
		return k.TargetKind
	case HorizontalBlurTask:
		return k.TargetKind
	case ScalingTask:
		return k.TargetKind
	default:
		panic(fmt.Sprintf("rendertask: unhandled kind %T", t.Kind))
	}
}

// WriteTaskData packs the task into the fixed-width record read by the
// shaders. The layout must match the shader side declaration:
//
//	[0..4) target rect x, y, width, height
//	[4]    target index
//	[5..8) kind specific data
func (t *Task) WriteTaskData() TaskData {
	var data [3]float32
	switch k := t.Kind.(type) {
	case PictureTask:
		data = [3]float32{
			float32(k.DevicePixelScale),
			float32(k.ContentOrigin.X),
			float32(k.ContentOrigin.Y),
		}
	case CacheMaskTask:
		data = [3]float32{
			float32(k.DevicePixelScale),
			float32(k.ActualRect.Origin.X),
			float32(k.ActualRect.Origin.Y),
		}
	case ClipRegionTask:
		data = [3]float32{float32(k.DevicePixelScale), 0, 0}
	case VerticalBlurTask:
		data = [3]float32{k.StdDeviation, 0, 0}
	case HorizontalBlurTask:
		data = [3]float32{k.StdDeviation, 0, 0}
	case GlyphTask:
		data = [3]float32{0, 1, 0}
	case ScalingTask, BorderTask, LineDecorationTask, BlitTask:
	default:
		panic(fmt.Sprintf("rendertask: unhandled kind %T", t.Kind))
	}

	rect, target := t.TargetRect()
	// Primitives inside a fixed location are already placed in output
	// space, so the shader must not shift them again.
	if _, ok := t.Location.(FixedLocation); ok {
		rect.Origin = Point{}
	}

	return TaskData{
		float32(rect.Origin.X),
		float32(rect.Origin.Y),
		float32(rect.Size.Width),
		float32(rect.Size.Height),
		float32(target),
		data[0],
		data[1],
		data[2],
	}
}

func (t *Task) uvRectHandle() (*GPUCacheHandle, UVRectKind, bool) {
	switch k := t.Kind.(type) {
	case PictureTask:
		return &k.UVRectHandle, k.UVRectKind, true
	case VerticalBlurTask:
		return &k.UVRectHandle, k.UVRectKind, true
	case HorizontalBlurTask:
		return &k.UVRectHandle, k.UVRectKind, true
	case ClipRegionTask, ScalingTask, BlitTask, BorderTask, CacheMaskTask, LineDecorationTask, GlyphTask:
		return nil, UVRect, false
	default:
		panic(fmt.Sprintf("rendertask: unhandled kind %T", t.Kind))
	}
}

// setUVRectHandle stores an updated handle back into the kind. Kinds are
// values, so the pointer from uvRectHandle refers to a copy.
func (t *Task) setUVRectHandle(h GPUCacheHandle) {
	switch k := t.Kind.(type) {
	case PictureTask:
		k.UVRectHandle = h
		t.Kind = k
	case VerticalBlurTask:
		k.UVRectHandle = h
		t.Kind = k
	case HorizontalBlurTask:
		k.UVRectHandle = h
		t.Kind = k
	}
}

// TextureAddress returns the GPU cache address of the task's uv rect. Only
// pictures and blurs are sampled through the GPU cache.
func (t *Task) TextureAddress(gpuCache GPUCache) GPUCacheAddress {
	h, _, ok := t.uvRectHandle()
	if !ok {
		bug("texture handle not supported for %s tasks", kindName(t.Kind))
	}
	return gpuCache.Address(*h)
}

// PrepareForRender runs after all resources for the frame are resolved. No
// task kind currently defers work to this point.
func (t *Task) PrepareForRender() {}

// WriteGPUBlocks writes the uv rect of pictures and blurs into the GPU
// cache so later tasks can sample them.
func (t *Task) WriteGPUBlocks(gpuCache GPUCache) {
	h, uvRectKind, ok := t.uvRectHandle()
	if !ok {
		return
	}

	rect, target := t.TargetRect()
	handle := *h
	w, ok := gpuCache.Request(&handle)
	t.setUVRectHandle(handle)
	if !ok {
		return
	}

	src := imageSource{
		p0:           PointF{X: float32(rect.Origin.X), Y: float32(rect.Origin.Y)},
		p1:           PointF{X: float32(rect.Right()), Y: float32(rect.Bottom())},
		textureLayer: float32(target),
		uvRectKind:   uvRectKind,
	}
	src.writeGPUBlocks(w)
}

// MarkForSaving keeps the task's target alive until the end of the frame.
// Tasks in the persistent cache already outlive the frame; marking them is
// a bug.
func (t *Task) MarkForSaving() {
	switch t.Location.(type) {
	case FixedLocation, DynamicLocation:
		pending := SavedTargetPending
		t.SavedIndex = &pending
	case TextureCacheLocation:
		bug("unable to mark a permanently cached task for saving")
	default:
		panic(fmt.Sprintf("rendertask: unhandled location %T", t.Location))
	}
}
