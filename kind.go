package rendertask

import (
	"fmt"

	"github.com/go-text/typesetting/font"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/fixed"
)

// TargetKind selects the kind of surface a task renders into.
type TargetKind uint8

const (
	// TargetKindColor is a four channel color target.
	TargetKindColor TargetKind = iota
	// TargetKindAlpha is a single channel coverage target.
	TargetKindAlpha
)

// String returns the string representation of TargetKind.
func (k TargetKind) String() string {
	switch k {
	case TargetKindColor:
		return "Color"
	case TargetKindAlpha:
		return "Alpha"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Format returns the texture format used for targets of this kind.
func (k TargetKind) Format() gputypes.TextureFormat {
	if k == TargetKindAlpha {
		return gputypes.TextureFormatR8Unorm
	}
	return gputypes.TextureFormatBGRA8Unorm
}

// ClearMode selects how a task's target region is initialized before the
// task draws into it.
type ClearMode uint8

const (
	// ClearZero clears to zero. Applicable to color and alpha targets.
	ClearZero ClearMode = iota
	// ClearOne clears to one. Applicable to color and alpha targets.
	ClearOne
	// ClearDontCare skips the clear, the task overwrites every pixel.
	ClearDontCare
	// ClearTransparent clears to transparent black. Color targets only.
	ClearTransparent
)

// String returns the string representation of ClearMode.
func (m ClearMode) String() string {
	switch m {
	case ClearZero:
		return "Zero"
	case ClearOne:
		return "One"
	case ClearDontCare:
		return "DontCare"
	case ClearTransparent:
		return "Transparent"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// LoadOp returns the render pass load operation and clear value that
// implement the clear mode.
func (m ClearMode) LoadOp() (gputypes.LoadOp, gputypes.Color) {
	switch m {
	case ClearOne:
		return gputypes.LoadOpClear, gputypes.Color{R: 1, G: 1, B: 1, A: 1}
	case ClearDontCare:
		return gputypes.LoadOpLoad, gputypes.Color{}
	default:
		return gputypes.LoadOpClear, gputypes.Color{}
	}
}

// TargetIndex identifies a render target within a pass's color or alpha
// target list. For persistent cache locations it is the texture layer.
type TargetIndex int

// TextureID identifies a texture owned by the persistent texture store.
type TextureID uint32

// Location identifies where a task's output is written. It is one of
// FixedLocation, DynamicLocation or TextureCacheLocation.
type Location interface {
	isLocation()
}

// FixedLocation draws into a fixed region of the main framebuffer. This is
// used for the root picture task.
type FixedLocation struct {
	Rect Rect
}

// DynamicLocation is resolved by the target allocator. Until then only
// Size is meaningful.
type DynamicLocation struct {
	Size Size

	// Allocated is set by the target allocator together with Origin and
	// Target. Tasks that were never scheduled keep it false.
	Allocated bool
	Origin    Point
	Target    TargetIndex
}

// TextureCacheLocation persists the output beyond the current frame in the
// external texture store.
type TextureCacheLocation struct {
	Texture TextureID
	Layer   int32
	Rect    Rect
}

func (FixedLocation) isLocation()        {}
func (DynamicLocation) isLocation()      {}
func (TextureCacheLocation) isLocation() {}

// IsDynamic reports whether loc is a DynamicLocation.
func IsDynamic(loc Location) bool {
	_, ok := loc.(DynamicLocation)
	return ok
}

// PictureIndex identifies a picture in the external primitive store.
type PictureIndex uint32

// SpatialNodeIndex identifies a node in the external spatial tree.
type SpatialNodeIndex uint32

// Kind holds the operation specific parameters of a task. It is one of the
// *Task types declared in this file; every consumer switches over all of
// them.
type Kind interface {
	isKind()
}

// PictureTask renders the primitives of a picture.
type PictureTask struct {
	PicIndex         PictureIndex
	CanMerge         bool
	ContentOrigin    Point
	UVRectHandle     GPUCacheHandle
	RootSpatialNode  SpatialNodeIndex
	UVRectKind       UVRectKind
	DevicePixelScale DevicePixelScale
}

// CacheMaskTask composes the clip mask for a primitive.
type CacheMaskTask struct {
	ActualRect       Rect
	RootSpatialNode  SpatialNodeIndex
	ClipNodeRange    ClipNodeRange
	SnapOffsets      SnapOffsets
	DevicePixelScale DevicePixelScale
}

// ClipRegionTask rasterizes a single clip region, e.g. the rounded rect of
// a box shadow.
type ClipRegionTask struct {
	ClipDataAddress  GPUCacheAddress
	LocalPos         PointF
	DevicePixelScale DevicePixelScale
}

// BlurTask holds the parameters of one separable blur direction.
type BlurTask struct {
	StdDeviation float32
	TargetKind   TargetKind
	UVRectHandle GPUCacheHandle
	UVRectKind   UVRectKind
}

// VerticalBlurTask blurs its source along the y axis.
type VerticalBlurTask struct {
	BlurTask
}

// HorizontalBlurTask blurs its source along the x axis.
type HorizontalBlurTask struct {
	BlurTask
}

// ScalingTask downscales its source by a factor of two.
type ScalingTask struct {
	TargetKind   TargetKind
	UVRectHandle GPUCacheHandle
	UVRectKind   UVRectKind
}

// BlitSource is where a blit reads from: BlitSourceImage or BlitSourceTask.
type BlitSource interface {
	isBlitSource()
}

// BlitSourceImage copies from a cached image.
type BlitSourceImage struct {
	Key ImageKey
}

// BlitSourceTask copies from another task's output.
type BlitSourceTask struct {
	ID TaskID
}

func (BlitSourceImage) isBlitSource() {}
func (BlitSourceTask) isBlitSource()  {}

// BlitTask copies a source into the task's location, optionally padded.
type BlitTask struct {
	Source  BlitSource
	Padding SideOffsets
}

// BorderInstance is one GPU instance of a border segment.
type BorderInstance struct {
	TaskOrigin PointF
	LocalRect  RectF
	Color0     [4]float32
	Color1     [4]float32
	Flags      int32
	Widths     SizeF
	Radius     SizeF
	ClipParams [8]float32
}

// BorderTask renders border segment instances.
type BorderTask struct {
	Instances []BorderInstance
}

// LineStyle is the style of a line decoration.
type LineStyle uint8

const (
	LineStyleSolid LineStyle = iota
	LineStyleDotted
	LineStyleDashed
	LineStyleWavy
)

// LineOrientation is the direction of a line decoration.
type LineOrientation uint8

const (
	LineOrientationHorizontal LineOrientation = iota
	LineOrientationVertical
)

// LineDecorationTask renders one tile of a dotted, dashed or wavy line.
type LineDecorationTask struct {
	WavyLineThickness float32
	Style             LineStyle
	Orientation       LineOrientation
	LocalSize         SizeF
}

// FontRenderMode selects the antialiasing mode for glyphs.
type FontRenderMode uint8

const (
	FontRenderMono FontRenderMode = iota
	FontRenderAlpha
	FontRenderSubpixel
)

// GlyphTask rasterizes a glyph outline on the GPU.
type GlyphTask struct {
	Glyph          font.GID
	Origin         Point
	SubpixelOffset fixed.Point26_6
	RenderMode     FontRenderMode
	EmboldenAmount PointF
}

func (PictureTask) isKind()        {}
func (CacheMaskTask) isKind()      {}
func (ClipRegionTask) isKind()     {}
func (VerticalBlurTask) isKind()   {}
func (HorizontalBlurTask) isKind() {}
func (ScalingTask) isKind()        {}
func (BlitTask) isKind()           {}
func (BorderTask) isKind()         {}
func (LineDecorationTask) isKind() {}
func (GlyphTask) isKind()          {}

// kindName returns the short name used in debug output.
func kindName(k Kind) string {
	switch k.(type) {
	case PictureTask:
		return "Picture"
	case CacheMaskTask:
		return "CacheMask"
	case ClipRegionTask:
		return "ClipRegion"
	case VerticalBlurTask:
		return "VerticalBlur"
	case HorizontalBlurTask:
		return "HorizontalBlur"
	case ScalingTask:
		return "Scaling"
	case BlitTask:
		return "Blit"
	case BorderTask:
		return "Border"
	case LineDecorationTask:
		return "LineDecoration"
	case GlyphTask:
		return "Glyph"
	default:
		panic(fmt.Sprintf("rendertask: unhandled kind %T", k))
	}
}
