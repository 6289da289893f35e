package rendertask

import (
	"fmt"
	"math"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/math/fixed"
)

// CacheKey identifies the content of a cached render task. Two requests
// that would render the same pixels must produce equal keys.
type CacheKey struct {
	Size Size
	Kind CacheKeyKind
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%v %+v", k.Size, k.Kind)
}

// CacheKeyKind is the operation specific part of a CacheKey. It is one of
// BoxShadowKey, ImageKey, GlyphKey, BorderSegmentKey or LineDecorationKey.
// Every implementation is comparable so keys can index a map.
type CacheKeyKind interface {
	isCacheKeyKind()
}

// BoxShadowKey identifies a blurred box shadow mask. Radii are in device
// pixels, rounded so nearly equal shadows share an entry.
type BoxShadowKey struct {
	BlurRadiusDP      int32
	ClipMode          ClipMode
	OriginalAllocSize Size
	TopLeft           Size
	TopRight          Size
	BottomRight       Size
	BottomLeft        Size
}

// ImageKey identifies a tile of an external image.
type ImageKey struct {
	Namespace uint32
	ID        uint32
	Tile      Point
}

// FontInstanceKey identifies a font at a given size and variation.
type FontInstanceKey struct {
	Namespace uint32
	ID        uint32
}

// GlyphKey identifies a glyph rasterized on the GPU.
type GlyphKey struct {
	Font           FontInstanceKey
	Glyph          font.GID
	SubpixelOffset fixed.Point26_6
	RenderMode     FontRenderMode
}

// BorderSegmentKey identifies a rendered border corner or edge.
type BorderSegmentKey struct {
	Size     Size
	Radius   Size
	Widths   Size
	Side0    uint32
	Side1    uint32
	Segment  uint8
	DoAA     bool
	Color0   [4]uint8
	Color1   [4]uint8
	Style0   uint8
	Style1   uint8
	HasColor bool
}

// LineDecorationKey identifies a tile of a styled line. Float parameters
// are stored in 26.6 fixed point so keys compare exactly.
type LineDecorationKey struct {
	Style             LineStyle
	Orientation       LineOrientation
	WavyLineThickness fixed.Int26_6
	Width             fixed.Int26_6
	Height            fixed.Int26_6
}

func (BoxShadowKey) isCacheKeyKind()      {}
func (ImageKey) isCacheKeyKind()          {}
func (GlyphKey) isCacheKeyKind()          {}
func (BorderSegmentKey) isCacheKeyKind()  {}
func (LineDecorationKey) isCacheKeyKind() {}

// NewLineDecorationKey quantizes line decoration parameters into a key.
func NewLineDecorationKey(
	style LineStyle,
	orientation LineOrientation,
	wavyLineThickness float32,
	localSize SizeF,
) LineDecorationKey {
	return LineDecorationKey{
		Style:             style,
		Orientation:       orientation,
		WavyLineThickness: toFixed(wavyLineThickness),
		Width:             toFixed(localSize.Width),
		Height:            toFixed(localSize.Height),
	}
}

// toFixed rounds v to the nearest 1/64, half away from zero.
func toFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(float64(v) * 64))
}
