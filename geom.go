package rendertask

import (
	"fmt"
	"math"
)

// Point is an integer position in device pixels.
type Point struct {
	X, Y int32
}

// Size is an integer extent in device pixels.
type Size struct {
	Width, Height int32
}

// IsEmpty reports whether either dimension is zero or negative.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Area returns Width*Height as an int64 so large targets do not overflow.
func (s Size) Area() int64 {
	return int64(s.Width) * int64(s.Height)
}

// ToF returns the size as floating point.
func (s Size) ToF() SizeF {
	return SizeF{Width: float32(s.Width), Height: float32(s.Height)}
}

// DivCeil divides both dimensions by factor, rounding up.
func (s Size) DivCeil(factor float32) Size {
	return Size{
		Width:  int32(math.Ceil(float64(float32(s.Width) / factor))),
		Height: int32(math.Ceil(float64(float32(s.Height) / factor))),
	}
}

// Scale multiplies both dimensions by n.
func (s Size) Scale(n int32) Size {
	return Size{Width: s.Width * n, Height: s.Height * n}
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Rect is an integer rectangle in device pixels, stored as origin plus size.
type Rect struct {
	Origin Point
	Size   Size
}

// NewRect creates a Rect from position and size.
func NewRect(x, y, w, h int32) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

// Right returns the right edge x-coordinate.
func (r Rect) Right() int32 {
	return r.Origin.X + r.Size.Width
}

// Bottom returns the bottom edge y-coordinate.
func (r Rect) Bottom() int32 {
	return r.Origin.Y + r.Size.Height
}

// BottomRight returns the exclusive bottom right corner.
func (r Rect) BottomRight() Point {
	return Point{X: r.Right(), Y: r.Bottom()}
}

// Intersects returns true if two rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.Origin.X < other.Right() && other.Origin.X < r.Right() &&
		r.Origin.Y < other.Bottom() && other.Origin.Y < r.Bottom()
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect(%d,%d %dx%d)", r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height)
}

// SideOffsets holds per-edge padding in device pixels.
type SideOffsets struct {
	Top, Right, Bottom, Left int32
}

// Horizontal returns Left+Right.
func (o SideOffsets) Horizontal() int32 {
	return o.Left + o.Right
}

// Vertical returns Top+Bottom.
func (o SideOffsets) Vertical() int32 {
	return o.Top + o.Bottom
}

// PointF is a floating point position. Depending on context it is in layout
// or device space.
type PointF struct {
	X, Y float32
}

// SizeF is a floating point extent.
type SizeF struct {
	Width, Height float32
}

// Scale multiplies both components by f.
func (s SizeF) Scale(f float32) SizeF {
	return SizeF{Width: s.Width * f, Height: s.Height * f}
}

// RectF is a floating point rectangle.
type RectF struct {
	Origin PointF
	Size   SizeF
}

// DevicePixelScale converts layout units into device pixels.
type DevicePixelScale float32

// SnapOffsets are the sub-pixel adjustments applied to the corners of a
// clip mask so its edges land on device pixels.
type SnapOffsets struct {
	TopLeft     PointF
	BottomRight PointF
}

// ToCacheSize rounds a fractional device size to the integer size used for
// cached render tasks. Every dimension is at least 1, since zero sized tasks
// are not allowed in the graph.
func ToCacheSize(size SizeF) Size {
	return Size{
		Width:  max(1, int32(math.Round(float64(size.Width)))),
		Height: max(1, int32(math.Round(float64(size.Height)))),
	}
}
