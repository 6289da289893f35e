// Package atlas packs rectangles into fixed size render targets and texture
// layers.
package atlas

import "fmt"

// Region is an allocated rectangle inside an Allocator's area.
type Region struct {
	X, Y          int32
	Width, Height int32
}

// IsValid reports whether the region has a non-empty size. Failed
// allocations return the zero Region.
func (r Region) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// Intersects reports whether two regions overlap.
func (r Region) Intersects(o Region) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

func (r Region) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// shelf is one horizontal band of the shelf packer.
type shelf struct {
	y      int32 // top of the shelf
	height int32 // tallest padded item on it
	nextX  int32 // first free x
}

// Allocator packs rectangles into shelves. Items are placed left to right
// on the first shelf they fit; a new shelf opens below the last one when
// none does. Space is only reclaimed by Reset.
//
// Allocator is not safe for concurrent use.
type Allocator struct {
	width   int32
	height  int32
	padding int32

	shelves []shelf

	live     int
	usedArea int64
}

// New creates an allocator for a width x height area. padding is kept free
// to the right of and below every item.
func New(width, height, padding int32) *Allocator {
	return &Allocator{
		width:   width,
		height:  height,
		padding: max(padding, 0),
		shelves: make([]shelf, 0, 16),
	}
}

// Width returns the width of the packed area.
func (a *Allocator) Width() int32 { return a.width }

// Height returns the height of the packed area.
func (a *Allocator) Height() int32 { return a.height }

// Fits reports whether a width x height item could ever be allocated,
// i.e. whether it fits into an empty allocator.
func (a *Allocator) Fits(width, height int32) bool {
	return width > 0 && height > 0 &&
		width+a.padding <= a.width && height+a.padding <= a.height
}

// Allocate finds space for a width x height item. It returns false when
// the item does not fit.
func (a *Allocator) Allocate(width, height int32) (Region, bool) {
	if !a.Fits(width, height) {
		return Region{}, false
	}

	paddedWidth := width + a.padding
	paddedHeight := height + a.padding

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.nextX+paddedWidth > a.width {
			continue
		}
		// Items may be shorter than the shelf, never taller once it is used.
		if paddedHeight > s.height {
			continue
		}

		r := Region{X: s.nextX, Y: s.y, Width: width, Height: height}
		s.nextX += paddedWidth
		a.track(r)
		return r, true
	}

	var y int32
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		y = last.y + last.height
	}
	if y+paddedHeight > a.height {
		return Region{}, false
	}

	a.shelves = append(a.shelves, shelf{y: y, height: paddedHeight, nextX: paddedWidth})
	r := Region{X: 0, Y: y, Width: width, Height: height}
	a.track(r)
	return r, true
}

func (a *Allocator) track(r Region) {
	a.live++
	a.usedArea += int64(r.Width) * int64(r.Height)
}

// Release records that r is no longer used. The space is not reused until
// every region is released and the allocator is Reset.
func (a *Allocator) Release(r Region) {
	if a.live == 0 {
		return
	}
	a.live--
	a.usedArea -= int64(r.Width) * int64(r.Height)
}

// Reset clears all allocations, making the entire area available again.
func (a *Allocator) Reset() {
	a.shelves = a.shelves[:0]
	a.live = 0
	a.usedArea = 0
}

// Live returns the number of allocated regions not yet released.
func (a *Allocator) Live() int {
	return a.live
}

// UsedArea returns the total area of live regions.
func (a *Allocator) UsedArea() int64 {
	return a.usedArea
}

// Utilization returns the fraction of area used (0.0 to 1.0).
func (a *Allocator) Utilization() float64 {
	total := int64(a.width) * int64(a.height)
	if total == 0 {
		return 0
	}
	return float64(a.usedArea) / float64(total)
}
