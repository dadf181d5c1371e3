// Package plane provides the integer sample planes and the ordered
// channel list that the modular transforms operate on.
package plane

import (
	"errors"
	"fmt"
)

// MaxDimension is the maximum allowed width or height of a plane, in
// samples. Planes larger than this cannot be allocated.
const MaxDimension = 1 << 20

// MaxPixels caps the total sample count of a single plane so that a
// hostile header cannot request an absurd allocation.
const MaxPixels = 1 << 28

// ErrTooLarge is returned when a plane allocation exceeds the
// dimension or pixel-count limits.
var ErrTooLarge = errors.New("modular: plane dimensions too large")

// Plane is a 2D grid of int32 samples for one channel. Rows are stored
// row-major with Stride samples between row starts (Stride >= W; the
// padding, if any, is never read or written by the transforms).
//
// HShift and VShift count how many times the plane has been halved
// along each axis by prior squeeze passes; downstream stages use them
// for resolution bookkeeping.
type Plane struct {
	W, H   int
	HShift int
	VShift int
	Stride int
	Data   []int32
}

// New allocates a zeroed plane. Zero-sized planes are valid (a squeeze
// of a width-1 plane produces a width-0 residual).
func New(w, h, hshift, vshift int) (*Plane, error) {
	if w < 0 || h < 0 || w > MaxDimension || h > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}
	if w > 0 && h > MaxPixels/w {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}
	return &Plane{
		W:      w,
		H:      h,
		HShift: hshift,
		VShift: vshift,
		Stride: w,
		Data:   make([]int32, w*h),
	}, nil
}

// Row returns the samples of row y. The returned slice has length W
// regardless of stride.
func (p *Plane) Row(y int) []int32 {
	off := y * p.Stride
	return p.Data[off : off+p.W : off+p.W]
}

// Image is an ordered, growable list of channel planes. The order is
// semantically meaningful: the inverse transform walks parameters in
// reverse and expects residual planes at the positions the forward
// transform inserted them.
type Image struct {
	Channels []*Plane
}

// Insert places p at index i, shifting every channel at or beyond i one
// position to the right.
func (im *Image) Insert(i int, p *Plane) {
	im.Channels = append(im.Channels, nil)
	copy(im.Channels[i+1:], im.Channels[i:])
	im.Channels[i] = p
}

// Remove deletes the n channels starting at index i.
func (im *Image) Remove(i, n int) {
	im.Channels = append(im.Channels[:i], im.Channels[i+n:]...)
}
