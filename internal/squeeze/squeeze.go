// Package squeeze implements the reversible squeeze decomposition used
// by the modular codec: each pass splits one channel along one axis
// into a half-resolution averaged plane and a residual plane biased by
// a local smoothness predictor. The forward and inverse directions are
// exact inverses for any int32 input.
package squeeze

import (
	"errors"
	"fmt"
	"math"

	"github.com/deepteams/modular/internal/plane"
)

// ErrInvalidParams is returned when a squeeze parameter references a
// channel range that does not exist in the image.
var ErrInvalidParams = errors.New("modular: invalid squeeze channel range")

// Params describes one squeeze pass applied independently to each
// channel in [BeginC, BeginC+NumC).
//
// With InPlace set, each residual plane is inserted immediately after
// the squeezed range; otherwise residuals are appended at the end of
// the channel list. The inverse transform must be given the same
// parameter sequence to locate the residuals again.
type Params struct {
	Horizontal bool
	InPlace    bool
	BeginC     int
	NumC       int
}

// checkParams validates p against the current channel count. The same
// check guards both transform directions.
func checkParams(p Params, numChannels int) error {
	if p.NumC < 1 || p.BeginC < 0 || p.BeginC+p.NumC > numChannels {
		return fmt.Errorf("%w: begin=%d num=%d channels=%d",
			ErrInvalidParams, p.BeginC, p.NumC, numChannels)
	}
	return nil
}

// planEntry pairs a source channel index with the insertion index of
// its residual plane.
type planEntry struct {
	src, dst int
}

// squeezePlan expands one parameter into the (source, residual
// destination) index pairs processed for it, given the channel count at
// the start of the parameter. Destinations strictly increase, and each
// insertion shifts only indices at or after it, so earlier insertions
// never invalidate later entries of the same plan.
func squeezePlan(length int, p Params) []planEntry {
	offset := p.BeginC + p.NumC
	if !p.InPlace {
		offset = length
	}
	entries := make([]planEntry, p.NumC)
	for i := range entries {
		entries[i] = planEntry{src: p.BeginC + i, dst: offset + i}
	}
	return entries
}

// maxDefaultDim is the target size of the default schedule: channels
// are squeezed until neither dimension exceeds it.
const maxDefaultDim = 8

// DefaultParams returns the reference squeeze schedule for img: every
// channel squeezed in place, alternating axes until both dimensions of
// the first channel are at most maxDefaultDim. Wide images squeeze
// horizontally first, tall images vertically first. The result may be
// empty, meaning there is nothing worth squeezing.
func DefaultParams(img *plane.Image) []Params {
	if len(img.Channels) == 0 {
		return nil
	}
	w := img.Channels[0].W
	h := img.Channels[0].H
	wide := w > h

	p := Params{BeginC: 0, NumC: len(img.Channels), InPlace: true}
	var params []Params
	for w > maxDefaultDim || h > maxDefaultDim {
		if w > maxDefaultDim && (wide || h <= maxDefaultDim) {
			p.Horizontal = true
			params = append(params, p)
			w = (w + 1) / 2
		} else {
			p.Horizontal = false
			params = append(params, p)
			h = (h + 1) / 2
		}
	}
	return params
}

// avg computes the rounded average of two samples. The tie-break (+1
// only when a > b) together with the arithmetic shift is what makes the
// pair (avg, a-b) exactly invertible; both directions depend on this
// exact rounding.
func avg(a, b int32) int32 {
	s := int64(a) + int64(b)
	if a > b {
		s++
	}
	return int32(s >> 1)
}

// smoothTendency predicts the pair difference at a position from the
// neighboring values b (before), a (the pair average), and n (next).
// For monotone neighborhoods it returns a clamped linear fit of the
// local slope; elsewhere zero. The forward transform subtracts it from
// the raw difference and the inverse adds it back, so both directions
// must share this exact function.
func smoothTendency(b, a, n int64) int64 {
	var diff int64
	if b >= a && a >= n {
		diff = (4*b - 3*n - a + 6) / 12
		if diff-(diff&1) > 2*(b-a) {
			diff = 2*(b-a) + 1
		}
		if diff+(diff&1) > 2*(a-n) {
			diff = 2 * (a - n)
		}
	} else if b <= a && a <= n {
		diff = (4*b - 3*n - a - 6) / 12
		if diff+(diff&1) < 2*(b-a) {
			diff = 2*(b-a) - 1
		}
		if diff-(diff&1) < 2*(a-n) {
			diff = 2 * (a - n)
		}
	}
	return diff
}

// clampPixel clamps a widened intermediate back to the sample range.
// Reconstruction from well-formed residuals never clamps; this bounds
// the output when decoding hostile data.
func clampPixel(v int64) int32 {
	if v < math.MinInt32 {
		return math.MinInt32
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(v)
}
