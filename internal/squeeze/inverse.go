package squeeze

import (
	"fmt"

	"github.com/deepteams/modular/internal/parallel"
	"github.com/deepteams/modular/internal/plane"
)

// invColsPerTask is the column block size for parallel vertical
// unsqueeze. Vertical reconstruction of a row depends on the previous
// reconstructed row, so the work splits across columns instead.
const invColsPerTask = 64

// Inverse undoes Forward: parameters are traversed in reverse, each
// averaged/residual plane pair is merged back into the full-resolution
// channel, and the consumed residual planes are removed from the list.
// The parameter sequence must be the one given to Forward.
func Inverse(img *plane.Image, params []Params, pool *parallel.Pool) error {
	for i := len(params) - 1; i >= 0; i-- {
		prm := params[i]
		if err := checkParams(prm, len(img.Channels)); err != nil {
			return err
		}
		offset := prm.BeginC + prm.NumC
		if !prm.InPlace {
			offset = len(img.Channels) - prm.NumC
		}
		if offset < prm.BeginC+prm.NumC || offset+prm.NumC > len(img.Channels) {
			return fmt.Errorf("%w: residual range [%d,%d) with %d channels",
				ErrInvalidParams, offset, offset+prm.NumC, len(img.Channels))
		}
		// Validate every pair before touching the list, so a malformed
		// parameter mutates nothing.
		for c := prm.BeginC; c < prm.BeginC+prm.NumC; c++ {
			ch := img.Channels[c]
			res := img.Channels[offset+c-prm.BeginC]
			var ok bool
			if prm.Horizontal {
				ok = ch.H == res.H && ch.W == (ch.W+res.W+1)/2
			} else {
				ok = ch.W == res.W && ch.H == (ch.H+res.H+1)/2
			}
			if !ok {
				return fmt.Errorf("modular: residual plane %dx%d does not match averaged plane %dx%d",
					res.W, res.H, ch.W, ch.H)
			}
		}
		for c := prm.BeginC; c < prm.BeginC+prm.NumC; c++ {
			rc := offset + c - prm.BeginC
			var err error
			if prm.Horizontal {
				err = InvHSqueeze(img, c, rc, pool)
			} else {
				err = InvVSqueeze(img, c, rc, pool)
			}
			if err != nil {
				return err
			}
		}
		img.Remove(offset, prm.NumC)
	}
	return nil
}

// InvHSqueeze merges the averaged plane at c with the residual plane at
// rc into a full-width channel, which replaces channel c. The residual
// plane stays in the list; Inverse removes it after the whole parameter
// is processed.
func InvHSqueeze(img *plane.Image, c, rc int, pool *parallel.Pool) error {
	chin := img.Channels[c]
	res := img.Channels[rc]
	chout, err := plane.New(chin.W+res.W, chin.H, chin.HShift-1, chin.VShift)
	if err != nil {
		return err
	}

	pool.Run(chin.H, func(y int) {
		pavg := chin.Row(y)
		pres := res.Row(y)
		pout := chout.Row(y)
		for x := 0; x < res.W; x++ {
			av := int64(pavg[x])
			nextAvg := av
			if x+1 < chin.W {
				nextAvg = int64(pavg[x+1])
			}
			left := av
			if x > 0 {
				left = int64(pout[2*x-1])
			}
			diff := int64(pres[x]) + smoothTendency(left, av, nextAvg)
			a := clampPixel(av + diff/2)
			pout[2*x] = a
			pout[2*x+1] = clampPixel(int64(a) - diff)
		}
		if chout.W&1 != 0 {
			pout[chout.W-1] = pavg[chin.W-1]
		}
	})

	img.Channels[c] = chout
	return nil
}

// InvVSqueeze is the column-wise counterpart of InvHSqueeze.
func InvVSqueeze(img *plane.Image, c, rc int, pool *parallel.Pool) error {
	chin := img.Channels[c]
	res := img.Channels[rc]
	chout, err := plane.New(chin.W, chin.H+res.H, chin.HShift, chin.VShift-1)
	if err != nil {
		return err
	}

	ntasks := (chin.W + invColsPerTask - 1) / invColsPerTask
	pool.Run(ntasks, func(t int) {
		x0 := t * invColsPerTask
		x1 := x0 + invColsPerTask
		if x1 > chin.W {
			x1 = chin.W
		}
		for y := 0; y < res.H; y++ {
			pavg := chin.Row(y)
			pres := res.Row(y)
			poutA := chout.Row(2 * y)
			poutB := chout.Row(2*y + 1)
			var pavgNext []int32
			if y+1 < chin.H {
				pavgNext = chin.Row(y + 1)
			}
			var ptop []int32
			if y > 0 {
				ptop = chout.Row(2*y - 1)
			}
			for x := x0; x < x1; x++ {
				av := int64(pavg[x])
				nextAvg := av
				if pavgNext != nil {
					nextAvg = int64(pavgNext[x])
				}
				top := av
				if ptop != nil {
					top = int64(ptop[x])
				}
				diff := int64(pres[x]) + smoothTendency(top, av, nextAvg)
				a := clampPixel(av + diff/2)
				poutA[x] = a
				poutB[x] = clampPixel(int64(a) - diff)
			}
		}
		if chout.H&1 != 0 {
			copy(chout.Row(chout.H-1)[x0:x1], chin.Row(chin.H-1)[x0:x1])
		}
	})

	img.Channels[c] = chout
	return nil
}
