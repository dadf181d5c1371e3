package squeeze

import (
	"github.com/deepteams/modular/internal/parallel"
	"github.com/deepteams/modular/internal/plane"
)

// Forward applies the given squeeze parameters to img in order. Each
// parameter replaces every channel in its range with the averaged plane
// and inserts the residual plane at the computed index, so later
// parameters see the list as mutated by earlier ones.
//
// With an empty params slice the default schedule is consulted; if that
// is also empty, Forward reports (false, nil) and img is untouched.
// On error the channel list keeps all mutations applied so far; callers
// must treat a failed encode attempt as unusable rather than retry.
func Forward(img *plane.Image, params []Params, pool *parallel.Pool) (bool, error) {
	if len(params) == 0 {
		params = DefaultParams(img)
	}
	if len(params) == 0 {
		return false, nil
	}
	for _, prm := range params {
		if err := checkParams(prm, len(img.Channels)); err != nil {
			return false, err
		}
		for _, e := range squeezePlan(len(img.Channels), prm) {
			var err error
			if prm.Horizontal {
				err = FwdHSqueeze(img, e.src, e.dst, pool)
			} else {
				err = FwdVSqueeze(img, e.src, e.dst, pool)
			}
			if err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// FwdHSqueeze squeezes channel c along rows, replacing it with a plane
// of width ceil(w/2) and inserting the residual plane (width floor(w/2))
// at index rc. If w is odd the trailing column of the averaged plane is
// a direct copy of the last source column.
//
// Rows are independent, so they are distributed across the pool; no
// list mutation happens until every row is done.
func FwdHSqueeze(img *plane.Image, c, rc int, pool *parallel.Pool) error {
	chin := img.Channels[c]
	chout, err := plane.New((chin.W+1)/2, chin.H, chin.HShift+1, chin.VShift)
	if err != nil {
		return err
	}
	res, err := plane.New(chin.W-chout.W, chin.H, chin.HShift+1, chin.VShift)
	if err != nil {
		return err
	}

	pool.Run(chout.H, func(y int) {
		pin := chin.Row(y)
		pout := chout.Row(y)
		pres := res.Row(y)
		for x := 0; x < res.W; x++ {
			a := pin[2*x]
			b := pin[2*x+1]
			av := avg(a, b)
			pout[x] = av

			diff := int64(a) - int64(b)

			nextAvg := int64(av)
			if x+1 < res.W {
				nextAvg = int64(avg(pin[2*x+2], pin[2*x+3]))
			} else if chin.W&1 != 0 {
				nextAvg = int64(pin[2*x+2])
			}
			// The previous pair's second sample, not its average:
			// it is the value the decoder has already reconstructed
			// when it reaches this position.
			left := int64(av)
			if x > 0 {
				left = int64(pin[2*x-1])
			}
			tendency := smoothTendency(left, int64(av), nextAvg)

			pres[x] = int32(diff - tendency)
		}
		if chin.W&1 != 0 {
			x := chout.W - 1
			pout[x] = pin[2*x]
		}
	})

	img.Channels[c] = chout
	img.Insert(rc, res)
	return nil
}

// FwdVSqueeze squeezes channel c along columns, replacing it with a
// plane of height ceil(h/2) and inserting the residual plane (height
// floor(h/2)) at index rc. If h is odd the trailing row of the averaged
// plane is a direct copy of the last source row.
func FwdVSqueeze(img *plane.Image, c, rc int, pool *parallel.Pool) error {
	chin := img.Channels[c]
	chout, err := plane.New(chin.W, (chin.H+1)/2, chin.HShift, chin.VShift+1)
	if err != nil {
		return err
	}
	res, err := plane.New(chin.W, chin.H-chout.H, chin.HShift, chin.VShift+1)
	if err != nil {
		return err
	}

	pool.Run(chout.H, func(y int) {
		pout := chout.Row(y)
		if y >= res.H {
			// Odd height: trailing output row is a direct copy.
			copy(pout, chin.Row(2*y))
			return
		}
		pinA := chin.Row(2 * y)
		pinB := chin.Row(2*y + 1)
		pres := res.Row(y)

		var pinC, pinD []int32
		if y+1 < res.H {
			pinC = chin.Row(2*y + 2)
			pinD = chin.Row(2*y + 3)
		} else if chin.H&1 != 0 {
			pinC = chin.Row(2*y + 2)
		}
		var ptop []int32
		if y > 0 {
			ptop = chin.Row(2*y - 1)
		}

		for x := 0; x < chout.W; x++ {
			a := pinA[x]
			b := pinB[x]
			av := avg(a, b)
			pout[x] = av

			diff := int64(a) - int64(b)

			nextAvg := int64(av)
			if pinD != nil {
				nextAvg = int64(avg(pinC[x], pinD[x]))
			} else if pinC != nil {
				nextAvg = int64(pinC[x])
			}
			top := int64(av)
			if ptop != nil {
				top = int64(ptop[x])
			}
			tendency := smoothTendency(top, int64(av), nextAvg)

			pres[x] = int32(diff - tendency)
		}
	})

	img.Channels[c] = chout
	img.Insert(rc, res)
	return nil
}
