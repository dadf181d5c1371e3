package modular

import "github.com/deepteams/modular/internal/plane"

// Reversible YCoCg-R color rotation, applied to the first three
// channels before squeezing. It is exact in integer arithmetic, so the
// codec stays lossless, and it concentrates most of the signal in the
// first channel, which squeezes better than raw RGB.

// fwdColorTransform rotates (R, G, B) to (Y, Co, Cg) in place.
func fwdColorTransform(channels []*plane.Plane) {
	cr, cg, cb := channels[0], channels[1], channels[2]
	for y := 0; y < cr.H; y++ {
		pr, pg, pb := cr.Row(y), cg.Row(y), cb.Row(y)
		for x := range pr {
			r, g, b := pr[x], pg[x], pb[x]
			co := r - b
			tmp := b + co>>1
			cgv := g - tmp
			pr[x] = tmp + cgv>>1
			pg[x] = co
			pb[x] = cgv
		}
	}
}

// invColorTransform rotates (Y, Co, Cg) back to (R, G, B) in place.
func invColorTransform(channels []*plane.Plane) {
	cy, cco, ccg := channels[0], channels[1], channels[2]
	for y := 0; y < cy.H; y++ {
		py, pco, pcg := cy.Row(y), cco.Row(y), ccg.Row(y)
		for x := range py {
			co, cgv := pco[x], pcg[x]
			tmp := py[x] - cgv>>1
			g := cgv + tmp
			b := tmp - co>>1
			py[x] = b + co
			pco[x] = g
			pcg[x] = b
		}
	}
}
