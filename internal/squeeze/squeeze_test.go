package squeeze

import (
	"errors"
	"testing"

	"github.com/deepteams/modular/internal/plane"
)

// makePlane builds a w x h plane filled row-major from samples.
// Missing samples stay zero.
func makePlane(t *testing.T, w, h int, samples ...int32) *plane.Plane {
	t.Helper()
	p, err := plane.New(w, h, 0, 0)
	if err != nil {
		t.Fatalf("plane.New(%d, %d): %v", w, h, err)
	}
	copy(p.Data, samples)
	return p
}

func TestAvgTieBreak(t *testing.T) {
	tests := []struct {
		a, b, want int32
	}{
		{10, 12, 11},
		{12, 10, 11},  // a > b rounds up
		{10, 11, 10},  // a < b rounds down
		{11, 10, 11},  // a > b rounds up
		{7, 7, 7},
		{-1, 0, -1},   // arithmetic shift, not truncation
		{0, -1, 0},
		{-3, -4, -3},
		{-4, -3, -4},
	}
	for _, tt := range tests {
		if got := avg(tt.a, tt.b); got != tt.want {
			t.Errorf("avg(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAvgNoOverflow(t *testing.T) {
	const maxI32 = 1<<31 - 1
	if got := avg(maxI32, maxI32); got != maxI32 {
		t.Errorf("avg(max, max) = %d, want %d", got, int32(maxI32))
	}
	const minI32 = -1 << 31
	if got := avg(minI32, minI32); got != minI32 {
		t.Errorf("avg(min, min) = %d, want %d", got, int32(minI32))
	}
}

func TestSmoothTendencyFlat(t *testing.T) {
	// A flat neighborhood predicts no difference.
	for _, v := range []int64{-100, 0, 1, 255} {
		if got := smoothTendency(v, v, v); got != 0 {
			t.Errorf("smoothTendency(%d, %d, %d) = %d, want 0", v, v, v, got)
		}
	}
}

func TestSmoothTendencyNonMonotone(t *testing.T) {
	// Non-monotone neighborhoods predict nothing.
	if got := smoothTendency(0, 10, 0); got != 0 {
		t.Errorf("smoothTendency(0, 10, 0) = %d, want 0", got)
	}
	if got := smoothTendency(10, 0, 10); got != 0 {
		t.Errorf("smoothTendency(10, 0, 10) = %d, want 0", got)
	}
}

func TestSmoothTendencyRamp(t *testing.T) {
	// Values verified by hand against the reconstruction identity:
	// on a linear ramp the predicted difference absorbs the slope.
	tests := []struct {
		b, a, n, want int64
	}{
		{11, 11, 15, -1},
		{12, 15, 15, 0},
		{1, 1, 3, -1},
		{2, 3, 5, -1},
		{15, 11, 11, 0}, // clamped so the pair stays monotone
		{5, 3, 1, 1},
	}
	for _, tt := range tests {
		if got := smoothTendency(tt.b, tt.a, tt.n); got != tt.want {
			t.Errorf("smoothTendency(%d, %d, %d) = %d, want %d",
				tt.b, tt.a, tt.n, got, tt.want)
		}
	}
}

func TestCheckParams(t *testing.T) {
	tests := []struct {
		name     string
		p        Params
		channels int
		wantErr  bool
	}{
		{"ok full range", Params{NumC: 3}, 3, false},
		{"ok sub range", Params{BeginC: 1, NumC: 1}, 3, false},
		{"zero num_c", Params{BeginC: 0, NumC: 0}, 3, true},
		{"negative begin", Params{BeginC: -1, NumC: 1}, 3, true},
		{"past end", Params{BeginC: 2, NumC: 2}, 3, true},
		{"empty image", Params{NumC: 1}, 0, true},
	}
	for _, tt := range tests {
		err := checkParams(tt.p, tt.channels)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: checkParams = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidParams) {
			t.Errorf("%s: error %v is not ErrInvalidParams", tt.name, err)
		}
	}
}

func TestSqueezePlan(t *testing.T) {
	inPlace := squeezePlan(5, Params{InPlace: true, BeginC: 1, NumC: 2})
	want := []planEntry{{1, 3}, {2, 4}}
	if len(inPlace) != len(want) {
		t.Fatalf("in-place plan has %d entries, want %d", len(inPlace), len(want))
	}
	for i, e := range inPlace {
		if e != want[i] {
			t.Errorf("in-place plan[%d] = %v, want %v", i, e, want[i])
		}
	}

	appended := squeezePlan(5, Params{BeginC: 1, NumC: 2})
	want = []planEntry{{1, 5}, {2, 6}}
	for i, e := range appended {
		if e != want[i] {
			t.Errorf("append plan[%d] = %v, want %v", i, e, want[i])
		}
	}
}

func TestDefaultParamsSmallImage(t *testing.T) {
	img := &plane.Image{Channels: []*plane.Plane{makePlane(t, 8, 8)}}
	if params := DefaultParams(img); len(params) != 0 {
		t.Errorf("DefaultParams(8x8) = %d params, want 0", len(params))
	}
	if params := DefaultParams(&plane.Image{}); params != nil {
		t.Errorf("DefaultParams(empty) = %v, want nil", params)
	}
}

func TestDefaultParamsAxisOrder(t *testing.T) {
	tests := []struct {
		w, h           int
		wantHorizontal []bool
	}{
		{64, 8, []bool{true, true, true}},
		{8, 64, []bool{false, false, false}},
		{16, 16, []bool{false, true}},       // square counts as tall
		{17, 16, []bool{true, true, false}}, // wide squeezes horizontally first
	}
	for _, tt := range tests {
		img := &plane.Image{Channels: []*plane.Plane{makePlane(t, tt.w, tt.h)}}
		params := DefaultParams(img)
		if len(params) != len(tt.wantHorizontal) {
			t.Errorf("DefaultParams(%dx%d) = %d params, want %d",
				tt.w, tt.h, len(params), len(tt.wantHorizontal))
			continue
		}
		for i, p := range params {
			if p.Horizontal != tt.wantHorizontal[i] {
				t.Errorf("DefaultParams(%dx%d)[%d].Horizontal = %v, want %v",
					tt.w, tt.h, i, p.Horizontal, tt.wantHorizontal[i])
			}
			if !p.InPlace || p.BeginC != 0 || p.NumC != 1 {
				t.Errorf("DefaultParams(%dx%d)[%d] = %+v, want in-place full range",
					tt.w, tt.h, i, p)
			}
		}
	}
}
