package container

import (
	"errors"
	"testing"

	"github.com/deepteams/modular/internal/squeeze"
)

func sampleHeader() Header {
	return Header{
		Width:          640,
		Height:         480,
		Channels:       3,
		HasAlpha:       false,
		ColorTransform: true,
		Params: []squeeze.Params{
			{Horizontal: true, InPlace: true, BeginC: 0, NumC: 3},
			{Horizontal: false, BeginC: 1, NumC: 2},
		},
	}
}

func TestRoundtrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	data, err := Append(nil, sampleHeader(), payload)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	h, got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := sampleHeader()
	if h.Width != want.Width || h.Height != want.Height || h.Channels != want.Channels {
		t.Errorf("header = %dx%d/%d, want %dx%d/%d",
			h.Width, h.Height, h.Channels, want.Width, want.Height, want.Channels)
	}
	if h.HasAlpha != want.HasAlpha || h.ColorTransform != want.ColorTransform {
		t.Errorf("flags = %v/%v, want %v/%v",
			h.HasAlpha, h.ColorTransform, want.HasAlpha, want.ColorTransform)
	}
	if len(h.Params) != len(want.Params) {
		t.Fatalf("got %d params, want %d", len(h.Params), len(want.Params))
	}
	for i, p := range h.Params {
		if p != want.Params[i] {
			t.Errorf("param %d = %+v, want %+v", i, p, want.Params[i])
		}
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %v, want %v", got, payload)
	}
}

func TestRoundtripNoParams(t *testing.T) {
	h := Header{Width: 4, Height: 4, Channels: 4, HasAlpha: true}
	data, err := Append(nil, h, nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, payload, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got.Params) != 0 || len(payload) != 0 {
		t.Errorf("got %d params, %d payload bytes, want 0 and 0", len(got.Params), len(payload))
	}
	if !got.HasAlpha {
		t.Error("alpha flag lost")
	}
}

func TestParseErrors(t *testing.T) {
	valid, err := Append(nil, sampleHeader(), []byte{9, 9})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	bad := append([]byte{}, valid...)
	bad[0] = 'X'
	if _, _, err := Parse(bad); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("bad magic: got %v, want ErrInvalidMagic", err)
	}

	bad = append([]byte{}, valid...)
	bad[4] = 99
	if _, _, err := Parse(bad); !errors.Is(err, ErrVersion) {
		t.Errorf("bad version: got %v, want ErrVersion", err)
	}

	for _, n := range []int{0, 4, headerSize - 1, len(valid) - 1} {
		if _, _, err := Parse(valid[:n]); !errors.Is(err, ErrTruncated) {
			t.Errorf("truncated to %d: got %v, want ErrTruncated", n, err)
		}
	}
}

func TestParseRejectsBadDimensions(t *testing.T) {
	h := sampleHeader()
	h.Width = 0
	if _, err := Append(nil, h, nil); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Append with zero width: got %v, want ErrInvalidImage", err)
	}

	// Zero dims written by hand must be rejected on parse too.
	data, err := Append(nil, sampleHeader(), nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	for i := 6; i < 10; i++ {
		data[i] = 0
	}
	if _, _, err := Parse(data); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("zero width: got %v, want ErrInvalidImage", err)
	}
}

func TestAppendRejectsBadParams(t *testing.T) {
	h := sampleHeader()
	h.Params = []squeeze.Params{{NumC: 0}}
	if _, err := Append(nil, h, nil); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("num_c=0: got %v, want ErrInvalidParam", err)
	}
	h.Params = []squeeze.Params{{BeginC: 1 << 17, NumC: 1}}
	if _, err := Append(nil, h, nil); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("begin_c overflow: got %v, want ErrInvalidParam", err)
	}
}
