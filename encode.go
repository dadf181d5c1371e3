package modular

import (
	"fmt"
	"image"
	"image/draw"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/deepteams/modular/internal/container"
	"github.com/deepteams/modular/internal/parallel"
	"github.com/deepteams/modular/internal/plane"
	"github.com/deepteams/modular/internal/pool"
	"github.com/deepteams/modular/internal/squeeze"
)

// Options controls encoding parameters. A nil *Options selects all
// defaults.
type Options struct {
	// Transforms is the squeeze schedule. When empty, the default
	// schedule is used: every channel squeezed in place, alternating
	// axes, until both image dimensions are at most 8. The schedule
	// actually applied is recorded in the container so the decoder
	// can invert it.
	Transforms []SqueezeParams

	// Workers bounds the number of goroutines used for per-row
	// transform work. 0 selects the number of CPUs, 1 disables
	// parallelism. Output is identical for any value.
	Workers int

	// NoColorTransform skips the reversible YCoCg-R rotation and
	// squeezes the raw RGB planes instead. Usually larger output;
	// useful for non-photographic channel data.
	NoColorTransform bool
}

// Encode writes img to w in the MSQZ format. Encoding is lossless: a
// Decode of the output reproduces every pixel of img exactly (after
// conversion to NRGBA).
func Encode(w io.Writer, img image.Image, o *Options) error {
	if o == nil {
		o = &Options{}
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width < 1 || height < 1 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidImage, width, height)
	}

	nrgba := toNRGBA(img)
	hasAlpha := !nrgba.Opaque()
	channels, err := imageToPlanes(nrgba, hasAlpha)
	if err != nil {
		return err
	}
	useRCT := !o.NoColorTransform
	if useRCT {
		fwdColorTransform(channels)
	}

	pimg := &plane.Image{Channels: channels}
	params := toInternalParams(o.Transforms)
	if len(params) == 0 {
		params = squeeze.DefaultParams(pimg)
	}
	workers := parallel.New(o.Workers)
	if _, err := squeeze.Forward(pimg, params, workers); err != nil {
		return err
	}

	// Varint-serialize the squeezed planes; most samples are small
	// residuals, so this already shrinks the data before zstd sees it.
	scratch := pool.Get(estimatePayload(pimg.Channels))
	raw := appendPlanes(scratch[:0], pimg.Channels)

	zenc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		pool.Put(raw)
		return fmt.Errorf("modular: zstd init: %w", err)
	}
	payload := zenc.EncodeAll(raw, nil)
	zenc.Close()
	pool.Put(raw)

	hdr := container.Header{
		Width:          width,
		Height:         height,
		Channels:       len(channels),
		HasAlpha:       hasAlpha,
		ColorTransform: useRCT,
		Params:         params,
	}
	out, err := container.Append(make([]byte, 0, 64+5*len(params)+len(payload)), hdr, payload)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("modular: writing data: %w", err)
	}
	return nil
}

// toNRGBA returns img as *image.NRGBA, converting only when necessary.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// imageToPlanes splits m into 3 (opaque) or 4 full-resolution channel
// planes.
func imageToPlanes(m *image.NRGBA, hasAlpha bool) ([]*plane.Plane, error) {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	nc := 3
	if hasAlpha {
		nc = 4
	}
	channels := make([]*plane.Plane, nc)
	for i := range channels {
		p, err := plane.New(w, h, 0, 0)
		if err != nil {
			return nil, err
		}
		channels[i] = p
	}
	for y := 0; y < h; y++ {
		off := m.PixOffset(m.Rect.Min.X, m.Rect.Min.Y+y)
		row := m.Pix[off : off+4*w]
		for i, p := range channels {
			dst := p.Row(y)
			for x := 0; x < w; x++ {
				dst[x] = int32(row[4*x+i])
			}
		}
	}
	return channels, nil
}

// estimatePayload guesses the serialized size of channels for the
// scratch buffer: plane headers plus roughly two varint bytes per
// sample.
func estimatePayload(channels []*plane.Plane) int {
	n := 0
	for _, p := range channels {
		n += 16 + 2*p.W*p.H
	}
	return n
}
