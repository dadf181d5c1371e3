package modular

import (
	"fmt"
	"image"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/deepteams/modular/internal/container"
	"github.com/deepteams/modular/internal/parallel"
	"github.com/deepteams/modular/internal/plane"
	"github.com/deepteams/modular/internal/squeeze"
)

// maxDecodedPayload caps the decompressed plane payload so a tiny
// hostile file cannot expand into gigabytes.
const maxDecodedPayload = 1 << 31

// Decode reads an MSQZ image from r and returns it as *image.NRGBA.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("modular: reading data: %w", err)
	}
	return decodeBytes(data)
}

func decodeBytes(data []byte) (image.Image, error) {
	hdr, payload, err := container.Parse(data)
	if err != nil {
		return nil, err
	}
	if hdr.Channels != 3 && hdr.Channels != 4 {
		return nil, fmt.Errorf("%w: %d channels", ErrCorrupt, hdr.Channels)
	}

	zdec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxDecodedPayload))
	if err != nil {
		return nil, fmt.Errorf("modular: zstd init: %w", err)
	}
	raw, err := zdec.DecodeAll(payload, nil)
	zdec.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	channels, err := parsePlanes(raw)
	if err != nil {
		return nil, err
	}
	pimg := &plane.Image{Channels: channels}
	if err := squeeze.Inverse(pimg, hdr.Params, parallel.New(0)); err != nil {
		return nil, err
	}

	if len(pimg.Channels) != hdr.Channels {
		return nil, fmt.Errorf("%w: %d planes after unsqueeze, want %d",
			ErrCorrupt, len(pimg.Channels), hdr.Channels)
	}
	for _, p := range pimg.Channels {
		if p.W != hdr.Width || p.H != hdr.Height {
			return nil, fmt.Errorf("%w: plane %dx%d, want %dx%d",
				ErrCorrupt, p.W, p.H, hdr.Width, hdr.Height)
		}
	}
	if hdr.ColorTransform {
		invColorTransform(pimg.Channels)
	}
	return planesToImage(pimg.Channels, hdr.Width, hdr.Height, hdr.HasAlpha), nil
}

// planesToImage interleaves channel planes into an NRGBA image,
// clamping each sample to the byte range.
func planesToImage(channels []*plane.Plane, w, h int, hasAlpha bool) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+4*w]
		for i, p := range channels {
			src := p.Row(y)
			for x := 0; x < w; x++ {
				row[4*x+i] = clampByte(src[x])
			}
		}
		if !hasAlpha {
			for x := 0; x < w; x++ {
				row[4*x+3] = 0xff
			}
		}
	}
	return m
}

// clampByte clamps v to [0, 255].
func clampByte(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
