package modular

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/deepteams/modular/internal/container"
	"github.com/deepteams/modular/internal/plane"
	"github.com/deepteams/modular/internal/squeeze"
)

// MaxDimension is the maximum allowed width or height of an image, in
// pixels.
const MaxDimension = plane.MaxDimension

// Errors returned by the codec.
var (
	ErrInvalidImage = errors.New("modular: invalid image dimensions")
	ErrCorrupt      = errors.New("modular: corrupt data")
)

// SqueezeParams describes one squeeze pass over the channel range
// [BeginC, BeginC+NumC). Horizontal selects the axis. With InPlace set,
// the residual planes are inserted immediately after the squeezed
// range; otherwise they are appended at the end of the channel list.
type SqueezeParams struct {
	Horizontal bool
	InPlace    bool
	BeginC     int
	NumC       int
}

func toInternalParams(params []SqueezeParams) []squeeze.Params {
	if len(params) == 0 {
		return nil
	}
	out := make([]squeeze.Params, len(params))
	for i, p := range params {
		out[i] = squeeze.Params{
			Horizontal: p.Horizontal,
			InPlace:    p.InPlace,
			BeginC:     p.BeginC,
			NumC:       p.NumC,
		}
	}
	return out
}

// Features describes an MSQZ file's properties.
type Features struct {
	Width       int
	Height      int
	HasAlpha    bool
	NumSqueezes int // squeeze passes recorded in the header
}

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of
// the repeated doublings that io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// DecodeConfig returns the color model and dimensions of an MSQZ image
// without decoding the planes.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("modular: reading data: %w", err)
	}
	h, _, err := container.Parse(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      h.Width,
		Height:     h.Height,
	}, nil
}

// ReadFeatures parses the header of an MSQZ file.
func ReadFeatures(r io.Reader) (Features, error) {
	data, err := readAll(r)
	if err != nil {
		return Features{}, fmt.Errorf("modular: reading data: %w", err)
	}
	h, _, err := container.Parse(data)
	if err != nil {
		return Features{}, err
	}
	return Features{
		Width:       h.Width,
		Height:      h.Height,
		HasAlpha:    h.HasAlpha,
		NumSqueezes: len(h.Params),
	}, nil
}
