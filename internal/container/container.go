// Package container reads and writes the MSQZ container: a fixed
// little-endian header carrying image features and the squeeze
// parameter schedule, followed by a single compressed payload of
// serialized planes.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/deepteams/modular/internal/plane"
	"github.com/deepteams/modular/internal/squeeze"
)

// Magic identifies an MSQZ file.
const Magic = "MSQZ"

// Version is the only container version this package reads or writes.
const Version = 1

// Header feature flags.
const (
	FlagAlpha          = 1 << 0 // fourth channel is alpha
	FlagColorTransform = 1 << 1 // planes carry YCoCg-R, not RGB
)

// Per-parameter flags.
const (
	paramHorizontal = 1 << 0
	paramInPlace    = 1 << 1
)

// headerSize is the fixed part of the header, before the parameter
// list and the payload length.
const headerSize = 18

// maxParams bounds the parameter list so a hostile header cannot force
// a huge allocation before the payload is even touched.
const maxParams = 1 << 12

// Common errors.
var (
	ErrInvalidMagic = errors.New("modular: invalid MSQZ magic")
	ErrVersion      = errors.New("modular: unsupported MSQZ version")
	ErrTruncated    = errors.New("modular: truncated container")
	ErrInvalidImage = errors.New("modular: invalid image dimensions")
	ErrInvalidParam = errors.New("modular: invalid squeeze parameter")
)

// Header describes an MSQZ file: the decoded image's features plus the
// squeeze schedule the decoder must invert.
type Header struct {
	Width          int
	Height         int
	Channels       int
	HasAlpha       bool
	ColorTransform bool
	Params         []squeeze.Params
}

// Append serializes h followed by the payload length and payload.
func Append(dst []byte, h Header, payload []byte) ([]byte, error) {
	if h.Width <= 0 || h.Height <= 0 ||
		h.Width > plane.MaxDimension || h.Height > plane.MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImage, h.Width, h.Height)
	}
	if h.Channels < 1 || h.Channels > 255 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidImage, h.Channels)
	}
	if len(h.Params) > maxParams {
		return nil, fmt.Errorf("%w: %d parameters", ErrInvalidParam, len(h.Params))
	}

	var flags byte
	if h.HasAlpha {
		flags |= FlagAlpha
	}
	if h.ColorTransform {
		flags |= FlagColorTransform
	}

	dst = append(dst, Magic...)
	dst = append(dst, Version, flags)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(h.Width))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(h.Height))
	dst = append(dst, byte(h.Channels), 0)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(h.Params)))
	for _, p := range h.Params {
		if p.BeginC < 0 || p.NumC < 1 || p.BeginC > 0xffff || p.NumC > 0xffff {
			return nil, fmt.Errorf("%w: begin=%d num=%d", ErrInvalidParam, p.BeginC, p.NumC)
		}
		var pf byte
		if p.Horizontal {
			pf |= paramHorizontal
		}
		if p.InPlace {
			pf |= paramInPlace
		}
		dst = append(dst, pf)
		dst = binary.LittleEndian.AppendUint16(dst, uint16(p.BeginC))
		dst = binary.LittleEndian.AppendUint16(dst, uint16(p.NumC))
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(payload)))
	dst = append(dst, payload...)
	return dst, nil
}

// Parse reads the header from data and returns it together with the
// compressed payload. The payload aliases data; it is not copied.
func Parse(data []byte) (Header, []byte, error) {
	var h Header
	if len(data) < headerSize {
		return h, nil, ErrTruncated
	}
	if string(data[0:4]) != Magic {
		return h, nil, ErrInvalidMagic
	}
	if data[4] != Version {
		return h, nil, fmt.Errorf("%w: %d", ErrVersion, data[4])
	}
	flags := data[5]
	h.HasAlpha = flags&FlagAlpha != 0
	h.ColorTransform = flags&FlagColorTransform != 0
	h.Width = int(binary.LittleEndian.Uint32(data[6:10]))
	h.Height = int(binary.LittleEndian.Uint32(data[10:14]))
	h.Channels = int(data[14])
	if h.Width <= 0 || h.Height <= 0 ||
		h.Width > plane.MaxDimension || h.Height > plane.MaxDimension {
		return h, nil, fmt.Errorf("%w: %dx%d", ErrInvalidImage, h.Width, h.Height)
	}
	if h.Channels < 1 {
		return h, nil, fmt.Errorf("%w: %d channels", ErrInvalidImage, h.Channels)
	}

	nparams := int(binary.LittleEndian.Uint16(data[16:18]))
	if nparams > maxParams {
		return h, nil, fmt.Errorf("%w: %d parameters", ErrInvalidParam, nparams)
	}
	off := headerSize
	if len(data) < off+5*nparams+4 {
		return h, nil, ErrTruncated
	}
	if nparams > 0 {
		h.Params = make([]squeeze.Params, nparams)
		for i := range h.Params {
			pf := data[off]
			h.Params[i] = squeeze.Params{
				Horizontal: pf&paramHorizontal != 0,
				InPlace:    pf&paramInPlace != 0,
				BeginC:     int(binary.LittleEndian.Uint16(data[off+1 : off+3])),
				NumC:       int(binary.LittleEndian.Uint16(data[off+3 : off+5])),
			}
			if h.Params[i].NumC < 1 {
				return h, nil, fmt.Errorf("%w: num_c=0", ErrInvalidParam)
			}
			off += 5
		}
	}

	payloadLen := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	if payloadLen < 0 || len(data)-off < payloadLen {
		return h, nil, ErrTruncated
	}
	return h, data[off : off+payloadLen], nil
}
