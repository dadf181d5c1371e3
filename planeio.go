package modular

import (
	"encoding/binary"
	"fmt"

	"github.com/deepteams/modular/internal/plane"
)

// Plane payload layout (after zstd decompression): planes in channel
// order, each as uvarint w, h, hshift, vshift followed by w*h zigzag
// uvarint samples in row-major order. Dimensions are stored explicitly
// so a decoder can validate them against the squeeze schedule instead
// of trusting it.

// maxPlanes bounds the plane count a payload may declare.
const maxPlanes = 1 << 12

// maxShift bounds the per-axis halving counters.
const maxShift = 30

func zigzag(v int32) uint64 {
	return uint64(uint32((v << 1) ^ (v >> 31)))
}

func unzigzag(u uint64) int32 {
	return int32(uint32(u)>>1) ^ -int32(u&1)
}

// appendPlanes serializes channels onto dst.
func appendPlanes(dst []byte, channels []*plane.Plane) []byte {
	for _, p := range channels {
		dst = binary.AppendUvarint(dst, uint64(p.W))
		dst = binary.AppendUvarint(dst, uint64(p.H))
		dst = binary.AppendUvarint(dst, uint64(p.HShift))
		dst = binary.AppendUvarint(dst, uint64(p.VShift))
		for y := 0; y < p.H; y++ {
			for _, v := range p.Row(y) {
				dst = binary.AppendUvarint(dst, zigzag(v))
			}
		}
	}
	return dst
}

// parsePlanes deserializes a plane payload.
func parsePlanes(data []byte) ([]*plane.Plane, error) {
	var channels []*plane.Plane
	for len(data) > 0 {
		if len(channels) >= maxPlanes {
			return nil, fmt.Errorf("%w: too many planes", ErrCorrupt)
		}
		var hdr [4]uint64
		for i := range hdr {
			v, n := binary.Uvarint(data)
			if n <= 0 {
				return nil, fmt.Errorf("%w: truncated plane header", ErrCorrupt)
			}
			hdr[i] = v
			data = data[n:]
		}
		w, h, hshift, vshift := hdr[0], hdr[1], hdr[2], hdr[3]
		if w > plane.MaxDimension || h > plane.MaxDimension ||
			hshift > maxShift || vshift > maxShift {
			return nil, fmt.Errorf("%w: bad plane header", ErrCorrupt)
		}
		p, err := plane.New(int(w), int(h), int(hshift), int(vshift))
		if err != nil {
			return nil, err
		}
		for y := 0; y < p.H; y++ {
			row := p.Row(y)
			for x := range row {
				v, n := binary.Uvarint(data)
				if n <= 0 {
					return nil, fmt.Errorf("%w: truncated plane data", ErrCorrupt)
				}
				if v > 0xffffffff {
					return nil, fmt.Errorf("%w: sample out of range", ErrCorrupt)
				}
				row[x] = unzigzag(v)
				data = data[n:]
			}
		}
		channels = append(channels, p)
	}
	return channels, nil
}
