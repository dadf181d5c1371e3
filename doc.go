// Package modular provides a pure Go lossless image codec built around
// the squeeze transform from JPEG XL's modular mode.
//
// The squeeze transform repeatedly splits an image channel along one
// axis into a half-resolution averaged plane and a residual plane. The
// residuals are biased by a local-smoothness predictor, so smooth
// regions produce near-zero residuals and the entropy stage sees far
// less information than the raw samples carried. Every step is exactly
// reversible in integer arithmetic: decoding reproduces the original
// samples bit for bit.
//
// Basic usage for encoding:
//
//	err := modular.Encode(writer, img, nil)
//
// Basic usage for decoding:
//
//	img, err := modular.Decode(reader)
//
// The container written by Encode (magic "MSQZ") records the squeeze
// schedule and stores the serialized planes zstd-compressed. It is a
// self-contained format for this package, not a JPEG XL bitstream.
package modular
