// Package lz4 implements the LZ4_RAW compress.Codec using
// pierrec/lz4/v4's block API (Parquet's LZ4_RAW codec is the bare LZ4
// block format, with no frame header).
package lz4

import (
	"github.com/pierrec/lz4/v4"

	"github.com/pqwriter/parquet/compress"
	"github.com/pqwriter/parquet/format"
)

func init() {
	compress.Register(Codec{})
}

// Codec implements compress.Codec for format.Lz4Raw.
type Codec struct{}

func (Codec) CompressionCodec() format.CompressionCodec { return format.Lz4Raw }

func (Codec) Encode(dst, src []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, buf)
	if err != nil {
		return dst, err
	}
	if n == 0 && len(src) > 0 {
		// incompressible input: CompressBlock returns n == 0, fall back
		// to storing the block as literals is not supported by the raw
		// API, so store uncompressed via a zero-length compressed block
		// is invalid; retry with a generously sized buffer.
		buf = make([]byte, len(src)*2+64)
		n, err = c.CompressBlock(src, buf)
		if err != nil {
			return dst, err
		}
	}
	return append(dst, buf[:n]...), nil
}

func (Codec) Decode(dst, src []byte) ([]byte, error) {
	// The uncompressed size is not self-described by the raw block
	// format; callers must size the destination buffer to at least the
	// original uncompressed size before calling Decode.
	buf := make([]byte, cap(dst)-len(dst))
	if len(buf) == 0 {
		buf = make([]byte, 4*len(src)+64)
	}
	n, err := lz4.UncompressBlock(src, buf)
	if err != nil {
		return dst, err
	}
	return append(dst, buf[:n]...), nil
}
