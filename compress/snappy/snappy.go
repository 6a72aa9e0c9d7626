// Package snappy implements the SNAPPY compress.Codec using
// klauspost/compress/s2's Snappy-compatible encode/decode functions.
package snappy

import (
	"github.com/klauspost/compress/s2"

	"github.com/pqwriter/parquet/compress"
	"github.com/pqwriter/parquet/format"
)

func init() {
	compress.Register(Codec{})
}

// Codec implements compress.Codec for format.Snappy.
type Codec struct{}

func (Codec) CompressionCodec() format.CompressionCodec { return format.Snappy }

func (Codec) Encode(dst, src []byte) ([]byte, error) {
	out := s2.EncodeSnappy(nil, src)
	return append(dst, out...), nil
}

func (Codec) Decode(dst, src []byte) ([]byte, error) {
	out, err := s2.Decode(nil, src)
	if err != nil {
		return dst, err
	}
	return append(dst, out...), nil
}
