// Package uncompressed implements the identity compress.Codec for
// format.Uncompressed.
package uncompressed

import (
	"github.com/pqwriter/parquet/compress"
	"github.com/pqwriter/parquet/format"
)

func init() {
	compress.Register(Codec{})
}

// Codec is the identity codec: Encode and Decode both copy src verbatim.
type Codec struct{}

func (Codec) CompressionCodec() format.CompressionCodec { return format.Uncompressed }

func (Codec) Encode(dst, src []byte) ([]byte, error) {
	return append(dst, src...), nil
}

func (Codec) Decode(dst, src []byte) ([]byte, error) {
	return append(dst, src...), nil
}
