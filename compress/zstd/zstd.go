// Package zstd implements the ZSTD compress.Codec using
// klauspost/compress/zstd.
package zstd

import (
	"github.com/klauspost/compress/zstd"

	"github.com/pqwriter/parquet/compress"
	"github.com/pqwriter/parquet/format"
)

func init() {
	compress.Register(Codec{})
}

// Codec implements compress.Codec for format.Zstd.
type Codec struct{}

func (Codec) CompressionCodec() format.CompressionCodec { return format.Zstd }

func (Codec) Encode(dst, src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return dst, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, dst), nil
}

func (Codec) Decode(dst, src []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return dst, err
	}
	defer dec.Close()
	return dec.DecodeAll(src, dst)
}
