// Package brotli implements the BROTLI compress.Codec using
// andybalholm/brotli.
package brotli

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/pqwriter/parquet/compress"
	"github.com/pqwriter/parquet/format"
)

// defaultQuality is the quality the registered codec uses (BestCompression
// is 11, BestSpeed is 0); 9 balances ratio and throughput for page-sized
// buffers.
const defaultQuality = 9

func init() {
	compress.Register(Codec{Quality: defaultQuality})
}

// Codec implements compress.Codec for format.Brotli.
type Codec struct {
	Quality int
}

func (Codec) CompressionCodec() format.CompressionCodec { return format.Brotli }

func (c Codec) Encode(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst)
	w := brotli.NewWriterLevel(buf, c.Quality)
	if _, err := w.Write(src); err != nil {
		return dst, err
	}
	if err := w.Close(); err != nil {
		return dst, err
	}
	return buf.Bytes(), nil
}

func (Codec) Decode(dst, src []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(src))
	buf := bytes.NewBuffer(dst)
	if _, err := io.Copy(buf, r); err != nil {
		return dst, err
	}
	return buf.Bytes(), nil
}
