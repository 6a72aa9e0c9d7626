// Package gzip implements the GZIP compress.Codec using
// klauspost/compress's drop-in gzip package for its faster encoder.
package gzip

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/pqwriter/parquet/compress"
	"github.com/pqwriter/parquet/format"
)

func init() {
	compress.Register(Codec{})
}

// Codec implements compress.Codec for format.Gzip.
type Codec struct {
	// Level configures the gzip compression level; zero uses
	// gzip.DefaultCompression.
	Level int
}

func (Codec) CompressionCodec() format.CompressionCodec { return format.Gzip }

func (c Codec) Encode(dst, src []byte) ([]byte, error) {
	level := c.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	buf := bytes.NewBuffer(dst)
	w, err := gzip.NewWriterLevel(buf, level)
	if err != nil {
		return dst, err
	}
	if _, err := w.Write(src); err != nil {
		return dst, err
	}
	if err := w.Close(); err != nil {
		return dst, err
	}
	return buf.Bytes(), nil
}

func (Codec) Decode(dst, src []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return dst, err
	}
	defer r.Close()
	buf := bytes.NewBuffer(dst)
	if _, err := io.Copy(buf, r); err != nil {
		return dst, err
	}
	return buf.Bytes(), nil
}
