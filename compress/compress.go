// Package compress defines the codec interface used by the page writer
// to compress and decompress page payloads, and a registry mapping each
// format.CompressionCodec to its implementation.
package compress

import (
	"fmt"
	"io"

	"github.com/pqwriter/parquet/format"
)

// Codec compresses and decompresses byte buffers for one compression
// codec. Implementations append to dst and must not retain references to
// src after returning.
type Codec interface {
	// CompressionCodec returns the format.CompressionCodec this Codec
	// implements.
	CompressionCodec() format.CompressionCodec
	// Encode appends the compressed form of src to dst and returns the
	// resulting slice.
	Encode(dst, src []byte) ([]byte, error)
	// Decode appends the decompressed form of src to dst and returns the
	// resulting slice.
	Decode(dst, src []byte) ([]byte, error)
}

// Compressor adapts a Codec to a streaming io.WriteCloser, buffering
// writes and compressing on Close.
type Compressor struct {
	codec Codec
	dst   io.Writer
	buf   []byte
}

// NewCompressor returns a Compressor that writes the compressed form of
// everything written to it to dst when Close is called.
func NewCompressor(dst io.Writer, codec Codec) *Compressor {
	return &Compressor{codec: codec, dst: dst}
}

func (c *Compressor) Write(p []byte) (int, error) {
	c.buf = append(c.buf, p...)
	return len(p), nil
}

// Close compresses the buffered bytes and writes them to the underlying
// writer.
func (c *Compressor) Close() error {
	out, err := c.codec.Encode(nil, c.buf)
	if err != nil {
		return err
	}
	_, err = c.dst.Write(out)
	return err
}

// Decompressor adapts a Codec to a one-shot decoder reading all of src.
type Decompressor struct {
	codec Codec
}

// NewDecompressor returns a Decompressor using codec.
func NewDecompressor(codec Codec) *Decompressor {
	return &Decompressor{codec: codec}
}

// Decompress returns the decompressed form of src, which must have been
// produced by the matching Codec's Encode.
func (d *Decompressor) Decompress(dst, src []byte) ([]byte, error) {
	return d.codec.Decode(dst, src)
}

var registry = map[format.CompressionCodec]Codec{}

// Register installs codec in the process-wide registry under its
// CompressionCodec tag. Register is called from each codec subpackage's
// init function and must not be called concurrently with Lookup.
func Register(codec Codec) {
	registry[codec.CompressionCodec()] = codec
}

// Lookup returns the Codec registered for the given tag, or an error if
// none has been registered (the subpackage implementing it was not
// imported).
func Lookup(tag format.CompressionCodec) (Codec, error) {
	c, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("compress: no codec registered for %s", tag)
	}
	return c, nil
}
