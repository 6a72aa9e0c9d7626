// Package delta implements DELTA_BINARY_PACKED, DELTA_LENGTH_BYTE_ARRAY
// and DELTA_BYTE_ARRAY.
//
// DELTA_BINARY_PACKED layout: header = varint(block_size), varint(
// miniblocks_per_block), varint(total_value_count), zigzag-varint(
// first_value); then per block: zigzag-varint(min_delta), one byte per
// miniblock giving its bit width, then each miniblock's values bit-packed
// at (value - min_delta).
package delta

import "github.com/pqwriter/parquet/internal/bitpack"

const (
	blockSize       = 128
	miniBlockCount  = 4
	miniBlockSize   = blockSize / miniBlockCount
)

// BinaryPackedEncoder encodes a stream of int64 values (int32 values are
// widened by callers) using DELTA_BINARY_PACKED.
type BinaryPackedEncoder struct {
	values []int64
}

// Write appends v to the pending value sequence.
func (e *BinaryPackedEncoder) Write(v int64) { e.values = append(e.values, v) }

// Reset discards pending values.
func (e *BinaryPackedEncoder) Reset() { e.values = e.values[:0] }

// Len returns the number of pending values.
func (e *BinaryPackedEncoder) Len() int { return len(e.values) }

// Bytes encodes all pending values, appending the result to dst.
func (e *BinaryPackedEncoder) Bytes(dst []byte) []byte {
	dst = appendUvarint(dst, uint64(blockSize))
	dst = appendUvarint(dst, uint64(miniBlockCount))
	dst = appendUvarint(dst, uint64(len(e.values)))
	if len(e.values) == 0 {
		dst = appendZigzag(dst, 0)
		return dst
	}
	dst = appendZigzag(dst, e.values[0])

	deltas := make([]int64, 0, blockSize)
	prev := e.values[0]
	for i := 1; i < len(e.values); i++ {
		deltas = append(deltas, e.values[i]-prev)
		prev = e.values[i]
	}

	for off := 0; off < len(deltas); off += blockSize {
		block := deltas[off:min(off+blockSize, len(deltas))]
		dst = encodeBlock(dst, block)
	}
	return dst
}

func encodeBlock(dst []byte, block []int64) []byte {
	minDelta := block[0]
	for _, d := range block {
		if d < minDelta {
			minDelta = d
		}
	}
	dst = appendZigzag(dst, minDelta)

	widths := make([]int, miniBlockCount)
	miniblocks := make([][]uint32, miniBlockCount)
	for m := 0; m < miniBlockCount; m++ {
		start := m * miniBlockSize
		if start >= len(block) {
			widths[m] = 0
			continue
		}
		end := min(start+miniBlockSize, len(block))
		values := make([]uint32, miniBlockSize)
		var maxV uint32
		for i := start; i < end; i++ {
			v := uint32(block[i] - minDelta)
			values[i-start] = v
			if v > maxV {
				maxV = v
			}
		}
		widths[m] = bitpack.BitWidth(uint64(maxV))
		miniblocks[m] = values
	}
	for _, w := range widths {
		dst = append(dst, byte(w))
	}
	for m, w := range widths {
		if w == 0 {
			continue
		}
		dst = bitpack.PackN(dst, miniblocks[m], w)
	}
	return dst
}

func appendUvarint(dst []byte, u uint64) []byte {
	for {
		if u < 0x80 {
			return append(dst, byte(u))
		}
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
}

func appendZigzag(dst []byte, v int64) []byte {
	return appendUvarint(dst, uint64((v<<1)^(v>>63)))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// LengthByteArrayEncoder encodes BYTE_ARRAY values using
// DELTA_LENGTH_BYTE_ARRAY: a DELTA_BINARY_PACKED stream of lengths
// followed by the concatenated raw bytes.
type LengthByteArrayEncoder struct {
	lengths BinaryPackedEncoder
	data    []byte
}

// Write appends v to the pending value sequence.
func (e *LengthByteArrayEncoder) Write(v []byte) {
	e.lengths.Write(int64(len(v)))
	e.data = append(e.data, v...)
}

// Reset discards pending values.
func (e *LengthByteArrayEncoder) Reset() {
	e.lengths.Reset()
	e.data = e.data[:0]
}

// Len returns the number of pending values.
func (e *LengthByteArrayEncoder) Len() int { return e.lengths.Len() }

// Bytes encodes all pending values, appending the result to dst.
func (e *LengthByteArrayEncoder) Bytes(dst []byte) []byte {
	dst = e.lengths.Bytes(dst)
	return append(dst, e.data...)
}

// ByteArrayEncoder encodes BYTE_ARRAY values using DELTA_BYTE_ARRAY:
// prefix lengths (shared bytes with the previous value) and suffix
// lengths, both DELTA_BINARY_PACKED, followed by the concatenated suffix
// bytes.
type ByteArrayEncoder struct {
	prefixes BinaryPackedEncoder
	suffixes BinaryPackedEncoder
	data     []byte
	prev     []byte
}

// Write appends v to the pending value sequence.
func (e *ByteArrayEncoder) Write(v []byte) {
	n := commonPrefixLen(e.prev, v)
	e.prefixes.Write(int64(n))
	e.suffixes.Write(int64(len(v) - n))
	e.data = append(e.data, v[n:]...)
	e.prev = append(e.prev[:0], v...)
}

// Reset discards pending values.
func (e *ByteArrayEncoder) Reset() {
	e.prefixes.Reset()
	e.suffixes.Reset()
	e.data = e.data[:0]
	e.prev = e.prev[:0]
}

// Len returns the number of pending values.
func (e *ByteArrayEncoder) Len() int { return e.prefixes.Len() }

// Bytes encodes all pending values, appending the result to dst.
func (e *ByteArrayEncoder) Bytes(dst []byte) []byte {
	dst = e.prefixes.Bytes(dst)
	dst = e.suffixes.Bytes(dst)
	return append(dst, e.data...)
}

func commonPrefixLen(a, b []byte) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
