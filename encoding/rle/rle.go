// Package rle implements the Parquet RLE/bit-packed hybrid encoding used
// for repetition/definition levels and (as PLAIN_DICTIONARY/RLE_DICTIONARY
// values) dictionary indices.
//
// Each run is a varint header `count<<1 | is_bitpacked` followed by
// either a little-endian fixed-width literal (RLE run: count is the run
// length, literal is ceil(bitWidth/8) bytes) or `count` groups of 8
// bit-packed values (bit-packed run: count is the number of groups).
package rle

import "github.com/pqwriter/parquet/internal/bitpack"

// Encoding is a stateless RLE/bit-packed hybrid codec for a fixed bit
// width, matching the teacher's convention of encoding a bit width in the
// struct rather than a method parameter.
type Encoding struct {
	BitWidth int
}

// Encoder accumulates values and produces a concatenated sequence of
// RLE and bit-packed runs, choosing RLE runs greedily when a value
// repeats at least 8 times.
type Encoder struct {
	enc    Encoding
	values []uint32
}

// NewEncoder returns an Encoder for the given bit width.
func NewEncoder(bitWidth int) *Encoder {
	return &Encoder{enc: Encoding{BitWidth: bitWidth}}
}

// Write appends v to the pending value sequence.
func (e *Encoder) Write(v uint32) { e.values = append(e.values, v) }

// Reset discards all pending values.
func (e *Encoder) Reset() { e.values = e.values[:0] }

// Len returns the number of values written since the last Reset.
func (e *Encoder) Len() int { return len(e.values) }

// Bytes encodes all pending values and appends the result to dst.
func (e *Encoder) Bytes(dst []byte) []byte {
	return e.enc.Encode(dst, e.values)
}

// Encode appends the hybrid-encoded form of values to dst.
func (enc Encoding) Encode(dst []byte, values []uint32) []byte {
	i := 0
	for i < len(values) {
		runLen := 1
		for i+runLen < len(values) && values[i+runLen] == values[i] && runLen < (1<<28) {
			runLen++
		}
		if runLen >= 8 {
			dst = appendVarint(dst, uint64(runLen)<<1)
			dst = appendFixedWidth(dst, values[i], enc.BitWidth)
			i += runLen
			continue
		}
		// Accumulate a bit-packed run: scan forward until a run of >= 8
		// repeats would be more efficient, collecting in groups of 8.
		start := i
		for i < len(values) {
			// Look ahead for a long repeat to end the bit-packed run.
			j := i
			rep := 1
			for j+rep < len(values) && values[j+rep] == values[j] && rep < 8 {
				rep++
			}
			if rep >= 8 {
				break
			}
			i++
		}
		groupLen := i - start
		// Bit-packed runs hold a whole number of 8-value groups: the run
		// takes in the values that follow it up to the next multiple of
		// 8, and only the last group of the stream is zero-padded.
		padded := (groupLen + 7) / 8 * 8
		if start+padded < len(values) {
			i = start + padded
		} else {
			i = len(values)
		}
		count := (padded / 8)
		dst = appendVarint(dst, uint64(count<<1)|1)
		var block [8]uint32
		for k := 0; k < padded; k += 8 {
			block = [8]uint32{}
			for n := 0; n < 8 && start+k+n < len(values); n++ {
				block[n] = values[start+k+n]
			}
			dst = bitpack.Pack8(dst, &block, enc.BitWidth)
		}
	}
	return dst
}

func appendVarint(dst []byte, u uint64) []byte {
	for {
		if u < 0x80 {
			return append(dst, byte(u))
		}
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
}

func appendFixedWidth(dst []byte, v uint32, bitWidth int) []byte {
	n := (bitWidth + 7) / 8
	for i := 0; i < n; i++ {
		dst = append(dst, byte(v))
		v >>= 8
	}
	return dst
}

// Decoder decodes a sequence of RLE/bit-packed hybrid runs.
type Decoder struct {
	bitWidth int
	src      []byte
	pos      int
	run      []uint32
	runPos   int
}

// NewDecoder returns a Decoder reading from src at the given bit width.
func NewDecoder(src []byte, bitWidth int) *Decoder {
	return &Decoder{bitWidth: bitWidth, src: src}
}

// Next returns the next decoded value, or ok == false at end of input.
func (d *Decoder) Next() (v uint32, ok bool) {
	for d.runPos >= len(d.run) {
		if !d.fill() {
			return 0, false
		}
	}
	v = d.run[d.runPos]
	d.runPos++
	return v, true
}

func (d *Decoder) fill() bool {
	if d.pos >= len(d.src) {
		return false
	}
	header, n := readVarint(d.src[d.pos:])
	d.pos += n
	count := header >> 1
	d.run = d.run[:0]
	d.runPos = 0
	if header&1 == 0 {
		v := readFixedWidth(d.src[d.pos:], d.bitWidth)
		d.pos += (d.bitWidth + 7) / 8
		for i := uint64(0); i < count; i++ {
			d.run = append(d.run, v)
		}
		return true
	}
	groups := int(count)
	var block [8]uint32
	for g := 0; g < groups; g++ {
		bitpack.Unpack8(&block, d.src[d.pos:], d.bitWidth)
		d.pos += d.bitWidth
		d.run = append(d.run, block[:]...)
	}
	return true
}

func readVarint(src []byte) (uint64, int) {
	var u uint64
	var shift uint
	for i, b := range src {
		u |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return u, i + 1
		}
		shift += 7
	}
	return u, len(src)
}

func readFixedWidth(src []byte, bitWidth int) uint32 {
	n := (bitWidth + 7) / 8
	var v uint32
	for i := 0; i < n; i++ {
		v |= uint32(src[i]) << (8 * i)
	}
	return v
}
