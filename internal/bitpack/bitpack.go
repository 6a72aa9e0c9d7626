// Package bitpack implements the bit-packing primitives shared by the RLE
// hybrid encoder (definition/repetition levels, dictionary indices) and
// the DELTA_BINARY_PACKED encoder's miniblocks.
//
// Packed values are little-endian within the byte stream: value i occupies
// bits [i*width, i*width+width) of the conceptual bit stream, with bit 0
// of each byte being the least-significant bit, matching Parquet's
// RLE/BIT_PACKED and DELTA_BINARY_PACKED wire formats.
package bitpack

// Pack8 packs 8 values of width bits each into ceil(8*width/8) = width
// bytes, appending them to dst.
func Pack8(dst []byte, values *[8]uint32, width int) []byte {
	if width == 0 {
		return dst
	}
	var bitBuf uint64
	bitLen := 0
	for _, v := range values {
		bitBuf |= uint64(v&mask32(width)) << bitLen
		bitLen += width
		for bitLen >= 8 {
			dst = append(dst, byte(bitBuf))
			bitBuf >>= 8
			bitLen -= 8
		}
	}
	if bitLen > 0 {
		dst = append(dst, byte(bitBuf))
	}
	return dst
}

// Unpack8 decodes 8 values of width bits each from src, which must be at
// least width bytes long, writing them into out.
func Unpack8(out *[8]uint32, src []byte, width int) {
	if width == 0 {
		for i := range out {
			out[i] = 0
		}
		return
	}
	var bitBuf uint64
	bitLen := 0
	pos := 0
	for i := 0; i < 8; i++ {
		for bitLen < width {
			bitBuf |= uint64(src[pos]) << bitLen
			pos++
			bitLen += 8
		}
		out[i] = uint32(bitBuf) & mask32(width)
		bitBuf >>= width
		bitLen -= width
	}
}

// PackN bit-packs count values (count need not be a multiple of 8) of the
// given width, appending the resulting bytes to dst. Values beyond count
// are treated as zero when count is not a multiple of 8.
func PackN(dst []byte, values []uint32, width int) []byte {
	if width == 0 {
		return dst
	}
	var block [8]uint32
	for i := 0; i < len(values); i += 8 {
		block = [8]uint32{}
		n := copy(block[:], values[i:])
		_ = n
		dst = Pack8(dst, &block, width)
	}
	return dst
}

// UnpackN decodes count values of the given width from src into out,
// which must have length >= count.
func UnpackN(out []uint32, src []byte, width int, count int) {
	if width == 0 {
		for i := 0; i < count; i++ {
			out[i] = 0
		}
		return
	}
	var block [8]uint32
	bytesPerGroup := width
	pos := 0
	for i := 0; i < count; i += 8 {
		Unpack8(&block, src[pos:], width)
		pos += bytesPerGroup
		n := copy(out[i:], block[:])
		_ = n
	}
}

// ByteWidth8 returns the number of bytes occupied by 8 values packed at
// the given bit width.
func ByteWidth8(width int) int { return width }

func mask32(width int) uint32 {
	if width >= 32 {
		return 0xFFFFFFFF
	}
	return (uint32(1) << width) - 1
}

// BitWidth returns the minimum number of bits needed to represent values
// in [0, maxValue].
func BitWidth(maxValue uint64) int {
	w := 0
	for maxValue > 0 {
		w++
		maxValue >>= 1
	}
	return w
}
