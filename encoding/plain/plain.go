// Package plain implements the PLAIN encoding: little-endian fixed-width
// for numeric types, 4-byte length prefix + bytes for BYTE_ARRAY, bare
// bytes for FIXED_LEN_BYTE_ARRAY, and LSB-first bit-packing for BOOLEAN.
package plain

import "encoding/binary"

// AppendBoolean appends the bit at logical position i within a
// LSB-first-packed boolean stream to dst, growing dst as needed. Callers
// typically call this once per value with increasing i.
func AppendBoolean(dst []byte, i int, bit bool) []byte {
	byteIdx := i / 8
	for len(dst) <= byteIdx {
		dst = append(dst, 0)
	}
	if bit {
		dst[byteIdx] |= 1 << (i % 8)
	}
	return dst
}

// AppendInt32 appends the little-endian encoding of v to dst.
func AppendInt32(dst []byte, v int32) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(v))
}

// AppendInt64 appends the little-endian encoding of v to dst.
func AppendInt64(dst []byte, v int64) []byte {
	return binary.LittleEndian.AppendUint64(dst, uint64(v))
}

// AppendInt96 appends the little-endian encoding of a 12-byte INT96 value
// (three uint32 words, low to high) to dst.
func AppendInt96(dst []byte, v [12]byte) []byte {
	return append(dst, v[:]...)
}

// AppendFloat32 appends the little-endian IEEE-754 encoding of v to dst.
func AppendFloat32(dst []byte, bits uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, bits)
}

// AppendFloat64 appends the little-endian IEEE-754 encoding of v to dst.
func AppendFloat64(dst []byte, bits uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, bits)
}

// AppendByteArray appends a 4-byte little-endian length prefix followed by
// v's bytes to dst.
func AppendByteArray(dst []byte, v []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(v)))
	return append(dst, v...)
}

// AppendFixedLenByteArray appends v's bytes verbatim (no length prefix) to
// dst; callers are responsible for ensuring len(v) matches the column's
// configured type length.
func AppendFixedLenByteArray(dst []byte, v []byte) []byte {
	return append(dst, v...)
}

// ReadBoolean returns the bit at logical position i within a
// LSB-first-packed boolean stream.
func ReadBoolean(src []byte, i int) bool {
	return src[i/8]&(1<<(i%8)) != 0
}

// ReadInt32 decodes the little-endian int32 at the start of src.
func ReadInt32(src []byte) int32 { return int32(binary.LittleEndian.Uint32(src)) }

// ReadInt64 decodes the little-endian int64 at the start of src.
func ReadInt64(src []byte) int64 { return int64(binary.LittleEndian.Uint64(src)) }

// ReadByteArray decodes the length-prefixed byte array at the start of
// src, returning the value and the number of bytes consumed.
func ReadByteArray(src []byte) (value []byte, n int) {
	length := int(binary.LittleEndian.Uint32(src))
	return src[4 : 4+length], 4 + length
}

// BooleanByteCount returns the number of bytes needed to bit-pack n
// boolean values.
func BooleanByteCount(n int) int { return (n + 7) / 8 }
