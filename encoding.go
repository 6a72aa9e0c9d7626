package parquet

import (
	"math"

	"github.com/pqwriter/parquet/encoding/delta"
	"github.com/pqwriter/parquet/encoding/plain"
	"github.com/pqwriter/parquet/encoding/rle"
	"github.com/pqwriter/parquet/format"
)

// ValueEncoder is the uniform per-column value-encoder contract from
// §4.3: write_T / buffered_size / allocated_size / take_bytes / encoding
// / reset. Unlike the teacher's per-primitive-type generated append
// functions, this module dispatches on Value.Kind at the call site
// inside WriteValue, trading the teacher's zero-allocation specialization
// for a single concrete type per encoding scheme.
type ValueEncoder interface {
	WriteValue(v Value) error
	NumValues() int
	BufferedSize() int64
	TakeBytes(dst []byte) []byte
	Encoding() format.Encoding
	Reset()
}

// PlainEncoder implements the PLAIN encoding for any physical kind.
type PlainEncoder struct {
	kind  Kind
	buf   []byte
	count int
	boolI int
}

// NewPlainEncoder returns a PlainEncoder for the given physical kind.
func NewPlainEncoder(kind Kind) *PlainEncoder { return &PlainEncoder{kind: kind} }

func (e *PlainEncoder) WriteValue(v Value) error {
	switch e.kind {
	case BooleanKind:
		e.buf = plain.AppendBoolean(e.buf, e.boolI, v.Boolean)
		e.boolI++
	case Int32Kind:
		e.buf = plain.AppendInt32(e.buf, v.Int32)
	case Int64Kind:
		e.buf = plain.AppendInt64(e.buf, v.Int64)
	case Int96Kind:
		e.buf = plain.AppendInt96(e.buf, v.Int96)
	case FloatKind:
		e.buf = plain.AppendFloat32(e.buf, float32bits(v.Float))
	case DoubleKind:
		e.buf = plain.AppendFloat64(e.buf, float64bits(v.Double))
	case ByteArrayKind:
		e.buf = plain.AppendByteArray(e.buf, v.Bytes)
	case FixedLenByteArrayKind:
		e.buf = plain.AppendFixedLenByteArray(e.buf, v.Bytes)
	}
	e.count++
	return nil
}

func (e *PlainEncoder) NumValues() int        { return e.count }
func (e *PlainEncoder) BufferedSize() int64   { return int64(len(e.buf)) }
func (e *PlainEncoder) Encoding() format.Encoding { return format.Plain }
func (e *PlainEncoder) Reset() {
	e.buf, e.count, e.boolI = e.buf[:0], 0, 0
}
func (e *PlainEncoder) TakeBytes(dst []byte) []byte {
	out := append(dst, e.buf...)
	e.Reset()
	return out
}

// RLEEncoder implements the RLE/bit-packed hybrid encoding for
// repetition/definition levels and (bit-width-prefixed) dictionary
// indices, per §4.3's RLE row.
type RLEEncoder struct {
	bitWidth  int
	prefixed  bool // true for PLAIN_DICTIONARY/RLE_DICTIONARY index streams
	enc       *rle.Encoder
}

// NewRLEEncoder returns an RLEEncoder for levels (prefixed=false, the
// caller writes its own 4-byte length prefix per §6) or for dictionary
// indices (prefixed=true, a leading bit-width byte is emitted).
func NewRLEEncoder(bitWidth int, prefixed bool) *RLEEncoder {
	return &RLEEncoder{bitWidth: bitWidth, prefixed: prefixed, enc: rle.NewEncoder(bitWidth)}
}

func (e *RLEEncoder) WriteLevel(v int) { e.enc.Write(uint32(v)) }
func (e *RLEEncoder) WriteIndex(v int32) { e.enc.Write(uint32(v)) }
func (e *RLEEncoder) NumValues() int    { return e.enc.Len() }
func (e *RLEEncoder) BufferedSize() int64 { return int64(e.enc.Len()*4 + 8) } // coarse upper bound
func (e *RLEEncoder) Encoding() format.Encoding { return format.RLEDictionary }
func (e *RLEEncoder) Reset()                   { e.enc.Reset() }
func (e *RLEEncoder) TakeBytes(dst []byte) []byte {
	if e.prefixed {
		dst = append(dst, byte(e.bitWidth))
	}
	dst = e.enc.Bytes(dst)
	e.Reset()
	return dst
}

// DictionaryEncoder implements PLAIN_DICTIONARY/RLE_DICTIONARY: values
// are looked up in a DictionaryManager and their indices streamed through
// an RLEEncoder.
type DictionaryEncoder struct {
	dict    *DictionaryManager
	indices *RLEEncoder
	count   int
}

// NewDictionaryEncoder returns a DictionaryEncoder over dict; bitWidth
// must be wide enough to represent every id dict can assign. The width is
// fixed for the encoder's lifetime and is written as the leading byte of
// every page's index stream; it is not narrowed to the page's largest id
// (the column writer passes 32).
func NewDictionaryEncoder(dict *DictionaryManager, bitWidth int) *DictionaryEncoder {
	return &DictionaryEncoder{dict: dict, indices: NewRLEEncoder(bitWidth, true)}
}

func (e *DictionaryEncoder) WriteValue(v Value) error {
	id, err := e.dict.Lookup(v)
	if err != nil {
		return err
	}
	e.indices.WriteIndex(id)
	e.count++
	return nil
}

func (e *DictionaryEncoder) NumValues() int      { return e.count }
func (e *DictionaryEncoder) BufferedSize() int64 { return e.indices.BufferedSize() }
func (e *DictionaryEncoder) Encoding() format.Encoding { return format.RLEDictionary }
func (e *DictionaryEncoder) Reset() {
	e.indices.Reset()
	e.count = 0
}
func (e *DictionaryEncoder) TakeBytes(dst []byte) []byte {
	out := e.indices.TakeBytes(dst)
	e.count = 0
	return out
}

// DeltaEncoder implements DELTA_BINARY_PACKED (int32/int64),
// DELTA_LENGTH_BYTE_ARRAY and DELTA_BYTE_ARRAY (BYTE_ARRAY), selected by
// the column's physical kind and configured scheme.
type DeltaEncoder struct {
	kind   Kind
	scheme format.Encoding

	ints   delta.BinaryPackedEncoder
	length delta.LengthByteArrayEncoder
	bytes  delta.ByteArrayEncoder
}

// NewDeltaBinaryPackedEncoder returns a DeltaEncoder for INT32/INT64
// columns.
func NewDeltaBinaryPackedEncoder(kind Kind) *DeltaEncoder {
	return &DeltaEncoder{kind: kind, scheme: format.DeltaBinaryPacked}
}

// NewDeltaLengthByteArrayEncoder returns a DeltaEncoder for BYTE_ARRAY
// columns using DELTA_LENGTH_BYTE_ARRAY.
func NewDeltaLengthByteArrayEncoder() *DeltaEncoder {
	return &DeltaEncoder{kind: ByteArrayKind, scheme: format.DeltaLengthByteArray}
}

// NewDeltaByteArrayEncoder returns a DeltaEncoder for BYTE_ARRAY columns
// using DELTA_BYTE_ARRAY.
func NewDeltaByteArrayEncoder() *DeltaEncoder {
	return &DeltaEncoder{kind: ByteArrayKind, scheme: format.DeltaByteArray}
}

func (e *DeltaEncoder) WriteValue(v Value) error {
	switch e.scheme {
	case format.DeltaBinaryPacked:
		if e.kind == Int32Kind {
			e.ints.Write(int64(v.Int32))
		} else {
			e.ints.Write(v.Int64)
		}
	case format.DeltaLengthByteArray:
		e.length.Write(v.Bytes)
	case format.DeltaByteArray:
		e.bytes.Write(v.Bytes)
	}
	return nil
}

func (e *DeltaEncoder) NumValues() int {
	switch e.scheme {
	case format.DeltaBinaryPacked:
		return e.ints.Len()
	case format.DeltaLengthByteArray:
		return e.length.Len()
	default:
		return e.bytes.Len()
	}
}

func (e *DeltaEncoder) BufferedSize() int64 { return int64(e.NumValues()*8 + 32) }
func (e *DeltaEncoder) Encoding() format.Encoding { return e.scheme }
func (e *DeltaEncoder) Reset() {
	e.ints.Reset()
	e.length.Reset()
	e.bytes.Reset()
}
func (e *DeltaEncoder) TakeBytes(dst []byte) []byte {
	switch e.scheme {
	case format.DeltaBinaryPacked:
		dst = e.ints.Bytes(dst)
	case format.DeltaLengthByteArray:
		dst = e.length.Bytes(dst)
	case format.DeltaByteArray:
		dst = e.bytes.Bytes(dst)
	}
	e.Reset()
	return dst
}

func float32bits(f float32) uint32 { return math.Float32bits(f) }

func float64bits(f float64) uint64 { return math.Float64bits(f) }
