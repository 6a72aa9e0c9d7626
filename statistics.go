package parquet

import (
	"bytes"
	"math"

	"github.com/pqwriter/parquet/format"
)

// Comparator orders two non-null values of the same column, returning a
// negative number if a < b, zero if equal, positive if a > b, per the
// rules in §4.5: signed numeric comparators for INT32/INT64/FLOAT/DOUBLE,
// unsigned numeric for UINT logical types, unsigned lexicographic for
// BYTE_ARRAY/FIXED_LEN_BYTE_ARRAY/UTF8, and signed two's-complement
// big-endian comparison for DECIMAL.
type Comparator func(a, b Value) int

// SignedInt32Comparator compares INT32 values as signed integers.
func SignedInt32Comparator(a, b Value) int {
	switch {
	case a.Int32 < b.Int32:
		return -1
	case a.Int32 > b.Int32:
		return 1
	default:
		return 0
	}
}

// SignedInt64Comparator compares INT64 values as signed integers.
func SignedInt64Comparator(a, b Value) int {
	switch {
	case a.Int64 < b.Int64:
		return -1
	case a.Int64 > b.Int64:
		return 1
	default:
		return 0
	}
}

// UnsignedInt32Comparator compares INT32 values as unsigned integers, for
// UINT_* logical types.
func UnsignedInt32Comparator(a, b Value) int {
	ua, ub := uint32(a.Int32), uint32(b.Int32)
	switch {
	case ua < ub:
		return -1
	case ua > ub:
		return 1
	default:
		return 0
	}
}

// UnsignedInt64Comparator compares INT64 values as unsigned integers, for
// UINT_64 logical types.
func UnsignedInt64Comparator(a, b Value) int {
	ua, ub := uint64(a.Int64), uint64(b.Int64)
	switch {
	case ua < ub:
		return -1
	case ua > ub:
		return 1
	default:
		return 0
	}
}

// FloatComparator compares FLOAT values; NaN is handled by the caller
// (statistics exclude NaN from min/max before comparing).
func FloatComparator(a, b Value) int {
	switch {
	case a.Float < b.Float:
		return -1
	case a.Float > b.Float:
		return 1
	default:
		return 0
	}
}

// DoubleComparator compares DOUBLE values; NaN is handled by the caller.
func DoubleComparator(a, b Value) int {
	switch {
	case a.Double < b.Double:
		return -1
	case a.Double > b.Double:
		return 1
	default:
		return 0
	}
}

// ByteArrayComparator compares BYTE_ARRAY/FIXED_LEN_BYTE_ARRAY/UTF8
// values as unsigned lexicographic byte sequences.
func ByteArrayComparator(a, b Value) int { return bytes.Compare(a.Bytes, b.Bytes) }

// DecimalComparator compares DECIMAL values stored as signed
// two's-complement big-endian byte sequences.
func DecimalComparator(a, b Value) int {
	an, bn := len(a.Bytes) > 0 && a.Bytes[0]&0x80 != 0, len(b.Bytes) > 0 && b.Bytes[0]&0x80 != 0
	if an != bn {
		if an {
			return -1
		}
		return 1
	}
	// Same sign: pad the shorter to the longer length with the sign byte,
	// then compare unsigned-lexicographically (equivalent to signed
	// magnitude comparison once signs match).
	la, lb := a.Bytes, b.Bytes
	if len(la) != len(lb) {
		pad := byte(0)
		if an {
			pad = 0xFF
		}
		if len(la) < len(lb) {
			la = padLeft(la, len(lb), pad)
		} else {
			lb = padLeft(lb, len(la), pad)
		}
	}
	return bytes.Compare(la, lb)
}

func padLeft(b []byte, n int, pad byte) []byte {
	out := make([]byte, n-len(b))
	for i := range out {
		out[i] = pad
	}
	return append(out, b...)
}

// ComparatorFor returns the default comparator for a leaf node's physical
// kind and logical type, per §4.5.
func ComparatorFor(node Node) Comparator {
	// INT32/INT64 decimals fall through to the signed integer comparators.
	if _, ok := node.LogicalType().(*Decimal); ok && (node.Kind() == ByteArrayKind || node.Kind() == FixedLenByteArrayKind) {
		return DecimalComparator
	}
	if it, ok := node.LogicalType().(*Int); ok && !it.IsSigned {
		if it.BitWidth == 64 {
			return UnsignedInt64Comparator
		}
		return UnsignedInt32Comparator
	}
	switch node.Kind() {
	case Int32Kind:
		return SignedInt32Comparator
	case Int64Kind:
		return SignedInt64Comparator
	case FloatKind:
		return FloatComparator
	case DoubleKind:
		return DoubleComparator
	case ByteArrayKind, FixedLenByteArrayKind:
		return ByteArrayComparator
	default:
		return ByteArrayComparator
	}
}

// Statistics accumulates the per-column min/max/null-count/distinct-count
// summary described in §4.5.
type Statistics struct {
	comparator    Comparator
	hasValue      bool
	min, max      Value
	nullCount     int64
	distinctCount int64
	distinctSeen  map[string]struct{}
	trackDistinct bool
}

// NewStatistics returns an empty Statistics using cmp to order values.
// When trackDistinct is true, distinct values are counted using their
// PLAIN byte encoding as a set key (memory-expensive; off by default).
func NewStatistics(cmp Comparator, trackDistinct bool) *Statistics {
	s := &Statistics{comparator: cmp, trackDistinct: trackDistinct}
	if trackDistinct {
		s.distinctSeen = make(map[string]struct{})
	}
	return s
}

// Observe folds one value (possibly null) into the running statistics.
func (s *Statistics) Observe(v Value, key []byte) {
	if v.IsNull {
		s.nullCount++
		return
	}
	if isNaN(v) {
		return
	}
	if !s.hasValue {
		s.min, s.max, s.hasValue = v, v, true
	} else {
		if s.comparator(v, s.min) < 0 {
			s.min = v
		}
		if s.comparator(v, s.max) > 0 {
			s.max = v
		}
	}
	if s.trackDistinct {
		if _, seen := s.distinctSeen[string(key)]; !seen {
			s.distinctSeen[string(key)] = struct{}{}
			s.distinctCount++
		}
	}
}

func isNaN(v Value) bool {
	switch v.Kind {
	case FloatKind:
		return math.IsNaN(float64(v.Float))
	case DoubleKind:
		return math.IsNaN(v.Double)
	default:
		return false
	}
}

// Merge folds other's min/max/null_count into s, per §4.5's multi-page
// rollup rule.
func (s *Statistics) Merge(other *Statistics) {
	s.nullCount += other.nullCount
	if !other.hasValue {
		return
	}
	if !s.hasValue {
		s.min, s.max, s.hasValue = other.min, other.max, true
		return
	}
	if s.comparator(other.min, s.min) < 0 {
		s.min = other.min
	}
	if s.comparator(other.max, s.max) > 0 {
		s.max = other.max
	}
}

// HasValues reports whether any finite, non-null value has been observed.
func (s *Statistics) HasValues() bool { return s.hasValue }

// NullCount returns the accumulated null count.
func (s *Statistics) NullCount() int64 { return s.nullCount }

// Min and Max return the accumulated bounds; callers must check
// HasValues first.
func (s *Statistics) Min() Value { return s.min }
func (s *Statistics) Max() Value { return s.max }

// Thrift converts the accumulated statistics to their wire
// representation using encodeFn to produce the PLAIN-encoded min/max
// byte strings.
func (s *Statistics) Thrift(encodeFn func(Value) []byte) format.Statistics {
	st := format.Statistics{NullCount: s.nullCount}
	if s.trackDistinct {
		st.DistinctCount = s.distinctCount
	}
	if s.hasValue {
		st.MinValue = encodeFn(s.min)
		st.MaxValue = encodeFn(s.max)
		// Legacy min/max fields mirror MinValue/MaxValue for readers that
		// predate the min_value/max_value fields.
		st.Min = st.MinValue
		st.Max = st.MaxValue
	}
	return st
}
