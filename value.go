package parquet

// Datum is the set of Go types a per-primitive encoder, dictionary or
// statistics comparator can operate on directly. BYTE_ARRAY and
// FIXED_LEN_BYTE_ARRAY values are carried as []byte and handled by
// dedicated byte-slice specializations instead, since slices cannot
// satisfy a comparable-value type constraint.
type Datum interface {
	~bool | ~int32 | ~int64 | ~float32 | ~float64 | ~uint32 | ~uint64
}

// Value is a single leaf value flowing through the record-consumer API
// (§4.1). Exactly one of the typed fields is meaningful, selected by Kind;
// IsNull reports a null (definition-level-only) triple.
type Value struct {
	Kind    Kind
	IsNull  bool
	Boolean bool
	Int32   int32
	Int64   int64
	Int96   [12]byte
	Float   float32
	Double  float64
	Bytes   []byte // BYTE_ARRAY and FIXED_LEN_BYTE_ARRAY
}

// NullValue returns a null Value for the given kind.
func NullValue(kind Kind) Value { return Value{Kind: kind, IsNull: true} }

// BooleanValue returns a non-null BOOLEAN Value.
func BooleanValue(v bool) Value { return Value{Kind: BooleanKind, Boolean: v} }

// Int32Value returns a non-null INT32 Value.
func Int32Value(v int32) Value { return Value{Kind: Int32Kind, Int32: v} }

// Int64Value returns a non-null INT64 Value.
func Int64Value(v int64) Value { return Value{Kind: Int64Kind, Int64: v} }

// Int96Value returns a non-null INT96 Value.
func Int96Value(v [12]byte) Value { return Value{Kind: Int96Kind, Int96: v} }

// FloatValue returns a non-null FLOAT Value.
func FloatValue(v float32) Value { return Value{Kind: FloatKind, Float: v} }

// DoubleValue returns a non-null DOUBLE Value.
func DoubleValue(v float64) Value { return Value{Kind: DoubleKind, Double: v} }

// ByteArrayValue returns a non-null BYTE_ARRAY Value. The byte slice is
// retained, not copied.
func ByteArrayValue(v []byte) Value { return Value{Kind: ByteArrayKind, Bytes: v} }

// FixedLenByteArrayValue returns a non-null FIXED_LEN_BYTE_ARRAY Value.
func FixedLenByteArrayValue(v []byte) Value { return Value{Kind: FixedLenByteArrayKind, Bytes: v} }
