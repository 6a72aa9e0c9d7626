package parquet

import "github.com/pqwriter/parquet/format"

// LogicalType is a logical annotation refining how a primitive's bytes
// should be interpreted (§3 DATA MODEL). Every concrete type below
// implements it.
type LogicalType interface {
	String() string
	thriftLogicalType() *format.LogicalType
	convertedType() *int32
}

// convertedType constants, matching apache/parquet-format's legacy
// ConvertedType enum (written alongside LogicalType for readers that only
// understand the older annotation).
const (
	ctUTF8             int32 = 0
	ctMap              int32 = 1
	ctList             int32 = 3
	ctEnum             int32 = 4
	ctDecimal          int32 = 5
	ctDate             int32 = 6
	ctTimeMillis       int32 = 7
	ctTimeMicros       int32 = 8
	ctTimestampMillis  int32 = 9
	ctTimestampMicros  int32 = 10
	ctUint8            int32 = 11
	ctUint16           int32 = 12
	ctUint32           int32 = 13
	ctUint64           int32 = 14
	ctInt8             int32 = 15
	ctInt16            int32 = 16
	ctInt32            int32 = 17
	ctInt64            int32 = 18
	ctJSON             int32 = 19
	ctBSON             int32 = 20
	ctInterval         int32 = 21
)

func ctPtr(v int32) *int32 { return &v }

// UTF8Type annotates a BYTE_ARRAY column as a UTF-8 encoded string.
type UTF8Type struct{}

func (UTF8Type) String() string                              { return "UTF8" }
func (UTF8Type) thriftLogicalType() *format.LogicalType       { return &format.LogicalType{UTF8: &format.StringType{}} }
func (UTF8Type) convertedType() *int32                        { return ctPtr(ctUTF8) }

// Decimal annotates a column as a fixed-scale decimal number.
type Decimal struct {
	Scale     int32
	Precision int32
}

func (d *Decimal) String() string { return "DECIMAL" }
func (d *Decimal) thriftLogicalType() *format.LogicalType {
	return &format.LogicalType{Decimal: &format.DecimalType{Scale: d.Scale, Precision: d.Precision}}
}
func (d *Decimal) convertedType() *int32 { return ctPtr(ctDecimal) }

// Date annotates an INT32 column as days since the Unix epoch.
type Date struct{}

func (Date) String() string                        { return "DATE" }
func (Date) thriftLogicalType() *format.LogicalType { return &format.LogicalType{Date: &format.DateType{}} }
func (Date) convertedType() *int32                  { return ctPtr(ctDate) }

// TimeUnit selects the granularity of a Time or Timestamp logical type.
type TimeUnit int8

const (
	Millis TimeUnit = iota
	Micros
	Nanos
)

func (u TimeUnit) thrift() format.TimeUnit {
	switch u {
	case Millis:
		return format.TimeUnit{Millis: &format.MilliSeconds{}}
	case Micros:
		return format.TimeUnit{Micros: &format.MicroSeconds{}}
	default:
		return format.TimeUnit{Nanos: &format.NanoSeconds{}}
	}
}

// Time annotates an INT32 (millis) or INT64 (micros/nanos) column as a
// time of day.
type Time struct {
	IsAdjustedToUTC bool
	Unit            TimeUnit
}

func (t *Time) String() string { return "TIME" }
func (t *Time) thriftLogicalType() *format.LogicalType {
	return &format.LogicalType{Time: &format.TimeType{IsAdjustedToUTC: t.IsAdjustedToUTC, Unit: t.Unit.thrift()}}
}
func (t *Time) convertedType() *int32 {
	switch t.Unit {
	case Millis:
		return ctPtr(ctTimeMillis)
	case Micros:
		return ctPtr(ctTimeMicros)
	default:
		return nil // no legacy equivalent for nanosecond precision
	}
}

// Timestamp annotates an INT64 column as an instant in time.
type Timestamp struct {
	IsAdjustedToUTC bool
	Unit            TimeUnit
}

func (t *Timestamp) String() string { return "TIMESTAMP" }
func (t *Timestamp) thriftLogicalType() *format.LogicalType {
	return &format.LogicalType{Timestamp: &format.TimestampType{IsAdjustedToUTC: t.IsAdjustedToUTC, Unit: t.Unit.thrift()}}
}
func (t *Timestamp) convertedType() *int32 {
	switch t.Unit {
	case Millis:
		return ctPtr(ctTimestampMillis)
	case Micros:
		return ctPtr(ctTimestampMicros)
	default:
		return nil
	}
}

// Interval annotates a 12-byte FIXED_LEN_BYTE_ARRAY column as a
// months/days/millis duration (no LogicalType union member exists for
// INTERVAL; only the legacy ConvertedType tags it).
type Interval struct{}

func (Interval) String() string                        { return "INTERVAL" }
func (Interval) thriftLogicalType() *format.LogicalType { return nil }
func (Interval) convertedType() *int32                  { return ctPtr(ctInterval) }

// Enum annotates a BYTE_ARRAY column as a serialized enum value.
type Enum struct{}

func (Enum) String() string                        { return "ENUM" }
func (Enum) thriftLogicalType() *format.LogicalType { return &format.LogicalType{Enum: &format.EnumType{}} }
func (Enum) convertedType() *int32                  { return ctPtr(ctEnum) }

// UUID annotates a 16-byte FIXED_LEN_BYTE_ARRAY column as an RFC 4122 UUID.
type UUID struct{}

func (UUID) String() string                        { return "UUID" }
func (UUID) thriftLogicalType() *format.LogicalType { return &format.LogicalType{UUID: &format.UUIDType{}} }
func (UUID) convertedType() *int32                  { return nil }

// Int annotates an INT32/INT64 column as a sized, possibly unsigned
// integer (e.g. UINT_8, INT_16).
type Int struct {
	BitWidth int8
	IsSigned bool
}

func (i *Int) String() string { return "INTEGER" }
func (i *Int) thriftLogicalType() *format.LogicalType {
	return &format.LogicalType{Integer: &format.IntType{BitWidth: i.BitWidth, IsSigned: i.IsSigned}}
}
func (i *Int) convertedType() *int32 {
	switch {
	case i.IsSigned && i.BitWidth == 8:
		return ctPtr(ctInt8)
	case i.IsSigned && i.BitWidth == 16:
		return ctPtr(ctInt16)
	case i.IsSigned && i.BitWidth == 32:
		return ctPtr(ctInt32)
	case i.IsSigned && i.BitWidth == 64:
		return ctPtr(ctInt64)
	case !i.IsSigned && i.BitWidth == 8:
		return ctPtr(ctUint8)
	case !i.IsSigned && i.BitWidth == 16:
		return ctPtr(ctUint16)
	case !i.IsSigned && i.BitWidth == 32:
		return ctPtr(ctUint32)
	case !i.IsSigned && i.BitWidth == 64:
		return ctPtr(ctUint64)
	default:
		return nil
	}
}

// Map annotates a group as a Parquet MAP (a single repeated key_value
// child group containing key/value children).
type Map struct{}

func (Map) String() string                        { return "MAP" }
func (Map) thriftLogicalType() *format.LogicalType { return &format.LogicalType{Map: &format.MapType{}} }
func (Map) convertedType() *int32                  { return ctPtr(ctMap) }

// List annotates a group as a Parquet LIST (a single repeated group
// containing one "element" child).
type List struct{}

func (List) String() string                        { return "LIST" }
func (List) thriftLogicalType() *format.LogicalType { return &format.LogicalType{List: &format.ListType{}} }
func (List) convertedType() *int32                  { return ctPtr(ctList) }

// JSON annotates a BYTE_ARRAY column as a JSON document.
type JSON struct{}

func (JSON) String() string                        { return "JSON" }
func (JSON) thriftLogicalType() *format.LogicalType { return &format.LogicalType{Json: &format.JsonType{}} }
func (JSON) convertedType() *int32                  { return ctPtr(ctJSON) }

// BSON annotates a BYTE_ARRAY column as a BSON document.
type BSON struct{}

func (BSON) String() string                        { return "BSON" }
func (BSON) thriftLogicalType() *format.LogicalType { return &format.LogicalType{Bson: &format.BsonType{}} }
func (BSON) convertedType() *int32                  { return ctPtr(ctBSON) }
