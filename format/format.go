// Package format defines the Go representation of the Apache Parquet
// Thrift metadata structures (FileMetaData, RowGroup, ColumnChunk, page
// headers, logical type annotations and encryption metadata).
//
// The struct field tags record the Thrift field id and whether the field is
// required, consumed by the encoding/thrift compact-protocol marshaller to
// produce byte-exact footers. Field ids and nesting mirror the
// apache/parquet-format Thrift IDL; this package carries no Thrift IDL
// tooling dependency, only the wire-compatible Go types.
package format

// Type is the physical, on-disk representation of a column's values.
type Type int32

const (
	Boolean           Type = 0
	Int32             Type = 1
	Int64             Type = 2
	Int96             Type = 3
	Float             Type = 4
	Double            Type = 5
	ByteArray         Type = 6
	FixedLenByteArray Type = 7
)

func (t Type) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Int96:
		return "INT96"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case ByteArray:
		return "BYTE_ARRAY"
	case FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

// FieldRepetitionType is the repetition of a schema element.
type FieldRepetitionType int32

const (
	Required FieldRepetitionType = 0
	Optional FieldRepetitionType = 1
	Repeated FieldRepetitionType = 2
)

func (r FieldRepetitionType) String() string {
	switch r {
	case Required:
		return "REQUIRED"
	case Optional:
		return "OPTIONAL"
	case Repeated:
		return "REPEATED"
	default:
		return "UNKNOWN"
	}
}

// Encoding identifies a value or level encoding used within a page.
type Encoding int32

const (
	Plain                Encoding = 0
	PlainDictionary      Encoding = 2
	RLE                  Encoding = 3
	BitPacked            Encoding = 4 // deprecated
	DeltaBinaryPacked    Encoding = 5
	DeltaLengthByteArray Encoding = 6
	DeltaByteArray       Encoding = 7
	RLEDictionary        Encoding = 8
	ByteStreamSplit      Encoding = 9
)

func (e Encoding) String() string {
	switch e {
	case Plain:
		return "PLAIN"
	case PlainDictionary:
		return "PLAIN_DICTIONARY"
	case RLE:
		return "RLE"
	case BitPacked:
		return "BIT_PACKED"
	case DeltaBinaryPacked:
		return "DELTA_BINARY_PACKED"
	case DeltaLengthByteArray:
		return "DELTA_LENGTH_BYTE_ARRAY"
	case DeltaByteArray:
		return "DELTA_BYTE_ARRAY"
	case RLEDictionary:
		return "RLE_DICTIONARY"
	case ByteStreamSplit:
		return "BYTE_STREAM_SPLIT"
	default:
		return "UNKNOWN"
	}
}

// CompressionCodec identifies the codec used to compress page payloads.
type CompressionCodec int32

const (
	Uncompressed CompressionCodec = 0
	Snappy       CompressionCodec = 1
	Gzip         CompressionCodec = 2
	LZO          CompressionCodec = 3
	Brotli       CompressionCodec = 4
	Lz4          CompressionCodec = 5
	Zstd         CompressionCodec = 6
	Lz4Raw       CompressionCodec = 7
)

func (c CompressionCodec) String() string {
	switch c {
	case Uncompressed:
		return "UNCOMPRESSED"
	case Snappy:
		return "SNAPPY"
	case Gzip:
		return "GZIP"
	case LZO:
		return "LZO"
	case Brotli:
		return "BROTLI"
	case Lz4:
		return "LZ4"
	case Zstd:
		return "ZSTD"
	case Lz4Raw:
		return "LZ4_RAW"
	default:
		return "UNKNOWN"
	}
}

// PageType identifies the kind of a page header.
type PageType int32

const (
	DataPage       PageType = 0
	IndexPage      PageType = 1
	DictionaryPage PageType = 2
	DataPageV2     PageType = 3
)

func (t PageType) String() string {
	switch t {
	case DataPage:
		return "DATA_PAGE"
	case IndexPage:
		return "INDEX_PAGE"
	case DictionaryPage:
		return "DICTIONARY_PAGE"
	case DataPageV2:
		return "DATA_PAGE_V2"
	default:
		return "UNKNOWN"
	}
}

// EdgeInterpolationAlgorithm identifies the interpolation used by geography
// logical types; carried for completeness of the LogicalType union.
type EdgeInterpolationAlgorithm int32

const (
	Spherical            EdgeInterpolationAlgorithm = 0
	Vincenty             EdgeInterpolationAlgorithm = 1
	Thomas               EdgeInterpolationAlgorithm = 2
	Andoyer              EdgeInterpolationAlgorithm = 3
	Karney               EdgeInterpolationAlgorithm = 4
)

// BoundingBox carries the optional geospatial statistics bounding box.
type BoundingBox struct {
	XMin float64  `thrift:"1,required"`
	XMax float64  `thrift:"2,required"`
	YMin float64  `thrift:"3,required"`
	YMax float64  `thrift:"4,required"`
	ZMin *float64 `thrift:"5,optional"`
	ZMax *float64 `thrift:"6,optional"`
	MMin *float64 `thrift:"7,optional"`
	MMax *float64 `thrift:"8,optional"`
}

// GeospatialStatistics is currently always empty in this writer; the type
// is carried so ColumnMetaData's shape matches the format exactly.
type GeospatialStatistics struct {
	BBox            BoundingBox `thrift:"1,optional"`
	GeoSpatialTypes []int32     `thrift:"2,optional"`
}

// SizeStatistics carries the optional per-column byte/level histograms
// introduced for variable-length types.
type SizeStatistics struct {
	UnencodedByteArrayDataBytes int64   `thrift:"1,optional"`
	RepetitionLevelHistogram    []int64 `thrift:"2,optional"`
	DefinitionLevelHistogram    []int64 `thrift:"3,optional"`
}

// Statistics carries the min/max/null-count/distinct-count summary of a
// column chunk or page.
type Statistics struct {
	Max           []byte `thrift:"1,optional"`
	Min           []byte `thrift:"2,optional"`
	NullCount     int64  `thrift:"3,optional"`
	DistinctCount int64  `thrift:"4,optional"`
	MaxValue      []byte `thrift:"5,optional"`
	MinValue      []byte `thrift:"6,optional"`
}

// StringType, UUIDType, MapType, ListType, EnumType, DateType, NullType,
// JsonType, BsonType and Float16Type are all empty marker structs: their
// presence in a LogicalType union is the entire signal.
type (
	StringType    struct{}
	UUIDType      struct{}
	MapType       struct{}
	ListType      struct{}
	EnumType      struct{}
	DateType      struct{}
	NullType      struct{}
	JsonType      struct{}
	BsonType      struct{}
	Float16Type   struct{}
	VariantType   struct{}
)

// DecimalType annotates a column as a fixed-scale decimal number.
type DecimalType struct {
	Scale     int32 `thrift:"1,required"`
	Precision int32 `thrift:"2,required"`
}

func (t DecimalType) String() string { return "DECIMAL" }

// MilliSeconds, MicroSeconds and NanoSeconds select the unit carried by a
// TimeUnit union.
type (
	MilliSeconds struct{}
	MicroSeconds struct{}
	NanoSeconds  struct{}
)

// TimeUnit is a union selecting the granularity of TIME/TIMESTAMP values.
type TimeUnit struct {
	Millis *MilliSeconds `thrift:"1,optional"`
	Micros *MicroSeconds `thrift:"2,optional"`
	Nanos  *NanoSeconds  `thrift:"3,optional"`
}

// TimeType annotates a column as a time-of-day value.
type TimeType struct {
	IsAdjustedToUTC bool     `thrift:"1,required"`
	Unit            TimeUnit `thrift:"2,required"`
}

// TimestampType annotates a column as an instant in time.
type TimestampType struct {
	IsAdjustedToUTC bool     `thrift:"1,required"`
	Unit            TimeUnit `thrift:"2,required"`
}

// IntType annotates a column as a sized, possibly-unsigned integer.
type IntType struct {
	BitWidth int8 `thrift:"1,required"`
	IsSigned bool `thrift:"2,required"`
}

// GeometryType annotates a column as WKB-encoded geometry.
type GeometryType struct {
	CRS string `thrift:"1,optional"`
}

// GeographyType annotates a column as WKB-encoded geography.
type GeographyType struct {
	CRS       string                     `thrift:"1,optional"`
	Algorithm EdgeInterpolationAlgorithm `thrift:"2,optional"`
}

// LogicalType is the tagged union of all logical type annotations a
// SchemaElement may carry. Exactly one field is set.
type LogicalType struct {
	UTF8      *StringType    `thrift:"1,optional"`
	Map       *MapType       `thrift:"2,optional"`
	List      *ListType      `thrift:"3,optional"`
	Enum      *EnumType      `thrift:"4,optional"`
	Decimal   *DecimalType   `thrift:"5,optional"`
	Date      *DateType      `thrift:"6,optional"`
	Time      *TimeType      `thrift:"7,optional"`
	Timestamp *TimestampType `thrift:"8,optional"`
	Integer   *IntType       `thrift:"10,optional"`
	Unknown   *NullType      `thrift:"11,optional"`
	Json      *JsonType      `thrift:"12,optional"`
	Bson      *BsonType      `thrift:"13,optional"`
	UUID      *UUIDType      `thrift:"14,optional"`
	Float16   *Float16Type   `thrift:"15,optional"`
	Variant   *VariantType   `thrift:"16,optional"`
	Geometry  *GeometryType  `thrift:"17,optional"`
	Geography *GeographyType `thrift:"18,optional"`
}

// SchemaElement is one node (group or leaf) of the flattened, pre-order
// schema tree carried in FileMetaData.Schema.
type SchemaElement struct {
	Type           *Type                 `thrift:"1,optional"`
	TypeLength     *int32                `thrift:"2,optional"`
	RepetitionType *FieldRepetitionType  `thrift:"3,optional"`
	Name           string                `thrift:"4,required"`
	NumChildren    *int32                `thrift:"5,optional"`
	ConvertedType  *int32                `thrift:"6,optional"`
	Scale          *int32                `thrift:"7,optional"`
	Precision      *int32                `thrift:"8,optional"`
	FieldID        int32                 `thrift:"9,optional"`
	LogicalType    *LogicalType          `thrift:"10,optional"`
}

// KeyValue is a single entry of a key/value metadata list.
type KeyValue struct {
	Key   string `thrift:"1,required"`
	Value string `thrift:"2,optional"`
}

// SortingColumn describes one column used to order rows within a row group.
type SortingColumn struct {
	ColumnIdx  int32 `thrift:"1,required"`
	Descending bool  `thrift:"2,required"`
	NullsFirst bool  `thrift:"3,required"`
}

// PageEncodingStats records how many pages of a column chunk used a given
// encoding, broken down by page type.
type PageEncodingStats struct {
	PageType PageType `thrift:"1,required"`
	Encoding Encoding `thrift:"2,required"`
	Count    int32    `thrift:"3,required"`
}

// ColumnMetaData is the per-column-chunk metadata written into the footer.
type ColumnMetaData struct {
	Type                  Type                 `thrift:"1,required"`
	Encoding              []Encoding           `thrift:"2,required"`
	PathInSchema          []string             `thrift:"3,required"`
	Codec                 CompressionCodec     `thrift:"4,required"`
	NumValues             int64                `thrift:"5,required"`
	TotalUncompressedSize int64                `thrift:"6,required"`
	TotalCompressedSize   int64                `thrift:"7,required"`
	KeyValueMetadata      []KeyValue           `thrift:"8,optional"`
	DataPageOffset        int64                `thrift:"9,required"`
	IndexPageOffset       int64                `thrift:"10,optional"`
	DictionaryPageOffset  int64                `thrift:"11,optional"`
	Statistics            Statistics           `thrift:"12,optional"`
	EncodingStats         []PageEncodingStats  `thrift:"13,optional"`
	BloomFilterOffset     int64                `thrift:"14,optional"`
	BloomFilterLength     int32                `thrift:"15,optional"`
	SizeStatistics        SizeStatistics       `thrift:"16,optional"`
	GeospatialStatistics  GeospatialStatistics `thrift:"17,optional"`
}

// EncryptionWithFooterKey marks a column as encrypted using the file's
// footer key (the uniform key-management mode).
type EncryptionWithFooterKey struct{}

// EncryptionWithColumnKey marks a column as encrypted with its own key,
// identified by KeyMetadata (opaque to the writer; interpreted by a
// KeyRetriever).
type EncryptionWithColumnKey struct {
	PathInSchema []string `thrift:"1,required"`
	KeyMetadata  []byte   `thrift:"2,optional"`
}

// ColumnCryptoMetaData is a union selecting which key-management mode a
// column uses.
type ColumnCryptoMetaData struct {
	EncryptionWithFooterKey *EncryptionWithFooterKey `thrift:"1,optional"`
	EncryptionWithColumnKey *EncryptionWithColumnKey `thrift:"2,optional"`
}

// ColumnChunk locates a column chunk's data and its metadata, which is
// itself encrypted (EncryptedColumnMetadata) when the column is encrypted
// in plaintext-footer mode.
type ColumnChunk struct {
	FilePath                string               `thrift:"1,optional"`
	FileOffset              int64                `thrift:"2,required"`
	MetaData                ColumnMetaData       `thrift:"3,optional"`
	OffsetIndexOffset       int64                `thrift:"4,optional"`
	OffsetIndexLength       int32                `thrift:"5,optional"`
	ColumnIndexOffset       int64                `thrift:"6,optional"`
	ColumnIndexLength       int32                `thrift:"7,optional"`
	CryptoMetadata          ColumnCryptoMetaData `thrift:"8,optional"`
	EncryptedColumnMetadata []byte               `thrift:"9,optional"`
}

// RowGroup is an ordered list of column chunks sharing the same row range.
type RowGroup struct {
	Columns             []ColumnChunk   `thrift:"1,required"`
	TotalByteSize       int64           `thrift:"2,required"`
	NumRows             int64           `thrift:"3,required"`
	SortingColumns      []SortingColumn `thrift:"4,optional"`
	FileOffset          int64           `thrift:"5,optional"`
	TotalCompressedSize int64           `thrift:"6,optional"`
	Ordinal             int16           `thrift:"7,optional"`
}

// TypeDefinedOrder marks a column as ordered using the type's natural
// (signed/unsigned/lexicographic) comparator.
type TypeDefinedOrder struct{}

// ColumnOrder is a union describing how a column's min/max statistics
// should be interpreted by a reader.
type ColumnOrder struct {
	TypeOrder *TypeDefinedOrder `thrift:"1,optional"`
}

// AesGcmV1 carries the AAD derivation inputs for the AES_GCM_V1 algorithm.
type AesGcmV1 struct {
	AadPrefix       []byte `thrift:"1,optional"`
	AadFileUnique   []byte `thrift:"2,optional"`
	SupplyAadPrefix bool   `thrift:"3,optional"`
}

// AesGcmCtrV1 carries the AAD derivation inputs for the AES_GCM_CTR_V1
// algorithm.
type AesGcmCtrV1 struct {
	AadPrefix       []byte `thrift:"1,optional"`
	AadFileUnique   []byte `thrift:"2,optional"`
	SupplyAadPrefix bool   `thrift:"3,optional"`
}

// EncryptionAlgorithm selects which of the two supported algorithms a file
// uses.
type EncryptionAlgorithm struct {
	AesGcmV1    *AesGcmV1    `thrift:"1,optional"`
	AesGcmCtrV1 *AesGcmCtrV1 `thrift:"2,optional"`
}

// FileMetaData is the root Thrift structure written as the file footer.
type FileMetaData struct {
	Version                  int32                `thrift:"1,required"`
	Schema                   []SchemaElement      `thrift:"2,required"`
	NumRows                  int64                `thrift:"3,required"`
	RowGroups                []RowGroup           `thrift:"4,required"`
	KeyValueMetadata         []KeyValue           `thrift:"5,optional"`
	CreatedBy                string               `thrift:"6,optional"`
	ColumnOrders             []ColumnOrder        `thrift:"7,optional"`
	EncryptionAlgorithm      *EncryptionAlgorithm `thrift:"8,optional"`
	FooterSigningKeyMetadata []byte               `thrift:"9,optional"`
}

// FileCryptoMetaData precedes the encrypted footer in files using the
// encrypted-footer key-management mode (MAGIC4 == "PARE").
type FileCryptoMetaData struct {
	EncryptionAlgorithm EncryptionAlgorithm `thrift:"1,required"`
	KeyMetadata         []byte              `thrift:"2,optional"`
}

// DataPageHeader is the v1 data-page sub-struct of PageHeader.
type DataPageHeader struct {
	NumValues               int32       `thrift:"1,required"`
	Encoding                Encoding    `thrift:"2,required"`
	DefinitionLevelEncoding Encoding    `thrift:"3,required"`
	RepetitionLevelEncoding Encoding    `thrift:"4,required"`
	Statistics              *Statistics `thrift:"5,optional"`
}

// IndexPageHeader is reserved for the (unimplemented) page-index format;
// carried only to complete the PageHeader union shape.
type IndexPageHeader struct{}

// DictionaryPageHeader is the dictionary-page sub-struct of PageHeader.
type DictionaryPageHeader struct {
	NumValues int32    `thrift:"1,required"`
	Encoding  Encoding `thrift:"2,required"`
	IsSorted  bool     `thrift:"3,optional"`
}

// DataPageHeaderV2 is the v2 data-page sub-struct of PageHeader.
type DataPageHeaderV2 struct {
	NumValues                  int32       `thrift:"1,required"`
	NumNulls                   int32       `thrift:"2,required"`
	NumRows                    int32       `thrift:"3,required"`
	Encoding                   Encoding    `thrift:"4,required"`
	DefinitionLevelsByteLength int32       `thrift:"5,required"`
	RepetitionLevelsByteLength int32       `thrift:"6,required"`
	IsCompressed               bool        `thrift:"7,optional"`
	Statistics                 *Statistics `thrift:"8,optional"`
}

// PageHeader precedes every page (dictionary or data) written to a column
// chunk.
type PageHeader struct {
	Type                 PageType              `thrift:"1,required"`
	UncompressedPageSize int32                 `thrift:"2,required"`
	CompressedPageSize   int32                 `thrift:"3,required"`
	Crc                  *int32                `thrift:"4,optional"`
	DataPageHeader       *DataPageHeader       `thrift:"5,optional"`
	IndexPageHeader      *IndexPageHeader      `thrift:"6,optional"`
	DictionaryPageHeader *DictionaryPageHeader `thrift:"7,optional"`
	DataPageHeaderV2     *DataPageHeaderV2     `thrift:"8,optional"`
}
