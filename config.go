package parquet

import "github.com/pqwriter/parquet/format"

// WriterOption configures a WriterConfig, following the teacher's
// functional-options idiom (its config.go builds parquet.WriterConfig the
// same way, via parquet.Compression(...), parquet.PageBufferSize(...), ...).
type WriterOption func(*WriterConfig)

// EncryptionConfig configures per-file encryption (§4.8). FooterKey
// encrypts the footer and every encrypted column without an entry in
// ColumnKeys; an entry in ColumnKeys switches that column into the
// per-column key-management mode. A column is encrypted when it has an
// entry in ColumnKeys or EncryptAllColumns is set.
type EncryptionConfig struct {
	Algorithm EncryptionAlgorithm
	FooterKey []byte
	AADPrefix []byte

	ColumnKeys        map[string][]byte
	ColumnKeyMetadata map[string][]byte
	EncryptAllColumns bool
}

// WriterConfig collects every tunable of the write path: page/row-group
// size thresholds, dictionary fallback policy, compression, CRC, the
// row-group flusher's check-interval policy (§4.7), block-alignment
// padding (§4.9) and optional encryption (§4.8).
type WriterConfig struct {
	WriterVersion WriterVersion

	PageSize                    int64
	RowGroupTargetSize          int64
	DictionaryPageSizeThreshold int

	// EnableDictionary decides, per column, whether the dictionary
	// encoder is attempted first (§4.2: "all except BOOLEAN when the
	// manager decides not to dictionary-encode BOOLEAN").
	EnableDictionary func(*ColumnDescriptor) bool
	// FallbackEncoder builds the encoder a column switches to once its
	// dictionary overflows (PLAIN for v1, DELTA_* for numerics/binaries
	// in v2, per §4.2).
	FallbackEncoder func(*ColumnDescriptor, WriterVersion) ValueEncoder

	Compression       format.CompressionCodec
	ColumnCompression map[string]format.CompressionCodec

	EnableCRC     bool
	DistinctCount bool

	MinRowGroupCheckInterval int64
	MaxRowGroupCheckInterval int64
	EstimateNextCheck        bool

	BlockAlignPadding     bool
	BlockSize             int64
	BlockPaddingTolerance int64

	CreatedBy        string
	KeyValueMetadata []format.KeyValue
	SortingColumns   []format.SortingColumn

	PlaintextFooter bool
	Encryption      *EncryptionConfig

	BufferPool BufferPool
}

const (
	defaultPageSize           = 1 << 20   // 1 MiB
	defaultRowGroupTargetSize = 128 << 20 // 128 MiB
	defaultDictionaryPageSize = 1 << 20   // 1 MiB
	defaultMinCheckInterval   = 100
	defaultMaxCheckInterval   = 10000
	defaultCreatedBy          = "pqwriter-parquet version 1.0.0 (build dev)"
	defaultBlockPaddingSlack  = 4096
)

// NewWriterConfig builds a WriterConfig, applying defaults and then opts
// in order. schema is accepted for symmetry with the teacher's
// per-schema config construction but is not currently required by any
// default.
func NewWriterConfig(schema *Schema, opts ...WriterOption) *WriterConfig {
	_ = schema
	c := &WriterConfig{
		WriterVersion:               V2,
		PageSize:                    defaultPageSize,
		RowGroupTargetSize:          defaultRowGroupTargetSize,
		DictionaryPageSizeThreshold: defaultDictionaryPageSize,
		EnableDictionary:            defaultEnableDictionary,
		FallbackEncoder:             defaultFallbackEncoder,
		Compression:                 format.Uncompressed,
		MinRowGroupCheckInterval:    defaultMinCheckInterval,
		MaxRowGroupCheckInterval:    defaultMaxCheckInterval,
		EstimateNextCheck:           true,
		CreatedBy:                   defaultCreatedBy,
		BlockPaddingTolerance:       defaultBlockPaddingSlack,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultEnableDictionary(d *ColumnDescriptor) bool {
	return d.Node.Kind() != BooleanKind
}

func defaultFallbackEncoder(d *ColumnDescriptor, version WriterVersion) ValueEncoder {
	kind := d.Node.Kind()
	if version == V1 {
		return NewPlainEncoder(kind)
	}
	switch kind {
	case Int32Kind, Int64Kind:
		return NewDeltaBinaryPackedEncoder(kind)
	case ByteArrayKind:
		return NewDeltaByteArrayEncoder()
	default:
		return NewPlainEncoder(kind)
	}
}

func (c *WriterConfig) codecFor(col *ColumnDescriptor) format.CompressionCodec {
	if c.ColumnCompression != nil {
		if codec, ok := c.ColumnCompression[col.ColumnPath()]; ok {
			return codec
		}
	}
	return c.Compression
}

func (c *WriterConfig) shouldEncryptColumn(path string) bool {
	if c.Encryption == nil {
		return false
	}
	if c.Encryption.EncryptAllColumns {
		return true
	}
	_, ok := c.Encryption.ColumnKeys[path]
	return ok
}

func (c *WriterConfig) keyMetadataFor(path string) []byte {
	if c.Encryption == nil {
		return nil
	}
	return c.Encryption.ColumnKeyMetadata[path]
}

// WithWriterVersion selects the V1 or V2 data page format (§4.2).
func WithWriterVersion(v WriterVersion) WriterOption {
	return func(c *WriterConfig) { c.WriterVersion = v }
}

// WithPageSize sets the page_size_threshold a column writer flushes a
// page at (§4.2).
func WithPageSize(n int64) WriterOption { return func(c *WriterConfig) { c.PageSize = n } }

// WithRowGroupTargetSize sets the row_group_threshold the flusher
// targets (§4.7).
func WithRowGroupTargetSize(n int64) WriterOption {
	return func(c *WriterConfig) { c.RowGroupTargetSize = n }
}

// WithDictionaryPageSize sets the dictionary_page_size_threshold a
// column's dictionary falls back past (§4.4).
func WithDictionaryPageSize(n int) WriterOption {
	return func(c *WriterConfig) { c.DictionaryPageSizeThreshold = n }
}

// WithDictionaryEncoding overrides the per-column dictionary-eligibility
// policy.
func WithDictionaryEncoding(enable func(*ColumnDescriptor) bool) WriterOption {
	return func(c *WriterConfig) { c.EnableDictionary = enable }
}

// WithFallbackEncoder overrides the encoder used once a column's
// dictionary overflows.
func WithFallbackEncoder(f func(*ColumnDescriptor, WriterVersion) ValueEncoder) WriterOption {
	return func(c *WriterConfig) { c.FallbackEncoder = f }
}

// WithCompression sets the default page compression codec (§4.6).
func WithCompression(codec format.CompressionCodec) WriterOption {
	return func(c *WriterConfig) { c.Compression = codec }
}

// WithColumnCompression overrides the compression codec for one column,
// identified by its dotted path.
func WithColumnCompression(path string, codec format.CompressionCodec) WriterOption {
	return func(c *WriterConfig) {
		if c.ColumnCompression == nil {
			c.ColumnCompression = make(map[string]format.CompressionCodec)
		}
		c.ColumnCompression[path] = codec
	}
}

// WithCRC enables per-page CRC32 computation (§4.6).
func WithCRC(enable bool) WriterOption { return func(c *WriterConfig) { c.EnableCRC = enable } }

// WithDistinctCount enables distinct-value tracking in column statistics
// (§4.5); off by default since it is memory-expensive.
func WithDistinctCount(enable bool) WriterOption {
	return func(c *WriterConfig) { c.DistinctCount = enable }
}

// WithRowGroupCheckInterval sets the flusher's min/max record-count
// check interval (§4.7).
func WithRowGroupCheckInterval(min, max int64) WriterOption {
	return func(c *WriterConfig) {
		c.MinRowGroupCheckInterval, c.MaxRowGroupCheckInterval = min, max
	}
}

// WithoutCheckEstimation disables the estimated-next-check formula,
// falling back to a fixed recordCount+minCheck interval (§4.7).
func WithoutCheckEstimation() WriterOption {
	return func(c *WriterConfig) { c.EstimateNextCheck = false }
}

// WithBlockAlignment enables zero-padding row groups up to a filesystem
// block boundary when within a small tolerance (§4.9).
func WithBlockAlignment(blockSize int64) WriterOption {
	return func(c *WriterConfig) { c.BlockAlignPadding, c.BlockSize = true, blockSize }
}

// WithCreatedBy overrides the footer's created_by string.
func WithCreatedBy(s string) WriterOption { return func(c *WriterConfig) { c.CreatedBy = s } }

// WithKeyValueMetadata appends one key/value pair to the footer's
// key_value_metadata list.
func WithKeyValueMetadata(key, value string) WriterOption {
	return func(c *WriterConfig) {
		c.KeyValueMetadata = append(c.KeyValueMetadata, format.KeyValue{Key: key, Value: value})
	}
}

// WithSortingColumns records the columns the caller guarantees rows are
// already sorted by; the writer does not sort, it only persists the
// declaration (SPEC_FULL.md's SUPPLEMENTED FEATURES).
func WithSortingColumns(cols ...format.SortingColumn) WriterOption {
	return func(c *WriterConfig) { c.SortingColumns = append(c.SortingColumns, cols...) }
}

// WithEncryption enables per-module encryption (§4.8). plaintextFooter
// leaves the footer itself unencrypted (for legacy reader
// compatibility) while still encrypting configured columns.
func WithEncryption(enc *EncryptionConfig, plaintextFooter bool) WriterOption {
	return func(c *WriterConfig) {
		c.Encryption = enc
		c.PlaintextFooter = plaintextFooter
	}
}

// WithBufferPool installs a custom BufferPool used to stage page-header
// bytes during the file writer's streaming output (§5's shared buffer
// allocator).
func WithBufferPool(pool BufferPool) WriterOption {
	return func(c *WriterConfig) { c.BufferPool = pool }
}
