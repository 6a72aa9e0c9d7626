package parquet

import "errors"

// Error values returned by the writer package. Most are fatal: once
// returned from a write call, the producing Writer must not be used
// again.
var (
	// ErrSchemaMismatch is returned by the record consumer when a field
	// name or type does not match the schema at the current path.
	ErrSchemaMismatch = errors.New("parquet: record does not match schema")

	// ErrUnexpectedEndOfGroup is returned when endGroup/endField is called
	// without a matching open group/field, or when startGroup is called on
	// a leaf field.
	ErrUnexpectedEndOfGroup = errors.New("parquet: unbalanced group/field/message")

	// ErrEncoding is returned when a value falls outside the range an
	// encoding can represent (e.g. a byte array longer than 2^31 bytes).
	ErrEncoding = errors.New("parquet: value not representable in the chosen encoding")

	// ErrCompression is returned when a compression codec fails.
	ErrCompression = errors.New("parquet: compression codec error")

	// ErrChecksumMismatch is returned by a verifying reader when a page's
	// stored CRC does not match the computed CRC of its payload.
	ErrChecksumMismatch = errors.New("parquet: page checksum mismatch")

	// ErrIllegalState is returned when a writer method is called outside
	// of its valid lifecycle state.
	ErrIllegalState = errors.New("parquet: illegal writer state transition")

	// ErrKeyUnavailable is returned by a KeyRetriever when the requested
	// key identifier cannot be resolved.
	ErrKeyUnavailable = errors.New("parquet: encryption key unavailable")

	// ErrAadMismatch is returned when an AAD prefix is required but was
	// not supplied, or AAD verification fails.
	ErrAadMismatch = errors.New("parquet: encryption AAD mismatch")

	// ErrTagMismatch is returned when GCM authentication fails.
	ErrTagMismatch = errors.New("parquet: encryption authentication tag mismatch")

	// ErrAlgorithmMismatch is returned when a file specifies an encryption
	// algorithm the implementation does not support.
	ErrAlgorithmMismatch = errors.New("parquet: unsupported encryption algorithm")

	// ErrDictionaryOverflow is returned internally (never surfaced to
	// callers) to signal that a column's dictionary exceeded its size cap
	// and the column writer should fall back to non-dictionary encoding.
	ErrDictionaryOverflow = errors.New("parquet: dictionary size exceeds configured cap")
)

// Internal wraps an error that represents an invariant violation rather
// than a caller mistake or environmental failure (e.g. corrupt writer
// bookkeeping). It is never expected in correct programs.
type Internal struct {
	Message string
}

func (e *Internal) Error() string { return "parquet: internal error: " + e.Message }
