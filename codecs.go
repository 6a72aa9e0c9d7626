package parquet

// Importing these subpackages for their init-time compress.Register call
// is what makes every standard Parquet compression codec available to
// WithCompression/WithColumnCompression without the caller having to
// import each one individually.
import (
	_ "github.com/pqwriter/parquet/compress/brotli"
	_ "github.com/pqwriter/parquet/compress/gzip"
	_ "github.com/pqwriter/parquet/compress/lz4"
	_ "github.com/pqwriter/parquet/compress/snappy"
	_ "github.com/pqwriter/parquet/compress/uncompressed"
	_ "github.com/pqwriter/parquet/compress/zstd"
)
