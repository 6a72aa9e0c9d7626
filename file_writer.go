package parquet

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/pqwriter/parquet/encoding/thrift"
	"github.com/pqwriter/parquet/format"
)

const (
	magic          = "PAR1"
	magicEncrypted = "PARE"
)

type fileWriterState int8

const (
	fwCreated fileWriterState = iota
	fwStarted
	fwRowGroupOpen
	fwRowGroupClosed
	fwEnded
)

type columnChunkState int8

const (
	ccClosed columnChunkState = iota
	ccOpen
)

// countingWriter wraps an io.Writer, tracking bytes written so FileWriter
// can record exact file offsets for magic, row groups and the footer
// (§4.9, §6).
type countingWriter struct {
	w      io.Writer
	offset int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.offset += int64(n)
	return n, err
}

// FileMetaExtras carries the footer fields that are only known once all
// row groups have been written.
type FileMetaExtras struct {
	KeyValueMetadata []format.KeyValue
	CreatedBy        string
}

// FileWriter drives the file-level state machine of §4.9: Created ->
// Started -> RowGroupOpen -> (column chunk open/closed)* -> RowGroupClosed
// -> ... -> Ended, streaming bytes to w and assembling the Thrift footer.
type FileWriter struct {
	cw        *countingWriter
	state     fileWriterState
	colState  columnChunkState
	schema    *Schema
	config    *WriterConfig
	encryptor *FileEncryptor
	pool      BufferPool

	rowGroups       []format.RowGroup
	rowGroupOrdinal int

	curRowGroup            format.RowGroup
	curRowGroupRows        int64
	curRowGroupStartOffset int64

	curColumnMeta          format.ColumnMetaData
	curColumnStartOffset   int64
	curColumnDictOffset    int64
	curColumnDataOffset    int64
}

// NewFileWriter returns a FileWriter that streams to w. encryptor may be
// nil to disable encryption entirely.
func NewFileWriter(w io.Writer, schema *Schema, config *WriterConfig, encryptor *FileEncryptor) *FileWriter {
	pool := config.BufferPool
	if pool == nil {
		pool = NewBufferPool()
	}
	return &FileWriter{
		cw:        &countingWriter{w: w},
		schema:    schema,
		config:    config,
		encryptor: encryptor,
		pool:      pool,
	}
}

func (fw *FileWriter) usesEncryptedFooter() bool {
	return fw.encryptor != nil && !fw.config.PlaintextFooter
}

// Start writes the leading 4-byte magic ("PAR1", or "PARE" under
// encrypted-footer mode) and transitions Created -> Started.
func (fw *FileWriter) Start() error {
	if fw.state != fwCreated {
		return ErrIllegalState
	}
	m := magic
	if fw.usesEncryptedFooter() {
		m = magicEncrypted
	}
	if _, err := fw.cw.Write([]byte(m)); err != nil {
		return err
	}
	fw.state = fwStarted
	return nil
}

// StartBlock opens a new row group expected to hold numRows rows,
// optionally padding to a filesystem block boundary first (§4.9).
func (fw *FileWriter) StartBlock(numRows int64) error {
	if fw.state != fwStarted && fw.state != fwRowGroupClosed {
		return ErrIllegalState
	}
	if fw.config.BlockAlignPadding {
		if err := fw.padToBlockBoundary(); err != nil {
			return err
		}
	}
	fw.curRowGroup = format.RowGroup{
		Ordinal:        int16(fw.rowGroupOrdinal),
		SortingColumns: fw.config.SortingColumns,
	}
	fw.curRowGroupRows = numRows
	fw.curRowGroupStartOffset = fw.cw.offset
	fw.state = fwRowGroupOpen
	return nil
}

// padToBlockBoundary pads with zero bytes up to the next block boundary
// only when the gap is within BlockPaddingTolerance, so a row group that
// is not close to crossing a block is left untouched (§4.9).
func (fw *FileWriter) padToBlockBoundary() error {
	blockSize := fw.config.BlockSize
	if blockSize <= 0 {
		return nil
	}
	rem := fw.cw.offset % blockSize
	if rem == 0 {
		return nil
	}
	toBoundary := blockSize - rem
	if toBoundary > fw.config.BlockPaddingTolerance {
		return nil
	}
	_, err := fw.cw.Write(make([]byte, toBoundary))
	return err
}

// StartColumn opens a column chunk within the current row group.
func (fw *FileWriter) StartColumn(descriptor *ColumnDescriptor, codec format.CompressionCodec) error {
	if fw.state != fwRowGroupOpen || fw.colState != ccClosed {
		return ErrIllegalState
	}
	fw.curColumnStartOffset = fw.cw.offset
	fw.curColumnMeta = format.ColumnMetaData{
		Type:         descriptor.Node.Kind().format(),
		PathInSchema: append([]string{}, descriptor.Path...),
		Codec:        codec,
	}
	fw.curColumnDictOffset = 0
	fw.curColumnDataOffset = 0
	fw.colState = ccOpen
	return nil
}

// WriteDictionaryPage writes page's header and data verbatim, recording
// its file offset as the column's dictionary_page_offset.
func (fw *FileWriter) WriteDictionaryPage(page *Page) error {
	if fw.colState != ccOpen {
		return ErrIllegalState
	}
	offset := fw.cw.offset
	if err := fw.writePage(page); err != nil {
		return err
	}
	fw.curColumnDictOffset = offset
	fw.curColumnMeta.TotalUncompressedSize += int64(page.Header.UncompressedPageSize)
	fw.curColumnMeta.TotalCompressedSize += int64(page.Header.CompressedPageSize)
	return nil
}

// WriteDataPage writes page's header and data verbatim, recording the
// first data page's offset as the column's data_page_offset.
func (fw *FileWriter) WriteDataPage(page *Page) error {
	if fw.colState != ccOpen {
		return ErrIllegalState
	}
	offset := fw.cw.offset
	if err := fw.writePage(page); err != nil {
		return err
	}
	if fw.curColumnDataOffset == 0 {
		fw.curColumnDataOffset = offset
	}
	fw.curColumnMeta.TotalUncompressedSize += int64(page.Header.UncompressedPageSize)
	fw.curColumnMeta.TotalCompressedSize += int64(page.Header.CompressedPageSize)
	return nil
}

// writePage Thrift-marshals page.Header through a pooled scratch buffer
// (§5's shared buffer allocator) then writes page.Data.
func (fw *FileWriter) writePage(page *Page) error {
	buf := fw.pool.GetBuffer()
	defer fw.pool.PutBuffer(buf)
	if err := thrift.Marshal(buf, &page.Header); err != nil {
		return err
	}
	if _, err := buf.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.Copy(fw.cw, buf); err != nil {
		return err
	}
	_, err := fw.cw.Write(page.Data)
	return err
}

// EndColumn finalizes the current column chunk's metadata (value count,
// offsets, sorted encoding list, statistics) and returns the resulting
// ColumnChunk; the caller is responsible for appending it to the row
// group via AppendColumnChunk, possibly after encrypting the metadata.
func (fw *FileWriter) EndColumn(numValues int64, encodings []format.Encoding, stats *Statistics, encodeFn func(Value) []byte) (format.ColumnChunk, error) {
	if fw.colState != ccOpen {
		return format.ColumnChunk{}, ErrIllegalState
	}
	meta := fw.curColumnMeta
	meta.NumValues = numValues
	meta.DataPageOffset = fw.curColumnDataOffset
	if fw.curColumnDictOffset != 0 {
		meta.DictionaryPageOffset = fw.curColumnDictOffset
	}
	sorted := append([]format.Encoding{}, encodings...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	meta.Encoding = sorted
	if stats != nil {
		meta.Statistics = stats.Thrift(encodeFn)
	}
	fw.colState = ccClosed
	return format.ColumnChunk{FileOffset: fw.curColumnStartOffset, MetaData: meta}, nil
}

// AppendColumnChunk appends a finalized (and possibly encryption-scrubbed)
// column chunk to the current row group.
func (fw *FileWriter) AppendColumnChunk(chunk format.ColumnChunk) {
	fw.curRowGroup.Columns = append(fw.curRowGroup.Columns, chunk)
}

// EndBlock finalizes and appends the current row group.
func (fw *FileWriter) EndBlock() error {
	if fw.state != fwRowGroupOpen || fw.colState != ccClosed {
		return ErrIllegalState
	}
	fw.curRowGroup.NumRows = fw.curRowGroupRows
	fw.curRowGroup.FileOffset = fw.curRowGroupStartOffset
	var total int64
	for _, c := range fw.curRowGroup.Columns {
		total += c.MetaData.TotalCompressedSize
	}
	fw.curRowGroup.TotalByteSize = total
	fw.curRowGroup.TotalCompressedSize = total
	fw.rowGroups = append(fw.rowGroups, fw.curRowGroup)
	fw.rowGroupOrdinal++
	fw.state = fwRowGroupClosed
	return nil
}

// RowGroupOrdinal returns the ordinal the next StartBlock call will use,
// needed by the caller to build per-row-group PageEncryptors.
func (fw *FileWriter) RowGroupOrdinal() int { return fw.rowGroupOrdinal }

// End assembles and writes the footer (plaintext, or encrypted per
// §4.8's two key-management modes), the 4-byte little-endian footer
// length, and the trailing magic, transitioning to Ended.
func (fw *FileWriter) End(extra FileMetaExtras) error {
	if fw.state != fwRowGroupClosed && fw.state != fwStarted {
		return ErrIllegalState
	}
	var numRows int64
	for _, rg := range fw.rowGroups {
		numRows += rg.NumRows
	}
	version := int32(1)
	if fw.config.WriterVersion == V2 {
		version = 2
	}
	meta := format.FileMetaData{
		Version:          version,
		Schema:           fw.schema.schemaElements(),
		NumRows:          numRows,
		RowGroups:        fw.rowGroups,
		KeyValueMetadata: extra.KeyValueMetadata,
		CreatedBy:        extra.CreatedBy,
		ColumnOrders:     columnOrdersFor(fw.schema),
	}

	var footerBytes []byte
	if fw.usesEncryptedFooter() {
		cryptoMeta := format.FileCryptoMetaData{
			EncryptionAlgorithm: *fw.encryptor.thriftAlgorithm(),
			KeyMetadata:         fw.encryptor.footerKeyMetadata,
		}
		if err := thrift.Marshal(fw.cw, &cryptoMeta); err != nil {
			return err
		}
		plain := fw.pool.GetBuffer()
		defer fw.pool.PutBuffer(plain)
		if err := thrift.Marshal(plain, &meta); err != nil {
			return err
		}
		if _, err := plain.Seek(0, io.SeekStart); err != nil {
			return err
		}
		plainBytes, err := io.ReadAll(plain)
		if err != nil {
			return err
		}
		encrypted, err := fw.encryptor.EncryptFooter(plainBytes)
		if err != nil {
			return err
		}
		footerBytes = encrypted
	} else {
		if fw.encryptor != nil {
			meta.EncryptionAlgorithm = fw.encryptor.thriftAlgorithm()
			meta.FooterSigningKeyMetadata = fw.encryptor.footerKeyMetadata
		}
		buf := fw.pool.GetBuffer()
		defer fw.pool.PutBuffer(buf)
		if err := thrift.Marshal(buf, &meta); err != nil {
			return err
		}
		if _, err := buf.Seek(0, io.SeekStart); err != nil {
			return err
		}
		plainBytes, err := io.ReadAll(buf)
		if err != nil {
			return err
		}
		footerBytes = plainBytes
	}

	footerStart := fw.cw.offset
	if _, err := fw.cw.Write(footerBytes); err != nil {
		return err
	}
	footerLen := uint32(fw.cw.offset - footerStart)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], footerLen)
	if _, err := fw.cw.Write(lenBuf[:]); err != nil {
		return err
	}
	m := magic
	if fw.usesEncryptedFooter() {
		m = magicEncrypted
	}
	if _, err := fw.cw.Write([]byte(m)); err != nil {
		return err
	}
	fw.state = fwEnded
	return nil
}

func columnOrdersFor(schema *Schema) []format.ColumnOrder {
	cols := schema.Columns()
	orders := make([]format.ColumnOrder, len(cols))
	for i := range cols {
		orders[i] = format.ColumnOrder{TypeOrder: &format.TypeDefinedOrder{}}
	}
	return orders
}
