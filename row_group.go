package parquet

import (
	"bytes"

	"github.com/pqwriter/parquet/compress"
	"github.com/pqwriter/parquet/encoding/thrift"
	"github.com/pqwriter/parquet/format"
)

// RowGroupWriter buffers one row group's worth of triples across every
// leaf column, probes buffered memory at record boundaries and reports
// when the row group is ready to flush (§4.7), then drives the FileWriter
// through one full row group's column chunks on Flush.
type RowGroupWriter struct {
	schema          *Schema
	config          *WriterConfig
	encryptor       *FileEncryptor
	rowGroupOrdinal int

	columns     []*ColumnWriter
	pageWriters []*PageWriter
	chunkStats  []*Statistics

	recordCount             int64
	recordCountForNextCheck int64
}

// NewRowGroupWriter constructs a RowGroupWriter for schema, creating one
// ColumnWriter/PageWriter pair per leaf column.
func NewRowGroupWriter(schema *Schema, config *WriterConfig, encryptor *FileEncryptor, rowGroupOrdinal int) *RowGroupWriter {
	rg := &RowGroupWriter{
		schema:          schema,
		config:          config,
		encryptor:       encryptor,
		rowGroupOrdinal: rowGroupOrdinal,
	}
	rg.initColumns()
	rg.recordCountForNextCheck = config.MinRowGroupCheckInterval
	return rg
}

func (rg *RowGroupWriter) initColumns() {
	cols := rg.schema.Columns()
	rg.columns = make([]*ColumnWriter, len(cols))
	rg.pageWriters = make([]*PageWriter, len(cols))
	rg.chunkStats = make([]*Statistics, len(cols))
	for i, col := range cols {
		codecTag := rg.config.codecFor(col)
		codec, err := compress.Lookup(codecTag)
		if err != nil {
			codec, _ = compress.Lookup(format.Uncompressed)
		}
		stats := NewStatistics(ComparatorFor(col.Node), rg.config.DistinctCount)
		rg.chunkStats[i] = stats

		var enc *PageEncryptor
		if rg.encryptor != nil && rg.config.shouldEncryptColumn(col.ColumnPath()) {
			enc = rg.encryptor.PageEncryptorFor(col.ColumnPath(), rg.rowGroupOrdinal, i, true)
		}
		pw := NewPageWriter(col, codec, rg.config.WriterVersion, rg.config.EnableCRC, enc, stats)
		rg.pageWriters[i] = pw
		rg.columns[i] = NewColumnWriter(col, rg.config, pw)
	}
}

// WriteTriple implements TripleSink, the interface the Shredder drives
// while shredding one record (§4.1, §4.2).
func (rg *RowGroupWriter) WriteTriple(column int, repetitionLevel, definitionLevel int, value Value) error {
	return rg.columns[column].WriteTriple(column, repetitionLevel, definitionLevel, value)
}

// EndRecord marks a record boundary across every column, probing
// buffered memory per §4.7's check-interval policy and reporting whether
// the row group should be flushed now.
func (rg *RowGroupWriter) EndRecord() (bool, error) {
	for _, cw := range rg.columns {
		if err := cw.EndRecord(); err != nil {
			return false, err
		}
	}
	rg.recordCount++
	if rg.recordCount < rg.recordCountForNextCheck {
		return false, nil
	}
	return rg.probe(), nil
}

// BufferedSize returns the live byte estimate of every column's unflushed
// buffers.
func (rg *RowGroupWriter) BufferedSize() int64 {
	var total int64
	for _, cw := range rg.columns {
		total += cw.BufferedSize()
	}
	return total
}

// RecordCount returns the number of records buffered into this row group
// so far.
func (rg *RowGroupWriter) RecordCount() int64 { return rg.recordCount }

// probe implements §4.7's check-interval formula: flush once the
// buffered size is within two average-record-sizes of the target, else
// schedule the next check at
// min(max(recordCount+minCheck, recordCount+(threshold-buffered)/avg/2), recordCount+maxCheck).
func (rg *RowGroupWriter) probe() bool {
	buffered := rg.BufferedSize()
	threshold := rg.config.RowGroupTargetSize
	avg := buffered / rg.recordCount
	if avg == 0 {
		avg = 1
	}
	if buffered >= threshold-2*avg {
		return true
	}
	minCheck, maxCheck := rg.config.MinRowGroupCheckInterval, rg.config.MaxRowGroupCheckInterval
	if rg.config.EstimateNextCheck {
		remaining := (threshold - buffered) / avg / 2
		next := rg.recordCount + remaining
		if floor := rg.recordCount + minCheck; next < floor {
			next = floor
		}
		if ceil := rg.recordCount + maxCheck; next > ceil {
			next = ceil
		}
		rg.recordCountForNextCheck = next
	} else {
		rg.recordCountForNextCheck = rg.recordCount + minCheck
	}
	return false
}

// Flush drives fw through one complete row group: StartBlock, then for
// each column StartColumn / WriteDictionaryPage / WriteDataPage* /
// EndColumn, applying per-column encryption scrubbing (§4.8) before
// appending the chunk, then EndBlock.
func (rg *RowGroupWriter) Flush(fw *FileWriter) error {
	if err := fw.StartBlock(rg.recordCount); err != nil {
		return err
	}
	cols := rg.schema.Columns()
	for i, cw := range rg.columns {
		descriptor := cols[i]
		codec := rg.config.codecFor(descriptor)
		if err := fw.StartColumn(descriptor, codec); err != nil {
			return err
		}
		numValues, err := cw.Close()
		if err != nil {
			return err
		}
		dict, pages, encodings := rg.pageWriters[i].Flush()
		if dict != nil {
			if err := fw.WriteDictionaryPage(dict); err != nil {
				return err
			}
		}
		for p := range pages {
			if err := fw.WriteDataPage(&pages[p]); err != nil {
				return err
			}
		}
		chunk, err := fw.EndColumn(numValues, encodings, rg.chunkStats[i], plainKeyOf)
		if err != nil {
			return err
		}
		path := descriptor.ColumnPath()
		if rg.encryptor != nil && rg.config.shouldEncryptColumn(path) {
			if err := rg.scrubForEncryption(&chunk, descriptor, i, path); err != nil {
				return err
			}
		}
		fw.AppendColumnChunk(chunk)
	}
	return fw.EndBlock()
}

// scrubForEncryption attaches the column's crypto metadata and, under
// plaintext-footer mode, replaces the plaintext ColumnMetaData with its
// AES-encrypted form so a reader without the column's key cannot read it
// (§4.8, §4.9).
func (rg *RowGroupWriter) scrubForEncryption(chunk *format.ColumnChunk, descriptor *ColumnDescriptor, ordinal int, path string) error {
	keyMeta := rg.config.keyMetadataFor(path)
	if rg.config.PlaintextFooter {
		var mb bytes.Buffer
		if err := thrift.Marshal(&mb, &chunk.MetaData); err != nil {
			return err
		}
		encrypted, err := rg.encryptor.EncryptColumnMetaData(mb.Bytes(), rg.rowGroupOrdinal, ordinal, path)
		if err != nil {
			return err
		}
		chunk.EncryptedColumnMetadata = encrypted
		chunk.MetaData = format.ColumnMetaData{}
	}
	if _, ownKey := rg.config.Encryption.ColumnKeys[path]; !ownKey {
		chunk.CryptoMetadata = format.ColumnCryptoMetaData{EncryptionWithFooterKey: &format.EncryptionWithFooterKey{}}
		return nil
	}
	chunk.CryptoMetadata = format.ColumnCryptoMetaData{
		EncryptionWithColumnKey: &format.EncryptionWithColumnKey{
			PathInSchema: append([]string{}, descriptor.Path...),
			KeyMetadata:  keyMeta,
		},
	}
	return nil
}
