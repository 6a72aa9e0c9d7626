package parquet

import "io"

// Writer is the public entry point for producing a Parquet file: it owns
// the Shredder -> RowGroupWriter -> FileWriter pipeline, exposing the
// RecordConsumer surface (§4's component 8) so callers shred records
// straight onto disk without driving the lower layers themselves.
type Writer struct {
	schema    *Schema
	config    *WriterConfig
	fileWriter *FileWriter
	encryptor  *FileEncryptor

	rowGroup *RowGroupWriter
	shredder *Shredder

	started bool
	closed  bool
}

// NewWriter returns a Writer for schema, streaming output to w as records
// are ingested and row groups fill up.
func NewWriter(w io.Writer, schema *Schema, opts ...WriterOption) (*Writer, error) {
	config := NewWriterConfig(schema, opts...)

	var encryptor *FileEncryptor
	if config.Encryption != nil {
		enc, err := NewFileEncryptor(config.Encryption.Algorithm, config.Encryption.FooterKey, config.Encryption.AADPrefix, config.PlaintextFooter)
		if err != nil {
			return nil, err
		}
		for path, key := range config.Encryption.ColumnKeys {
			enc.SetColumnKey(path, key)
		}
		encryptor = enc
	}

	fw := NewFileWriter(w, schema, config, encryptor)
	wr := &Writer{
		schema:     schema,
		config:     config,
		fileWriter: fw,
		encryptor:  encryptor,
	}
	wr.rowGroup = NewRowGroupWriter(schema, config, encryptor, 0)
	wr.shredder = NewShredder(schema, wr.rowGroup)
	return wr, nil
}

// Start writes the file magic. Called automatically by the first
// EndMessage, or by Close, if not called explicitly.
func (w *Writer) Start() error {
	if w.started {
		return nil
	}
	w.started = true
	return w.fileWriter.Start()
}

// StartMessage begins shredding one record; implements RecordConsumer.
func (w *Writer) StartMessage() {
	w.shredder.StartMessage()
}

// StartField implements RecordConsumer.
func (w *Writer) StartField(name string, idx int) error { return w.shredder.StartField(name, idx) }

// AddBoolean implements RecordConsumer.
func (w *Writer) AddBoolean(v bool) error { return w.shredder.AddBoolean(v) }

// AddInt32 implements RecordConsumer.
func (w *Writer) AddInt32(v int32) error { return w.shredder.AddInt32(v) }

// AddInt64 implements RecordConsumer.
func (w *Writer) AddInt64(v int64) error { return w.shredder.AddInt64(v) }

// AddInt96 implements RecordConsumer.
func (w *Writer) AddInt96(v [12]byte) error { return w.shredder.AddInt96(v) }

// AddFloat implements RecordConsumer.
func (w *Writer) AddFloat(v float32) error { return w.shredder.AddFloat(v) }

// AddDouble implements RecordConsumer.
func (w *Writer) AddDouble(v float64) error { return w.shredder.AddDouble(v) }

// AddBinary implements RecordConsumer.
func (w *Writer) AddBinary(v []byte) error { return w.shredder.AddBinary(v) }

// StartGroup implements RecordConsumer.
func (w *Writer) StartGroup() error { return w.shredder.StartGroup() }

// EndGroup implements RecordConsumer.
func (w *Writer) EndGroup() error { return w.shredder.EndGroup() }

// EndField implements RecordConsumer.
func (w *Writer) EndField(name string, idx int) error { return w.shredder.EndField(name, idx) }

// EndMessage finishes shredding the current record, then marks the
// row-group boundary (§4.7): if the flusher's probe says the row group
// has reached its target size, it is flushed to the FileWriter and a
// fresh RowGroupWriter/Shredder pair takes over.
func (w *Writer) EndMessage() error {
	if err := w.Start(); err != nil {
		return err
	}
	if err := w.shredder.EndMessage(); err != nil {
		return err
	}
	shouldFlush, err := w.rowGroup.EndRecord()
	if err != nil {
		return err
	}
	if shouldFlush {
		return w.flushRowGroup()
	}
	return nil
}

func (w *Writer) flushRowGroup() error {
	if w.rowGroup.RecordCount() == 0 {
		return nil
	}
	if err := w.rowGroup.Flush(w.fileWriter); err != nil {
		return err
	}
	w.rowGroup = NewRowGroupWriter(w.schema, w.config, w.encryptor, w.fileWriter.RowGroupOrdinal())
	w.shredder = NewShredder(w.schema, w.rowGroup)
	return nil
}

// Close flushes any remaining buffered row group and writes the footer
// (§4.9). It is not safe to call Close twice.
func (w *Writer) Close() error {
	if w.closed {
		return ErrIllegalState
	}
	if err := w.Start(); err != nil {
		return err
	}
	if err := w.flushRowGroup(); err != nil {
		return err
	}
	w.closed = true
	return w.fileWriter.End(FileMetaExtras{
		KeyValueMetadata: w.config.KeyValueMetadata,
		CreatedBy:        w.config.CreatedBy,
	})
}
