package parquet

// ColumnWriter buffers ⟨r,d,v⟩ triples for one column, chooses its
// encoding (dictionary with fallback, or a configured non-dictionary
// encoding), and emits pages to its PageWriter when thresholds are hit
// (§4.2).
type ColumnWriter struct {
	descriptor *ColumnDescriptor
	config     *WriterConfig
	pageWriter *PageWriter
	comparator Comparator

	version WriterVersion

	repLevels []int
	defLevels []int
	pageStats *Statistics

	dict         *DictionaryManager
	dictEncoder  *DictionaryEncoder
	fallback     ValueEncoder
	usingDict    bool

	numValuesBuffered int
	numNullsBuffered  int
	numRowsBuffered   int
	bufferedBytes     int64

	chunkNumValues int64
	recordCount    int
}

// NewColumnWriter constructs a ColumnWriter for descriptor.
func NewColumnWriter(descriptor *ColumnDescriptor, config *WriterConfig, pageWriter *PageWriter) *ColumnWriter {
	cw := &ColumnWriter{
		descriptor: descriptor,
		config:     config,
		pageWriter: pageWriter,
		comparator: ComparatorFor(descriptor.Node),
		version:    config.WriterVersion,
	}
	cw.resetEncoders()
	return cw
}

func (cw *ColumnWriter) resetEncoders() {
	if cw.config.EnableDictionary(cw.descriptor) {
		cw.dict = NewDictionaryManager(cw.config.DictionaryPageSizeThreshold, plainKeyOf, plainEncodedLen)
		cw.dictEncoder = NewDictionaryEncoder(cw.dict, 32)
		cw.usingDict = true
	} else {
		cw.usingDict = false
	}
	cw.fallback = cw.config.FallbackEncoder(cw.descriptor, cw.version)
	cw.pageStats = NewStatistics(cw.comparator, cw.config.DistinctCount)
}

func plainKeyOf(v Value) []byte {
	e := NewPlainEncoder(v.Kind)
	e.WriteValue(v)
	return e.TakeBytes(nil)
}

func plainEncodedLen(v Value) int { return len(plainKeyOf(v)) }

// WriteTriple implements TripleSink, buffering one ⟨r,d,v⟩ triple and
// flushing a page if the configured threshold is reached. A null triple's
// levels are appended immediately; a value triple's levels are only
// appended once the value has actually landed in an encoder, so that a
// mid-page dictionary overflow (see writeValue) can flush the page that
// holds the pre-overflow triples before this triple is counted into the
// next one.
func (cw *ColumnWriter) WriteTriple(column int, r, d int, v Value) error {
	if d < cw.descriptor.MaxDefinitionLevel {
		cw.repLevels = append(cw.repLevels, r)
		cw.defLevels = append(cw.defLevels, d)
		cw.numValuesBuffered++
		if r == 0 {
			cw.numRowsBuffered++
		}
		cw.numNullsBuffered++
		cw.pageStats.Observe(v, nil)
		return cw.maybeFlush()
	}
	if err := cw.writeValue(v); err != nil {
		return err
	}
	cw.repLevels = append(cw.repLevels, r)
	cw.defLevels = append(cw.defLevels, d)
	cw.numValuesBuffered++
	if r == 0 {
		cw.numRowsBuffered++
	}
	cw.pageStats.Observe(v, plainKeyOf(v))
	return cw.maybeFlush()
}

// writeValue encodes v with the column's current encoder. On dictionary
// overflow it force-flushes the page accumulated so far (still entirely
// dictionary-encoded, since the overflowing value's own triple has not
// been counted into it yet) before switching to the fallback encoder, so
// a single page is never a mix of dictionary and fallback encodings
// (§4.2, Property 8).
func (cw *ColumnWriter) writeValue(v Value) error {
	if cw.usingDict {
		if err := cw.dictEncoder.WriteValue(v); err == nil {
			cw.bufferedBytes = cw.dictEncoder.BufferedSize()
			return nil
		}
		if err := cw.FlushPage(); err != nil {
			return err
		}
		cw.usingDict = false
	}
	if err := cw.fallback.WriteValue(v); err != nil {
		return err
	}
	cw.bufferedBytes = cw.fallback.BufferedSize()
	return nil
}

// BufferedSize returns the live byte estimate of this column's unflushed
// buffers, used by the row-group flusher's memory probe (§4.7, §5).
func (cw *ColumnWriter) BufferedSize() int64 {
	return cw.bufferedBytes + int64(len(cw.repLevels)+len(cw.defLevels))*4
}

func (cw *ColumnWriter) maybeFlush() error {
	threshold := int64(cw.config.PageSize)
	if cw.BufferedSize() >= threshold {
		return cw.FlushPage()
	}
	return nil
}

// EndRecord marks a record boundary; for V2 writers this is a valid page
// split point (§4.2).
func (cw *ColumnWriter) EndRecord() error {
	cw.recordCount++
	if cw.version == V2 && cw.BufferedSize() >= int64(cw.config.PageSize) {
		return cw.FlushPage()
	}
	return nil
}

// FlushPage builds a page from the currently buffered triples and passes
// it to the PageWriter, resetting the column's per-page state. A no-op
// when nothing is buffered.
func (cw *ColumnWriter) FlushPage() error {
	if cw.numValuesBuffered == 0 {
		return nil
	}
	var valuesEncoder ValueEncoder
	if cw.usingDict {
		valuesEncoder = cw.dictEncoder
	} else {
		valuesEncoder = cw.fallback
	}

	var repData, defData []byte
	if cw.version == V1 {
		repData = EncodeLevelsV1(cw.repLevels, cw.descriptor.MaxRepetitionLevel)
		defData = EncodeLevelsV1(cw.defLevels, cw.descriptor.MaxDefinitionLevel)
	} else {
		repData = EncodeLevelsV2(cw.repLevels, cw.descriptor.MaxRepetitionLevel)
		defData = EncodeLevelsV2(cw.defLevels, cw.descriptor.MaxDefinitionLevel)
	}
	valuesData := valuesEncoder.TakeBytes(nil)

	in := PageInput{
		NumValues:      cw.numValuesBuffered,
		NumNulls:       cw.numNullsBuffered,
		NumRows:        cw.numRowsBuffered,
		RepetitionData: repData,
		DefinitionData: defData,
		ValuesData:     valuesData,
		Encoding:       valuesEncoder.Encoding(),
		Statistics:     cw.pageStats,
		EncodeStat:     plainKeyOf,
	}
	if err := cw.pageWriter.WriteDataPage(in); err != nil {
		return err
	}
	cw.chunkNumValues += int64(cw.numValuesBuffered)
	cw.repLevels = cw.repLevels[:0]
	cw.defLevels = cw.defLevels[:0]
	cw.numValuesBuffered, cw.numNullsBuffered, cw.numRowsBuffered = 0, 0, 0
	cw.bufferedBytes = 0
	cw.pageStats = NewStatistics(cw.comparator, cw.config.DistinctCount)
	return nil
}

// Close flushes any remaining buffered values as a final page, writes the
// dictionary page first if the column is (or was, before falling back)
// dictionary-encoded, and returns the total value count for the chunk.
func (cw *ColumnWriter) Close() (int64, error) {
	if cw.dict != nil && cw.dict.Len() > 0 {
		plainBytes := encodeDictionaryValues(cw.dict.Values())
		if err := cw.pageWriter.WriteDictionaryPage(plainBytes, cw.dict.Len()); err != nil {
			return 0, err
		}
	}
	if err := cw.FlushPage(); err != nil {
		return 0, err
	}
	return cw.chunkNumValues, nil
}

func encodeDictionaryValues(values []Value) []byte {
	if len(values) == 0 {
		return nil
	}
	e := NewPlainEncoder(values[0].Kind)
	for _, v := range values {
		e.WriteValue(v)
	}
	return e.TakeBytes(nil)
}

// Reset prepares the column writer for the next row group.
func (cw *ColumnWriter) Reset() {
	cw.repLevels = cw.repLevels[:0]
	cw.defLevels = cw.defLevels[:0]
	cw.numValuesBuffered, cw.numNullsBuffered, cw.numRowsBuffered = 0, 0, 0
	cw.bufferedBytes = 0
	cw.chunkNumValues = 0
	cw.recordCount = 0
	cw.pageWriter.Reset()
	cw.resetEncoders()
}
