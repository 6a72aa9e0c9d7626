package parquet

import (
	"hash/crc32"

	"github.com/pqwriter/parquet/compress"
	"github.com/pqwriter/parquet/format"
)

// WriterVersion selects the V1 or V2 data page format (§4.2).
type WriterVersion int8

const (
	V1 WriterVersion = iota
	V2
)

// Page is one assembled, already compressed (and optionally encrypted)
// data or dictionary page, staged for the row-group flush.
type Page struct {
	Header format.PageHeader
	Data   []byte // V1: compressed levels+values; V2: raw levels + compressed values
}

// PageWriter assembles pages for one column: it receives encoded level
// and value byte streams from the ColumnWriter, compresses, optionally
// computes a CRC32 and encrypts, and stages the resulting Page (§4.6).
type PageWriter struct {
	descriptor *ColumnDescriptor
	codec      compress.Codec
	version    WriterVersion
	enableCRC  bool
	encryptor  *PageEncryptor // nil when encryption is disabled for this column

	pages        []Page
	dictionary   *Page
	encodingsUsed map[format.Encoding]struct{}
	chunkStats   *Statistics
}

// NewPageWriter returns a PageWriter for descriptor using codec for page
// compression.
func NewPageWriter(descriptor *ColumnDescriptor, codec compress.Codec, version WriterVersion, enableCRC bool, encryptor *PageEncryptor, stats *Statistics) *PageWriter {
	return &PageWriter{
		descriptor:    descriptor,
		codec:         codec,
		version:       version,
		enableCRC:     enableCRC,
		encryptor:     encryptor,
		encodingsUsed: make(map[format.Encoding]struct{}),
		chunkStats:    stats,
	}
}

// WriteDictionaryPage compresses and stages the dictionary page built
// from a PLAIN-encoded dictionary values buffer.
func (w *PageWriter) WriteDictionaryPage(valuesPlain []byte, numValues int) error {
	compressed, err := w.codec.Encode(nil, valuesPlain)
	if err != nil {
		return ErrCompression
	}
	hdr := format.PageHeader{
		Type:                 format.DictionaryPage,
		UncompressedPageSize: int32(len(valuesPlain)),
		CompressedPageSize:   int32(len(compressed)),
		DictionaryPageHeader: &format.DictionaryPageHeader{NumValues: int32(numValues), Encoding: format.Plain},
	}
	if w.enableCRC {
		c := int32(crc32.ChecksumIEEE(compressed))
		hdr.Crc = &c
	}
	data := compressed
	if w.encryptor != nil {
		data, err = w.encryptor.EncryptDictionaryPage(compressed)
		if err != nil {
			return err
		}
	}
	w.dictionary = &Page{Header: hdr, Data: data}
	w.encodingsUsed[format.Plain] = struct{}{}
	return nil
}

// PageInput carries everything needed to build one V1 or V2 data page.
type PageInput struct {
	NumValues      int
	NumNulls       int
	NumRows        int
	RepetitionData []byte // RLE/bit-packed, V1: length-prefixed; V2: raw
	DefinitionData []byte
	ValuesData     []byte // encoded with Encoding
	Encoding       format.Encoding
	Statistics     *Statistics
	EncodeStat     func(Value) []byte
}

// WriteDataPage compresses the page body (levels and values together for
// V1, values only for V2), assembles the V1 or V2 header,
// optionally CRCs and encrypts, and stages the resulting Page.
func (w *PageWriter) WriteDataPage(in PageInput) error {
	pageOrdinal := len(w.pages)
	compressedValues, err := w.codec.Encode(nil, in.ValuesData)
	if err != nil {
		return ErrCompression
	}

	var stats *format.Statistics
	if in.Statistics != nil {
		st := in.Statistics.Thrift(in.EncodeStat)
		stats = &st
	}

	w.encodingsUsed[in.Encoding] = struct{}{}
	if w.descriptor.MaxRepetitionLevel > 0 {
		w.encodingsUsed[format.RLE] = struct{}{}
	}
	if w.descriptor.MaxDefinitionLevel > 0 {
		w.encodingsUsed[format.RLE] = struct{}{}
	}

	var hdr format.PageHeader
	var payload []byte

	switch w.version {
	case V1:
		// V1 compresses the level blocks and the values as one buffer.
		body := append(append(append([]byte{}, in.RepetitionData...), in.DefinitionData...), in.ValuesData...)
		payload, err = w.codec.Encode(nil, body)
		if err != nil {
			return ErrCompression
		}
		hdr = format.PageHeader{
			Type:                 format.DataPage,
			UncompressedPageSize: int32(len(body)),
			CompressedPageSize:   int32(len(payload)),
			DataPageHeader: &format.DataPageHeader{
				NumValues:               int32(in.NumValues),
				Encoding:                in.Encoding,
				DefinitionLevelEncoding: format.RLE,
				RepetitionLevelEncoding: format.RLE,
				Statistics:              stats,
			},
		}
		if w.enableCRC {
			c := int32(crc32.ChecksumIEEE(payload))
			hdr.Crc = &c
		}
	default: // V2
		payload = append(append(append([]byte{}, in.RepetitionData...), in.DefinitionData...), compressedValues...)
		hdr = format.PageHeader{
			Type:                 format.DataPageV2,
			UncompressedPageSize: int32(len(in.RepetitionData) + len(in.DefinitionData) + len(in.ValuesData)),
			CompressedPageSize:   int32(len(payload)),
			DataPageHeaderV2: &format.DataPageHeaderV2{
				NumValues:                  int32(in.NumValues),
				NumNulls:                   int32(in.NumNulls),
				NumRows:                    int32(in.NumRows),
				Encoding:                   in.Encoding,
				DefinitionLevelsByteLength: int32(len(in.DefinitionData)),
				RepetitionLevelsByteLength: int32(len(in.RepetitionData)),
				IsCompressed:               true,
				Statistics:                 stats,
			},
		}
		if w.enableCRC {
			c := int32(crc32.ChecksumIEEE(compressedValues))
			hdr.Crc = &c
		}
	}

	data := payload
	if w.encryptor != nil {
		data, err = w.encryptor.EncryptDataPage(payload, pageOrdinal)
		if err != nil {
			return err
		}
	}

	w.pages = append(w.pages, Page{Header: hdr, Data: data})
	if w.chunkStats != nil && in.Statistics != nil {
		w.chunkStats.Merge(in.Statistics)
	}
	return nil
}

// Flush returns the staged dictionary page (if any) followed by the data
// pages, in the order they must be written to the column chunk, along
// with the set of encodings used.
func (w *PageWriter) Flush() (dictionary *Page, pages []Page, encodings []format.Encoding) {
	for e := range w.encodingsUsed {
		encodings = append(encodings, e)
	}
	return w.dictionary, w.pages, encodings
}

// Reset clears staged pages for reuse in the next row group.
func (w *PageWriter) Reset() {
	w.pages = w.pages[:0]
	w.dictionary = nil
	w.encodingsUsed = make(map[format.Encoding]struct{})
}

// EncodeLevelsV1 encodes levels with the RLE hybrid codec and prepends
// the 4-byte little-endian length §6 requires for V1 level blocks. When
// maxLevel is 0 the stream is omitted entirely, matching §4.2.
func EncodeLevelsV1(levels []int, maxLevel int) []byte {
	if maxLevel == 0 {
		return nil
	}
	bitWidth := bitWidthFor(maxLevel)
	enc := newLevelEncoder(bitWidth)
	for _, l := range levels {
		enc.WriteLevel(l)
	}
	body := enc.TakeBytes(nil)
	out := make([]byte, 4, 4+len(body))
	out[0] = byte(len(body))
	out[1] = byte(len(body) >> 8)
	out[2] = byte(len(body) >> 16)
	out[3] = byte(len(body) >> 24)
	return append(out, body...)
}

// EncodeLevelsV2 encodes levels with the RLE hybrid codec without a
// length prefix (the length is carried in the V2 page header instead).
func EncodeLevelsV2(levels []int, maxLevel int) []byte {
	if maxLevel == 0 {
		return nil
	}
	bitWidth := bitWidthFor(maxLevel)
	enc := newLevelEncoder(bitWidth)
	for _, l := range levels {
		enc.WriteLevel(l)
	}
	return enc.TakeBytes(nil)
}

func bitWidthFor(maxLevel int) int {
	w := 0
	for (1 << w) <= maxLevel {
		w++
	}
	return w
}

func newLevelEncoder(bitWidth int) *RLEEncoder { return NewRLEEncoder(bitWidth, false) }
