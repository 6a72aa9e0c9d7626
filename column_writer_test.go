package parquet_test

import (
	"testing"

	"github.com/pqwriter/parquet"
	"github.com/pqwriter/parquet/compress"
	_ "github.com/pqwriter/parquet/compress/uncompressed"
	"github.com/pqwriter/parquet/format"
)

func oneColumnSchema() *parquet.Schema {
	root := parquet.NewGroupNode("row", parquet.Required,
		parquet.NewPrimitiveNode("name", parquet.Required, parquet.ByteArrayKind, 0, &parquet.UTF8Type{}),
	)
	return parquet.NewSchema("row", root)
}

// TestColumnWriterDictionaryOverflowFlushesPreOverflowPage reproduces a
// dictionary overflow in the middle of a page: the dictionary cap is set
// so small that the second distinct value overflows it. The fix under
// test is that the values written before the overflow are not silently
// dropped: they must land in a page flushed while still dictionary
// encoded, and the overflowing value (and everything after it) must land
// in a separate, fallback-encoded page, so that no single page mixes
// encodings and no value is lost.
func TestColumnWriterDictionaryOverflowFlushesPreOverflowPage(t *testing.T) {
	schema := oneColumnSchema()
	descriptor := schema.Columns()[0]

	config := parquet.NewWriterConfig(schema,
		parquet.WithDictionaryPageSize(1),
		parquet.WithPageSize(1<<30),
	)
	config.WriterVersion = parquet.V1

	codec, err := compress.Lookup(format.Uncompressed)
	if err != nil {
		t.Fatalf("compress.Lookup: %v", err)
	}
	pageWriter := parquet.NewPageWriter(descriptor, codec, parquet.V1, false, nil, nil)
	cw := parquet.NewColumnWriter(descriptor, config, pageWriter)

	values := []string{"aaaa", "bbbb", "cccc"}
	for _, s := range values {
		if err := cw.WriteTriple(0, 0, 0, parquet.ByteArrayValue([]byte(s))); err != nil {
			t.Fatalf("WriteTriple(%q): %v", s, err)
		}
	}

	total, err := cw.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if total != int64(len(values)) {
		t.Fatalf("chunk value count = %d, want %d (no value may be dropped by the overflow)", total, len(values))
	}

	dictionary, pages, _ := pageWriter.Flush()
	if dictionary == nil {
		t.Fatal("Flush: dictionary page is nil, want the pre-overflow dictionary to have been staged")
	}
	if got := dictionary.Header.DictionaryPageHeader.NumValues; got != 1 {
		t.Errorf("dictionary NumValues = %d, want 1 (only the first distinct value fit before overflow)", got)
	}

	if len(pages) != 2 {
		t.Fatalf("data pages = %d, want 2 (one force-flushed dictionary-encoded page, one fallback-encoded page)", len(pages))
	}

	first, second := pages[0].Header.DataPageHeader, pages[1].Header.DataPageHeader
	if first.Encoding != format.RLEDictionary {
		t.Errorf("page 0 encoding = %v, want RLEDictionary", first.Encoding)
	}
	if first.NumValues != 1 {
		t.Errorf("page 0 NumValues = %d, want 1 (the pre-overflow value, not dropped)", first.NumValues)
	}
	if second.Encoding != format.Plain {
		t.Errorf("page 1 encoding = %v, want Plain (fallback encoder)", second.Encoding)
	}
	if second.NumValues != 2 {
		t.Errorf("page 1 NumValues = %d, want 2 (the overflowing value plus the one after it)", second.NumValues)
	}
	if int64(first.NumValues+second.NumValues) != total {
		t.Errorf("page NumValues %d+%d != chunk total %d", first.NumValues, second.NumValues, total)
	}
}
