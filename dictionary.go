package parquet

// DictionaryManager assigns dictionary indices to a column's values,
// preserving insertion order, and signals overflow once the dictionary's
// estimated encoded size exceeds a configured cap (§4.4). It deliberately
// uses a plain Go map rather than the teacher's hashprobe/sparse-array
// machinery: this module targets correctness over the teacher's
// zero-allocation append-function style.
type DictionaryManager struct {
	maxSize    int
	size       int
	fellBack   bool
	index      map[string]int32
	values     []Value // insertion order, index == dictionary id
	keyOf      func(Value) []byte
	encodedLen func(Value) int
}

// NewDictionaryManager returns a DictionaryManager capping the estimated
// encoded dictionary page size at maxSize bytes. keyOf must return a
// stable, comparable byte representation of a value (its PLAIN encoding
// is a natural choice); encodedLen estimates the PLAIN-encoded size of a
// single value, used to track the cap.
func NewDictionaryManager(maxSize int, keyOf func(Value) []byte, encodedLen func(Value) int) *DictionaryManager {
	return &DictionaryManager{
		maxSize:    maxSize,
		index:      make(map[string]int32),
		keyOf:      keyOf,
		encodedLen: encodedLen,
	}
}

// FellBack reports whether the dictionary has already overflowed and
// non-dictionary fallback encoding is in effect for this column.
func (d *DictionaryManager) FellBack() bool { return d.fellBack }

// Lookup returns the dictionary index for v, inserting it if new. It
// returns ErrDictionaryOverflow (without inserting) if v would be the
// first value to push the dictionary past its cap; callers must then
// switch the column to its configured fallback encoding for v and all
// subsequent values in the row group.
func (d *DictionaryManager) Lookup(v Value) (int32, error) {
	if d.fellBack {
		return 0, ErrDictionaryOverflow
	}
	key := d.keyOf(v)
	if id, ok := d.index[string(key)]; ok {
		return id, nil
	}
	added := d.encodedLen(v)
	if d.size+added > d.maxSize && len(d.values) > 0 {
		d.fellBack = true
		return 0, ErrDictionaryOverflow
	}
	id := int32(len(d.values))
	d.index[string(key)] = id
	d.values = append(d.values, v)
	d.size += added
	return id, nil
}

// Len returns the number of distinct values currently in the dictionary.
func (d *DictionaryManager) Len() int { return len(d.values) }

// Values returns the dictionary's values in insertion (and therefore
// dictionary-id) order, the layout required for the dictionary page.
func (d *DictionaryManager) Values() []Value { return d.values }

// Reset clears the dictionary and fallback state for reuse in the next
// row group.
func (d *DictionaryManager) Reset() {
	d.size = 0
	d.fellBack = false
	d.index = make(map[string]int32)
	d.values = d.values[:0]
}
