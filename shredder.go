package parquet

// TripleSink receives the ⟨r,d,v⟩ triples the Shredder produces for one
// column, identified by its index in Schema.Columns().
type TripleSink interface {
	WriteTriple(column int, repetitionLevel, definitionLevel int, value Value) error
}

// shredFrame is one entry of the Shredder's path stack: a schema node the
// caller has currently "opened" via StartField, together with the
// definition/repetition level a value would carry if present at this
// node, and how many instances of it have been started this record (used
// to detect repeated-field continuations).
type shredFrame struct {
	node          Node
	name          string
	idx           int
	def           int
	rep           int
	instanceCount int
}

// leafInfo is precomputed once per Schema: the ancestor chain (root-first,
// excluding the leaf itself) of a leaf column, paired with the
// definition level a value would carry if that ancestor were the deepest
// one present but the leaf itself were not reached.
type leafInfo struct {
	ancestors    []Node
	ancestorDefs []int
}

// Shredder implements RecordConsumer, translating record-consumer events
// into per-column ⟨r,d,v⟩ triples delivered to a TripleSink (§4.1).
type Shredder struct {
	schema *Schema
	sink   TripleSink

	leaves     []leafInfo
	columnOf   map[Node]int // leaf node -> column index

	stack      []shredFrame
	emitted    []bool
	enteredDef map[Node]int
}

// NewShredder constructs a Shredder over schema, delivering triples to
// sink.
func NewShredder(schema *Schema, sink TripleSink) *Shredder {
	s := &Shredder{
		schema:     schema,
		sink:       sink,
		columnOf:   make(map[Node]int),
		enteredDef: make(map[Node]int),
	}
	s.leaves = make([]leafInfo, len(schema.Columns()))
	for i, col := range schema.Columns() {
		s.columnOf[col.Node] = i
	}
	s.precomputeAncestors()
	s.emitted = make([]bool, len(schema.Columns()))
	return s
}

func (s *Shredder) precomputeAncestors() {
	var walk func(n Node, ancestors []Node, defs []int, def, rep int)
	walk = func(n Node, ancestors []Node, defs []int, def, rep int) {
		if n.Repetition() == Repeated {
			def++
			rep++
		} else if n.Repetition() == Optional {
			def++
		}
		if n.Leaf() {
			idx, ok := s.columnOf[n]
			if !ok {
				return
			}
			s.leaves[idx] = leafInfo{ancestors: append([]Node{}, ancestors...), ancestorDefs: append([]int{}, defs...)}
			return
		}
		ancestors = append(ancestors, n)
		defs = append(defs, def)
		for _, c := range n.Children() {
			walk(c, ancestors, defs, def, rep)
		}
	}
	for _, c := range s.schema.Root().Children() {
		walk(c, nil, nil, 0, 0)
	}
}

// StartMessage resets per-record state.
func (s *Shredder) StartMessage() {
	s.stack = s.stack[:0]
	s.stack = append(s.stack, shredFrame{node: s.schema.Root(), def: 0, rep: 0})
	for i := range s.emitted {
		s.emitted[i] = false
	}
	for k := range s.enteredDef {
		delete(s.enteredDef, k)
	}
}

func (s *Shredder) top() *shredFrame { return &s.stack[len(s.stack)-1] }

// StartField pushes the child named name at index idx of the current
// group onto the path stack.
func (s *Shredder) StartField(name string, idx int) error {
	parent := s.top()
	children := parent.node.Children()
	if idx < 0 || idx >= len(children) || children[idx].Name() != name {
		return ErrSchemaMismatch
	}
	child := children[idx]
	def, rep := parent.def, parent.rep
	switch child.Repetition() {
	case Repeated:
		def++
		rep++
	case Optional:
		def++
	}
	s.stack = append(s.stack, shredFrame{node: child, name: name, idx: idx, def: def, rep: rep})
	return nil
}

// StartGroup marks the beginning of one instance of the group node at the
// top of the path stack.
func (s *Shredder) StartGroup() error {
	f := s.top()
	if f.node.Leaf() {
		return ErrUnexpectedEndOfGroup
	}
	f.instanceCount++
	s.enteredDef[f.node] = f.def
	return nil
}

// repetitionLevel computes the repetition level a value or null emitted
// at the current path would carry: the level of the shallowest repeated
// ancestor on the path stack whose instance counter has been incremented
// past its first instance this record, or 0 if none has (§4.1). It is
// recomputed fresh from the live stack on every emission, rather than
// cached in shredder-wide state, so that it never leaks from one column's
// path onto an unrelated sibling field's.
func (s *Shredder) repetitionLevel() int {
	for _, f := range s.stack[1:] {
		if f.node.Repetition() == Repeated && f.instanceCount > 1 {
			return f.rep
		}
	}
	return 0
}

// EndGroup marks the end of the current instance of the group node at the
// top of the path stack; the frame remains (another StartGroup may follow
// for the next instance of a repeated group).
func (s *Shredder) EndGroup() error {
	f := s.top()
	if f.node.Leaf() || f.instanceCount == 0 {
		return ErrUnexpectedEndOfGroup
	}
	return nil
}

// EndField pops the field frame pushed by the matching StartField.
func (s *Shredder) EndField(name string, idx int) error {
	if len(s.stack) < 2 {
		return ErrUnexpectedEndOfGroup
	}
	f := s.top()
	if f.name != name || f.idx != idx {
		return ErrUnexpectedEndOfGroup
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

// EndMessage emits a null triple for every leaf that received no value
// this record, using the definition level of the deepest ancestor
// actually opened; per-record state is reset by the next StartMessage.
func (s *Shredder) EndMessage() error {
	for idx, info := range s.leaves {
		if s.emitted[idx] {
			continue
		}
		d := 0
		for i, anc := range info.ancestors {
			if _, ok := s.enteredDef[anc]; ok {
				d = info.ancestorDefs[i]
			}
		}
		col := s.schema.Columns()[idx]
		if err := s.sink.WriteTriple(idx, 0, d, NullValue(col.Node.Kind())); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shredder) emitLeaf(v Value) error {
	f := s.top()
	if !f.node.Leaf() {
		return ErrSchemaMismatch
	}
	f.instanceCount++
	idx, ok := s.columnOf[f.node]
	if !ok {
		return &Internal{Message: "leaf node missing from column index"}
	}
	s.emitted[idx] = true
	return s.sink.WriteTriple(idx, s.repetitionLevel(), f.def, v)
}

func (s *Shredder) AddBoolean(v bool) error       { return s.emitLeaf(BooleanValue(v)) }
func (s *Shredder) AddInt32(v int32) error        { return s.emitLeaf(Int32Value(v)) }
func (s *Shredder) AddInt64(v int64) error        { return s.emitLeaf(Int64Value(v)) }
func (s *Shredder) AddInt96(v [12]byte) error     { return s.emitLeaf(Int96Value(v)) }
func (s *Shredder) AddFloat(v float32) error      { return s.emitLeaf(FloatValue(v)) }
func (s *Shredder) AddDouble(v float64) error     { return s.emitLeaf(DoubleValue(v)) }
func (s *Shredder) AddBinary(v []byte) error {
	f := s.top()
	if f.node.Kind() == FixedLenByteArrayKind {
		return s.emitLeaf(FixedLenByteArrayValue(v))
	}
	return s.emitLeaf(ByteArrayValue(v))
}

var _ RecordConsumer = (*Shredder)(nil)
