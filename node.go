package parquet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pqwriter/parquet/format"
)

// Repetition is the repetition of a schema node.
type Repetition int8

const (
	Required Repetition = iota
	Optional
	Repeated
)

func (r Repetition) String() string {
	switch r {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	default:
		return "unknown"
	}
}

// Kind is the physical on-disk representation of a leaf column.
type Kind int8

const (
	BooleanKind Kind = iota
	Int32Kind
	Int64Kind
	Int96Kind
	FloatKind
	DoubleKind
	ByteArrayKind
	FixedLenByteArrayKind
)

func (k Kind) format() format.Type { return format.Type(k) }

// Node is one element of a schema tree: either a group carrying an
// ordered list of children, or a leaf carrying a physical type and
// optional logical annotation.
type Node interface {
	// Name returns the node's name, unique among its siblings.
	Name() string
	// Repetition returns the node's repetition.
	Repetition() Repetition
	// Leaf reports whether the node is a primitive (leaf) node.
	Leaf() bool
	// Children returns the node's children in declared order, or nil for
	// a leaf.
	Children() []Node
	// Kind returns the leaf's physical type; panics on a group node.
	Kind() Kind
	// TypeLength returns the FIXED_LEN_BYTE_ARRAY length, or 0 otherwise.
	TypeLength() int
	// LogicalType returns the optional logical type annotation, or nil.
	LogicalType() LogicalType
}

// GroupNode is a Node carrying an ordered list of named children.
type GroupNode struct {
	name       string
	repetition Repetition
	children   []Node
}

// NewGroupNode constructs a GroupNode. child names must be unique.
func NewGroupNode(name string, repetition Repetition, children ...Node) *GroupNode {
	seen := make(map[string]struct{}, len(children))
	for _, c := range children {
		if _, dup := seen[c.Name()]; dup {
			panic(fmt.Sprintf("parquet: duplicate child name %q in group %q", c.Name(), name))
		}
		seen[c.Name()] = struct{}{}
	}
	return &GroupNode{name: name, repetition: repetition, children: children}
}

func (g *GroupNode) Name() string            { return g.name }
func (g *GroupNode) Repetition() Repetition   { return g.repetition }
func (g *GroupNode) Leaf() bool               { return false }
func (g *GroupNode) Children() []Node         { return g.children }
func (g *GroupNode) Kind() Kind               { panic("parquet: Kind called on a group node") }
func (g *GroupNode) TypeLength() int          { return 0 }
func (g *GroupNode) LogicalType() LogicalType { return nil }

// PrimitiveNode is a leaf Node.
type PrimitiveNode struct {
	name        string
	repetition  Repetition
	kind        Kind
	typeLength  int
	logicalType LogicalType
}

// NewPrimitiveNode constructs a leaf node. It panics if the combination of
// kind, typeLength and logicalType violates the schema invariants (§3):
// FIXED_LEN_BYTE_ARRAY requires typeLength > 0; a DECIMAL annotation
// requires 1 <= scale <= precision and a physical type able to carry it.
func NewPrimitiveNode(name string, repetition Repetition, kind Kind, typeLength int, logicalType LogicalType) *PrimitiveNode {
	if kind == FixedLenByteArrayKind && typeLength <= 0 {
		panic(fmt.Sprintf("parquet: FIXED_LEN_BYTE_ARRAY node %q requires typeLength > 0", name))
	}
	if d, ok := logicalType.(*Decimal); ok {
		if d.Scale < 1 || d.Scale > d.Precision {
			panic(fmt.Sprintf("parquet: DECIMAL node %q requires 1 <= scale <= precision", name))
		}
		if !decimalFitsKind(kind, typeLength, d.Precision) {
			panic(fmt.Sprintf("parquet: DECIMAL node %q precision %d exceeds physical type capacity", name, d.Precision))
		}
	}
	return &PrimitiveNode{name: name, repetition: repetition, kind: kind, typeLength: typeLength, logicalType: logicalType}
}

func decimalFitsKind(kind Kind, typeLength int, precision int32) bool {
	switch kind {
	case Int32Kind:
		return precision <= 9
	case Int64Kind:
		return precision <= 18
	case ByteArrayKind:
		return true
	case FixedLenByteArrayKind:
		// ceil(precision * log2(10) / 8) conservative bound, matching the
		// Parquet spec's decimal-on-fixed-length-byte-array table.
		return int(precision) <= maxDecimalPrecisionForLength(typeLength)
	default:
		return false
	}
}

func maxDecimalPrecisionForLength(length int) int {
	// floor(log10(2^(8*length-1) - 1))
	bits := 8*length - 1
	return int(float64(bits) * 0.3010299956639812)
}

func (p *PrimitiveNode) Name() string            { return p.name }
func (p *PrimitiveNode) Repetition() Repetition   { return p.repetition }
func (p *PrimitiveNode) Leaf() bool               { return true }
func (p *PrimitiveNode) Children() []Node         { return nil }
func (p *PrimitiveNode) Kind() Kind               { return p.kind }
func (p *PrimitiveNode) TypeLength() int          { return p.typeLength }
func (p *PrimitiveNode) LogicalType() LogicalType { return p.logicalType }

// ColumnDescriptor is the derived, flattened description of one leaf
// column: its dotted path, physical kind, and the maximum repetition and
// definition levels a value at this leaf can carry.
type ColumnDescriptor struct {
	Path       []string
	Node       Node
	MaxRepetitionLevel int
	MaxDefinitionLevel int
}

// ColumnPath returns the descriptor's path joined with ".".
func (c *ColumnDescriptor) ColumnPath() string { return strings.Join(c.Path, ".") }

// Schema wraps a root GroupNode and its derived, pre-order leaf column
// descriptors.
type Schema struct {
	name    string
	root    *GroupNode
	columns []*ColumnDescriptor
}

// NewSchema builds a Schema from a root group node, deriving column
// descriptors by a pre-order traversal of the leaves.
func NewSchema(name string, root *GroupNode) *Schema {
	s := &Schema{name: name, root: root}
	s.columns = deriveColumns(root)
	return s
}

func deriveColumns(root *GroupNode) []*ColumnDescriptor {
	var out []*ColumnDescriptor
	var walk func(n Node, path []string, maxRep, maxDef int)
	walk = func(n Node, path []string, maxRep, maxDef int) {
		path = append(path, n.Name())
		switch n.Repetition() {
		case Repeated:
			maxRep++
			maxDef++
		case Optional:
			maxDef++
		}
		if n.Leaf() {
			p := make([]string, len(path))
			copy(p, path)
			out = append(out, &ColumnDescriptor{Path: p, Node: n, MaxRepetitionLevel: maxRep, MaxDefinitionLevel: maxDef})
			return
		}
		for _, c := range n.Children() {
			walk(c, path, maxRep, maxDef)
		}
	}
	for _, c := range root.Children() {
		walk(c, nil, 0, 0)
	}
	return out
}

// Name returns the schema's message-level name.
func (s *Schema) Name() string { return s.name }

// Root returns the schema's root group node.
func (s *Schema) Root() *GroupNode { return s.root }

// Columns returns the schema's leaf column descriptors in pre-order.
func (s *Schema) Columns() []*ColumnDescriptor { return s.columns }

// NumColumns returns the number of leaf columns.
func (s *Schema) NumColumns() int { return len(s.columns) }

// schemaElements flattens the schema into the pre-order format.SchemaElement
// list written to the file footer, matching EXTERNAL INTERFACES §6.
func (s *Schema) schemaElements() []format.SchemaElement {
	elems := []format.SchemaElement{{
		Name:        s.name,
		NumChildren: int32ptr(int32(len(s.root.Children()))),
	}}
	var walk func(n Node)
	walk = func(n Node) {
		rep := format.FieldRepetitionType(n.Repetition())
		elem := format.SchemaElement{
			Name:           n.Name(),
			RepetitionType: &rep,
		}
		if n.Leaf() {
			t := n.Kind().format()
			elem.Type = &t
			if n.Kind() == FixedLenByteArrayKind {
				l := int32(n.TypeLength())
				elem.TypeLength = &l
			}
			if lt := n.LogicalType(); lt != nil {
				elem.LogicalType = lt.thriftLogicalType()
				elem.ConvertedType = lt.convertedType()
				if d, ok := lt.(*Decimal); ok {
					elem.Scale = int32ptr(d.Scale)
					elem.Precision = int32ptr(d.Precision)
				}
			}
		} else {
			n := int32(len(n.Children()))
			elem.NumChildren = &n
		}
		elems = append(elems, elem)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	for _, c := range s.root.Children() {
		walk(c)
	}
	return elems
}

func int32ptr(v int32) *int32 { return &v }

var _ = sort.Strings
