// Package tree implements the recursive JSON value used throughout the
// engine: the Path Engine navigates it, the Template Interpreter projects
// it into a fresh tree, and the Transform Pipeline rewrites leaf values in
// place.
package tree

import "strconv"

// Kind tags the shape of a Node.
type Kind int

// Node kinds.
const (
	KindMissing Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindDecimal
	KindText
	KindArray
	KindObject
)

// Missing is the distinguished sentinel returned by path navigation when a
// field, index or filter does not resolve. It is distinct from KindNull:
// an explicit JSON null still parses to a Node of KindNull.
var Missing = Node{kind: KindMissing}

// Null is the canonical explicit-null node.
var Null = Node{kind: KindNull}

// Node is a single value in the recursive JSON tree. The zero Node is
// Missing's kind but code should use the Missing/Null package vars rather
// than constructing a zero Node directly.
type Node struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	dec   string // decimal text form, preserved verbatim
	text  string
	arr   []Node
	obj   *Object
}

// Kind returns the node's tag.
func (n Node) Kind() Kind { return n.kind }

// IsMissing reports whether n is the Missing sentinel.
func (n Node) IsMissing() bool { return n.kind == KindMissing }

// IsNull reports whether n is an explicit JSON null.
func (n Node) IsNull() bool { return n.kind == KindNull }

// IsNullOrMissing reports whether n carries no value at all, the common
// test used by normalization and collection rules.
func (n Node) IsNullOrMissing() bool { return n.kind == KindMissing || n.kind == KindNull }

// Bool constructs a boolean node.
func Bool(v bool) Node { return Node{kind: KindBool, b: v} }

// Int constructs an integer node.
func Int(v int64) Node { return Node{kind: KindInt, i: v} }

// Float constructs a floating-point node.
func Float(v float64) Node { return Node{kind: KindFloat, f: v} }

// Decimal constructs a decimal node from its exact text representation,
// preserved verbatim (no float round-tripping).
func Decimal(text string) Node { return Node{kind: KindDecimal, dec: text} }

// Text constructs a text node.
func Text(v string) Node { return Node{kind: KindText, text: v} }

// Array constructs an array node.
func Array(v []Node) Node { return Node{kind: KindArray, arr: v} }

// ObjectNode constructs an object node from an already-built Object.
func ObjectNode(o *Object) Node { return Node{kind: KindObject, obj: o} }

// BoolValue returns the boolean payload; only valid when Kind() == KindBool.
func (n Node) BoolValue() bool { return n.b }

// IntValue returns the integer payload; only valid when Kind() == KindInt.
func (n Node) IntValue() int64 { return n.i }

// FloatValue returns the float payload; only valid when Kind() == KindFloat.
func (n Node) FloatValue() float64 { return n.f }

// DecimalText returns the preserved decimal text; only valid when Kind() == KindDecimal.
func (n Node) DecimalText() string { return n.dec }

// TextValue returns the text payload; only valid when Kind() == KindText.
func (n Node) TextValue() string { return n.text }

// ArrayValue returns the element slice; only valid when Kind() == KindArray.
func (n Node) ArrayValue() []Node { return n.arr }

// ObjectValue returns the backing Object; only valid when Kind() == KindObject.
func (n Node) ObjectValue() *Object { return n.obj }

// Field looks up a key on an object node, returning Missing if n is not an
// object or the key is absent.
func (n Node) Field(key string) Node {
	if n.kind != KindObject || n.obj == nil {
		return Missing
	}
	v, ok := n.obj.Get(key)
	if !ok {
		return Missing
	}
	return v
}

// Index returns the element at i, or Missing if n is not an array or i is
// out of range.
func (n Node) Index(i int) Node {
	if n.kind != KindArray || i < 0 || i >= len(n.arr) {
		return Missing
	}
	return n.arr[i]
}

// AsStringForComparison stringifies a node the way filter predicates and
// masking coercion do: true/false render as "true"/"false", numbers render
// in their canonical decimal form, text is identity, and null/missing
// render as "".
func (n Node) AsStringForComparison() string {
	switch n.kind {
	case KindMissing, KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(n.b)
	case KindInt:
		return strconv.FormatInt(n.i, 10)
	case KindFloat:
		return strconv.FormatFloat(n.f, 'f', -1, 64)
	case KindDecimal:
		return n.dec
	case KindText:
		return n.text
	default:
		return ""
	}
}
