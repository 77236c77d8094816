package path

import (
	"strconv"
	"strings"

	"github.com/vishalvchavan/streamsmt/internal/tree"
)

// Evaluate executes a compiled path against root and returns the resolved
// node, or tree.Missing if any step of the navigation fails to resolve.
// Evaluate never panics on malformed input trees; every dead end degrades
// to Missing (spec §4.1 "Error model").
func Evaluate(root tree.Node, p *Path) tree.Node {
	return evalSegments(root, p.Segments)
}

func evalSegments(n tree.Node, segs []Segment) tree.Node {
	// 1. Missing propagation.
	if n.IsMissing() {
		return tree.Missing
	}
	// 2. Terminal.
	if len(segs) == 0 {
		return n
	}
	// 3. Implicit projection: an array followed by a field segment
	// broadcasts the remaining path (including this field segment) over
	// every element.
	if n.Kind() == tree.KindArray && segs[0].Kind == Field {
		return collect(n.ArrayValue(), segs)
	}

	seg := segs[0]
	rest := segs[1:]

	switch seg.Kind {
	case Field:
		if n.Kind() != tree.KindObject {
			return tree.Missing
		}
		return evalSegments(n.Field(seg.Field), rest)

	case Index:
		if n.Kind() != tree.KindArray {
			return tree.Missing
		}
		return evalSegments(n.Index(seg.Index), rest)

	case Wildcard:
		if n.Kind() != tree.KindArray {
			return tree.Missing
		}
		return collect(n.ArrayValue(), rest)

	case Filter:
		if n.Kind() != tree.KindArray {
			return tree.Missing
		}
		filtered := filterArray(n.ArrayValue(), seg.Predicates)
		return evalSegments(tree.Array(filtered), rest)

	default:
		return tree.Missing
	}
}

// collect evaluates the remaining segments against every element of elems,
// skipping Missing/null per-element results and flattening one level when
// a per-element result is itself an array, so broadcast + wildcard never
// produce nested arrays (spec §4.1 "Collection rule").
func collect(elems []tree.Node, segs []Segment) tree.Node {
	var results []tree.Node
	for _, el := range elems {
		r := evalSegments(el, segs)
		if r.IsNullOrMissing() {
			continue
		}
		if r.Kind() == tree.KindArray {
			results = append(results, r.ArrayValue()...)
			continue
		}
		results = append(results, r)
	}
	return tree.Array(results)
}

func filterArray(elems []tree.Node, preds []Predicate) []tree.Node {
	var out []tree.Node
	for _, el := range elems {
		if el.Kind() != tree.KindObject {
			continue
		}
		if matchesAll(el, preds) {
			out = append(out, el)
		}
	}
	return out
}

func matchesAll(el tree.Node, preds []Predicate) bool {
	for _, p := range preds {
		if !matchesPredicate(el, p) {
			return false
		}
	}
	return true
}

func matchesPredicate(el tree.Node, p Predicate) bool {
	val := el.Field(p.Field)
	if val.IsMissing() {
		return false
	}

	lowerLit := strings.ToLower(p.Literal)
	if lowerLit == "true" || lowerLit == "false" {
		switch val.Kind() {
		case tree.KindBool:
			return strconv.FormatBool(val.BoolValue()) == lowerLit
		case tree.KindText:
			return strings.ToLower(val.TextValue()) == lowerLit
		default:
			return false
		}
	}

	// Intentional: numeric-literal comparison in filters is string
	// equality after string coercion (age == 42 matches a numeric 42);
	// do not infer numeric semantics here.
	return val.AsStringForComparison() == p.Literal
}
