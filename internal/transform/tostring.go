package transform

import "github.com/vishalvchavan/streamsmt/internal/tree"

// applyToString implements spec §4.3 "toString": null stays null, arrays
// recurse element-wise, text is identity, numbers and booleans render in
// canonical text form, and any other scalar falls back to its stringified
// comparison form. toString(toString(x)) is idempotent by construction:
// once a node is KindText, every branch but the identity one is
// unreachable.
func applyToString(val tree.Node) tree.Node {
	switch val.Kind() {
	case tree.KindMissing, tree.KindNull:
		return val
	case tree.KindArray:
		elems := val.ArrayValue()
		out := make([]tree.Node, len(elems))
		for i, el := range elems {
			out[i] = applyToString(el)
		}
		return tree.Array(out)
	case tree.KindText:
		return val
	default:
		return tree.Text(val.AsStringForComparison())
	}
}
