package template

import (
	"github.com/vishalvchavan/streamsmt/internal/mapping"
	"github.com/vishalvchavan/streamsmt/internal/path"
	"github.com/vishalvchavan/streamsmt/internal/tree"
)

// Project walks t against root and returns the projected tree (spec §4.2).
// root is the record's full parsed payload; the mapping's declared 'root'
// name is only the output-wrapping key Frame uses, never an input path to
// unwrap here. ctx may be nil, in which case events are discarded and no
// metrics are recorded.
func Project(root tree.Node, t *mapping.Template, ctx *Context) tree.Node {
	return project(root, t, ctx, "")
}

func project(root tree.Node, t *mapping.Template, ctx *Context, fieldPath string) tree.Node {
	switch t.Kind {
	case mapping.TemplateObject:
		return projectObject(root, t, ctx, fieldPath)
	case mapping.TemplateArrayForm:
		return projectArrayForm(root, t, ctx, fieldPath)
	case mapping.TemplateField:
		return projectField(root, t.Field, ctx, fieldPath)
	default:
		return tree.Null
	}
}

func projectObject(root tree.Node, t *mapping.Template, ctx *Context, fieldPath string) tree.Node {
	out := tree.NewObject(len(t.Keys))
	for _, key := range t.Keys {
		child := t.Children[key]
		out.Set(key, project(root, child, ctx, joinPath(fieldPath, key)))
	}
	return tree.ObjectNode(out)
}

// projectArrayForm implements spec §4.2 "$array emission": the array path
// resolves against root, then t.Item is projected once per element (or
// once, against a singleton result that resolved to a bare object), with
// missing/null resolving to an empty array.
func projectArrayForm(root tree.Node, t *mapping.Template, ctx *Context, fieldPath string) tree.Node {
	result := path.Evaluate(root, t.CompiledArrayPath)

	switch {
	case result.IsNullOrMissing():
		return tree.Array(nil)
	case result.Kind() == tree.KindArray:
		elems := result.ArrayValue()
		out := make([]tree.Node, len(elems))
		for i, el := range elems {
			out[i] = project(el, t.Item, ctx, fieldPath)
		}
		return tree.Array(out)
	default:
		// A single object (or scalar) result is treated as a one-element
		// source collection (spec §4.2 "$array singleton promotion").
		return tree.Array([]tree.Node{project(result, t.Item, ctx, fieldPath)})
	}
}

// projectField implements spec §4.2 "Field specification normalization":
// extract via the first matching path, apply the multi rule, then run the
// transform pipeline.
func projectField(root tree.Node, f *mapping.FieldSpec, ctx *Context, fieldPath string) tree.Node {
	extracted := tree.Missing
	matched := false
	for _, p := range f.CompiledPaths {
		v := path.Evaluate(root, p)
		if !v.IsNullOrMissing() {
			extracted = v
			matched = true
			break
		}
	}

	if !matched {
		if f.Required {
			ctx.onRequiredMissing(fieldPath)
		}
		return f.Pipeline.Apply(tree.Null, fieldPath, ctx.sink(), ctx.onSoftFailure(fieldPath))
	}

	var out tree.Node
	switch f.Multi {
	case mapping.MultiArray:
		if extracted.Kind() == tree.KindArray {
			out = extracted
		} else {
			out = tree.Array([]tree.Node{extracted})
		}
	default: // mapping.MultiFirst
		if extracted.Kind() == tree.KindArray {
			elems := extracted.ArrayValue()
			if len(elems) == 0 {
				if f.Required {
					ctx.onRequiredMissing(fieldPath)
				}
				out = tree.Null
			} else {
				out = elems[0]
			}
		} else {
			out = extracted
		}
	}

	return f.Pipeline.Apply(out, fieldPath, ctx.sink(), ctx.onSoftFailure(fieldPath))
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
