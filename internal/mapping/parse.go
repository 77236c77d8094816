package mapping

import (
	"strings"

	"github.com/vishalvchavan/streamsmt/internal/transform"
	"github.com/vishalvchavan/streamsmt/internal/tree"
	engerrors "github.com/vishalvchavan/streamsmt/pkg/errors"
)

// ParseRules decodes a mapping document (spec §6.3) into an unvalidated
// Rules value. Paths are kept as their original text; Validate (or
// Store.TryAdopt, which calls it) compiles and checks them.
func ParseRules(data []byte) (*Rules, error) {
	root, err := tree.Decode(data)
	if err != nil {
		return nil, err
	}
	if root.Kind() != tree.KindObject {
		return nil, engerrors.New(engerrors.EInvalid, "mapping document must be a JSON object")
	}
	obj := root.ObjectValue()

	rules := &Rules{}
	if v, ok := obj.Get("version"); ok && v.Kind() == tree.KindInt {
		rules.Version = int(v.IntValue())
	}

	if v, ok := obj.Get("topics"); ok {
		group, err := parseTopicMappingGroup(v, "topics")
		if err != nil {
			return nil, err
		}
		rules.Topics = group
	}

	if v, ok := obj.Get("connectors"); ok {
		group, err := parseTopicMappingGroup(v, "connectors")
		if err != nil {
			return nil, err
		}
		rules.Connectors = group
	}

	if len(rules.Topics) == 0 && len(rules.Connectors) == 0 {
		return nil, engerrors.New(engerrors.EInvalid, "mapping document must declare at least one of 'topics' or 'connectors'")
	}

	return rules, nil
}

func parseTopicMappingGroup(v tree.Node, groupName string) (map[string]*TopicMapping, error) {
	if v.Kind() != tree.KindObject {
		return nil, engerrors.New(engerrors.EInvalid, "%q must be a JSON object keyed by name", groupName)
	}
	obj := v.ObjectValue()
	out := make(map[string]*TopicMapping, obj.Len())
	for _, name := range obj.Keys() {
		child, _ := obj.Get(name)
		tm, err := parseTopicMapping(child)
		if err != nil {
			return nil, engerrors.Wrap(err, engerrors.EInvalid, "%s.%s", groupName, name)
		}
		out[name] = tm
	}
	return out, nil
}

func parseTopicMapping(v tree.Node) (*TopicMapping, error) {
	if v.Kind() != tree.KindObject {
		return nil, engerrors.New(engerrors.EInvalid, "topic mapping must be a JSON object")
	}
	obj := v.ObjectValue()

	rootVal, ok := obj.Get("root")
	if !ok || rootVal.Kind() != tree.KindText || rootVal.TextValue() == "" {
		return nil, engerrors.New(engerrors.EInvalid, "topic mapping requires a non-empty 'root' text field")
	}

	outputVal, ok := obj.Get("output")
	if !ok {
		return nil, engerrors.New(engerrors.EInvalid, "topic mapping requires an 'output' template")
	}

	tmpl, err := parseTemplate(outputVal)
	if err != nil {
		return nil, err
	}

	wrapped := true
	if wv, ok := obj.Get("wrapped"); ok {
		if wv.Kind() != tree.KindBool {
			return nil, engerrors.New(engerrors.EInvalid, "'wrapped' must be a boolean")
		}
		wrapped = wv.BoolValue()
	}

	return &TopicMapping{Root: rootVal.TextValue(), Output: tmpl, Wrapped: wrapped}, nil
}

func parseTemplate(v tree.Node) (*Template, error) {
	if v.Kind() != tree.KindObject {
		return nil, engerrors.New(engerrors.EUnsupported, "template node must be a JSON object")
	}
	obj := v.ObjectValue()

	if obj.Len() == 1 && obj.Keys()[0] == "$array" {
		arrVal, _ := obj.Get("$array")
		return parseArrayForm(arrVal)
	}

	if _, ok := obj.Get("paths"); ok {
		return parseFieldSpec(obj)
	}

	children := make(map[string]*Template, obj.Len())
	keys := append([]string(nil), obj.Keys()...)
	for _, key := range keys {
		child, _ := obj.Get(key)
		ct, err := parseTemplate(child)
		if err != nil {
			return nil, engerrors.Wrap(err, engerrors.EInvalid, "field %q", key)
		}
		children[key] = ct
	}
	return &Template{Kind: TemplateObject, Keys: keys, Children: children}, nil
}

func parseArrayForm(v tree.Node) (*Template, error) {
	if v.Kind() != tree.KindObject {
		return nil, engerrors.New(engerrors.EInvalid, "'$array' must be a JSON object with 'path' and 'item'")
	}
	obj := v.ObjectValue()

	pathVal, ok := obj.Get("path")
	if !ok || pathVal.Kind() != tree.KindText || pathVal.TextValue() == "" {
		return nil, engerrors.New(engerrors.EInvalid, "'$array' requires a non-empty 'path' text field")
	}

	itemVal, ok := obj.Get("item")
	if !ok {
		return nil, engerrors.New(engerrors.EInvalid, "'$array' requires an 'item' template")
	}
	item, err := parseTemplate(itemVal)
	if err != nil {
		return nil, engerrors.Wrap(err, engerrors.EInvalid, "'$array'.item")
	}

	return &Template{Kind: TemplateArrayForm, ArrayPath: pathVal.TextValue(), Item: item}, nil
}

func parseFieldSpec(obj *tree.Object) (*Template, error) {
	pathsVal, _ := obj.Get("paths")
	if pathsVal.Kind() != tree.KindArray || len(pathsVal.ArrayValue()) == 0 {
		return nil, engerrors.New(engerrors.EInvalid, "field specification requires a non-empty 'paths' array")
	}

	paths := make([]string, 0, len(pathsVal.ArrayValue()))
	for _, p := range pathsVal.ArrayValue() {
		if p.Kind() != tree.KindText || p.TextValue() == "" {
			return nil, engerrors.New(engerrors.EInvalid, "'paths' entries must be non-empty text")
		}
		paths = append(paths, p.TextValue())
	}

	required := false
	if rv, ok := obj.Get("required"); ok && rv.Kind() == tree.KindBool {
		required = rv.BoolValue()
	}

	multi := MultiFirst
	if mv, ok := obj.Get("multi"); ok {
		if mv.Kind() != tree.KindText {
			return nil, engerrors.New(engerrors.EInvalid, "'multi' must be text")
		}
		// Normalized to lowercase here; Validate rejects unrecognized values.
		multi = Multi(strings.ToLower(mv.TextValue()))
	}

	var descriptors []transform.Descriptor
	if tv, ok := obj.Get("transforms"); ok {
		if tv.Kind() != tree.KindArray {
			return nil, engerrors.New(engerrors.EInvalid, "'transforms' must be an array")
		}
		for _, td := range tv.ArrayValue() {
			d, err := parseTransformDescriptor(td)
			if err != nil {
				return nil, err
			}
			descriptors = append(descriptors, d)
		}
	}

	return &Template{
		Kind: TemplateField,
		Field: &FieldSpec{
			Paths:      paths,
			Required:   required,
			Multi:      multi,
			Transforms: descriptors,
		},
	}, nil
}

func parseTransformDescriptor(v tree.Node) (transform.Descriptor, error) {
	if v.Kind() != tree.KindObject {
		return transform.Descriptor{}, engerrors.New(engerrors.EInvalid, "transform descriptor must be a JSON object")
	}
	obj := v.ObjectValue()

	typeVal, ok := obj.Get("type")
	if !ok || typeVal.Kind() != tree.KindText {
		return transform.Descriptor{}, engerrors.New(engerrors.EInvalid, "transform descriptor requires a 'type' text field")
	}

	d := transform.Descriptor{Type: transform.Kind(typeVal.TextValue())}

	switch d.Type {
	case transform.DateFormat:
		if ifv, ok := obj.Get("inputFormats"); ok && ifv.Kind() == tree.KindArray {
			for _, e := range ifv.ArrayValue() {
				if e.Kind() == tree.KindText {
					d.InputFormats = append(d.InputFormats, e.TextValue())
				}
			}
		}
		if ofv, ok := obj.Get("outputFormat"); ok && ofv.Kind() == tree.KindText {
			d.OutputFormat = ofv.TextValue()
		}
		if tzv, ok := obj.Get("timezone"); ok && tzv.Kind() == tree.KindText {
			d.Timezone = tzv.TextValue()
		}
	case transform.Encrypt:
		if kv, ok := obj.Get("keyRef"); ok && kv.Kind() == tree.KindText {
			d.KeyRef = kv.TextValue()
		}
	case transform.Mask:
		if pv, ok := obj.Get("pattern"); ok && pv.Kind() == tree.KindText {
			d.Pattern = pv.TextValue()
		}
		if cv, ok := obj.Get("customPattern"); ok && cv.Kind() == tree.KindText {
			d.CustomPattern = cv.TextValue()
		}
	}

	return d, nil
}
