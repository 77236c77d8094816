package mapping

import (
	"github.com/vishalvchavan/streamsmt/internal/path"
	"github.com/vishalvchavan/streamsmt/internal/transform"
	engerrors "github.com/vishalvchavan/streamsmt/pkg/errors"
)

// Validate re-parses and checks every invariant of spec §3/§4.4: every
// path expression must compile and must not contain a numeric index
// segment, every field specification must carry at least one path and a
// recognized Multi, every transform descriptor must satisfy its own
// Validate, and every template node must have one of the three
// recognized shapes (already guaranteed by ParseRules, re-asserted here
// since Validate is the single gate before adoption). keys provides the
// shared encryption-helper cache so every adopted mapping's encrypt steps
// share key material across reloads.
//
// Validate mutates rules in place, attaching compiled paths and built
// pipelines, so a rules value that fails validation must not be adopted:
// partial adoption is forbidden (spec §4.4).
func Validate(rules *Rules, keys *transform.KeyStore) error {
	if len(rules.Topics) == 0 && len(rules.Connectors) == 0 {
		return engerrors.New(engerrors.EInvalid, "mapping document must declare at least one of 'topics' or 'connectors'")
	}

	for name, tm := range rules.Topics {
		if err := validateTopicMapping(tm, keys); err != nil {
			return engerrors.Wrap(err, engerrors.EInvalid, "topics.%s", name)
		}
	}
	for name, tm := range rules.Connectors {
		if err := validateTopicMapping(tm, keys); err != nil {
			return engerrors.Wrap(err, engerrors.EInvalid, "connectors.%s", name)
		}
	}
	return nil
}

func validateTopicMapping(tm *TopicMapping, keys *transform.KeyStore) error {
	if tm.Root == "" {
		return engerrors.New(engerrors.EInvalid, "'root' must be non-empty")
	}
	if tm.Output == nil {
		return engerrors.New(engerrors.EInvalid, "'output' template is required")
	}
	return validateTemplate(tm.Output, keys)
}

func validateTemplate(t *Template, keys *transform.KeyStore) error {
	switch t.Kind {
	case TemplateObject:
		for _, key := range t.Keys {
			child, ok := t.Children[key]
			if !ok {
				return engerrors.New(engerrors.EInternal, "template key %q missing its child node", key)
			}
			if err := validateTemplate(child, keys); err != nil {
				return engerrors.Wrap(err, engerrors.EInvalid, "field %q", key)
			}
		}
		return nil

	case TemplateArrayForm:
		compiled, err := compilePathRejectingIndex(t.ArrayPath)
		if err != nil {
			return err
		}
		t.CompiledArrayPath = compiled
		if t.Item == nil {
			return engerrors.New(engerrors.EInvalid, "'$array' requires an 'item' template")
		}
		return validateTemplate(t.Item, keys)

	case TemplateField:
		return validateFieldSpec(t.Field, keys)

	default:
		return engerrors.New(engerrors.EUnsupported, "unrecognized template node shape")
	}
}

func validateFieldSpec(f *FieldSpec, keys *transform.KeyStore) error {
	if f == nil || len(f.Paths) == 0 {
		return engerrors.New(engerrors.EInvalid, "field specification requires at least one path")
	}

	compiled := make([]*path.Path, 0, len(f.Paths))
	for _, text := range f.Paths {
		p, err := compilePathRejectingIndex(text)
		if err != nil {
			return err
		}
		compiled = append(compiled, p)
	}
	f.CompiledPaths = compiled

	switch f.Multi {
	case MultiFirst, MultiArray:
	default:
		return engerrors.New(engerrors.EInvalid, "'multi' must be 'first' or 'array', got %q", f.Multi)
	}

	for i, d := range f.Transforms {
		if err := d.Validate(); err != nil {
			return engerrors.Wrap(err, engerrors.EInvalid, "transforms[%d]", i)
		}
	}
	f.Pipeline = transform.NewPipeline(f.Transforms, keys)

	return nil
}

// compilePathRejectingIndex compiles text and rejects any numeric index
// segment: spec §3/§6.1 forbid numeric indices in every template-declared
// path, even though the Path Engine itself supports them.
func compilePathRejectingIndex(text string) (*path.Path, error) {
	p, err := path.Compile(text)
	if err != nil {
		return nil, engerrors.Wrap(err, engerrors.EInvalid, "path %q", text)
	}
	if p.HasNumericIndex() {
		return nil, engerrors.New(engerrors.EInvalid, "path %q: numeric index segments are not allowed in mapping-declared paths", text)
	}
	return p, nil
}
