// Package mapping implements the Mapping Store & Validator of spec §4.4:
// the mapping-rules document shape, its JSON parse, full-document
// validation (including path re-parsing and numeric-index rejection), and
// an atomically-swapped current-rules holder with connector/topic lookup.
package mapping

import (
	"github.com/vishalvchavan/streamsmt/internal/path"
	"github.com/vishalvchavan/streamsmt/internal/transform"
)

// Multi controls how a field specification normalizes a multi-valued
// extraction (spec §3).
type Multi string

// Recognized Multi values.
const (
	MultiFirst Multi = "first"
	MultiArray Multi = "array"
)

// TemplateKind tags the shape of a Template node (spec §3 "Output
// template", §9 "Template polymorphism").
type TemplateKind int

// Template node kinds.
const (
	TemplateObject TemplateKind = iota
	TemplateArrayForm
	TemplateField
)

// Template is a compiled node of the output-template tree. Only the
// fields relevant to Kind are populated.
type Template struct {
	Kind TemplateKind

	// TemplateObject
	Keys     []string
	Children map[string]*Template

	// TemplateArrayForm ("$array")
	ArrayPath         string
	CompiledArrayPath *path.Path
	Item              *Template

	// TemplateField
	Field *FieldSpec
}

// FieldSpec is a template leaf: candidate paths plus normalization and
// transform rules (spec §3 "Field specification").
type FieldSpec struct {
	Paths         []string
	CompiledPaths []*path.Path
	Required      bool
	Multi         Multi
	Transforms    []transform.Descriptor
	Pipeline      *transform.Pipeline
}

// TopicMapping is the {root, output} pair identifying the wrapper key and
// template for one topic or connector (spec §3 "Mapping rules"). Wrapped
// controls whether the projected record is nested under Root or emitted
// flat (spec §4.2 describes framing as a per-mapping concern); it defaults
// to true when the mapping document omits it.
type TopicMapping struct {
	Root    string
	Output  *Template
	Wrapped bool
}

// Rules is the top-level mapping document: topic mappings keyed by topic
// name and/or connector name.
type Rules struct {
	Version    int
	Topics     map[string]*TopicMapping
	Connectors map[string]*TopicMapping
}
