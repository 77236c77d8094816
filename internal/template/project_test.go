package template_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalvchavan/streamsmt/internal/events"
	"github.com/vishalvchavan/streamsmt/internal/mapping"
	"github.com/vishalvchavan/streamsmt/internal/template"
	"github.com/vishalvchavan/streamsmt/internal/transform"
	"github.com/vishalvchavan/streamsmt/internal/tree"
)

func mustRules(t *testing.T, doc string) *mapping.Rules {
	t.Helper()
	rules, err := mapping.ParseRules([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, mapping.Validate(rules, transform.NewKeyStore()))
	return rules
}

// TestProject_AssessmentExtraction mirrors the S1 scenario: a nested
// payload projected into a flat output object via plain field specs.
func TestProject_AssessmentExtraction(t *testing.T) {
	doc := `{
		"topics": {
			"assessments": {
				"root": "assessment",
				"output": {
					"patientId": {"paths": ["$.patient.id"], "required": true},
					"score": {"paths": ["$.result.score"]}
				}
			}
		}
	}`
	rules := mustRules(t, doc)
	tm := rules.Topics["assessments"]

	payload, err := tree.Decode([]byte(`{"patient":{"id":"p-1"},"result":{"score":87}}`))
	require.NoError(t, err)

	out := template.Project(payload, tm.Output, nil)
	require.Equal(t, tree.KindObject, out.Kind())
	obj := out.ObjectValue()

	v, ok := obj.Get("patientId")
	require.True(t, ok)
	assert.Equal(t, "p-1", v.TextValue())

	v, ok = obj.Get("score")
	require.True(t, ok)
	assert.Equal(t, int64(87), v.IntValue())
}

func TestProject_RequiredFieldMissingEmitsEventAndNull(t *testing.T) {
	doc := `{
		"topics": {
			"t": {
				"root": "r",
				"output": {
					"id": {"paths": ["$.missing.id"], "required": true}
				}
			}
		}
	}`
	rules := mustRules(t, doc)

	payload, err := tree.Decode([]byte(`{}`))
	require.NoError(t, err)

	sink := &events.CollectingSink{}
	ctx := &template.Context{Sink: sink}
	out := template.Project(payload, rules.Topics["t"].Output, ctx)

	v, ok := out.ObjectValue().Get("id")
	require.True(t, ok)
	assert.True(t, v.IsNull())
	require.Len(t, sink.Events, 1)
	assert.Equal(t, "required-field-missing", sink.Events[0].Code)
}

func TestProject_ArrayForm(t *testing.T) {
	doc := `{
		"topics": {
			"t": {
				"root": "r",
				"output": {
					"items": {"$array": {
						"path": "$.lines[*]",
						"item": {
							"sku": {"paths": ["$.sku"]}
						}
					}}
				}
			}
		}
	}`
	rules := mustRules(t, doc)

	payload, err := tree.Decode([]byte(`{"lines":[{"sku":"A"},{"sku":"B"}]}`))
	require.NoError(t, err)

	out := template.Project(payload, rules.Topics["t"].Output, nil)
	itemsVal, ok := out.ObjectValue().Get("items")
	require.True(t, ok)
	require.Equal(t, tree.KindArray, itemsVal.Kind())
	require.Len(t, itemsVal.ArrayValue(), 2)

	first := itemsVal.ArrayValue()[0]
	v, ok := first.ObjectValue().Get("sku")
	require.True(t, ok)
	assert.Equal(t, "A", v.TextValue())
}

func TestProject_ArrayFormMissingPathEmitsEmptyArray(t *testing.T) {
	doc := `{
		"topics": {
			"t": {
				"root": "r",
				"output": {
					"items": {"$array": {
						"path": "$.nope[*]",
						"item": {"sku": {"paths": ["$.sku"]}}
					}}
				}
			}
		}
	}`
	rules := mustRules(t, doc)
	payload, err := tree.Decode([]byte(`{}`))
	require.NoError(t, err)

	out := template.Project(payload, rules.Topics["t"].Output, nil)
	itemsVal, ok := out.ObjectValue().Get("items")
	require.True(t, ok)
	assert.Equal(t, tree.KindArray, itemsVal.Kind())
	assert.Empty(t, itemsVal.ArrayValue())
}

func TestProject_MultiFirstOnEmptyArrayRequiredRaisesEvent(t *testing.T) {
	doc := `{
		"topics": {
			"t": {
				"root": "r",
				"output": {
					"tag": {"paths": ["$.tags[?(@.kind == 'x')]"], "required": true}
				}
			}
		}
	}`
	rules := mustRules(t, doc)
	payload, err := tree.Decode([]byte(`{"tags":[{"kind":"y"}]}`))
	require.NoError(t, err)

	sink := &events.CollectingSink{}
	ctx := &template.Context{Sink: sink}
	out := template.Project(payload, rules.Topics["t"].Output, ctx)

	v, ok := out.ObjectValue().Get("tag")
	require.True(t, ok)
	assert.True(t, v.IsNull())
	require.Len(t, sink.Events, 1)
}

func TestFrame_WrappedAttachesMetadataAndRawPayload(t *testing.T) {
	projected := tree.ObjectNode(tree.NewObject(0))
	raw, err := tree.Decode([]byte(`{"a":1}`))
	require.NoError(t, err)

	out := template.Frame(projected, "assessment", true, template.FrameOptions{
		AttachMetadata:  true,
		SourceTopic:     "assessments",
		SourcePartition: 3,
		StoreRawPayload: true,
		RawPayload:      raw,
	})

	obj := out.ObjectValue()
	_, ok := obj.Get("assessment")
	assert.True(t, ok)
	meta, ok := obj.Get("metadata")
	require.True(t, ok)
	topicVal, _ := meta.ObjectValue().Get("topic")
	assert.Equal(t, "assessments", topicVal.TextValue())
	_, ok = obj.Get("rawPayload")
	assert.True(t, ok)
}

func TestFrame_FlatReturnsProjectedUnchanged(t *testing.T) {
	projected := tree.Text("x")
	out := template.Frame(projected, "root", false, template.FrameOptions{AttachMetadata: true})
	assert.Equal(t, tree.KindText, out.Kind())
	assert.Equal(t, "x", out.TextValue())
}
