package orchestrator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalvchavan/streamsmt/internal/mapping"
	"github.com/vishalvchavan/streamsmt/internal/metrics"
	"github.com/vishalvchavan/streamsmt/internal/orchestrator"
	"github.com/vishalvchavan/streamsmt/internal/transform"
	"github.com/vishalvchavan/streamsmt/internal/tree"
)

func newStore(t *testing.T, doc string) *mapping.Store {
	t.Helper()
	s := mapping.NewStore(transform.NewKeyStore(), metrics.New())
	require.NoError(t, s.TryAdopt([]byte(doc)))
	return s
}

func TestProcess_AssessmentExtraction_S1(t *testing.T) {
	doc := `{"topics":{"assessments":{"root":"assessment","output":{"assessmentId":{"paths":["$.assessmentId"]}}}}}`
	store := newStore(t, doc)
	o := orchestrator.New(store, metrics.New(), nil, orchestrator.Config{AttachSourceMetadata: false})

	out, err := o.Process(orchestrator.Record{
		Topic:   "assessments",
		Payload: []byte(`{"assessmentId":"12345","other":"x"}`),
	})
	require.NoError(t, err)

	assessment, ok := out.ObjectValue().Get("assessment")
	require.True(t, ok)
	idVal, ok := assessment.ObjectValue().Get("assessmentId")
	require.True(t, ok)
	assert.Equal(t, "12345", idVal.TextValue())
}

func TestProcess_MappingMissPassesThroughUnchanged(t *testing.T) {
	doc := `{"topics":{"other":{"root":"r","output":{"id":{"paths":["$.id"]}}}}}`
	store := newStore(t, doc)
	o := orchestrator.New(store, metrics.New(), nil, orchestrator.Config{})

	out, err := o.Process(orchestrator.Record{Topic: "unknown", Payload: []byte(`{"id":1}`)})
	require.NoError(t, err)
	assert.Equal(t, tree.KindObject, out.Kind())
	v, ok := out.ObjectValue().Get("id")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.IntValue())
}

func TestProcess_InvalidJSONIsStructuredFailure(t *testing.T) {
	doc := `{"topics":{"t":{"root":"r","output":{"id":{"paths":["$.id"]}}}}}`
	store := newStore(t, doc)
	o := orchestrator.New(store, metrics.New(), nil, orchestrator.Config{})

	_, err := o.Process(orchestrator.Record{Topic: "t", Payload: []byte(`{not json`)})
	assert.Error(t, err)
}

func TestProcess_WrappedFalseEmitsFlatRecord(t *testing.T) {
	doc := `{"topics":{"t":{"root":"r","wrapped":false,"output":{"id":{"paths":["$.id"]}}}}}`
	store := newStore(t, doc)
	o := orchestrator.New(store, metrics.New(), nil, orchestrator.Config{AttachSourceMetadata: true})

	out, err := o.Process(orchestrator.Record{Topic: "t", Payload: []byte(`{"id":7}`)})
	require.NoError(t, err)

	// Flat framing never nests under root or attaches metadata/rawPayload,
	// regardless of orchestrator.Config's attach-metadata toggle.
	_, hasRoot := out.ObjectValue().Get("r")
	assert.False(t, hasRoot)
	_, hasMeta := out.ObjectValue().Get("metadata")
	assert.False(t, hasMeta)

	idVal, ok := out.ObjectValue().Get("id")
	require.True(t, ok)
	assert.Equal(t, int64(7), idVal.IntValue())
}

func TestProcess_AttachesMetadataAndRawPayload(t *testing.T) {
	doc := `{"topics":{"t":{"root":"r","output":{"id":{"paths":["$.id"]}}}}}`
	store := newStore(t, doc)
	o := orchestrator.New(store, metrics.New(), nil, orchestrator.Config{
		AttachSourceMetadata: true,
		StoreRawPayload:      true,
	})

	out, err := o.Process(orchestrator.Record{Topic: "t", Partition: 2, Payload: []byte(`{"id":7}`)})
	require.NoError(t, err)

	meta, ok := out.ObjectValue().Get("metadata")
	require.True(t, ok)
	topicVal, _ := meta.ObjectValue().Get("topic")
	assert.Equal(t, "t", topicVal.TextValue())

	_, ok = out.ObjectValue().Get("rawPayload")
	assert.True(t, ok)
}
