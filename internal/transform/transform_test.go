package transform_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalvchavan/streamsmt/internal/events"
	"github.com/vishalvchavan/streamsmt/internal/transform"
	"github.com/vishalvchavan/streamsmt/internal/tree"
)

func TestPipeline_DateFormat_S4(t *testing.T) {
	p := transform.NewPipeline([]transform.Descriptor{{
		Type:         transform.DateFormat,
		InputFormats: []string{"yyyy-MM-dd'T'HH:mm:ss"},
		OutputFormat: "yyyy-MM-dd'T'HH:mm:ssXXX",
		Timezone:     "UTC",
	}}, nil)

	out := p.Apply(tree.Text("2026-02-10T12:34:56"), "occurredAt", events.DiscardSink{}, nil)
	require.Equal(t, tree.KindText, out.Kind())
	assert.Equal(t, "2026-02-10T12:34:56Z", out.TextValue())
}

func TestPipeline_DateFormat_NoMatchEmitsNull(t *testing.T) {
	sink := &events.CollectingSink{}
	p := transform.NewPipeline([]transform.Descriptor{{
		Type:         transform.DateFormat,
		InputFormats: []string{"yyyy-MM-dd"},
		OutputFormat: "yyyy-MM-dd",
	}}, nil)

	out := p.Apply(tree.Text("not-a-date"), "f", sink, nil)
	assert.True(t, out.IsNull())
	assert.NotEmpty(t, sink.Events)
}

func TestMask_SSN_S5(t *testing.T) {
	p := transform.NewPipeline([]transform.Descriptor{{Type: transform.Mask, Pattern: "ssn"}}, nil)
	out := p.Apply(tree.Text("123-45-6789"), "ssn", events.DiscardSink{}, nil)
	assert.Equal(t, "***-**-6789", out.TextValue())
}

func TestMask_CreditCard(t *testing.T) {
	p := transform.NewPipeline([]transform.Descriptor{{Type: transform.Mask, Pattern: "creditcard"}}, nil)
	out := p.Apply(tree.Text("4111111111111111"), "cc", events.DiscardSink{}, nil)
	assert.Equal(t, "****-****-****-1111", out.TextValue())
}

func TestMask_Email(t *testing.T) {
	p := transform.NewPipeline([]transform.Descriptor{{Type: transform.Mask, Pattern: "email"}}, nil)
	out := p.Apply(tree.Text("jdoe@example.com"), "email", events.DiscardSink{}, nil)
	assert.Equal(t, "j***@example.com", out.TextValue())
}

func TestMask_Full(t *testing.T) {
	p := transform.NewPipeline([]transform.Descriptor{{Type: transform.Mask, Pattern: "full"}}, nil)
	out := p.Apply(tree.Text("this is a very long secret value"), "f", events.DiscardSink{}, nil)
	assert.Equal(t, "****************", out.TextValue())
}

func TestMask_Partial_ShortTokenFullyStarred(t *testing.T) {
	p := transform.NewPipeline([]transform.Descriptor{{Type: transform.Mask, Pattern: "partial"}}, nil)
	out := p.Apply(tree.Text("ab"), "f", events.DiscardSink{}, nil)
	assert.Equal(t, "**", out.TextValue())
}

func TestToString_Idempotent(t *testing.T) {
	p := transform.NewPipeline([]transform.Descriptor{{Type: transform.ToString}}, nil)
	once := p.Apply(tree.Int(42), "n", events.DiscardSink{}, nil)
	twice := p.Apply(once, "n", events.DiscardSink{}, nil)
	assert.Equal(t, once.TextValue(), twice.TextValue())
	assert.Equal(t, "42", once.TextValue())
}

func TestEncrypt_RoundTrip(t *testing.T) {
	require.NoError(t, os.Setenv("SMT_TEST_KEY", "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=")) // 32 raw bytes, base64
	defer os.Unsetenv("SMT_TEST_KEY")

	keys := transform.NewKeyStore()
	p := transform.NewPipeline([]transform.Descriptor{{
		Type:   transform.Encrypt,
		KeyRef: "${SMT_TEST_KEY}",
	}}, keys)

	out := p.Apply(tree.Text("sensitive-value"), "f", events.DiscardSink{}, nil)
	require.Equal(t, tree.KindText, out.Kind())
	assert.NotEqual(t, "sensitive-value", out.TextValue())

	plain, err := transform.Decrypt(keys, "${SMT_TEST_KEY}", out.TextValue())
	require.NoError(t, err)
	assert.Equal(t, "sensitive-value", plain)
}

func TestEncrypt_MissingKeyRefPassesThroughWithWarning(t *testing.T) {
	sink := &events.CollectingSink{}
	p := transform.NewPipeline([]transform.Descriptor{{Type: transform.Encrypt}}, transform.NewKeyStore())
	out := p.Apply(tree.Text("value"), "f", sink, nil)
	assert.Equal(t, "value", out.TextValue())
	require.Len(t, sink.Events, 1)
	assert.Equal(t, events.SeverityWarn, sink.Events[0].Severity)
}

func TestEncrypt_UnknownEnvVarPassesThroughWithError(t *testing.T) {
	sink := &events.CollectingSink{}
	p := transform.NewPipeline([]transform.Descriptor{{
		Type:   transform.Encrypt,
		KeyRef: "${SMT_DOES_NOT_EXIST}",
	}}, transform.NewKeyStore())
	out := p.Apply(tree.Text("value"), "f", sink, nil)
	assert.Equal(t, "value", out.TextValue())
	require.Len(t, sink.Events, 1)
	assert.Equal(t, events.SeverityError, sink.Events[0].Severity)
}

func TestDescriptor_ValidateDateFormatRequiresFields(t *testing.T) {
	d := transform.Descriptor{Type: transform.DateFormat}
	assert.Error(t, d.Validate())
}
