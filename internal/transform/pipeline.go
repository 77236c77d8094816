package transform

import (
	"github.com/vishalvchavan/streamsmt/internal/events"
	"github.com/vishalvchavan/streamsmt/internal/tree"
)

// Pipeline is an ordered sequence of transform steps applied left to
// right: the output of each step becomes the input of the next (spec
// §4.3).
type Pipeline struct {
	steps []Descriptor
	keys  *KeyStore
}

// NewPipeline builds a Pipeline from an ordered descriptor list. keys
// resolves and caches key material for the encrypt step; pass nil if the
// pipeline is known not to contain an encrypt step.
func NewPipeline(steps []Descriptor, keys *KeyStore) *Pipeline {
	return &Pipeline{steps: steps, keys: keys}
}

// Apply runs every step of the pipeline over val in order. A step that
// cannot produce a value degrades to null or passes the pre-transform
// value through, raising an event on sink, but never aborts the record
// (spec §4.3 "Pipeline error semantics"). fieldName labels raised events;
// onSoftFailure, when non-nil, is called with the kind of each step that
// degrades.
func (p *Pipeline) Apply(val tree.Node, fieldName string, sink events.Sink, onSoftFailure func(kind Kind)) tree.Node {
	out := val
	for _, step := range p.steps {
		out = applyOne(step, out, fieldName, sink, p.keys, onSoftFailure)
	}
	return out
}

func applyOne(d Descriptor, val tree.Node, fieldName string, sink events.Sink, keys *KeyStore, onSoftFailure func(kind Kind)) tree.Node {
	switch d.Type {
	case ToString:
		return applyToString(val)
	case DateFormat:
		return applyDateFormat(d, val, fieldName, sink, onSoftFailure)
	case Encrypt:
		return applyEncrypt(d, val, fieldName, sink, keys, onSoftFailure)
	case Mask:
		return applyMask(d, val)
	default:
		return val
	}
}
