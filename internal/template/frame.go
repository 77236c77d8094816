package template

import "github.com/vishalvchavan/streamsmt/internal/tree"

// FrameOptions carries the per-record side-channel data wrapped framing may
// attach (spec §4.2 "Top-level framing").
type FrameOptions struct {
	AttachMetadata bool
	SourceTopic    string
	SourcePartition int

	StoreRawPayload bool
	RawPayload      tree.Node
}

// Frame applies top-level framing to a projected record. Flat framing
// (wrapped=false) returns projected unchanged and suppresses both side
// channels, since there is no envelope object to attach them to. Wrapped
// framing nests projected under root and optionally attaches a metadata
// object and a verbatim copy of the raw input payload alongside it.
func Frame(projected tree.Node, root string, wrapped bool, opts FrameOptions) tree.Node {
	if !wrapped {
		return projected
	}

	out := tree.NewObject(3)
	out.Set(root, projected)

	if opts.AttachMetadata {
		meta := tree.NewObject(2)
		meta.Set("topic", tree.Text(opts.SourceTopic))
		meta.Set("partition", tree.Int(int64(opts.SourcePartition)))
		out.Set("metadata", tree.ObjectNode(meta))
	}

	if opts.StoreRawPayload {
		out.Set("rawPayload", opts.RawPayload)
	}

	return tree.ObjectNode(out)
}
