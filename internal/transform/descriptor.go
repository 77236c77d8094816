// Package transform implements the four field-transform kinds of spec
// §4.3: toString, dateFormat, encrypt and mask, applied left to right as an
// ordered pipeline over a single extracted value.
package transform

import engerrors "github.com/vishalvchavan/streamsmt/pkg/errors"

// Kind is one of the four recognized transform types.
type Kind string

// Recognized transform kinds.
const (
	ToString   Kind = "toString"
	DateFormat Kind = "dateFormat"
	Encrypt    Kind = "encrypt"
	Mask       Kind = "mask"
)

// Descriptor is one step of a field's transform pipeline (spec §3 "Field
// specification" / §6.3 `tfm`).
type Descriptor struct {
	Type Kind

	// dateFormat
	InputFormats []string
	OutputFormat string
	Timezone     string // default "UTC"

	// encrypt
	KeyRef string

	// mask
	Pattern       string // one of ssn|creditcard|email|phone|name|full|partial|custom
	CustomPattern string // "regex|replacement", only when Pattern == "custom"
}

// Validate checks the structural invariants of spec §3: Type must be one
// of the four recognized kinds, and dateFormat requires non-empty
// InputFormats and OutputFormat.
func (d Descriptor) Validate() error {
	switch d.Type {
	case ToString, Encrypt, Mask:
		return nil
	case DateFormat:
		if len(d.InputFormats) == 0 {
			return engerrors.New(engerrors.EInvalid, "dateFormat transform requires a non-empty inputFormats list")
		}
		if d.OutputFormat == "" {
			return engerrors.New(engerrors.EInvalid, "dateFormat transform requires a non-empty outputFormat")
		}
		return nil
	default:
		return engerrors.New(engerrors.EInvalid, "unrecognized transform type %q", d.Type)
	}
}
