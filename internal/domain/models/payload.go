package models

// PayloadFormat tags a raw telemetry record with the wire variant it uses.
// It is resolved once at ingress and dispatched on statically afterwards.
type PayloadFormat int

const (
	FormatUnknown PayloadFormat = iota
	FormatFlat
	FormatNested
)

func (f PayloadFormat) String() string {
	switch f {
	case FormatFlat:
		return "flat"
	case FormatNested:
		return "nested"
	default:
		return "unknown"
	}
}
