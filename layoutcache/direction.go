package layoutcache

import "golang.org/x/text/unicode/bidi"

// Direction is a paragraph base direction.
type Direction uint8

const (
	// DirectionAuto resolves the base direction from the text content,
	// following the first strong character (UAX #9 rules P2/P3).
	DirectionAuto Direction = iota

	// DirectionLTR forces left-to-right.
	DirectionLTR

	// DirectionRTL forces right-to-left.
	DirectionRTL
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case DirectionAuto:
		return "auto"
	case DirectionLTR:
		return "ltr"
	case DirectionRTL:
		return "rtl"
	default:
		return "unknown"
	}
}

// ResolveDirection turns DirectionAuto into the concrete direction the
// bidi algorithm assigns the paragraph. Explicit directions pass through
// unchanged. Empty text and text with no strong characters resolve LTR.
func ResolveDirection(text string, d Direction) Direction {
	if d != DirectionAuto {
		return d
	}
	if text == "" {
		return DirectionLTR
	}
	var p bidi.Paragraph
	if _, err := p.SetString(text); err != nil {
		return DirectionLTR
	}
	if p.IsLeftToRight() {
		return DirectionLTR
	}
	return DirectionRTL
}
