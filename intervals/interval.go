// Package intervals provides the range-keyed overlay structures of a
// buffer: style intervals per layer, and line-based fold regions. All
// character ranges are half-open [start, end) in Unicode scalar values.
package intervals

import "fmt"

// StyleId is an opaque tag mapping to host-defined theming.
type StyleId uint32

// StyleLayerId identifies an independently replaceable style layer.
type StyleLayerId uint32

// The closed set of well-known style layers. Hosts may allocate further
// layers with CustomLayer.
const (
	LayerBase StyleLayerId = iota
	LayerSemanticTokens
	LayerSublimeSyntax
	LayerSimpleSyntax
	LayerDiagnostics
	LayerDocumentHighlights

	customLayerBase StyleLayerId = 1 << 16
)

// CustomLayer returns the n-th host-defined style layer.
func CustomLayer(n uint32) StyleLayerId {
	return customLayerBase + StyleLayerId(n)
}

// String returns a string representation of the layer id.
func (id StyleLayerId) String() string {
	switch id {
	case LayerBase:
		return "base"
	case LayerSemanticTokens:
		return "semantic-tokens"
	case LayerSublimeSyntax:
		return "sublime-syntax"
	case LayerSimpleSyntax:
		return "simple-syntax"
	case LayerDiagnostics:
		return "diagnostics"
	case LayerDocumentHighlights:
		return "document-highlights"
	}
	if id >= customLayerBase {
		return fmt.Sprintf("custom-%d", uint32(id-customLayerBase))
	}
	return fmt.Sprintf("layer-%d", uint32(id))
}

// Interval is a styled half-open character range.
type Interval struct {
	Start   int
	End     int
	StyleID StyleId
}

// NewInterval creates an interval.
func NewInterval(start, end int, styleID StyleId) Interval {
	return Interval{Start: start, End: end, StyleID: styleID}
}

// Contains reports whether the interval covers the given offset.
func (iv Interval) Contains(pos int) bool {
	return pos >= iv.Start && pos < iv.End
}

// Overlaps reports whether two intervals share any offset.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// IsEmpty reports whether the interval covers no offsets.
func (iv Interval) IsEmpty() bool {
	return iv.Start >= iv.End
}

// String returns a human-readable representation of the interval.
func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d)#%d", iv.Start, iv.End, iv.StyleID)
}
