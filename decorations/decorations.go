// Package decorations models virtual-text annotations anchored to document
// character offsets: inlay hints, code lens, document links, match
// highlights. Decorations never change document offsets; composed
// snapshots may render them as extra cells or rows.
package decorations

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/windoze/editor-core/intervals"
)

// LayerId identifies a decoration source layer, mirroring style layers for
// non-style derived state.
type LayerId uint32

// Well-known decoration layers.
const (
	LayerInlayHints LayerId = iota + 1
	LayerCodeLens
	LayerDocumentLinks
	LayerMatchHighlights
)

// Placement says where a decoration renders relative to its anchor.
type Placement uint8

const (
	// PlacementInline splices cells at the anchor offset.
	PlacementInline Placement = iota
	// PlacementBefore renders a virtual row above the anchor's visual row.
	PlacementBefore
	// PlacementAfter renders a virtual row below the anchor's visual row.
	PlacementAfter
)

// Kind is a coarse decoration category.
type Kind uint8

const (
	KindInlayHint Kind = iota
	KindCodeLens
	KindDocumentLink
	KindHighlight
	KindCustom
)

// Range is a half-open character range; point anchors use Start == End.
type Range struct {
	Start int
	End   int
}

// Decoration is a single annotation.
type Decoration struct {
	Range     Range
	Placement Placement
	Kind      Kind
	// Text is the virtual text to render, if any.
	Text string
	// Styles are applied to the decoration's cells when rendering.
	Styles []intervals.StyleId
	// Tooltip is an optional plain-text hover payload.
	Tooltip string
	// DataJSON carries an integration-defined payload as JSON text.
	DataJSON string
}

// DataField extracts a field from the JSON payload by gjson path.
// Returns the zero value when the payload or path is absent.
func (d *Decoration) DataField(path string) gjson.Result {
	if d.DataJSON == "" {
		return gjson.Result{}
	}
	return gjson.Get(d.DataJSON, path)
}

// WithDataField returns a copy of the decoration with the JSON payload
// field at path set to value.
func (d Decoration) WithDataField(path string, value any) (Decoration, error) {
	data, err := sjson.Set(d.DataJSON, path, value)
	if err != nil {
		return d, err
	}
	d.DataJSON = data
	return d, nil
}

// Set holds decorations per layer for one buffer.
type Set struct {
	layers map[LayerId][]Decoration
}

// NewSet creates an empty decoration set.
func NewSet() *Set {
	return &Set{layers: make(map[LayerId][]Decoration)}
}

// Replace replaces a layer's decorations wholesale.
func (s *Set) Replace(layer LayerId, decs []Decoration) {
	out := make([]Decoration, len(decs))
	copy(out, decs)
	s.layers[layer] = out
}

// Clear removes a layer. Clearing twice equals clearing once.
func (s *Set) Clear(layer LayerId) {
	delete(s.layers, layer)
}

// Layer returns the decorations of a layer. The slice is shared; callers
// must not modify it.
func (s *Set) Layer(layer LayerId) []Decoration {
	return s.layers[layer]
}

// Layers returns a snapshot copy of the whole layer map.
func (s *Set) Layers() map[LayerId][]Decoration {
	out := make(map[LayerId][]Decoration, len(s.layers))
	for id, decs := range s.layers {
		cp := make([]Decoration, len(decs))
		copy(cp, decs)
		out[id] = cp
	}
	return out
}

// InRange returns all decorations whose anchor overlaps [start, end),
// including point anchors sitting inside the range.
func (s *Set) InRange(start, end int) []Decoration {
	var out []Decoration
	for _, decs := range s.layers {
		for _, d := range decs {
			if d.Range.Start == d.Range.End {
				if d.Range.Start >= start && d.Range.Start < end {
					out = append(out, d)
				}
			} else if d.Range.Start < end && d.Range.End > start {
				out = append(out, d)
			}
		}
	}
	return out
}

// ShiftForEdit updates decoration anchors for a text edit replacing
// [editStart, editEnd) with insertedLen characters, using the same rule as
// style intervals. Point anchors inside the deleted span collapse to the
// edit start.
func (s *Set) ShiftForEdit(editStart, editEnd, insertedLen int) {
	delta := insertedLen - (editEnd - editStart)
	for id, decs := range s.layers {
		out := decs[:0]
		for _, d := range decs {
			r := d.Range
			switch {
			case r.End < editStart || (r.End == editStart && r.Start < r.End):
				out = append(out, d)
			case r.Start >= editEnd:
				d.Range.Start += delta
				d.Range.End += delta
				out = append(out, d)
			case r.Start == r.End:
				// Point anchor inside the edit: move to the edit start.
				d.Range.Start = editStart
				d.Range.End = editStart
				out = append(out, d)
			default:
				if editStart < r.Start {
					d.Range.Start = editStart
				}
				if r.End <= editEnd {
					d.Range.End = editStart
				} else {
					d.Range.End = r.End + delta
				}
				if d.Range.Start < d.Range.End {
					out = append(out, d)
				}
			}
		}
		s.layers[id] = out
	}
}
