package intervals

import "sort"

// LayerSet maps style layers to their interval trees. Layers are
// independently replaceable; reads union styles across all layers.
type LayerSet struct {
	layers map[StyleLayerId]*Tree
}

// NewLayerSet creates an empty layer set.
func NewLayerSet() *LayerSet {
	return &LayerSet{layers: make(map[StyleLayerId]*Tree)}
}

// Layer returns the tree for a layer, creating it on first use.
func (ls *LayerSet) Layer(id StyleLayerId) *Tree {
	t, ok := ls.layers[id]
	if !ok {
		t = NewTree()
		ls.layers[id] = t
	}
	return t
}

// HasLayer reports whether the layer holds any intervals.
func (ls *LayerSet) HasLayer(id StyleLayerId) bool {
	t, ok := ls.layers[id]
	return ok && !t.IsEmpty()
}

// LayerIDs returns the ids of all non-empty layers in ascending order.
func (ls *LayerSet) LayerIDs() []StyleLayerId {
	ids := make([]StyleLayerId, 0, len(ls.layers))
	for id, t := range ls.layers {
		if !t.IsEmpty() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ReplaceLayer replaces a layer's intervals wholesale.
func (ls *LayerSet) ReplaceLayer(id StyleLayerId, ivs []Interval) {
	ls.layers[id] = FromIntervals(ivs)
}

// ClearLayer removes all intervals from a layer. Clearing an absent layer
// is a no-op, so clearing twice equals clearing once.
func (ls *LayerSet) ClearLayer(id StyleLayerId) {
	delete(ls.layers, id)
}

// StylesAt returns the sorted, de-duplicated styles covering the offset
// across all layers.
func (ls *LayerSet) StylesAt(pos int) []StyleId {
	var styles []StyleId
	for _, t := range ls.layers {
		for _, iv := range t.QueryPoint(pos) {
			styles = append(styles, iv.StyleID)
		}
	}
	return sortUniqueStyles(styles)
}

// IntervalsInRange returns all intervals overlapping [start, end) across
// all layers, ordered by layer id then start.
func (ls *LayerSet) IntervalsInRange(start, end int) []Interval {
	var out []Interval
	for _, id := range ls.LayerIDs() {
		out = append(out, ls.layers[id].QueryRange(start, end)...)
	}
	return out
}

// ShiftForEdit applies the overlay shift rule to every layer.
func (ls *LayerSet) ShiftForEdit(editStart, editEnd, insertedLen int) {
	for _, t := range ls.layers {
		t.ShiftForEdit(editStart, editEnd, insertedLen)
	}
}

// sortUniqueStyles sorts and de-duplicates a style list in place.
func sortUniqueStyles(styles []StyleId) []StyleId {
	if len(styles) < 2 {
		return styles
	}
	sort.Slice(styles, func(i, j int) bool { return styles[i] < styles[j] })
	out := styles[:1]
	for _, s := range styles[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
