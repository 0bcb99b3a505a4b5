package cursor

import "sort"

// Set is the selection set of one view: a primary selection plus any
// number of secondaries, kept sorted by start and non-overlapping. The
// primary is the first selection after normalization.
type Set struct {
	selections []Selection
}

// NewSet creates a set with a single cursor at offset 0.
func NewSet() *Set {
	return &Set{selections: []Selection{NewCursor(0)}}
}

// NewSetAt creates a set with a single cursor at the given offset.
func NewSetAt(offset int) *Set {
	return &Set{selections: []Selection{NewCursor(offset)}}
}

// NewSetFrom creates a set from the given selections, normalizing them.
func NewSetFrom(sels []Selection) *Set {
	if len(sels) == 0 {
		return NewSet()
	}
	s := &Set{selections: make([]Selection, len(sels))}
	copy(s.selections, sels)
	s.normalize()
	return s
}

// Primary returns the primary selection.
func (cs *Set) Primary() Selection {
	return cs.selections[0]
}

// All returns a copy of all selections in start order.
func (cs *Set) All() []Selection {
	out := make([]Selection, len(cs.selections))
	copy(out, cs.selections)
	return out
}

// Count returns the number of selections.
func (cs *Set) Count() int {
	return len(cs.selections)
}

// IsMulti reports whether the set holds more than one selection.
func (cs *Set) IsMulti() bool {
	return len(cs.selections) > 1
}

// HasSelection reports whether any selection has extent.
func (cs *Set) HasSelection() bool {
	for _, s := range cs.selections {
		if !s.IsEmpty() {
			return true
		}
	}
	return false
}

// Set replaces all selections with one.
func (cs *Set) Set(sel Selection) {
	cs.selections = cs.selections[:0]
	cs.selections = append(cs.selections, sel)
}

// SetAll replaces all selections, normalizing.
func (cs *Set) SetAll(sels []Selection) {
	if len(sels) == 0 {
		cs.selections = []Selection{NewCursor(0)}
		return
	}
	cs.selections = make([]Selection, len(sels))
	copy(cs.selections, sels)
	cs.normalize()
}

// Add adds a selection, merging overlaps.
func (cs *Set) Add(sel Selection) {
	cs.selections = append(cs.selections, sel)
	cs.normalize()
}

// ClearSecondary keeps only the primary selection.
func (cs *Set) ClearSecondary() {
	cs.selections = cs.selections[:1]
}

// CollapseAll collapses every selection to its head.
func (cs *Set) CollapseAll() {
	for i := range cs.selections {
		cs.selections[i] = cs.selections[i].Collapse()
	}
	cs.normalize()
}

// Map replaces each selection with f(selection), then normalizes.
func (cs *Set) Map(f func(Selection) Selection) {
	for i := range cs.selections {
		cs.selections[i] = f(cs.selections[i])
	}
	cs.normalize()
}

// Clamp restricts every selection to [0, maxOffset].
func (cs *Set) Clamp(maxOffset int) {
	for i := range cs.selections {
		cs.selections[i] = cs.selections[i].Clamp(maxOffset)
	}
	cs.normalize()
}

// Clone returns a deep copy of the set.
func (cs *Set) Clone() *Set {
	out := &Set{selections: make([]Selection, len(cs.selections))}
	copy(out.selections, cs.selections)
	return out
}

// Equal reports whether two sets hold identical selections.
func (cs *Set) Equal(other *Set) bool {
	if other == nil || len(cs.selections) != len(other.selections) {
		return false
	}
	for i, s := range cs.selections {
		o := other.selections[i]
		if s.Anchor != o.Anchor || s.Head != o.Head {
			return false
		}
	}
	return true
}

// normalize sorts selections by start and merges overlapping ones
// canonically: the merged span is anchored at the earliest offset.
func (cs *Set) normalize() {
	if len(cs.selections) <= 1 {
		return
	}
	sort.SliceStable(cs.selections, func(i, j int) bool {
		a, b := cs.selections[i], cs.selections[j]
		if a.Start() != b.Start() {
			return a.Start() < b.Start()
		}
		return a.End() > b.End()
	})
	merged := cs.selections[:1]
	for _, sel := range cs.selections[1:] {
		last := &merged[len(merged)-1]
		if sel.Start() < last.End() || (sel.Start() == last.End() && sel.IsEmpty() && last.IsEmpty()) {
			*last = last.Merge(sel)
		} else if sel.SameRange(*last) {
			continue
		} else {
			merged = append(merged, sel)
		}
	}
	cs.selections = merged
}
