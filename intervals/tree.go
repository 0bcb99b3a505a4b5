package intervals

import "sort"

// Tree is a range-queryable set of intervals: a vector sorted by start plus
// a parallel prefix-max-end array used to prune scans. Point and range
// queries run in O(log N + r) for r results.
type Tree struct {
	intervals    []Interval
	prefixMaxEnd []int
}

// NewTree creates an empty interval tree.
func NewTree() *Tree {
	return &Tree{}
}

// FromIntervals builds a tree from an arbitrary interval list.
// Empty intervals are dropped.
func FromIntervals(ivs []Interval) *Tree {
	t := &Tree{intervals: make([]Interval, 0, len(ivs))}
	for _, iv := range ivs {
		if !iv.IsEmpty() {
			t.intervals = append(t.intervals, iv)
		}
	}
	sort.SliceStable(t.intervals, func(i, j int) bool {
		a, b := t.intervals[i], t.intervals[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})
	t.rebuildPrefixMaxEnd(0)
	return t
}

// Len returns the number of intervals.
func (t *Tree) Len() int {
	return len(t.intervals)
}

// IsEmpty reports whether the tree holds no intervals.
func (t *Tree) IsEmpty() bool {
	return len(t.intervals) == 0
}

// Intervals returns the intervals in start order. The slice is shared;
// callers must not modify it.
func (t *Tree) Intervals() []Interval {
	return t.intervals
}

// rebuildPrefixMaxEnd recomputes prefixMaxEnd[i] = max(prefixMaxEnd[i-1], end[i])
// from index from onward.
func (t *Tree) rebuildPrefixMaxEnd(from int) {
	if cap(t.prefixMaxEnd) < len(t.intervals) {
		old := t.prefixMaxEnd
		t.prefixMaxEnd = make([]int, len(t.intervals))
		copy(t.prefixMaxEnd, old)
	} else {
		t.prefixMaxEnd = t.prefixMaxEnd[:len(t.intervals)]
	}
	for i := from; i < len(t.intervals); i++ {
		end := t.intervals[i].End
		if i > 0 && t.prefixMaxEnd[i-1] > end {
			end = t.prefixMaxEnd[i-1]
		}
		t.prefixMaxEnd[i] = end
	}
}

// Insert adds an interval, keeping start order. Empty intervals are ignored.
func (t *Tree) Insert(iv Interval) {
	if iv.IsEmpty() {
		return
	}
	idx := sort.Search(len(t.intervals), func(i int) bool {
		if t.intervals[i].Start != iv.Start {
			return t.intervals[i].Start > iv.Start
		}
		return t.intervals[i].End >= iv.End
	})
	t.intervals = append(t.intervals, Interval{})
	copy(t.intervals[idx+1:], t.intervals[idx:])
	t.intervals[idx] = iv
	t.rebuildPrefixMaxEnd(idx)
}

// Remove deletes the first interval equal to the given range and style.
// Returns true if an interval was removed.
func (t *Tree) Remove(start, end int, styleID StyleId) bool {
	idx := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].Start >= start
	})
	for i := idx; i < len(t.intervals) && t.intervals[i].Start == start; i++ {
		if t.intervals[i].End == end && t.intervals[i].StyleID == styleID {
			t.intervals = append(t.intervals[:i], t.intervals[i+1:]...)
			from := i - 1
			if from < 0 {
				from = 0
			}
			t.rebuildPrefixMaxEnd(from)
			return true
		}
	}
	return false
}

// QueryPoint returns the intervals containing pos, in start order.
func (t *Tree) QueryPoint(pos int) []Interval {
	return t.QueryRange(pos, pos+1)
}

// QueryRange returns the intervals overlapping [start, end), in start order.
func (t *Tree) QueryRange(start, end int) []Interval {
	if start >= end || len(t.intervals) == 0 {
		return nil
	}
	// First interval that could overlap: binary search for the first index
	// whose prefix max end is > start; everything before it ends at or
	// before start.
	lo := sort.Search(len(t.intervals), func(i int) bool {
		return t.prefixMaxEnd[i] > start
	})
	var out []Interval
	for i := lo; i < len(t.intervals); i++ {
		iv := t.intervals[i]
		if iv.Start >= end {
			break
		}
		if iv.End > start {
			out = append(out, iv)
		}
	}
	return out
}

// Clear removes all intervals.
func (t *Tree) Clear() {
	t.intervals = t.intervals[:0]
	t.prefixMaxEnd = t.prefixMaxEnd[:0]
}

// ShiftForEdit updates every interval for a text edit replacing the
// character range [editStart, editEnd) with insertedLen characters.
//
// Intervals ending at or before the edit are unchanged; intervals starting
// at or after it shift by the length delta (an interval whose start touches
// a pure insertion point shifts with the inserted text); overlapping
// intervals are clipped, and dropped when nothing survives.
func (t *Tree) ShiftForEdit(editStart, editEnd, insertedLen int) {
	deletedLen := editEnd - editStart
	delta := insertedLen - deletedLen
	if delta == 0 && deletedLen == 0 {
		return
	}

	out := t.intervals[:0]
	for _, iv := range t.intervals {
		switch {
		case iv.End <= editStart:
			out = append(out, iv)
		case iv.Start >= editEnd:
			iv.Start += delta
			iv.End += delta
			out = append(out, iv)
		default:
			// Overlap: clip to the surviving span.
			start := iv.Start
			if editStart < start {
				start = editStart
			}
			var end int
			if iv.End <= editEnd {
				end = editStart
			} else {
				end = iv.End + delta
			}
			if start < end {
				out = append(out, Interval{Start: start, End: end, StyleID: iv.StyleID})
			}
		}
	}
	t.intervals = out
	t.rebuildPrefixMaxEnd(0)
}
