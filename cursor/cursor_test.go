package cursor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSelectionBasics(t *testing.T) {
	s := NewSelection(10, 4)
	if s.Start() != 4 || s.End() != 10 || s.Len() != 6 {
		t.Errorf("bounds: start=%d end=%d len=%d", s.Start(), s.End(), s.Len())
	}
	if s.IsForward() {
		t.Error("backward selection reported forward")
	}
	c := s.Collapse()
	if !c.IsEmpty() || c.Head != 4 {
		t.Errorf("Collapse() = %v", c)
	}
}

func TestSetNormalizeMergesOverlaps(t *testing.T) {
	cs := NewSetFrom([]Selection{
		NewSelection(5, 10),
		NewSelection(8, 12),
		NewCursor(20),
	})
	got := cs.All()
	want := []Selection{
		{Anchor: 5, Head: 12, PreferredX: NoPreferredX},
		NewCursor(20),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalize mismatch (-want +got):\n%s", diff)
	}
	if !cs.IsMulti() {
		t.Error("IsMulti() = false")
	}
}

func TestSetMergeCanonicalEarliestAnchor(t *testing.T) {
	// Backward and forward selections merging keep the earliest offset as
	// the anchor.
	cs := NewSetFrom([]Selection{
		NewSelection(10, 6), // backward
		NewSelection(8, 14),
	})
	got := cs.All()
	if len(got) != 1 || got[0].Anchor != 6 || got[0].Head != 14 {
		t.Errorf("merged = %v, want anchor 6 head 14", got)
	}
}

func TestSetDedupesCursors(t *testing.T) {
	cs := NewSetFrom([]Selection{NewCursor(3), NewCursor(3), NewCursor(7)})
	if cs.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cs.Count())
	}
}

func TestSetClamp(t *testing.T) {
	cs := NewSetFrom([]Selection{NewSelection(5, 50), NewCursor(80)})
	cs.Clamp(10)
	got := cs.All()
	if got[0].Start() != 5 || got[0].End() != 10 {
		t.Errorf("Clamp: %v", got)
	}
	for _, s := range got {
		if s.Start() < 0 || s.End() > 10 {
			t.Errorf("selection out of bounds: %v", s)
		}
	}
}

func TestTransformOffset(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		e      EditSpan
		want   int
	}{
		{"before edit", 3, EditSpan{5, 8, 1}, 3},
		{"after edit", 10, EditSpan{5, 8, 1}, 8},
		{"inside replaced range", 6, EditSpan{5, 8, 2}, 7},
		{"at pure insertion", 5, EditSpan{5, 5, 3}, 8},
		{"after pure insertion", 7, EditSpan{5, 5, 3}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TransformOffset(tt.offset, tt.e); got != tt.want {
				t.Errorf("TransformOffset(%d, %+v) = %d, want %d", tt.offset, tt.e, got, tt.want)
			}
		})
	}
}

func TestTransformOffsetSticky(t *testing.T) {
	e := EditSpan{5, 5, 3}
	if got := TransformOffsetSticky(5, e); got != 5 {
		t.Errorf("sticky at insertion = %d, want 5", got)
	}
	if got := TransformOffsetSticky(6, e); got != 9 {
		t.Errorf("sticky after insertion = %d, want 9", got)
	}
}

func TestTransformSetMulti(t *testing.T) {
	cs := NewSetFrom([]Selection{NewCursor(3), NewCursor(7), NewCursor(11)})
	// Three single-char insertions applied in descending offset order.
	TransformSetMulti(cs, []EditSpan{
		{Start: 11, End: 11, InsertedLen: 1},
		{Start: 7, End: 7, InsertedLen: 1},
		{Start: 3, End: 3, InsertedLen: 1},
	})
	var heads []int
	for _, s := range cs.All() {
		heads = append(heads, s.Head)
	}
	want := []int{4, 9, 14}
	if diff := cmp.Diff(want, heads); diff != "" {
		t.Errorf("heads mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformPreservesStickyWhenUntouched(t *testing.T) {
	s := NewCursor(2).WithPreferredX(9)
	out := TransformSelection(s, EditSpan{Start: 10, End: 12, InsertedLen: 0})
	if out.PreferredX != 9 {
		t.Errorf("sticky column dropped: %v", out)
	}
	out = TransformSelection(s, EditSpan{Start: 0, End: 1, InsertedLen: 0})
	if out.PreferredX != NoPreferredX {
		t.Errorf("sticky column kept through a move: %v", out)
	}
}
