package intervals

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFoldingUserRegions(t *testing.T) {
	f := NewFolding()
	f.AddUserRegion(FoldRegion{StartLine: 2, EndLine: 5, Collapsed: true})
	f.AddUserRegion(FoldRegion{StartLine: 8, EndLine: 9})

	regions := f.Regions()
	if len(regions) != 2 {
		t.Fatalf("Regions() = %v", regions)
	}
	if !f.CollapseAt(8) {
		t.Error("CollapseAt(8) = false")
	}
	if f.IsLineVisible(3) {
		t.Error("line 3 should be hidden")
	}
	if !f.IsLineVisible(2) {
		t.Error("fold start line must stay visible")
	}
	if !f.ExpandAt(3) {
		t.Error("ExpandAt(3) = false")
	}
	if !f.IsLineVisible(3) {
		t.Error("line 3 should be visible after expand")
	}
}

func TestFoldingToggle(t *testing.T) {
	f := NewFolding()
	f.AddUserRegion(FoldRegion{StartLine: 1, EndLine: 4})
	if !f.ToggleAt(1) {
		t.Fatal("ToggleAt(1) = false")
	}
	if f.IsLineVisible(2) {
		t.Error("line 2 should be hidden after toggle")
	}
	if !f.ToggleAt(1) {
		t.Fatal("second ToggleAt(1) = false")
	}
	if !f.IsLineVisible(2) {
		t.Error("line 2 should be visible after second toggle")
	}
	if f.ToggleAt(7) {
		t.Error("ToggleAt outside any region = true")
	}
}

func TestReplaceDerivedPreservesUserFolds(t *testing.T) {
	f := NewFolding()
	f.AddUserRegion(FoldRegion{StartLine: 10, EndLine: 12, Collapsed: true})
	f.ReplaceDerived([]FoldRegion{{StartLine: 0, EndLine: 3}, {StartLine: 5, EndLine: 7}}, false)

	if len(f.UserRegions()) != 1 {
		t.Errorf("user regions lost: %v", f.UserRegions())
	}
	if len(f.DerivedRegions()) != 2 {
		t.Errorf("derived regions = %v", f.DerivedRegions())
	}

	f.ReplaceDerived(nil, false)
	if len(f.UserRegions()) != 1 || !f.UserRegions()[0].Collapsed {
		t.Errorf("user folds must survive derived replacement: %v", f.UserRegions())
	}
}

func TestReplaceDerivedPreserveCollapsed(t *testing.T) {
	f := NewFolding()
	f.ReplaceDerived([]FoldRegion{{StartLine: 0, EndLine: 3}}, false)
	f.CollapseAt(0)

	f.ReplaceDerived([]FoldRegion{{StartLine: 0, EndLine: 3}, {StartLine: 5, EndLine: 6}}, true)
	r, ok := f.regionAt(0)
	if !ok || !r.Collapsed {
		t.Errorf("collapsed state not preserved: %v", f.DerivedRegions())
	}

	f.ReplaceDerived([]FoldRegion{{StartLine: 0, EndLine: 3}}, false)
	r, _ = f.regionAt(0)
	if r.Collapsed {
		t.Errorf("collapsed state preserved without preserveCollapsed")
	}
}

// TestUserFoldShifting follows the user-fold scenario: a collapsed fold over
// lines 2..5, a newline inserted above, then a line deleted inside.
func TestUserFoldShifting(t *testing.T) {
	f := NewFolding()
	f.AddUserRegion(FoldRegion{StartLine: 2, EndLine: 5, Collapsed: true})

	// Insert "\n" at the end of line 0: one new line above the fold.
	f.ApplyLineDelta(1, 1)
	want := []FoldRegion{{StartLine: 3, EndLine: 6, Collapsed: true, Origin: OriginUser}}
	if diff := cmp.Diff(want, f.UserRegions()); diff != "" {
		t.Fatalf("after insert (-want +got):\n%s", diff)
	}

	// Delete one line inside the region.
	f.ApplyLineDelta(4, -1)
	want = []FoldRegion{{StartLine: 3, EndLine: 5, Collapsed: true, Origin: OriginUser}}
	if diff := cmp.Diff(want, f.UserRegions()); diff != "" {
		t.Fatalf("after inner delete (-want +got):\n%s", diff)
	}

	// Delete a span covering the entire region: the fold is dropped.
	f.ApplyLineDelta(3, -3)
	if len(f.UserRegions()) != 0 {
		t.Fatalf("fold not dropped: %v", f.UserRegions())
	}
}

func TestApplyLineDeltaDoesNotShiftDerived(t *testing.T) {
	f := NewFolding()
	f.ReplaceDerived([]FoldRegion{{StartLine: 4, EndLine: 6}}, false)
	f.ApplyLineDelta(0, 2)
	if got := f.DerivedRegions()[0].StartLine; got != 4 {
		t.Errorf("derived fold shifted to %d; providers recompute them", got)
	}
}

func TestHiddenLinesBefore(t *testing.T) {
	f := NewFolding()
	f.AddUserRegion(FoldRegion{StartLine: 1, EndLine: 3, Collapsed: true})
	f.AddUserRegion(FoldRegion{StartLine: 6, EndLine: 8, Collapsed: true})

	tests := []struct {
		line, want int
	}{
		{0, 0},
		{1, 0},
		{2, 0},
		{4, 2},
		{6, 2},
		{9, 4},
	}
	for _, tt := range tests {
		if got := f.HiddenLinesBefore(tt.line); got != tt.want {
			t.Errorf("HiddenLinesBefore(%d) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestClampToLineCount(t *testing.T) {
	f := NewFolding()
	f.AddUserRegion(FoldRegion{StartLine: 2, EndLine: 10})
	f.AddUserRegion(FoldRegion{StartLine: 20, EndLine: 25})
	f.ClampToLineCount(6)

	want := []FoldRegion{{StartLine: 2, EndLine: 5, Origin: OriginUser}}
	if diff := cmp.Diff(want, f.UserRegions()); diff != "" {
		t.Errorf("ClampToLineCount mismatch (-want +got):\n%s", diff)
	}
}
