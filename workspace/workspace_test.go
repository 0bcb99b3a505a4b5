package workspace

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/windoze/editor-core/editor"
	"github.com/windoze/editor-core/intervals"
	"github.com/windoze/editor-core/layout"
	"github.com/windoze/editor-core/processing"
	"github.com/windoze/editor-core/search"
)

func TestOpenBufferAndViews(t *testing.T) {
	w := New()
	bufID, viewID, err := w.OpenBuffer("hello", "file:///a.txt", 80)
	if err != nil {
		t.Fatal(err)
	}
	if w.BufferCount() != 1 || w.ViewCount() != 1 {
		t.Errorf("counts: %d buffers, %d views", w.BufferCount(), w.ViewCount())
	}
	if got, _ := w.BufferForView(viewID); got != bufID {
		t.Errorf("BufferForView = %v, want %v", got, bufID)
	}
	if id, ok := w.BufferForURI("file:///a.txt"); !ok || id != bufID {
		t.Errorf("BufferForURI = %v, %v", id, ok)
	}
	if _, _, err := w.OpenBuffer("x", "file:///a.txt", 80); !errors.Is(err, ErrURIAlreadyOpen) {
		t.Errorf("duplicate uri: %v", err)
	}
}

func TestCloseBufferWhileViewed(t *testing.T) {
	w := New()
	bufID, viewID, err := w.OpenBuffer("text", "", 80)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.CloseBuffer(bufID); !errors.Is(err, ErrBufferInUse) {
		t.Fatalf("CloseBuffer with view: %v", err)
	}
	if err := w.CloseView(viewID); err != nil {
		t.Fatal(err)
	}
	if err := w.CloseBuffer(bufID); err != nil {
		t.Errorf("CloseBuffer after view closed: %v", err)
	}
}

func TestExecuteUnknownView(t *testing.T) {
	w := New()
	if _, err := w.Execute(ViewId(99), editor.InsertText{Text: "x"}); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("err = %v, want ErrViewNotFound", err)
	}
}

// TestTwoViewConsistency follows the two-view scenario: views of widths 10
// and 5 on one buffer observe the same edit with different visual totals.
func TestTwoViewConsistency(t *testing.T) {
	w := New()
	bufID, viewA, err := w.OpenBuffer("0123456789\n", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	viewB, err := w.CreateView(bufID, 5)
	if err != nil {
		t.Fatal(err)
	}

	// Caret at char 1 in view A, then insert.
	if _, err := w.Execute(viewA, editor.MoveTo{Line: 0, Column: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Execute(viewA, editor.InsertText{Text: "X"}); err != nil {
		t.Fatal(err)
	}

	text, err := w.BufferText(bufID)
	if err != nil {
		t.Fatal(err)
	}
	if text != "0X123456789\n" {
		t.Fatalf("buffer text = %q", text)
	}

	totalA, err := w.TotalVisualRowsForView(viewA)
	if err != nil {
		t.Fatal(err)
	}
	if totalA != 3 {
		t.Errorf("view A total visual rows = %d, want 3", totalA)
	}
	totalB, err := w.TotalVisualRowsForView(viewB)
	if err != nil {
		t.Fatal(err)
	}
	if totalB != 4 {
		t.Errorf("view B total visual rows = %d, want 4", totalB)
	}

	// Both views consume the same delta exactly once.
	dA, err := w.TakeLastTextDeltaForView(viewA)
	if err != nil || dA.IsEmpty() {
		t.Fatalf("view A delta: %v, %v", dA, err)
	}
	dB, err := w.TakeLastTextDeltaForView(viewB)
	if err != nil || dB.IsEmpty() {
		t.Fatalf("view B delta: %v, %v", dB, err)
	}
	if dA != dB {
		t.Errorf("views received different deltas")
	}
	if d2, _ := w.TakeLastTextDeltaForView(viewA); d2 != nil {
		t.Errorf("view A consumed its delta twice")
	}
}

func TestSiblingSelectionsShiftThroughEdits(t *testing.T) {
	w := New()
	bufID, viewA, err := w.OpenBuffer("abcdef", "", 80)
	if err != nil {
		t.Fatal(err)
	}
	viewB, err := w.CreateView(bufID, 80)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Execute(viewB, editor.MoveTo{Line: 0, Column: 4}); err != nil {
		t.Fatal(err)
	}

	// An insert at the front of the buffer from view A shifts view B's
	// caret.
	if _, err := w.Execute(viewA, editor.Insert{Offset: 0, Text: ">> "}); err != nil {
		t.Fatal(err)
	}
	sels, err := w.SelectionsForView(viewB)
	if err != nil {
		t.Fatal(err)
	}
	if sels[0].Head != 7 {
		t.Errorf("view B head = %d, want 7", sels[0].Head)
	}
}

func TestBroadcastNotifications(t *testing.T) {
	w := New()
	bufID, viewA, err := w.OpenBuffer("text", "", 80)
	if err != nil {
		t.Fatal(err)
	}
	viewB, err := w.CreateView(bufID, 40)
	if err != nil {
		t.Fatal(err)
	}

	var gotA, gotB []editor.ChangeKind
	if err := w.SubscribeView(viewA, func(c ViewChange) { gotA = append(gotA, c.Type) }); err != nil {
		t.Fatal(err)
	}
	if err := w.SubscribeView(viewB, func(c ViewChange) { gotB = append(gotB, c.Type) }); err != nil {
		t.Fatal(err)
	}

	if _, err := w.Execute(viewA, editor.InsertText{Text: "!"}); err != nil {
		t.Fatal(err)
	}
	if len(gotA) != 1 || gotA[0] != editor.ChangeDocument {
		t.Errorf("view A notifications: %v", gotA)
	}
	if len(gotB) != 1 || gotB[0] != editor.ChangeDocument {
		t.Errorf("view B notifications: %v", gotB)
	}

	// Cursor commands notify only the originating view.
	gotA, gotB = nil, nil
	if _, err := w.Execute(viewA, editor.MoveTo{Line: 0, Column: 0}); err != nil {
		t.Fatal(err)
	}
	if len(gotA) != 1 || gotA[0] != editor.ChangeSelection {
		t.Errorf("view A cursor notification: %v", gotA)
	}
	if len(gotB) != 0 {
		t.Errorf("view B should not see sibling cursor moves: %v", gotB)
	}
}

func TestPerViewWrapSettings(t *testing.T) {
	w := New()
	bufID, viewA, err := w.OpenBuffer("aaaa bbbb cccc", "", 80)
	if err != nil {
		t.Fatal(err)
	}
	viewB, err := w.CreateView(bufID, 5)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Execute(viewB, editor.SetWrapMode{Mode: layout.WrapWord}); err != nil {
		t.Fatal(err)
	}

	totalA, _ := w.TotalVisualRowsForView(viewA)
	totalB, _ := w.TotalVisualRowsForView(viewB)
	if totalA != 1 {
		t.Errorf("view A rows = %d, want 1", totalA)
	}
	if totalB != 3 {
		t.Errorf("view B rows = %d, want 3", totalB)
	}
}

func TestSearchAllOpenBuffers(t *testing.T) {
	w := New()
	b1, _, err := w.OpenBuffer("cat dog", "file:///1", 80)
	if err != nil {
		t.Fatal(err)
	}
	b2, _, err := w.OpenBuffer("dog cat cat", "file:///2", 80)
	if err != nil {
		t.Fatal(err)
	}

	results, err := w.SearchAllOpenBuffers("cat", search.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	type hit struct {
		Buf   BufferId
		Start int
	}
	var got []hit
	for _, r := range results {
		got = append(got, hit{r.Buffer, r.Range.Start})
		if r.MatchText != "cat" {
			t.Errorf("match text %q", r.MatchText)
		}
	}
	want := []hit{{b1, 0}, {b2, 4}, {b2, 8}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results (-want +got):\n%s", diff)
	}
}

func TestApplyTextEditsPerBuffer(t *testing.T) {
	w := New()
	b1, v1, err := w.OpenBuffer("one two", "", 80)
	if err != nil {
		t.Fatal(err)
	}
	b2, v2, err := w.OpenBuffer("three four", "", 80)
	if err != nil {
		t.Fatal(err)
	}

	err = w.ApplyTextEdits(map[BufferId][]editor.TextEditSpec{
		b1: {{Start: 0, End: 3, Text: "1"}},
		b2: {{Start: 6, End: 10, Text: "4"}, {Start: 0, End: 5, Text: "3"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if text, _ := w.BufferText(b1); text != "1 two" {
		t.Errorf("buffer 1: %q", text)
	}
	if text, _ := w.BufferText(b2); text != "3 4" {
		t.Errorf("buffer 2: %q", text)
	}

	// One delta per buffer.
	d1, _ := w.TakeLastTextDeltaForView(v1)
	d2, _ := w.TakeLastTextDeltaForView(v2)
	if d1.IsEmpty() || d2.IsEmpty() {
		t.Errorf("deltas: %v %v", d1, d2)
	}
	if len(d2.Edits) != 2 {
		t.Errorf("buffer 2 delta edits = %d, want 2", len(d2.Edits))
	}

	// One undo step per buffer.
	if _, err := w.Execute(v1, editor.Undo{}); err != nil {
		t.Fatal(err)
	}
	if text, _ := w.BufferText(b1); text != "one two" {
		t.Errorf("undo buffer 1: %q", text)
	}
	if _, err := w.Execute(v2, editor.Undo{}); err != nil {
		t.Fatal(err)
	}
	if text, _ := w.BufferText(b2); text != "three four" {
		t.Errorf("undo buffer 2: %q", text)
	}
}

func TestApplyProcessingEditsBroadcasts(t *testing.T) {
	w := New()
	bufID, viewID, err := w.OpenBuffer("source text", "", 80)
	if err != nil {
		t.Fatal(err)
	}
	var kinds []editor.ChangeKind
	if err := w.SubscribeView(viewID, func(c ViewChange) { kinds = append(kinds, c.Type) }); err != nil {
		t.Fatal(err)
	}

	err = w.ApplyProcessingEdits(bufID, []processing.Edit{
		processing.ReplaceStyleLayer{
			Layer:     intervals.LayerSemanticTokens,
			Intervals: []intervals.Interval{{Start: 0, End: 6, StyleID: 2}},
		},
		processing.ReplaceFoldRegions{Regions: []intervals.FoldRegion{{StartLine: 0, EndLine: 0}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []editor.ChangeKind{editor.ChangeStyles, editor.ChangeFolding}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("notifications (-want +got):\n%s", diff)
	}
}

func TestViewportStateForView(t *testing.T) {
	w := New()
	_, viewID, err := w.OpenBuffer("a\nb\nc\nd\ne", "", 80)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.SetScrollTop(viewID, 1); err != nil {
		t.Fatal(err)
	}
	if err := w.SetViewportHeight(viewID, 3); err != nil {
		t.Fatal(err)
	}
	if err := w.SetOverscanRows(viewID, 1); err != nil {
		t.Fatal(err)
	}
	vs, err := w.ViewportStateForView(viewID)
	if err != nil {
		t.Fatal(err)
	}
	if vs.TotalVisualRows != 5 || vs.VisibleStartRow != 1 || vs.VisibleEndRow != 4 {
		t.Errorf("viewport: %+v", vs)
	}
	if vs.PrefetchStart != 0 || vs.PrefetchEnd != 5 {
		t.Errorf("prefetch: %+v", vs)
	}
}
