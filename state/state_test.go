package state

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/windoze/editor-core/decorations"
	"github.com/windoze/editor-core/diagnostics"
	"github.com/windoze/editor-core/editor"
	"github.com/windoze/editor-core/intervals"
	"github.com/windoze/editor-core/processing"
	"github.com/windoze/editor-core/symbols"
)

func mustManager(t *testing.T, text string) *Manager {
	t.Helper()
	m, err := New(text, 80)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestExecuteNotifiesSubscribers(t *testing.T) {
	m := mustManager(t, "hello")
	var changes []Change
	m.Subscribe(func(c Change) { changes = append(changes, c) })

	if _, err := m.Execute(editor.InsertText{Text: "!"}); err != nil {
		t.Fatal(err)
	}
	if len(changes) != 2 {
		t.Fatalf("changes = %v", changes)
	}
	if changes[0].Type != editor.ChangeDocument || changes[0].Delta == nil {
		t.Errorf("first change: %+v", changes[0])
	}
	if changes[0].NewVersion <= changes[0].OldVersion {
		t.Errorf("versions did not advance: %+v", changes[0])
	}
	if changes[1].Type != editor.ChangeSelection {
		t.Errorf("second change: %+v", changes[1])
	}
}

func TestFailedCommandDoesNotNotify(t *testing.T) {
	m := mustManager(t, "abc")
	called := false
	m.Subscribe(func(Change) { called = true })
	if _, err := m.Execute(editor.Insert{Offset: 99, Text: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Error("subscriber called on failed command")
	}
}

func TestSubscriptionOrderAndUnsubscribe(t *testing.T) {
	m := mustManager(t, "")
	var order []int
	m.Subscribe(func(Change) { order = append(order, 1) })
	id := m.Subscribe(func(Change) { order = append(order, 2) })
	m.Subscribe(func(Change) { order = append(order, 3) })

	if _, err := m.Execute(editor.InsertText{Text: "a"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 1, 2, 3}, order); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}

	m.Unsubscribe(id)
	order = nil
	if _, err := m.Execute(editor.InsertText{Text: "b"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 3, 1, 3}, order); diff != "" {
		t.Errorf("after unsubscribe (-want +got):\n%s", diff)
	}
}

func TestGetDocumentState(t *testing.T) {
	m := mustManager(t, "a\nb")
	ds := m.GetDocumentState()
	if ds.LineCount != 2 || ds.CharCount != 3 || ds.IsModified {
		t.Errorf("document state: %+v", ds)
	}
	if _, err := m.Execute(editor.InsertText{Text: "x"}); err != nil {
		t.Fatal(err)
	}
	ds = m.GetDocumentState()
	if !ds.IsModified || ds.CharCount != 4 {
		t.Errorf("after edit: %+v", ds)
	}
	m.MarkSaved()
	if m.GetDocumentState().IsModified {
		t.Error("modified after save")
	}
}

func TestApplyProcessingEditsAtomic(t *testing.T) {
	m := mustManager(t, "fn main() {}\n")
	var kinds []editor.ChangeKind
	m.Subscribe(func(c Change) { kinds = append(kinds, c.Type) })

	before := m.Version()
	m.ApplyProcessingEdits([]processing.Edit{
		processing.ReplaceStyleLayer{
			Layer:     intervals.LayerSemanticTokens,
			Intervals: []intervals.Interval{{Start: 0, End: 2, StyleID: 4}},
		},
		processing.ReplaceDiagnostics{
			Diagnostics: []diagnostics.Diagnostic{{
				Range: diagnostics.Range{Start: 3, End: 7}, Severity: diagnostics.SeverityError, Message: "bad name",
			}},
		},
		processing.ReplaceDocumentSymbols{
			Outline: symbols.Outline{Symbols: []symbols.Symbol{{Name: "main", Kind: symbols.KindFunction, Range: symbols.Range{Start: 0, End: 12}}}},
		},
	})

	if m.Version() != before+1 {
		t.Errorf("version bumped %d times, want once", m.Version()-before)
	}
	want := []editor.ChangeKind{editor.ChangeStyles, editor.ChangeDiagnostics, editor.ChangeSymbols}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("notifications (-want +got):\n%s", diff)
	}

	if got := len(m.GetDiagnostics()); got != 1 {
		t.Errorf("diagnostics = %d", got)
	}
	outline := m.GetOutline()
	if outline.IsEmpty() {
		t.Error("outline empty")
	}
	// Diagnostics mirror into the diagnostics style layer.
	styles := m.GetStyleState()
	if len(styles[intervals.LayerDiagnostics]) != 1 {
		t.Errorf("diagnostics style layer: %v", styles[intervals.LayerDiagnostics])
	}
}

func TestClearIdempotence(t *testing.T) {
	m := mustManager(t, "text")
	m.ApplyProcessingEdits([]processing.Edit{
		processing.ReplaceDecorations{Layer: decorations.LayerInlayHints, Decorations: []decorations.Decoration{
			{Range: decorations.Range{Start: 1, End: 1}, Text: "hint"},
		}},
	})
	m.ApplyProcessingEdits([]processing.Edit{processing.ClearDecorations{Layer: decorations.LayerInlayHints}})
	once := m.GetDecorations()
	m.ApplyProcessingEdits([]processing.Edit{processing.ClearDecorations{Layer: decorations.LayerInlayHints}})
	twice := m.GetDecorations()
	if len(once[decorations.LayerInlayHints]) != 0 || len(twice[decorations.LayerInlayHints]) != 0 {
		t.Errorf("clear not idempotent: %v vs %v", once, twice)
	}
}

type stubProcessor struct {
	edits []processing.Edit
	err   error
}

func (p *stubProcessor) Process(*Manager) ([]processing.Edit, error) {
	return p.edits, p.err
}

func TestApplyProcessor(t *testing.T) {
	m := mustManager(t, "body")
	p := &stubProcessor{edits: []processing.Edit{
		processing.ReplaceStyleLayer{Layer: intervals.LayerSimpleSyntax, Intervals: []intervals.Interval{{Start: 0, End: 4, StyleID: 9}}},
	}}
	if err := m.ApplyProcessor(p); err != nil {
		t.Fatal(err)
	}
	if len(m.GetStyleState()[intervals.LayerSimpleSyntax]) != 1 {
		t.Error("processor patch not applied")
	}
}

func TestApplyProcessorFailure(t *testing.T) {
	m := mustManager(t, "body")
	p := &stubProcessor{
		edits: []processing.Edit{processing.ReplaceStyleLayer{Layer: intervals.LayerSimpleSyntax}},
		err:   errors.New("parse exploded"),
	}
	before := m.Version()
	err := m.ApplyProcessor(p)
	if !errors.Is(err, ErrProcessorFailed) {
		t.Fatalf("err = %v, want ErrProcessorFailed", err)
	}
	if m.Version() != before {
		t.Error("failed processor mutated state")
	}
}

func TestViewportState(t *testing.T) {
	m := mustManager(t, "a\nb\nc\nd")
	m.SetScrollTop(1)
	m.SetViewportHeight(2)
	m.SetOverscanRows(1)
	vs := m.GetViewportState()
	if vs.TotalVisualRows != 4 || vs.VisibleStartRow != 1 || vs.VisibleEndRow != 3 {
		t.Errorf("viewport: %+v", vs)
	}
}
