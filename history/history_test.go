package history

import (
	"errors"
	"testing"

	"github.com/windoze/editor-core/cursor"
)

func sel(at int) []cursor.Selection {
	return []cursor.Selection{cursor.NewCursor(at)}
}

func TestRecordAndUndoRedo(t *testing.T) {
	h := New(0)
	id1 := h.Record([]TextEdit{{Start: 0, InsertedText: "hello"}}, sel(0), sel(5))
	if id1 == 0 {
		t.Fatal("Record returned group id 0")
	}
	if !h.CanUndo() || h.CanRedo() {
		t.Errorf("CanUndo=%v CanRedo=%v", h.CanUndo(), h.CanRedo())
	}

	g, err := h.PopUndo()
	if err != nil || g.ID != id1 {
		t.Fatalf("PopUndo: %v, %v", g, err)
	}
	if h.CanUndo() || !h.CanRedo() {
		t.Errorf("after undo: CanUndo=%v CanRedo=%v", h.CanUndo(), h.CanRedo())
	}

	g2, err := h.PopRedo()
	if err != nil || g2.ID != id1 {
		t.Fatalf("PopRedo: %v, %v", g2, err)
	}
	if !h.CanUndo() || h.CanRedo() {
		t.Errorf("after redo: CanUndo=%v CanRedo=%v", h.CanUndo(), h.CanRedo())
	}
}

func TestUndoEmpty(t *testing.T) {
	h := New(0)
	if _, err := h.PopUndo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("PopUndo on empty: %v", err)
	}
	if _, err := h.PopRedo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("PopRedo on empty: %v", err)
	}
}

func TestTypingCoalesces(t *testing.T) {
	h := New(0)
	id1 := h.Record([]TextEdit{{Start: 0, InsertedText: "h"}}, sel(0), sel(1))
	id2 := h.Record([]TextEdit{{Start: 1, InsertedText: "i"}}, sel(1), sel(2))
	id3 := h.Record([]TextEdit{{Start: 2, InsertedText: "!"}}, sel(2), sel(3))
	if id1 != id2 || id2 != id3 {
		t.Errorf("sequential typing split groups: %d %d %d", id1, id2, id3)
	}
	if h.UndoDepth() != 1 {
		t.Errorf("UndoDepth() = %d, want 1", h.UndoDepth())
	}
	g, _ := h.PopUndo()
	if len(g.Edits) != 3 {
		t.Errorf("group edits = %d, want 3", len(g.Edits))
	}
}

func TestCursorJumpClosesGroup(t *testing.T) {
	h := New(0)
	h.Record([]TextEdit{{Start: 0, InsertedText: "h"}}, sel(0), sel(1))
	h.CloseGroup() // caret moved
	id2 := h.Record([]TextEdit{{Start: 0, InsertedText: "!"}}, sel(0), sel(1))
	if h.UndoDepth() != 2 {
		t.Fatalf("UndoDepth() = %d, want 2", h.UndoDepth())
	}
	g, _ := h.PopUndo()
	if g.ID != id2 || len(g.Edits) != 1 {
		t.Errorf("top group = %+v", g)
	}
}

func TestNonAdjacentInsertionSplits(t *testing.T) {
	h := New(0)
	id1 := h.Record([]TextEdit{{Start: 0, InsertedText: "a"}}, sel(0), sel(1))
	id2 := h.Record([]TextEdit{{Start: 5, InsertedText: "b"}}, sel(5), sel(6))
	if id1 == id2 {
		t.Error("non-adjacent insertions coalesced")
	}
}

func TestNewlineClosesGroup(t *testing.T) {
	h := New(0)
	id1 := h.Record([]TextEdit{{Start: 0, InsertedText: "a\n"}}, sel(0), sel(2))
	id2 := h.Record([]TextEdit{{Start: 2, InsertedText: "b"}}, sel(2), sel(3))
	if id1 == id2 {
		t.Error("edit after newline coalesced into the newline group")
	}
}

func TestDeletionDoesNotCoalesce(t *testing.T) {
	h := New(0)
	id1 := h.Record([]TextEdit{{Start: 0, InsertedText: "ab"}}, sel(0), sel(2))
	id2 := h.Record([]TextEdit{{Start: 1, End: 2, DeletedText: "b"}}, sel(2), sel(1))
	if id1 == id2 {
		t.Error("deletion coalesced into insertion group")
	}
	// And typing after a deletion starts yet another group.
	id3 := h.Record([]TextEdit{{Start: 1, InsertedText: "c"}}, sel(1), sel(2))
	if id3 == id2 {
		t.Error("insertion coalesced into deletion group")
	}
}

func TestMultiCaretCoalescing(t *testing.T) {
	h := New(0)
	id1 := h.Record([]TextEdit{
		{Start: 11, InsertedText: "!"},
		{Start: 7, InsertedText: "!"},
		{Start: 3, InsertedText: "!"},
	}, nil, nil)
	// Continued typing at the shifted caret positions coalesces.
	id2 := h.Record([]TextEdit{
		{Start: 14, InsertedText: "?"},
		{Start: 9, InsertedText: "?"},
		{Start: 4, InsertedText: "?"},
	}, nil, nil)
	if id1 != id2 {
		t.Errorf("multi-caret typing split groups: %d %d", id1, id2)
	}
	// A batch with a different caret count does not coalesce.
	id3 := h.Record([]TextEdit{{Start: 20, InsertedText: "x"}}, nil, nil)
	if id3 == id2 {
		t.Error("different caret count coalesced")
	}
}

func TestMarkSavedAndIsModified(t *testing.T) {
	h := New(0)
	if h.IsModified() {
		t.Error("fresh history reports modified")
	}
	h.Record([]TextEdit{{Start: 0, InsertedText: "a"}}, sel(0), sel(1))
	if !h.IsModified() {
		t.Error("not modified after edit")
	}
	h.MarkSaved()
	if h.IsModified() {
		t.Error("modified right after save")
	}
	// Save closes the group: typing after save is a fresh step.
	h.Record([]TextEdit{{Start: 1, InsertedText: "b"}}, sel(1), sel(2))
	if !h.IsModified() || h.UndoDepth() != 2 {
		t.Errorf("after post-save edit: modified=%v depth=%d", h.IsModified(), h.UndoDepth())
	}
	// Undoing back to the clean point clears the modified flag.
	if _, err := h.PopUndo(); err != nil {
		t.Fatal(err)
	}
	if h.IsModified() {
		t.Error("modified after undoing to clean point")
	}
}

func TestRecordClearsRedo(t *testing.T) {
	h := New(0)
	h.Record([]TextEdit{{Start: 0, InsertedText: "a"}}, sel(0), sel(1))
	if _, err := h.PopUndo(); err != nil {
		t.Fatal(err)
	}
	h.Record([]TextEdit{{Start: 0, InsertedText: "b"}}, sel(0), sel(1))
	if h.CanRedo() {
		t.Error("redo stack survived a new edit")
	}
}

func TestMaxGroups(t *testing.T) {
	h := New(3)
	for i := 0; i < 5; i++ {
		h.Record([]TextEdit{{Start: i * 2, End: i*2 + 1, DeletedText: "x"}}, nil, nil)
	}
	if h.UndoDepth() != 3 {
		t.Errorf("UndoDepth() = %d, want 3", h.UndoDepth())
	}
}
