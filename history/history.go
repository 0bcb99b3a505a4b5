// Package history implements the undo manager: a stack of edit groups with
// selection snapshots. Grouping is a state machine — the first edit opens a
// group; a commit, a newline, a deletion after insertions, a selection
// jump, or a save closes it; the next edit opens a new one. Consecutive
// adjacent insertions coalesce into the open group.
package history

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/windoze/editor-core/cursor"
)

// Errors returned by undo/redo operations.
var (
	ErrNothingToUndo = errors.New("history: nothing to undo")
	ErrNothingToRedo = errors.New("history: nothing to redo")
)

// TextEdit records one applied edit: the pre-edit character range and the
// exact deleted and inserted texts. Selection snapshots are kept on Group.
type TextEdit struct {
	Start        int
	End          int
	DeletedText  string
	InsertedText string
}

// Group is one undoable step: the edits of a single command batch (or of
// coalesced consecutive typing), with selection snapshots.
type Group struct {
	ID uint64
	// Edits are stored in the order they were applied (descending start
	// per batch).
	Edits []TextEdit
	// SelectionsBefore and SelectionsAfter snapshot the view's selection
	// set around the group.
	SelectionsBefore []cursor.Selection
	SelectionsAfter  []cursor.Selection

	insertOnly bool
}

// History manages the undo and redo stacks of one buffer.
type History struct {
	undo []*Group
	redo []*Group

	open        bool
	nextGroupID uint64

	// insertEnds are the post-edit end offsets of the open group's last
	// insertion batch, used for the coalescing adjacency check.
	insertEnds []int

	cleanGroupID uint64

	maxGroups int
}

// New creates a history with the given group cap (0 means the default).
func New(maxGroups int) *History {
	if maxGroups <= 0 {
		maxGroups = 1000
	}
	return &History{nextGroupID: 1, maxGroups: maxGroups}
}

// CurrentGroupID returns the id of the group on top of the undo stack, or
// 0 when the stack is empty.
func (h *History) CurrentGroupID() uint64 {
	if len(h.undo) == 0 {
		return 0
	}
	return h.undo[len(h.undo)-1].ID
}

// GroupOpen reports whether a group is open for coalescing.
func (h *History) GroupOpen() bool {
	return h.open
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// UndoDepth returns the number of undo groups.
func (h *History) UndoDepth() int {
	return len(h.undo)
}

// RedoDepth returns the number of redo groups.
func (h *History) RedoDepth() int {
	return len(h.redo)
}

// batchIsPureInsertion reports whether every edit only inserts text
// without newlines.
func batchIsPureInsertion(edits []TextEdit) bool {
	for _, e := range edits {
		if e.DeletedText != "" || e.InsertedText == "" {
			return false
		}
		if strings.ContainsRune(e.InsertedText, '\n') {
			return false
		}
	}
	return true
}

// continuesOpenGroup checks the coalescing adjacency rule: each new
// insertion starts exactly where the open group's matching insertion
// ended.
func (h *History) continuesOpenGroup(edits []TextEdit) bool {
	if len(edits) != len(h.insertEnds) {
		return false
	}
	// Batches arrive in descending start order; insertEnds is kept in the
	// same order.
	for i, e := range edits {
		if e.Start != h.insertEnds[i] {
			return false
		}
	}
	return true
}

// recordInsertEnds updates the adjacency state after a coalescible batch.
// Later batches in the same group shift earlier carets; ends are tracked
// per caret in batch order, adjusted by the inserts applied below them.
func (h *History) recordInsertEnds(edits []TextEdit) {
	h.insertEnds = h.insertEnds[:0]
	// Edits are in descending start order. The total shift for caret i is
	// the inserted length of all edits with smaller start (later in the
	// slice).
	shift := 0
	for i := len(edits) - 1; i >= 0; i-- {
		shift += utf8.RuneCountInString(edits[i].InsertedText)
		h.insertEnds = append([]int{edits[i].Start + shift}, h.insertEnds...)
	}
}

// Record adds an applied edit batch to the history. When the open group
// can absorb the batch (pure adjacent insertions), it coalesces; otherwise
// the current group closes and a new one opens. A batch containing a
// newline closes its group immediately. Recording clears the redo stack.
func (h *History) Record(edits []TextEdit, before, after []cursor.Selection) uint64 {
	if len(edits) == 0 {
		return h.CurrentGroupID()
	}
	h.redo = nil

	pureInsert := batchIsPureInsertion(edits)
	containsNewline := false
	for _, e := range edits {
		if strings.ContainsRune(e.InsertedText, '\n') || strings.ContainsRune(e.DeletedText, '\n') {
			containsNewline = true
			break
		}
	}

	if h.open && pureInsert && len(h.undo) > 0 {
		top := h.undo[len(h.undo)-1]
		if top.insertOnly && h.continuesOpenGroup(edits) {
			top.Edits = append(top.Edits, edits...)
			top.SelectionsAfter = cloneSelections(after)
			h.recordInsertEnds(edits)
			return top.ID
		}
	}

	g := &Group{
		ID:               h.nextGroupID,
		Edits:            append([]TextEdit(nil), edits...),
		SelectionsBefore: cloneSelections(before),
		SelectionsAfter:  cloneSelections(after),
		insertOnly:       pureInsert,
	}
	h.nextGroupID++
	h.undo = append(h.undo, g)
	if len(h.undo) > h.maxGroups {
		h.undo = h.undo[len(h.undo)-h.maxGroups:]
	}

	h.open = !containsNewline
	if pureInsert {
		h.recordInsertEnds(edits)
	} else {
		h.open = false
		h.insertEnds = h.insertEnds[:0]
	}
	return g.ID
}

// CloseGroup explicitly closes the open group; the next edit starts a new
// one. Cursor-only commands and commits call this.
func (h *History) CloseGroup() {
	h.open = false
	h.insertEnds = h.insertEnds[:0]
}

// PopUndo closes the open group, pops the top undo group and moves it to
// the redo stack. The caller applies the group's reverse edits.
func (h *History) PopUndo() (*Group, error) {
	if len(h.undo) == 0 {
		return nil, ErrNothingToUndo
	}
	h.CloseGroup()
	g := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, g)
	return g, nil
}

// PopRedo pops the top redo group and moves it back to the undo stack.
// The caller re-applies the group's edits.
func (h *History) PopRedo() (*Group, error) {
	if len(h.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	g := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, g)
	h.CloseGroup()
	return g, nil
}

// MarkSaved records the current position as the clean point and closes the
// open group so post-save typing starts a fresh step.
func (h *History) MarkSaved() {
	h.CloseGroup()
	h.cleanGroupID = h.CurrentGroupID()
}

// IsModified reports whether the document has changed since the last
// MarkSaved.
func (h *History) IsModified() bool {
	return h.CurrentGroupID() != h.cleanGroupID
}

// Clear drops all history and grouping state.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
	h.CloseGroup()
	h.cleanGroupID = 0
}

func cloneSelections(sels []cursor.Selection) []cursor.Selection {
	if sels == nil {
		return nil
	}
	out := make([]cursor.Selection, len(sels))
	copy(out, sels)
	return out
}
