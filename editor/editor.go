// Package editor implements the buffer core and its command executor. An
// Editor aggregates the piece-table storage, the line index, the soft-wrap
// layout, the overlay tables, the selection set, and the undo manager, and
// keeps them consistent through every edit: storage and line index apply
// the same edits, overlays shift, layout invalidates exactly the affected
// lines, selections transform, history records, and one TextDelta is
// buffered for incremental consumers.
package editor

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/windoze/editor-core/cursor"
	"github.com/windoze/editor-core/decorations"
	"github.com/windoze/editor-core/delta"
	"github.com/windoze/editor-core/diagnostics"
	"github.com/windoze/editor-core/history"
	"github.com/windoze/editor-core/intervals"
	"github.com/windoze/editor-core/layout"
	"github.com/windoze/editor-core/lineindex"
	"github.com/windoze/editor-core/storage"
	"github.com/windoze/editor-core/symbols"
)

// Errors returned by the editor. Range and encoding failures reuse the
// storage sentinels.
var (
	ErrOutOfRange     = storage.ErrOutOfRange
	ErrInvalidUTF8    = storage.ErrInvalidUTF8
	ErrInvalidCommand = errors.New("editor: invalid command")
	ErrEditsOverlap   = errors.New("editor: edits overlap")
)

// Editor is the buffer core for one view: document state shared by all
// views lives here together with this view's selection set and layout.
type Editor struct {
	table  *storage.PieceTable
	lines  *lineindex.LineIndex
	layout *layout.Engine

	styles *intervals.LayerSet
	folds  *intervals.Folding
	decs   *decorations.Set
	diags  *diagnostics.Set
	out    symbols.Outline

	sels *cursor.Set
	hist *history.History

	lastDelta *delta.TextDelta
	version   uint64

	lineEnding  LineEnding
	uri         string
	tabBehavior TabBehavior

	layoutOpts []layout.Option
}

// EditorOption configures a new editor.
type EditorOption func(*Editor)

// WithURI attaches a document URI.
func WithURI(uri string) EditorOption {
	return func(ed *Editor) { ed.uri = uri }
}

// WithTabBehavior sets the InsertTab behavior.
func WithTabBehavior(tb TabBehavior) EditorOption {
	return func(ed *Editor) { ed.tabBehavior = tb }
}

// WithLayout configures the layout engine (tab width, wrap mode, indent).
func WithLayout(opts ...layout.Option) EditorOption {
	return func(ed *Editor) {
		ed.layoutOpts = append(ed.layoutOpts, opts...)
	}
}

// New creates an editor for the given text and viewport width. The text is
// LF-normalized; the original line-ending preference is kept as metadata.
// Returns ErrInvalidUTF8 for invalid input.
func New(text string, viewportWidth int, opts ...EditorOption) (*Editor, error) {
	le := DetectLineEnding(text)
	normalized := normalizeNewlines(text)

	table, err := storage.New(normalized)
	if err != nil {
		return nil, err
	}

	ed := &Editor{
		table:      table,
		lines:      lineindex.FromText(normalized),
		styles:     intervals.NewLayerSet(),
		folds:      intervals.NewFolding(),
		decs:       decorations.NewSet(),
		diags:      diagnostics.NewSet(),
		sels:       cursor.NewSet(),
		hist:       history.New(0),
		lineEnding: le,
	}
	for _, opt := range opts {
		opt(ed)
	}
	ed.layout = layout.NewEngine(viewportWidth, ed.layoutOpts...)
	ed.syncLayoutFromLines()
	return ed, nil
}

// Empty creates an editor over the empty document.
func Empty(viewportWidth int, opts ...EditorOption) *Editor {
	ed, _ := New("", viewportWidth, opts...)
	return ed
}

func (ed *Editor) syncLayoutFromLines() {
	lines := make([]string, ed.lines.LineCount())
	for i := range lines {
		lines[i], _ = ed.lines.LineText(i)
	}
	ed.layout.SetLines(lines)
}

// Document queries.

// Text returns the whole LF-normalized document.
func (ed *Editor) Text() string {
	return ed.table.Text()
}

// TextForSaving returns the document converted to the stored line-ending
// preference.
func (ed *Editor) TextForSaving() string {
	return applyLineEnding(ed.table.Text(), ed.lineEnding)
}

// TextRange returns the text of the half-open character range.
func (ed *Editor) TextRange(start, end int) (string, error) {
	return ed.table.TextRange(start, end)
}

// CharCount returns the document length in characters.
func (ed *Editor) CharCount() int {
	return ed.table.CharCount()
}

// LineCount returns the number of logical lines.
func (ed *Editor) LineCount() int {
	return ed.lines.LineCount()
}

// LineText returns the text of a logical line without its newline.
func (ed *Editor) LineText(line int) (string, error) {
	return ed.lines.LineText(line)
}

// LineCharRange returns the character range of a line's text.
func (ed *Editor) LineCharRange(line int) (start, end int, err error) {
	return ed.lines.LineCharRange(line)
}

// CharToLineCol converts a character offset to a logical position.
func (ed *Editor) CharToLineCol(offset int) (Position, error) {
	line, col, err := ed.lines.CharToLineCol(offset)
	return Position{Line: line, Column: col}, err
}

// LineColToChar converts a logical position to a character offset.
func (ed *Editor) LineColToChar(p Position) (int, error) {
	return ed.lines.LineColToChar(p.Line, p.Column)
}

// Version returns the document version, bumped on every mutation.
func (ed *Editor) Version() uint64 {
	return ed.version
}

// IsModified reports whether the document differs from the last MarkSaved.
func (ed *Editor) IsModified() bool {
	return ed.hist.IsModified()
}

// MarkSaved records the clean point and closes the open undo group.
func (ed *Editor) MarkSaved() {
	ed.hist.MarkSaved()
}

// URI returns the document URI, if any.
func (ed *Editor) URI() string {
	return ed.uri
}

// SetURI sets the document URI.
func (ed *Editor) SetURI(uri string) {
	ed.uri = uri
}

// LineEnding returns the preferred save-time line ending.
func (ed *Editor) LineEnding() LineEnding {
	return ed.lineEnding
}

// SetLineEnding sets the preferred save-time line ending.
func (ed *Editor) SetLineEnding(le LineEnding) {
	ed.lineEnding = le
}

// TabBehavior returns the InsertTab behavior.
func (ed *Editor) TabBehavior() TabBehavior {
	return ed.tabBehavior
}

// SetTabBehavior sets the InsertTab behavior.
func (ed *Editor) SetTabBehavior(tb TabBehavior) {
	ed.tabBehavior = tb
}

// Selections returns the view's selection set.
func (ed *Editor) Selections() *cursor.Set {
	return ed.sels
}

// Styles returns the style layer set.
func (ed *Editor) Styles() *intervals.LayerSet {
	return ed.styles
}

// Folds returns the folding manager.
func (ed *Editor) Folds() *intervals.Folding {
	return ed.folds
}

// Decorations returns the decoration set.
func (ed *Editor) Decorations() *decorations.Set {
	return ed.decs
}

// Diagnostics returns the diagnostic set.
func (ed *Editor) Diagnostics() *diagnostics.Set {
	return ed.diags
}

// Outline returns the document symbol outline.
func (ed *Editor) Outline() symbols.Outline {
	return ed.out
}

// SetOutline replaces the document symbol outline. The caller bumps the
// version (derived-state patches bump once per atomic application).
func (ed *Editor) SetOutline(o symbols.Outline) {
	ed.out = o
}

// BumpVersion advances the document version for out-of-band derived-state
// mutations.
func (ed *Editor) BumpVersion() {
	ed.version++
}

// Layout returns the layout engine.
func (ed *Editor) Layout() *layout.Engine {
	return ed.layout
}

// History returns the undo manager.
func (ed *Editor) History() *history.History {
	return ed.hist
}

// CanUndo reports whether undo is available.
func (ed *Editor) CanUndo() bool { return ed.hist.CanUndo() }

// CanRedo reports whether redo is available.
func (ed *Editor) CanRedo() bool { return ed.hist.CanRedo() }

// TakeLastTextDelta returns and clears the buffered delta.
func (ed *Editor) TakeLastTextDelta() *delta.TextDelta {
	d := ed.lastDelta
	ed.lastDelta = nil
	return d
}

// LastTextDelta returns the buffered delta without clearing it.
func (ed *Editor) LastTextDelta() *delta.TextDelta {
	return ed.lastDelta
}

// Compact rewrites storage against a fresh add buffer.
func (ed *Editor) Compact() {
	ed.table.Compact()
}

// noEdit marks a command that turned out to be a no-op; no delta is
// buffered and no document event is emitted.
var noEdit = Range{Start: -1, End: -1}

// editTuple is one resolved edit of a batch, in pre-batch character
// offsets.
type editTuple struct {
	start, end int
	text       string
}

func (t editTuple) insertedLen() int {
	return utf8.RuneCountInString(t.text)
}

// validateTuples checks bounds, descending order, and non-overlap.
func (ed *Editor) validateTuples(tuples []editTuple) error {
	total := ed.table.CharCount()
	for i, t := range tuples {
		if t.start < 0 || t.start > t.end || t.end > total {
			return fmt.Errorf("%w: edit [%d, %d) of %d chars", ErrOutOfRange, t.start, t.end, total)
		}
		if i > 0 && t.end > tuples[i-1].start {
			return ErrEditsOverlap
		}
	}
	return nil
}

// applyTuples runs the edit pipeline for a batch of descending,
// non-overlapping tuples: storage, line index, layout, overlay shift,
// selection transform, history, and the delta slot.
//
// When replaceSelections is true each tuple corresponds to one selection
// and the new caret lands at the end of its inserted text; otherwise
// existing selections transform through the edits.
//
// record=false (undo/redo) skips history recording.
func (ed *Editor) applyTuples(tuples []editTuple, replaceSelections, record bool) (Range, error) {
	if err := ed.validateTuples(tuples); err != nil {
		return Range{}, err
	}
	if len(tuples) == 0 {
		return noEdit, nil
	}

	selectionsBefore := ed.sels.All()
	beforeChars := ed.table.CharCount()
	beforeVersion := ed.version

	edits := make([]history.TextEdit, 0, len(tuples))
	deltaEdits := make([]delta.Edit, 0, len(tuples))

	for _, t := range tuples {
		deleted, err := ed.table.TextRange(t.start, t.end)
		if err != nil {
			return Range{}, err
		}

		startLine, startCol, _ := ed.lines.CharToLineCol(t.start)
		endLine, _, _ := ed.lines.CharToLineCol(t.end)

		if err := ed.table.Delete(t.start, t.end); err != nil {
			return Range{}, err
		}
		if err := ed.table.Insert(t.start, t.text); err != nil {
			return Range{}, err
		}
		if err := ed.lines.Delete(t.start, t.end); err != nil {
			return Range{}, err
		}
		if err := ed.lines.Insert(t.start, t.text); err != nil {
			return Range{}, err
		}

		// Relayout exactly the affected logical lines.
		insertedNewlines := strings.Count(t.text, "\n")
		newTexts := make([]string, insertedNewlines+1)
		for i := range newTexts {
			newTexts[i], _ = ed.lines.LineText(startLine + i)
		}
		if err := ed.layout.ReplaceLines(startLine, endLine-startLine+1, newTexts); err != nil {
			return Range{}, err
		}

		// Shift every overlay for this edit.
		insLen := t.insertedLen()
		ed.styles.ShiftForEdit(t.start, t.end, insLen)
		ed.decs.ShiftForEdit(t.start, t.end, insLen)
		ed.diags.ShiftForEdit(t.start, t.end, insLen)

		lineDelta := insertedNewlines - strings.Count(deleted, "\n")
		if lineDelta != 0 {
			foldEditLine := startLine
			if startCol > 0 {
				foldEditLine++
			}
			ed.folds.ApplyLineDelta(foldEditLine, lineDelta)
		}

		if !replaceSelections {
			cursor.TransformSet(ed.sels, cursor.EditSpan{Start: t.start, End: t.end, InsertedLen: insLen})
		}

		edits = append(edits, history.TextEdit{
			Start: t.start, End: t.end,
			DeletedText: deleted, InsertedText: t.text,
		})
		deltaEdits = append(deltaEdits, delta.Edit{
			Start: t.start, DeletedText: deleted, InsertedText: t.text,
		})
	}

	ed.folds.ClampToLineCount(ed.lines.LineCount())

	if replaceSelections {
		// Tuples are descending; walk them ascending accumulating the
		// length deltas below each caret.
		newSels := make([]cursor.Selection, 0, len(tuples))
		shift := 0
		for i := len(tuples) - 1; i >= 0; i-- {
			t := tuples[i]
			head := t.start + shift + t.insertedLen()
			newSels = append(newSels, cursor.NewCursor(head))
			shift += t.insertedLen() - (t.end - t.start)
		}
		ed.sels.SetAll(newSels)
	} else {
		ed.sels.Clamp(ed.table.CharCount())
	}

	ed.version++

	var groupID uint64
	wasOpen := ed.hist.GroupOpen()
	if record {
		groupID = ed.hist.Record(edits, selectionsBefore, ed.sels.All())
	}

	d := &delta.TextDelta{
		BeforeVersion:   beforeVersion,
		AfterVersion:    ed.version,
		GroupID:         groupID,
		Edits:           deltaEdits,
		BeforeCharCount: beforeChars,
		AfterCharCount:  ed.table.CharCount(),
	}
	if ed.lastDelta != nil && wasOpen && record && ed.lastDelta.GroupID == groupID {
		ed.lastDelta.Concat(d)
	} else {
		ed.lastDelta = d
	}

	affected := Range{Start: tuples[len(tuples)-1].start, End: tuples[0].start + tuples[0].insertedLen()}
	return affected, nil
}

// checkConsistency verifies the piece table and line index agree; used by
// tests after command sequences.
func (ed *Editor) checkConsistency() error {
	if ed.table.Text() != ed.lines.Text() {
		return errors.New("editor: piece table and line index disagree")
	}
	if ed.table.CharCount() != ed.lines.CharCount() {
		return errors.New("editor: char counts disagree")
	}
	return nil
}
