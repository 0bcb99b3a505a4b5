package editor

import (
	"github.com/windoze/editor-core/cursor"
	"github.com/windoze/editor-core/intervals"
	"github.com/windoze/editor-core/layout"
	"github.com/windoze/editor-core/search"
)

// Command is the tagged union dispatched by Execute. The concrete types
// below group into edit, cursor, view, style, and undo/redo families.
type Command interface {
	isCommand()
}

// Position is a logical (line, column) pair, both 0-based and counted in
// characters.
type Position struct {
	Line   int
	Column int
}

// Less orders positions document-wise.
func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// TabBehavior controls what InsertTab produces.
type TabBehavior uint8

const (
	// TabBehaviorTab inserts a literal '\t'.
	TabBehaviorTab TabBehavior = iota
	// TabBehaviorSpaces inserts spaces up to the next tab stop.
	TabBehaviorSpaces
)

// CommentConfig is the language-provided comment syntax for ToggleComment.
type CommentConfig struct {
	// Line is the line-comment token (e.g. "//"). Required.
	Line string
	// BlockStart and BlockEnd delimit block comments; optional.
	BlockStart string
	BlockEnd   string
}

// TextEditSpec is one edit of an ApplyTextEdits batch, in pre-edit
// character offsets.
type TextEditSpec struct {
	Start int
	End   int
	Text  string
}

// Edit commands.

// Insert inserts text at an explicit character offset.
type Insert struct {
	Offset int
	Text   string
}

// Delete removes Length characters starting at Start.
type Delete struct {
	Start  int
	Length int
}

// Replace replaces Length characters at Start with Text.
type Replace struct {
	Start  int
	Length int
	Text   string
}

// InsertText applies typing/paste to every caret: each selection is
// replaced by the text.
type InsertText struct {
	Text string
}

// InsertTab inserts a tab (or spaces) at every caret per the current
// TabBehavior.
type InsertTab struct{}

// InsertNewline inserts a newline at every caret, optionally copying the
// current line's leading whitespace.
type InsertNewline struct {
	AutoIndent bool
}

// Indent indents the selected lines by one tab stop.
type Indent struct{}

// Outdent removes one tab stop of leading whitespace from selected lines.
type Outdent struct{}

// DuplicateLines duplicates the line block of every selection.
type DuplicateLines struct{}

// DeleteLines deletes the line block of every selection.
type DeleteLines struct{}

// MoveLinesUp swaps every selected line block with the line above.
type MoveLinesUp struct{}

// MoveLinesDown swaps every selected line block with the line below.
type MoveLinesDown struct{}

// JoinLines joins each selected line with the following one.
type JoinLines struct{}

// SplitLine inserts a newline at every caret without auto-indent.
type SplitLine struct{}

// ToggleComment toggles line comments on the selected line blocks.
type ToggleComment struct {
	Config CommentConfig
}

// ApplyTextEdits applies a batch of pre-edit-coordinate edits as one undo
// step. Edits must be non-overlapping.
type ApplyTextEdits struct {
	Edits []TextEditSpec
}

// DeleteToPrevTabStop deletes back to the previous tab stop when the caret
// sits in leading whitespace, otherwise behaves like Backspace.
type DeleteToPrevTabStop struct{}

// DeleteGraphemeBack deletes the previous grapheme cluster at every caret.
type DeleteGraphemeBack struct{}

// DeleteGraphemeForward deletes the next grapheme cluster at every caret.
type DeleteGraphemeForward struct{}

// DeleteWordBack deletes to the previous word boundary at every caret.
type DeleteWordBack struct{}

// DeleteWordForward deletes to the next word boundary at every caret.
type DeleteWordForward struct{}

// Backspace deletes selections, or one character before each caret.
type Backspace struct{}

// DeleteForward deletes selections, or one character after each caret.
type DeleteForward struct{}

// ReplaceCurrent replaces the current occurrence of Query at the primary
// selection with Replacement.
type ReplaceCurrent struct {
	Query       string
	Replacement string
	Options     search.Options
}

// ReplaceAll replaces every occurrence of Query with Replacement as one
// undo step.
type ReplaceAll struct {
	Query       string
	Replacement string
	Options     search.Options
}

// Undo reverts the top undo group.
type Undo struct{}

// Redo re-applies the top redo group.
type Redo struct{}

// CommitUndoGroup closes the open undo group.
type CommitUndoGroup struct{}

// Cursor commands. Motions with an Extend field keep the anchor when
// Extend is true (select-to).

// MoveTo places the caret at a logical position.
type MoveTo struct {
	Line   int
	Column int
	Extend bool
}

// MoveBy moves the caret by logical lines and columns.
type MoveBy struct {
	DeltaLine   int
	DeltaColumn int
	Extend      bool
}

// MoveVisualBy moves the caret by visual rows, preserving the sticky
// column.
type MoveVisualBy struct {
	DeltaRows int
	Extend    bool
}

// MoveToVisual places the caret at a visual (row, x) position.
type MoveToVisual struct {
	Row    int
	XCells int
	Extend bool
}

// MoveToLineStart moves to column 0 of the logical line.
type MoveToLineStart struct{ Extend bool }

// MoveToLineEnd moves past the last character of the logical line.
type MoveToLineEnd struct{ Extend bool }

// MoveToVisualLineStart moves to the start of the current wrap segment.
type MoveToVisualLineStart struct{ Extend bool }

// MoveToVisualLineEnd moves to the end of the current wrap segment.
type MoveToVisualLineEnd struct{ Extend bool }

// MoveGraphemeLeft moves one grapheme cluster left.
type MoveGraphemeLeft struct{ Extend bool }

// MoveGraphemeRight moves one grapheme cluster right.
type MoveGraphemeRight struct{ Extend bool }

// MoveWordLeft moves to the previous word boundary.
type MoveWordLeft struct{ Extend bool }

// MoveWordRight moves to the next word boundary.
type MoveWordRight struct{ Extend bool }

// SetSelection sets the primary selection, dropping secondaries.
type SetSelection struct {
	Start Position
	End   Position
}

// ExtendSelection moves the primary selection's head.
type ExtendSelection struct {
	To Position
}

// ClearSelection collapses every selection to its head.
type ClearSelection struct{}

// SetSelections replaces the whole selection set.
type SetSelections struct {
	Selections []cursor.Selection
}

// ClearSecondarySelections keeps only the primary selection.
type ClearSecondarySelections struct{}

// SetRectSelection expands a rectangular span into one selection per line,
// using visual columns so the box stays aligned across tabs and wide
// characters. Columns past a line's end land at the line end.
type SetRectSelection struct {
	Anchor Position
	Active Position
}

// SelectLine selects the whole line block of every selection.
type SelectLine struct{}

// SelectWord selects the word under every empty selection.
type SelectWord struct{}

// ExpandSelection grows empty selections to the word, non-empty ones to
// full lines.
type ExpandSelection struct{}

// AddCursorAbove adds a caret on the line above every caret.
type AddCursorAbove struct{}

// AddCursorBelow adds a caret on the line below every caret.
type AddCursorBelow struct{}

// AddNextOccurrence selects the next occurrence of the primary selection's
// text (or the word under the caret) as an additional selection.
type AddNextOccurrence struct {
	Options search.Options
}

// AddAllOccurrences selects every occurrence of the primary selection's
// text (or the word under the caret).
type AddAllOccurrences struct {
	Options search.Options
}

// FindNext finds and selects the next occurrence of Query after the
// primary selection.
type FindNext struct {
	Query   string
	Options search.Options
}

// FindPrev finds and selects the previous occurrence of Query before the
// primary selection.
type FindPrev struct {
	Query   string
	Options search.Options
}

// View commands.

// SetViewportWidth sets the wrap width in cells.
type SetViewportWidth struct {
	Width int
}

// SetWrapMode sets the soft-wrap mode.
type SetWrapMode struct {
	Mode layout.WrapMode
}

// SetWrapIndent sets the wrapped-line indentation policy.
type SetWrapIndent struct {
	Indent layout.WrapIndent
}

// SetTabWidth sets the tab width in cells.
type SetTabWidth struct {
	Width int
}

// SetTabBehavior configures what InsertTab inserts.
type SetTabBehavior struct {
	Behavior TabBehavior
}

// ToggleFold toggles the fold region containing the line, creating a user
// fold over the given span when none exists.
type ToggleFold struct {
	Line int
}

// Fold creates (and collapses) a user fold region over the line span.
type Fold struct {
	StartLine int
	EndLine   int
}

// Unfold expands the fold region starting at the line.
type Unfold struct {
	StartLine int
}

// UnfoldAll expands every fold region.
type UnfoldAll struct{}

// Style commands.

// AddStyle adds a base-layer style interval.
type AddStyle struct {
	Start   int
	End     int
	StyleID intervals.StyleId
}

// RemoveStyle removes a base-layer style interval.
type RemoveStyle struct {
	Start   int
	End     int
	StyleID intervals.StyleId
}

func (Insert) isCommand()                   {}
func (Delete) isCommand()                   {}
func (Replace) isCommand()                  {}
func (InsertText) isCommand()               {}
func (InsertTab) isCommand()                {}
func (InsertNewline) isCommand()            {}
func (Indent) isCommand()                   {}
func (Outdent) isCommand()                  {}
func (DuplicateLines) isCommand()           {}
func (DeleteLines) isCommand()              {}
func (MoveLinesUp) isCommand()              {}
func (MoveLinesDown) isCommand()            {}
func (JoinLines) isCommand()                {}
func (SplitLine) isCommand()                {}
func (ToggleComment) isCommand()            {}
func (ApplyTextEdits) isCommand()           {}
func (DeleteToPrevTabStop) isCommand()      {}
func (DeleteGraphemeBack) isCommand()       {}
func (DeleteGraphemeForward) isCommand()    {}
func (DeleteWordBack) isCommand()           {}
func (DeleteWordForward) isCommand()        {}
func (Backspace) isCommand()                {}
func (DeleteForward) isCommand()            {}
func (ReplaceCurrent) isCommand()           {}
func (ReplaceAll) isCommand()               {}
func (Undo) isCommand()                     {}
func (Redo) isCommand()                     {}
func (CommitUndoGroup) isCommand()          {}
func (MoveTo) isCommand()                   {}
func (MoveBy) isCommand()                   {}
func (MoveVisualBy) isCommand()             {}
func (MoveToVisual) isCommand()             {}
func (MoveToLineStart) isCommand()          {}
func (MoveToLineEnd) isCommand()            {}
func (MoveToVisualLineStart) isCommand()    {}
func (MoveToVisualLineEnd) isCommand()      {}
func (MoveGraphemeLeft) isCommand()         {}
func (MoveGraphemeRight) isCommand()        {}
func (MoveWordLeft) isCommand()             {}
func (MoveWordRight) isCommand()            {}
func (SetSelection) isCommand()             {}
func (ExtendSelection) isCommand()          {}
func (ClearSelection) isCommand()           {}
func (SetSelections) isCommand()            {}
func (ClearSecondarySelections) isCommand() {}
func (SetRectSelection) isCommand()         {}
func (SelectLine) isCommand()               {}
func (SelectWord) isCommand()               {}
func (ExpandSelection) isCommand()          {}
func (AddCursorAbove) isCommand()           {}
func (AddCursorBelow) isCommand()           {}
func (AddNextOccurrence) isCommand()        {}
func (AddAllOccurrences) isCommand()        {}
func (FindNext) isCommand()                 {}
func (FindPrev) isCommand()                 {}
func (SetViewportWidth) isCommand()         {}
func (SetWrapMode) isCommand()              {}
func (SetWrapIndent) isCommand()            {}
func (SetTabWidth) isCommand()              {}
func (SetTabBehavior) isCommand()           {}
func (ToggleFold) isCommand()               {}
func (Fold) isCommand()                     {}
func (Unfold) isCommand()                   {}
func (UnfoldAll) isCommand()                {}
func (AddStyle) isCommand()                 {}
func (RemoveStyle) isCommand()              {}

// Result carries a command's optional return value. The zero value means
// plain success.
type Result struct {
	// Match is set by find commands.
	Match *search.Match
	// NotFound is set when a find command matched nothing.
	NotFound bool
	// Replaced is the occurrence count for replace commands.
	Replaced int
	// Text is set by commands returning document text.
	Text string
}

// ChangeKind classifies what a command changed, for subscribers.
type ChangeKind uint8

const (
	ChangeDocument ChangeKind = iota + 1
	ChangeSelection
	ChangeViewport
	ChangeStyles
	ChangeFolding
	ChangeDecorations
	ChangeDiagnostics
	ChangeSymbols
)

// String returns a string representation of the change kind.
func (ck ChangeKind) String() string {
	switch ck {
	case ChangeDocument:
		return "document-modified"
	case ChangeSelection:
		return "selection-changed"
	case ChangeViewport:
		return "viewport-changed"
	case ChangeStyles:
		return "styles-changed"
	case ChangeFolding:
		return "folding-changed"
	case ChangeDecorations:
		return "decorations-changed"
	case ChangeDiagnostics:
		return "diagnostics-changed"
	case ChangeSymbols:
		return "symbols-changed"
	default:
		return "unknown"
	}
}

// Event is one state-change notification produced by a command.
type Event struct {
	Kind ChangeKind
	// Region is the affected character range for document changes, when
	// known.
	Region *Range
}

// Range is a half-open character range.
type Range struct {
	Start int
	End   int
}
