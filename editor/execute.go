package editor

import (
	"github.com/windoze/editor-core/intervals"
)

// Execute interprets a command against the editor. It returns the
// command's result and the state-change events to deliver to subscribers.
// Errors leave the editor unchanged and produce no events.
func (ed *Editor) Execute(cmd Command) (Result, []Event, error) {
	switch c := cmd.(type) {
	// Edit commands.
	case Insert:
		return ed.editResult(ed.applyTuplesChecked([]editTuple{{start: c.Offset, end: c.Offset, text: normalizeNewlines(c.Text)}}))
	case Delete:
		return ed.editResult(ed.applyTuplesChecked([]editTuple{{start: c.Start, end: c.Start + c.Length}}))
	case Replace:
		return ed.editResult(ed.applyTuplesChecked([]editTuple{{start: c.Start, end: c.Start + c.Length, text: normalizeNewlines(c.Text)}}))
	case InsertText:
		return ed.editResult(ed.cmdInsertText(c.Text))
	case InsertTab:
		return ed.editResult(ed.cmdInsertTab())
	case InsertNewline:
		return ed.editResult(ed.cmdInsertNewline(c.AutoIndent))
	case SplitLine:
		return ed.editResult(ed.cmdInsertNewline(false))
	case Indent:
		return ed.editResult(ed.cmdIndent())
	case Outdent:
		return ed.editResult(ed.cmdOutdent())
	case DuplicateLines:
		return ed.editResult(ed.cmdDuplicateLines())
	case DeleteLines:
		return ed.editResult(ed.cmdDeleteLines())
	case MoveLinesUp:
		return ed.editResult(ed.cmdMoveLines(true))
	case MoveLinesDown:
		return ed.editResult(ed.cmdMoveLines(false))
	case JoinLines:
		return ed.editResult(ed.cmdJoinLines())
	case ToggleComment:
		return ed.editResult(ed.cmdToggleComment(c.Config))
	case ApplyTextEdits:
		return ed.editResult(ed.cmdApplyTextEdits(c.Edits))
	case DeleteToPrevTabStop:
		return ed.editResult(ed.cmdDeleteToPrevTabStop())
	case DeleteGraphemeBack:
		return ed.editResult(ed.cmdDeleteGrapheme(true))
	case DeleteGraphemeForward:
		return ed.editResult(ed.cmdDeleteGrapheme(false))
	case DeleteWordBack:
		return ed.editResult(ed.cmdDeleteWord(true))
	case DeleteWordForward:
		return ed.editResult(ed.cmdDeleteWord(false))
	case Backspace:
		return ed.editResult(ed.cmdBackspace())
	case DeleteForward:
		return ed.editResult(ed.cmdDeleteForward())
	case ReplaceCurrent:
		res, r, err := ed.cmdReplaceCurrent(c.Query, c.Replacement, c.Options)
		if err != nil {
			return Result{}, nil, err
		}
		if res.NotFound {
			return res, nil, nil
		}
		return res, documentEvents(r), nil
	case ReplaceAll:
		res, r, err := ed.cmdReplaceAll(c.Query, c.Replacement, c.Options)
		if err != nil {
			return Result{}, nil, err
		}
		if res.NotFound {
			return res, nil, nil
		}
		return res, documentEvents(r), nil

	// Undo/redo.
	case Undo:
		return ed.editResult(ed.cmdUndo())
	case Redo:
		return ed.editResult(ed.cmdRedo())
	case CommitUndoGroup:
		ed.hist.CloseGroup()
		return Result{}, nil, nil

	// Cursor commands. Every cursor command closes the open undo group
	// (a selection jump ends coalescing).
	case MoveTo:
		return ed.cursorResult(ed.cmdMoveTo(c.Line, c.Column, c.Extend))
	case MoveBy:
		ed.cmdMoveBy(c.DeltaLine, c.DeltaColumn, c.Extend)
		return ed.cursorResult(nil)
	case MoveVisualBy:
		ed.cmdMoveVisualBy(c.DeltaRows, c.Extend)
		return ed.cursorResult(nil)
	case MoveToVisual:
		return ed.cursorResult(ed.cmdMoveToVisual(c.Row, c.XCells, c.Extend))
	case MoveToLineStart:
		ed.cmdMoveToLineEdge(false, c.Extend)
		return ed.cursorResult(nil)
	case MoveToLineEnd:
		ed.cmdMoveToLineEdge(true, c.Extend)
		return ed.cursorResult(nil)
	case MoveToVisualLineStart:
		ed.cmdMoveToVisualLineEdge(false, c.Extend)
		return ed.cursorResult(nil)
	case MoveToVisualLineEnd:
		ed.cmdMoveToVisualLineEdge(true, c.Extend)
		return ed.cursorResult(nil)
	case MoveGraphemeLeft:
		ed.cmdMoveGrapheme(false, c.Extend)
		return ed.cursorResult(nil)
	case MoveGraphemeRight:
		ed.cmdMoveGrapheme(true, c.Extend)
		return ed.cursorResult(nil)
	case MoveWordLeft:
		ed.cmdMoveWord(false, c.Extend)
		return ed.cursorResult(nil)
	case MoveWordRight:
		ed.cmdMoveWord(true, c.Extend)
		return ed.cursorResult(nil)
	case SetSelection:
		return ed.cursorResult(ed.cmdSetSelection(c.Start, c.End))
	case ExtendSelection:
		return ed.cursorResult(ed.cmdExtendSelection(c.To))
	case ClearSelection:
		ed.sels.CollapseAll()
		return ed.cursorResult(nil)
	case SetSelections:
		return ed.cursorResult(ed.cmdSetSelections(c.Selections))
	case ClearSecondarySelections:
		ed.sels.ClearSecondary()
		return ed.cursorResult(nil)
	case SetRectSelection:
		return ed.cursorResult(ed.cmdSetRectSelection(c.Anchor, c.Active))
	case SelectLine:
		ed.cmdSelectLine()
		return ed.cursorResult(nil)
	case SelectWord:
		ed.cmdSelectWord()
		return ed.cursorResult(nil)
	case ExpandSelection:
		ed.cmdExpandSelection()
		return ed.cursorResult(nil)
	case AddCursorAbove:
		ed.addCursorVertical(false)
		return ed.cursorResult(nil)
	case AddCursorBelow:
		ed.addCursorVertical(true)
		return ed.cursorResult(nil)
	case AddNextOccurrence:
		res, err := ed.cmdAddNextOccurrence(c.Options)
		if err != nil {
			return Result{}, nil, err
		}
		_, evs, _ := ed.cursorResult(nil)
		return res, evs, nil
	case AddAllOccurrences:
		res, err := ed.cmdAddAllOccurrences(c.Options)
		if err != nil {
			return Result{}, nil, err
		}
		_, evs, _ := ed.cursorResult(nil)
		return res, evs, nil
	case FindNext:
		res, err := ed.cmdFind(c.Query, c.Options, false)
		if err != nil {
			return Result{}, nil, err
		}
		_, evs, _ := ed.cursorResult(nil)
		return res, evs, nil
	case FindPrev:
		res, err := ed.cmdFind(c.Query, c.Options, true)
		if err != nil {
			return Result{}, nil, err
		}
		_, evs, _ := ed.cursorResult(nil)
		return res, evs, nil

	// View commands.
	case SetViewportWidth:
		if c.Width < 1 {
			return Result{}, nil, ErrInvalidCommand
		}
		ed.layout.SetViewportWidth(c.Width)
		return Result{}, []Event{{Kind: ChangeViewport}}, nil
	case SetWrapMode:
		ed.layout.SetWrapMode(c.Mode)
		return Result{}, []Event{{Kind: ChangeViewport}}, nil
	case SetWrapIndent:
		ed.layout.SetWrapIndent(c.Indent)
		return Result{}, []Event{{Kind: ChangeViewport}}, nil
	case SetTabWidth:
		if c.Width < 1 {
			return Result{}, nil, ErrInvalidCommand
		}
		ed.layout.SetTabWidth(c.Width)
		return Result{}, []Event{{Kind: ChangeViewport}}, nil
	case SetTabBehavior:
		ed.tabBehavior = c.Behavior
		return Result{}, nil, nil
	case ToggleFold:
		if c.Line < 0 || c.Line >= ed.lines.LineCount() {
			return Result{}, nil, ErrOutOfRange
		}
		if !ed.folds.ToggleAt(c.Line) {
			return Result{}, nil, ErrInvalidCommand
		}
		ed.version++
		return Result{}, []Event{{Kind: ChangeFolding}}, nil
	case Fold:
		if c.StartLine < 0 || c.EndLine >= ed.lines.LineCount() || c.StartLine > c.EndLine {
			return Result{}, nil, ErrOutOfRange
		}
		ed.folds.AddUserRegion(intervals.FoldRegion{StartLine: c.StartLine, EndLine: c.EndLine, Collapsed: true})
		ed.version++
		return Result{}, []Event{{Kind: ChangeFolding}}, nil
	case Unfold:
		if !ed.folds.ExpandAt(c.StartLine) {
			return Result{}, nil, ErrInvalidCommand
		}
		ed.version++
		return Result{}, []Event{{Kind: ChangeFolding}}, nil
	case UnfoldAll:
		ed.folds.ExpandAll()
		ed.version++
		return Result{}, []Event{{Kind: ChangeFolding}}, nil

	// Style commands.
	case AddStyle:
		if c.Start < 0 || c.Start > c.End || c.End > ed.table.CharCount() {
			return Result{}, nil, ErrOutOfRange
		}
		ed.styles.Layer(intervals.LayerBase).Insert(intervals.NewInterval(c.Start, c.End, c.StyleID))
		ed.version++
		return Result{}, []Event{{Kind: ChangeStyles}}, nil
	case RemoveStyle:
		if !ed.styles.Layer(intervals.LayerBase).Remove(c.Start, c.End, c.StyleID) {
			return Result{}, nil, ErrInvalidCommand
		}
		ed.version++
		return Result{}, []Event{{Kind: ChangeStyles}}, nil

	default:
		return Result{}, nil, ErrInvalidCommand
	}
}

// applyTuplesChecked wraps applyTuples for the single-edit commands.
func (ed *Editor) applyTuplesChecked(tuples []editTuple) (Range, error) {
	return ed.applyTuples(tuples, false, true)
}

// editResult converts an edit outcome into events. No-op edits produce
// none.
func (ed *Editor) editResult(r Range, err error) (Result, []Event, error) {
	if err != nil {
		return Result{}, nil, err
	}
	if r.Start < 0 {
		return Result{}, nil, nil
	}
	return Result{}, documentEvents(r), nil
}

func documentEvents(r Range) []Event {
	region := r
	return []Event{
		{Kind: ChangeDocument, Region: &region},
		{Kind: ChangeSelection},
	}
}

// cursorResult closes the undo group and reports a selection change.
func (ed *Editor) cursorResult(err error) (Result, []Event, error) {
	if err != nil {
		return Result{}, nil, err
	}
	ed.hist.CloseGroup()
	return Result{}, []Event{{Kind: ChangeSelection}}, nil
}
