package editor

import (
	"unicode/utf8"

	"github.com/windoze/editor-core/cursor"
	"github.com/windoze/editor-core/layout"
	"github.com/windoze/editor-core/search"
)

// moveHeads applies a motion to every selection: the head moves to
// target(head); the anchor follows unless extend is set.
func (ed *Editor) moveHeads(extend bool, target func(head int) int) {
	ed.sels.Map(func(s cursor.Selection) cursor.Selection {
		head := target(s.Head)
		if extend {
			return s.Extend(head)
		}
		return s.MoveTo(head)
	})
}

// cmdMoveTo moves the primary caret to a logical position, dropping
// secondaries.
func (ed *Editor) cmdMoveTo(line, col int, extend bool) error {
	offset, err := ed.lines.LineColToChar(line, col)
	if err != nil {
		return err
	}
	primary := ed.sels.Primary()
	if extend {
		ed.sels.Set(primary.Extend(offset))
	} else {
		ed.sels.Set(cursor.NewCursor(offset))
	}
	return nil
}

// cmdMoveBy moves every caret by logical lines and columns, clamping to
// line lengths.
func (ed *Editor) cmdMoveBy(dLine, dCol int, extend bool) {
	ed.moveHeads(extend, func(head int) int {
		line, col, err := ed.lines.CharToLineCol(head)
		if err != nil {
			return head
		}
		if dLine != 0 {
			line += dLine
			if line < 0 {
				line = 0
			}
			if line >= ed.lines.LineCount() {
				line = ed.lines.LineCount() - 1
			}
		}
		col += dCol
		if col < 0 {
			col = 0
		}
		offset, err := ed.lines.LineColToChar(line, col)
		if err != nil {
			return head
		}
		return offset
	})
}

// cmdMoveVisualBy moves every caret by visible visual rows, preserving the
// sticky column in cells.
func (ed *Editor) cmdMoveVisualBy(dRows int, extend bool) {
	total := ed.TotalVisualRows()
	ed.sels.Map(func(s cursor.Selection) cursor.Selection {
		line, col, err := ed.lines.CharToLineCol(s.Head)
		if err != nil {
			return s
		}
		row, x, err := ed.LogicalToVisualPos(line, col)
		if err != nil {
			return s
		}
		preferred := s.PreferredX
		if preferred == cursor.NoPreferredX {
			preferred = x
		}
		row += dRows
		if row < 0 {
			row = 0
		}
		if row >= total {
			row = total - 1
		}
		newLine, newCol, err := ed.VisualPosToLogical(row, preferred)
		if err != nil {
			return s
		}
		offset, err := ed.lines.LineColToChar(newLine, newCol)
		if err != nil {
			return s
		}
		if extend {
			return s.Extend(offset).WithPreferredX(preferred)
		}
		return s.MoveTo(offset).WithPreferredX(preferred)
	})
}

// cmdMoveToVisual places the primary caret at a visible (row, x).
func (ed *Editor) cmdMoveToVisual(row, x int, extend bool) error {
	line, col, err := ed.VisualPosToLogical(row, x)
	if err != nil {
		return err
	}
	offset, err := ed.lines.LineColToChar(line, col)
	if err != nil {
		return err
	}
	primary := ed.sels.Primary()
	if extend {
		ed.sels.Set(primary.Extend(offset))
	} else {
		ed.sels.Set(cursor.NewCursor(offset))
	}
	return nil
}

// cmdMoveToLineEdge moves every caret to the start or end of its logical
// line.
func (ed *Editor) cmdMoveToLineEdge(end, extend bool) {
	ed.moveHeads(extend, func(head int) int {
		line, _, err := ed.lines.CharToLineCol(head)
		if err != nil {
			return head
		}
		start, stop, _ := ed.lines.LineCharRange(line)
		if end {
			return stop
		}
		return start
	})
}

// cmdMoveToVisualLineEdge moves every caret to the start or end of its
// wrap segment.
func (ed *Editor) cmdMoveToVisualLineEdge(end, extend bool) {
	ed.sels.Map(func(s cursor.Selection) cursor.Selection {
		line, col, err := ed.lines.CharToLineCol(s.Head)
		if err != nil {
			return s
		}
		seg, err := ed.layout.SegmentForColumn(line, col)
		if err != nil {
			return s
		}
		segStart, segEnd, err := ed.layout.SegmentBounds(line, seg)
		if err != nil {
			return s
		}
		target := segStart
		aff := cursor.AffinityDownstream
		if end {
			target = segEnd
			aff = cursor.AffinityUpstream
		}
		offset, err := ed.lines.LineColToChar(line, target)
		if err != nil {
			return s
		}
		var out cursor.Selection
		if extend {
			out = s.Extend(offset)
		} else {
			out = s.MoveTo(offset)
		}
		out.Affinity = aff
		return out
	})
}

// cmdMoveGrapheme moves every caret one grapheme cluster left or right.
func (ed *Editor) cmdMoveGrapheme(right, extend bool) {
	ed.moveHeads(extend, func(head int) int {
		if right {
			return ed.NextGraphemeOffset(head)
		}
		return ed.PrevGraphemeOffset(head)
	})
}

// cmdMoveWord moves every caret to the previous or next word boundary.
func (ed *Editor) cmdMoveWord(right, extend bool) {
	ed.moveHeads(extend, func(head int) int {
		if right {
			return ed.NextWordOffset(head)
		}
		return ed.PrevWordOffset(head)
	})
}

// cmdSetSelection sets the primary selection from logical positions.
func (ed *Editor) cmdSetSelection(start, end Position) error {
	anchor, err := ed.lines.LineColToChar(start.Line, start.Column)
	if err != nil {
		return err
	}
	head, err := ed.lines.LineColToChar(end.Line, end.Column)
	if err != nil {
		return err
	}
	ed.sels.Set(cursor.NewSelection(anchor, head))
	return nil
}

// cmdExtendSelection moves the primary selection head.
func (ed *Editor) cmdExtendSelection(to Position) error {
	head, err := ed.lines.LineColToChar(to.Line, to.Column)
	if err != nil {
		return err
	}
	ed.sels.Set(ed.sels.Primary().Extend(head))
	return nil
}

// cmdSetSelections replaces the whole selection set.
func (ed *Editor) cmdSetSelections(sels []cursor.Selection) error {
	if len(sels) == 0 {
		return ErrInvalidCommand
	}
	total := ed.table.CharCount()
	for _, s := range sels {
		if s.Start() < 0 || s.End() > total {
			return ErrOutOfRange
		}
	}
	ed.sels.SetAll(sels)
	return nil
}

// cmdSetRectSelection expands a rectangular span into one selection per
// line. The box is aligned in visual cells; columns beyond a line's end
// snap to the line end.
func (ed *Editor) cmdSetRectSelection(anchor, active Position) error {
	if anchor.Line < 0 || anchor.Line >= ed.lines.LineCount() ||
		active.Line < 0 || active.Line >= ed.lines.LineCount() {
		return ErrOutOfRange
	}

	// Fix the box's x extent from the anchor and active columns in cells.
	anchorText, _ := ed.lines.LineText(anchor.Line)
	activeText, _ := ed.lines.LineText(active.Line)
	tabWidth := ed.layout.TabWidth()
	anchorX := layout.VisualXForColumn(anchorText, anchor.Column, tabWidth)
	activeX := layout.VisualXForColumn(activeText, active.Column, tabWidth)

	startLine, endLine := anchor.Line, active.Line
	if startLine > endLine {
		startLine, endLine = endLine, startLine
	}

	sels := make([]cursor.Selection, 0, endLine-startLine+1)
	for l := startLine; l <= endLine; l++ {
		text, _ := ed.lines.LineText(l)
		aCol := columnForVisualX(text, anchorX, tabWidth)
		hCol := columnForVisualX(text, activeX, tabWidth)
		aOff, err := ed.lines.LineColToChar(l, aCol)
		if err != nil {
			return err
		}
		hOff, err := ed.lines.LineColToChar(l, hCol)
		if err != nil {
			return err
		}
		sels = append(sels, cursor.NewSelection(aOff, hOff))
	}
	ed.sels.SetAll(sels)
	return nil
}

func columnForVisualX(text string, targetX, tabWidth int) int {
	x := 0
	col := 0
	for _, r := range text {
		w := layout.CellWidthAt(r, x, tabWidth)
		if x+w > targetX {
			return col
		}
		x += w
		col++
	}
	return col
}

// cmdSelectLine selects the whole line block of every selection.
func (ed *Editor) cmdSelectLine() {
	ed.sels.Map(func(s cursor.Selection) cursor.Selection {
		startLine, _, err := ed.lines.CharToLineCol(s.Start())
		if err != nil {
			return s
		}
		endLine, _, err := ed.lines.CharToLineCol(s.End())
		if err != nil {
			return s
		}
		start, _ := ed.lines.LineStart(startLine)
		_, end, _ := ed.lines.LineCharRange(endLine)
		if endLine < ed.lines.LineCount()-1 {
			end++ // include the newline
		}
		return cursor.NewSelection(start, end)
	})
}

// cmdSelectWord selects the word under every empty selection.
func (ed *Editor) cmdSelectWord() {
	ed.sels.Map(func(s cursor.Selection) cursor.Selection {
		if !s.IsEmpty() {
			return s
		}
		start, end := ed.WordRangeAt(s.Head)
		if start == end {
			return s
		}
		return cursor.NewSelection(start, end)
	})
}

// cmdExpandSelection grows empty selections to words and non-empty ones to
// whole lines.
func (ed *Editor) cmdExpandSelection() {
	if !ed.sels.HasSelection() {
		ed.cmdSelectWord()
		return
	}
	ed.cmdSelectLine()
}

// addCursorVertical adds a caret one line above or below every caret at
// the same visual column.
func (ed *Editor) addCursorVertical(below bool) {
	existing := ed.sels.All()
	added := make([]cursor.Selection, 0, len(existing))
	for _, s := range existing {
		line, col, err := ed.lines.CharToLineCol(s.Head)
		if err != nil {
			continue
		}
		target := line - 1
		if below {
			target = line + 1
		}
		if target < 0 || target >= ed.lines.LineCount() {
			continue
		}
		text, _ := ed.lines.LineText(line)
		targetText, _ := ed.lines.LineText(target)
		tabWidth := ed.layout.TabWidth()
		x := layout.VisualXForColumn(text, col, tabWidth)
		targetCol := columnForVisualX(targetText, x, tabWidth)
		offset, err := ed.lines.LineColToChar(target, targetCol)
		if err != nil {
			continue
		}
		added = append(added, cursor.NewCursor(offset))
	}
	for _, s := range added {
		ed.sels.Add(s)
	}
}

// primaryQueryText returns the text the occurrence commands search for:
// the primary selection's text, or the word under the caret (selecting it
// first).
func (ed *Editor) primaryQueryText() (string, bool) {
	primary := ed.sels.Primary()
	if primary.IsEmpty() {
		start, end := ed.WordRangeAt(primary.Head)
		if start == end {
			return "", false
		}
		ed.sels.Set(cursor.NewSelection(start, end))
		primary = ed.sels.Primary()
	}
	text, err := ed.table.TextRange(primary.Start(), primary.End())
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}

// cmdAddNextOccurrence adds the next occurrence of the primary selection's
// text as a new selection.
func (ed *Editor) cmdAddNextOccurrence(opts search.Options) (Result, error) {
	query, ok := ed.primaryQueryText()
	if !ok {
		return Result{NotFound: true}, nil
	}
	doc := ed.Text()

	// Search after the last selection, wrapping around once.
	all := ed.sels.All()
	from := all[len(all)-1].End()
	m, found, err := search.FindNext(doc, query, opts, from)
	if err != nil {
		return Result{}, err
	}
	if !found {
		m, found, err = search.FindNext(doc, query, opts, 0)
		if err != nil {
			return Result{}, err
		}
	}
	if !found {
		return Result{NotFound: true}, nil
	}
	ed.sels.Add(cursor.NewSelection(m.Start, m.End))
	return Result{Match: &m}, nil
}

// cmdAddAllOccurrences selects every occurrence of the primary selection's
// text.
func (ed *Editor) cmdAddAllOccurrences(opts search.Options) (Result, error) {
	query, ok := ed.primaryQueryText()
	if !ok {
		return Result{NotFound: true}, nil
	}
	matches, err := search.FindAll(ed.Text(), query, opts)
	if err != nil {
		return Result{}, err
	}
	if len(matches) == 0 {
		return Result{NotFound: true}, nil
	}
	sels := make([]cursor.Selection, 0, len(matches))
	for _, m := range matches {
		sels = append(sels, cursor.NewSelection(m.Start, m.End))
	}
	ed.sels.SetAll(sels)
	return Result{Replaced: len(matches)}, nil
}

// cmdFind finds and selects the next or previous occurrence of query
// relative to the primary selection.
func (ed *Editor) cmdFind(query string, opts search.Options, backward bool) (Result, error) {
	doc := ed.Text()
	primary := ed.sels.Primary()

	var m search.Match
	var found bool
	var err error
	if backward {
		m, found, err = search.FindPrev(doc, query, opts, primary.Start())
	} else {
		m, found, err = search.FindNext(doc, query, opts, primary.End())
	}
	if err != nil {
		return Result{}, err
	}
	if !found {
		// Wrap around.
		if backward {
			m, found, err = search.FindPrev(doc, query, opts, utf8.RuneCountInString(doc))
		} else {
			m, found, err = search.FindNext(doc, query, opts, 0)
		}
		if err != nil {
			return Result{}, err
		}
	}
	if !found {
		return Result{NotFound: true}, nil
	}
	ed.sels.Set(cursor.NewSelection(m.Start, m.End))
	return Result{Match: &m}, nil
}
