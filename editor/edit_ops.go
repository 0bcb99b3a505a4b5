package editor

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/windoze/editor-core/cursor"
	"github.com/windoze/editor-core/delta"
	"github.com/windoze/editor-core/layout"
	"github.com/windoze/editor-core/search"
)

// selectionsDescending returns the selection set sorted by start,
// highest first.
func (ed *Editor) selectionsDescending() []cursor.Selection {
	sels := ed.sels.All()
	for i, j := 0, len(sels)-1; i < j; i, j = i+1, j-1 {
		sels[i], sels[j] = sels[j], sels[i]
	}
	return sels
}

// insertAtEveryCursor builds one tuple per selection, computing the text
// per selection, and applies them as a single undo step with each caret
// landing after its insertion.
func (ed *Editor) insertAtEveryCursor(textFor func(sel cursor.Selection) string) (Range, error) {
	sels := ed.selectionsDescending()
	tuples := make([]editTuple, 0, len(sels))
	for _, s := range sels {
		tuples = append(tuples, editTuple{start: s.Start(), end: s.End(), text: normalizeNewlines(textFor(s))})
	}
	return ed.applyTuples(tuples, true, true)
}

// cmdInsertText applies typing/paste at every caret.
func (ed *Editor) cmdInsertText(text string) (Range, error) {
	return ed.insertAtEveryCursor(func(cursor.Selection) string { return text })
}

// cmdInsertTab inserts a tab or spaces up to the next tab stop.
func (ed *Editor) cmdInsertTab() (Range, error) {
	tabWidth := ed.layout.TabWidth()
	return ed.insertAtEveryCursor(func(s cursor.Selection) string {
		if ed.tabBehavior == TabBehaviorTab {
			return "\t"
		}
		line, col, err := ed.lines.CharToLineCol(s.Start())
		if err != nil {
			return "\t"
		}
		text, _ := ed.lines.LineText(line)
		x := layout.VisualXForColumn(text, col, tabWidth)
		return strings.Repeat(" ", tabWidth-x%tabWidth)
	})
}

// cmdInsertNewline inserts a newline, optionally copying the current
// line's leading whitespace.
func (ed *Editor) cmdInsertNewline(autoIndent bool) (Range, error) {
	return ed.insertAtEveryCursor(func(s cursor.Selection) string {
		if !autoIndent {
			return "\n"
		}
		line, _, err := ed.lines.CharToLineCol(s.Start())
		if err != nil {
			return "\n"
		}
		text, _ := ed.lines.LineText(line)
		return "\n" + leadingWhitespace(text)
	})
}

func leadingWhitespace(line string) string {
	end := 0
	for end < len(line) && (line[end] == ' ' || line[end] == '\t') {
		end++
	}
	return line[:end]
}

// deleteAtEveryCursor deletes a per-selection range. Selections with
// extent delete their span; bare cursors delete the range computed by
// rangeFor. Carets land at the deletion start.
func (ed *Editor) deleteAtEveryCursor(rangeFor func(head int) (int, int)) (Range, error) {
	sels := ed.selectionsDescending()
	tuples := make([]editTuple, 0, len(sels))
	for _, s := range sels {
		start, end := s.Start(), s.End()
		if s.IsEmpty() {
			start, end = rangeFor(s.Head)
		}
		if start == end {
			continue
		}
		tuples = append(tuples, editTuple{start: start, end: end})
	}
	if len(tuples) == 0 {
		return noEdit, nil
	}
	// Bare-cursor expansions may collide; keep them non-overlapping.
	tuples = mergeDescendingTuples(tuples)
	return ed.applyTuples(tuples, true, true)
}

// mergeDescendingTuples merges overlapping delete ranges in a descending
// tuple list.
func mergeDescendingTuples(tuples []editTuple) []editTuple {
	out := tuples[:0]
	for _, t := range tuples {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if t.end > last.start {
				if t.start < last.start {
					last.start = t.start
				}
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// cmdBackspace deletes selections or one character before each caret.
func (ed *Editor) cmdBackspace() (Range, error) {
	return ed.deleteAtEveryCursor(func(head int) (int, int) {
		if head == 0 {
			return 0, 0
		}
		return head - 1, head
	})
}

// cmdDeleteForward deletes selections or one character after each caret.
func (ed *Editor) cmdDeleteForward() (Range, error) {
	total := ed.table.CharCount()
	return ed.deleteAtEveryCursor(func(head int) (int, int) {
		if head >= total {
			return head, head
		}
		return head, head + 1
	})
}

// cmdDeleteGrapheme deletes one grapheme cluster back or forward.
func (ed *Editor) cmdDeleteGrapheme(back bool) (Range, error) {
	return ed.deleteAtEveryCursor(func(head int) (int, int) {
		if back {
			return ed.PrevGraphemeOffset(head), head
		}
		return head, ed.NextGraphemeOffset(head)
	})
}

// cmdDeleteWord deletes to the previous or next word boundary.
func (ed *Editor) cmdDeleteWord(back bool) (Range, error) {
	return ed.deleteAtEveryCursor(func(head int) (int, int) {
		if back {
			return ed.PrevWordOffset(head), head
		}
		return head, ed.NextWordOffset(head)
	})
}

// cmdDeleteToPrevTabStop deletes back to the previous tab stop when the
// caret sits in leading whitespace; otherwise one character back.
func (ed *Editor) cmdDeleteToPrevTabStop() (Range, error) {
	tabWidth := ed.layout.TabWidth()
	return ed.deleteAtEveryCursor(func(head int) (int, int) {
		if head == 0 {
			return 0, 0
		}
		line, col, err := ed.lines.CharToLineCol(head)
		if err != nil || col == 0 {
			if head > 0 {
				return head - 1, head
			}
			return 0, 0
		}
		text, _ := ed.lines.LineText(line)
		if col > utf8.RuneCountInString(leadingWhitespace(text)) {
			// Caret is past the leading whitespace: plain backspace.
			return head - 1, head
		}
		x := layout.VisualXForColumn(text, col, tabWidth)
		targetX := (x - 1) / tabWidth * tabWidth
		targetCol := col
		for targetCol > 0 && layout.VisualXForColumn(text, targetCol-1, tabWidth) >= targetX {
			targetCol--
		}
		return head - (col - targetCol), head
	})
}

// lineBlock is a contiguous span of whole lines covered by selections.
type lineBlock struct {
	startLine, endLine int
}

// selectionLineBlocks merges the line spans of all selections into
// disjoint blocks, ascending.
func (ed *Editor) selectionLineBlocks() []lineBlock {
	var blocks []lineBlock
	for _, s := range ed.sels.All() {
		startLine, _, err := ed.lines.CharToLineCol(s.Start())
		if err != nil {
			continue
		}
		endLine, endCol, err := ed.lines.CharToLineCol(s.End())
		if err != nil {
			continue
		}
		if !s.IsEmpty() && endCol == 0 && endLine > startLine {
			// A selection ending at a line start does not include that line.
			endLine--
		}
		blocks = append(blocks, lineBlock{startLine, endLine})
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].startLine < blocks[j].startLine })
	merged := blocks[:0]
	for _, b := range blocks {
		if len(merged) > 0 && b.startLine <= merged[len(merged)-1].endLine+1 {
			if b.endLine > merged[len(merged)-1].endLine {
				merged[len(merged)-1].endLine = b.endLine
			}
			continue
		}
		merged = append(merged, b)
	}
	return merged
}

// blockText returns the text of a line block without a trailing newline.
func (ed *Editor) blockText(b lineBlock) string {
	start, _ := ed.lines.LineStart(b.startLine)
	_, end, _ := ed.lines.LineCharRange(b.endLine)
	text, _ := ed.table.TextRange(start, end)
	return text
}

// cmdDuplicateLines duplicates every selected line block.
func (ed *Editor) cmdDuplicateLines() (Range, error) {
	blocks := ed.selectionLineBlocks()
	tuples := make([]editTuple, 0, len(blocks))
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		start, _ := ed.lines.LineStart(b.startLine)
		text := ed.blockText(b)
		tuples = append(tuples, editTuple{start: start, end: start, text: text + "\n"})
	}
	return ed.applyTuples(tuples, false, true)
}

// cmdDeleteLines deletes every selected line block.
func (ed *Editor) cmdDeleteLines() (Range, error) {
	blocks := ed.selectionLineBlocks()
	tuples := make([]editTuple, 0, len(blocks))
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		start, _ := ed.lines.LineStart(b.startLine)
		_, end, _ := ed.lines.LineCharRange(b.endLine)
		if b.endLine < ed.lines.LineCount()-1 {
			end++ // take the newline with the block
		} else if b.startLine > 0 {
			start-- // last block: take the preceding newline instead
		}
		tuples = append(tuples, editTuple{start: start, end: end})
	}
	return ed.applyTuples(tuples, false, true)
}

// cmdMoveLines moves every selected line block up or down by one line.
func (ed *Editor) cmdMoveLines(up bool) (Range, error) {
	blocks := ed.selectionLineBlocks()
	tuples := make([]editTuple, 0, len(blocks))
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		if up && b.startLine == 0 {
			continue
		}
		if !up && b.endLine >= ed.lines.LineCount()-1 {
			continue
		}
		text := ed.blockText(b)
		if up {
			neighbor, _ := ed.lines.LineText(b.startLine - 1)
			start, _ := ed.lines.LineStart(b.startLine - 1)
			_, end, _ := ed.lines.LineCharRange(b.endLine)
			tuples = append(tuples, editTuple{start: start, end: end, text: text + "\n" + neighbor})
		} else {
			neighbor, _ := ed.lines.LineText(b.endLine + 1)
			start, _ := ed.lines.LineStart(b.startLine)
			_, end, _ := ed.lines.LineCharRange(b.endLine + 1)
			tuples = append(tuples, editTuple{start: start, end: end, text: neighbor + "\n" + text})
		}
	}
	return ed.applyTuples(tuples, false, true)
}

// cmdJoinLines joins each selected line with the next, collapsing the
// newline and the next line's leading whitespace into one space.
func (ed *Editor) cmdJoinLines() (Range, error) {
	lines := map[int]bool{}
	for _, s := range ed.sels.All() {
		l, _, err := ed.lines.CharToLineCol(s.Head)
		if err == nil {
			lines[l] = true
		}
	}
	ordered := make([]int, 0, len(lines))
	for l := range lines {
		ordered = append(ordered, l)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))

	tuples := make([]editTuple, 0, len(ordered))
	for _, l := range ordered {
		if l >= ed.lines.LineCount()-1 {
			continue
		}
		_, lineEnd, _ := ed.lines.LineCharRange(l)
		next, _ := ed.lines.LineText(l + 1)
		ws := utf8.RuneCountInString(leadingWhitespace(next))
		joint := " "
		if next == "" {
			joint = ""
		}
		tuples = append(tuples, editTuple{start: lineEnd, end: lineEnd + 1 + ws, text: joint})
	}
	return ed.applyTuples(tuples, false, true)
}

// indentUnit returns the text one Indent inserts.
func (ed *Editor) indentUnit() string {
	if ed.tabBehavior == TabBehaviorTab {
		return "\t"
	}
	return strings.Repeat(" ", ed.layout.TabWidth())
}

// cmdIndent indents every selected line by one tab stop.
func (ed *Editor) cmdIndent() (Range, error) {
	unit := ed.indentUnit()
	var tuples []editTuple
	blocks := ed.selectionLineBlocks()
	for i := len(blocks) - 1; i >= 0; i-- {
		for l := blocks[i].endLine; l >= blocks[i].startLine; l-- {
			start, _ := ed.lines.LineStart(l)
			tuples = append(tuples, editTuple{start: start, end: start, text: unit})
		}
	}
	return ed.applyTuples(tuples, false, true)
}

// cmdOutdent removes up to one tab stop of leading whitespace from every
// selected line.
func (ed *Editor) cmdOutdent() (Range, error) {
	tabWidth := ed.layout.TabWidth()
	var tuples []editTuple
	blocks := ed.selectionLineBlocks()
	for i := len(blocks) - 1; i >= 0; i-- {
		for l := blocks[i].endLine; l >= blocks[i].startLine; l-- {
			text, _ := ed.lines.LineText(l)
			remove := 0
			if strings.HasPrefix(text, "\t") {
				remove = 1
			} else {
				for remove < tabWidth && remove < len(text) && text[remove] == ' ' {
					remove++
				}
			}
			if remove == 0 {
				continue
			}
			start, _ := ed.lines.LineStart(l)
			tuples = append(tuples, editTuple{start: start, end: start + remove})
		}
	}
	if len(tuples) == 0 {
		return noEdit, nil
	}
	return ed.applyTuples(tuples, false, true)
}

// cmdToggleComment toggles line comments on every selected line block:
// when every non-blank line is commented the tokens are removed, otherwise
// every non-blank line gains one.
func (ed *Editor) cmdToggleComment(cfg CommentConfig) (Range, error) {
	if cfg.Line == "" {
		return Range{}, ErrInvalidCommand
	}
	blocks := ed.selectionLineBlocks()

	allCommented := true
	anyNonBlank := false
	for _, b := range blocks {
		for l := b.startLine; l <= b.endLine; l++ {
			text, _ := ed.lines.LineText(l)
			trimmed := strings.TrimLeft(text, " \t")
			if trimmed == "" {
				continue
			}
			anyNonBlank = true
			if !strings.HasPrefix(trimmed, cfg.Line) {
				allCommented = false
			}
		}
	}
	if !anyNonBlank {
		return noEdit, nil
	}

	var tuples []editTuple
	for i := len(blocks) - 1; i >= 0; i-- {
		for l := blocks[i].endLine; l >= blocks[i].startLine; l-- {
			text, _ := ed.lines.LineText(l)
			ws := leadingWhitespace(text)
			trimmed := text[len(ws):]
			if trimmed == "" {
				continue
			}
			start, _ := ed.lines.LineStart(l)
			wsChars := utf8.RuneCountInString(ws)
			if allCommented {
				token := cfg.Line
				n := utf8.RuneCountInString(token)
				if strings.HasPrefix(strings.TrimPrefix(trimmed, token), " ") {
					n++
				}
				tuples = append(tuples, editTuple{start: start + wsChars, end: start + wsChars + n})
			} else {
				tuples = append(tuples, editTuple{start: start + wsChars, end: start + wsChars, text: cfg.Line + " "})
			}
		}
	}
	return ed.applyTuples(tuples, false, true)
}

// cmdApplyTextEdits applies a caller-provided batch in pre-edit
// coordinates as one undo step.
func (ed *Editor) cmdApplyTextEdits(specs []TextEditSpec) (Range, error) {
	tuples := make([]editTuple, 0, len(specs))
	for _, s := range specs {
		tuples = append(tuples, editTuple{start: s.Start, end: s.End, text: normalizeNewlines(s.Text)})
	}
	sort.Slice(tuples, func(i, j int) bool { return tuples[i].start > tuples[j].start })
	return ed.applyTuples(tuples, false, true)
}

// cmdReplaceCurrent replaces the occurrence of query at (or after) the
// primary selection.
func (ed *Editor) cmdReplaceCurrent(query, replacement string, opts search.Options) (Result, Range, error) {
	text := ed.Text()
	primary := ed.sels.Primary()

	m := search.Match{Start: primary.Start(), End: primary.End()}
	exact, err := search.IsMatchExact(text, query, opts, m)
	if err != nil {
		return Result{}, Range{}, err
	}
	if !exact {
		next, ok, err := search.FindNext(text, query, opts, primary.Start())
		if err != nil {
			return Result{}, Range{}, err
		}
		if !ok {
			return Result{NotFound: true}, Range{}, nil
		}
		m = next
	}
	r, err := ed.applyTuples([]editTuple{{start: m.Start, end: m.End, text: normalizeNewlines(replacement)}}, true, true)
	if err != nil {
		return Result{}, Range{}, err
	}
	return Result{Replaced: 1}, r, nil
}

// cmdReplaceAll replaces every occurrence of query as one undo step.
func (ed *Editor) cmdReplaceAll(query, replacement string, opts search.Options) (Result, Range, error) {
	matches, err := search.FindAll(ed.Text(), query, opts)
	if err != nil {
		return Result{}, Range{}, err
	}
	if len(matches) == 0 {
		return Result{NotFound: true}, Range{}, nil
	}
	tuples := make([]editTuple, 0, len(matches))
	for i := len(matches) - 1; i >= 0; i-- {
		tuples = append(tuples, editTuple{start: matches[i].Start, end: matches[i].End, text: normalizeNewlines(replacement)})
	}
	r, err := ed.applyTuples(tuples, false, true)
	if err != nil {
		return Result{}, Range{}, err
	}
	return Result{Replaced: len(matches)}, r, nil
}

// cmdUndo reverts the top undo group, restoring its pre-edit selections
// and emitting one delta for the whole inverse.
func (ed *Editor) cmdUndo() (Range, error) {
	g, err := ed.hist.PopUndo()
	if err != nil {
		return Range{}, ErrInvalidCommand
	}
	// Reverse edits in reverse application order; each recorded range is
	// valid in the document state at its application time.
	affected := Range{Start: -1}
	var combined *delta.TextDelta
	for i := len(g.Edits) - 1; i >= 0; i-- {
		e := g.Edits[i]
		insLen := utf8.RuneCountInString(e.InsertedText)
		tuple := editTuple{start: e.Start, end: e.Start + insLen, text: e.DeletedText}
		r, err := ed.applyTuples([]editTuple{tuple}, false, false)
		if err != nil {
			return Range{}, err
		}
		affected = unionRange(affected, r)
		step := ed.TakeLastTextDelta()
		if combined == nil {
			combined = step
		} else {
			combined.Concat(step)
		}
	}
	ed.lastDelta = combined
	if g.SelectionsBefore != nil {
		ed.sels.SetAll(g.SelectionsBefore)
	}
	return affected, nil
}

// cmdRedo re-applies the top redo group, restoring its post-edit
// selections.
func (ed *Editor) cmdRedo() (Range, error) {
	g, err := ed.hist.PopRedo()
	if err != nil {
		return Range{}, ErrInvalidCommand
	}
	affected := Range{Start: -1}
	var combined *delta.TextDelta
	for _, e := range g.Edits {
		tuple := editTuple{start: e.Start, end: e.End, text: e.InsertedText}
		r, err := ed.applyTuples([]editTuple{tuple}, false, false)
		if err != nil {
			return Range{}, err
		}
		affected = unionRange(affected, r)
		step := ed.TakeLastTextDelta()
		if combined == nil {
			combined = step
		} else {
			combined.Concat(step)
		}
	}
	ed.lastDelta = combined
	if g.SelectionsAfter != nil {
		ed.sels.SetAll(g.SelectionsAfter)
	}
	return affected, nil
}

func unionRange(a, b Range) Range {
	if a.Start < 0 {
		return b
	}
	if b.Start < a.Start {
		a.Start = b.Start
	}
	if b.End > a.End {
		a.End = b.End
	}
	return a
}
