package editor

// Fold-aware visual mapping. The layout engine numbers every logical
// line's rows; collapsed folds hide lines (start+1 .. end], so the visible
// row space subtracts the hidden lines' rows. Conversions here are in the
// visible space used by views, snapshots, and vertical motion.

// lineVisualRows returns the layout row count of one logical line.
func (ed *Editor) lineVisualRows(line int) int {
	l, err := ed.layout.LineLayout(line)
	if err != nil {
		return 0
	}
	return l.VisualRows
}

// hiddenRowsBeforeLine sums the layout rows of hidden lines above the
// given line.
func (ed *Editor) hiddenRowsBeforeLine(line int) int {
	hidden := 0
	for _, r := range ed.folds.Regions() {
		if !r.Collapsed || r.StartLine >= line {
			continue
		}
		end := r.EndLine
		if end >= line {
			end = line - 1
		}
		for l := r.StartLine + 1; l <= end; l++ {
			hidden += ed.lineVisualRows(l)
		}
	}
	return hidden
}

// TotalVisualRows returns the number of visible visual rows after folding.
func (ed *Editor) TotalVisualRows() int {
	total := ed.layout.VisualRowCount()
	for _, r := range ed.folds.Regions() {
		if !r.Collapsed {
			continue
		}
		for l := r.StartLine + 1; l <= r.EndLine && l < ed.lines.LineCount(); l++ {
			total -= ed.lineVisualRows(l)
		}
	}
	return total
}

// visibleLine snaps a line hidden inside a collapsed fold to the fold's
// start line.
func (ed *Editor) visibleLine(line int) int {
	if r, hidden := ed.folds.CollapsedRegionContaining(line); hidden {
		return r.StartLine
	}
	return line
}

// LogicalToVisualPos converts a logical position to a visible (row, x).
// Positions on hidden lines map to the end of the fold's start line.
func (ed *Editor) LogicalToVisualPos(line, col int) (row, x int, err error) {
	if snapped := ed.visibleLine(line); snapped != line {
		line = snapped
		text, _ := ed.lines.LineText(line)
		col = len([]rune(text))
	}
	layoutRow, x, err := ed.layout.LogicalToVisual(line, col)
	if err != nil {
		return 0, 0, err
	}
	return layoutRow - ed.hiddenRowsBeforeLine(line), x, nil
}

// LogicalToVisualPosVirtual is LogicalToVisualPos allowing columns past
// the line end (virtual cells).
func (ed *Editor) LogicalToVisualPosVirtual(line, col int) (row, x int, err error) {
	if snapped := ed.visibleLine(line); snapped != line {
		line = snapped
	}
	layoutRow, x, err := ed.layout.LogicalToVisualVirtual(line, col)
	if err != nil {
		return 0, 0, err
	}
	return layoutRow - ed.hiddenRowsBeforeLine(line), x, nil
}

// visualRowToLineSegment resolves a visible row to (logical line, wrap
// segment), skipping hidden lines.
func (ed *Editor) visualRowToLineSegment(row int) (line, segment int, err error) {
	if row < 0 {
		return 0, 0, ErrOutOfRange
	}
	if len(collapsedRegions(ed)) == 0 {
		return ed.layout.VisualRowToLine(row)
	}
	seen := 0
	for l := 0; l < ed.lines.LineCount(); l++ {
		if !ed.folds.IsLineVisible(l) {
			continue
		}
		rows := ed.lineVisualRows(l)
		if seen+rows > row {
			return l, row - seen, nil
		}
		seen += rows
	}
	return 0, 0, ErrOutOfRange
}

func collapsedRegions(ed *Editor) []int {
	var lines []int
	for _, r := range ed.folds.Regions() {
		if r.Collapsed {
			lines = append(lines, r.StartLine)
		}
	}
	return lines
}

// VisualPosToLogical converts a visible (row, x) to a logical position,
// snapping x past the end of the row to the last column.
func (ed *Editor) VisualPosToLogical(row, x int) (line, col int, err error) {
	return ed.visualPosToLogical(row, x, false)
}

// VisualPosToLogicalVirtual allows columns past the line end.
func (ed *Editor) VisualPosToLogicalVirtual(row, x int) (line, col int, err error) {
	return ed.visualPosToLogical(row, x, true)
}

func (ed *Editor) visualPosToLogical(row, x int, virtual bool) (int, int, error) {
	line, segment, err := ed.visualRowToLineSegment(row)
	if err != nil {
		return 0, 0, err
	}
	first, err := ed.layout.FirstVisualRow(line)
	if err != nil {
		return 0, 0, err
	}
	if virtual {
		return ed.layout.VisualToLogicalVirtual(first+segment, x)
	}
	return ed.layout.VisualToLogical(first+segment, x)
}
