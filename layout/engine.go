// Package layout computes the soft-wrapped visual representation of a
// document: cell widths per UAX #11, tab expansion, wrap points per line,
// and the logical (line, column) to visual (row, x cells) mappings.
//
// The engine holds one layout per logical line plus a Fenwick tree over
// visual row counts so random access by visual row is O(log N). Fold
// handling lives above this package; the engine sees every logical line.
package layout

import (
	"errors"
	"unicode/utf8"
)

// ErrOutOfRange is returned for lines or rows outside the layout.
var ErrOutOfRange = errors.New("layout: position out of range")

// LineLayout is the computed wrap layout of one logical line.
type LineLayout struct {
	// WrapPoints mark where continuations start; empty when unwrapped.
	WrapPoints []WrapPoint
	// VisualRows is len(WrapPoints)+1.
	VisualRows int
}

// Engine manages layouts for all logical lines of a document.
type Engine struct {
	viewportWidth int
	tabWidth      int
	wrapMode      WrapMode
	wrapIndent    WrapIndent

	lineTexts []string
	layouts   []LineLayout

	fen      *fenwick
	fenStale bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTabWidth sets the tab width in cells.
func WithTabWidth(w int) Option {
	return func(e *Engine) {
		if w > 0 {
			e.tabWidth = w
		}
	}
}

// WithWrapMode sets the soft-wrap mode.
func WithWrapMode(m WrapMode) Option {
	return func(e *Engine) { e.wrapMode = m }
}

// WithWrapIndent sets the wrapped-line indentation policy.
func WithWrapIndent(wi WrapIndent) Option {
	return func(e *Engine) { e.wrapIndent = wi }
}

// NewEngine creates a layout engine for a single empty line.
func NewEngine(viewportWidth int, opts ...Option) *Engine {
	e := &Engine{
		viewportWidth: viewportWidth,
		tabWidth:      DefaultTabWidth,
		wrapMode:      WrapChar,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.SetLines([]string{""})
	return e
}

// ViewportWidth returns the viewport width in cells.
func (e *Engine) ViewportWidth() int { return e.viewportWidth }

// TabWidth returns the tab width in cells.
func (e *Engine) TabWidth() int { return e.tabWidth }

// Mode returns the wrap mode.
func (e *Engine) Mode() WrapMode { return e.wrapMode }

// Indent returns the wrap indent policy.
func (e *Engine) Indent() WrapIndent { return e.wrapIndent }

// SetViewportWidth changes the viewport width and relayouts every line.
func (e *Engine) SetViewportWidth(w int) {
	if w == e.viewportWidth {
		return
	}
	e.viewportWidth = w
	e.relayoutAll()
}

// SetTabWidth changes the tab width and relayouts every line.
func (e *Engine) SetTabWidth(w int) {
	if w < 1 || w == e.tabWidth {
		return
	}
	e.tabWidth = w
	e.relayoutAll()
}

// SetWrapMode changes the wrap mode and relayouts every line.
func (e *Engine) SetWrapMode(m WrapMode) {
	if m == e.wrapMode {
		return
	}
	e.wrapMode = m
	e.relayoutAll()
}

// SetWrapIndent changes the wrap indent policy and relayouts every line.
func (e *Engine) SetWrapIndent(wi WrapIndent) {
	if wi == e.wrapIndent {
		return
	}
	e.wrapIndent = wi
	e.relayoutAll()
}

// SetLines replaces all line texts and recomputes every layout.
func (e *Engine) SetLines(lines []string) {
	e.lineTexts = make([]string, len(lines))
	copy(e.lineTexts, lines)
	e.relayoutAll()
}

func (e *Engine) relayoutAll() {
	e.layouts = make([]LineLayout, len(e.lineTexts))
	for i, text := range e.lineTexts {
		e.layouts[i] = e.layoutLine(text)
	}
	e.fenStale = true
}

func (e *Engine) layoutLine(text string) LineLayout {
	points := CalculateWrapPoints(text, e.viewportWidth, e.tabWidth, e.wrapMode, e.wrapIndent)
	return LineLayout{WrapPoints: points, VisualRows: len(points) + 1}
}

// UpdateLine recomputes the layout of a single changed line.
func (e *Engine) UpdateLine(i int, text string) error {
	if i < 0 || i >= len(e.lineTexts) {
		return ErrOutOfRange
	}
	e.lineTexts[i] = text
	old := e.layouts[i].VisualRows
	e.layouts[i] = e.layoutLine(text)
	if !e.fenStale && e.fen != nil && e.layouts[i].VisualRows != old {
		e.fen.set(i, e.layouts[i].VisualRows)
	}
	return nil
}

// InsertLine inserts a new line before index i.
func (e *Engine) InsertLine(i int, text string) error {
	if i < 0 || i > len(e.lineTexts) {
		return ErrOutOfRange
	}
	e.lineTexts = append(e.lineTexts, "")
	copy(e.lineTexts[i+1:], e.lineTexts[i:])
	e.lineTexts[i] = text
	e.layouts = append(e.layouts, LineLayout{})
	copy(e.layouts[i+1:], e.layouts[i:])
	e.layouts[i] = e.layoutLine(text)
	e.fenStale = true
	return nil
}

// DeleteLine removes the line at index i.
func (e *Engine) DeleteLine(i int) error {
	if i < 0 || i >= len(e.lineTexts) {
		return ErrOutOfRange
	}
	e.lineTexts = append(e.lineTexts[:i], e.lineTexts[i+1:]...)
	e.layouts = append(e.layouts[:i], e.layouts[i+1:]...)
	e.fenStale = true
	return nil
}

// ReplaceLines replaces count lines starting at i with the given texts.
// This is the bulk form used when an edit spans multiple lines.
func (e *Engine) ReplaceLines(i, count int, texts []string) error {
	if i < 0 || count < 0 || i+count > len(e.lineTexts) {
		return ErrOutOfRange
	}
	newTexts := make([]string, 0, len(e.lineTexts)-count+len(texts))
	newTexts = append(newTexts, e.lineTexts[:i]...)
	newTexts = append(newTexts, texts...)
	newTexts = append(newTexts, e.lineTexts[i+count:]...)
	e.lineTexts = newTexts

	newLayouts := make([]LineLayout, 0, len(newTexts))
	newLayouts = append(newLayouts, e.layouts[:i]...)
	for _, t := range texts {
		newLayouts = append(newLayouts, e.layoutLine(t))
	}
	newLayouts = append(newLayouts, e.layouts[i+count:]...)
	e.layouts = newLayouts

	e.fenStale = true
	return nil
}

func (e *Engine) ensureFen() {
	if !e.fenStale && e.fen != nil && e.fen.len() == len(e.layouts) {
		return
	}
	e.fen = newFenwick(len(e.layouts))
	for i, l := range e.layouts {
		e.fen.add(i, l.VisualRows)
	}
	e.fenStale = false
}

// LineCount returns the number of logical lines.
func (e *Engine) LineCount() int { return len(e.lineTexts) }

// LineText returns the stored text of line i.
func (e *Engine) LineText(i int) (string, error) {
	if i < 0 || i >= len(e.lineTexts) {
		return "", ErrOutOfRange
	}
	return e.lineTexts[i], nil
}

// LineLayout returns the layout of line i.
func (e *Engine) LineLayout(i int) (LineLayout, error) {
	if i < 0 || i >= len(e.layouts) {
		return LineLayout{}, ErrOutOfRange
	}
	return e.layouts[i], nil
}

// VisualRowCount returns the total number of visual rows (ignoring folds).
func (e *Engine) VisualRowCount() int {
	e.ensureFen()
	return e.fen.total()
}

// FirstVisualRow returns the global visual row of the first segment of the
// given logical line.
func (e *Engine) FirstVisualRow(line int) (int, error) {
	if line < 0 || line >= len(e.layouts) {
		return 0, ErrOutOfRange
	}
	e.ensureFen()
	return e.fen.prefixSum(line), nil
}

// VisualRowToLine maps a global visual row to (logical line, segment index).
func (e *Engine) VisualRowToLine(row int) (line, segment int, err error) {
	e.ensureFen()
	if row < 0 || row >= e.fen.total() {
		return 0, 0, ErrOutOfRange
	}
	line = e.fen.findByPrefix(row)
	return line, row - e.fen.prefixSum(line), nil
}

// SegmentForColumn returns the index of the wrap segment containing the
// given character column of a line. Columns at a wrap point belong to the
// continuation segment.
func (e *Engine) SegmentForColumn(line, col int) (int, error) {
	if line < 0 || line >= len(e.layouts) {
		return 0, ErrOutOfRange
	}
	seg := 0
	for _, wp := range e.layouts[line].WrapPoints {
		if col >= wp.CharIndex {
			seg++
		} else {
			break
		}
	}
	return seg, nil
}

// SegmentBounds returns the half-open character column range [start, end)
// of a wrap segment, where end for the last segment is the line length.
func (e *Engine) SegmentBounds(line, segment int) (start, end int, err error) {
	if line < 0 || line >= len(e.layouts) {
		return 0, 0, ErrOutOfRange
	}
	l := e.layouts[line]
	if segment < 0 || segment >= l.VisualRows {
		return 0, 0, ErrOutOfRange
	}
	if segment > 0 {
		start = l.WrapPoints[segment-1].CharIndex
	}
	if segment < len(l.WrapPoints) {
		end = l.WrapPoints[segment].CharIndex
	} else {
		end = utf8.RuneCountInString(e.lineTexts[line])
	}
	return start, end, nil
}

// segmentStartX returns the x cell offset where a segment starts.
func (e *Engine) segmentStartX(line, segment int) int {
	if segment == 0 {
		return 0
	}
	return e.layouts[line].WrapPoints[segment-1].StartX
}

// LogicalToVisual converts (line, column) to (global visual row, x cells).
// The column is clamped to the line length.
func (e *Engine) LogicalToVisual(line, col int) (row, x int, err error) {
	return e.logicalToVisual(line, col, false)
}

// LogicalToVisualVirtual is LogicalToVisual without clamping: columns past
// the end of the line map to virtual cells of width 1.
func (e *Engine) LogicalToVisualVirtual(line, col int) (row, x int, err error) {
	return e.logicalToVisual(line, col, true)
}

func (e *Engine) logicalToVisual(line, col int, allowVirtual bool) (int, int, error) {
	if line < 0 || line >= len(e.layouts) {
		return 0, 0, ErrOutOfRange
	}
	text := e.lineTexts[line]
	lineLen := utf8.RuneCountInString(text)
	virtual := 0
	if col > lineLen {
		if allowVirtual {
			virtual = col - lineLen
		}
		col = lineLen
	}

	seg, _ := e.SegmentForColumn(line, col)
	segStart, _, _ := e.SegmentBounds(line, seg)

	// Accumulate cell widths from the segment start to the column; tab
	// expansion depends on the x offset within the whole line.
	xInLine := VisualXForColumn(text, segStart, e.tabWidth)
	xInSegment := 0
	i := 0
	for _, r := range text {
		if i >= col {
			break
		}
		if i >= segStart {
			w := CellWidthAt(r, xInLine, e.tabWidth)
			xInLine += w
			xInSegment += w
		}
		i++
	}

	first, err := e.FirstVisualRow(line)
	if err != nil {
		return 0, 0, err
	}
	x := e.segmentStartX(line, seg) + xInSegment + virtual
	return first + seg, x, nil
}

// VisualToLogical converts (global visual row, x cells) to (line, column),
// snapping x past the end of the segment to the segment's last column.
func (e *Engine) VisualToLogical(row, x int) (line, col int, err error) {
	return e.visualToLogical(row, x, false)
}

// VisualToLogicalVirtual is VisualToLogical but allows the returned column
// to exceed the line length when x lies past the end of the last segment.
func (e *Engine) VisualToLogicalVirtual(row, x int) (line, col int, err error) {
	return e.visualToLogical(row, x, true)
}

func (e *Engine) visualToLogical(row, x int, allowVirtual bool) (int, int, error) {
	line, seg, err := e.VisualRowToLine(row)
	if err != nil {
		return 0, 0, err
	}
	segStart, segEnd, _ := e.SegmentBounds(line, seg)
	text := e.lineTexts[line]

	startX := e.segmentStartX(line, seg)
	if x < startX {
		return line, segStart, nil
	}

	xInLine := VisualXForColumn(text, segStart, e.tabWidth)
	cur := startX
	col := segStart
	i := 0
	for _, r := range text {
		if i < segStart {
			i++
			continue
		}
		if i >= segEnd {
			break
		}
		w := CellWidthAt(r, xInLine, e.tabWidth)
		if cur+w > x {
			return line, col, nil
		}
		cur += w
		xInLine += w
		col++
		i++
	}

	isLastSegment := seg == e.layouts[line].VisualRows-1
	if allowVirtual && isLastSegment && x > cur {
		return line, col + (x - cur), nil
	}
	return line, col, nil
}
