// Package snapshot defines the grid data model produced by the read paths:
// plain headless grids, composed grids with decoration-injected virtual
// cells and rows, and minimap aggregates. Grids are frames over visual
// rows; generation streams row by row and never materializes text outside
// the requested window.
package snapshot

import "github.com/windoze/editor-core/intervals"

// Cell is one unit of horizontal display width.
type Cell struct {
	Ch    rune
	Width int
	// Styles is the sorted-unique union of styles covering the cell's
	// starting character offset across all layers.
	Styles []intervals.StyleId
}

// NewCell creates an unstyled cell.
func NewCell(ch rune, width int) Cell {
	return Cell{Ch: ch, Width: width}
}

// Line is one visual row of a headless grid.
type Line struct {
	// LogicalLine is the backing logical line index.
	LogicalLine int
	// WrapSegment is the wrap segment index within the logical line.
	WrapSegment int
	// CharStart and CharEnd are the document character offsets covered by
	// this row, half-open.
	CharStart int
	CharEnd   int
	// StartX is the cell offset where the row's content begins (wrap
	// indent for continuations).
	StartX int
	Cells  []Cell
	// FoldPlaceholderAppended is true when a collapsed fold's placeholder
	// cells were appended to this row.
	FoldPlaceholderAppended bool
}

// VisualWidth returns the total cell width of the row past StartX.
func (l *Line) VisualWidth() int {
	w := 0
	for _, c := range l.Cells {
		w += c.Width
	}
	return w
}

// Grid is a window of visual rows.
type Grid struct {
	StartVisualRow int
	RequestedCount int
	Lines          []Line
}

// NewGrid creates an empty grid frame.
func NewGrid(startVisualRow, count int) *Grid {
	return &Grid{StartVisualRow: startVisualRow, RequestedCount: count}
}

// AddLine appends a row.
func (g *Grid) AddLine(l Line) {
	g.Lines = append(g.Lines, l)
}

// LineCount returns the number of rows actually produced, which may be
// fewer than requested at the end of the document.
func (g *Grid) LineCount() int {
	return len(g.Lines)
}

// ComposedCellSource says where a composed cell's content came from.
type ComposedCellSource uint8

const (
	// SourceDocument cells carry a document character offset.
	SourceDocument ComposedCellSource = iota
	// SourceVirtual cells come from decorations and have no offset.
	SourceVirtual
)

// ComposedCell is a cell in a composed grid. CharOffset is only meaningful
// for SourceDocument cells.
type ComposedCell struct {
	Cell
	Source     ComposedCellSource
	CharOffset int
}

// ComposedLineKind distinguishes document rows from injected virtual rows.
type ComposedLineKind uint8

const (
	// LineDocument rows mirror a headless grid row.
	LineDocument ComposedLineKind = iota
	// LineVirtual rows were injected by Before/After decorations.
	LineVirtual
)

// ComposedLine is one row of a composed grid.
type ComposedLine struct {
	Kind ComposedLineKind
	// LogicalLine and WrapSegment identify the backing row for
	// LineDocument rows and the anchor row for LineVirtual rows.
	LogicalLine int
	WrapSegment int
	StartX      int
	Cells       []ComposedCell
}

// ComposedGrid is a grid with decoration-injected content.
type ComposedGrid struct {
	StartVisualRow int
	RequestedCount int
	Lines          []ComposedLine
}

// NewComposedGrid creates an empty composed grid frame.
func NewComposedGrid(startVisualRow, count int) *ComposedGrid {
	return &ComposedGrid{StartVisualRow: startVisualRow, RequestedCount: count}
}

// LineCount returns the number of rows actually produced.
func (g *ComposedGrid) LineCount() int {
	return len(g.Lines)
}

// MinimapLine aggregates one visual row for minimap rendering; there is no
// per-cell payload.
type MinimapLine struct {
	LogicalLine        int
	WrapSegment        int
	TotalCells         int
	NonWhitespaceCells int
	// DominantStyle is the style covering the most cells of the row, or 0.
	DominantStyle intervals.StyleId
}

// MinimapGrid is a window of minimap rows.
type MinimapGrid struct {
	StartVisualRow int
	RequestedCount int
	Lines          []MinimapLine
}

// NewMinimapGrid creates an empty minimap grid frame.
func NewMinimapGrid(startVisualRow, count int) *MinimapGrid {
	return &MinimapGrid{StartVisualRow: startVisualRow, RequestedCount: count}
}

// LineCount returns the number of rows actually produced.
func (g *MinimapGrid) LineCount() int {
	return len(g.Lines)
}
