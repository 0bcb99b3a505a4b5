package editor

import (
	"unicode"

	"github.com/windoze/editor-core/decorations"
	"github.com/windoze/editor-core/intervals"
	"github.com/windoze/editor-core/layout"
	"github.com/windoze/editor-core/snapshot"
)

// defaultFoldPlaceholder is rendered for collapsed folds without an
// explicit placeholder.
const defaultFoldPlaceholder = "…"

// HeadlessGrid produces the plain text grid for `count` visible visual
// rows starting at startRow. Only the lines inside the window are
// touched.
func (ed *Editor) HeadlessGrid(startRow, count int) *snapshot.Grid {
	grid := snapshot.NewGrid(startRow, count)
	total := ed.TotalVisualRows()
	for row := startRow; row < startRow+count && row < total; row++ {
		line, seg, err := ed.visualRowToLineSegment(row)
		if err != nil {
			break
		}
		grid.AddLine(ed.buildRow(line, seg))
	}
	return grid
}

// buildRow assembles one visual row with per-cell styles.
func (ed *Editor) buildRow(line, seg int) snapshot.Line {
	text, _ := ed.lines.LineText(line)
	segStart, segEnd, _ := ed.layout.SegmentBounds(line, seg)
	lineStart, _ := ed.lines.LineStart(line)
	ll, _ := ed.layout.LineLayout(line)

	startX := 0
	if seg > 0 {
		startX = ll.WrapPoints[seg-1].StartX
	}

	out := snapshot.Line{
		LogicalLine: line,
		WrapSegment: seg,
		CharStart:   lineStart + segStart,
		CharEnd:     lineStart + segEnd,
		StartX:      startX,
	}

	tabWidth := ed.layout.TabWidth()
	xInLine := layout.VisualXForColumn(text, segStart, tabWidth)
	col := 0
	for _, r := range text {
		if col >= segEnd {
			break
		}
		if col >= segStart {
			w := layout.CellWidthAt(r, xInLine, tabWidth)
			out.Cells = append(out.Cells, snapshot.Cell{
				Ch:     r,
				Width:  w,
				Styles: ed.styles.StylesAt(lineStart + col),
			})
			xInLine += w
		}
		col++
	}

	// A collapsed fold's start line carries the placeholder on its last
	// segment.
	if seg == ll.VisualRows-1 {
		for _, fr := range ed.folds.Regions() {
			if fr.Collapsed && fr.StartLine == line {
				ph := fr.Placeholder
				if ph == "" {
					ph = defaultFoldPlaceholder
				}
				for _, r := range ph {
					out.Cells = append(out.Cells, snapshot.NewCell(r, layout.CharWidth(r)))
				}
				out.FoldPlaceholderAppended = true
				break
			}
		}
	}
	return out
}

// ComposedGrid produces the decoration-composed grid: document rows plus
// virtual rows and inline cells injected by decorations. Document
// character offsets are preserved on non-virtual cells.
func (ed *Editor) ComposedGrid(startRow, count int) *snapshot.ComposedGrid {
	grid := snapshot.NewComposedGrid(startRow, count)
	total := ed.TotalVisualRows()
	for row := startRow; row < startRow+count && row < total; row++ {
		line, seg, err := ed.visualRowToLineSegment(row)
		if err != nil {
			break
		}
		base := ed.buildRow(line, seg)
		decs := ed.decs.InRange(base.CharStart, base.CharEnd+1)

		for _, d := range decs {
			if d.Placement == decorations.PlacementBefore && d.Text != "" {
				grid.Lines = append(grid.Lines, virtualLine(line, seg, d))
			}
		}

		grid.Lines = append(grid.Lines, composeDocumentRow(base, decs))

		for _, d := range decs {
			if d.Placement == decorations.PlacementAfter && d.Text != "" {
				grid.Lines = append(grid.Lines, virtualLine(line, seg, d))
			}
		}
	}
	return grid
}

func virtualLine(line, seg int, d decorations.Decoration) snapshot.ComposedLine {
	out := snapshot.ComposedLine{
		Kind:        snapshot.LineVirtual,
		LogicalLine: line,
		WrapSegment: seg,
	}
	for _, r := range d.Text {
		out.Cells = append(out.Cells, snapshot.ComposedCell{
			Cell:   snapshot.Cell{Ch: r, Width: layout.CharWidth(r), Styles: d.Styles},
			Source: snapshot.SourceVirtual,
		})
	}
	return out
}

// composeDocumentRow copies a headless row, splicing inline decoration
// cells at their anchor offsets.
func composeDocumentRow(base snapshot.Line, decs []decorations.Decoration) snapshot.ComposedLine {
	out := snapshot.ComposedLine{
		Kind:        snapshot.LineDocument,
		LogicalLine: base.LogicalLine,
		WrapSegment: base.WrapSegment,
		StartX:      base.StartX,
	}

	inlineAt := func(offset int) []decorations.Decoration {
		var hits []decorations.Decoration
		for _, d := range decs {
			if d.Placement == decorations.PlacementInline && d.Text != "" && d.Range.Start == offset {
				hits = append(hits, d)
			}
		}
		return hits
	}

	appendVirtual := func(d decorations.Decoration) {
		for _, r := range d.Text {
			out.Cells = append(out.Cells, snapshot.ComposedCell{
				Cell:   snapshot.Cell{Ch: r, Width: layout.CharWidth(r), Styles: d.Styles},
				Source: snapshot.SourceVirtual,
			})
		}
	}

	offset := base.CharStart
	for _, cell := range base.Cells {
		for _, d := range inlineAt(offset) {
			appendVirtual(d)
		}
		src := snapshot.SourceDocument
		if base.FoldPlaceholderAppended && offset >= base.CharEnd {
			src = snapshot.SourceVirtual
		}
		cc := snapshot.ComposedCell{Cell: cell, Source: src}
		if src == snapshot.SourceDocument {
			cc.CharOffset = offset
		}
		out.Cells = append(out.Cells, cc)
		offset++
	}
	for _, d := range inlineAt(base.CharEnd) {
		appendVirtual(d)
	}
	return out
}

// MinimapGrid produces per-row aggregates with no per-cell payload.
func (ed *Editor) MinimapGrid(startRow, count int) *snapshot.MinimapGrid {
	grid := snapshot.NewMinimapGrid(startRow, count)
	total := ed.TotalVisualRows()
	for row := startRow; row < startRow+count && row < total; row++ {
		line, seg, err := ed.visualRowToLineSegment(row)
		if err != nil {
			break
		}
		base := ed.buildRow(line, seg)
		ml := snapshot.MinimapLine{LogicalLine: line, WrapSegment: seg}
		styleCount := map[intervals.StyleId]int{}
		for _, c := range base.Cells {
			ml.TotalCells++
			if !unicode.IsSpace(c.Ch) {
				ml.NonWhitespaceCells++
			}
			for _, s := range c.Styles {
				styleCount[s]++
			}
		}
		best := 0
		for s, n := range styleCount {
			if n > best || (n == best && s < ml.DominantStyle) {
				best = n
				ml.DominantStyle = s
			}
		}
		grid.Lines = append(grid.Lines, ml)
	}
	return grid
}

// UTF-16 conversion boundary.

// CharOffsetToUTF16 converts a character offset to a (line, UTF-16 code
// unit) position for line-server protocols.
func (ed *Editor) CharOffsetToUTF16(offset int) (line, character int, err error) {
	line, col, err := ed.lines.CharToLineCol(offset)
	if err != nil {
		return 0, 0, err
	}
	text, _ := ed.lines.LineText(line)
	units := 0
	i := 0
	for _, r := range text {
		if i >= col {
			break
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		i++
	}
	return line, units, nil
}

// UTF16ToCharOffset converts a (line, UTF-16 code unit) position back to a
// character offset. Positions past the line end clamp to the line end.
func (ed *Editor) UTF16ToCharOffset(line, character int) (int, error) {
	text, err := ed.lines.LineText(line)
	if err != nil {
		return 0, err
	}
	units := 0
	col := 0
	for _, r := range text {
		if units >= character {
			break
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		col++
	}
	return ed.lines.LineColToChar(line, col)
}
