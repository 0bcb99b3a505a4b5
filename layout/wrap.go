package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// WrapMode selects the soft-wrapping strategy.
type WrapMode uint8

const (
	// WrapNone disables soft wrapping; each logical line is one visual row.
	WrapNone WrapMode = iota
	// WrapChar breaks before the character that would exceed the width.
	WrapChar
	// WrapWord prefers the latest break opportunity within the viewport,
	// falling back to character wrapping when none exists.
	WrapWord
)

// String returns a string representation of the wrap mode.
func (m WrapMode) String() string {
	switch m {
	case WrapNone:
		return "none"
	case WrapChar:
		return "char"
	case WrapWord:
		return "word"
	default:
		return "unknown"
	}
}

// WrapIndentKind selects how wrapped continuations are indented.
type WrapIndentKind uint8

const (
	// WrapIndentNone starts continuations at x = 0.
	WrapIndentNone WrapIndentKind = iota
	// WrapIndentMatchLeading indents continuations by the cell width of the
	// logical line's leading whitespace prefix.
	WrapIndentMatchLeading
	// WrapIndentFixed indents continuations by a fixed number of cells.
	WrapIndentFixed
)

// WrapIndent is the wrapped-line indentation policy.
type WrapIndent struct {
	Kind  WrapIndentKind
	Cells int // used when Kind == WrapIndentFixed
}

// FixedIndent returns a fixed-cells wrap indent policy.
func FixedIndent(cells int) WrapIndent {
	return WrapIndent{Kind: WrapIndentFixed, Cells: cells}
}

// MatchLeadingIndent returns the match-leading-whitespace policy.
func MatchLeadingIndent() WrapIndent {
	return WrapIndent{Kind: WrapIndentMatchLeading}
}

// WrapPoint marks where a logical line wraps. The continuation segment
// begins at CharIndex and is rendered starting at StartX cells.
type WrapPoint struct {
	CharIndex  int // character index within the logical line
	ByteOffset int // byte offset within the logical line
	StartX     int // cell offset where the continuation starts (wrap indent)
}

// indentCellsForLine resolves the wrap indent policy for a line, clamped so
// continuations always have at least one usable cell.
func indentCellsForLine(lineText string, indent WrapIndent, viewportWidth, tabWidth int) int {
	if viewportWidth <= 1 {
		return 0
	}
	raw := 0
	switch indent.Kind {
	case WrapIndentNone:
		raw = 0
	case WrapIndentFixed:
		raw = indent.Cells
	case WrapIndentMatchLeading:
		raw = StrWidth(leadingWhitespacePrefix(lineText), tabWidth)
	}
	if max := viewportWidth - 1; raw > max {
		raw = max
	}
	return raw
}

// isSoftBreak reports whether wrapping may occur after r in word mode:
// whitespace, ASCII punctuation, and CJK scalar values all permit a break.
func isSoftBreak(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	if r < utf8.RuneSelf && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r) {
		return true
	}
	// CJK ideographs, kana, and Hangul wrap freely.
	switch {
	case r >= 0x3040 && r <= 0x30FF, // Hiragana, Katakana
		r >= 0x3400 && r <= 0x4DBF, // CJK ext A
		r >= 0x4E00 && r <= 0x9FFF, // CJK unified
		r >= 0xAC00 && r <= 0xD7A3, // Hangul syllables
		r >= 0xF900 && r <= 0xFAFF, // CJK compatibility
		r >= 0x20000 && r <= 0x2FFFF: // CJK ext B+
		return true
	}
	return false
}

// CalculateWrapPoints computes the wrap points for a logical line's text
// (no trailing newline) under the given width, tab, mode, and indent
// settings. A zero or negative viewport width disables wrapping.
func CalculateWrapPoints(text string, viewportWidth, tabWidth int, mode WrapMode, indent WrapIndent) []WrapPoint {
	if viewportWidth <= 0 || mode == WrapNone {
		return nil
	}
	indentCells := indentCellsForLine(text, indent, viewportWidth, tabWidth)
	switch mode {
	case WrapChar:
		return wrapPointsChar(text, viewportWidth, tabWidth, indentCells)
	case WrapWord:
		return wrapPointsWord(text, viewportWidth, tabWidth, indentCells)
	default:
		return nil
	}
}

func wrapPointsChar(text string, viewportWidth, tabWidth, indentCells int) []WrapPoint {
	var points []WrapPoint
	xInSegment := 0
	xInLine := 0
	charIndex := 0

	for byteOffset, r := range text {
		w := CellWidthAt(r, xInLine, tabWidth)

		if xInSegment+w > viewportWidth {
			// Wide characters cannot be split; the whole rune moves to the
			// next segment.
			points = append(points, WrapPoint{CharIndex: charIndex, ByteOffset: byteOffset, StartX: indentCells})
			xInSegment = indentCells
		}

		xInSegment += w
		xInLine += w

		if xInSegment == viewportWidth && byteOffset+utf8.RuneLen(r) < len(text) {
			points = append(points, WrapPoint{
				CharIndex:  charIndex + 1,
				ByteOffset: byteOffset + utf8.RuneLen(r),
				StartX:     indentCells,
			})
			xInSegment = indentCells
		}

		charIndex++
	}
	return points
}

func wrapPointsWord(text string, viewportWidth, tabWidth, indentCells int) []WrapPoint {
	var points []WrapPoint

	segmentStartChar := 0
	segmentStartX := 0
	haveBreak := false
	var breakChar, breakByte, breakX int

	xInLine := 0
	charIndex := 0

	for byteOffset, r := range text {
		w := CellWidthAt(r, xInLine, tabWidth)

		for {
			segIndent := 0
			if segmentStartChar > 0 {
				segIndent = indentCells
			}
			xInSegment := xInLine - segmentStartX + segIndent
			if xInSegment+w <= viewportWidth {
				break
			}

			if haveBreak && breakChar > segmentStartChar {
				points = append(points, WrapPoint{CharIndex: breakChar, ByteOffset: breakByte, StartX: indentCells})
				segmentStartChar = breakChar
				segmentStartX = breakX
				haveBreak = false
				continue
			}

			// No usable break opportunity: fall back to character wrap.
			points = append(points, WrapPoint{CharIndex: charIndex, ByteOffset: byteOffset, StartX: indentCells})
			segmentStartChar = charIndex
			segmentStartX = xInLine
			haveBreak = false
			break
		}

		xInLine += w

		if isSoftBreak(r) {
			breakChar = charIndex + 1
			breakByte = byteOffset + utf8.RuneLen(r)
			breakX = xInLine
			haveBreak = true
		}

		charIndex++
	}
	return points
}
