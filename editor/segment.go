package editor

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Grapheme and word boundaries per UAX #29, computed over single line
// texts via the uniseg segmentation oracle. Line boundaries themselves are
// one-character steps across the newline.

// graphemeBoundaries returns the rune-offset boundaries of the grapheme
// clusters in a line, including 0 and the line length.
func graphemeBoundaries(text string) []int {
	bounds := []int{0}
	runes := 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		runes += utf8.RuneCountInString(cluster)
		bounds = append(bounds, runes)
	}
	return bounds
}

// PrevGraphemeOffset returns the character offset one grapheme cluster
// before the given offset, crossing line boundaries one character at a
// time.
func (ed *Editor) PrevGraphemeOffset(offset int) int {
	if offset <= 0 {
		return 0
	}
	line, col, err := ed.lines.CharToLineCol(offset)
	if err != nil {
		return offset
	}
	if col == 0 {
		return offset - 1 // across the newline
	}
	text, _ := ed.lines.LineText(line)
	bounds := graphemeBoundaries(text)
	prev := 0
	for _, b := range bounds {
		if b >= col {
			break
		}
		prev = b
	}
	return offset - (col - prev)
}

// NextGraphemeOffset returns the character offset one grapheme cluster
// after the given offset.
func (ed *Editor) NextGraphemeOffset(offset int) int {
	total := ed.table.CharCount()
	if offset >= total {
		return total
	}
	line, col, err := ed.lines.CharToLineCol(offset)
	if err != nil {
		return offset
	}
	text, _ := ed.lines.LineText(line)
	lineLen := utf8.RuneCountInString(text)
	if col >= lineLen {
		return offset + 1 // across the newline
	}
	for _, b := range graphemeBoundaries(text) {
		if b > col {
			return offset + (b - col)
		}
	}
	return offset + 1
}

// wordBoundaries returns the rune-offset boundaries of UAX #29 words in a
// line, including 0 and the line length.
func wordBoundaries(text string) []int {
	bounds := []int{0}
	runes := 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		runes += utf8.RuneCountInString(word)
		bounds = append(bounds, runes)
	}
	return bounds
}

// isWordRune matches the word characters used for word-wise selection.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// PrevWordOffset returns the offset of the previous word boundary,
// skipping trailing whitespace first so the caret lands at word starts.
func (ed *Editor) PrevWordOffset(offset int) int {
	if offset <= 0 {
		return 0
	}
	line, col, err := ed.lines.CharToLineCol(offset)
	if err != nil {
		return offset
	}
	if col == 0 {
		return offset - 1
	}
	text, _ := ed.lines.LineText(line)
	runes := []rune(text)

	// Skip whitespace immediately before the caret.
	c := col
	for c > 0 && unicode.IsSpace(runes[c-1]) {
		c--
	}
	if c == 0 {
		return offset - col
	}
	prev := 0
	for _, b := range wordBoundaries(text) {
		if b >= c {
			break
		}
		prev = b
	}
	return offset - (col - prev)
}

// NextWordOffset returns the offset of the next word boundary, skipping
// leading whitespace after the caret.
func (ed *Editor) NextWordOffset(offset int) int {
	total := ed.table.CharCount()
	if offset >= total {
		return total
	}
	line, col, err := ed.lines.CharToLineCol(offset)
	if err != nil {
		return offset
	}
	text, _ := ed.lines.LineText(line)
	runes := []rune(text)
	if col >= len(runes) {
		return offset + 1
	}

	c := col
	for c < len(runes) && unicode.IsSpace(runes[c]) {
		c++
	}
	if c >= len(runes) {
		return offset + (len(runes) - col)
	}
	for _, b := range wordBoundaries(text) {
		if b > c {
			return offset + (b - col)
		}
	}
	return offset + (len(runes) - col)
}

// WordRangeAt returns the word span under the offset, or an empty range at
// the offset when it sits on whitespace or punctuation.
func (ed *Editor) WordRangeAt(offset int) (start, end int) {
	line, col, err := ed.lines.CharToLineCol(offset)
	if err != nil {
		return offset, offset
	}
	text, _ := ed.lines.LineText(line)
	runes := []rune(text)
	if col >= len(runes) && col > 0 {
		col--
	}
	if col >= len(runes) || !isWordRune(runes[col]) {
		return offset, offset
	}
	s, e := col, col+1
	for s > 0 && isWordRune(runes[s-1]) {
		s--
	}
	for e < len(runes) && isWordRune(runes[e]) {
		e++
	}
	lineStart, _ := ed.lines.LineStart(line)
	return lineStart + s, lineStart + e
}
