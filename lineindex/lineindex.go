// Package lineindex maintains the logical line structure of a document.
//
// The index holds the document text as a sequence of lines and answers
// line/offset conversions in O(log N) via a lazily rebuilt prefix table.
// It is maintained incrementally: the buffer applies every edit it issues
// to storage here as well, keeping the two representations consistent.
package lineindex

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrOutOfRange is returned for offsets, lines, or columns outside the
// current document bounds.
var ErrOutOfRange = errors.New("line index: position out of range")

// LineIndex indexes a document by logical line and character offset.
// Line texts exclude the trailing newline; every line except the last is
// followed by an implicit "\n" that counts as one character.
type LineIndex struct {
	lines     []string
	lineChars []int // rune count per line, excluding the newline

	// prefix[i] is the char offset of the start of line i; prefix has
	// len(lines)+1 entries, the last being the total char count.
	// Rebuilt lazily on the first read after an edit.
	prefix      []int
	prefixStale bool
}

// New creates an index for the empty document (a single empty line).
func New() *LineIndex {
	return &LineIndex{lines: []string{""}, lineChars: []int{0}, prefixStale: true}
}

// FromText builds an index from LF-normalized text.
func FromText(text string) *LineIndex {
	lines := strings.Split(text, "\n")
	chars := make([]int, len(lines))
	for i, l := range lines {
		chars[i] = utf8.RuneCountInString(l)
	}
	return &LineIndex{lines: lines, lineChars: chars, prefixStale: true}
}

// LineCount returns the number of logical lines. Always at least 1.
func (li *LineIndex) LineCount() int {
	return len(li.lines)
}

// CharCount returns the total character count including newlines.
func (li *LineIndex) CharCount() int {
	li.ensurePrefix()
	return li.prefix[len(li.lines)]
}

// Text reassembles the full document text.
func (li *LineIndex) Text() string {
	return strings.Join(li.lines, "\n")
}

// LineText returns the text of line i without its newline.
func (li *LineIndex) LineText(i int) (string, error) {
	if i < 0 || i >= len(li.lines) {
		return "", ErrOutOfRange
	}
	return li.lines[i], nil
}

// LineLen returns the character length of line i, excluding the newline.
func (li *LineIndex) LineLen(i int) (int, error) {
	if i < 0 || i >= len(li.lines) {
		return 0, ErrOutOfRange
	}
	return li.lineChars[i], nil
}

// LineCharRange returns the half-open character range [start, end) of the
// text of line i, excluding the trailing newline.
func (li *LineIndex) LineCharRange(i int) (start, end int, err error) {
	if i < 0 || i >= len(li.lines) {
		return 0, 0, ErrOutOfRange
	}
	li.ensurePrefix()
	start = li.prefix[i]
	return start, start + li.lineChars[i], nil
}

// LineStart returns the character offset of the start of line i.
func (li *LineIndex) LineStart(i int) (int, error) {
	start, _, err := li.LineCharRange(i)
	return start, err
}

// CharToLineCol converts a character offset to (line, column).
// Offset CharCount maps to the end of the last line.
func (li *LineIndex) CharToLineCol(charOffset int) (line, col int, err error) {
	li.ensurePrefix()
	total := li.prefix[len(li.lines)]
	if charOffset < 0 || charOffset > total {
		return 0, 0, ErrOutOfRange
	}
	// Binary search for the last line whose start is <= charOffset.
	lo, hi := 0, len(li.lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.prefix[mid] <= charOffset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	col = charOffset - li.prefix[lo]
	// The newline at the end of a line belongs to that line; offset at
	// lineChars[lo]+1 is the start of the next line and the search above
	// already lands there.
	return lo, col, nil
}

// LineColToChar converts (line, column) to a character offset.
// The column is clamped to the line length.
func (li *LineIndex) LineColToChar(line, col int) (int, error) {
	if line < 0 || line >= len(li.lines) {
		return 0, ErrOutOfRange
	}
	if col < 0 {
		return 0, ErrOutOfRange
	}
	li.ensurePrefix()
	if col > li.lineChars[line] {
		col = li.lineChars[line]
	}
	return li.prefix[line] + col, nil
}

// Insert applies an insertion of text at charOffset.
// The text must be LF-normalized.
func (li *LineIndex) Insert(charOffset int, text string) error {
	line, col, err := li.CharToLineCol(charOffset)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}

	cur := li.lines[line]
	byteCol := byteIndexForRune(cur, col)
	head, tail := cur[:byteCol], cur[byteCol:]

	if !strings.ContainsRune(text, '\n') {
		li.setLine(line, head+text+tail)
		return nil
	}

	parts := strings.Split(text, "\n")
	first := head + parts[0]
	last := parts[len(parts)-1] + tail

	newLines := make([]string, 0, len(parts))
	newLines = append(newLines, first)
	newLines = append(newLines, parts[1:len(parts)-1]...)
	newLines = append(newLines, last)

	li.spliceLines(line, 1, newLines)
	return nil
}

// Delete applies a deletion of the character range [startChar, endChar).
func (li *LineIndex) Delete(startChar, endChar int) error {
	if startChar > endChar {
		return ErrOutOfRange
	}
	startLine, startCol, err := li.CharToLineCol(startChar)
	if err != nil {
		return err
	}
	endLine, endCol, err := li.CharToLineCol(endChar)
	if err != nil {
		return err
	}
	if startChar == endChar {
		return nil
	}

	head := li.lines[startLine][:byteIndexForRune(li.lines[startLine], startCol)]
	tail := li.lines[endLine][byteIndexForRune(li.lines[endLine], endCol):]
	li.spliceLines(startLine, endLine-startLine+1, []string{head + tail})
	return nil
}

// setLine replaces the text of a single line.
func (li *LineIndex) setLine(i int, text string) {
	li.lines[i] = text
	li.lineChars[i] = utf8.RuneCountInString(text)
	li.prefixStale = true
}

// spliceLines replaces count lines starting at i with the replacement set.
func (li *LineIndex) spliceLines(i, count int, replacement []string) {
	repChars := make([]int, len(replacement))
	for j, l := range replacement {
		repChars[j] = utf8.RuneCountInString(l)
	}

	newLines := make([]string, 0, len(li.lines)-count+len(replacement))
	newLines = append(newLines, li.lines[:i]...)
	newLines = append(newLines, replacement...)
	newLines = append(newLines, li.lines[i+count:]...)
	li.lines = newLines

	newChars := make([]int, 0, len(newLines))
	newChars = append(newChars, li.lineChars[:i]...)
	newChars = append(newChars, repChars...)
	newChars = append(newChars, li.lineChars[i+count:]...)
	li.lineChars = newChars

	li.prefixStale = true
}

func (li *LineIndex) ensurePrefix() {
	if !li.prefixStale {
		return
	}
	if cap(li.prefix) < len(li.lines)+1 {
		li.prefix = make([]int, len(li.lines)+1)
	} else {
		li.prefix = li.prefix[:len(li.lines)+1]
	}
	sum := 0
	li.prefix[0] = 0
	for i, n := range li.lineChars {
		sum += n
		if i < len(li.lines)-1 {
			sum++ // implicit newline
		}
		li.prefix[i+1] = sum
	}
	li.prefixStale = false
}

// byteIndexForRune returns the byte index of the runeIdx-th rune in s.
func byteIndexForRune(s string, runeIdx int) int {
	off := 0
	for i := 0; i < runeIdx; i++ {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}
