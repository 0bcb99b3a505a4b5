package layout

import "github.com/mattn/go-runewidth"

// DefaultTabWidth is used when a caller does not specify a tab width.
const DefaultTabWidth = 4

// CharWidth returns the display width of a rune in cells per UAX #11:
// 2 for wide (East Asian Wide/Fullwidth), 0 for combining marks and other
// zero-width scalar values, 1 otherwise.
func CharWidth(r rune) int {
	if r == '\n' {
		return 0
	}
	return runewidth.RuneWidth(r)
}

// CellWidthAt returns the width of a rune at a given cell offset from the
// start of the line. A tab advances to the next tab stop; everything else
// follows CharWidth.
func CellWidthAt(r rune, cellOffsetInLine, tabWidth int) int {
	if r == '\t' {
		if tabWidth < 1 {
			tabWidth = 1
		}
		return tabWidth - cellOffsetInLine%tabWidth
	}
	return CharWidth(r)
}

// StrWidth returns the total display width of s, expanding tabs with the
// given tab width.
func StrWidth(s string, tabWidth int) int {
	x := 0
	for _, r := range s {
		x += CellWidthAt(r, x, tabWidth)
	}
	return x
}

// VisualXForColumn returns the cell offset from the start of the line to
// the given character column, expanding tabs.
func VisualXForColumn(line string, column, tabWidth int) int {
	x := 0
	i := 0
	for _, r := range line {
		if i >= column {
			break
		}
		x += CellWidthAt(r, x, tabWidth)
		i++
	}
	return x
}

// leadingWhitespacePrefix returns the run of spaces and tabs at the start
// of the line.
func leadingWhitespacePrefix(line string) string {
	end := 0
	for end < len(line) {
		c := line[end]
		if c != ' ' && c != '\t' {
			break
		}
		end++
	}
	return line[:end]
}
