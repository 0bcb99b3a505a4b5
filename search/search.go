// Package search provides substring and regex search over document text.
// All public offsets are character offsets; plain queries are escaped and
// compiled to a regex so both paths share one engine.
package search

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidPattern is returned when a regex query fails to compile.
var ErrInvalidPattern = errors.New("search: invalid pattern")

// Options control how a search is performed.
type Options struct {
	// CaseSensitive matches exactly when true.
	CaseSensitive bool
	// WholeWord requires non-word characters (or text boundaries) on both
	// sides of a match.
	WholeWord bool
	// Regex treats the query as a regular expression instead of a literal.
	Regex bool
}

// DefaultOptions returns case-sensitive literal search.
func DefaultOptions() Options {
	return Options{CaseSensitive: true}
}

// Match is a half-open character range.
type Match struct {
	Start int
	End   int
}

// Len returns the match length in characters.
func (m Match) Len() int {
	return m.End - m.Start
}

// IsEmpty reports whether the match covers no characters.
func (m Match) IsEmpty() bool {
	return m.Start >= m.End
}

// charIndex maps between byte and character offsets of one text.
type charIndex struct {
	charToByte []int
	textLen    int
}

func newCharIndex(text string) *charIndex {
	idx := &charIndex{textLen: len(text)}
	idx.charToByte = make([]int, 0, len(text)+1)
	for b := range text {
		idx.charToByte = append(idx.charToByte, b)
	}
	idx.charToByte = append(idx.charToByte, len(text))
	return idx
}

func (ci *charIndex) charCount() int {
	return len(ci.charToByte) - 1
}

func (ci *charIndex) charToByteOffset(charOffset int) int {
	if charOffset > ci.charCount() {
		charOffset = ci.charCount()
	}
	return ci.charToByte[charOffset]
}

func (ci *charIndex) byteToCharOffset(byteOffset int) int {
	lo, hi := 0, len(ci.charToByte)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if ci.charToByte[mid] <= byteOffset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func (ci *charIndex) charAt(text string, charOffset int) (rune, bool) {
	if charOffset < 0 || charOffset >= ci.charCount() {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(text[ci.charToByte[charOffset]:])
	return r, true
}

// compile builds the regex for a query under the given options.
func compile(query string, opts Options) (*regexp.Regexp, error) {
	pattern := query
	if !opts.Regex {
		pattern = regexp.QuoteMeta(query)
	}
	if !opts.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}

func isWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWholeWord(text string, ci *charIndex, m Match) bool {
	if m.IsEmpty() {
		return false
	}
	if before, ok := ci.charAt(text, m.Start-1); ok && isWordChar(before) {
		return false
	}
	if after, ok := ci.charAt(text, m.End); ok && isWordChar(after) {
		return false
	}
	return true
}

// FindNext returns the first match at or after fromChar, or ok=false when
// there is none. Empty queries never match.
func FindNext(text, query string, opts Options, fromChar int) (Match, bool, error) {
	if query == "" {
		return Match{}, false, nil
	}
	re, err := compile(query, opts)
	if err != nil {
		return Match{}, false, err
	}
	ci := newCharIndex(text)

	startChar := fromChar
	if startChar < 0 {
		startChar = 0
	}
	for startChar <= ci.charCount() {
		startByte := ci.charToByteOffset(startChar)
		loc := re.FindStringIndex(text[startByte:])
		if loc == nil {
			return Match{}, false, nil
		}
		m := Match{
			Start: ci.byteToCharOffset(startByte + loc[0]),
			End:   ci.byteToCharOffset(startByte + loc[1]),
		}
		if m.IsEmpty() {
			if m.End >= ci.charCount() {
				return Match{}, false, nil
			}
			startChar = m.End + 1
			continue
		}
		if opts.WholeWord && !isWholeWord(text, ci, m) {
			startChar = m.End
			continue
		}
		return m, true, nil
	}
	return Match{}, false, nil
}

// FindPrev returns the last match strictly before fromChar, or ok=false.
func FindPrev(text, query string, opts Options, fromChar int) (Match, bool, error) {
	if query == "" {
		return Match{}, false, nil
	}
	re, err := compile(query, opts)
	if err != nil {
		return Match{}, false, err
	}
	ci := newCharIndex(text)

	limit := fromChar
	if limit > ci.charCount() {
		limit = ci.charCount()
	}
	limitByte := ci.charToByteOffset(limit)

	var last Match
	found := false
	for _, loc := range re.FindAllStringIndex(text[:limitByte], -1) {
		m := Match{Start: ci.byteToCharOffset(loc[0]), End: ci.byteToCharOffset(loc[1])}
		if m.IsEmpty() {
			continue
		}
		if opts.WholeWord && !isWholeWord(text, ci, m) {
			continue
		}
		last = m
		found = true
	}
	return last, found, nil
}

// FindAll returns every match in the text.
func FindAll(text, query string, opts Options) ([]Match, error) {
	if query == "" {
		return nil, nil
	}
	re, err := compile(query, opts)
	if err != nil {
		return nil, err
	}
	ci := newCharIndex(text)

	var out []Match
	for _, loc := range re.FindAllStringIndex(text, -1) {
		m := Match{Start: ci.byteToCharOffset(loc[0]), End: ci.byteToCharOffset(loc[1])}
		if m.IsEmpty() {
			continue
		}
		if opts.WholeWord && !isWholeWord(text, ci, m) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// IsMatchExact reports whether the given range is exactly an occurrence of
// the query. Useful for find/replace flows checking the current selection.
func IsMatchExact(text, query string, opts Options, m Match) (bool, error) {
	if m.IsEmpty() {
		return false, nil
	}
	next, ok, err := FindNext(text, query, opts, m.Start)
	if err != nil || !ok {
		return false, err
	}
	return next == m, nil
}
