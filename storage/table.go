// Package storage implements the piece-table text store backing a buffer.
//
// A PieceTable holds the immutable original bytes plus an append-only add
// buffer; the document is the concatenation of pieces referencing spans of
// either buffer. Inserts and deletes splice pieces without moving text, so
// edit cost is proportional to the number of pieces touched rather than
// document size. All public offsets are character offsets counted in
// Unicode scalar values.
package storage

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Errors returned by piece-table operations.
var (
	ErrOutOfRange  = errors.New("offset out of range")
	ErrInvalidUTF8 = errors.New("text is not valid UTF-8")
)

// PieceTable is the mutable text store. It is not safe for concurrent use;
// the owning buffer provides locking.
type PieceTable struct {
	original []byte
	add      []byte
	pieces   []Piece

	charCount int
	byteCount int

	// prefixChars[i] is the cumulative character count of pieces[0:i].
	// Rebuilt lazily on the first read after an edit batch.
	prefixChars []int
	prefixStale bool
}

// New creates a piece table from the initial text.
// Returns ErrInvalidUTF8 if the text is not valid UTF-8.
func New(text string) (*PieceTable, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidUTF8
	}
	pt := &PieceTable{}
	if len(text) > 0 {
		pt.original = []byte(text)
		chars := utf8.RuneCountInString(text)
		pt.pieces = append(pt.pieces, Piece{
			Kind:      BufferOriginal,
			ByteStart: 0,
			ByteLen:   len(text),
			CharCount: chars,
		})
		pt.charCount = chars
		pt.byteCount = len(text)
	}
	pt.prefixStale = true
	return pt, nil
}

// Empty creates an empty piece table.
func Empty() *PieceTable {
	return &PieceTable{prefixStale: true}
}

// CharCount returns the total number of characters in the document.
func (pt *PieceTable) CharCount() int {
	return pt.charCount
}

// ByteCount returns the total number of bytes in the document.
func (pt *PieceTable) ByteCount() int {
	return pt.byteCount
}

// PieceCount returns the number of pieces. Useful for compaction heuristics.
func (pt *PieceTable) PieceCount() int {
	return len(pt.pieces)
}

// AddBufferSize returns the byte size of the append-only add buffer.
// The add buffer grows monotonically until Compact is called.
func (pt *PieceTable) AddBufferSize() int {
	return len(pt.add)
}

// bytes returns the backing slice for a piece.
func (pt *PieceTable) bytes(p Piece) []byte {
	if p.Kind == BufferOriginal {
		return pt.original[p.ByteStart : p.ByteStart+p.ByteLen]
	}
	return pt.add[p.ByteStart : p.ByteStart+p.ByteLen]
}

// rebuildPrefix recomputes the cumulative character index.
func (pt *PieceTable) rebuildPrefix() {
	if cap(pt.prefixChars) < len(pt.pieces)+1 {
		pt.prefixChars = make([]int, len(pt.pieces)+1)
	} else {
		pt.prefixChars = pt.prefixChars[:len(pt.pieces)+1]
	}
	sum := 0
	pt.prefixChars[0] = 0
	for i, p := range pt.pieces {
		sum += p.CharCount
		pt.prefixChars[i+1] = sum
	}
	pt.prefixStale = false
}

// findPiece locates the piece containing charOffset using binary search on
// the prefix index. Returns the piece index and the character offset within
// that piece. For charOffset == CharCount it returns len(pieces), 0.
func (pt *PieceTable) findPiece(charOffset int) (int, int) {
	if pt.prefixStale {
		pt.rebuildPrefix()
	}
	if charOffset >= pt.charCount {
		return len(pt.pieces), 0
	}
	lo, hi := 0, len(pt.pieces)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if pt.prefixChars[mid+1] <= charOffset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, charOffset - pt.prefixChars[lo]
}

// byteOffsetForChar scans a piece's UTF-8 bytes to find the byte offset of
// the given character offset within the piece.
func (pt *PieceTable) byteOffsetForChar(p Piece, charOffset int) int {
	b := pt.bytes(p)
	off := 0
	for i := 0; i < charOffset; i++ {
		_, size := utf8.DecodeRune(b[off:])
		off += size
	}
	return off
}

// splitPiece splits p at charOffset, returning the left and right halves.
// charOffset must be strictly inside the piece.
func (pt *PieceTable) splitPiece(p Piece, charOffset int) (Piece, Piece) {
	byteOff := pt.byteOffsetForChar(p, charOffset)
	left := Piece{Kind: p.Kind, ByteStart: p.ByteStart, ByteLen: byteOff, CharCount: charOffset}
	right := Piece{Kind: p.Kind, ByteStart: p.ByteStart + byteOff, ByteLen: p.ByteLen - byteOff, CharCount: p.CharCount - charOffset}
	return left, right
}

// Insert inserts text at the given character offset.
// Returns ErrOutOfRange if the offset is outside [0, CharCount],
// ErrInvalidUTF8 if text is not valid UTF-8.
func (pt *PieceTable) Insert(charOffset int, text string) error {
	if charOffset < 0 || charOffset > pt.charCount {
		return ErrOutOfRange
	}
	if !utf8.ValidString(text) {
		return ErrInvalidUTF8
	}
	if len(text) == 0 {
		return nil
	}

	addStart := len(pt.add)
	pt.add = append(pt.add, text...)
	newPiece := Piece{
		Kind:      BufferAdd,
		ByteStart: addStart,
		ByteLen:   len(text),
		CharCount: utf8.RuneCountInString(text),
	}

	idx, within := pt.findPiece(charOffset)
	switch {
	case idx == len(pt.pieces):
		// Append at end of document.
		pt.pieces = append(pt.pieces, newPiece)
	case within == 0:
		pt.pieces = append(pt.pieces, Piece{})
		copy(pt.pieces[idx+1:], pt.pieces[idx:])
		pt.pieces[idx] = newPiece
	default:
		left, right := pt.splitPiece(pt.pieces[idx], within)
		pt.pieces = append(pt.pieces, Piece{}, Piece{})
		copy(pt.pieces[idx+3:], pt.pieces[idx+1:])
		pt.pieces[idx] = left
		pt.pieces[idx+1] = newPiece
		pt.pieces[idx+2] = right
	}

	pt.charCount += newPiece.CharCount
	pt.byteCount += newPiece.ByteLen
	pt.mergeAround(idx)
	pt.prefixStale = true
	return nil
}

// mergeAround merges adjacent Add pieces whose byte spans are contiguous,
// scanning a small window around idx.
func (pt *PieceTable) mergeAround(idx int) {
	lo := idx - 1
	if lo < 0 {
		lo = 0
	}
	i := lo
	for i+1 < len(pt.pieces) && i <= idx+2 {
		a, b := pt.pieces[i], pt.pieces[i+1]
		if a.Kind == BufferAdd && b.Kind == BufferAdd && a.ByteStart+a.ByteLen == b.ByteStart {
			pt.pieces[i] = Piece{
				Kind:      BufferAdd,
				ByteStart: a.ByteStart,
				ByteLen:   a.ByteLen + b.ByteLen,
				CharCount: a.CharCount + b.CharCount,
			}
			pt.pieces = append(pt.pieces[:i+1], pt.pieces[i+2:]...)
			continue
		}
		i++
	}
}

// Delete removes the characters in [startChar, endChar).
// Returns ErrOutOfRange if the range is invalid.
func (pt *PieceTable) Delete(startChar, endChar int) error {
	if startChar < 0 || startChar > endChar || endChar > pt.charCount {
		return ErrOutOfRange
	}
	if startChar == endChar {
		return nil
	}

	startIdx, startWithin := pt.findPiece(startChar)
	endIdx, endWithin := pt.findPiece(endChar)

	deletedChars := endChar - startChar
	deletedBytes := 0
	for i := startIdx; i < endIdx && i < len(pt.pieces); i++ {
		deletedBytes += pt.pieces[i].ByteLen
	}
	if startWithin > 0 {
		deletedBytes -= pt.byteOffsetForChar(pt.pieces[startIdx], startWithin)
	}
	if endIdx < len(pt.pieces) && endWithin > 0 {
		deletedBytes += pt.byteOffsetForChar(pt.pieces[endIdx], endWithin)
	}

	var replacement []Piece
	if startWithin > 0 {
		left, _ := pt.splitPiece(pt.pieces[startIdx], startWithin)
		replacement = append(replacement, left)
	}
	if endIdx < len(pt.pieces) && endWithin > 0 {
		_, right := pt.splitPiece(pt.pieces[endIdx], endWithin)
		replacement = append(replacement, right)
	}

	tailStart := endIdx
	if endWithin > 0 {
		tailStart = endIdx + 1
	}
	tail := pt.pieces[tailStart:]
	newPieces := make([]Piece, 0, startIdx+len(replacement)+len(tail))
	newPieces = append(newPieces, pt.pieces[:startIdx]...)
	newPieces = append(newPieces, replacement...)
	newPieces = append(newPieces, tail...)
	pt.pieces = newPieces

	pt.charCount -= deletedChars
	pt.byteCount -= deletedBytes
	pt.prefixStale = true
	return nil
}

// Text returns the entire document content.
// For large documents prefer TextRange.
func (pt *PieceTable) Text() string {
	var sb strings.Builder
	sb.Grow(pt.byteCount)
	for _, p := range pt.pieces {
		sb.Write(pt.bytes(p))
	}
	return sb.String()
}

// TextRange returns the text in [startChar, endChar) as a string.
// Only the pieces overlapping the range are visited; the rest of the
// document is never materialized.
func (pt *PieceTable) TextRange(startChar, endChar int) (string, error) {
	if startChar < 0 || startChar > endChar || endChar > pt.charCount {
		return "", ErrOutOfRange
	}
	if startChar == endChar {
		return "", nil
	}

	startIdx, startWithin := pt.findPiece(startChar)
	var sb strings.Builder
	remaining := endChar - startChar

	for i := startIdx; i < len(pt.pieces) && remaining > 0; i++ {
		p := pt.pieces[i]
		b := pt.bytes(p)
		from := 0
		avail := p.CharCount
		if i == startIdx && startWithin > 0 {
			from = pt.byteOffsetForChar(p, startWithin)
			avail -= startWithin
		}
		if avail <= remaining {
			sb.Write(b[from:])
			remaining -= avail
			continue
		}
		// Partial tail: scan forward `remaining` characters.
		off := from
		for j := 0; j < remaining; j++ {
			_, size := utf8.DecodeRune(b[off:])
			off += size
		}
		sb.Write(b[from:off])
		remaining = 0
	}
	return sb.String(), nil
}

// Compact rewrites all pieces against a fresh add buffer containing only
// live bytes, releasing dead space accumulated by deletions and overwrites.
func (pt *PieceTable) Compact() {
	if len(pt.pieces) == 0 {
		pt.add = nil
		pt.original = nil
		pt.prefixStale = true
		return
	}
	fresh := make([]byte, 0, pt.byteCount)
	for _, p := range pt.pieces {
		fresh = append(fresh, pt.bytes(p)...)
	}
	pt.original = nil
	pt.add = fresh
	pt.pieces = []Piece{{
		Kind:      BufferAdd,
		ByteStart: 0,
		ByteLen:   len(fresh),
		CharCount: pt.charCount,
	}}
	pt.prefixStale = true
}
