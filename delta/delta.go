// Package delta defines the structured change records emitted after every
// edit command. Incremental consumers (line-server sync, parsers, indexes)
// apply a delta's edits in order to a copy of the pre-image to obtain the
// post-image, with no diffing required.
package delta

import "unicode/utf8"

// Edit is a single text edit in pre-document character offsets: the range
// [Start, Start+len(DeletedText)) is replaced by InsertedText.
type Edit struct {
	Start        int
	DeletedText  string
	InsertedText string
}

// DeletedLen returns the deleted length in characters.
func (e Edit) DeletedLen() int {
	return utf8.RuneCountInString(e.DeletedText)
}

// InsertedLen returns the inserted length in characters.
func (e Edit) InsertedLen() int {
	return utf8.RuneCountInString(e.InsertedText)
}

// End returns the exclusive end of the deleted range in the pre-document.
func (e Edit) End() int {
	return e.Start + e.DeletedLen()
}

// TextDelta describes one command's edits. Edits are ordered by descending
// pre-document offset, so applying them sequentially to a copy of the
// pre-image never invalidates a later edit's offsets.
type TextDelta struct {
	BeforeVersion uint64
	AfterVersion  uint64
	// GroupID is the undo group the edits belong to, when known.
	GroupID uint64
	Edits   []Edit

	BeforeCharCount int
	AfterCharCount  int
}

// IsEmpty reports whether the delta contains no edits.
func (d *TextDelta) IsEmpty() bool {
	return d == nil || len(d.Edits) == 0
}

// Apply transforms a copy of the pre-image text by this delta's edits.
// This is primarily a testing and consumer-side convenience.
func (d *TextDelta) Apply(pre string) string {
	runes := []rune(pre)
	for _, e := range d.Edits {
		tail := append([]rune(e.InsertedText), runes[e.Start+e.DeletedLen():]...)
		runes = append(runes[:e.Start:e.Start], tail...)
	}
	return string(runes)
}

// Concat appends the edits of another delta produced while the same undo
// group stayed open. Offsets remain per-edit pre-document positions at the
// time each edit was applied; ordering within the combined record keeps
// the original emission order.
func (d *TextDelta) Concat(other *TextDelta) {
	if other == nil {
		return
	}
	d.Edits = append(d.Edits, other.Edits...)
	d.AfterVersion = other.AfterVersion
	d.AfterCharCount = other.AfterCharCount
}
