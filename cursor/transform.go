package cursor

// EditSpan describes an applied edit for offset transformation: the
// pre-edit character range [Start, End) was replaced by InsertedLen
// characters.
type EditSpan struct {
	Start       int
	End         int
	InsertedLen int
}

// Delta returns the change in document length.
func (e EditSpan) Delta() int {
	return e.InsertedLen - (e.End - e.Start)
}

// TransformOffset maps a pre-edit offset to its post-edit position.
//
//   - offsets after the edit shift by the delta
//   - offsets at a pure insertion point follow the inserted text
//   - offsets inside a replaced range move to the end of the new text
func TransformOffset(offset int, e EditSpan) int {
	if offset < e.Start {
		return offset
	}
	if offset >= e.End {
		return offset + e.Delta()
	}
	return e.Start + e.InsertedLen
}

// TransformOffsetSticky is TransformOffset except that an offset exactly at
// a pure insertion point stays put instead of following the inserted text.
func TransformOffsetSticky(offset int, e EditSpan) int {
	if e.Start == e.End && offset == e.Start {
		return offset
	}
	return TransformOffset(offset, e)
}

// TransformSelection maps both ends of a selection through an edit.
// The sticky column survives only when the selection is untouched.
func TransformSelection(s Selection, e EditSpan) Selection {
	anchor := TransformOffset(s.Anchor, e)
	head := TransformOffset(s.Head, e)
	if anchor != s.Anchor || head != s.Head {
		s.PreferredX = NoPreferredX
	}
	s.Anchor = anchor
	s.Head = head
	return s
}

// TransformSet maps every selection in the set through an edit.
func TransformSet(cs *Set, e EditSpan) {
	for i := range cs.selections {
		cs.selections[i] = TransformSelection(cs.selections[i], e)
	}
	cs.normalize()
}

// TransformSetMulti maps the set through a sequence of edits given in
// application order.
func TransformSetMulti(cs *Set, edits []EditSpan) {
	for _, e := range edits {
		TransformSet(cs, e)
	}
}
