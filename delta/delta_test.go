package delta

import "testing"

func TestApplyDescendingEdits(t *testing.T) {
	// Three carets appended "!" at offsets 11, 7, 3 of "foo\nfoo\nfoo\n".
	d := &TextDelta{
		Edits: []Edit{
			{Start: 11, InsertedText: "!"},
			{Start: 7, InsertedText: "!"},
			{Start: 3, InsertedText: "!"},
		},
	}
	got := d.Apply("foo\nfoo\nfoo\n")
	want := "foo!\nfoo!\nfoo!\n"
	if got != want {
		t.Errorf("Apply = %q, want %q", got, want)
	}
}

func TestApplyReplace(t *testing.T) {
	d := &TextDelta{
		Edits: []Edit{{Start: 6, DeletedText: "world", InsertedText: "世界"}},
	}
	if got := d.Apply("hello world"); got != "hello 世界" {
		t.Errorf("Apply = %q", got)
	}
}

func TestEditLengths(t *testing.T) {
	e := Edit{Start: 2, DeletedText: "日本", InsertedText: "x"}
	if e.DeletedLen() != 2 || e.InsertedLen() != 1 || e.End() != 4 {
		t.Errorf("lengths: deleted=%d inserted=%d end=%d", e.DeletedLen(), e.InsertedLen(), e.End())
	}
}

func TestConcat(t *testing.T) {
	d := &TextDelta{BeforeVersion: 1, AfterVersion: 2, BeforeCharCount: 3, AfterCharCount: 4,
		Edits: []Edit{{Start: 3, InsertedText: "a"}}}
	d.Concat(&TextDelta{BeforeVersion: 2, AfterVersion: 3, AfterCharCount: 5,
		Edits: []Edit{{Start: 4, InsertedText: "b"}}})

	if len(d.Edits) != 2 || d.AfterVersion != 3 || d.AfterCharCount != 5 {
		t.Errorf("Concat result: %+v", d)
	}
	if got := d.Apply("abc"); got != "abcab" {
		t.Errorf("Apply after Concat = %q", got)
	}
}

func TestIsEmpty(t *testing.T) {
	var d *TextDelta
	if !d.IsEmpty() {
		t.Error("nil delta should be empty")
	}
	if !(&TextDelta{}).IsEmpty() {
		t.Error("zero delta should be empty")
	}
}
