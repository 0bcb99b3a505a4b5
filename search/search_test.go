package search

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindNext(t *testing.T) {
	text := "foo bar foo baz"
	tests := []struct {
		name  string
		query string
		opts  Options
		from  int
		want  Match
		found bool
	}{
		{"first", "foo", DefaultOptions(), 0, Match{0, 3}, true},
		{"second", "foo", DefaultOptions(), 1, Match{8, 11}, true},
		{"none", "qux", DefaultOptions(), 0, Match{}, false},
		{"case-insensitive", "FOO", Options{}, 0, Match{0, 3}, true},
		{"from end", "foo", DefaultOptions(), 12, Match{}, false},
		{"empty query", "", DefaultOptions(), 0, Match{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok, err := FindNext(text, tt.query, tt.opts, tt.from)
			if err != nil {
				t.Fatalf("FindNext failed: %v", err)
			}
			if ok != tt.found || (ok && m != tt.want) {
				t.Errorf("FindNext = %v, %v; want %v, %v", m, ok, tt.want, tt.found)
			}
		})
	}
}

func TestFindNextMultibyte(t *testing.T) {
	text := "日本語 abc 日本語"
	m, ok, err := FindNext(text, "日本語", DefaultOptions(), 1)
	if err != nil || !ok {
		t.Fatalf("FindNext failed: %v %v", ok, err)
	}
	if m.Start != 8 || m.End != 11 {
		t.Errorf("match = %v, want {8, 11} in char offsets", m)
	}
}

func TestFindPrev(t *testing.T) {
	text := "abc abc abc"
	m, ok, err := FindPrev(text, "abc", DefaultOptions(), 10)
	if err != nil || !ok {
		t.Fatalf("FindPrev failed: %v %v", ok, err)
	}
	if m.Start != 4 {
		t.Errorf("FindPrev start = %d, want 4", m.Start)
	}

	_, ok, err = FindPrev(text, "abc", DefaultOptions(), 0)
	if err != nil || ok {
		t.Errorf("FindPrev before any match: ok = %v", ok)
	}
}

func TestFindAllWholeWord(t *testing.T) {
	text := "cat catalog cat_x (cat)"
	got, err := FindAll(text, "cat", Options{CaseSensitive: true, WholeWord: true})
	if err != nil {
		t.Fatal(err)
	}
	want := []Match{{0, 3}, {19, 22}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FindAll mismatch (-want +got):\n%s", diff)
	}
}

func TestRegexSearch(t *testing.T) {
	text := "v1 v22 v333"
	got, err := FindAll(text, `v\d+`, Options{CaseSensitive: true, Regex: true})
	if err != nil {
		t.Fatal(err)
	}
	want := []Match{{0, 2}, {3, 6}, {7, 11}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FindAll mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidRegex(t *testing.T) {
	_, _, err := FindNext("text", "(unclosed", Options{Regex: true}, 0)
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("got %v, want ErrInvalidPattern", err)
	}
}

func TestIsMatchExact(t *testing.T) {
	text := "one two one"
	ok, err := IsMatchExact(text, "one", DefaultOptions(), Match{0, 3})
	if err != nil || !ok {
		t.Errorf("IsMatchExact exact = %v, %v", ok, err)
	}
	ok, err = IsMatchExact(text, "one", DefaultOptions(), Match{0, 4})
	if err != nil || ok {
		t.Errorf("IsMatchExact wrong range = %v, %v", ok, err)
	}
}
