package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCharWidth(t *testing.T) {
	tests := []struct {
		r    rune
		want int
	}{
		{'a', 1},
		{' ', 1},
		{'世', 2},
		{'ﾊ', 1},    // halfwidth katakana
		{0x0301, 0}, // combining acute accent
		{'\n', 0},
	}
	for _, tt := range tests {
		if got := CharWidth(tt.r); got != tt.want {
			t.Errorf("CharWidth(%q) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestCellWidthAtTab(t *testing.T) {
	tests := []struct {
		offset, tabWidth, want int
	}{
		{0, 4, 4},
		{1, 4, 3},
		{3, 4, 1},
		{4, 4, 4},
		{5, 8, 3},
	}
	for _, tt := range tests {
		if got := CellWidthAt('\t', tt.offset, tt.tabWidth); got != tt.want {
			t.Errorf("CellWidthAt(tab, %d, %d) = %d, want %d", tt.offset, tt.tabWidth, got, tt.want)
		}
	}
}

func TestWrapPointsChar(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []int // char indexes of wrap points
	}{
		{"no wrap", "abc", 4, nil},
		{"exact fit", "abcd", 4, nil},
		{"one wrap", "abcde", 4, []int{4}},
		{"two wraps", "abcdefghij", 4, []int{4, 8}},
		{"wide chars", "你好世界", 4, []int{2}},
		{"wide char cannot split", "a你好", 4, []int{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := CalculateWrapPoints(tt.text, tt.width, DefaultTabWidth, WrapChar, WrapIndent{})
			var got []int
			for _, p := range points {
				got = append(got, p.CharIndex)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("wrap points mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrapPointsWord(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []int
	}{
		{"break at space", "hello world", 8, []int{6}},
		{"fallback to char", "abcdefghij", 4, []int{4, 8}},
		{"break after punctuation", "foo,bar,baz", 6, []int{4, 8}},
		{"cjk breaks freely", "日本語テキスト", 6, []int{3, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := CalculateWrapPoints(tt.text, tt.width, DefaultTabWidth, WrapWord, WrapIndent{})
			var got []int
			for _, p := range points {
				got = append(got, p.CharIndex)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("wrap points mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrapIndentPolicies(t *testing.T) {
	// 16 chars, width 8: continuation indented per policy.
	text := "    abcdefghijkl"

	none := CalculateWrapPoints(text, 8, 4, WrapChar, WrapIndent{})
	if len(none) == 0 || none[0].StartX != 0 {
		t.Errorf("WrapIndentNone: StartX = %v", none)
	}

	fixed := CalculateWrapPoints(text, 8, 4, WrapChar, FixedIndent(2))
	if len(fixed) == 0 || fixed[0].StartX != 2 {
		t.Errorf("FixedIndent(2): points = %v", fixed)
	}

	match := CalculateWrapPoints(text, 8, 4, WrapChar, MatchLeadingIndent())
	if len(match) == 0 || match[0].StartX != 4 {
		t.Errorf("MatchLeadingIndent: points = %v", match)
	}

	// Indent is clamped to width-1 so continuations keep at least one cell.
	clamped := CalculateWrapPoints(text, 8, 4, WrapChar, FixedIndent(20))
	if len(clamped) == 0 || clamped[0].StartX != 7 {
		t.Errorf("FixedIndent(20) clamp: points = %v", clamped)
	}
}

func TestEngineVisualRows(t *testing.T) {
	e := NewEngine(4)
	e.SetLines([]string{"abcdefghij", "xy", ""})
	// Line 0 wraps into 3 rows, line 1 and 2 are single rows.
	if got := e.VisualRowCount(); got != 5 {
		t.Errorf("VisualRowCount() = %d, want 5", got)
	}
	row, err := e.FirstVisualRow(1)
	if err != nil || row != 3 {
		t.Errorf("FirstVisualRow(1) = %d, %v; want 3", row, err)
	}

	line, seg, err := e.VisualRowToLine(2)
	if err != nil || line != 0 || seg != 2 {
		t.Errorf("VisualRowToLine(2) = (%d, %d), %v; want (0, 2)", line, seg, err)
	}
	line, seg, err = e.VisualRowToLine(4)
	if err != nil || line != 2 || seg != 0 {
		t.Errorf("VisualRowToLine(4) = (%d, %d), %v; want (2, 0)", line, seg, err)
	}
}

// TestSoftWrapRoundTrip follows the end-to-end wrap scenario: a ten-char
// line at width 4, then an insertion that shifts every mapping.
func TestSoftWrapRoundTrip(t *testing.T) {
	e := NewEngine(4)
	e.SetLines([]string{"abcdefghij"})

	line, col, err := e.VisualToLogical(1, 0)
	if err != nil || line != 0 || col != 4 {
		t.Fatalf("VisualToLogical(1, 0) = (%d, %d), %v; want (0, 4)", line, col, err)
	}

	if err := e.UpdateLine(0, "Xabcdefghij"); err != nil {
		t.Fatal(err)
	}
	if got := e.VisualRowCount(); got != 3 {
		t.Errorf("VisualRowCount() = %d, want 3", got)
	}
	row, x, err := e.LogicalToVisual(0, 5)
	if err != nil || row != 1 || x != 1 {
		t.Errorf("LogicalToVisual(0, 5) = (%d, %d), %v; want (1, 1)", row, x, err)
	}
}

func TestLogicalVisualRoundTrip(t *testing.T) {
	e := NewEngine(6, WithWrapMode(WrapWord))
	e.SetLines([]string{"hello wide 世界 text", "", "\tindent"})

	for line := 0; line < e.LineCount(); line++ {
		text, _ := e.LineText(line)
		n := len([]rune(text))
		for col := 0; col <= n; col++ {
			row, x, err := e.LogicalToVisual(line, col)
			if err != nil {
				t.Fatalf("LogicalToVisual(%d, %d) failed: %v", line, col, err)
			}
			backLine, backCol, err := e.VisualToLogical(row, x)
			if err != nil {
				t.Fatalf("VisualToLogical(%d, %d) failed: %v", row, x, err)
			}
			backRow, backX, err := e.LogicalToVisual(backLine, backCol)
			if err != nil {
				t.Fatalf("LogicalToVisual(%d, %d) failed: %v", backLine, backCol, err)
			}
			if backRow != row || backX != x {
				t.Errorf("round trip (%d,%d): visual (%d,%d) -> logical (%d,%d) -> visual (%d,%d)",
					line, col, row, x, backLine, backCol, backRow, backX)
			}
		}
	}
}

func TestVisualToLogicalSnapping(t *testing.T) {
	e := NewEngine(10)
	e.SetLines([]string{"short"})
	line, col, err := e.VisualToLogical(0, 99)
	if err != nil || line != 0 || col != 5 {
		t.Errorf("snap: got (%d, %d), %v; want (0, 5)", line, col, err)
	}

	line, col, err = e.VisualToLogicalVirtual(0, 8)
	if err != nil || line != 0 || col != 8 {
		t.Errorf("virtual: got (%d, %d), %v; want (0, 8)", line, col, err)
	}
}

func TestEngineIncrementalLineOps(t *testing.T) {
	e := NewEngine(4)
	e.SetLines([]string{"aaaa", "bbbbbbbb"})
	if got := e.VisualRowCount(); got != 3 {
		t.Fatalf("VisualRowCount() = %d, want 3", got)
	}

	if err := e.InsertLine(1, "cccccc"); err != nil {
		t.Fatal(err)
	}
	if got := e.VisualRowCount(); got != 5 {
		t.Errorf("after InsertLine: VisualRowCount() = %d, want 5", got)
	}

	if err := e.DeleteLine(0); err != nil {
		t.Fatal(err)
	}
	if got := e.VisualRowCount(); got != 4 {
		t.Errorf("after DeleteLine: VisualRowCount() = %d, want 4", got)
	}

	if err := e.ReplaceLines(0, 2, []string{"x"}); err != nil {
		t.Fatal(err)
	}
	if got := e.VisualRowCount(); got != 1 {
		t.Errorf("after ReplaceLines: VisualRowCount() = %d, want 1", got)
	}
}

func TestSettingsInvalidateLayout(t *testing.T) {
	e := NewEngine(4)
	e.SetLines([]string{"abcdefgh"})
	if got := e.VisualRowCount(); got != 2 {
		t.Fatalf("VisualRowCount() = %d, want 2", got)
	}
	e.SetViewportWidth(8)
	if got := e.VisualRowCount(); got != 1 {
		t.Errorf("after width change: VisualRowCount() = %d, want 1", got)
	}
	e.SetWrapMode(WrapNone)
	e.SetViewportWidth(2)
	if got := e.VisualRowCount(); got != 1 {
		t.Errorf("WrapNone: VisualRowCount() = %d, want 1", got)
	}
}

// TestCellWidthConservation checks that the cell widths along a segment sum
// to the x distance covered by the segment.
func TestCellWidthConservation(t *testing.T) {
	e := NewEngine(7, WithTabWidth(4))
	e.SetLines([]string{"ab\tcd 世界 xyz"})

	text, _ := e.LineText(0)
	layoutInfo, _ := e.LineLayout(0)
	runes := []rune(text)

	for seg := 0; seg < layoutInfo.VisualRows; seg++ {
		start, end, err := e.SegmentBounds(0, seg)
		if err != nil {
			t.Fatal(err)
		}
		sum := 0
		xInLine := VisualXForColumn(text, start, 4)
		for i := start; i < end; i++ {
			w := CellWidthAt(runes[i], xInLine, 4)
			sum += w
			xInLine += w
		}
		// The last column of a segment maps to startX + sum of widths.
		lastCol := end
		if seg < layoutInfo.VisualRows-1 {
			lastCol = end - 1
		}
		_, lastX, err := e.LogicalToVisual(0, lastCol)
		if err != nil {
			t.Fatal(err)
		}
		wantLast := e.segmentStartX(0, seg) + sum
		if seg < layoutInfo.VisualRows-1 {
			wantLast -= CellWidthAt(runes[end-1], VisualXForColumn(text, end-1, 4), 4)
		}
		if lastX != wantLast {
			t.Errorf("segment %d: x for col %d = %d, want %d", seg, lastCol, lastX, wantLast)
		}
	}
}
