package decorations

import "testing"

func TestSetReplaceAndClear(t *testing.T) {
	s := NewSet()
	s.Replace(LayerInlayHints, []Decoration{
		{Range: Range{5, 5}, Placement: PlacementInline, Kind: KindInlayHint, Text: ": int"},
	})
	if got := len(s.Layer(LayerInlayHints)); got != 1 {
		t.Fatalf("Layer len = %d", got)
	}
	s.Clear(LayerInlayHints)
	s.Clear(LayerInlayHints) // clearing twice equals once
	if got := len(s.Layer(LayerInlayHints)); got != 0 {
		t.Errorf("Layer len after clear = %d", got)
	}
}

func TestInRange(t *testing.T) {
	s := NewSet()
	s.Replace(LayerCodeLens, []Decoration{
		{Range: Range{0, 0}, Placement: PlacementBefore, Kind: KindCodeLens, Text: "3 refs"},
		{Range: Range{10, 14}, Placement: PlacementInline, Kind: KindHighlight},
	})
	if got := len(s.InRange(0, 5)); got != 1 {
		t.Errorf("InRange(0, 5) = %d, want 1", got)
	}
	if got := len(s.InRange(12, 13)); got != 1 {
		t.Errorf("InRange(12, 13) = %d, want 1", got)
	}
	if got := len(s.InRange(14, 20)); got != 0 {
		t.Errorf("InRange(14, 20) = %d, want 0", got)
	}
}

func TestShiftForEdit(t *testing.T) {
	s := NewSet()
	s.Replace(LayerInlayHints, []Decoration{
		{Range: Range{5, 5}, Kind: KindInlayHint},
		{Range: Range{10, 14}, Kind: KindHighlight},
	})
	s.ShiftForEdit(0, 0, 3)
	decs := s.Layer(LayerInlayHints)
	if decs[0].Range.Start != 8 || decs[1].Range.Start != 13 {
		t.Errorf("shift: %+v", decs)
	}

	// Delete a span containing the point anchor.
	s.ShiftForEdit(6, 12, 0)
	decs = s.Layer(LayerInlayHints)
	if decs[0].Range.Start != 6 || decs[0].Range.End != 6 {
		t.Errorf("point anchor: %+v", decs[0])
	}
	if decs[1].Range.Start != 7 || decs[1].Range.End != 11 {
		t.Errorf("clipped range: %+v", decs[1])
	}
}

func TestDataJSON(t *testing.T) {
	d := Decoration{Kind: KindDocumentLink}
	d, err := d.WithDataField("target", "https://example.com/doc")
	if err != nil {
		t.Fatal(err)
	}
	d, err = d.WithDataField("resolved", true)
	if err != nil {
		t.Fatal(err)
	}
	if got := d.DataField("target").String(); got != "https://example.com/doc" {
		t.Errorf("DataField(target) = %q", got)
	}
	if !d.DataField("resolved").Bool() {
		t.Error("DataField(resolved) = false")
	}
	if d.DataField("missing").Exists() {
		t.Error("missing field should not exist")
	}
}
