package config

import (
	"strings"
	"testing"

	"github.com/windoze/editor-core/editor"
	"github.com/windoze/editor-core/layout"
)

func TestDefaults(t *testing.T) {
	o := Default()
	if o.TabWidth != 4 || o.ViewportWidth != 80 {
		t.Errorf("defaults: %+v", o)
	}
	if o.Mode() != layout.WrapChar {
		t.Errorf("default wrap mode: %v", o.Mode())
	}
	if o.TabBehavior() != editor.TabBehaviorSpaces {
		t.Errorf("default tab behavior: %v", o.TabBehavior())
	}
}

func TestLoadFrom(t *testing.T) {
	doc := `
tab_width = 8
tab_key = "tab"
wrap_mode = "word"
wrap_indent = "fixed"
wrap_indent_cells = 2
viewport_width = 120
undo_limit = 500
`
	o, err := LoadFrom(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if o.TabWidth != 8 || o.ViewportWidth != 120 || o.UndoLimit != 500 {
		t.Errorf("options: %+v", o)
	}
	if o.Mode() != layout.WrapWord {
		t.Errorf("wrap mode: %v", o.Mode())
	}
	if got := o.Indent(); got.Kind != layout.WrapIndentFixed || got.Cells != 2 {
		t.Errorf("wrap indent: %+v", got)
	}
	if o.TabBehavior() != editor.TabBehaviorTab {
		t.Errorf("tab behavior: %v", o.TabBehavior())
	}
}

func TestLoadFromPartialKeepsDefaults(t *testing.T) {
	o, err := LoadFrom(strings.NewReader(`tab_width = 2`))
	if err != nil {
		t.Fatal(err)
	}
	if o.TabWidth != 2 || o.ViewportWidth != 80 || o.WrapMode != "char" {
		t.Errorf("options: %+v", o)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	if _, err := LoadFrom(strings.NewReader("tab_width = [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	o, err := Load("/nonexistent/editor.toml")
	if err != nil {
		t.Fatal(err)
	}
	if o.TabWidth != 4 {
		t.Errorf("options: %+v", o)
	}
}

func TestOptionBuilders(t *testing.T) {
	o := Default()
	if got := len(o.LayoutOptions()); got != 3 {
		t.Errorf("layout options = %d", got)
	}
	if got := len(o.EditorOptions()); got != 2 {
		t.Errorf("editor options = %d", got)
	}
}
