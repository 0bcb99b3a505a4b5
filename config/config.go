// Package config loads editor options from TOML. Options supply the
// defaults applied when hosts create buffers and views; everything remains
// overridable per view through commands.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/windoze/editor-core/editor"
	"github.com/windoze/editor-core/layout"
)

// Options are the host-configurable editor defaults.
type Options struct {
	// TabWidth is the tab width in cells.
	TabWidth int `toml:"tab_width"`
	// TabKey selects what the Tab key inserts: "tab" or "spaces".
	TabKey string `toml:"tab_key"`
	// WrapMode selects soft wrapping: "none", "char", or "word".
	WrapMode string `toml:"wrap_mode"`
	// WrapIndent selects continuation indentation: "none",
	// "match-leading", or "fixed" (using WrapIndentCells); any other value
	// means none.
	WrapIndent string `toml:"wrap_indent"`
	// WrapIndentCells is the cell count for a fixed wrap indent.
	WrapIndentCells int `toml:"wrap_indent_cells"`
	// ViewportWidth is the default viewport width in cells.
	ViewportWidth int `toml:"viewport_width"`
	// UndoLimit is loaded from the file but not applied: EditorOptions does
	// not pass it on, so buffers keep the default undo group cap.
	UndoLimit int `toml:"undo_limit"`
}

// Default returns the built-in option set.
func Default() Options {
	return Options{
		TabWidth:      layout.DefaultTabWidth,
		TabKey:        "spaces",
		WrapMode:      "char",
		WrapIndent:    "none",
		ViewportWidth: 80,
	}
}

// Load reads options from a TOML file, layered over the defaults.
// A missing file returns the defaults.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Options{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(data)
}

// LoadFrom reads options from a reader, layered over the defaults.
func LoadFrom(r io.Reader) (Options, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Options{}, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (Options, error) {
	opts := Default()
	if err := toml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing config: %w", err)
	}
	if opts.TabWidth < 1 {
		opts.TabWidth = layout.DefaultTabWidth
	}
	if opts.ViewportWidth < 1 {
		opts.ViewportWidth = 80
	}
	return opts, nil
}

// LayoutOptions converts the options into layout engine options.
func (o Options) LayoutOptions() []layout.Option {
	return []layout.Option{
		layout.WithTabWidth(o.TabWidth),
		layout.WithWrapMode(o.Mode()),
		layout.WithWrapIndent(o.Indent()),
	}
}

// EditorOptions converts the options into editor options.
func (o Options) EditorOptions() []editor.EditorOption {
	return []editor.EditorOption{
		editor.WithTabBehavior(o.TabBehavior()),
		editor.WithLayout(o.LayoutOptions()...),
	}
}

// Mode resolves the configured wrap mode.
func (o Options) Mode() layout.WrapMode {
	switch o.WrapMode {
	case "none":
		return layout.WrapNone
	case "word":
		return layout.WrapWord
	default:
		return layout.WrapChar
	}
}

// Indent resolves the configured wrap indent policy.
func (o Options) Indent() layout.WrapIndent {
	switch o.WrapIndent {
	case "match-leading":
		return layout.MatchLeadingIndent()
	case "fixed":
		return layout.FixedIndent(o.WrapIndentCells)
	default:
		return layout.WrapIndent{}
	}
}

// TabBehavior resolves the configured Tab key behavior.
func (o Options) TabBehavior() editor.TabBehavior {
	if o.TabKey == "tab" {
		return editor.TabBehaviorTab
	}
	return editor.TabBehaviorSpaces
}
