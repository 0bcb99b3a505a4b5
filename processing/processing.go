// Package processing defines the derived-state patch types: external
// processors (syntax highlighters, folding providers, diagnostics engines,
// symbol indexers; see state.DocumentProcessor) read the state and return
// Edit patches which the state manager applies atomically.
// Processors never mutate editor state directly, and no patch from a
// failed processor run is applied.
package processing

import (
	"github.com/windoze/editor-core/decorations"
	"github.com/windoze/editor-core/diagnostics"
	"github.com/windoze/editor-core/intervals"
	"github.com/windoze/editor-core/symbols"
)

// Edit is one derived-state patch. Implementations are the Replace*/Clear*
// types below.
type Edit interface {
	isProcessingEdit()
}

// ReplaceStyleLayer replaces an entire style layer.
type ReplaceStyleLayer struct {
	Layer     intervals.StyleLayerId
	Intervals []intervals.Interval
}

// ClearStyleLayer clears a style layer.
type ClearStyleLayer struct {
	Layer intervals.StyleLayerId
}

// ReplaceFoldRegions replaces the derived fold set, leaving user folds
// intact. PreserveCollapsed keeps the collapsed state of regions whose
// span still exists.
type ReplaceFoldRegions struct {
	Regions           []intervals.FoldRegion
	PreserveCollapsed bool
}

// ClearFoldRegions clears the derived fold set.
type ClearFoldRegions struct{}

// ReplaceDiagnostics replaces the diagnostic list.
type ReplaceDiagnostics struct {
	Diagnostics []diagnostics.Diagnostic
}

// ClearDiagnostics clears the diagnostic list.
type ClearDiagnostics struct{}

// ReplaceDecorations replaces a decoration layer.
type ReplaceDecorations struct {
	Layer       decorations.LayerId
	Decorations []decorations.Decoration
}

// ClearDecorations clears a decoration layer.
type ClearDecorations struct {
	Layer decorations.LayerId
}

// ReplaceDocumentSymbols replaces the document outline.
type ReplaceDocumentSymbols struct {
	Outline symbols.Outline
}

// ClearDocumentSymbols clears the document outline.
type ClearDocumentSymbols struct{}

func (ReplaceStyleLayer) isProcessingEdit()      {}
func (ClearStyleLayer) isProcessingEdit()        {}
func (ReplaceFoldRegions) isProcessingEdit()     {}
func (ClearFoldRegions) isProcessingEdit()       {}
func (ReplaceDiagnostics) isProcessingEdit()     {}
func (ClearDiagnostics) isProcessingEdit()       {}
func (ReplaceDecorations) isProcessingEdit()     {}
func (ClearDecorations) isProcessingEdit()       {}
func (ReplaceDocumentSymbols) isProcessingEdit() {}
func (ClearDocumentSymbols) isProcessingEdit()   {}
