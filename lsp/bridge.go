// Package lsp bridges the editor's character-offset data model to the
// UTF-16 line/character coordinates and types used by language-server
// protocols. It converts positions, ranges, diagnostics, and document
// symbols into github.com/sourcegraph/go-lsp structures at the external
// boundary; nothing inside the core depends on this package.
package lsp

import (
	"github.com/sourcegraph/go-lsp"

	"github.com/windoze/editor-core/diagnostics"
	"github.com/windoze/editor-core/editor"
	"github.com/windoze/editor-core/symbols"
)

// PositionFor converts a character offset to an LSP UTF-16 position.
func PositionFor(ed *editor.Editor, offset int) (lsp.Position, error) {
	line, ch, err := ed.CharOffsetToUTF16(offset)
	if err != nil {
		return lsp.Position{}, err
	}
	return lsp.Position{Line: line, Character: ch}, nil
}

// OffsetFor converts an LSP UTF-16 position to a character offset.
func OffsetFor(ed *editor.Editor, pos lsp.Position) (int, error) {
	return ed.UTF16ToCharOffset(pos.Line, pos.Character)
}

// RangeFor converts a half-open character range to an LSP range.
func RangeFor(ed *editor.Editor, start, end int) (lsp.Range, error) {
	s, err := PositionFor(ed, start)
	if err != nil {
		return lsp.Range{}, err
	}
	e, err := PositionFor(ed, end)
	if err != nil {
		return lsp.Range{}, err
	}
	return lsp.Range{Start: s, End: e}, nil
}

// CharRangeFor converts an LSP range to character offsets.
func CharRangeFor(ed *editor.Editor, r lsp.Range) (start, end int, err error) {
	start, err = OffsetFor(ed, r.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err = OffsetFor(ed, r.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// severityFor maps diagnostic severities to LSP numeric severities; the
// two scales already agree.
func severityFor(s diagnostics.Severity) lsp.DiagnosticSeverity {
	return lsp.DiagnosticSeverity(s)
}

// DiagnosticFor converts one diagnostic to its LSP shape.
func DiagnosticFor(ed *editor.Editor, d diagnostics.Diagnostic) (lsp.Diagnostic, error) {
	r, err := RangeFor(ed, d.Range.Start, d.Range.End)
	if err != nil {
		return lsp.Diagnostic{}, err
	}
	return lsp.Diagnostic{
		Range:    r,
		Severity: severityFor(d.Severity),
		Code:     d.Code,
		Source:   d.Source,
		Message:  d.Message,
	}, nil
}

// DiagnosticsFor converts the buffer's diagnostics, skipping any whose
// range no longer resolves.
func DiagnosticsFor(ed *editor.Editor) []lsp.Diagnostic {
	items := ed.Diagnostics().All()
	out := make([]lsp.Diagnostic, 0, len(items))
	for _, d := range items {
		ld, err := DiagnosticFor(ed, d)
		if err != nil {
			continue
		}
		out = append(out, ld)
	}
	return out
}

// FromLSPDiagnostic converts an incoming LSP diagnostic to the editor's
// character-offset model.
func FromLSPDiagnostic(ed *editor.Editor, d lsp.Diagnostic) (diagnostics.Diagnostic, error) {
	start, end, err := CharRangeFor(ed, d.Range)
	if err != nil {
		return diagnostics.Diagnostic{}, err
	}
	return diagnostics.Diagnostic{
		Range:    diagnostics.Range{Start: start, End: end},
		Severity: diagnostics.Severity(d.Severity),
		Code:     d.Code,
		Source:   d.Source,
		Message:  d.Message,
	}, nil
}

// SymbolInformationFor flattens the outline into LSP symbol information
// records for a document URI.
func SymbolInformationFor(ed *editor.Editor, uri string) []lsp.SymbolInformation {
	outline := ed.Outline()
	flat := outline.FlattenPreorder()
	out := make([]lsp.SymbolInformation, 0, len(flat))
	for _, s := range flat {
		r, err := RangeFor(ed, s.Range.Start, s.Range.End)
		if err != nil {
			continue
		}
		out = append(out, lsp.SymbolInformation{
			Name: s.Name,
			Kind: lsp.SymbolKind(s.Kind),
			Location: lsp.Location{
				URI:   lsp.DocumentURI(uri),
				Range: r,
			},
		})
	}
	return out
}

// FromLSPSymbolKind converts an LSP symbol kind value.
func FromLSPSymbolKind(kind lsp.SymbolKind) symbols.Kind {
	return symbols.Kind(kind)
}

// ContentChangeFor converts one delta edit into an LSP incremental content
// change against the pre-edit document.
func ContentChangeFor(ed *editor.Editor, start, end int, newText string) (lsp.TextDocumentContentChangeEvent, error) {
	r, err := RangeFor(ed, start, end)
	if err != nil {
		return lsp.TextDocumentContentChangeEvent{}, err
	}
	length := uint(end - start)
	return lsp.TextDocumentContentChangeEvent{
		Range:       &r,
		RangeLength: length,
		Text:        newText,
	}, nil
}
