package workspace

import (
	"sort"

	"github.com/windoze/editor-core/cursor"
	"github.com/windoze/editor-core/delta"
	"github.com/windoze/editor-core/editor"
	"github.com/windoze/editor-core/processing"
	"github.com/windoze/editor-core/search"
	"github.com/windoze/editor-core/snapshot"
	"github.com/windoze/editor-core/symbols"
)

// withView loads a view's state into its buffer's editor and runs f.
// It serves read paths that mutate nothing, so the view core is not
// captured back afterwards; conversions depend on the view's wrap settings.
func (w *Workspace) withView(id ViewId, f func(v *viewEntry, ed *editor.Editor) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.views[id]
	if !ok {
		return ErrViewNotFound
	}
	buf, ok := w.buffers[v.buffer]
	if !ok {
		return ErrBufferNotFound
	}
	v.core.applyToEditor(buf.ed)
	return f(v, buf.ed)
}

// SelectionsForView returns a view's selection set.
func (w *Workspace) SelectionsForView(id ViewId) ([]cursor.Selection, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	out := make([]cursor.Selection, len(v.core.selections))
	copy(out, v.core.selections)
	return out, nil
}

// CursorPositionForView returns the primary caret's logical position.
func (w *Workspace) CursorPositionForView(id ViewId) (editor.Position, error) {
	var pos editor.Position
	err := w.withView(id, func(v *viewEntry, ed *editor.Editor) error {
		p, err := ed.CharToLineCol(ed.Selections().Primary().Head)
		pos = p
		return err
	})
	return pos, err
}

// TotalVisualRowsForView returns the wrap- and fold-aware visual row count
// under the view's settings.
func (w *Workspace) TotalVisualRowsForView(id ViewId) (int, error) {
	total := 0
	err := w.withView(id, func(v *viewEntry, ed *editor.Editor) error {
		total = ed.TotalVisualRows()
		return nil
	})
	return total, err
}

// VisualToLogicalForView converts a visible (row, x) for a view.
func (w *Workspace) VisualToLogicalForView(id ViewId, row, x int) (editor.Position, error) {
	var pos editor.Position
	err := w.withView(id, func(v *viewEntry, ed *editor.Editor) error {
		line, col, err := ed.VisualPosToLogical(row, x)
		if err != nil {
			return err
		}
		pos = editor.Position{Line: line, Column: col}
		return nil
	})
	return pos, err
}

// LogicalToVisualForView converts a logical position for a view.
func (w *Workspace) LogicalToVisualForView(id ViewId, pos editor.Position) (row, x int, err error) {
	err = w.withView(id, func(v *viewEntry, ed *editor.Editor) error {
		r, xx, err := ed.LogicalToVisualPos(pos.Line, pos.Column)
		if err != nil {
			return err
		}
		row, x = r, xx
		return nil
	})
	return row, x, err
}

// HeadlessGridForView renders a view's grid window.
func (w *Workspace) HeadlessGridForView(id ViewId, startRow, count int) (*snapshot.Grid, error) {
	var grid *snapshot.Grid
	err := w.withView(id, func(v *viewEntry, ed *editor.Editor) error {
		grid = ed.HeadlessGrid(startRow, count)
		return nil
	})
	return grid, err
}

// ComposedGridForView renders a view's composed grid window.
func (w *Workspace) ComposedGridForView(id ViewId, startRow, count int) (*snapshot.ComposedGrid, error) {
	var grid *snapshot.ComposedGrid
	err := w.withView(id, func(v *viewEntry, ed *editor.Editor) error {
		grid = ed.ComposedGrid(startRow, count)
		return nil
	})
	return grid, err
}

// MinimapGridForView renders a view's minimap window.
func (w *Workspace) MinimapGridForView(id ViewId, startRow, count int) (*snapshot.MinimapGrid, error) {
	var grid *snapshot.MinimapGrid
	err := w.withView(id, func(v *viewEntry, ed *editor.Editor) error {
		grid = ed.MinimapGrid(startRow, count)
		return nil
	})
	return grid, err
}

// Viewport state per view.

// ViewportState describes a view's visible window.
type ViewportState struct {
	Width           int
	Height          int
	ScrollTop       int
	SubRowOffset    int
	OverscanRows    int
	VisibleStartRow int
	VisibleEndRow   int
	PrefetchStart   int
	PrefetchEnd     int
	TotalVisualRows int
}

// SetScrollTop sets a view's first visible visual row.
func (w *Workspace) SetScrollTop(id ViewId, row int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.views[id]
	if !ok {
		return ErrViewNotFound
	}
	if row < 0 {
		row = 0
	}
	v.scrollTop = row
	return nil
}

// SetSubRowOffset sets a view's smooth-scroll sub-row offset.
func (w *Workspace) SetSubRowOffset(id ViewId, offset int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.views[id]
	if !ok {
		return ErrViewNotFound
	}
	v.subRowOffset = offset
	return nil
}

// SetOverscanRows sets a view's overscan row count.
func (w *Workspace) SetOverscanRows(id ViewId, rows int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.views[id]
	if !ok {
		return ErrViewNotFound
	}
	v.overscan = rows
	return nil
}

// SetViewportHeight sets a view's height in rows.
func (w *Workspace) SetViewportHeight(id ViewId, rows int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.views[id]
	if !ok {
		return ErrViewNotFound
	}
	v.height = rows
	return nil
}

// ViewportStateForView returns a view's viewport summary.
func (w *Workspace) ViewportStateForView(id ViewId) (ViewportState, error) {
	var vs ViewportState
	err := w.withView(id, func(v *viewEntry, ed *editor.Editor) error {
		total := ed.TotalVisualRows()
		end := v.scrollTop + v.height
		if v.height == 0 || end > total {
			end = total
		}
		pStart := v.scrollTop - v.overscan
		if pStart < 0 {
			pStart = 0
		}
		pEnd := end + v.overscan
		if pEnd > total {
			pEnd = total
		}
		vs = ViewportState{
			Width:           v.core.viewportWidth,
			Height:          v.height,
			ScrollTop:       v.scrollTop,
			SubRowOffset:    v.subRowOffset,
			OverscanRows:    v.overscan,
			VisibleStartRow: v.scrollTop,
			VisibleEndRow:   end,
			PrefetchStart:   pStart,
			PrefetchEnd:     pEnd,
			TotalVisualRows: total,
		}
		return nil
	})
	return vs, err
}

// Delta consumption.

// TakeLastTextDeltaForBuffer returns and clears a buffer's delta slot.
func (w *Workspace) TakeLastTextDeltaForBuffer(id BufferId) (*delta.TextDelta, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	buf, ok := w.buffers[id]
	if !ok {
		return nil, ErrBufferNotFound
	}
	d := buf.lastDelta
	buf.lastDelta = nil
	return d, nil
}

// TakeLastTextDeltaForView returns the buffer's last delta once per view:
// each view tracks its own consumption cursor.
func (w *Workspace) TakeLastTextDeltaForView(id ViewId) (*delta.TextDelta, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	d := v.lastDelta
	v.lastDelta = nil
	return d, nil
}

// Derived state.

// ApplyProcessingEdits applies a processor patch to a buffer atomically
// and notifies every view of the buffer.
func (w *Workspace) ApplyProcessingEdits(id BufferId, edits []processing.Edit) error {
	w.mu.Lock()
	buf, ok := w.buffers[id]
	if !ok {
		w.mu.Unlock()
		return ErrBufferNotFound
	}
	if len(edits) == 0 {
		w.mu.Unlock()
		return nil
	}

	kinds := applyProcessingToEditor(buf.ed, edits)
	buf.version++

	type note struct {
		cbs []ViewCallback
		ch  ViewChange
	}
	var notes []note
	for viewID, v := range w.views {
		if v.buffer != id {
			continue
		}
		for _, kind := range kinds {
			old := v.version
			v.version++
			cbs := make([]ViewCallback, len(v.callbacks))
			copy(cbs, v.callbacks)
			notes = append(notes, note{cbs, ViewChange{View: viewID, OldVersion: old, NewVersion: v.version, Type: kind}})
		}
	}
	w.mu.Unlock()

	for _, n := range notes {
		for _, cb := range n.cbs {
			cb(n.ch)
		}
	}
	return nil
}

// applyProcessingToEditor applies patches directly to an editor and
// returns the changed facets in a stable order.
func applyProcessingToEditor(ed *editor.Editor, edits []processing.Edit) []editor.ChangeKind {
	kinds := make(map[editor.ChangeKind]bool)
	for _, e := range edits {
		switch pe := e.(type) {
		case processing.ReplaceStyleLayer:
			ed.Styles().ReplaceLayer(pe.Layer, pe.Intervals)
			kinds[editor.ChangeStyles] = true
		case processing.ClearStyleLayer:
			ed.Styles().ClearLayer(pe.Layer)
			kinds[editor.ChangeStyles] = true
		case processing.ReplaceFoldRegions:
			ed.Folds().ReplaceDerived(pe.Regions, pe.PreserveCollapsed)
			kinds[editor.ChangeFolding] = true
		case processing.ClearFoldRegions:
			ed.Folds().ClearDerived()
			kinds[editor.ChangeFolding] = true
		case processing.ReplaceDiagnostics:
			ed.Diagnostics().Replace(pe.Diagnostics)
			kinds[editor.ChangeDiagnostics] = true
		case processing.ClearDiagnostics:
			ed.Diagnostics().Clear()
			kinds[editor.ChangeDiagnostics] = true
		case processing.ReplaceDecorations:
			ed.Decorations().Replace(pe.Layer, pe.Decorations)
			kinds[editor.ChangeDecorations] = true
		case processing.ClearDecorations:
			ed.Decorations().Clear(pe.Layer)
			kinds[editor.ChangeDecorations] = true
		case processing.ReplaceDocumentSymbols:
			ed.SetOutline(pe.Outline)
			kinds[editor.ChangeSymbols] = true
		case processing.ClearDocumentSymbols:
			ed.SetOutline(symbols.Outline{})
			kinds[editor.ChangeSymbols] = true
		}
	}
	ed.BumpVersion()

	var out []editor.ChangeKind
	for _, k := range []editor.ChangeKind{
		editor.ChangeStyles, editor.ChangeFolding, editor.ChangeDiagnostics,
		editor.ChangeDecorations, editor.ChangeSymbols,
	} {
		if kinds[k] {
			out = append(out, k)
		}
	}
	return out
}

// Multi-buffer operations.

// SearchResult is one match of a workspace-wide search.
type SearchResult struct {
	Buffer    BufferId
	URI       string
	Range     search.Match
	MatchText string
}

// SearchAllOpenBuffers searches every open buffer in BufferId order and
// returns a flat, deterministic match list.
func (w *Workspace) SearchAllOpenBuffers(query string, opts search.Options) ([]SearchResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := make([]BufferId, 0, len(w.buffers))
	for id := range w.buffers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []SearchResult
	for _, id := range ids {
		buf := w.buffers[id]
		text := buf.ed.Text()
		matches, err := search.FindAll(text, query, opts)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			matchText, _ := buf.ed.TextRange(m.Start, m.End)
			out = append(out, SearchResult{
				Buffer:    id,
				URI:       buf.meta.URI,
				Range:     m,
				MatchText: matchText,
			})
		}
	}
	return out, nil
}

// ApplyTextEdits applies per-buffer edit batches: one undo step and one
// delta per buffer, broadcast to that buffer's views.
func (w *Workspace) ApplyTextEdits(edits map[BufferId][]editor.TextEditSpec) error {
	ids := make([]BufferId, 0, len(edits))
	for id := range edits {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if len(edits[id]) == 0 {
			continue
		}
		viewID, err := w.anyViewOfBuffer(id)
		if err != nil {
			return err
		}
		if _, err := w.Execute(viewID, editor.ApplyTextEdits{Edits: edits[id]}); err != nil {
			return err
		}
	}
	return nil
}

// anyViewOfBuffer picks the lowest view id referencing the buffer.
func (w *Workspace) anyViewOfBuffer(id BufferId) (ViewId, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.buffers[id]; !ok {
		return 0, ErrBufferNotFound
	}
	best := ViewId(0)
	for viewID, v := range w.views {
		if v.buffer == id && (best == 0 || viewID < best) {
			best = viewID
		}
	}
	if best == 0 {
		return 0, ErrViewNotFound
	}
	return best, nil
}
