// Package state wraps a buffer core with version tracking, the modified
// flag, and a synchronous subscription list. It is the single entry point
// hosts use to execute commands, apply derived-state patches from
// processors, and query structured state.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/windoze/editor-core/cursor"
	"github.com/windoze/editor-core/decorations"
	"github.com/windoze/editor-core/delta"
	"github.com/windoze/editor-core/diagnostics"
	"github.com/windoze/editor-core/editor"
	"github.com/windoze/editor-core/intervals"
	"github.com/windoze/editor-core/processing"
	"github.com/windoze/editor-core/symbols"
)

// ErrProcessorFailed wraps an error returned by a document processor; no
// partial patch is applied.
var ErrProcessorFailed = errors.New("state: processor failed")

// Change is delivered to subscribers after state is consistent.
type Change struct {
	OldVersion uint64
	NewVersion uint64
	Type       editor.ChangeKind
	// Region is the affected character range for document changes.
	Region *editor.Range
	// Delta is attached to document changes for incremental consumers.
	Delta *delta.TextDelta
}

// Callback receives state changes synchronously, in subscription order.
type Callback func(Change)

// DocumentProcessor computes derived-state patches from a read snapshot of
// the manager. Implementations must not mutate the manager inside Process.
type DocumentProcessor interface {
	Process(m *Manager) ([]processing.Edit, error)
}

type subscriber struct {
	id uuid.UUID
	cb Callback
}

// Manager owns one buffer core. At most one mutating command runs at a
// time; readers share the lock. Different buffers are independent.
type Manager struct {
	mu sync.RWMutex
	ed *editor.Editor

	subs []subscriber

	scrollTop    int
	subRowOffset int
	height       int
	overscan     int
}

// NewManager wraps an editor.
func NewManager(ed *editor.Editor) *Manager {
	return &Manager{ed: ed}
}

// New builds a manager over a fresh editor for the given text.
func New(text string, viewportWidth int, opts ...editor.EditorOption) (*Manager, error) {
	ed, err := editor.New(text, viewportWidth, opts...)
	if err != nil {
		return nil, err
	}
	return NewManager(ed), nil
}

// Editor exposes the wrapped editor for read paths that need direct
// access (grids, conversions). Callers must respect the borrow
// discipline: no concurrent mutation.
func (m *Manager) Editor() *editor.Editor {
	return m.ed
}

// Version returns the current document version.
func (m *Manager) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ed.Version()
}

// Subscribe registers a callback and returns a token for Unsubscribe.
func (m *Manager) Subscribe(cb Callback) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.subs = append(m.subs, subscriber{id: id, cb: cb})
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.subs {
		if s.id == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return
		}
	}
}

// notify runs the callbacks synchronously in subscription order. Called
// without the lock held so callbacks can re-enter read paths.
func (m *Manager) notify(changes []Change) {
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	for _, c := range changes {
		for _, s := range subs {
			s.cb(c)
		}
	}
}

// Execute runs a command against the buffer. On success subscribers are
// notified after state is consistent; on failure state is unchanged and no
// callback runs.
func (m *Manager) Execute(cmd editor.Command) (editor.Result, error) {
	m.mu.Lock()
	oldVersion := m.ed.Version()
	res, events, err := m.ed.Execute(cmd)
	if err != nil {
		m.mu.Unlock()
		return editor.Result{}, err
	}
	newVersion := m.ed.Version()
	changes := make([]Change, 0, len(events))
	for _, ev := range events {
		c := Change{OldVersion: oldVersion, NewVersion: newVersion, Type: ev.Kind, Region: ev.Region}
		if ev.Kind == editor.ChangeDocument {
			c.Delta = m.ed.LastTextDelta()
		}
		changes = append(changes, c)
	}
	m.mu.Unlock()

	m.notify(changes)
	return res, nil
}

// ApplyProcessingEdits applies a derived-state patch atomically. Each
// application bumps the version once and notifies once per changed facet.
func (m *Manager) ApplyProcessingEdits(edits []processing.Edit) {
	if len(edits) == 0 {
		return
	}
	m.mu.Lock()
	oldVersion := m.ed.Version()

	kinds := make(map[editor.ChangeKind]bool)
	for _, e := range edits {
		switch pe := e.(type) {
		case processing.ReplaceStyleLayer:
			m.ed.Styles().ReplaceLayer(pe.Layer, pe.Intervals)
			kinds[editor.ChangeStyles] = true
		case processing.ClearStyleLayer:
			m.ed.Styles().ClearLayer(pe.Layer)
			kinds[editor.ChangeStyles] = true
		case processing.ReplaceFoldRegions:
			m.ed.Folds().ReplaceDerived(pe.Regions, pe.PreserveCollapsed)
			kinds[editor.ChangeFolding] = true
		case processing.ClearFoldRegions:
			m.ed.Folds().ClearDerived()
			kinds[editor.ChangeFolding] = true
		case processing.ReplaceDiagnostics:
			m.ed.Diagnostics().Replace(pe.Diagnostics)
			m.syncDiagnosticStyles()
			kinds[editor.ChangeDiagnostics] = true
		case processing.ClearDiagnostics:
			m.ed.Diagnostics().Clear()
			m.ed.Styles().ClearLayer(intervals.LayerDiagnostics)
			kinds[editor.ChangeDiagnostics] = true
		case processing.ReplaceDecorations:
			m.ed.Decorations().Replace(pe.Layer, pe.Decorations)
			kinds[editor.ChangeDecorations] = true
		case processing.ClearDecorations:
			m.ed.Decorations().Clear(pe.Layer)
			kinds[editor.ChangeDecorations] = true
		case processing.ReplaceDocumentSymbols:
			m.ed.SetOutline(pe.Outline)
			kinds[editor.ChangeSymbols] = true
		case processing.ClearDocumentSymbols:
			m.ed.SetOutline(symbols.Outline{})
			kinds[editor.ChangeSymbols] = true
		}
	}

	m.ed.BumpVersion()
	newVersion := m.ed.Version()

	changes := make([]Change, 0, len(kinds))
	for _, k := range []editor.ChangeKind{
		editor.ChangeStyles, editor.ChangeFolding, editor.ChangeDiagnostics,
		editor.ChangeDecorations, editor.ChangeSymbols,
	} {
		if kinds[k] {
			changes = append(changes, Change{OldVersion: oldVersion, NewVersion: newVersion, Type: k})
		}
	}
	m.mu.Unlock()

	m.notify(changes)
}

// ApplyProcessor invokes a processor synchronously and applies its patch
// atomically. A processor error applies nothing and wraps
// ErrProcessorFailed.
func (m *Manager) ApplyProcessor(p DocumentProcessor) error {
	edits, err := p.Process(m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProcessorFailed, err)
	}
	m.ApplyProcessingEdits(edits)
	return nil
}

// syncDiagnosticStyles mirrors diagnostics into the diagnostics style
// layer so severities render as underline-style intervals.
func (m *Manager) syncDiagnosticStyles() {
	diags := m.ed.Diagnostics().All()
	ivs := make([]intervals.Interval, 0, len(diags))
	for _, d := range diags {
		ivs = append(ivs, intervals.Interval{
			Start:   d.Range.Start,
			End:     d.Range.End,
			StyleID: intervals.StyleId(d.Severity),
		})
	}
	m.ed.Styles().ReplaceLayer(intervals.LayerDiagnostics, ivs)
}

// Viewport configuration outside the command path.

// SetViewportHeight records the viewport height in rows.
func (m *Manager) SetViewportHeight(rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height = rows
}

// SetScrollTop records the first visible visual row.
func (m *Manager) SetScrollTop(row int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row < 0 {
		row = 0
	}
	m.scrollTop = row
}

// SetSubRowOffset records the smooth-scroll sub-row offset in cells.
func (m *Manager) SetSubRowOffset(offset int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subRowOffset = offset
}

// SetOverscanRows records how many extra rows hosts render around the
// viewport.
func (m *Manager) SetOverscanRows(rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overscan = rows
}

// State queries.

// DocumentState is the coarse document summary.
type DocumentState struct {
	Version    uint64
	LineCount  int
	CharCount  int
	IsModified bool
}

// GetDocumentState returns the document summary.
func (m *Manager) GetDocumentState() DocumentState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return DocumentState{
		Version:    m.ed.Version(),
		LineCount:  m.ed.LineCount(),
		CharCount:  m.ed.CharCount(),
		IsModified: m.ed.IsModified(),
	}
}

// GetCursorState returns the selection set.
func (m *Manager) GetCursorState() []cursor.Selection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ed.Selections().All()
}

// ViewportState describes the visible window in visual rows.
type ViewportState struct {
	ScrollTop       int
	Height          int
	SubRowOffset    int
	OverscanRows    int
	VisibleStartRow int
	VisibleEndRow   int
	TotalVisualRows int
}

// GetViewportState returns the viewport summary.
func (m *Manager) GetViewportState() ViewportState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := m.ed.TotalVisualRows()
	end := m.scrollTop + m.height
	if end > total {
		end = total
	}
	return ViewportState{
		ScrollTop:       m.scrollTop,
		Height:          m.height,
		SubRowOffset:    m.subRowOffset,
		OverscanRows:    m.overscan,
		VisibleStartRow: m.scrollTop,
		VisibleEndRow:   end,
		TotalVisualRows: total,
	}
}

// GetStyleState returns the style intervals per layer.
func (m *Manager) GetStyleState() map[intervals.StyleLayerId][]intervals.Interval {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[intervals.StyleLayerId][]intervals.Interval)
	for _, id := range m.ed.Styles().LayerIDs() {
		ivs := m.ed.Styles().Layer(id).Intervals()
		cp := make([]intervals.Interval, len(ivs))
		copy(cp, ivs)
		out[id] = cp
	}
	return out
}

// GetDecorations returns the decorations per layer.
func (m *Manager) GetDecorations() map[decorations.LayerId][]decorations.Decoration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ed.Decorations().Layers()
}

// GetDiagnostics returns the diagnostic list.
func (m *Manager) GetDiagnostics() []diagnostics.Diagnostic {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := m.ed.Diagnostics().All()
	out := make([]diagnostics.Diagnostic, len(items))
	copy(out, items)
	return out
}

// GetOutline returns the document symbol outline.
func (m *Manager) GetOutline() symbols.Outline {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ed.Outline()
}

// GetFoldingState returns all fold regions.
func (m *Manager) GetFoldingState() []intervals.FoldRegion {
	m.mu.RLock()
	defer m.mu.RUnlock()
	regions := m.ed.Folds().Regions()
	out := make([]intervals.FoldRegion, len(regions))
	copy(out, regions)
	return out
}

// TakeLastTextDelta returns and clears the buffered delta.
func (m *Manager) TakeLastTextDelta() *delta.TextDelta {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ed.TakeLastTextDelta()
}

// MarkSaved records the clean point.
func (m *Manager) MarkSaved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ed.MarkSaved()
}

// HasChangedSince reports whether the version advanced past v.
func (m *Manager) HasChangedSince(v uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ed.Version() > v
}
