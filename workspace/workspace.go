// Package workspace owns buffers and views by id. Views are lightweight:
// a buffer reference plus view-local state (selections, wrap settings,
// scroll) that is loaded into the buffer's editor before a command runs
// and snapshotted back afterwards. Edits broadcast one TextDelta to every
// view of the buffer and shift sibling views' selections through it.
package workspace

import (
	"errors"
	"fmt"
	"sync"

	"github.com/windoze/editor-core/cursor"
	"github.com/windoze/editor-core/delta"
	"github.com/windoze/editor-core/editor"
	"github.com/windoze/editor-core/layout"
)

// Errors returned by workspace operations.
var (
	ErrBufferNotFound = errors.New("workspace: buffer not found")
	ErrViewNotFound   = errors.New("workspace: view not found")
	ErrBufferInUse    = errors.New("workspace: buffer still has views")
	ErrURIAlreadyOpen = errors.New("workspace: uri already open")
)

// BufferId identifies a buffer; ids are monotonic and never reused.
type BufferId uint64

// ViewId identifies a view; ids are monotonic and never reused.
type ViewId uint64

// BufferMetadata carries host-facing buffer attributes.
type BufferMetadata struct {
	URI        string
	LineEnding editor.LineEnding
}

// ViewChange is delivered to view subscribers.
type ViewChange struct {
	View       ViewId
	OldVersion uint64
	NewVersion uint64
	Type       editor.ChangeKind
	// Delta accompanies document modifications.
	Delta *delta.TextDelta
}

// ViewCallback receives view changes synchronously after state is
// consistent.
type ViewCallback func(ViewChange)

// viewCore is the view-local state swapped into the buffer's editor
// around each command.
type viewCore struct {
	selections    []cursor.Selection
	viewportWidth int
	wrapMode      layout.WrapMode
	wrapIndent    layout.WrapIndent
	tabWidth      int
	tabBehavior   editor.TabBehavior
}

func (vc *viewCore) applyToEditor(ed *editor.Editor) {
	lay := ed.Layout()
	lay.SetViewportWidth(vc.viewportWidth)
	lay.SetWrapMode(vc.wrapMode)
	lay.SetWrapIndent(vc.wrapIndent)
	lay.SetTabWidth(vc.tabWidth)
	ed.SetTabBehavior(vc.tabBehavior)
	ed.Selections().SetAll(vc.selections)
}

func (vc *viewCore) captureFromEditor(ed *editor.Editor) {
	lay := ed.Layout()
	vc.viewportWidth = lay.ViewportWidth()
	vc.wrapMode = lay.Mode()
	vc.wrapIndent = lay.Indent()
	vc.tabWidth = lay.TabWidth()
	vc.tabBehavior = ed.TabBehavior()
	vc.selections = ed.Selections().All()
}

type bufferEntry struct {
	ed        *editor.Editor
	meta      BufferMetadata
	version   uint64
	lastDelta *delta.TextDelta
}

type viewEntry struct {
	buffer  BufferId
	core    viewCore
	version uint64

	callbacks []ViewCallback

	scrollTop    int
	subRowOffset int
	overscan     int
	height       int

	lastDelta *delta.TextDelta
}

// Workspace is the arena-style owner of buffers and views.
type Workspace struct {
	mu sync.Mutex

	nextBufferID uint64
	nextViewID   uint64

	buffers     map[BufferId]*bufferEntry
	uriToBuffer map[string]BufferId
	views       map[ViewId]*viewEntry
	activeView  ViewId
}

// New creates an empty workspace.
func New() *Workspace {
	return &Workspace{
		buffers:     make(map[BufferId]*bufferEntry),
		uriToBuffer: make(map[string]BufferId),
		views:       make(map[ViewId]*viewEntry),
	}
}

// BufferCount returns the number of open buffers.
func (w *Workspace) BufferCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buffers)
}

// ViewCount returns the number of views.
func (w *Workspace) ViewCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.views)
}

// OpenBuffer creates a buffer from text plus an initial view with the
// given viewport width. A non-empty URI must be unique in the workspace.
func (w *Workspace) OpenBuffer(text, uri string, viewportWidth int) (BufferId, ViewId, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if uri != "" {
		if _, exists := w.uriToBuffer[uri]; exists {
			return 0, 0, fmt.Errorf("%w: %s", ErrURIAlreadyOpen, uri)
		}
	}

	ed, err := editor.New(text, viewportWidth, editor.WithURI(uri))
	if err != nil {
		return 0, 0, err
	}

	w.nextBufferID++
	bufID := BufferId(w.nextBufferID)
	w.buffers[bufID] = &bufferEntry{
		ed:   ed,
		meta: BufferMetadata{URI: uri, LineEnding: ed.LineEnding()},
	}
	if uri != "" {
		w.uriToBuffer[uri] = bufID
	}

	viewID := w.createViewLocked(bufID, viewportWidth)
	return bufID, viewID, nil
}

// CreateView adds another view of an existing buffer.
func (w *Workspace) CreateView(buffer BufferId, viewportWidth int) (ViewId, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.buffers[buffer]; !ok {
		return 0, ErrBufferNotFound
	}
	return w.createViewLocked(buffer, viewportWidth), nil
}

func (w *Workspace) createViewLocked(buffer BufferId, viewportWidth int) ViewId {
	w.nextViewID++
	id := ViewId(w.nextViewID)
	ed := w.buffers[buffer].ed
	vc := viewCore{}
	vc.captureFromEditor(ed)
	vc.viewportWidth = viewportWidth
	w.views[id] = &viewEntry{buffer: buffer, core: vc}
	if w.activeView == 0 {
		w.activeView = id
	}
	return id
}

// CloseView removes a view. The buffer stays open.
func (w *Workspace) CloseView(id ViewId) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.views[id]; !ok {
		return ErrViewNotFound
	}
	delete(w.views, id)
	if w.activeView == id {
		w.activeView = 0
	}
	return nil
}

// CloseBuffer removes a buffer. Fails with ErrBufferInUse while any view
// references it.
func (w *Workspace) CloseBuffer(id BufferId) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, ok := w.buffers[id]
	if !ok {
		return ErrBufferNotFound
	}
	for _, v := range w.views {
		if v.buffer == id {
			return ErrBufferInUse
		}
	}
	if entry.meta.URI != "" {
		delete(w.uriToBuffer, entry.meta.URI)
	}
	delete(w.buffers, id)
	return nil
}

// ActiveView returns the active view id, or 0 when none is set.
func (w *Workspace) ActiveView() ViewId {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeView
}

// SetActiveView marks a view active.
func (w *Workspace) SetActiveView(id ViewId) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.views[id]; !ok {
		return ErrViewNotFound
	}
	w.activeView = id
	return nil
}

// BufferForView resolves a view's buffer.
func (w *Workspace) BufferForView(id ViewId) (BufferId, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.views[id]
	if !ok {
		return 0, ErrViewNotFound
	}
	return v.buffer, nil
}

// BufferForURI resolves a URI to an open buffer.
func (w *Workspace) BufferForURI(uri string) (BufferId, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.uriToBuffer[uri]
	return id, ok
}

// Metadata returns a buffer's metadata.
func (w *Workspace) Metadata(id BufferId) (BufferMetadata, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, ok := w.buffers[id]
	if !ok {
		return BufferMetadata{}, ErrBufferNotFound
	}
	return entry.meta, nil
}

// SetBufferURI sets or changes a buffer's URI.
func (w *Workspace) SetBufferURI(id BufferId, uri string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, ok := w.buffers[id]
	if !ok {
		return ErrBufferNotFound
	}
	if uri != "" {
		if other, exists := w.uriToBuffer[uri]; exists && other != id {
			return fmt.Errorf("%w: %s", ErrURIAlreadyOpen, uri)
		}
	}
	if entry.meta.URI != "" {
		delete(w.uriToBuffer, entry.meta.URI)
	}
	entry.meta.URI = uri
	entry.ed.SetURI(uri)
	if uri != "" {
		w.uriToBuffer[uri] = id
	}
	return nil
}

// BufferText returns a buffer's full text.
func (w *Workspace) BufferText(id BufferId) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, ok := w.buffers[id]
	if !ok {
		return "", ErrBufferNotFound
	}
	return entry.ed.Text(), nil
}

// BufferVersion returns a buffer's version counter.
func (w *Workspace) BufferVersion(id BufferId) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, ok := w.buffers[id]
	if !ok {
		return 0, ErrBufferNotFound
	}
	return entry.version, nil
}

// SubscribeView registers a callback on a view.
func (w *Workspace) SubscribeView(id ViewId, cb ViewCallback) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.views[id]
	if !ok {
		return ErrViewNotFound
	}
	v.callbacks = append(v.callbacks, cb)
	return nil
}

// Execute routes a command to a view's buffer: view-local state is loaded
// into the editor, the command runs, the state is captured back, and
// document changes broadcast to every view of the buffer.
func (w *Workspace) Execute(viewID ViewId, cmd editor.Command) (editor.Result, error) {
	w.mu.Lock()

	view, ok := w.views[viewID]
	if !ok {
		w.mu.Unlock()
		return editor.Result{}, ErrViewNotFound
	}
	buf, ok := w.buffers[view.buffer]
	if !ok {
		w.mu.Unlock()
		return editor.Result{}, ErrBufferNotFound
	}
	ed := buf.ed

	view.core.applyToEditor(ed)
	res, events, err := ed.Execute(cmd)
	if err != nil {
		w.mu.Unlock()
		return editor.Result{}, err
	}
	view.core.captureFromEditor(ed)

	var notifications []struct {
		cbs []ViewCallback
		ch  ViewChange
	}
	enqueue := func(v *viewEntry, id ViewId, kind editor.ChangeKind, d *delta.TextDelta) {
		old := v.version
		v.version++
		cbs := make([]ViewCallback, len(v.callbacks))
		copy(cbs, v.callbacks)
		notifications = append(notifications, struct {
			cbs []ViewCallback
			ch  ViewChange
		}{cbs, ViewChange{View: id, OldVersion: old, NewVersion: v.version, Type: kind, Delta: d}})
	}

	docDelta := (*delta.TextDelta)(nil)
	var broadcastKinds []editor.ChangeKind
	var localKinds []editor.ChangeKind
	for _, ev := range events {
		switch ev.Kind {
		case editor.ChangeDocument:
			docDelta = ed.LastTextDelta()
		case editor.ChangeStyles, editor.ChangeFolding, editor.ChangeDecorations,
			editor.ChangeDiagnostics, editor.ChangeSymbols:
			broadcastKinds = append(broadcastKinds, ev.Kind)
		default:
			localKinds = append(localKinds, ev.Kind)
		}
	}

	if docDelta != nil {
		ed.TakeLastTextDelta()
		buf.version++
		buf.lastDelta = docDelta

		spans := deltaEditSpans(docDelta)
		for id, other := range w.views {
			if other.buffer != view.buffer {
				continue
			}
			other.lastDelta = docDelta
			if id != viewID {
				set := cursor.NewSetFrom(other.core.selections)
				cursor.TransformSetMulti(set, spans)
				set.Clamp(ed.CharCount())
				other.core.selections = set.All()
			}
			enqueue(other, id, editor.ChangeDocument, docDelta)
		}
	}
	for _, kind := range broadcastKinds {
		buf.version++
		for id, other := range w.views {
			if other.buffer == view.buffer {
				enqueue(other, id, kind, nil)
			}
		}
	}
	if docDelta == nil {
		for _, kind := range localKinds {
			enqueue(view, viewID, kind, nil)
		}
	}

	w.mu.Unlock()

	for _, n := range notifications {
		for _, cb := range n.cbs {
			cb(n.ch)
		}
	}
	return res, nil
}

// deltaEditSpans converts a delta's edits into selection-transform spans,
// in application order.
func deltaEditSpans(d *delta.TextDelta) []cursor.EditSpan {
	spans := make([]cursor.EditSpan, 0, len(d.Edits))
	for _, e := range d.Edits {
		spans = append(spans, cursor.EditSpan{
			Start:       e.Start,
			End:         e.Start + e.DeletedLen(),
			InsertedLen: e.InsertedLen(),
		})
	}
	return spans
}
