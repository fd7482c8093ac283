// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richdoc

import (
	"github.com/google/uuid"
)

// Ref is a stable reference to an image, table or table row. Refs survive
// edits that move the node, unlike paths.
type Ref string

const attrRef = "ref"

// State is an immutable editor state.
type State struct {
	Doc       *Node
	Selection Selection
	// StoredMarks overrides the marks applied to the next typed text. Nil
	// means "inherit from the text before the caret".
	StoredMarks []Mark

	env *env
}

// NewState returns a state with the caret at the start of the first
// textblock.
func NewState(doc *Node) State {
	if doc == nil {
		doc = Doc()
	}
	st := State{Doc: doc, env: defaultEnv()}
	st.Selection = Caret(firstTextPos(doc))
	return st
}

// WithSelection returns st with a new selection.
func (st State) WithSelection(sel Selection) State {
	st.Selection = sel
	st.StoredMarks = nil
	return st
}

func (st State) newRef() Ref {
	if st.env == nil || st.env.newRef == nil {
		return Ref(uuid.NewString())
	}
	return Ref(st.env.newRef())
}

// Transaction is the result of a command.
type Transaction struct {
	State State
	// DocChanged is set when the document tree differs from the input.
	DocChanged bool
	// Structural marks edits that must reach the owning section at once,
	// such as resizes and table attribute changes.
	Structural bool
	// Ref is the reference of a node created by the command, if any.
	Ref Ref
}

// Command computes a transaction from a state. It reports false when it
// does not apply; in that case the transaction must be ignored.
type Command func(State) (Transaction, bool)

// View is a projection of editor state that is refreshed after every
// transaction.
type View interface {
	Update(st State)
	Destroy()
}

type env struct {
	newRef func() string
	encode ImageEncoder
}

func defaultEnv() *env {
	return &env{newRef: uuid.NewString}
}

// Option configures an Editor.
type Option func(*Editor)

// WithRefGenerator sets the function used to mint node refs.
func WithRefGenerator(fn func() string) Option {
	return func(e *Editor) {
		e.env.newRef = fn
	}
}

// WithImageEncoder sets how pasted image files become image sources.
func WithImageEncoder(fn ImageEncoder) Option {
	return func(e *Editor) {
		e.env.encode = fn
	}
}

// WithChangeHandler sets the function receiving document changes. It is
// called through the editor's debouncer and may run on another goroutine.
func WithChangeHandler(fn func(doc *Node)) Option {
	return func(e *Editor) {
		e.onChange = fn
	}
}

// WithDebounce overrides the change debouncer configuration.
func WithDebounce(cfg DebounceConfig) Option {
	return func(e *Editor) {
		e.debounce = cfg
	}
}

// Editor holds the current state of one document and applies commands to
// it. It is not safe for concurrent use; all calls are expected from a
// single event loop.
type Editor struct {
	state    State
	env      *env
	views    []View
	onChange func(doc *Node)
	debounce DebounceConfig
	changes  *ChangeDebouncer
}

// NewEditor creates an editor for doc.
func NewEditor(doc *Node, opts ...Option) *Editor {
	e := &Editor{env: defaultEnv(), debounce: DefaultDebounceConfig()}
	for _, opt := range opts {
		opt(e)
	}
	if doc == nil {
		doc = Doc()
	}
	doc = assignRefs(doc, e.env.newRef)
	e.state = NewState(syncImageFlags(doc))
	e.state.env = e.env
	e.changes = NewChangeDebouncer(e.debounce, func(doc *Node) {
		if e.onChange != nil {
			e.onChange(doc)
		}
	})
	return e
}

// State returns the current state.
func (e *Editor) State() State {
	return e.state
}

// Doc returns the current document.
func (e *Editor) Doc() *Node {
	return e.state.Doc
}

// SetSelection moves the selection without changing the document.
func (e *Editor) SetSelection(sel Selection) {
	e.state = e.state.WithSelection(sel)
	e.updateViews()
}

// AddView registers a view; it is updated immediately and after every
// transaction until removed.
func (e *Editor) AddView(v View) {
	e.views = append(e.views, v)
	v.Update(e.state)
}

// RemoveView unregisters and destroys v.
func (e *Editor) RemoveView(v View) {
	for i, existing := range e.views {
		if existing == v {
			e.views = append(e.views[:i], e.views[i+1:]...)
			v.Destroy()
			return
		}
	}
}

// Exec runs cmd against the current state and dispatches its transaction.
func (e *Editor) Exec(cmd Command) bool {
	_, ok := e.exec(cmd)
	return ok
}

func (e *Editor) exec(cmd Command) (Transaction, bool) {
	tr, ok := cmd(e.state)
	if !ok {
		return Transaction{}, false
	}
	e.Dispatch(tr)
	return tr, true
}

// Dispatch applies a transaction. Image table flags are re-derived, views
// are refreshed and, when the document changed, the change is propagated:
// structural edits immediately, everything else debounced.
func (e *Editor) Dispatch(tr Transaction) {
	next := tr.State
	next.env = e.env
	if tr.DocChanged {
		next.Doc = syncImageFlags(assignRefs(next.Doc, e.env.newRef))
	}
	e.state = next
	e.updateViews()

	if !tr.DocChanged {
		return
	}
	e.changes.Notify(e.state.Doc)
	if tr.Structural {
		e.changes.Flush()
	}
}

// Blur flushes any pending change notification.
func (e *Editor) Blur() {
	e.changes.Flush()
}

// Close flushes pending changes, stops the debouncer and destroys views.
func (e *Editor) Close() {
	e.changes.Stop()
	for _, v := range e.views {
		v.Destroy()
	}
	e.views = nil
}

// HTML serialises the current document.
func (e *Editor) HTML() string {
	return Serialize(e.state.Doc)
}

func (e *Editor) updateViews() {
	for _, v := range e.views {
		v.Update(e.state)
	}
}

// Convenience wrappers over the package commands.

// ApplyMark runs ApplyMark.
func (e *Editor) ApplyMark(t MarkType, value string) bool { return e.Exec(ApplyMark(t, value)) }

// InsertText runs InsertText.
func (e *Editor) InsertText(s string) bool { return e.Exec(InsertText(s)) }

// InsertImage inserts an image and returns its reference.
func (e *Editor) InsertImage(src, alt string) (Ref, bool) {
	tr, ok := e.exec(InsertImage(src, alt))
	return tr.Ref, ok
}

// ResizeImage runs ResizeImage.
func (e *Editor) ResizeImage(ref Ref, width *int) bool { return e.Exec(ResizeImage(ref, width)) }

// AlignImage runs AlignImage.
func (e *Editor) AlignImage(ref Ref, align string) bool { return e.Exec(AlignImage(ref, align)) }

// InsertTable inserts a table and returns its reference.
func (e *Editor) InsertTable(rows, cols int, header bool) (Ref, bool) {
	tr, ok := e.exec(InsertTable(rows, cols, header))
	return tr.Ref, ok
}

// SetCellStyle runs SetCellStyle.
func (e *Editor) SetCellStyle(style CellStyle) bool { return e.Exec(SetCellStyle(style)) }

// ResizeTableRow runs ResizeTableRow.
func (e *Editor) ResizeTableRow(row Ref, px int) bool { return e.Exec(ResizeTableRow(row, px)) }

// ResizeColumn runs ResizeColumn.
func (e *Editor) ResizeColumn(table Ref, col, px int) bool {
	return e.Exec(ResizeColumn(table, col, px))
}

// SetTableAlignment runs SetTableAlignment.
func (e *Editor) SetTableAlignment(align string) bool { return e.Exec(SetTableAlignment(align)) }

// Paste runs HandlePaste and reports whether the clipboard was claimed.
func (e *Editor) Paste(cb Clipboard) bool { return e.Exec(HandlePaste(cb)) }

// firstTextPos returns the start of the first textblock in doc.
func firstTextPos(doc *Node) Pos {
	var found []int
	walk(doc, nil, func(n *Node, path []int) bool {
		if found != nil {
			return false
		}
		if n.IsTextblock() {
			found = path
			return false
		}
		return true
	})
	return Pos{Path: found}
}

// assignRefs gives every image, table and table row a ref if it lacks one.
func assignRefs(n *Node, newRef func() string) *Node {
	if newRef == nil {
		newRef = uuid.NewString
	}
	changed := false
	var content []*Node
	if len(n.Content) > 0 {
		content = make([]*Node, len(n.Content))
		for i, c := range n.Content {
			content[i] = assignRefs(c, newRef)
			if content[i] != c {
				changed = true
			}
		}
	}
	out := n
	if changed {
		out = n.withContent(content)
	}
	switch n.Type {
	case TypeImage, TypeTable, TypeTableRow:
		if out.Ref() == "" {
			out = out.withAttrs(Attrs{attrRef: newRef()})
		}
	}
	return out
}
