// Package panel keeps the client-side state of one bulletin board section:
// the loaded list, the create form and the single in-progress edit
package panel

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Record is anything with a stable identifier
type Record interface {
	RecordID() int64
}

// Backend is the remote collection a panel talks to.
// *client.Resource satisfies it
type Backend[T Record, C any, E any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, body C) (T, error)
	Update(ctx context.Context, id int64, body E) (T, error)
	Delete(ctx context.Context, id int64) error
	Increment(ctx context.Context, id int64) (T, error)
}

// Config describes how one resource type behaves in a panel
type Config[T Record, C any, E any] struct {
	// Less orders the displayed list
	Less func(a, b T) bool

	// Prepend places created records at the top instead of re-sorting
	Prepend bool

	ValidateDraft func(C) error
	ValidateEdit  func(E) error

	// EditFrom seeds an edit draft from an existing record
	EditFrom func(T) E

	// Confirm is asked before a delete is sent; nil always confirms
	Confirm func(id int64) bool

	Logger zerolog.Logger
}

// Panel is the state container for one resource type.
// It is safe for concurrent use; network calls are made without holding the lock
type Panel[T Record, C any, E any] struct {
	mu      sync.Mutex
	backend Backend[T, C, E]
	config  Config[T, C, E]

	items    []T
	loading  bool
	formOpen bool
	draft    C

	editing   bool
	editingID int64
	editDraft E
}

// New creates an empty panel over a backend
func New[T Record, C any, E any](backend Backend[T, C, E], config Config[T, C, E]) *Panel[T, C, E] {
	return &Panel[T, C, E]{
		backend: backend,
		config:  config,
		items:   []T{},
	}
}

// Items returns a copy of the displayed list
func (p *Panel[T, C, E]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]T{}, p.items...)
}

// Loading reports whether a Load is in flight
func (p *Panel[T, C, E]) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.loading
}

// Load fetches the full list and sorts it.
// On failure the previous list is kept
func (p *Panel[T, C, E]) Load(ctx context.Context) bool {
	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()

	list, err := p.backend.List(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.config.Logger.Error().Err(err).Msg("error fetching records")
		return false
	}

	p.items = append([]T{}, list...)
	p.sort()
	return true
}

// OpenForm shows the create form
func (p *Panel[T, C, E]) OpenForm() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.formOpen = true
}

// CloseForm hides the create form, keeping the draft
func (p *Panel[T, C, E]) CloseForm() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.formOpen = false
}

// FormOpen reports whether the create form is shown
func (p *Panel[T, C, E]) FormOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.formOpen
}

// SetDraft replaces the create draft
func (p *Panel[T, C, E]) SetDraft(draft C) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.draft = draft
}

// Draft returns the create draft
func (p *Panel[T, C, E]) Draft() C {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.draft
}

// Submit creates a record from the draft.
// A draft with a blank required field is never sent.
// On success the draft is cleared and the form hidden;
// on failure both are left as they were
func (p *Panel[T, C, E]) Submit(ctx context.Context) bool {
	p.mu.Lock()
	draft := p.draft
	p.mu.Unlock()

	if p.config.ValidateDraft != nil && p.config.ValidateDraft(draft) != nil {
		return false
	}

	created, err := p.backend.Create(ctx, draft)
	if err != nil {
		p.config.Logger.Error().Err(err).Msg("error creating record")
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.config.Prepend {
		p.items = append([]T{created}, p.items...)
	} else {
		p.items = append(p.items, created)
		p.sort()
	}

	var empty C
	p.draft = empty
	p.formOpen = false
	return true
}

// StartEdit begins editing the record with the given id,
// replacing any edit already in progress
func (p *Panel[T, C, E]) StartEdit(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexOf(id)
	if i < 0 {
		return false
	}

	p.editing = true
	p.editingID = id
	p.editDraft = p.config.EditFrom(p.items[i])
	return true
}

// Editing returns the id of the record being edited, if any
func (p *Panel[T, C, E]) Editing() (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.editingID, p.editing
}

// SetEditDraft replaces the edit draft
func (p *Panel[T, C, E]) SetEditDraft(draft E) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.editDraft = draft
}

// EditDraft returns the edit draft
func (p *Panel[T, C, E]) EditDraft() E {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.editDraft
}

// CancelEdit discards the edit without contacting the server
func (p *Panel[T, C, E]) CancelEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clearEdit()
}

// SubmitEdit sends the edit draft and replaces the record with the server copy
func (p *Panel[T, C, E]) SubmitEdit(ctx context.Context) bool {
	p.mu.Lock()
	editing, id, draft := p.editing, p.editingID, p.editDraft
	p.mu.Unlock()

	if !editing {
		return false
	}
	if p.config.ValidateEdit != nil && p.config.ValidateEdit(draft) != nil {
		return false
	}

	updated, err := p.backend.Update(ctx, id, draft)
	if err != nil {
		p.config.Logger.Error().Err(err).Int64("id", id).Msg("error updating record")
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.replace(updated)
	if p.editing && p.editingID == id {
		p.clearEdit()
	}
	return true
}

// Delete asks for confirmation, then deletes the record
func (p *Panel[T, C, E]) Delete(ctx context.Context, id int64) bool {
	if p.config.Confirm != nil && !p.config.Confirm(id) {
		return false
	}

	err := p.backend.Delete(ctx, id)
	if err != nil {
		p.config.Logger.Error().Err(err).Int64("id", id).Msg("error deleting record")
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.items[:0:0]
	for _, item := range p.items {
		if item.RecordID() != id {
			kept = append(kept, item)
		}
	}
	p.items = kept
	return true
}

// Increment bumps the record's counter and replaces it with the server copy.
// Nothing changes locally until the server answers
func (p *Panel[T, C, E]) Increment(ctx context.Context, id int64) bool {
	updated, err := p.backend.Increment(ctx, id)
	if err != nil {
		p.config.Logger.Error().Err(err).Int64("id", id).Msg("error incrementing record")
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.replace(updated)
	return true
}

func (p *Panel[T, C, E]) indexOf(id int64) int {
	for i, item := range p.items {
		if item.RecordID() == id {
			return i
		}
	}

	return -1
}

// replace swaps in the record with a matching id and re-sorts
func (p *Panel[T, C, E]) replace(record T) {
	i := p.indexOf(record.RecordID())
	if i < 0 {
		return
	}

	p.items[i] = record
	p.sort()
}

func (p *Panel[T, C, E]) sort() {
	if p.config.Less == nil {
		return
	}

	sort.SliceStable(p.items, func(i, j int) bool {
		return p.config.Less(p.items[i], p.items[j])
	})
}

func (p *Panel[T, C, E]) clearEdit() {
	var empty E
	p.editing = false
	p.editingID = 0
	p.editDraft = empty
}
