// Package editor holds the add/edit form state and the locally patched item
// list behind the inventory editor screen.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockboard/internal/domain/models"
	"github.com/mamadbah2/stockboard/pkg/clients/inventory"
)

const subscriberBuffer = 16

var (
	// ErrDisposed is returned by every operation once the view-model has been disposed.
	ErrDisposed = errors.New("editor view-model disposed")
	// ErrItemNotFound is returned when an item id is not present in the local list.
	ErrItemNotFound = errors.New("item not found in local list")
	// ErrInvalidPage is returned for negative page indexes or non-positive page sizes.
	ErrInvalidPage = errors.New("invalid page index or size")
)

// Repository is the subset of the inventory client the editor talks to.
type Repository interface {
	List(ctx context.Context) (models.Snapshot, error)
	Create(ctx context.Context, fields models.ItemFields) (models.Item, error)
	Update(ctx context.Context, id models.ItemID, fields models.ItemFields) error
	Remove(ctx context.Context, id models.ItemID) error
}

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

const (
	ChangeLoaded  ChangeKind = "loaded"
	ChangeDraft   ChangeKind = "draft"
	ChangeEdit    ChangeKind = "edit"
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
	ChangePage    ChangeKind = "page"
)

// State is a read-only copy of the form and pagination state.
type State struct {
	Mode       models.EditorMode `json:"mode"`
	Draft      models.Draft      `json:"draft"`
	PageIndex  int               `json:"page_index"`
	PageSize   int               `json:"page_size"`
	TotalItems int               `json:"total_items"`
	PageCount  int               `json:"page_count"`
}

// Change is published to subscribers after every applied mutation.
type Change struct {
	Kind   ChangeKind    `json:"kind"`
	ItemID models.ItemID `json:"item_id,omitempty"`
	State  State         `json:"state"`
}

// ViewModel owns the editor state. The local list is the source of truth for
// rendering after the initial Load and is patched in place after each
// successful mutation instead of being fetched again.
type ViewModel struct {
	repo   Repository
	logger *zap.Logger

	mu          sync.Mutex
	items       []models.Item
	draft       models.Draft
	mode        models.EditorMode
	pageIndex   int
	pageSize    int
	disposed    bool
	subscribers map[int]chan Change
	nextSubID   int
}

// NewViewModel builds an empty view-model in create mode.
func NewViewModel(repo Repository, pageSize int, logger *zap.Logger) *ViewModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 5
	}

	return &ViewModel{
		repo:        repo,
		logger:      logger,
		items:       make([]models.Item, 0),
		mode:        models.EditorModeCreate,
		pageSize:    pageSize,
		subscribers: make(map[int]chan Change),
	}
}

// Load fetches the full collection and replaces the local list. On failure
// the previous list is kept.
func (vm *ViewModel) Load(ctx context.Context) error {
	if vm.isDisposed() {
		return ErrDisposed
	}

	snapshot, err := vm.repo.List(ctx)

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.disposed {
		vm.logger.Debug("discarding list response after dispose")
		return ErrDisposed
	}
	if err != nil {
		vm.logger.Error("failed to fetch inventory items", zap.Error(err))
		return fmt.Errorf("load items: %w", err)
	}

	vm.items = append(make([]models.Item, 0, len(snapshot)), snapshot...)
	vm.clampPageLocked()
	vm.publishLocked(ChangeLoaded, "")
	return nil
}

// Items returns a copy of the local list.
func (vm *ViewModel) Items() []models.Item {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return append(make([]models.Item, 0, len(vm.items)), vm.items...)
}

// State returns the current form and pagination state.
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return vm.stateLocked()
}

// SetDraft replaces the form fields. While editing, the id of the item under
// edit is kept whatever the incoming draft says.
func (vm *ViewModel) SetDraft(draft models.Draft) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.disposed {
		return ErrDisposed
	}

	if vm.mode == models.EditorModeEdit {
		draft.ID = vm.draft.ID
	} else {
		draft.ID = ""
	}
	vm.draft = draft
	vm.publishLocked(ChangeDraft, draft.ID)
	return nil
}

// StartEdit loads the local item with the given id into the draft.
func (vm *ViewModel) StartEdit(id models.ItemID) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.disposed {
		return ErrDisposed
	}

	pos := vm.indexLocked(id)
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	vm.startEditLocked(vm.items[pos])
	return nil
}

// StartEditItem loads item into the draft and switches to edit mode. Any
// previous draft is replaced without confirmation.
func (vm *ViewModel) StartEditItem(item models.Item) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.disposed {
		return ErrDisposed
	}

	vm.startEditLocked(item)
	return nil
}

func (vm *ViewModel) startEditLocked(item models.Item) {
	vm.draft = models.DraftFromItem(item)
	vm.mode = models.EditorModeEdit
	vm.publishLocked(ChangeEdit, item.ID)
}

// Reset discards the draft and returns to create mode.
func (vm *ViewModel) Reset() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.disposed {
		return ErrDisposed
	}

	vm.draft = models.Draft{}
	vm.mode = models.EditorModeCreate
	vm.publishLocked(ChangeDraft, "")
	return nil
}

// Submit sends the draft to the repository: a create in create mode, an
// update in edit mode. On success the local list is patched and the form is
// reset to an empty create draft. On failure nothing local changes.
func (vm *ViewModel) Submit(ctx context.Context) (models.Item, error) {
	vm.mu.Lock()
	if vm.disposed {
		vm.mu.Unlock()
		return models.Item{}, ErrDisposed
	}
	mode := vm.mode
	draft := vm.draft
	vm.mu.Unlock()

	fields := draft.Fields()

	if mode == models.EditorModeEdit {
		return vm.submitUpdate(ctx, draft.ID, fields)
	}
	return vm.submitCreate(ctx, fields)
}

func (vm *ViewModel) submitCreate(ctx context.Context, fields models.ItemFields) (models.Item, error) {
	created, err := vm.repo.Create(ctx, fields)

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.disposed {
		vm.logger.Debug("discarding create response after dispose")
		return models.Item{}, ErrDisposed
	}
	if err != nil {
		vm.logger.Error("failed to add item", zap.String("name", fields.Name), zap.Error(err))
		return models.Item{}, fmt.Errorf("create item: %w", err)
	}

	vm.items = append(vm.items, created)
	vm.draft = models.Draft{}
	vm.mode = models.EditorModeCreate
	vm.publishLocked(ChangeCreated, created.ID)
	return created, nil
}

func (vm *ViewModel) submitUpdate(ctx context.Context, id models.ItemID, fields models.ItemFields) (models.Item, error) {
	if id.IsZero() {
		vm.logger.Warn("update rejected, draft has no item id")
		return models.Item{}, inventory.ErrMissingID
	}

	err := vm.repo.Update(ctx, id, fields)

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.disposed {
		vm.logger.Debug("discarding update response after dispose", zap.String("id", id.String()))
		return models.Item{}, ErrDisposed
	}
	if err != nil {
		vm.logger.Error("failed to update item", zap.String("id", id.String()), zap.Error(err))
		return models.Item{}, fmt.Errorf("update item %s: %w", id, err)
	}

	updated := fields.WithID(id)
	if pos := vm.indexLocked(id); pos >= 0 {
		vm.items[pos] = updated
	}
	vm.draft = models.Draft{}
	vm.mode = models.EditorModeCreate
	vm.publishLocked(ChangeUpdated, id)
	return updated, nil
}

// DeleteItem removes the item from the repository and then from the local
// list. An undefined id is rejected without calling the repository.
func (vm *ViewModel) DeleteItem(ctx context.Context, id models.ItemID) error {
	if id.IsZero() {
		vm.logger.Warn("delete rejected, no item id provided")
		return inventory.ErrMissingID
	}
	if vm.isDisposed() {
		return ErrDisposed
	}

	err := vm.repo.Remove(ctx, id)

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.disposed {
		vm.logger.Debug("discarding delete response after dispose", zap.String("id", id.String()))
		return ErrDisposed
	}
	if err != nil {
		vm.logger.Error("failed to delete item", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("delete item %s: %w", id, err)
	}

	kept := vm.items[:0]
	for _, item := range vm.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	vm.items = kept
	vm.clampPageLocked()
	vm.publishLocked(ChangeDeleted, id)
	return nil
}

// Subscribe registers an observer. Changes are delivered on the returned
// channel; a subscriber that falls behind misses changes rather than blocking
// the view-model. The returned function unsubscribes and closes the channel.
func (vm *ViewModel) Subscribe() (<-chan Change, func()) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	ch := make(chan Change, subscriberBuffer)
	if vm.disposed {
		close(ch)
		return ch, func() {}
	}

	id := vm.nextSubID
	vm.nextSubID++
	vm.subscribers[id] = ch

	return ch, func() {
		vm.mu.Lock()
		defer vm.mu.Unlock()

		if sub, ok := vm.subscribers[id]; ok {
			delete(vm.subscribers, id)
			close(sub)
		}
	}
}

// Dispose releases the view-model. Responses that arrive afterwards are
// dropped and all subscriptions are closed.
func (vm *ViewModel) Dispose() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.disposed {
		return
	}

	vm.disposed = true
	vm.items = nil
	for id, ch := range vm.subscribers {
		delete(vm.subscribers, id)
		close(ch)
	}
}

// Disposed reports whether Dispose has been called.
func (vm *ViewModel) Disposed() bool {
	return vm.isDisposed()
}

func (vm *ViewModel) hasSubscribers() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.subscribers) > 0
}

func (vm *ViewModel) isDisposed() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.disposed
}

func (vm *ViewModel) indexLocked(id models.ItemID) int {
	for i, item := range vm.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (vm *ViewModel) stateLocked() State {
	return State{
		Mode:       vm.mode,
		Draft:      vm.draft,
		PageIndex:  vm.pageIndex,
		PageSize:   vm.pageSize,
		TotalItems: len(vm.items),
		PageCount:  PageCount(len(vm.items), vm.pageSize),
	}
}

func (vm *ViewModel) publishLocked(kind ChangeKind, id models.ItemID) {
	if len(vm.subscribers) == 0 {
		return
	}

	change := Change{Kind: kind, ItemID: id, State: vm.stateLocked()}
	for subID, ch := range vm.subscribers {
		select {
		case ch <- change:
		default:
			vm.logger.Debug("subscriber lagging, change dropped", zap.Int("subscriber", subID), zap.String("kind", string(kind)))
		}
	}
}
