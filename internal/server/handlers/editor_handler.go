package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockboard/internal/domain/models"
	"github.com/mamadbah2/stockboard/internal/service/editor"
)

// SessionStore hosts editor view-models by session id.
type SessionStore interface {
	Open(ctx context.Context) (string, *editor.ViewModel, error)
	Get(id string) (*editor.ViewModel, bool)
	Close(id string) bool
}

// EditorHandler exposes the inventory editor over HTTP, one view-model per session.
type EditorHandler struct {
	sessions SessionStore
	logger   *zap.Logger
}

// NewEditorHandler constructs the HTTP handler adapter.
func NewEditorHandler(sessions SessionStore, logger *zap.Logger) *EditorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditorHandler{sessions: sessions, logger: logger}
}

type pageResponse struct {
	Items      []models.Item `json:"items"`
	PageIndex  int           `json:"page_index"`
	PageSize   int           `json:"page_size"`
	PageCount  int           `json:"page_count"`
	TotalItems int           `json:"total_items"`
}

type sessionResponse struct {
	SessionID string        `json:"session_id"`
	State     editor.State  `json:"state"`
	Page      []models.Item `json:"page"`
	LoadError string        `json:"load_error,omitempty"`
}

type pageSizeRequest struct {
	PageSize int `json:"page_size"`
}

type pageIndexRequest struct {
	PageIndex int `json:"page_index"`
}

// Open starts a session and loads the item list. A failed load still
// opens the session with an empty list.
func (h *EditorHandler) Open(c *gin.Context) {
	id, vm, err := h.sessions.Open(c.Request.Context())

	resp := sessionResponse{SessionID: id, State: vm.State(), Page: vm.CurrentPage()}
	if err != nil {
		h.logger.Warn("editor session opened without items", zap.String("session_id", id), zap.Error(err))
		resp.LoadError = err.Error()
	}

	c.JSON(http.StatusCreated, resp)
}

// Close disposes the session.
func (h *EditorHandler) Close(c *gin.Context) {
	if !h.sessions.Close(c.Param("sid")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown editor session"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Show returns the form state and the current page.
func (h *EditorHandler) Show(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}
	h.respondState(c, vm)
}

// Reload fetches the item list again.
func (h *EditorHandler) Reload(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}
	if err := vm.Load(c.Request.Context()); err != nil {
		respondError(c, h.logger, "failed to reload items", err)
		return
	}
	h.respondState(c, vm)
}

// Items returns one page of the local list. page and size default to the
// stored pagination and do not change it.
func (h *EditorHandler) Items(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}

	state := vm.State()
	index, ok := queryInt(c, "page", state.PageIndex, 0)
	if !ok {
		return
	}
	size, ok := queryInt(c, "size", state.PageSize, 1)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, pageResponse{
		Items:      vm.Page(index, size),
		PageIndex:  index,
		PageSize:   size,
		PageCount:  editor.PageCount(state.TotalItems, size),
		TotalItems: state.TotalItems,
	})
}

// UpdateDraft replaces the form fields.
func (h *EditorHandler) UpdateDraft(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}

	var draft models.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft"})
		return
	}

	if err := vm.SetDraft(draft); err != nil {
		respondError(c, h.logger, "failed to update draft", err)
		return
	}
	h.respondState(c, vm)
}

// ResetDraft discards the draft and returns to create mode.
func (h *EditorHandler) ResetDraft(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}
	if err := vm.Reset(); err != nil {
		respondError(c, h.logger, "failed to reset draft", err)
		return
	}
	h.respondState(c, vm)
}

// StartEdit loads a listed item into the form.
func (h *EditorHandler) StartEdit(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}
	if err := vm.StartEdit(models.ItemID(c.Param("id"))); err != nil {
		respondError(c, h.logger, "failed to start edit", err)
		return
	}
	h.respondState(c, vm)
}

// Submit creates or updates the item held in the draft.
func (h *EditorHandler) Submit(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}

	item, err := vm.Submit(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to submit draft", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item, "state": vm.State()})
}

// DeleteItem removes an item from the backend and the local list.
func (h *EditorHandler) DeleteItem(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}
	if err := vm.DeleteItem(c.Request.Context(), models.ItemID(c.Param("id"))); err != nil {
		respondError(c, h.logger, "failed to delete item", err)
		return
	}
	h.respondState(c, vm)
}

// SetPage selects the stored page.
func (h *EditorHandler) SetPage(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}

	var req pageIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page request"})
		return
	}
	if err := vm.SetPage(req.PageIndex); err != nil {
		respondError(c, h.logger, "failed to change page", err)
		return
	}
	h.respondState(c, vm)
}

// SetPageSize changes the rows per page and goes back to the first page.
func (h *EditorHandler) SetPageSize(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}

	var req pageSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page size request"})
		return
	}
	if err := vm.SetPageSize(req.PageSize); err != nil {
		respondError(c, h.logger, "failed to change page size", err)
		return
	}
	h.respondState(c, vm)
}

// Events streams every Change of the session as server-sent events until the
// client goes away or the session is closed.
func (h *EditorHandler) Events(c *gin.Context) {
	vm, ok := h.session(c)
	if !ok {
		return
	}

	changes, unsubscribe := vm.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.SSEvent("state", vm.State())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case change, open := <-changes:
			if !open {
				return false
			}
			c.SSEvent(string(change.Kind), change)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *EditorHandler) session(c *gin.Context) (*editor.ViewModel, bool) {
	vm, ok := h.sessions.Get(c.Param("sid"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown editor session"})
		return nil, false
	}
	return vm, true
}

func (h *EditorHandler) respondState(c *gin.Context, vm *editor.ViewModel) {
	c.JSON(http.StatusOK, sessionResponse{
		SessionID: c.Param("sid"),
		State:     vm.State(),
		Page:      vm.CurrentPage(),
	})
}

func queryInt(c *gin.Context, key string, fallback, minimum int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minimum {
		c.JSON(http.StatusBadRequest, gin.H{"error": key + " must be an integer >= " + strconv.Itoa(minimum)})
		return 0, false
	}
	return n, true
}
