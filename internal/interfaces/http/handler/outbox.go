package handler

import (
	"github.com/gin-gonic/gin"

	appevent "github.com/transitpay/settlement/internal/application/event"
)

// OutboxHandler is the operator surface over the transactional outbox.
type OutboxHandler struct {
	BaseHandler
	outbox *appevent.OutboxService
}

func NewOutboxHandler(outbox *appevent.OutboxService) *OutboxHandler {
	return &OutboxHandler{outbox: outbox}
}

// ListDead godoc
// @ID           listDeadOutboxEntries
// @Summary      List dead-letter outbox entries
// @Tags         outbox
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]appevent.OutboxEntryResponse]
// @Router       /outbox/dead [get]
func (h *OutboxHandler) ListDead(c *gin.Context) {
	var req appevent.ListDeadRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.outbox.ListDead(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get godoc
// @ID           getOutboxEntry
// @Summary      Get an outbox entry
// @Tags         outbox
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} APIResponse[appevent.OutboxEntryResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /outbox/{id} [get]
func (h *OutboxHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.outbox.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Retry godoc
// @ID           retryOutboxEntry
// @Summary      Move a dead entry back to pending
// @Tags         outbox
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} APIResponse[appevent.OutboxEntryResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /outbox/{id}/retry [post]
func (h *OutboxHandler) Retry(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.outbox.RetryDeadEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RetryAll godoc
// @ID           retryAllDeadOutboxEntries
// @Summary      Move every dead entry back to pending
// @Tags         outbox
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Router       /outbox/dead/retry [post]
func (h *OutboxHandler) RetryAll(c *gin.Context) {
	count, err := h.outbox.RetryAllDead(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: count})
}

// Stats godoc
// @ID           getOutboxStats
// @Summary      Count outbox entries per status
// @Tags         outbox
// @Produce      json
// @Success      200 {object} APIResponse[appevent.OutboxStats]
// @Router       /outbox/stats [get]
func (h *OutboxHandler) Stats(c *gin.Context) {
	stats, err := h.outbox.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
