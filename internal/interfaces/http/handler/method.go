package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apppayment "github.com/transitpay/settlement/internal/application/payment"
	"github.com/transitpay/settlement/internal/domain/shared"
)

const maxOwnerIDLength = 100

// MethodHandler serves an owner's vaulted payment methods.
type MethodHandler struct {
	BaseHandler
	methods *apppayment.MethodService
}

func NewMethodHandler(methods *apppayment.MethodService) *MethodHandler {
	return &MethodHandler{methods: methods}
}

func (h *MethodHandler) ownerID(c *gin.Context) (string, bool) {
	owner := strings.TrimSpace(c.Param("owner_id"))
	if owner == "" || len(owner) > maxOwnerIDLength {
		h.BadRequest(c, "owner_id is invalid")
		return "", false
	}
	return owner, true
}

// Attach godoc
// @ID           attachPaymentMethod
// @Summary      Vault a tokenized payment method
// @Tags         payment-methods
// @Accept       json
// @Produce      json
// @Param        owner_id path string true "Owner reference"
// @Param        request body apppayment.AttachMethodRequest true "Method"
// @Success      201 {object} APIResponse[apppayment.MethodResponse]
// @Failure      402 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /owners/{owner_id}/payment-methods [post]
func (h *MethodHandler) Attach(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req apppayment.AttachMethodRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.methods.AttachMethod(c.Request.Context(), owner, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @ID           listPaymentMethods
// @Summary      List an owner's payment methods, default first
// @Tags         payment-methods
// @Produce      json
// @Param        owner_id path string true "Owner reference"
// @Success      200 {object} APIResponse[[]apppayment.MethodResponse]
// @Router       /owners/{owner_id}/payment-methods [get]
func (h *MethodHandler) List(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}
	resp, err := h.methods.ListMethods(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Default godoc
// @ID           getDefaultPaymentMethod
// @Summary      Get an owner's default payment method
// @Tags         payment-methods
// @Produce      json
// @Param        owner_id path string true "Owner reference"
// @Success      200 {object} APIResponse[apppayment.MethodResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /owners/{owner_id}/payment-methods/default [get]
func (h *MethodHandler) Default(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}
	resp, err := h.methods.DefaultMethod(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp == nil {
		h.HandleError(c, shared.NewNotFoundError("default payment method"))
		return
	}
	h.Success(c, resp)
}

// SetDefault godoc
// @ID           setDefaultPaymentMethod
// @Summary      Make a method the owner's default
// @Tags         payment-methods
// @Produce      json
// @Param        owner_id path string true "Owner reference"
// @Param        id path string true "Method ID" format(uuid)
// @Success      200 {object} APIResponse[apppayment.MethodResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /owners/{owner_id}/payment-methods/{id}/default [put]
func (h *MethodHandler) SetDefault(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.methods.SetDefault(c.Request.Context(), owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Remove godoc
// @ID           removePaymentMethod
// @Summary      Detach and delete a payment method
// @Tags         payment-methods
// @Param        owner_id path string true "Owner reference"
// @Param        id path string true "Method ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /owners/{owner_id}/payment-methods/{id} [delete]
func (h *MethodHandler) Remove(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.methods.RemoveMethod(c.Request.Context(), owner, id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
