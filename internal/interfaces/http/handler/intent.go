package handler

import (
	"github.com/gin-gonic/gin"

	apppayment "github.com/transitpay/settlement/internal/application/payment"
)

// IntentHandler serves payment intents and their refunds.
type IntentHandler struct {
	BaseHandler
	intents *apppayment.IntentService
	refunds *apppayment.RefundService
}

func NewIntentHandler(intents *apppayment.IntentService, refunds *apppayment.RefundService) *IntentHandler {
	return &IntentHandler{intents: intents, refunds: refunds}
}

// Create godoc
// @ID           createPaymentIntent
// @Summary      Create a payment intent
// @Description  Registers the intent locally, then at the processor. A card failure answers 402 and leaves the intent FAILED; an unknown outcome answers 503 and leaves it PENDING for reconcile.
// @Tags         intents
// @Accept       json
// @Produce      json
// @Param        request body apppayment.CreateIntentRequest true "Intent"
// @Success      201 {object} APIResponse[apppayment.IntentResponse]
// @Failure      402 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /intents [post]
func (h *IntentHandler) Create(c *gin.Context) {
	var req apppayment.CreateIntentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.intents.CreateIntent(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @ID           getPaymentIntent
// @Summary      Get a payment intent
// @Tags         intents
// @Produce      json
// @Param        id path string true "Intent ID" format(uuid)
// @Success      200 {object} APIResponse[apppayment.IntentResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /intents/{id} [get]
func (h *IntentHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.intents.GetIntent(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Capture godoc
// @ID           capturePaymentIntent
// @Summary      Capture an authorized intent
// @Description  Captures all of the authorization, or amount_to_capture when given.
// @Tags         intents
// @Accept       json
// @Produce      json
// @Param        id path string true "Intent ID" format(uuid)
// @Param        request body apppayment.CaptureIntentRequest false "Partial capture"
// @Success      200 {object} APIResponse[apppayment.IntentResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /intents/{id}/capture [post]
func (h *IntentHandler) Capture(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req apppayment.CaptureIntentRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	resp, err := h.intents.Capture(c.Request.Context(), id, req.AmountToCapture)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @ID           cancelPaymentIntent
// @Summary      Cancel an intent before money moves
// @Tags         intents
// @Accept       json
// @Produce      json
// @Param        id path string true "Intent ID" format(uuid)
// @Param        request body apppayment.CancelIntentRequest false "Reason"
// @Success      200 {object} APIResponse[apppayment.IntentResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /intents/{id}/cancel [post]
func (h *IntentHandler) Cancel(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req apppayment.CancelIntentRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	resp, err := h.intents.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reconcile godoc
// @ID           reconcilePaymentIntent
// @Summary      Pull the processor's view of an intent
// @Description  Resolves intents left PENDING by an unknown outcome.
// @Tags         intents
// @Produce      json
// @Param        id path string true "Intent ID" format(uuid)
// @Success      200 {object} APIResponse[apppayment.IntentResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /intents/{id}/reconcile [post]
func (h *IntentHandler) Reconcile(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.intents.Reconcile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateRefund godoc
// @ID           createRefund
// @Summary      Refund a captured intent
// @Description  Refunds amount, or everything still refundable when omitted. A linked invoice gets a reversing ledger entry.
// @Tags         intents
// @Accept       json
// @Produce      json
// @Param        id path string true "Intent ID" format(uuid)
// @Param        request body apppayment.CreateRefundRequest false "Refund"
// @Success      201 {object} APIResponse[apppayment.RefundResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /intents/{id}/refunds [post]
func (h *IntentHandler) CreateRefund(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req apppayment.CreateRefundRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	resp, err := h.refunds.Refund(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListRefunds godoc
// @ID           listRefunds
// @Summary      List refunds of an intent
// @Tags         intents
// @Produce      json
// @Param        id path string true "Intent ID" format(uuid)
// @Success      200 {object} APIResponse[[]apppayment.RefundResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /intents/{id}/refunds [get]
func (h *IntentHandler) ListRefunds(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.refunds.ListRefunds(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
