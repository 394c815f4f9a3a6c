package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appinvoice "github.com/transitpay/settlement/internal/application/invoice"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"github.com/transitpay/settlement/internal/infrastructure/printing"
	"github.com/transitpay/settlement/internal/interfaces/http/dto"
)

// InvoiceHandler serves invoices and their payment ledger.
type InvoiceHandler struct {
	BaseHandler
	ledger *appinvoice.LedgerService
}

func NewInvoiceHandler(ledger *appinvoice.LedgerService) *InvoiceHandler {
	return &InvoiceHandler{ledger: ledger}
}

// Create godoc
// @ID           createInvoice
// @Summary      Create a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body appinvoice.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req appinvoice.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.ledger.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        status query string false "Status" Enums(DRAFT, SENT, VIEWED, PARTIALLY_PAID, PAID, OVERDUE)
// @Param        facility_ref query string false "Facility reference"
// @Param        order_by query string false "Sort field" Enums(created_at, due_date, invoice_number, amount_due)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]appinvoice.InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var req appinvoice.ListInvoicesRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.ledger.ListInvoices(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	h.byID(c, h.ledger.GetInvoice)
}

// Send godoc
// @ID           sendInvoice
// @Summary      Send an invoice to its billing contact
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	h.byID(c, h.ledger.SendInvoice)
}

// MarkViewed godoc
// @ID           markInvoiceViewed
// @Summary      Record that the customer opened the invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id}/view [post]
func (h *InvoiceHandler) MarkViewed(c *gin.Context) {
	h.byID(c, h.ledger.MarkViewed)
}

// RecordPayment godoc
// @ID           recordInvoicePayment
// @Summary      Record money received outside the processor
// @Description  Overpayments are rejected.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body appinvoice.RecordPaymentRequest true "Payment"
// @Success      201 {object} APIResponse[appinvoice.PaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req appinvoice.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.ledger.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListPayments godoc
// @ID           listInvoicePayments
// @Summary      List an invoice's ledger entries
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[[]appinvoice.PaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id}/payments [get]
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.ledger.ListPayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemovePayment godoc
// @ID           removeInvoicePayment
// @Summary      Reverse a ledger entry
// @Description  Appends a negating entry; the original row is kept and stamped reversed.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body appinvoice.RemovePaymentRequest false "Notes"
// @Success      200 {object} APIResponse[appinvoice.PaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /payments/{id} [delete]
func (h *InvoiceHandler) RemovePayment(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req appinvoice.RemovePaymentRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	resp, err := h.ledger.RemovePayment(c.Request.Context(), id, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Document godoc
// @ID           getInvoiceDocument
// @Summary      Download the invoice PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {file} file
// @Failure      404 {object} ErrorResponse
// @Failure      501 {object} ErrorResponse
// @Failure      504 {object} ErrorResponse
// @Router       /invoices/{id}/document [get]
func (h *InvoiceHandler) Document(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.ledger.Document(c.Request.Context(), id)
	if errors.Is(err, printing.ErrRenderTimeout) {
		logger.GetGinLogger(c).Warn("invoice document render timed out", zap.Error(err))
		h.Error(c, dto.ErrorCodeHTTPStatus[dto.ErrCodeRenderTimeout], dto.ErrCodeRenderTimeout, "document rendering timed out, retry later")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

func (h *InvoiceHandler) byID(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*appinvoice.InvoiceResponse, error)) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	resp, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
