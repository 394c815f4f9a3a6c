package handler

import (
	"github.com/gin-gonic/gin"

	appnotification "github.com/transitpay/settlement/internal/application/notification"
)

// NotificationHandler exposes the delivery log.
type NotificationHandler struct {
	BaseHandler
	dispatcher *appnotification.Dispatcher
}

func NewNotificationHandler(dispatcher *appnotification.Dispatcher) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher}
}

// List godoc
// @ID           listNotifications
// @Summary      List notification deliveries
// @Description  Newest first. The rendered body is not returned.
// @Tags         notifications
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        recipient query string false "Recipient address"
// @Param        type query string false "Template" Enums(INVOICE_SENT, INVOICE_REMINDER, INVOICE_OVERDUE, PAYMENT_RECEIVED, PAYMENT_REFUNDED)
// @Param        status query string false "Delivery status" Enums(sent, failed)
// @Success      200 {object} APIResponse[[]appnotification.LogResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var req appnotification.ListLogsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.dispatcher.ListLogs(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}
