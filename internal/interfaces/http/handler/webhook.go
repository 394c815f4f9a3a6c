package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appwebhook "github.com/transitpay/settlement/internal/application/webhook"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"github.com/transitpay/settlement/internal/interfaces/http/dto"
)

// SignatureHeader carries the processor's HMAC over the raw body.
const SignatureHeader = "Stripe-Signature"

// WebhookHandler receives processor callbacks. It is unauthenticated; the
// signature is the credential.
type WebhookHandler struct {
	BaseHandler
	ingestor *appwebhook.Ingestor
	maxBody  int64
}

func NewWebhookHandler(ingestor *appwebhook.Ingestor, maxBody int64) *WebhookHandler {
	if maxBody <= 0 {
		maxBody = 64 << 10
	}
	return &WebhookHandler{ingestor: ingestor, maxBody: maxBody}
}

// Receive godoc
// @ID           receiveStripeWebhook
// @Summary      Receive a Stripe webhook
// @Description  Any non-2xx answer makes Stripe redeliver. Duplicates and ignored event types answer 200.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe webhook signature"
// @Success      200 {object} APIResponse[appwebhook.Result]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /webhooks/stripe [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	// The signature covers the exact bytes, so the body is read raw.
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBody+1))
	if err != nil {
		h.BadRequest(c, "failed to read request body")
		return
	}
	if int64(len(payload)) > h.maxBody {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "webhook payload too large")
		return
	}
	signature := c.GetHeader(SignatureHeader)
	if signature == "" {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "missing "+SignatureHeader+" header")
		return
	}

	result, err := h.ingestor.Handle(c.Request.Context(), payload, signature)
	switch {
	case err == nil:
		h.Success(c, result)
	case errors.Is(err, appwebhook.ErrInvalidSignature):
		h.HandleError(c, err)
	case shared.KindOf(err) == shared.KindValidation:
		h.BadRequest(c, "malformed webhook payload")
	default:
		logger.GetGinLogger(c).Error("webhook processing failed, awaiting redelivery", zap.Error(err))
		_ = c.Error(err)
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "webhook processing failed")
	}
}
