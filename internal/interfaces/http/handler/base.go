package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"github.com/transitpay/settlement/internal/interfaces/http/dto"
	"github.com/transitpay/settlement/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Page writes one page of a listing with its meta.
func Page[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// Error sends an error response with the request id attached.
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.Set(middleware.ErrorCodeKey, code)
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, c.GetString(middleware.RequestIDKey)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError maps err onto its status and code. Masked errors are logged
// with their cause.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	mapped := dto.FromError(err)
	log := logger.GetGinLogger(c)
	if mapped.Internal {
		log.Error("request failed", zap.String("code", mapped.Code), zap.Error(err))
	} else if mapped.Status >= http.StatusInternalServerError {
		log.Warn("request failed", zap.String("code", mapped.Code), zap.Error(err))
	}
	_ = c.Error(err)
	h.Error(c, mapped.Status, mapped.Code, mapped.Message)
}

// BindJSON binds and validates the body, answering the failure itself.
func (h *BaseHandler) BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.HandleBindError(c, err)
		return false
	}
	return true
}

// BindOptionalJSON is BindJSON for routes whose body may be empty.
func (h *BaseHandler) BindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return h.BindJSON(c, dst)
}

func (h *BaseHandler) BindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		middleware.HandleBindError(c, err)
		return false
	}
	return true
}

// ParamUUID parses a path parameter, answering 400 when it is malformed.
func (h *BaseHandler) ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
