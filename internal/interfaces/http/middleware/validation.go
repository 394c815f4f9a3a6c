package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/transitpay/settlement/internal/domain/shared/valueobject"
	"github.com/transitpay/settlement/internal/interfaces/http/dto"
)

var setupOnce sync.Once

// SetupValidator makes binding errors name fields by their json or form tag
// and registers the custom tags:
//
//	currency  a supported ISO 4217 code, any case
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			_, err := valueobject.ParseCurrency(fl.Field().String())
			return err == nil
		})
	})
}

// HandleBindError answers a failed ShouldBind. Validation failures get 422
// with one detail per field, oversize bodies 413 and anything else 400.
func HandleBindError(c *gin.Context, err error) {
	requestID := c.GetString(RequestIDKey)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.Set(ErrorCodeKey, dto.ErrCodeValidation)
		c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(
			"request validation failed", requestID, ValidationDetails(verrs)))
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.Set(ErrorCodeKey, dto.ErrCodePayloadTooLarge)
		c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
			dto.ErrCodePayloadTooLarge, "request body exceeds the allowed size", requestID))
		return
	}
	c.Set(ErrorCodeKey, dto.ErrCodeBadRequest)
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeBadRequest, "malformed request body or query", requestID))
}

func ValidationDetails(verrs validator.ValidationErrors) []dto.ValidationDetail {
	out := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, dto.ValidationDetail{
			Field:   e.Field(),
			Rule:    e.Tag(),
			Message: validationMessage(e),
		})
	}
	return out
}

func validationMessage(e validator.FieldError) string {
	f := e.Field()
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email address"
	case "uuid":
		return f + " must be a UUID"
	case "currency":
		return f + " must be a supported ISO 4217 currency code"
	case "oneof":
		return f + " must be one of: " + e.Param()
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", f, e.Param())
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", f, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", f, e.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", f, e.Param())
		}
		if e.Kind() == reflect.Map || e.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries", f, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", f, e.Param())
	default:
		return f + " is invalid"
	}
}
