// Package printing renders invoice documents to PDF and archives them.
package printing

import (
	"context"
	"time"
)

// RenderRequest is one HTML page to print.
type RenderRequest struct {
	HTML  string
	Title string
	// Timeout overrides the renderer default when non-zero.
	Timeout time.Duration
}

type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer prints HTML to PDF. ChromedpRenderer is the production
// implementation.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

type RenderErrorCode string

const (
	ErrCodeRenderTimeout  RenderErrorCode = "RENDER_TIMEOUT"
	ErrCodeRenderFailed   RenderErrorCode = "RENDER_FAILED"
	ErrCodeInvalidHTML    RenderErrorCode = "INVALID_HTML"
	ErrCodeTemplateFailed RenderErrorCode = "TEMPLATE_FAILED"
)

// RenderError carries a code so callers can tell a slow browser from a
// broken layout. errors.Is matches any RenderError with the same code.
type RenderError struct {
	Code    RenderErrorCode
	Message string
	Cause   error
}

func NewRenderError(code RenderErrorCode, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error { return e.Cause }

func (e *RenderError) Is(target error) bool {
	t, ok := target.(*RenderError)
	return ok && t.Code == e.Code
}

// ErrRenderTimeout matches any render that ran out of time.
var ErrRenderTimeout = &RenderError{Code: ErrCodeRenderTimeout, Message: "render timed out"}
