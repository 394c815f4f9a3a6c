package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/transitpay/settlement/internal/infrastructure/telemetry"
)

// Profiling labels CPU samples taken while a request runs with its method,
// route template and resource, so flame graphs can be split per endpoint.
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipObservability(c.Request.URL.Path) {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c.Request.Method, c.FullPath()),
			func(ctx context.Context) {
				c.Request = c.Request.WithContext(ctx)
				c.Next()
			})
	}
}

func profilingLabels(method, fullPath string) map[string]string {
	route := routeOf(fullPath)
	return map[string]string{
		"method":   method,
		"route":    route,
		"resource": resourceOf(route),
	}
}

// resourceOf is the first static segment after the version prefix:
// "/api/v1/invoices/:id/payments" -> "invoices".
func resourceOf(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "", part == "api", strings.HasPrefix(part, ":"), strings.HasPrefix(part, "*"):
			continue
		case len(part) > 1 && part[0] == 'v' && isDigits(part[1:]):
			continue
		default:
			return part
		}
	}
	return "unmatched"
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
