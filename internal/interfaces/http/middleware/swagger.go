package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/transitpay/settlement/internal/interfaces/http/dto"
)

// SwaggerConfig guards the API documentation routes.
type SwaggerConfig struct {
	Enabled bool
	// AllowedIPs holds addresses or CIDR ranges. Empty allows everyone.
	AllowedIPs []string
}

// SwaggerProtection answers 404 while docs are disabled and 403 to clients
// outside the allow list. Unparseable entries are logged and ignored.
func SwaggerProtection(cfg SwaggerConfig, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	var nets []*net.IPNet
	for _, entry := range cfg.AllowedIPs {
		if !strings.Contains(entry, "/") {
			if ip := net.ParseIP(entry); ip != nil {
				bits := 8 * net.IPv4len
				if ip.To4() == nil {
					bits = 8 * net.IPv6len
				}
				nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
				continue
			}
			log.Warn("ignoring invalid swagger allow-list entry", zap.String("entry", entry))
			continue
		}
		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			log.Warn("ignoring invalid swagger allow-list entry", zap.String("entry", entry), zap.Error(err))
			continue
		}
		nets = append(nets, network)
	}
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		if !cfg.Enabled {
			AbortWithError(c, http.StatusNotFound, dto.ErrCodeNotFound, "API documentation is not available")
			return
		}
		if restricted && !ipAllowed(net.ParseIP(c.ClientIP()), nets) {
			AbortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "API documentation is restricted")
			return
		}
		c.Next()
	}
}

func ipAllowed(ip net.IP, nets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
