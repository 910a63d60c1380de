package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ecommerce-backend/pkg/response"
)

// AllowPrivateIP reports whether the TCP peer is loopback or in a private
// range. Forwarding headers are ignored here since clients control them.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(c.RemoteIP())
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// OnlyIf rejects requests for which allow returns false with 404.
func OnlyIf(allow AllowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c) {
			response.Abort(c, http.StatusNotFound, "Not found")
			return
		}
		c.Next()
	}
}
