package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
	"github.com/oksasatya/go-ecommerce-backend/pkg/response"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

const (
	msgNoToken     = "Access denied. No token provided"
	msgTokenFailed = "Not authorized, token failed"
	msgNotAdmin    = "Not authorized as admin"
)

// SessionResolver turns a bearer token into the current user record.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*entity.User, error)
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if h == "" {
		if tok, err := c.Cookie(helpers.SessionCookie); err == nil {
			return tok
		}
	}
	return ""
}

// Protect validates the bearer token and attaches the resolved user (hash
// cleared) to the context. Every verification or lookup failure gets the
// same response.
func Protect(sessions SessionResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, msgNoToken)
			return
		}
		u, err := sessions.ResolveSession(c.Request.Context(), token)
		if err != nil || u == nil {
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Debug("session rejected")
			}
			response.Abort(c, http.StatusUnauthorized, msgTokenFailed)
			return
		}
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// AdminOnly must run after Protect. Non-admins get 403.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsAdmin() {
			response.Abort(c, http.StatusForbidden, msgNotAdmin)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user attached by Protect, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}
