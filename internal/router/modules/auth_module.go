package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/go-ecommerce-backend/internal/interface/http"
	"github.com/oksasatya/go-ecommerce-backend/internal/interface/middleware"
)

// AuthModule wires the credential lifecycle routes under /auth.
// Public: signup, verify-otp, resend-otp, login, forgot-password, reset-password
// Protected: change-password, session
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Sessions middleware.SessionResolver
	Redis    *redis.Client
	Logger   *logrus.Logger
	// Requests per minute per IP on public routes; 0 disables the limiter.
	RateLimit int
}

func NewAuthModule(h *handlers.AuthHandler, sessions middleware.SessionResolver, rdb *redis.Client, logger *logrus.Logger, rateLimit int) *AuthModule {
	return &AuthModule{Handler: h, Sessions: sessions, Redis: rdb, Logger: logger, RateLimit: rateLimit}
}

func (m *AuthModule) limit(max int, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(m.Redis, max, time.Minute, key, nil)
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")

	public := auth.Group("")
	if m.RateLimit > 0 {
		public.Use(m.limit(m.RateLimit, middleware.KeyByIPAndPath()))
	}
	{
		public.POST("/signup", m.Handler.Signup)
		public.POST("/verify-otp", m.Handler.VerifyOTP)
		public.POST("/resend-otp", m.Handler.ResendOTP)
		public.POST("/login", m.Handler.Login)
		public.POST("/forgot-password", m.Handler.ForgotPassword)
		public.POST("/reset-password", m.Handler.ResetPassword)
	}

	protected := auth.Group("")
	protected.Use(middleware.Protect(m.Sessions, m.Logger))
	protected.Use(m.limit(120, middleware.KeyByUserID()))
	{
		protected.POST("/change-password", m.Handler.ChangePassword)
		protected.POST("/session", m.Handler.Session)
	}
}
