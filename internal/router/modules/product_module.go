package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/go-ecommerce-backend/internal/interface/http"
	"github.com/oksasatya/go-ecommerce-backend/internal/interface/middleware"
)

// ProductModule exposes the catalog. Reads are public; writes need an admin session.
type ProductModule struct {
	Handler  *handlers.ProductHandler
	Sessions middleware.SessionResolver
	Redis    *redis.Client
	Logger   *logrus.Logger
}

func NewProductModule(h *handlers.ProductHandler, sessions middleware.SessionResolver, rdb *redis.Client, logger *logrus.Logger) *ProductModule {
	return &ProductModule{Handler: h, Sessions: sessions, Redis: rdb, Logger: logger}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/products", readLimiter, m.Handler.List)
	rg.GET("/products/:id", readLimiter, m.Handler.Get)

	admin := rg.Group("/products")
	admin.Use(middleware.Protect(m.Sessions, m.Logger), middleware.AdminOnly())
	{
		admin.POST("", m.Handler.Create)
		admin.PUT("/:id", m.Handler.Update)
		admin.DELETE("/:id", m.Handler.Delete)
	}
}
