package router

import (
	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/internal/container"
	handlers "github.com/oksasatya/go-ecommerce-backend/internal/interface/http"
	"github.com/oksasatya/go-ecommerce-backend/internal/router/modules"
)

type AuthModuleDeps struct {
	Service *application.AuthService
	Handler *handlers.AuthHandler
}

type ProductModuleDeps struct {
	Service *application.ProductService
	Handler *handlers.ProductHandler
}

func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	service := application.NewAuthService(
		container.GetUserRepo(),
		container.GetHasher(),
		container.GetJWT(),
		container.GetNotifier(),
		container.GetLogger(),
		application.AuthConfig{
			OTPTTL:            cfg.OTPTTL,
			OTPResendCooldown: cfg.OTPResendCooldown,
			ResetTokenTTL:     cfg.ResetTokenTTL,
		},
	)
	handler := handlers.NewAuthHandler(service, container.GetLogger(), container.GetCookies())
	return AuthModuleDeps{Service: service, Handler: handler}
}

func buildProductDeps() ProductModuleDeps {
	// a nil *GCSImageStore must stay a nil interface
	var images application.ImageStore
	if s := container.GetImageStore(); s != nil {
		images = s
	}
	service := application.NewProductService(container.GetProductRepo(), images, container.GetLogger())
	handler := handlers.NewProductHandler(service, container.GetLogger())
	return ProductModuleDeps{Service: service, Handler: handler}
}

// InitModules builds every feature module from the container and registers it.
// Call once during startup after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	rdb := container.GetRedis()
	logger := container.GetLogger()

	auth := buildAuthDeps()
	products := buildProductDeps()

	r.Add(
		modules.NewAuthModule(auth.Handler, auth.Service, rdb, logger, cfg.AuthRateLimit),
		modules.NewProductModule(products.Handler, auth.Service, rdb, logger),
	)
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}
