package api

import (
	"net/http"
	"time"

	"ecommerce_api/internal/api/handler"
	"ecommerce_api/internal/api/middleware"
	"ecommerce_api/internal/app/service"
	"ecommerce_api/internal/common"
	"ecommerce_api/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Services struct {
	Auth     *service.AuthService
	Identity *service.IdentityResolver
	Product  *service.ProductService
	Admin    *service.AdminService
}

type RouterConfig struct {
	Version        string
	RequestTimeout time.Duration
	// Storage backs /health/ready; nil means in-memory.
	Storage        handler.Pinger
}

func NewRouter(services Services, cfg RouterConfig, m *metrics.Metrics, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(m))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	handler.NewHealthHandler(cfg.Storage, cfg.Version, log).RegisterRoutes(r)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	authHandler := handler.NewAuthHandler(services.Auth, services.Identity, log)
	r.Route("/auth", authHandler.RegisterRoutes)

	productHandler := handler.NewProductHandler(services.Product, services.Identity, log)
	r.Route("/products", productHandler.RegisterRoutes)

	adminHandler := handler.NewAdminHandler(services.Admin, services.Identity, log)
	r.Route("/admin", adminHandler.RegisterRoutes)

	return r
}
