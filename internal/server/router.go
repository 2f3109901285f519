package server

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/portfolio-tracker/internal/server/handlers"
	"github.com/iudanet/portfolio-tracker/internal/server/middleware"
)

// HealthPath не логируется при каждом обращении
const HealthPath = "/api/v1/health"

// Routes собирает зависимости для роутера
type Routes struct {
	Logger      *slog.Logger
	Auth        *handlers.AuthHandler
	Portfolio   *handlers.PortfolioHandler
	Health      *handlers.HealthHandler
	Verifier    middleware.TokenVerifier
	AuthLimiter *middleware.RateLimiter
}

// NewRouter регистрирует маршруты API.
// Публичные auth эндпоинты ограничены по частоте, портфель требует access token.
func NewRouter(rt Routes) http.Handler {
	mux := http.NewServeMux()

	limited := func(h http.HandlerFunc) http.Handler {
		if rt.AuthLimiter == nil {
			return h
		}
		return rt.AuthLimiter.Middleware(h)
	}
	authed := middleware.AuthMiddleware(rt.Logger, rt.Verifier)

	mux.Handle("POST /api/v1/auth/register", limited(rt.Auth.Register))
	mux.Handle("POST /api/v1/auth/login", limited(rt.Auth.Login))
	mux.Handle("POST /api/v1/auth/refresh", limited(rt.Auth.Refresh))
	mux.Handle("POST /api/v1/auth/logout", authed(http.HandlerFunc(rt.Auth.Logout)))

	mux.Handle("GET /api/v1/portfolio/dashboard", authed(http.HandlerFunc(rt.Portfolio.Dashboard)))
	mux.Handle("POST /api/v1/portfolio/{portfolioId}/assets", authed(http.HandlerFunc(rt.Portfolio.AddAsset)))
	mux.Handle("PUT /api/v1/portfolio/{portfolioId}/assets/{assetId}", authed(http.HandlerFunc(rt.Portfolio.UpdateAsset)))
	mux.Handle("DELETE /api/v1/portfolio/{portfolioId}/assets/{assetId}", authed(http.HandlerFunc(rt.Portfolio.RemoveAsset)))

	mux.HandleFunc("GET "+HealthPath, rt.Health.Health)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(rt.Logger, HealthPath)(handler)
	handler = middleware.RecoveryMiddleware(rt.Logger)(handler)

	return handler
}
