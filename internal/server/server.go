// Package server wires the portfolio tracker HTTP API: storage, services,
// handlers and middleware, and runs it until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/portfolio-tracker/internal/clock"
	"github.com/iudanet/portfolio-tracker/internal/config"
	"github.com/iudanet/portfolio-tracker/internal/crypto"
	"github.com/iudanet/portfolio-tracker/internal/server/auth"
	"github.com/iudanet/portfolio-tracker/internal/server/handlers"
	"github.com/iudanet/portfolio-tracker/internal/server/jwt"
	"github.com/iudanet/portfolio-tracker/internal/server/market"
	"github.com/iudanet/portfolio-tracker/internal/server/middleware"
	"github.com/iudanet/portfolio-tracker/internal/server/portfolio"
	"github.com/iudanet/portfolio-tracker/internal/server/storage/sqlite"
)

// Server владеет хранилищем, лимитером и HTTP сервером
type Server struct {
	logger   *slog.Logger
	storage  *sqlite.Storage
	limiter  *middleware.RateLimiter
	http     *http.Server
	shutdown time.Duration
}

// Options позволяет подменить часы и оракул цен (используется в тестах)
type Options struct {
	Clock   clock.Clock
	Oracle  market.PriceOracle
	Version string
}

// New открывает хранилище, применяет миграции и собирает обработчики
func New(ctx context.Context, cfg *config.Server, logger *slog.Logger, opts Options) (*Server, error) {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Oracle == nil {
		opts.Oracle = market.NewOracle()
	}

	store, err := sqlite.New(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	issuer, err := jwt.NewIssuer(jwt.Config{
		AccessSecret:    []byte(cfg.JWTAccessSecret),
		RefreshSecret:   []byte(cfg.JWTRefreshSecret),
		AccessTokenTTL:  cfg.JWTAccessTTL,
		RefreshTokenTTL: cfg.JWTRefreshTTL,
	}, opts.Clock)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	authService := auth.NewService(
		logger,
		store, store, store,
		auth.NewLedger(store, opts.Clock),
		issuer,
		crypto.NewPasswordHasher(cfg.BcryptCost),
		opts.Clock,
	)

	engine := portfolio.NewEngine(logger, store, store, opts.Oracle, opts.Clock)
	portfolioService := portfolio.NewService(
		logger,
		store, store,
		portfolio.NewTransactionLedger(store, store, opts.Clock),
		engine,
		opts.Clock,
	)

	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, logger, proxies...)

	router := NewRouter(Routes{
		Logger:      logger,
		Auth:        handlers.NewAuthHandler(logger, authService),
		Portfolio:   handlers.NewPortfolioHandler(logger, portfolioService),
		Health:      handlers.NewHealthHandler(logger, store, opts.Version),
		Verifier:    issuer,
		AuthLimiter: limiter,
	})

	return &Server{
		logger:  logger,
		storage: store,
		limiter: limiter,
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		shutdown: cfg.ShutdownTimeout,
	}, nil
}

// Handler возвращает корневой http.Handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run слушает cfg.HTTPAddr до отмены ctx, затем корректно останавливается
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln до отмены ctx
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", slog.String("addr", ln.Addr().String()))
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server", slog.Duration("timeout", s.shutdown))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	s.close()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

func (s *Server) close() {
	s.limiter.Stop()
	if err := s.storage.Close(); err != nil {
		s.logger.Error("failed to close storage", slog.Any("error", err))
	}
}
