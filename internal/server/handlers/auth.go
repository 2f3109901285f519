package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/portfolio-tracker/internal/models"
	"github.com/iudanet/portfolio-tracker/internal/server/auth"
	"github.com/iudanet/portfolio-tracker/internal/server/jwt"
	"github.com/iudanet/portfolio-tracker/internal/validation"
	"github.com/iudanet/portfolio-tracker/pkg/api"
)

// AuthService определяет операции авторизации, которые нужны handler-у
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.AuthResult, error)
	Login(ctx context.Context, email, password string) (*auth.AuthResult, error)
	Refresh(ctx context.Context, raw string) (*jwt.TokenPair, error)
	Logout(ctx context.Context, raw, callerUserID string) (*auth.LogoutResult, error)
	AccessTokenTTL() time.Duration
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger  *slog.Logger
	service AuthService
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, service AuthService) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		service: service,
	}
}

// Register обрабатывает POST /api/v1/auth/register
// Регистрация нового пользователя вместе с пустым портфелем
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	for _, check := range []error{
		validation.ValidateEmail(req.Email),
		validation.ValidatePassword(req.Password),
		validation.ValidateName("first_name", req.FirstName),
		validation.ValidateName("last_name", req.LastName),
	} {
		if check != nil {
			h.logger.WarnContext(ctx, "invalid register request", slog.Any("error", check))
			sendError(h.logger, w, check.Error(), http.StatusBadRequest)
			return
		}
	}

	result, err := h.service.Register(ctx, auth.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		sendAppError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, h.authResponse(result), http.StatusCreated)
}

// Login обрабатывает POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		sendError(h.logger, w, "email and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		sendAppError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, h.authResponse(result), http.StatusOK)
}

// Refresh обрабатывает POST /api/v1/auth/refresh
// Ротация: присланный refresh token отзывается, выдается новая пара
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode refresh request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.RefreshToken == "" {
		sendError(h.logger, w, "refresh_token is required", http.StatusBadRequest)
		return
	}

	pair, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		sendAppError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, h.tokenResponse(pair), http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout
// Отзывает один refresh token текущего пользователя
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Получаем user_id из контекста (установлен AuthMiddleware)
	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "user ID not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.LogoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode logout request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.RefreshToken == "" {
		sendError(h.logger, w, "refresh_token is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Logout(ctx, req.RefreshToken, userID)
	if err != nil {
		sendAppError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, api.MessageResponse{Message: result.Message}, http.StatusOK)
}

func (h *AuthHandler) authResponse(result *auth.AuthResult) api.AuthResponse {
	return api.AuthResponse{
		User:   userResponse(result.User),
		Tokens: h.tokenResponse(result.Tokens),
	}
}

func (h *AuthHandler) tokenResponse(pair *jwt.TokenPair) api.TokenResponse {
	return api.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		ExpiresIn:        int64(h.service.AccessTokenTTL().Seconds()),
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}

func userResponse(u *models.User) api.UserResponse {
	return api.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}
