package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio-tracker/internal/apperr"
	"github.com/iudanet/portfolio-tracker/internal/models"
	"github.com/iudanet/portfolio-tracker/internal/server/auth"
	"github.com/iudanet/portfolio-tracker/internal/server/jwt"
	"github.com/iudanet/portfolio-tracker/pkg/api"
)

func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// mockAuthService is a mock implementation of AuthService for testing
type mockAuthService struct {
	registerErr  error
	loginErr     error
	refreshErr   error
	logoutErr    error
	lastRegister auth.RegisterInput
	lastLogout   struct{ raw, userID string }
}

var testPair = &jwt.TokenPair{
	AccessToken:      "access",
	RefreshToken:     "refresh",
	AccessExpiresAt:  time.Date(2025, 1, 15, 10, 15, 0, 0, time.UTC),
	RefreshExpiresAt: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
}

func (m *mockAuthService) Register(ctx context.Context, in auth.RegisterInput) (*auth.AuthResult, error) {
	m.lastRegister = in
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return &auth.AuthResult{
		User:   &models.User{ID: "user-1", Email: in.Email, FirstName: in.FirstName, LastName: in.LastName},
		Tokens: testPair,
	}, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.AuthResult, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &auth.AuthResult{User: &models.User{ID: "user-1", Email: email}, Tokens: testPair}, nil
}

func (m *mockAuthService) Refresh(ctx context.Context, raw string) (*jwt.TokenPair, error) {
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return testPair, nil
}

func (m *mockAuthService) Logout(ctx context.Context, raw, callerUserID string) (*auth.LogoutResult, error) {
	m.lastLogout.raw, m.lastLogout.userID = raw, callerUserID
	if m.logoutErr != nil {
		return nil, m.logoutErr
	}
	return &auth.LogoutResult{Message: "Logged out successfully"}, nil
}

func (m *mockAuthService) AccessTokenTTL() time.Duration {
	return jwt.DefaultAccessTokenTTL
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	valid := api.RegisterRequest{
		Email:     "john@example.com",
		FirstName: "John",
		LastName:  "Doe",
		Password:  "Password123",
	}

	tests := []struct {
		serviceErr  error
		body        any
		name        string
		wantMessage string
		wantStatus  int
	}{
		{name: "successful registration", body: valid, wantStatus: http.StatusCreated},
		{
			name:        "duplicate email",
			body:        valid,
			serviceErr:  apperr.Conflict("Email already registered"),
			wantStatus:  http.StatusConflict,
			wantMessage: "Email already registered",
		},
		{
			name:        "weak password",
			body:        api.RegisterRequest{Email: "john@example.com", FirstName: "J", LastName: "D", Password: "password"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "password needs at least one uppercase letter",
		},
		{
			name:        "invalid email",
			body:        api.RegisterRequest{Email: "not-an-email", FirstName: "J", LastName: "D", Password: "Password123"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "email must be a valid address",
		},
		{
			name:        "missing last name",
			body:        api.RegisterRequest{Email: "john@example.com", FirstName: "J", Password: "Password123"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "last_name cannot be empty",
		},
		{
			name:        "unknown field",
			body:        map[string]string{"email": "john@example.com", "username": "john"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockAuthService{registerErr: tt.serviceErr}
			handler := NewAuthHandler(setupTestLogger(), service)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", jsonBody(t, tt.body))
			w := httptest.NewRecorder()

			handler.Register(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusCreated {
				assert.Equal(t, tt.wantMessage, decodeError(t, w).Message)
				return
			}

			var resp api.AuthResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, "user-1", resp.User.ID)
			assert.Equal(t, "access", resp.Tokens.AccessToken)
			assert.Equal(t, "refresh", resp.Tokens.RefreshToken)
			assert.Equal(t, int64(900), resp.Tokens.ExpiresIn)
			assert.Equal(t, "John", service.lastRegister.FirstName)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		serviceErr error
		body       api.LoginRequest
		name       string
		wantStatus int
	}{
		{name: "valid", body: api.LoginRequest{Email: "john@example.com", Password: "Password123"}, wantStatus: http.StatusOK},
		{
			name:       "bad credentials",
			body:       api.LoginRequest{Email: "john@example.com", Password: "wrong"},
			serviceErr: apperr.Unauthorized("Invalid email or password"),
			wantStatus: http.StatusUnauthorized,
		},
		{name: "missing password", body: api.LoginRequest{Email: "john@example.com"}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(setupTestLogger(), &mockAuthService{loginErr: tt.serviceErr})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(t, tt.body))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("rotates", func(t *testing.T) {
		handler := NewAuthHandler(setupTestLogger(), &mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", jsonBody(t, api.RefreshRequest{RefreshToken: "old"}))
		w := httptest.NewRecorder()

		handler.Refresh(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp api.TokenResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "refresh", resp.RefreshToken)
		assert.True(t, testPair.RefreshExpiresAt.Equal(resp.RefreshExpiresAt))
	})

	t.Run("generic unauthorized", func(t *testing.T) {
		handler := NewAuthHandler(setupTestLogger(), &mockAuthService{refreshErr: apperr.Unauthorized("Invalid refresh token")})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", jsonBody(t, api.RefreshRequest{RefreshToken: "reused"}))
		w := httptest.NewRecorder()

		handler.Refresh(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid refresh token", decodeError(t, w).Message)
	})

	t.Run("missing token", func(t *testing.T) {
		handler := NewAuthHandler(setupTestLogger(), &mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", jsonBody(t, api.RefreshRequest{}))
		w := httptest.NewRecorder()

		handler.Refresh(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	tests := []struct {
		serviceErr error
		name       string
		userID     string
		wantStatus int
	}{
		{name: "success", userID: "user-1", wantStatus: http.StatusOK},
		{name: "unknown token", userID: "user-1", serviceErr: apperr.NotFound("Refresh token not found"), wantStatus: http.StatusNotFound},
		{name: "no caller in context", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockAuthService{logoutErr: tt.serviceErr}
			handler := NewAuthHandler(setupTestLogger(), service)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", jsonBody(t, api.LogoutRequest{RefreshToken: "raw"}))
			if tt.userID != "" {
				req = req.WithContext(WithUser(req.Context(), tt.userID, "john@example.com"))
			}
			w := httptest.NewRecorder()

			handler.Logout(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var resp api.MessageResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "Logged out successfully", resp.Message)
				assert.Equal(t, "raw", service.lastLogout.raw)
				assert.Equal(t, "user-1", service.lastLogout.userID)
			}
		})
	}
}
