package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio-tracker/internal/clock"
	"github.com/iudanet/portfolio-tracker/internal/server/handlers"
	"github.com/iudanet/portfolio-tracker/internal/server/jwt"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestIssuer(t *testing.T, clk clock.Clock) *jwt.Issuer {
	t.Helper()
	issuer, err := jwt.NewIssuer(jwt.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}, clk)
	require.NoError(t, err)
	return issuer
}

func TestAuthMiddleware(t *testing.T) {
	clk := clock.NewManual(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC))
	issuer := newTestIssuer(t, clk)

	pair, err := issuer.Issue(jwt.Subject{ID: "user-1", Email: "john@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		advance    time.Duration
		wantStatus int
	}{
		{name: "valid access token", header: "Bearer " + pair.AccessToken, wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + pair.AccessToken, wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "refresh token rejected", header: "Bearer " + pair.RefreshToken, wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + pair.AccessToken, advance: 16 * time.Minute, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := clock.NewManual(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC))
			clk.Advance(tt.advance)
			mw := AuthMiddleware(setupTestLogger(), newTestIssuer(t, clk))

			var gotUserID, gotEmail string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = handlers.GetUserID(r.Context())
				gotEmail, _ = handlers.GetEmail(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/portfolio/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			mw(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "user-1", gotUserID)
				assert.Equal(t, "john@example.com", gotEmail)
			} else {
				assert.Empty(t, gotUserID)
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			}
		})
	}
}
