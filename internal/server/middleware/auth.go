package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/portfolio-tracker/internal/server/handlers"
	"github.com/iudanet/portfolio-tracker/internal/server/jwt"
)

// TokenVerifier проверяет подпись и срок действия токена
type TokenVerifier interface {
	Verify(token string, class jwt.KeyClass) (*jwt.Claims, error)
}

// AuthMiddleware создает middleware для проверки access token.
// Refresh token здесь не принимается: он подписан другим секретом.
func AuthMiddleware(logger *slog.Logger, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(ctx, "missing Authorization header")
				writeError(w, "missing token", http.StatusUnauthorized)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				logger.WarnContext(ctx, "invalid Authorization header format")
				writeError(w, "invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(parts[1], jwt.AccessKey)
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				writeError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			logger.DebugContext(ctx, "user authenticated", slog.String("user_id", claims.Subject))

			next.ServeHTTP(w, r.WithContext(handlers.WithUser(ctx, claims.Subject, claims.Email)))
		})
	}
}
