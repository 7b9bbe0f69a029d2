package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/evn/toopath_backendl/internal/pkg/messages"
	"github.com/evn/toopath_backendl/internal/pkg/response"
	authService "github.com/evn/toopath_backendl/internal/services/auth"
)

// UserIDContextKey — ключ для хранения user ID в контексте.
type contextKey string

const UserIDContextKey contextKey = "user_id"

// GetUserIDFromContext возвращает user_id из контекста.
func GetUserIDFromContext(ctx context.Context) (int, bool) {
	if val := ctx.Value(UserIDContextKey); val != nil {
		if id, ok := val.(int); ok {
			return id, true
		}
	}
	return 0, false
}

// Authenticate проверяет заголовок Authorization вида "JWT <token>"
// и кладет id владельца токена в контекст запроса.
func Authenticate(jwtService *authService.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "JWT" || parts[1] == "" {
				response.RespondWithError(w, http.StatusUnauthorized, messages.Get("not_authenticated"))
				return
			}

			user, err := jwtService.VerifyToken(r.Context(), parts[1])
			if err != nil {
				response.RespondWithAPIError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
