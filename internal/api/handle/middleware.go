package handle

import (
	"context"
	"net/http"
	"strings"

	"canteen/internal/app/services"
	"canteen/internal/domain/models"
	"canteen/internal/xpkg/logger"
)

type contextKey string

const userKey contextKey = "user"

// Authenticate verifies the Bearer token and loads the current user into the
// request context. The user is re-read from the store on every request so a
// role change applies immediately.
func Authenticate(auth *services.AuthService, mylog logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				jsonFail(w, http.StatusUnauthorized, "no token provided")
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				jsonFail(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			user, err := auth.VerifyToken(r.Context(), parts[1])
			if err != nil {
				mylog.Action("auth_failed").Debug("Token rejected", "path", r.URL.Path)
				failFromError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a handler to the given roles. It assumes Authenticate ran
// first.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				jsonFail(w, http.StatusUnauthorized, "user not authenticated")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			jsonFail(w, http.StatusForbidden, "access denied")
		})
	}
}

// UserFrom extracts the authenticated user set by Authenticate.
func UserFrom(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}
