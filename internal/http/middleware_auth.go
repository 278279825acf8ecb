package http

import (
	"context"
	"net/http"
	"strings"

	"libraryapi/internal/auth"
	"libraryapi/internal/circulation"
	"libraryapi/internal/entity"
)

type contextKey string

const userIDKey contextKey = "userID"
const roleKey contextKey = "role"

func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Sub)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func RoleFrom(r *http.Request) entity.Role {
	if v, ok := r.Context().Value(roleKey).(entity.Role); ok {
		return v
	}
	return ""
}

// ActorFrom builds the circulation actor from the authenticated request.
func ActorFrom(r *http.Request) circulation.Actor {
	return circulation.Actor{UserID: UserIDFrom(r), Role: RoleFrom(r)}
}
