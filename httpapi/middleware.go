package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/Pk1316/slot-swapper-backend/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserID extracts the authenticated caller from the request context. The
// empty string means the request skipped the auth middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// authenticated resolves the caller's identity from the Bearer token and
// injects it into the request context. Handlers behind it trust that ID
// completely; no further authentication happens downstream.
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "not authorized, token missing"})
			return
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "not authorized, token invalid"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
