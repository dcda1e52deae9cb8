package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"reelist/models"
)

type contextKey string

const userIDKey contextKey = "reelist.userID"

// UserIDFrom returns the authenticated user id stored by SessionAuth, or ""
// for unauthenticated requests.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

type sessionResolver interface {
	Lookup(ctx context.Context, token string) (models.Session, error)
}

// SessionAuth resolves the session cookie and rejects requests without a
// live session. The user id lands in the request context.
func SessionAuth(svc sessionResolver, cookieName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			// Expired and missing sessions look the same to the client.
			session, err := svc.Lookup(r.Context(), cookie.Value)
			if err != nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
