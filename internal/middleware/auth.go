package middleware

import (
	"context"
	"net/http"
	"strings"

	"cambiacartas-api/internal/model"
	"cambiacartas-api/internal/service"
	"cambiacartas-api/pkg/apierror"
)

// SessionKey is the key for storing the session in request context.
const SessionKey contextKey = "session"

// RequireSession creates a middleware that rejects requests without a
// valid session token. The token comes from X-Session-Token or a Bearer
// Authorization header.
func RequireSession(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Session-Token")
			if token == "" {
				auth := r.Header.Get("Authorization")
				if strings.HasPrefix(auth, "Bearer ") {
					token = strings.TrimPrefix(auth, "Bearer ")
				}
			}

			if token == "" {
				writeError(w, apierror.Unauthorized("Authentication required. Use X-Session-Token or a Bearer token."))
				return
			}

			if sessions == nil {
				writeError(w, apierror.Unauthorized("Sessions are not enabled"))
				return
			}

			session, err := sessions.Validate(r.Context(), token)
			if err != nil {
				writeError(w, apierror.Unauthorized("Invalid or expired session"))
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}

// GetSession retrieves the session from request context.
func GetSession(ctx context.Context) *model.Session {
	if s, ok := ctx.Value(SessionKey).(*model.Session); ok {
		return s
	}
	return nil
}
