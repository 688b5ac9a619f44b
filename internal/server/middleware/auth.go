package middleware

import (
	"net/http"
	"time"

	"github.com/tradedge/tradedge/internal/auth"
)

// RequireAuth returns middleware that admits requests carrying either valid
// HTTP basic credentials or a valid session cookie. Everything else gets a
// 401. The webhook ingress is deliberately not behind this middleware; its
// secret path segment is its gate.
func RequireAuth(a *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, pass, ok := r.BasicAuth(); ok && a.VerifyCredentials(user, pass) {
				next.ServeHTTP(w, r)
				return
			}

			if c, err := r.Cookie(auth.SessionCookie); err == nil && a.VerifySession(c.Value, time.Now()) {
				next.ServeHTTP(w, r)
				return
			}

			writeUnauthorized(w, "authentication required")
		})
	}
}

// writeUnauthorized sends a 401 response with a JSON error body.
func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="tradedge"`)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
