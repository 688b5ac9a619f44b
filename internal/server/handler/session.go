package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tradedge/tradedge/internal/auth"
)

// SessionHandler serves the admin login/logout endpoints that issue and
// revoke session cookies.
type SessionHandler struct {
	auth   *auth.Authenticator
	logger *slog.Logger
}

// NewSessionHandler creates a SessionHandler backed by the given authenticator.
func NewSessionHandler(a *auth.Authenticator, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		auth:   a,
		logger: logger,
	}
}

// loginRequest is the JSON body accepted by Login; form bodies are accepted
// too for compatibility with plain HTML login pages.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks credentials and sets the session cookie on success.
// POST /admin/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var username, password string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		username, password = req.Username, req.Password
	} else {
		username = r.FormValue("username")
		password = r.FormValue("password")
	}

	if !h.auth.VerifyCredentials(username, password) {
		h.logger.WarnContext(r.Context(), "handler: login rejected",
			slog.String("username", username),
			slog.String("remote_addr", r.RemoteAddr),
		)
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    h.auth.IssueSession(time.Now()),
		Path:     "/",
		MaxAge:   int(auth.SessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged in"})
}

// Logout clears the session cookie.
// POST /admin/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
