// Package auth implements the administrative credential check and the signed
// session cookie that the admin surface and the query interface accept in
// place of basic auth.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// SessionCookie is the name of the session cookie issued after a successful
// credential check.
const SessionCookie = "tradedge_session"

// SessionMaxAge is how long an issued session stays valid.
const SessionMaxAge = 8 * time.Hour

// Authenticator verifies operator credentials and manages session tokens.
type Authenticator struct {
	username     string
	password     string // plaintext comparison, used only when no hash is set
	passwordHash string // bcrypt hash, preferred
	secret       []byte // HMAC key for session tokens
}

// New creates an Authenticator. When passwordHash is non-empty it takes
// precedence over the plaintext password.
func New(username, password, passwordHash, sessionSecret string) *Authenticator {
	return &Authenticator{
		username:     username,
		password:     password,
		passwordHash: passwordHash,
		secret:       []byte(sessionSecret),
	}
}

// VerifyCredentials reports whether the supplied username and password match
// the configured operator credentials. Comparisons are constant-time.
func (a *Authenticator) VerifyCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1

	var passOK bool
	if a.passwordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	}

	return userOK && passOK
}

// IssueSession returns a signed session token expiring SessionMaxAge after
// now. The token is "<unix-expiry>.<hex hmac-sha256>".
func (a *Authenticator) IssueSession(now time.Time) string {
	exp := strconv.FormatInt(now.Add(SessionMaxAge).Unix(), 10)
	return exp + "." + a.sign(exp)
}

// VerifySession reports whether token is a validly signed, unexpired session.
func (a *Authenticator) VerifySession(token string, now time.Time) bool {
	exp, sig, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(sig), []byte(a.sign(exp))) != 1 {
		return false
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return false
	}
	return now.Unix() < unix
}

func (a *Authenticator) sign(msg string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}
