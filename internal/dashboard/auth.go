package dashboard

import (
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookie = "districtbot_dash"

// authState holds the configured credentials and the issued login tokens.
// Tokens live in memory; a restart just logs officers out.
type authState struct {
	username string
	password string

	mu     sync.Mutex
	tokens map[string]time.Time
}

func newAuthState(username, password string) *authState {
	return &authState{
		username: username,
		password: password,
		tokens:   make(map[string]time.Time),
	}
}

func (a *authState) enabled() bool {
	return a.username != "" && a.password != ""
}

func (a *authState) login(username, password string) (string, bool) {
	if !a.enabled() {
		return "", false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return "", false
	}

	token := uuid.NewString()
	a.mu.Lock()
	a.tokens[token] = time.Now().Add(12 * time.Hour)
	a.mu.Unlock()
	return token, true
}

func (a *authState) logout(token string) {
	a.mu.Lock()
	delete(a.tokens, token)
	a.mu.Unlock()
}

func (a *authState) valid(token string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	expiry, ok := a.tokens[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(a.tokens, token)
		return false
	}
	return true
}

// require guards the officer endpoints behind a valid login cookie.
func (a *authState) require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "dashboard credentials are not configured"})
			return
		}
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || !a.valid(cookie.Value) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
