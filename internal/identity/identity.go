package identity

import (
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieName is the cookie carrying the device token.
	CookieName = "quiz_session_id"
	// HeaderName lets non-browser clients send the token explicitly.
	HeaderName = "X-Session-Id"
	// QueryParam is accepted for WebSocket upgrades where headers are awkward.
	QueryParam = "sessionId"
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// Service issues and resolves the per-device token used to attribute
// leaderboard and attempt rows. One instance is created at startup and
// passed to whatever needs it.
type Service struct {
	cookieTTL time.Duration
	now       func() time.Time
	newToken  func() string
}

func NewService(cookieTTL time.Duration) *Service {
	if cookieTTL <= 0 {
		cookieTTL = 365 * 24 * time.Hour
	}
	return &Service{
		cookieTTL: cookieTTL,
		now:       time.Now,
		newToken:  func() string { return uuid.New().String() },
	}
}

// Valid reports whether token has the shape of an issued token.
func Valid(token string) bool {
	return tokenPattern.MatchString(token)
}

// Lookup returns the token presented by the request, if any. The cookie
// wins over the header, the header over the query string.
func (s *Service) Lookup(r *http.Request) (string, bool) {
	if c, err := r.Cookie(CookieName); err == nil && Valid(c.Value) {
		return c.Value, true
	}
	if h := r.Header.Get(HeaderName); Valid(h) {
		return h, true
	}
	if q := r.URL.Query().Get(QueryParam); Valid(q) {
		return q, true
	}
	return "", false
}

// Resolve returns the request's token, issuing a fresh one when the request
// carries none or a malformed one. A fresh token is also set as a cookie.
func (s *Service) Resolve(w http.ResponseWriter, r *http.Request) string {
	if token, ok := s.Lookup(r); ok {
		return token
	}
	token := s.newToken()
	http.SetCookie(w, s.cookie(r, token))
	return token
}

func (s *Service) cookie(r *http.Request, token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  s.now().Add(s.cookieTTL),
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// Owns reports whether a row tagged with rowSessionID may be changed by the
// holder of token. Rows without a session are owned by nobody.
func Owns(token, rowSessionID string) bool {
	return token != "" && rowSessionID != "" && token == rowSessionID
}

// isSecureRequest checks TLS, X-Forwarded-Proto (reverse proxies) and the URL scheme.
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if r.Header.Get("X-Forwarded-Proto") == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}
