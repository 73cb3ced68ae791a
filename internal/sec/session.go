package sec

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// CookieName is the fixed name of the session cookie.
const CookieName = "quill_session"

// SessionMaxAge is how long an issued session cookie remains valid.
const SessionMaxAge = 30 * 24 * time.Hour

// sessionPayload is the entire signed cookie contents: just the user's ID.
type sessionPayload struct {
	UserID uint64
}

// Sessions encodes and decodes the signed session cookie.
type Sessions struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewSessions creates a session codec signing with the given secret. secure
// controls the cookie's Secure attribute and should be false only in local
// development over plain http.
func NewSessions(secret []byte, secure bool) *Sessions {
	codec := securecookie.New(secret, nil)
	codec.MaxAge(int(SessionMaxAge.Seconds()))
	return &Sessions{codec: codec, secure: secure}
}

// Issue returns a session cookie identifying the user.
func (s *Sessions) Issue(userID uint64) (*http.Cookie, error) {
	value, err := s.codec.Encode(CookieName, sessionPayload{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode session cookie: %w", err)
	}
	return s.cookie(value, int(SessionMaxAge.Seconds())), nil
}

// Read extracts the user ID from the request's session cookie. A cookie that
// is missing, malformed, expired, or fails signature verification reads as no
// session; it never fails the request.
func (s *Sessions) Read(r *http.Request) (userID uint64, ok bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return 0, false
	}
	var payload sessionPayload
	if err := s.codec.Decode(CookieName, cookie.Value, &payload); err != nil {
		return 0, false
	}
	return payload.UserID, payload.UserID != 0
}

// Expire returns a cookie that overwrites the session with an immediately
// expiring one.
func (s *Sessions) Expire() *http.Cookie {
	return s.cookie("", -1)
}

func (s *Sessions) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	}
}
