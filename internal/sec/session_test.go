package sec

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestSessionsRoundTrip(t *testing.T) {
	t.Parallel()

	sessions := NewSessions(testSecret, false)

	for _, userID := range []uint64{1, 42, 1716803668497203200, math.MaxInt64} {
		cookie, err := sessions.Issue(userID)
		require.NoError(t, err)

		got, ok := sessions.Read(requestWith(cookie))
		require.True(t, ok)
		assert.Equal(t, userID, got)
	}
}

func TestSessionsCookieAttributes(t *testing.T) {
	t.Parallel()

	cookie, err := NewSessions(testSecret, true).Issue(7)
	require.NoError(t, err)

	assert.Equal(t, CookieName, cookie.Name)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(SessionMaxAge.Seconds()), cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	cookie, err = NewSessions(testSecret, false).Issue(7)
	require.NoError(t, err)
	assert.False(t, cookie.Secure, "Secure should be off for local development")
}

func TestSessionsRejects(t *testing.T) {
	t.Parallel()

	sessions := NewSessions(testSecret, false)
	cookie, err := sessions.Issue(99)
	require.NoError(t, err)

	t.Run("no cookie", func(t *testing.T) {
		t.Parallel()
		_, ok := sessions.Read(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, ok)
	})

	t.Run("tampered value", func(t *testing.T) {
		t.Parallel()
		tampered := *cookie
		tampered.Value = flipByte(cookie.Value, len(cookie.Value)/2)
		_, ok := sessions.Read(requestWith(&tampered))
		assert.False(t, ok)
	})

	t.Run("garbage value", func(t *testing.T) {
		t.Parallel()
		garbage := *cookie
		garbage.Value = "definitely not a signed payload"
		_, ok := sessions.Read(requestWith(&garbage))
		assert.False(t, ok)
	})

	t.Run("different secret", func(t *testing.T) {
		t.Parallel()
		other := NewSessions([]byte("another-secret-another-secret-ab"), false)
		_, ok := other.Read(requestWith(cookie))
		assert.False(t, ok)
	})
}

func TestSessionsExpire(t *testing.T) {
	t.Parallel()

	expired := NewSessions(testSecret, false).Expire()
	assert.Equal(t, CookieName, expired.Name)
	assert.Equal(t, "/", expired.Path)
	assert.Empty(t, expired.Value)
	assert.Negative(t, expired.MaxAge)
}

func requestWith(cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	return req
}

// flipByte swaps one base64 character for a different one, preserving the
// value's shape while breaking its signature.
func flipByte(value string, i int) string {
	b := []byte(value)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}
