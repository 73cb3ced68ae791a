package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/quill/internal/config"
	"github.com/stolasapp/quill/internal/sec"
	"github.com/stolasapp/quill/internal/storage"
)

func newTestApp(t *testing.T) (*echo.Echo, storage.Store) {
	t.Helper()

	cfg := config.Default()
	cfg.DBFilepath = filepath.Join(t.TempDir(), "db.sqlite")
	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"

	logger := slog.New(slog.DiscardHandler)
	store, err := storage.NewDB(t.Context(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv, err := New(cfg, logger, store)
	require.NoError(t, err)
	return srv, store
}

func do(srv *echo.Echo, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// sessionOf extracts the freshly set session cookie from a response.
func sessionOf(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sec.CookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func registerUser(t *testing.T, srv *echo.Echo, name, email, password string) *http.Cookie {
	t.Helper()
	rec := do(srv, http.MethodPost, "/register", url.Values{
		"name":            {name},
		"email":           {email},
		"password":        {password},
		"confirmPassword": {password},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	return sessionOf(t, rec)
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	srv, _ := newTestApp(t)

	alice := registerUser(t, srv, "A", "a@x.com", "pw1")

	// Logging in with the registered pair also works.
	rec := do(srv, http.MethodPost, "/login", url.Values{
		"email":    {"a@x.com"},
		"password": {"pw1"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	// Create a draft.
	rec = do(srv, http.MethodPost, "/posts/new", url.Values{
		"title":         {"T"},
		"content":       {"Some **bold** content."},
		"publishStatus": {"draft"},
	}, alice)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	postURL := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(postURL, "/posts/"))

	// The dashboard lists it as a draft.
	rec = do(srv, http.MethodGet, "/dashboard", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "T")
	assert.Contains(t, rec.Body.String(), "draft")

	// Drafts are unlisted, and the view path denies everyone but the author.
	bob := registerUser(t, srv, "B", "b@x.com", "pw2")
	rec = do(srv, http.MethodGet, "/posts", nil)
	assert.NotContains(t, rec.Body.String(), postURL)
	rec = do(srv, http.MethodGet, postURL, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(srv, http.MethodGet, postURL, nil, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The author sees their own draft, rendered from Markdown.
	rec = do(srv, http.MethodGet, postURL, nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>bold</strong>")
	assert.Equal(t, "private, no-cache", rec.Header().Get("Cache-Control"))

	// Publish it.
	rec = do(srv, http.MethodPost, postURL+"/edit", url.Values{
		"title":         {"T"},
		"content":       {"Some **bold** content."},
		"publishStatus": {"publish"},
	}, alice)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = do(srv, http.MethodGet, "/posts", nil)
	assert.Contains(t, rec.Body.String(), postURL)
	rec = do(srv, http.MethodGet, postURL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	// A second user cannot touch it.
	rec = do(srv, http.MethodGet, postURL+"/edit", nil, bob)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, postURL, rec.Header().Get("Location"))

	rec = do(srv, http.MethodPost, postURL+"/delete", nil, bob)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, postURL, rec.Header().Get("Location"))
	rec = do(srv, http.MethodGet, postURL, nil)
	require.Equal(t, http.StatusOK, rec.Code, "post must survive a non-owner delete attempt")

	// The owner can.
	rec = do(srv, http.MethodPost, postURL+"/delete", nil, alice)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	rec = do(srv, http.MethodGet, postURL, nil, alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()

	srv, _ := newTestApp(t)
	registerUser(t, srv, "A", "a@x.com", "pw1")

	// Wrong password and unknown email produce the same response.
	wrongPass := do(srv, http.MethodPost, "/login", url.Values{
		"email":    {"a@x.com"},
		"password": {"nope"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, wrongPass.Code)
	assert.Contains(t, wrongPass.Body.String(), "Invalid email or password")

	noUser := do(srv, http.MethodPost, "/login", url.Values{
		"email":    {"nobody@x.com"},
		"password": {"pw1"},
	})
	require.Equal(t, wrongPass.Code, noUser.Code)
	assert.Contains(t, noUser.Body.String(), "Invalid email or password")

	// Missing fields are field errors.
	rec := do(srv, http.MethodPost, "/login", url.Values{})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email is required")
	assert.Contains(t, rec.Body.String(), "Password is required")
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	srv, _ := newTestApp(t)
	registerUser(t, srv, "A", "a@x.com", "pw1")

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		rec := do(srv, http.MethodPost, "/register", url.Values{
			"email":           {"a@x.com"},
			"password":        {"pw2"},
			"confirmPassword": {"pw2"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "already registered")
	})

	t.Run("password mismatch", func(t *testing.T) {
		t.Parallel()
		rec := do(srv, http.MethodPost, "/register", url.Values{
			"email":           {"c@x.com"},
			"password":        {"pw1"},
			"confirmPassword": {"pw2"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Passwords do not match")
	})

	t.Run("implausible email", func(t *testing.T) {
		t.Parallel()
		rec := do(srv, http.MethodPost, "/register", url.Values{
			"email":           {"not an address"},
			"password":        {"pw1"},
			"confirmPassword": {"pw1"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "valid email")
	})

	t.Run("name is optional", func(t *testing.T) {
		t.Parallel()
		rec := do(srv, http.MethodPost, "/register", url.Values{
			"email":           {"noname@x.com"},
			"password":        {"pw1"},
			"confirmPassword": {"pw1"},
		})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})
}

func TestPostFormValidation(t *testing.T) {
	t.Parallel()

	srv, _ := newTestApp(t)
	alice := registerUser(t, srv, "A", "valid@x.com", "pw1")

	rec := do(srv, http.MethodPost, "/posts/new", url.Values{
		"title":   {""},
		"content": {"kept content"},
	}, alice)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Title is required")
	assert.Contains(t, rec.Body.String(), "kept content", "submitted values survive a failed validation")
}

func TestRequiresSession(t *testing.T) {
	t.Parallel()

	srv, _ := newTestApp(t)

	for _, target := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/dashboard"},
		{http.MethodGet, "/posts/new"},
		{http.MethodPost, "/posts/new"},
		{http.MethodGet, "/posts/1/edit"},
		{http.MethodPost, "/posts/1/edit"},
		{http.MethodGet, "/posts/1/delete"},
		{http.MethodPost, "/posts/1/delete"},
	} {
		rec := do(srv, target.method, target.path, url.Values{})
		assert.Equal(t, http.StatusSeeOther, rec.Code, "%s %s", target.method, target.path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), "%s %s", target.method, target.path)
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()

	srv, _ := newTestApp(t)
	alice := registerUser(t, srv, "A", "a@x.com", "pw1")

	// Destroying the session twice in a row is fine.
	for range 2 {
		rec := do(srv, http.MethodPost, "/logout", nil, alice)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, sec.CookieName, cookies[0].Name)
		assert.Negative(t, cookies[0].MaxAge)
	}

	// A GET just bounces home without touching the session.
	rec := do(srv, http.MethodGet, "/logout", nil, alice)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())
}

func TestStaleSessionSelfHeals(t *testing.T) {
	t.Parallel()

	srv, store := newTestApp(t)
	ghost := registerUser(t, srv, "G", "ghost@x.com", "pw1")

	user, err := store.GetUserByEmail(t.Context(), "ghost@x.com")
	require.NoError(t, err)
	require.NoError(t, store.DeleteUser(t.Context(), user.ID))

	rec := do(srv, http.MethodGet, "/dashboard", nil, ghost)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge, "stale session must be expired")
}

func TestTamperedSessionIsAnonymous(t *testing.T) {
	t.Parallel()

	srv, _ := newTestApp(t)
	alice := registerUser(t, srv, "A", "a@x.com", "pw1")

	tampered := *alice
	tampered.Value = strings.Repeat("x", len(alice.Value))
	rec := do(srv, http.MethodGet, "/dashboard", nil, &tampered)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestViewPostNotFound(t *testing.T) {
	t.Parallel()

	srv, _ := newTestApp(t)

	rec := do(srv, http.MethodGet, "/posts/12345", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(srv, http.MethodGet, "/posts/not-a-number", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
