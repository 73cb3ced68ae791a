// Package auth composes the password hasher, session codec, and user store
// into the login, registration, and session lifecycle operations used by the
// web handlers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stolasapp/quill/internal/sec"
	"github.com/stolasapp/quill/internal/storage"
	"github.com/stolasapp/quill/internal/storage/db"
)

// ErrInvalidCredentials is returned by [Service.Login] for both an unknown
// email and a wrong password. Folding the two keeps login failures from
// revealing which addresses are registered.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service performs authentication against the user store.
type Service struct {
	users    storage.Users
	sessions *sec.Sessions
}

// NewService creates a Service over the given user store and session codec.
func NewService(users storage.Users, sessions *sec.Sessions) *Service {
	return &Service{users: users, sessions: sessions}
}

// CurrentUser resolves the requesting user from the session cookie. A request
// without a valid session resolves to no user without error. A session whose
// user no longer exists is self-healing: the cookie is expired on w and the
// request proceeds as anonymous instead of failing on every page load.
func (s *Service) CurrentUser(w http.ResponseWriter, r *http.Request) (db.User, bool, error) {
	userID, ok := s.sessions.Read(r)
	if !ok {
		return db.User{}, false, nil
	}
	user, err := s.users.GetUser(r.Context(), userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.SetCookie(w, s.sessions.Expire())
		return db.User{}, false, nil
	case err != nil:
		return db.User{}, false, fmt.Errorf("failed to resolve session user: %w", err)
	}
	user.PasswordHash = nil
	return user, true, nil
}

// Login verifies the email/password pair and returns the user on success. Any
// credential failure, unknown email included, is [ErrInvalidCredentials]; the
// caller cannot distinguish the two cases.
func (s *Service) Login(ctx context.Context, email, password string) (db.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return db.User{}, ErrInvalidCredentials
	case err != nil:
		return db.User{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if !sec.VerifyPassword(password, user.PasswordHash) {
		return db.User{}, ErrInvalidCredentials
	}
	user.PasswordHash = nil
	return user, nil
}

// Register hashes the password and creates the user. It assumes the caller
// already checked that the email is unused; a lost race surfaces as the
// store's [storage.ErrAlreadyExists].
func (s *Service) Register(ctx context.Context, email, password, name string) (db.User, error) {
	digest, err := sec.HashPassword(password)
	if err != nil {
		return db.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := s.users.CreateUser(ctx, db.User{
		Email:        email,
		Name:         name,
		PasswordHash: digest,
	})
	if err != nil {
		return db.User{}, err
	}
	user.PasswordHash = nil
	return user, nil
}

// StartSession issues a session cookie for the user on w.
func (s *Service) StartSession(w http.ResponseWriter, userID uint64) error {
	cookie, err := s.sessions.Issue(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, cookie)
	return nil
}

// Logout overwrites the session cookie with an expiring one. It is idempotent
// and succeeds even when no session existed.
func (s *Service) Logout(w http.ResponseWriter) {
	http.SetCookie(w, s.sessions.Expire())
}

// IsOwner reports whether the user owns the post. This is the uniform
// authorization rule for every mutation path; callers apply it to a post
// loaded fresh from the store, never to client-supplied claims.
func IsOwner(user db.User, post db.Post) bool {
	return user.ID != 0 && user.ID == post.AuthorID
}
