// Package storage provides the state management for users and posts.
package storage

import (
	"context"

	"github.com/stolasapp/quill/internal/storage/db"
)

const (
	// ErrNotFound is returned when a user or post cannot be found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned if the email is already registered.
	ErrAlreadyExists Error = "already exists"
	// ErrInvalidEmail is returned when an email address fails validation.
	ErrInvalidEmail Error = "email must be a plausible address of at most 254 characters"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Users are the methods on a storage implementation that are responsible for
// accessing and modifying users.
type Users interface {
	// CreateUser inserts a new user and returns the stored row with its
	// assigned ID. An [ErrAlreadyExists] is returned if the email is taken,
	// an [ErrInvalidEmail] if the email fails validation.
	CreateUser(ctx context.Context, user db.User) (db.User, error)
	// GetUser returns a single user with the specified ID. An [ErrNotFound]
	// is returned if the user ID does not exist.
	GetUser(ctx context.Context, userID uint64) (db.User, error)
	// GetUserByEmail returns a single user with the specified email, matched
	// case-sensitively. An [ErrNotFound] is returned if no user has it.
	GetUserByEmail(ctx context.Context, email string) (db.User, error)
	// DeleteUser removes a user and all their posts. Note that this is a hard
	// delete; data is not recoverable. Deleting an absent user is a no-op.
	DeleteUser(ctx context.Context, userID uint64) error
	// CountUsers returns the number of registered users.
	CountUsers(ctx context.Context) (int64, error)
}

// Posts are the methods on a storage implementation that are responsible for
// accessing and modifying posts.
type Posts interface {
	// ListPublished returns all published posts, newest first.
	ListPublished(ctx context.Context) ([]db.Post, error)
	// ListByAuthor returns every post by the author, drafts included, newest
	// first.
	ListByAuthor(ctx context.Context, authorID uint64) ([]db.Post, error)
	// GetPost returns a single post with the specified ID. An [ErrNotFound]
	// is returned if the post ID does not exist.
	GetPost(ctx context.Context, postID uint64) (db.Post, error)
	// CreatePost inserts a new post and returns the stored row with its
	// assigned ID.
	CreatePost(ctx context.Context, post db.Post) (db.Post, error)
	// UpdatePost applies a partial update; nil fields are left unchanged. An
	// [ErrNotFound] is returned if the post ID does not exist.
	UpdatePost(ctx context.Context, params db.UpdatePostParams) (db.Post, error)
	// DeletePost removes the post. Deleting an absent post is a no-op;
	// callers load the post first to confirm existence and ownership.
	DeletePost(ctx context.Context, postID uint64) error
}

// Store is the combination interface for [Users] and [Posts].
type Store interface {
	Users
	Posts
	// Close releases any resources held by the store. An error is returned if
	// the store cannot be cleanly closed.
	Close() error
}
