package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/influxdata/influxdb/pkg/snowflake"

	"github.com/stolasapp/quill/internal/config"
	"github.com/stolasapp/quill/internal/storage/db"
)

// maxEmailLen caps emails at the RFC 5321 path limit.
const maxEmailLen = 254

// emailRegex is deliberately loose: one @ with something on both sides. Real
// validation happens when the author fails to receive anything at the address
// they typed.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

func validateEmail(email string) bool {
	return len(email) <= maxEmailLen && emailRegex.MatchString(email)
}

// DB is a [Store] backed by a SQLite database.
type DB struct {
	ids     *snowflake.Generator
	db      *sql.DB
	queries *db.Queries
}

// NewDB initializes a DB with the given config and logger.
func NewDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	handle, err := db.Open(ctx, logger, cfg.DBFilepath)
	if err != nil {
		return nil, err
	}
	return &DB{
		ids:     snowflake.New(rand.IntN(1023)), //nolint:gosec,mnd // this isn't for crypto
		db:      handle,
		queries: db.New(handle),
	}, nil
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return d.db.Close()
}

// CreateUser satisfies the [Users] interface.
func (d *DB) CreateUser(ctx context.Context, user db.User) (db.User, error) {
	if !validateEmail(user.Email) {
		return db.User{}, ErrInvalidEmail
	}
	if user.ID == 0 {
		user.ID = d.ids.Next()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	created, err := d.queries.CreateUser(ctx, user)
	if errors.Is(err, sql.ErrNoRows) {
		return created, ErrAlreadyExists
	}
	return created, err
}

// GetUser satisfies the [Users] interface.
func (d *DB) GetUser(ctx context.Context, userID uint64) (db.User, error) {
	user, err := d.queries.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// GetUserByEmail satisfies the [Users] interface.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (db.User, error) {
	user, err := d.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// DeleteUser satisfies the [Users] interface.
func (d *DB) DeleteUser(ctx context.Context, userID uint64) error {
	return d.queries.DeleteUser(ctx, userID)
}

// CountUsers satisfies the [Users] interface.
func (d *DB) CountUsers(ctx context.Context) (int64, error) {
	return d.queries.CountUsers(ctx)
}

// ListPublished satisfies the [Posts] interface.
func (d *DB) ListPublished(ctx context.Context) ([]db.Post, error) {
	return d.queries.ListPublishedPosts(ctx)
}

// ListByAuthor satisfies the [Posts] interface.
func (d *DB) ListByAuthor(ctx context.Context, authorID uint64) ([]db.Post, error) {
	return d.queries.ListPostsByAuthor(ctx, authorID)
}

// GetPost satisfies the [Posts] interface.
func (d *DB) GetPost(ctx context.Context, postID uint64) (db.Post, error) {
	post, err := d.queries.GetPost(ctx, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return post, ErrNotFound
	}
	return post, err
}

// CreatePost satisfies the [Posts] interface.
func (d *DB) CreatePost(ctx context.Context, post db.Post) (db.Post, error) {
	if post.ID == 0 {
		post.ID = d.ids.Next()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	return d.queries.CreatePost(ctx, post)
}

// UpdatePost satisfies the [Posts] interface.
func (d *DB) UpdatePost(ctx context.Context, params db.UpdatePostParams) (db.Post, error) {
	post, err := d.queries.UpdatePost(ctx, params)
	if errors.Is(err, sql.ErrNoRows) {
		return post, ErrNotFound
	}
	return post, err
}

// DeletePost satisfies the [Posts] interface.
func (d *DB) DeletePost(ctx context.Context, postID uint64) error {
	return d.queries.DeletePost(ctx, postID)
}

var _ Store = (*DB)(nil)
