package db

import (
	"context"
	"database/sql"
)

// Queries bundles the SQL statements over a database handle.
type Queries struct {
	db *sql.DB
}

// New returns a Queries over the given handle.
func New(handle *sql.DB) *Queries {
	return &Queries{db: handle}
}

const createUser = `
insert into users (id, email, name, password_hash, created_at)
values (?, ?, ?, ?, ?)
on conflict (email) do nothing
returning id, email, name, password_hash, created_at
`

// CreateUser inserts the user. The conflict clause makes a duplicate email
// surface as [sql.ErrNoRows] rather than a driver-specific constraint error.
func (q *Queries) CreateUser(ctx context.Context, user User) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt,
	)
	return scanUser(row)
}

const getUser = `
select id, email, name, password_hash, created_at
from users
where id = ?
`

// GetUser returns the user with the given ID.
func (q *Queries) GetUser(ctx context.Context, id uint64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const getUserByEmail = `
select id, email, name, password_hash, created_at
from users
where email = ?
`

// GetUserByEmail returns the user with the given email. The match is a
// case-sensitive exact comparison.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const deleteUser = `delete from users where id = ?`

// DeleteUser removes the user row. Their posts go with them via the schema's
// cascade.
func (q *Queries) DeleteUser(ctx context.Context, id uint64) error {
	_, err := q.db.ExecContext(ctx, deleteUser, id)
	return err
}

const countUsers = `select count(*) from users`

// CountUsers returns the number of registered users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}

const createPost = `
insert into posts (id, title, content, published, author_id, created_at)
values (?, ?, ?, ?, ?, ?)
returning id, title, content, published, author_id, created_at
`

// CreatePost inserts the post and returns the stored row. Author fields are
// not populated on the returned value.
func (q *Queries) CreatePost(ctx context.Context, post Post) (Post, error) {
	row := q.db.QueryRowContext(ctx, createPost,
		post.ID, post.Title, post.Content, post.Published, post.AuthorID, post.CreatedAt,
	)
	var out Post
	err := row.Scan(&out.ID, &out.Title, &out.Content, &out.Published, &out.AuthorID, &out.CreatedAt)
	return out, err
}

const getPost = `
select p.id, p.title, p.content, p.published, p.author_id, p.created_at, u.name, u.email
from posts p
join users u on u.id = p.author_id
where p.id = ?
`

// GetPost returns the post with the given ID, author fields included.
func (q *Queries) GetPost(ctx context.Context, id uint64) (Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPost, id))
}

const listPublishedPosts = `
select p.id, p.title, p.content, p.published, p.author_id, p.created_at, u.name, u.email
from posts p
join users u on u.id = p.author_id
where p.published
order by p.created_at desc, p.id desc
`

// ListPublishedPosts returns all published posts, newest first.
func (q *Queries) ListPublishedPosts(ctx context.Context) ([]Post, error) {
	return q.listPosts(ctx, listPublishedPosts)
}

const listPostsByAuthor = `
select p.id, p.title, p.content, p.published, p.author_id, p.created_at, u.name, u.email
from posts p
join users u on u.id = p.author_id
where p.author_id = ?
order by p.created_at desc, p.id desc
`

// ListPostsByAuthor returns every post by the author, drafts included, newest
// first.
func (q *Queries) ListPostsByAuthor(ctx context.Context, authorID uint64) ([]Post, error) {
	return q.listPosts(ctx, listPostsByAuthor, authorID)
}

// UpdatePostParams are the fields to change on a post. Nil fields are left
// unchanged.
type UpdatePostParams struct {
	ID        uint64
	Title     *string
	Content   *string
	Published *bool
}

const updatePost = `
update posts set
    title = coalesce(?, title),
    content = coalesce(?, content),
    published = coalesce(?, published)
where id = ?
returning id, title, content, published, author_id, created_at
`

// UpdatePost applies the partial update and returns the resulting row. Author
// fields are not populated on the returned value.
func (q *Queries) UpdatePost(ctx context.Context, params UpdatePostParams) (Post, error) {
	row := q.db.QueryRowContext(ctx, updatePost,
		params.Title, params.Content, params.Published, params.ID,
	)
	var out Post
	err := row.Scan(&out.ID, &out.Title, &out.Content, &out.Published, &out.AuthorID, &out.CreatedAt)
	return out, err
}

const deletePost = `delete from posts where id = ?`

// DeletePost removes the post row.
func (q *Queries) DeletePost(ctx context.Context, id uint64) error {
	_, err := q.db.ExecContext(ctx, deletePost, id)
	return err
}

func (q *Queries) listPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Content, &p.Published, &p.AuthorID, &p.CreatedAt,
			&p.AuthorName, &p.AuthorEmail,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func scanPost(row *sql.Row) (Post, error) {
	var p Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Published, &p.AuthorID, &p.CreatedAt,
		&p.AuthorName, &p.AuthorEmail,
	)
	return p, err
}
