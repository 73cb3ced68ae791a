package db

import (
	"strings"
	"time"
)

// User is a registered author. PasswordHash holds a bcrypt digest; the
// plaintext password never touches the database.
type User struct {
	ID           uint64
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// DisplayName returns the user's name, falling back to the local part of
// their email when no name was provided at registration.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return emailLocalPart(u.Email)
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Post is a blog post. Published is false for drafts, which are visible only
// to their author. AuthorName and AuthorEmail are denormalized from the owning
// user row on reads; they are ignored on writes.
type Post struct {
	ID        uint64
	Title     string
	Content   string
	Published bool
	AuthorID  uint64
	CreatedAt time.Time

	AuthorName  string
	AuthorEmail string
}

// AuthorDisplayName returns the post author's name, falling back to the
// local part of their email address.
func (p Post) AuthorDisplayName() string {
	if p.AuthorName != "" {
		return p.AuthorName
	}
	return emailLocalPart(p.AuthorEmail)
}
