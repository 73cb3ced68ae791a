package app

import (
	"html/template"
	"time"

	"github.com/stolasapp/quill/internal/content"
	"github.com/stolasapp/quill/internal/storage/db"
)

// frame is the data every page shares with the layout: the requesting user,
// if any.
type frame struct {
	User     db.User
	LoggedIn bool
}

// postItem is one entry on a list page.
type postItem struct {
	ID        uint64
	Title     string
	Excerpt   string
	Author    string
	CreatedAt time.Time
	Published bool
}

func toPostItems(posts []db.Post) []postItem {
	items := make([]postItem, len(posts))
	for i, p := range posts {
		items[i] = postItem{
			ID:        p.ID,
			Title:     p.Title,
			Excerpt:   content.Excerpt(p.Content),
			Author:    p.AuthorDisplayName(),
			CreatedAt: p.CreatedAt,
			Published: p.Published,
		}
	}
	return items
}

type postListPage struct {
	frame
	Title   string
	Posts   []postItem
	ShowCTA bool
}

type postPage struct {
	frame
	Post    db.Post
	Body    template.HTML
	IsOwner bool
}

type dashboardPage struct {
	frame
	Posts []postItem
}

type deletePostPage struct {
	frame
	Post db.Post
}

// postFormValues carries submitted fields back to a re-rendered form.
type postFormValues struct {
	Title         string
	Content       string
	PublishStatus string
}

type postFormErrors struct {
	Title   string
	Content string
}

func (e postFormErrors) empty() bool { return e == postFormErrors{} }

type postFormPage struct {
	frame
	Heading string
	Action  string
	Values  postFormValues
	Errors  postFormErrors
}

type loginFormValues struct {
	Email string
}

type loginFormErrors struct {
	Email       string
	Password    string
	Credentials string
}

func (e loginFormErrors) empty() bool { return e == loginFormErrors{} }

type loginPage struct {
	frame
	Values loginFormValues
	Errors loginFormErrors
}

type registerFormValues struct {
	Name  string
	Email string
}

type registerFormErrors struct {
	Email           string
	Password        string
	ConfirmPassword string
}

func (e registerFormErrors) empty() bool { return e == registerFormErrors{} }

type registerPage struct {
	frame
	Values registerFormValues
	Errors registerFormErrors
}
