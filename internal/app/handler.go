package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stolasapp/quill/internal/auth"
	"github.com/stolasapp/quill/internal/content"
	"github.com/stolasapp/quill/internal/storage"
	"github.com/stolasapp/quill/internal/storage/db"
)

type handler struct {
	auth  *auth.Service
	store storage.Store
}

func (h handler) register(e *echo.Echo) {
	e.GET("/", h.home)

	e.GET("/posts", h.listPosts)
	e.GET("/posts/new", h.newPost)
	e.POST("/posts/new", h.createPost)
	e.GET("/posts/:id", h.viewPost)
	e.GET("/posts/:id/edit", h.editPost)
	e.POST("/posts/:id/edit", h.updatePost)
	e.GET("/posts/:id/delete", h.confirmDeletePost)
	e.POST("/posts/:id/delete", h.deletePost)

	e.GET("/dashboard", h.dashboard)

	e.GET("/login", h.loginForm)
	e.POST("/login", h.login)
	e.GET("/register", h.registerForm)
	e.POST("/register", h.registerUser)
	e.GET("/logout", h.logoutRedirect)
	e.POST("/logout", h.logout)
}

// currentUser resolves the session at the top of every handler. An invalid or
// missing cookie is an anonymous request, never a failure.
func (h handler) currentUser(c echo.Context) (db.User, bool, error) {
	return h.auth.CurrentUser(c.Response(), c.Request())
}

func (h handler) home(c echo.Context) error {
	user, ok, err := h.currentUser(c)
	if err != nil {
		return err
	}
	posts, err := h.store.ListPublished(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "home", postListPage{
		frame:   frame{User: user, LoggedIn: ok},
		Title:   "Latest posts",
		Posts:   toPostItems(posts),
		ShowCTA: !ok,
	})
}

func (h handler) listPosts(c echo.Context) error {
	user, ok, err := h.currentUser(c)
	if err != nil {
		return err
	}
	posts, err := h.store.ListPublished(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts", postListPage{
		frame: frame{User: user, LoggedIn: ok},
		Title: "All posts",
		Posts: toPostItems(posts),
	})
}

func (h handler) viewPost(c echo.Context) error {
	user, ok, err := h.currentUser(c)
	if err != nil {
		return err
	}
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	post, err := h.store.GetPost(c.Request().Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound)
	case err != nil:
		return err
	}

	// A draft is only viewable by its author.
	owner := auth.IsOwner(user, post)
	if !post.Published && !owner {
		return echo.NewHTTPError(http.StatusForbidden)
	}

	if post.Published {
		c.Response().Header().Set("Cache-Control", "public, max-age=60")
	} else {
		c.Response().Header().Set("Cache-Control", "private, no-cache")
	}

	body, err := content.PostHTML(post.Content)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "post", postPage{
		frame:   frame{User: user, LoggedIn: ok},
		Post:    post,
		Body:    body,
		IsOwner: owner,
	})
}

func (h handler) dashboard(c echo.Context) error {
	user, ok, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	posts, err := h.store.ListByAuthor(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "dashboard", dashboardPage{
		frame: frame{User: user, LoggedIn: true},
		Posts: toPostItems(posts),
	})
}

func (h handler) newPost(c echo.Context) error {
	user, ok, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	return c.Render(http.StatusOK, "post_form", postFormPage{
		frame:   frame{User: user, LoggedIn: true},
		Heading: "New post",
		Action:  "/posts/new",
		Values:  postFormValues{PublishStatus: "draft"},
	})
}

func (h handler) createPost(c echo.Context) error {
	user, ok, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	values, errs := parsePostForm(c)
	if !errs.empty() {
		return c.Render(http.StatusUnprocessableEntity, "post_form", postFormPage{
			frame:   frame{User: user, LoggedIn: true},
			Heading: "New post",
			Action:  "/posts/new",
			Values:  values,
			Errors:  errs,
		})
	}

	post, err := h.store.CreatePost(c.Request().Context(), db.Post{
		Title:     values.Title,
		Content:   values.Content,
		Published: values.PublishStatus == "publish",
		AuthorID:  user.ID,
	})
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, postPath(post.ID))
}

func (h handler) editPost(c echo.Context) error {
	user, post, done, err := h.ownedPost(c)
	if done || err != nil {
		return err
	}
	values := postFormValues{
		Title:         post.Title,
		Content:       post.Content,
		PublishStatus: publishStatus(post.Published),
	}
	return c.Render(http.StatusOK, "post_form", postFormPage{
		frame:   frame{User: user, LoggedIn: true},
		Heading: "Edit post",
		Action:  postPath(post.ID) + "/edit",
		Values:  values,
	})
}

func (h handler) updatePost(c echo.Context) error {
	user, post, done, err := h.ownedPost(c)
	if done || err != nil {
		return err
	}

	values, errs := parsePostForm(c)
	if !errs.empty() {
		return c.Render(http.StatusUnprocessableEntity, "post_form", postFormPage{
			frame:   frame{User: user, LoggedIn: true},
			Heading: "Edit post",
			Action:  postPath(post.ID) + "/edit",
			Values:  values,
			Errors:  errs,
		})
	}

	published := values.PublishStatus == "publish"
	if _, err := h.store.UpdatePost(c.Request().Context(), db.UpdatePostParams{
		ID:        post.ID,
		Title:     &values.Title,
		Content:   &values.Content,
		Published: &published,
	}); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, postPath(post.ID))
}

func (h handler) confirmDeletePost(c echo.Context) error {
	user, post, done, err := h.ownedPost(c)
	if done || err != nil {
		return err
	}
	return c.Render(http.StatusOK, "delete_post", deletePostPage{
		frame: frame{User: user, LoggedIn: true},
		Post:  post,
	})
}

func (h handler) deletePost(c echo.Context) error {
	_, post, done, err := h.ownedPost(c)
	if done || err != nil {
		return err
	}
	if err := h.store.DeletePost(c.Request().Context(), post.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// ownedPost applies the guard shared by every mutation path: a session is
// required, the post must exist, and ownership is re-checked against the
// freshly loaded row, never a client-supplied claim. done reports that a
// redirect response was already written.
func (h handler) ownedPost(c echo.Context) (user db.User, post db.Post, done bool, err error) {
	user, ok, err := h.currentUser(c)
	if err != nil {
		return user, post, false, err
	}
	if !ok {
		return user, post, true, c.Redirect(http.StatusSeeOther, "/login")
	}
	id, err := parsePostID(c)
	if err != nil {
		return user, post, false, err
	}
	post, err = h.store.GetPost(c.Request().Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return user, post, false, echo.NewHTTPError(http.StatusNotFound)
	case err != nil:
		return user, post, false, err
	}
	if !auth.IsOwner(user, post) {
		// Not yours: back to the read-only view.
		return user, post, true, c.Redirect(http.StatusSeeOther, postPath(post.ID))
	}
	return user, post, false, nil
}

func (h handler) loginForm(c echo.Context) error {
	_, ok, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if ok {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return c.Render(http.StatusOK, "login", loginPage{})
}

func (h handler) login(c echo.Context) error {
	values := loginFormValues{Email: strings.TrimSpace(c.FormValue("email"))}
	password := c.FormValue("password")

	var errs loginFormErrors
	if values.Email == "" {
		errs.Email = "Email is required"
	}
	if password == "" {
		errs.Password = "Password is required"
	}
	if !errs.empty() {
		return c.Render(http.StatusUnprocessableEntity, "login", loginPage{Values: values, Errors: errs})
	}

	user, err := h.auth.Login(c.Request().Context(), values.Email, password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		errs.Credentials = "Invalid email or password"
		return c.Render(http.StatusUnprocessableEntity, "login", loginPage{Values: values, Errors: errs})
	case err != nil:
		return err
	}

	if err := h.auth.StartSession(c.Response(), user.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h handler) registerForm(c echo.Context) error {
	_, ok, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if ok {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return c.Render(http.StatusOK, "register", registerPage{})
}

func (h handler) registerUser(c echo.Context) error {
	values := registerFormValues{
		Name:  strings.TrimSpace(c.FormValue("name")),
		Email: strings.TrimSpace(c.FormValue("email")),
	}
	password := c.FormValue("password")
	confirm := c.FormValue("confirmPassword")

	var errs registerFormErrors
	if values.Email == "" {
		errs.Email = "Email is required"
	}
	if password == "" {
		errs.Password = "Password is required"
	} else if confirm != password {
		errs.ConfirmPassword = "Passwords do not match"
	}
	if !errs.empty() {
		return c.Render(http.StatusUnprocessableEntity, "register", registerPage{Values: values, Errors: errs})
	}

	// Surface a taken email as a form error. Registration losing the race
	// after this check is a store conflict and fails the request instead.
	_, err := h.store.GetUserByEmail(c.Request().Context(), values.Email)
	switch {
	case err == nil:
		errs.Email = "This email is already registered"
		return c.Render(http.StatusUnprocessableEntity, "register", registerPage{Values: values, Errors: errs})
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), values.Email, password, values.Name)
	switch {
	case errors.Is(err, storage.ErrInvalidEmail):
		errs.Email = "Enter a valid email address"
		return c.Render(http.StatusUnprocessableEntity, "register", registerPage{Values: values, Errors: errs})
	case err != nil:
		return err
	}

	if err := h.auth.StartSession(c.Response(), user.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h handler) logout(c echo.Context) error {
	h.auth.Logout(c.Response())
	return c.Redirect(http.StatusSeeOther, "/login")
}

// logoutRedirect handles GETs to the logout path without destroying the
// session.
func (h handler) logoutRedirect(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/")
}

func parsePostForm(c echo.Context) (postFormValues, postFormErrors) {
	values := postFormValues{
		Title:         strings.TrimSpace(c.FormValue("title")),
		Content:       c.FormValue("content"),
		PublishStatus: c.FormValue("publishStatus"),
	}
	if values.PublishStatus != "publish" {
		values.PublishStatus = "draft"
	}

	var errs postFormErrors
	if values.Title == "" {
		errs.Title = "Title is required"
	}
	if strings.TrimSpace(values.Content) == "" {
		errs.Content = "Content is required"
	}
	return values, errs
}

func parsePostID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return id, nil
}

func postPath(id uint64) string {
	return fmt.Sprintf("/posts/%d", id)
}

func publishStatus(published bool) string {
	if published {
		return "publish"
	}
	return "draft"
}
