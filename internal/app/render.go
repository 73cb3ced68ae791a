package app

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFiles embed.FS

// renderer satisfies [echo.Renderer]. Each page template is parsed together
// with the shared layout and rendered through it.
type renderer struct {
	templates map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	const layout = "templates/layout.html"
	pages, err := fs.Glob(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	templates := map[string]*template.Template{}
	for _, page := range pages {
		if page == layout {
			continue
		}
		t, err := template.ParseFS(templateFiles, layout, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		name := strings.TrimSuffix(path.Base(page), ".html")
		templates[name] = t
	}
	return &renderer{templates: templates}, nil
}

// Render satisfies [echo.Renderer].
func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
