// Package views renders the catalog's server-side HTML pages.
package views

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Renderer implements echo.Renderer. Each page is parsed together with the
// shared layout, so every page can define its own "content" block.
type Renderer struct {
	pages map[string]*template.Template
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"authorURL":       models.AuthorURL,
		"authorName":      models.AuthorFullName,
		"lifespan":        models.AuthorLifespan,
		"formatDate":      models.FormatDate,
		"isoDate":         models.ISODate,
		"genreURL":        models.GenreURL,
		"bookURL":         models.BookURL,
		"bookInstanceURL": models.BookInstanceURL,
		"statusClass":     statusClass,
	}
}

func New() (*Renderer, error) {
	layout, err := template.New("layout").Funcs(Funcs()).ParseFS(templateFS, layoutFile)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pages := map[string]*template.Template{}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		page, err := layout.Clone()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		page, err = page.ParseFS(templateFS, file)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", file)
		}
		pages[strings.TrimSuffix(path.Base(file), ".html")] = page
	}

	return &Renderer{pages: pages}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	page, ok := r.pages[name]
	if !ok {
		return errors.Errorf("view %q not found", name)
	}
	return errors.WithStack(page.ExecuteTemplate(w, "layout", data))
}

// Has reports whether a view with the given name exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

func statusClass(status string) string {
	switch status {
	case models.BookInstanceStatusAvailable:
		return "text-success"
	case models.BookInstanceStatusMaintenance:
		return "text-danger"
	default:
		return "text-warning"
	}
}
