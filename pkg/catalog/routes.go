// Package catalog serves the catalog home page.
package catalog

import (
	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/authors"
	"github.com/locallibrary/catalog/pkg/bookinstances"
	"github.com/locallibrary/catalog/pkg/books"
	"github.com/locallibrary/catalog/pkg/genres"
	"github.com/uptrace/bun"
)

func RegisterRoutes(g *echo.Group, db *bun.DB) {
	h := &handler{
		authorService:   authors.NewService(db),
		genreService:    genres.NewService(db),
		bookService:     books.NewService(db),
		instanceService: bookinstances.NewService(db),
	}

	g.GET("", h.index)
}
