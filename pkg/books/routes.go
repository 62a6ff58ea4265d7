package books

import (
	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/authors"
	"github.com/locallibrary/catalog/pkg/genres"
	"github.com/locallibrary/catalog/pkg/relations"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers book routes on the catalog group.
func RegisterRoutes(g *echo.Group, db *bun.DB) {
	h := &handler{
		bookService:     NewService(db),
		authorService:   authors.NewService(db),
		genreService:    genres.NewService(db),
		relationService: relations.NewService(db),
	}

	g.GET("/books", h.list)
	g.GET("/book/create", h.createForm)
	g.POST("/book/create", h.create)
	g.GET("/book/:id", h.retrieve)
	g.GET("/book/:id/update", h.updateForm)
	g.POST("/book/:id/update", h.update)
	g.GET("/book/:id/delete", h.deleteForm)
	g.POST("/book/:id/delete", h.deleteBook)
}
