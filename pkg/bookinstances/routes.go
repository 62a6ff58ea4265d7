package bookinstances

import (
	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/books"
	"github.com/locallibrary/catalog/pkg/relations"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers book copy routes on the catalog group.
func RegisterRoutes(g *echo.Group, db *bun.DB) {
	h := &handler{
		instanceService: NewService(db),
		bookService:     books.NewService(db),
		relationService: relations.NewService(db),
	}

	g.GET("/bookinstances", h.list)
	g.GET("/bookinstance/create", h.createForm)
	g.POST("/bookinstance/create", h.create)
	g.GET("/bookinstance/:id", h.retrieve)
	g.GET("/bookinstance/:id/update", h.updateForm)
	g.POST("/bookinstance/:id/update", h.update)
	g.GET("/bookinstance/:id/delete", h.deleteForm)
	g.POST("/bookinstance/:id/delete", h.deleteBookInstance)
}
