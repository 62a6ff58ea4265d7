package genres

import (
	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/relations"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers genre routes on the catalog group.
func RegisterRoutes(g *echo.Group, db *bun.DB) {
	h := &handler{
		genreService:    NewService(db),
		relationService: relations.NewService(db),
	}

	g.GET("/genres", h.list)
	g.GET("/genre/create", h.createForm)
	g.POST("/genre/create", h.create)
	g.GET("/genre/:id", h.retrieve)
	g.GET("/genre/:id/update", h.updateForm)
	g.POST("/genre/:id/update", h.update)
	g.GET("/genre/:id/delete", h.deleteForm)
	g.POST("/genre/:id/delete", h.deleteGenre)
}
