package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull" json:"updated_at"`
	Name      string    `bun:",notnull" json:"name"`
}

// BookGenre stores one member of a book's genre set. SortOrder keeps the order
// the genres were submitted in.
type BookGenre struct {
	bun.BaseModel `bun:"table:book_genres,alias:bg"`

	BookID    string `bun:",pk" json:"book_id"`
	GenreID   string `bun:",pk" json:"genre_id"`
	SortOrder int    `bun:",notnull" json:"sort_order"`
}

func GenreURL(g *Genre) string {
	return catalogURL("genre", g.ID)
}
