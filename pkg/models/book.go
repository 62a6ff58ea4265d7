package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull" json:"updated_at"`
	Title     string    `bun:",notnull" json:"title"`
	AuthorID  string    `bun:",notnull" json:"author_id"`
	Summary   string    `bun:",notnull" json:"summary"`
	ISBN      string    `bun:"isbn,notnull" json:"isbn"`

	// GenreIDs is the stored genre set, in order. It lives in book_genres.
	GenreIDs []string `bun:"-" json:"genre_ids"`

	// Populated on demand; never persisted.
	Author *Author  `bun:"-" json:"author,omitempty"`
	Genres []*Genre `bun:"-" json:"genres,omitempty"`
}

func BookURL(b *Book) string {
	return catalogURL("book", b.ID)
}
