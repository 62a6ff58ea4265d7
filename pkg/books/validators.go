package books

import (
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/locallibrary/catalog/pkg/relations"
)

type BookPayload struct {
	Title   string   `form:"title" json:"title" mod:"trim,sanitize" validate:"required"`
	Author  string   `form:"author" json:"author" mod:"trim,sanitize" validate:"required"`
	Summary string   `form:"summary" json:"summary" mod:"trim,sanitize" validate:"required"`
	ISBN    string   `form:"isbn" json:"isbn" mod:"trim,sanitize" validate:"required"`
	Genre   []string `form:"genre" json:"genre" mod:"dive,trim,sanitize"`
}

func payloadFromBook(b *models.Book) *BookPayload {
	return &BookPayload{
		Title:   b.Title,
		Author:  b.AuthorID,
		Summary: b.Summary,
		ISBN:    b.ISBN,
		Genre:   b.GenreIDs,
	}
}

func (p *BookPayload) toBook() *models.Book {
	p.Genre = relations.NormalizeGenreIDs(p.Genre)
	return &models.Book{
		Title:    p.Title,
		AuthorID: p.Author,
		Summary:  p.Summary,
		ISBN:     p.ISBN,
		GenreIDs: p.Genre,
	}
}
