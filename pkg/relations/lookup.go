package relations

import (
	"context"

	"github.com/locallibrary/catalog/pkg/models"
	"github.com/pkg/errors"
)

// BooksByAuthor returns the books written by the author, ordered by title.
func (svc *Service) BooksByAuthor(ctx context.Context, authorID string) ([]*models.Book, error) {
	books := []*models.Book{}
	err := svc.db.
		NewSelect().
		Model(&books).
		Column("b.id", "b.title", "b.summary", "b.author_id").
		Where("b.author_id = ?", authorID).
		Order("b.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if books == nil {
		books = []*models.Book{}
	}
	return books, nil
}

// BooksByGenre returns the books whose genre set contains the genre, ordered by
// title.
func (svc *Service) BooksByGenre(ctx context.Context, genreID string) ([]*models.Book, error) {
	books := []*models.Book{}
	err := svc.db.
		NewSelect().
		Model(&books).
		Column("b.id", "b.title", "b.summary", "b.author_id").
		Where("b.id IN (SELECT bg.book_id FROM book_genres AS bg WHERE bg.genre_id = ?)", genreID).
		Order("b.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if books == nil {
		books = []*models.Book{}
	}
	return books, nil
}

// InstancesByBook returns the copies of the book, ordered by imprint.
func (svc *Service) InstancesByBook(ctx context.Context, bookID string) ([]*models.BookInstance, error) {
	instances := []*models.BookInstance{}
	err := svc.db.
		NewSelect().
		Model(&instances).
		Where("bi.book_id = ?", bookID).
		Order("bi.imprint ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if instances == nil {
		instances = []*models.BookInstance{}
	}
	return instances, nil
}
