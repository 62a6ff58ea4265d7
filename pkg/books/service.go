package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/locallibrary/catalog/pkg/relations"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db              *bun.DB
	relationService *relations.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{db, relations.NewService(db)}
}

// CreateBook inserts the book together with its genre set.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	if book.ID == "" {
		book.ID = models.NewID()
	}
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt
	book.GenreIDs = relations.NormalizeGenreIDs(book.GenreIDs)

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(book).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return relations.SetBookGenres(ctx, tx, book.ID, book.GenreIDs)
	})
	return errors.WithStack(err)
}

// RetrieveBook loads the book and its stored genre ids. Author and Genres are
// left for the caller to populate.
func (svc *Service) RetrieveBook(ctx context.Context, id string) (*models.Book, error) {
	book := &models.Book{}

	err := svc.db.
		NewSelect().
		Model(book).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	if err := svc.relationService.LoadGenreIDs(ctx, []*models.Book{book}); err != nil {
		return nil, err
	}

	return book, nil
}

// ListBooks returns every book ordered by title.
func (svc *Service) ListBooks(ctx context.Context) ([]*models.Book, error) {
	books := []*models.Book{}

	err := svc.db.
		NewSelect().
		Model(&books).
		Order("b.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

// ReplaceBook overwrites every stored field of the book, including its genre
// set, keeping its id and creation time.
func (svc *Service) ReplaceBook(ctx context.Context, book *models.Book) error {
	book.UpdatedAt = time.Now()
	book.GenreIDs = relations.NormalizeGenreIDs(book.GenreIDs)

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.
			NewUpdate().
			Model(book).
			ExcludeColumn("id", "created_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Book")
		}

		return relations.SetBookGenres(ctx, tx, book.ID, book.GenreIDs)
	})
	return err
}

func (svc *Service) CountBooks(ctx context.Context) (int, error) {
	count, err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		Count(ctx)
	return count, errors.WithStack(err)
}
