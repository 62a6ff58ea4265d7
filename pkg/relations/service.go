// Package relations resolves the references between catalog records: it
// expands stored ids into records, finds the records that point at a given
// record, and refuses deletes that would leave dangling references.
package relations

import (
	"context"

	"github.com/locallibrary/catalog/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

type PopulateBooksOptions struct {
	Author bool
	Genres bool
}

// PopulateBooks resolves Author and/or Genres on each book. An author id that
// doesn't resolve leaves Author nil, and genre ids that don't resolve are
// skipped. Neither case is an error.
func (svc *Service) PopulateBooks(ctx context.Context, books []*models.Book, opts PopulateBooksOptions) error {
	if len(books) == 0 {
		return nil
	}

	if opts.Author {
		if err := svc.populateAuthors(ctx, books); err != nil {
			return err
		}
	}
	if opts.Genres {
		if err := svc.populateGenres(ctx, books); err != nil {
			return err
		}
	}
	return nil
}

func (svc *Service) populateAuthors(ctx context.Context, books []*models.Book) error {
	ids := make([]string, 0, len(books))
	for _, b := range books {
		if b.AuthorID != "" {
			ids = append(ids, b.AuthorID)
		}
	}

	byID := map[string]*models.Author{}
	if len(ids) > 0 {
		var authors []*models.Author
		err := svc.db.
			NewSelect().
			Model(&authors).
			Where("a.id IN (?)", bun.In(ids)).
			Scan(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		for _, a := range authors {
			byID[a.ID] = a
		}
	}

	for _, b := range books {
		b.Author = byID[b.AuthorID]
	}
	return nil
}

func (svc *Service) populateGenres(ctx context.Context, books []*models.Book) error {
	var unloaded []*models.Book
	for _, b := range books {
		if b.GenreIDs == nil {
			unloaded = append(unloaded, b)
		}
	}
	if err := svc.LoadGenreIDs(ctx, unloaded); err != nil {
		return err
	}

	var ids []string
	for _, b := range books {
		ids = append(ids, b.GenreIDs...)
	}

	byID := map[string]*models.Genre{}
	if len(ids) > 0 {
		var genres []*models.Genre
		err := svc.db.
			NewSelect().
			Model(&genres).
			Where("g.id IN (?)", bun.In(ids)).
			Scan(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		for _, g := range genres {
			byID[g.ID] = g
		}
	}

	for _, b := range books {
		b.Genres = make([]*models.Genre, 0, len(b.GenreIDs))
		for _, id := range b.GenreIDs {
			if g, ok := byID[id]; ok {
				b.Genres = append(b.Genres, g)
			}
		}
	}
	return nil
}

// LoadGenreIDs fills GenreIDs on each book from book_genres, in stored order.
// Books without genres get an empty slice.
func (svc *Service) LoadGenreIDs(ctx context.Context, books []*models.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}

	var rows []*models.BookGenre
	err := svc.db.
		NewSelect().
		Model(&rows).
		Where("bg.book_id IN (?)", bun.In(ids)).
		Order("bg.book_id ASC", "bg.sort_order ASC").
		Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	byBook := map[string][]string{}
	for _, row := range rows {
		byBook[row.BookID] = append(byBook[row.BookID], row.GenreID)
	}
	for _, b := range books {
		b.GenreIDs = byBook[b.ID]
		if b.GenreIDs == nil {
			b.GenreIDs = []string{}
		}
	}
	return nil
}

// PopulateBookInstances resolves Book on each copy. A book id that doesn't
// resolve leaves Book nil.
func (svc *Service) PopulateBookInstances(ctx context.Context, instances []*models.BookInstance) error {
	if len(instances) == 0 {
		return nil
	}

	ids := make([]string, 0, len(instances))
	for _, bi := range instances {
		if bi.BookID != "" {
			ids = append(ids, bi.BookID)
		}
	}

	byID := map[string]*models.Book{}
	if len(ids) > 0 {
		var books []*models.Book
		err := svc.db.
			NewSelect().
			Model(&books).
			Where("b.id IN (?)", bun.In(ids)).
			Scan(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		for _, b := range books {
			byID[b.ID] = b
		}
	}

	for _, bi := range instances {
		bi.Book = byID[bi.BookID]
	}
	return nil
}
