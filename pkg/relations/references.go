package relations

import (
	"context"

	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// CheckBookReferences makes sure the book's author and every genre in its set
// exist. Ids that don't resolve are reported as field errors.
func (svc *Service) CheckBookReferences(ctx context.Context, book *models.Book) error {
	var fieldErrs []errcodes.FieldError

	if book.AuthorID != "" {
		exists, err := svc.db.
			NewSelect().
			Model((*models.Author)(nil)).
			Where("a.id = ?", book.AuthorID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			fieldErrs = append(fieldErrs, errcodes.FieldError{
				Field:   "author",
				Message: "Selected author does not exist.",
			})
		}
	}

	if len(book.GenreIDs) > 0 {
		var found []string
		err := svc.db.
			NewSelect().
			Model((*models.Genre)(nil)).
			Column("g.id").
			Where("g.id IN (?)", bun.In(book.GenreIDs)).
			Scan(ctx, &found)
		if err != nil {
			return errors.WithStack(err)
		}
		known := make(map[string]struct{}, len(found))
		for _, id := range found {
			known[id] = struct{}{}
		}
		for _, id := range book.GenreIDs {
			if _, ok := known[id]; !ok {
				fieldErrs = append(fieldErrs, errcodes.FieldError{
					Field:   "genre",
					Message: "Selected genre does not exist.",
				})
				break
			}
		}
	}

	return errcodes.NewValidationErrors(fieldErrs)
}

// CheckBookInstanceReferences makes sure the copy's book exists.
func (svc *Service) CheckBookInstanceReferences(ctx context.Context, instance *models.BookInstance) error {
	if instance.BookID == "" {
		return nil
	}

	exists, err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		Where("b.id = ?", instance.BookID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return nil
	}
	return errcodes.NewValidationErrors([]errcodes.FieldError{{
		Field:   "book",
		Message: "Selected book does not exist.",
	}})
}
