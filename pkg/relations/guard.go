package relations

import (
	"context"
	"database/sql"

	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// The deletes below are conditional on the record having no dependents at the
// moment of the DELETE, so a dependent created between the lookup and the
// delete can't be orphaned. When nothing is deleted, the lookup is repeated to
// tell "became referenced" apart from "already gone".

// DeleteAuthor deletes the author unless books still reference it. When
// blocked, the blocking books are returned and nothing is changed.
func (svc *Service) DeleteAuthor(ctx context.Context, id string) ([]*models.Book, error) {
	blocking, err := svc.BooksByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(blocking) > 0 {
		return blocking, nil
	}

	res, err := svc.db.
		NewDelete().
		Model((*models.Author)(nil)).
		Where("a.id = ?", id).
		Where("NOT EXISTS (SELECT 1 FROM books WHERE books.author_id = ?)", id).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if deleted(res) {
		return nil, nil
	}

	blocking, err = svc.BooksByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(blocking) > 0 {
		return blocking, nil
	}
	return nil, errcodes.NotFound("Author")
}

// DeleteGenre deletes the genre unless a book's genre set still contains it.
func (svc *Service) DeleteGenre(ctx context.Context, id string) ([]*models.Book, error) {
	blocking, err := svc.BooksByGenre(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(blocking) > 0 {
		return blocking, nil
	}

	res, err := svc.db.
		NewDelete().
		Model((*models.Genre)(nil)).
		Where("g.id = ?", id).
		Where("NOT EXISTS (SELECT 1 FROM book_genres WHERE book_genres.genre_id = ?)", id).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if deleted(res) {
		return nil, nil
	}

	blocking, err = svc.BooksByGenre(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(blocking) > 0 {
		return blocking, nil
	}
	return nil, errcodes.NotFound("Genre")
}

// DeleteBook deletes the book and its genre set unless copies of it still
// exist.
func (svc *Service) DeleteBook(ctx context.Context, id string) ([]*models.BookInstance, error) {
	blocking, err := svc.InstancesByBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(blocking) > 0 {
		return blocking, nil
	}

	var ok bool
	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.
			NewDelete().
			Model((*models.Book)(nil)).
			Where("b.id = ?", id).
			Where("NOT EXISTS (SELECT 1 FROM book_instances WHERE book_instances.book_id = ?)", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		ok = deleted(res)
		if !ok {
			return nil
		}

		_, err = tx.
			NewDelete().
			Model((*models.BookGenre)(nil)).
			Where("bg.book_id = ?", id).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}

	blocking, err = svc.InstancesByBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(blocking) > 0 {
		return blocking, nil
	}
	return nil, errcodes.NotFound("Book")
}

func deleted(res sql.Result) bool {
	n, err := res.RowsAffected()
	return err == nil && n > 0
}
