package authors

import (
	"context"
	"database/sql"
	"time"

	"github.com/locallibrary/catalog/pkg/errcodes"
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

func (svc *Service) CreateAuthor(ctx context.Context, author *models.Author) error {
	if author.ID == "" {
		author.ID = models.NewID()
	}
	now := time.Now()
	if author.CreatedAt.IsZero() {
		author.CreatedAt = now
	}
	author.UpdatedAt = author.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(author).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveAuthor(ctx context.Context, id string) (*models.Author, error) {
	author := &models.Author{}

	err := svc.db.
		NewSelect().
		Model(author).
		Where("a.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(err)
	}

	return author, nil
}

// ListAuthors returns every author ordered by family name.
func (svc *Service) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	authors := []*models.Author{}

	err := svc.db.
		NewSelect().
		Model(&authors).
		Order("a.family_name ASC", "a.first_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return authors, nil
}

// ReplaceAuthor overwrites every stored field of the author with the given
// values, keeping its id and creation time.
func (svc *Service) ReplaceAuthor(ctx context.Context, author *models.Author) error {
	author.UpdatedAt = time.Now()

	res, err := svc.db.
		NewUpdate().
		Model(author).
		ExcludeColumn("id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Author")
	}
	return nil
}

func (svc *Service) CountAuthors(ctx context.Context) (int, error) {
	count, err := svc.db.
		NewSelect().
		Model((*models.Author)(nil)).
		Count(ctx)
	return count, errors.WithStack(err)
}
