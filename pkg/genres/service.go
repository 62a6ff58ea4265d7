package genres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveGenreOptions struct {
	ID   *string
	Name *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateGenre(ctx context.Context, genre *models.Genre) error {
	if genre.ID == "" {
		genre.ID = models.NewID()
	}
	now := time.Now()
	if genre.CreatedAt.IsZero() {
		genre.CreatedAt = now
	}
	genre.UpdatedAt = genre.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(genre).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveGenre(ctx context.Context, opts RetrieveGenreOptions) (*models.Genre, error) {
	genre := &models.Genre{}

	q := svc.db.
		NewSelect().
		Model(genre)

	if opts.ID != nil {
		q = q.Where("g.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		// Exact, case-sensitive match
		q = q.Where("g.name = ?", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Genre")
		}
		return nil, errors.WithStack(err)
	}

	return genre, nil
}

// FindOrCreateGenre returns the genre with exactly the given name, creating
// it when there is none. created reports whether a new genre was inserted.
func (svc *Service) FindOrCreateGenre(ctx context.Context, name string) (genre *models.Genre, created bool, err error) {
	genre, err = svc.RetrieveGenre(ctx, RetrieveGenreOptions{Name: &name})
	if err == nil {
		return genre, false, nil
	}
	if !errors.Is(err, errcodes.NotFound("Genre")) {
		return nil, false, err
	}

	genre = &models.Genre{Name: name}
	err = svc.CreateGenre(ctx, genre)
	if err != nil {
		// Another request created the same genre between our retrieve and
		// create.
		if isUniqueViolation(err) {
			genre, err = svc.RetrieveGenre(ctx, RetrieveGenreOptions{Name: &name})
			return genre, false, err
		}
		return nil, false, err
	}
	return genre, true, nil
}

// ListGenres returns every genre ordered by name.
func (svc *Service) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	genres := []*models.Genre{}

	err := svc.db.
		NewSelect().
		Model(&genres).
		Order("g.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return genres, nil
}

// ReplaceGenre overwrites the genre's name. Taking a name that another genre
// already has is a validation error.
func (svc *Service) ReplaceGenre(ctx context.Context, genre *models.Genre) error {
	owner, err := svc.RetrieveGenre(ctx, RetrieveGenreOptions{Name: &genre.Name})
	if err != nil && !errors.Is(err, errcodes.NotFound("Genre")) {
		return err
	}
	if owner != nil && owner.ID != genre.ID {
		return nameTaken()
	}

	genre.UpdatedAt = time.Now()

	res, err := svc.db.
		NewUpdate().
		Model(genre).
		ExcludeColumn("id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nameTaken()
		}
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Genre")
	}
	return nil
}

func (svc *Service) CountGenres(ctx context.Context) (int, error) {
	count, err := svc.db.
		NewSelect().
		Model((*models.Genre)(nil)).
		Count(ctx)
	return count, errors.WithStack(err)
}

func nameTaken() error {
	return errcodes.NewValidationErrors([]errcodes.FieldError{{
		Field:   "name",
		Message: "A genre with this name already exists.",
	}})
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
