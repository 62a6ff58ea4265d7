package bookinstances

import (
	"context"
	"database/sql"
	"time"

	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type CountBookInstancesOptions struct {
	Status *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateBookInstance(ctx context.Context, instance *models.BookInstance) error {
	if instance.ID == "" {
		instance.ID = models.NewID()
	}
	if instance.Status == "" {
		instance.Status = models.BookInstanceStatusMaintenance
	}
	now := time.Now()
	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = now
	}
	instance.UpdatedAt = instance.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(instance).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveBookInstance(ctx context.Context, id string) (*models.BookInstance, error) {
	instance := &models.BookInstance{}

	err := svc.db.
		NewSelect().
		Model(instance).
		Where("bi.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book copy")
		}
		return nil, errors.WithStack(err)
	}

	return instance, nil
}

// ListBookInstances returns every copy, most recently added first.
func (svc *Service) ListBookInstances(ctx context.Context) ([]*models.BookInstance, error) {
	instances := []*models.BookInstance{}

	err := svc.db.
		NewSelect().
		Model(&instances).
		Order("bi.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return instances, nil
}

// ReplaceBookInstance overwrites every stored field of the copy, keeping its
// id and creation time.
func (svc *Service) ReplaceBookInstance(ctx context.Context, instance *models.BookInstance) error {
	instance.UpdatedAt = time.Now()

	res, err := svc.db.
		NewUpdate().
		Model(instance).
		ExcludeColumn("id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Book copy")
	}
	return nil
}

// DeleteBookInstance removes the copy. Nothing references copies, so the
// delete is never blocked.
func (svc *Service) DeleteBookInstance(ctx context.Context, id string) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.BookInstance)(nil)).
		Where("bi.id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Book copy")
	}
	return nil
}

func (svc *Service) CountBookInstances(ctx context.Context, opts CountBookInstancesOptions) (int, error) {
	q := svc.db.
		NewSelect().
		Model((*models.BookInstance)(nil))

	if opts.Status != nil {
		q = q.Where("bi.status = ?", *opts.Status)
	}

	count, err := q.Count(ctx)
	return count, errors.WithStack(err)
}
