package testutils

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/locallibrary/catalog/pkg/relations"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type handler struct {
	db *bun.DB
}

// createdResponse is the response body for every create endpoint.
type createdResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// createAuthorRequest is the request body for creating a test author.
type createAuthorRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	FamilyName  string `json:"family_name" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"date"`
	DateOfDeath string `json:"date_of_death" validate:"date"`
}

// createAuthor inserts an author without the form rules.
// POST /test/authors.
func (h *handler) createAuthor(c echo.Context) error {
	ctx := c.Request().Context()

	var req createAuthorRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	dob, err := models.ParseISODate(req.DateOfBirth)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid date_of_birth")
	}
	dod, err := models.ParseISODate(req.DateOfDeath)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid date_of_death")
	}

	now := time.Now()
	author := &models.Author{
		ID:          models.NewID(),
		CreatedAt:   now,
		UpdatedAt:   now,
		FirstName:   req.FirstName,
		FamilyName:  req.FamilyName,
		DateOfBirth: dob,
		DateOfDeath: dod,
	}
	if _, err := h.db.NewInsert().Model(author).Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to create author")
	}

	return c.JSON(http.StatusCreated, createdResponse{author.ID, models.AuthorURL(author)})
}

type createGenreRequest struct {
	Name string `json:"name" validate:"required"`
}

// createGenre inserts a genre.
// POST /test/genres.
func (h *handler) createGenre(c echo.Context) error {
	ctx := c.Request().Context()

	var req createGenreRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	genre := &models.Genre{ID: models.NewID(), CreatedAt: now, UpdatedAt: now, Name: req.Name}
	if _, err := h.db.NewInsert().Model(genre).Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to create genre")
	}

	return c.JSON(http.StatusCreated, createdResponse{genre.ID, models.GenreURL(genre)})
}

type createBookRequest struct {
	Title    string   `json:"title" validate:"required"`
	AuthorID string   `json:"author_id" validate:"required"`
	Summary  string   `json:"summary"`
	ISBN     string   `json:"isbn"`
	GenreIDs []string `json:"genre_ids"`
}

// createBook inserts a book and its genre set. References aren't checked so
// tests can set up dangling ones.
// POST /test/books.
func (h *handler) createBook(c echo.Context) error {
	ctx := c.Request().Context()

	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	book := &models.Book{
		ID:        models.NewID(),
		CreatedAt: now,
		UpdatedAt: now,
		Title:     req.Title,
		AuthorID:  req.AuthorID,
		Summary:   req.Summary,
		ISBN:      req.ISBN,
		GenreIDs:  relations.NormalizeGenreIDs(req.GenreIDs),
	}
	err := h.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(book).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		return relations.SetBookGenres(ctx, tx, book.ID, book.GenreIDs)
	})
	if err != nil {
		return errors.Wrap(err, "failed to create book")
	}

	return c.JSON(http.StatusCreated, createdResponse{book.ID, models.BookURL(book)})
}

type createBookInstanceRequest struct {
	BookID  string `json:"book_id" validate:"required"`
	Imprint string `json:"imprint" validate:"required"`
	Status  string `json:"status" default:"Maintenance" validate:"oneof=Available Maintenance Loaned Reserved"`
	DueBack string `json:"due_back" validate:"date"`
}

// createBookInstance inserts a copy of a book.
// POST /test/bookinstances.
func (h *handler) createBookInstance(c echo.Context) error {
	ctx := c.Request().Context()

	var req createBookInstanceRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	dueBack, err := models.ParseISODate(req.DueBack)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid due_back")
	}

	now := time.Now()
	instance := &models.BookInstance{
		ID:        models.NewID(),
		CreatedAt: now,
		UpdatedAt: now,
		BookID:    req.BookID,
		Imprint:   req.Imprint,
		Status:    req.Status,
		DueBack:   dueBack,
	}
	if _, err := h.db.NewInsert().Model(instance).Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to create book instance")
	}

	return c.JSON(http.StatusCreated, createdResponse{instance.ID, models.BookInstanceURL(instance)})
}

// deleteCatalogResponse is the response body for deleting the whole catalog.
type deleteCatalogResponse struct {
	Deleted int `json:"deleted"`
}

// deleteCatalog deletes every record, children first.
// DELETE /test/catalog.
func (h *handler) deleteCatalog(c echo.Context) error {
	ctx := c.Request().Context()

	var deleted int64
	err := h.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*models.BookInstance)(nil),
			(*models.BookGenre)(nil),
			(*models.Book)(nil),
			(*models.Genre)(nil),
			(*models.Author)(nil),
		} {
			result, err := tx.NewDelete().
				Model(model).
				Where("1=1").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			n, _ := result.RowsAffected()
			deleted += n
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete catalog")
	}

	return c.JSON(http.StatusOK, deleteCatalogResponse{
		Deleted: int(deleted),
	})
}
