package genres

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/metrics"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/locallibrary/catalog/pkg/relations"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"golang.org/x/sync/errgroup"
)

const (
	entity  = "genre"
	listURL = "/catalog/genres"
)

type handler struct {
	genreService    *Service
	relationService *relations.Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	genres, err := h.genreService.ListGenres(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "genre_list", map[string]any{
		"Title":  "Genre List",
		"Genres": genres,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	genre, books, err := h.genreWithBooks(c)
	if err != nil {
		return err
	}

	return errors.WithStack(c.Render(http.StatusOK, "genre_detail", map[string]any{
		"Title": "Genre Detail",
		"Genre": genre,
		"Books": books,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, "Create Genre", &GenrePayload{}, nil)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := GenrePayload{}
	if err := c.Bind(&params); err != nil {
		return h.formError(c, "Create Genre", &params, err)
	}

	genre, created, err := h.genreService.FindOrCreateGenre(ctx, params.Name)
	if err != nil {
		return errors.WithStack(err)
	}
	if created {
		metrics.RecordWrite(entity, metrics.OperationCreate)
		logger.FromContext(ctx).Info("genre created", logger.Data{"genre_id": genre.ID})
	}

	return errors.WithStack(c.Redirect(http.StatusSeeOther, models.GenreURL(genre)))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderForm(c, http.StatusOK, "Update Genre", &GenrePayload{Name: genre.Name}, nil)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	params := GenrePayload{}
	if err := c.Bind(&params); err != nil {
		return h.formError(c, "Update Genre", &params, err)
	}

	genre.Name = params.Name
	if err := h.genreService.ReplaceGenre(ctx, genre); err != nil {
		return h.formError(c, "Update Genre", &params, err)
	}
	metrics.RecordWrite(entity, metrics.OperationUpdate)

	return errors.WithStack(c.Redirect(http.StatusSeeOther, models.GenreURL(genre)))
}

func (h *handler) deleteForm(c echo.Context) error {
	genre, books, err := h.genreWithBooks(c)
	if err != nil {
		return err
	}

	return errors.WithStack(c.Render(http.StatusOK, "genre_delete", map[string]any{
		"Title": "Delete Genre",
		"Genre": genre,
		"Books": books,
	}))
}

func (h *handler) deleteGenre(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	blocking, err := h.relationService.DeleteGenre(ctx, id)
	if errors.Is(err, errcodes.NotFound("Genre")) {
		return errors.WithStack(c.Redirect(http.StatusSeeOther, listURL))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	if len(blocking) > 0 {
		metrics.RecordDeleteBlocked(entity)
		genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
		if err != nil {
			return errors.WithStack(err)
		}
		return errors.WithStack(c.Render(http.StatusConflict, "genre_delete", map[string]any{
			"Title": "Delete Genre",
			"Genre": genre,
			"Books": blocking,
		}))
	}

	metrics.RecordWrite(entity, metrics.OperationDelete)
	logger.FromContext(ctx).Info("genre deleted", logger.Data{"genre_id": id})

	return errors.WithStack(c.Redirect(http.StatusSeeOther, listURL))
}

func (h *handler) genreWithBooks(c echo.Context) (*models.Genre, []*models.Book, error) {
	id := c.Param("id")

	var genre *models.Genre
	var books []*models.Book

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		genre, err = h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
		return err
	})
	g.Go(func() error {
		var err error
		books, err = h.relationService.BooksByGenre(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, errors.WithStack(err)
	}

	return genre, books, nil
}

func (h *handler) renderForm(c echo.Context, code int, title string, params *GenrePayload, fieldErrs []errcodes.FieldError) error {
	return errors.WithStack(c.Render(code, "genre_form", map[string]any{
		"Title":  title,
		"Form":   params,
		"Errors": fieldErrs,
	}))
}

func (h *handler) formError(c echo.Context, title string, params *GenrePayload, err error) error {
	fieldErrs, ok := errcodes.FieldErrors(err)
	if !ok {
		return errors.WithStack(err)
	}
	return h.renderForm(c, http.StatusUnprocessableEntity, title, params, fieldErrs)
}
