package authors

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
	entity  = "author"
	listURL = "/catalog/authors"
)

type handler struct {
	authorService   *Service
	relationService *relations.Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	authors, err := h.authorService.ListAuthors(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "author_list", map[string]any{
		"Title":   "Author List",
		"Authors": authors,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	author, books, err := h.authorWithBooks(c)
	if err != nil {
		return err
	}

	return errors.WithStack(c.Render(http.StatusOK, "author_detail", map[string]any{
		"Title":  "Author Detail",
		"Author": author,
		"Books":  books,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, "Create Author", &AuthorPayload{}, nil)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := AuthorPayload{}
	author, err := bindAuthor(c, &params)
	if err != nil {
		return h.formError(c, "Create Author", &params, err)
	}

	if err := h.authorService.CreateAuthor(ctx, author); err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordWrite(entity, metrics.OperationCreate)
	logger.FromContext(ctx).Info("author created", logger.Data{"author_id": author.ID})

	return errors.WithStack(c.Redirect(http.StatusSeeOther, models.AuthorURL(author)))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()

	author, err := h.authorService.RetrieveAuthor(ctx, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderForm(c, http.StatusOK, "Update Author", payloadFromAuthor(author), nil)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	existing, err := h.authorService.RetrieveAuthor(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	params := AuthorPayload{}
	author, err := bindAuthor(c, &params)
	if err != nil {
		return h.formError(c, "Update Author", &params, err)
	}

	author.ID = existing.ID
	author.CreatedAt = existing.CreatedAt
	if err := h.authorService.ReplaceAuthor(ctx, author); err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordWrite(entity, metrics.OperationUpdate)

	return errors.WithStack(c.Redirect(http.StatusSeeOther, models.AuthorURL(author)))
}

func (h *handler) deleteForm(c echo.Context) error {
	author, books, err := h.authorWithBooks(c)
	if err != nil {
		return err
	}

	return errors.WithStack(c.Render(http.StatusOK, "author_delete", map[string]any{
		"Title":  "Delete Author",
		"Author": author,
		"Books":  books,
	}))
}

func (h *handler) deleteAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	blocking, err := h.relationService.DeleteAuthor(ctx, id)
	if errors.Is(err, errcodes.NotFound("Author")) {
		return errors.WithStack(c.Redirect(http.StatusSeeOther, listURL))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	if len(blocking) > 0 {
		metrics.RecordDeleteBlocked(entity)
		author, err := h.authorService.RetrieveAuthor(ctx, id)
		if err != nil {
			return errors.WithStack(err)
		}
		return errors.WithStack(c.Render(http.StatusConflict, "author_delete", map[string]any{
			"Title":  "Delete Author",
			"Author": author,
			"Books":  blocking,
		}))
	}

	metrics.RecordWrite(entity, metrics.OperationDelete)
	logger.FromContext(ctx).Info("author deleted", logger.Data{"author_id": id})

	return errors.WithStack(c.Redirect(http.StatusSeeOther, listURL))
}

// authorWithBooks loads the author named by the path and the books written by
// them at the same time.
func (h *handler) authorWithBooks(c echo.Context) (*models.Author, []*models.Book, error) {
	id := c.Param("id")

	var author *models.Author
	var books []*models.Book

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		author, err = h.authorService.RetrieveAuthor(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		books, err = h.relationService.BooksByAuthor(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, errors.WithStack(err)
	}

	return author, books, nil
}

func (h *handler) renderForm(c echo.Context, code int, title string, params *AuthorPayload, fieldErrs []errcodes.FieldError) error {
	return errors.WithStack(c.Render(code, "author_form", map[string]any{
		"Title":  title,
		"Form":   params,
		"Errors": fieldErrs,
	}))
}

// formError re-renders the form when err carries field errors, and passes any
// other error on to the error handler.
func (h *handler) formError(c echo.Context, title string, params *AuthorPayload, err error) error {
	fieldErrs, ok := errcodes.FieldErrors(err)
	if !ok {
		return errors.WithStack(err)
	}
	return h.renderForm(c, http.StatusUnprocessableEntity, title, params, fieldErrs)
}

func bindAuthor(c echo.Context, params *AuthorPayload) (*models.Author, error) {
	if err := c.Bind(params); err != nil {
		return nil, err
	}
	return params.toAuthor()
}
