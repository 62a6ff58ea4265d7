package books

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/authors"
	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/genres"
	"github.com/locallibrary/catalog/pkg/metrics"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/locallibrary/catalog/pkg/relations"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"golang.org/x/sync/errgroup"
)

const (
	entity  = "book"
	listURL = "/catalog/books"
)

type handler struct {
	bookService     *Service
	authorService   *authors.Service
	genreService    *genres.Service
	relationService *relations.Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.ListBooks(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	err = h.relationService.PopulateBooks(ctx, books, relations.PopulateBooksOptions{Author: true})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "book_list", map[string]any{
		"Title": "Book List",
		"Books": books,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	book, instances, err := h.bookWithInstances(c, relations.PopulateBooksOptions{Author: true, Genres: true})
	if err != nil {
		return err
	}

	return errors.WithStack(c.Render(http.StatusOK, "book_detail", map[string]any{
		"Title":     book.Title,
		"Book":      book,
		"Instances": instances,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, "Create Book", &BookPayload{}, nil)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookPayload{}
	book, err := h.bindBook(c, &params)
	if err != nil {
		return h.formError(c, "Create Book", &params, err)
	}

	if err := h.bookService.CreateBook(ctx, book); err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordWrite(entity, metrics.OperationCreate)
	logger.FromContext(ctx).Info("book created", logger.Data{"book_id": book.ID})

	return errors.WithStack(c.Redirect(http.StatusSeeOther, models.BookURL(book)))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBook(ctx, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderForm(c, http.StatusOK, "Update Book", payloadFromBook(book), nil)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	existing, err := h.bookService.RetrieveBook(ctx, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	params := BookPayload{}
	book, err := h.bindBook(c, &params)
	if err != nil {
		return h.formError(c, "Update Book", &params, err)
	}

	book.ID = existing.ID
	book.CreatedAt = existing.CreatedAt
	if err := h.bookService.ReplaceBook(ctx, book); err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordWrite(entity, metrics.OperationUpdate)

	return errors.WithStack(c.Redirect(http.StatusSeeOther, models.BookURL(book)))
}

func (h *handler) deleteForm(c echo.Context) error {
	book, instances, err := h.bookWithInstances(c, relations.PopulateBooksOptions{Author: true})
	if err != nil {
		return err
	}

	return errors.WithStack(c.Render(http.StatusOK, "book_delete", map[string]any{
		"Title":     "Delete Book",
		"Book":      book,
		"Instances": instances,
	}))
}

func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	blocking, err := h.relationService.DeleteBook(ctx, id)
	if errors.Is(err, errcodes.NotFound("Book")) {
		return errors.WithStack(c.Redirect(http.StatusSeeOther, listURL))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	if len(blocking) > 0 {
		metrics.RecordDeleteBlocked(entity)
		book, err := h.bookService.RetrieveBook(ctx, id)
		if err != nil {
			return errors.WithStack(err)
		}
		err = h.relationService.PopulateBooks(ctx, []*models.Book{book}, relations.PopulateBooksOptions{Author: true})
		if err != nil {
			return errors.WithStack(err)
		}
		return errors.WithStack(c.Render(http.StatusConflict, "book_delete", map[string]any{
			"Title":     "Delete Book",
			"Book":      book,
			"Instances": blocking,
		}))
	}

	metrics.RecordWrite(entity, metrics.OperationDelete)
	logger.FromContext(ctx).Info("book deleted", logger.Data{"book_id": id})

	return errors.WithStack(c.Redirect(http.StatusSeeOther, listURL))
}

// bookWithInstances loads the book named by the path, populated per opts,
// while its copies are looked up at the same time.
func (h *handler) bookWithInstances(c echo.Context, opts relations.PopulateBooksOptions) (*models.Book, []*models.BookInstance, error) {
	id := c.Param("id")

	var book *models.Book
	var instances []*models.BookInstance

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		book, err = h.bookService.RetrieveBook(ctx, id)
		if err != nil {
			return err
		}
		return h.relationService.PopulateBooks(ctx, []*models.Book{book}, opts)
	})
	g.Go(func() error {
		var err error
		instances, err = h.relationService.InstancesByBook(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, errors.WithStack(err)
	}

	return book, instances, nil
}

// bindBook binds the submission and checks that the author and genres it
// names exist.
func (h *handler) bindBook(c echo.Context, params *BookPayload) (*models.Book, error) {
	if err := c.Bind(params); err != nil {
		return nil, err
	}
	book := params.toBook()
	if err := h.relationService.CheckBookReferences(c.Request().Context(), book); err != nil {
		return nil, err
	}
	return book, nil
}

func (h *handler) renderForm(c echo.Context, code int, title string, params *BookPayload, fieldErrs []errcodes.FieldError) error {
	var allAuthors []*models.Author
	var allGenres []*models.Genre

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		allAuthors, err = h.authorService.ListAuthors(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		allGenres, err = h.genreService.ListGenres(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(code, "book_form", map[string]any{
		"Title":        title,
		"Form":         params,
		"Authors":      allAuthors,
		"GenreOptions": relations.GenreOptions(allGenres, params.Genre),
		"Errors":       fieldErrs,
	}))
}

func (h *handler) formError(c echo.Context, title string, params *BookPayload, err error) error {
	fieldErrs, ok := errcodes.FieldErrors(err)
	if !ok {
		return errors.WithStack(err)
	}
	params.Genre = relations.NormalizeGenreIDs(params.Genre)
	return h.renderForm(c, http.StatusUnprocessableEntity, title, params, fieldErrs)
}
