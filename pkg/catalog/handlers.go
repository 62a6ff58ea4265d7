package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/authors"
	"github.com/locallibrary/catalog/pkg/bookinstances"
	"github.com/locallibrary/catalog/pkg/books"
	"github.com/locallibrary/catalog/pkg/genres"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Counts struct {
	Books                  int
	BookInstances          int
	BookInstancesAvailable int
	Authors                int
	Genres                 int
}

type handler struct {
	authorService   *authors.Service
	genreService    *genres.Service
	bookService     *books.Service
	instanceService *bookinstances.Service
}

func (h *handler) index(c echo.Context) error {
	counts := Counts{}
	available := models.BookInstanceStatusAvailable

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		counts.Books, err = h.bookService.CountBooks(ctx)
		return err
	})
	g.Go(func() (err error) {
		counts.BookInstances, err = h.instanceService.CountBookInstances(ctx, bookinstances.CountBookInstancesOptions{})
		return err
	})
	g.Go(func() (err error) {
		counts.BookInstancesAvailable, err = h.instanceService.CountBookInstances(ctx, bookinstances.CountBookInstancesOptions{
			Status: &available,
		})
		return err
	})
	g.Go(func() (err error) {
		counts.Authors, err = h.authorService.CountAuthors(ctx)
		return err
	})
	g.Go(func() (err error) {
		counts.Genres, err = h.genreService.CountGenres(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "index", map[string]any{
		"Title":  "Local Library Home",
		"Counts": counts,
	}))
}
