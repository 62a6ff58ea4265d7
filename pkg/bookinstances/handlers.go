package bookinstances

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/catalog/pkg/books"
	"github.com/locallibrary/catalog/pkg/errcodes"
	"github.com/locallibrary/catalog/pkg/metrics"
	"github.com/locallibrary/catalog/pkg/models"
	"github.com/locallibrary/catalog/pkg/relations"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const (
	entity  = "bookinstance"
	listURL = "/catalog/bookinstances"
)

type handler struct {
	instanceService *Service
	bookService     *books.Service
	relationService *relations.Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	instances, err := h.instanceService.ListBookInstances(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.relationService.PopulateBookInstances(ctx, instances); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "bookinstance_list", map[string]any{
		"Title":     "Book Instance List",
		"Instances": instances,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	instance, err := h.populatedInstance(c)
	if err != nil {
		return err
	}

	title := "Copy: "
	if instance.Book != nil {
		title += instance.Book.Title
	}

	return errors.WithStack(c.Render(http.StatusOK, "bookinstance_detail", map[string]any{
		"Title":    title,
		"Instance": instance,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	params := &BookInstancePayload{
		Book:   c.QueryParam("book"),
		Status: models.BookInstanceStatusMaintenance,
	}
	return h.renderForm(c, http.StatusOK, "Create BookInstance", params, nil)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookInstancePayload{}
	instance, err := h.bindBookInstance(c, &params)
	if err != nil {
		return h.formError(c, "Create BookInstance", &params, err)
	}

	if err := h.instanceService.CreateBookInstance(ctx, instance); err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordWrite(entity, metrics.OperationCreate)
	logger.FromContext(ctx).Info("book copy created", logger.Data{"book_instance_id": instance.ID, "book_id": instance.BookID})

	return errors.WithStack(c.Redirect(http.StatusSeeOther, models.BookInstanceURL(instance)))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()

	instance, err := h.instanceService.RetrieveBookInstance(ctx, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderForm(c, http.StatusOK, "Update BookInstance", payloadFromBookInstance(instance), nil)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	existing, err := h.instanceService.RetrieveBookInstance(ctx, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	params := BookInstancePayload{}
	instance, err := h.bindBookInstance(c, &params)
	if err != nil {
		return h.formError(c, "Update BookInstance", &params, err)
	}

	instance.ID = existing.ID
	instance.CreatedAt = existing.CreatedAt
	if err := h.instanceService.ReplaceBookInstance(ctx, instance); err != nil {
		return errors.WithStack(err)
	}
	metrics.RecordWrite(entity, metrics.OperationUpdate)

	return errors.WithStack(c.Redirect(http.StatusSeeOther, models.BookInstanceURL(instance)))
}

func (h *handler) deleteForm(c echo.Context) error {
	instance, err := h.populatedInstance(c)
	if err != nil {
		return err
	}

	return errors.WithStack(c.Render(http.StatusOK, "bookinstance_delete", map[string]any{
		"Title":    "Delete BookInstance",
		"Instance": instance,
	}))
}

func (h *handler) deleteBookInstance(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	err := h.instanceService.DeleteBookInstance(ctx, id)
	if errors.Is(err, errcodes.NotFound("Book copy")) {
		return errors.WithStack(c.Redirect(http.StatusSeeOther, listURL))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	metrics.RecordWrite(entity, metrics.OperationDelete)
	logger.FromContext(ctx).Info("book copy deleted", logger.Data{"book_instance_id": id})

	return errors.WithStack(c.Redirect(http.StatusSeeOther, listURL))
}

func (h *handler) populatedInstance(c echo.Context) (*models.BookInstance, error) {
	ctx := c.Request().Context()

	instance, err := h.instanceService.RetrieveBookInstance(ctx, c.Param("id"))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := h.relationService.PopulateBookInstances(ctx, []*models.BookInstance{instance}); err != nil {
		return nil, errors.WithStack(err)
	}
	return instance, nil
}

func (h *handler) bindBookInstance(c echo.Context, params *BookInstancePayload) (*models.BookInstance, error) {
	if err := c.Bind(params); err != nil {
		return nil, err
	}
	instance, err := params.toBookInstance()
	if err != nil {
		return nil, err
	}
	if err := h.relationService.CheckBookInstanceReferences(c.Request().Context(), instance); err != nil {
		return nil, err
	}
	return instance, nil
}

func (h *handler) renderForm(c echo.Context, code int, title string, params *BookInstancePayload, fieldErrs []errcodes.FieldError) error {
	allBooks, err := h.bookService.ListBooks(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(code, "bookinstance_form", map[string]any{
		"Title":    title,
		"Form":     params,
		"Books":    allBooks,
		"Statuses": models.BookInstanceStatuses,
		"Errors":   fieldErrs,
	}))
}

func (h *handler) formError(c echo.Context, title string, params *BookInstancePayload, err error) error {
	fieldErrs, ok := errcodes.FieldErrors(err)
	if !ok {
		return errors.WithStack(err)
	}
	return h.renderForm(c, http.StatusUnprocessableEntity, title, params, fieldErrs)
}
