package errcodes

import (
	"fmt"
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

// ErrorView is the template rendered for every error that reaches the handler.
const ErrorView = "error"

type Handler struct {
	showDetail bool
}

// NewHandler returns an error handler. When showDetail is true the underlying
// error (with its stack) is included in the response; only development
// environments should turn it on.
func NewHandler(showDetail bool) *Handler {
	return &Handler{showDetail: showDetail}
}

// Handle is an Echo error handler that uses HTTP errors accordingly, and any
// generic error will be interpreted as an internal server error. It renders
// the error view when a renderer is configured and falls back to JSON.
func (h *Handler) Handle(err error, c echo.Context) {
	if errutils.IsIgnorableErr(err) {
		logger.FromEchoContext(c).Err(err).Warn("broken pipe")
		return
	}
	if c.Response().Committed {
		return
	}

	httpCode, code, msg := h.classify(err)

	// Internal server errors
	if httpCode == http.StatusInternalServerError {
		logger.FromEchoContext(c).Err(err).Error("server error")
	}

	detail := ""
	if h.showDetail {
		detail = fmt.Sprintf("%+v", err)
	}

	if c.Echo().Renderer != nil {
		data := map[string]interface{}{
			"Title":      "Error",
			"StatusCode": httpCode,
			"Code":       code,
			"Message":    msg,
			"Detail":     detail,
		}
		if rerr := c.Render(httpCode, ErrorView, data); rerr != nil {
			logger.FromEchoContext(c).Err(errors.WithStack(rerr)).Error("error handler render error")
		}
		return
	}

	payload := map[string]interface{}{
		"code":        code,
		"message":     msg,
		"status_code": httpCode,
	}
	if detail != "" {
		payload["detail"] = detail
	}
	if err := c.JSON(httpCode, map[string]interface{}{"error": payload}); err != nil {
		logger.FromEchoContext(c).Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func (h *Handler) classify(err error) (int, string, string) {
	code := ""
	msg := ""
	httpCode := http.StatusInternalServerError

	// Echo errors
	var he *echo.HTTPError
	if ok := errors.As(err, &he); ok {
		httpCode = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(he.Code)
		}
		code = strcase.ToSnake(msg)
	}

	// Custom errors
	var e *Error
	if ok := errors.As(err, &e); ok {
		httpCode = e.HTTPCode
		code = e.Code
		msg = e.Message
	}

	var ve *ValidationErrors
	if ok := errors.As(err, &ve); ok {
		httpCode = http.StatusUnprocessableEntity
		code = "validation_error"
		msg = ve.Error()
	}

	// Internal server errors that aren't Echo errors or custom errors
	if httpCode == http.StatusInternalServerError && msg == "" {
		code = "internal_server_error"
		msg = "Internal Server Error"
	}

	return httpCode, code, msg
}
