package errcodes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// FieldError is a single validation failure for one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors carries every field-level failure of a submission, in the
// order the fields are declared. Handlers use it to re-render forms.
type ValidationErrors struct {
	Errors []FieldError
}

func (err *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(err.Errors))
	for _, fe := range err.Errors {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// HasField reports whether any error was recorded for the given field.
func (err *ValidationErrors) HasField(field string) bool {
	for _, fe := range err.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// NewValidationErrors returns nil when there are no field errors so the result
// can be returned directly as an error.
func NewValidationErrors(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationErrors{Errors: errs}
}

// FieldErrors unwraps the field errors carried by err, if any.
func FieldErrors(err error) ([]FieldError, bool) {
	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	return verrs.Errors, true
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		http.StatusNotFound,
		resource + " not found.",
		"not_found",
	}
}

func UnsupportedMediaType() error {
	return &Error{
		http.StatusUnsupportedMediaType,
		"Unsupported Media Type",
		"unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Unknown Parameter %q", param),
		"unknown_parameter",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"validation_type_error",
	}
}

func MalformedPayload() error {
	return &Error{
		http.StatusBadRequest,
		"Malformed Payload",
		"malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		http.StatusBadRequest,
		"Request body can't be empty.",
		"empty_request_body",
	}
}

func TooManyRequests() error {
	return &Error{
		http.StatusTooManyRequests,
		"Too many submissions. Try again in a moment.",
		"too_many_requests",
	}
}
