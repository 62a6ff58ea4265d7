package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

const (
	alphanum = "alphanum"
	date     = "date"
	mx       = "max"
	mn       = "min"
	ne       = "ne"
	oneof    = "oneof"
	required = "required"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case alphanum:
		return fmt.Sprintf("%q has non-alphanumeric characters", field)
	case date:
		return fmt.Sprintf("%q should be in the format of YYYY-MM-DD", field)
	case mx:
		return fmt.Sprintf("%q %s less than or equal to %s", field, boundPhrase(err), err.Param()+boundUnit(err))
	case mn:
		return fmt.Sprintf("%q %s greater than or equal to %s", field, boundPhrase(err), err.Param()+boundUnit(err))
	case ne:
		return fmt.Sprintf("%q can't be %q", field, err.Param())
	case oneof:
		valids := []string{}
		for _, p := range strings.Fields(err.Param()) {
			valids = append(valids, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(valids, ", "))
	case required:
		return fmt.Sprintf("%q is required", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// boundPhrase distinguishes numeric bounds ("must be") from length bounds
// ("length must be").
func boundPhrase(err validator.FieldError) string {
	if isNumeric(err.Kind()) {
		return "must be"
	}
	return "length must be"
}

func boundUnit(err validator.FieldError) string {
	if isNumeric(err.Kind()) {
		return ""
	}
	resource := " character"
	if err.Kind() == reflect.Slice {
		resource = " element"
	}
	if err.Param() != "1" {
		resource += "s"
	}
	return resource
}

func isNumeric(kind reflect.Kind) bool {
	//exhaustive:ignore
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
