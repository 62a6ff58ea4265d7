package binder

import (
	"context"
	"html"
	"reflect"
	"regexp"

	"github.com/go-playground/mold/v4"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	dateRE = regexp.MustCompile(`^\d{4}-(0[0-9]|1[0-2])-(0[0-9]|1[0-9]|2[0-9]|3[0-1])$`)
)

// dateValidator ensures the value matches the format YYYY-MM-DD or the empty
// string. The empty string is allowed so optional dates can be left blank; add
// `required` to the validate tag when a date must be given.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return dateRE.MatchString(value)
}

// sanitizeModifier strips any markup from string fields. The policy escapes
// entities in the text it keeps; they're unescaped again because templates
// escape on output.
func sanitizeModifier(policy *bluemonday.Policy) mold.Func {
	return func(_ context.Context, fl mold.FieldLevel) error {
		field := fl.Field()
		if field.Kind() != reflect.String || !field.CanSet() {
			return nil
		}
		field.SetString(html.UnescapeString(policy.Sanitize(field.String())))
		return nil
	}
}
