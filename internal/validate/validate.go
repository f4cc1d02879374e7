// Package validate wraps go-playground/validator with the household app's
// custom rules and error messages.
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

type enum interface{ Valid() bool }

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		// enum accepts any closed string type with a Valid method.
		validate.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			e, ok := fl.Field().Interface().(enum)
			return ok && e.Valid()
		})
		validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("15:04", fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// Struct validates s and reports the first failure as a validation error.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Validation("%s", message(verrs[0]))
	}
	return apperr.Validation("%s", err.Error())
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return field + " must be at least " + fe.Param() + " characters"
		}
		return field + " must be at least " + fe.Param()
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return field + " must be at most " + fe.Param() + " characters"
		}
		return field + " must be at most " + fe.Param()
	case "email":
		return field + " must be a valid email address"
	case "hhmm":
		return field + " must be a time in HH:MM format"
	case "enum":
		return field + " has an unsupported value"
	case "url":
		return field + " must be a valid URL"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	case "hexcolor":
		return field + " must be a hex color such as #6b7280"
	case "len":
		return field + " must be exactly " + fe.Param() + " characters"
	}
	return field + " is invalid"
}
