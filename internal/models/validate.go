package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/societyhub/community-server/internal/apperr"
)

// requestValidate checks the `validate` tags on request schemas.
// Field names in errors use the json tag so clients see their own keys.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New(validator.WithRequiredStructEnabled())
	requestValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = requestValidate.RegisterValidation("service", validateService)
}

func validateService(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, known := range ServiceCatalog {
		if s == known {
			return true
		}
	}
	return false
}

// validateStruct runs tag validation and converts failures to a
// ValidationError carrying one message per offending field.
func validateStruct(v any) error {
	err := requestValidate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Invalid request body")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldKey(fe)] = fieldMessage(fe)
	}

	first := verrs[0]
	return apperr.ValidationFields(fieldMessage(first), fields)
}

// fieldKey strips the struct name so nested paths read "options[1]".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	field := fieldKey(fe)
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "service":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(ServiceCatalog, ", "))
	case "unique":
		return field + " must not contain duplicates"
	default:
		return field + " is invalid"
	}
}
