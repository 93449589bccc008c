package validator

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report JSON field names instead of Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return domain.IsValidSlug(fl.Field().String())
	})
	_ = validate.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
		return domain.IsValidColor(fl.Field().String())
	})
	_ = validate.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return domain.Status(fl.Field().String()).Valid()
	})
}

// Validate checks s against its struct tags. Failures come back as a
// ValidationFailed error listing every offending field.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.ErrInvalidRequest.Wrap(err)
	}

	violations := make([]errors.Violation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, errors.Violation{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return errors.Validation(violations...)
}

// GetValidator exposes the shared instance for custom registrations.
func GetValidator() *validator.Validate {
	return validate
}

// fieldPath drops the top-level struct name: "SaveRouteRequest.stops[0].name" -> "stops[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "uuid", "uuid4":
		return "must be a uuid"
	case "slug":
		return "must contain only lowercase letters, digits and dashes"
	case "hexcolor6":
		return "must be a 6 digit hex colour"
	case "status":
		return "must be one of draft, in_review, published"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
