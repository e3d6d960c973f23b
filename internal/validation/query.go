package validation

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperrors "scorecard/internal/errors"
	"scorecard/internal/scorecard"
)

// maxThemeLength bounds a single theme name.
const maxThemeLength = 200

// FilterQuery is the raw filter received from a query string or CLI flags.
type FilterQuery struct {
	Themes []string `json:"theme" validate:"max=50,dive,theme"`
	Status string   `json:"status" validate:"omitempty,status"`
}

// QueryValidator validates filter input with struct tags.
type QueryValidator struct {
	validate *validator.Validate
}

// NewQueryValidator registers the scorecard rules on a fresh validator.
func NewQueryValidator() *QueryValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("status", isStatus)
	v.RegisterValidation("theme", isTheme)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &QueryValidator{validate: v}
}

// Validate checks q and returns every field failure as an API error, or nil.
func (qv *QueryValidator) Validate(q FilterQuery) error {
	err := qv.validate.Struct(q)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.ErrInvalidRequest
	}

	details := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: formatFieldError(fe),
		})
	}
	return apperrors.NewValidationErrors(details)
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("%s accepts at most %s values", field, fe.Param())
	case "status":
		labels := make([]string, 0, 3)
		for _, s := range scorecard.Statuses() {
			labels = append(labels, string(s))
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(labels, ", "))
	case "theme":
		return fmt.Sprintf("%s names must be at most %d characters", field, maxThemeLength)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func isStatus(fl validator.FieldLevel) bool {
	_, err := scorecard.ParseStatus(fl.Field().String())
	return err == nil
}

func isTheme(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) <= maxThemeLength
}
