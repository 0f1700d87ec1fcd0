package models

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator used for request bodies on both the
// server and the client. Field errors report json names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			field := fl.Field()
			if field.Kind() == reflect.Ptr {
				if field.IsNil() {
					return true
				}
				field = field.Elem()
			}
			return strings.TrimSpace(field.String()) != ""
		})
		validate.RegisterStructValidation(validatePlanDates, LearningPlanRequest{})
	})
	return validate
}

func validatePlanDates(sl validator.StructLevel) {
	req := sl.Current().Interface().(LearningPlanRequest)
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		sl.ReportError(req.EndDate, "endDate", "EndDate", "gtefield", "StartDate")
	}
}

// Validate checks a request struct against its validate tags.
func Validate(v any) error {
	return Validator().Struct(v)
}

// DescribeValidation turns validator errors into one readable line.
func DescribeValidation(err error) string {
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrors) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		parts = append(parts, describeField(fe))
	}
	return strings.Join(parts, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "gtefield":
		return field + " must not be before " + strings.ToLower(fe.Param()[:1]) + fe.Param()[1:]
	}
	return field + " is invalid"
}
