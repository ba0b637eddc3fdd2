package webutil

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/nekto007/language-learning-tool/internal/model"

	"github.com/go-playground/validator/v10"
)

// Validator is the shared validator instance. Field names in error messages
// come from the json tag, not the Go field name.
var Validator *validator.Validate

func init() {
	Validator = validator.New()

	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// NewValidationErrorResponse folds validator errors into a single AppError.
func NewValidationErrorResponse(errs validator.ValidationErrors) *model.AppError {
	var fields []string
	var messages []string

	for _, err := range errs {
		fields = append(fields, err.Field())
		messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' rule", err.Field(), err.Tag()))
	}

	return model.NewAppError(
		"VALIDATION_ERROR",
		strings.Join(messages, "; "),
		strings.Join(fields, ","),
		model.ErrInvalidInput,
	)
}
