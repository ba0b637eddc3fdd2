package webutil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nekto007/language-learning-tool/internal/model"

	"github.com/go-playground/validator/v10"
)

// DecodeJSONBody decodes and validates a request body into dst. Unknown fields
// are rejected so clients notice typos instead of silently losing data.
func DecodeJSONBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return model.NewAppError("INVALID_BODY", "Request body is required", "", model.ErrInvalidInput)
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return model.NewAppError("INVALID_BODY", "Malformed JSON body", "", model.ErrInvalidInput)
	}

	if err := Validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return NewValidationErrorResponse(verrs)
		}
		return model.NewAppError("VALIDATION_ERROR", "Request validation failed", "", model.ErrInvalidInput)
	}
	return nil
}
